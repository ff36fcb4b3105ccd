// Copyright 2025 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"sigs.k8s.io/release-utils/version"

	"github.com/ianlewis/go-dictd"
)

const (
	// ExitCodeSuccess is successful error code.
	ExitCodeSuccess int = iota

	// ExitCodeFlagParseError is the exit code for a flag parsing error.
	ExitCodeFlagParseError

	// ExitCodeUnknownError is the exit code for an unknown error.
	ExitCodeUnknownError
)

// ErrDictutil is a parent error for all command errors.
var ErrDictutil = errors.New("dictutil")

// ErrFlagParse is a flag parsing error.
var ErrFlagParse = fmt.Errorf("%w: parsing flags", ErrDictutil)

var copyrightNames = []string{
	"2021 Google LLC",
	"2025 Ian Lewis",
}

//nolint:gochecknoinits // init needed needed for global variable.
func init() {
	// Set the HelpFlag to a random name so that it isn't used. `cli` handles
	// the flag with the root command such that it takes a command name argument
	// but we don't use commands.
	//
	// This is done because `dictutil --help foo` will display a
	// "command foo not found" error instead of the help.
	//
	// This flag is hidden by the help output.
	// See: github.com/urfave/cli/issues/1809
	cli.HelpFlag = &cli.BoolFlag{
		// NOTE: Use a random name no one would guess.
		Name:               "d41d8cd98f00b204e980",
		DisableDefaultText: true,
	}
}

// check checks the error and panics if not nil.
func check(err error) {
	if err != nil {
		panic(err)
	}
}

// appendUnique appends the values to s that are not already in s.
func appendUnique(s []string, vals ...string) []string {
	for _, v := range vals {
		if !slices.Contains(s, v) {
			s = append(s, v)
		}
	}
	return s
}

// newLogger returns a logger writing to the app's error output.
func newLogger(c *cli.Context) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(c.App.ErrWriter)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	if c.Bool("verbose") {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// openDictionaries opens the dictionaries in all data directories. Errors
// are logged and the dictionary skipped.
func openDictionaries(c *cli.Context, log *logrus.Logger, options *dictd.Options) []*dictd.Dictionary {
	var dicts []*dictd.Dictionary
	for _, path := range c.StringSlice("data-dir") {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			log.WithField("dir", path).Debug("skipping missing data directory")
			continue
		}

		openDicts, openErrs := dictd.OpenAll(path, options)
		for _, err := range openErrs {
			log.WithError(err).Warn("failed to open dictionary")
		}
		for _, d := range openDicts {
			log.WithFields(logrus.Fields{
				"index": d.IndexPath(),
				"dict":  d.DictPath(),
			}).Debug("opened dictionary")
		}
		dicts = append(dicts, openDicts...)
	}
	return dicts
}

// closeDictionaries closes dicts, logging errors.
func closeDictionaries(log *logrus.Logger, dicts []*dictd.Dictionary) {
	for _, d := range dicts {
		if err := d.Close(); err != nil {
			log.WithError(err).Warn("failed to close dictionary")
		}
	}
}

func printVersion(c *cli.Context) error {
	versionInfo := version.GetVersionInfo()

	_, err := fmt.Fprintf(c.App.Writer, `%s %s
Copyright (c) %s

%s`, c.App.Name, versionInfo.GitVersion, strings.Join(copyrightNames, "\n"), versionInfo.String())
	if err != nil {
		return fmt.Errorf("printing version: %w", err)
	}
	return nil
}

func newDictutilApp() *cli.App {
	return &cli.App{
		Name:  filepath.Base(os.Args[0]),
		Usage: "Search DICT dictionaries.",
		Description: strings.Join([]string{
			"DICT dictionary utility written in Go.",
			"http://github.com/ianlewis/go-dictd",
		}, "\n"),
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "data-dir",
				Usage:   "include dictionaries in `DIR`",
				Aliases: []string{"d"},
				EnvVars: []string{"DICTUTIL_DATA_DIR"},
				Value:   cli.NewStringSlice(dictLocations()...),
			},
			&cli.BoolFlag{
				Name:               "verbose",
				Usage:              "print debug logs",
				Aliases:            []string{"v"},
				DisableDefaultText: true,
			},

			// Special flags are shown at the end.
			&cli.BoolFlag{
				Name:               "help",
				Usage:              "print this help text and exit",
				Aliases:            []string{"h"},
				DisableDefaultText: true,
			},
			&cli.BoolFlag{
				Name:               "version",
				Usage:              "print version information and exit",
				Aliases:            []string{"V"},
				DisableDefaultText: true,
			},
		},
		Copyright:       strings.Join(copyrightNames, "\n"),
		HideHelp:        true,
		HideHelpCommand: true,
		Writer:          os.Stdout,
		ErrWriter:       os.Stderr,
		OnUsageError: func(_ *cli.Context, err error, _ bool) error {
			return fmt.Errorf("%w: %w", ErrFlagParse, err)
		},
		Action: func(c *cli.Context) error {
			if c.Bool("version") {
				return printVersion(c)
			}

			check(cli.ShowAppHelp(c))
			return nil
		},
		Commands: []*cli.Command{
			newListCommand(),
			newQueryCommand(),
		},
	}
}
