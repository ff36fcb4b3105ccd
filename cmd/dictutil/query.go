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
	"fmt"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"

	"github.com/ianlewis/go-dictd"
)

// result is a query result printed with --json.
type result struct {
	Dictionary string `json:"dictionary"`
	Headword   string `json:"headword"`
	Definition string `json:"definition"`
}

func newQueryCommand() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "Query dictionaries",
		ArgsUsage: "QUERY",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:               "fuzzy",
				Usage:              "include headwords within one edit of the query",
				Aliases:            []string{"f"},
				DisableDefaultText: true,
			},
			&cli.BoolFlag{
				Name:               "json",
				Usage:              "print results as JSON",
				Aliases:            []string{"j"},
				DisableDefaultText: true,
			},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("%w: expected one QUERY argument, got %d", ErrFlagParse, c.Args().Len())
			}
			query := c.Args().First()

			log := newLogger(c)

			dicts := openDictionaries(c, log, dictd.DefaultOptions)
			defer closeDictionaries(log, dicts)

			var results []result
			for _, d := range dicts {
				var entries []*dictd.Entry
				var err error
				if c.Bool("fuzzy") {
					entries, err = d.FuzzySearch(query)
				} else {
					entries, err = d.Search(query)
				}
				if err != nil {
					log.WithError(err).WithField("dictionary", d.Name()).Warn("search failed")
					continue
				}
				if len(entries) == 0 {
					continue
				}

				if c.Bool("json") {
					for _, e := range entries {
						results = append(results, result{
							Dictionary: d.Name(),
							Headword:   e.Title(),
							Definition: e.Text(),
						})
					}
					continue
				}

				fmt.Fprintf(c.App.Writer, "From %s:\n\n", d.Name())
				for _, e := range entries {
					fmt.Fprintln(c.App.Writer, e)
				}
			}

			if c.Bool("json") {
				enc := json.NewEncoder(c.App.Writer)
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return fmt.Errorf("writing results: %w", err)
				}
			}

			return nil
		},
	}
}
