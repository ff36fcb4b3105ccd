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
	"github.com/dustin/go-humanize"
	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"

	"github.com/ianlewis/go-dictd"
)

func newListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List dictionaries",
		Action: func(c *cli.Context) error {
			log := newLogger(c)

			// Only the metadata is needed.
			dicts := openDictionaries(c, log, &dictd.Options{
				Lazy: true,
			})
			defer closeDictionaries(log, dicts)

			tbl := table.New("Name", "Size", "URL", "Path").WithWriter(c.App.Writer)
			for _, d := range dicts {
				tbl.AddRow(d.Name(), humanize.Bytes(d.Size()), d.URL(), d.IndexPath())
			}
			tbl.Print()

			return nil
		},
	}
}
