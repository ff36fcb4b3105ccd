// Copyright 2021 Google LLC
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

package dictd

import (
	"strings"

	"github.com/k3a/html2text"
)

// Entry is a dictionary entry.
type Entry struct {
	title      string
	definition string
	html       bool
}

// Title return the entry's title.
func (e *Entry) Title() string {
	return e.title
}

// Definition returns the entry's definition as it appears in the dictionary.
func (e *Entry) Definition() string {
	return e.definition
}

// HTML reports whether the definition is HTML.
func (e *Entry) HTML() bool {
	return e.html
}

// Text returns the definition as plain text.
func (e *Entry) Text() string {
	if e.html {
		return html2text.HTML2Text(e.definition)
	}
	return e.definition
}

// String returns a string representation of the Entry.
func (e *Entry) String() string {
	return e.title + "\n" + strings.TrimRight(e.Text(), "\n") + "\n"
}
