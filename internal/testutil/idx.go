// Copyright 2024 Google LLC
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

package testutil

import (
	"strings"

	"github.com/ianlewis/go-dictd/idx"
)

// MakeIndex make a test index given a list of words. The Word field is
// written as the headword column and Original, if set, as the fourth column.
func MakeIndex(words []*idx.Word) []byte {
	var b strings.Builder
	for _, w := range words {
		b.WriteString(w.Word)
		b.WriteByte('\t')
		b.WriteString(idx.EncodeNumber(w.Offset))
		b.WriteByte('\t')
		b.WriteString(idx.EncodeNumber(w.Size))
		if w.Original != "" {
			b.WriteByte('\t')
			b.WriteString(w.Original)
		}
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
