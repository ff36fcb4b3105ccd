// Copyright 2025 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package folding implements headword normalization for DICT indexes.
package folding

import (
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// isAlnumSpace reports whether r is kept when all characters are not
// significant.
func isAlnumSpace(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r)
}

// AlnumSpace returns a [transform.Transformer] that removes every rune that
// is neither a letter, a digit, nor whitespace.
func AlnumSpace() transform.Transformer {
	return runes.Remove(runes.Predicate(func(r rune) bool {
		return !isAlnumSpace(r)
	}))
}

// CaseFolder returns a [transform.Transformer] that performs Unicode default
// case folding. Unlike lower casing, folding expands characters such as
// 'ß' to "ss".
func CaseFolder() transform.Transformer {
	return cases.Fold()
}

// New returns a function that creates a new [transform.Transformer] for the
// given normalization policy. Transformers are stateful so a new one must be
// created for each string.
func New(allCharacters, caseSensitive bool) func() transform.Transformer {
	return func() transform.Transformer {
		var t []transform.Transformer
		if !allCharacters {
			t = append(t, AlnumSpace())
		}
		if !caseSensitive {
			t = append(t, CaseFolder())
		}
		switch len(t) {
		case 0:
			return transform.Nop
		case 1:
			return t[0]
		default:
			return transform.Chain(t...)
		}
	}
}
