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

package idx

import (
	"errors"
	"fmt"

	"github.com/ianlewis/go-dictd/dict"
)

var (
	// ErrInvalidCharacter indicates a character outside of the numeral
	// alphabet in an offset or size field.
	ErrInvalidCharacter = errors.New("invalid character")

	// ErrMissingColumn indicates an index line with fewer than three
	// columns.
	ErrMissingColumn = errors.New("missing column in index")

	// ErrInvalidFileFormat indicates a structurally invalid index file. It is
	// the same error as dict.ErrInvalidFileFormat.
	ErrInvalidFileFormat = dict.ErrInvalidFileFormat
)

// InvalidCharacterError is returned when a numeral contains a character
// outside of the numeral alphabet.
type InvalidCharacterError struct {
	// Char is the offending character.
	Char rune

	// Pos is the byte position of Char in the numeral.
	Pos int
}

func (e *InvalidCharacterError) Error() string {
	return fmt.Sprintf("%v %q at position %d", ErrInvalidCharacter, e.Char, e.Pos)
}

// Unwrap returns ErrInvalidCharacter.
func (e *InvalidCharacterError) Unwrap() error {
	return ErrInvalidCharacter
}

// MissingColumnError is returned when an index line is missing one of the
// headword, offset, or size columns.
type MissingColumnError struct {
	// Line is the 1-based line number in the index file.
	Line int
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%v: line %d", ErrMissingColumn, e.Line)
}

// Unwrap returns ErrMissingColumn.
func (e *MissingColumnError) Unwrap() error {
	return ErrMissingColumn
}
