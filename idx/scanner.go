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

package idx

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxLineLength is the longest .index line the Scanner will accept.
const maxLineLength = 1 << 20

// ParseLine parses a single tab separated .index line. lineNumber is only
// used for error reporting.
func ParseLine(line string, lineNumber int) (*Word, error) {
	line = strings.TrimSuffix(line, "\r")
	cols := strings.SplitN(line, "\t", 4)
	if len(cols) < 3 {
		return nil, &MissingColumnError{Line: lineNumber}
	}

	offset, err := DecodeNumber(cols[1])
	if err != nil {
		return nil, fmt.Errorf("line %d: offset: %w", lineNumber, err)
	}
	size, err := DecodeNumber(cols[2])
	if err != nil {
		return nil, fmt.Errorf("line %d: size: %w", lineNumber, err)
	}

	w := &Word{
		Word:   cols[0],
		Offset: offset,
		Size:   size,
	}
	if len(cols) == 4 {
		w.Original = cols[3]
	}
	return w, nil
}

// Scanner scans an index from start to end.
type Scanner struct {
	r    io.ReadCloser
	s    *bufio.Scanner
	line int
	word *Word
	err  error
}

// NewScanner return a new index scanner that scans the index from start to
// end. The Scanner assumes ownership of the reader and should be closed with the
// Close method.
func NewScanner(r io.ReadCloser) *Scanner {
	s := &Scanner{
		r: r,
		s: bufio.NewScanner(r),
	}
	s.s.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	return s
}

// Scan advances the index to the next index entry. It returns false if the
// scan stops either by reaching the end of the index or an error.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	if !s.s.Scan() {
		return false
	}
	s.line++
	s.word, s.err = ParseLine(s.s.Text(), s.line)
	return s.err == nil
}

// Err returns the first error encountered.
func (s *Scanner) Err() error {
	if s.err != nil {
		return s.err
	}
	if err := s.s.Err(); err != nil {
		return fmt.Errorf("reading index line %d: %w", s.line+1, err)
	}
	return nil
}

// Line returns the 1-based line number of the last scanned line.
func (s *Scanner) Line() int {
	return s.line
}

// Close closes the underlying reader.
func (s *Scanner) Close() error {
	err := s.r.Close()
	if err != nil {
		return fmt.Errorf("closing index file: %w", err)
	}
	return nil
}

// Word gets the entry for the last scanned line. The headword is returned as
// it appears in the file.
func (s *Scanner) Word() *Word {
	return s.word
}
