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

package dict

import (
	"errors"
	"fmt"
	"io"
)

// RawReader reads definitions from an uncompressed .dict file.
type RawReader struct {
	r    io.ReaderAt
	size uint64

	// c is closed by Close if set.
	c io.Closer
}

// NewRawReader returns a new RawReader reading the size bytes of r.
func NewRawReader(r io.ReaderAt, size int64) *RawReader {
	return &RawReader{
		r:    r,
		size: uint64(max(size, 0)),
	}
}

// Fetch returns the size bytes of definition text at offset.
func (d *RawReader) Fetch(offset, size uint64) (string, error) {
	if err := checkFetch(offset, size, d.size); err != nil {
		return "", err
	}

	b := make([]byte, size)
	// NOTE: ReadAt returns an error if fewer than size bytes are read.
	//nolint:gosec // offset is bounds checked above.
	n, err := d.r.ReadAt(b, int64(offset))
	if n < len(b) {
		if err == nil || errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return "", fmt.Errorf("reading dictionary: %w", err)
	}

	return toString(b)
}

// Size returns the size of the dictionary data.
func (d *RawReader) Size() uint64 {
	return d.size
}

// Close closes the underlying file if the reader was created by Open.
func (d *RawReader) Close() error {
	if d.c == nil {
		return nil
	}
	if err := d.c.Close(); err != nil {
		return fmt.Errorf("closing dict file: %w", err)
	}
	return nil
}
