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

// Package dict implements reading .dict and .dict.dz files.
//
// A .dict file holds the definitions of a dictionary back to back. The
// offset and size of each definition are recorded in the .index file. A
// .dict.dz file is a .dict file compressed with dictzip, a gzip compatible
// format that compresses data in independent chunks to allow random access.
package dict

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// MaxFetchSize is the largest definition that can be read in a single
// Fetch.
const MaxFetchSize = 1 << 20

var (
	// ErrTooLarge indicates that the requested definition size exceeds
	// MaxFetchSize.
	ErrTooLarge = errors.New("definition too large")

	// ErrInvalidFileFormat indicates a malformed dictzip or index file.
	ErrInvalidFileFormat = errors.New("invalid file format")

	// ErrInvalidUTF8 indicates that a definition is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid utf-8")
)

// Reader reads definitions from a .dict or .dict.dz file.
type Reader interface {
	// Fetch returns the size bytes of definition text at offset.
	Fetch(offset, size uint64) (string, error)

	// Size returns the uncompressed size of the dictionary data.
	Size() uint64

	io.Closer
}

// Options are options for opening dict files.
type Options struct {
	// ChunkCacheSize is the number of inflated dictzip chunks to keep in
	// memory. Zero disables the cache. It has no effect on uncompressed
	// files.
	ChunkCacheSize int
}

// DefaultOptions is the default options for a dict file.
var DefaultOptions = &Options{
	ChunkCacheSize: 0,
}

// Open opens the dict file at path. Files with a .dz extension are read as
// dictzip files. The returned Reader takes ownership of the file.
func Open(path string, options *Options) (Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dict file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("opening dict file: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".dz" {
		d, err := NewDzReader(f, info.Size(), options)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		d.c = f
		return d, nil
	}

	r := NewRawReader(f, info.Size())
	r.c = f
	return r, nil
}

// checkFetch validates a request for size bytes at offset in data of
// length total.
func checkFetch(offset, size, total uint64) error {
	if size > MaxFetchSize {
		return fmt.Errorf("%w: %d bytes requested, maximum is %d", ErrTooLarge, size, MaxFetchSize)
	}
	if offset > total || size > total-offset {
		return fmt.Errorf("reading %d bytes at offset %d of %d: %w", size, offset, total, io.ErrUnexpectedEOF)
	}
	return nil
}

// toString converts definition data to a string.
func toString(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}
