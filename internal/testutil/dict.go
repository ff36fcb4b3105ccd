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

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ianlewis/go-dictzip"

	"github.com/ianlewis/go-dictd/idx"
)

// Definition is a test dictionary entry.
type Definition struct {
	// Headword is written to the .index file as is.
	Headword string

	// Original is the optional fourth .index column.
	Original string

	// Text is the definition written to the .dict file.
	Text string
}

// MakeDictOptions are options for writing test dict files.
type MakeDictOptions struct {
	// Ext is an optional file extension for the dict file. Defaults to
	// '.dict.dz' if DictZip is true. Otherwise '.dict'.
	Ext string

	// DictZip indicates that the dict file should be compressed with DictZip.
	DictZip bool
}

func (o *MakeDictOptions) GetExt() string {
	if o != nil {
		if o.Ext != "" {
			return o.Ext
		}
		if o.DictZip {
			return ".dict.dz"
		}
	}
	return ".dict"
}

// MakeDict lays out the definitions in a .dict file and returns the file
// data along with the index words that point into it.
func MakeDict(defs []*Definition) ([]byte, []*idx.Word) {
	var b []byte
	var words []*idx.Word
	for _, d := range defs {
		words = append(words, &idx.Word{
			Word:     d.Headword,
			Original: d.Original,
			Offset:   uint64(len(b)),
			Size:     uint64(len(d.Text)),
		})
		b = append(b, d.Text...)
	}
	return b, words
}

// WriteDict writes data to path, compressing it with dictzip if
// opts.DictZip is true.
func WriteDict(t *testing.T, path string, data []byte, opts *MakeDictOptions) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if opts != nil && opts.DictZip {
		z, err := dictzip.NewWriter(f)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := z.Write(data); err != nil {
			t.Fatal(err)
		}
		if err := z.Close(); err != nil {
			t.Fatal(err)
		}
	} else {
		if _, err := f.Write(data); err != nil {
			t.Fatal(err)
		}
	}

	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

// MakeTempDict creates a temporary .dict file and returns the file.
func MakeTempDict(t *testing.T, data []byte, opts *MakeDictOptions) *os.File {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dictionary"+opts.GetExt())
	WriteDict(t, path, data, opts)

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

// MakeDictionary writes a .index and .dict file pair named name to dir and
// returns the path to the .index file.
func MakeDictionary(t *testing.T, dir, name string, defs []*Definition, opts *MakeDictOptions) string {
	t.Helper()

	data, words := MakeDict(defs)
	indexPath := filepath.Join(dir, name+".index")
	if err := os.WriteFile(indexPath, MakeIndex(words), 0o600); err != nil {
		t.Fatal(err)
	}
	WriteDict(t, filepath.Join(dir, name+opts.GetExt()), data, opts)
	return indexPath
}
