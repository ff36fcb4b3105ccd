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

package idx_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/klauspost/compress/gzip"

	"github.com/ianlewis/go-dictd/idx"
	"github.com/ianlewis/go-dictd/internal/testutil"
)

// trackingReader records whether it was closed.
type trackingReader struct {
	io.Reader
	closed bool
}

func (r *trackingReader) Close() error {
	r.closed = true
	return nil
}

func newIndex(t *testing.T, data string, lazy bool) *idx.Index {
	t.Helper()

	index, err := idx.New(io.NopCloser(strings.NewReader(data)), &idx.Options{
		Lazy: lazy,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return index
}

func makeIndex(words ...*idx.Word) string {
	return string(testutil.MakeIndex(words))
}

// TestNew tests reading a complete index.
func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		words    []*idx.Word
		settings idx.Settings
		expected []*idx.Word
	}{
		{
			name: "sorted",
			words: []*idx.Word{
				{Word: "foo", Offset: 0, Size: 1},
				{Word: "bar", Offset: 1, Size: 1},
				{Word: "baz", Offset: 2, Size: 1},
			},
			expected: []*idx.Word{
				{Word: "bar", Offset: 1, Size: 1},
				{Word: "baz", Offset: 2, Size: 1},
				{Word: "foo", Offset: 0, Size: 1},
			},
		},
		{
			name: "duplicates keep file order",
			words: []*idx.Word{
				{Word: "foo", Offset: 0, Size: 1},
				{Word: "bar", Offset: 1, Size: 1},
				{Word: "foo", Offset: 2, Size: 1},
				{Word: "Foo", Offset: 3, Size: 1},
			},
			expected: []*idx.Word{
				{Word: "bar", Offset: 1, Size: 1},
				{Word: "foo", Offset: 0, Size: 1},
				{Word: "foo", Offset: 2, Size: 1},
				{Word: "foo", Original: "Foo", Offset: 3, Size: 1},
			},
		},
		{
			name: "case folding",
			words: []*idx.Word{
				{Word: "Straße", Offset: 0, Size: 1},
				{Word: "ΣΊΣΥΦΟΣ", Offset: 1, Size: 1},
			},
			expected: []*idx.Word{
				{Word: "strasse", Original: "Straße", Offset: 0, Size: 1},
				{Word: "σίσυφοσ", Original: "ΣΊΣΥΦΟΣ", Offset: 1, Size: 1},
			},
		},
		{
			name: "punctuation removed",
			words: []*idx.Word{
				{Word: "rock'n'roll", Offset: 0, Size: 1},
				{Word: "hoge fuga", Offset: 1, Size: 1},
			},
			expected: []*idx.Word{
				{Word: "hoge fuga", Offset: 1, Size: 1},
				{Word: "rocknroll", Original: "rock'n'roll", Offset: 0, Size: 1},
			},
		},
		{
			name: "original column kept",
			words: []*idx.Word{
				{Word: "Hoge!", Original: "HOGE", Offset: 0, Size: 1},
			},
			expected: []*idx.Word{
				{Word: "hoge", Original: "HOGE", Offset: 0, Size: 1},
			},
		},
		{
			name: "metadata not normalized",
			words: []*idx.Word{
				{Word: "00-database-short", Offset: 0, Size: 1},
				{Word: "00databaseURL", Offset: 1, Size: 1},
				{Word: "Foo", Offset: 2, Size: 1},
			},
			expected: []*idx.Word{
				{Word: "00-database-short", Offset: 0, Size: 1},
				{Word: "00databaseURL", Offset: 1, Size: 1},
				{Word: "foo", Original: "Foo", Offset: 2, Size: 1},
			},
		},
		{
			name: "allchars",
			words: []*idx.Word{
				{Word: "00-database-allchars", Offset: 0, Size: 0},
				{Word: "Foo!", Offset: 0, Size: 1},
			},
			settings: idx.Settings{AllCharacters: true},
			expected: []*idx.Word{
				{Word: "00-database-allchars", Offset: 0, Size: 0},
				{Word: "foo!", Original: "Foo!", Offset: 0, Size: 1},
			},
		},
		{
			name: "old allchars",
			words: []*idx.Word{
				{Word: "00databaseallchars", Offset: 0, Size: 0},
				{Word: "foo!", Offset: 0, Size: 1},
			},
			settings: idx.Settings{AllCharacters: true},
			expected: []*idx.Word{
				{Word: "00databaseallchars", Offset: 0, Size: 0},
				{Word: "foo!", Offset: 0, Size: 1},
			},
		},
		{
			name: "case sensitive",
			words: []*idx.Word{
				{Word: "00-database-case-sensitive", Offset: 0, Size: 0},
				{Word: "Foo!", Offset: 0, Size: 1},
			},
			settings: idx.Settings{CaseSensitive: true},
			expected: []*idx.Word{
				{Word: "00-database-case-sensitive", Offset: 0, Size: 0},
				{Word: "Foo", Original: "Foo!", Offset: 0, Size: 1},
			},
		},
		{
			name: "old case sensitive and allchars",
			words: []*idx.Word{
				{Word: "00databaseallchars", Offset: 0, Size: 0},
				{Word: "00databasecasesensitive", Offset: 0, Size: 0},
				{Word: "Foo!", Offset: 0, Size: 1},
			},
			settings: idx.Settings{AllCharacters: true, CaseSensitive: true},
			expected: []*idx.Word{
				{Word: "00databaseallchars", Offset: 0, Size: 0},
				{Word: "00databasecasesensitive", Offset: 0, Size: 0},
				{Word: "Foo!", Offset: 0, Size: 1},
			},
		},
		{
			name: "entries before metadata renormalized",
			words: []*idx.Word{
				{Word: "A.B", Offset: 0, Size: 1},
				{Word: "00-database-allchars", Offset: 0, Size: 0},
				{Word: "00-database-case-sensitive", Offset: 0, Size: 0},
				{Word: "C.D", Offset: 1, Size: 1},
			},
			settings: idx.Settings{AllCharacters: true, CaseSensitive: true},
			expected: []*idx.Word{
				{Word: "00-database-allchars", Offset: 0, Size: 0},
				{Word: "00-database-case-sensitive", Offset: 0, Size: 0},
				{Word: "A.B", Offset: 0, Size: 1},
				{Word: "C.D", Offset: 1, Size: 1},
			},
		},
		{
			name:     "empty",
			words:    nil,
			expected: nil,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			index := newIndex(t, makeIndex(test.words...), false)

			if !index.Loaded() {
				t.Fatalf("Loaded: expected true")
			}
			if diff := cmp.Diff(test.settings, index.Settings()); diff != "" {
				t.Fatalf("Settings (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(test.expected, index.Words(), cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("Words (-want, +got):\n%s", diff)
			}
			if diff := cmp.Diff(len(test.expected), index.Len()); diff != "" {
				t.Fatalf("Len (-want, +got):\n%s", diff)
			}
		})
	}
}

// TestNew_invalid tests reading malformed indexes.
func TestNew_invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		err  error
	}{
		{
			name: "missing column",
			data: "foo\tA\tB\nbar\tA\n",
			err:  idx.ErrMissingColumn,
		},
		{
			name: "blank line",
			data: "foo\tA\tB\n\nbar\tA\tB\n",
			err:  idx.ErrMissingColumn,
		},
		{
			name: "invalid character",
			data: "foo\tA\tB\nbar\tA\t!\n",
			err:  idx.ErrInvalidCharacter,
		},
		{
			name: "overflow",
			data: "foo\tA\tQAAAAAAAAAA\n",
			err:  idx.ErrInvalidFileFormat,
		},
		{
			name: "bad metadata line",
			data: "00-database-short\tA\n",
			err:  idx.ErrMissingColumn,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			r := &trackingReader{Reader: strings.NewReader(test.data)}
			_, err := idx.New(r, nil)
			if diff := cmp.Diff(test.err, err, cmpopts.EquateErrors()); diff != "" {
				t.Fatalf("New error (-want, +got):\n%s", diff)
			}
			if !r.closed {
				t.Fatalf("reader not closed")
			}
		})
	}
}

// TestIndex_Search tests Index.Search.
func TestIndex_Search(t *testing.T) {
	t.Parallel()

	data := makeIndex(
		&idx.Word{Word: "00-database-short", Offset: 0, Size: 5},
		&idx.Word{Word: "bar", Offset: 5, Size: 1},
		&idx.Word{Word: "baz", Offset: 6, Size: 1},
		&idx.Word{Word: "foo", Offset: 7, Size: 1},
		&idx.Word{Word: "Foo", Offset: 8, Size: 1},
		&idx.Word{Word: "straße", Offset: 9, Size: 1},
	)

	tests := []struct {
		name     string
		query    string
		fuzzy    bool
		expected []*idx.Word
	}{
		{
			name:  "exact",
			query: "bar",
			expected: []*idx.Word{
				{Word: "bar", Offset: 5, Size: 1},
			},
		},
		{
			name:  "duplicates",
			query: "FOO",
			expected: []*idx.Word{
				{Word: "foo", Offset: 7, Size: 1},
				{Word: "foo", Original: "Foo", Offset: 8, Size: 1},
			},
		},
		{
			name:     "no match",
			query:    "apples",
			expected: nil,
		},
		{
			name:  "folded query",
			query: "Strasse",
			expected: []*idx.Word{
				{Word: "strasse", Original: "straße", Offset: 9, Size: 1},
			},
		},
		{
			name:  "folded entry",
			query: "straße",
			expected: []*idx.Word{
				{Word: "strasse", Original: "straße", Offset: 9, Size: 1},
			},
		},
		{
			name:  "punctuation in query",
			query: "b-a-r!",
			expected: []*idx.Word{
				{Word: "bar", Offset: 5, Size: 1},
			},
		},
		{
			name:  "metadata",
			query: "00-database-short",
			expected: []*idx.Word{
				{Word: "00-database-short", Offset: 0, Size: 5},
			},
		},
		{
			name:  "fuzzy",
			query: "bas",
			fuzzy: true,
			expected: []*idx.Word{
				{Word: "bar", Offset: 5, Size: 1},
				{Word: "baz", Offset: 6, Size: 1},
			},
		},
		{
			name:  "fuzzy insertion",
			query: "fo",
			fuzzy: true,
			expected: []*idx.Word{
				{Word: "foo", Offset: 7, Size: 1},
				{Word: "foo", Original: "Foo", Offset: 8, Size: 1},
			},
		},
		{
			name:     "fuzzy no match",
			query:    "apples",
			fuzzy:    true,
			expected: nil,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			index := newIndex(t, data, false)
			got, err := index.Search(test.query, test.fuzzy)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if diff := cmp.Diff(test.expected, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("Search(%q, %v) (-want, +got):\n%s", test.query, test.fuzzy, diff)
			}
		})
	}
}

// lazyTestIndex is an index with metadata followed by regular entries.
var lazyTestIndex = makeIndex(
	&idx.Word{Word: "00-database-allchars", Offset: 0, Size: 0},
	&idx.Word{Word: "00-database-short", Offset: 0, Size: 5},
	&idx.Word{Word: "Zebra!", Offset: 5, Size: 1},
	&idx.Word{Word: "apple", Offset: 6, Size: 1},
	&idx.Word{Word: "bar", Offset: 7, Size: 1},
	&idx.Word{Word: "baz", Offset: 8, Size: 1},
	&idx.Word{Word: "Apple", Offset: 9, Size: 1},
	&idx.Word{Word: "zebra!", Offset: 10, Size: 1},
)

// TestNew_lazy tests that a lazy index stops after the metadata.
func TestNew_lazy(t *testing.T) {
	t.Parallel()

	r := &trackingReader{Reader: strings.NewReader(lazyTestIndex)}
	index, err := idx.New(r, &idx.Options{Lazy: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if index.Loaded() {
		t.Fatalf("Loaded: expected false")
	}
	if r.closed {
		t.Fatalf("reader closed before load")
	}
	if diff := cmp.Diff(idx.Settings{AllCharacters: true}, index.Settings()); diff != "" {
		t.Fatalf("Settings (-want, +got):\n%s", diff)
	}

	// The metadata and the line that ended it.
	want := []*idx.Word{
		{Word: "00-database-allchars", Offset: 0, Size: 0},
		{Word: "00-database-short", Offset: 0, Size: 5},
		{Word: "zebra!", Original: "Zebra!", Offset: 5, Size: 1},
	}
	if diff := cmp.Diff(want, index.Words()); diff != "" {
		t.Fatalf("Words (-want, +got):\n%s", diff)
	}

	// A partially read index can't be searched.
	_, err = index.Search("apple", false)
	if diff := cmp.Diff(idx.ErrNotLoaded, err, cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("Search error (-want, +got):\n%s", diff)
	}

	// Metadata is available before Load.
	wantMeta := []*idx.Word{
		{Word: "00-database-short", Offset: 0, Size: 5},
	}
	if diff := cmp.Diff(wantMeta, index.Metadata("00-database-short")); diff != "" {
		t.Fatalf("Metadata (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff([]*idx.Word(nil), index.Metadata("zebra!")); diff != "" {
		t.Fatalf("Metadata (-want, +got):\n%s", diff)
	}

	if err := index.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !index.Loaded() {
		t.Fatalf("Loaded: expected true")
	}
	if !r.closed {
		t.Fatalf("reader not closed after load")
	}

	got, err := index.Search("apple", false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	wantApple := []*idx.Word{
		{Word: "apple", Offset: 6, Size: 1},
		{Word: "apple", Original: "Apple", Offset: 9, Size: 1},
	}
	if diff := cmp.Diff(wantApple, got); diff != "" {
		t.Fatalf("Search (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff(8, index.Len()); diff != "" {
		t.Fatalf("Len (-want, +got):\n%s", diff)
	}

	// Load is a no-op once loaded.
	if err := index.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(8, index.Len()); diff != "" {
		t.Fatalf("Len (-want, +got):\n%s", diff)
	}
}

// TestIndex_LoadAndSearch tests that a lazily loaded index returns the same
// results as a fully loaded one.
func TestIndex_LoadAndSearch(t *testing.T) {
	t.Parallel()

	full := newIndex(t, lazyTestIndex, false)

	for _, w := range full.Words() {
		for _, fuzzy := range []bool{false, true} {
			for _, query := range []string{w.Word, w.Headword()} {
				expected, err := full.Search(query, fuzzy)
				if err != nil {
					t.Fatalf("Search(%q, %v): %v", query, fuzzy, err)
				}
				if len(expected) == 0 {
					t.Fatalf("Search(%q, %v): no results", query, fuzzy)
				}

				lazy := newIndex(t, lazyTestIndex, true)
				got, err := lazy.LoadAndSearch(query, fuzzy)
				if err != nil {
					t.Fatalf("LoadAndSearch(%q, %v): %v", query, fuzzy, err)
				}
				if diff := cmp.Diff(expected, got); diff != "" {
					t.Errorf("LoadAndSearch(%q, %v) (-want, +got):\n%s", query, fuzzy, diff)
				}
			}
		}
	}
}

// TestIndex_Load_noMetadata tests a lazy index without metadata.
func TestIndex_Load_noMetadata(t *testing.T) {
	t.Parallel()

	index := newIndex(t, makeIndex(
		&idx.Word{Word: "foo", Offset: 0, Size: 1},
		&idx.Word{Word: "bar", Offset: 1, Size: 1},
	), true)

	if !index.Loaded() {
		t.Fatalf("Loaded: expected true")
	}
	if diff := cmp.Diff(2, index.Len()); diff != "" {
		t.Fatalf("Len (-want, +got):\n%s", diff)
	}
}

// TestIndex_Load_error tests that a failed load is reported on every call.
func TestIndex_Load_error(t *testing.T) {
	t.Parallel()

	data := "00-database-short\tA\tF\nfoo\tF\tB\nbar\tG\tB\nbaz\tH\n"
	index := newIndex(t, data, true)
	if diff := cmp.Diff(2, index.Len()); diff != "" {
		t.Fatalf("Len (-want, +got):\n%s", diff)
	}

	for i := 0; i < 2; i++ {
		err := index.Load()
		if diff := cmp.Diff(idx.ErrMissingColumn, err, cmpopts.EquateErrors()); diff != "" {
			t.Fatalf("Load error (-want, +got):\n%s", diff)
		}
		if index.Loaded() {
			t.Fatalf("Loaded: expected false")
		}
		// Entries read during the failed load are discarded.
		if diff := cmp.Diff(2, index.Len()); diff != "" {
			t.Fatalf("Len (-want, +got):\n%s", diff)
		}
	}

	_, err := index.LoadAndSearch("foo", false)
	if diff := cmp.Diff(idx.ErrMissingColumn, err, cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("LoadAndSearch error (-want, +got):\n%s", diff)
	}

	_, err = index.Search("foo", false)
	if diff := cmp.Diff(idx.ErrMissingColumn, err, cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("Search error (-want, +got):\n%s", diff)
	}
}

// TestIndex_Close tests closing a lazy index before it is loaded.
func TestIndex_Close(t *testing.T) {
	t.Parallel()

	r := &trackingReader{Reader: strings.NewReader(lazyTestIndex)}
	index, err := idx.New(r, &idx.Options{Lazy: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := index.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !r.closed {
		t.Fatalf("reader not closed")
	}

	err = index.Load()
	if diff := cmp.Diff(idx.ErrIndexClosed, err, cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("Load error (-want, +got):\n%s", diff)
	}

	_, err = index.Search("apple", false)
	if diff := cmp.Diff(idx.ErrIndexClosed, err, cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("Search error (-want, +got):\n%s", diff)
	}

	// Closing again is a no-op.
	if err := index.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

// TestNewFromPath tests opening index files by path.
func TestNewFromPath(t *testing.T) {
	t.Parallel()

	data := []byte(makeIndex(
		&idx.Word{Word: "foo", Offset: 0, Size: 1},
		&idx.Word{Word: "bar", Offset: 1, Size: 1},
	))

	var gz bytes.Buffer
	z := gzip.NewWriter(&gz)
	if _, err := z.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := z.Close(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		file string
		data []byte
	}{
		{
			name: "plain",
			file: "dictionary.index",
			data: data,
		},
		{
			name: "gzip",
			file: "dictionary.index.gz",
			data: gz.Bytes(),
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), test.file)
			if err := os.WriteFile(path, test.data, 0o600); err != nil {
				t.Fatal(err)
			}

			index, err := idx.NewFromPath(path, nil)
			if err != nil {
				t.Fatalf("NewFromPath: %v", err)
			}
			defer index.Close()

			want := []*idx.Word{
				{Word: "bar", Offset: 1, Size: 1},
				{Word: "foo", Offset: 0, Size: 1},
			}
			if diff := cmp.Diff(want, index.Words()); diff != "" {
				t.Fatalf("Words (-want, +got):\n%s", diff)
			}
		})
	}
}

// TestNewFromPath_missing tests opening a missing index file.
func TestNewFromPath_missing(t *testing.T) {
	t.Parallel()

	_, err := idx.NewFromPath(filepath.Join(t.TempDir(), "missing.index"), nil)
	if diff := cmp.Diff(os.ErrNotExist, err, cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("NewFromPath error (-want, +got):\n%s", diff)
	}
}
