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
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/transform"

	"github.com/ianlewis/go-dictd/internal/folding"
	"github.com/ianlewis/go-dictd/internal/index"
)

// Sentinel headwords that carry database metadata.
const (
	MetadataPrefix    = "00-database-"
	OldMetadataPrefix = "00database"

	keyAllChars         = "00-database-allchars"
	keyOldAllChars      = "00databaseallchars"
	keyCaseSensitive    = "00-database-case-sensitive"
	keyOldCaseSensitive = "00databasecasesensitive"
)

// ErrIndexClosed is returned when resuming an index that was closed before
// it was fully loaded.
var ErrIndexClosed = errors.New("index closed")

// ErrNotLoaded is returned when searching a lazily opened index that has not
// been loaded.
var ErrNotLoaded = errors.New("index not loaded")

// Word is an .index file entry.
type Word struct {
	// Word is the normalized headword used for searching.
	Word string

	// Original is the headword as it should be displayed. It is empty when
	// it is the same as Word.
	Original string

	// Offset is the offset of the definition in the .dict file.
	Offset uint64

	// Size is the size of the definition in the .dict file.
	Size uint64
}

// String returns the normalized headword.
func (w *Word) String() string {
	return w.Word
}

// Headword returns the headword for display.
func (w *Word) Headword() string {
	if w.Original != "" {
		return w.Original
	}
	return w.Word
}

// IsMetadata reports whether headword is a database metadata sentinel.
func IsMetadata(headword string) bool {
	return strings.HasPrefix(headword, MetadataPrefix) || strings.HasPrefix(headword, OldMetadataPrefix)
}

// Settings are the normalization settings of a dictionary.
type Settings struct {
	// AllCharacters indicates that all characters in headwords are
	// significant. When false, characters that are not letters, digits, or
	// whitespace are removed.
	AllCharacters bool

	// CaseSensitive indicates that headwords are case sensitive. When false,
	// headwords are case folded.
	CaseSensitive bool
}

// Normalize returns the search key for headword under s. Metadata sentinels
// are never normalized.
func (s Settings) Normalize(headword string) (string, error) {
	if IsMetadata(headword) {
		return headword, nil
	}
	folder := folding.New(s.AllCharacters, s.CaseSensitive)
	folded, _, err := transform.String(folder(), headword)
	if err != nil {
		return "", fmt.Errorf("folding word %q: %w", headword, err)
	}
	return folded, nil
}

// Options are options for reading an index.
type Options struct {
	// Lazy stops parsing as soon as the dictionary settings are known. The
	// rest of the index is read by Load.
	Lazy bool
}

// DefaultOptions is the default options for an Index.
var DefaultOptions = &Options{
	Lazy: false,
}

// metadataState tracks the position of the parser relative to the metadata
// block at the start of the index.
type metadataState int

const (
	scanningMetadata metadataState = iota
	inMetadata
	resolved
)

// parseState tracks whether the index file has been fully read.
type parseState int

const (
	notStarted parseState = iota
	paused
	done
	failed
)

// Index is an in-memory search index built from an .index file.
type Index struct {
	// index is sorted by the normalized word value.
	index *index.Index[*Word]

	settings Settings
	meta     metadataState

	// pending holds entries read before the settings were resolved. Their
	// headwords are not yet normalized.
	pending []*Word

	state parseState

	// s is set only while state is paused.
	s *Scanner

	// err is set only while state is failed.
	err error
}

// New returns a new index by reading r. The Index takes ownership of r. If
// options.Lazy is true, r remains open until Load or Close is called.
func New(r io.ReadCloser, options *Options) (*Index, error) {
	if options == nil {
		options = DefaultOptions
	}

	idx := &Index{
		index: index.NewIndex[*Word](nil, strings.Compare),
		state: notStarted,
	}

	s := NewScanner(r)
	stopped, err := idx.parse(s, options.Lazy)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	if stopped {
		idx.s = s
		idx.state = paused
		return idx, nil
	}

	idx.state = done
	if err := s.Close(); err != nil {
		return nil, err
	}
	return idx, nil
}

// NewFromPath opens the .index file at path and returns a new index. Index
// files ending in .gz are decompressed.
func NewFromPath(path string, options *Options) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening index file: %w", err)
	}

	var r io.ReadCloser = f
	if strings.ToLower(filepath.Ext(path)) == ".gz" {
		z, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("creating index gzip reader: %w", err)
		}
		r = &gzipFile{Reader: z, f: f}
	}

	idx, err := New(r, options)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	return idx, nil
}

// gzipFile closes both the gzip reader and the underlying file.
type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	zErr := g.Reader.Close()
	fErr := g.f.Close()
	return errors.Join(zErr, fErr)
}

// parse reads words from s. If lazy is true, parse stops after the line
// that resolves the settings and returns true.
func (idx *Index) parse(s *Scanner, lazy bool) (bool, error) {
	var words []*Word
	for s.Scan() {
		w := s.Word()

		switch idx.meta {
		case scanningMetadata:
			if IsMetadata(w.Word) {
				idx.meta = inMetadata
			}
			idx.pending = append(idx.pending, w)
			continue
		case inMetadata:
			if IsMetadata(w.Word) {
				idx.pending = append(idx.pending, w)
				continue
			}
			idx.pending = append(idx.pending, w)
			if err := idx.resolve(); err != nil {
				return false, err
			}
			if lazy {
				return true, nil
			}
			continue
		case resolved:
		}

		if err := idx.normalize(w); err != nil {
			return false, fmt.Errorf("line %d: %w", s.Line(), err)
		}
		words = append(words, w)
	}
	if err := s.Err(); err != nil {
		return false, err
	}

	if idx.meta != resolved {
		if err := idx.resolve(); err != nil {
			return false, err
		}
	}
	idx.index.Append(words...)
	return false, nil
}

// resolve computes the settings from the buffered metadata entries and
// normalizes every buffered entry.
func (idx *Index) resolve() error {
	for _, w := range idx.pending {
		switch w.Word {
		case keyAllChars, keyOldAllChars:
			idx.settings.AllCharacters = true
		case keyCaseSensitive, keyOldCaseSensitive:
			idx.settings.CaseSensitive = true
		}
	}
	idx.meta = resolved

	for _, w := range idx.pending {
		if err := idx.normalize(w); err != nil {
			return err
		}
	}
	idx.index.Append(idx.pending...)
	idx.pending = nil
	return nil
}

// normalize replaces the word's headword with its search key, keeping the
// literal headword as the original if it changed.
func (idx *Index) normalize(w *Word) error {
	key, err := idx.settings.Normalize(w.Word)
	if err != nil {
		return err
	}
	if key != w.Word && w.Original == "" {
		w.Original = w.Word
	}
	w.Word = key
	return nil
}

// Settings returns the resolved settings of the dictionary.
func (idx *Index) Settings() Settings {
	return idx.settings
}

// Loaded reports whether the whole index file has been read.
func (idx *Index) Loaded() bool {
	return idx.state == done
}

// Len returns the number of entries currently in the index.
func (idx *Index) Len() int {
	return idx.index.Len()
}

// Words returns all entries currently in the index sorted by headword.
func (idx *Index) Words() []*Word {
	return idx.index.All()
}

// Load reads the rest of a lazily opened index. Load reads the file at most
// once; if reading fails the same error is returned by later calls and the
// entries read during the failed attempt are discarded.
func (idx *Index) Load() error {
	switch idx.state {
	case notStarted, done:
		return nil
	case failed:
		return idx.err
	case paused:
	}

	s := idx.s
	idx.s = nil

	// Parse into a copy so that a failure leaves the index unchanged.
	loaded := &Index{
		index:    index.NewIndex(idx.index.All(), strings.Compare),
		settings: idx.settings,
		meta:     idx.meta,
	}
	_, err := loaded.parse(s, false)
	closeErr := s.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		idx.state = failed
		idx.err = fmt.Errorf("loading index: %w", err)
		return idx.err
	}

	idx.index = loaded.index
	idx.state = done
	return nil
}

// Search performs a query of the index and returns matching words. The
// query is normalized using the dictionary settings. If fuzzy is true, words
// within an edit distance of one of the query are returned in index order.
// Searching a lazily opened index before Load returns ErrNotLoaded.
func (idx *Index) Search(query string, fuzzy bool) ([]*Word, error) {
	switch idx.state {
	case paused:
		return nil, ErrNotLoaded
	case failed:
		return nil, idx.err
	case notStarted, done:
	}

	key, err := idx.settings.Normalize(query)
	if err != nil {
		return nil, fmt.Errorf("folding query %q: %w", query, err)
	}
	if fuzzy {
		return idx.index.Fuzzy(key), nil
	}
	return idx.index.Search(key), nil
}

// Metadata returns the metadata entries with the given headword. The
// metadata block is always read, so Metadata works on a lazily opened index
// before Load. Headwords that are not metadata return nil.
func (idx *Index) Metadata(headword string) []*Word {
	if !IsMetadata(headword) {
		return nil
	}
	return idx.index.Search(headword)
}

// LoadAndSearch reads the rest of a lazily opened index and performs a
// query.
func (idx *Index) LoadAndSearch(query string, fuzzy bool) ([]*Word, error) {
	if err := idx.Load(); err != nil {
		return nil, err
	}
	return idx.Search(query, fuzzy)
}

// Close releases the index file of a lazily opened index that has not been
// loaded.
func (idx *Index) Close() error {
	if idx.state != paused {
		return nil
	}
	s := idx.s
	idx.s = nil
	idx.state = failed
	idx.err = ErrIndexClosed
	return s.Close()
}
