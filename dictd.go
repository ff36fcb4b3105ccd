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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ianlewis/go-dictd/dict"
	"github.com/ianlewis/go-dictd/idx"
)

// ErrNoDict indicates that no .dict file was found for an index.
var ErrNoDict = errors.New("no dict file found")

// Metadata keys. Each has an older form without hyphens.
const (
	keyShort      = "00-database-short"
	keyInfo       = "00-database-info"
	keyURL        = "00-database-url"
	keyMIMEHeader = "00-database-mime-header"
)

// dictExts are the extensions of the dict file tried, in order.
var dictExts = []string{".dict.dz", ".dict", ".DICT.dz", ".DICT", ".dict.DZ", ".DICT.DZ"}

// Options are options for opening dictionaries.
type Options struct {
	// Lazy defers reading the bulk of the index until the first search.
	// Metadata is available immediately.
	Lazy bool

	// ChunkCacheSize is the number of inflated dictzip chunks to cache.
	ChunkCacheSize int
}

// DefaultOptions is the default options for opening dictionaries.
var DefaultOptions = &Options{
	Lazy:           false,
	ChunkCacheSize: 0,
}

// Dictionary is a DICT dictionary. A Dictionary is safe for concurrent use.
type Dictionary struct {
	mu sync.Mutex

	index *idx.Index
	dict  dict.Reader

	indexPath string
	dictPath  string

	shortName  string
	info       string
	url        string
	mimeHeader string
}

// OpenAll opens all dictionaries under a directory. This function will return
// all successfully opened dictionaries along with any errors that occurred.
func OpenAll(path string, options *Options) ([]*Dictionary, []error) {
	var dicts []*Dictionary
	var errs []error
	if err := filepath.WalkDir(path, func(path string, info fs.DirEntry, err error) error {
		// Walking the file path will ignore errors.
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if !info.IsDir() && isIndexFile(info.Name()) {
			d, err := Open(path, options)
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			dicts = append(dicts, d)
		}
		return nil
	}); err != nil {
		errs = append(errs, err)
		return nil, errs
	}
	return dicts, errs
}

// isIndexFile reports whether name is a .index or .index.gz file.
func isIndexFile(name string) bool {
	name = strings.ToLower(name)
	return strings.HasSuffix(name, ".index") || strings.HasSuffix(name, ".index.gz")
}

// Open opens a DICT dictionary from the given .index file path. The .dict
// or .dict.dz file is expected to be in the same directory with the same
// base name.
func Open(path string, options *Options) (*Dictionary, error) {
	if options == nil {
		options = DefaultOptions
	}

	if !isIndexFile(path) {
		return nil, fmt.Errorf("bad extension: %v", filepath.Ext(path))
	}

	dictPath, err := findDictPath(path)
	if err != nil {
		return nil, err
	}

	index, err := idx.NewFromPath(path, &idx.Options{
		Lazy: options.Lazy,
	})
	if err != nil {
		return nil, err
	}

	r, err := dict.Open(dictPath, &dict.Options{
		ChunkCacheSize: options.ChunkCacheSize,
	})
	if err != nil {
		_ = index.Close()
		return nil, err
	}

	d := &Dictionary{
		index:     index,
		dict:      r,
		indexPath: path,
		dictPath:  dictPath,
	}

	for _, m := range []struct {
		key string
		val *string
	}{
		{keyShort, &d.shortName},
		{keyInfo, &d.info},
		{keyURL, &d.url},
		{keyMIMEHeader, &d.mimeHeader},
	} {
		*m.val, err = d.metadata(m.key)
		if err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
	}

	return d, nil
}

// findDictPath returns the path of the dict file for the index at
// indexPath.
func findDictPath(indexPath string) (string, error) {
	baseName := indexPath
	if strings.EqualFold(filepath.Ext(baseName), ".gz") {
		baseName = strings.TrimSuffix(baseName, filepath.Ext(baseName))
	}
	baseName = strings.TrimSuffix(baseName, filepath.Ext(baseName))

	for _, ext := range dictExts {
		dictPath := baseName + ext
		if _, err := os.Stat(dictPath); err == nil {
			return dictPath, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrNoDict, baseName)
}

// metadata returns the value of the metadata entry with the given key. The
// first line of the definition is dropped if it repeats the key.
func (d *Dictionary) metadata(key string) (string, error) {
	oldKey := idx.OldMetadataPrefix + strings.ReplaceAll(strings.TrimPrefix(key, idx.MetadataPrefix), "-", "")
	for _, k := range []string{key, oldKey} {
		words := d.index.Metadata(k)
		if len(words) == 0 {
			continue
		}

		w := words[0]
		text, err := d.dict.Fetch(w.Offset, w.Size)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", k, err)
		}

		first, rest, _ := strings.Cut(text, "\n")
		if strings.TrimSpace(first) == k {
			text = rest
		}
		return strings.TrimSpace(text), nil
	}
	return "", nil
}

// ShortName returns the dictionary's short name.
func (d *Dictionary) ShortName() string {
	return d.shortName
}

// Info returns the dictionary's description.
func (d *Dictionary) Info() string {
	return d.info
}

// URL returns the dictionary's source URL.
func (d *Dictionary) URL() string {
	return d.url
}

// MIMEHeader returns the MIME header that describes the dictionary's
// definitions.
func (d *Dictionary) MIMEHeader() string {
	return d.mimeHeader
}

// IsHTML reports whether definitions are HTML.
func (d *Dictionary) IsHTML() bool {
	return strings.Contains(strings.ToLower(d.mimeHeader), "text/html")
}

// Name returns the short name of the dictionary, or the base name of the
// index file if it has none.
func (d *Dictionary) Name() string {
	if d.shortName != "" {
		return d.shortName
	}
	name := filepath.Base(d.indexPath)
	if strings.EqualFold(filepath.Ext(name), ".gz") {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// IndexPath returns the path to the dictionary's .index file.
func (d *Dictionary) IndexPath() string {
	return d.indexPath
}

// DictPath returns the path to the dictionary's .dict or .dict.dz file.
func (d *Dictionary) DictPath() string {
	return d.dictPath
}

// Size returns the uncompressed size of the dictionary's definitions.
func (d *Dictionary) Size() uint64 {
	return d.dict.Size()
}

// WordCount returns the number of index entries read so far. Lazily opened
// dictionaries report only the metadata entries until the first search.
func (d *Dictionary) WordCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.index.Len()
}

// Search performs an exact search of the dictionary for the given query and
// returns dictionary entries.
func (d *Dictionary) Search(query string) ([]*Entry, error) {
	return d.search(query, false)
}

// FuzzySearch returns dictionary entries whose headwords are within an edit
// distance of one of the query.
func (d *Dictionary) FuzzySearch(query string) ([]*Entry, error) {
	return d.search(query, true)
}

func (d *Dictionary) search(query string, fuzzy bool) ([]*Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	words, err := d.index.LoadAndSearch(query, fuzzy)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", d.indexPath, err)
	}

	html := d.IsHTML()
	var entries []*Entry
	for _, w := range words {
		text, err := d.dict.Fetch(w.Offset, w.Size)
		if err != nil {
			return nil, fmt.Errorf("reading definition of %q: %w", w.Headword(), err)
		}
		entries = append(entries, &Entry{
			title:      w.Headword(),
			definition: text,
			html:       html,
		})
	}
	return entries, nil
}

// Close closes the dictionary's files.
func (d *Dictionary) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return errors.Join(d.index.Close(), d.dict.Close())
}
