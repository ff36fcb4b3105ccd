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

package index

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/agext/levenshtein"
)

// MaxFuzzyDistance is the largest edit distance accepted by Fuzzy.
const MaxFuzzyDistance = 1

// Index is a generic sorted array index.
type Index[V fmt.Stringer] struct {
	// index is sorted by key. Values with equal keys are kept in the order in
	// which they were added.
	index []V

	cmp func(string, string) int
}

// NewIndex creates an index from the given slice and comparison function.
// cmp(a, b) should return a negative number when a < b, a positive number when
// a > b and zero when a == b or a and b are incomparable in the sense of a
// strict weak ordering.
func NewIndex[V fmt.Stringer](index []V, cmp func(string, string) int) *Index[V] {
	idx := &Index[V]{
		cmp: cmp,
	}
	idx.Append(index...)
	return idx
}

// Append adds values to the index. Values that compare equal to values
// already in the index are ordered after them.
func (idx *Index[V]) Append(values ...V) {
	if len(values) == 0 {
		return
	}
	sorted := make([]V, 0, len(idx.index)+len(values))
	sorted = append(sorted, idx.index...)
	sorted = append(sorted, values...)
	slices.SortStableFunc(sorted, func(a, b V) int {
		return idx.cmp(a.String(), b.String())
	})
	idx.index = sorted
}

// Len returns the number of values in the index.
func (idx *Index[V]) Len() int {
	return len(idx.index)
}

// All returns all values in sorted order.
func (idx *Index[V]) All() []V {
	return slices.Clone(idx.index)
}

// Search performs a binary search over the index and returns matching words.
func (idx *Index[V]) Search(query string) []V {
	start := 0
	end := len(idx.index) - 1
	for start <= end {
		pivot := start + (end-start)/2
		c := idx.cmp(idx.index[pivot].String(), query)
		switch {
		case c < 0:
			start = pivot + 1
		case c > 0:
			end = pivot - 1
		default:
			// Multiple values may have the same key. Expand the match in both
			// directions to find all of them.
			i := pivot
			for i > 0 && idx.cmp(idx.index[i-1].String(), query) == 0 {
				i--
			}
			j := pivot
			for j+1 < len(idx.index) && idx.cmp(idx.index[j+1].String(), query) == 0 {
				j++
			}
			return slices.Clone(idx.index[i : j+1])
		}
	}

	return nil
}

// Fuzzy returns all values whose key is within MaxFuzzyDistance edits of the
// query, in index order.
func (idx *Index[V]) Fuzzy(query string) []V {
	qLen := utf8.RuneCountInString(query)

	var result []V
	for _, v := range idx.index {
		key := v.String()
		d := utf8.RuneCountInString(key) - qLen
		if d > MaxFuzzyDistance || -d > MaxFuzzyDistance {
			continue
		}
		if levenshtein.Distance(query, key, nil) <= MaxFuzzyDistance {
			result = append(result, v)
		}
	}
	return result
}
