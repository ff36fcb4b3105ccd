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
	"fmt"
	"math"
	"unicode/utf8"
)

const numeralAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// numeralValue returns the digit value of c in the index numeral alphabet.
func numeralValue(c byte) (uint64, bool) {
	switch {
	case 'A' <= c && c <= 'Z':
		return uint64(c - 'A'), true
	case 'a' <= c && c <= 'z':
		return uint64(c-'a') + 26, true
	case '0' <= c && c <= '9':
		return uint64(c-'0') + 52, true
	case c == '+':
		return 62, true
	case c == '/':
		return 63, true
	default:
		return 0, false
	}
}

// DecodeNumber decodes an offset or size field from an .index file. Numbers
// are written most significant digit first in base 64 using the alphabet
// A-Z, a-z, 0-9, '+', '/'.
func DecodeNumber(s string) (uint64, error) {
	var n uint64
	for i, c := range s {
		var d uint64
		ok := false
		if c < utf8.RuneSelf {
			d, ok = numeralValue(byte(c))
		}
		if !ok {
			return 0, &InvalidCharacterError{
				Char: c,
				Pos:  i,
			}
		}
		if n > (math.MaxUint64-d)/64 {
			return 0, fmt.Errorf("%w: number %q overflows 64 bits", ErrInvalidFileFormat, s)
		}
		n = n*64 + d
	}
	return n, nil
}

// EncodeNumber encodes n using the .index numeral alphabet. Zero is encoded
// as "A".
func EncodeNumber(n uint64) string {
	if n == 0 {
		return numeralAlphabet[:1]
	}
	var buf [11]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = numeralAlphabet[n%64]
		n /= 64
	}
	return string(buf[i:])
}
