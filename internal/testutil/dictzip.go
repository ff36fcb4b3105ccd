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

package testutil

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/klauspost/compress/flate"
)

// gzip header flags.
const (
	flagHCRC    = 1 << 1
	flagExtra   = 1 << 2
	flagName    = 1 << 3
	flagComment = 1 << 4
)

// DictzipOptions are options for MakeDictzip.
type DictzipOptions struct {
	// Name is written as the gzip FNAME field if not empty.
	Name string

	// Comment is written as the gzip FCOMMENT field if not empty.
	Comment string

	// HeaderCRC adds a gzip FHCRC field.
	HeaderCRC bool

	// SizeTrailer ends the file with only the 32-bit uncompressed length
	// directly after the last chunk, without a final deflate block or the
	// gzip CRC32.
	SizeTrailer bool
}

// MakeDictzip compresses data into a dictzip file with the given
// uncompressed chunk length. Each chunk is compressed independently so that
// it can be inflated on its own.
func MakeDictzip(t *testing.T, data []byte, chunkLength int, opts *DictzipOptions) []byte {
	t.Helper()
	if opts == nil {
		opts = &DictzipOptions{}
	}

	var chunks bytes.Buffer
	var sizes []int
	for start := 0; start < len(data); start += chunkLength {
		end := min(start+chunkLength, len(data))
		before := chunks.Len()

		fw, err := flate.NewWriter(&chunks, flate.DefaultCompression)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(data[start:end]); err != nil {
			t.Fatal(err)
		}
		// Flush ends the chunk on a byte boundary without marking the final
		// block.
		if err := fw.Flush(); err != nil {
			t.Fatal(err)
		}

		size := chunks.Len() - before
		if size > 0xffff {
			t.Fatalf("compressed chunk too large: %d", size)
		}
		sizes = append(sizes, size)
	}

	var tail bytes.Buffer
	if !opts.SizeTrailer {
		// The last block of the stream.
		fw, err := flate.NewWriter(&tail, flate.DefaultCompression)
		if err != nil {
			t.Fatal(err)
		}
		if err := fw.Close(); err != nil {
			t.Fatal(err)
		}
	}

	flags := byte(flagExtra)
	if opts.Name != "" {
		flags |= flagName
	}
	if opts.Comment != "" {
		flags |= flagComment
	}
	if opts.HeaderCRC {
		flags |= flagHCRC
	}

	var b bytes.Buffer
	// ID1, ID2, CM, FLG, MTIME, XFL, OS
	b.Write([]byte{0x1f, 0x8b, 8, flags, 0, 0, 0, 0, 0, 3})

	subfieldLen := 6 + 2*len(sizes)
	le16(&b, uint16(4+subfieldLen))
	b.Write([]byte{'R', 'A'})
	le16(&b, uint16(subfieldLen))
	le16(&b, 1)
	le16(&b, uint16(chunkLength))
	le16(&b, uint16(len(sizes)))
	for _, s := range sizes {
		le16(&b, uint16(s))
	}

	if opts.Name != "" {
		b.WriteString(opts.Name)
		b.WriteByte(0)
	}
	if opts.Comment != "" {
		b.WriteString(opts.Comment)
		b.WriteByte(0)
	}
	if opts.HeaderCRC {
		le16(&b, uint16(crc32.ChecksumIEEE(b.Bytes())))
	}

	b.Write(chunks.Bytes())
	b.Write(tail.Bytes())

	var trailer [8]byte
	binary.LittleEndian.PutUint32(trailer[:4], crc32.ChecksumIEEE(data))
	binary.LittleEndian.PutUint32(trailer[4:], uint32(len(data)))
	if opts.SizeTrailer {
		b.Write(trailer[4:])
	} else {
		b.Write(trailer[:])
	}

	return b.Bytes()
}

func le16(b *bytes.Buffer, v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	b.Write(buf[:])
}
