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
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/flate"
)

// gzip header flags.
const (
	flagHCRC    = 1 << 1
	flagExtra   = 1 << 2
	flagName    = 1 << 3
	flagComment = 1 << 4
)

const (
	gzipID1     = 0x1f
	gzipID2     = 0x8b
	gzipDeflate = 8

	// dictzipHeaderSize is the size of the fixed gzip header plus XLEN.
	dictzipHeaderSize = 12

	// dictzipTrailerSize is the size of the gzip CRC32 and ISIZE fields.
	dictzipTrailerSize = 8
)

// DzReader reads definitions from a dictzip compressed .dict.dz file.
type DzReader struct {
	r io.ReaderAt

	// chunkLength is the uncompressed length of each chunk.
	chunkLength int

	// chunkOffsets holds the file offset of each compressed chunk.
	chunkOffsets []int64

	// endCompressedData is the file offset just past the last chunk.
	endCompressedData int64

	// size is the uncompressed size of the data.
	size uint64

	cache *lru.Cache[int, []byte]

	// c is closed by Close if set.
	c io.Closer
}

// NewDzReader returns a new DzReader reading the dictzip file of the given
// size from r. The dictzip header is parsed and validated immediately.
func NewDzReader(r io.ReaderAt, size int64, options *Options) (*DzReader, error) {
	if options == nil {
		options = DefaultOptions
	}

	d := &DzReader{
		r: r,
	}
	if err := d.readHeader(size); err != nil {
		return nil, err
	}

	if options.ChunkCacheSize > 0 {
		cache, err := lru.New[int, []byte](options.ChunkCacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating chunk cache: %w", err)
		}
		d.cache = cache
	}

	return d, nil
}

// readHeader parses the gzip header and the dictzip chunk table.
func (d *DzReader) readHeader(size int64) error {
	br := bufio.NewReader(io.NewSectionReader(d.r, 0, size))

	var hdr [dictzipHeaderSize]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return formatError("reading header", err)
	}
	if hdr[0] != gzipID1 || hdr[1] != gzipID2 {
		return fmt.Errorf("%w: bad magic %#x %#x", ErrInvalidFileFormat, hdr[0], hdr[1])
	}
	if hdr[2] != gzipDeflate {
		return fmt.Errorf("%w: unsupported compression method %d", ErrInvalidFileFormat, hdr[2])
	}
	flags := hdr[3]
	if flags&flagExtra == 0 {
		return fmt.Errorf("%w: missing dictzip extra field", ErrInvalidFileFormat)
	}
	xlen := int(binary.LittleEndian.Uint16(hdr[10:12]))
	pos := int64(dictzipHeaderSize + xlen)

	extra := make([]byte, xlen)
	if _, err := io.ReadFull(br, extra); err != nil {
		return formatError("reading extra field", err)
	}
	if xlen < 10 {
		return fmt.Errorf("%w: extra field too short: %d", ErrInvalidFileFormat, xlen)
	}
	if extra[0] != 'R' || extra[1] != 'A' {
		return fmt.Errorf("%w: unknown extra subfield %q", ErrInvalidFileFormat, extra[:2])
	}
	subfieldLen := int(binary.LittleEndian.Uint16(extra[2:4]))
	if subfieldLen != xlen-4 {
		return fmt.Errorf("%w: subfield length %d does not match extra length %d", ErrInvalidFileFormat, subfieldLen, xlen)
	}
	if ver := binary.LittleEndian.Uint16(extra[4:6]); ver != 1 {
		return fmt.Errorf("%w: unsupported dictzip version %d", ErrInvalidFileFormat, ver)
	}
	d.chunkLength = int(binary.LittleEndian.Uint16(extra[6:8]))
	if d.chunkLength == 0 {
		return fmt.Errorf("%w: zero chunk length", ErrInvalidFileFormat)
	}
	chunkCount := int(binary.LittleEndian.Uint16(extra[8:10]))
	if chunkCount == 0 {
		return fmt.Errorf("%w: zero chunk count", ErrInvalidFileFormat)
	}
	if subfieldLen-6 != 2*chunkCount {
		return fmt.Errorf("%w: %d chunks do not fit in subfield of length %d", ErrInvalidFileFormat, chunkCount, subfieldLen)
	}

	if flags&flagName != 0 {
		n, err := skipString(br)
		if err != nil {
			return formatError("reading file name", err)
		}
		pos += n
	}
	if flags&flagComment != 0 {
		n, err := skipString(br)
		if err != nil {
			return formatError("reading comment", err)
		}
		pos += n
	}
	if flags&flagHCRC != 0 {
		if _, err := br.Discard(2); err != nil {
			return formatError("reading header crc", err)
		}
		pos += 2
	}

	d.chunkOffsets = make([]int64, chunkCount)
	for i := 0; i < chunkCount; i++ {
		d.chunkOffsets[i] = pos
		pos += int64(binary.LittleEndian.Uint16(extra[10+2*i:]))
	}
	d.endCompressedData = pos

	// The uncompressed size either follows the last chunk directly or is the
	// gzip ISIZE field at the end of the file.
	var sizeOffset int64
	switch rest := size - d.endCompressedData; {
	case rest == 4:
		sizeOffset = d.endCompressedData
	case rest >= dictzipTrailerSize:
		sizeOffset = size - 4
	default:
		return fmt.Errorf("%w: file truncated: %d bytes, chunks end at %d", ErrInvalidFileFormat, size, d.endCompressedData)
	}

	var isize [4]byte
	if n, err := d.r.ReadAt(isize[:], sizeOffset); n < len(isize) {
		return formatError("reading uncompressed size", err)
	}
	d.size = uint64(binary.LittleEndian.Uint32(isize[:]))

	if d.size > uint64(chunkCount)*uint64(d.chunkLength) {
		return fmt.Errorf("%w: uncompressed size %d exceeds %d chunks of %d bytes",
			ErrInvalidFileFormat, d.size, chunkCount, d.chunkLength)
	}

	return nil
}

// formatError wraps an error encountered while reading the header. A
// truncated header is reported as an invalid file format.
func formatError(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s: %w", ErrInvalidFileFormat, what, io.ErrUnexpectedEOF)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// skipString skips a NUL terminated string and returns the number of bytes
// skipped.
func skipString(br *bufio.Reader) (int64, error) {
	var n int64
	for {
		c, err := br.ReadByte()
		if err != nil {
			return n, err
		}
		n++
		if c == 0 {
			return n, nil
		}
	}
}

// ChunkLength returns the uncompressed length of each chunk.
func (d *DzReader) ChunkLength() int {
	return d.chunkLength
}

// ChunkCount returns the number of chunks.
func (d *DzReader) ChunkCount() int {
	return len(d.chunkOffsets)
}

// Size returns the uncompressed size of the dictionary data.
func (d *DzReader) Size() uint64 {
	return d.size
}

// chunk returns the file offset and compressed length of chunk i.
func (d *DzReader) chunk(i int) (int64, int64) {
	end := d.endCompressedData
	if i+1 < len(d.chunkOffsets) {
		end = d.chunkOffsets[i+1]
	}
	return d.chunkOffsets[i], end - d.chunkOffsets[i]
}

// inflate returns the uncompressed data of chunk i.
func (d *DzReader) inflate(i int) ([]byte, error) {
	if d.cache != nil {
		if b, ok := d.cache.Get(i); ok {
			return b, nil
		}
	}

	offset, length := d.chunk(i)
	compressed := make([]byte, length)
	if n, err := d.r.ReadAt(compressed, offset); n < len(compressed) {
		if err == nil || errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("reading chunk %d: %w", i, err)
	}

	// All chunks but the last are full length.
	want := d.chunkLength
	if rest := d.size - uint64(i)*uint64(d.chunkLength); rest < uint64(want) {
		want = int(rest)
	}

	fr := flate.NewReader(bytes.NewReader(compressed))
	defer fr.Close()

	b := make([]byte, d.chunkLength)
	// Chunks are not terminated by a final block so the reader reports an
	// unexpected EOF once the chunk data is exhausted.
	n, err := io.ReadFull(fr, b)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("%w: inflating chunk %d: %w", ErrInvalidFileFormat, i, err)
	}
	if n < want {
		return nil, fmt.Errorf("%w: chunk %d inflated to %d bytes, expected %d", ErrInvalidFileFormat, i, n, want)
	}
	b = b[:want]

	if d.cache != nil {
		d.cache.Add(i, b)
	}
	return b, nil
}

// Fetch returns the size bytes of definition text at offset.
func (d *DzReader) Fetch(offset, size uint64) (string, error) {
	if err := checkFetch(offset, size, d.size); err != nil {
		return "", err
	}
	if size == 0 {
		return "", nil
	}

	chunkLength := uint64(d.chunkLength)
	//nolint:gosec // offsets are bounded by d.size which fits in 32 bits.
	startChunk, endChunk := int(offset/chunkLength), int((offset+size-1)/chunkLength)
	cutFront := offset % chunkLength

	b := make([]byte, 0, uint64(endChunk-startChunk+1)*chunkLength)
	for i := startChunk; i <= endChunk; i++ {
		chunk, err := d.inflate(i)
		if err != nil {
			return "", err
		}
		b = append(b, chunk...)
	}

	return toString(b[cutFront : cutFront+size])
}

// Close closes the underlying file if the reader was created by Open.
func (d *DzReader) Close() error {
	if d.c == nil {
		return nil
	}
	if err := d.c.Close(); err != nil {
		return fmt.Errorf("closing dict file: %w", err)
	}
	return nil
}
