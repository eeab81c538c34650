// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package puffin

import (
	"bytes"
	"encoding/binary"

	"github.com/SnellerInc/puffin/compress"
)

// ReaderOption configures a Reader at construction time.
type ReaderOption func(*Reader)

// WithFileSize supplies a known total file length, avoiding a
// round trip to the InputFile to query it.
func WithFileSize(n int64) ReaderOption {
	return func(r *Reader) { r.fileSize = &n }
}

// WithFooterSize supplies the known byte length of the trailing
// footer frame (footer payload plus its 12-byte suffix of size,
// flags, and magic), avoiding the two-phase locate-then-read of
// the footer. This is a different quantity from Writer.FooterSize,
// which reports the total output length (see DESIGN.md).
func WithFooterSize(n int64) ReaderOption {
	return func(r *Reader) { r.footerSizeHint = &n }
}

// WithStrict rejects unknown JSON keys in the footer instead of
// ignoring them for forward compatibility (the default).
func WithStrict() ReaderOption {
	return func(r *Reader) { r.strict = true }
}

// NewReader builds a Reader over source, applying the given options.
// It fails with InvalidArgument if source is nil.
func NewReader(source InputFile, opts ...ReaderOption) (*Reader, error) {
	if source == nil {
		return nil, errorf(InvalidArgument, "input file is nil")
	}
	r := &Reader{source: source}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Reader provides random-access, on-demand-decompressed reads over
// a Puffin file. Reader is stateless beyond a cached footer: any
// number of ReadBlob calls may be made in any order, and concurrently
// if the InputFile implementation supports concurrent positional
// reads.
//
// Reader is grounded on ion/blockfmt's tail-read-then-locate-trailer
// algorithm (see blockfmt.fill) and aws/s3.Reader's ReadAt contract.
type Reader struct {
	source InputFile

	fileSize       *int64
	footerSizeHint *int64
	strict         bool

	metadata *FileMetadata
}

func (r *Reader) length() (int64, error) {
	if r.fileSize != nil {
		return *r.fileSize, nil
	}
	n, err := r.source.Length()
	if err != nil {
		return 0, wrapf(Io, err, "querying input file length")
	}
	return n, nil
}

// Metadata locates and decodes the footer, caching the result for
// subsequent calls.
func (r *Reader) Metadata() (*FileMetadata, error) {
	if r.metadata != nil {
		return r.metadata, nil
	}
	fm, err := r.readFooter()
	if err != nil {
		return nil, err
	}
	r.metadata = fm
	return fm, nil
}

func (r *Reader) readFooter() (*FileMetadata, error) {
	total, err := r.length()
	if err != nil {
		return nil, err
	}
	if total < int64(len(magic))*2+12 {
		return nil, errorf(InvalidFormat, "file too short to contain a valid footer")
	}

	var trailer []byte
	if r.footerSizeHint != nil {
		trailer, err = r.source.ReadAt(total-*r.footerSizeHint, *r.footerSizeHint)
	} else {
		// read the 12-byte suffix (payload_size, flags, magic)
		// first, then the footer payload itself.
		var suffix []byte
		suffix, err = r.source.ReadAt(total-12, 12)
		if err != nil {
			return nil, wrapf(Io, err, "reading footer suffix")
		}
		if !bytes.Equal(suffix[8:12], magic[:]) {
			return nil, errorf(InvalidFormat, "missing trailing magic")
		}
		payloadSize := int64(binary.LittleEndian.Uint32(suffix[0:4]))
		var payload []byte
		payload, err = r.source.ReadAt(total-12-payloadSize, payloadSize)
		if err != nil {
			return nil, wrapf(Io, err, "reading footer payload")
		}
		trailer = append(payload, suffix...)
	}
	if err != nil {
		return nil, wrapf(Io, err, "reading footer frame")
	}
	if len(trailer) < 12 {
		return nil, errorf(InvalidFormat, "truncated footer trailer")
	}

	if !bytes.Equal(trailer[len(trailer)-4:], magic[:]) {
		return nil, errorf(InvalidFormat, "missing trailing magic")
	}
	flags := binary.LittleEndian.Uint32(trailer[len(trailer)-8 : len(trailer)-4])
	payloadSize := int64(binary.LittleEndian.Uint32(trailer[len(trailer)-12 : len(trailer)-8]))
	footerStart := len(trailer) - 12 - int(payloadSize)
	if footerStart < 0 {
		return nil, errorf(InvalidFormat, "footer payload size exceeds available trailer bytes")
	}
	footerBytes := trailer[footerStart : footerStart+int(payloadSize)]

	head, err := r.source.ReadAt(0, int64(len(magic)))
	if err != nil {
		return nil, wrapf(Io, err, "reading leading magic")
	}
	if !bytes.Equal(head, magic[:]) {
		return nil, errorf(InvalidFormat, "missing leading magic")
	}

	if flags&1 != 0 {
		decoded, err := compress.Decompress(footerCompressionCodec, footerBytes)
		if err != nil {
			return nil, wrapf(InvalidFormat, err, "decompressing footer")
		}
		footerBytes = decoded
	}

	return decodeFileMetadata(footerBytes, r.strict)
}

// ReadBlob returns the decompressed payload bytes for a catalogued
// blob.
func (r *Reader) ReadBlob(meta *BlobMetadata) ([]byte, error) {
	raw, err := r.source.ReadAt(meta.Offset, meta.Length)
	if err != nil {
		return nil, wrapf(Io, err, "reading blob payload")
	}
	if !meta.HasCompression {
		return raw, nil
	}
	out, err := compress.Decompress(meta.CompressionCodec, raw)
	if err != nil {
		return nil, wrapf(InvalidFormat, err, "decompressing blob payload")
	}
	return out, nil
}
