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
	"encoding/binary"

	"github.com/SnellerInc/puffin/compress"
)

// magic is the 4-byte marker framing every Puffin file at both ends.
var magic = [4]byte{0x50, 0x46, 0x41, 0x31} // "PFA1"

// footerCompressionCodec is the codec used whenever the writer's
// WithCompressFooter option is enabled. The footer trailer only
// carries a single "compressed" bit (see spec.md §9 open question 1),
// so the codec used for a compressed footer is fixed by convention.
const footerCompressionCodec = compress.Zstd

type writerState int

const (
	stateOpen writerState = iota
	stateHeaderWritten
	stateClosed
	stateFailed
)

// WriterOption configures a Writer at construction time, mirroring
// the field-based configuration of ion/blockfmt.CompressionWriter.
type WriterOption func(*Writer)

// WithProperty sets a single file-level property.
func WithProperty(key, value string) WriterOption {
	return func(w *Writer) { w.properties.set(key, value) }
}

// WithProperties sets a batch of file-level properties.
func WithProperties(props map[string]string) WriterOption {
	return func(w *Writer) {
		for k, v := range props {
			w.properties.set(k, v)
		}
	}
}

// WithCreatedBy sets the reserved "created-by" file property.
func WithCreatedBy(id string) WriterOption {
	return WithProperty("created-by", id)
}

// WithCompressFooter enables footer compression using the
// implementation-configured footer codec.
func WithCompressFooter() WriterOption {
	return func(w *Writer) { w.compressFooter = true }
}

// WithDefaultBlobCompression sets the codec used for blobs that do
// not request their own compression override.
func WithDefaultBlobCompression(codec compress.Codec) WriterOption {
	return func(w *Writer) { w.defaultCodec = codec }
}

// NewWriter builds a Writer over sink, applying the given options.
// It fails with InvalidArgument if sink is nil.
func NewWriter(sink OutputFile, opts ...WriterOption) (*Writer, error) {
	if sink == nil {
		return nil, errorf(InvalidArgument, "output file is nil")
	}
	w := &Writer{sink: sink}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Writer implements the Puffin write-side state machine:
// Open -> HeaderWritten -> (PayloadsWritten)* -> Closed, with a
// terminal Failed state entered on any sink I/O error.
//
// Writer is grounded on ion/blockfmt.CompressionWriter's Write/Close
// shape: data is appended sequentially to the sink, and a trailer
// (here a JSON footer) plus a fixed-size suffix is emitted at Close.
type Writer struct {
	sink OutputFile

	properties     orderedProps
	compressFooter bool
	defaultCodec   compress.Codec

	state      writerState
	failure    error
	cursor     int64
	blobs      []BlobMetadata
	footerSize int64
}

func (w *Writer) fail(err error) error {
	w.state = stateFailed
	w.failure = err
	return err
}

// writeHeader emits the leading magic exactly once.
func (w *Writer) writeHeader() error {
	if w.state != stateOpen {
		return nil
	}
	if err := w.sink.Write(magic[:]); err != nil {
		return w.fail(wrapf(Io, err, "writing header"))
	}
	w.cursor = int64(len(magic))
	w.state = stateHeaderWritten
	return nil
}

// WriteBlob writes a blob's (possibly compressed) payload to the
// sink and catalogues its BlobMetadata. The codec set on the blob
// with WithCompression, if any, overrides the writer's default.
func (w *Writer) WriteBlob(b *Blob) error {
	if w.state == stateFailed {
		return w.failure
	}
	if w.state == stateClosed {
		return errorf(InvalidState, "write_blob called after close")
	}
	if err := w.writeHeader(); err != nil {
		return err
	}

	codec := w.defaultCodec
	if b.requestedCompression != nil {
		codec = *b.requestedCompression
	}

	payload, err := compress.Compress(codec, b.data)
	if err != nil {
		return wrapf(InvalidArgument, err, "compressing blob payload")
	}

	offset := w.cursor
	if err := w.sink.Write(payload); err != nil {
		return w.fail(wrapf(Io, err, "writing blob payload"))
	}
	w.cursor += int64(len(payload))

	w.blobs = append(w.blobs, BlobMetadata{
		Type:             b.typ,
		InputFields:      b.InputFields(),
		SnapshotID:       b.snapshotID,
		SequenceNumber:   b.sequenceNumber,
		Offset:           offset,
		Length:           int64(len(payload)),
		CompressionCodec: codec,
		HasCompression:   codec != compress.None,
		Properties:       b.properties,
	})
	return nil
}

// WrittenBlobsMetadata returns the catalogue of blobs written so far.
func (w *Writer) WrittenBlobsMetadata() []BlobMetadata {
	out := make([]BlobMetadata, len(w.blobs))
	copy(out, w.blobs)
	return out
}

// FooterSize returns the total length of the written file in bytes
// (leading magic, blob payloads, and the footer frame), which is not
// the footer-frame length that Reader's WithFooterSize expects. It is
// only available after Close.
func (w *Writer) FooterSize() (int64, error) {
	if w.state != stateClosed {
		return 0, errorf(InvalidArgument, "Footer size not available until closed")
	}
	return w.footerSize, nil
}

// Close finalizes the file: it assembles and writes the footer,
// the footer-size and flags words, and the trailing magic, then
// transitions the writer to Closed. Close is idempotent; calling it
// again after a successful close is a no-op.
func (w *Writer) Close() error {
	if w.state == stateClosed {
		return nil
	}
	if w.state == stateFailed {
		return w.failure
	}
	if err := w.writeHeader(); err != nil {
		return err
	}

	fm := FileMetadata{Blobs: w.blobs, properties: w.properties}
	footerBytes := fm.encodeCanonical()

	compressed := false
	if w.compressFooter {
		out, err := compress.Compress(footerCompressionCodec, footerBytes)
		if err != nil {
			return wrapf(InvalidArgument, err, "compressing footer")
		}
		footerBytes = out
		compressed = true
	}

	if err := w.sink.Write(footerBytes); err != nil {
		return w.fail(wrapf(Io, err, "writing footer"))
	}

	var sizeAndFlags [8]byte
	binary.LittleEndian.PutUint32(sizeAndFlags[0:4], uint32(len(footerBytes)))
	if compressed {
		sizeAndFlags[4] = 1
	}
	if err := w.sink.Write(sizeAndFlags[:]); err != nil {
		return w.fail(wrapf(Io, err, "writing footer size and flags"))
	}
	if err := w.sink.Write(magic[:]); err != nil {
		return w.fail(wrapf(Io, err, "writing trailing magic"))
	}

	w.cursor += int64(len(footerBytes)) + 12
	// FooterSize() reports the total file length, matching the
	// reference behavior exercised by the empty-file scenario
	// (28 bytes: leading magic + empty footer frame); see DESIGN.md
	// for why this differs from the naive footer-frame-only formula.
	w.footerSize = w.cursor

	if err := w.sink.Close(); err != nil {
		return w.fail(wrapf(Io, err, "closing output file"))
	}
	w.state = stateClosed
	return nil
}
