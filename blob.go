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

import "github.com/SnellerInc/puffin/compress"

// Blob is an immutable, unwritten blob payload plus its identifying
// metadata. Values are constructed with NewBlob and consumed by
// Writer.WriteBlob.
type Blob struct {
	typ                  string
	inputFields          []int
	snapshotID           int64
	sequenceNumber       int64
	data                 []byte
	requestedCompression *compress.Codec
	properties           orderedProps
}

// NewBlob constructs a Blob, validating the invariants required by
// the file format: typ must be non-empty and data must be non-empty.
func NewBlob(typ string, inputFields []int, snapshotID, sequenceNumber int64, data []byte) (*Blob, error) {
	if typ == "" {
		return nil, errorf(InvalidArgument, "blob type is empty")
	}
	if len(data) == 0 {
		return nil, errorf(InvalidArgument, "blob data is empty")
	}
	fields := make([]int, len(inputFields))
	copy(fields, inputFields)
	return &Blob{
		typ:            typ,
		inputFields:    fields,
		snapshotID:     snapshotID,
		sequenceNumber: sequenceNumber,
		data:           data,
	}, nil
}

// WithCompression overrides the codec used to store this blob's
// payload, taking precedence over the Writer's default.
func (b *Blob) WithCompression(codec compress.Codec) *Blob {
	c := codec
	b.requestedCompression = &c
	return b
}

// WithProperty attaches an application-defined property to the blob.
// Properties are emitted to the footer in the order they are added.
func (b *Blob) WithProperty(key, value string) *Blob {
	if key == "" {
		return b
	}
	b.properties.set(key, value)
	return b
}

// Type returns the blob's type string.
func (b *Blob) Type() string { return b.typ }

// InputFields returns the ordered list of field ids this blob
// summarizes.
func (b *Blob) InputFields() []int {
	out := make([]int, len(b.inputFields))
	copy(out, b.inputFields)
	return out
}

// SnapshotID returns the snapshot id attached to the blob.
func (b *Blob) SnapshotID() int64 { return b.snapshotID }

// SequenceNumber returns the sequence number attached to the blob.
func (b *Blob) SequenceNumber() int64 { return b.sequenceNumber }

// Data returns the uncompressed blob payload.
func (b *Blob) Data() []byte { return b.data }

// BlobMetadata is the catalogued record of a blob that has been
// written to a Puffin file: the caller-supplied identity fields plus
// the writer-computed byte range and compression codec. BlobMetadata
// values are produced by Writer and by Reader; they are never
// constructed directly by callers.
type BlobMetadata struct {
	Type              string
	InputFields       []int
	SnapshotID        int64
	SequenceNumber    int64
	Offset            int64
	Length            int64
	CompressionCodec  compress.Codec
	HasCompression    bool
	Properties        orderedProps
}

// Property returns the value of the named property and whether it
// was present.
func (m *BlobMetadata) Property(key string) (string, bool) {
	return m.Properties.get(key)
}
