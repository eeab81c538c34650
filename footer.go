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
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/SnellerInc/puffin/compress"
)

// FileMetadata is the footer payload of a Puffin file: the ordered
// catalogue of every blob written, plus file-level properties.
//
// FileMetadata is grounded on ion/blockfmt.Trailer: both are an
// offset-bearing, versioned catalogue assembled once at close time
// and parsed back by a reader, but this format encodes the catalogue
// as canonical JSON rather than ion.
type FileMetadata struct {
	Blobs      []BlobMetadata
	properties orderedProps
}

// Property returns the value of a file-level property.
func (f *FileMetadata) Property(key string) (string, bool) {
	return f.properties.get(key)
}

// Properties returns a copy of the file-level properties.
func (f *FileMetadata) Properties() map[string]string {
	return f.properties.Map()
}

// encodeCanonical renders the footer according to the canonical
// encoding rules in spec.md §4.2: fixed key order, no insignificant
// whitespace, minimal integer/string encoding.
func (f *FileMetadata) encodeCanonical() []byte {
	var buf bytes.Buffer
	buf.WriteString(`{"blobs":[`)
	for i := range f.Blobs {
		if i > 0 {
			buf.WriteByte(',')
		}
		encodeBlobMetadata(&buf, &f.Blobs[i])
	}
	buf.WriteString(`]`)
	if f.properties.len() > 0 {
		buf.WriteString(`,"properties":`)
		encodeProps(&buf, &f.properties)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

func encodeBlobMetadata(buf *bytes.Buffer, m *BlobMetadata) {
	buf.WriteByte('{')
	buf.WriteString(`"type":`)
	encodeJSONString(buf, m.Type)
	buf.WriteString(`,"fields":[`)
	for i, f := range m.InputFields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Itoa(f))
	}
	buf.WriteString(`],"snapshot-id":`)
	buf.WriteString(strconv.FormatInt(m.SnapshotID, 10))
	buf.WriteString(`,"sequence-number":`)
	buf.WriteString(strconv.FormatInt(m.SequenceNumber, 10))
	buf.WriteString(`,"offset":`)
	buf.WriteString(strconv.FormatInt(m.Offset, 10))
	buf.WriteString(`,"length":`)
	buf.WriteString(strconv.FormatInt(m.Length, 10))
	if m.HasCompression {
		buf.WriteString(`,"compression-codec":`)
		encodeJSONString(buf, m.CompressionCodec.String())
	}
	if m.Properties.len() > 0 {
		buf.WriteString(`,"properties":`)
		encodeProps(buf, &m.Properties)
	}
	buf.WriteByte('}')
}

func encodeProps(buf *bytes.Buffer, p *orderedProps) {
	buf.WriteByte('{')
	first := true
	p.each(func(k, v string) {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		encodeJSONString(buf, k)
		buf.WriteByte(':')
		encodeJSONString(buf, v)
	})
	buf.WriteByte('}')
}

// encodeJSONString writes s as a canonical JSON string: only the
// escapes JSON requires, \u00xx for control bytes below 0x20,
// forward slash left unescaped, and multi-byte UTF-8 emitted
// verbatim (not escaped to \uXXXX).
func encodeJSONString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if c < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, c)
			} else {
				buf.WriteByte(c)
			}
		}
	}
	buf.WriteByte('"')
}

// wire types used for lenient/strict JSON decoding via encoding/json.
type wireBlobMetadata struct {
	Type             string            `json:"type"`
	Fields           []int             `json:"fields"`
	SnapshotID       int64             `json:"snapshot-id"`
	SequenceNumber   int64             `json:"sequence-number"`
	Offset           int64             `json:"offset"`
	Length           int64             `json:"length"`
	CompressionCodec *string           `json:"compression-codec,omitempty"`
	Properties       map[string]string `json:"properties,omitempty"`
}

type wireFileMetadata struct {
	Blobs      []wireBlobMetadata `json:"blobs"`
	Properties map[string]string  `json:"properties,omitempty"`
}

// decodeFileMetadata parses a footer payload. strict controls whether
// unknown JSON keys (at any nesting level) are rejected.
func decodeFileMetadata(data []byte, strict bool) (*FileMetadata, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if strict {
		dec.DisallowUnknownFields()
	}
	var wire wireFileMetadata
	if err := dec.Decode(&wire); err != nil {
		return nil, wrapf(InvalidFormat, err, "decoding footer JSON")
	}
	fm := &FileMetadata{
		Blobs:      make([]BlobMetadata, len(wire.Blobs)),
		properties: newOrderedProps(wire.Properties),
	}
	for i, wb := range wire.Blobs {
		bm := BlobMetadata{
			Type:           wb.Type,
			InputFields:    wb.Fields,
			SnapshotID:     wb.SnapshotID,
			SequenceNumber: wb.SequenceNumber,
			Offset:         wb.Offset,
			Length:         wb.Length,
			Properties:     newOrderedProps(wb.Properties),
		}
		if wb.CompressionCodec != nil {
			codec, err := compress.ByName(*wb.CompressionCodec)
			if err != nil {
				return nil, wrapf(InvalidFormat, err, "blob %d: unknown compression-codec", i)
			}
			bm.CompressionCodec = codec
			bm.HasCompression = true
		}
		fm.Blobs[i] = bm
	}
	return fm, nil
}
