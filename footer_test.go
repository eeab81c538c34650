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
	"testing"

	"github.com/SnellerInc/puffin/compress"
)

func TestEncodeCanonicalEmpty(t *testing.T) {
	fm := FileMetadata{}
	got := string(fm.encodeCanonical())
	want := `{"blobs":[]}`
	if got != want {
		t.Fatalf("encodeCanonical() = %q, want %q", got, want)
	}
}

func TestEncodeCanonicalKeyOrderAndEscaping(t *testing.T) {
	fm := FileMetadata{
		Blobs: []BlobMetadata{
			{
				Type:             "t",
				InputFields:      []int{1, 2},
				SnapshotID:       7,
				SequenceNumber:   8,
				Offset:           4,
				Length:           3,
				CompressionCodec: compress.Lz4,
				HasCompression:   true,
			},
		},
	}
	fm.properties.set("a/b", "x\ny\tz\"q\\w")
	got := string(fm.encodeCanonical())
	want := `{"blobs":[{"type":"t","fields":[1,2],"snapshot-id":7,"sequence-number":8,"offset":4,"length":3,"compression-codec":"lz4"}],"properties":{"a/b":"x\ny\tz\"q\\w"}}`
	if got != want {
		t.Fatalf("encodeCanonical() =\n%q\nwant\n%q", got, want)
	}
}

func TestDecodeFileMetadataRoundTrip(t *testing.T) {
	fm := FileMetadata{
		Blobs: []BlobMetadata{
			{Type: "t", InputFields: []int{3}, SnapshotID: 1, SequenceNumber: 2, Offset: 0, Length: 5},
		},
	}
	fm.properties.set("k", "v")
	encoded := fm.encodeCanonical()

	decoded, err := decodeFileMetadata(encoded, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded.Blobs) != 1 || decoded.Blobs[0].Type != "t" {
		t.Fatalf("unexpected decode: %+v", decoded.Blobs)
	}
	if v, ok := decoded.Property("k"); !ok || v != "v" {
		t.Fatalf("property k = %q, %v", v, ok)
	}
}

func TestDecodeFileMetadataStrictRejectsUnknownKeys(t *testing.T) {
	data := []byte(`{"blobs":[],"bogus-extra-key":1}`)
	if _, err := decodeFileMetadata(data, false); err != nil {
		t.Fatalf("lenient decode should succeed: %s", err)
	}
	if _, err := decodeFileMetadata(data, true); err == nil {
		t.Fatal("strict decode should reject an unknown key")
	}
}

func TestDecodeFileMetadataUnknownCodec(t *testing.T) {
	data := []byte(`{"blobs":[{"type":"t","fields":[],"snapshot-id":0,"sequence-number":0,"offset":0,"length":0,"compression-codec":"bogus"}]}`)
	if _, err := decodeFileMetadata(data, false); err == nil {
		t.Fatal("expected error for unknown compression-codec")
	}
}
