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
	"errors"
	"testing"
)

func buildSampleFile(t *testing.T) []byte {
	t.Helper()
	sink := &memSink{}
	w, err := NewWriter(sink)
	if err != nil {
		t.Fatal(err)
	}
	b1, b2 := sampleBlobs(t)
	if err := w.WriteBlob(b1); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteBlob(b2); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return sink.buf
}

func TestReaderFooterSizeHint(t *testing.T) {
	data := buildSampleFile(t)

	// the trailing frame (footer payload + size + flags + magic)
	// is the footer payload size word plus 12.
	payloadSize := binary.LittleEndian.Uint32(data[len(data)-12 : len(data)-8])
	hint := int64(payloadSize) + 12

	r, err := NewReader(&memSource{buf: data}, WithFooterSize(hint))
	if err != nil {
		t.Fatal(err)
	}
	fm, err := r.Metadata()
	if err != nil {
		t.Fatalf("Metadata with footer size hint: %s", err)
	}
	if len(fm.Blobs) != 2 {
		t.Fatalf("len(Blobs) = %d, want 2", len(fm.Blobs))
	}
	b1, b2 := sampleBlobs(t)
	got1, err := r.ReadBlob(&fm.Blobs[0])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got1, b1.Data()) {
		t.Fatal("blob 0 mismatch")
	}
	got2, err := r.ReadBlob(&fm.Blobs[1])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got2, b2.Data()) {
		t.Fatal("blob 1 mismatch")
	}
}

func TestReaderCorruption(t *testing.T) {
	base := func() []byte {
		sink := &memSink{}
		w, err := NewWriter(sink)
		if err != nil {
			t.Fatal(err)
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
		return sink.buf
	}

	t.Run("leading magic", func(t *testing.T) {
		data := append([]byte(nil), base()...)
		data[0] ^= 0xFF
		r, err := NewReader(&memSource{buf: data})
		if err != nil {
			t.Fatal(err)
		}
		_, err = r.Metadata()
		assertInvalidFormat(t, err)
	})

	t.Run("trailing magic", func(t *testing.T) {
		data := append([]byte(nil), base()...)
		data[len(data)-1] ^= 0xFF
		r, err := NewReader(&memSource{buf: data})
		if err != nil {
			t.Fatal(err)
		}
		_, err = r.Metadata()
		assertInvalidFormat(t, err)
	})

	t.Run("truncated", func(t *testing.T) {
		data := base()
		data = data[:len(data)-1]
		r, err := NewReader(&memSource{buf: data})
		if err != nil {
			t.Fatal(err)
		}
		_, err = r.Metadata()
		assertInvalidFormat(t, err)
	})
}

func assertInvalidFormat(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	var pe *Error
	if !errors.As(err, &pe) || pe.Kind != InvalidFormat {
		t.Fatalf("expected InvalidFormat, got %v", err)
	}
}
