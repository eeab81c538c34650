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
	"errors"
	"testing"

	"github.com/SnellerInc/puffin/compress"
)

func TestNewBlobValidation(t *testing.T) {
	if _, err := NewBlob("", nil, 0, 0, []byte("x")); err == nil {
		t.Fatal("expected error for empty type")
	}
	if _, err := NewBlob("t", nil, 0, 0, nil); err == nil {
		t.Fatal("expected error for empty data")
	}
	var pe *Error
	_, err := NewBlob("", nil, 0, 0, []byte("x"))
	if !errors.As(err, &pe) || pe.Kind != InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestBlobBuilders(t *testing.T) {
	b, err := NewBlob("t", []int{1, 2}, 3, 4, []byte("payload"))
	if err != nil {
		t.Fatal(err)
	}
	b.WithCompression(compress.Lz4).WithProperty("k", "v")

	if b.Type() != "t" {
		t.Fatalf("Type() = %q", b.Type())
	}
	if got := b.InputFields(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("InputFields() = %v", got)
	}
	if b.SnapshotID() != 3 || b.SequenceNumber() != 4 {
		t.Fatalf("identity fields wrong: %d %d", b.SnapshotID(), b.SequenceNumber())
	}
	if *b.requestedCompression != compress.Lz4 {
		t.Fatalf("requestedCompression = %v", b.requestedCompression)
	}
	if v, ok := b.properties.get("k"); !ok || v != "v" {
		t.Fatalf("property k = %q, %v", v, ok)
	}
}

func TestBlobInputFieldsIsACopy(t *testing.T) {
	fields := []int{1, 2, 3}
	b, err := NewBlob("t", fields, 0, 0, []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	fields[0] = 99
	if b.InputFields()[0] == 99 {
		t.Fatal("NewBlob must copy inputFields")
	}
	got := b.InputFields()
	got[0] = 42
	if b.InputFields()[0] == 42 {
		t.Fatal("InputFields() must return a fresh copy each call")
	}
}
