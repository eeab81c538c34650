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

package compress

import (
	"bytes"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 200)
	for _, c := range []Codec{None, Lz4, Zstd} {
		t.Run(c.String(), func(t *testing.T) {
			comp, err := Compress(c, data)
			if err != nil {
				t.Fatalf("Compress: %s", err)
			}
			out, err := Decompress(c, comp)
			if err != nil {
				t.Fatalf("Decompress: %s", err)
			}
			if !bytes.Equal(out, data) {
				t.Fatalf("round trip mismatch for %s", c)
			}
		})
	}
}

func TestNoneIsIdentity(t *testing.T) {
	data := []byte("hello world")
	comp, _ := Compress(None, data)
	if &comp[0] != &data[0] {
		t.Fatal("None codec should not copy the buffer")
	}
}

func TestByName(t *testing.T) {
	cases := []struct {
		name string
		want Codec
	}{
		{"", None},
		{"lz4", Lz4},
		{"zstd", Zstd},
	}
	for _, c := range cases {
		got, err := ByName(c.name)
		if err != nil {
			t.Fatalf("ByName(%q): %s", c.name, err)
		}
		if got != c.want {
			t.Fatalf("ByName(%q) = %v, want %v", c.name, got, c.want)
		}
		if got.String() != c.name {
			t.Fatalf("%v.String() = %q, want %q", got, got.String(), c.name)
		}
	}
	if _, err := ByName("bogus"); err == nil {
		t.Fatal("expected error for unknown codec name")
	}
}

func TestDecompressMalformed(t *testing.T) {
	for _, c := range []Codec{Lz4, Zstd} {
		if _, err := Decompress(c, []byte("not valid compressed data")); err == nil {
			t.Fatalf("%v: expected error decompressing garbage", c)
		}
	}
}
