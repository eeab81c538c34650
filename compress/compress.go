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

// Package compress provides the compression codec pair used by the
// Puffin file format: a closed enumeration of codecs, each with a
// total, deterministic Compress and an inverse Decompress that fails
// on malformed input.
package compress

import "fmt"

// Codec is a closed enumeration of the compression algorithms the
// Puffin format supports.
type Codec int

const (
	// None is the identity codec: Compress and Decompress both
	// return their input unchanged.
	None Codec = iota
	// Lz4 compresses with the LZ4 frame format.
	Lz4
	// Zstd compresses with zstd.
	Zstd
)

// String returns the wire name of the codec ("" for None).
func (c Codec) String() string {
	switch c {
	case None:
		return ""
	case Lz4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("Codec(%d)", int(c))
	}
}

// ByName looks up a Codec by its footer wire name. An empty name
// returns None. Unknown names return an error.
func ByName(name string) (Codec, error) {
	switch name {
	case "":
		return None, nil
	case "lz4":
		return Lz4, nil
	case "zstd":
		return Zstd, nil
	default:
		return None, fmt.Errorf("compress: unsupported codec %q", name)
	}
}

// Compress compresses src using the named codec. It is total over
// its input: for None it is the identity.
func Compress(c Codec, src []byte) ([]byte, error) {
	switch c {
	case None:
		return src, nil
	case Lz4:
		return compressLz4(src)
	case Zstd:
		return compressZstd(src)
	default:
		return nil, fmt.Errorf("compress: unsupported codec %v", c)
	}
}

// Decompress is the inverse of Compress for the same codec. It
// returns an error if src is not valid data for the codec.
func Decompress(c Codec, src []byte) ([]byte, error) {
	switch c {
	case None:
		return src, nil
	case Lz4:
		return decompressLz4(src)
	case Zstd:
		return decompressZstd(src)
	default:
		return nil, fmt.Errorf("compress: unsupported codec %v", c)
	}
}
