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

// Package puffin implements a reader and writer for the Puffin binary
// statistics-and-indexes sidecar file format: an ordered sequence of
// opaque, typed binary blobs framed by a JSON footer.
//
// The core codec (this package) never touches a concrete filesystem
// or object store directly; it is parameterized over the narrow
// OutputFile/InputFile capability sets so that callers can plug in
// whatever backing store they have (see the localfile and s3file
// subpackages for two concrete implementations).
package puffin

// OutputFile is the capability a Writer needs from its backing sink:
// a sequential byte append plus a terminal close. Concrete
// implementations include localfile.Create and s3file.Create.
type OutputFile interface {
	// Write appends contents to the end of the file. Write must
	// not be called after Close.
	Write(contents []byte) error
	// Close finalizes the file. Close must be idempotent: calling
	// it more than once must return nil on every call after the
	// first succeeds.
	Close() error
}

// InputFile is the capability a Reader needs from its backing
// source: a known length and positional reads. Concrete
// implementations include localfile.Open and s3file.Open.
type InputFile interface {
	// Length returns the total size of the file in bytes.
	Length() (int64, error)
	// ReadAt reads exactly length bytes starting at offset.
	// It is safe to call ReadAt concurrently from multiple
	// goroutines provided the underlying store supports
	// concurrent positional reads.
	ReadAt(offset, length int64) ([]byte, error)
}
