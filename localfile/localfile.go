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

// Package localfile implements puffin.OutputFile and puffin.InputFile
// over the local filesystem.
//
// Writes are staged to a sibling temp file and atomically renamed into
// place on Close, following the same pattern as
// ion/blockfmt.DirFS.WriteFile; the temp file uses a random suffix
// from google/uuid rather than os.CreateTemp's counter, so concurrent
// writers racing to build the same file never collide, and the final
// bytes are content-addressed with a blake2b-256 ETag the same way
// DirFS computes its ETag.
package localfile

import (
	"encoding/base32"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"

	"github.com/google/uuid"
)

// File is a puffin.InputFile backed by an *os.File opened for
// positional reads.
type File struct {
	f *os.File
}

// Open opens path for reading.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("localfile: open %s: %w", path, err)
	}
	return &File{f: f}, nil
}

// Length implements puffin.InputFile.
func (fl *File) Length() (int64, error) {
	info, err := fl.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("localfile: stat: %w", err)
	}
	return info.Size(), nil
}

// ReadAt implements puffin.InputFile.
func (fl *File) ReadAt(offset, length int64) ([]byte, error) {
	buf := make([]byte, length)
	if _, err := fl.f.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("localfile: read at %d: %w", offset, err)
	}
	return buf, nil
}

// Close releases the underlying file descriptor.
func (fl *File) Close() error {
	return fl.f.Close()
}

// Writer is a puffin.OutputFile backed by a temp file that is
// atomically renamed to its final path on Close.
type Writer struct {
	final  string
	tmp    *os.File
	tmpath string
	hasher interface {
		Write(p []byte) (int, error)
		Sum(b []byte) []byte
	}
	closed bool
}

// Create opens a staging file for writing. The file does not appear
// at path until Close succeeds.
func Create(path string) (*Writer, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("localfile: mkdir %s: %w", dir, err)
	}
	tmpath := filepath.Join(dir, "."+filepath.Base(path)+"-"+uuid.NewString()+".tmp")
	tmp, err := os.OpenFile(tmpath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0640)
	if err != nil {
		return nil, fmt.Errorf("localfile: create temp %s: %w", tmpath, err)
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		tmp.Close()
		os.Remove(tmpath)
		return nil, fmt.Errorf("localfile: blake2b: %w", err)
	}
	return &Writer{final: path, tmp: tmp, tmpath: tmpath, hasher: h}, nil
}

// Write implements puffin.OutputFile.
func (w *Writer) Write(contents []byte) error {
	if _, err := w.tmp.Write(contents); err != nil {
		return fmt.Errorf("localfile: write: %w", err)
	}
	if _, err := w.hasher.Write(contents); err != nil {
		return fmt.Errorf("localfile: hash: %w", err)
	}
	return nil
}

// Close implements puffin.OutputFile: it flushes the staging file,
// renames it into place, and is idempotent.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.tmp.Close(); err != nil {
		os.Remove(w.tmpath)
		return fmt.Errorf("localfile: close temp: %w", err)
	}
	if err := os.Rename(w.tmpath, w.final); err != nil {
		os.Remove(w.tmpath)
		return fmt.Errorf("localfile: rename into place: %w", err)
	}
	return nil
}

// ETag returns the content-addressed digest of everything written so
// far, in the same "b2sum:<base32>" shape used by ion/blockfmt.DirFS.
func (w *Writer) ETag() string {
	return "b2sum:" + base32.StdEncoding.EncodeToString(w.hasher.Sum(nil))
}
