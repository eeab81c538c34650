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

package s3file

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SnellerInc/puffin/aws"
)

func testKey(baseURI string) *aws.SigningKey {
	return aws.DeriveKey(baseURI, "AKIDEXAMPLE", "secret", "us-east-1", "s3")
}

func TestFileOpenAndReadAt(t *testing.T) {
	const body = "hello from a puffin footer"
	etag := `"deadbeef"`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", etag)
		switch r.Method {
		case http.MethodHead:
			w.Header().Set("Content-Length", "27")
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			if im := r.Header.Get("If-Match"); im != "" && im != etag {
				w.WriteHeader(http.StatusPreconditionFailed)
				return
			}
			rng := r.Header.Get("Range")
			if rng == "" {
				t.Errorf("expected a Range header on GET")
			}
			w.WriteHeader(http.StatusPartialContent)
			io.WriteString(w, body)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	defer srv.Close()

	f, err := Open(testKey(srv.URL), "bucket", "object.puffin")
	if err != nil {
		t.Fatal(err)
	}
	length, err := f.Length()
	if err != nil {
		t.Fatal(err)
	}
	if length != 27 {
		t.Fatalf("Length() = %d, want 27", length)
	}

	got, err := f.ReadAt(0, int64(len(body)))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != body {
		t.Fatalf("ReadAt = %q, want %q", got, body)
	}
}

func TestFileReadAtRejectsChangedETag(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			w.Header().Set("ETag", `"v1"`)
			w.Header().Set("Content-Length", "5")
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			calls++
			// object changed after Open pinned "v1"
			w.WriteHeader(http.StatusPreconditionFailed)
		}
	}))
	defer srv.Close()

	f, err := Open(testKey(srv.URL), "bucket", "object.puffin")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.ReadAt(0, 5); err == nil {
		t.Fatal("expected an error for a changed object")
	}
	if calls != 1 {
		t.Fatalf("expected exactly one GET, got %d", calls)
	}
}

func TestFileOpenNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := Open(testKey(srv.URL), "bucket", "missing.puffin")
	var pe *fs.PathError
	if !errors.As(err, &pe) || !errors.Is(pe.Err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestWriterCreateWriteClose(t *testing.T) {
	var gotBody []byte
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("unexpected method %s", r.Method)
		}
		gotPath = r.URL.Path
		b, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatal(err)
		}
		gotBody = b
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	w, err := Create(testKey(srv.URL), "bucket", "object.puffin")
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write([]byte("part one ")); err != nil {
		t.Fatal(err)
	}
	if err := w.Write([]byte("part two")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	// Close must be idempotent: no second PUT, no error.
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %s", err)
	}

	if string(gotBody) != "part one part two" {
		t.Fatalf("uploaded body = %q", gotBody)
	}
	if gotPath != "/bucket/object.puffin" {
		t.Fatalf("uploaded path = %q", gotPath)
	}
}

func TestWriterPutFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	w, err := Create(testKey(srv.URL), "bucket", "object.puffin")
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write([]byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err == nil {
		t.Fatal("expected an error from a failing PUT")
	}
}
