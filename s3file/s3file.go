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

// Package s3file implements puffin.OutputFile and puffin.InputFile
// over AWS S3, reusing the SigV4 signing machinery in the aws
// package.
//
// Open's ReadAt is grounded on aws/s3.Reader.ReadAt: every call issues
// a signed ranged GET and an If-Match against the object's ETag, so a
// Reader never silently mixes bytes from two different object
// versions. Create buffers a whole Puffin file (a single footer write
// plus a handful of blob writes bounded by what one file format
// instance holds) and issues one signed PUT on Close, rather than
// adopting aws/s3.Uploader's multi-part upload machinery, which exists
// to stream gigabyte-scale objects that this format's files do not
// reach.
package s3file

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/SnellerInc/puffin/aws"
)

// DefaultClient is the HTTP client used by Open and Create. Waiting
// for response headers is bounded by a 60-second timeout rather than
// the request as a whole; connection establishment has no timeout of
// its own.
var DefaultClient = &http.Client{
	Transport: &http.Transport{
		ResponseHeaderTimeout: 60 * time.Second,
		MaxIdleConnsPerHost:   5,
		DisableCompression:    true,
	},
}

func escape(s string) string {
	return strings.ReplaceAll(s, " ", "%20")
}

func objectURI(k *aws.SigningKey, bucket, object string) string {
	base := k.BaseURI
	if base == "" {
		base = "https://" + bucket + ".s3." + k.Region + ".amazonaws.com"
	} else {
		base = base + "/" + bucket
	}
	return base + "/" + escape(object)
}

// File is a puffin.InputFile backed by a single S3 object. A HEAD
// request at construction pins the ETag so every subsequent ReadAt is
// read-consistent with respect to that version of the object.
type File struct {
	key    *aws.SigningKey
	client *http.Client
	bucket string
	object string
	etag   string
	size   int64
}

// Open performs a HEAD on bucket/object and returns a File pinned to
// that object's current ETag.
func Open(key *aws.SigningKey, bucket, object string) (*File, error) {
	f := &File{key: key, client: DefaultClient, bucket: bucket, object: object}
	req, err := http.NewRequest(http.MethodHead, objectURI(key, bucket, object), nil)
	if err != nil {
		return nil, fmt.Errorf("s3file: building HEAD request: %w", err)
	}
	key.SignV4(req, nil)
	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("s3file: HEAD %s/%s: %w", bucket, object, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil, &fs.PathError{Op: "open", Path: object, Err: fs.ErrNotExist}
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("s3file: HEAD %s/%s: status %s", bucket, object, res.Status)
	}
	f.etag = res.Header.Get("ETag")
	f.size = res.ContentLength
	return f, nil
}

// Length implements puffin.InputFile.
func (f *File) Length() (int64, error) {
	return f.size, nil
}

// ReadAt implements puffin.InputFile with a signed ranged GET,
// rejected with ErrETagChanged semantics (via a plain error here,
// since this package does not expose the original sentinel) if the
// object was overwritten since Open.
func (f *File) ReadAt(offset, length int64) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, objectURI(f.key, f.bucket, f.object), nil)
	if err != nil {
		return nil, fmt.Errorf("s3file: building GET request: %w", err)
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+length-1))
	if f.etag != "" {
		req.Header.Set("If-Match", f.etag)
	}
	f.key.SignV4(req, nil)
	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("s3file: GET %s/%s: %w", f.bucket, f.object, err)
	}
	defer res.Body.Close()
	switch res.StatusCode {
	case http.StatusPartialContent, http.StatusOK:
	case http.StatusPreconditionFailed:
		return nil, fmt.Errorf("s3file: object %s/%s changed since Open", f.bucket, f.object)
	default:
		return nil, fmt.Errorf("s3file: GET %s/%s: status %s", f.bucket, f.object, res.Status)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(res.Body, buf); err != nil {
		return nil, fmt.Errorf("s3file: reading range body: %w", err)
	}
	return buf, nil
}

// Writer is a puffin.OutputFile backed by S3. Payload is buffered in
// memory and uploaded with a single signed PUT on Close.
type Writer struct {
	key    *aws.SigningKey
	client *http.Client
	bucket string
	object string
	buf    bytes.Buffer
	closed bool
}

// Create returns a Writer that will PUT its accumulated contents to
// bucket/object on Close.
func Create(key *aws.SigningKey, bucket, object string) (*Writer, error) {
	return &Writer{key: key, client: DefaultClient, bucket: bucket, object: object}, nil
}

// Write implements puffin.OutputFile.
func (w *Writer) Write(contents []byte) error {
	w.buf.Write(contents)
	return nil
}

// Close implements puffin.OutputFile: it issues the PUT and is
// idempotent.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	body := w.buf.Bytes()
	req, err := http.NewRequest(http.MethodPut, objectURI(w.key, w.bucket, w.object), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("s3file: building PUT request: %w", err)
	}
	req.ContentLength = int64(len(body))
	w.key.SignV4(req, body)
	res, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("s3file: PUT %s/%s: %w", w.bucket, w.object, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("s3file: PUT %s/%s: status %s", w.bucket, w.object, res.Status)
	}
	return nil
}
