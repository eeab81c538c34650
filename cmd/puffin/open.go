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

package main

import (
	"strings"

	"github.com/SnellerInc/puffin"
	"github.com/SnellerInc/puffin/aws"
	"github.com/SnellerInc/puffin/localfile"
	"github.com/SnellerInc/puffin/s3file"
)

func s3split(name string) (string, string) {
	out := strings.TrimPrefix(name, "s3://")
	split := strings.IndexByte(out, '/')
	if split == -1 || split == len(out) {
		exitf("invalid s3 path spec %q\n", out)
	}
	return out[:split], out[split+1:]
}

// openInput opens name as a puffin.InputFile, dispatching on an
// s3:// prefix exactly like cmd/sdb's openarg.
func openInput(name string) puffin.InputFile {
	if strings.HasPrefix(name, "s3://") {
		bucket, key := s3split(name)
		k, err := aws.AmbientKey("s3", nil)
		if err != nil {
			exitf("deriving key for %q: %s\n", name, err)
		}
		f, err := s3file.Open(k, bucket, key)
		if err != nil {
			exitf("opening %q: %s\n", name, err)
		}
		return f
	}
	f, err := localfile.Open(name)
	if err != nil {
		exitf("opening %q: %s\n", name, err)
	}
	return f
}

// createOutput opens name as a puffin.OutputFile.
func createOutput(name string) puffin.OutputFile {
	if strings.HasPrefix(name, "s3://") {
		bucket, key := s3split(name)
		k, err := aws.AmbientKey("s3", nil)
		if err != nil {
			exitf("deriving key for %q: %s\n", name, err)
		}
		w, err := s3file.Create(k, bucket, key)
		if err != nil {
			exitf("creating %q: %s\n", name, err)
		}
		return w
	}
	w, err := localfile.Create(name)
	if err != nil {
		exitf("creating %q: %s\n", name, err)
	}
	return w
}
