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
	"os"
	"strconv"

	"github.com/SnellerInc/puffin"
)

func extract(inPath, indexArg, outPath string) {
	idx, err := strconv.Atoi(indexArg)
	if err != nil {
		exitf("blob-index must be an integer: %s\n", err)
	}

	in := openInput(inPath)
	r, err := puffin.NewReader(in)
	if err != nil {
		exitf("building reader: %s\n", err)
	}
	fm, err := r.Metadata()
	if err != nil {
		exitf("reading footer: %s\n", err)
	}
	if idx < 0 || idx >= len(fm.Blobs) {
		exitf("blob index %d out of range (file has %d blobs)\n", idx, len(fm.Blobs))
	}

	data, err := r.ReadBlob(&fm.Blobs[idx])
	if err != nil {
		exitf("reading blob %d: %s\n", idx, err)
	}
	if err := os.WriteFile(outPath, data, 0640); err != nil {
		exitf("writing %q: %s\n", outPath, err)
	}
	logf("extracted blob %d (%d bytes) to %s\n", idx, len(data), outPath)
}
