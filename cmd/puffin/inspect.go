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
	"fmt"

	"github.com/SnellerInc/puffin"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

func inspect(path string) {
	in := openInput(path)
	r, err := puffin.NewReader(in)
	if err != nil {
		exitf("building reader: %s\n", err)
	}
	fm, err := r.Metadata()
	if err != nil {
		exitf("reading footer: %s\n", err)
	}
	props := fm.Properties()
	keys := maps.Keys(props)
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Printf("property %s=%s\n", k, props[k])
	}
	for i, b := range fm.Blobs {
		codec := "none"
		if b.HasCompression {
			codec = b.CompressionCodec.String()
		}
		fmt.Printf("%d: type=%s fields=%v snapshot=%d seq=%d offset=%d length=%d codec=%s\n",
			i, b.Type, b.InputFields, b.SnapshotID, b.SequenceNumber, b.Offset, b.Length, codec)
	}
}
