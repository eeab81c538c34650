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

// Command puffin inspects, builds, and extracts blobs from Puffin
// files, addressing both local paths and s3:// object paths.
package main

import (
	"flag"
	"fmt"
	"os"
)

var (
	dashv        bool
	dashh        bool
	dashDefaults string
)

func init() {
	flag.BoolVar(&dashv, "v", false, "verbose")
	flag.BoolVar(&dashh, "h", false, "show usage help")
	flag.StringVar(&dashDefaults, "defaults", "", "YAML file of default writer properties")
}

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

func logf(f string, args ...interface{}) {
	if !dashv {
		return
	}
	if f[len(f)-1] != '\n' {
		f += "\n"
	}
	fmt.Fprintf(os.Stderr, f, args...)
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "    %s inspect <file>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "        print the footer catalogue of a Puffin file\n")
	fmt.Fprintf(os.Stderr, "    %s [-defaults <config.yaml>] create <out> <type> <blob-file>...\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "        build a Puffin file from one or more blob payloads of the given type\n")
	fmt.Fprintf(os.Stderr, "    %s extract <file> <blob-index> <out>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "        decompress and extract a single catalogued blob\n")
	fmt.Fprintf(os.Stderr, "flag usage:\n")
	flag.Usage()
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 || dashh {
		usage()
		os.Exit(1)
	}

	switch args[0] {
	case "inspect":
		if len(args) != 2 {
			exitf("usage: inspect <file>\n")
		}
		inspect(args[1])
	case "create":
		if len(args) < 4 {
			exitf("usage: create <out> <type> <blob-file>...\n")
		}
		create(args[1], args[2], args[3:])
	case "extract":
		if len(args) != 4 {
			exitf("usage: extract <file> <blob-index> <out>\n")
		}
		extract(args[1], args[2], args[3])
	default:
		usage()
		os.Exit(1)
	}
}
