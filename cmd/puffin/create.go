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

	"github.com/SnellerInc/puffin"
	"github.com/SnellerInc/puffin/compress"
	"github.com/SnellerInc/puffin/fsutil"
	"github.com/SnellerInc/puffin/localfile"
)

// collectBlobFiles expands each of patterns as a glob over the
// current directory, the same way cmd/sdb resolves table input
// patterns against a root filesystem.
func collectBlobFiles(patterns []string) []string {
	root := os.DirFS(".")
	var out []string
	for _, pat := range patterns {
		matches, err := fsutil.OpenGlob(root, pat)
		if err != nil {
			exitf("expanding pattern %q: %s\n", pat, err)
		}
		if len(matches) == 0 {
			// no file matched the pattern; pass it through
			// as a literal path so the read below reports it.
			out = append(out, pat)
			continue
		}
		for _, m := range matches {
			out = append(out, m.Path())
			m.Close()
		}
	}
	return out
}

func create(outPath, typ string, blobPatterns []string) {
	cfg, err := loadConfig(dashDefaults)
	if err != nil {
		exitf("loading defaults: %s\n", err)
	}

	var opts []puffin.WriterOption
	if cfg.CreatedBy != "" {
		opts = append(opts, puffin.WithCreatedBy(cfg.CreatedBy))
	}
	if cfg.CompressFooter {
		opts = append(opts, puffin.WithCompressFooter())
	}
	if cfg.DefaultCodec != "" {
		codec, err := compress.ByName(cfg.DefaultCodec)
		if err != nil {
			exitf("default-codec: %s\n", err)
		}
		opts = append(opts, puffin.WithDefaultBlobCompression(codec))
	}
	if len(cfg.Properties) > 0 {
		opts = append(opts, puffin.WithProperties(cfg.Properties))
	}

	out := createOutput(outPath)
	w, err := puffin.NewWriter(out, opts...)
	if err != nil {
		exitf("building writer: %s\n", err)
	}

	for i, path := range collectBlobFiles(blobPatterns) {
		data, err := os.ReadFile(path)
		if err != nil {
			exitf("reading %q: %s\n", path, err)
		}
		b, err := puffin.NewBlob(typ, []int{i}, 0, 0, data)
		if err != nil {
			exitf("building blob from %q: %s\n", path, err)
		}
		if err := w.WriteBlob(b); err != nil {
			exitf("writing blob from %q: %s\n", path, err)
		}
		logf("wrote blob %d from %s (%d bytes)\n", i, path, len(data))
	}

	if err := w.Close(); err != nil {
		exitf("closing output: %s\n", err)
	}
	if lw, ok := out.(*localfile.Writer); ok {
		logf("wrote %s (etag %s)\n", outPath, lw.ETag())
	}
	size, _ := w.FooterSize()
	logf("footer size %d\n", size)
}
