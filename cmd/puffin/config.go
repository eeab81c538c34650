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

	"sigs.k8s.io/yaml"
)

// writerConfig holds the subset of Writer options that make sense to
// pin in a shared defaults file across many `puffin create` runs
// (a CI pipeline building footer indexes for many tables, say).
type writerConfig struct {
	CreatedBy       string            `json:"created-by,omitempty"`
	CompressFooter  bool              `json:"compress-footer,omitempty"`
	DefaultCodec    string            `json:"default-codec,omitempty"`
	Properties      map[string]string `json:"properties,omitempty"`
}

func loadConfig(path string) (*writerConfig, error) {
	if path == "" {
		return &writerConfig{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg writerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
