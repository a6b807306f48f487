// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package quill

import (
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest describes the contents of a quill.toml package manifest.
type Manifest struct {
	Package Package `toml:"package"`
}

// Package holds the package section of a manifest.
type Package struct {
	// Name of the package.
	Name string `toml:"name"`
	// Version of the package (informational).
	Version string `toml:"version"`
	// Sources lists the source files of the package, relative to the
	// manifest.  When empty, the package consists of main.ql alone.
	Sources []string `toml:"sources"`
}

// ReadManifest reads and decodes a manifest from a given file.
func ReadManifest(filename string) (Manifest, error) {
	var manifest Manifest
	//
	_, err := toml.DecodeFile(filename, &manifest)
	//
	return manifest, err
}

// SourceFilenames returns the source files of this manifest, resolved
// relative to a given directory.
func (p *Manifest) SourceFilenames(dir string) []string {
	sources := p.Package.Sources
	//
	if len(sources) == 0 {
		sources = []string{"main.ql"}
	}
	//
	filenames := make([]string, len(sources))
	//
	for i, s := range sources {
		filenames[i] = filepath.Join(dir, s)
	}
	//
	return filenames
}
