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
	"github.com/consensys/go-quill/pkg/comptime"
	"github.com/consensys/go-quill/pkg/quill/ast"
	"github.com/consensys/go-quill/pkg/quill/parser"
	"github.com/consensys/go-quill/pkg/quill/resolver"
	"github.com/consensys/go-quill/pkg/util/source"
)

// ParseSourceFiles parses a set of source files into a single module tree,
// rooted at an anonymous top-level module.  Items parsed from each file are
// appended to the root in file order, hence declaration order across files
// follows the order in which the files are given.
func ParseSourceFiles(files []source.File) (*ast.Module, *source.Maps[ast.Node], []source.SyntaxError) {
	var (
		root    = &ast.Module{Name: "main"}
		srcmaps = source.NewSourceMaps[ast.Node]()
		errors  []source.SyntaxError
	)
	//
	for i := range files {
		items, srcmap, errs := parser.ParseSourceFile(&files[i])
		//
		srcmaps.Join(srcmap)
		errors = append(errors, errs...)
		//
		for _, item := range items {
			root.AddItem(item)
		}
	}
	//
	if len(errors) > 0 {
		return nil, srcmaps, errors
	}
	//
	return root, srcmaps, nil
}

// ExpandSourceFiles parses a set of source files and runs the macro expansion
// pass over the result, yielding the expanded (and re-resolved) compilation
// unit.
func ExpandSourceFiles(files []source.File) (*resolver.Unit, *source.Maps[ast.Node], []source.SyntaxError) {
	root, srcmaps, errs := ParseSourceFiles(files)
	if len(errs) > 0 {
		return nil, srcmaps, errs
	}
	//
	unit, errs := comptime.Expand(root, srcmaps)
	if len(errs) > 0 {
		return nil, srcmaps, errs
	}
	//
	return unit, srcmaps, nil
}

// RenderExpanded renders the (post-expansion) module tree of a unit back into
// source text.  The result is valid source: rendering and re-parsing an
// expanded tree yields the same tree.
func RenderExpanded(unit *resolver.Unit) string {
	return ast.ToSource(unit.Root().Items)
}
