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
package comptime

import (
	"github.com/consensys/go-quill/pkg/quill/ast"
	"github.com/consensys/go-quill/pkg/quill/resolver"
	"github.com/consensys/go-quill/pkg/util/source"
)

// StagedItem is a pending item injection.  Injections are not applied at the
// point where a macro requests them; rather, they accumulate in the arena and
// are spliced into the tree only after every attribute of the expansion pass
// has run.  Macros therefore observe the tree as it stood at the start of the
// pass, regardless of what their predecessors injected.
type StagedItem struct {
	// Module into which the item will be spliced.
	Module *ast.Module
	// Unparsed text of the item.
	Text Quoted
	// Node against which any failure to parse the text is reported.
	Origin ast.Node
}

// Arena mediates all reads and writes which macros perform against the item
// tree during one expansion pass.  Direct writes (through function handles)
// are applied immediately; item injections are staged.  Once the arena has
// been finalised, any further write is an invalid mutation.
type Arena struct {
	// Resolved unit over which this pass operates.
	unit *resolver.Unit
	// Source mapping for the unit, extended as staged items are parsed.
	srcmap *source.Maps[ast.Node]
	// Items awaiting injection, in staging order.
	staged []StagedItem
	// Set once the pass is complete, closing the arena to mutation.
	finalised bool
}

// NewArena constructs an arena over a given resolved unit.
func NewArena(unit *resolver.Unit, srcmap *source.Maps[ast.Node]) *Arena {
	return &Arena{unit: unit, srcmap: srcmap}
}

// Unit returns the resolved unit over which this arena operates.
func (p *Arena) Unit() *resolver.Unit {
	return p.unit
}

// SourceMaps returns the source mapping for this arena.
func (p *Arena) SourceMaps() *source.Maps[ast.Node] {
	return p.srcmap
}

// Stage records a pending injection of an item (given as unparsed text) into
// a given module.  The text is not parsed at this point.
func (p *Arena) Stage(module *ast.Module, text Quoted, origin ast.Node) *Error {
	if err := p.checkOpen(origin); err != nil {
		return err
	}
	//
	p.staged = append(p.staged, StagedItem{module, text, origin})
	//
	return nil
}

// Staged returns the injections staged so far, in staging order.
func (p *Arena) Staged() []StagedItem {
	return p.staged
}

// Finalise closes this arena to mutation, parses every staged item and
// splices it into its target module.  Parse failures are reported against the
// node which staged the offending text.  The caller is expected to re-resolve
// the mutated tree afterwards.
func (p *Arena) Finalise() []source.SyntaxError {
	var errors []source.SyntaxError
	//
	p.finalised = true
	//
	for _, staged := range p.staged {
		item, srcmap, errs := staged.Text.ParseAsItem()
		//
		if len(errs) > 0 {
			// Report against the staging site, since the synthetic source file
			// of the fragment is meaningless to the user.
			for _, err := range errs {
				msg := "injected item does not parse: " + err.Message()
				errors = append(errors, *p.srcmap.SyntaxError(staged.Origin, msg))
			}
			//
			continue
		}
		//
		p.srcmap.Join(srcmap)
		staged.Module.AddItem(item)
	}
	//
	return errors
}

// checkOpen fails if this arena has already been finalised.
func (p *Arena) checkOpen(context ast.Node) *Error {
	if p.finalised {
		return mutationErrorf(context, "mutation after expansion pass has completed")
	}
	//
	return nil
}
