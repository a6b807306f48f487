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
package resolver

import (
	"fmt"
	"strings"

	"github.com/consensys/go-quill/pkg/quill/ast"
	"github.com/consensys/go-quill/pkg/util/source"
)

// Unit represents a fully resolved compilation unit.  It provides path-based
// lookup over the module tree, exactly as required both by the macro
// evaluator (to locate attribute functions and comptime globals) and by
// ordinary compilation of the post-expansion tree.  Injected items resolve
// identically to hand-written ones, since resolution is simply re-run over
// the mutated tree.
type Unit struct {
	// Root of the module tree.
	root *ast.Module
	// Parent of each (nested) module.
	parents map[*ast.Module]*ast.Module
	// Owning module of each item.
	owners map[ast.Item]*ast.Module
	// Maps qualified names to their declarations.
	items map[string]ast.Item
}

// Resolve constructs a resolved unit from a given module tree, reporting
// errors for duplicate declarations.  This is invoked once before macro
// expansion, and then again afterwards to incorporate injected items.
func Resolve(root *ast.Module, srcmap *source.Maps[ast.Node]) (*Unit, []source.SyntaxError) {
	unit := &Unit{
		root:    root,
		parents: make(map[*ast.Module]*ast.Module),
		owners:  make(map[ast.Item]*ast.Module),
		items:   make(map[string]ast.Item),
	}
	//
	errors := unit.declareModule(root, "", srcmap)
	//
	if len(errors) > 0 {
		return nil, errors
	}
	//
	return unit, nil
}

// Root returns the root of the module tree.
func (p *Unit) Root() *ast.Module {
	return p.root
}

// Owner returns the module in which a given item is declared.
func (p *Unit) Owner(item ast.Item) *ast.Module {
	if owner, ok := p.owners[item]; ok {
		return owner
	}
	//
	panic("item has no owning module")
}

// QualifiedName returns the fully qualified name of an item declared with a
// given name in a given module.
func (p *Unit) QualifiedName(enclosing *ast.Module, name string) string {
	var names []string
	//
	for m := enclosing; m != p.root; m = p.parents[m] {
		names = append([]string{m.Name}, names...)
	}
	//
	names = append(names, name)
	//
	return strings.Join(names, "::")
}

// Lookup attempts to resolve a given path, relative to a given enclosing
// module.  An unqualified name is searched for in the enclosing module first
// and then in each ancestor upto (and including) the root.  A qualified path
// is resolved against the enclosing module first and, failing that, against
// the root.
func (p *Unit) Lookup(enclosing *ast.Module, path []string) (ast.Item, bool) {
	if len(path) == 1 {
		// Unqualified name
		for m := enclosing; m != nil; m = p.parents[m] {
			if item, ok := p.items[p.QualifiedName(m, path[0])]; ok {
				return item, true
			}
		}
		//
		return nil, false
	}
	// Qualified path
	for m := enclosing; m != nil; m = p.parents[m] {
		if item, ok := p.lookupIn(m, path); ok {
			return item, true
		}
	}
	//
	return nil, false
}

// LookupFunction resolves a given path to a function declaration.
func (p *Unit) LookupFunction(enclosing *ast.Module, path []string) (*ast.Function, bool) {
	if item, ok := p.Lookup(enclosing, path); ok {
		if fn, ok := item.(*ast.Function); ok {
			return fn, true
		}
	}
	//
	return nil, false
}

// LookupGlobal resolves a given path to a global declaration.
func (p *Unit) LookupGlobal(enclosing *ast.Module, path []string) (*ast.GlobalDef, bool) {
	if item, ok := p.Lookup(enclosing, path); ok {
		if g, ok := item.(*ast.GlobalDef); ok {
			return g, true
		}
	}
	//
	return nil, false
}

// LookupTrait resolves a given path to a trait declaration.
func (p *Unit) LookupTrait(enclosing *ast.Module, path []string) (*ast.TraitDef, bool) {
	if item, ok := p.Lookup(enclosing, path); ok {
		if tr, ok := item.(*ast.TraitDef); ok {
			return tr, true
		}
	}
	//
	return nil, false
}

// Globals returns all global declarations of this unit, in declaration order
// (i.e. a pre-order walk of the module tree).
func (p *Unit) Globals() []*ast.GlobalDef {
	var globals []*ast.GlobalDef
	//
	walkItems(p.root, func(item ast.Item) {
		if g, ok := item.(*ast.GlobalDef); ok {
			globals = append(globals, g)
		}
	})
	//
	return globals
}

// Traits returns all trait declarations of this unit, in declaration order.
func (p *Unit) Traits() []*ast.TraitDef {
	var traits []*ast.TraitDef
	//
	walkItems(p.root, func(item ast.Item) {
		if tr, ok := item.(*ast.TraitDef); ok {
			traits = append(traits, tr)
		}
	})
	//
	return traits
}

// ============================================================================
// Declaration
// ============================================================================

func (p *Unit) declareModule(module *ast.Module, prefix string,
	srcmap *source.Maps[ast.Node]) []source.SyntaxError {
	//
	var errors []source.SyntaxError
	//
	for _, item := range module.Items {
		p.owners[item] = module
		//
		name, named := itemName(item)
		if named {
			qualified := name
			if prefix != "" {
				qualified = fmt.Sprintf("%s::%s", prefix, name)
			}
			// Module names must be unique within their parent, and likewise
			// for the remaining named declarations.
			if _, ok := p.items[qualified]; ok {
				msg := fmt.Sprintf("duplicate declaration of %s", qualified)
				errors = append(errors, *srcmap.SyntaxError(item, msg))
				//
				continue
			}
			//
			p.items[qualified] = item
		}
		//
		if sub, ok := item.(*ast.Module); ok {
			p.parents[sub] = module
			//
			qualified := sub.Name
			if prefix != "" {
				qualified = fmt.Sprintf("%s::%s", prefix, sub.Name)
			}
			//
			errors = append(errors, p.declareModule(sub, qualified, srcmap)...)
		}
	}
	//
	return errors
}

// lookupIn resolves a qualified path against a specific module by descending
// through the named submodules.
func (p *Unit) lookupIn(module *ast.Module, path []string) (ast.Item, bool) {
	for i := 0; i < len(path)-1; i++ {
		found := false
		//
		for _, item := range module.Items {
			if sub, ok := item.(*ast.Module); ok && sub.Name == path[i] {
				module, found = sub, true
				break
			}
		}
		//
		if !found {
			return nil, false
		}
	}
	// Finally, search the target module itself
	name := path[len(path)-1]
	//
	for _, item := range module.Items {
		if n, ok := itemName(item); ok && n == name {
			return item, true
		}
	}
	//
	return nil, false
}

func itemName(item ast.Item) (string, bool) {
	switch t := item.(type) {
	case *ast.Module:
		return t.Name, true
	case *ast.Function:
		return t.Name, true
	case *ast.StructDef:
		return t.Name, true
	case *ast.TraitDef:
		return t.Name, true
	case *ast.GlobalDef:
		return t.Name, true
	}
	// Impl blocks are anonymous.
	return "", false
}

func walkItems(module *ast.Module, fn func(ast.Item)) {
	for _, item := range module.Items {
		fn(item)
		//
		if sub, ok := item.(*ast.Module); ok {
			walkItems(sub, fn)
		}
	}
}
