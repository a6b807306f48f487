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
	"fmt"
	"strings"

	"github.com/consensys/go-quill/pkg/quill/ast"
	"github.com/consensys/go-quill/pkg/quill/resolver"
	"github.com/consensys/go-quill/pkg/util/source"
	log "github.com/sirupsen/logrus"
)

// Expand runs one macro expansion pass over a given module tree: comptime
// globals are initialised, every attribute of the unit is applied in strict
// declaration order, staged injections are spliced in and, finally, the
// mutated tree is re-resolved such that injected items are nameable exactly
// like hand-written ones.  Any error arising anywhere in this process is
// fatal to the pass as a whole.
func Expand(root *ast.Module, srcmap *source.Maps[ast.Node]) (*resolver.Unit, []source.SyntaxError) {
	unit, errors := resolver.Resolve(root, srcmap)
	if len(errors) > 0 {
		return nil, errors
	}
	//
	arena := NewArena(unit, srcmap)
	interp := NewInterpreter(arena)
	expander := &expander{arena, interp, newDeriveRegistry(unit)}
	//
	if err := interp.InitGlobals(); err != nil {
		return nil, expander.toSyntaxErrors(err, root)
	}
	// Apply attributes in flattened declaration order.
	for _, site := range collectSites(root) {
		if errs := expander.apply(site); len(errs) > 0 {
			return nil, errs
		}
	}
	// Splice staged injections into the tree.
	if errs := arena.Finalise(); len(errs) > 0 {
		return nil, errs
	}
	// Re-resolve, making injected items visible.
	return resolver.Resolve(root, srcmap)
}

// site identifies one attribute application: a given attribute of a given
// item.  Sites are ordered by a pre-order walk of the module tree, with the
// attributes of each item kept in their written (left-to-right) order.
type site struct {
	item ast.Item
	attr *ast.Attribute
}

func collectSites(root *ast.Module) []site {
	var sites []site
	//
	walkItems(root, func(item ast.Item) {
		for _, attr := range item.Attrs() {
			sites = append(sites, site{item, attr})
		}
	})
	//
	return sites
}

// expander applies individual attributes, routing derive attributes through
// the derive registry and the rest through comptime attribute functions.
type expander struct {
	arena  *Arena
	interp *Interpreter
	// Maps each trait declaring a derive_via attribute to its deriver.
	derivers map[*ast.TraitDef]*ast.Function
}

// newDeriveRegistry collects the derivers nominated (via derive_via
// attributes) by the traits of a unit.
func newDeriveRegistry(unit *resolver.Unit) map[*ast.TraitDef]*ast.Function {
	derivers := make(map[*ast.TraitDef]*ast.Function)
	//
	for _, trait := range unit.Traits() {
		for _, attr := range trait.Attrs() {
			if !attr.IsNamed("derive_via") || len(attr.Args) != 1 {
				continue
			}
			//
			if path, ok := attrPath(attr.Args[0]); ok {
				if fn, ok := unit.LookupFunction(unit.Owner(trait), path); ok {
					derivers[trait] = fn
				}
			}
		}
	}
	//
	return derivers
}

func (p *expander) apply(s site) []source.SyntaxError {
	switch {
	case s.attr.IsNamed("derive"):
		return p.applyDerive(s)
	case s.attr.IsNamed("derive_via"):
		// Handled by the registry, not applied as such.
		return nil
	}
	//
	return p.applyAttribute(s)
}

// applyAttribute resolves an attribute path against the owning module of its
// item.  An attribute which does not resolve to a comptime function is purely
// informational and applies vacuously.
func (p *expander) applyAttribute(s site) []source.SyntaxError {
	owner := p.arena.Unit().Owner(s.item)
	//
	fn, ok := p.arena.Unit().LookupFunction(owner, s.attr.Path)
	if !ok || !fn.Comptime {
		return nil
	}
	//
	log.Debugf("expanding #[%s]", s.attr.Name())
	//
	handle, err := p.handleOf(s)
	if err != nil {
		return p.toSyntaxErrors(err, s.attr)
	}
	//
	args := []Value{handle}
	// Remaining attribute arguments are evaluated in the scope of the owning
	// module.
	env := newEnvironment(owner)
	//
	for _, arg := range s.attr.Args {
		val, err := p.interp.evalExpr(env, arg)
		if err != nil {
			return p.toSyntaxErrors(err, s.attr)
		}
		//
		args = append(args, val)
	}
	//
	result, err := p.interp.CallFunction(fn, args, s.attr)
	if err != nil {
		return p.toSyntaxErrors(err, s.attr)
	}
	//
	return p.applyResult(result, owner, s)
}

// applyDerive applies a derive attribute, invoking the registered deriver of
// each named trait over the attributed struct.
func (p *expander) applyDerive(s site) []source.SyntaxError {
	def, ok := s.item.(*ast.StructDef)
	if !ok {
		err := evaluationErrorf(s.attr, "derive applies only to structs")
		return p.toSyntaxErrors(err, s.attr)
	}
	//
	owner := p.arena.Unit().Owner(s.item)
	//
	for _, arg := range s.attr.Args {
		path, ok := attrPath(arg)
		if !ok {
			err := evaluationErrorf(s.attr, "derive expects trait names")
			return p.toSyntaxErrors(err, s.attr)
		}
		//
		trait, ok := p.arena.Unit().LookupTrait(owner, path)
		if !ok {
			err := evaluationErrorf(s.attr, "unknown trait %s", strings.Join(path, "::"))
			return p.toSyntaxErrors(err, s.attr)
		}
		//
		deriver, ok := p.derivers[trait]
		if !ok {
			err := evaluationErrorf(s.attr, "trait %s has no derive_via attribute", trait.Name)
			return p.toSyntaxErrors(err, s.attr)
		}
		//
		log.Debugf("deriving %s for %s", trait.Name, def.Name)
		//
		handle := NewStructHandle(p.arena, def)
		//
		result, err := p.interp.CallFunction(deriver, []Value{handle}, s.attr)
		if err != nil {
			return p.toSyntaxErrors(err, s.attr)
		}
		//
		if errs := p.applyResult(result, owner, s); len(errs) > 0 {
			return errs
		}
	}
	//
	return nil
}

// applyResult interprets the return value of an attribute function: unit
// means the attribute was applied purely for its side effects, whilst a
// (non-empty) quoted value is staged for injection alongside the attributed
// item.
func (p *expander) applyResult(result Value, owner *ast.Module, s site) []source.SyntaxError {
	switch t := result.(type) {
	case Unit:
		return nil
	case QuotedVal:
		if t.Val.IsEmpty() {
			return nil
		}
		//
		if err := p.arena.Stage(owner, t.Val, s.attr); err != nil {
			return p.toSyntaxErrors(err, s.attr)
		}
		//
		return nil
	}
	//
	err := evaluationErrorf(s.attr, "attribute %s returned %s (expected unit or quoted)",
		s.attr.Name(), result.String())
	//
	return p.toSyntaxErrors(err, s.attr)
}

// handleOf constructs the reflection handle passed as first argument to an
// attribute function.
func (p *expander) handleOf(s site) (Value, *Error) {
	switch t := s.item.(type) {
	case *ast.Function:
		return NewFunctionHandle(p.arena, t), nil
	case *ast.StructDef:
		return NewStructHandle(p.arena, t), nil
	case *ast.Module:
		return NewModuleHandle(p.arena, t), nil
	}
	//
	return nil, evaluationErrorf(s.attr, "attribute %s cannot apply to this item", s.attr.Name())
}

// toSyntaxErrors converts an evaluation error into a syntax error against the
// original source, falling back on a given node when the error carries no
// (mapped) context of its own.
func (p *expander) toSyntaxErrors(err *Error, fallback ast.Node) []source.SyntaxError {
	srcmap := p.arena.SourceMaps()
	msg := fmt.Sprintf("%s: %s", err.Kind.String(), err.Msg)
	//
	if err.Context != nil && srcmap.Has(err.Context) {
		return srcmap.SyntaxErrors(err.Context, msg)
	}
	//
	return srcmap.SyntaxErrors(fallback, msg)
}

// attrPath extracts the path of an attribute argument which names an item
// (e.g. a trait or deriver function).
func attrPath(arg ast.Expr) ([]string, bool) {
	switch t := arg.(type) {
	case *ast.VarAccess:
		return []string{t.Name}, true
	case *ast.PathExpr:
		return t.Path, true
	}
	//
	return nil, false
}
