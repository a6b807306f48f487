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
	"strings"

	"github.com/consensys/go-quill/pkg/quill/ast"
)

// ModuleHandle is a first-class reference to a module of the compilation
// unit, as passed to attribute functions applied to modules and as returned
// by the module() query of other handles.  All handles share the arena of the
// enclosing expansion pass, through which their mutations are mediated.
type ModuleHandle struct {
	arena  *Arena
	module *ast.Module
}

// NewModuleHandle constructs a handle onto a given module.
func NewModuleHandle(arena *Arena, module *ast.Module) ModuleHandle {
	return ModuleHandle{arena, module}
}

func (p ModuleHandle) isValue()       {}
func (p ModuleHandle) String() string { return "module " + p.module.Name }

// Module returns the underlying module of this handle.
func (p ModuleHandle) Module() *ast.Module {
	return p.module
}

// invoke dispatches a reflection query against this module, returning false
// if no query of the given name exists.
func (p ModuleHandle) invoke(name string, args []Value, ctx ast.Node) (Value, *Error, bool) {
	switch name {
	case "name":
		if err := checkArity(name, args, 0, ctx); err != nil {
			return nil, err, true
		}
		//
		return QuotedVal{NewQuoted(p.module.Name)}, nil, true
	case "functions":
		if err := checkArity(name, args, 0, ctx); err != nil {
			return nil, err, true
		}
		//
		var fns []Value
		//
		for _, item := range p.module.Items {
			if fn, ok := item.(*ast.Function); ok {
				fns = append(fns, FunctionHandle{p.arena, fn})
			}
		}
		//
		return Slice{fns}, nil, true
	case "structs":
		if err := checkArity(name, args, 0, ctx); err != nil {
			return nil, err, true
		}
		//
		var defs []Value
		//
		for _, item := range p.module.Items {
			if def, ok := item.(*ast.StructDef); ok {
				defs = append(defs, StructHandle{p.arena, def})
			}
		}
		//
		return Slice{defs}, nil, true
	case "add_item":
		if err := checkArity(name, args, 1, ctx); err != nil {
			return nil, err, true
		}
		//
		text, err := expectQuoted(name, args[0], ctx)
		if err != nil {
			return nil, err, true
		}
		// Injection is deferred until the pass completes.
		if err := p.arena.Stage(p.module, text, ctx); err != nil {
			return nil, err, true
		}
		//
		return Unit{}, nil, true
	case "has_named_attribute":
		return hasNamedAttribute(p.module, name, args, ctx)
	}
	//
	return nil, nil, false
}

// FunctionHandle is a first-class reference to a function declaration.
// Unlike item injection, writes through a function handle take effect
// immediately: they alter an existing item in place and so cannot disturb the
// iteration order of the enclosing pass.
type FunctionHandle struct {
	arena *Arena
	fn    *ast.Function
}

// NewFunctionHandle constructs a handle onto a given function.
func NewFunctionHandle(arena *Arena, fn *ast.Function) FunctionHandle {
	return FunctionHandle{arena, fn}
}

func (p FunctionHandle) isValue()       {}
func (p FunctionHandle) String() string { return "fn " + p.fn.Name }

// Function returns the underlying declaration of this handle.
func (p FunctionHandle) Function() *ast.Function {
	return p.fn
}

// invoke dispatches a reflection query against this function, returning false
// if no query of the given name exists.
//
//nolint:gocyclo
func (p FunctionHandle) invoke(name string, args []Value, ctx ast.Node) (Value, *Error, bool) {
	switch name {
	case "name":
		if err := checkArity(name, args, 0, ctx); err != nil {
			return nil, err, true
		}
		//
		return QuotedVal{NewQuoted(p.fn.Name)}, nil, true
	case "parameters":
		if err := checkArity(name, args, 0, ctx); err != nil {
			return nil, err, true
		}
		//
		var params []Value
		//
		for _, param := range p.fn.Params {
			params = append(params, Tuple{[]Value{
				QuotedVal{NewQuoted(param.Name)},
				TypeVal{param.Type},
			}})
		}
		//
		return Slice{params}, nil, true
	case "set_parameters":
		if err := checkArity(name, args, 1, ctx); err != nil {
			return nil, err, true
		}
		//
		return p.setParameters(args[0], ctx)
	case "return_type":
		if err := checkArity(name, args, 0, ctx); err != nil {
			return nil, err, true
		}
		//
		if p.fn.Return == nil {
			return TypeVal{&ast.UnitType{}}, nil, true
		}
		//
		return TypeVal{p.fn.Return}, nil, true
	case "set_return_type":
		if err := checkArity(name, args, 1, ctx); err != nil {
			return nil, err, true
		}
		//
		return p.setReturnType(args[0], ctx)
	case "body":
		if err := checkArity(name, args, 0, ctx); err != nil {
			return nil, err, true
		}
		//
		if p.fn.Body == nil {
			return nil, reflectionErrorf(ctx, "function %s has no body", p.fn.Name), true
		}
		//
		return ExprVal{p.fn.Body}, nil, true
	case "set_body":
		if err := checkArity(name, args, 1, ctx); err != nil {
			return nil, err, true
		}
		//
		return p.setBody(args[0], ctx)
	case "is_unconstrained":
		if err := checkArity(name, args, 0, ctx); err != nil {
			return nil, err, true
		}
		//
		return Bool{p.fn.Unconstrained}, nil, true
	case "set_unconstrained":
		if err := checkArity(name, args, 1, ctx); err != nil {
			return nil, err, true
		}
		//
		flag, err := expectBool(name, args[0], ctx)
		if err != nil {
			return nil, err, true
		} else if err := p.arena.checkOpen(ctx); err != nil {
			return nil, err, true
		}
		//
		p.fn.Unconstrained = flag
		//
		return Unit{}, nil, true
	case "set_return_public":
		if err := checkArity(name, args, 1, ctx); err != nil {
			return nil, err, true
		}
		//
		flag, err := expectBool(name, args[0], ctx)
		if err != nil {
			return nil, err, true
		} else if err := p.arena.checkOpen(ctx); err != nil {
			return nil, err, true
		}
		//
		p.fn.ReturnPublic = flag
		//
		return Unit{}, nil, true
	case "has_named_attribute":
		return hasNamedAttribute(p.fn, name, args, ctx)
	case "module":
		if err := checkArity(name, args, 0, ctx); err != nil {
			return nil, err, true
		}
		//
		owner := p.arena.Unit().Owner(p.fn)
		//
		return ModuleHandle{p.arena, owner}, nil, true
	case "as_typed_expr":
		if err := checkArity(name, args, 0, ctx); err != nil {
			return nil, err, true
		}
		//
		owner := p.arena.Unit().Owner(p.fn)
		qualified := p.arena.Unit().QualifiedName(owner, p.fn.Name)
		//
		return ExprVal{&ast.PathExpr{Path: strings.Split(qualified, "::")}}, nil, true
	}
	//
	return nil, nil, false
}

// setParameters replaces the parameter list of this function with a given
// slice of (name, type) pairs.
func (p FunctionHandle) setParameters(arg Value, ctx ast.Node) (Value, *Error, bool) {
	slice, ok := arg.(Slice)
	if !ok {
		return nil, reflectionErrorf(ctx, "set_parameters expects a slice of (name, type) pairs"), true
	}
	//
	params := make([]ast.Param, len(slice.Elems))
	//
	for i, elem := range slice.Elems {
		pair, ok := elem.(Tuple)
		if !ok || len(pair.Elems) != 2 {
			return nil, reflectionErrorf(ctx, "set_parameters expects a slice of (name, type) pairs"), true
		}
		//
		name, ok1 := pair.Elems[0].(QuotedVal)
		typ, ok2 := pair.Elems[1].(TypeVal)
		//
		if !ok1 || !ok2 || len(name.Val.Tokens()) != 1 {
			return nil, reflectionErrorf(ctx, "parameter %d is not a (name, type) pair", i), true
		}
		//
		params[i] = ast.Param{Name: name.Val.Tokens()[0], Type: typ.Type}
	}
	//
	if err := p.arena.checkOpen(ctx); err != nil {
		return nil, err, true
	}
	//
	p.fn.Params = params
	//
	return Unit{}, nil, true
}

// setReturnType replaces the return type of this function.
func (p FunctionHandle) setReturnType(arg Value, ctx ast.Node) (Value, *Error, bool) {
	typ, ok := arg.(TypeVal)
	if !ok {
		return nil, reflectionErrorf(ctx, "set_return_type expects a type"), true
	}
	//
	if err := p.arena.checkOpen(ctx); err != nil {
		return nil, err, true
	}
	//
	if _, ok := typ.Type.(*ast.UnitType); ok {
		p.fn.Return = nil
	} else {
		p.fn.Return = typ.Type
	}
	//
	return Unit{}, nil, true
}

// setBody replaces the body of this function.  The replacement is given
// either as an already parsed expression, or as a quoted fragment which is
// parsed at this point (and whose failure to parse is fatal).
func (p FunctionHandle) setBody(arg Value, ctx ast.Node) (Value, *Error, bool) {
	var body ast.Expr
	//
	switch t := arg.(type) {
	case ExprVal:
		body = t.Expr
	case QuotedVal:
		expr, srcmap, errs := t.Val.ParseAsExpr()
		if len(errs) > 0 {
			return nil, parseErrorf(ctx, "replacement body does not parse: %s", errs[0].Message()), true
		}
		//
		p.arena.SourceMaps().Join(srcmap)
		body = expr
	default:
		return nil, reflectionErrorf(ctx, "set_body expects an expression or quoted fragment"), true
	}
	//
	if err := p.arena.checkOpen(ctx); err != nil {
		return nil, err, true
	}
	//
	if block, ok := body.(*ast.Block); ok {
		p.fn.Body = block
	} else {
		p.fn.Body = &ast.Block{Result: body}
	}
	//
	return Unit{}, nil, true
}

// StructHandle is a first-class reference to a struct declaration.
type StructHandle struct {
	arena *Arena
	def   *ast.StructDef
}

// NewStructHandle constructs a handle onto a given struct.
func NewStructHandle(arena *Arena, def *ast.StructDef) StructHandle {
	return StructHandle{arena, def}
}

func (p StructHandle) isValue()       {}
func (p StructHandle) String() string { return "struct " + p.def.Name }

// StructDef returns the underlying declaration of this handle.
func (p StructHandle) StructDef() *ast.StructDef {
	return p.def
}

// invoke dispatches a reflection query against this struct, returning false
// if no query of the given name exists.
func (p StructHandle) invoke(name string, args []Value, ctx ast.Node) (Value, *Error, bool) {
	switch name {
	case "name":
		if err := checkArity(name, args, 0, ctx); err != nil {
			return nil, err, true
		}
		//
		return QuotedVal{NewQuoted(p.def.Name)}, nil, true
	case "as_type":
		if err := checkArity(name, args, 0, ctx); err != nil {
			return nil, err, true
		}
		//
		var typeArgs []ast.Type
		//
		for _, g := range p.def.Generics {
			typeArgs = append(typeArgs, &ast.NamedType{Path: []string{g.Name}})
		}
		//
		return TypeVal{&ast.NamedType{Path: []string{p.def.Name}, Args: typeArgs}}, nil, true
	case "generics":
		if err := checkArity(name, args, 0, ctx); err != nil {
			return nil, err, true
		}
		//
		var generics []Value
		//
		for _, g := range p.def.Generics {
			generics = append(generics, QuotedVal{NewQuoted(g.Name)})
		}
		//
		return Slice{generics}, nil, true
	case "fields_as_written":
		if err := checkArity(name, args, 0, ctx); err != nil {
			return nil, err, true
		}
		//
		var fields []Value
		//
		for _, f := range p.def.Fields {
			fields = append(fields, Tuple{[]Value{
				QuotedVal{NewQuoted(f.Name)},
				TypeVal{f.Type},
			}})
		}
		//
		return Slice{fields}, nil, true
	case "field_defaults":
		if err := checkArity(name, args, 0, ctx); err != nil {
			return nil, err, true
		}
		//
		return p.fieldDefaults(ctx)
	case "has_named_attribute":
		return hasNamedAttribute(p.def, name, args, ctx)
	case "module":
		if err := checkArity(name, args, 0, ctx); err != nil {
			return nil, err, true
		}
		//
		owner := p.arena.Unit().Owner(p.def)
		//
		return ModuleHandle{p.arena, owner}, nil, true
	}
	//
	return nil, nil, false
}

// fieldDefaults returns the (name, default) pairs of those fields declaring a
// default.  Defaults are held as raw token sequences, and are only parsed
// here; a malformed default thus surfaces at the reflecting macro rather than
// at the original declaration site.
func (p StructHandle) fieldDefaults(ctx ast.Node) (Value, *Error, bool) {
	var defaults []Value
	//
	for _, f := range p.def.Fields {
		if f.Default == nil {
			continue
		}
		//
		expr, srcmap, errs := NewQuoted(f.Default...).ParseAsExpr()
		if len(errs) > 0 {
			return nil, reflectionErrorf(ctx, "default of field %s::%s does not parse: %s",
				p.def.Name, f.Name, errs[0].Message()), true
		}
		//
		p.arena.SourceMaps().Join(srcmap)
		//
		defaults = append(defaults, Tuple{[]Value{
			QuotedVal{NewQuoted(f.Name)},
			ExprVal{expr},
		}})
	}
	//
	return Slice{defaults}, nil, true
}

// hasNamedAttribute answers the has_named_attribute query shared by every
// handle kind.
func hasNamedAttribute(item ast.Item, method string, args []Value, ctx ast.Node) (Value, *Error, bool) {
	if err := checkArity(method, args, 1, ctx); err != nil {
		return nil, err, true
	}
	//
	name, err := expectStr(method, args[0], ctx)
	if err != nil {
		return nil, err, true
	}
	//
	for _, attr := range item.Attrs() {
		if attr.Name() == name {
			return Bool{true}, nil, true
		}
	}
	//
	return Bool{false}, nil, true
}

// ============================================================================
// Argument helpers
// ============================================================================

func checkArity(method string, args []Value, n int, ctx ast.Node) *Error {
	if len(args) != n {
		return evaluationErrorf(ctx, "%s expects %d argument(s), got %d", method, n, len(args))
	}
	//
	return nil
}

func expectQuoted(method string, arg Value, ctx ast.Node) (Quoted, *Error) {
	if q, ok := arg.(QuotedVal); ok {
		return q.Val, nil
	}
	//
	return Quoted{}, evaluationErrorf(ctx, "%s expects a quoted argument, got %s", method, arg.String())
}

func expectStr(method string, arg Value, ctx ast.Node) (string, *Error) {
	if s, ok := arg.(Str); ok {
		return s.Val, nil
	}
	//
	return "", evaluationErrorf(ctx, "%s expects a string argument, got %s", method, arg.String())
}

func expectBool(method string, arg Value, ctx ast.Node) (bool, *Error) {
	if b, ok := arg.(Bool); ok {
		return b.Val, nil
	}
	//
	return false, evaluationErrorf(ctx, "%s expects a boolean argument, got %s", method, arg.String())
}
