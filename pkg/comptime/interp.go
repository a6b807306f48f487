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
	"math/big"
	"strconv"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/consensys/go-quill/pkg/quill/ast"
	"github.com/consensys/go-quill/pkg/quill/lexer"
	"github.com/consensys/go-quill/pkg/util/source"
)

// Bound on the depth of nested comptime calls, guarding against runaway
// recursion in attribute functions.
const maxCallDepth = 256

// Interpreter is a single-threaded, tree-walking evaluator for comptime code.
// One interpreter serves an entire expansion pass, such that mutations of
// comptime globals made by one attribute function are visible to those which
// follow it.
type Interpreter struct {
	// Arena mediating reflection over the unit being expanded.
	arena *Arena
	// Current values of all comptime globals, keyed by declaration.
	globals map[*ast.GlobalDef]Value
	// Current depth of nested calls.
	depth uint
}

// NewInterpreter constructs an interpreter over a given arena, with all
// global slots initially unset.
func NewInterpreter(arena *Arena) *Interpreter {
	return &Interpreter{
		arena:   arena,
		globals: make(map[*ast.GlobalDef]Value),
	}
}

// Arena returns the arena over which this interpreter operates.
func (p *Interpreter) Arena() *Arena {
	return p.arena
}

// InitGlobals evaluates the initialiser of every comptime global of the unit,
// in declaration order.  Since an initialiser can refer to globals declared
// before it, order matters here.
func (p *Interpreter) InitGlobals() *Error {
	for _, g := range p.arena.Unit().Globals() {
		if !g.Comptime {
			continue
		}
		//
		owner := p.arena.Unit().Owner(g)
		env := newEnvironment(owner)
		//
		val, err := p.evalExpr(env, g.Init)
		if err != nil {
			return err
		}
		//
		val, err = p.coerce(val, g.Type, g.Init)
		if err != nil {
			return err
		}
		//
		p.globals[g] = val
	}
	//
	return nil
}

// GlobalValue returns the current value of a given comptime global.
func (p *Interpreter) GlobalValue(g *ast.GlobalDef) (Value, bool) {
	val, ok := p.globals[g]
	return val, ok
}

// CallFunction invokes a given function with a given set of argument values,
// in the scope of its owning module.  Arguments are coerced against the
// declared parameter types, such that (for example) an integer flowing into a
// Field parameter becomes a field element.
func (p *Interpreter) CallFunction(fn *ast.Function, args []Value, ctx ast.Node) (Value, *Error) {
	if fn.Body == nil {
		return nil, evaluationErrorf(ctx, "cannot call bodyless function %s", fn.Name)
	} else if len(args) != len(fn.Params) {
		return nil, evaluationErrorf(ctx, "%s expects %d argument(s), got %d", fn.Name, len(fn.Params), len(args))
	} else if p.depth >= maxCallDepth {
		return nil, evaluationErrorf(ctx, "call depth exceeded in %s", fn.Name)
	}
	//
	owner := p.arena.Unit().Owner(fn)
	env := newEnvironment(owner)
	//
	for i, param := range fn.Params {
		arg, err := p.coerce(args[i], param.Type, ctx)
		if err != nil {
			return nil, err
		}
		//
		env.declare(param.Name, arg, false)
	}
	//
	p.depth++
	defer func() { p.depth-- }()
	//
	result, err := p.evalBlock(env, fn.Body)
	if err != nil {
		return nil, err
	}
	// Fix the representation of the result against the declared return type.
	return p.coerce(result, fn.Return, ctx)
}

// ============================================================================
// Environment
// ============================================================================

// environment holds the local bindings of one function activation, as a stack
// of lexical scopes, together with the module against which free names are
// resolved.
type environment struct {
	module *ast.Module
	scopes []map[string]binding
}

// binding pairs the value of a local variable with its declared mutability.
type binding struct {
	value   Value
	mutable bool
}

func newEnvironment(module *ast.Module) *environment {
	return &environment{module, []map[string]binding{make(map[string]binding)}}
}

func (p *environment) push() {
	p.scopes = append(p.scopes, make(map[string]binding))
}

func (p *environment) pop() {
	p.scopes = p.scopes[:len(p.scopes)-1]
}

func (p *environment) declare(name string, val Value, mutable bool) {
	p.scopes[len(p.scopes)-1][name] = binding{val, mutable}
}

func (p *environment) lookup(name string) (Value, bool) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if b, ok := p.scopes[i][name]; ok {
			return b.value, true
		}
	}
	//
	return nil, false
}

// assign overwrites an existing binding.  The first result indicates whether
// any binding of the given name exists; the second whether it was declared
// mutable (an immutable binding is left untouched).
func (p *environment) assign(name string, val Value) (bool, bool) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if b, ok := p.scopes[i][name]; ok {
			if !b.mutable {
				return true, false
			}
			//
			p.scopes[i][name] = binding{val, true}
			//
			return true, true
		}
	}
	//
	return false, false
}

// ============================================================================
// Statements
// ============================================================================

func (p *Interpreter) evalBlock(env *environment, block *ast.Block) (Value, *Error) {
	env.push()
	defer env.pop()
	//
	for _, stmt := range block.Stmts {
		if err := p.execStmt(env, stmt); err != nil {
			return nil, err
		}
	}
	//
	if block.Result == nil {
		return Unit{}, nil
	}
	//
	return p.evalExpr(env, block.Result)
}

func (p *Interpreter) execStmt(env *environment, stmt ast.Stmt) *Error {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		return p.execLet(env, s)
	case *ast.AssignStmt:
		return p.execAssign(env, s)
	case *ast.ForStmt:
		return p.execFor(env, s)
	case *ast.ExprStmt:
		_, err := p.evalExpr(env, s.Expr)
		return err
	}
	//
	return evaluationErrorf(stmt, "unknown statement")
}

func (p *Interpreter) execLet(env *environment, stmt *ast.LetStmt) *Error {
	val, err := p.evalExpr(env, stmt.Init)
	if err != nil {
		return err
	}
	//
	val, err = p.coerce(val, stmt.Type, stmt)
	if err != nil {
		return err
	}
	//
	env.declare(stmt.Name, val, stmt.Mutable)
	//
	return nil
}

func (p *Interpreter) execAssign(env *environment, stmt *ast.AssignStmt) *Error {
	val, err := p.evalExpr(env, stmt.Value)
	if err != nil {
		return err
	}
	//
	switch target := stmt.Target.(type) {
	case *ast.VarAccess:
		// Locals shadow globals.
		if found, mutable := env.assign(target.Name, val); found {
			if !mutable {
				return evaluationErrorf(stmt, "cannot assign immutable variable %s", target.Name)
			}
			//
			return nil
		}
		//
		return p.assignGlobal(env, []string{target.Name}, val, stmt)
	case *ast.PathExpr:
		return p.assignGlobal(env, target.Path, val, stmt)
	case *ast.FieldAccessExpr, *ast.IndexExpr:
		return evaluationErrorf(stmt, "unsupported assignment target (assign the whole value instead)")
	}
	//
	return evaluationErrorf(stmt, "invalid assignment target")
}

// assignGlobal writes a comptime mutable global.  Assigning anything else is
// an evaluation error.
func (p *Interpreter) assignGlobal(env *environment, path []string, val Value, ctx ast.Node) *Error {
	g, ok := p.arena.Unit().LookupGlobal(env.module, path)
	if !ok {
		return evaluationErrorf(ctx, "cannot assign unknown variable %s", strings.Join(path, "::"))
	} else if !g.Comptime || !g.Mutable {
		return evaluationErrorf(ctx, "cannot assign immutable global %s", g.Name)
	}
	//
	val, err := p.coerce(val, g.Type, ctx)
	if err != nil {
		return err
	}
	//
	p.globals[g] = val
	//
	return nil
}

func (p *Interpreter) execFor(env *environment, stmt *ast.ForStmt) *Error {
	iter, err := p.evalExpr(env, stmt.Iter)
	if err != nil {
		return err
	}
	//
	var elems []Value
	//
	switch t := iter.(type) {
	case Range:
		for i := new(big.Int).Set(t.Start); i.Cmp(t.End) < 0; i.Add(i, big.NewInt(1)) {
			elems = append(elems, Int{new(big.Int).Set(i)})
		}
	case Slice:
		elems = t.Elems
	default:
		return evaluationErrorf(stmt.Iter, "cannot iterate %s", iter.String())
	}
	//
	for _, elem := range elems {
		env.push()
		env.declare(stmt.Var, elem, false)
		//
		_, err := p.evalBlock(env, stmt.Body)
		//
		env.pop()
		//
		if err != nil {
			return err
		}
	}
	//
	return nil
}

// ============================================================================
// Expressions
// ============================================================================

//nolint:gocyclo
func (p *Interpreter) evalExpr(env *environment, expr ast.Expr) (Value, *Error) {
	switch e := expr.(type) {
	case *ast.Block:
		return p.evalBlock(env, e)
	case *ast.IntLit:
		return Int{e.Value}, nil
	case *ast.BoolLit:
		return Bool{e.Value}, nil
	case *ast.StringLit:
		return Str{e.Value}, nil
	case *ast.FStringLit:
		return p.evalFString(env, e)
	case *ast.VarAccess:
		return p.evalName(env, []string{e.Name}, e)
	case *ast.PathExpr:
		return p.evalName(env, e.Path, e)
	case *ast.CallExpr:
		return p.evalCall(env, e)
	case *ast.MethodCallExpr:
		return p.evalMethodCall(env, e)
	case *ast.FieldAccessExpr:
		return p.evalFieldAccess(env, e)
	case *ast.IndexExpr:
		return p.evalIndex(env, e)
	case *ast.UnaryExpr:
		return p.evalUnary(env, e)
	case *ast.BinaryExpr:
		return p.evalBinary(env, e)
	case *ast.RangeExpr:
		return p.evalRange(env, e)
	case *ast.SliceLit:
		return p.evalSeq(env, e.Elems, func(vs []Value) Value { return Slice{vs} })
	case *ast.TupleLit:
		return p.evalSeq(env, e.Elems, func(vs []Value) Value { return Tuple{vs} })
	case *ast.StructLit:
		return p.evalStructLit(env, e)
	case *ast.IfExpr:
		return p.evalIf(env, e)
	case *ast.QuoteExpr:
		return p.evalQuote(env, e)
	}
	//
	return nil, evaluationErrorf(expr, "unknown expression")
}

// evalName resolves a (possibly qualified) name, checking local bindings
// first, then comptime globals and finally function declarations.
func (p *Interpreter) evalName(env *environment, path []string, ctx ast.Node) (Value, *Error) {
	if len(path) == 1 {
		if val, ok := env.lookup(path[0]); ok {
			return val, nil
		}
	}
	//
	if item, ok := p.arena.Unit().Lookup(env.module, path); ok {
		switch t := item.(type) {
		case *ast.GlobalDef:
			if val, ok := p.globals[t]; ok {
				return val, nil
			}
			//
			return nil, evaluationErrorf(ctx, "global %s accessed before initialisation", t.Name)
		case *ast.Function:
			return FnRef{t, p.arena.Unit().Owner(t)}, nil
		}
	}
	//
	return nil, evaluationErrorf(ctx, "unknown variable %s", strings.Join(path, "::"))
}

func (p *Interpreter) evalFString(env *environment, expr *ast.FStringLit) (Value, *Error) {
	var builder strings.Builder
	//
	for _, part := range expr.Parts {
		if part.Ident == "" {
			builder.WriteString(part.Text)
			continue
		}
		//
		val, err := p.evalName(env, []string{part.Ident}, expr)
		if err != nil {
			return nil, err
		}
		//
		builder.WriteString(val.String())
	}
	//
	return Str{builder.String()}, nil
}

func (p *Interpreter) evalCall(env *environment, expr *ast.CallExpr) (Value, *Error) {
	// Builtin functions take precedence and cannot be shadowed.
	switch callee := expr.Callee.(type) {
	case *ast.VarAccess:
		if callee.Name == "assert" {
			return p.evalAssert(env, expr)
		}
	}
	//
	callee, err := p.evalExpr(env, expr.Callee)
	if err != nil {
		return nil, err
	}
	//
	fn, ok := callee.(FnRef)
	if !ok {
		return nil, evaluationErrorf(expr, "%s is not callable", callee.String())
	}
	//
	args, err := p.evalArgs(env, expr.Args)
	if err != nil {
		return nil, err
	}
	//
	return p.CallFunction(fn.Fn, args, expr)
}

// evalAssert implements the assert builtin.  A failing assertion is fatal to
// the enclosing compilation.
func (p *Interpreter) evalAssert(env *environment, expr *ast.CallExpr) (Value, *Error) {
	if len(expr.Args) == 0 || len(expr.Args) > 2 {
		return nil, evaluationErrorf(expr, "assert expects 1 or 2 argument(s)")
	}
	//
	cond, err := p.evalExpr(env, expr.Args[0])
	if err != nil {
		return nil, err
	}
	//
	flag, ok := cond.(Bool)
	if !ok {
		return nil, evaluationErrorf(expr.Args[0], "assert condition is not a boolean")
	}
	//
	if !flag.Val {
		msg := "assertion failed"
		//
		if len(expr.Args) == 2 {
			val, err := p.evalExpr(env, expr.Args[1])
			if err != nil {
				return nil, err
			}
			//
			msg = "assertion failed: " + val.String()
		}
		//
		return nil, evaluationErrorf(expr, "%s", msg)
	}
	//
	return Unit{}, nil
}

func (p *Interpreter) evalMethodCall(env *environment, expr *ast.MethodCallExpr) (Value, *Error) {
	recv, err := p.evalExpr(env, expr.Receiver)
	if err != nil {
		return nil, err
	}
	//
	args, err := p.evalArgs(env, expr.Args)
	if err != nil {
		return nil, err
	}
	// Builtin methods (including reflection queries) take precedence.
	if val, err, ok := p.callBuiltinMethod(recv, expr.Method, args, expr); ok {
		return val, err
	}
	// Otherwise, look for a trait implementation over the receiver.
	if sv, ok := recv.(Struct); ok {
		if fn, ok := p.lookupImplMethod(env, sv.Name, expr.Method); ok {
			return p.CallFunction(fn, append([]Value{recv}, args...), expr)
		}
	}
	//
	return nil, evaluationErrorf(expr, "unknown method %s on %s", expr.Method, recv.String())
}

// lookupImplMethod searches the impl blocks of the unit for a method of a
// given name implemented over a given struct type.
func (p *Interpreter) lookupImplMethod(env *environment, typename string, method string) (*ast.Function, bool) {
	var found *ast.Function
	//
	walkItems(p.arena.Unit().Root(), func(item ast.Item) {
		impl, ok := item.(*ast.ImplDef)
		if !ok || found != nil {
			return
		}
		//
		target, ok := impl.Target.(*ast.NamedType)
		if !ok || target.Path[len(target.Path)-1] != typename {
			return
		}
		//
		for _, fn := range impl.Functions {
			if fn.Name == method {
				found = fn
				return
			}
		}
	})
	//
	return found, found != nil
}

func (p *Interpreter) evalFieldAccess(env *environment, expr *ast.FieldAccessExpr) (Value, *Error) {
	recv, err := p.evalExpr(env, expr.Receiver)
	if err != nil {
		return nil, err
	}
	//
	switch t := recv.(type) {
	case Struct:
		if val, ok := t.Field(expr.Field); ok {
			return val, nil
		}
	case Tuple:
		// Tuple projection (e.g. pair.0)
		if index, err := strconv.Atoi(expr.Field); err == nil && index >= 0 && index < len(t.Elems) {
			return t.Elems[index], nil
		}
	}
	//
	return nil, evaluationErrorf(expr, "unknown field %s on %s", expr.Field, recv.String())
}

func (p *Interpreter) evalIndex(env *environment, expr *ast.IndexExpr) (Value, *Error) {
	recv, err := p.evalExpr(env, expr.Receiver)
	if err != nil {
		return nil, err
	}
	//
	index, err := p.evalExpr(env, expr.Index)
	if err != nil {
		return nil, err
	}
	//
	slice, ok1 := recv.(Slice)
	i, ok2 := index.(Int)
	//
	if !ok1 || !ok2 {
		return nil, evaluationErrorf(expr, "cannot index %s with %s", recv.String(), index.String())
	} else if !i.Val.IsInt64() || i.Val.Int64() < 0 || i.Val.Int64() >= int64(len(slice.Elems)) {
		return nil, evaluationErrorf(expr, "index %s out of bounds", i.String())
	}
	//
	return slice.Elems[i.Val.Int64()], nil
}

func (p *Interpreter) evalUnary(env *environment, expr *ast.UnaryExpr) (Value, *Error) {
	operand, err := p.evalExpr(env, expr.Operand)
	if err != nil {
		return nil, err
	}
	//
	switch t := operand.(type) {
	case Bool:
		if expr.Op == ast.UN_NOT {
			return Bool{!t.Val}, nil
		}
	case Int:
		if expr.Op == ast.UN_NEG {
			return Int{new(big.Int).Neg(t.Val)}, nil
		}
	case FieldElt:
		if expr.Op == ast.UN_NEG {
			var elt fr.Element
			elt.Neg(&t.Val)
			//
			return FieldElt{elt}, nil
		}
	}
	//
	return nil, evaluationErrorf(expr, "cannot apply %s to %s", expr.Op.String(), operand.String())
}

func (p *Interpreter) evalBinary(env *environment, expr *ast.BinaryExpr) (Value, *Error) {
	lhs, err := p.evalExpr(env, expr.Lhs)
	if err != nil {
		return nil, err
	}
	// Logical operators short-circuit.
	switch expr.Op {
	case ast.BIN_OR_OR, ast.BIN_AND_AND:
		return p.evalLogical(env, expr, lhs)
	}
	//
	rhs, err := p.evalExpr(env, expr.Rhs)
	if err != nil {
		return nil, err
	}
	//
	switch expr.Op {
	case ast.BIN_EQ:
		return Bool{valuesEqual(lhs, rhs)}, nil
	case ast.BIN_NEQ:
		return Bool{!valuesEqual(lhs, rhs)}, nil
	}
	// Field arithmetic applies whenever either operand is a field element.
	_, lf := lhs.(FieldElt)
	_, rf := rhs.(FieldElt)
	//
	if lf || rf {
		return p.evalFieldOp(expr, lhs, rhs)
	}
	//
	return p.evalIntOp(expr, lhs, rhs)
}

func (p *Interpreter) evalLogical(env *environment, expr *ast.BinaryExpr, lhs Value) (Value, *Error) {
	l, ok := lhs.(Bool)
	if !ok {
		return nil, evaluationErrorf(expr.Lhs, "operand of %s is not a boolean", expr.Op.String())
	}
	//
	if expr.Op == ast.BIN_OR_OR && l.Val {
		return Bool{true}, nil
	} else if expr.Op == ast.BIN_AND_AND && !l.Val {
		return Bool{false}, nil
	}
	//
	rhs, err := p.evalExpr(env, expr.Rhs)
	if err != nil {
		return nil, err
	}
	//
	r, ok := rhs.(Bool)
	if !ok {
		return nil, evaluationErrorf(expr.Rhs, "operand of %s is not a boolean", expr.Op.String())
	}
	//
	return r, nil
}

// evalFieldOp applies an arithmetic operator over the native field.
func (p *Interpreter) evalFieldOp(expr *ast.BinaryExpr, lhs Value, rhs Value) (Value, *Error) {
	if !isNumeric(lhs) || !isNumeric(rhs) {
		return nil, evaluationErrorf(expr, "cannot apply %s to %s and %s",
			expr.Op.String(), lhs.String(), rhs.String())
	}
	//
	var (
		l   = fieldOf(lhs).Val
		r   = fieldOf(rhs).Val
		elt fr.Element
	)
	//
	switch expr.Op {
	case ast.BIN_ADD:
		elt.Add(&l, &r)
	case ast.BIN_SUB:
		elt.Sub(&l, &r)
	case ast.BIN_MUL:
		elt.Mul(&l, &r)
	case ast.BIN_DIV:
		if r.IsZero() {
			return nil, evaluationErrorf(expr, "division by zero")
		}
		//
		elt.Div(&l, &r)
	default:
		return nil, evaluationErrorf(expr, "cannot apply %s to field elements", expr.Op.String())
	}
	//
	return FieldElt{elt}, nil
}

// evalIntOp applies an arithmetic, comparison or bitwise operator over
// (unbounded) integers.
//
//nolint:gocyclo
func (p *Interpreter) evalIntOp(expr *ast.BinaryExpr, lhs Value, rhs Value) (Value, *Error) {
	l, ok1 := lhs.(Int)
	r, ok2 := rhs.(Int)
	//
	if !ok1 || !ok2 {
		return nil, evaluationErrorf(expr, "cannot apply %s to %s and %s",
			expr.Op.String(), lhs.String(), rhs.String())
	}
	//
	switch expr.Op {
	case ast.BIN_LT:
		return Bool{l.Val.Cmp(r.Val) < 0}, nil
	case ast.BIN_LTEQ:
		return Bool{l.Val.Cmp(r.Val) <= 0}, nil
	case ast.BIN_GT:
		return Bool{l.Val.Cmp(r.Val) > 0}, nil
	case ast.BIN_GTEQ:
		return Bool{l.Val.Cmp(r.Val) >= 0}, nil
	case ast.BIN_ADD:
		return Int{new(big.Int).Add(l.Val, r.Val)}, nil
	case ast.BIN_SUB:
		return Int{new(big.Int).Sub(l.Val, r.Val)}, nil
	case ast.BIN_MUL:
		return Int{new(big.Int).Mul(l.Val, r.Val)}, nil
	case ast.BIN_DIV, ast.BIN_REM:
		if r.Val.Sign() == 0 {
			return nil, evaluationErrorf(expr, "division by zero")
		}
		//
		if expr.Op == ast.BIN_DIV {
			return Int{new(big.Int).Quo(l.Val, r.Val)}, nil
		}
		//
		return Int{new(big.Int).Rem(l.Val, r.Val)}, nil
	case ast.BIN_OR:
		return Int{new(big.Int).Or(l.Val, r.Val)}, nil
	case ast.BIN_AND:
		return Int{new(big.Int).And(l.Val, r.Val)}, nil
	}
	//
	return nil, evaluationErrorf(expr, "cannot apply %s to integers", expr.Op.String())
}

func (p *Interpreter) evalRange(env *environment, expr *ast.RangeExpr) (Value, *Error) {
	start, err := p.evalExpr(env, expr.Start)
	if err != nil {
		return nil, err
	}
	//
	end, err := p.evalExpr(env, expr.End)
	if err != nil {
		return nil, err
	}
	//
	s, ok1 := start.(Int)
	e, ok2 := end.(Int)
	//
	if !ok1 || !ok2 {
		return nil, evaluationErrorf(expr, "range bounds must be integers")
	}
	//
	return Range{s.Val, e.Val}, nil
}

func (p *Interpreter) evalSeq(env *environment, exprs []ast.Expr, build func([]Value) Value) (Value, *Error) {
	vals, err := p.evalArgs(env, exprs)
	if err != nil {
		return nil, err
	}
	//
	return build(vals), nil
}

// evalStructLit constructs a struct value, normalising field order against
// the struct declaration (when it resolves) such that two literals of the
// same struct compare independently of the order their fields were written.
func (p *Interpreter) evalStructLit(env *environment, expr *ast.StructLit) (Value, *Error) {
	name := expr.Path[len(expr.Path)-1]
	//
	names := make([]string, len(expr.Fields))
	values := make([]Value, len(expr.Fields))
	//
	for i, field := range expr.Fields {
		val, err := p.evalExpr(env, field.Value)
		if err != nil {
			return nil, err
		}
		//
		names[i] = field.Name
		values[i] = val
	}
	//
	sv := Struct{name, names, values}
	//
	if item, ok := p.arena.Unit().Lookup(env.module, expr.Path); ok {
		if def, ok := item.(*ast.StructDef); ok {
			return p.normaliseStruct(sv, def, expr)
		}
	}
	//
	return sv, nil
}

func (p *Interpreter) normaliseStruct(sv Struct, def *ast.StructDef, ctx ast.Node) (Value, *Error) {
	if len(sv.Names) != len(def.Fields) {
		return nil, evaluationErrorf(ctx, "struct literal %s has %d field(s), expected %d",
			sv.Name, len(sv.Names), len(def.Fields))
	}
	//
	names := make([]string, len(def.Fields))
	values := make([]Value, len(def.Fields))
	//
	for i, field := range def.Fields {
		val, ok := sv.Field(field.Name)
		if !ok {
			return nil, evaluationErrorf(ctx, "struct literal %s is missing field %s", sv.Name, field.Name)
		}
		//
		names[i] = field.Name
		values[i] = val
	}
	//
	return Struct{sv.Name, names, values}, nil
}

func (p *Interpreter) evalIf(env *environment, expr *ast.IfExpr) (Value, *Error) {
	cond, err := p.evalExpr(env, expr.Cond)
	if err != nil {
		return nil, err
	}
	//
	flag, ok := cond.(Bool)
	if !ok {
		return nil, evaluationErrorf(expr.Cond, "condition is not a boolean")
	}
	//
	if flag.Val {
		return p.evalBlock(env, expr.Then)
	} else if expr.Else == nil {
		return Unit{}, nil
	}
	//
	return p.evalExpr(env, expr.Else)
}

// evalQuote evaluates a quote block into a quoted value.  Splice placeholders
// are substituted at this point (i.e. quote-evaluation time), with spliced
// values rendered into tokens of the target fragment.
func (p *Interpreter) evalQuote(env *environment, expr *ast.QuoteExpr) (Value, *Error) {
	var tokens []string
	//
	for _, tok := range expr.Tokens {
		if tok.Splice == "" {
			tokens = append(tokens, tok.Text)
			continue
		}
		//
		val, err := p.evalName(env, []string{tok.Splice}, expr)
		if err != nil {
			return nil, err
		}
		//
		spliced, err := spliceTokens(val, expr)
		if err != nil {
			return nil, err
		}
		//
		tokens = append(tokens, spliced...)
	}
	//
	return QuotedVal{NewQuoted(tokens...)}, nil
}

func (p *Interpreter) evalArgs(env *environment, exprs []ast.Expr) ([]Value, *Error) {
	var vals []Value
	//
	for _, e := range exprs {
		val, err := p.evalExpr(env, e)
		if err != nil {
			return nil, err
		}
		//
		vals = append(vals, val)
	}
	//
	return vals, nil
}

// ============================================================================
// Coercion & splicing
// ============================================================================

// coerce adapts a value against a declared type.  This is deliberately
// shallow: its purpose is to fix the representation of numeric values at
// typed binding sites, not to typecheck.
func (p *Interpreter) coerce(val Value, typ ast.Type, ctx ast.Node) (Value, *Error) {
	if typ == nil {
		return val, nil
	}
	//
	switch typ.(type) {
	case *ast.FieldType:
		switch val.(type) {
		case Int, FieldElt:
			return fieldOf(val), nil
		}
		//
		return nil, evaluationErrorf(ctx, "expected a field element, got %s", val.String())
	case *ast.QuotedType:
		if _, ok := val.(QuotedVal); !ok {
			return nil, evaluationErrorf(ctx, "expected a quoted value, got %s", val.String())
		}
	}
	//
	return val, nil
}

func isNumeric(val Value) bool {
	switch val.(type) {
	case Int, FieldElt:
		return true
	}
	//
	return false
}

// spliceTokens renders a value into the token sequence it contributes when
// spliced into a quote block.
func spliceTokens(val Value, ctx ast.Node) ([]string, *Error) {
	switch t := val.(type) {
	case QuotedVal:
		return t.Val.Tokens(), nil
	case Int, Bool:
		return []string{val.String()}, nil
	case FieldElt:
		var n big.Int
		t.Val.BigInt(&n)
		//
		return []string{n.String()}, nil
	case Str:
		return []string{"\"" + t.Val + "\""}, nil
	case ExprVal:
		return lexTokens(ast.ExprToString(t.Expr), ctx)
	case TypeVal:
		return lexTokens(t.Type.String(), ctx)
	}
	//
	return nil, evaluationErrorf(ctx, "cannot splice %s into a quote", val.String())
}

// walkItems applies a function to every item of a module tree, in pre-order.
func walkItems(module *ast.Module, fn func(ast.Item)) {
	for _, item := range module.Items {
		fn(item)
		//
		if sub, ok := item.(*ast.Module); ok {
			walkItems(sub, fn)
		}
	}
}

// lexTokens tokenises a rendered source fragment, yielding the texts of its
// tokens.
func lexTokens(text string, ctx ast.Node) ([]string, *Error) {
	srcfile := source.NewSourceFile("splice", []byte(text))
	//
	toks, errs := lexer.Lex(srcfile)
	if len(errs) > 0 {
		return nil, evaluationErrorf(ctx, "spliced value does not tokenise: %s", errs[0].Message())
	}
	//
	var tokens []string
	//
	for _, tok := range toks {
		if tok.Kind == lexer.END_OF {
			continue
		}
		//
		tokens = append(tokens, srcfile.Text(tok.Span))
	}
	//
	return tokens, nil
}
