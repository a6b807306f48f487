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
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/consensys/go-quill/pkg/quill/ast"
)

// Value represents an arbitrary value manipulated by the macro evaluator.
// Values exist only for the duration of one expansion pass (or, for ordinary
// execution, one call).
type Value interface {
	// String returns a rendering of this value, as used for example by
	// format-string interpolation.
	String() string
	isValue()
}

// Unit is the unique value of the unit type.
type Unit struct{}

func (p Unit) isValue()       {}
func (p Unit) String() string { return "()" }

// Bool is a boolean value.
type Bool struct {
	Val bool
}

func (p Bool) isValue()       {}
func (p Bool) String() string { return fmt.Sprintf("%t", p.Val) }

// Int is an (arbitrary precision) integer value, as produced by integer
// literals, range iteration and slice lengths.  An Int flowing into a
// Field-typed position is converted into a field element at that point.
type Int struct {
	Val *big.Int
}

// NewInt constructs an integer value from a given signed integer.
func NewInt(val int64) Int {
	return Int{big.NewInt(val)}
}

func (p Int) isValue()       {}
func (p Int) String() string { return p.Val.String() }

// FieldElt is an element of the native field.  All comptime arithmetic over
// Field-typed values is performed on actual field elements, such that any
// constant folding performed at expansion time agrees exactly with the
// arithmetic of circuit execution.
type FieldElt struct {
	Val fr.Element
}

// NewFieldElt constructs a field element from a given unsigned integer.
func NewFieldElt(val uint64) FieldElt {
	return FieldElt{fr.NewElement(val)}
}

func (p FieldElt) isValue()       {}
func (p FieldElt) String() string { return p.Val.String() }

// Str is a string value.
type Str struct {
	Val string
}

func (p Str) isValue()       {}
func (p Str) String() string { return p.Val }

// Slice is a sequence of values.  Slices are value types: push_back returns
// an extended copy rather than mutating in place.
type Slice struct {
	Elems []Value
}

func (p Slice) isValue() {}

func (p Slice) String() string {
	var elems []string
	//
	for _, e := range p.Elems {
		elems = append(elems, e.String())
	}
	//
	return fmt.Sprintf("[%s]", strings.Join(elems, ", "))
}

// PushBack returns a copy of this slice with a given value appended.
func (p Slice) PushBack(value Value) Slice {
	elems := make([]Value, len(p.Elems), len(p.Elems)+1)
	copy(elems, p.Elems)
	//
	return Slice{append(elems, value)}
}

// Tuple is a fixed-length sequence of values.
type Tuple struct {
	Elems []Value
}

func (p Tuple) isValue() {}

func (p Tuple) String() string {
	var elems []string
	//
	for _, e := range p.Elems {
		elems = append(elems, e.String())
	}
	//
	return fmt.Sprintf("(%s)", strings.Join(elems, ", "))
}

// Struct is an instance of a declared aggregate type, with fields held in
// declaration order.
type Struct struct {
	Name   string
	Names  []string
	Values []Value
}

func (p Struct) isValue() {}

func (p Struct) String() string {
	var fields []string
	//
	for i, n := range p.Names {
		fields = append(fields, fmt.Sprintf("%s: %s", n, p.Values[i].String()))
	}
	//
	return fmt.Sprintf("%s { %s }", p.Name, strings.Join(fields, ", "))
}

// Field returns the value of a named field of this struct.
func (p Struct) Field(name string) (Value, bool) {
	for i, n := range p.Names {
		if n == name {
			return p.Values[i], true
		}
	}
	//
	return nil, false
}

// QuotedVal wraps a quoted token sequence as a value.
type QuotedVal struct {
	Val Quoted
}

func (p QuotedVal) isValue()       {}
func (p QuotedVal) String() string { return p.Val.String() }

// TypeVal wraps a reflected type reference as a value.
type TypeVal struct {
	Type ast.Type
}

func (p TypeVal) isValue()       {}
func (p TypeVal) String() string { return p.Type.String() }

// ExprVal wraps a parsed expression handle as a value.
type ExprVal struct {
	Expr ast.Expr
}

func (p ExprVal) isValue()       {}
func (p ExprVal) String() string { return ast.ExprToString(p.Expr) }

// Range is a half-open range of integers, as produced by range expressions.
type Range struct {
	Start *big.Int
	End   *big.Int
}

func (p Range) isValue()       {}
func (p Range) String() string { return fmt.Sprintf("%s..%s", p.Start, p.End) }

// FnRef is a first-class reference to a declared function, as arises when a
// function is named in value position (e.g. the argument of a derive_via
// attribute).
type FnRef struct {
	Fn    *ast.Function
	Owner *ast.Module
}

func (p FnRef) isValue()       {}
func (p FnRef) String() string { return p.Fn.Name }

// ============================================================================
// Equality
// ============================================================================

// valuesEqual determines whether two values are equal.  Observe that quoted
// values compare by token sequence, not by what those tokens denote.
func valuesEqual(lhs Value, rhs Value) bool {
	switch l := lhs.(type) {
	case Unit:
		_, ok := rhs.(Unit)
		return ok
	case Bool:
		r, ok := rhs.(Bool)
		return ok && l.Val == r.Val
	case Int:
		switch r := rhs.(type) {
		case Int:
			return l.Val.Cmp(r.Val) == 0
		case FieldElt:
			lf := fieldOf(lhs)
			return lf.Val.Equal(&r.Val)
		}
	case FieldElt:
		switch r := rhs.(type) {
		case FieldElt:
			return l.Val.Equal(&r.Val)
		case Int:
			rf := fieldOf(rhs)
			return l.Val.Equal(&rf.Val)
		}
	case Str:
		r, ok := rhs.(Str)
		return ok && l.Val == r.Val
	case Slice:
		r, ok := rhs.(Slice)
		return ok && slicesEqual(l.Elems, r.Elems)
	case Tuple:
		r, ok := rhs.(Tuple)
		return ok && slicesEqual(l.Elems, r.Elems)
	case Struct:
		r, ok := rhs.(Struct)
		return ok && l.Name == r.Name && slicesEqual(l.Values, r.Values)
	case QuotedVal:
		r, ok := rhs.(QuotedVal)
		return ok && l.Val.Equals(r.Val)
	case TypeVal:
		r, ok := rhs.(TypeVal)
		return ok && l.Type.String() == r.Type.String()
	case ExprVal:
		// Expressions compare by their canonical rendering.
		r, ok := rhs.(ExprVal)
		return ok && ast.ExprToString(l.Expr) == ast.ExprToString(r.Expr)
	}
	//
	return false
}

func slicesEqual(lhs []Value, rhs []Value) bool {
	if len(lhs) != len(rhs) {
		return false
	}
	//
	for i := range lhs {
		if !valuesEqual(lhs[i], rhs[i]) {
			return false
		}
	}
	//
	return true
}

// fieldOf converts a numeric value into a field element.
func fieldOf(value Value) FieldElt {
	switch t := value.(type) {
	case FieldElt:
		return t
	case Int:
		var elt fr.Element
		elt.SetBigInt(t.Val)
		//
		return FieldElt{elt}
	}
	//
	panic(fmt.Sprintf("cannot convert %T into a field element", value))
}
