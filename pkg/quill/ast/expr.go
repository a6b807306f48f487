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
package ast

import (
	"math/big"
)

// Expr represents an arbitrary expression of the surface language.
type Expr interface {
	Node
	isExpr()
}

// BinOp represents the available binary operators.
type BinOp uint

// Binary operators, in increasing binding order.
const (
	// BIN_OR_OR represents logical disjunction "||"
	BIN_OR_OR BinOp = iota
	// BIN_AND_AND represents logical conjunction "&&"
	BIN_AND_AND
	// BIN_EQ represents equality "=="
	BIN_EQ
	// BIN_NEQ represents disequality "!="
	BIN_NEQ
	// BIN_LT represents strictly less than "<"
	BIN_LT
	// BIN_LTEQ represents less than or equal "<="
	BIN_LTEQ
	// BIN_GT represents strictly greater than ">"
	BIN_GT
	// BIN_GTEQ represents greater than or equal ">="
	BIN_GTEQ
	// BIN_OR represents bitwise disjunction "|"
	BIN_OR
	// BIN_AND represents bitwise conjunction "&"
	BIN_AND
	// BIN_ADD represents addition "+"
	BIN_ADD
	// BIN_SUB represents subtraction "-"
	BIN_SUB
	// BIN_MUL represents multiplication "*"
	BIN_MUL
	// BIN_DIV represents division "/"
	BIN_DIV
	// BIN_REM represents remainder "%"
	BIN_REM
)

// String returns the source-level rendering of this operator.
func (op BinOp) String() string {
	switch op {
	case BIN_OR_OR:
		return "||"
	case BIN_AND_AND:
		return "&&"
	case BIN_EQ:
		return "=="
	case BIN_NEQ:
		return "!="
	case BIN_LT:
		return "<"
	case BIN_LTEQ:
		return "<="
	case BIN_GT:
		return ">"
	case BIN_GTEQ:
		return ">="
	case BIN_OR:
		return "|"
	case BIN_AND:
		return "&"
	case BIN_ADD:
		return "+"
	case BIN_SUB:
		return "-"
	case BIN_MUL:
		return "*"
	case BIN_DIV:
		return "/"
	case BIN_REM:
		return "%"
	}
	//
	panic("unknown binary operator")
}

// UnOp represents the available unary operators.
type UnOp uint

const (
	// UN_NOT represents logical negation "!"
	UN_NOT UnOp = iota
	// UN_NEG represents arithmetic negation "-"
	UN_NEG
)

// String returns the source-level rendering of this operator.
func (op UnOp) String() string {
	if op == UN_NOT {
		return "!"
	}
	//
	return "-"
}

// Block represents a brace-enclosed sequence of statements, optionally
// followed by a result expression.  A block evaluates to its result
// expression or, in its absence, to unit.
type Block struct {
	Stmts []Stmt
	// Result expression, or nil for unit.
	Result Expr
}

func (p *Block) isExpr() {}

// IntLit represents an integer literal.  Whether this denotes a native field
// element or a sized integer is determined by the context in which it is
// evaluated.
type IntLit struct {
	Value *big.Int
}

func (p *IntLit) isExpr() {}

// BoolLit represents a boolean literal.
type BoolLit struct {
	Value bool
}

func (p *BoolLit) isExpr() {}

// StringLit represents a string literal (excluding its enclosing quotes).
type StringLit struct {
	Value string
}

func (p *StringLit) isExpr() {}

// FStringPart is one fragment of a format string: either a run of literal
// text, or an interpolated identifier.
type FStringPart struct {
	// Literal text (when Ident is empty).
	Text string
	// Interpolated identifier, or empty for a literal fragment.
	Ident string
}

// FStringLit represents a format string literal (e.g. f"got {x}"), split into
// literal and interpolated fragments.
type FStringLit struct {
	Parts []FStringPart
}

func (p *FStringLit) isExpr() {}

// VarAccess represents an unqualified variable access.
type VarAccess struct {
	Name string
}

func (p *VarAccess) isExpr() {}

// PathExpr represents a qualified path access (e.g. utils::make_even).
type PathExpr struct {
	Path []string
}

func (p *PathExpr) isExpr() {}

// CallExpr represents an invocation of a given callee expression.
type CallExpr struct {
	Callee Expr
	Args   []Expr
}

func (p *CallExpr) isExpr() {}

// MethodCallExpr represents an invocation of a named method on a receiver.
type MethodCallExpr struct {
	Receiver Expr
	Method   string
	Args     []Expr
}

func (p *MethodCallExpr) isExpr() {}

// FieldAccessExpr represents access of a named field of a receiver.
type FieldAccessExpr struct {
	Receiver Expr
	Field    string
}

func (p *FieldAccessExpr) isExpr() {}

// IndexExpr represents indexing into a slice.
type IndexExpr struct {
	Receiver Expr
	Index    Expr
}

func (p *IndexExpr) isExpr() {}

// UnaryExpr represents application of a unary operator.
type UnaryExpr struct {
	Op      UnOp
	Operand Expr
}

func (p *UnaryExpr) isExpr() {}

// BinaryExpr represents application of a binary operator.
type BinaryExpr struct {
	Op  BinOp
	Lhs Expr
	Rhs Expr
}

func (p *BinaryExpr) isExpr() {}

// RangeExpr represents a half-open range (e.g. 0..n), as used by for loops.
type RangeExpr struct {
	Start Expr
	End   Expr
}

func (p *RangeExpr) isExpr() {}

// SliceLit represents a slice literal (e.g. [1, 2, 3]).
type SliceLit struct {
	Elems []Expr
}

func (p *SliceLit) isExpr() {}

// TupleLit represents a tuple literal (e.g. (a, b)).  Observe this always has
// at least two elements, since a parenthesised expression is not a tuple.
type TupleLit struct {
	Elems []Expr
}

func (p *TupleLit) isExpr() {}

// StructLitField is a single field initialiser of a struct literal.
type StructLitField struct {
	Name  string
	Value Expr
}

// StructLit represents a struct literal (e.g. Point { x: 0, y: 0 }).
type StructLit struct {
	Path   []string
	Fields []StructLitField
}

func (p *StructLit) isExpr() {}

// IfExpr represents a conditional.  The else branch is either nil, another
// IfExpr (for else-if chains) or a Block.
type IfExpr struct {
	Cond Expr
	Then *Block
	Else Expr
}

func (p *IfExpr) isExpr() {}

// QToken is a single lexical token of a quote block.  A token is either
// literal text, or a splice placeholder (e.g. $name) substituted when the
// enclosing quote expression is evaluated.
type QToken struct {
	// Literal text (when Splice is empty).
	Text string
	// Name of spliced variable, or empty for a literal token.
	Splice string
}

// QuoteExpr represents a quote block (e.g. quote { $f() + 1 }), being an
// unparsed token sequence with zero or more splice placeholders.
type QuoteExpr struct {
	Tokens []QToken
}

func (p *QuoteExpr) isExpr() {}
