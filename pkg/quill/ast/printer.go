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
	"fmt"
	"strings"
)

// ToSource renders a sequence of items as canonical source text.  The
// guarantee provided is that re-parsing the result yields an item tree which
// behaves identically; this underpins golden-file testing of macro output.
func ToSource(items []Item) string {
	p := printer{}
	//
	for i, item := range items {
		if i != 0 {
			p.newline()
		}
		//
		p.item(item)
	}
	//
	return p.builder.String()
}

// ItemToString renders a single item as canonical source text.
func ItemToString(item Item) string {
	p := printer{}
	p.item(item)
	//
	return p.builder.String()
}

// ExprToString renders a single expression as canonical source text.
func ExprToString(expr Expr) string {
	p := printer{}
	p.expr(expr)
	//
	return p.builder.String()
}

// JoinTokens renders a raw token sequence as source text, separating tokens
// by single spaces.  This is deliberately simple: the result is intended for
// re-parsing, not for human presentation.
func JoinTokens(tokens []string) string {
	return strings.Join(tokens, " ")
}

// ============================================================================
// Printer
// ============================================================================

type printer struct {
	builder strings.Builder
	indent  int
}

func (p *printer) item(item Item) {
	p.attributes(item.Attrs())
	//
	switch t := item.(type) {
	case *Module:
		p.printf("mod %s {", t.Name)
		p.indent++
		//
		for _, sub := range t.Items {
			p.newline()
			p.item(sub)
		}
		//
		p.indent--
		p.newline()
		p.printf("}")
		p.newline()
	case *Function:
		p.function(t)
	case *StructDef:
		p.structDef(t)
	case *TraitDef:
		p.traitDef(t)
	case *ImplDef:
		p.implDef(t)
	case *GlobalDef:
		p.globalDef(t)
	default:
		panic(fmt.Sprintf("unknown item encountered (%T)", item))
	}
}

func (p *printer) attributes(attrs []*Attribute) {
	for _, attr := range attrs {
		p.printf("#[%s", attr.Name())
		//
		if len(attr.Args) > 0 {
			p.printf("(")
			p.exprs(attr.Args)
			p.printf(")")
		}
		//
		p.printf("]")
		p.newline()
	}
}

func (p *printer) function(fn *Function) {
	if fn.Public {
		p.printf("pub ")
	}
	//
	if fn.Comptime {
		p.printf("comptime ")
	}
	//
	if fn.Unconstrained {
		p.printf("unconstrained ")
	}
	//
	p.printf("fn %s", fn.Name)
	p.generics(fn.Generics)
	p.printf("(")
	//
	for i, param := range fn.Params {
		if i != 0 {
			p.printf(", ")
		}
		//
		p.printf("%s: %s", param.Name, param.Type.String())
	}
	//
	p.printf(")")
	//
	if fn.Return != nil {
		if fn.ReturnPublic {
			p.printf(" -> pub %s", fn.Return.String())
		} else {
			p.printf(" -> %s", fn.Return.String())
		}
	}
	//
	if fn.Body == nil {
		p.printf(";")
	} else {
		p.printf(" ")
		p.block(fn.Body)
	}
	//
	p.newline()
}

func (p *printer) structDef(st *StructDef) {
	p.printf("struct %s", st.Name)
	p.generics(st.Generics)
	p.printf(" {")
	p.indent++
	//
	for _, field := range st.Fields {
		p.newline()
		p.printf("%s: %s", field.Name, field.Type.String())
		//
		if field.Default != nil {
			p.printf(" = %s", JoinTokens(field.Default))
		}
		//
		p.printf(",")
	}
	//
	p.indent--
	p.newline()
	p.printf("}")
	p.newline()
}

func (p *printer) traitDef(tr *TraitDef) {
	p.printf("trait %s {", tr.Name)
	p.indent++
	//
	for _, fn := range tr.Methods {
		p.newline()
		p.function(fn)
	}
	//
	p.indent--
	p.newline()
	p.printf("}")
	p.newline()
}

func (p *printer) implDef(im *ImplDef) {
	if im.Trait != nil {
		p.printf("impl %s for %s {", im.Trait.String(), im.Target.String())
	} else {
		p.printf("impl %s {", im.Target.String())
	}
	//
	p.indent++
	//
	for _, fn := range im.Functions {
		p.newline()
		p.function(fn)
	}
	//
	p.indent--
	p.newline()
	p.printf("}")
	p.newline()
}

func (p *printer) globalDef(g *GlobalDef) {
	if g.Comptime {
		p.printf("comptime ")
	}
	//
	if g.Mutable {
		p.printf("mut ")
	}
	//
	p.printf("global %s", g.Name)
	//
	if g.Type != nil {
		p.printf(": %s", g.Type.String())
	}
	//
	p.printf(" = ")
	p.expr(g.Init)
	p.printf(";")
	p.newline()
}

func (p *printer) generics(generics []Generic) {
	if len(generics) == 0 {
		return
	}
	//
	p.printf("<")
	//
	for i, g := range generics {
		if i != 0 {
			p.printf(", ")
		}
		//
		p.printf("%s", g.Name)
		//
		if g.Bound.HasValue() {
			p.printf(": %s", g.Bound.Unwrap())
		}
	}
	//
	p.printf(">")
}

// ============================================================================
// Statements
// ============================================================================

func (p *printer) stmt(stmt Stmt) {
	switch t := stmt.(type) {
	case *LetStmt:
		if t.Mutable {
			p.printf("let mut %s", t.Name)
		} else {
			p.printf("let %s", t.Name)
		}
		//
		if t.Type != nil {
			p.printf(": %s", t.Type.String())
		}
		//
		p.printf(" = ")
		p.expr(t.Init)
		p.printf(";")
	case *AssignStmt:
		p.expr(t.Target)
		p.printf(" = ")
		p.expr(t.Value)
		p.printf(";")
	case *ForStmt:
		p.printf("for %s in ", t.Var)
		p.expr(t.Iter)
		p.printf(" ")
		p.block(t.Body)
	case *ExprStmt:
		p.expr(t.Expr)
		p.printf(";")
	default:
		panic(fmt.Sprintf("unknown statement encountered (%T)", stmt))
	}
}

// ============================================================================
// Expressions
// ============================================================================

func (p *printer) block(b *Block) {
	if len(b.Stmts) == 0 && b.Result == nil {
		p.printf("{}")
		return
	}
	//
	p.printf("{")
	p.indent++
	//
	for _, s := range b.Stmts {
		p.newline()
		p.stmt(s)
	}
	//
	if b.Result != nil {
		p.newline()
		p.expr(b.Result)
	}
	//
	p.indent--
	p.newline()
	p.printf("}")
}

func (p *printer) exprs(exprs []Expr) {
	for i, e := range exprs {
		if i != 0 {
			p.printf(", ")
		}
		//
		p.expr(e)
	}
}

//nolint:gocyclo
func (p *printer) expr(expr Expr) {
	switch t := expr.(type) {
	case *Block:
		p.block(t)
	case *IntLit:
		p.printf("%s", t.Value.String())
	case *BoolLit:
		p.printf("%t", t.Value)
	case *StringLit:
		p.printf("%q", t.Value)
	case *FStringLit:
		p.printf("f\"")
		//
		for _, part := range t.Parts {
			if part.Ident != "" {
				p.printf("{%s}", part.Ident)
			} else {
				p.printf("%s", part.Text)
			}
		}
		//
		p.printf("\"")
	case *VarAccess:
		p.printf("%s", t.Name)
	case *PathExpr:
		p.printf("%s", strings.Join(t.Path, "::"))
	case *CallExpr:
		p.expr(t.Callee)
		p.printf("(")
		p.exprs(t.Args)
		p.printf(")")
	case *MethodCallExpr:
		p.subexpr(t.Receiver)
		p.printf(".%s(", t.Method)
		p.exprs(t.Args)
		p.printf(")")
	case *FieldAccessExpr:
		p.subexpr(t.Receiver)
		p.printf(".%s", t.Field)
	case *IndexExpr:
		p.subexpr(t.Receiver)
		p.printf("[")
		p.expr(t.Index)
		p.printf("]")
	case *UnaryExpr:
		p.printf("%s", t.Op.String())
		p.subexpr(t.Operand)
	case *BinaryExpr:
		p.subexpr(t.Lhs)
		p.printf(" %s ", t.Op.String())
		p.subexpr(t.Rhs)
	case *RangeExpr:
		p.subexpr(t.Start)
		p.printf("..")
		p.subexpr(t.End)
	case *SliceLit:
		p.printf("[")
		p.exprs(t.Elems)
		p.printf("]")
	case *TupleLit:
		p.printf("(")
		p.exprs(t.Elems)
		p.printf(")")
	case *StructLit:
		p.printf("%s { ", strings.Join(t.Path, "::"))
		//
		for i, field := range t.Fields {
			if i != 0 {
				p.printf(", ")
			}
			//
			p.printf("%s: ", field.Name)
			p.expr(field.Value)
		}
		//
		p.printf(" }")
	case *IfExpr:
		p.printf("if ")
		p.expr(t.Cond)
		p.printf(" ")
		p.block(t.Then)
		//
		if t.Else != nil {
			p.printf(" else ")
			p.expr(t.Else)
		}
	case *QuoteExpr:
		p.printf("quote {")
		//
		for _, tok := range t.Tokens {
			if tok.Splice != "" {
				p.printf(" $%s", tok.Splice)
			} else {
				p.printf(" %s", tok.Text)
			}
		}
		//
		p.printf(" }")
	default:
		panic(fmt.Sprintf("unknown expression encountered (%T)", expr))
	}
}

// subexpr renders a nested expression, parenthesising compound forms so that
// the canonical rendering never depends on operator precedence.
func (p *printer) subexpr(expr Expr) {
	switch expr.(type) {
	case *BinaryExpr, *RangeExpr, *IfExpr:
		p.printf("(")
		p.expr(expr)
		p.printf(")")
	default:
		p.expr(expr)
	}
}

// ============================================================================
// Helpers
// ============================================================================

func (p *printer) printf(format string, args ...any) {
	p.builder.WriteString(fmt.Sprintf(format, args...))
}

func (p *printer) newline() {
	p.builder.WriteString("\n")
	//
	for i := 0; i < p.indent; i++ {
		p.builder.WriteString("    ")
	}
}