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
package parser

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/go-quill/pkg/quill/ast"
	"github.com/consensys/go-quill/pkg/quill/lexer"
	"github.com/consensys/go-quill/pkg/util"
	"github.com/consensys/go-quill/pkg/util/source"
	"github.com/consensys/go-quill/pkg/util/source/lex"
)

// ParseSourceFile parses a given source file into a sequence of zero or more
// items, along with a source map for subsequent error reporting.
func ParseSourceFile(srcfile *source.File) ([]ast.Item, *source.Map[ast.Node], []source.SyntaxError) {
	var (
		parser = NewParser(srcfile)
		items  []ast.Item
	)
	//
	if errs := parser.lex(); len(errs) > 0 {
		return nil, parser.srcmap, errs
	}
	// Continue going until all consumed
	for parser.lookahead().Kind != lexer.END_OF {
		item, errs := parser.parseItem()
		//
		if len(errs) > 0 {
			return nil, parser.srcmap, errs
		}
		//
		items = append(items, item)
	}
	//
	return items, parser.srcmap, nil
}

// ParseExpression parses a given source file as a single expression, failing
// if any text remains once the expression is consumed.  This is used for
// parsing quoted token sequences back into expressions.
func ParseExpression(srcfile *source.File) (ast.Expr, *source.Map[ast.Node], []source.SyntaxError) {
	parser := NewParser(srcfile)
	//
	if errs := parser.lex(); len(errs) > 0 {
		return nil, parser.srcmap, errs
	}
	//
	expr, errs := parser.parseExpr()
	//
	if len(errs) > 0 {
		return nil, parser.srcmap, errs
	}
	// Ensure everything consumed
	if tok := parser.lookahead(); tok.Kind != lexer.END_OF {
		return nil, parser.srcmap, parser.syntaxErrors(tok, "unexpected trailing text")
	}
	//
	return expr, parser.srcmap, nil
}

// ParseItem parses a given source file as exactly one item, failing if any
// text remains once the item is consumed.  This is used for parsing quoted
// token sequences back into items (e.g. when applying deferred module
// mutations).
func ParseItem(srcfile *source.File) (ast.Item, *source.Map[ast.Node], []source.SyntaxError) {
	parser := NewParser(srcfile)
	//
	if errs := parser.lex(); len(errs) > 0 {
		return nil, parser.srcmap, errs
	}
	//
	item, errs := parser.parseItem()
	//
	if len(errs) > 0 {
		return nil, parser.srcmap, errs
	}
	// Ensure everything consumed
	if tok := parser.lookahead(); tok.Kind != lexer.END_OF {
		return nil, parser.srcmap, parser.syntaxErrors(tok, "unexpected trailing text")
	}
	//
	return item, parser.srcmap, nil
}

// ParseType parses a given source file as a single type, failing if any text
// remains once the type is consumed.
func ParseType(srcfile *source.File) (ast.Type, *source.Map[ast.Node], []source.SyntaxError) {
	parser := NewParser(srcfile)
	//
	if errs := parser.lex(); len(errs) > 0 {
		return nil, parser.srcmap, errs
	}
	//
	datatype, errs := parser.parseType()
	//
	if len(errs) > 0 {
		return nil, parser.srcmap, errs
	}
	// Ensure everything consumed
	if tok := parser.lookahead(); tok.Kind != lexer.END_OF {
		return nil, parser.srcmap, parser.syntaxErrors(tok, "unexpected trailing text")
	}
	//
	return datatype, parser.srcmap, nil
}

// Parser is a recursive-descent parser for the surface language.
type Parser struct {
	srcfile *source.File
	tokens  []lex.Token
	// Source mapping
	srcmap *source.Map[ast.Node]
	// Position within the tokens
	index int
	// Determines whether struct literals are permitted at this point (they
	// are not, for example, in the condition of an if).
	noStructLit bool
}

// NewParser constructs a new parser for a given source file.
func NewParser(srcfile *source.File) *Parser {
	srcmap := source.NewSourceMap[ast.Node](*srcfile)
	//
	return &Parser{srcfile, nil, srcmap, 0, false}
}

// SourceMap returns the source map constructed during parsing.
func (p *Parser) SourceMap() *source.Map[ast.Node] {
	return p.srcmap
}

func (p *Parser) lex() []source.SyntaxError {
	tokens, errs := lexer.Lex(p.srcfile)
	p.tokens = tokens
	//
	return errs
}

// ============================================================================
// Items
// ============================================================================

func (p *Parser) parseItem() (ast.Item, []source.SyntaxError) {
	var (
		start = p.index
		item  ast.Item
		errs  []source.SyntaxError
	)
	// Parse any attributes preceding the item itself
	attrs, errs := p.parseAttributes()
	if len(errs) > 0 {
		return nil, errs
	}
	// Parse any modifiers (pub / comptime / unconstrained)
	pub := p.matchKeyword("pub")
	comptime := p.matchKeyword("comptime")
	mut := p.matchKeyword("mut")
	unconstrained := p.matchKeyword("unconstrained")
	//
	lookahead := p.lookahead()
	//
	switch {
	case p.isKeyword(lookahead, "mod"):
		item, errs = p.parseModule(attrs)
	case p.isKeyword(lookahead, "fn"):
		item, errs = p.parseFunction(attrs, pub, comptime, unconstrained)
	case p.isKeyword(lookahead, "struct"):
		item, errs = p.parseStruct(attrs)
	case p.isKeyword(lookahead, "trait"):
		item, errs = p.parseTrait(attrs)
	case p.isKeyword(lookahead, "impl"):
		item, errs = p.parseImpl()
	case p.isKeyword(lookahead, "global"):
		item, errs = p.parseGlobal(comptime, mut)
	default:
		return nil, p.syntaxErrors(lookahead, "unknown declaration")
	}
	//
	if len(errs) > 0 {
		return nil, errs
	}
	// Register item for error reporting
	p.srcmap.Put(item, p.spanOf(start, p.index-1))
	//
	return item, nil
}

func (p *Parser) parseModule(attrs []*ast.Attribute) (ast.Item, []source.SyntaxError) {
	var items []ast.Item
	//
	p.expectKeyword("mod")
	//
	name, errs := p.parseIdentifier()
	if len(errs) > 0 {
		return nil, errs
	}
	//
	if _, errs := p.expect(lexer.LCURLY); len(errs) > 0 {
		return nil, errs
	}
	// Parse items until end of block
	for p.lookahead().Kind != lexer.RCURLY {
		item, errs := p.parseItem()
		if len(errs) > 0 {
			return nil, errs
		}
		//
		items = append(items, item)
	}
	// Advance past "}"
	p.match(lexer.RCURLY)
	//
	return &ast.Module{Attributes: attrs, Name: name, Items: items}, nil
}

func (p *Parser) parseFunction(attrs []*ast.Attribute, pub, comptime,
	unconstrained bool) (*ast.Function, []source.SyntaxError) {
	//
	var (
		fn = &ast.Function{
			Attributes:    attrs,
			Comptime:      comptime,
			Unconstrained: unconstrained,
			Public:        pub,
		}
		errs []source.SyntaxError
	)
	//
	p.expectKeyword("fn")
	// Parse function name
	if fn.Name, errs = p.parseIdentifier(); len(errs) > 0 {
		return nil, errs
	}
	// Parse (optional) generic parameters
	if p.lookahead().Kind == lexer.LESS_THAN {
		if fn.Generics, errs = p.parseGenerics(); len(errs) > 0 {
			return nil, errs
		}
	}
	// Parse parameter list
	if fn.Params, errs = p.parseParams(); len(errs) > 0 {
		return nil, errs
	}
	// Parse (optional) return type
	if p.match(lexer.RIGHTARROW) {
		fn.ReturnPublic = p.matchKeyword("pub")
		//
		if fn.Return, errs = p.parseType(); len(errs) > 0 {
			return nil, errs
		}
	}
	// Parse body, or semicolon for a bodyless signature
	if p.match(lexer.SEMICOLON) {
		return fn, nil
	}
	//
	if fn.Body, errs = p.parseBlock(); len(errs) > 0 {
		return nil, errs
	}
	//
	return fn, nil
}

func (p *Parser) parseGenerics() ([]ast.Generic, []source.SyntaxError) {
	var generics []ast.Generic
	//
	p.match(lexer.LESS_THAN)
	//
	for {
		name, errs := p.parseIdentifier()
		if len(errs) > 0 {
			return nil, errs
		}
		//
		bound := util.None[string]()
		// Parse (optional) trait bound
		if p.match(lexer.COLON) {
			b, errs := p.parseIdentifier()
			if len(errs) > 0 {
				return nil, errs
			}
			//
			bound = util.Some(b)
		}
		//
		generics = append(generics, ast.Generic{Name: name, Bound: bound})
		//
		if !p.match(lexer.COMMA) {
			break
		}
	}
	//
	if _, errs := p.expect(lexer.GREATER_THAN); len(errs) > 0 {
		return nil, errs
	}
	//
	return generics, nil
}

func (p *Parser) parseParams() ([]ast.Param, []source.SyntaxError) {
	var params []ast.Param
	//
	if _, errs := p.expect(lexer.LPAREN); len(errs) > 0 {
		return nil, errs
	}
	//
	for p.lookahead().Kind != lexer.RPAREN {
		if len(params) != 0 {
			if _, errs := p.expect(lexer.COMMA); len(errs) > 0 {
				return nil, errs
			}
		}
		//
		name, errs := p.parseIdentifier()
		if len(errs) > 0 {
			return nil, errs
		}
		//
		if _, errs := p.expect(lexer.COLON); len(errs) > 0 {
			return nil, errs
		}
		//
		typ, errs := p.parseType()
		if len(errs) > 0 {
			return nil, errs
		}
		//
		params = append(params, ast.Param{Name: name, Type: typ})
	}
	// Advance past ")"
	p.match(lexer.RPAREN)
	//
	return params, nil
}

func (p *Parser) parseStruct(attrs []*ast.Attribute) (ast.Item, []source.SyntaxError) {
	var (
		st   = &ast.StructDef{Attributes: attrs}
		errs []source.SyntaxError
	)
	//
	p.expectKeyword("struct")
	//
	if st.Name, errs = p.parseIdentifier(); len(errs) > 0 {
		return nil, errs
	}
	//
	if p.lookahead().Kind == lexer.LESS_THAN {
		if st.Generics, errs = p.parseGenerics(); len(errs) > 0 {
			return nil, errs
		}
	}
	//
	if _, errs := p.expect(lexer.LCURLY); len(errs) > 0 {
		return nil, errs
	}
	//
	for p.lookahead().Kind != lexer.RCURLY {
		field, errs := p.parseStructField()
		if len(errs) > 0 {
			return nil, errs
		}
		//
		st.Fields = append(st.Fields, field)
		// Fields are comma separated, with a trailing comma permitted
		if !p.match(lexer.COMMA) {
			break
		}
	}
	//
	if _, errs := p.expect(lexer.RCURLY); len(errs) > 0 {
		return nil, errs
	}
	//
	return st, nil
}

func (p *Parser) parseStructField() (ast.StructField, []source.SyntaxError) {
	var field ast.StructField
	//
	name, errs := p.parseIdentifier()
	if len(errs) > 0 {
		return field, errs
	}
	//
	if _, errs := p.expect(lexer.COLON); len(errs) > 0 {
		return field, errs
	}
	//
	typ, errs := p.parseType()
	if len(errs) > 0 {
		return field, errs
	}
	//
	field = ast.StructField{Name: name, Type: typ}
	// Parse (optional) default expression.  This is deliberately retained as
	// its raw token sequence, since defaults are only re-emitted into
	// generated code.
	if p.match(lexer.EQUALS) {
		field.Default = p.collectRawTokens(lexer.COMMA, lexer.RCURLY)
		//
		if len(field.Default) == 0 {
			return field, p.syntaxErrors(p.lookahead(), "missing default expression")
		}
	}
	//
	return field, nil
}

func (p *Parser) parseTrait(attrs []*ast.Attribute) (ast.Item, []source.SyntaxError) {
	var (
		tr   = &ast.TraitDef{Attributes: attrs}
		errs []source.SyntaxError
	)
	//
	p.expectKeyword("trait")
	//
	if tr.Name, errs = p.parseIdentifier(); len(errs) > 0 {
		return nil, errs
	}
	//
	if _, errs := p.expect(lexer.LCURLY); len(errs) > 0 {
		return nil, errs
	}
	//
	for p.lookahead().Kind != lexer.RCURLY {
		// Trait methods carry no modifiers of interest here.
		if !p.isKeyword(p.lookahead(), "fn") {
			return nil, p.syntaxErrors(p.lookahead(), "expected method signature")
		}
		//
		fn, errs := p.parseFunction(nil, false, false, false)
		if len(errs) > 0 {
			return nil, errs
		}
		//
		tr.Methods = append(tr.Methods, fn)
	}
	// Advance past "}"
	p.match(lexer.RCURLY)
	//
	return tr, nil
}

func (p *Parser) parseImpl() (ast.Item, []source.SyntaxError) {
	var im = &ast.ImplDef{}
	//
	p.expectKeyword("impl")
	//
	first, errs := p.parseType()
	if len(errs) > 0 {
		return nil, errs
	}
	// Distinguish "impl Trait for Type" from an inherent "impl Type"
	if p.matchKeyword("for") {
		im.Trait = first
		//
		if im.Target, errs = p.parseType(); len(errs) > 0 {
			return nil, errs
		}
	} else {
		im.Target = first
	}
	//
	if _, errs := p.expect(lexer.LCURLY); len(errs) > 0 {
		return nil, errs
	}
	//
	for p.lookahead().Kind != lexer.RCURLY {
		pub := p.matchKeyword("pub")
		//
		if !p.isKeyword(p.lookahead(), "fn") {
			return nil, p.syntaxErrors(p.lookahead(), "expected method implementation")
		}
		//
		fn, errs := p.parseFunction(nil, pub, false, false)
		if len(errs) > 0 {
			return nil, errs
		}
		//
		im.Functions = append(im.Functions, fn)
	}
	// Advance past "}"
	p.match(lexer.RCURLY)
	//
	return im, nil
}

func (p *Parser) parseGlobal(comptime, mut bool) (ast.Item, []source.SyntaxError) {
	var (
		g    = &ast.GlobalDef{Comptime: comptime, Mutable: mut}
		errs []source.SyntaxError
	)
	//
	p.expectKeyword("global")
	//
	if g.Name, errs = p.parseIdentifier(); len(errs) > 0 {
		return nil, errs
	}
	//
	if p.match(lexer.COLON) {
		if g.Type, errs = p.parseType(); len(errs) > 0 {
			return nil, errs
		}
	}
	//
	if _, errs := p.expect(lexer.EQUALS); len(errs) > 0 {
		return nil, errs
	}
	//
	if g.Init, errs = p.parseExpr(); len(errs) > 0 {
		return nil, errs
	}
	//
	if _, errs := p.expect(lexer.SEMICOLON); len(errs) > 0 {
		return nil, errs
	}
	//
	return g, nil
}

func (p *Parser) parseAttributes() ([]*ast.Attribute, []source.SyntaxError) {
	var attrs []*ast.Attribute
	//
	for p.lookahead().Kind == lexer.HASH {
		start := p.index
		//
		p.match(lexer.HASH)
		//
		if _, errs := p.expect(lexer.LBRACKET); len(errs) > 0 {
			return nil, errs
		}
		//
		path, errs := p.parsePath()
		if len(errs) > 0 {
			return nil, errs
		}
		//
		attr := &ast.Attribute{Path: path}
		// Parse (optional) argument list
		if p.match(lexer.LPAREN) {
			for p.lookahead().Kind != lexer.RPAREN {
				if len(attr.Args) != 0 {
					if _, errs := p.expect(lexer.COMMA); len(errs) > 0 {
						return nil, errs
					}
				}
				//
				arg, errs := p.parseExpr()
				if len(errs) > 0 {
					return nil, errs
				}
				//
				attr.Args = append(attr.Args, arg)
			}
			// Advance past ")"
			p.match(lexer.RPAREN)
		}
		//
		if _, errs := p.expect(lexer.RBRACKET); len(errs) > 0 {
			return nil, errs
		}
		//
		p.srcmap.Put(attr, p.spanOf(start, p.index-1))
		attrs = append(attrs, attr)
	}
	//
	return attrs, nil
}

// ============================================================================
// Types
// ============================================================================

func (p *Parser) parseType() (ast.Type, []source.SyntaxError) {
	lookahead := p.lookahead()
	//
	switch lookahead.Kind {
	case lexer.LBRACKET:
		p.match(lexer.LBRACKET)
		//
		element, errs := p.parseType()
		if len(errs) > 0 {
			return nil, errs
		}
		//
		if _, errs := p.expect(lexer.RBRACKET); len(errs) > 0 {
			return nil, errs
		}
		//
		return &ast.SliceType{Element: element}, nil
	case lexer.LPAREN:
		return p.parseTupleType()
	case lexer.IDENTIFIER:
		return p.parseNamedType()
	}
	//
	return nil, p.syntaxErrors(lookahead, "expected type")
}

func (p *Parser) parseTupleType() (ast.Type, []source.SyntaxError) {
	var elements []ast.Type
	//
	p.match(lexer.LPAREN)
	//
	for p.lookahead().Kind != lexer.RPAREN {
		if len(elements) != 0 {
			if _, errs := p.expect(lexer.COMMA); len(errs) > 0 {
				return nil, errs
			}
		}
		//
		element, errs := p.parseType()
		if len(errs) > 0 {
			return nil, errs
		}
		//
		elements = append(elements, element)
	}
	// Advance past ")"
	p.match(lexer.RPAREN)
	// An empty tuple is the unit type, whilst a singleton tuple is just a
	// parenthesised type.
	switch len(elements) {
	case 0:
		return &ast.UnitType{}, nil
	case 1:
		return elements[0], nil
	}
	//
	return &ast.TupleType{Elements: elements}, nil
}

func (p *Parser) parseNamedType() (ast.Type, []source.SyntaxError) {
	path, errs := p.parsePath()
	if len(errs) > 0 {
		return nil, errs
	}
	// Parse (optional) generic arguments
	var args []ast.Type
	//
	if p.match(lexer.LESS_THAN) {
		for {
			arg, errs := p.parseType()
			if len(errs) > 0 {
				return nil, errs
			}
			//
			args = append(args, arg)
			//
			if !p.match(lexer.COMMA) {
				break
			}
		}
		//
		if _, errs := p.expect(lexer.GREATER_THAN); len(errs) > 0 {
			return nil, errs
		}
	}
	// Unqualified names without generics may denote builtin types
	if len(path) == 1 && len(args) == 0 {
		return ast.NewType(path[0]), nil
	}
	//
	return &ast.NamedType{Path: path, Args: args}, nil
}

// ============================================================================
// Statements
// ============================================================================

func (p *Parser) parseBlock() (*ast.Block, []source.SyntaxError) {
	var block ast.Block
	//
	if _, errs := p.expect(lexer.LCURLY); len(errs) > 0 {
		return nil, errs
	}
	//
	for p.lookahead().Kind != lexer.RCURLY {
		lookahead := p.lookahead()
		//
		switch {
		case p.isKeyword(lookahead, "let"):
			stmt, errs := p.parseLet()
			if len(errs) > 0 {
				return nil, errs
			}
			//
			block.Stmts = append(block.Stmts, stmt)
		case p.isKeyword(lookahead, "for"):
			stmt, errs := p.parseFor()
			if len(errs) > 0 {
				return nil, errs
			}
			//
			block.Stmts = append(block.Stmts, stmt)
		default:
			stmt, result, errs := p.parseExprStmt()
			if len(errs) > 0 {
				return nil, errs
			}
			//
			if result != nil {
				block.Result = result
			} else {
				block.Stmts = append(block.Stmts, stmt)
			}
		}
	}
	// Advance past "}"
	p.match(lexer.RCURLY)
	//
	return &block, nil
}

func (p *Parser) parseLet() (ast.Stmt, []source.SyntaxError) {
	var (
		start = p.index
		stmt  = &ast.LetStmt{}
		errs  []source.SyntaxError
	)
	//
	p.expectKeyword("let")
	//
	stmt.Mutable = p.matchKeyword("mut")
	//
	if stmt.Name, errs = p.parseIdentifier(); len(errs) > 0 {
		return nil, errs
	}
	//
	if p.match(lexer.COLON) {
		if stmt.Type, errs = p.parseType(); len(errs) > 0 {
			return nil, errs
		}
	}
	//
	if _, errs := p.expect(lexer.EQUALS); len(errs) > 0 {
		return nil, errs
	}
	//
	if stmt.Init, errs = p.parseExpr(); len(errs) > 0 {
		return nil, errs
	}
	//
	if _, errs := p.expect(lexer.SEMICOLON); len(errs) > 0 {
		return nil, errs
	}
	//
	p.srcmap.Put(stmt, p.spanOf(start, p.index-1))
	//
	return stmt, nil
}

func (p *Parser) parseFor() (ast.Stmt, []source.SyntaxError) {
	var (
		start = p.index
		stmt  = &ast.ForStmt{}
		errs  []source.SyntaxError
	)
	//
	p.expectKeyword("for")
	//
	if stmt.Var, errs = p.parseIdentifier(); len(errs) > 0 {
		return nil, errs
	}
	//
	if !p.matchKeyword("in") {
		return nil, p.syntaxErrors(p.lookahead(), "expected in")
	}
	// Struct literals are not permitted in the iterator position, since the
	// opening brace would be ambiguous with the loop body.
	if stmt.Iter, errs = p.parseExprNoStructLit(); len(errs) > 0 {
		return nil, errs
	}
	//
	if stmt.Body, errs = p.parseBlock(); len(errs) > 0 {
		return nil, errs
	}
	//
	p.srcmap.Put(stmt, p.spanOf(start, p.index-1))
	//
	return stmt, nil
}

// parseExprStmt parses either an expression statement, an assignment, or the
// trailing result expression of the enclosing block.  Exactly one of the
// returned statement / result is non-nil.
func (p *Parser) parseExprStmt() (ast.Stmt, ast.Expr, []source.SyntaxError) {
	var start = p.index
	//
	expr, errs := p.parseExpr()
	if len(errs) > 0 {
		return nil, nil, errs
	}
	// Check for assignment
	if p.match(lexer.EQUALS) {
		if !isLvalue(expr) {
			return nil, nil, p.syntaxErrors(p.tokens[start], "invalid assignment target")
		}
		//
		value, errs := p.parseExpr()
		if len(errs) > 0 {
			return nil, nil, errs
		}
		//
		if _, errs := p.expect(lexer.SEMICOLON); len(errs) > 0 {
			return nil, nil, errs
		}
		//
		stmt := &ast.AssignStmt{Target: expr, Value: value}
		p.srcmap.Put(stmt, p.spanOf(start, p.index-1))
		//
		return stmt, nil, nil
	}
	// Check for expression statement
	if p.match(lexer.SEMICOLON) {
		stmt := &ast.ExprStmt{Expr: expr}
		p.srcmap.Put(stmt, p.spanOf(start, p.index-1))
		//
		return stmt, nil, nil
	}
	// Check for trailing result expression
	if p.lookahead().Kind == lexer.RCURLY {
		return nil, expr, nil
	}
	// Block-formed expressions (e.g. if) may stand as statements without a
	// trailing semicolon.
	if isBlockFormed(expr) {
		stmt := &ast.ExprStmt{Expr: expr}
		p.srcmap.Put(stmt, p.spanOf(start, p.index-1))
		//
		return stmt, nil, nil
	}
	//
	return nil, nil, p.syntaxErrors(p.lookahead(), "expected ;")
}

func isLvalue(expr ast.Expr) bool {
	switch expr.(type) {
	case *ast.VarAccess, *ast.PathExpr, *ast.FieldAccessExpr, *ast.IndexExpr:
		return true
	}
	//
	return false
}

func isBlockFormed(expr ast.Expr) bool {
	switch expr.(type) {
	case *ast.IfExpr, *ast.Block:
		return true
	}
	//
	return false
}

// ============================================================================
// Expressions
// ============================================================================

// binaryLevels determines the binding order of binary operators, from loosest
// to tightest.  Operators within a level associate to the left.
var binaryLevels = [][]util.Pair[uint, ast.BinOp]{
	{util.NewPair(lexer.OR_OR, ast.BIN_OR_OR)},
	{util.NewPair(lexer.AND_AND, ast.BIN_AND_AND)},
	{util.NewPair(lexer.EQUALS_EQUALS, ast.BIN_EQ),
		util.NewPair(lexer.NOT_EQUALS, ast.BIN_NEQ),
		util.NewPair(lexer.LESS_THAN_EQUALS, ast.BIN_LTEQ),
		util.NewPair(lexer.LESS_THAN, ast.BIN_LT),
		util.NewPair(lexer.GREATER_THAN_EQUALS, ast.BIN_GTEQ),
		util.NewPair(lexer.GREATER_THAN, ast.BIN_GT)},
	{util.NewPair(lexer.OR, ast.BIN_OR)},
	{util.NewPair(lexer.AND, ast.BIN_AND)},
	{util.NewPair(lexer.ADD, ast.BIN_ADD), util.NewPair(lexer.SUB, ast.BIN_SUB)},
	{util.NewPair(lexer.MUL, ast.BIN_MUL), util.NewPair(lexer.DIV, ast.BIN_DIV),
		util.NewPair(lexer.REM, ast.BIN_REM)},
}

func (p *Parser) parseExpr() (ast.Expr, []source.SyntaxError) {
	var start = p.index
	//
	expr, errs := p.parseBinary(0)
	if len(errs) > 0 {
		return nil, errs
	}
	// Check for range expression (which binds loosest of all)
	if p.match(lexer.DOTDOT) {
		end, errs := p.parseBinary(0)
		if len(errs) > 0 {
			return nil, errs
		}
		//
		expr = &ast.RangeExpr{Start: expr, End: end}
		p.srcmap.Put(expr, p.spanOf(start, p.index-1))
	}
	//
	return expr, nil
}

func (p *Parser) parseExprNoStructLit() (ast.Expr, []source.SyntaxError) {
	p.noStructLit = true
	expr, errs := p.parseExpr()
	p.noStructLit = false
	//
	return expr, errs
}

func (p *Parser) parseBinary(level int) (ast.Expr, []source.SyntaxError) {
	if level >= len(binaryLevels) {
		return p.parseUnary()
	}
	//
	var start = p.index
	//
	lhs, errs := p.parseBinary(level + 1)
	if len(errs) > 0 {
		return nil, errs
	}
	//
outer:
	for {
		lookahead := p.lookahead()
		//
		for _, pair := range binaryLevels[level] {
			if lookahead.Kind == pair.Left {
				p.index++
				//
				rhs, errs := p.parseBinary(level + 1)
				if len(errs) > 0 {
					return nil, errs
				}
				//
				lhs = &ast.BinaryExpr{Op: pair.Right, Lhs: lhs, Rhs: rhs}
				p.srcmap.Put(lhs, p.spanOf(start, p.index-1))
				//
				continue outer
			}
		}
		//
		break
	}
	//
	return lhs, nil
}

func (p *Parser) parseUnary() (ast.Expr, []source.SyntaxError) {
	var (
		start     = p.index
		lookahead = p.lookahead()
		op        ast.UnOp
	)
	//
	switch lookahead.Kind {
	case lexer.NOT:
		op = ast.UN_NOT
	case lexer.SUB:
		op = ast.UN_NEG
	default:
		return p.parsePostfix()
	}
	//
	p.index++
	//
	operand, errs := p.parseUnary()
	if len(errs) > 0 {
		return nil, errs
	}
	//
	expr := &ast.UnaryExpr{Op: op, Operand: operand}
	p.srcmap.Put(expr, p.spanOf(start, p.index-1))
	//
	return expr, nil
}

func (p *Parser) parsePostfix() (ast.Expr, []source.SyntaxError) {
	var start = p.index
	//
	expr, errs := p.parsePrimary()
	if len(errs) > 0 {
		return nil, errs
	}
	//
	for {
		switch {
		case p.match(lexer.DOT):
			name, errs := p.parseIdentifier()
			if len(errs) > 0 {
				return nil, errs
			}
			//
			if p.match(lexer.LPAREN) {
				args, errs := p.parseArgs()
				if len(errs) > 0 {
					return nil, errs
				}
				//
				expr = &ast.MethodCallExpr{Receiver: expr, Method: name, Args: args}
			} else {
				expr = &ast.FieldAccessExpr{Receiver: expr, Field: name}
			}
		case p.match(lexer.LPAREN):
			args, errs := p.parseArgs()
			if len(errs) > 0 {
				return nil, errs
			}
			//
			expr = &ast.CallExpr{Callee: expr, Args: args}
		case p.match(lexer.LBRACKET):
			index, errs := p.parseExpr()
			if len(errs) > 0 {
				return nil, errs
			}
			//
			if _, errs := p.expect(lexer.RBRACKET); len(errs) > 0 {
				return nil, errs
			}
			//
			expr = &ast.IndexExpr{Receiver: expr, Index: index}
		default:
			return expr, nil
		}
		//
		p.srcmap.Put(expr, p.spanOf(start, p.index-1))
	}
}

// parseArgs parses a comma-separated argument list, assuming the opening
// parenthesis is already consumed.
func (p *Parser) parseArgs() ([]ast.Expr, []source.SyntaxError) {
	var args []ast.Expr
	//
	for p.lookahead().Kind != lexer.RPAREN {
		if len(args) != 0 {
			if _, errs := p.expect(lexer.COMMA); len(errs) > 0 {
				return nil, errs
			}
		}
		//
		arg, errs := p.parseExpr()
		if len(errs) > 0 {
			return nil, errs
		}
		//
		args = append(args, arg)
	}
	// Advance past ")"
	p.match(lexer.RPAREN)
	//
	return args, nil
}

//nolint:gocyclo
func (p *Parser) parsePrimary() (ast.Expr, []source.SyntaxError) {
	var (
		start     = p.index
		lookahead = p.lookahead()
		expr      ast.Expr
		errs      []source.SyntaxError
	)
	//
	switch {
	case lookahead.Kind == lexer.NUMBER:
		p.index++
		expr = &ast.IntLit{Value: p.number(lookahead)}
	case lookahead.Kind == lexer.STRING:
		p.index++
		//
		str := p.string(lookahead)
		expr = &ast.StringLit{Value: str[1 : len(str)-1]}
	case lookahead.Kind == lexer.FSTRING:
		p.index++
		//
		if expr, errs = p.parseFString(lookahead); len(errs) > 0 {
			return nil, errs
		}
	case p.isKeyword(lookahead, "true"):
		p.index++
		expr = &ast.BoolLit{Value: true}
	case p.isKeyword(lookahead, "false"):
		p.index++
		expr = &ast.BoolLit{Value: false}
	case p.isKeyword(lookahead, "quote"):
		if expr, errs = p.parseQuote(); len(errs) > 0 {
			return nil, errs
		}
	case p.isKeyword(lookahead, "if"):
		if expr, errs = p.parseIf(); len(errs) > 0 {
			return nil, errs
		}
	case lookahead.Kind == lexer.IDENTIFIER:
		if expr, errs = p.parsePathOrStructLit(); len(errs) > 0 {
			return nil, errs
		}
	case lookahead.Kind == lexer.LPAREN:
		if expr, errs = p.parseParenthesised(); len(errs) > 0 {
			return nil, errs
		}
	case lookahead.Kind == lexer.LBRACKET:
		if expr, errs = p.parseSliceLit(); len(errs) > 0 {
			return nil, errs
		}
	case lookahead.Kind == lexer.LCURLY:
		if expr, errs = p.parseBlock(); len(errs) > 0 {
			return nil, errs
		}
	default:
		return nil, p.syntaxErrors(lookahead, "expected expression")
	}
	//
	p.srcmap.Put(expr, p.spanOf(start, max(start, p.index-1)))
	//
	return expr, nil
}

func (p *Parser) parsePathOrStructLit() (ast.Expr, []source.SyntaxError) {
	path, errs := p.parsePath()
	if len(errs) > 0 {
		return nil, errs
	}
	// Check for struct literal
	if p.lookahead().Kind == lexer.LCURLY && !p.noStructLit {
		return p.parseStructLit(path)
	}
	//
	if len(path) == 1 {
		return &ast.VarAccess{Name: path[0]}, nil
	}
	//
	return &ast.PathExpr{Path: path}, nil
}

func (p *Parser) parseStructLit(path []string) (ast.Expr, []source.SyntaxError) {
	var lit = &ast.StructLit{Path: path}
	//
	p.match(lexer.LCURLY)
	//
	for p.lookahead().Kind != lexer.RCURLY {
		if len(lit.Fields) != 0 {
			if _, errs := p.expect(lexer.COMMA); len(errs) > 0 {
				return nil, errs
			}
			// Permit trailing comma
			if p.lookahead().Kind == lexer.RCURLY {
				break
			}
		}
		//
		name, errs := p.parseIdentifier()
		if len(errs) > 0 {
			return nil, errs
		}
		//
		if _, errs := p.expect(lexer.COLON); len(errs) > 0 {
			return nil, errs
		}
		//
		value, errs := p.parseExpr()
		if len(errs) > 0 {
			return nil, errs
		}
		//
		lit.Fields = append(lit.Fields, ast.StructLitField{Name: name, Value: value})
	}
	// Advance past "}"
	p.match(lexer.RCURLY)
	//
	return lit, nil
}

func (p *Parser) parseParenthesised() (ast.Expr, []source.SyntaxError) {
	var elems []ast.Expr
	//
	p.match(lexer.LPAREN)
	//
	for p.lookahead().Kind != lexer.RPAREN {
		if len(elems) != 0 {
			if _, errs := p.expect(lexer.COMMA); len(errs) > 0 {
				return nil, errs
			}
		}
		//
		elem, errs := p.parseExpr()
		if len(errs) > 0 {
			return nil, errs
		}
		//
		elems = append(elems, elem)
	}
	// Advance past ")"
	p.match(lexer.RPAREN)
	// An empty pair of parentheses is the unit literal, which is represented
	// as an empty tuple; a singleton is just a parenthesised expression.
	if len(elems) == 1 {
		return elems[0], nil
	}
	//
	return &ast.TupleLit{Elems: elems}, nil
}

func (p *Parser) parseSliceLit() (ast.Expr, []source.SyntaxError) {
	var lit ast.SliceLit
	//
	p.match(lexer.LBRACKET)
	//
	for p.lookahead().Kind != lexer.RBRACKET {
		if len(lit.Elems) != 0 {
			if _, errs := p.expect(lexer.COMMA); len(errs) > 0 {
				return nil, errs
			}
		}
		//
		elem, errs := p.parseExpr()
		if len(errs) > 0 {
			return nil, errs
		}
		//
		lit.Elems = append(lit.Elems, elem)
	}
	// Advance past "]"
	p.match(lexer.RBRACKET)
	//
	return &lit, nil
}

func (p *Parser) parseIf() (ast.Expr, []source.SyntaxError) {
	var (
		expr = &ast.IfExpr{}
		errs []source.SyntaxError
	)
	//
	p.expectKeyword("if")
	// Struct literals are not permitted in the condition, since the opening
	// brace would be ambiguous with the then branch.
	if expr.Cond, errs = p.parseExprNoStructLit(); len(errs) > 0 {
		return nil, errs
	}
	//
	if expr.Then, errs = p.parseBlock(); len(errs) > 0 {
		return nil, errs
	}
	//
	if p.matchKeyword("else") {
		if p.isKeyword(p.lookahead(), "if") {
			expr.Else, errs = p.parseIf()
		} else {
			expr.Else, errs = p.parseBlock()
		}
		//
		if len(errs) > 0 {
			return nil, errs
		}
	}
	//
	return expr, nil
}

func (p *Parser) parseQuote() (ast.Expr, []source.SyntaxError) {
	var expr ast.QuoteExpr
	//
	p.expectKeyword("quote")
	//
	if _, errs := p.expect(lexer.LCURLY); len(errs) > 0 {
		return nil, errs
	}
	// Collect raw tokens upto the matching closing brace, substituting $name
	// placeholders as we go.
	depth := 1
	//
	for depth > 0 {
		lookahead := p.lookahead()
		//
		switch lookahead.Kind {
		case lexer.END_OF:
			return nil, p.syntaxErrors(lookahead, "unterminated quote")
		case lexer.LCURLY:
			depth++
		case lexer.RCURLY:
			depth--
			//
			if depth == 0 {
				p.index++
				return &expr, nil
			}
		case lexer.DOLLAR:
			p.index++
			//
			name, errs := p.parseIdentifier()
			if len(errs) > 0 {
				return nil, errs
			}
			//
			expr.Tokens = append(expr.Tokens, ast.QToken{Splice: name})
			//
			continue
		}
		//
		expr.Tokens = append(expr.Tokens, ast.QToken{Text: p.string(lookahead)})
		p.index++
	}
	// unreachable
	return &expr, nil
}

func (p *Parser) parseFString(token lex.Token) (ast.Expr, []source.SyntaxError) {
	var (
		expr ast.FStringLit
		text = p.string(token)
	)
	// Strip leading f" and trailing "
	text = text[2 : len(text)-1]
	//
	for len(text) > 0 {
		open := strings.IndexByte(text, '{')
		//
		if open < 0 {
			expr.Parts = append(expr.Parts, ast.FStringPart{Text: text})
			break
		}
		//
		if open > 0 {
			expr.Parts = append(expr.Parts, ast.FStringPart{Text: text[:open]})
		}
		//
		held := text[open+1:]
		//
		end := strings.IndexByte(held, '}')
		if end < 0 {
			return nil, p.syntaxErrors(token, "unterminated interpolation")
		}
		//
		expr.Parts = append(expr.Parts, ast.FStringPart{Ident: held[:end]})
		text = held[end+1:]
	}
	//
	return &expr, nil
}

// collectRawTokens collects the raw text of tokens upto (but excluding) the
// first occurrence of either terminator at bracket depth zero.
func (p *Parser) collectRawTokens(term1, term2 uint) []string {
	var (
		tokens []string
		depth  = 0
	)
	//
	for {
		lookahead := p.lookahead()
		//
		switch lookahead.Kind {
		case lexer.END_OF:
			return tokens
		case lexer.LPAREN, lexer.LBRACKET, lexer.LCURLY:
			depth++
		case lexer.RPAREN, lexer.RBRACKET:
			depth--
		case lexer.RCURLY:
			depth--
		}
		//
		if depth < 0 {
			return tokens
		} else if depth == 0 && (lookahead.Kind == term1 || lookahead.Kind == term2) {
			return tokens
		}
		//
		tokens = append(tokens, p.string(lookahead))
		p.index++
	}
}

// ============================================================================
// Helpers
// ============================================================================

func (p *Parser) parsePath() ([]string, []source.SyntaxError) {
	var path []string
	//
	name, errs := p.parseIdentifier()
	if len(errs) > 0 {
		return nil, errs
	}
	//
	path = append(path, name)
	//
	for p.match(lexer.PATH_SEP) {
		if name, errs = p.parseIdentifier(); len(errs) > 0 {
			return nil, errs
		}
		//
		path = append(path, name)
	}
	//
	return path, nil
}

func (p *Parser) parseIdentifier() (string, []source.SyntaxError) {
	tok, errs := p.expect(lexer.IDENTIFIER)
	if len(errs) > 0 {
		return "", errs
	}
	//
	return p.string(tok), nil
}

func (p *Parser) string(token lex.Token) string {
	start, end := token.Span.Start(), token.Span.End()
	return string(p.srcfile.Contents()[start:end])
}

func (p *Parser) number(token lex.Token) *big.Int {
	var number big.Int
	// Strip out any underscores
	text := strings.ReplaceAll(p.string(token), "_", "")
	//
	if strings.HasPrefix(text, "0x") {
		number.SetString(text[2:], 16)
	} else {
		number.SetString(text, 10)
	}
	//
	return &number
}

func (p *Parser) isKeyword(token lex.Token, keyword string) bool {
	return token.Kind == lexer.IDENTIFIER && p.string(token) == keyword
}

func (p *Parser) matchKeyword(keyword string) bool {
	if p.isKeyword(p.lookahead(), keyword) {
		p.index++
		return true
	}
	//
	return false
}

// expectKeyword advances past a keyword which the caller has already
// established is next.
func (p *Parser) expectKeyword(keyword string) {
	if !p.matchKeyword(keyword) {
		panic(fmt.Sprintf("expected keyword %s", keyword))
	}
}

func (p *Parser) lookahead() lex.Token {
	return p.tokens[p.index]
}

func (p *Parser) expect(kind uint) (lex.Token, []source.SyntaxError) {
	lookahead := p.lookahead()
	//
	if lookahead.Kind != kind {
		errs := p.syntaxErrors(lookahead, "unexpected token")
		return lookahead, errs
	}
	//
	p.index++
	//
	return lookahead, nil
}

func (p *Parser) match(kind uint) bool {
	if p.lookahead().Kind == kind {
		p.index++
		return true
	}
	//
	return false
}

func (p *Parser) spanOf(firstToken, lastToken int) source.Span {
	first := p.tokens[firstToken].Span
	last := p.tokens[lastToken].Span
	//
	return first.Union(last)
}

func (p *Parser) syntaxErrors(token lex.Token, msg string) []source.SyntaxError {
	return []source.SyntaxError{*p.srcfile.SyntaxError(token.Span, msg)}
}
