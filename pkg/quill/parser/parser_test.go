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
	"testing"

	"github.com/consensys/go-quill/pkg/quill/ast"
	"github.com/consensys/go-quill/pkg/util/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Parse_Function(t *testing.T) {
	item := parseOneItem(t, "fn add(x: Field, y: Field) -> Field { x + y }")
	fn, ok := item.(*ast.Function)
	//
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	assert.Len(t, fn.Params, 2)
	assert.NotNil(t, fn.Return)
	assert.NotNil(t, fn.Body)
}

func Test_Parse_FunctionModifiers(t *testing.T) {
	item := parseOneItem(t, "pub comptime unconstrained fn f() { }")
	fn, ok := item.(*ast.Function)
	//
	require.True(t, ok)
	assert.True(t, fn.Public)
	assert.True(t, fn.Comptime)
	assert.True(t, fn.Unconstrained)
}

func Test_Parse_FunctionGenerics(t *testing.T) {
	item := parseOneItem(t, "fn f<T, U: Ord>(x: T) -> T { x }")
	fn, ok := item.(*ast.Function)
	//
	require.True(t, ok)
	require.Len(t, fn.Generics, 2)
	assert.Equal(t, "T", fn.Generics[0].Name)
	assert.True(t, fn.Generics[0].Bound.IsEmpty())
	assert.Equal(t, "Ord", fn.Generics[1].Bound.Unwrap())
}

func Test_Parse_Attributes(t *testing.T) {
	item := parseOneItem(t, "#[inline]\n#[utils::make_even(2)]\nfn f() { }")
	//
	require.Len(t, item.Attrs(), 2)
	assert.Equal(t, "inline", item.Attrs()[0].Name())
	assert.Equal(t, "utils::make_even", item.Attrs()[1].Name())
	assert.Len(t, item.Attrs()[1].Args, 1)
}

func Test_Parse_Struct(t *testing.T) {
	item := parseOneItem(t, "struct Point { x: Field, y: Field = 0 + 1, }")
	st, ok := item.(*ast.StructDef)
	//
	require.True(t, ok)
	require.Len(t, st.Fields, 2)
	assert.Nil(t, st.Fields[0].Default)
	// Defaults are retained as raw tokens, not parsed.
	assert.Equal(t, []string{"0", "+", "1"}, st.Fields[1].Default)
}

func Test_Parse_EmptyStruct(t *testing.T) {
	item := parseOneItem(t, "struct Unit { }")
	st, ok := item.(*ast.StructDef)
	//
	require.True(t, ok)
	assert.Empty(t, st.Fields)
}

func Test_Parse_TraitWithDeriveVia(t *testing.T) {
	item := parseOneItem(t, "#[derive_via(derive_default)]\ntrait Default { fn default() -> Self; }")
	tr, ok := item.(*ast.TraitDef)
	//
	require.True(t, ok)
	assert.Equal(t, "derive_via", tr.Attributes[0].Name())
	require.Len(t, tr.Methods, 1)
	assert.Nil(t, tr.Methods[0].Body)
}

func Test_Parse_Impl(t *testing.T) {
	item := parseOneItem(t, "impl Default for Point { fn default() -> Self { Point { x: 0, y: 0 } } }")
	im, ok := item.(*ast.ImplDef)
	//
	require.True(t, ok)
	assert.NotNil(t, im.Trait)
	require.Len(t, im.Functions, 1)
}

func Test_Parse_Globals(t *testing.T) {
	item := parseOneItem(t, "comptime mut global counter: Field = 0;")
	g, ok := item.(*ast.GlobalDef)
	//
	require.True(t, ok)
	assert.True(t, g.Comptime)
	assert.True(t, g.Mutable)
	assert.NotNil(t, g.Type)
}

func Test_Parse_NestedModules(t *testing.T) {
	item := parseOneItem(t, "mod outer { mod inner { fn f() { } } }")
	outer, ok := item.(*ast.Module)
	//
	require.True(t, ok)
	require.Len(t, outer.Items, 1)
	//
	inner, ok := outer.Items[0].(*ast.Module)
	require.True(t, ok)
	assert.Equal(t, "inner", inner.Name)
}

func Test_Parse_Precedence(t *testing.T) {
	// 1 + 2 * 3 parses as 1 + (2 * 3)
	expr := parseOneExpr(t, "1 + 2 * 3")
	add, ok := expr.(*ast.BinaryExpr)
	//
	require.True(t, ok)
	assert.Equal(t, ast.BIN_ADD, add.Op)
	//
	mul, ok := add.Rhs.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.BIN_MUL, mul.Op)
}

func Test_Parse_Comparison(t *testing.T) {
	expr := parseOneExpr(t, "x + 1 <= y * 2")
	cmp, ok := expr.(*ast.BinaryExpr)
	//
	require.True(t, ok)
	assert.Equal(t, ast.BIN_LTEQ, cmp.Op)
}

func Test_Parse_Quote(t *testing.T) {
	expr := parseOneExpr(t, "quote { $f() + 1 }")
	q, ok := expr.(*ast.QuoteExpr)
	//
	require.True(t, ok)
	require.Len(t, q.Tokens, 5)
	assert.Equal(t, "f", q.Tokens[0].Splice)
	assert.Equal(t, "(", q.Tokens[1].Text)
	assert.Equal(t, "+", q.Tokens[3].Text)
}

func Test_Parse_QuoteNestedBraces(t *testing.T) {
	// Braces nest within a quote block; only the matching closer ends it.
	expr := parseOneExpr(t, "quote { fn f() { 1 } }")
	q, ok := expr.(*ast.QuoteExpr)
	//
	require.True(t, ok)
	assert.Equal(t, "{", q.Tokens[4].Text)
	assert.Equal(t, "}", q.Tokens[6].Text)
}

func Test_Parse_EmptyQuote(t *testing.T) {
	expr := parseOneExpr(t, "quote { }")
	q, ok := expr.(*ast.QuoteExpr)
	//
	require.True(t, ok)
	assert.Empty(t, q.Tokens)
}

func Test_Parse_FString(t *testing.T) {
	expr := parseOneExpr(t, "f\"expected {x} got {y}!\"")
	fs, ok := expr.(*ast.FStringLit)
	//
	require.True(t, ok)
	require.Len(t, fs.Parts, 5)
	assert.Equal(t, "x", fs.Parts[1].Ident)
	assert.Equal(t, "y", fs.Parts[3].Ident)
	assert.Equal(t, "!", fs.Parts[4].Text)
}

func Test_Parse_IfNoStructLit(t *testing.T) {
	// In an if condition, "x {" must not parse as a struct literal.
	expr := parseOneExpr(t, "if x == y { 1 } else { 2 }")
	ie, ok := expr.(*ast.IfExpr)
	//
	require.True(t, ok)
	assert.NotNil(t, ie.Else)
}

func Test_Parse_MethodChain(t *testing.T) {
	expr := parseOneExpr(t, "xs.push_back(1).len()")
	outer, ok := expr.(*ast.MethodCallExpr)
	//
	require.True(t, ok)
	assert.Equal(t, "len", outer.Method)
	//
	inner, ok := outer.Receiver.(*ast.MethodCallExpr)
	require.True(t, ok)
	assert.Equal(t, "push_back", inner.Method)
}

func Test_Parse_TrailingGarbage(t *testing.T) {
	srcfile := source.NewSourceFile("test", []byte("1 + 2 junk"))
	_, _, errs := ParseExpression(srcfile)
	//
	assert.NotEmpty(t, errs)
}

func Test_Parse_Invalid(t *testing.T) {
	for _, input := range []string{
		"fn",
		"fn f( { }",
		"struct { }",
		"global x = ;",
		"#[] fn f() { }",
	} {
		srcfile := source.NewSourceFile("test", []byte(input))
		_, _, errs := ParseSourceFile(srcfile)
		//
		assert.NotEmpty(t, errs, "expected %q to be rejected", input)
	}
}

// Test that rendering is a fixpoint: rendering a parsed item and re-parsing
// the result yields an identical rendering.
func Test_Parse_RenderRoundTrip(t *testing.T) {
	for _, input := range []string{
		"fn add(x: Field, y: Field) -> Field { x + y }",
		"#[derive(Default)]\nstruct Point { x: Field, y: Field, }",
		"comptime mut global counter: Field = 0;",
		"mod utils { comptime fn make_even(f: FunctionDefinition) { } }",
		"fn f() { let mut xs = [1, 2, 3]; for x in 0..3 { assert(xs[x] > 0); } }",
		"comptime fn gen(s: StructDefinition) -> Quoted { quote { fn zero() -> Field { 0 } } }",
		"impl Default for Point { fn default() -> Self { Point { x: 0, y: 0 } } }",
	} {
		first := ast.ItemToString(parseOneItem(t, input))
		second := ast.ItemToString(parseOneItem(t, first))
		//
		assert.Equal(t, first, second, "round trip of %q", input)
	}
}

func parseOneItem(t *testing.T, input string) ast.Item {
	t.Helper()
	//
	srcfile := source.NewSourceFile("test", []byte(input))
	item, _, errs := ParseItem(srcfile)
	//
	require.Empty(t, errs, "unexpected errors parsing %q", input)
	//
	return item
}

func parseOneExpr(t *testing.T, input string) ast.Expr {
	t.Helper()
	//
	srcfile := source.NewSourceFile("test", []byte(input))
	expr, _, errs := ParseExpression(srcfile)
	//
	require.Empty(t, errs, "unexpected errors parsing %q", input)
	//
	return expr
}
