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
package comptime_test

import (
	"testing"

	"github.com/consensys/go-quill/pkg/comptime"
	"github.com/consensys/go-quill/pkg/quill"
	"github.com/consensys/go-quill/pkg/quill/ast"
	"github.com/consensys/go-quill/pkg/quill/resolver"
	"github.com/consensys/go-quill/pkg/util/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Interp_FieldArithmetic(t *testing.T) {
	checkCall(t, "comptime fn f() -> Field { 1 + 2 * 3 }", "f", "7")
	checkCall(t, "comptime fn f() -> Field { (1 + 2) * 3 }", "f", "9")
	checkCall(t, "comptime fn f(x: Field) -> Field { x * x }", "f", "25", comptime.NewInt(5))
}

func Test_Interp_FieldCoercion(t *testing.T) {
	// An integer argument flowing into a Field parameter becomes a field
	// element at the call boundary.
	interp, fn := setup(t, "comptime fn f(x: Field) -> Field { x }", "f")
	//
	val, err := interp.CallFunction(fn, []comptime.Value{comptime.NewInt(42)}, fn)
	require.Nil(t, err)
	//
	_, ok := val.(comptime.FieldElt)
	assert.True(t, ok)
	assert.Equal(t, "42", val.String())
}

func Test_Interp_FieldNegation(t *testing.T) {
	// -1 in the field is p - 1, not an integer.
	interp, fn := setup(t, "comptime fn f() -> Field { 0 - 1 }", "f")
	//
	val, err := interp.CallFunction(fn, nil, fn)
	require.Nil(t, err)
	// Adding one back recovers zero.
	elt, ok := val.(comptime.FieldElt)
	require.True(t, ok)
	//
	one := comptime.NewFieldElt(1)
	elt.Val.Add(&elt.Val, &one.Val)
	assert.True(t, elt.Val.IsZero())
}

func Test_Interp_IntegerOps(t *testing.T) {
	checkCall(t, "comptime fn f() -> bool { 7 / 2 == 3 }", "f", "true")
	checkCall(t, "comptime fn f() -> bool { 7 % 2 == 1 }", "f", "true")
	checkCall(t, "comptime fn f() -> bool { 2 < 3 && 3 <= 3 }", "f", "true")
	checkCall(t, "comptime fn f() -> bool { !(1 == 2) }", "f", "true")
}

func Test_Interp_MixedIntFieldEquality(t *testing.T) {
	// Equality between integers and field elements compares values, in either
	// operand order.
	checkCall(t, "comptime fn f(x: Field) -> bool { 3 == x }", "f", "true", comptime.NewInt(3))
	checkCall(t, "comptime fn f(x: Field) -> bool { x == 3 }", "f", "true", comptime.NewInt(3))
	checkCall(t, "comptime fn f(x: Field) -> bool { 4 != x }", "f", "true", comptime.NewInt(3))
	checkCall(t, "comptime fn f(x: Field) -> bool { 4 == x }", "f", "false", comptime.NewInt(3))
}

func Test_Interp_IfElse(t *testing.T) {
	checkCall(t, "comptime fn f(x: u32) -> u32 { if x > 10 { 1 } else if x > 5 { 2 } else { 3 } }",
		"f", "2", comptime.NewInt(7))
}

func Test_Interp_ForLoop(t *testing.T) {
	checkCall(t, `comptime fn f() -> u32 {
        let mut acc = 0;
        for i in 0..5 { acc = acc + i; }
        acc
    }`, "f", "10")
}

func Test_Interp_Slices(t *testing.T) {
	checkCall(t, "comptime fn f() -> u32 { [1, 2, 3].len() }", "f", "3")
	checkCall(t, "comptime fn f() -> u32 { [1, 2].push_back(3).len() }", "f", "3")
	checkCall(t, "comptime fn f() -> u32 { let xs = [10, 20, 30]; xs[1] }", "f", "20")
}

func Test_Interp_Tuples(t *testing.T) {
	checkCall(t, "comptime fn f() -> u32 { let p = (1, 2); p.0 + p.1 }", "f", "3")
}

func Test_Interp_FString(t *testing.T) {
	checkCall(t, "comptime fn f() -> str { let x = 42; f\"got {x}!\" }", "f", "got 42!")
}

func Test_Interp_Calls(t *testing.T) {
	checkCall(t, `
        comptime fn double(x: u32) -> u32 { x * 2 }
        comptime fn f() -> u32 { double(double(10)) }
    `, "f", "40")
}

func Test_Interp_StructMethods(t *testing.T) {
	checkCall(t, `
        struct Point { x: Field, y: Field, }
        impl Point {
            fn sum(self: Point) -> Field { self.x + self.y }
        }
        comptime fn f() -> Field {
            let p = Point { x: 1, y: 2 };
            p.sum()
        }
    `, "f", "3")
}

func Test_Interp_AssertOk(t *testing.T) {
	checkCall(t, "comptime fn f() -> bool { assert(1 + 1 == 2); true }", "f", "true")
}

func Test_Interp_AssertFails(t *testing.T) {
	interp, fn := setup(t, "comptime fn f() { assert(1 == 2, \"broken\"); }", "f")
	//
	_, err := interp.CallFunction(fn, nil, fn)
	require.NotNil(t, err)
	assert.Equal(t, comptime.EVALUATION_ERROR, err.Kind)
	assert.Contains(t, err.Msg, "broken")
}

func Test_Interp_GlobalInitOrder(t *testing.T) {
	// Later initialisers observe earlier globals.
	checkCall(t, `
        comptime global A: Field = 2;
        comptime global B: Field = A * 3;
        comptime fn f() -> Field { B }
    `, "f", "6")
}

func Test_Interp_GlobalMutation(t *testing.T) {
	checkCall(t, `
        comptime mut global counter: Field = 0;
        comptime fn bump() { counter = counter + 1; }
        comptime fn f() -> Field { bump(); bump(); counter }
    `, "f", "2")
}

func Test_Interp_ImmutableGlobal(t *testing.T) {
	interp, fn := setup(t, `
        comptime global LIMIT: Field = 10;
        comptime fn f() { LIMIT = 11; }
    `, "f")
	//
	_, err := interp.CallFunction(fn, nil, fn)
	require.NotNil(t, err)
	assert.Equal(t, comptime.EVALUATION_ERROR, err.Kind)
}

func Test_Interp_ImmutableLocal(t *testing.T) {
	interp, fn := setup(t, "comptime fn f() { let x = 1; x = 2; }", "f")
	//
	_, err := interp.CallFunction(fn, nil, fn)
	require.NotNil(t, err)
	assert.Equal(t, comptime.EVALUATION_ERROR, err.Kind)
	assert.Contains(t, err.Msg, "immutable")
}

func Test_Interp_ImmutableParameter(t *testing.T) {
	interp, fn := setup(t, "comptime fn f(x: u32) { x = 1; }", "f")
	//
	_, err := interp.CallFunction(fn, []comptime.Value{comptime.NewInt(0)}, fn)
	require.NotNil(t, err)
	assert.Equal(t, comptime.EVALUATION_ERROR, err.Kind)
	assert.Contains(t, err.Msg, "immutable")
}

func Test_Interp_FieldAssignUnsupported(t *testing.T) {
	interp, fn := setup(t, `
        struct Point { x: Field, y: Field, }
        comptime fn f() {
            let mut p = Point { x: 1, y: 2 };
            p.x = 3;
        }
    `, "f")
	//
	_, err := interp.CallFunction(fn, nil, fn)
	require.NotNil(t, err)
	assert.Equal(t, comptime.EVALUATION_ERROR, err.Kind)
	assert.Contains(t, err.Msg, "unsupported assignment target")
}

func Test_Interp_IndexAssignUnsupported(t *testing.T) {
	interp, fn := setup(t, "comptime fn f() { let mut xs = [1]; xs[0] = 2; }", "f")
	//
	_, err := interp.CallFunction(fn, nil, fn)
	require.NotNil(t, err)
	assert.Equal(t, comptime.EVALUATION_ERROR, err.Kind)
	assert.Contains(t, err.Msg, "unsupported assignment target")
}

func Test_Interp_QuoteSplice(t *testing.T) {
	interp, fn := setup(t, `
        comptime fn f() -> Quoted {
            let name = quote { answer };
            quote { fn $name() -> Field { 42 } }
        }
    `, "f")
	//
	val, err := interp.CallFunction(fn, nil, fn)
	require.Nil(t, err)
	//
	quoted, ok := val.(comptime.QuotedVal)
	require.True(t, ok)
	assert.True(t, quoted.Val.Equals(comptime.NewQuoted(
		"fn", "answer", "(", ")", "->", "Field", "{", "42", "}")))
}

func Test_Interp_QuoteSpliceValue(t *testing.T) {
	// Splices are substituted when the quote is evaluated, not when the
	// result is later parsed.
	checkCall(t, `
        comptime fn f() -> bool {
            let x = 21;
            let q = quote { $x + $x };
            q == quote { 21 + 21 }
        }
    `, "f", "true")
}

func Test_Interp_QuotedAsExpr(t *testing.T) {
	checkCall(t, `
        comptime fn f() -> bool {
            quote { 1 + 2 }.as_expr() == quote { 1 + 2 }.as_expr()
        }
    `, "f", "true")
}

func Test_Interp_JoinMethod(t *testing.T) {
	checkCall(t, `
        comptime fn f() -> bool {
            let parts = [quote { a }, quote { b }];
            parts.join(quote { , }) == quote { a , b }
        }
    `, "f", "true")
	// Joining the empty slice yields the empty fragment.
	checkCall(t, `
        comptime fn f() -> bool {
            let parts: [Quoted] = [];
            parts.join(quote { && }).is_empty()
        }
    `, "f", "true")
}

func Test_Interp_RecursionLimit(t *testing.T) {
	interp, fn := setup(t, "comptime fn f() -> Field { f() }", "f")
	//
	_, err := interp.CallFunction(fn, nil, fn)
	require.NotNil(t, err)
	assert.Equal(t, comptime.EVALUATION_ERROR, err.Kind)
}

// ============================================================================
// Helpers
// ============================================================================

// setup parses a given source string and constructs an interpreter over it,
// returning a named function ready for calling.
func setup(t *testing.T, input string, name string) (*comptime.Interpreter, *ast.Function) {
	t.Helper()
	//
	files := []source.File{*source.NewSourceFile("test.ql", []byte(input))}
	//
	root, srcmaps, errs := quill.ParseSourceFiles(files)
	require.Empty(t, errs)
	//
	unit, errs := resolver.Resolve(root, srcmaps)
	require.Empty(t, errs)
	//
	arena := comptime.NewArena(unit, srcmaps)
	interp := comptime.NewInterpreter(arena)
	//
	require.Nil(t, interp.InitGlobals())
	//
	fn, ok := unit.LookupFunction(unit.Root(), []string{name})
	require.True(t, ok, "function %s not found", name)
	//
	return interp, fn
}

// checkCall invokes a named function of a given source string and checks its
// rendered result.
func checkCall(t *testing.T, input string, name string, expected string, args ...comptime.Value) {
	t.Helper()
	//
	interp, fn := setup(t, input, name)
	//
	val, err := interp.CallFunction(fn, args, fn)
	require.Nil(t, err, "unexpected error: %v", err)
	assert.Equal(t, expected, val.String())
}
