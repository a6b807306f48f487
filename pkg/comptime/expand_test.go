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

func Test_Expand_UnitAttribute(t *testing.T) {
	// An attribute function returning unit injects nothing, hence the item
	// count is unchanged by expansion.
	unit := expand(t, `
        comptime fn touch(f: FunctionDefinition) { }
        #[touch]
        fn target() -> Field { 1 }
    `)
	//
	assert.Len(t, unit.Root().Items, 2)
}

func Test_Expand_InformationalAttribute(t *testing.T) {
	// An attribute which resolves to nothing applies vacuously.
	unit := expand(t, `
        #[inline]
        fn target() -> Field { 1 }
    `)
	//
	assert.Len(t, unit.Root().Items, 1)
}

func Test_Expand_InjectedItem(t *testing.T) {
	unit := expand(t, `
        comptime fn gen(m: Module) {
            m.add_item(quote { fn double(x: Field) -> Field { x * 2 } });
        }
        #[gen]
        mod gadgets { }
    `)
	// Injected item resolves exactly like a hand-written one.
	fn, ok := unit.LookupFunction(unit.Root(), []string{"gadgets", "double"})
	require.True(t, ok)
	// ...and is callable.
	checkPostExpansion(t, unit, fn, "10", comptime.NewInt(5))
}

func Test_Expand_AttributeReturningQuoted(t *testing.T) {
	unit := expand(t, `
        comptime fn shadow(f: FunctionDefinition) -> Quoted {
            let name = f.name();
            quote { comptime fn len_of() -> Field { 3 } }
        }
        #[shadow]
        fn target() -> Field { 1 }
    `)
	// The returned fragment is injected alongside the attributed item.
	assert.Len(t, unit.Root().Items, 3)
	//
	_, ok := unit.LookupFunction(unit.Root(), []string{"len_of"})
	assert.True(t, ok)
}

func Test_Expand_SetBody(t *testing.T) {
	// A function whose body is rewritten through reflection behaves exactly
	// as if it had been written that way by hand.
	unit := expand(t, `
        comptime fn fix(f: FunctionDefinition) {
            f.set_body(quote { 42 });
        }
        #[fix]
        comptime fn answer() -> Field { 41 }
    `)
	//
	fn, ok := unit.LookupFunction(unit.Root(), []string{"answer"})
	require.True(t, ok)
	//
	checkPostExpansion(t, unit, fn, "42")
}

func Test_Expand_SetParameters(t *testing.T) {
	unit := expand(t, `
        comptime fn widen(f: FunctionDefinition) {
            let params = f.parameters().push_back((quote { y }, f.return_type()));
            f.set_parameters(params);
        }
        #[widen]
        comptime fn first(x: Field) -> Field { x }
    `)
	//
	fn, ok := unit.LookupFunction(unit.Root(), []string{"first"})
	require.True(t, ok)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "y", fn.Params[1].Name)
}

func Test_Expand_SetUnconstrained(t *testing.T) {
	unit := expand(t, `
        comptime fn relax(f: FunctionDefinition) {
            assert(!f.is_unconstrained());
            f.set_unconstrained(true);
        }
        #[relax]
        fn target() -> Field { 1 }
    `)
	//
	fn, ok := unit.LookupFunction(unit.Root(), []string{"target"})
	require.True(t, ok)
	assert.True(t, fn.Unconstrained)
}

func Test_Expand_HasNamedAttribute(t *testing.T) {
	// Informational attributes are not invoked, but remain queryable.
	expand(t, `
        comptime fn check(f: FunctionDefinition) {
            assert(f.has_named_attribute("check"));
            assert(f.has_named_attribute("inline"));
            assert(!f.has_named_attribute("missing"));
        }
        #[inline]
        #[check]
        fn target() -> Field { 1 }
    `)
}

func Test_Expand_SetReturnType(t *testing.T) {
	unit := expand(t, `
        comptime fn retype(f: FunctionDefinition) {
            f.set_return_type(quote { Field }.as_type());
        }
        #[retype]
        comptime fn answer() { 21 + 21 }
    `)
	//
	fn, ok := unit.LookupFunction(unit.Root(), []string{"answer"})
	require.True(t, ok)
	require.NotNil(t, fn.Return)
	assert.Equal(t, "Field", fn.Return.String())
	// The result is now coerced into the field.
	checkPostExpansion(t, unit, fn, "42")
}

func Test_Expand_SetReturnTypeUnit(t *testing.T) {
	// Setting the unit return type erases the return type altogether.
	unit := expand(t, `
        comptime fn erase(f: FunctionDefinition) {
            f.set_return_type(quote { () }.as_type());
        }
        #[erase]
        comptime fn noop() -> Field { 0 }
    `)
	//
	fn, ok := unit.LookupFunction(unit.Root(), []string{"noop"})
	require.True(t, ok)
	assert.Nil(t, fn.Return)
}

func Test_Expand_SetReturnPublic(t *testing.T) {
	unit := expand(t, `
        comptime fn publicise(f: FunctionDefinition) {
            f.set_return_public(true);
        }
        #[publicise]
        fn reveal(x: Field) -> Field { x }
    `)
	//
	fn, ok := unit.LookupFunction(unit.Root(), []string{"reveal"})
	require.True(t, ok)
	assert.True(t, fn.ReturnPublic)
}

func Test_Expand_AsTypedExpr(t *testing.T) {
	// The typed expression of a function is its qualified path, which remains
	// callable when spliced into an injected sibling.
	unit := expand(t, `
        comptime fn wrap(f: FunctionDefinition) -> Quoted {
            let target = f.as_typed_expr();
            quote { fn wrapped(x: Field) -> Field { $target(x) + 1 } }
        }
        mod inner {
            #[wrap]
            fn double(x: Field) -> Field { x * 2 }
        }
    `)
	//
	fn, ok := unit.LookupFunction(unit.Root(), []string{"inner", "wrapped"})
	require.True(t, ok)
	//
	checkPostExpansion(t, unit, fn, "21", comptime.NewInt(10))
}

func Test_Expand_StructReflection(t *testing.T) {
	expand(t, `
        comptime fn inspect(s: StructDefinition) {
            assert(s.generics().len() == 2);
            assert(s.has_named_attribute("note"));
            assert(s.as_type() == quote { Pair<A, B> }.as_type());
            assert(s.module().name() == quote { main });
            let defaults = s.field_defaults();
            assert(defaults.len() == 1);
            assert(defaults[0].1 == quote { 0 + 1 }.as_expr());
        }
        #[note]
        #[inspect]
        struct Pair<A, B> {
            first: A,
            second: B = 0 + 1,
        }
    `)
}

func Test_Expand_MalformedFieldDefault(t *testing.T) {
	// Defaults are held as raw tokens, hence a malformed one only surfaces at
	// the reflecting macro.
	checkExpandFails(t, `
        comptime fn inspect(s: StructDefinition) {
            let defaults = s.field_defaults();
        }
        #[inspect]
        struct Broken { x: Field = 1 +, }
    `, "does not parse")
}

func Test_Expand_GlobalMutationOrder(t *testing.T) {
	// Attribute functions observe global mutations in strict declaration
	// order, flattened across nested modules.
	expand(t, `
        comptime mut global trace: [Field] = [];
        comptime fn mark(f: FunctionDefinition, id: Field) {
            trace = trace.push_back(id);
        }
        #[mark(1)]
        fn a() -> Field { 0 }
        mod inner {
            #[mark(2)]
            fn b() -> Field { 0 }
        }
        #[mark(3)]
        fn c() -> Field { 0 }
        comptime fn finish(f: FunctionDefinition) {
            assert(trace == [1, 2, 3], "wrong order");
        }
        #[finish]
        fn d() -> Field { 0 }
    `)
}

func Test_Expand_DeriveEmptyStruct(t *testing.T) {
	// Deriving equality for a struct with no fields joins zero comparisons,
	// hence the generated body degenerates to true.
	unit := expand(t, deriveEqSource+`
        #[derive(Eq)]
        struct Empty { }
        comptime fn probe() -> bool {
            let a = Empty { };
            let b = Empty { };
            a.eq(b)
        }
    `)
	//
	fn, ok := unit.LookupFunction(unit.Root(), []string{"probe"})
	require.True(t, ok)
	//
	checkPostExpansion(t, unit, fn, "true")
}

func Test_Expand_DeriveStruct(t *testing.T) {
	unit := expand(t, deriveEqSource+`
        #[derive(Eq)]
        struct Point { x: Field, y: Field, }
        comptime fn same() -> bool {
            let a = Point { x: 1, y: 2 };
            let b = Point { x: 1, y: 2 };
            a.eq(b)
        }
        comptime fn different() -> bool {
            let a = Point { x: 1, y: 2 };
            let b = Point { x: 1, y: 3 };
            a.eq(b)
        }
    `)
	//
	same, ok := unit.LookupFunction(unit.Root(), []string{"same"})
	require.True(t, ok)
	checkPostExpansion(t, unit, same, "true")
	//
	different, ok := unit.LookupFunction(unit.Root(), []string{"different"})
	require.True(t, ok)
	checkPostExpansion(t, unit, different, "false")
}

func Test_Expand_RenderRoundTrip(t *testing.T) {
	unit := expand(t, deriveEqSource+`
        comptime fn gen(m: Module) -> Quoted {
            quote { fn triple(x: Field) -> Field { x * 3 } }
        }
        #[derive(Eq)]
        struct Point { x: Field, y: Field, }
        #[gen]
        mod gadgets { }
    `)
	// Rendering the expanded tree and re-parsing it must be stable.
	first := quill.RenderExpanded(unit)
	//
	files := []source.File{*source.NewSourceFile("expanded.ql", []byte(first))}
	root, srcmaps, errs := quill.ParseSourceFiles(files)
	require.Empty(t, errs, "expanded source does not re-parse")
	//
	reparsed, errs := resolver.Resolve(root, srcmaps)
	require.Empty(t, errs)
	//
	assert.Equal(t, first, quill.RenderExpanded(reparsed))
}

func Test_Expand_FailingAssertIsFatal(t *testing.T) {
	checkExpandFails(t, `
        comptime fn explode(f: FunctionDefinition) { assert(false, "boom"); }
        #[explode]
        fn target() -> Field { 1 }
    `, "boom")
}

func Test_Expand_MalformedInjection(t *testing.T) {
	// A staged fragment which does not parse as an item is fatal, reported
	// against the staging site.
	checkExpandFails(t, `
        comptime fn gen(m: Module) -> Quoted { quote { fn oops( } }
        #[gen]
        mod gadgets { }
    `, "does not parse")
}

func Test_Expand_UnknownDeriveTrait(t *testing.T) {
	checkExpandFails(t, `
        #[derive(Missing)]
        struct Point { x: Field, }
    `, "unknown trait")
}

func Test_Expand_DeriveWithoutDeriver(t *testing.T) {
	checkExpandFails(t, `
        trait Eq { fn eq(self: Self, other: Self) -> bool; }
        #[derive(Eq)]
        struct Point { x: Field, }
    `, "derive_via")
}

func Test_Expand_MutationAfterFinalise(t *testing.T) {
	files := []source.File{*source.NewSourceFile("test.ql", []byte("mod gadgets { }"))}
	//
	root, srcmaps, errs := quill.ParseSourceFiles(files)
	require.Empty(t, errs)
	//
	unit, errs := resolver.Resolve(root, srcmaps)
	require.Empty(t, errs)
	//
	arena := comptime.NewArena(unit, srcmaps)
	require.Empty(t, arena.Finalise())
	// Once the pass is finalised, staging anything further is invalid.
	err := arena.Stage(unit.Root(), comptime.NewQuoted("fn", "f", "(", ")", "{", "}"), root)
	//
	require.NotNil(t, err)
	assert.Equal(t, comptime.INVALID_MUTATION_ERROR, err.Kind)
}

// deriveEqSource declares a structural equality trait along with its deriver,
// as used by several tests above.
const deriveEqSource = `
    #[derive_via(derive_eq)]
    trait Eq { fn eq(self: Self, other: Self) -> bool; }
    comptime fn derive_eq(s: StructDefinition) -> Quoted {
        let mut cmps = [];
        for f in s.fields_as_written() {
            let fname = f.0;
            cmps = cmps.push_back(quote { self.$fname == other.$fname });
        }
        let mut body = cmps.join(quote { && });
        if body.is_empty() { body = quote { true }; }
        let name = s.name();
        quote {
            impl Eq for $name {
                fn eq(self: $name, other: $name) -> bool { $body }
            }
        }
    }
`

// ============================================================================
// Helpers
// ============================================================================

// expand parses and expands a given source string, failing the test on any
// error.
func expand(t *testing.T, input string) *resolver.Unit {
	t.Helper()
	//
	files := []source.File{*source.NewSourceFile("test.ql", []byte(input))}
	//
	unit, _, errs := quill.ExpandSourceFiles(files)
	require.Empty(t, errs, "unexpected expansion errors")
	//
	return unit
}

// checkExpandFails checks expansion of a given source string fails with a
// message containing given text.
func checkExpandFails(t *testing.T, input string, msg string) {
	t.Helper()
	//
	files := []source.File{*source.NewSourceFile("test.ql", []byte(input))}
	//
	_, _, errs := quill.ExpandSourceFiles(files)
	require.NotEmpty(t, errs, "expected expansion to fail")
	assert.Contains(t, errs[0].Message(), msg)
}

// checkPostExpansion calls a function of an expanded unit and checks its
// rendered result.
func checkPostExpansion(t *testing.T, unit *resolver.Unit, fn *ast.Function,
	expected string, args ...comptime.Value) {
	//
	t.Helper()
	//
	arena := comptime.NewArena(unit, source.NewSourceMaps[ast.Node]())
	interp := comptime.NewInterpreter(arena)
	//
	require.Nil(t, interp.InitGlobals())
	//
	val, err := interp.CallFunction(fn, args, fn)
	require.Nil(t, err, "unexpected error: %v", err)
	assert.Equal(t, expected, val.String())
}
