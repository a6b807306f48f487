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
	"github.com/consensys/go-quill/pkg/quill/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Quoted_Empty(t *testing.T) {
	q := comptime.EmptyQuoted()
	//
	assert.True(t, q.IsEmpty())
	assert.True(t, q.Equals(comptime.NewQuoted()))
	assert.Equal(t, "", q.String())
}

func Test_Quoted_Equality(t *testing.T) {
	assert.True(t, comptime.NewQuoted("1", "+", "2").Equals(comptime.NewQuoted("1", "+", "2")))
	// Equality is by token sequence, not by denotation.
	assert.False(t, comptime.NewQuoted("1", "+", "2").Equals(comptime.NewQuoted("3")))
	assert.False(t, comptime.NewQuoted("x").Equals(comptime.NewQuoted("x", "y")))
}

func Test_Quoted_Append(t *testing.T) {
	lhs := comptime.NewQuoted("x", "+")
	rhs := comptime.NewQuoted("1")
	//
	assert.True(t, lhs.Append(rhs).Equals(comptime.NewQuoted("x", "+", "1")))
	// Appending the empty fragment is a no-op.
	assert.True(t, lhs.Append(comptime.EmptyQuoted()).Equals(lhs))
	assert.True(t, comptime.EmptyQuoted().Append(rhs).Equals(rhs))
}

func Test_Quoted_JoinEmpty(t *testing.T) {
	// Joining no fragments yields the empty fragment, regardless of separator.
	joined := comptime.JoinQuoted(nil, comptime.NewQuoted("&&"))
	//
	assert.True(t, joined.IsEmpty())
	assert.True(t, joined.Equals(comptime.EmptyQuoted()))
}

func Test_Quoted_JoinSingleton(t *testing.T) {
	joined := comptime.JoinQuoted([]comptime.Quoted{comptime.NewQuoted("true")}, comptime.NewQuoted("&&"))
	//
	assert.True(t, joined.Equals(comptime.NewQuoted("true")))
}

func Test_Quoted_Join(t *testing.T) {
	fragments := []comptime.Quoted{
		comptime.NewQuoted("a", "==", "b"),
		comptime.NewQuoted("c", "==", "d"),
	}
	//
	joined := comptime.JoinQuoted(fragments, comptime.NewQuoted("&&"))
	//
	assert.True(t, joined.Equals(comptime.NewQuoted("a", "==", "b", "&&", "c", "==", "d")))
}

func Test_Quoted_ParseAsExpr(t *testing.T) {
	expr, _, errs := comptime.NewQuoted("1", "+", "2").ParseAsExpr()
	//
	require.Empty(t, errs)
	//
	binary, ok := expr.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.BIN_ADD, binary.Op)
}

func Test_Quoted_ParseAsExprInvalid(t *testing.T) {
	_, _, errs := comptime.NewQuoted("1", "+").ParseAsExpr()
	//
	assert.NotEmpty(t, errs)
}

func Test_Quoted_ParseAsType(t *testing.T) {
	datatype, _, errs := comptime.NewQuoted("[", "Field", "]").ParseAsType()
	//
	require.Empty(t, errs)
	assert.Equal(t, "[Field]", datatype.String())
}

func Test_Quoted_ParseAsItem(t *testing.T) {
	quoted := comptime.NewQuoted("fn", "f", "(", ")", "{", "}")
	//
	item, _, errs := quoted.ParseAsItem()
	require.Empty(t, errs)
	//
	fn, ok := item.(*ast.Function)
	require.True(t, ok)
	assert.Equal(t, "f", fn.Name)
}
