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
	"slices"

	"github.com/consensys/go-quill/pkg/quill/ast"
	"github.com/consensys/go-quill/pkg/quill/parser"
	"github.com/consensys/go-quill/pkg/util/source"
)

// Quoted is an ordered, immutable sequence of lexical tokens representing an
// unparsed source fragment.  Two Quoted values are equal exactly when their
// token sequences are equal; in particular, equality is not modulo parsing
// (two fragments denoting the same expression need not be equal).
type Quoted struct {
	tokens []string
}

// EmptyQuoted returns the empty token sequence.
func EmptyQuoted() Quoted {
	return Quoted{}
}

// NewQuoted constructs a quoted value from a given token sequence.
func NewQuoted(tokens ...string) Quoted {
	return Quoted{tokens}
}

// Tokens returns the token sequence of this quoted value.  Callers must not
// mutate the result.
func (p Quoted) Tokens() []string {
	return p.tokens
}

// IsEmpty checks whether this quoted value contains no tokens at all.
func (p Quoted) IsEmpty() bool {
	return len(p.tokens) == 0
}

// Equals checks token-sequence equality against another quoted value.
func (p Quoted) Equals(other Quoted) bool {
	return slices.Equal(p.tokens, other.tokens)
}

// Append concatenates another quoted value onto the end of this one,
// returning the combined sequence.
func (p Quoted) Append(other Quoted) Quoted {
	var tokens []string
	//
	tokens = append(tokens, p.tokens...)
	tokens = append(tokens, other.tokens...)
	//
	return Quoted{tokens}
}

// String renders this quoted value as source text suitable for re-parsing.
func (p Quoted) String() string {
	return ast.JoinTokens(p.tokens)
}

// JoinQuoted concatenates a sequence of quoted values, inserting a given
// separator between adjacent elements.  Joining an empty sequence yields the
// empty quoted value.
func JoinQuoted(list []Quoted, separator Quoted) Quoted {
	var joined Quoted
	//
	for i, q := range list {
		if i != 0 {
			joined = joined.Append(separator)
		}
		//
		joined = joined.Append(q)
	}
	//
	return joined
}

// ParseAsExpr parses this quoted value as an expression, failing if its
// tokens do not form one.
func (p Quoted) ParseAsExpr() (ast.Expr, *source.Map[ast.Node], []source.SyntaxError) {
	srcfile := p.sourceFile()
	return parser.ParseExpression(srcfile)
}

// ParseAsType parses this quoted value as a type, failing if its tokens do
// not form one.
func (p Quoted) ParseAsType() (ast.Type, *source.Map[ast.Node], []source.SyntaxError) {
	srcfile := p.sourceFile()
	return parser.ParseType(srcfile)
}

// ParseAsItem parses this quoted value as a single item, failing if its
// tokens do not form one.
func (p Quoted) ParseAsItem() (ast.Item, *source.Map[ast.Node], []source.SyntaxError) {
	srcfile := p.sourceFile()
	return parser.ParseItem(srcfile)
}

// sourceFile renders this quoted value into a synthetic source file, against
// which any parse errors will be reported.
func (p Quoted) sourceFile() *source.File {
	return source.NewSourceFile("quote", []byte(p.String()))
}
