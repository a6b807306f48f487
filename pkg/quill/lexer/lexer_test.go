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
package lexer

import (
	"testing"

	"github.com/consensys/go-quill/pkg/util/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Lex_Punctuation(t *testing.T) {
	checkKinds(t, "( ) { } [ ] , ; :: : .. . -> # $",
		LPAREN, RPAREN, LCURLY, RCURLY, LBRACKET, RBRACKET, COMMA,
		SEMICOLON, PATH_SEP, COLON, DOTDOT, DOT, RIGHTARROW, HASH, DOLLAR)
}

func Test_Lex_Operators(t *testing.T) {
	checkKinds(t, "+ - * / % = == != ! <= < >= > && & || |",
		ADD, SUB, MUL, DIV, REM, EQUALS, EQUALS_EQUALS, NOT_EQUALS, NOT,
		LESS_THAN_EQUALS, LESS_THAN, GREATER_THAN_EQUALS, GREATER_THAN,
		AND_AND, AND, OR_OR, OR)
}

func Test_Lex_CompoundsUnspaced(t *testing.T) {
	// Maximal munch applies without separating whitespace.
	checkKinds(t, "a::b..c->d", IDENTIFIER, PATH_SEP, IDENTIFIER, DOTDOT,
		IDENTIFIER, RIGHTARROW, IDENTIFIER)
}

func Test_Lex_Identifiers(t *testing.T) {
	checkTexts(t, "foo _bar Baz2 f x_1", "foo", "_bar", "Baz2", "f", "x_1")
}

func Test_Lex_Keywords(t *testing.T) {
	// Keywords are just identifiers, as far as the lexer is concerned.
	checkKinds(t, "fn comptime mut quote", IDENTIFIER, IDENTIFIER, IDENTIFIER, IDENTIFIER)
}

func Test_Lex_Numbers(t *testing.T) {
	checkTexts(t, "0 42 1_000 0xff 0xDE_AD", "0", "42", "1_000", "0xff", "0xDE_AD")
}

func Test_Lex_Strings(t *testing.T) {
	checkKinds(t, "\"\" \"hello\" \"a b\"", STRING, STRING, STRING)
}

func Test_Lex_FStrings(t *testing.T) {
	checkKinds(t, "f\"got {x}\" f\"\"", FSTRING, FSTRING)
	// A lone f is an identifier, not a format string.
	checkKinds(t, "f + 1", IDENTIFIER, ADD, NUMBER)
}

func Test_Lex_UnterminatedString(t *testing.T) {
	checkInvalid(t, "\"oops")
	checkInvalid(t, "\"oops\nmore\"")
}

func Test_Lex_CommentsDiscarded(t *testing.T) {
	checkKinds(t, "x // trailing comment\ny", IDENTIFIER, IDENTIFIER)
}

func Test_Lex_UnknownText(t *testing.T) {
	checkInvalid(t, "x @ y")
}

// checkKinds lexes a given string and checks the resulting token kinds match
// (ignoring the terminating END_OF).
func checkKinds(t *testing.T, input string, kinds ...uint) {
	t.Helper()
	//
	srcfile := source.NewSourceFile("test", []byte(input))
	tokens, errs := Lex(srcfile)
	//
	require.Empty(t, errs)
	require.Equal(t, len(kinds)+1, len(tokens))
	//
	for i, kind := range kinds {
		assert.Equal(t, kind, tokens[i].Kind, "token %d of %q", i, input)
	}
	//
	assert.Equal(t, END_OF, tokens[len(tokens)-1].Kind)
}

// checkTexts lexes a given string and checks the texts of the resulting
// tokens match (ignoring the terminating END_OF).
func checkTexts(t *testing.T, input string, texts ...string) {
	t.Helper()
	//
	srcfile := source.NewSourceFile("test", []byte(input))
	tokens, errs := Lex(srcfile)
	//
	require.Empty(t, errs)
	require.Equal(t, len(texts)+1, len(tokens))
	//
	for i, text := range texts {
		assert.Equal(t, text, srcfile.Text(tokens[i].Span), "token %d of %q", i, input)
	}
}

func checkInvalid(t *testing.T, input string) {
	t.Helper()
	//
	srcfile := source.NewSourceFile("test", []byte(input))
	_, errs := Lex(srcfile)
	//
	assert.NotEmpty(t, errs, "expected %q to be rejected", input)
}
