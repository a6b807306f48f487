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
	"github.com/consensys/go-quill/pkg/util/source"
	"github.com/consensys/go-quill/pkg/util/source/lex"
)

// END_OF signals "end of file"
const END_OF uint = 0

// WHITESPACE signals whitespace
const WHITESPACE uint = 1

// COMMENT signals "// ... \n"
const COMMENT uint = 2

// IDENTIFIER signals an identifier (this includes keywords, which are
// distinguished by the parser rather than the lexer).
const IDENTIFIER uint = 3

// NUMBER signals an integer number
const NUMBER uint = 4

// STRING signals a quoted string
const STRING uint = 5

// FSTRING signals a format string (e.g. f"got {x}")
const FSTRING uint = 6

// LPAREN signals "("
const LPAREN uint = 10

// RPAREN signals ")"
const RPAREN uint = 11

// LCURLY signals "{"
const LCURLY uint = 12

// RCURLY signals "}"
const RCURLY uint = 13

// LBRACKET signals "["
const LBRACKET uint = 14

// RBRACKET signals "]"
const RBRACKET uint = 15

// COMMA signals ","
const COMMA uint = 16

// SEMICOLON signals ";"
const SEMICOLON uint = 17

// COLON signals ":"
const COLON uint = 18

// PATH_SEP signals "::"
const PATH_SEP uint = 19

// DOT signals "."
const DOT uint = 20

// DOTDOT signals ".."
const DOTDOT uint = 21

// RIGHTARROW signals "->"
const RIGHTARROW uint = 22

// HASH signals "#"
const HASH uint = 23

// DOLLAR signals "$"
const DOLLAR uint = 24

// ADD signals "+"
const ADD uint = 30

// SUB signals "-"
const SUB uint = 31

// MUL signals "*"
const MUL uint = 32

// DIV signals "/"
const DIV uint = 33

// REM signals "%"
const REM uint = 34

// EQUALS signals "="
const EQUALS uint = 35

// EQUALS_EQUALS signals "=="
const EQUALS_EQUALS uint = 36

// NOT_EQUALS signals "!="
const NOT_EQUALS uint = 37

// NOT signals "!"
const NOT uint = 38

// LESS_THAN signals "<"
const LESS_THAN uint = 39

// LESS_THAN_EQUALS signals "<="
const LESS_THAN_EQUALS uint = 40

// GREATER_THAN signals ">"
const GREATER_THAN uint = 41

// GREATER_THAN_EQUALS signals ">="
const GREATER_THAN_EQUALS uint = 42

// AND signals "&"
const AND uint = 43

// AND_AND signals "&&"
const AND_AND uint = 44

// OR signals "|"
const OR uint = 45

// OR_OR signals "||"
const OR_OR uint = 46

// Rule for describing whitespace
var whitespace lex.Scanner[rune] = lex.Many(lex.Or(lex.Unit(' '), lex.Unit('\t'), lex.Unit('\r'), lex.Unit('\n')))

// Rule for describing numbers.  A number is either a hexadecimal or decimal
// one, allowing (and ignoring) '_' in the middle for readability.
var (
	decimalStart = lex.Within('0', '9')
	decimalRest  = lex.Or(
		lex.Within('0', '9'),
		lex.Unit('_'),
	)

	hexDigit = lex.Or(
		lex.Within('0', '9'),
		lex.Within('A', 'F'),
		lex.Within('a', 'f'),
	)
	hexStart = lex.Sequence(lex.String("0x"), hexDigit)
	hexRest  = lex.Or(
		hexDigit,
		lex.Unit('_'),
	)

	number = lex.Or(
		lex.SequenceNullableLast(hexStart, lex.Many(hexRest)),
		lex.SequenceNullableLast(decimalStart, lex.Many(decimalRest)),
	)
)

var identifierStart lex.Scanner[rune] = lex.Or(
	lex.Unit('_'),
	lex.Within('a', 'z'),
	lex.Within('A', 'Z'))

var identifierRest lex.Scanner[rune] = lex.Many(lex.Or(
	lex.Unit('_'),
	lex.Within('0', '9'),
	lex.Within('a', 'z'),
	lex.Within('A', 'Z')))

// Rule for describing identifiers
var identifier lex.Scanner[rune] = lex.And(identifierStart, identifierRest)

// Rule for describing strings in quotes.  Observe the body is permitted to be
// empty (e.g. ""), whilst unterminated strings are rejected outright (rather
// than running on to the end of the file).
var strung lex.Scanner[rune] = stringLiteral

// Rule for describing format strings (e.g. f"got {x}").
var fstrung lex.Scanner[rune] = func(items []rune) uint {
	if len(items) > 0 && items[0] == 'f' {
		if n := stringLiteral(items[1:]); n > 0 {
			return n + 1
		}
	}
	// fail
	return 0
}

// stringLiteral accepts an entire (possibly empty) string literal, including
// both enclosing quotes.
func stringLiteral(items []rune) uint {
	if len(items) == 0 || items[0] != '"' {
		// fail
		return 0
	}
	//
	for i := uint(1); i < uint(len(items)); i++ {
		if items[i] == '\n' {
			break
		} else if items[i] == '"' {
			return i + 1
		}
	}
	// fail (unterminated)
	return 0
}

// Comments start with '//' and continue until a newline or EOF.
var comment lex.Scanner[rune] = lex.And(lex.Unit('/', '/'), lex.Until('\n'))

// lexing rules
var rules []lex.LexRule[rune] = []lex.LexRule[rune]{
	lex.Rule(comment, COMMENT),
	lex.Rule(lex.Unit('('), LPAREN),
	lex.Rule(lex.Unit(')'), RPAREN),
	lex.Rule(lex.Unit('{'), LCURLY),
	lex.Rule(lex.Unit('}'), RCURLY),
	lex.Rule(lex.Unit('['), LBRACKET),
	lex.Rule(lex.Unit(']'), RBRACKET),
	lex.Rule(lex.Unit(','), COMMA),
	lex.Rule(lex.Unit(';'), SEMICOLON),
	lex.Rule(lex.Unit(':', ':'), PATH_SEP),
	lex.Rule(lex.Unit(':'), COLON),
	lex.Rule(lex.Unit('.', '.'), DOTDOT),
	lex.Rule(lex.Unit('.'), DOT),
	lex.Rule(lex.Unit('-', '>'), RIGHTARROW),
	lex.Rule(lex.Unit('#'), HASH),
	lex.Rule(lex.Unit('$'), DOLLAR),
	lex.Rule(lex.Unit('=', '='), EQUALS_EQUALS),
	lex.Rule(lex.Unit('!', '='), NOT_EQUALS),
	lex.Rule(lex.Unit('!'), NOT),
	lex.Rule(lex.Unit('<', '='), LESS_THAN_EQUALS),
	lex.Rule(lex.Unit('>', '='), GREATER_THAN_EQUALS),
	lex.Rule(lex.Unit('<'), LESS_THAN),
	lex.Rule(lex.Unit('>'), GREATER_THAN),
	lex.Rule(lex.Unit('='), EQUALS),
	lex.Rule(lex.Unit('+'), ADD),
	lex.Rule(lex.Unit('-'), SUB),
	lex.Rule(lex.Unit('*'), MUL),
	lex.Rule(lex.Unit('/'), DIV),
	lex.Rule(lex.Unit('%'), REM),
	lex.Rule(lex.Unit('&', '&'), AND_AND),
	lex.Rule(lex.Unit('&'), AND),
	lex.Rule(lex.Unit('|', '|'), OR_OR),
	lex.Rule(lex.Unit('|'), OR),
	lex.Rule(whitespace, WHITESPACE),
	lex.Rule(fstrung, FSTRING),
	lex.Rule(strung, STRING),
	lex.Rule(number, NUMBER),
	lex.Rule(identifier, IDENTIFIER),
	lex.Rule(lex.Eof[rune](), END_OF),
}

// Lex a given source file into a sequence of zero or more tokens, along with
// any syntax errors arising.  Whitespace and comments are discarded, and the
// resulting token sequence is always terminated by an END_OF token.
func Lex(srcfile *source.File) ([]lex.Token, []source.SyntaxError) {
	var (
		lexer = lex.NewLexer(srcfile.Contents(), rules...)
		// Lex as many tokens as possible
		tokens = lexer.Collect()
	)
	// Check whether anything was left (if so this is an error)
	if lexer.Remaining() != 0 {
		start, end := lexer.Index(), lexer.Index()+lexer.Remaining()
		err := srcfile.SyntaxError(source.NewSpan(int(start), int(end)), "unknown text encountered")
		// errors
		return nil, []source.SyntaxError{*err}
	}
	// Remove any whitespace and comments
	filtered := make([]lex.Token, 0, len(tokens))
	//
	for _, t := range tokens {
		if t.Kind != WHITESPACE && t.Kind != COMMENT {
			filtered = append(filtered, t)
		}
	}
	// Done
	return filtered, nil
}
