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
	"fmt"

	"github.com/consensys/go-quill/pkg/quill/ast"
)

// ErrorKind distinguishes the kinds of failure which can arise during macro
// evaluation.  All of them are fatal to the enclosing compilation: there is
// no mechanism for skipping a failing macro and continuing.
type ErrorKind uint

const (
	// PARSE_ERROR arises when a quoted token sequence does not parse as the
	// requested grammatical category.
	PARSE_ERROR ErrorKind = iota
	// REFLECTION_ERROR arises when a reflection query is made against an
	// item in a state which cannot answer it (e.g. a struct field whose
	// default expression is malformed).
	REFLECTION_ERROR
	// INVALID_MUTATION_ERROR arises when a write is attempted through a
	// reflection handle after the expansion pass has been finalised.
	INVALID_MUTATION_ERROR
	// EVALUATION_ERROR arises when comptime code fails an assertion, or an
	// attribute function otherwise misbehaves (e.g. returns a value of an
	// unexpected type).
	EVALUATION_ERROR
)

// String returns a human-readable name for this error kind.
func (k ErrorKind) String() string {
	switch k {
	case PARSE_ERROR:
		return "parse error"
	case REFLECTION_ERROR:
		return "reflection error"
	case INVALID_MUTATION_ERROR:
		return "invalid mutation"
	case EVALUATION_ERROR:
		return "evaluation error"
	}
	//
	panic("unknown error kind")
}

// Error represents a failure arising during macro evaluation.  Where
// possible, an error retains the AST node on which it arose, such that it can
// subsequently be reported against the original source file.
type Error struct {
	Kind ErrorKind
	Msg  string
	// Node on which this error arose, or nil if unknown.
	Context ast.Node
}

// Error implements the error interface.
func (p *Error) Error() string {
	return fmt.Sprintf("%s: %s", p.Kind.String(), p.Msg)
}

// IsFatal always holds, since macro evaluation has no recovery mechanism.
func (p *Error) IsFatal() bool {
	return true
}

func parseErrorf(context ast.Node, format string, args ...any) *Error {
	return &Error{PARSE_ERROR, fmt.Sprintf(format, args...), context}
}

func reflectionErrorf(context ast.Node, format string, args ...any) *Error {
	return &Error{REFLECTION_ERROR, fmt.Sprintf(format, args...), context}
}

func mutationErrorf(context ast.Node, format string, args ...any) *Error {
	return &Error{INVALID_MUTATION_ERROR, fmt.Sprintf(format, args...), context}
}

func evaluationErrorf(context ast.Node, format string, args ...any) *Error {
	return &Error{EVALUATION_ERROR, fmt.Sprintf(format, args...), context}
}
