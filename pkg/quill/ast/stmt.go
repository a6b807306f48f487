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

// Stmt represents a statement within a block.
type Stmt interface {
	Node
	isStmt()
}

// LetStmt represents the declaration (and initialisation) of a local
// variable.
type LetStmt struct {
	Mutable bool
	Name    string
	// Declared type, or nil if inferred.
	Type Type
	Init Expr
}

func (p *LetStmt) isStmt() {}

// AssignStmt represents an assignment to a mutable target.  The target is
// either a variable access, a qualified path (for comptime globals), a field
// access or an index expression.
type AssignStmt struct {
	Target Expr
	Value  Expr
}

func (p *AssignStmt) isStmt() {}

// ForStmt represents iteration of a body over a range or slice.
type ForStmt struct {
	Var  string
	Iter Expr
	Body *Block
}

func (p *ForStmt) isStmt() {}

// ExprStmt represents an expression evaluated purely for its effect.
type ExprStmt struct {
	Expr Expr
}

func (p *ExprStmt) isStmt() {}
