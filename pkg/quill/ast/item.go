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

import (
	"strings"

	"github.com/consensys/go-quill/pkg/util"
)

// Node provides a common handle for all elements of the Abstract Syntax Tree.
// Its primary purpose is as a reference point for constructing a suitable
// source map, such that syntax errors arising on any element can be reported
// against the original source file.  Nodes are always pointers to concrete
// AST structs, hence comparison is by identity.
type Node interface{}

// Item represents a top-level declaration, either at the root of a compilation
// unit or nested within a module.
type Item interface {
	Node
	// Attrs returns the attributes carried by this item, in their declaration
	// (i.e. left-to-right) order.
	Attrs() []*Attribute
}

// Module represents a named namespace holding a set of item declarations.
// Modules can be nested arbitrarily, and module names must be unique within
// their enclosing parent.
type Module struct {
	Attributes []*Attribute
	Name       string
	Items      []Item
}

// Attrs returns the attributes carried by this module.
func (p *Module) Attrs() []*Attribute { return p.Attributes }

// AddItem appends an item to this module.  Observe that, during macro
// expansion, this must only happen via the deferred mutation mechanism.
func (p *Module) AddItem(item Item) {
	p.Items = append(p.Items, item)
}

// Function represents a function declaration, including its attributes and
// declaration-site metadata.  Functions marked comptime are executed by the
// macro evaluator during compilation, rather than being lowered for circuit
// execution.
type Function struct {
	Attributes    []*Attribute
	Comptime      bool
	Unconstrained bool
	Public        bool
	// ReturnPublic indicates whether the return value of this function is
	// publicly visible when called from an external entry point.
	ReturnPublic bool
	Name         string
	Generics     []Generic
	Params       []Param
	// Return type, or nil for unit.
	Return Type
	// Body of this function, or nil for a bodyless signature (e.g. a trait
	// method declaration).
	Body *Block
}

// Attrs returns the attributes carried by this function.
func (p *Function) Attrs() []*Attribute { return p.Attributes }

// Param represents a single (name, type) parameter pair of a function
// declaration.
type Param struct {
	Name string
	Type Type
}

// Generic represents a single generic parameter, along with an optional trait
// bound (e.g. "T: Ord").
type Generic struct {
	Name  string
	Bound util.Option[string]
}

// StructDef represents the declaration of an aggregate type, including its
// field list exactly as written.
type StructDef struct {
	Attributes []*Attribute
	Name       string
	Generics   []Generic
	Fields     []StructField
}

// Attrs returns the attributes carried by this struct.
func (p *StructDef) Attrs() []*Attribute { return p.Attributes }

// StructField represents a single field declaration of a struct.  Default
// expressions are retained as their raw token sequence, since they are only
// ever re-emitted into generated code (and, hence, are not parsed until such
// code is itself parsed).
type StructField struct {
	Name string
	Type Type
	// Default token sequence, or nil if no default was given.
	Default []string
}

// TraitDef represents a trait declaration.  Traits are largely opaque to the
// macro engine, except that a trait may nominate (via a derive_via attribute)
// a comptime function responsible for deriving implementations of it.
type TraitDef struct {
	Attributes []*Attribute
	Name       string
	// Method signatures declared by this trait (all bodyless).
	Methods []*Function
}

// Attrs returns the attributes carried by this trait.
func (p *TraitDef) Attrs() []*Attribute { return p.Attributes }

// ImplDef represents a trait implementation for a given target type.
type ImplDef struct {
	// Trait being implemented.
	Trait Type
	// Target type for which the trait is implemented.
	Target Type
	// Method implementations.
	Functions []*Function
}

// Attrs returns the attributes carried by this impl (always empty).
func (p *ImplDef) Attrs() []*Attribute { return nil }

// GlobalDef represents a global declaration.  Globals marked comptime exist
// only during macro evaluation; those additionally marked mutable provide the
// shared state observed, in declaration order, by all attribute functions of
// a compilation unit.
type GlobalDef struct {
	Comptime bool
	Mutable  bool
	Name     string
	// Declared type, or nil if inferred from the initialiser.
	Type Type
	Init Expr
}

// Attrs returns the attributes carried by this global (always empty).
func (p *GlobalDef) Attrs() []*Attribute { return nil }

// Attribute represents a named annotation attached to an item.  The name is a
// (possibly qualified) path which may resolve to a comptime function; if it
// does not, the attribute is purely informational.
type Attribute struct {
	Path []string
	Args []Expr
}

// Name returns the dotted path of this attribute as written.
func (p *Attribute) Name() string {
	return strings.Join(p.Path, "::")
}

// IsNamed checks whether this attribute has a given (unqualified) name.
func (p *Attribute) IsNamed(name string) bool {
	return len(p.Path) == 1 && p.Path[0] == name
}
