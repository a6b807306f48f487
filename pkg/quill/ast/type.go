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
	"fmt"
	"strings"
)

// Type represents a type of the surface language as written at a declaration
// site.  Observe that, at this level, types are purely syntactic.
type Type interface {
	Node
	// String returns the canonical source rendering of this type.
	String() string
}

// FieldType represents the native field element type.
type FieldType struct{}

func (p *FieldType) String() string { return "Field" }

// UintType represents an unsigned integer type of a given bit width (e.g.
// u32).
type UintType struct {
	Bits uint
}

func (p *UintType) String() string { return fmt.Sprintf("u%d", p.Bits) }

// BoolType represents the boolean type.
type BoolType struct{}

func (p *BoolType) String() string { return "bool" }

// StringType represents the string type.
type StringType struct{}

func (p *StringType) String() string { return "str" }

// UnitType represents the unit type, as arises for functions without a
// declared return type.
type UnitType struct{}

func (p *UnitType) String() string { return "()" }

// SliceType represents a slice of a given element type (e.g. [Field]).
type SliceType struct {
	Element Type
}

func (p *SliceType) String() string {
	return fmt.Sprintf("[%s]", p.Element.String())
}

// TupleType represents a tuple of two or more component types.
type TupleType struct {
	Elements []Type
}

func (p *TupleType) String() string {
	var elems []string
	//
	for _, e := range p.Elements {
		elems = append(elems, e.String())
	}
	//
	return fmt.Sprintf("(%s)", strings.Join(elems, ", "))
}

// NamedType represents a reference to a declared type (or generic parameter)
// by path, along with any generic arguments.
type NamedType struct {
	Path []string
	Args []Type
}

func (p *NamedType) String() string {
	name := strings.Join(p.Path, "::")
	//
	if len(p.Args) == 0 {
		return name
	}
	//
	var args []string
	//
	for _, a := range p.Args {
		args = append(args, a.String())
	}
	//
	return fmt.Sprintf("%s<%s>", name, strings.Join(args, ", "))
}

// ============================================================================
// Comptime-only types
// ============================================================================

// QuotedType represents the type of quoted token sequences.  Values of this
// type exist only during macro evaluation.
type QuotedType struct{}

func (p *QuotedType) String() string { return "Quoted" }

// ExprType represents the type of parsed expression handles.  Values of this
// type exist only during macro evaluation.
type ExprType struct{}

func (p *ExprType) String() string { return "Expr" }

// TypeType represents the type of reflected type references.  Values of this
// type exist only during macro evaluation.
type TypeType struct{}

func (p *TypeType) String() string { return "Type" }

// ModuleType represents the type of module reflection handles.  Values of
// this type exist only during macro evaluation.
type ModuleType struct{}

func (p *ModuleType) String() string { return "Module" }

// FunctionDefType represents the type of function-definition reflection
// handles.  Values of this type exist only during macro evaluation.
type FunctionDefType struct{}

func (p *FunctionDefType) String() string { return "FunctionDefinition" }

// StructDefType represents the type of struct-definition reflection handles.
// Values of this type exist only during macro evaluation.
type StructDefType struct{}

func (p *StructDefType) String() string { return "StructDefinition" }

// NewType constructs the type denoted by a given (unqualified) name, mapping
// the builtin type names onto their respective representations.
func NewType(name string) Type {
	switch name {
	case "Field":
		return &FieldType{}
	case "bool":
		return &BoolType{}
	case "str":
		return &StringType{}
	case "Quoted":
		return &QuotedType{}
	case "Expr":
		return &ExprType{}
	case "Type":
		return &TypeType{}
	case "Module":
		return &ModuleType{}
	case "FunctionDefinition":
		return &FunctionDefType{}
	case "StructDefinition":
		return &StructDefType{}
	}
	// Check for sized integer types
	if bits, ok := uintWidth(name); ok {
		return &UintType{bits}
	}
	// Otherwise, this is a reference to a declared type.
	return &NamedType{[]string{name}, nil}
}

// uintWidth attempts to decode a name of the form uNN, returning the bit
// width NN on success.
func uintWidth(name string) (uint, bool) {
	if len(name) < 2 || name[0] != 'u' {
		return 0, false
	}
	//
	width := uint(0)
	//
	for i := 1; i < len(name); i++ {
		c := name[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		//
		width = (width * 10) + uint(c-'0')
	}
	//
	return width, width > 0 && width <= 128
}
