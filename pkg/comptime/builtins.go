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
	"math/big"

	"github.com/consensys/go-quill/pkg/quill/ast"
)

// callBuiltinMethod dispatches a method call against the builtin methods of a
// receiver, returning false if the receiver has no builtin method of the
// given name.  Reflection handles route through here as well.
func (p *Interpreter) callBuiltinMethod(recv Value, method string, args []Value,
	ctx ast.Node) (Value, *Error, bool) {
	//
	switch t := recv.(type) {
	case QuotedVal:
		return p.callQuotedMethod(t, method, args, ctx)
	case Slice:
		return p.callSliceMethod(t, method, args, ctx)
	case ModuleHandle:
		return t.invoke(method, args, ctx)
	case FunctionHandle:
		return t.invoke(method, args, ctx)
	case StructHandle:
		return t.invoke(method, args, ctx)
	}
	//
	return nil, nil, false
}

func (p *Interpreter) callQuotedMethod(recv QuotedVal, method string, args []Value,
	ctx ast.Node) (Value, *Error, bool) {
	//
	switch method {
	case "as_expr":
		if err := checkArity(method, args, 0, ctx); err != nil {
			return nil, err, true
		}
		//
		expr, srcmap, errs := recv.Val.ParseAsExpr()
		if len(errs) > 0 {
			return nil, parseErrorf(ctx, "quoted value does not parse as an expression: %s",
				errs[0].Message()), true
		}
		//
		p.arena.SourceMaps().Join(srcmap)
		//
		return ExprVal{expr}, nil, true
	case "as_type":
		if err := checkArity(method, args, 0, ctx); err != nil {
			return nil, err, true
		}
		//
		datatype, srcmap, errs := recv.Val.ParseAsType()
		if len(errs) > 0 {
			return nil, parseErrorf(ctx, "quoted value does not parse as a type: %s",
				errs[0].Message()), true
		}
		//
		p.arena.SourceMaps().Join(srcmap)
		//
		return TypeVal{datatype}, nil, true
	case "is_empty":
		if err := checkArity(method, args, 0, ctx); err != nil {
			return nil, err, true
		}
		//
		return Bool{recv.Val.IsEmpty()}, nil, true
	case "append":
		if err := checkArity(method, args, 1, ctx); err != nil {
			return nil, err, true
		}
		//
		other, err := expectQuoted(method, args[0], ctx)
		if err != nil {
			return nil, err, true
		}
		//
		return QuotedVal{recv.Val.Append(other)}, nil, true
	}
	//
	return nil, nil, false
}

func (p *Interpreter) callSliceMethod(recv Slice, method string, args []Value,
	ctx ast.Node) (Value, *Error, bool) {
	//
	switch method {
	case "len":
		if err := checkArity(method, args, 0, ctx); err != nil {
			return nil, err, true
		}
		//
		return Int{big.NewInt(int64(len(recv.Elems)))}, nil, true
	case "push_back":
		if err := checkArity(method, args, 1, ctx); err != nil {
			return nil, err, true
		}
		//
		return recv.PushBack(args[0]), nil, true
	case "join":
		if err := checkArity(method, args, 1, ctx); err != nil {
			return nil, err, true
		}
		//
		separator, err := expectQuoted(method, args[0], ctx)
		if err != nil {
			return nil, err, true
		}
		// Every element must itself be quoted.
		quoteds := make([]Quoted, len(recv.Elems))
		//
		for i, elem := range recv.Elems {
			q, err := expectQuoted(method, elem, ctx)
			if err != nil {
				return nil, err, true
			}
			//
			quoteds[i] = q
		}
		// An empty slice joins to the empty fragment.
		return QuotedVal{JoinQuoted(quoteds, separator)}, nil, true
	}
	//
	return nil, nil, false
}
