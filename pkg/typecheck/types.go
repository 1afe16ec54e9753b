// Copyright the raskc contributors.
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

// Package typecheck implements the HM-style type checker:
// constraint generation over a resolved AST, unification with an occurs
// check, and deferred field/method resolution solved to a fixed point.
//
// Constraints are gathered per declaration; deferred HasField/HasMethod
// constraints are reattempted as substitutions progress, to a fixed
// point.
package typecheck

import "fmt"

// VarId names a type variable allocated by freshVar().
type VarId uint

// Kind discriminates the closed set of checker-level types. Unlike
// mir.Type, this set includes type variables, generics, and the
// Option/Result/Fn forms that exist only before monomorphization.
type Kind uint8

// The closed set of checker-level type kinds.
const (
	KVar Kind = iota
	KPrim
	KOption
	KResult
	KFn
	KTuple
	KArray
	KSlice
	KNamed
	KNever
	KError
)

// Type is a checker-level type. Structured types (Option, Result, Fn,
// Tuple, Array, Slice, Named) carry their components in Args; Array
// additionally carries Len.
type Type struct {
	Kind Kind
	// Var is populated for KVar.
	Var VarId
	// Prim is populated for KPrim ("i8".."u128", "f32", "f64", "bool",
	// "char", "string", "void").
	Prim string
	// Named is populated for KNamed (a user struct/enum name).
	Named string
	// Args holds component types: [T] for Option, [T, E] for Result,
	// [p1..pn, ret] for Fn (ret last), element types for Tuple, [elem] for
	// Array/Slice, generic args for Named.
	Args []Type
	// Len is populated for KArray.
	Len int
}

// Var constructs a fresh type-variable reference.
func Var(id VarId) Type { return Type{Kind: KVar, Var: id} }

// Prim constructs a primitive type.
func Prim(name string) Type { return Type{Kind: KPrim, Prim: name} }

// OptionOf constructs Option<t>.
func OptionOf(t Type) Type { return Type{Kind: KOption, Args: []Type{t}} }

// ResultOf constructs Result<ok, err>.
func ResultOf(ok, err Type) Type { return Type{Kind: KResult, Args: []Type{ok, err}} }

// FnOf constructs Fn(params...) -> ret.
func FnOf(params []Type, ret Type) Type {
	return Type{Kind: KFn, Args: append(append([]Type{}, params...), ret)}
}

// FnParams returns a function type's parameter types.
func (t Type) FnParams() []Type {
	if t.Kind != KFn {
		panic("FnParams: not a function type")
	}

	return t.Args[:len(t.Args)-1]
}

// FnResult returns a function type's result type.
func (t Type) FnResult() Type {
	if t.Kind != KFn {
		panic("FnResult: not a function type")
	}

	return t.Args[len(t.Args)-1]
}

// NamedOf constructs a reference to a user struct/enum, with optional
// generic arguments.
func NamedOf(name string, args ...Type) Type {
	return Type{Kind: KNamed, Named: name, Args: args}
}

// ArrayOf constructs a fixed-size array type.
func ArrayOf(elem Type, n int) Type { return Type{Kind: KArray, Args: []Type{elem}, Len: n} }

// SliceOf constructs a slice type.
func SliceOf(elem Type) Type { return Type{Kind: KSlice, Args: []Type{elem}} }

// TupleOf constructs a tuple type.
func TupleOf(elems ...Type) Type { return Type{Kind: KTuple, Args: elems} }

// Never is the bottom type required of guard-else diverge branches.
var Never = Type{Kind: KNever}

// Error is the sentinel that suppresses cascade errors once an expression
// has already been reported as ill-typed.
var Error = Type{Kind: KError}

// Elem returns the element type of an Option/Array/Slice.
func (t Type) Elem() Type {
	return t.Args[0]
}

// IsError reports whether this is the Type::Error sentinel.
func (t Type) IsError() bool { return t.Kind == KError }

// String renders a type for diagnostics.
func (t Type) String() string {
	switch t.Kind {
	case KVar:
		return fmt.Sprintf("?%d", t.Var)
	case KPrim:
		return t.Prim
	case KOption:
		return fmt.Sprintf("Option<%s>", t.Args[0])
	case KResult:
		return fmt.Sprintf("Result<%s, %s>", t.Args[0], t.Args[1])
	case KFn:
		return fmt.Sprintf("fn(...) -> %s", t.FnResult())
	case KTuple:
		return fmt.Sprintf("%v", t.Args)
	case KArray:
		return fmt.Sprintf("[%s; %d]", t.Args[0], t.Len)
	case KSlice:
		return fmt.Sprintf("[%s]", t.Args[0])
	case KNamed:
		return t.Named
	case KNever:
		return "Never"
	case KError:
		return "<error>"
	}

	return "?"
}
