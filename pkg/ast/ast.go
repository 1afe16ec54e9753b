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

// Package ast defines the AST input contract: the shape that
// the (external, out-of-scope) parser and name resolver are expected to
// hand to the type checker, ownership checker and MIR lowerer. Every node
// carries a stable NodeId used to key side tables (node type, node symbol)
// and a Span for diagnostics.
package ast

import "github.com/rask-lang/raskc/pkg/util/source"

// NodeId uniquely identifies an expression or statement node across the
// whole program.
type NodeId uint

// Program is the top-level AST: a package's declarations.
type Program struct {
	Functions []*FuncDecl
	Structs   []*StructDecl
	Enums     []*EnumDecl
}

// Param is one function/closure parameter.
type Param struct {
	Name string
	// Kind is one of ParamPlain, ParamTake, ParamMutate.
	Kind ParamKind
	Type TypeExpr
	// Projection names a subset of a struct parameter's fields to borrow
	// (a "T.{f1,f2}" annotation). Empty means no projection.
	Projection []string
}

// ParamKind distinguishes how a parameter binds its argument.
type ParamKind uint8

// The closed set of parameter binding kinds.
const (
	ParamPlain ParamKind = iota
	ParamTake
	ParamMutate
)

// Context names one `using Pool<T>`-style hidden-parameter requirement.
type Context struct {
	// Name is the context kind, e.g. "Pool".
	Name string
	// TypeArg is the type argument, e.g. "T" in `Pool<T>`.
	TypeArg string
}

// FuncDecl is a function (or method) declaration.
type FuncDecl struct {
	Id         NodeId
	Name       string
	Params     []Param
	ReturnType TypeExpr
	Body       []Stmt
	Span       source.Span
	// IsPublic controls hidden-parameter propagation: public
	// functions must declare contexts explicitly.
	IsPublic bool
	// Contexts are the function's explicitly declared `using` clauses.
	Contexts []Context
	// Receiver is non-nil for methods; ReceiverKind distinguishes `self`
	// (shared), `mutate self`, and `take self` (the latter is what makes a
	// method "consuming" a resource).
	Receiver     *Param
	ReceiverKind ParamKind
	// TypeParams lists generic type parameters for monomorphization.
	TypeParams []string
}

// StructDecl declares a struct type.
type StructDecl struct {
	Name       string
	Fields     []FieldDecl
	TypeParams []string
	// IsResource marks a `@resource` struct.
	IsResource bool
}

// FieldDecl is one struct field.
type FieldDecl struct {
	Name string
	Type TypeExpr
}

// EnumDecl declares an enum (tagged union) type.
type EnumDecl struct {
	Name       string
	Variants   []EnumVariantDecl
	TypeParams []string
}

// EnumVariantDecl is one enum variant.
type EnumVariantDecl struct {
	Name   string
	Fields []FieldDecl
}

// TypeExpr is a syntactic type reference as written by the programmer
// (possibly containing unresolved generics, inferred via fresh type
// variables by the checker).
type TypeExpr struct {
	// Name is the base type name ("i32", "Option", "MyStruct", ...), or
	// empty if Inferred is set.
	Name string
	// Args are generic type arguments, e.g. ["T"] in "Option<T>".
	Args []TypeExpr
	// Inferred is true for an omitted annotation (e.g. an untyped closure
	// parameter), which the checker resolves via freshVar().
	Inferred bool
	// ArrayLen is set (>0 semantically) for "[T; N]" array type syntax.
	ArrayLen int
	// FnParams/FnResult are set for "fn(p1..pn) -> r" function types.
	FnParams []TypeExpr
	FnResult *TypeExpr
}
