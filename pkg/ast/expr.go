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
package ast

import "github.com/rask-lang/raskc/pkg/util/source"

// Expr is the closed set of expression forms.
type Expr interface {
	isExpr()
	NodeId() NodeId
	Span() source.Span
}

type exprBase struct {
	Id NodeId
	Sp source.Span
}

func (e exprBase) NodeId() NodeId    { return e.Id }
func (e exprBase) Span() source.Span { return e.Sp }

// Ident references a name; the resolver has already bound it to a symbol
// id in the side table.
type Ident struct {
	exprBase
	Name string
}

func (Ident) isExpr() {}

// IntLit is an integer literal. Suffix is the explicit type suffix if any
// ("i8".."u128", "isize", "usize"), or empty for an unsuffixed literal,
// which defaults to I32 at the literal site.
type IntLit struct {
	exprBase
	Value  int64
	Suffix string
}

func (IntLit) isExpr() {}

// FloatLit is a floating literal; Suffix is "f32"/"f64" or empty (defaults
// to F64).
type FloatLit struct {
	exprBase
	Value  float64
	Suffix string
}

func (FloatLit) isExpr() {}

// BoolLit is `true`/`false`.
type BoolLit struct {
	exprBase
	Value bool
}

func (BoolLit) isExpr() {}

// StringLit is a string literal.
type StringLit struct {
	exprBase
	Value string
}

func (StringLit) isExpr() {}

// BinaryExpr is `lhs op rhs`.
type BinaryExpr struct {
	exprBase
	Op  string
	Lhs Expr
	Rhs Expr
}

func (BinaryExpr) isExpr() {}

// UnaryExpr is `op expr`.
type UnaryExpr struct {
	exprBase
	Op   string
	Expr Expr
}

func (UnaryExpr) isExpr() {}

// CallExpr is `callee(args...)`.
type CallExpr struct {
	exprBase
	Callee Expr
	Args   []Expr
}

func (CallExpr) isExpr() {}

// MethodCallExpr is `recv.method(args...)`.
type MethodCallExpr struct {
	exprBase
	Receiver Expr
	Method   string
	Args     []Expr
}

func (MethodCallExpr) isExpr() {}

// FieldExpr is `base.field`.
type FieldExpr struct {
	exprBase
	Base  Expr
	Field string
}

func (FieldExpr) isExpr() {}

// IndexExpr is `base[index]`.
type IndexExpr struct {
	exprBase
	Base  Expr
	Index Expr
}

func (IndexExpr) isExpr() {}

// RangeExpr is `start..end` or `start..=end`.
type RangeExpr struct {
	exprBase
	Start     Expr
	End       Expr
	Inclusive bool
}

func (RangeExpr) isExpr() {}

// ClosureExpr is `|params| body`.
type ClosureExpr struct {
	exprBase
	Params     []Param
	ReturnType TypeExpr
	Body       Expr
	// FreeVars lists the free variables referenced in Body, bound in an
	// enclosing scope.
	FreeVars []string
}

func (ClosureExpr) isExpr() {}

// TryExpr is `expr?`.
type TryExpr struct {
	exprBase
	Inner Expr
}

func (TryExpr) isExpr() {}

// GuardLetExpr is `const x = expr is Pattern else { diverge }`.
type GuardLetExpr struct {
	exprBase
	Name    string
	Scrut   Expr
	Pattern Pattern
	Diverge []Stmt
}

func (GuardLetExpr) isExpr() {}

// MatchExpr is `match scrut { arm... }` used as an expression.
type MatchExpr struct {
	exprBase
	Scrut Expr
	Arms  []MatchExprArm
}

func (MatchExpr) isExpr() {}

// MatchExprArm is one `Pattern [if guard] => expr` arm.
type MatchExprArm struct {
	Pattern Pattern
	Guard   Expr
	Value   Expr
}

// StructLitExpr is `StructName { field: expr, ... }`.
type StructLitExpr struct {
	exprBase
	Name   string
	Fields []StructLitField
}

func (StructLitExpr) isExpr() {}

// StructLitField is one `field: expr` entry in a struct literal.
type StructLitField struct {
	Name  string
	Value Expr
}

// EnumCtorExpr is `EnumName::Variant(args...)` or `EnumName::Variant`.
type EnumCtorExpr struct {
	exprBase
	EnumName string
	Variant  string
	Args     []Expr
}

func (EnumCtorExpr) isExpr() {}

// IterChainExpr is `src.iter().adapter(...)....collect()`.
type IterChainExpr struct {
	exprBase
	Source   Expr
	Adapters []IterAdapter
	// Collect is true when the chain ends in `.collect()`.
	Collect bool
}

func (IterChainExpr) isExpr() {}

// IterAdapter is one `.filter(f)` / `.map(g)` / `.take(n)` / `.skip(n)`
// link in an iterator chain. Name outside {filter,map,take,skip} forces
// the materializing fallback.
type IterAdapter struct {
	Name string
	Arg  Expr
}

// BlockExpr wraps a statement block used where an expression is expected
// (e.g. `if` as an expression, guard-else diverge bodies already use
// []Stmt directly; this covers standalone `{ ... }` expression blocks).
type BlockExpr struct {
	exprBase
	Stmts  []Stmt
	Result Expr
}

func (BlockExpr) isExpr() {}

// Pattern is the closed set of patterns recognised in `match`, guard-let,
// and `while ... is` constructs.
type Pattern struct {
	// EnumName/Variant identify a variant pattern ("Option::Some").
	EnumName string
	Variant  string
	// Bindings names the locals bound to the variant's payload fields, in
	// field order.
	Bindings []string
	// Wildcard is true for `_`.
	Wildcard bool
}
