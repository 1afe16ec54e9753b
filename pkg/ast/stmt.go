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

// Stmt is the closed set of structured-control-flow statement forms that
// the language defines as lowering targets.
type Stmt interface {
	isStmt()
	NodeId() NodeId
}

type stmtBase struct {
	Id   NodeId
	Span source.Span
}

func (s stmtBase) NodeId() NodeId { return s.Id }

// LetStmt declares an owning binding (`let x = expr`).
type LetStmt struct {
	stmtBase
	Name string
	Type TypeExpr
	Init Expr
}

func (LetStmt) isStmt() {}

// ConstStmt declares a `const` binding; from a non-Copy source this creates
// a Persistent shared borrow rather than a move.
type ConstStmt struct {
	stmtBase
	Name string
	Type TypeExpr
	Init Expr
}

func (ConstStmt) isStmt() {}

// AssignStmt is `x = expr` (or `x.field = expr` via a Place).
type AssignStmt struct {
	stmtBase
	Target Expr
	Value  Expr
}

func (AssignStmt) isStmt() {}

// ExprStmt evaluates an expression for its side effects.
type ExprStmt struct {
	stmtBase
	Expr Expr
}

func (ExprStmt) isStmt() {}

// IfStmt is `if cond { then } else { otherwise }`.
type IfStmt struct {
	stmtBase
	Cond      Expr
	Then      []Stmt
	Otherwise []Stmt
}

func (IfStmt) isStmt() {}

// WhileStmt is `while cond { body }`.
type WhileStmt struct {
	stmtBase
	Label string
	Cond  Expr
	Body  []Stmt
}

func (WhileStmt) isStmt() {}

// WhileIsStmt is `while expr is Pattern { body }`.
type WhileIsStmt struct {
	stmtBase
	Label   string
	Scrut   Expr
	Pattern Pattern
	Body    []Stmt
}

func (WhileIsStmt) isStmt() {}

// ForRangeStmt is `for i in start..end { body }` (or `..=` when Inclusive).
type ForRangeStmt struct {
	stmtBase
	Label     string
	Var       string
	Start     Expr
	End       Expr
	Inclusive bool
	Body      []Stmt
}

func (ForRangeStmt) isStmt() {}

// ForEachStmt is `for x in collection { body }`, where Collection is a Vec
// or Pool expression.
type ForEachStmt struct {
	stmtBase
	Label      string
	Var        string
	ValueVar   string
	Collection Expr
	// Entries is true for `for (h, v) in pool.entries() { ... }`.
	Entries bool
	Body    []Stmt
}

func (ForEachStmt) isStmt() {}

// LoopStmt is a bare `loop { body }`.
type LoopStmt struct {
	stmtBase
	Label string
	Body  []Stmt
}

func (LoopStmt) isStmt() {}

// MatchStmt is a `match scrut { arm... }` used as a statement.
type MatchStmt struct {
	stmtBase
	Scrut Expr
	Arms  []MatchArm
}

func (MatchStmt) isStmt() {}

// MatchArm is one `Pattern [if guard] => body` arm.
type MatchArm struct {
	Pattern Pattern
	Guard   Expr
	Body    []Stmt
}

// BreakStmt is `break [label] [value]`.
type BreakStmt struct {
	stmtBase
	Label string
	Value Expr
}

func (BreakStmt) isStmt() {}

// ContinueStmt is `continue [label]`.
type ContinueStmt struct {
	stmtBase
	Label string
}

func (ContinueStmt) isStmt() {}

// ReturnStmt is `return [value]`.
type ReturnStmt struct {
	stmtBase
	Value Expr
}

func (ReturnStmt) isStmt() {}

// EnsureStmt is `ensure { body } [else |e| { handler }]`.
type EnsureStmt struct {
	stmtBase
	Body    []Stmt
	ErrName string
	Handler []Stmt
	// HasHandler distinguishes a bare `ensure { body }` (no else) from one
	// with an explicit handler, since ErrName/Handler may legitimately be
	// empty for the latter.
	HasHandler bool
}

func (EnsureStmt) isStmt() {}

// UsingStmt is `using Multitasking(n) { body }`.
type UsingStmt struct {
	stmtBase
	Workers Expr
	Body    []Stmt
}

func (UsingStmt) isStmt() {}

// SelectStmt is `select { arm... }`.
type SelectStmt struct {
	stmtBase
	Arms []SelectArm
	// HasDefault is true when a `_ => body` fallback arm is present.
	HasDefault  bool
	DefaultBody []Stmt
	// Priority controls polling order in the absence of a default arm:
	// sequential if true, randomized fair order otherwise.
	Priority bool
}

func (SelectStmt) isStmt() {}

// SelectArm is one `chan.recv() => |x| body` or `chan.send(v) => body` arm.
type SelectArm struct {
	IsSend  bool
	Channel Expr
	// BindName receives the payload for a recv arm.
	BindName string
	SendVal  Expr
	Body     []Stmt
}

// SpawnStmt is `spawn { body }`, valid only inside a Multitasking scope.
type SpawnStmt struct {
	stmtBase
	Name string
	Body []Stmt
}

func (SpawnStmt) isStmt() {}
