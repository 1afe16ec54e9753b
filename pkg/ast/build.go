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

// This file exposes constructors for every node kind so that a producer
// standing in for the out-of-scope parser -- pkg/testprog, and any
// future real parser -- can build nodes from outside the package, since
// exprBase/stmtBase are deliberately unexported to keep NodeId/Span
// immutable once constructed.

// NewIdent constructs an identifier reference node.
func NewIdent(id NodeId, span source.Span, name string) *Ident {
	return &Ident{exprBase{id, span}, name}
}

// NewIntLit constructs an integer literal node.
func NewIntLit(id NodeId, span source.Span, value int64, suffix string) *IntLit {
	return &IntLit{exprBase{id, span}, value, suffix}
}

// NewFloatLit constructs a floating literal node.
func NewFloatLit(id NodeId, span source.Span, value float64, suffix string) *FloatLit {
	return &FloatLit{exprBase{id, span}, value, suffix}
}

// NewBoolLit constructs a bool literal node.
func NewBoolLit(id NodeId, span source.Span, value bool) *BoolLit {
	return &BoolLit{exprBase{id, span}, value}
}

// NewStringLit constructs a string literal node.
func NewStringLit(id NodeId, span source.Span, value string) *StringLit {
	return &StringLit{exprBase{id, span}, value}
}

// NewBinaryExpr constructs a binary expression node.
func NewBinaryExpr(id NodeId, span source.Span, op string, lhs, rhs Expr) *BinaryExpr {
	return &BinaryExpr{exprBase{id, span}, op, lhs, rhs}
}

// NewUnaryExpr constructs a unary expression node.
func NewUnaryExpr(id NodeId, span source.Span, op string, operand Expr) *UnaryExpr {
	return &UnaryExpr{exprBase{id, span}, op, operand}
}

// NewCallExpr constructs a call expression node.
func NewCallExpr(id NodeId, span source.Span, callee Expr, args ...Expr) *CallExpr {
	return &CallExpr{exprBase{id, span}, callee, args}
}

// NewMethodCallExpr constructs a method-call expression node.
func NewMethodCallExpr(id NodeId, span source.Span, recv Expr, method string, args ...Expr) *MethodCallExpr {
	return &MethodCallExpr{exprBase{id, span}, recv, method, args}
}

// NewFieldExpr constructs a field-access expression node.
func NewFieldExpr(id NodeId, span source.Span, base Expr, field string) *FieldExpr {
	return &FieldExpr{exprBase{id, span}, base, field}
}

// NewIndexExpr constructs an index expression node.
func NewIndexExpr(id NodeId, span source.Span, base, index Expr) *IndexExpr {
	return &IndexExpr{exprBase{id, span}, base, index}
}

// NewRangeExpr constructs a range expression node.
func NewRangeExpr(id NodeId, span source.Span, start, end Expr, inclusive bool) *RangeExpr {
	return &RangeExpr{exprBase{id, span}, start, end, inclusive}
}

// NewClosureExpr constructs a closure expression node.
func NewClosureExpr(id NodeId, span source.Span, params []Param, ret TypeExpr, body Expr, freeVars []string) *ClosureExpr {
	return &ClosureExpr{exprBase{id, span}, params, ret, body, freeVars}
}

// NewTryExpr constructs a `?`-propagation expression node.
func NewTryExpr(id NodeId, span source.Span, inner Expr) *TryExpr {
	return &TryExpr{exprBase{id, span}, inner}
}

// NewGuardLetExpr constructs a guard-let expression node.
func NewGuardLetExpr(id NodeId, span source.Span, name string, scrut Expr, pat Pattern, diverge []Stmt) *GuardLetExpr {
	return &GuardLetExpr{exprBase{id, span}, name, scrut, pat, diverge}
}

// NewMatchExpr constructs a match-expression node.
func NewMatchExpr(id NodeId, span source.Span, scrut Expr, arms []MatchExprArm) *MatchExpr {
	return &MatchExpr{exprBase{id, span}, scrut, arms}
}

// NewStructLitExpr constructs a struct-literal expression node.
func NewStructLitExpr(id NodeId, span source.Span, name string, fields []StructLitField) *StructLitExpr {
	return &StructLitExpr{exprBase{id, span}, name, fields}
}

// NewEnumCtorExpr constructs an enum-constructor expression node.
func NewEnumCtorExpr(id NodeId, span source.Span, enumName, variant string, args ...Expr) *EnumCtorExpr {
	return &EnumCtorExpr{exprBase{id, span}, enumName, variant, args}
}

// NewIterChainExpr constructs an iterator-chain expression node.
func NewIterChainExpr(id NodeId, span source.Span, src Expr, adapters []IterAdapter, collect bool) *IterChainExpr {
	return &IterChainExpr{exprBase{id, span}, src, adapters, collect}
}

// NewBlockExpr constructs a standalone expression-block node.
func NewBlockExpr(id NodeId, span source.Span, stmts []Stmt, result Expr) *BlockExpr {
	return &BlockExpr{exprBase{id, span}, stmts, result}
}

// NewLetStmt constructs a `let` binding statement.
func NewLetStmt(id NodeId, span source.Span, name string, ty TypeExpr, init Expr) *LetStmt {
	return &LetStmt{stmtBase{id, span}, name, ty, init}
}

// NewConstStmt constructs a `const` binding statement.
func NewConstStmt(id NodeId, span source.Span, name string, ty TypeExpr, init Expr) *ConstStmt {
	return &ConstStmt{stmtBase{id, span}, name, ty, init}
}

// NewAssignStmt constructs an assignment statement.
func NewAssignStmt(id NodeId, span source.Span, target, value Expr) *AssignStmt {
	return &AssignStmt{stmtBase{id, span}, target, value}
}

// NewExprStmt constructs a bare expression statement.
func NewExprStmt(id NodeId, span source.Span, e Expr) *ExprStmt {
	return &ExprStmt{stmtBase{id, span}, e}
}

// NewIfStmt constructs an if/else statement.
func NewIfStmt(id NodeId, span source.Span, cond Expr, then, otherwise []Stmt) *IfStmt {
	return &IfStmt{stmtBase{id, span}, cond, then, otherwise}
}

// NewWhileStmt constructs a while-loop statement.
func NewWhileStmt(id NodeId, span source.Span, label string, cond Expr, body []Stmt) *WhileStmt {
	return &WhileStmt{stmtBase{id, span}, label, cond, body}
}

// NewWhileIsStmt constructs a `while expr is Pattern` statement.
func NewWhileIsStmt(id NodeId, span source.Span, label string, scrut Expr, pat Pattern, body []Stmt) *WhileIsStmt {
	return &WhileIsStmt{stmtBase{id, span}, label, scrut, pat, body}
}

// NewForRangeStmt constructs a `for i in start..end` statement.
func NewForRangeStmt(id NodeId, span source.Span, label, v string, start, end Expr, inclusive bool, body []Stmt) *ForRangeStmt {
	return &ForRangeStmt{stmtBase{id, span}, label, v, start, end, inclusive, body}
}

// NewForEachStmt constructs a `for x in collection` statement.
func NewForEachStmt(id NodeId, span source.Span, label, v, valueVar string, coll Expr, entries bool, body []Stmt) *ForEachStmt {
	return &ForEachStmt{stmtBase{id, span}, label, v, valueVar, coll, entries, body}
}

// NewLoopStmt constructs a bare `loop` statement.
func NewLoopStmt(id NodeId, span source.Span, label string, body []Stmt) *LoopStmt {
	return &LoopStmt{stmtBase{id, span}, label, body}
}

// NewMatchStmt constructs a match statement.
func NewMatchStmt(id NodeId, span source.Span, scrut Expr, arms []MatchArm) *MatchStmt {
	return &MatchStmt{stmtBase{id, span}, scrut, arms}
}

// NewBreakStmt constructs a break statement.
func NewBreakStmt(id NodeId, span source.Span, label string, value Expr) *BreakStmt {
	return &BreakStmt{stmtBase{id, span}, label, value}
}

// NewContinueStmt constructs a continue statement.
func NewContinueStmt(id NodeId, span source.Span, label string) *ContinueStmt {
	return &ContinueStmt{stmtBase{id, span}, label}
}

// NewReturnStmt constructs a return statement.
func NewReturnStmt(id NodeId, span source.Span, value Expr) *ReturnStmt {
	return &ReturnStmt{stmtBase{id, span}, value}
}

// NewEnsureStmt constructs an `ensure` statement.
func NewEnsureStmt(id NodeId, span source.Span, body []Stmt, errName string, handler []Stmt, hasHandler bool) *EnsureStmt {
	return &EnsureStmt{stmtBase{id, span}, body, errName, handler, hasHandler}
}

// NewUsingStmt constructs a `using Multitasking(n)` statement.
func NewUsingStmt(id NodeId, span source.Span, workers Expr, body []Stmt) *UsingStmt {
	return &UsingStmt{stmtBase{id, span}, workers, body}
}

// NewSelectStmt constructs a `select` statement.
func NewSelectStmt(id NodeId, span source.Span, arms []SelectArm, hasDefault bool, defBody []Stmt, priority bool) *SelectStmt {
	return &SelectStmt{stmtBase{id, span}, arms, hasDefault, defBody, priority}
}

// NewSpawnStmt constructs a `spawn` statement.
func NewSpawnStmt(id NodeId, span source.Span, name string, body []Stmt) *SpawnStmt {
	return &SpawnStmt{stmtBase{id, span}, name, body}
}
