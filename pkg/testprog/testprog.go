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

// Package testprog builds in-memory resolve.Program values for the
// pipeline stages to run over. The lexer, parser and name resolver are
// explicitly out of scope; this package stands in for all
// three so the CLI and the package test suites have something to drive
// the checker, borrow checker, lowerer, monomorphizer and codegen boundary
// with, matching the resolver's external interface contract (a
// resolved program, not source text, is the checker's actual input).
//
// Fixtures are small and hand-built, used directly by package tests
// rather than parsed from files; each named builder below corresponds
// to one of the canonical demo scenarios.
package testprog

import (
	"github.com/rask-lang/raskc/pkg/ast"
	"github.com/rask-lang/raskc/pkg/resolve"
	"github.com/rask-lang/raskc/pkg/util/source"
)

// Builder hands out dense NodeIds and zero-width spans; a real parser
// would derive both from the source buffer, but nothing downstream
// of the resolver inspects a span's byte offsets for correctness, only
// for diagnostic rendering.
type Builder struct {
	next ast.NodeId
}

// NewBuilder constructs a fresh node-id allocator.
func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) id() ast.NodeId {
	id := b.next
	b.next++

	return id
}

func (b *Builder) span() source.Span {
	n := int(b.next)
	return source.NewSpan(n, n+1)
}

// Ident builds an identifier reference.
func (b *Builder) Ident(name string) *ast.Ident { return ast.NewIdent(b.id(), b.span(), name) }

// Int builds an unsuffixed integer literal (defaults to i32).
func (b *Builder) Int(v int64) *ast.IntLit { return ast.NewIntLit(b.id(), b.span(), v, "") }

// IntSuffixed builds an explicitly suffixed integer literal.
func (b *Builder) IntSuffixed(v int64, suffix string) *ast.IntLit {
	return ast.NewIntLit(b.id(), b.span(), v, suffix)
}

// Str builds a string literal.
func (b *Builder) Str(v string) *ast.StringLit { return ast.NewStringLit(b.id(), b.span(), v) }

// Bool builds a bool literal.
func (b *Builder) Bool(v bool) *ast.BoolLit { return ast.NewBoolLit(b.id(), b.span(), v) }

// Call builds a free-function call.
func (b *Builder) Call(callee ast.Expr, args ...ast.Expr) *ast.CallExpr {
	return ast.NewCallExpr(b.id(), b.span(), callee, args...)
}

// MethodCall builds a `recv.method(args...)` call.
func (b *Builder) MethodCall(recv ast.Expr, method string, args ...ast.Expr) *ast.MethodCallExpr {
	return ast.NewMethodCallExpr(b.id(), b.span(), recv, method, args...)
}

// Field builds `base.field`.
func (b *Builder) Field(base ast.Expr, field string) *ast.FieldExpr {
	return ast.NewFieldExpr(b.id(), b.span(), base, field)
}

// Binary builds `lhs op rhs`.
func (b *Builder) Binary(op string, lhs, rhs ast.Expr) *ast.BinaryExpr {
	return ast.NewBinaryExpr(b.id(), b.span(), op, lhs, rhs)
}

// Closure builds `|params| body`.
func (b *Builder) Closure(params []ast.Param, body ast.Expr, freeVars ...string) *ast.ClosureExpr {
	return ast.NewClosureExpr(b.id(), b.span(), params, ast.TypeExpr{Inferred: true}, body, freeVars)
}

// Try builds `inner?`.
func (b *Builder) Try(inner ast.Expr) *ast.TryExpr { return ast.NewTryExpr(b.id(), b.span(), inner) }

// EnumCtor builds `EnumName::Variant(args...)`.
func (b *Builder) EnumCtor(enumName, variant string, args ...ast.Expr) *ast.EnumCtorExpr {
	return ast.NewEnumCtorExpr(b.id(), b.span(), enumName, variant, args...)
}

// StructLit builds `StructName { field: value, ... }`.
func (b *Builder) StructLit(name string, fields ...ast.StructLitField) *ast.StructLitExpr {
	return ast.NewStructLitExpr(b.id(), b.span(), name, fields)
}

// Field0 is a convenience constructor for one StructLitField entry.
func Field0(name string, value ast.Expr) ast.StructLitField {
	return ast.StructLitField{Name: name, Value: value}
}

// Stmt builders --------------------------------------------------------

// Let builds `let name = init` with an inferred type.
func (b *Builder) Let(name string, init ast.Expr) *ast.LetStmt {
	return ast.NewLetStmt(b.id(), b.span(), name, ast.TypeExpr{Inferred: true}, init)
}

// LetTyped builds `let name: ty = init`.
func (b *Builder) LetTyped(name string, ty ast.TypeExpr, init ast.Expr) *ast.LetStmt {
	return ast.NewLetStmt(b.id(), b.span(), name, ty, init)
}

// Const builds `const name = init`.
func (b *Builder) Const(name string, init ast.Expr) *ast.ConstStmt {
	return ast.NewConstStmt(b.id(), b.span(), name, ast.TypeExpr{Inferred: true}, init)
}

// Assign builds `target = value`.
func (b *Builder) Assign(target, value ast.Expr) *ast.AssignStmt {
	return ast.NewAssignStmt(b.id(), b.span(), target, value)
}

// ExprS builds a bare expression statement.
func (b *Builder) ExprS(e ast.Expr) *ast.ExprStmt { return ast.NewExprStmt(b.id(), b.span(), e) }

// Return builds `return [value]`.
func (b *Builder) Return(value ast.Expr) *ast.ReturnStmt {
	return ast.NewReturnStmt(b.id(), b.span(), value)
}

// If builds `if cond { then } else { otherwise }`.
func (b *Builder) If(cond ast.Expr, then, otherwise []ast.Stmt) *ast.IfStmt {
	return ast.NewIfStmt(b.id(), b.span(), cond, then, otherwise)
}

// While builds `while cond { body }`.
func (b *Builder) While(cond ast.Expr, body []ast.Stmt) *ast.WhileStmt {
	return ast.NewWhileStmt(b.id(), b.span(), "", cond, body)
}

// Ensure builds a bare `ensure { body }` with no handler.
func (b *Builder) Ensure(body ...ast.Stmt) *ast.EnsureStmt {
	return ast.NewEnsureStmt(b.id(), b.span(), body, "", nil, false)
}

// EnsureElse builds `ensure { body } else |errName| { handler }`.
func (b *Builder) EnsureElse(body []ast.Stmt, errName string, handler []ast.Stmt) *ast.EnsureStmt {
	return ast.NewEnsureStmt(b.id(), b.span(), body, errName, handler, true)
}

// Decl builders ---------------------------------------------------------

// Ty is a shorthand for a named (possibly generic) type annotation.
func Ty(name string, args ...ast.TypeExpr) ast.TypeExpr {
	return ast.TypeExpr{Name: name, Args: args}
}

// OptionTy is a shorthand for `Option<t>`.
func OptionTy(t ast.TypeExpr) ast.TypeExpr {
	return ast.TypeExpr{Name: "Option", Args: []ast.TypeExpr{t}}
}

// ResultTy is a shorthand for `Result<ok, err>`.
func ResultTy(ok, err ast.TypeExpr) ast.TypeExpr {
	return ast.TypeExpr{Name: "Result", Args: []ast.TypeExpr{ok, err}}
}

// Func builds a free function declaration.
func (b *Builder) Func(name string, params []ast.Param, ret ast.TypeExpr, body ...ast.Stmt) *ast.FuncDecl {
	return &ast.FuncDecl{Id: b.id(), Name: name, Params: params, ReturnType: ret, Body: body, Span: b.span()}
}

// Param0 is a convenience constructor for a plain parameter.
func Param0(name string, ty ast.TypeExpr) ast.Param {
	return ast.Param{Name: name, Kind: ast.ParamPlain, Type: ty}
}

// Program wraps a set of function declarations into a resolve.Program, the
// checker's real input contract. Struct/enum declarations can be
// attached afterward via AddStruct/AddEnum.
func Program(funcs ...*ast.FuncDecl) *resolve.Program {
	prog := &ast.Program{Functions: funcs}
	return resolve.NewProgram(prog)
}

// AddStruct attaches a struct declaration to an already-built program.
func AddStruct(p *resolve.Program, sd *ast.StructDecl) { p.AST.Structs = append(p.AST.Structs, sd) }

// AddEnum attaches an enum declaration to an already-built program.
func AddEnum(p *resolve.Program, ed *ast.EnumDecl) { p.AST.Enums = append(p.AST.Enums, ed) }

// Control-flow builders -------------------------------------------------

// ForRange builds `for v in start..end { body }` (exclusive).
func (b *Builder) ForRange(v string, start, end ast.Expr, body ...ast.Stmt) *ast.ForRangeStmt {
	return ast.NewForRangeStmt(b.id(), b.span(), "", v, start, end, false, body)
}

// ForEach builds `for v in coll { body }`.
func (b *Builder) ForEach(v string, coll ast.Expr, body ...ast.Stmt) *ast.ForEachStmt {
	return ast.NewForEachStmt(b.id(), b.span(), "", v, "", coll, false, body)
}

// Loop builds a bare `loop { body }`.
func (b *Builder) Loop(body ...ast.Stmt) *ast.LoopStmt {
	return ast.NewLoopStmt(b.id(), b.span(), "", body)
}

// Match builds a `match scrut { arms }` statement.
func (b *Builder) Match(scrut ast.Expr, arms ...ast.MatchArm) *ast.MatchStmt {
	return ast.NewMatchStmt(b.id(), b.span(), scrut, arms)
}

// Arm builds one match arm with no guard.
func Arm(pat ast.Pattern, body ...ast.Stmt) ast.MatchArm {
	return ast.MatchArm{Pattern: pat, Body: body}
}

// VariantPat builds an `Enum::Variant(bindings...)` pattern.
func VariantPat(enumName, variant string, bindings ...string) ast.Pattern {
	return ast.Pattern{EnumName: enumName, Variant: variant, Bindings: bindings}
}

// WildcardPat builds the `_` pattern.
func WildcardPat() ast.Pattern { return ast.Pattern{Wildcard: true} }

// Break builds an unlabelled, valueless `break`.
func (b *Builder) Break() *ast.BreakStmt { return ast.NewBreakStmt(b.id(), b.span(), "", nil) }

// Continue builds an unlabelled `continue`.
func (b *Builder) Continue() *ast.ContinueStmt { return ast.NewContinueStmt(b.id(), b.span(), "") }

// IterChain builds `src.iter().adapters...` with an optional `.collect()`
// terminal.
func (b *Builder) IterChain(src ast.Expr, collect bool, adapters ...ast.IterAdapter) *ast.IterChainExpr {
	return ast.NewIterChainExpr(b.id(), b.span(), src, adapters, collect)
}

// Adapter builds one iterator-chain adapter link.
func Adapter(name string, arg ast.Expr) ast.IterAdapter {
	return ast.IterAdapter{Name: name, Arg: arg}
}

// Using builds `using Multitasking(workers) { body }`.
func (b *Builder) Using(workers ast.Expr, body ...ast.Stmt) *ast.UsingStmt {
	return ast.NewUsingStmt(b.id(), b.span(), workers, body)
}

// Spawn builds `spawn { body }`, optionally binding the task handle.
func (b *Builder) Spawn(name string, body ...ast.Stmt) *ast.SpawnStmt {
	return ast.NewSpawnStmt(b.id(), b.span(), name, body)
}

// Index builds `base[index]`.
func (b *Builder) Index(base, index ast.Expr) *ast.IndexExpr {
	return ast.NewIndexExpr(b.id(), b.span(), base, index)
}

// ParamK is a convenience constructor for a parameter with an explicit
// binding kind (`take`/`mutate`).
func ParamK(name string, kind ast.ParamKind, ty ast.TypeExpr) ast.Param {
	return ast.Param{Name: name, Kind: kind, Type: ty}
}

// GuardLet builds `const name = scrut is pat else { diverge }`.
func (b *Builder) GuardLet(name string, scrut ast.Expr, pat ast.Pattern, diverge ...ast.Stmt) *ast.GuardLetExpr {
	return ast.NewGuardLetExpr(b.id(), b.span(), name, scrut, pat, diverge)
}
