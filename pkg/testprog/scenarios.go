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
package testprog

import (
	"github.com/rask-lang/raskc/pkg/ast"
	"github.com/rask-lang/raskc/pkg/resolve"
)

// ReturnClosure builds the heap-promotion demo:
//
//	func make() -> fn() -> i64 { let x = 99; return || x }
//	func main() -> i64 { let f = make(); return f() }
//
// The closure captures x, which does not outlive make()'s stack frame, so
// ClosureCreate must be lowered with heap: true.
func ReturnClosure() *resolve.Program {
	b := NewBuilder()

	closure := b.Closure(nil, b.Ident("x"), "x")
	makeFn := b.Func("make", nil, ast.TypeExpr{Name: "fn", FnResult: &ast.TypeExpr{Name: "i64"}},
		b.Let("x", b.IntSuffixed(99, "i64")),
		b.Return(closure),
	)

	mainFn := b.Func("main", nil, Ty("i64"),
		b.Let("f", b.Call(b.Ident("make"))),
		b.Return(b.Call(b.Ident("f"))),
	)

	return Program(makeFn, mainFn)
}

// ResourceLeak builds the unconsumed-resource demo:
//
//	func f() { let file = open("/tmp/x") }
//
// Ownership checking must report ResourceNotConsumed{name: "file"}.
func ResourceLeak() *resolve.Program {
	b := NewBuilder()

	openFn := b.Func("open", []ast.Param{Param0("path", Ty("string"))}, Ty("File"))
	f := b.Func("f", nil, Ty("void"),
		b.Let("file", b.Call(b.Ident("open"), b.Str("/tmp/x"))),
	)

	return Program(openFn, f)
}

// UseAfterMove builds the moved-binding demo:
//
//	func f() { let s = "abc"; let t = s; println(s) }
//
// Must report UseAfterMove{name: "s", moved_at: <span-of-let-t>}.
func UseAfterMove() *resolve.Program {
	b := NewBuilder()

	f := b.Func("f", nil, Ty("void"),
		b.Let("s", b.Str("abc")),
		b.Let("t", b.Ident("s")),
		b.ExprS(b.Call(b.Ident("println"), b.Ident("s"))),
	)

	return Program(f)
}

// Projection builds the disjoint-field-projection demo:
//
//	func reader(state: GameState.{entities}) { ... }
//	func writer(state: GameState.{score}) { ... }
//
// Simultaneous borrows through disjoint projections must type-check (the
// borrow checker runs each function independently here, but the projection
// sets themselves -- {entities} vs {score} -- are what matters when a
// caller holds both at once; see pkg/borrow's projection tests for the
// overlap check directly).
func Projection() *resolve.Program {
	b := NewBuilder()

	gameState := &ast.StructDecl{
		Name: "GameState",
		Fields: []ast.FieldDecl{
			{Name: "entities", Type: Ty("Vec", Ty("i32"))},
			{Name: "score", Type: Ty("i32")},
		},
	}

	readerParam := Param0("state", Ty("GameState"))
	readerParam.Projection = []string{"entities"}

	writerParam := Param0("state", Ty("GameState"))
	writerParam.Projection = []string{"score"}

	reader := b.Func("reader", []ast.Param{readerParam}, Ty("void"),
		b.ExprS(b.Field(b.Ident("state"), "entities")),
	)
	writer := b.Func("writer", []ast.Param{writerParam}, Ty("void"),
		b.ExprS(b.Field(b.Ident("state"), "score")),
	)

	prog := Program(reader, writer)
	AddStruct(prog, gameState)

	return prog
}

// TryOptionInResult builds the mismatched-carrier demo:
//
//	func f() -> Result<i32, string> { let x = some_opt()?; return Ok(x) }
//
// Must report TryOutsidePropagatingContext: `?` on Option in a
// Result-returning function. (The success path's `return x` stands in for
// `return Ok(x)`: constructing the enum-wrapped Ok payload is orthogonal
// to what this scenario tests, the `?` diagnostic itself.)
func TryOptionInResult() *resolve.Program {
	b := NewBuilder()

	someOpt := b.Func("some_opt", nil, OptionTy(Ty("i32")))
	f := b.Func("f", nil, ResultTy(Ty("i32"), Ty("string")),
		b.Let("x", b.Try(b.Call(b.Ident("some_opt")))),
		b.Return(b.Ident("x")),
	)

	return Program(someOpt, f)
}

// EnsureCleanup builds the cleanup-chain demo:
//
//	func f() -> i32 { ensure { cleanup() } return 1 }
//
// The return must lower to CleanupReturn{value: 1, cleanup_chain: [C]}
// where C contains the cleanup() call.
func EnsureCleanup() *resolve.Program {
	b := NewBuilder()

	cleanupFn := b.Func("cleanup", nil, Ty("void"))
	f := b.Func("f", nil, Ty("i32"),
		b.Ensure(b.ExprS(b.Call(b.Ident("cleanup")))),
		b.Return(b.Int(1)),
	)

	return Program(cleanupFn, f)
}

// Demos maps every named demo scenario to its builder. It is a map, so it
// carries no ordering of the scenarios.
var Demos = map[string]func() *resolve.Program{
	"return-closure":       ReturnClosure,
	"resource-leak":        ResourceLeak,
	"use-after-move":       UseAfterMove,
	"projection":           Projection,
	"try-option-in-result": TryOptionInResult,
	"ensure-cleanup":       EnsureCleanup,
}

// DemoNames returns every demo name, for flag usage text and tests, in
// map iteration order (not sorted).
func DemoNames() []string {
	names := make([]string, 0, len(Demos))
	for n := range Demos {
		names = append(names, n)
	}

	return names
}
