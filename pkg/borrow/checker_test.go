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
package borrow_test

import (
	"testing"

	"github.com/rask-lang/raskc/pkg/ast"
	"github.com/rask-lang/raskc/pkg/borrow"
	"github.com/rask-lang/raskc/pkg/diag"
	"github.com/rask-lang/raskc/pkg/resolve"
	"github.com/rask-lang/raskc/pkg/testprog"
	"github.com/rask-lang/raskc/pkg/typecheck"
)

// check runs type checking followed by ownership checking, returning the
// ownership diagnostics.
func check(t *testing.T, resolved *resolve.Program) []*diag.Diagnostic {
	t.Helper()

	tc := typecheck.NewChecker(resolved)
	result := tc.Check()

	if diags := tc.Diagnostics(); len(diags) != 0 {
		t.Fatalf("unexpected type diagnostics: %v", diags)
	}

	bc := borrow.NewChecker(tc, result)
	bc.Check(resolved)

	return bc.Diagnostics()
}

func requireKind(t *testing.T, diags []*diag.Diagnostic, kind diag.Kind, name string) *diag.Diagnostic {
	t.Helper()

	for _, d := range diags {
		if d.Kind == kind && d.Fields["name"] == name {
			return d
		}
	}

	t.Fatalf("expected a %s diagnostic for %q, got %v", kind, name, diags)

	return nil
}

func Test_Borrow_01_UseAfterMove(t *testing.T) {
	diags := check(t, testprog.UseAfterMove())

	d := requireKind(t, diags, diag.UseAfterMove, "s")
	if d.Fields["moved_at"] == "" {
		t.Fatal("UseAfterMove must carry the moved-at position")
	}
}

func Test_Borrow_02_ResourceNotConsumed(t *testing.T) {
	diags := check(t, testprog.ResourceLeak())
	requireKind(t, diags, diag.ResourceNotConsumed, "file")
}

func Test_Borrow_03_ConsumedResource_NoDiagnostic(t *testing.T) {
	b := testprog.NewBuilder()

	openFn := b.Func("open", []ast.Param{testprog.Param0("path", testprog.Ty("string"))}, testprog.Ty("File"))

	closeFn := b.Func("close", nil, testprog.Ty("void"))
	closeFn.Receiver = &ast.Param{Name: "self", Type: testprog.Ty("File")}
	closeFn.ReceiverKind = ast.ParamTake

	f := b.Func("f", nil, testprog.Ty("void"),
		b.Let("file", b.Call(b.Ident("open"), b.Str("/tmp/x"))),
		b.ExprS(b.MethodCall(b.Ident("file"), "close")),
	)

	diags := check(t, testprog.Program(openFn, closeFn, f))
	if len(diags) != 0 {
		t.Fatalf("a take-self method call consumes the resource; got %v", diags)
	}
}

func Test_Borrow_04_ProjectionParams_NoDiagnostics(t *testing.T) {
	diags := check(t, testprog.Projection())
	if len(diags) != 0 {
		t.Fatalf("disjoint projections must pass, got %v", diags)
	}
}

func Test_Borrow_05_MutateWhileBorrowed(t *testing.T) {
	b := testprog.NewBuilder()

	f := b.Func("f", nil, testprog.Ty("void"),
		b.Let("s", b.Str("abc")),
		b.Const("y", b.Ident("s")),
		b.Assign(b.Ident("s"), b.Str("xyz")),
	)

	diags := check(t, testprog.Program(f))
	requireKind(t, diags, diag.MutateWhileBorrowed, "s")
}

func Test_Borrow_06_ConstBorrowReleased_ThenMutable(t *testing.T) {
	b := testprog.NewBuilder()

	// The const borrow is scoped to the inner block; after it ends the
	// binding returns to Owned and assignment is legal again.
	f := b.Func("f", nil, testprog.Ty("void"),
		b.Let("s", b.Str("abc")),
		b.If(b.Bool(true), []ast.Stmt{
			b.Const("y", b.Ident("s")),
		}, nil),
		b.Assign(b.Ident("s"), b.Str("xyz")),
	)

	diags := check(t, testprog.Program(f))
	if len(diags) != 0 {
		t.Fatalf("borrow released at block end must re-own the source, got %v", diags)
	}
}

func Test_Borrow_07_ExclusiveParamConflictsWithConstBorrow(t *testing.T) {
	b := testprog.NewBuilder()

	f := b.Func("f",
		[]ast.Param{testprog.ParamK("s", ast.ParamMutate, testprog.Ty("string"))},
		testprog.Ty("void"),
		b.Const("y", b.Ident("s")),
	)

	diags := check(t, testprog.Program(f))

	d := requireKind(t, diags, diag.BorrowConflict, "s")
	if d.Fields["existing"] != "Exclusive" {
		t.Fatalf("conflict must name the existing exclusive borrow, got %v", d.Fields)
	}
}

func Test_Borrow_08_ClosureCapture_SharedBorrow(t *testing.T) {
	b := testprog.NewBuilder()

	// Capturing s creates a Shared borrow persistent for the scope;
	// mutating s while that borrow lives is rejected.
	f := b.Func("f", nil, testprog.Ty("void"),
		b.Let("s", b.Int(1)),
		b.Let("g", b.Closure(nil, b.Ident("s"), "s")),
		b.Assign(b.Ident("s"), b.Int(2)),
	)

	diags := check(t, testprog.Program(f))
	requireKind(t, diags, diag.MutateWhileBorrowed, "s")
}

func Test_Borrow_09_EnsureDefersMove(t *testing.T) {
	b := testprog.NewBuilder()

	// A move inside an ensure body is deferred: the later read of s
	// outside the ensure must not report use-after-move.
	f := b.Func("f", nil, testprog.Ty("void"),
		b.Let("s", b.Str("abc")),
		b.Ensure(b.Let("t", b.Ident("s"))),
		b.ExprS(b.Call(b.Ident("println"), b.Ident("s"))),
	)

	diags := check(t, testprog.Program(f))
	if len(diags) != 0 {
		t.Fatalf("moves inside ensure bodies are deferred, got %v", diags)
	}
}

func Test_Borrow_10_EnsureRegistersResourceConsumption(t *testing.T) {
	b := testprog.NewBuilder()

	openFn := b.Func("open", []ast.Param{testprog.Param0("path", testprog.Ty("string"))}, testprog.Ty("File"))

	closeFn := b.Func("close", nil, testprog.Ty("void"))
	closeFn.Receiver = &ast.Param{Name: "self", Type: testprog.Ty("File")}
	closeFn.ReceiverKind = ast.ParamTake

	// The consuming call happens inside ensure: the resource is committed
	// for consumption at scope exit, so no ResourceNotConsumed.
	f := b.Func("f", nil, testprog.Ty("void"),
		b.Let("file", b.Call(b.Ident("open"), b.Str("/tmp/x"))),
		b.Ensure(b.ExprS(b.MethodCall(b.Ident("file"), "close"))),
	)

	diags := check(t, testprog.Program(openFn, closeFn, f))
	if len(diags) != 0 {
		t.Fatalf("ensure-registered resources count as consumed, got %v", diags)
	}
}

func Test_Borrow_11_TakeParamResource_MustBeConsumed(t *testing.T) {
	b := testprog.NewBuilder()

	f := b.Func("f",
		[]ast.Param{testprog.ParamK("file", ast.ParamTake, testprog.Ty("File"))},
		testprog.Ty("void"),
	)

	diags := check(t, testprog.Program(f))
	requireKind(t, diags, diag.ResourceNotConsumed, "file")
}

func Test_Borrow_12_CopyTypesDoNotMove(t *testing.T) {
	b := testprog.NewBuilder()

	f := b.Func("f", nil, testprog.Ty("void"),
		b.Let("a", b.Int(1)),
		b.Let("c", b.Ident("a")),
		b.ExprS(b.Call(b.Ident("println"), b.Ident("a"))),
	)

	diags := check(t, testprog.Program(f))
	if len(diags) != 0 {
		t.Fatalf("i32 is Copy; reading after assignment is fine, got %v", diags)
	}
}
