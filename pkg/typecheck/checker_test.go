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
package typecheck_test

import (
	"testing"

	"github.com/rask-lang/raskc/pkg/diag"
	"github.com/rask-lang/raskc/pkg/testprog"
	"github.com/rask-lang/raskc/pkg/typecheck"
)

func Test_Checker_01_ReturnClosure_NoDiagnostics(t *testing.T) {
	resolved := testprog.ReturnClosure()

	tc := typecheck.NewChecker(resolved)
	tc.Check()

	if diags := tc.Diagnostics(); len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
}

func Test_Checker_02_ResourceLeak_NoTypeDiagnostics(t *testing.T) {
	resolved := testprog.ResourceLeak()

	tc := typecheck.NewChecker(resolved)
	tc.Check()

	if diags := tc.Diagnostics(); len(diags) != 0 {
		t.Fatalf("expected no type diagnostics (this scenario exercises ownership checking, not typing), got %v", diags)
	}
}

func Test_Checker_03_Projection_NoDiagnostics(t *testing.T) {
	resolved := testprog.Projection()

	tc := typecheck.NewChecker(resolved)
	tc.Check()

	if diags := tc.Diagnostics(); len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
}

func Test_Checker_04_TryOptionInResult_ReportsTryOutsidePropagatingContext(t *testing.T) {
	resolved := testprog.TryOptionInResult()

	tc := typecheck.NewChecker(resolved)
	tc.Check()

	diags := tc.Diagnostics()
	if len(diags) == 0 {
		t.Fatal("expected a diagnostic for `?` on Option within a Result-returning function")
	}

	found := false

	for _, d := range diags {
		if d.Kind == diag.TryOutsidePropagatingContext {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected a TryOutsidePropagatingContext diagnostic, got %v", diags)
	}
}

func Test_Checker_05_EnsureCleanup_NoDiagnostics(t *testing.T) {
	resolved := testprog.EnsureCleanup()

	tc := typecheck.NewChecker(resolved)
	tc.Check()

	if diags := tc.Diagnostics(); len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
}

func Test_Checker_06_TryOnUnconstrainedVar_ConstrainedByOptionReturn(t *testing.T) {
	b := testprog.NewBuilder()

	// make_opt's return type is a bare type parameter, so the call site
	// yields an unconstrained variable; `?` must pin it to the enclosing
	// Option return rather than reject it.
	makeOpt := b.Func("make_opt", nil, testprog.Ty("T"))
	makeOpt.TypeParams = []string{"T"}

	inner := b.Call(b.Ident("make_opt"))
	f := b.Func("f", nil, testprog.OptionTy(testprog.Ty("i32")),
		b.ExprS(b.Try(inner)),
	)

	tc := typecheck.NewChecker(testprog.Program(makeOpt, f))
	result := tc.Check()

	if diags := tc.Diagnostics(); len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}

	if got := result.NodeType[inner.NodeId()]; got.Kind != typecheck.KOption {
		t.Fatalf("carrier must be constrained to Option, got %s", got)
	}
}

func Test_Checker_07_TryOnUnconstrainedVar_ConstrainedByResultReturn(t *testing.T) {
	b := testprog.NewBuilder()

	makeRes := b.Func("make_res", nil, testprog.Ty("T"))
	makeRes.TypeParams = []string{"T"}

	inner := b.Call(b.Ident("make_res"))
	f := b.Func("f", nil, testprog.ResultTy(testprog.Ty("i32"), testprog.Ty("string")),
		b.ExprS(b.Try(inner)),
	)

	tc := typecheck.NewChecker(testprog.Program(makeRes, f))
	result := tc.Check()

	if diags := tc.Diagnostics(); len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}

	got := result.NodeType[inner.NodeId()]
	if got.Kind != typecheck.KResult {
		t.Fatalf("carrier must be constrained to Result, got %s", got)
	}

	if got.Args[1].Kind != typecheck.KPrim || got.Args[1].Prim != "string" {
		t.Fatalf("error side must unify with the return's error side, got %s", got.Args[1])
	}
}

func Test_Checker_08_TryOnUnconstrainedVar_UnconstrainedReturnRejected(t *testing.T) {
	b := testprog.NewBuilder()

	makeOpt := b.Func("make_opt", nil, testprog.Ty("T"))
	makeOpt.TypeParams = []string{"T"}

	f := b.Func("f", nil, testprog.Ty("i32"),
		b.ExprS(b.Try(b.Call(b.Ident("make_opt")))),
		b.Return(b.Int(0)),
	)

	tc := typecheck.NewChecker(testprog.Program(makeOpt, f))
	tc.Check()

	found := false

	for _, d := range tc.Diagnostics() {
		if d.Kind == diag.TryOutsidePropagatingContext {
			found = true
		}
	}

	if !found {
		t.Fatalf("`?` on an unconstrained value in a non-propagating function must be rejected, got %v",
			tc.Diagnostics())
	}
}
