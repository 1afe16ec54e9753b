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
package codegen_test

import (
	"strings"
	"testing"

	"github.com/rask-lang/raskc/pkg/codegen"
	"github.com/rask-lang/raskc/pkg/diag"
	"github.com/rask-lang/raskc/pkg/lower"
	"github.com/rask-lang/raskc/pkg/mir"
	"github.com/rask-lang/raskc/pkg/testprog"
	"github.com/rask-lang/raskc/pkg/typecheck"
)

func lowerEnsureDemo(t *testing.T) *mir.Program {
	t.Helper()

	resolved := testprog.EnsureCleanup()

	tc := typecheck.NewChecker(resolved)
	result := tc.Check()

	if diags := tc.Diagnostics(); len(diags) != 0 {
		t.Fatalf("unexpected type diagnostics: %v", diags)
	}

	lw := lower.NewLowerer(tc, result)

	return lw.Lower(resolved)
}

func Test_Codegen_01_RuntimeSignaturesRegisteredBeforeUserFunctions(t *testing.T) {
	m := codegen.NewModule(&mir.Program{})

	sigs := m.Signatures()

	want := map[string]bool{
		"rask_runtime_init": false, "Vec_new": false, "Pool_handles": false,
		"resource_register": false, "closure_drop": false,
	}

	for _, s := range sigs {
		if _, ok := want[s.Name]; ok {
			want[s.Name] = true
		}
	}

	for name, seen := range want {
		if !seen {
			t.Fatalf("runtime ABI entry %q not registered", name)
		}
	}
}

func Test_Codegen_02_UserFunctionShadowsStdlib(t *testing.T) {
	// A user Vec_new with a different arity than the stdlib entry: the
	// registered signature must be the user's.
	b := mir.NewBuilder("Vec_new", mir.Scalar(mir.PtrTag))
	b.NewLocal("capacity", mir.Scalar(mir.I64), true)
	b.Terminate(mir.Return{})

	prog := &mir.Program{Functions: []*mir.Function{b.Function()}}
	m := codegen.NewModule(prog)

	found := false

	for _, s := range m.Signatures() {
		if s.Name == "Vec_new" {
			found = true

			if s.Arity != 1 {
				t.Fatalf("user definition must shadow the stdlib entry, got arity %d", s.Arity)
			}
		}
	}

	if !found {
		t.Fatal("Vec_new must be registered")
	}

	if diags := m.Verify(); len(diags) != 0 {
		t.Fatalf("shadowing is not an error, got %v", diags)
	}
}

func Test_Codegen_03_VerifyCleanPipeline(t *testing.T) {
	prog := lowerEnsureDemo(t)

	m := codegen.NewModule(prog)
	if diags := m.Verify(); len(diags) != 0 {
		t.Fatalf("expected no codegen diagnostics, got %v", diags)
	}
}

func Test_Codegen_04_FunctionNotFoundAtCallSite(t *testing.T) {
	b := mir.NewBuilder("f", mir.Scalar(mir.Void))
	b.Emit(mir.Call{Func: "no_such_helper", Args: nil})
	b.Terminate(mir.Return{})

	prog := &mir.Program{Functions: []*mir.Function{b.Function()}}

	m := codegen.NewModule(prog)

	diags := m.Verify()
	if len(diags) != 1 || diags[0].Kind != diag.FunctionNotFoundAtCallSite {
		t.Fatalf("expected one FunctionNotFoundAtCallSite, got %v", diags)
	}

	if diags[0].Fields["function"] != "no_such_helper" {
		t.Fatalf("diagnostic must name the missing callee, got %v", diags[0].Fields)
	}
}

func Test_Codegen_05_ArityMismatchReported(t *testing.T) {
	b := mir.NewBuilder("f", mir.Scalar(mir.Void))
	b.Emit(mir.Call{Func: "Vec_len", Args: []mir.Operand{
		mir.OperandConst(mir.Scalar(mir.I64), 0),
		mir.OperandConst(mir.Scalar(mir.I64), 0),
	}})
	b.Terminate(mir.Return{})

	prog := &mir.Program{Functions: []*mir.Function{b.Function()}}

	m := codegen.NewModule(prog)
	if diags := m.Verify(); len(diags) != 1 {
		t.Fatalf("expected one arity diagnostic, got %v", diags)
	}
}

func Test_Codegen_06_EmitPseudoObject(t *testing.T) {
	prog := lowerEnsureDemo(t)

	m := codegen.NewModule(prog)

	out, err := m.Emit()
	if err != nil {
		t.Fatalf("emit failed: %v", err)
	}

	for _, fragment := range []string{"(fn f", "cleanup", "rask_runtime_init"} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("pseudo-object missing %q", fragment)
		}
	}
}

func Test_Codegen_07_EmitRefusesInvalidMIR(t *testing.T) {
	f := &mir.Function{Name: "broken", ReturnType: mir.Scalar(mir.Void)}
	f.Blocks = []*mir.Block{{Id: 0}}

	prog := &mir.Program{Functions: []*mir.Function{f}}

	m := codegen.NewModule(prog)
	if _, err := m.Emit(); err == nil {
		t.Fatal("emit must refuse a program violating MIR invariants")
	}
}
