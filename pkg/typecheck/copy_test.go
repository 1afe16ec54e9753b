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

	"github.com/rask-lang/raskc/pkg/ast"
	"github.com/rask-lang/raskc/pkg/testprog"
	"github.com/rask-lang/raskc/pkg/typecheck"
	"github.com/rask-lang/raskc/pkg/util/assert"
)

// emptyChecker builds a checker over a program carrying only the given
// declarations, for exercising the Copy rule directly.
func emptyChecker(decls ...*ast.StructDecl) *typecheck.Checker {
	prog := testprog.Program()
	for _, d := range decls {
		testprog.AddStruct(prog, d)
	}

	return typecheck.NewChecker(prog)
}

func Test_Copy_01_Primitives(t *testing.T) {
	c := emptyChecker()

	cases := []struct {
		ty   typecheck.Type
		copy bool
	}{
		{typecheck.Prim("i32"), true},
		{typecheck.Prim("f64"), true},
		{typecheck.Prim("bool"), true},
		{typecheck.Prim("string"), false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.copy, c.IsCopy(tc.ty), "IsCopy(%s)", tc.ty)
	}
}

func Test_Copy_02_ResultNeverCopy(t *testing.T) {
	c := emptyChecker()

	r := typecheck.ResultOf(typecheck.Prim("i8"), typecheck.Prim("i8"))
	assert.False(t, c.IsCopy(r), "Result is never Copy")
}

func Test_Copy_03_OptionSizeClause(t *testing.T) {
	c := emptyChecker()

	if !c.IsCopy(typecheck.OptionOf(typecheck.Prim("i64"))) {
		t.Fatal("Option<i64> fits the 16-byte clause")
	}

	if c.IsCopy(typecheck.OptionOf(typecheck.Prim("i128"))) {
		t.Fatal("Option<i128> exceeds 16 bytes")
	}
}

func Test_Copy_04_ArraySizeClause(t *testing.T) {
	c := emptyChecker()

	if !c.IsCopy(typecheck.ArrayOf(typecheck.Prim("i32"), 4)) {
		t.Fatal("[i32; 4] is 16 bytes, still Copy")
	}

	if c.IsCopy(typecheck.ArrayOf(typecheck.Prim("i32"), 5)) {
		t.Fatal("[i32; 5] exceeds 16 bytes")
	}
}

func Test_Copy_05_StructComposition(t *testing.T) {
	small := &ast.StructDecl{Name: "Point", Fields: []ast.FieldDecl{
		{Name: "x", Type: testprog.Ty("i32")},
		{Name: "y", Type: testprog.Ty("i32")},
	}}
	named := &ast.StructDecl{Name: "Named", Fields: []ast.FieldDecl{
		{Name: "label", Type: testprog.Ty("string")},
	}}

	c := emptyChecker(small, named)

	if !c.IsCopy(typecheck.NamedOf("Point")) {
		t.Fatal("a small all-Copy struct is Copy")
	}

	if c.IsCopy(typecheck.NamedOf("Named")) {
		t.Fatal("a struct holding a string is not Copy")
	}
}

func Test_Unify_01_OccursCheck(t *testing.T) {
	s := typecheck.NewSubstitution()

	if err := s.Unify(typecheck.Var(0), typecheck.OptionOf(typecheck.Var(0))); err == nil {
		t.Fatal("occurs check must reject the infinite type")
	}
}

func Test_Unify_02_StructuredDecomposition(t *testing.T) {
	s := typecheck.NewSubstitution()

	a := typecheck.ResultOf(typecheck.Var(0), typecheck.Prim("string"))
	b := typecheck.ResultOf(typecheck.Prim("i32"), typecheck.Var(1))

	if err := s.Unify(a, b); err != nil {
		t.Fatalf("component-wise unification failed: %v", err)
	}

	if got := s.Resolve(typecheck.Var(0)); got.Prim != "i32" {
		t.Fatalf("?0 must resolve to i32, got %s", got)
	}

	if got := s.Resolve(typecheck.Var(1)); got.Prim != "string" {
		t.Fatalf("?1 must resolve to string, got %s", got)
	}
}

func Test_Literals_01_Defaults(t *testing.T) {
	b := testprog.NewBuilder()

	unsuffixedInt := b.Int(42)
	unsuffixedFloat := ast.NewFloatLit(9000, unsuffixedInt.Span(), 1.5, "")
	suffixed := b.IntSuffixed(7, "u8")

	f := b.Func("f", nil, testprog.Ty("void"),
		b.Let("a", unsuffixedInt),
		b.Let("b", unsuffixedFloat),
		b.Let("c", suffixed),
	)

	resolved := testprog.Program(f)

	tc := typecheck.NewChecker(resolved)
	result := tc.Check()

	if got := result.NodeType[unsuffixedInt.NodeId()]; got.Prim != "i32" {
		t.Fatalf("unsuffixed integer defaults to i32, got %s", got)
	}

	if got := result.NodeType[unsuffixedFloat.NodeId()]; got.Prim != "f64" {
		t.Fatalf("unsuffixed float defaults to f64, got %s", got)
	}

	if got := result.NodeType[suffixed.NodeId()]; got.Prim != "u8" {
		t.Fatalf("suffixed literal takes exactly its suffix, got %s", got)
	}
}

func Test_Guard_01_ElseMustDiverge(t *testing.T) {
	b := testprog.NewBuilder()

	someOpt := b.Func("some_opt", nil, testprog.OptionTy(testprog.Ty("i32")))

	// The else block ends without leaving the function: must be rejected.
	guard := b.GuardLet("x", b.Call(b.Ident("some_opt")), testprog.VariantPat("Option", "Some", "x"),
		b.ExprS(b.Int(0)),
	)

	f := b.Func("f", nil, testprog.Ty("void"), b.ExprS(guard))

	tc := typecheck.NewChecker(testprog.Program(someOpt, f))
	tc.Check()

	found := false

	for _, d := range tc.Diagnostics() {
		if d.Kind.String() == "GuardElseMustDiverge" {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected GuardElseMustDiverge, got %v", tc.Diagnostics())
	}
}

func Test_Checker_Deterministic_AcrossRuns(t *testing.T) {
	first := typecheck.NewChecker(testprog.ReturnClosure()).Check()
	second := typecheck.NewChecker(testprog.ReturnClosure()).Check()

	if len(first.NodeType) != len(second.NodeType) {
		t.Fatal("two runs over the same program must resolve the same node set")
	}

	for id, ty := range first.NodeType {
		if other, ok := second.NodeType[id]; !ok || other.String() != ty.String() {
			t.Fatalf("node %d resolved differently across runs: %s vs %s", id, ty, other)
		}
	}
}
