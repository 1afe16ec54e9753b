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
package lower_test

import (
	"testing"

	"github.com/rask-lang/raskc/pkg/ast"
	"github.com/rask-lang/raskc/pkg/lower"
	"github.com/rask-lang/raskc/pkg/mir"
	"github.com/rask-lang/raskc/pkg/resolve"
	"github.com/rask-lang/raskc/pkg/testprog"
	"github.com/rask-lang/raskc/pkg/typecheck"
)

// lowerProgram runs type checking and lowering over a resolved program,
// failing the test on any type diagnostic.
func lowerProgram(t *testing.T, resolved *resolve.Program) *mir.Program {
	t.Helper()

	tc := typecheck.NewChecker(resolved)
	result := tc.Check()

	if diags := tc.Diagnostics(); len(diags) != 0 {
		t.Fatalf("unexpected type diagnostics: %v", diags)
	}

	lw := lower.NewLowerer(tc, result)
	prog := lw.Lower(resolved)

	if diags := lw.Diagnostics(); len(diags) != 0 {
		t.Fatalf("unexpected lowering diagnostics: %v", diags)
	}

	return prog
}

func mustValidate(t *testing.T, prog *mir.Program) {
	t.Helper()

	if errs := prog.Validate(); len(errs) != 0 {
		t.Fatalf("lowered program violates MIR invariants: %v", errs)
	}
}

func Test_Lower_01_ReturnClosure_HeapPromotion(t *testing.T) {
	prog := lowerProgram(t, testprog.ReturnClosure())
	mustValidate(t, prog)

	mk := prog.FunctionByName("make")
	if mk == nil {
		t.Fatal("function make not lowered")
	}

	var create *mir.ClosureCreate

	for _, b := range mk.Blocks {
		for _, s := range b.Stmts {
			if cc, ok := s.(mir.ClosureCreate); ok {
				create = &cc
			}
		}
	}

	if create == nil {
		t.Fatal("no ClosureCreate in make")
	}

	if !create.Heap {
		t.Fatal("returned closure must have a heap environment")
	}

	if len(create.Captures) != 1 || create.Captures[0].Offset != 0 {
		t.Fatalf("expected one capture at offset 0, got %v", create.Captures)
	}

	lifted := prog.FunctionByName(create.FuncName)
	if lifted == nil {
		t.Fatalf("lifted closure function %q not in program", create.FuncName)
	}

	if len(lifted.Params) == 0 || lifted.Local(lifted.Params[0]).Name != "__env" {
		t.Fatal("lifted closure's first parameter must be the environment pointer")
	}

	var load bool

	for _, b := range lifted.Blocks {
		for _, s := range b.Stmts {
			if _, ok := s.(mir.LoadCapture); ok {
				load = true
			}
		}
	}

	if !load {
		t.Fatal("lifted closure body must read its capture via LoadCapture")
	}
}

func Test_Lower_02_ReturnClosure_ClosureCallInMain(t *testing.T) {
	prog := lowerProgram(t, testprog.ReturnClosure())

	main := prog.FunctionByName("main")
	if main == nil {
		t.Fatal("function main not lowered")
	}

	var called bool

	for _, b := range main.Blocks {
		for _, s := range b.Stmts {
			if _, ok := s.(mir.ClosureCall); ok {
				called = true
			}
		}
	}

	if !called {
		t.Fatal("calling a closure-typed local must lower to ClosureCall")
	}
}

func Test_Lower_03_EnsureCleanup_CleanupReturn(t *testing.T) {
	prog := lowerProgram(t, testprog.EnsureCleanup())
	mustValidate(t, prog)

	f := prog.FunctionByName("f")
	if f == nil {
		t.Fatal("function f not lowered")
	}

	var cr *mir.CleanupReturn

	for _, b := range f.Blocks {
		if c, ok := b.Terminator.(mir.CleanupReturn); ok {
			cr = &c
		}
	}

	if cr == nil {
		t.Fatal("return inside a live ensure must lower to CleanupReturn")
	}

	if cr.Value == nil || !cr.Value.IsConst() || cr.Value.ConstBits() != 1 {
		t.Fatalf("CleanupReturn must carry the constant 1, got %v", cr.Value)
	}

	if len(cr.CleanupChain) != 1 {
		t.Fatalf("expected a one-entry cleanup chain, got %v", cr.CleanupChain)
	}

	cb := f.Block(cr.CleanupChain[0])
	if !cb.IsCleanup {
		t.Fatal("cleanup chain must reference a cleanup-marked block")
	}

	var cleanupCall bool

	for _, s := range cb.Stmts {
		if call, ok := s.(mir.Call); ok && call.Func == "cleanup" {
			cleanupCall = true
		}
	}

	if !cleanupCall {
		t.Fatal("cleanup block must contain the cleanup() call")
	}
}

func Test_Lower_04_WhileLoop_Shape(t *testing.T) {
	b := testprog.NewBuilder()

	count := b.Func("count", nil, testprog.Ty("i32"),
		b.Let("i", b.Int(0)),
		b.While(b.Binary("<", b.Ident("i"), b.Int(10)), []ast.Stmt{
			b.Assign(b.Ident("i"), b.Binary("+", b.Ident("i"), b.Int(1))),
		}),
		b.Return(b.Ident("i")),
	)

	prog := lowerProgram(t, testprog.Program(count))
	mustValidate(t, prog)

	f := prog.FunctionByName("count")

	var branches int

	for _, blk := range f.Blocks {
		if _, ok := blk.Terminator.(mir.Branch); ok {
			branches++
		}
	}

	if branches == 0 {
		t.Fatal("while loop must lower to a Branch in its check block")
	}
}

func Test_Lower_05_ForRange_CounterIncrement(t *testing.T) {
	b := testprog.NewBuilder()

	f := b.Func("sum", nil, testprog.Ty("void"),
		b.ForRange("i", b.IntSuffixed(0, "usize"), b.IntSuffixed(10, "usize"),
			b.ExprS(b.Call(b.Ident("println"), b.Ident("i"))),
		),
	)

	prog := lowerProgram(t, testprog.Program(f))
	mustValidate(t, prog)

	fn := prog.FunctionByName("sum")

	var incs int

	for _, blk := range fn.Blocks {
		for _, s := range blk.Stmts {
			a, ok := s.(mir.Assign)
			if !ok {
				continue
			}

			if bin, ok := a.Rvalue.(mir.BinaryOp); ok && bin.Op == mir.Add {
				incs++
			}
		}
	}

	if incs == 0 {
		t.Fatal("for-range must synthesize a counter increment")
	}
}

func Test_Lower_06_StringLiterals_InternedOncePerModule(t *testing.T) {
	b := testprog.NewBuilder()

	f := b.Func("greet", nil, testprog.Ty("void"),
		b.ExprS(b.Call(b.Ident("println"), b.Str("hello"))),
		b.ExprS(b.Call(b.Ident("println"), b.Str("hello"))),
		b.ExprS(b.Call(b.Ident("println"), b.Str("bye"))),
	)

	prog := lowerProgram(t, testprog.Program(f))

	if len(prog.Strings) != 2 {
		t.Fatalf("expected 2 interned strings, got %d (%v)", len(prog.Strings), prog.Strings)
	}
}

func Test_Lower_07_FusedIteratorChain_NoMaterialization(t *testing.T) {
	b := testprog.NewBuilder()

	filter := b.Closure([]ast.Param{{Name: "e", Type: ast.TypeExpr{Inferred: true}}},
		b.Binary(">", b.Ident("e"), b.Int(0)))
	mapper := b.Closure([]ast.Param{{Name: "e", Type: ast.TypeExpr{Inferred: true}}},
		b.Binary("*", b.Ident("e"), b.Int(2)))

	chain := b.IterChain(b.Ident("v"), false,
		testprog.Adapter("filter", filter),
		testprog.Adapter("map", mapper),
	)

	f := b.Func("walk", []ast.Param{testprog.Param0("v", testprog.Ty("Vec", testprog.Ty("i32")))},
		testprog.Ty("void"),
		b.ForEach("x", chain, b.ExprS(b.Call(b.Ident("println"), b.Ident("x")))),
	)

	prog := lowerProgram(t, testprog.Program(f))
	mustValidate(t, prog)

	fn := prog.FunctionByName("walk")

	var vecNew, vecGet bool

	for _, blk := range fn.Blocks {
		for _, s := range blk.Stmts {
			call, ok := s.(mir.Call)
			if !ok {
				continue
			}

			switch call.Func {
			case "Vec_new":
				vecNew = true
			case "Vec_get":
				vecGet = true
			}
		}
	}

	if vecNew {
		t.Fatal("a fused chain must not materialize an intermediate Vec")
	}

	if !vecGet {
		t.Fatal("a fused chain must index the source through Vec_get")
	}
}

func Test_Lower_08_CollectChain_ProducesFreshVec(t *testing.T) {
	b := testprog.NewBuilder()

	mapper := b.Closure([]ast.Param{{Name: "e", Type: ast.TypeExpr{Inferred: true}}},
		b.Binary("*", b.Ident("e"), b.Int(2)))

	chain := b.IterChain(b.Ident("v"), true, testprog.Adapter("map", mapper))

	f := b.Func("doubled", []ast.Param{testprog.Param0("v", testprog.Ty("Vec", testprog.Ty("i32")))},
		testprog.Ty("Vec", testprog.Ty("i32")),
		b.Return(chain),
	)

	prog := lowerProgram(t, testprog.Program(f))
	mustValidate(t, prog)

	fn := prog.FunctionByName("doubled")

	var vecNew, vecPush bool

	for _, blk := range fn.Blocks {
		for _, s := range blk.Stmts {
			call, ok := s.(mir.Call)
			if !ok {
				continue
			}

			switch call.Func {
			case "Vec_new":
				vecNew = true
			case "Vec_push":
				vecPush = true
			}
		}
	}

	if !vecNew || !vecPush {
		t.Fatal("a .collect() terminal must build a fresh Vec and append produced elements")
	}
}

func Test_Lower_09_MatchOnEnum_TagCascade(t *testing.T) {
	b := testprog.NewBuilder()

	f := b.Func("area", []ast.Param{testprog.Param0("s", testprog.Ty("Shape"))}, testprog.Ty("i32"),
		b.Match(b.Ident("s"),
			testprog.Arm(testprog.VariantPat("Shape", "Circle", "r"), b.Return(b.Ident("r"))),
			testprog.Arm(testprog.VariantPat("Shape", "Rect", "w", "h"), b.Return(b.Ident("w"))),
			testprog.Arm(testprog.WildcardPat(), b.Return(b.Int(0))),
		),
	)

	prog := testprog.Program(f)
	testprog.AddEnum(prog, &ast.EnumDecl{
		Name: "Shape",
		Variants: []ast.EnumVariantDecl{
			{Name: "Circle", Fields: []ast.FieldDecl{{Name: "r", Type: testprog.Ty("i32")}}},
			{Name: "Rect", Fields: []ast.FieldDecl{
				{Name: "w", Type: testprog.Ty("i32")},
				{Name: "h", Type: testprog.Ty("i32")},
			}},
		},
	})

	lowered := lowerProgram(t, prog)
	mustValidate(t, lowered)

	fn := lowered.FunctionByName("area")

	var tags, payloads int

	for _, blk := range fn.Blocks {
		for _, s := range blk.Stmts {
			a, ok := s.(mir.Assign)
			if !ok {
				continue
			}

			switch a.Rvalue.(type) {
			case mir.EnumTagOf:
				tags++
			case mir.VariantFieldOf:
				payloads++
			}
		}
	}

	if tags < 2 {
		t.Fatalf("expected one EnumTag read per non-wildcard arm, got %d", tags)
	}

	if payloads < 2 {
		t.Fatalf("expected payload extraction in both variant arms, got %d", payloads)
	}
}

func Test_Lower_10_ResourceBinding_RegisterAndScopeCheck(t *testing.T) {
	resolved := testprog.ResourceLeak()
	prog := lowerProgram(t, resolved)
	mustValidate(t, prog)

	fn := prog.FunctionByName("f")

	var registered, checked bool

	for _, blk := range fn.Blocks {
		for _, s := range blk.Stmts {
			switch v := s.(type) {
			case mir.ResourceRegister:
				if v.TypeName == "File" {
					registered = true
				}
			case mir.ResourceScopeCheck:
				checked = true
			}
		}
	}

	if !registered {
		t.Fatal("binding a File must emit ResourceRegister")
	}

	if !checked {
		t.Fatal("scope exit must emit ResourceScopeCheck")
	}
}

func Test_Lower_11_UsingSpawn_RuntimeBracketsAndHandleTracking(t *testing.T) {
	b := testprog.NewBuilder()

	f := b.Func("run", nil, testprog.Ty("void"),
		b.Using(b.IntSuffixed(4, "usize"),
			b.Spawn("", b.ExprS(b.Call(b.Ident("println"), b.Str("hi")))),
		),
	)

	prog := lowerProgram(t, testprog.Program(f))
	mustValidate(t, prog)

	fn := prog.FunctionByName("run")

	var initCall, shutdownCall, spawnCall, handleReg bool

	for _, blk := range fn.Blocks {
		for _, s := range blk.Stmts {
			switch v := s.(type) {
			case mir.Call:
				switch v.Func {
				case "rask_runtime_init":
					initCall = true
				case "rask_runtime_shutdown":
					shutdownCall = true
				case "rask_spawn":
					spawnCall = true
				}
			case mir.ResourceRegister:
				if v.TypeName == "TaskHandle" {
					handleReg = true
				}
			}
		}
	}

	if !initCall || !shutdownCall {
		t.Fatal("a Multitasking scope must bracket its body with runtime init/shutdown")
	}

	if !spawnCall || !handleReg {
		t.Fatal("spawn must call the runtime and register its task handle")
	}
}

func Test_Lower_12_AllDemos_ValidateAfterLowering(t *testing.T) {
	for name, build := range testprog.Demos {
		resolved := build()

		tc := typecheck.NewChecker(resolved)
		result := tc.Check()

		// Demos exercising checker rejections never reach lowering in the
		// real pipeline; skip them the same way.
		if len(tc.Diagnostics()) != 0 {
			continue
		}

		lw := lower.NewLowerer(tc, result)
		prog := lw.Lower(resolved)

		if errs := prog.Validate(); len(errs) != 0 {
			t.Fatalf("demo %q: lowered program violates MIR invariants: %v", name, errs)
		}
	}
}
