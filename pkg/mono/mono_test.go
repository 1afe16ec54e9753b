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
package mono_test

import (
	"testing"

	"github.com/rask-lang/raskc/pkg/ast"
	"github.com/rask-lang/raskc/pkg/lower"
	"github.com/rask-lang/raskc/pkg/mir"
	"github.com/rask-lang/raskc/pkg/mono"
	"github.com/rask-lang/raskc/pkg/resolve"
	"github.com/rask-lang/raskc/pkg/testprog"
	"github.com/rask-lang/raskc/pkg/typecheck"
)

// runMono drives the pipeline through monomorphization.
func runMono(t *testing.T, resolved *resolve.Program) (*mono.Monomorphizer, *mir.Program) {
	t.Helper()

	tc := typecheck.NewChecker(resolved)
	result := tc.Check()

	if diags := tc.Diagnostics(); len(diags) != 0 {
		t.Fatalf("unexpected type diagnostics: %v", diags)
	}

	lw := lower.NewLowerer(tc, result)
	prog := lw.Lower(resolved)

	m := mono.New(tc, lw.Layouts(), prog)
	m.Run(resolved.AST, result)

	return m, prog
}

func genericBoxProgram() *resolve.Program {
	b := testprog.NewBuilder()

	f := b.Func("use_box",
		[]ast.Param{testprog.Param0("bx", testprog.Ty("Box", testprog.Ty("i64")))},
		testprog.Ty("void"),
		b.ExprS(b.Ident("bx")),
	)

	prog := testprog.Program(f)
	testprog.AddStruct(prog, &ast.StructDecl{
		Name:       "Box",
		TypeParams: []string{"T"},
		Fields: []ast.FieldDecl{
			{Name: "value", Type: testprog.Ty("T")},
			{Name: "tag", Type: testprog.Ty("u8")},
		},
	})

	return prog
}

func Test_Mono_01_StructInstantiation_SpecializedLayout(t *testing.T) {
	m, prog := runMono(t, genericBoxProgram())

	if len(m.Instantiations) == 0 {
		t.Fatal("expected at least one instantiation")
	}

	var layout *mir.StructLayout

	for i := range prog.Structs {
		if prog.Structs[i].Name == "Box$i64" {
			layout = &prog.Structs[i]
		}
	}

	if layout == nil {
		t.Fatalf("expected specialized layout Box$i64, got %v", m.Instantiations)
	}

	if len(layout.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %v", layout.Fields)
	}

	if layout.Fields[0].Offset != 0 || layout.Fields[0].Size != 8 {
		t.Fatalf("value: i64 must sit at offset 0 with size 8, got %+v", layout.Fields[0])
	}

	if layout.Fields[1].Offset != 8 || layout.Fields[1].Size != 1 {
		t.Fatalf("tag: u8 must follow at offset 8, got %+v", layout.Fields[1])
	}

	// Total size rounds up to the struct's alignment.
	if layout.Size != 16 || layout.Align != 8 {
		t.Fatalf("expected size 16 align 8, got size %d align %d", layout.Size, layout.Align)
	}
}

func Test_Mono_02_SameInstantiationEmittedOnce(t *testing.T) {
	b := testprog.NewBuilder()

	f := b.Func("use_box",
		[]ast.Param{
			testprog.Param0("a", testprog.Ty("Box", testprog.Ty("i64"))),
			testprog.Param0("c", testprog.Ty("Box", testprog.Ty("i64"))),
		},
		testprog.Ty("void"),
		b.ExprS(b.Ident("a")),
		b.ExprS(b.Ident("c")),
	)

	prog := testprog.Program(f)
	testprog.AddStruct(prog, &ast.StructDecl{
		Name:       "Box",
		TypeParams: []string{"T"},
		Fields:     []ast.FieldDecl{{Name: "value", Type: testprog.Ty("T")}},
	})

	m, mirProg := runMono(t, prog)

	count := 0

	for i := range mirProg.Structs {
		if mirProg.Structs[i].Name == "Box$i64" {
			count++
		}
	}

	if count != 1 {
		t.Fatalf("one layout per distinct instantiation, got %d (%v)", count, m.Instantiations)
	}
}

func Test_Mono_03_GenericEnum_VariantPayloads(t *testing.T) {
	b := testprog.NewBuilder()

	f := b.Func("use_either",
		[]ast.Param{testprog.Param0("e", testprog.Ty("Either", testprog.Ty("i32"), testprog.Ty("i64")))},
		testprog.Ty("void"),
		b.ExprS(b.Ident("e")),
	)

	prog := testprog.Program(f)
	testprog.AddEnum(prog, &ast.EnumDecl{
		Name:       "Either",
		TypeParams: []string{"L", "R"},
		Variants: []ast.EnumVariantDecl{
			{Name: "Left", Fields: []ast.FieldDecl{{Name: "value", Type: testprog.Ty("L")}}},
			{Name: "Right", Fields: []ast.FieldDecl{{Name: "value", Type: testprog.Ty("R")}}},
		},
	})

	mn, mirProg := runMono(t, prog)

	var layout *mir.EnumLayout

	for i := range mirProg.Enums {
		if mirProg.Enums[i].Name == "Either$i32_i64" {
			layout = &mirProg.Enums[i]
		}
	}

	if layout == nil {
		t.Fatalf("expected specialized enum layout, got %v", mn.Instantiations)
	}

	if len(layout.Variants) != 2 {
		t.Fatalf("expected 2 variants, got %v", layout.Variants)
	}

	if layout.Variants[0].DiscriminantN == layout.Variants[1].DiscriminantN {
		t.Fatal("variant tags must be unique")
	}

	// Payload offset clears the tag and aligns to the widest payload; the
	// total accommodates tag + max payload.
	if layout.Variants[0].PayloadOffset < 4 {
		t.Fatalf("payload must not overlap the tag, got offset %d", layout.Variants[0].PayloadOffset)
	}

	if layout.Size < layout.Variants[1].PayloadOffset+layout.Variants[1].PayloadSize {
		t.Fatal("enum size must accommodate tag + max payload")
	}
}

func Test_Mono_04_GenericFunction_MangledClone(t *testing.T) {
	b := testprog.NewBuilder()

	identity := b.Func("identity",
		[]ast.Param{testprog.Param0("x", testprog.Ty("T"))},
		testprog.Ty("T"),
		b.Return(b.Ident("x")),
	)
	identity.TypeParams = []string{"T"}

	caller := b.Func("caller", nil, testprog.Ty("void"),
		b.ExprS(b.Call(b.Ident("identity"), b.IntSuffixed(7, "i64"))),
	)

	m, prog := runMono(t, testprog.Program(identity, caller))

	clone := prog.FunctionByName("identity$i64")
	if clone == nil {
		t.Fatalf("expected a mangled clone identity$i64, got %v", m.Instantiations)
	}

	orig := prog.FunctionByName("identity")
	if len(clone.Blocks) != len(orig.Blocks) || len(clone.Locals) != len(orig.Locals) {
		t.Fatal("the clone must reproduce the generic body")
	}
}
