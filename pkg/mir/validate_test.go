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
package mir

import (
	"strings"
	"testing"
)

// validFunction builds a minimal well-formed function:
//
//	fn id(x: i64) -> i64 { bb0: _1 = x; return _1 }
func validFunction() *Function {
	b := NewBuilder("id", Scalar(I64))
	x := b.NewLocal("x", Scalar(I64), true)
	tmp := b.NewLocal("", Scalar(I64), false)

	b.Emit(Assign{Dst: tmp, Rvalue: Use{Arg: OperandLocal(x)}})

	ret := OperandLocal(tmp)
	b.Terminate(Return{Value: &ret})

	return b.Function()
}

func requireViolation(t *testing.T, f *Function, fragment string) {
	t.Helper()

	p := &Program{Functions: []*Function{f}}

	errs := p.Validate()
	for _, e := range errs {
		if strings.Contains(e.Error(), fragment) {
			return
		}
	}

	t.Fatalf("expected a violation containing %q, got %v", fragment, errs)
}

func Test_Validate_01_WellFormed_NoErrors(t *testing.T) {
	p := &Program{Functions: []*Function{validFunction()}}

	if errs := p.Validate(); len(errs) != 0 {
		t.Fatalf("expected no violations, got %v", errs)
	}
}

func Test_Validate_02_MissingTerminator(t *testing.T) {
	f := validFunction()
	f.Blocks = append(f.Blocks, &Block{Id: BlockId(len(f.Blocks))})

	requireViolation(t, f, "no terminator")
}

func Test_Validate_03_UndeclaredSuccessor(t *testing.T) {
	f := validFunction()
	f.Blocks[0].Terminator = Goto{Target: 99}

	requireViolation(t, f, "undeclared block")
}

func Test_Validate_04_NonBoolBranchCondition(t *testing.T) {
	b := NewBuilder("f", Scalar(Void))
	n := b.NewLocal("n", Scalar(I64), true)

	then := b.NewBlock()
	els := b.NewBlock()

	b.Terminate(Branch{Cond: OperandLocal(n), Then: then, Else: els})
	b.SetBlock(then)
	b.Terminate(Return{})
	b.SetBlock(els)
	b.Terminate(Return{})

	requireViolation(t, b.Function(), "non-bool")
}

func Test_Validate_05_UndeclaredLocalInAssign(t *testing.T) {
	f := validFunction()
	f.Blocks[0].Stmts = append(f.Blocks[0].Stmts, Assign{Dst: 42, Rvalue: Use{Arg: OperandConst(Scalar(I64), 0)}})

	requireViolation(t, f, "undeclared local")
}

func Test_Validate_06_CleanupChainMustReferenceCleanupBlocks(t *testing.T) {
	b := NewBuilder("f", Scalar(Void))
	plain := b.NewBlock()

	b.Terminate(CleanupReturn{CleanupChain: []BlockId{plain}})
	b.SetBlock(plain)
	b.Terminate(Return{})

	requireViolation(t, b.Function(), "non-cleanup")
}

func Test_Validate_07_EntryBlockMustHaveNoPredecessor(t *testing.T) {
	b := NewBuilder("f", Scalar(Void))
	b.Terminate(Goto{Target: b.CurrentBlock()})

	requireViolation(t, b.Function(), "predecessor")
}

func Test_Validate_08_FieldAccessRequiresStructLocal(t *testing.T) {
	b := NewBuilder("f", Scalar(Void))
	n := b.NewLocal("n", Scalar(I64), true)
	dst := b.NewLocal("", Scalar(I64), false)

	b.Emit(Assign{Dst: dst, Rvalue: FieldOf{Base: n, FieldIndex: 0}})
	b.Terminate(Return{})

	requireViolation(t, b.Function(), "non-struct")
}

func Test_Validate_09_EnumTagRequiresEnumLocal(t *testing.T) {
	b := NewBuilder("f", Scalar(Void))
	n := b.NewLocal("n", Scalar(I64), true)
	dst := b.NewLocal("", Scalar(U32), false)

	b.Emit(Assign{Dst: dst, Rvalue: EnumTagOf{Arg: OperandLocal(n)}})
	b.Terminate(Return{})

	requireViolation(t, b.Function(), "non-enum")
}

func Test_Layout_01_StructFieldLookup(t *testing.T) {
	l := &StructLayout{
		Name: "Point",
		Fields: []Field{
			{Name: "x", Type: Scalar(I32), Offset: 0, Size: 4, Align: 4},
			{Name: "y", Type: Scalar(I32), Offset: 4, Size: 4, Align: 4},
		},
		Size: 8, Align: 4,
	}

	if l.FieldIndex("y") != 1 {
		t.Fatal("field index lookup by name")
	}

	if l.FieldIndex("z") != -1 {
		t.Fatal("missing field must report -1")
	}
}

func Test_Lisp_01_FunctionRendering(t *testing.T) {
	f := validFunction()

	out := f.Lisp()
	for _, fragment := range []string{"(fn id", "bb0", "(return"} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("lisp rendering missing %q:\n%s", fragment, out)
		}
	}
}
