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

import "fmt"

// ValidationError reports a violation of one of the closed MIR invariants.
type ValidationError struct {
	Function string
	Msg      string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("mir: function %q: %s", e.Function, e.Msg)
}

// Validate checks every structural invariant for all functions in the
// program, returning every violation found (it does not stop at the first
// one, matching the accumulate-and-continue error policy).
func (p *Program) Validate() []error {
	var errs []error

	for _, f := range p.Functions {
		errs = append(errs, f.validate()...)
	}

	return errs
}

func (f *Function) validate() []error {
	var errs []error

	locals := make(map[LocalId]*Local, len(f.Locals))
	for i := range f.Locals {
		locals[f.Locals[i].Id] = &f.Locals[i]
	}

	blocks := make(map[BlockId]*Block, len(f.Blocks))
	for _, b := range f.Blocks {
		blocks[b.Id] = b
	}

	fail := func(format string, args ...any) {
		errs = append(errs, &ValidationError{Function: f.Name, Msg: fmt.Sprintf(format, args...)})
	}

	if _, ok := blocks[f.Entry]; !ok {
		fail("entry block bb%d does not exist", f.Entry)
	}

	for _, b := range f.Blocks {
		if b.Terminator == nil {
			fail("block bb%d has no terminator", b.Id)
			continue
		}

		for _, succ := range b.Terminator.Successors() {
			if _, ok := blocks[succ]; !ok {
				fail("block bb%d references undeclared block bb%d", b.Id, succ)
			}
		}

		if cr, ok := b.Terminator.(CleanupReturn); ok {
			for _, cb := range cr.CleanupChain {
				blk, ok := blocks[cb]
				if !ok {
					fail("block bb%d: cleanup chain references undeclared block bb%d", b.Id, cb)
				} else if !blk.IsCleanup {
					fail("block bb%d: cleanup chain references non-cleanup block bb%d", b.Id, cb)
				}
			}
		}

		if br, ok := b.Terminator.(Branch); ok {
			if err := f.checkOperandLocal(br.Cond, locals); err != "" {
				fail("block bb%d: branch condition %s", b.Id, err)
			} else if !br.Cond.IsConst() {
				if lty := locals[br.Cond.Local()].Type; lty.Tag() != Bool {
					fail("block bb%d: branch condition has non-bool type %s", b.Id, lty)
				}
			}
		}

		for _, s := range b.Stmts {
			f.validateStmt(b.Id, s, locals, &errs)
		}
	}

	// Entry block must have no predecessor.
	for _, b := range f.Blocks {
		if b.Terminator == nil {
			continue
		}

		for _, succ := range b.Terminator.Successors() {
			if succ == f.Entry {
				fail("entry block bb%d has a predecessor (bb%d)", f.Entry, b.Id)
			}
		}
	}

	return errs
}

func (f *Function) checkOperandLocal(op Operand, locals map[LocalId]*Local) string {
	if op.IsConst() {
		return ""
	}

	if _, ok := locals[op.Local()]; !ok {
		return fmt.Sprintf("references undeclared local _%d", op.Local())
	}

	return ""
}

func (f *Function) validateStmt(bid BlockId, s Stmt, locals map[LocalId]*Local, errs *[]error) {
	fail := func(format string, args ...any) {
		*errs = append(*errs, &ValidationError{Function: f.Name, Msg: fmt.Sprintf("block bb%d: "+format, append([]any{bid}, args...)...)})
	}

	need := func(id LocalId) {
		if _, ok := locals[id]; !ok {
			fail("undeclared local _%d", id)
		}
	}

	switch v := s.(type) {
	case Assign:
		need(v.Dst)
		f.validateRValue(bid, v.Rvalue, locals, errs)
	case Call:
		if v.Dst != nil {
			need(*v.Dst)
		}
	case ResourceRegister:
		need(v.Dst)
	case PoolCheckedAccess:
		need(v.Dst)
	case ClosureCreate:
		need(v.Dst)
		for _, c := range v.Captures {
			need(c.Local)
		}
	case ClosureCall:
		if v.Dst != nil {
			need(*v.Dst)
		}
	case LoadCapture:
		need(v.Dst)
		need(v.EnvPtr)
	case GlobalRef:
		need(v.Dst)
	case ArrayStore:
		need(v.Base)
	case StructMake:
		need(v.Dst)
	case EnumMake:
		need(v.Dst)
	}
}

func (f *Function) validateRValue(bid BlockId, rv RValue, locals map[LocalId]*Local, errs *[]error) {
	fail := func(format string, args ...any) {
		*errs = append(*errs, &ValidationError{Function: f.Name, Msg: fmt.Sprintf("block bb%d: "+format, append([]any{bid}, args...)...)})
	}

	switch v := rv.(type) {
	case Ref:
		if _, ok := locals[v.Arg]; !ok {
			fail("ref of undeclared local _%d", v.Arg)
		}
	case FieldOf:
		local, ok := locals[v.Base]
		if !ok {
			fail("field access on undeclared local _%d", v.Base)
			return
		}

		if local.Type.Tag() != StructTag {
			fail("field access on non-struct local _%d (type %s)", v.Base, local.Type)
		}
	case EnumTagOf:
		if !v.Arg.IsConst() {
			if local, ok := locals[v.Arg.Local()]; ok && local.Type.Tag() != EnumTag {
				fail("enum-tag on non-enum local _%d (type %s)", v.Arg.Local(), local.Type)
			}
		}
	case ArrayIndexOf:
		if _, ok := locals[v.Base]; !ok {
			fail("array index on undeclared local _%d", v.Base)
		}
	case VariantFieldOf:
		local, ok := locals[v.Base]
		if !ok {
			fail("variant field access on undeclared local _%d", v.Base)
			return
		}

		if local.Type.Tag() != EnumTag {
			fail("variant field access on non-enum local _%d (type %s)", v.Base, local.Type)
		}
	}
}
