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
	"sort"

	"github.com/rask-lang/raskc/pkg/ast"
	"github.com/rask-lang/raskc/pkg/diag"
	"github.com/rask-lang/raskc/pkg/lower/hidden"
	"github.com/rask-lang/raskc/pkg/mir"
	"github.com/rask-lang/raskc/pkg/typecheck"
	"github.com/rask-lang/raskc/pkg/util/collection/stack"
)

// capture is one captured local's slot in a closure environment: the name
// it rebinds to inside the lifted body, its byte offset, and its type.
type capture struct {
	name   string
	offset uint
	ty     mir.Type
}

// capAlign returns a captured value's alignment: values align to their own
// size, capped at the 8-byte machine word.
func capAlign(size uint) uint {
	switch size {
	case 1, 2, 4, 8:
		return size
	case 0:
		return 1
	default:
		return 8
	}
}

// lowerClosureCreate computes the capture layout, emits ClosureCreate into
// dst, and lifts the body to a top-level function whose first parameter is
// the environment pointer. The environment is heap
// allocated iff the closure occurs in escaping position (return value,
// struct field, spawn body), signalled by the heap hint. Returns whether
// the environment went to the heap.
func (fl *funcLower) lowerClosureCreate(dst mir.LocalId, n *ast.ClosureExpr) bool {
	heap := fl.closureHeapHint
	fl.closureHeapHint = false

	name := fl.lw.nextClosureName(fl.fnName)

	var (
		caps  []mir.Capture
		table []capture
		cur   uint
	)

	for _, fv := range n.FreeVars {
		local, ok := fl.locals[fv]
		if !ok {
			fl.diag(diag.UnresolvedVariable, n.Span(), "closure captures unresolved variable %q", fv)
			continue
		}

		ty := fl.b.Function().Local(local).Type
		size := fl.lw.layouts.SizeOf(ty)

		cur = alignUp(cur, capAlign(size))
		caps = append(caps, mir.Capture{Local: local, Offset: cur})
		table = append(table, capture{name: fv, offset: cur, ty: ty})
		cur += size
	}

	fl.b.Emit(mir.ClosureCreate{Dst: dst, FuncName: name, Captures: caps, Heap: heap})
	fl.lw.lowerClosureFunc(name, n, table)

	return heap
}

// lowerClosureFunc generates the lifted closure body: `__env: Ptr` first,
// then the declared parameters; every capture rebinds through LoadCapture
// before the body runs.
func (lw *Lowerer) lowerClosureFunc(name string, n *ast.ClosureExpr, caps []capture) {
	fnTy := lw.result.NodeType[n.NodeId()]
	fnTy = lw.tc.Resolve(fnTy)

	retTy := mir.Scalar(mir.Void)
	var paramTys []typecheck.Type

	if fnTy.Kind == typecheck.KFn {
		retTy = mirTypeWith(lw.layouts, lw.tc, fnTy.FnResult())
		paramTys = fnTy.FnParams()
	}

	b := mir.NewBuilder(name, retTy)
	fl := &funcLower{
		lw: lw, fnName: name, b: b, locals: map[string]mir.LocalId{},
		hiddenParams: map[hidden.Key]mir.LocalId{},
		resIds:       map[string]mir.LocalId{},
		heapClosures: map[string]mir.LocalId{},

		loopStack:      stack.NewStack[loopFrame](),
		ensureStack:    stack.NewStack[mir.BlockId](),
		pendingCleanup: stack.NewStack[mir.BlockId](),
	}

	env := b.NewLocal("__env", mir.Scalar(mir.PtrTag), true)

	for i, p := range n.Params {
		ty := mir.Scalar(mir.PtrTag)
		if i < len(paramTys) {
			ty = mirTypeWith(lw.layouts, lw.tc, paramTys[i])
		}

		fl.locals[p.Name] = b.NewLocal(p.Name, ty, true)
	}

	for _, c := range caps {
		id := b.NewLocal(c.name, c.ty, false)
		b.Emit(mir.LoadCapture{Dst: id, EnvPtr: env, Offset: c.offset})
		fl.locals[c.name] = id
	}

	result := fl.lowerExpr(n.Body)

	if retTy.Tag() == mir.Void {
		fl.b.Terminate(mir.Return{})
	} else {
		fl.b.Terminate(mir.Return{Value: &result})
	}

	lw.prog.Functions = append(lw.prog.Functions, b.Function())
}

// lowerSpawnClosure lifts a spawn body into a closure function with a heap
// environment: the task may outlive the spawning frame, so its captures
// always escape. Captures are the body's free variables that resolve
// to locals of the spawning function, in sorted order for determinism.
func (fl *funcLower) lowerSpawnClosure(n *ast.SpawnStmt) mir.LocalId {
	free := freeIdents(n.Body)

	var names []string

	for name := range free {
		if _, ok := fl.locals[name]; ok {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	name := fl.lw.nextClosureName(fl.fnName)

	var (
		caps  []mir.Capture
		table []capture
		cur   uint
	)

	for _, fv := range names {
		local := fl.locals[fv]
		ty := fl.b.Function().Local(local).Type
		size := fl.lw.layouts.SizeOf(ty)

		cur = alignUp(cur, capAlign(size))
		caps = append(caps, mir.Capture{Local: local, Offset: cur})
		table = append(table, capture{name: fv, offset: cur, ty: ty})
		cur += size
	}

	dst := fl.newTemp(mir.Scalar(mir.PtrTag))
	fl.b.Emit(mir.ClosureCreate{Dst: dst, FuncName: name, Captures: caps, Heap: true})

	fl.lw.lowerSpawnFunc(name, n.Body, table)

	return dst
}

func (lw *Lowerer) lowerSpawnFunc(name string, body []ast.Stmt, caps []capture) {
	b := mir.NewBuilder(name, mir.Scalar(mir.Void))
	fl := &funcLower{
		lw: lw, fnName: name, b: b, locals: map[string]mir.LocalId{},
		hiddenParams: map[hidden.Key]mir.LocalId{},
		resIds:       map[string]mir.LocalId{},
		heapClosures: map[string]mir.LocalId{},

		loopStack:      stack.NewStack[loopFrame](),
		ensureStack:    stack.NewStack[mir.BlockId](),
		pendingCleanup: stack.NewStack[mir.BlockId](),
	}

	env := b.NewLocal("__env", mir.Scalar(mir.PtrTag), true)

	for _, c := range caps {
		id := b.NewLocal(c.name, c.ty, false)
		b.Emit(mir.LoadCapture{Dst: id, EnvPtr: env, Offset: c.offset})
		fl.locals[c.name] = id
	}

	fl.lowerBlock(body)
	fl.finishWithReturn(mir.Scalar(mir.Void))

	lw.prog.Functions = append(lw.prog.Functions, b.Function())
}

// freeIdents collects every identifier referenced anywhere in a statement
// block. The caller intersects the set with its own locals; names bound
// inside the block shadow harmlessly (capturing them loads a dead slot).
func freeIdents(stmts []ast.Stmt) map[string]bool {
	out := make(map[string]bool)
	var walkStmts func([]ast.Stmt)
	var walkExpr func(ast.Expr)

	walkExpr = func(e ast.Expr) {
		switch n := e.(type) {
		case nil:
		case *ast.Ident:
			out[n.Name] = true
		case *ast.BinaryExpr:
			walkExpr(n.Lhs)
			walkExpr(n.Rhs)
		case *ast.UnaryExpr:
			walkExpr(n.Expr)
		case *ast.CallExpr:
			walkExpr(n.Callee)
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *ast.MethodCallExpr:
			walkExpr(n.Receiver)
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *ast.FieldExpr:
			walkExpr(n.Base)
		case *ast.IndexExpr:
			walkExpr(n.Base)
			walkExpr(n.Index)
		case *ast.RangeExpr:
			walkExpr(n.Start)
			walkExpr(n.End)
		case *ast.ClosureExpr:
			walkExpr(n.Body)
		case *ast.TryExpr:
			walkExpr(n.Inner)
		case *ast.GuardLetExpr:
			walkExpr(n.Scrut)
			walkStmts(n.Diverge)
		case *ast.MatchExpr:
			walkExpr(n.Scrut)
			for _, arm := range n.Arms {
				walkExpr(arm.Guard)
				walkExpr(arm.Value)
			}
		case *ast.StructLitExpr:
			for _, f := range n.Fields {
				walkExpr(f.Value)
			}
		case *ast.EnumCtorExpr:
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *ast.IterChainExpr:
			walkExpr(n.Source)
			for _, a := range n.Adapters {
				walkExpr(a.Arg)
			}
		case *ast.BlockExpr:
			walkStmts(n.Stmts)
			walkExpr(n.Result)
		}
	}

	walkStmts = func(stmts []ast.Stmt) {
		for _, s := range stmts {
			switch n := s.(type) {
			case *ast.LetStmt:
				walkExpr(n.Init)
			case *ast.ConstStmt:
				walkExpr(n.Init)
			case *ast.AssignStmt:
				walkExpr(n.Target)
				walkExpr(n.Value)
			case *ast.ExprStmt:
				walkExpr(n.Expr)
			case *ast.IfStmt:
				walkExpr(n.Cond)
				walkStmts(n.Then)
				walkStmts(n.Otherwise)
			case *ast.WhileStmt:
				walkExpr(n.Cond)
				walkStmts(n.Body)
			case *ast.WhileIsStmt:
				walkExpr(n.Scrut)
				walkStmts(n.Body)
			case *ast.ForRangeStmt:
				walkExpr(n.Start)
				walkExpr(n.End)
				walkStmts(n.Body)
			case *ast.ForEachStmt:
				walkExpr(n.Collection)
				walkStmts(n.Body)
			case *ast.LoopStmt:
				walkStmts(n.Body)
			case *ast.MatchStmt:
				walkExpr(n.Scrut)
				for _, arm := range n.Arms {
					walkExpr(arm.Guard)
					walkStmts(arm.Body)
				}
			case *ast.BreakStmt:
				walkExpr(n.Value)
			case *ast.ReturnStmt:
				walkExpr(n.Value)
			case *ast.EnsureStmt:
				walkStmts(n.Body)
				walkStmts(n.Handler)
			case *ast.UsingStmt:
				walkExpr(n.Workers)
				walkStmts(n.Body)
			case *ast.SelectStmt:
				for _, arm := range n.Arms {
					walkExpr(arm.Channel)
					walkExpr(arm.SendVal)
					walkStmts(arm.Body)
				}
				walkStmts(n.DefaultBody)
			case *ast.SpawnStmt:
				walkStmts(n.Body)
			}
		}
	}

	walkStmts(stmts)

	return out
}
