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
	"github.com/rask-lang/raskc/pkg/diag"
	"github.com/rask-lang/raskc/pkg/mir"
	"github.com/rask-lang/raskc/pkg/typecheck"
	"github.com/rask-lang/raskc/pkg/util/source"
)

// lowerBlock lowers a statement list inside a fresh lexical scope. The
// scope epilogue emits the ResourceScopeCheck for this depth and unwinds
// any ensure registrations the scope opened, in LIFO order.
func (fl *funcLower) lowerBlock(stmts []ast.Stmt) {
	fl.enterScope()

	for _, s := range stmts {
		fl.lowerStmt(s)
	}

	fl.exitScope()
}

func (fl *funcLower) enterScope() {
	fl.scopeDepth++
	fl.cleanupMark = append(fl.cleanupMark, fl.pendingCleanup.Len())
	fl.closureMark = append(fl.closureMark, closureFrame{})
}

// exitScope emits the scope epilogue: the resource check for this depth,
// then one EnsurePop + jump through each cleanup block the scope opened
// (most recent first), then ClosureDrop for heap environments the scope
// still owns. Cleanup blocks receive their normal-path terminator here;
// on the early-return path their statements are inlined by the code
// generator and the terminator is ignored.
func (fl *funcLower) exitScope() {
	mark := fl.cleanupMark[len(fl.cleanupMark)-1]
	fl.cleanupMark = fl.cleanupMark[:len(fl.cleanupMark)-1]

	fl.b.Emit(mir.ResourceScopeCheck{ScopeDepth: fl.scopeDepth})

	for fl.pendingCleanup.Len() > mark {
		cb := fl.pendingCleanup.Pop()
		fl.ensureStack.Pop()

		fl.b.Emit(mir.EnsurePop{})

		cont := fl.b.NewBlock()
		fl.b.Terminate(mir.Goto{Target: cb})
		fl.b.SetBlock(cb)
		fl.gotoIfOpen(cont)
		fl.b.SetBlock(cont)
	}

	frame := fl.closureMark[len(fl.closureMark)-1]
	fl.closureMark = fl.closureMark[:len(fl.closureMark)-1]

	for _, name := range frame.names {
		if id, ok := fl.heapClosures[name]; ok {
			fl.b.Emit(mir.ClosureDrop{Closure: mir.OperandLocal(id)})
			delete(fl.heapClosures, name)
		}
	}

	fl.scopeDepth--
}

func (fl *funcLower) lowerStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.LetStmt:
		fl.emitLoc(n.Span)
		fl.lowerBinding(n.Name, n.Init)
	case *ast.ConstStmt:
		fl.emitLoc(n.Span)
		fl.lowerBinding(n.Name, n.Init)
	case *ast.AssignStmt:
		fl.emitLoc(n.Span)
		fl.lowerAssign(n)
	case *ast.ExprStmt:
		fl.emitLoc(n.Span)
		fl.lowerExpr(n.Expr)
	case *ast.IfStmt:
		fl.lowerIf(n)
	case *ast.WhileStmt:
		fl.lowerWhile(n)
	case *ast.WhileIsStmt:
		fl.lowerWhileIs(n)
	case *ast.ForRangeStmt:
		fl.lowerForRange(n)
	case *ast.ForEachStmt:
		fl.lowerForEach(n)
	case *ast.LoopStmt:
		fl.lowerLoop(n)
	case *ast.MatchStmt:
		fl.lowerMatchStmt(n)
	case *ast.BreakStmt:
		fl.lowerBreak(n)
	case *ast.ContinueStmt:
		fl.lowerContinue(n)
	case *ast.ReturnStmt:
		fl.emitLoc(n.Span)
		fl.lowerReturn(n)
	case *ast.EnsureStmt:
		fl.lowerEnsure(n)
	case *ast.UsingStmt:
		fl.lowerUsing(n)
	case *ast.SelectStmt:
		fl.lowerSelect(n)
	case *ast.SpawnStmt:
		fl.lowerSpawn(n)
	}
}

// lowerBinding handles Let and Const: both allocate a named local and
// evaluate the initializer into it. The move-vs-borrow distinction between
// the two forms is the ownership checker's concern, not MIR's.
func (fl *funcLower) lowerBinding(name string, init ast.Expr) {
	ty := fl.mirTypeOf(init)
	id := fl.b.NewLocal(name, ty, false)

	if cl, ok := init.(*ast.ClosureExpr); ok {
		if fl.lowerClosureCreate(id, cl) {
			fl.heapClosures[name] = id
			frame := &fl.closureMark[len(fl.closureMark)-1]
			frame.names = append(frame.names, name)
		}
	} else {
		fl.lowerInto(id, init)
	}

	fl.locals[name] = id

	t := fl.checkerType(init)
	if fl.lw.tc.IsResourceType(t) {
		fl.b.MarkResource(id)

		resId := fl.b.NewLocal(name+"__res", mir.Scalar(mir.I64), false)
		fl.b.Emit(mir.ResourceRegister{Dst: resId, TypeName: t.Named, ScopeDepth: fl.scopeDepth})
		fl.resIds[name] = resId
	}
}

func (fl *funcLower) lowerAssign(n *ast.AssignStmt) {
	switch target := n.Target.(type) {
	case *ast.Ident:
		id, ok := fl.locals[target.Name]
		if !ok {
			fl.diag(diag.UnresolvedVariable, target.Span(), "assignment to unresolved variable %q", target.Name)
			return
		}

		fl.lowerInto(id, n.Value)
	case *ast.FieldExpr:
		fl.lowerFieldStore(target, n.Value)
	case *ast.IndexExpr:
		fl.lowerIndexStore(target, n.Value)
	default:
		fl.diag(diag.InvalidConstruct, n.Span, "assignment target must be a variable, field, or index")
	}
}

// lowerFieldStore writes through `base.field = value`: take the base's
// address, then Store at the field's byte offset.
func (fl *funcLower) lowerFieldStore(target *ast.FieldExpr, value ast.Expr) {
	base := fl.lowerExprLocal(target.Base)
	val := fl.lowerExpr(value)

	baseTy := fl.mirTypeOf(target.Base)
	if baseTy.Tag() != mir.StructTag {
		fl.diag(diag.InvalidConstruct, target.Span(), "field store through non-struct value")
		return
	}

	layout := fl.lw.layouts.Program().Structs[baseTy.Layout()]

	idx := layout.FieldIndex(target.Field)
	if idx < 0 {
		fl.diag(diag.UnresolvedVariable, target.Span(), "no field %q in %s", target.Field, layout.Name)
		return
	}

	addr := fl.newTemp(mir.Scalar(mir.PtrTag))
	fl.b.Emit(mir.Assign{Dst: addr, Rvalue: mir.Ref{Arg: base}})
	fl.b.Emit(mir.Store{Addr: mir.OperandLocal(addr), Offset: layout.Fields[idx].Offset, Value: val})
}

func (fl *funcLower) lowerIndexStore(target *ast.IndexExpr, value ast.Expr) {
	baseTy := fl.checkerType(target.Base)
	val := fl.lowerExpr(value)
	idx := fl.lowerExpr(target.Index)

	switch {
	case baseTy.Kind == typecheck.KArray:
		base := fl.lowerExprLocal(target.Base)
		elem := fl.mirTypeOf(target)
		fl.b.Emit(mir.ArrayStore{Base: base, Index: idx, ElemSize: fl.lw.layouts.SizeOf(elem), Value: val})
	case baseTy.Kind == typecheck.KNamed && baseTy.Named == "Vec":
		base := fl.lowerExpr(target.Base)
		fl.b.Emit(mir.Call{Func: "Vec_set", Args: []mir.Operand{base, idx, val}})
	case baseTy.Kind == typecheck.KNamed && baseTy.Named == "Map":
		base := fl.lowerExpr(target.Base)
		fl.b.Emit(mir.Call{Func: "Map_insert", Args: []mir.Operand{base, idx, val}})
	default:
		fl.diag(diag.InvalidConstruct, target.Span(), "indexed store into non-indexable value")
	}
}

// lowerIf creates then/else/join up front, branches from the current block,
// and fills each side.
func (fl *funcLower) lowerIf(n *ast.IfStmt) {
	cond := fl.lowerExpr(n.Cond)

	then := fl.b.NewBlock()
	els := fl.b.NewBlock()
	join := fl.b.NewBlock()

	fl.b.Terminate(mir.Branch{Cond: cond, Then: then, Else: els})

	fl.b.SetBlock(then)
	fl.lowerBlock(n.Then)
	fl.gotoIfOpen(join)

	fl.b.SetBlock(els)
	fl.lowerBlock(n.Otherwise)
	fl.gotoIfOpen(join)

	fl.b.SetBlock(join)
}

func (fl *funcLower) lowerWhile(n *ast.WhileStmt) {
	check := fl.b.NewBlock()
	body := fl.b.NewBlock()
	exit := fl.b.NewBlock()

	fl.b.Terminate(mir.Goto{Target: check})

	fl.b.SetBlock(check)
	cond := fl.lowerExpr(n.Cond)
	fl.b.Terminate(mir.Branch{Cond: cond, Then: body, Else: exit})

	fl.pushLoop(loopFrame{label: n.Label, continueBlock: check, exitBlock: exit})
	fl.b.SetBlock(body)
	fl.lowerBlock(n.Body)
	fl.gotoIfOpen(check)
	fl.popLoop()

	fl.b.SetBlock(exit)
}

// lowerWhileIs is `while expr is Pattern { body }`: the check block tests
// the scrutinee's variant; payload locals bind at the top of the body.
func (fl *funcLower) lowerWhileIs(n *ast.WhileIsStmt) {
	check := fl.b.NewBlock()
	body := fl.b.NewBlock()
	exit := fl.b.NewBlock()

	fl.b.Terminate(mir.Goto{Target: check})

	fl.b.SetBlock(check)
	scrut := fl.lowerExprLocal(n.Scrut)
	scrutTy := fl.checkerType(n.Scrut)
	cond := fl.patternTest(scrut, scrutTy, n.Pattern)
	fl.b.Terminate(mir.Branch{Cond: cond, Then: body, Else: exit})

	fl.pushLoop(loopFrame{label: n.Label, continueBlock: check, exitBlock: exit})
	fl.b.SetBlock(body)
	saved := fl.bindPattern(scrut, scrutTy, n.Pattern)
	fl.lowerBlock(n.Body)
	fl.restoreBindings(saved)
	fl.gotoIfOpen(check)
	fl.popLoop()

	fl.b.SetBlock(exit)
}

func (fl *funcLower) lowerForRange(n *ast.ForRangeStmt) {
	counterTy := fl.mirTypeOf(n.Start)
	counter := fl.b.NewLocal(n.Var, counterTy, false)
	end := fl.newTemp(counterTy)

	fl.lowerInto(counter, n.Start)
	fl.lowerInto(end, n.End)

	check := fl.b.NewBlock()
	body := fl.b.NewBlock()
	inc := fl.b.NewBlock()
	exit := fl.b.NewBlock()

	fl.b.Terminate(mir.Goto{Target: check})

	fl.b.SetBlock(check)
	op := mir.Lt
	if n.Inclusive {
		op = mir.Le
	}

	cond := fl.newTemp(mir.Scalar(mir.Bool))
	fl.b.Emit(mir.Assign{Dst: cond, Rvalue: mir.BinaryOp{Op: op, Lhs: mir.OperandLocal(counter), Rhs: mir.OperandLocal(end)}})
	fl.b.Terminate(mir.Branch{Cond: mir.OperandLocal(cond), Then: body, Else: exit})

	fl.pushLoop(loopFrame{label: n.Label, continueBlock: inc, exitBlock: exit})
	fl.b.SetBlock(body)
	savedVar, hadVar := fl.locals[n.Var]
	fl.locals[n.Var] = counter
	fl.lowerBlock(n.Body)
	fl.restoreLocal(n.Var, savedVar, hadVar)
	fl.gotoIfOpen(inc)
	fl.popLoop()

	fl.b.SetBlock(inc)
	fl.b.Emit(mir.Assign{Dst: counter, Rvalue: mir.BinaryOp{
		Op: mir.Add, Lhs: mir.OperandLocal(counter), Rhs: mir.OperandConst(counterTy, 1),
	}})
	fl.b.Terminate(mir.Goto{Target: check})

	fl.b.SetBlock(exit)
}

// lowerForEach handles `for x in vec`, `for x in pool`, `for (h, v) in
// pool.entries()`, and fused iterator chains. Pool iteration
// snapshots the handle set first, so the loop owns its own Vec of handles.
func (fl *funcLower) lowerForEach(n *ast.ForEachStmt) {
	if chain, ok := n.Collection.(*ast.IterChainExpr); ok && fusable(chain) {
		fl.lowerFusedForEach(n, chain)
		return
	}

	collTy := fl.checkerType(n.Collection)
	coll := fl.lowerExpr(n.Collection)

	isPool := collTy.Kind == typecheck.KNamed && collTy.Named == "Pool"

	seq := coll
	if isPool {
		handles := fl.newTemp(mir.Scalar(mir.PtrTag))
		fl.b.Emit(mir.Call{Dst: &handles, Func: "Pool_handles", Args: []mir.Operand{coll}})
		seq = mir.OperandLocal(handles)
	}

	length := fl.newTemp(mir.Scalar(mir.U64))
	fl.b.Emit(mir.Call{Dst: &length, Func: "Vec_len", Args: []mir.Operand{seq}})

	idxTy := mir.Scalar(mir.U64)
	idx := fl.newTemp(idxTy)
	fl.b.Emit(mir.Assign{Dst: idx, Rvalue: mir.Use{Arg: mir.OperandConst(idxTy, 0)}})

	check := fl.b.NewBlock()
	body := fl.b.NewBlock()
	inc := fl.b.NewBlock()
	exit := fl.b.NewBlock()

	fl.b.Terminate(mir.Goto{Target: check})

	fl.b.SetBlock(check)
	cond := fl.newTemp(mir.Scalar(mir.Bool))
	fl.b.Emit(mir.Assign{Dst: cond, Rvalue: mir.BinaryOp{Op: mir.Lt, Lhs: mir.OperandLocal(idx), Rhs: mir.OperandLocal(length)}})
	fl.b.Terminate(mir.Branch{Cond: mir.OperandLocal(cond), Then: body, Else: exit})

	fl.pushLoop(loopFrame{label: n.Label, continueBlock: inc, exitBlock: exit})
	fl.b.SetBlock(body)

	elem := fl.newTemp(fl.elemType(collTy, isPool, n.Entries))
	fl.b.Emit(mir.Call{Dst: &elem, Func: "Vec_get", Args: []mir.Operand{seq, mir.OperandLocal(idx)}})

	var restore []savedBinding

	switch {
	case isPool && n.Entries:
		// elem is the handle; fetch the value through the checked accessor.
		val := fl.newTemp(mir.Scalar(mir.I64))
		fl.b.Emit(mir.PoolCheckedAccess{Dst: val, Pool: coll, Handle: mir.OperandLocal(elem)})
		restore = fl.bindLocals(map[string]mir.LocalId{n.Var: elem, n.ValueVar: val})
	case isPool:
		// `for x in pool` iterates values; the handle stays loop-internal.
		val := fl.newTemp(mir.Scalar(mir.I64))
		fl.b.Emit(mir.PoolCheckedAccess{Dst: val, Pool: coll, Handle: mir.OperandLocal(elem)})
		restore = fl.bindLocals(map[string]mir.LocalId{n.Var: val})
	default:
		restore = fl.bindLocals(map[string]mir.LocalId{n.Var: elem})
	}

	fl.lowerBlock(n.Body)
	fl.restoreBindings(restore)
	fl.gotoIfOpen(inc)
	fl.popLoop()

	fl.b.SetBlock(inc)
	fl.b.Emit(mir.Assign{Dst: idx, Rvalue: mir.BinaryOp{Op: mir.Add, Lhs: mir.OperandLocal(idx), Rhs: mir.OperandConst(idxTy, 1)}})
	fl.b.Terminate(mir.Goto{Target: check})

	fl.b.SetBlock(exit)
}

func (fl *funcLower) elemType(collTy typecheck.Type, isPool, entries bool) mir.Type {
	if isPool {
		// Handles are machine words.
		return mir.Scalar(mir.I64)
	}

	if collTy.Kind == typecheck.KNamed && len(collTy.Args) == 1 {
		return mirTypeWith(fl.lw.layouts, fl.lw.tc, collTy.Args[0])
	}

	return mir.Scalar(mir.I64)
}

func (fl *funcLower) lowerLoop(n *ast.LoopStmt) {
	body := fl.b.NewBlock()
	exit := fl.b.NewBlock()

	fl.b.Terminate(mir.Goto{Target: body})

	fl.pushLoop(loopFrame{label: n.Label, continueBlock: body, exitBlock: exit})
	fl.b.SetBlock(body)
	fl.lowerBlock(n.Body)
	fl.gotoIfOpen(body)
	fl.popLoop()

	fl.b.SetBlock(exit)
}

// lowerMatchStmt emits the pattern-by-pattern linear cascade of tag
// comparisons: each arm tests in its own check block, guards branch
// through a mini-check block, and all arm bodies join at a single exit.
func (fl *funcLower) lowerMatchStmt(n *ast.MatchStmt) {
	scrut := fl.lowerExprLocal(n.Scrut)
	scrutTy := fl.checkerType(n.Scrut)

	join := fl.b.NewBlock()

	for _, arm := range n.Arms {
		armBlock := fl.b.NewBlock()
		next := fl.b.NewBlock()

		cond := fl.patternTest(scrut, scrutTy, arm.Pattern)
		fl.b.Terminate(mir.Branch{Cond: cond, Then: armBlock, Else: next})

		fl.b.SetBlock(armBlock)
		saved := fl.bindPattern(scrut, scrutTy, arm.Pattern)

		if arm.Guard != nil {
			guardBody := fl.b.NewBlock()
			guard := fl.lowerExpr(arm.Guard)
			fl.b.Terminate(mir.Branch{Cond: guard, Then: guardBody, Else: next})
			fl.b.SetBlock(guardBody)
		}

		fl.lowerBlock(arm.Body)
		fl.restoreBindings(saved)
		fl.gotoIfOpen(join)

		fl.b.SetBlock(next)
	}

	// No arm matched: fall through to the join.
	fl.gotoIfOpen(join)
	fl.b.SetBlock(join)
}

func (fl *funcLower) lowerBreak(n *ast.BreakStmt) {
	frame, ok := fl.findLoop(n.Label)
	if !ok {
		fl.diag(diag.InvalidConstruct, n.Span, "break outside of a loop")
		return
	}

	if n.Value != nil && frame.resultLocal.HasValue() {
		fl.lowerInto(frame.resultLocal.Unwrap(), n.Value)
	}

	fl.b.Terminate(mir.Goto{Target: frame.exitBlock})
	fl.b.SetBlock(fl.b.NewBlock())
}

func (fl *funcLower) lowerContinue(n *ast.ContinueStmt) {
	frame, ok := fl.findLoop(n.Label)
	if !ok {
		fl.diag(diag.InvalidConstruct, n.Span, "continue outside of a loop")
		return
	}

	fl.b.Terminate(mir.Goto{Target: frame.continueBlock})
	fl.b.SetBlock(fl.b.NewBlock())
}

// lowerReturn emits Return, or CleanupReturn with the live ensure blocks
// in LIFO order when any EnsurePush registration is still active.
func (fl *funcLower) lowerReturn(n *ast.ReturnStmt) {
	var value *mir.Operand

	if n.Value != nil {
		op := fl.lowerExprHeap(n.Value)
		value = &op

		// A returned closure environment escapes; it must not be dropped
		// by the scope epilogue.
		if id, ok := n.Value.(*ast.Ident); ok {
			delete(fl.heapClosures, id.Name)
		}
	}

	fl.emitReturnOp(value)
	fl.b.SetBlock(fl.b.NewBlock())
}

// lowerEnsure registers a cleanup block: the ensure body lowers into the
// cleanup block itself, execution continues immediately at the
// continuation, and the cleanup runs either inlined before an early
// CleanupReturn or jumped through at normal scope exit. An `else |e|` handler lowers after the body inside the
// same cleanup block, with the error binding as a fresh local.
func (fl *funcLower) lowerEnsure(n *ast.EnsureStmt) {
	cleanup := fl.b.NewCleanupBlock()
	cont := fl.b.NewBlock()

	fl.b.Emit(mir.EnsurePush{CleanupBlock: cleanup})
	fl.b.Terminate(mir.Goto{Target: cont})

	fl.b.SetBlock(cleanup)

	for _, s := range n.Body {
		fl.lowerStmt(s)
	}

	if n.HasHandler {
		errLocal := fl.b.NewLocal(n.ErrName, mir.Scalar(mir.StringTag), false)
		saved, had := fl.locals[n.ErrName]
		fl.locals[n.ErrName] = errLocal

		for _, s := range n.Handler {
			fl.lowerStmt(s)
		}

		fl.restoreLocal(n.ErrName, saved, had)
	}

	fl.ensureStack.Push(cleanup)
	fl.pendingCleanup.Push(cleanup)

	fl.b.SetBlock(cont)
}

// lowerUsing brackets the body with the runtime init/shutdown pair.
func (fl *funcLower) lowerUsing(n *ast.UsingStmt) {
	workers := fl.lowerExpr(n.Workers)
	fl.b.Emit(mir.Call{Func: "rask_runtime_init", Args: []mir.Operand{workers}})

	fl.lowerBlock(n.Body)

	fl.b.Emit(mir.Call{Func: "rask_runtime_shutdown", Args: nil})
}

// lowerSelect lowers arm-by-arm try-receive/try-send polling: each
// pass polls every arm once; if none is ready and no default exists, a
// short sleep hook runs and polling repeats. Priority selects poll in
// declaration order; the fair rotation of non-priority selects is the
// runtime scheduler's concern once the try-operation helpers are entered.
func (fl *funcLower) lowerSelect(n *ast.SelectStmt) {
	if len(n.Arms) == 0 && !n.HasDefault {
		fl.diag(diag.InvalidConstruct, n.Span, "select must have at least one arm")
		return
	}

	poll := fl.b.NewBlock()
	exit := fl.b.NewBlock()

	fl.b.Terminate(mir.Goto{Target: poll})
	fl.b.SetBlock(poll)

	for _, arm := range n.Arms {
		armBody := fl.b.NewBlock()
		next := fl.b.NewBlock()

		ch := fl.lowerExpr(arm.Channel)
		ok := fl.newTemp(mir.Scalar(mir.Bool))

		var payload mir.LocalId

		if arm.IsSend {
			val := fl.lowerExpr(arm.SendVal)
			fl.b.Emit(mir.Call{Dst: &ok, Func: "Channel_try_send", Args: []mir.Operand{ch, val}})
		} else {
			payload = fl.newTemp(fl.channelElemType(arm.Channel))
			slot := fl.newTemp(mir.Scalar(mir.PtrTag))
			fl.b.Emit(mir.Assign{Dst: slot, Rvalue: mir.Ref{Arg: payload}})
			fl.b.Emit(mir.Call{Dst: &ok, Func: "Channel_try_recv", Args: []mir.Operand{ch, mir.OperandLocal(slot)}})
		}

		fl.b.Terminate(mir.Branch{Cond: mir.OperandLocal(ok), Then: armBody, Else: next})

		fl.b.SetBlock(armBody)

		var restore []savedBinding
		if !arm.IsSend && arm.BindName != "" {
			restore = fl.bindLocals(map[string]mir.LocalId{arm.BindName: payload})
		}

		fl.lowerBlock(arm.Body)
		fl.restoreBindings(restore)
		fl.gotoIfOpen(exit)

		fl.b.SetBlock(next)
	}

	if n.HasDefault {
		fl.lowerBlock(n.DefaultBody)
		fl.gotoIfOpen(exit)
	} else {
		fl.b.Emit(mir.Call{Func: "rask_task_sleep", Args: []mir.Operand{mir.OperandConst(mir.Scalar(mir.I64), 1)}})
		fl.b.Terminate(mir.Goto{Target: poll})
	}

	fl.b.SetBlock(exit)
}

func (fl *funcLower) channelElemType(ch ast.Expr) mir.Type {
	t := fl.checkerType(ch)
	if t.Kind == typecheck.KNamed && len(t.Args) == 1 {
		return mirTypeWith(fl.lw.layouts, fl.lw.tc, t.Args[0])
	}

	return mir.Scalar(mir.I64)
}

// lowerSpawn lifts the spawn body to a closure function, allocates its
// environment on the heap (the task outlives the spawning frame), and
// registers the resulting task handle with the resource tracker at the
// current scope depth -- task handles are affine.
func (fl *funcLower) lowerSpawn(n *ast.SpawnStmt) {
	clo := fl.lowerSpawnClosure(n)

	handleTy := mir.Scalar(mir.I64)

	var handle mir.LocalId
	if n.Name != "" {
		handle = fl.b.NewLocal(n.Name, handleTy, false)
	} else {
		handle = fl.newTemp(handleTy)
	}

	fl.b.Emit(mir.Call{Dst: &handle, Func: "rask_spawn", Args: []mir.Operand{mir.OperandLocal(clo)}})
	fl.b.MarkResource(handle)

	resId := fl.b.NewLocal(n.Name+"__res", mir.Scalar(mir.I64), false)
	fl.b.Emit(mir.ResourceRegister{Dst: resId, TypeName: "TaskHandle", ScopeDepth: fl.scopeDepth})

	if n.Name != "" {
		fl.locals[n.Name] = handle
		fl.resIds[n.Name] = resId
	}
}

// ============================================================================
// Pattern helpers
// ============================================================================

// patternTest emits the code testing a scrutinee against one pattern in
// the current block and returns the resulting bool operand. User enums
// compare EnumTag against the variant's discriminant; the built-in
// Option/Result enums are runtime handles and test through their ABI
// helpers instead.
func (fl *funcLower) patternTest(scrut mir.LocalId, scrutTy typecheck.Type, pat ast.Pattern) mir.Operand {
	if pat.Wildcard {
		return mir.OperandConst(mir.Scalar(mir.Bool), 1)
	}

	scrutTy = fl.lw.tc.Resolve(scrutTy)

	switch scrutTy.Kind {
	case typecheck.KOption:
		ok := fl.newTemp(mir.Scalar(mir.Bool))
		fl.b.Emit(mir.Call{Dst: &ok, Func: "Option_is_some", Args: []mir.Operand{mir.OperandLocal(scrut)}})

		if pat.Variant == "None" {
			inv := fl.newTemp(mir.Scalar(mir.Bool))
			fl.b.Emit(mir.Assign{Dst: inv, Rvalue: mir.UnaryOp{Op: mir.Not, Arg: mir.OperandLocal(ok)}})

			return mir.OperandLocal(inv)
		}

		return mir.OperandLocal(ok)
	case typecheck.KResult:
		ok := fl.newTemp(mir.Scalar(mir.Bool))
		fl.b.Emit(mir.Call{Dst: &ok, Func: "Result_is_ok", Args: []mir.Operand{mir.OperandLocal(scrut)}})

		if pat.Variant == "Err" {
			inv := fl.newTemp(mir.Scalar(mir.Bool))
			fl.b.Emit(mir.Assign{Dst: inv, Rvalue: mir.UnaryOp{Op: mir.Not, Arg: mir.OperandLocal(ok)}})

			return mir.OperandLocal(inv)
		}

		return mir.OperandLocal(ok)
	}

	idx, ok := fl.variantIndex(scrutTy, pat.Variant)
	if !ok {
		fl.diag(diag.UnresolvedVariable, source0(), "no variant %q on %s", pat.Variant, scrutTy)
		return mir.OperandConst(mir.Scalar(mir.Bool), 0)
	}

	tagTy := mir.Scalar(mir.U32)
	tag := fl.newTemp(tagTy)

	if fl.b.Function().Local(scrut).Type.Tag() == mir.EnumTag {
		fl.b.Emit(mir.Assign{Dst: tag, Rvalue: mir.EnumTagOf{Arg: mir.OperandLocal(scrut)}})
	} else {
		// Still-generic enum value: an opaque handle whose tag lives behind
		// the runtime helper until monomorphization resolves the layout.
		fl.b.Emit(mir.Call{Dst: &tag, Func: "Enum_tag", Args: []mir.Operand{mir.OperandLocal(scrut)}})
	}

	cond := fl.newTemp(mir.Scalar(mir.Bool))
	fl.b.Emit(mir.Assign{Dst: cond, Rvalue: mir.BinaryOp{
		Op: mir.Eq, Lhs: mir.OperandLocal(tag), Rhs: mir.OperandConst(tagTy, uint64(idx)),
	}})

	return mir.OperandLocal(cond)
}

// bindPattern allocates payload locals for a matched pattern's bindings in
// the current block. Returns the shadowed bindings to restore afterwards.
func (fl *funcLower) bindPattern(scrut mir.LocalId, scrutTy typecheck.Type, pat ast.Pattern) []savedBinding {
	if pat.Wildcard || len(pat.Bindings) == 0 {
		return nil
	}

	scrutTy = fl.lw.tc.Resolve(scrutTy)
	bound := make(map[string]mir.LocalId, len(pat.Bindings))

	switch scrutTy.Kind {
	case typecheck.KOption:
		payload := fl.b.NewLocal(pat.Bindings[0], mirTypeWith(fl.lw.layouts, fl.lw.tc, scrutTy.Args[0]), false)
		fl.b.Emit(mir.Call{Dst: &payload, Func: "Option_unwrap", Args: []mir.Operand{mir.OperandLocal(scrut)}})
		bound[pat.Bindings[0]] = payload
	case typecheck.KResult:
		helper := "Result_unwrap"
		side := scrutTy.Args[0]

		if pat.Variant == "Err" {
			helper = "Result_unwrap_err"
			side = scrutTy.Args[1]
		}

		payload := fl.b.NewLocal(pat.Bindings[0], mirTypeWith(fl.lw.layouts, fl.lw.tc, side), false)
		fl.b.Emit(mir.Call{Dst: &payload, Func: helper, Args: []mir.Operand{mir.OperandLocal(scrut)}})
		bound[pat.Bindings[0]] = payload
	default:
		idx, ok := fl.variantIndex(scrutTy, pat.Variant)
		if !ok {
			return nil
		}

		info := fl.lw.tc.Enums()[scrutTy.Named]
		variant := info.Variants[idx]
		enumLocal := fl.b.Function().Local(scrut).Type.Tag() == mir.EnumTag

		for i, name := range pat.Bindings {
			if i >= len(variant.Fields) {
				break
			}

			payload := fl.b.NewLocal(name, mirTypeWith(fl.lw.layouts, fl.lw.tc, variant.Fields[i].Type), false)

			if enumLocal {
				fl.b.Emit(mir.Assign{Dst: payload, Rvalue: mir.VariantFieldOf{
					Base: scrut, VariantIndex: uint(idx), FieldIndex: uint(i),
				}})
			} else {
				fl.b.Emit(mir.Call{Dst: &payload, Func: "Enum_payload_field", Args: []mir.Operand{
					mir.OperandLocal(scrut),
					mir.OperandConst(mir.Scalar(mir.U32), uint64(idx)),
					mir.OperandConst(mir.Scalar(mir.U32), uint64(i)),
				}})
			}

			bound[name] = payload
		}
	}

	return fl.bindLocals(bound)
}

func (fl *funcLower) variantIndex(t typecheck.Type, variant string) (int, bool) {
	if t.Kind != typecheck.KNamed {
		return 0, false
	}

	info, ok := fl.lw.tc.Enums()[t.Named]
	if !ok {
		return 0, false
	}

	for i, v := range info.Variants {
		if v.Name == variant {
			return i, true
		}
	}

	return 0, false
}

// ============================================================================
// Small builder-state helpers
// ============================================================================

type savedBinding struct {
	name string
	id   mir.LocalId
	had  bool
}

func (fl *funcLower) bindLocals(bound map[string]mir.LocalId) []savedBinding {
	saved := make([]savedBinding, 0, len(bound))

	for name, id := range bound {
		if name == "" {
			continue
		}

		prev, had := fl.locals[name]
		saved = append(saved, savedBinding{name: name, id: prev, had: had})
		fl.locals[name] = id
	}

	return saved
}

func (fl *funcLower) restoreBindings(saved []savedBinding) {
	for _, s := range saved {
		fl.restoreLocal(s.name, s.id, s.had)
	}
}

func (fl *funcLower) restoreLocal(name string, prev mir.LocalId, had bool) {
	if had {
		fl.locals[name] = prev
	} else {
		delete(fl.locals, name)
	}
}

func (fl *funcLower) pushLoop(frame loopFrame) {
	fl.loopStack.Push(frame)
}

func (fl *funcLower) popLoop() {
	fl.loopStack.Pop()
}

// findLoop walks the loop stack top-down for the innermost frame, or the
// nearest one with a matching label.
func (fl *funcLower) findLoop(label string) (loopFrame, bool) {
	for offset := uint(0); offset < fl.loopStack.Len(); offset++ {
		frame := fl.loopStack.Peek(offset)
		if label == "" || frame.label == label {
			return frame, true
		}
	}

	return loopFrame{}, false
}

// gotoIfOpen terminates the current block with a Goto unless a statement
// in it already ended control flow (return/break/continue).
func (fl *funcLower) gotoIfOpen(target mir.BlockId) {
	if fl.b.Function().Block(fl.b.CurrentBlock()).Terminator == nil {
		fl.b.Terminate(mir.Goto{Target: target})
	}
}

func (fl *funcLower) diag(kind diag.Kind, span source.Span, format string, args ...any) {
	fl.lw.diags.Add(diag.New(kind, span, format, args...))
}
