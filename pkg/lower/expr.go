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
	"math"

	"github.com/rask-lang/raskc/pkg/ast"
	"github.com/rask-lang/raskc/pkg/diag"
	"github.com/rask-lang/raskc/pkg/mir"
	"github.com/rask-lang/raskc/pkg/typecheck"
	"github.com/rask-lang/raskc/pkg/util/source"
)

// checkerType returns the checker's resolved type for an expression node
// from the Result side table.
func (fl *funcLower) checkerType(e ast.Expr) typecheck.Type {
	t, ok := fl.lw.result.NodeType[e.NodeId()]
	if !ok {
		return typecheck.Error
	}

	return fl.lw.tc.Resolve(t)
}

func (fl *funcLower) mirTypeOf(e ast.Expr) mir.Type {
	return mirTypeWith(fl.lw.layouts, fl.lw.tc, fl.checkerType(e))
}

// emitLoc records a statement's source position.
// Spans are byte offsets into the source buffer; with no buffer in
// hand the offset pair stands in, resolved to line/column by the driver's
// source.SourceMap when one exists.
func (fl *funcLower) emitLoc(sp source.Span) {
	fl.b.Emit(mir.SourceLocation{Line: uint(sp.Start()), Col: uint(sp.Length())})
}

// lowerExpr evaluates an expression in the current block and returns the
// operand holding its value.
func (fl *funcLower) lowerExpr(e ast.Expr) mir.Operand {
	switch n := e.(type) {
	case *ast.Ident:
		return fl.lowerIdent(n)
	case *ast.IntLit:
		return mir.OperandConst(fl.mirTypeOf(n), uint64(n.Value))
	case *ast.FloatLit:
		ty := fl.mirTypeOf(n)
		if ty.Tag() == mir.F32 {
			return mir.OperandConst(ty, uint64(math.Float32bits(float32(n.Value))))
		}

		return mir.OperandConst(ty, math.Float64bits(n.Value))
	case *ast.BoolLit:
		bits := uint64(0)
		if n.Value {
			bits = 1
		}

		return mir.OperandConst(mir.Scalar(mir.Bool), bits)
	case *ast.StringLit:
		name := fl.lw.internString(n.Value)
		dst := fl.newTemp(mir.Scalar(mir.StringTag))
		fl.b.Emit(mir.GlobalRef{Dst: dst, Name: name})

		return mir.OperandLocal(dst)
	case *ast.BinaryExpr:
		return fl.lowerBinary(n)
	case *ast.UnaryExpr:
		return fl.lowerUnary(n)
	case *ast.CallExpr:
		return fl.lowerCall(n)
	case *ast.MethodCallExpr:
		return fl.lowerMethodCall(n)
	case *ast.FieldExpr:
		return fl.lowerField(n)
	case *ast.IndexExpr:
		return fl.lowerIndex(n)
	case *ast.RangeExpr:
		fl.diag(diag.InvalidConstruct, n.Span(), "range expression outside of a for loop")
		return mir.OperandConst(mir.Scalar(mir.I64), 0)
	case *ast.ClosureExpr:
		dst := fl.newTemp(mir.Scalar(mir.PtrTag))
		fl.lowerClosureCreate(dst, n)

		return mir.OperandLocal(dst)
	case *ast.TryExpr:
		return fl.lowerTry(n)
	case *ast.GuardLetExpr:
		return fl.lowerGuardLet(n)
	case *ast.MatchExpr:
		return fl.lowerMatchExpr(n)
	case *ast.StructLitExpr:
		dst := fl.newTemp(fl.mirTypeOf(n))
		fl.lowerStructLitInto(dst, n)

		return mir.OperandLocal(dst)
	case *ast.EnumCtorExpr:
		dst := fl.newTemp(fl.mirTypeOf(n))
		fl.lowerEnumCtorInto(dst, n)

		return mir.OperandLocal(dst)
	case *ast.IterChainExpr:
		return fl.lowerIterChain(n)
	case *ast.BlockExpr:
		fl.enterScope()

		for _, s := range n.Stmts {
			fl.lowerStmt(s)
		}

		result := mir.OperandConst(mir.Scalar(mir.I64), 0)
		if n.Result != nil {
			result = fl.lowerExpr(n.Result)
		}

		fl.exitScope()

		return result
	}

	return mir.OperandConst(mir.Scalar(mir.I64), 0)
}

// lowerExprLocal evaluates an expression and guarantees the result lives
// in a local (constants are spilled into a temp), for consumers that need
// a LocalId: Ref, FieldOf, EnumTagOf and friends all address locals.
func (fl *funcLower) lowerExprLocal(e ast.Expr) mir.LocalId {
	op := fl.lowerExpr(e)
	if !op.IsConst() {
		return op.Local()
	}

	tmp := fl.newTemp(op.ConstType())
	fl.b.Emit(mir.Assign{Dst: tmp, Rvalue: mir.Use{Arg: op}})

	return tmp
}

// lowerExprHeap lowers an expression in escaping position (a return value,
// a struct field, a spawn body): a closure created here gets a heap
// environment.
func (fl *funcLower) lowerExprHeap(e ast.Expr) mir.Operand {
	fl.closureHeapHint = true
	defer func() { fl.closureHeapHint = false }()

	return fl.lowerExpr(e)
}

// lowerInto evaluates an expression directly into a destination local,
// using the one-step aggregate statements where the expression form has
// one.
func (fl *funcLower) lowerInto(dst mir.LocalId, e ast.Expr) {
	switch n := e.(type) {
	case *ast.ClosureExpr:
		fl.lowerClosureCreate(dst, n)
	case *ast.StructLitExpr:
		fl.lowerStructLitInto(dst, n)
	case *ast.EnumCtorExpr:
		fl.lowerEnumCtorInto(dst, n)
	default:
		op := fl.lowerExpr(e)
		fl.b.Emit(mir.Assign{Dst: dst, Rvalue: mir.Use{Arg: op}})
	}
}

func (fl *funcLower) lowerIdent(n *ast.Ident) mir.Operand {
	if id, ok := fl.locals[n.Name]; ok {
		return mir.OperandLocal(id)
	}

	if _, ok := fl.lw.tc.FuncSigs()[n.Name]; ok {
		dst := fl.newTemp(mir.Scalar(mir.PtrTag))
		fl.b.Emit(mir.GlobalRef{Dst: dst, Name: n.Name})

		return mir.OperandLocal(dst)
	}

	fl.diag(diag.UnresolvedVariable, n.Span(), "unresolved variable %q", n.Name)

	return mir.OperandConst(mir.Scalar(mir.I64), 0)
}

func (fl *funcLower) lowerBinary(n *ast.BinaryExpr) mir.Operand {
	lhs := fl.lowerExpr(n.Lhs)
	rhs := fl.lowerExpr(n.Rhs)

	op, ok := binOpFromString(n.Op)
	if !ok {
		fl.diag(diag.InvalidConstruct, n.Span(), "unknown binary operator %q", n.Op)
		return mir.OperandConst(mir.Scalar(mir.I64), 0)
	}

	dst := fl.newTemp(fl.mirTypeOf(n))
	fl.b.Emit(mir.Assign{Dst: dst, Rvalue: mir.BinaryOp{Op: op, Lhs: lhs, Rhs: rhs}})

	return mir.OperandLocal(dst)
}

func (fl *funcLower) lowerUnary(n *ast.UnaryExpr) mir.Operand {
	arg := fl.lowerExpr(n.Expr)

	op := mir.Neg
	if n.Op == "!" {
		op = mir.Not
	}

	dst := fl.newTemp(fl.mirTypeOf(n))
	fl.b.Emit(mir.Assign{Dst: dst, Rvalue: mir.UnaryOp{Op: op, Arg: arg}})

	return mir.OperandLocal(dst)
}

// lowerCall lowers a free-function call: the print/panic built-ins map to
// their runtime ABI entry points, a callee naming a closure-typed
// local dispatches through ClosureCall, and everything else is a plain
// Call carrying the callee's hidden context parameters, if any.
func (fl *funcLower) lowerCall(n *ast.CallExpr) mir.Operand {
	callee, ok := n.Callee.(*ast.Ident)
	if !ok {
		fl.diag(diag.InvalidConstruct, n.Span(), "call target must be a named function or closure")
		return mir.OperandConst(mir.Scalar(mir.I64), 0)
	}

	switch callee.Name {
	case "println", "print":
		for _, a := range n.Args {
			arg := fl.lowerExpr(a)
			helper := "rask_print_i64"

			t := fl.checkerType(a)
			if t.Kind == typecheck.KPrim && t.Prim == "string" {
				helper = "rask_print_string"
			}

			fl.b.Emit(mir.Call{Func: helper, Args: []mir.Operand{arg}})
		}

		return mir.OperandConst(mir.Scalar(mir.I64), 0)
	case "panic":
		var args []mir.Operand
		for _, a := range n.Args {
			args = append(args, fl.lowerExpr(a))
		}

		fl.b.Emit(mir.Call{Func: "rask_panic", Args: args})

		return mir.OperandConst(mir.Scalar(mir.I64), 0)
	}

	if local, ok := fl.locals[callee.Name]; ok {
		return fl.lowerClosureCall(n, local)
	}

	args := make([]mir.Operand, 0, len(n.Args))
	for _, a := range n.Args {
		args = append(args, fl.lowerExpr(a))
	}

	// Pass the callee's hidden contexts from this function's own hidden
	// parameters.
	for _, k := range sortedKeys(fl.lw.hidReq[callee.Name]) {
		if id, ok := fl.hiddenParams[k]; ok {
			args = append(args, mir.OperandLocal(id))
		}
	}

	retTy := fl.checkerType(n)
	if isVoid(retTy) {
		fl.b.Emit(mir.Call{Func: callee.Name, Args: args})
		return mir.OperandConst(mir.Scalar(mir.I64), 0)
	}

	dst := fl.newTemp(fl.mirTypeOf(n))
	fl.b.Emit(mir.Call{Dst: &dst, Func: callee.Name, Args: args})

	return mir.OperandLocal(dst)
}

func (fl *funcLower) lowerClosureCall(n *ast.CallExpr, closure mir.LocalId) mir.Operand {
	args := make([]mir.Operand, 0, len(n.Args))
	for _, a := range n.Args {
		args = append(args, fl.lowerExpr(a))
	}

	retTy := fl.checkerType(n)
	if isVoid(retTy) {
		fl.b.Emit(mir.ClosureCall{Closure: mir.OperandLocal(closure), Args: args})
		return mir.OperandConst(mir.Scalar(mir.I64), 0)
	}

	dst := fl.newTemp(fl.mirTypeOf(n))
	fl.b.Emit(mir.ClosureCall{Dst: &dst, Closure: mir.OperandLocal(closure), Args: args})

	return mir.OperandLocal(dst)
}

// lowerMethodCall dispatches on the receiver's resolved type: built-in
// containers call their runtime helpers, File maps to the rask_io ABI,
// task handles to the task runtime, and user methods call the lowered
// method function. A call to a `take self` method additionally marks the
// receiver's tracked resource consumed.
func (fl *funcLower) lowerMethodCall(n *ast.MethodCallExpr) mir.Operand {
	recvTy := fl.checkerType(n.Receiver)
	recv := fl.lowerExpr(n.Receiver)

	args := make([]mir.Operand, 0, len(n.Args)+1)
	args = append(args, recv)

	for _, a := range n.Args {
		args = append(args, fl.lowerExpr(a))
	}

	fn := n.Method
	consuming := false

	switch {
	case recvTy.Kind == typecheck.KNamed && isContainer(recvTy.Named):
		if n.Method == "iter" {
			// Identity at MIR level: the chain fuses at the loop.
			return recv
		}

		fn = recvTy.Named + "_" + n.Method
	case recvTy.Kind == typecheck.KPrim && recvTy.Prim == "string":
		fn = "string_" + n.Method
	case recvTy.Kind == typecheck.KNamed && recvTy.Named == "File":
		fn = "rask_io_" + n.Method
		consuming = n.Method == "close"
	case fl.isTaskHandle(n.Receiver) && (n.Method == "join" || n.Method == "await"):
		fn = "rask_task_join"
		consuming = true
	default:
		if recvTy.Kind == typecheck.KNamed {
			consuming = fl.lw.result.ConsumingMethods[[2]string{recvTy.Named, n.Method}]
		}
	}

	var result mir.Operand

	retTy := fl.checkerType(n)
	if isVoid(retTy) {
		fl.b.Emit(mir.Call{Func: fn, Args: args})
		result = mir.OperandConst(mir.Scalar(mir.I64), 0)
	} else {
		dst := fl.newTemp(fl.mirTypeOf(n))
		fl.b.Emit(mir.Call{Dst: &dst, Func: fn, Args: args})
		result = mir.OperandLocal(dst)
	}

	if consuming {
		if id, ok := n.Receiver.(*ast.Ident); ok {
			if resId, tracked := fl.resIds[id.Name]; tracked {
				fl.b.Emit(mir.ResourceConsume{ResourceId: mir.OperandLocal(resId)})
			}
		}
	}

	return result
}

func (fl *funcLower) isTaskHandle(recv ast.Expr) bool {
	id, ok := recv.(*ast.Ident)
	if !ok {
		return false
	}

	_, tracked := fl.resIds[id.Name]

	return tracked && fl.checkerType(recv).IsError()
}

func (fl *funcLower) lowerField(n *ast.FieldExpr) mir.Operand {
	base := fl.lowerExprLocal(n.Base)
	baseTy := fl.mirTypeOf(n.Base)
	dst := fl.newTemp(fl.mirTypeOf(n))

	if baseTy.Tag() != mir.StructTag {
		// Still-generic base: an opaque handle; the load resolves once
		// monomorphization pins the layout. Deref's element type is implied
		// by the destination local.
		fl.b.Emit(mir.Assign{Dst: dst, Rvalue: mir.Deref{Arg: mir.OperandLocal(base)}})
		return mir.OperandLocal(dst)
	}

	layout := fl.lw.layouts.Program().Structs[baseTy.Layout()]

	idx := layout.FieldIndex(n.Field)
	if idx < 0 {
		fl.diag(diag.UnresolvedVariable, n.Span(), "no field %q in %s", n.Field, layout.Name)
		return mir.OperandConst(mir.Scalar(mir.I64), 0)
	}

	fl.b.Emit(mir.Assign{Dst: dst, Rvalue: mir.FieldOf{Base: base, FieldIndex: uint(idx)}})

	return mir.OperandLocal(dst)
}

func (fl *funcLower) lowerIndex(n *ast.IndexExpr) mir.Operand {
	baseTy := fl.checkerType(n.Base)

	switch {
	case baseTy.Kind == typecheck.KArray:
		base := fl.lowerExprLocal(n.Base)
		idx := fl.lowerExpr(n.Index)
		elemTy := fl.mirTypeOf(n)
		dst := fl.newTemp(elemTy)
		fl.b.Emit(mir.Assign{Dst: dst, Rvalue: mir.ArrayIndexOf{
			Base: base, Index: idx, ElemSize: fl.lw.layouts.SizeOf(elemTy),
		}})

		return mir.OperandLocal(dst)
	case baseTy.Kind == typecheck.KNamed && baseTy.Named == "Vec":
		base := fl.lowerExpr(n.Base)
		idx := fl.lowerExpr(n.Index)
		dst := fl.newTemp(fl.mirTypeOf(n))
		fl.b.Emit(mir.Call{Dst: &dst, Func: "Vec_get", Args: []mir.Operand{base, idx}})

		return mir.OperandLocal(dst)
	case baseTy.Kind == typecheck.KNamed && baseTy.Named == "Map":
		base := fl.lowerExpr(n.Base)
		idx := fl.lowerExpr(n.Index)
		dst := fl.newTemp(fl.mirTypeOf(n))
		fl.b.Emit(mir.Call{Dst: &dst, Func: "Map_get", Args: []mir.Operand{base, idx}})

		return mir.OperandLocal(dst)
	}

	fl.diag(diag.InvalidConstruct, n.Span(), "value of type %s is not indexable", baseTy)

	return mir.OperandConst(mir.Scalar(mir.I64), 0)
}

// lowerTry is `expr?`: test the carrier, propagate the whole value
// through the (cleanup-aware) return path on failure, unwrap the success
// payload otherwise.
func (fl *funcLower) lowerTry(n *ast.TryExpr) mir.Operand {
	inner := fl.lowerExprLocal(n.Inner)
	innerTy := fl.checkerType(n.Inner)

	helper, unwrap := "Option_is_some", "Option_unwrap"
	if innerTy.Kind == typecheck.KResult {
		helper, unwrap = "Result_is_ok", "Result_unwrap"
	}

	ok := fl.newTemp(mir.Scalar(mir.Bool))
	fl.b.Emit(mir.Call{Dst: &ok, Func: helper, Args: []mir.Operand{mir.OperandLocal(inner)}})

	cont := fl.b.NewBlock()
	prop := fl.b.NewBlock()

	fl.b.Terminate(mir.Branch{Cond: mir.OperandLocal(ok), Then: cont, Else: prop})

	fl.b.SetBlock(prop)
	value := mir.OperandLocal(inner)
	fl.emitReturnOp(&value)

	fl.b.SetBlock(cont)
	payload := fl.newTemp(fl.mirTypeOf(n))
	fl.b.Emit(mir.Call{Dst: &payload, Func: unwrap, Args: []mir.Operand{mir.OperandLocal(inner)}})

	return mir.OperandLocal(payload)
}

// emitReturnOp terminates the current block with Return, or CleanupReturn
// carrying the live ensure blocks in LIFO order.
func (fl *funcLower) emitReturnOp(value *mir.Operand) {
	if !fl.ensureStack.IsEmpty() {
		// Peek(0) is the most recent registration: the chain comes out in
		// LIFO order directly.
		chain := make([]mir.BlockId, 0, fl.ensureStack.Len())
		for offset := uint(0); offset < fl.ensureStack.Len(); offset++ {
			chain = append(chain, fl.ensureStack.Peek(offset))
		}

		fl.b.Terminate(mir.CleanupReturn{Value: value, CleanupChain: chain})

		return
	}

	fl.b.Terminate(mir.Return{Value: value})
}

// lowerGuardLet is `const x = expr is Pattern else { diverge }`:
// the else block must leave the function (checked by the type checker);
// on match the single payload binds to the declared name, which stays in
// scope for the rest of the enclosing block.
func (fl *funcLower) lowerGuardLet(n *ast.GuardLetExpr) mir.Operand {
	scrut := fl.lowerExprLocal(n.Scrut)
	scrutTy := fl.checkerType(n.Scrut)

	cond := fl.patternTest(scrut, scrutTy, n.Pattern)

	matched := fl.b.NewBlock()
	diverge := fl.b.NewBlock()

	fl.b.Terminate(mir.Branch{Cond: cond, Then: matched, Else: diverge})

	fl.b.SetBlock(diverge)
	fl.lowerBlock(n.Diverge)
	fl.finishWithReturn(fl.b.Function().ReturnType)

	fl.b.SetBlock(matched)

	payload := fl.b.NewLocal(n.Name, fl.mirTypeOf(n), false)

	switch scrutTy.Kind {
	case typecheck.KOption:
		fl.b.Emit(mir.Call{Dst: &payload, Func: "Option_unwrap", Args: []mir.Operand{mir.OperandLocal(scrut)}})
	case typecheck.KResult:
		helper := "Result_unwrap"
		if n.Pattern.Variant == "Err" {
			helper = "Result_unwrap_err"
		}

		fl.b.Emit(mir.Call{Dst: &payload, Func: helper, Args: []mir.Operand{mir.OperandLocal(scrut)}})
	default:
		if idx, ok := fl.variantIndex(scrutTy, n.Pattern.Variant); ok {
			fl.b.Emit(mir.Assign{Dst: payload, Rvalue: mir.VariantFieldOf{
				Base: scrut, VariantIndex: uint(idx), FieldIndex: 0,
			}})
		}
	}

	fl.locals[n.Name] = payload

	return mir.OperandLocal(payload)
}

// lowerMatchExpr is the expression form of match: the same linear cascade
// as the statement form, with every arm value flowing into one result
// local.
func (fl *funcLower) lowerMatchExpr(n *ast.MatchExpr) mir.Operand {
	scrut := fl.lowerExprLocal(n.Scrut)
	scrutTy := fl.checkerType(n.Scrut)

	result := fl.newTemp(fl.mirTypeOf(n))
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

		fl.lowerInto(result, arm.Value)
		fl.restoreBindings(saved)
		fl.gotoIfOpen(join)

		fl.b.SetBlock(next)
	}

	fl.gotoIfOpen(join)
	fl.b.SetBlock(join)

	return mir.OperandLocal(result)
}

// lowerStructLitInto builds an aggregate in one step, with the literal's
// fields reordered into layout order.
func (fl *funcLower) lowerStructLitInto(dst mir.LocalId, n *ast.StructLitExpr) {
	byName := make(map[string]ast.Expr, len(n.Fields))
	for _, f := range n.Fields {
		byName[f.Name] = f.Value
	}

	var order []string

	if info, ok := fl.lw.tc.Structs()[n.Name]; ok {
		for _, f := range info.Fields {
			order = append(order, f.Name)
		}
	} else {
		for _, f := range n.Fields {
			order = append(order, f.Name)
		}
	}

	args := make([]mir.Operand, 0, len(order))

	for _, name := range order {
		init, ok := byName[name]
		if !ok {
			args = append(args, mir.OperandConst(mir.Scalar(mir.I64), 0))
			continue
		}

		args = append(args, fl.lowerExprHeap(init))
	}

	fl.b.Emit(mir.StructMake{Dst: dst, Args: args})
}

// lowerEnumCtorInto builds a tagged value: the built-in Option/Result
// constructors go through the runtime ABI (their layout is the runtime's),
// user enums take the one-step EnumMake.
func (fl *funcLower) lowerEnumCtorInto(dst mir.LocalId, n *ast.EnumCtorExpr) {
	args := make([]mir.Operand, 0, len(n.Args))
	for _, a := range n.Args {
		args = append(args, fl.lowerExpr(a))
	}

	switch n.EnumName {
	case "Option":
		helper := "Option_none"
		if n.Variant == "Some" {
			helper = "Option_some"
		}

		fl.b.Emit(mir.Call{Dst: &dst, Func: helper, Args: args})

		return
	case "Result":
		helper := "Result_ok"
		if n.Variant == "Err" {
			helper = "Result_err"
		}

		fl.b.Emit(mir.Call{Dst: &dst, Func: helper, Args: args})

		return
	}

	info, ok := fl.lw.tc.Enums()[n.EnumName]
	if !ok {
		fl.diag(diag.UnresolvedVariable, n.Span(), "unknown enum %q", n.EnumName)
		return
	}

	for i, v := range info.Variants {
		if v.Name == n.Variant {
			fl.b.Emit(mir.EnumMake{Dst: dst, VariantIndex: uint(i), Args: args})
			return
		}
	}

	fl.diag(diag.UnresolvedVariable, n.Span(), "no variant %q on %s", n.Variant, n.EnumName)
}

func isVoid(t typecheck.Type) bool {
	return t.Kind == typecheck.KPrim && t.Prim == "void"
}

func isContainer(name string) bool {
	switch name {
	case "Vec", "Map", "Set", "Channel", "Pool", "string":
		return true
	}

	return false
}

func binOpFromString(op string) (mir.BinOp, bool) {
	switch op {
	case "+":
		return mir.Add, true
	case "-":
		return mir.Sub, true
	case "*":
		return mir.Mul, true
	case "/":
		return mir.Div, true
	case "%":
		return mir.Rem, true
	case "&":
		return mir.And, true
	case "|":
		return mir.Or, true
	case "^":
		return mir.Xor, true
	case "<<":
		return mir.Shl, true
	case ">>":
		return mir.Shr, true
	case "==":
		return mir.Eq, true
	case "!=":
		return mir.Ne, true
	case "<":
		return mir.Lt, true
	case "<=":
		return mir.Le, true
	case ">":
		return mir.Gt, true
	case ">=":
		return mir.Ge, true
	case "&&":
		return mir.LogAnd, true
	case "||":
		return mir.LogOr, true
	}

	return 0, false
}
