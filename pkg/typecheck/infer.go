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
package typecheck

import (
	"github.com/rask-lang/raskc/pkg/ast"
	"github.com/rask-lang/raskc/pkg/diag"
)

// inferExpr generates constraints for an expression and returns its type,
// recording the result for every node.
func (c *Checker) inferExpr(e ast.Expr) Type {
	t := c.inferExprKind(e)
	c.recordType(e.NodeId(), t)

	return t
}

func (c *Checker) inferExprKind(e ast.Expr) Type {
	switch n := e.(type) {
	case *ast.Ident:
		return c.inferIdent(n)
	case *ast.IntLit:
		if n.Suffix != "" {
			return Prim(n.Suffix)
		}
		// Unsuffixed integer literals default to i32 at the literal site.
		return Prim("i32")
	case *ast.FloatLit:
		if n.Suffix != "" {
			return Prim(n.Suffix)
		}
		// Unsuffixed float literals default to f64.
		return Prim("f64")
	case *ast.BoolLit:
		return Prim("bool")
	case *ast.StringLit:
		return Prim("string")
	case *ast.BinaryExpr:
		return c.inferBinary(n)
	case *ast.UnaryExpr:
		return c.inferUnary(n)
	case *ast.CallExpr:
		return c.inferCall(n)
	case *ast.MethodCallExpr:
		return c.inferMethodCall(n)
	case *ast.FieldExpr:
		return c.inferField(n)
	case *ast.IndexExpr:
		return c.inferIndex(n)
	case *ast.RangeExpr:
		elem := c.inferExpr(n.Start)
		c.equal(elem, c.inferExpr(n.End), n.Span())

		return NamedOf("Range", elem)
	case *ast.ClosureExpr:
		return c.inferClosure(n)
	case *ast.TryExpr:
		return c.inferTry(n)
	case *ast.GuardLetExpr:
		return c.inferGuardLet(n)
	case *ast.MatchExpr:
		return c.inferMatchExpr(n)
	case *ast.StructLitExpr:
		return c.inferStructLit(n)
	case *ast.EnumCtorExpr:
		return c.inferEnumCtor(n)
	case *ast.IterChainExpr:
		return c.inferIterChain(n)
	case *ast.BlockExpr:
		c.pushScope()
		defer c.popScope()

		for _, s := range n.Stmts {
			c.checkStmt(s)
		}

		if n.Result == nil {
			return Prim("void")
		}

		return c.inferExpr(n.Result)
	}

	return Error
}

func (c *Checker) inferIdent(n *ast.Ident) Type {
	if t, ok := c.lookupVar(n.Name); ok {
		return t
	}

	if sig, ok := c.funcSigs[n.Name]; ok {
		return sig
	}

	if builtinTy, ok := builtinGlobal(n.Name); ok {
		return builtinTy
	}

	// The resolver guarantees every Ident is bound; reaching here means
	// a builtin or function table gap. Surface it rather than panic.
	return c.typeError(diag.NoSuchField, n.Span(), "unresolved identifier %q", n.Name)
}

// builtinGlobal types the handful of free-standing built-in functions the
// resolver pre-populates.
func builtinGlobal(name string) (Type, bool) {
	switch name {
	case "println", "print":
		return FnOf([]Type{Prim("string")}, Prim("void")), true
	case "panic":
		return FnOf([]Type{Prim("string")}, Never), true
	}

	return Type{}, false
}

var numericOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"&": true, "|": true, "^": true, "<<": true, ">>": true,
}

var comparisonOps = map[string]bool{
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
}

var logicalOps = map[string]bool{"&&": true, "||": true}

func (c *Checker) inferBinary(n *ast.BinaryExpr) Type {
	lhs := c.inferExpr(n.Lhs)
	rhs := c.inferExpr(n.Rhs)

	switch {
	case logicalOps[n.Op]:
		c.equal(lhs, Prim("bool"), n.Lhs.Span())
		c.equal(rhs, Prim("bool"), n.Rhs.Span())

		return Prim("bool")
	case comparisonOps[n.Op]:
		c.equal(lhs, rhs, n.Span())
		return Prim("bool")
	case numericOps[n.Op]:
		c.equal(lhs, rhs, n.Span())
		return lhs
	}

	return c.typeError(diag.TypeMismatch, n.Span(), "unknown operator %q", n.Op)
}

func (c *Checker) inferUnary(n *ast.UnaryExpr) Type {
	t := c.inferExpr(n.Expr)

	switch n.Op {
	case "!":
		c.equal(t, Prim("bool"), n.Span())
		return Prim("bool")
	case "-":
		return t
	}

	return c.typeError(diag.TypeMismatch, n.Span(), "unknown unary operator %q", n.Op)
}

func (c *Checker) inferCall(n *ast.CallExpr) Type {
	if id, ok := n.Callee.(*ast.Ident); ok {
		// The print builtins accept any printable argument; panic diverges.
		// Neither can be shadowed, so dispatching on the name here is sound.
		switch id.Name {
		case "println", "print":
			for _, a := range n.Args {
				c.inferExpr(a)
			}

			return Prim("void")
		case "panic":
			for _, a := range n.Args {
				c.inferExpr(a)
			}

			return Never
		}
	}

	calleeTy := c.inferExpr(n.Callee)
	calleeTy = c.subst.Resolve(calleeTy)

	if calleeTy.IsError() {
		return Error
	}

	// A generic function's signature is a scheme: instantiate its type
	// parameters with fresh variables per call site, so two call sites can
	// bind different concrete types without conflicting.
	if id, ok := n.Callee.(*ast.Ident); ok {
		if tps := c.funcTypeParams[id.Name]; len(tps) > 0 {
			calleeTy = c.instantiate(calleeTy, tps)
		}
	}

	if calleeTy.Kind != KFn {
		return c.typeError(diag.TypeMismatch, n.Span(), "call of non-function type %s", calleeTy)
	}

	params := calleeTy.FnParams()
	if len(params) != len(n.Args) {
		return c.typeError(diag.ArityMismatch, n.Span(), "expected %d arguments, found %d", len(params), len(n.Args))
	}

	for i, a := range n.Args {
		c.equal(c.inferExpr(a), params[i], a.Span())
	}

	return calleeTy.FnResult()
}

// instantiate replaces every reference to one of the given type-parameter
// names with a call-site-fresh variable, consistently across the whole
// signature.
func (c *Checker) instantiate(t Type, params []string) Type {
	fresh := make(map[string]Type, len(params))
	for _, p := range params {
		fresh[p] = c.freshVar()
	}

	var walk func(Type) Type
	walk = func(t Type) Type {
		if t.Kind == KNamed && len(t.Args) == 0 {
			if v, ok := fresh[t.Named]; ok {
				return v
			}

			return t
		}

		if len(t.Args) == 0 {
			return t
		}

		args := make([]Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = walk(a)
		}

		t.Args = args

		return t
	}

	return walk(t)
}

// builtinContainerMethod types the fixed set of Vec/Map/Set/Channel/string
// methods the resolver's built-in table exposes, so common
// container use doesn't need a deferred HasMethod constraint.
func (c *Checker) builtinContainerMethod(recv Type, n *ast.MethodCallExpr) (Type, bool) {
	if recv.Kind != KNamed {
		return Type{}, false
	}

	elem := Type{}
	if len(recv.Args) > 0 {
		elem = recv.Args[0]
	}

	switch recv.Named {
	case "Vec":
		switch n.Method {
		case "push":
			if len(n.Args) == 1 {
				c.equal(c.inferExpr(n.Args[0]), elem, n.Args[0].Span())
			}

			return Prim("void"), true
		case "pop":
			return OptionOf(elem), true
		case "len":
			return Prim("usize"), true
		case "get":
			if len(n.Args) == 1 {
				c.equal(c.inferExpr(n.Args[0]), Prim("usize"), n.Args[0].Span())
			}

			return OptionOf(elem), true
		case "iter":
			return recv, true
		}
	case "Map":
		key, val := elem, Type{}
		if len(recv.Args) > 1 {
			val = recv.Args[1]
		}

		switch n.Method {
		case "insert":
			if len(n.Args) == 2 {
				c.equal(c.inferExpr(n.Args[0]), key, n.Args[0].Span())
				c.equal(c.inferExpr(n.Args[1]), val, n.Args[1].Span())
			}

			return OptionOf(val), true
		case "get":
			if len(n.Args) == 1 {
				c.equal(c.inferExpr(n.Args[0]), key, n.Args[0].Span())
			}

			return OptionOf(val), true
		case "len":
			return Prim("usize"), true
		}
	case "Set":
		switch n.Method {
		case "insert":
			if len(n.Args) == 1 {
				c.equal(c.inferExpr(n.Args[0]), elem, n.Args[0].Span())
			}

			return Prim("bool"), true
		case "contains":
			if len(n.Args) == 1 {
				c.equal(c.inferExpr(n.Args[0]), elem, n.Args[0].Span())
			}

			return Prim("bool"), true
		case "len":
			return Prim("usize"), true
		}
	case "Channel":
		switch n.Method {
		case "send":
			if len(n.Args) == 1 {
				c.equal(c.inferExpr(n.Args[0]), elem, n.Args[0].Span())
			}

			return Prim("void"), true
		case "recv":
			return OptionOf(elem), true
		}
	case "string":
		switch n.Method {
		case "len":
			return Prim("usize"), true
		}
	}

	return Type{}, false
}

func (c *Checker) inferMethodCall(n *ast.MethodCallExpr) Type {
	recv := c.subst.Resolve(c.inferExpr(n.Receiver))
	if recv.IsError() {
		return Error
	}

	if ty, ok := c.builtinContainerMethod(recv, n); ok {
		return ty
	}

	argTys := make([]Type, len(n.Args))
	for i, a := range n.Args {
		argTys[i] = c.inferExpr(a)
	}

	ret := c.freshVar()
	c.deferredMethods = append(c.deferredMethods, HasMethodConstraint{
		Ty: recv, Method: n.Method, Args: argTys, Ret: ret, Span: n.Span(),
	})

	return ret
}

func (c *Checker) inferField(n *ast.FieldExpr) Type {
	base := c.subst.Resolve(c.inferExpr(n.Base))
	if base.IsError() {
		return Error
	}

	ret := c.freshVar()
	c.deferredFields = append(c.deferredFields, HasFieldConstraint{
		Ty: base, Field: n.Field, Expected: ret, Span: n.Span(),
	})

	return ret
}

func (c *Checker) inferIndex(n *ast.IndexExpr) Type {
	base := c.subst.Resolve(c.inferExpr(n.Base))
	idx := c.inferExpr(n.Index)

	switch base.Kind {
	case KArray, KSlice:
		c.equal(idx, Prim("usize"), n.Index.Span())
		return base.Elem()
	case KNamed:
		if base.Named == "Vec" && len(base.Args) == 1 {
			c.equal(idx, Prim("usize"), n.Index.Span())
			return base.Args[0]
		}

		if base.Named == "Map" && len(base.Args) == 2 {
			c.equal(idx, base.Args[0], n.Index.Span())
			return base.Args[1]
		}
	}

	if base.IsError() {
		return Error
	}

	return c.typeError(diag.TypeMismatch, n.Span(), "type %s is not indexable", base)
}

func (c *Checker) inferClosure(n *ast.ClosureExpr) Type {
	c.pushScope()
	defer c.popScope()

	params := make([]Type, len(n.Params))

	for i, p := range n.Params {
		pt := c.resolveTypeExpr(p.Type)
		params[i] = pt
		c.declareVar(p.Name, pt)
	}

	savedReturn := c.curReturn

	if n.ReturnType.Name != "" || n.ReturnType.Inferred {
		c.curReturn = c.resolveTypeExpr(n.ReturnType)
	} else {
		c.curReturn = c.freshVar()
	}

	bodyTy := c.inferExpr(n.Body)
	c.equal(c.curReturn, bodyTy, n.Body.Span())

	ret := c.curReturn
	c.curReturn = savedReturn

	return FnOf(params, ret)
}

// inferTry implements `expr?`: Inner must
// be Option<T> or Result<T, E>, matching the enclosing function's return
// family, and the expression's type is the success payload T.
func (c *Checker) inferTry(n *ast.TryExpr) Type {
	inner := c.subst.Resolve(c.inferExpr(n.Inner))
	if inner.IsError() {
		return Error
	}

	ret := c.subst.Resolve(c.curReturn)

	switch inner.Kind {
	case KOption:
		if ret.Kind != KOption {
			return c.typeError(diag.TryOutsidePropagatingContext, n.Span(),
				"`?` on Option requires an Option-returning function, found %s", ret)
		}

		return inner.Args[0]
	case KResult:
		if ret.Kind != KResult {
			return c.typeError(diag.TryOutsidePropagatingContext, n.Span(),
				"`?` on Result requires a Result-returning function, found %s", ret)
		}

		c.equal(ret.Args[1], inner.Args[1], n.Span())

		return inner.Args[0]
	case KVar:
		// The carrier is still an unconstrained variable: pin it to the
		// enclosing return's family and yield the success payload.
		switch ret.Kind {
		case KOption:
			payload := c.freshVar()
			c.equal(inner, OptionOf(payload), n.Span())

			return payload
		case KResult:
			payload := c.freshVar()
			c.equal(inner, ResultOf(payload, ret.Args[1]), n.Span())

			return payload
		}

		return c.typeError(diag.TryOutsidePropagatingContext, n.Span(),
			"`?` on an unconstrained value requires an Option- or Result-returning function, found %s", ret)
	}

	return c.typeError(diag.TypeMismatch, n.Span(), "`?` requires Option or Result, found %s", inner)
}

// divergesStmts reports whether a statement block's last statement
// unconditionally diverges (return/break/continue/panic call), the
// requirement guard-else bodies must satisfy.
func divergesStmts(stmts []ast.Stmt) bool {
	if len(stmts) == 0 {
		return false
	}

	switch last := stmts[len(stmts)-1].(type) {
	case *ast.ReturnStmt, *ast.BreakStmt, *ast.ContinueStmt:
		return true
	case *ast.ExprStmt:
		if call, ok := last.Expr.(*ast.CallExpr); ok {
			if id, ok := call.Callee.(*ast.Ident); ok && id.Name == "panic" {
				return true
			}
		}
	}

	return false
}

func (c *Checker) inferGuardLet(n *ast.GuardLetExpr) Type {
	scrutTy := c.subst.Resolve(c.inferExpr(n.Scrut))

	if !divergesStmts(n.Diverge) {
		c.typeError(diag.GuardElseMustDiverge, n.Span(), "guard-else block must diverge")
	}

	c.checkBlock(n.Diverge)

	bound := c.bindPatternTy(n.Pattern, scrutTy)

	if len(bound) == 1 {
		c.declareVar(n.Name, bound[0])
		return bound[0]
	}

	if len(bound) > 1 {
		t := TupleOf(bound...)
		c.declareVar(n.Name, t)

		return t
	}

	c.declareVar(n.Name, Prim("bool"))

	return Prim("bool")
}

// bindPatternTy resolves a variant Pattern against a scrutinee type and
// returns the types of its Bindings in order, without declaring them
// (callers that want the names in scope call declareVar themselves).
func (c *Checker) bindPatternTy(p ast.Pattern, scrut Type) []Type {
	if p.Wildcard {
		return nil
	}

	scrut = c.subst.Resolve(scrut)

	if scrut.Kind == KOption {
		if p.Variant == "Some" && len(p.Bindings) == 1 {
			return []Type{scrut.Args[0]}
		}

		return nil
	}

	if scrut.Kind == KResult {
		if p.Variant == "Ok" && len(p.Bindings) == 1 {
			return []Type{scrut.Args[0]}
		}

		if p.Variant == "Err" && len(p.Bindings) == 1 {
			return []Type{scrut.Args[1]}
		}

		return nil
	}

	if scrut.Kind == KNamed {
		info, ok := c.enums[scrut.Named]
		if !ok {
			return nil
		}

		for _, v := range info.Variants {
			if v.Name == p.Variant {
				types := make([]Type, len(v.Fields))
				for i, f := range v.Fields {
					types[i] = f.Type
				}

				return types
			}
		}
	}

	return nil
}

func (c *Checker) inferMatchExpr(n *ast.MatchExpr) Type {
	scrutTy := c.inferExpr(n.Scrut)
	result := c.freshVar()

	for _, arm := range n.Arms {
		c.pushScope()

		bound := c.bindPatternTy(arm.Pattern, scrutTy)
		for i, name := range arm.Pattern.Bindings {
			if i < len(bound) {
				c.declareVar(name, bound[i])
			}
		}

		if arm.Guard != nil {
			c.equal(c.inferExpr(arm.Guard), Prim("bool"), arm.Guard.Span())
		}

		armTy := c.inferExpr(arm.Value)
		c.equal(result, armTy, arm.Value.Span())

		c.popScope()
	}

	return result
}

func (c *Checker) inferStructLit(n *ast.StructLitExpr) Type {
	info, ok := c.structs[n.Name]
	if !ok {
		return c.typeError(diag.NoSuchField, n.Span(), "unknown struct %q", n.Name)
	}

	for _, lit := range n.Fields {
		var want Type

		found := false

		for _, f := range info.Fields {
			if f.Name == lit.Name {
				want = f.Type
				found = true

				break
			}
		}

		if !found {
			c.typeError(diag.NoSuchField, lit.Value.Span(), "%s has no field %q", n.Name, lit.Name)
			continue
		}

		c.equal(c.inferExpr(lit.Value), want, lit.Value.Span())
	}

	return NamedOf(n.Name)
}

func (c *Checker) inferEnumCtor(n *ast.EnumCtorExpr) Type {
	info, ok := c.enums[n.EnumName]
	if !ok {
		return c.typeError(diag.NoSuchField, n.Span(), "unknown enum %q", n.EnumName)
	}

	for _, v := range info.Variants {
		if v.Name != n.Variant {
			continue
		}

		if len(v.Fields) != len(n.Args) {
			return c.typeError(diag.ArityMismatch, n.Span(),
				"%s::%s expects %d fields, found %d", n.EnumName, n.Variant, len(v.Fields), len(n.Args))
		}

		for i, a := range n.Args {
			c.equal(c.inferExpr(a), v.Fields[i].Type, a.Span())
		}

		return NamedOf(n.EnumName)
	}

	return c.typeError(diag.NoSuchField, n.Span(), "%s has no variant %q", n.EnumName, n.Variant)
}

// fixedIterAdapters is the closed adapter set that fuses into a single
// lowered loop; anything else forces the materializing fallback.
var fixedIterAdapters = map[string]bool{
	"iter": true, "filter": true, "map": true, "take": true, "skip": true,
}

func (c *Checker) inferIterChain(n *ast.IterChainExpr) Type {
	elem := c.inferExpr(n.Source)
	elem = c.subst.Resolve(elem)

	if elem.Kind == KNamed && len(elem.Args) > 0 {
		elem = elem.Args[0]
	} else if elem.Kind == KSlice || elem.Kind == KArray {
		elem = elem.Elem()
	}

	for _, adapter := range n.Adapters {
		switch adapter.Name {
		case "filter":
			fnTy := c.inferExpr(adapter.Arg)
			c.equal(fnTy, FnOf([]Type{elem}, Prim("bool")), adapter.Arg.Span())
		case "map":
			fnTy := c.subst.Resolve(c.inferExpr(adapter.Arg))
			if fnTy.Kind == KFn {
				c.equal(fnTy.FnParams()[0], elem, adapter.Arg.Span())
				elem = fnTy.FnResult()
			}
		case "take", "skip":
			c.equal(c.inferExpr(adapter.Arg), Prim("usize"), adapter.Arg.Span())
		default:
			// Materializing fallback: still type-checked, just not
			// fused during lowering.
			c.inferExpr(adapter.Arg)
		}
	}

	if n.Collect {
		return NamedOf("Vec", elem)
	}

	return NamedOf("Iterator", elem)
}
