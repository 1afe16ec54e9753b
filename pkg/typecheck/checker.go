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
	"github.com/rask-lang/raskc/pkg/resolve"
	"github.com/rask-lang/raskc/pkg/util/source"
)

// StructInfo is the checker's view of a declared struct: its fields, in
// order, by resolved type.
type StructInfo struct {
	Name string
	// IsResource mirrors the `@resource` struct attribute:
	// values of this type require an explicit consuming call before scope
	// exit rather than plain move-on-assign.
	IsResource bool
	Fields     []FieldInfo
	// TypeParams lists the struct's generic parameters, e.g. ["T"] for
	// `struct Pool<T>`, consulted
	// by pkg/mono to substitute concrete instantiations.
	TypeParams []string
}

// FieldInfo is one struct field or enum variant payload field.
type FieldInfo struct {
	Name string
	Type Type
}

// EnumInfo is the checker's view of a declared enum.
type EnumInfo struct {
	Name     string
	Variants []VariantInfo
	// TypeParams lists the enum's generic parameters, consulted by
	// pkg/mono.
	TypeParams []string
}

// VariantInfo is one enum variant.
type VariantInfo struct {
	Name   string
	Fields []FieldInfo
}

// MethodInfo is a resolved method signature, including whether its
// receiver is `take self` -- the fact the ownership checker needs to
// decide whether calling it consumes a resource.
type MethodInfo struct {
	Name         string
	ReceiverKind ast.ParamKind
	Params       []Type
	Ret          Type
}

// Result is the output of a successful (or partially successful) Check
// run: a resolved type for every expression node, plus per-function
// return-type info the borrow checker and lowerer also need.
type Result struct {
	NodeType map[ast.NodeId]Type
	// ConsumingMethods names every (typeName, methodName) pair whose
	// receiver is `take self`.
	ConsumingMethods map[[2]string]bool
}

// Checker drives HM-style inference over a resolved program. It
// keeps a single, non-re-entrant Substitution: nested closures save/restore their local-scope stack but
// share the enclosing function's solver state.
type Checker struct {
	resolved *resolve.Program
	subst    *Substitution
	nextVar  VarId

	structs  map[string]StructInfo
	enums    map[string]EnumInfo
	methods  map[[2]string]MethodInfo
	funcSigs map[string]Type
	// funcTypeParams lists each generic free function's type parameters, so
	// inferCall can instantiate its signature with fresh variables per call
	// site.
	funcTypeParams map[string][]string

	nodeType map[ast.NodeId]Type
	scope    []map[string]Type
	// curReturn is the enclosing function's declared/inferred return type,
	// consulted by `?`-propagation.
	curReturn Type

	diags *diag.Bag

	deferredFields  []HasFieldConstraint
	deferredMethods []HasMethodConstraint
}

// NewChecker constructs a checker over a resolved program.
func NewChecker(resolved *resolve.Program) *Checker {
	c := &Checker{
		resolved:       resolved,
		subst:          NewSubstitution(),
		structs:        make(map[string]StructInfo),
		enums:          make(map[string]EnumInfo),
		methods:        make(map[[2]string]MethodInfo),
		funcSigs:       make(map[string]Type),
		funcTypeParams: make(map[string][]string),
		nodeType:       make(map[ast.NodeId]Type),
		diags:          &diag.Bag{},
	}
	c.pushScope()
	c.loadDecls()

	return c
}

func (c *Checker) freshVar() Type {
	id := c.nextVar
	c.nextVar++

	return Var(id)
}

func (c *Checker) pushScope() { c.scope = append(c.scope, map[string]Type{}) }
func (c *Checker) popScope()  { c.scope = c.scope[:len(c.scope)-1] }

func (c *Checker) declareVar(name string, ty Type) {
	c.scope[len(c.scope)-1][name] = ty
}

func (c *Checker) lookupVar(name string) (Type, bool) {
	for i := len(c.scope) - 1; i >= 0; i-- {
		if t, ok := c.scope[i][name]; ok {
			return t, true
		}
	}

	return Type{}, false
}

func (c *Checker) loadDecls() {
	prog := c.resolved.AST

	for _, sd := range prog.Structs {
		info := StructInfo{Name: sd.Name, IsResource: sd.IsResource, TypeParams: sd.TypeParams}
		for _, f := range sd.Fields {
			info.Fields = append(info.Fields, FieldInfo{Name: f.Name, Type: c.resolveTypeExpr(f.Type)})
		}

		c.structs[sd.Name] = info
	}

	for _, ed := range prog.Enums {
		info := EnumInfo{Name: ed.Name, TypeParams: ed.TypeParams}
		for _, v := range ed.Variants {
			var fields []FieldInfo
			for _, f := range v.Fields {
				fields = append(fields, FieldInfo{Name: f.Name, Type: c.resolveTypeExpr(f.Type)})
			}

			info.Variants = append(info.Variants, VariantInfo{Name: v.Name, Fields: fields})
		}

		c.enums[ed.Name] = info
	}

	for _, fd := range prog.Functions {
		params := make([]Type, len(fd.Params))

		for i, p := range fd.Params {
			params[i] = c.resolveTypeExpr(p.Type)
		}

		ret := c.resolveTypeExpr(fd.ReturnType)

		if fd.Receiver == nil {
			c.funcSigs[fd.Name] = FnOf(params, ret)

			if len(fd.TypeParams) > 0 {
				c.funcTypeParams[fd.Name] = fd.TypeParams
			}

			continue
		}

		recvTy := c.resolveTypeExpr(fd.Receiver.Type)

		c.methods[[2]string{recvTy.Named, fd.Name}] = MethodInfo{
			Name:         fd.Name,
			ReceiverKind: fd.ReceiverKind,
			Params:       params,
			Ret:          ret,
		}
	}
}

// resolveTypeExpr turns a syntactic ast.TypeExpr into a checker Type,
// allocating a fresh variable for an omitted (Inferred) annotation.
func (c *Checker) resolveTypeExpr(te ast.TypeExpr) Type {
	if te.Inferred {
		return c.freshVar()
	}

	switch te.Name {
	case "":
		return Prim("void")
	case "Option":
		return OptionOf(c.resolveTypeExpr(te.Args[0]))
	case "Result":
		return ResultOf(c.resolveTypeExpr(te.Args[0]), c.resolveTypeExpr(te.Args[1]))
	}

	if te.FnResult != nil {
		params := make([]Type, len(te.FnParams))
		for i, p := range te.FnParams {
			params[i] = c.resolveTypeExpr(p)
		}

		return FnOf(params, c.resolveTypeExpr(*te.FnResult))
	}

	if te.ArrayLen > 0 {
		return ArrayOf(c.resolveTypeExpr(te.Args[0]), te.ArrayLen)
	}

	switch te.Name {
	case "i8", "i16", "i32", "i64", "i128", "u8", "u16", "u32", "u64", "u128",
		"f32", "f64", "bool", "char", "string", "isize", "usize", "void":
		return Prim(te.Name)
	}

	var args []Type
	for _, a := range te.Args {
		args = append(args, c.resolveTypeExpr(a))
	}

	return NamedOf(te.Name, args...)
}

// Resolve fully resolves a checker-level type through the current
// substitution; exported for consumers (pkg/borrow, pkg/lower) that hold
// onto a Result's node types and need to walk them further.
func (c *Checker) Resolve(t Type) Type {
	return c.subst.Resolve(t)
}

// TypeOfExpr resolves a syntactic type annotation the same way the checker
// itself does; exported for the ownership checker (pkg/borrow), which needs
// to classify parameter and binding types without re-running inference.
func (c *Checker) TypeOfExpr(te ast.TypeExpr) Type {
	return c.resolveTypeExpr(te)
}

// IsResourceType reports whether t names a `@resource` struct or the
// built-in `File` resource type, consulted by the ownership
// checker when deciding whether a binding needs explicit consumption.
func (c *Checker) IsResourceType(t Type) bool {
	t = c.subst.Resolve(t)
	if t.Kind != KNamed {
		return false
	}

	if t.Named == "File" {
		return true
	}

	info, ok := c.structs[t.Named]

	return ok && info.IsResource
}

// Diagnostics returns every accumulated diagnostic.
func (c *Checker) Diagnostics() []*diag.Diagnostic {
	return c.diags.All()
}

// Structs exposes the declared struct table, keyed by name, for the
// lowerer's layout builder.
func (c *Checker) Structs() map[string]StructInfo { return c.structs }

// Enums exposes the declared enum table, keyed by name, for the lowerer's
// layout builder.
func (c *Checker) Enums() map[string]EnumInfo { return c.enums }

// Methods exposes the resolved method table, keyed by (type, method) name,
// for the lowerer's call-site resolution.
func (c *Checker) Methods() map[[2]string]MethodInfo { return c.methods }

// FuncSigs exposes resolved free-function signatures, keyed by name.
func (c *Checker) FuncSigs() map[string]Type { return c.funcSigs }

// Check type-checks the whole resolved program, returning the resolved
// per-node types regardless of whether errors occurred (the checker
// continues past each local failure).
func (c *Checker) Check() *Result {
	for _, fd := range c.resolved.AST.Functions {
		c.checkFunc(fd)
	}

	c.solveFixedPoint()

	result := &Result{
		NodeType:         make(map[ast.NodeId]Type, len(c.nodeType)),
		ConsumingMethods: make(map[[2]string]bool),
	}

	for id, t := range c.nodeType {
		result.NodeType[id] = c.subst.Resolve(t)
	}

	for key, m := range c.methods {
		if m.ReceiverKind == ast.ParamTake {
			result.ConsumingMethods[key] = true
		}
	}

	return result
}

func (c *Checker) checkFunc(fd *ast.FuncDecl) {
	c.pushScope()
	defer c.popScope()

	if fd.Receiver != nil {
		c.declareVar("self", c.resolveTypeExpr(fd.Receiver.Type))
	}

	for _, p := range fd.Params {
		c.declareVar(p.Name, c.resolveTypeExpr(p.Type))
	}

	savedReturn := c.curReturn
	c.curReturn = c.resolveTypeExpr(fd.ReturnType)
	defer func() { c.curReturn = savedReturn }()

	c.checkBlock(fd.Body)
}

func (c *Checker) checkBlock(stmts []ast.Stmt) {
	c.pushScope()
	defer c.popScope()

	for _, s := range stmts {
		c.checkStmt(s)
	}
}

// equal solves an Equal constraint immediately, as generated;
// HasField/HasMethod are the only kinds deferred to the fixed-point pass.
func (c *Checker) equal(a, b Type, span source.Span) {
	if err := c.subst.Unify(a, b); err != nil {
		c.diags.Add(diag.New(diag.TypeMismatch, span, "%s", err))
	}
}

// recordType stashes a node's inferred type for later resolution in
// Result.NodeType.
func (c *Checker) recordType(id ast.NodeId, t Type) {
	c.nodeType[id] = t
}

// typeError records a diagnostic and returns the Error sentinel so callers
// can keep walking without cascading.
func (c *Checker) typeError(kind diag.Kind, span source.Span, format string, args ...any) Type {
	c.diags.Add(diag.New(kind, span, format, args...))
	return Error
}
