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
package mono

import (
	"github.com/rask-lang/raskc/pkg/ast"
	"github.com/rask-lang/raskc/pkg/mir"
	"github.com/rask-lang/raskc/pkg/typecheck"
)

// runFunctions finds every concrete call site of a generic function
// (one declared with TypeParams) and clones its already-lowered mir.Function
// under a mangled name, one clone per distinct instantiation.
//
// Scope decision: a generic
// function's body is lowered once, before this pass runs, using the same
// opaque-pointer representation lower.mirTypeWith gives every
// still-generic reference (Vec/Pool/Map/Set/Channel and any bare type-param
// value are all Ptr-sized runtime handles regardless of the concrete type
// bound to the parameter). A clone therefore reproduces the generic body
// byte-for-byte under the mangled name; what changes across instantiations
// is only the mangled identity codegen registers as a distinct callee,
// which is what a real Cranelift backend needs to pick element-size-aware
// runtime helper variants. Existing Call statements inside
// already-lowered bodies keep calling the unmangled generic name; rewriting
// them to call the mangled clone would require threading the AST CallExpr's
// NodeId through mir.Call (the statement only carries Func string),
// which is a lowering-time change, not a monomorphization-time one, and is
// out of scope for this pass.
func (m *Monomorphizer) runFunctions(prog *ast.Program, result *typecheck.Result) {
	generic := make(map[string]*ast.FuncDecl)

	for _, fd := range prog.Functions {
		if len(fd.TypeParams) > 0 {
			generic[fd.Name] = fd
		}
	}

	if len(generic) == 0 {
		return
	}

	for _, fd := range prog.Functions {
		collectCalls(fd.Body, func(e ast.Expr) {
			call, ok := e.(*ast.CallExpr)
			if !ok {
				return
			}

			callee, ok := call.Callee.(*ast.Ident)
			if !ok {
				return
			}

			target, ok := generic[callee.Name]
			if !ok {
				return
			}

			m.instantiateFunc(target, call, result)
		})
	}
}

func (m *Monomorphizer) instantiateFunc(fd *ast.FuncDecl, call *ast.CallExpr, result *typecheck.Result) {
	subst := map[string]typecheck.Type{}

	for i, p := range fd.Params {
		if i >= len(call.Args) {
			break
		}

		declared := m.tc.TypeOfExpr(p.Type)
		actual, ok := result.NodeType[call.Args[i].NodeId()]

		if !ok {
			continue
		}

		bindTypeParam(declared, m.tc.Resolve(actual), fd.TypeParams, subst)
	}

	if len(subst) != len(fd.TypeParams) {
		// Not every type parameter could be bound from this call site's
		// argument types (e.g. a parameter only appears in the return
		// type); skip rather than emit a partially-specialized clone.
		return
	}

	args := make([]string, len(fd.TypeParams))

	for i, p := range fd.TypeParams {
		args[i] = mangleArg(subst[p])
	}

	key := fd.Name + "$" + joinUnderscore(args)
	if m.funcInst.Contains(instKey(key)) {
		return
	}

	orig := m.prog.FunctionByName(fd.Name)
	if orig == nil {
		return
	}

	m.prog.Functions = append(m.prog.Functions, cloneFunction(orig, key))
	m.funcInst.Insert(instKey(key))
	m.record(fd.Name, substSlice(fd.TypeParams, subst), key)
}

func substSlice(params []string, subst map[string]typecheck.Type) []typecheck.Type {
	out := make([]typecheck.Type, len(params))
	for i, p := range params {
		out[i] = subst[p]
	}

	return out
}

// bindTypeParam structurally matches a declared (possibly generic) type
// against a concrete actual type, recording any type-parameter binding it
// finds. Mismatched shapes are silently ignored: the ownership/type checker
// has already rejected genuinely ill-typed calls by the time this pass runs.
func bindTypeParam(declared, actual typecheck.Type, params []string, subst map[string]typecheck.Type) {
	if declared.Kind == typecheck.KNamed && len(declared.Args) == 0 && isParam(declared.Named, params) {
		if _, bound := subst[declared.Named]; !bound {
			subst[declared.Named] = actual
		}

		return
	}

	if declared.Kind != actual.Kind {
		return
	}

	for i := 0; i < len(declared.Args) && i < len(actual.Args); i++ {
		bindTypeParam(declared.Args[i], actual.Args[i], params, subst)
	}
}

func isParam(name string, params []string) bool {
	for _, p := range params {
		if p == name {
			return true
		}
	}

	return false
}

// joinUnderscore concatenates mangled type-argument names in declaration
// order (NOT sorted -- the order is part of the mangled name's identity,
// matching each TypeParam position).
func joinUnderscore(parts []string) string {
	out := parts[0]

	for _, p := range parts[1:] {
		out += "_" + p
	}

	return out
}

// cloneFunction deep-copies a function's blocks/locals under a new name, so
// that the original generic body and the specialized clone are independent
// mir.Function values (the builder/validator both assume a function owns
// its own Locals/Blocks slices).
func cloneFunction(f *mir.Function, name string) *mir.Function {
	clone := &mir.Function{
		Name:       name,
		Params:     append([]mir.LocalId{}, f.Params...),
		ReturnType: f.ReturnType,
		Locals:     append([]mir.Local{}, f.Locals...),
		Entry:      f.Entry,
	}

	clone.Blocks = make([]*mir.Block, len(f.Blocks))
	for i, b := range f.Blocks {
		nb := &mir.Block{Id: b.Id, Stmts: append([]mir.Stmt{}, b.Stmts...), Terminator: b.Terminator, IsCleanup: b.IsCleanup}
		clone.Blocks[i] = nb
	}

	return clone
}
