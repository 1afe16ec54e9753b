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

// Package hidden computes the hidden-parameter (context) propagation
// pass: a `using Pool<T>` block makes a context available to every
// function it calls, transitively, without the programmer re-declaring
// `using` at each call site. Public functions are the exception -- they
// must declare every context they (or their callees) need explicitly,
// since a public function has no enclosing `using` block to infer from.
package hidden

import (
	"github.com/rask-lang/raskc/pkg/ast"
	"github.com/rask-lang/raskc/pkg/util"
)

// Key identifies one context requirement.
type Key struct {
	Name    string
	TypeArg string
}

// Requirements maps a function name to the full set of contexts it needs,
// explicit declarations unioned with everything transitively required by
// its callees.
type Requirements map[string]map[Key]bool

// MissingPublic names a public function that calls into a context
// requirement it never declared.
type MissingPublic struct {
	Function string
	Key      Key
}

// Propagate runs the fixed-point propagation over the program's
// direct-call graph (built from plain CallExpr-with-Ident-callee sites;
// method calls and closure calls never carry a hidden context since their
// target isn't statically named here). It returns the resolved requirement
// set per function and the list of public-function declarations that don't
// cover what their callees need.
func Propagate(prog *ast.Program) (Requirements, []MissingPublic) {
	calls := buildCallGraph(prog)

	req := make(Requirements, len(prog.Functions))
	explicit := make(Requirements, len(prog.Functions))

	for _, fd := range prog.Functions {
		set := make(map[Key]bool, len(fd.Contexts))
		for _, c := range fd.Contexts {
			set[Key{Name: c.Name, TypeArg: c.TypeArg}] = true
		}

		req[fd.Name] = set
		explicit[fd.Name] = util.ShallowCloneMap(set)
	}

	for changed := true; changed; {
		changed = false

		for _, fd := range prog.Functions {
			for _, callee := range calls[fd.Name] {
				for k := range req[callee] {
					if !req[fd.Name][k] {
						req[fd.Name][k] = true
						changed = true
					}
				}
			}
		}
	}

	var missing []MissingPublic

	for _, fd := range prog.Functions {
		if !fd.IsPublic {
			continue
		}

		for k := range req[fd.Name] {
			if !explicit[fd.Name][k] {
				missing = append(missing, MissingPublic{Function: fd.Name, Key: k})
			}
		}
	}

	return req, missing
}

func buildCallGraph(prog *ast.Program) map[string][]string {
	graph := make(map[string][]string, len(prog.Functions))

	for _, fd := range prog.Functions {
		var callees []string
		walkCalls(fd.Body, &callees)
		graph[fd.Name] = callees
	}

	return graph
}

func walkCalls(stmts []ast.Stmt, out *[]string) {
	for _, s := range stmts {
		walkStmtCalls(s, out)
	}
}

func walkStmtCalls(s ast.Stmt, out *[]string) {
	switch n := s.(type) {
	case *ast.LetStmt:
		walkExprCalls(n.Init, out)
	case *ast.ConstStmt:
		walkExprCalls(n.Init, out)
	case *ast.AssignStmt:
		walkExprCalls(n.Target, out)
		walkExprCalls(n.Value, out)
	case *ast.ExprStmt:
		walkExprCalls(n.Expr, out)
	case *ast.IfStmt:
		walkExprCalls(n.Cond, out)
		walkCalls(n.Then, out)
		walkCalls(n.Otherwise, out)
	case *ast.WhileStmt:
		walkExprCalls(n.Cond, out)
		walkCalls(n.Body, out)
	case *ast.WhileIsStmt:
		walkExprCalls(n.Scrut, out)
		walkCalls(n.Body, out)
	case *ast.ForRangeStmt:
		walkExprCalls(n.Start, out)
		walkExprCalls(n.End, out)
		walkCalls(n.Body, out)
	case *ast.ForEachStmt:
		walkExprCalls(n.Collection, out)
		walkCalls(n.Body, out)
	case *ast.LoopStmt:
		walkCalls(n.Body, out)
	case *ast.MatchStmt:
		walkExprCalls(n.Scrut, out)
		for _, arm := range n.Arms {
			walkExprCalls(arm.Guard, out)
			walkCalls(arm.Body, out)
		}
	case *ast.BreakStmt:
		walkExprCalls(n.Value, out)
	case *ast.ReturnStmt:
		walkExprCalls(n.Value, out)
	case *ast.EnsureStmt:
		walkCalls(n.Body, out)
		walkCalls(n.Handler, out)
	case *ast.UsingStmt:
		// A using block's body runs with its own freshly-provided context,
		// not the enclosing function's, so calls here don't propagate a
		// requirement back onto the enclosing function.
	case *ast.SelectStmt:
		for _, arm := range n.Arms {
			walkExprCalls(arm.Channel, out)
			walkExprCalls(arm.SendVal, out)
			walkCalls(arm.Body, out)
		}
		walkCalls(n.DefaultBody, out)
	case *ast.SpawnStmt:
		walkCalls(n.Body, out)
	}
}

func walkExprCalls(e ast.Expr, out *[]string) {
	if e == nil {
		return
	}

	switch n := e.(type) {
	case *ast.BinaryExpr:
		walkExprCalls(n.Lhs, out)
		walkExprCalls(n.Rhs, out)
	case *ast.UnaryExpr:
		walkExprCalls(n.Expr, out)
	case *ast.CallExpr:
		if id, ok := n.Callee.(*ast.Ident); ok {
			*out = append(*out, id.Name)
		}

		for _, a := range n.Args {
			walkExprCalls(a, out)
		}
	case *ast.MethodCallExpr:
		walkExprCalls(n.Receiver, out)
		for _, a := range n.Args {
			walkExprCalls(a, out)
		}
	case *ast.FieldExpr:
		walkExprCalls(n.Base, out)
	case *ast.IndexExpr:
		walkExprCalls(n.Base, out)
		walkExprCalls(n.Index, out)
	case *ast.RangeExpr:
		walkExprCalls(n.Start, out)
		walkExprCalls(n.End, out)
	case *ast.ClosureExpr:
		walkExprCalls(n.Body, out)
	case *ast.TryExpr:
		walkExprCalls(n.Inner, out)
	case *ast.GuardLetExpr:
		walkExprCalls(n.Scrut, out)
		walkCalls(n.Diverge, out)
	case *ast.MatchExpr:
		walkExprCalls(n.Scrut, out)
		for _, arm := range n.Arms {
			walkExprCalls(arm.Guard, out)
			walkExprCalls(arm.Value, out)
		}
	case *ast.StructLitExpr:
		for _, f := range n.Fields {
			walkExprCalls(f.Value, out)
		}
	case *ast.EnumCtorExpr:
		for _, a := range n.Args {
			walkExprCalls(a, out)
		}
	case *ast.IterChainExpr:
		walkExprCalls(n.Source, out)
		for _, a := range n.Adapters {
			walkExprCalls(a.Arg, out)
		}
	case *ast.BlockExpr:
		walkCalls(n.Stmts, out)
		walkExprCalls(n.Result, out)
	}
}
