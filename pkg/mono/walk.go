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

import "github.com/rask-lang/raskc/pkg/ast"

// collectCalls walks every statement/expression reachable from a function
// body and hands every call site (free-function or method) to visit. It is
// the monomorphizer's only use of the AST: finding every concrete argument
// combination a generic declaration is instantiated with.
func collectCalls(stmts []ast.Stmt, visit func(ast.Expr)) {
	for _, s := range stmts {
		walkStmt(s, visit)
	}
}

func walkStmt(s ast.Stmt, visit func(ast.Expr)) {
	switch v := s.(type) {
	case *ast.LetStmt:
		walkExpr(v.Init, visit)
	case *ast.ConstStmt:
		walkExpr(v.Init, visit)
	case *ast.AssignStmt:
		walkExpr(v.Target, visit)
		walkExpr(v.Value, visit)
	case *ast.ExprStmt:
		walkExpr(v.Expr, visit)
	case *ast.IfStmt:
		walkExpr(v.Cond, visit)
		collectCalls(v.Then, visit)
		collectCalls(v.Otherwise, visit)
	case *ast.WhileStmt:
		walkExpr(v.Cond, visit)
		collectCalls(v.Body, visit)
	case *ast.WhileIsStmt:
		walkExpr(v.Scrut, visit)
		collectCalls(v.Body, visit)
	case *ast.ForRangeStmt:
		walkExpr(v.Start, visit)
		walkExpr(v.End, visit)
		collectCalls(v.Body, visit)
	case *ast.ForEachStmt:
		walkExpr(v.Collection, visit)
		collectCalls(v.Body, visit)
	case *ast.LoopStmt:
		collectCalls(v.Body, visit)
	case *ast.MatchStmt:
		walkExpr(v.Scrut, visit)
		for _, arm := range v.Arms {
			walkExpr(arm.Guard, visit)
			collectCalls(arm.Body, visit)
		}
	case *ast.BreakStmt:
		walkExpr(v.Value, visit)
	case *ast.ReturnStmt:
		walkExpr(v.Value, visit)
	case *ast.EnsureStmt:
		collectCalls(v.Body, visit)
		collectCalls(v.Handler, visit)
	case *ast.UsingStmt:
		walkExpr(v.Workers, visit)
		collectCalls(v.Body, visit)
	case *ast.SelectStmt:
		for _, arm := range v.Arms {
			walkExpr(arm.Channel, visit)
			walkExpr(arm.SendVal, visit)
			collectCalls(arm.Body, visit)
		}

		collectCalls(v.DefaultBody, visit)
	case *ast.SpawnStmt:
		collectCalls(v.Body, visit)
	}
}

func walkExpr(e ast.Expr, visit func(ast.Expr)) {
	if e == nil {
		return
	}

	switch v := e.(type) {
	case *ast.BinaryExpr:
		walkExpr(v.Lhs, visit)
		walkExpr(v.Rhs, visit)
	case *ast.UnaryExpr:
		walkExpr(v.Expr, visit)
	case *ast.CallExpr:
		walkExpr(v.Callee, visit)

		for _, a := range v.Args {
			walkExpr(a, visit)
		}

		visit(v)
	case *ast.MethodCallExpr:
		walkExpr(v.Receiver, visit)

		for _, a := range v.Args {
			walkExpr(a, visit)
		}

		visit(v)
	case *ast.FieldExpr:
		walkExpr(v.Base, visit)
	case *ast.IndexExpr:
		walkExpr(v.Base, visit)
		walkExpr(v.Index, visit)
	case *ast.RangeExpr:
		walkExpr(v.Start, visit)
		walkExpr(v.End, visit)
	case *ast.ClosureExpr:
		walkExpr(v.Body, visit)
	case *ast.TryExpr:
		walkExpr(v.Inner, visit)
	case *ast.GuardLetExpr:
		walkExpr(v.Scrut, visit)
		collectCalls(v.Diverge, visit)
	case *ast.MatchExpr:
		walkExpr(v.Scrut, visit)

		for _, arm := range v.Arms {
			walkExpr(arm.Guard, visit)
			walkExpr(arm.Value, visit)
		}
	case *ast.StructLitExpr:
		for _, f := range v.Fields {
			walkExpr(f.Value, visit)
		}
	case *ast.EnumCtorExpr:
		for _, a := range v.Args {
			walkExpr(a, visit)
		}
	case *ast.IterChainExpr:
		walkExpr(v.Source, visit)

		for _, a := range v.Adapters {
			walkExpr(a.Arg, visit)
		}
	case *ast.BlockExpr:
		collectCalls(v.Stmts, visit)
		walkExpr(v.Result, visit)
	}
}
