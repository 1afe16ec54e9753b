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

import "github.com/rask-lang/raskc/pkg/ast"

func (c *Checker) checkStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.LetStmt:
		c.checkLet(n)
	case *ast.ConstStmt:
		c.checkConst(n)
	case *ast.AssignStmt:
		c.equal(c.inferExpr(n.Target), c.inferExpr(n.Value), n.Span)
	case *ast.ExprStmt:
		c.inferExpr(n.Expr)
	case *ast.IfStmt:
		c.equal(c.inferExpr(n.Cond), Prim("bool"), n.Cond.Span())
		c.checkBlock(n.Then)
		c.checkBlock(n.Otherwise)
	case *ast.WhileStmt:
		c.equal(c.inferExpr(n.Cond), Prim("bool"), n.Cond.Span())
		c.checkBlock(n.Body)
	case *ast.WhileIsStmt:
		scrut := c.inferExpr(n.Scrut)
		c.pushScope()

		bound := c.bindPatternTy(n.Pattern, scrut)
		for i, name := range n.Pattern.Bindings {
			if i < len(bound) {
				c.declareVar(name, bound[i])
			}
		}

		c.checkBlock(n.Body)
		c.popScope()
	case *ast.ForRangeStmt:
		c.equal(c.inferExpr(n.Start), Prim("usize"), n.Start.Span())
		c.equal(c.inferExpr(n.End), Prim("usize"), n.End.Span())
		c.pushScope()
		c.declareVar(n.Var, Prim("usize"))
		c.checkBlock(n.Body)
		c.popScope()
	case *ast.ForEachStmt:
		c.checkForEach(n)
	case *ast.LoopStmt:
		c.checkBlock(n.Body)
	case *ast.MatchStmt:
		c.checkMatchStmt(n)
	case *ast.BreakStmt:
		if n.Value != nil {
			c.inferExpr(n.Value)
		}
	case *ast.ContinueStmt:
		// No constraints: continue carries no value.
	case *ast.ReturnStmt:
		if n.Value != nil {
			c.equal(c.inferExpr(n.Value), c.curReturn, n.Value.Span())
		} else {
			c.equal(Prim("void"), c.curReturn, n.Span)
		}
	case *ast.EnsureStmt:
		c.checkBlock(n.Body)

		if n.HasHandler {
			c.pushScope()
			c.declareVar(n.ErrName, Prim("string"))
			c.checkBlock(n.Handler)
			c.popScope()
		}
	case *ast.UsingStmt:
		c.equal(c.inferExpr(n.Workers), Prim("usize"), n.Workers.Span())
		c.checkBlock(n.Body)
	case *ast.SelectStmt:
		c.checkSelect(n)
	case *ast.SpawnStmt:
		c.checkBlock(n.Body)
	}
}

func (c *Checker) checkLet(n *ast.LetStmt) {
	initTy := c.inferExpr(n.Init)

	if n.Type.Name != "" || n.Type.Inferred {
		declared := c.resolveTypeExpr(n.Type)
		c.equal(initTy, declared, n.Init.Span())
		c.declareVar(n.Name, declared)

		return
	}

	c.declareVar(n.Name, initTy)
}

func (c *Checker) checkConst(n *ast.ConstStmt) {
	initTy := c.inferExpr(n.Init)

	if n.Type.Name != "" || n.Type.Inferred {
		declared := c.resolveTypeExpr(n.Type)
		c.equal(initTy, declared, n.Init.Span())
		c.declareVar(n.Name, declared)

		return
	}

	c.declareVar(n.Name, initTy)
}

func (c *Checker) checkForEach(n *ast.ForEachStmt) {
	collTy := c.subst.Resolve(c.inferExpr(n.Collection))

	c.pushScope()
	defer c.popScope()

	if collTy.Kind == KNamed && len(collTy.Args) > 0 {
		if n.Entries && collTy.Named == "Pool" {
			c.declareVar(n.Var, Prim("usize"))

			if n.ValueVar != "" {
				c.declareVar(n.ValueVar, collTy.Args[0])
			}
		} else {
			c.declareVar(n.Var, collTy.Args[0])
		}
	} else {
		c.declareVar(n.Var, c.freshVar())
	}

	c.checkBlock(n.Body)
}

func (c *Checker) checkMatchStmt(n *ast.MatchStmt) {
	scrutTy := c.inferExpr(n.Scrut)

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

		c.checkBlock(arm.Body)
		c.popScope()
	}
}

func (c *Checker) checkSelect(n *ast.SelectStmt) {
	for _, arm := range n.Arms {
		chanTy := c.subst.Resolve(c.inferExpr(arm.Channel))

		elem := Type{}
		if chanTy.Kind == KNamed && len(chanTy.Args) == 1 {
			elem = chanTy.Args[0]
		}

		c.pushScope()

		if arm.IsSend {
			if arm.SendVal != nil {
				c.equal(c.inferExpr(arm.SendVal), elem, arm.SendVal.Span())
			}
		} else if arm.BindName != "" {
			c.declareVar(arm.BindName, elem)
		}

		c.checkBlock(arm.Body)
		c.popScope()
	}

	if n.HasDefault {
		c.checkBlock(n.DefaultBody)
	}
}
