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
package borrow

import (
	"github.com/rask-lang/raskc/pkg/ast"
	"github.com/rask-lang/raskc/pkg/typecheck"
)

// checkStmts walks a statement list as one lexical block, releasing every
// Persistent borrow scoped to it once every statement has run.
func (c *Checker) checkStmts(stmts []ast.Stmt, block int) {
	prevBlock := c.curBlock
	c.curBlock = block

	for _, s := range stmts {
		c.checkStmt(s)
	}

	c.releaseScope(true, block)
	c.curBlock = prevBlock
}

func (c *Checker) checkStmt(s ast.Stmt) {
	stmtID := c.newStmt()
	defer c.releaseScope(false, stmtID)

	switch n := s.(type) {
	case *ast.LetStmt:
		c.checkExpr(n.Init)
		c.moveIfIdent(n.Init)
		c.states[n.Name] = Owned

		var ty typecheck.Type
		if n.Type.Name == "" || n.Type.Inferred {
			ty = c.result.NodeType[n.Init.NodeId()]
		} else {
			ty = c.tc.TypeOfExpr(n.Type)
		}

		if c.tc.IsResourceType(ty) {
			c.resourceBindings[n.Name] = true
		}
	case *ast.ConstStmt:
		c.checkConst(n)
	case *ast.AssignStmt:
		c.checkAssign(n)
	case *ast.ExprStmt:
		c.checkExpr(n.Expr)
	case *ast.IfStmt:
		c.checkExpr(n.Cond)
		c.checkStmts(n.Then, c.newBlock())
		c.checkStmts(n.Otherwise, c.newBlock())
	case *ast.WhileStmt:
		c.checkExpr(n.Cond)
		c.checkStmts(n.Body, c.newBlock())
	case *ast.WhileIsStmt:
		c.checkExpr(n.Scrut)
		c.checkPatternBody(n.Pattern, n.Scrut, n.Body)
	case *ast.ForRangeStmt:
		c.checkExpr(n.Start)
		c.checkExpr(n.End)

		block := c.newBlock()
		prevBlock := c.curBlock
		c.curBlock = block
		c.states[n.Var] = Owned
		c.checkStmts(n.Body, c.newBlock())
		c.releaseScope(true, block)
		c.curBlock = prevBlock
	case *ast.ForEachStmt:
		c.checkExpr(n.Collection)

		block := c.newBlock()
		prevBlock := c.curBlock
		c.curBlock = block
		c.states[n.Var] = Owned

		if n.ValueVar != "" {
			c.states[n.ValueVar] = Owned
		}

		c.checkStmts(n.Body, c.newBlock())
		c.releaseScope(true, block)
		c.curBlock = prevBlock
	case *ast.LoopStmt:
		c.checkStmts(n.Body, c.newBlock())
	case *ast.MatchStmt:
		c.checkMatchStmt(n)
	case *ast.BreakStmt:
		if n.Value != nil {
			c.checkExpr(n.Value)
		}
	case *ast.ContinueStmt:
		// No bindings touched.
	case *ast.ReturnStmt:
		if n.Value != nil {
			c.checkExpr(n.Value)
		}
	case *ast.EnsureStmt:
		c.ensureDepth++
		c.checkStmts(n.Body, c.newBlock())
		c.ensureDepth--

		if n.HasHandler {
			block := c.newBlock()
			prevBlock := c.curBlock
			c.curBlock = block
			c.states[n.ErrName] = Owned
			c.checkStmts(n.Handler, c.newBlock())
			c.releaseScope(true, block)
			c.curBlock = prevBlock
		}
	case *ast.UsingStmt:
		c.checkExpr(n.Workers)
		c.checkStmts(n.Body, c.newBlock())
	case *ast.SelectStmt:
		c.checkSelect(n)
	case *ast.SpawnStmt:
		c.checkStmts(n.Body, c.newBlock())
	}
}

func (c *Checker) checkConst(n *ast.ConstStmt) {
	c.checkExpr(n.Init)

	if ident, ok := n.Init.(*ast.Ident); ok {
		ty := c.result.NodeType[ident.NodeId()]
		if !c.tc.IsCopy(ty) {
			// A `const` from a non-Copy source borrows rather than moves,
			// Persistent for the enclosing block.
			c.addBorrow(ActiveBorrow{
				Source: ident.Name, Mode: Shared, Scope: Scope{Persistent: true, Id: c.curBlock},
			}, n.Span)
			c.states[n.Name] = BorrowedShared

			return
		}
	}

	c.states[n.Name] = Owned
}

func (c *Checker) checkAssign(n *ast.AssignStmt) {
	c.checkExpr(n.Value)
	c.moveIfIdent(n.Value)

	if target, ok := n.Target.(*ast.Ident); ok {
		c.mutateCheck(target.Name, n.Span)
		c.states[target.Name] = Owned

		return
	}

	c.checkExpr(n.Target)
}

// moveIfIdent implements the move half of move-on-assignment for `let`/`const`/assignment
// initializers that are bare identifiers of non-Copy type.
func (c *Checker) moveIfIdent(e ast.Expr) {
	ident, ok := e.(*ast.Ident)
	if !ok {
		return
	}

	ty := c.result.NodeType[ident.NodeId()]
	if c.tc.IsCopy(ty) {
		return
	}

	c.move(ident.Name, ident.Span())
}

// checkPatternBody binds a pattern's names as Owned for the duration of a
// nested block (match arms, while-is, guard-let), without attempting a
// finer-grained partial-move analysis of the scrutinee.
func (c *Checker) checkPatternBody(p ast.Pattern, scrut ast.Expr, body []ast.Stmt) {
	block := c.newBlock()
	prevBlock := c.curBlock
	c.curBlock = block

	for _, name := range p.Bindings {
		c.states[name] = Owned
	}

	c.checkStmts(body, c.newBlock())
	c.releaseScope(true, block)
	c.curBlock = prevBlock
}

func (c *Checker) checkMatchStmt(n *ast.MatchStmt) {
	c.checkExpr(n.Scrut)

	for _, arm := range n.Arms {
		block := c.newBlock()
		prevBlock := c.curBlock
		c.curBlock = block

		for _, name := range arm.Pattern.Bindings {
			c.states[name] = Owned
		}

		if arm.Guard != nil {
			c.checkExpr(arm.Guard)
		}

		c.checkStmts(arm.Body, c.newBlock())
		c.releaseScope(true, block)
		c.curBlock = prevBlock
	}
}

func (c *Checker) checkSelect(n *ast.SelectStmt) {
	for _, arm := range n.Arms {
		c.checkExpr(arm.Channel)

		block := c.newBlock()
		prevBlock := c.curBlock
		c.curBlock = block

		if arm.IsSend {
			if arm.SendVal != nil {
				c.checkExpr(arm.SendVal)
				c.moveIfIdent(arm.SendVal)
			}
		} else if arm.BindName != "" {
			c.states[arm.BindName] = Owned
		}

		c.checkStmts(arm.Body, c.newBlock())
		c.releaseScope(true, block)
		c.curBlock = prevBlock
	}

	if n.HasDefault {
		c.checkStmts(n.DefaultBody, c.newBlock())
	}
}
