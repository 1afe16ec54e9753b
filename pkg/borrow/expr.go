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

// checkExpr walks an expression checking every identifier read for
// use-after-move, recording resource-consuming method calls,
// and creating the Shared captures a closure's free variables need.
// It does not itself transition a binding to Moved for a moving position
// (`let`/`const`/assign/struct-lit/enum-ctor initializers do that via
// moveIfIdent): a bare read leaves ownership untouched.
func (c *Checker) checkExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.Ident:
		c.checkRead(n.Name, n.Span())
	case *ast.IntLit, *ast.FloatLit, *ast.BoolLit, *ast.StringLit:
	case *ast.BinaryExpr:
		c.checkExpr(n.Lhs)
		c.checkExpr(n.Rhs)
	case *ast.UnaryExpr:
		c.checkExpr(n.Expr)
	case *ast.CallExpr:
		c.checkExpr(n.Callee)

		for _, a := range n.Args {
			c.checkExpr(a)
		}
	case *ast.MethodCallExpr:
		c.checkMethodCall(n)
	case *ast.FieldExpr:
		c.checkExpr(n.Base)
	case *ast.IndexExpr:
		c.checkExpr(n.Base)
		c.checkExpr(n.Index)
	case *ast.RangeExpr:
		c.checkExpr(n.Start)
		c.checkExpr(n.End)
	case *ast.ClosureExpr:
		c.checkClosure(n)
	case *ast.TryExpr:
		c.checkExpr(n.Inner)
	case *ast.GuardLetExpr:
		c.checkExpr(n.Scrut)
		c.states[n.Name] = Owned
		c.checkStmts(n.Diverge, c.newBlock())
	case *ast.MatchExpr:
		c.checkMatchExpr(n)
	case *ast.StructLitExpr:
		for _, f := range n.Fields {
			c.checkExpr(f.Value)
			c.moveIfIdent(f.Value)
		}
	case *ast.EnumCtorExpr:
		for _, a := range n.Args {
			c.checkExpr(a)
			c.moveIfIdent(a)
		}
	case *ast.IterChainExpr:
		c.checkExpr(n.Source)

		for _, a := range n.Adapters {
			if a.Arg != nil {
				c.checkExpr(a.Arg)
			}
		}
	case *ast.BlockExpr:
		c.checkStmts(n.Stmts, c.newBlock())

		if n.Result != nil {
			c.checkExpr(n.Result)
		}
	}
}

// checkMethodCall special-cases an identifier receiver so a consuming
// method call (`take self`, resolved via the typed
// method table) commits the resource instead of merely reading it.
func (c *Checker) checkMethodCall(n *ast.MethodCallExpr) {
	if recv, ok := n.Receiver.(*ast.Ident); ok {
		recvTy := c.tc.Resolve(c.result.NodeType[recv.NodeId()])

		if recvTy.Kind == typecheck.KNamed && c.result.ConsumingMethods[[2]string{recvTy.Named, n.Method}] {
			c.consumeResource(recv.Name, n.Span())
		} else {
			c.checkRead(recv.Name, recv.Span())
		}
	} else {
		c.checkExpr(n.Receiver)
	}

	for _, a := range n.Args {
		c.checkExpr(a)
		c.moveIfIdent(a)
	}
}

func (c *Checker) checkClosure(n *ast.ClosureExpr) {
	for _, fv := range n.FreeVars {
		c.addBorrow(ActiveBorrow{
			Source: fv, Mode: Shared, Scope: Scope{Persistent: true, Id: c.curBlock},
		}, n.Span())
	}

	saved := map[string]State{}

	for _, p := range n.Params {
		if old, ok := c.states[p.Name]; ok {
			saved[p.Name] = old
		}

		c.states[p.Name] = Owned
	}

	c.checkExpr(n.Body)

	for _, p := range n.Params {
		if old, ok := saved[p.Name]; ok {
			c.states[p.Name] = old
		} else {
			delete(c.states, p.Name)
		}
	}
}

func (c *Checker) checkMatchExpr(n *ast.MatchExpr) {
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

		c.checkExpr(arm.Value)

		c.releaseScope(true, block)
		c.curBlock = prevBlock
	}
}
