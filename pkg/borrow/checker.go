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
	"github.com/rask-lang/raskc/pkg/diag"
	"github.com/rask-lang/raskc/pkg/resolve"
	"github.com/rask-lang/raskc/pkg/typecheck"
	"github.com/rask-lang/raskc/pkg/util/source"
)

// Checker walks a typed AST enforcing the ownership and borrow rules.
// One instance is reused across every function in the program; per-function
// state is reset at the start of each checkFunc call.
type Checker struct {
	tc     *typecheck.Checker
	result *typecheck.Result
	diags  *diag.Bag

	states           map[string]State
	movedAt          map[string]source.Span
	borrows          []ActiveBorrow
	resourceBindings map[string]bool
	ensureRegistered map[string]bool

	nextBlock   int
	nextStmt    int
	curBlock    int
	ensureDepth int
}

// NewChecker constructs an ownership checker driven off a completed
// type-checking pass.
func NewChecker(tc *typecheck.Checker, result *typecheck.Result) *Checker {
	return &Checker{tc: tc, result: result, diags: &diag.Bag{}}
}

// Diagnostics returns every accumulated diagnostic.
func (c *Checker) Diagnostics() []*diag.Diagnostic {
	return c.diags.All()
}

// Check walks every function in the resolved program.
func (c *Checker) Check(prog *resolve.Program) {
	for _, fd := range prog.AST.Functions {
		c.checkFunc(fd)
	}
}

func (c *Checker) newBlock() int {
	id := c.nextBlock
	c.nextBlock++

	return id
}

func (c *Checker) newStmt() int {
	id := c.nextStmt
	c.nextStmt++

	return id
}

func (c *Checker) checkFunc(fd *ast.FuncDecl) {
	c.states = make(map[string]State)
	c.movedAt = make(map[string]source.Span)
	c.borrows = nil
	c.resourceBindings = make(map[string]bool)
	c.ensureRegistered = make(map[string]bool)
	c.nextBlock = 0
	c.nextStmt = 0
	c.curBlock = 0
	c.ensureDepth = 0

	entryBlock := c.newBlock()
	c.curBlock = entryBlock

	c.setupParams(fd, entryBlock)
	c.checkStmts(fd.Body, c.newBlock())
	c.checkResourceConsumption(fd.Span)
}

// setupParams sets up parameter ownership: `take` starts Owned (and
// tracked as a resource binding if its type is a resource type); plain
// starts Borrowed{Shared} persistent at block 0; `mutate` starts
// Borrowed{Exclusive} persistent at block 0. Projected parameters attach
// their projection to the borrow record.
func (c *Checker) setupParams(fd *ast.FuncDecl, block int) {
	if fd.Receiver != nil {
		// A `take self` receiver is the consumption sink itself: the method
		// owns the value and its return IS the consumption (that is what
		// makes the method "consuming"), so the receiver
		// is not re-tracked as a resource binding here.
		c.setupParam(*fd.Receiver, fd.ReceiverKind, block, false)
	}

	for _, p := range fd.Params {
		c.setupParam(p, p.Kind, block, true)
	}
}

func (c *Checker) setupParam(p ast.Param, kind ast.ParamKind, block int, trackResource bool) {
	ty := c.tc.TypeOfExpr(p.Type)

	switch kind {
	case ast.ParamTake:
		c.states[p.Name] = Owned

		if trackResource && c.tc.IsResourceType(ty) {
			c.resourceBindings[p.Name] = true
		}
	case ast.ParamMutate:
		c.addBorrow(ActiveBorrow{
			Source: p.Name, Mode: Exclusive,
			Scope: Scope{Persistent: true, Id: block}, Projection: ProjectionOf(p.Projection),
		}, syntheticSpan())
	default:
		c.addBorrow(ActiveBorrow{
			Source: p.Name, Mode: Shared,
			Scope: Scope{Persistent: true, Id: block}, Projection: ProjectionOf(p.Projection),
		}, syntheticSpan())
	}
}

// syntheticSpan is used for the borrow created at function entry for
// plain/mutate parameters, which has no use-site span of its own;
// diagnostics about a conflict are reported at the conflicting use's span
// instead (see addBorrow).
func syntheticSpan() source.Span {
	return source.NewSpan(0, 0)
}

// checkResourceConsumption enforces mandatory consumption: every resource binding must be
// Moved (consumed) or registered via `ensure` by function exit.
func (c *Checker) checkResourceConsumption(span source.Span) {
	for name := range c.resourceBindings {
		if c.states[name] == Moved {
			continue
		}

		if c.ensureRegistered[name] {
			continue
		}

		c.diags.Add(diag.New(diag.ResourceNotConsumed, span, "resource %q not consumed before scope exit", name).
			WithField("name", name))
	}
}
