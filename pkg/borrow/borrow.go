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
	"fmt"

	"github.com/rask-lang/raskc/pkg/diag"
	"github.com/rask-lang/raskc/pkg/util/source"
)

// addBorrow creates a new active borrow, reporting a BorrowConflict
// against any existing incompatible borrow on the same source instead of
// recording it.
func (c *Checker) addBorrow(b ActiveBorrow, span source.Span) {
	for _, existing := range c.borrows {
		if existing.Source != b.Source {
			continue
		}

		if existing.incompatible(b) {
			c.diags.Add(diag.New(diag.BorrowConflict, span,
				"%q already borrowed %s, cannot also borrow %s", b.Source, existing.Mode, b.Mode).
				WithField("name", b.Source).
				WithField("requested", b.Mode.String()).
				WithField("existing", existing.Mode.String()))

			return
		}
	}

	c.borrows = append(c.borrows, b)
	c.recomputeState(b.Source)
}

// recomputeState derives a binding's State from its live borrows, leaving
// Moved untouched (Moved is terminal).
func (c *Checker) recomputeState(name string) {
	if c.states[name] == Moved {
		return
	}

	mode := -1

	for _, b := range c.borrows {
		if b.Source != name {
			continue
		}

		if b.Mode == Exclusive {
			mode = int(Exclusive)
			break
		}

		mode = int(Shared)
	}

	switch mode {
	case int(Exclusive):
		c.states[name] = BorrowedExclusive
	case int(Shared):
		c.states[name] = BorrowedShared
	default:
		c.states[name] = Owned
	}
}

// releaseScope drops every borrow matching the given scope and recomputes the affected bindings' states.
func (c *Checker) releaseScope(persistent bool, id int) {
	var kept []ActiveBorrow

	affected := map[string]bool{}

	for _, b := range c.borrows {
		if b.Scope.Persistent == persistent && b.Scope.Id == id {
			affected[b.Source] = true
			continue
		}

		kept = append(kept, b)
	}

	c.borrows = kept

	for name := range affected {
		c.recomputeState(name)
	}
}

// checkRead implements use-after-move: reading a Moved binding is an error.
func (c *Checker) checkRead(name string, span source.Span) {
	if c.states[name] == Moved {
		movedAt := c.movedAt[name]
		c.diags.Add(diag.New(diag.UseAfterMove, span, "use of moved value %q", name).
			WithField("name", name).
			WithField("moved_at", fmt.Sprintf("%d", movedAt.Start())))
	}
}

// move transitions a binding on a moving read: a non-Copy identifier read in a
// moving position transitions to Moved at span, unless nested inside an
// `ensure` body, in which case the move is deferred and the binding
// is left untouched.
func (c *Checker) move(name string, span source.Span) {
	if c.ensureDepth > 0 {
		return
	}

	c.checkRead(name, span)
	c.states[name] = Moved
	c.movedAt[name] = span
}

// consumeResource implements the resource-consumption rules: a consuming
// method call on a resource binding either moves it (outside `ensure`) or
// registers it for commitment at scope exit (inside `ensure`).
func (c *Checker) consumeResource(name string, span source.Span) {
	if !c.resourceBindings[name] {
		return
	}

	if c.ensureDepth > 0 {
		c.ensureRegistered[name] = true
		return
	}

	c.checkRead(name, span)
	c.states[name] = Moved
	c.movedAt[name] = span
}

// mutateCheck rejects mutation while borrowed: assigning to a Borrowed binding is an error.
func (c *Checker) mutateCheck(name string, span source.Span) {
	switch c.states[name] {
	case BorrowedShared, BorrowedExclusive:
		c.diags.Add(diag.New(diag.MutateWhileBorrowed, span, "cannot assign to borrowed binding %q", name).
			WithField("name", name))
	}
}
