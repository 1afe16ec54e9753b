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

// Package borrow implements the ownership and borrow checker: a
// per-function binding-state DFA (Owned/Moved/Borrowed) plus
// active-borrow bookkeeping with Persistent/Instant scopes, walking each
// function's scopes once and enforcing the affine ownership and borrow
// rules as it goes.
package borrow

import (
	"github.com/rask-lang/raskc/pkg/util/collection/set"
	"github.com/rask-lang/raskc/pkg/util/source"
)

// State is a binding's position in the ownership DFA.
type State uint8

// The closed set of binding states.
const (
	Owned State = iota
	Moved
	BorrowedShared
	BorrowedExclusive
)

func (s State) String() string {
	switch s {
	case Owned:
		return "Owned"
	case Moved:
		return "Moved"
	case BorrowedShared:
		return "Borrowed{Shared}"
	case BorrowedExclusive:
		return "Borrowed{Exclusive}"
	}

	return "?"
}

// Mode is the exclusivity of a borrow.
type Mode uint8

// The two borrow modes.
const (
	Shared Mode = iota
	Exclusive
)

func (m Mode) String() string {
	if m == Exclusive {
		return "Exclusive"
	}

	return "Shared"
}

// Scope is Persistent{block_id} or Instant{stmt_id}.
type Scope struct {
	Persistent bool
	Id         int
}

// ActiveBorrow records one live borrow. Projection is nil for a
// whole-value borrow, or the sorted set of field names a `T.{f1,f2}`
// parameter annotation selects.
type ActiveBorrow struct {
	Source     string
	Mode       Mode
	Scope      Scope
	Projection *set.SortedSet[string]
	Span       source.Span
}

// ProjectionOf builds a borrow's field-projection set from the syntactic
// field list, or nil when the list is empty (whole-value borrow).
func ProjectionOf(fields []string) *set.SortedSet[string] {
	if len(fields) == 0 {
		return nil
	}

	s := set.NewSortedSet[string]()
	for _, f := range fields {
		s.Insert(f)
	}

	return s
}

// overlaps reports whether two borrows on the same source touch the same
// storage: both unprojected, or their field-projection sets intersect.
func (a ActiveBorrow) overlaps(b ActiveBorrow) bool {
	if a.Projection == nil || b.Projection == nil {
		return true
	}

	for i := a.Projection.Iter(); i.HasNext(); {
		if b.Projection.Contains(i.Next()) {
			return true
		}
	}

	return false
}

// incompatible implements the conflict rule: overlapping borrows are
// incompatible unless both are Shared.
func (a ActiveBorrow) incompatible(b ActiveBorrow) bool {
	if !a.overlaps(b) {
		return false
	}

	return a.Mode == Exclusive || b.Mode == Exclusive
}
