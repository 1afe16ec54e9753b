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

import "testing"

func borrowOn(source string, mode Mode, projection ...string) ActiveBorrow {
	return ActiveBorrow{Source: source, Mode: mode, Projection: ProjectionOf(projection)}
}

func Test_Overlap_01_NoProjections_Overlap(t *testing.T) {
	a := borrowOn("state", Shared)
	b := borrowOn("state", Shared)

	if !a.overlaps(b) {
		t.Fatal("two projection-free borrows on one source overlap")
	}
}

func Test_Overlap_02_DisjointProjections_DoNotOverlap(t *testing.T) {
	a := borrowOn("state", Exclusive, "entities")
	b := borrowOn("state", Exclusive, "score")

	if a.overlaps(b) {
		t.Fatal("disjoint field sets must not overlap")
	}
}

func Test_Overlap_03_IntersectingProjections_Overlap(t *testing.T) {
	a := borrowOn("state", Shared, "entities", "score")
	b := borrowOn("state", Exclusive, "score")

	if !a.overlaps(b) {
		t.Fatal("intersecting field sets overlap")
	}
}

func Test_Overlap_04_ProjectionAgainstWhole_Overlaps(t *testing.T) {
	a := borrowOn("state", Shared)
	b := borrowOn("state", Exclusive, "score")

	if !a.overlaps(b) {
		t.Fatal("a whole-value borrow overlaps every projection")
	}
}

func Test_Incompatible_01_SharedShared_Compatible(t *testing.T) {
	a := borrowOn("s", Shared)
	b := borrowOn("s", Shared)

	if a.incompatible(b) {
		t.Fatal("two shared borrows are always compatible")
	}
}

func Test_Incompatible_02_SharedExclusive_Incompatible(t *testing.T) {
	a := borrowOn("s", Shared)
	b := borrowOn("s", Exclusive)

	if !a.incompatible(b) {
		t.Fatal("an overlapping exclusive borrow conflicts")
	}
}

func Test_Incompatible_03_TwoExclusives_DisjointProjections_Compatible(t *testing.T) {
	a := borrowOn("state", Exclusive, "entities")
	b := borrowOn("state", Exclusive, "score")

	if a.incompatible(b) {
		t.Fatal("disjoint exclusive projections are compatible")
	}
}

func Test_StateDFA_MovedIsTerminal(t *testing.T) {
	c := NewChecker(nil, nil)
	c.states = map[string]State{"x": Moved}
	c.borrows = nil

	c.recomputeState("x")

	if c.states["x"] != Moved {
		t.Fatal("no transition leaves Moved")
	}
}
