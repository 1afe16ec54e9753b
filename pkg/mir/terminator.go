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
package mir

import "fmt"

// Terminator is the closed set of control-transferring block endings.
// Exactly one appears per Block.
type Terminator interface {
	isTerminator()
	// Successors lists the block ids control may transfer to directly
	// (CleanupReturn's cleanup chain is listed separately; see Validate).
	Successors() []BlockId
	String() string
}

// ============================================================================
// Return
// ============================================================================

// Return exits the function, optionally with a value.
type Return struct{ Value *Operand }

func (Return) isTerminator() {}

// Successors returns nil; Return has no successor block.
func (Return) Successors() []BlockId { return nil }

func (r Return) String() string {
	if r.Value != nil {
		return fmt.Sprintf("(return %s)", *r.Value)
	}

	return "(return)"
}

// ============================================================================
// Goto
// ============================================================================

// Goto unconditionally transfers control to Target.
type Goto struct{ Target BlockId }

func (Goto) isTerminator() {}

// Successors returns {Target}.
func (g Goto) Successors() []BlockId { return []BlockId{g.Target} }

func (g Goto) String() string { return fmt.Sprintf("(goto bb%d)", g.Target) }

// ============================================================================
// Branch
// ============================================================================

// Branch transfers control to Then if Cond (a Bool operand) is true,
// otherwise to Else.
type Branch struct {
	Cond Operand
	Then BlockId
	Else BlockId
}

func (Branch) isTerminator() {}

// Successors returns {Then, Else}.
func (b Branch) Successors() []BlockId { return []BlockId{b.Then, b.Else} }

func (b Branch) String() string {
	return fmt.Sprintf("(branch %s bb%d bb%d)", b.Cond, b.Then, b.Else)
}

// ============================================================================
// CleanupReturn
// ============================================================================

// CleanupReturn executes the listed cleanup blocks in LIFO order, then
// returns. The code generator inlines each cleanup block's statements
// before emitting the actual return.
type CleanupReturn struct {
	Value        *Operand
	CleanupChain []BlockId
}

func (CleanupReturn) isTerminator() {}

// Successors returns nil directly; cleanup_chain blocks are reached by
// inlining, not by control-flow edges, so they are not listed here (the
// MIR validator walks CleanupChain separately -- see Validate).
func (CleanupReturn) Successors() []BlockId { return nil }

func (c CleanupReturn) String() string {
	if c.Value != nil {
		return fmt.Sprintf("(cleanup-return %s %v)", *c.Value, c.CleanupChain)
	}

	return fmt.Sprintf("(cleanup-return %v)", c.CleanupChain)
}
