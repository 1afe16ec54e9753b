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

// Stmt is the closed set of non-branching MIR statements. Statements
// execute top-to-bottom within a Block; only the Block's Terminator
// transfers control.
type Stmt interface {
	isStmt()
	String() string
}

// ============================================================================
// Assign
// ============================================================================

// Assign computes an RValue and stores it into dst.
type Assign struct {
	Dst    LocalId
	Rvalue RValue
}

func (Assign) isStmt() {}

func (a Assign) String() string { return fmt.Sprintf("(assign _%d %s)", a.Dst, a.Rvalue) }

// ============================================================================
// Store
// ============================================================================

// Store writes a value at addr+offset, where addr is a Ptr-typed operand.
type Store struct {
	Addr   Operand
	Offset uint
	Value  Operand
}

func (Store) isStmt() {}

func (s Store) String() string {
	return fmt.Sprintf("(store %s %d %s)", s.Addr, s.Offset, s.Value)
}

// ============================================================================
// Call
// ============================================================================

// Call invokes a named function, optionally binding its return value.
type Call struct {
	Dst  *LocalId
	Func string
	Args []Operand
}

func (Call) isStmt() {}

func (c Call) String() string {
	if c.Dst != nil {
		return fmt.Sprintf("(call _%d %s %v)", *c.Dst, c.Func, c.Args)
	}

	return fmt.Sprintf("(call %s %v)", c.Func, c.Args)
}

// ============================================================================
// SourceLocation
// ============================================================================

// SourceLocation is a no-op that records a source position for diagnostics.
type SourceLocation struct {
	Line uint
	Col  uint
}

func (SourceLocation) isStmt() {}

func (s SourceLocation) String() string { return fmt.Sprintf("(loc %d %d)", s.Line, s.Col) }

// ============================================================================
// EnsurePush / EnsurePop
// ============================================================================

// EnsurePush declares that a cleanup block is live in the current scope.
type EnsurePush struct{ CleanupBlock BlockId }

func (EnsurePush) isStmt() {}

func (e EnsurePush) String() string { return fmt.Sprintf("(ensure-push bb%d)", e.CleanupBlock) }

// EnsurePop drops the most recent ensure registration.
type EnsurePop struct{}

func (EnsurePop) isStmt() {}

func (EnsurePop) String() string { return "(ensure-pop)" }

// ============================================================================
// Resource tracker hooks
// ============================================================================

// ResourceRegister registers a resource at runtime, binding its id to dst.
type ResourceRegister struct {
	Dst        LocalId
	TypeName   string
	ScopeDepth uint
}

func (ResourceRegister) isStmt() {}

func (r ResourceRegister) String() string {
	return fmt.Sprintf("(resource-register _%d %q %d)", r.Dst, r.TypeName, r.ScopeDepth)
}

// ResourceConsume marks a resource consumed.
type ResourceConsume struct{ ResourceId Operand }

func (ResourceConsume) isStmt() {}

func (r ResourceConsume) String() string { return fmt.Sprintf("(resource-consume %s)", r.ResourceId) }

// ResourceScopeCheck aborts at runtime if any resource at this depth is
// unconsumed.
type ResourceScopeCheck struct{ ScopeDepth uint }

func (ResourceScopeCheck) isStmt() {}

func (r ResourceScopeCheck) String() string {
	return fmt.Sprintf("(resource-scope-check %d)", r.ScopeDepth)
}

// ============================================================================
// PoolCheckedAccess
// ============================================================================

// PoolCheckedAccess is a validated pool dereference; traps on a stale or
// out-of-bounds handle.
type PoolCheckedAccess struct {
	Dst    LocalId
	Pool   Operand
	Handle Operand
}

func (PoolCheckedAccess) isStmt() {}

func (p PoolCheckedAccess) String() string {
	return fmt.Sprintf("(pool-checked-access _%d %s %s)", p.Dst, p.Pool, p.Handle)
}

// ============================================================================
// Closure primitives
// ============================================================================

// Capture is one entry in a ClosureCreate's capture list: the captured
// local and its assigned byte offset in the environment.
type Capture struct {
	Local  LocalId
	Offset uint
}

// ClosureCreate builds a closure value: a function pointer plus an
// environment holding the captures, heap- or stack-allocated.
type ClosureCreate struct {
	Dst      LocalId
	FuncName string
	Captures []Capture
	Heap     bool
}

func (ClosureCreate) isStmt() {}

func (c ClosureCreate) String() string {
	return fmt.Sprintf("(closure-create _%d %s %v heap=%v)", c.Dst, c.FuncName, c.Captures, c.Heap)
}

// ClosureCall calls a closure via its environment pointer.
type ClosureCall struct {
	Dst     *LocalId
	Closure Operand
	Args    []Operand
}

func (ClosureCall) isStmt() {}

func (c ClosureCall) String() string {
	if c.Dst != nil {
		return fmt.Sprintf("(closure-call _%d %s %v)", *c.Dst, c.Closure, c.Args)
	}

	return fmt.Sprintf("(closure-call %s %v)", c.Closure, c.Args)
}

// LoadCapture reads a captured value from the closure environment.
type LoadCapture struct {
	Dst    LocalId
	EnvPtr LocalId
	Offset uint
}

func (LoadCapture) isStmt() {}

func (l LoadCapture) String() string {
	return fmt.Sprintf("(load-capture _%d _%d %d)", l.Dst, l.EnvPtr, l.Offset)
}

// ClosureDrop frees a heap-allocated closure environment.
type ClosureDrop struct{ Closure Operand }

func (ClosureDrop) isStmt() {}

func (c ClosureDrop) String() string { return fmt.Sprintf("(closure-drop %s)", c.Closure) }

// ============================================================================
// StructMake / EnumMake
// ============================================================================

// StructMake builds an aggregate struct value from its field values, in
// layout field order, in one step. The code generator is responsible for
// the actual memory writes.
type StructMake struct {
	Dst  LocalId
	Args []Operand
}

func (StructMake) isStmt() {}

func (s StructMake) String() string { return fmt.Sprintf("(struct-make _%d %v)", s.Dst, s.Args) }

// EnumMake builds a tagged-union value for the given variant, in one step.
type EnumMake struct {
	Dst          LocalId
	VariantIndex uint
	Args         []Operand
}

func (EnumMake) isStmt() {}

func (e EnumMake) String() string {
	return fmt.Sprintf("(enum-make _%d %d %v)", e.Dst, e.VariantIndex, e.Args)
}

// ============================================================================
// GlobalRef / ArrayStore
// ============================================================================

// GlobalRef materializes a global symbol's address.
type GlobalRef struct {
	Dst  LocalId
	Name string
}

func (GlobalRef) isStmt() {}

func (g GlobalRef) String() string { return fmt.Sprintf("(global-ref _%d %s)", g.Dst, g.Name) }

// ArrayStore performs an indexed store into a fixed-size array.
type ArrayStore struct {
	Base     LocalId
	Index    Operand
	ElemSize uint
	Value    Operand
}

func (ArrayStore) isStmt() {}

func (a ArrayStore) String() string {
	return fmt.Sprintf("(array-store _%d %s %d %s)", a.Base, a.Index, a.ElemSize, a.Value)
}
