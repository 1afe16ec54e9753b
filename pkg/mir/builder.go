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

// Builder eases the construction of a single Function. It maintains the
// "current block" that subsequent Emit/Terminate calls affect, mirroring
// the stateful builder the lowering pass (pkg/lower) drives one control
// construct at a time.
type Builder struct {
	fn      *Function
	current BlockId
}

// NewBuilder starts building a function with the given name and return
// type. The entry block is created automatically, empty and current.
func NewBuilder(name string, retTy Type) *Builder {
	fn := &Function{Name: name, ReturnType: retTy}
	b := &Builder{fn: fn}
	b.current = b.NewBlock()
	fn.Entry = b.current

	return b
}

// Function returns the function under construction. Valid only after every
// block has been given a terminator.
func (b *Builder) Function() *Function {
	return b.fn
}

// NewLocal declares a fresh local and returns its id.
func (b *Builder) NewLocal(name string, ty Type, isParam bool) LocalId {
	id := LocalId(len(b.fn.Locals))
	b.fn.Locals = append(b.fn.Locals, Local{Id: id, Name: name, Type: ty, IsParam: isParam})

	if isParam {
		b.fn.Params = append(b.fn.Params, id)
	}

	return id
}

// MarkResource flags a local as resource-typed, for the ownership pass's
// runtime tracker.
func (b *Builder) MarkResource(id LocalId) {
	b.fn.Local(id).IsResource = true
}

// NewBlock creates a fresh, empty block (no terminator yet) and returns its
// id. It does not become current automatically.
func (b *Builder) NewBlock() BlockId {
	id := BlockId(len(b.fn.Blocks))
	b.fn.Blocks = append(b.fn.Blocks, &Block{Id: id})

	return id
}

// NewCleanupBlock creates a fresh block marked as a cleanup block (reachable
// only via a CleanupReturn's cleanup chain).
func (b *Builder) NewCleanupBlock() BlockId {
	id := b.NewBlock()
	b.fn.Block(id).IsCleanup = true

	return id
}

// SetBlock switches the current block that Emit/Terminate affect.
func (b *Builder) SetBlock(id BlockId) {
	b.current = id
}

// CurrentBlock returns the current block id.
func (b *Builder) CurrentBlock() BlockId {
	return b.current
}

// Emit appends a statement to the current block.
func (b *Builder) Emit(s Stmt) {
	blk := b.fn.Block(b.current)
	blk.Stmts = append(blk.Stmts, s)
}

// Terminate sets the current block's terminator. Panics if it already has
// one, since exactly one terminator per block is a closed invariant.
func (b *Builder) Terminate(t Terminator) {
	blk := b.fn.Block(b.current)
	if blk.Terminator != nil {
		panic("mir: block already terminated")
	}

	blk.Terminator = t
}
