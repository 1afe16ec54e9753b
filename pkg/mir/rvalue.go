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

// RValue is the closed set of computations that may appear on the right
// hand side of an Assign statement.
type RValue interface {
	// isRValue marks the closed set; only this package may implement it.
	isRValue()
	String() string
}

// ============================================================================
// Use
// ============================================================================

// Use simply reads an operand.
type Use struct{ Arg Operand }

func (Use) isRValue() {}

func (u Use) String() string { return u.Arg.String() }

// ============================================================================
// Ref
// ============================================================================

// Ref takes the address of a local, producing a Ptr value.
type Ref struct{ Arg LocalId }

func (Ref) isRValue() {}

func (r Ref) String() string { return fmt.Sprintf("(ref _%d)", r.Arg) }

// ============================================================================
// Deref
// ============================================================================

// Deref loads through a pointer operand. The loaded element type is implied
// by the destination local.
type Deref struct{ Arg Operand }

func (Deref) isRValue() {}

func (d Deref) String() string { return fmt.Sprintf("(deref %s)", d.Arg) }

// ============================================================================
// BinaryOp
// ============================================================================

// BinaryOp applies a binary operator to two operands.
type BinaryOp struct {
	Op  BinOp
	Lhs Operand
	Rhs Operand
}

func (BinaryOp) isRValue() {}

func (b BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", binOpName(b.Op), b.Lhs, b.Rhs)
}

// ============================================================================
// UnaryOp
// ============================================================================

// UnaryOp applies a unary operator to an operand.
type UnaryOp struct {
	Op  UnOp
	Arg Operand
}

func (UnaryOp) isRValue() {}

func (u UnaryOp) String() string {
	name := "neg"
	if u.Op == Not {
		name = "not"
	}

	return fmt.Sprintf("(%s %s)", name, u.Arg)
}

// ============================================================================
// Cast
// ============================================================================

// Cast narrows or widens a value to a target type.
type Cast struct {
	Arg    Operand
	Target Type
}

func (Cast) isRValue() {}

func (c Cast) String() string { return fmt.Sprintf("(cast %s %s)", c.Arg, c.Target) }

// ============================================================================
// FieldOf
// ============================================================================

// FieldOf projects a struct field by index from a base local.
type FieldOf struct {
	Base       LocalId
	FieldIndex uint
}

func (FieldOf) isRValue() {}

func (f FieldOf) String() string { return fmt.Sprintf("(field _%d %d)", f.Base, f.FieldIndex) }

// ============================================================================
// EnumTagOf
// ============================================================================

// EnumTagOf reads the discriminant of an enum-typed value.
type EnumTagOf struct{ Arg Operand }

func (EnumTagOf) isRValue() {}

func (e EnumTagOf) String() string { return fmt.Sprintf("(enum-tag %s)", e.Arg) }

// ============================================================================
// ArrayIndexOf
// ============================================================================

// ArrayIndexOf indexes a fixed-size array by a byte-scaled element offset.
type ArrayIndexOf struct {
	Base     LocalId
	Index    Operand
	ElemSize uint
}

func (ArrayIndexOf) isRValue() {}

func (a ArrayIndexOf) String() string {
	return fmt.Sprintf("(array-index _%d %s %d)", a.Base, a.Index, a.ElemSize)
}

// ============================================================================
// VariantFieldOf
// ============================================================================

// VariantFieldOf projects a payload field out of an enum-typed base, once
// the active variant is already known (by a prior EnumTagOf/Branch chain,
// during match lowering). Unlike FieldOf, which only applies to struct
// bases, an enum's payload fields are keyed by both variant and field
// index since different variants overlay the same storage.
type VariantFieldOf struct {
	Base         LocalId
	VariantIndex uint
	FieldIndex   uint
}

func (VariantFieldOf) isRValue() {}

func (v VariantFieldOf) String() string {
	return fmt.Sprintf("(variant-field _%d %d %d)", v.Base, v.VariantIndex, v.FieldIndex)
}

func binOpName(op BinOp) string {
	names := [...]string{
		"+", "-", "*", "/", "%", "&", "|", "^", "<<", ">>",
		"==", "!=", "<", "<=", ">", ">=", "&&", "||",
	}

	if int(op) < len(names) {
		return names[op]
	}

	return "?"
}
