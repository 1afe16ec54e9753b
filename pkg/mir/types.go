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

// Package mir defines the mid-level intermediate representation: the
// control-flow-graph contract between the front-end checkers and the
// code generator.
package mir

import "fmt"

// Tag identifies one of the closed set of MIR types.
type Tag uint8

// The closed set of MIR type tags.
const (
	Void Tag = iota
	Bool
	Char
	I8
	I16
	I32
	I64
	I128
	U8
	U16
	U32
	U64
	U128
	F32
	F64
	PtrTag
	StringTag
	ArrayTag
	StructTag
	EnumTag
)

// Type is a MIR type. Scalar types are identified by Tag alone; Array,
// Struct and Enum carry additional data.
type Type struct {
	tag Tag
	// Elem is populated only for ArrayTag.
	elem *Type
	// Len is populated only for ArrayTag.
	len uint
	// Layout is populated only for StructTag/EnumTag.
	layout LayoutId
}

// LayoutId identifies a resolved struct or enum layout within a Program.
type LayoutId uint

// Scalar constructs a scalar (non-aggregate) type from its tag.
func Scalar(tag Tag) Type {
	switch tag {
	case ArrayTag, StructTag, EnumTag:
		panic("Scalar: aggregate tag requires Array/StructOf/EnumOf")
	}

	return Type{tag: tag}
}

// Array constructs a fixed-size inline array type.
func Array(elem Type, len uint) Type {
	return Type{tag: ArrayTag, elem: &elem, len: len}
}

// StructOf constructs a struct type referencing a resolved layout.
func StructOf(id LayoutId) Type {
	return Type{tag: StructTag, layout: id}
}

// EnumOf constructs an enum type referencing a resolved layout.
func EnumOf(id LayoutId) Type {
	return Type{tag: EnumTag, layout: id}
}

// Tag returns the type's tag.
func (t Type) Tag() Tag { return t.tag }

// Elem returns the element type of an array type; panics otherwise.
func (t Type) Elem() Type {
	if t.tag != ArrayTag {
		panic("Elem: not an array type")
	}

	return *t.elem
}

// Len returns the length of an array type; panics otherwise.
func (t Type) Len() uint {
	if t.tag != ArrayTag {
		panic("Len: not an array type")
	}

	return t.len
}

// Layout returns the layout id of a struct or enum type; panics otherwise.
func (t Type) Layout() LayoutId {
	if t.tag != StructTag && t.tag != EnumTag {
		panic("Layout: not a struct or enum type")
	}

	return t.layout
}

// IsInteger returns true for any of the fixed-width signed or unsigned
// integer tags.
func (t Type) IsInteger() bool {
	switch t.tag {
	case I8, I16, I32, I64, I128, U8, U16, U32, U64, U128:
		return true
	}

	return false
}

// IsFloat returns true for F32/F64.
func (t Type) IsFloat() bool {
	return t.tag == F32 || t.tag == F64
}

// IsScalar returns true for any non-aggregate tag (everything except
// Array/Struct/Enum, so Ptr and String count as scalars).
func (t Type) IsScalar() bool {
	return t.tag != ArrayTag && t.tag != StructTag && t.tag != EnumTag
}

// Size returns the byte size of a scalar type. Aggregate sizes come from
// their layouts (see StructLayout.Size / EnumLayout.Size) and are not
// computed here.
func (t Type) Size() uint {
	switch t.tag {
	case Void:
		return 0
	case Bool, I8, U8:
		return 1
	case I16, U16:
		return 2
	case Char, I32, U32, F32:
		return 4
	case I64, U64, F64, PtrTag, StringTag:
		return 8
	case I128, U128:
		return 16
	case ArrayTag:
		return t.elem.Size() * t.len
	}

	panic("Size: aggregate type requires a resolved layout")
}

// String renders a type for diagnostics and the lisp pretty-printer.
func (t Type) String() string {
	switch t.tag {
	case Void:
		return "void"
	case Bool:
		return "bool"
	case Char:
		return "char"
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case I128:
		return "i128"
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case U128:
		return "u128"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case PtrTag:
		return "ptr"
	case StringTag:
		return "string"
	case ArrayTag:
		return fmt.Sprintf("[%s;%d]", t.elem.String(), t.len)
	case StructTag:
		return fmt.Sprintf("struct#%d", t.layout)
	case EnumTag:
		return fmt.Sprintf("enum#%d", t.layout)
	}

	return "?"
}

// Field describes one field of a struct layout, or one field of an enum
// variant's payload.
type Field struct {
	Name   string
	Type   Type
	Offset uint
	Size   uint
	Align  uint
}

// StructLayout is a resolved struct layout: an ordered list of fields with
// byte offsets, plus total size/alignment.
type StructLayout struct {
	Name   string
	Fields []Field
	Size   uint
	Align  uint
}

// FieldIndex returns the index of the named field, or -1.
func (l *StructLayout) FieldIndex(name string) int {
	for i, f := range l.Fields {
		if f.Name == name {
			return i
		}
	}

	return -1
}

// Variant describes one enum variant: its tag, payload offset/size, and the
// payload's own field layouts.
type Variant struct {
	Name          string
	DiscriminantN uint
	PayloadOffset uint
	PayloadSize   uint
	Fields        []Field
}

// EnumLayout is a resolved enum (tagged union) layout.
type EnumLayout struct {
	Name      string
	TagType   Type
	TagOffset uint
	Variants  []Variant
	Size      uint
	Align     uint
}

// VariantIndex returns the index of the named variant, or -1.
func (l *EnumLayout) VariantIndex(name string) int {
	for i, v := range l.Variants {
		if v.Name == name {
			return i
		}
	}

	return -1
}
