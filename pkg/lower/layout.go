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

// Package lower implements AST-to-MIR lowering: a structural-recursion
// builder, driven one control construct at a time, that turns a type-checked
// and ownership-checked program into the mir.Program contract.
package lower

import (
	"github.com/rask-lang/raskc/pkg/mir"
	"github.com/rask-lang/raskc/pkg/typecheck"
)

// LayoutTable resolves every struct/enum declaration into a
// mir.StructLayout/EnumLayout with concrete byte offsets, walking each
// declaration's ordered field list and accumulating aligned offsets.
// Generic declarations get a layout here too, with each type-parameter
// field mapped to a pointer-sized handle (see mirTypeWith); pkg/mono adds
// a separate layout, under a mangled name, for each type argument it
// instantiates a generic struct/enum at.
type LayoutTable struct {
	tc      *typecheck.Checker
	structs map[string]mir.LayoutId
	enums   map[string]mir.LayoutId
	prog    *mir.Program

	building map[string]bool
}

// BuildLayouts computes layouts for every struct/enum declaration.
func BuildLayouts(tc *typecheck.Checker) *LayoutTable {
	lt := &LayoutTable{
		tc:       tc,
		structs:  make(map[string]mir.LayoutId),
		enums:    make(map[string]mir.LayoutId),
		prog:     &mir.Program{},
		building: make(map[string]bool),
	}

	for name := range tc.Structs() {
		lt.structLayout(name)
	}

	for name := range tc.Enums() {
		lt.enumLayout(name)
	}

	return lt
}

// Program returns the in-progress mir.Program holding the resolved
// struct/enum layouts (functions are attached later by the Lowerer).
func (lt *LayoutTable) Program() *mir.Program { return lt.prog }

// StructLayoutId returns the layout id for a named struct, computing it
// on first use (structs may reference each other in any declaration order).
func (lt *LayoutTable) StructLayoutId(name string) (mir.LayoutId, bool) {
	if id, ok := lt.structs[name]; ok {
		return id, true
	}

	return lt.structLayout(name)
}

// EnumLayoutId returns the layout id for a named enum.
func (lt *LayoutTable) EnumLayoutId(name string) (mir.LayoutId, bool) {
	if id, ok := lt.enums[name]; ok {
		return id, true
	}

	return lt.enumLayout(name)
}

func (lt *LayoutTable) structLayout(name string) (mir.LayoutId, bool) {
	if id, ok := lt.structs[name]; ok {
		return id, true
	}

	info, ok := lt.tc.Structs()[name]
	if !ok || lt.building[name] {
		return 0, false
	}

	lt.building[name] = true
	defer delete(lt.building, name)

	var fields []mir.Field
	var cur, maxAlign uint = 0, 1

	for _, f := range info.Fields {
		ty := lt.mirTypeNoSelf(f.Type)
		align := lt.alignOf(ty)
		size := lt.sizeOf(ty)

		cur = alignUp(cur, align)
		fields = append(fields, mir.Field{Name: f.Name, Type: ty, Offset: cur, Size: size, Align: align})
		cur += size

		if align > maxAlign {
			maxAlign = align
		}
	}

	total := alignUp(cur, maxAlign)

	id := mir.LayoutId(len(lt.prog.Structs))
	lt.prog.Structs = append(lt.prog.Structs, mir.StructLayout{Name: name, Fields: fields, Size: total, Align: maxAlign})
	lt.structs[name] = id

	return id, true
}

func (lt *LayoutTable) enumLayout(name string) (mir.LayoutId, bool) {
	if id, ok := lt.enums[name]; ok {
		return id, true
	}

	info, ok := lt.tc.Enums()[name]
	if !ok {
		return 0, false
	}

	const tagSize, tagAlign uint = 4, 4

	var variants []mir.Variant
	var maxPayload, maxPayloadAlign uint = 0, 1

	for vi, v := range info.Variants {
		var fields []mir.Field
		var cur, align uint = 0, 1

		for _, f := range v.Fields {
			ty := lt.mirTypeNoSelf(f.Type)
			fa := lt.alignOf(ty)
			fs := lt.sizeOf(ty)

			cur = alignUp(cur, fa)
			fields = append(fields, mir.Field{Name: f.Name, Type: ty, Offset: cur, Size: fs, Align: fa})
			cur += fs

			if fa > align {
				align = fa
			}
		}

		payloadSize := alignUp(cur, align)

		variants = append(variants, mir.Variant{
			Name: v.Name, DiscriminantN: uint(vi), PayloadSize: payloadSize, Fields: fields,
		})

		if payloadSize > maxPayload {
			maxPayload = payloadSize
		}

		if align > maxPayloadAlign {
			maxPayloadAlign = align
		}
	}

	payloadOffset := alignUp(tagSize, maxPayloadAlign)
	for i := range variants {
		variants[i].PayloadOffset = payloadOffset
	}

	align := tagAlign
	if maxPayloadAlign > align {
		align = maxPayloadAlign
	}

	total := alignUp(payloadOffset+maxPayload, align)

	id := mir.LayoutId(len(lt.prog.Enums))
	lt.prog.Enums = append(lt.prog.Enums, mir.EnumLayout{
		Name: name, TagType: mir.Scalar(mir.U32), TagOffset: 0, Variants: variants, Size: total, Align: align,
	})
	lt.enums[name] = id

	return id, true
}

// MirType maps a checker-level type to its MIR representation using this
// table's resolved layouts. Exported for pkg/mono, which substitutes
// concrete type arguments into a generic declaration's field types and then
// needs the same struct/enum/primitive mapping lowering itself uses, so a
// specialized layout's field types agree bit-for-bit with what ordinary
// lowering would have produced for the same concrete type.
func (lt *LayoutTable) MirType(t typecheck.Type) mir.Type {
	return mirTypeWith(lt, lt.tc, t)
}

// AlignOf exposes this table's alignment computation for pkg/mono.
func (lt *LayoutTable) AlignOf(t mir.Type) uint { return lt.alignOf(t) }

// SizeOf exposes this table's size computation for pkg/mono.
func (lt *LayoutTable) SizeOf(t mir.Type) uint { return lt.sizeOf(t) }

// AddStructLayout registers a monomorphizer-computed struct layout under a
// mangled name and returns its id. Distinct from structLayout/enumLayout
// above: those resolve a *declared* (non-generic) struct by name, whereas
// this appends an already-built specialized layout for a concrete generic
// instantiation.
func (lt *LayoutTable) AddStructLayout(l mir.StructLayout) mir.LayoutId {
	id := mir.LayoutId(len(lt.prog.Structs))
	lt.prog.Structs = append(lt.prog.Structs, l)
	lt.structs[l.Name] = id

	return id
}

// AddEnumLayout registers a monomorphizer-computed enum layout, mirroring
// AddStructLayout.
func (lt *LayoutTable) AddEnumLayout(l mir.EnumLayout) mir.LayoutId {
	id := mir.LayoutId(len(lt.prog.Enums))
	lt.prog.Enums = append(lt.prog.Enums, l)
	lt.enums[l.Name] = id

	return id
}

// mirTypeNoSelf maps a checker type that appears inside a field declaration,
// via mirTypeWith over this table. It is kept as a distinct entry point since
// field types, unlike local types, are never type variables by the time
// layouts are built (type checking has already run to completion).
func (lt *LayoutTable) mirTypeNoSelf(t typecheck.Type) mir.Type {
	return mirTypeWith(lt, lt.tc, t)
}

func alignUp(x, a uint) uint {
	if a == 0 {
		return x
	}

	return (x + a - 1) / a * a
}

func (lt *LayoutTable) alignOf(t mir.Type) uint {
	switch t.Tag() {
	case mir.ArrayTag:
		return lt.alignOf(t.Elem())
	case mir.StructTag:
		return lt.prog.Structs[t.Layout()].Align
	case mir.EnumTag:
		return lt.prog.Enums[t.Layout()].Align
	case mir.I128, mir.U128:
		return 16
	case mir.I8, mir.U8, mir.Bool:
		return 1
	case mir.I16, mir.U16:
		return 2
	case mir.I32, mir.U32, mir.F32, mir.Char:
		return 4
	default:
		return 8
	}
}

func (lt *LayoutTable) sizeOf(t mir.Type) uint {
	switch t.Tag() {
	case mir.StructTag:
		return lt.prog.Structs[t.Layout()].Size
	case mir.EnumTag:
		return lt.prog.Enums[t.Layout()].Size
	default:
		return t.Size()
	}
}
