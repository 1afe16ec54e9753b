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

// Package mono implements monomorphization: for each concrete
// instantiation of a generic struct, enum or function observed in a
// type-checked program, it emits a
// specialized struct/enum layout and a mangled-name function body, so that
// MIR types downstream of this pass only ever reference Struct(LayoutId) /
// Enum(LayoutId) -- never an unresolved generic.
//
// Layouts are assigned by walking each declaration's ordered field list
// and accumulating aligned offsets, one layout per distinct
// instantiation key.
package mono

import (
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/rask-lang/raskc/pkg/ast"
	"github.com/rask-lang/raskc/pkg/lower"
	"github.com/rask-lang/raskc/pkg/mir"
	"github.com/rask-lang/raskc/pkg/typecheck"
	"github.com/rask-lang/raskc/pkg/util/collection/hash"
)

// Instantiation records one concrete binding of a generic declaration's
// type parameters to concrete types, keyed by its mangled name.
type Instantiation struct {
	Base string
	Args []string
	// Mangled is Base with Args appended, e.g. "Pool$i32".
	Mangled string
}

// Monomorphizer drives the pass over a single program: it is constructed
// after lowering has produced the program's (generic-agnostic) layouts and
// function bodies, and mutates that same mir.Program by appending
// specialized layouts and function clones.
type Monomorphizer struct {
	tc      *typecheck.Checker
	layouts *lower.LayoutTable
	prog    *mir.Program

	structInst *hash.Map[hash.BytesKey, mir.LayoutId]
	enumInst   *hash.Map[hash.BytesKey, mir.LayoutId]
	funcInst   *hash.Set[hash.BytesKey]

	// Instantiations collects every distinct instantiation key discovered,
	// in the order they were first emitted, for `raskc mono`'s report and
	// for tests.
	Instantiations []Instantiation
}

// New constructs a Monomorphizer over an already-lowered program.
func New(tc *typecheck.Checker, layouts *lower.LayoutTable, prog *mir.Program) *Monomorphizer {
	return &Monomorphizer{
		tc: tc, layouts: layouts, prog: prog,
		structInst: hash.NewMap[hash.BytesKey, mir.LayoutId](64),
		enumInst:   hash.NewMap[hash.BytesKey, mir.LayoutId](64),
		funcInst:   hash.NewSet[hash.BytesKey](64),
	}
}

// Run performs the full pass: struct/enum layout specialization from every
// concrete type observed during checking, then function-body specialization
// from every concrete call site of a generic function.
func (m *Monomorphizer) Run(ast *ast.Program, result *typecheck.Result) {
	m.runLayouts(result)
	m.runFunctions(ast, result)

	log.Debugf("monomorphized %d instantiation(s)", len(m.Instantiations))
}

// runLayouts scans every resolved expression type for a concrete
// instantiation of a generic struct or enum and emits its specialized
// layout. Node types are visited in a stable (sorted-key) order so that
// layout ids are deterministic across runs of the same program.
func (m *Monomorphizer) runLayouts(result *typecheck.Result) {
	ids := make([]ast.NodeId, 0, len(result.NodeType))
	for id := range result.NodeType {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		m.visitType(result.NodeType[id])
	}
}

func (m *Monomorphizer) visitType(t typecheck.Type) {
	t = m.tc.Resolve(t)

	switch t.Kind {
	case typecheck.KNamed:
		if len(t.Args) > 0 && allConcrete(t.Args) {
			m.instantiateNamed(t)
		}

		for _, a := range t.Args {
			m.visitType(a)
		}
	case typecheck.KOption, typecheck.KResult, typecheck.KTuple, typecheck.KArray, typecheck.KSlice, typecheck.KFn:
		for _, a := range t.Args {
			m.visitType(a)
		}
	}
}

func allConcrete(args []typecheck.Type) bool {
	for _, a := range args {
		switch a.Kind {
		case typecheck.KVar, typecheck.KError:
			return false
		}
	}

	return true
}

// mangle builds the mangled name for a named type's concrete instantiation,
// e.g. NamedOf("Pool", Prim("i32")) -> "Pool$i32".
func mangle(t typecheck.Type) string {
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = mangleArg(a)
	}

	return t.Named + "$" + strings.Join(parts, "_")
}

func mangleArg(t typecheck.Type) string {
	switch t.Kind {
	case typecheck.KNamed:
		if len(t.Args) == 0 {
			return t.Named
		}

		return mangle(t)
	case typecheck.KPrim:
		return t.Prim
	case typecheck.KOption:
		return "Option_" + mangleArg(t.Args[0])
	case typecheck.KResult:
		return "Result_" + mangleArg(t.Args[0]) + "_" + mangleArg(t.Args[1])
	case typecheck.KArray:
		return fmt.Sprintf("Array_%s_%d", mangleArg(t.Args[0]), t.Len)
	case typecheck.KSlice:
		return "Slice_" + mangleArg(t.Args[0])
	default:
		return "_"
	}
}

// instantiateNamed emits a specialized layout for a concrete struct/enum
// instantiation, if the name actually refers to a generic declaration with
// a matching arity and this instantiation hasn't already been emitted.
func (m *Monomorphizer) instantiateNamed(t typecheck.Type) {
	key := mangle(t)

	if info, ok := m.tc.Structs()[t.Named]; ok && len(info.TypeParams) == len(t.Args) && len(info.TypeParams) > 0 {
		if m.structInst.ContainsKey(instKey(key)) {
			return
		}

		subst := bind(info.TypeParams, t.Args)
		layout := m.buildStructLayout(key, info, subst)
		id := m.layouts.AddStructLayout(layout)
		m.structInst.Insert(instKey(key), id)
		m.record(t.Named, t.Args, key)

		return
	}

	if info, ok := m.tc.Enums()[t.Named]; ok && len(info.TypeParams) == len(t.Args) && len(info.TypeParams) > 0 {
		if m.enumInst.ContainsKey(instKey(key)) {
			return
		}

		subst := bind(info.TypeParams, t.Args)
		layout := m.buildEnumLayout(key, info, subst)
		id := m.layouts.AddEnumLayout(layout)
		m.enumInst.Insert(instKey(key), id)
		m.record(t.Named, t.Args, key)
	}
}

func (m *Monomorphizer) record(base string, args []typecheck.Type, mangled string) {
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = mangleArg(a)
	}

	m.Instantiations = append(m.Instantiations, Instantiation{Base: base, Args: names, Mangled: mangled})
}

// instKey hashes a mangled instantiation name for the dedup tables.
func instKey(mangled string) hash.BytesKey {
	return hash.NewBytesKey([]byte(mangled))
}

// bind pairs a generic declaration's type-parameter names with the concrete
// arguments of one instantiation.
func bind(params []string, args []typecheck.Type) map[string]typecheck.Type {
	subst := make(map[string]typecheck.Type, len(params))
	for i, p := range params {
		subst[p] = args[i]
	}

	return subst
}

// substitute replaces every KNamed reference to a bound type-parameter name
// with its concrete binding, recursing into structured types. A named type
// that is not itself a parameter (a real struct/enum reference, possibly
// itself generic) is substituted component-wise in its own Args.
func substitute(t typecheck.Type, subst map[string]typecheck.Type) typecheck.Type {
	switch t.Kind {
	case typecheck.KNamed:
		if len(t.Args) == 0 {
			if bound, ok := subst[t.Named]; ok {
				return bound
			}

			return t
		}

		args := make([]typecheck.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = substitute(a, subst)
		}

		return typecheck.NamedOf(t.Named, args...)
	case typecheck.KOption:
		return typecheck.OptionOf(substitute(t.Args[0], subst))
	case typecheck.KResult:
		return typecheck.ResultOf(substitute(t.Args[0], subst), substitute(t.Args[1], subst))
	case typecheck.KArray:
		return typecheck.ArrayOf(substitute(t.Args[0], subst), t.Len)
	case typecheck.KSlice:
		return typecheck.SliceOf(substitute(t.Args[0], subst))
	case typecheck.KTuple:
		args := make([]typecheck.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = substitute(a, subst)
		}

		return typecheck.TupleOf(args...)
	default:
		return t
	}
}

func (m *Monomorphizer) buildStructLayout(
	name string, info typecheck.StructInfo, subst map[string]typecheck.Type,
) mir.StructLayout {
	var fields []mir.Field

	var cur, maxAlign uint = 0, 1

	for _, f := range info.Fields {
		ft := substitute(f.Type, subst)
		mt := m.layouts.MirType(ft)
		align := m.layouts.AlignOf(mt)
		size := m.layouts.SizeOf(mt)

		cur = alignUp(cur, align)
		fields = append(fields, mir.Field{Name: f.Name, Type: mt, Offset: cur, Size: size, Align: align})
		cur += size

		if align > maxAlign {
			maxAlign = align
		}
	}

	total := alignUp(cur, maxAlign)

	return mir.StructLayout{Name: name, Fields: fields, Size: total, Align: maxAlign}
}

func (m *Monomorphizer) buildEnumLayout(
	name string, info typecheck.EnumInfo, subst map[string]typecheck.Type,
) mir.EnumLayout {
	const tagSize, tagAlign uint = 4, 4

	var variants []mir.Variant

	var maxPayload, maxPayloadAlign uint = 0, 1

	for vi, v := range info.Variants {
		var fields []mir.Field

		var cur, align uint = 0, 1

		for _, f := range v.Fields {
			ft := substitute(f.Type, subst)
			mt := m.layouts.MirType(ft)
			fa := m.layouts.AlignOf(mt)
			fs := m.layouts.SizeOf(mt)

			cur = alignUp(cur, fa)
			fields = append(fields, mir.Field{Name: f.Name, Type: mt, Offset: cur, Size: fs, Align: fa})
			cur += fs

			if fa > align {
				align = fa
			}
		}

		payloadSize := alignUp(cur, align)
		variants = append(variants, mir.Variant{Name: v.Name, DiscriminantN: uint(vi), PayloadSize: payloadSize, Fields: fields})

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

	return mir.EnumLayout{
		Name: name, TagType: mir.Scalar(mir.U32), TagOffset: 0, Variants: variants, Size: total, Align: align,
	}
}

func alignUp(x, a uint) uint {
	if a == 0 {
		return x
	}

	return (x + a - 1) / a * a
}
