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
package lower

import (
	"github.com/rask-lang/raskc/pkg/mir"
	"github.com/rask-lang/raskc/pkg/typecheck"
)

// mirTypeWith maps a checker-level Type to a MIR Type. Structs and enums
// become StructOf/EnumOf references into the LayoutTable. Built-in runtime
// containers (Vec, Pool, Set, Map, Channel), Option/Result/Fn/Tuple/Slice
// and any still-generic reference that has no concrete layout yet are all
// represented as an opaque pointer-sized handle: the runtime ABI owns
// their real memory shape, and monomorphization resolves any generic struct
// reference before this mapping is consulted for a monomorphized body.
func mirTypeWith(lt *LayoutTable, tc *typecheck.Checker, t typecheck.Type) mir.Type {
	t = tc.Resolve(t)

	switch t.Kind {
	case typecheck.KPrim:
		return mir.Scalar(primTag(t.Prim))
	case typecheck.KArray:
		return mir.Array(mirTypeWith(lt, tc, t.Elem()), uint(t.Len))
	case typecheck.KNamed:
		if t.Named == "File" {
			return mir.Scalar(mir.PtrTag)
		}

		if id, ok := lt.StructLayoutId(t.Named); ok {
			return mir.StructOf(id)
		}

		if id, ok := lt.EnumLayoutId(t.Named); ok {
			return mir.EnumOf(id)
		}

		return mir.Scalar(mir.PtrTag)
	default:
		// KOption, KResult, KFn, KTuple, KSlice, KVar, KNever, KError: no
		// flat MIR representation is specified; a resolved Option/Result has already
		// been lowered away by inferTry/match arm lowering by the time a
		// local actually needs storage, so any survivor here is an opaque
		// runtime handle.
		return mir.Scalar(mir.PtrTag)
	}
}

func primTag(name string) mir.Tag {
	switch name {
	case "i8":
		return mir.I8
	case "i16":
		return mir.I16
	case "i32":
		return mir.I32
	case "i64":
		return mir.I64
	case "i128":
		return mir.I128
	case "u8":
		return mir.U8
	case "u16":
		return mir.U16
	case "u32":
		return mir.U32
	case "u64":
		return mir.U64
	case "u128":
		return mir.U128
	case "isize":
		return mir.I64
	case "usize":
		return mir.U64
	case "f32":
		return mir.F32
	case "f64":
		return mir.F64
	case "bool":
		return mir.Bool
	case "char":
		return mir.Char
	case "string":
		return mir.StringTag
	default:
		return mir.Void
	}
}
