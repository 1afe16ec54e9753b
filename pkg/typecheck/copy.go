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
package typecheck

// primSize gives the byte size of a primitive type name, used only to
// evaluate the Copy rule's "total size <= 16 bytes" clauses. This
// mirrors mir.Type.Size for scalars; it is duplicated here (rather than
// imported) because checker-level types exist before MIR lowering and
// include forms (Option, generics) that MIR types do not.
func primSize(name string) uint {
	switch name {
	case "bool", "i8", "u8":
		return 1
	case "i16", "u16":
		return 2
	case "char", "i32", "u32", "f32":
		return 4
	case "i64", "u64", "f64", "isize", "usize":
		return 8
	case "i128", "u128":
		return 16
	case "void":
		return 0
	}

	return 0
}

// IsCopy implements the Copy rule. Struct/enum sizes are approximated
// as the unpadded sum of field sizes: sufficient to decide the <=16-byte
// clauses without requiring the monomorphizer's exact offsets, which are
// not yet known at type-checking time for a still-generic declaration.
func (c *Checker) IsCopy(t Type) bool {
	t = c.subst.Resolve(t)

	switch t.Kind {
	case KPrim:
		// String is heap-managed and never Copy.
		return t.Prim != "string"
	case KSlice:
		return true
	case KResult:
		// Result is never Copy.
		return false
	case KOption:
		inner := t.Args[0]
		return c.IsCopy(inner) && c.SizeOf(t) <= 16
	case KArray:
		elem := t.Args[0]
		return c.IsCopy(elem) && c.SizeOf(t) <= 16
	case KTuple:
		total := uint(0)

		for _, a := range t.Args {
			if !c.IsCopy(a) {
				return false
			}

			total += c.SizeOf(a)
		}

		return total <= 16
	case KNamed:
		if t.Named == "string" {
			return false
		}

		info, ok := c.structs[t.Named]
		if ok {
			for _, f := range info.Fields {
				if !c.IsCopy(f.Type) {
					return false
				}
			}

			return c.SizeOf(t) <= 16
		}

		einfo, ok := c.enums[t.Named]
		if ok {
			for _, v := range einfo.Variants {
				for _, f := range v.Fields {
					if !c.IsCopy(f.Type) {
						return false
					}
				}
			}

			return c.SizeOf(t) <= 16
		}

		return false
	}

	return false
}

// SizeOf approximates a checker-level type's byte size (see IsCopy's
// doc-comment on why this is an unpadded approximation).
func (c *Checker) SizeOf(t Type) uint {
	t = c.subst.Resolve(t)

	switch t.Kind {
	case KPrim:
		return primSize(t.Prim)
	case KOption:
		return 1 + c.SizeOf(t.Args[0])
	case KArray:
		return c.SizeOf(t.Args[0]) * uint(t.Len)
	case KTuple:
		total := uint(0)
		for _, a := range t.Args {
			total += c.SizeOf(a)
		}

		return total
	case KNamed:
		if info, ok := c.structs[t.Named]; ok {
			total := uint(0)
			for _, f := range info.Fields {
				total += c.SizeOf(f.Type)
			}

			return total
		}

		if info, ok := c.enums[t.Named]; ok {
			max := uint(0)
			for _, v := range info.Variants {
				sz := uint(0)
				for _, f := range v.Fields {
					sz += c.SizeOf(f.Type)
				}

				if sz > max {
					max = sz
				}
			}

			return 1 + max
		}
	}

	return 8
}
