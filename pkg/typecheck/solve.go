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

import "github.com/rask-lang/raskc/pkg/diag"

// solveFixedPoint resolves every deferred HasField/HasMethod constraint,
// retrying as the substitution progresses from Equal constraints solved
// elsewhere: deferred entries are reattempted until a pass makes no
// further progress, then whatever is left over is reported.
func (c *Checker) solveFixedPoint() {
	for {
		progress := false

		remaining := c.deferredFields[:0]

		for _, fc := range c.deferredFields {
			if c.trySolveField(fc) {
				progress = true
				continue
			}

			remaining = append(remaining, fc)
		}

		c.deferredFields = remaining

		remainingM := c.deferredMethods[:0]

		for _, mc := range c.deferredMethods {
			if c.trySolveMethod(mc) {
				progress = true
				continue
			}

			remainingM = append(remainingM, mc)
		}

		c.deferredMethods = remainingM

		if !progress {
			break
		}
	}

	for _, fc := range c.deferredFields {
		ty := c.subst.Resolve(fc.Ty)
		c.diags.Add(diag.New(diag.NoSuchField, fc.Span, "%s has no field %q", ty, fc.Field))
	}

	for _, mc := range c.deferredMethods {
		ty := c.subst.Resolve(mc.Ty)
		c.diags.Add(diag.New(diag.NoSuchMethod, mc.Span, "%s has no method %q", ty, mc.Method))
	}
}

// trySolveField attempts to resolve one HasField constraint; it returns
// true once it has found the field (unifying Expected with the field's
// type). It returns false while the receiver is still a type variable and
// also when the receiver is concrete but has no such field; a constraint
// still unsolved at the end is reported by solveFixedPoint's final loop.
func (c *Checker) trySolveField(fc HasFieldConstraint) bool {
	ty := c.subst.Resolve(fc.Ty)
	if ty.Kind == KVar {
		return false
	}

	if ty.Kind != KNamed {
		return false
	}

	info, ok := c.structs[ty.Named]
	if !ok {
		return false
	}

	for _, f := range info.Fields {
		if f.Name == fc.Field {
			if err := c.subst.Unify(fc.Expected, f.Type); err != nil {
				c.diags.Add(diag.New(diag.TypeMismatch, fc.Span, "%s", err))
			}

			return true
		}
	}

	return false
}

func (c *Checker) trySolveMethod(mc HasMethodConstraint) bool {
	ty := c.subst.Resolve(mc.Ty)
	if ty.Kind == KVar {
		return false
	}

	if ty.Kind != KNamed {
		return false
	}

	m, ok := c.methods[[2]string{ty.Named, mc.Method}]
	if !ok {
		return false
	}

	if len(m.Params) != len(mc.Args) {
		c.diags.Add(diag.New(diag.ArityMismatch, mc.Span,
			"%s.%s expects %d arguments, found %d", ty.Named, mc.Method, len(m.Params), len(mc.Args)))

		return true
	}

	for i, want := range m.Params {
		if err := c.subst.Unify(mc.Args[i], want); err != nil {
			c.diags.Add(diag.New(diag.TypeMismatch, mc.Span, "%s", err))
		}
	}

	if err := c.subst.Unify(mc.Ret, m.Ret); err != nil {
		c.diags.Add(diag.New(diag.TypeMismatch, mc.Span, "%s", err))
	}

	return true
}
