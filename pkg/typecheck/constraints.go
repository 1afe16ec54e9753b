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

import "github.com/rask-lang/raskc/pkg/util/source"

// Constraint is the closed set of the three constraint kinds.
type Constraint interface {
	isConstraint()
}

// EqualConstraint demands t1 == t2 via unification.
type EqualConstraint struct {
	T1, T2 Type
	Span   source.Span
}

func (EqualConstraint) isConstraint() {}

// HasFieldConstraint demands that Ty have a field named Field of type
// Expected, resolved against struct/enum layouts only after equality
// constraints settle.
type HasFieldConstraint struct {
	Ty       Type
	Field    string
	Expected Type
	Span     source.Span
}

func (HasFieldConstraint) isConstraint() {}

// HasMethodConstraint demands that Ty have a method named Method callable
// with Args and returning Ret, resolved against user methods and the
// built-in module method table.
type HasMethodConstraint struct {
	Ty     Type
	Method string
	Args   []Type
	Ret    Type
	Span   source.Span
}

func (HasMethodConstraint) isConstraint() {}
