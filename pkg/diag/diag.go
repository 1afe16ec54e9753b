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

// Package diag implements the compiler's structured error taxonomy:
// one concrete, machine-readable Kind per phase, each carrying the span
// at which it was detected, so callers can switch on error class rather
// than parse messages.
package diag

import (
	"fmt"

	"github.com/rask-lang/raskc/pkg/util/source"
)

// Kind is the closed set of diagnostic kinds, one group per phase.
type Kind uint8

// The taxonomy, one entry per representative kind.
const (
	// Type-checking phase.
	TypeMismatch Kind = iota
	ArityMismatch
	NoSuchField
	NoSuchMethod
	TryOutsidePropagatingContext
	GuardElseMustDiverge
	// Ownership phase.
	UseAfterMove
	BorrowConflict
	MutateWhileBorrowed
	ResourceNotConsumed
	// MIR lowering phase.
	UnresolvedVariable
	InvalidConstruct
	// Codegen phase.
	FunctionNotFoundAtCallSite
)

var kindNames = [...]string{
	"TypeMismatch", "ArityMismatch", "NoSuchField", "NoSuchMethod",
	"TryOutsidePropagatingContext", "GuardElseMustDiverge",
	"UseAfterMove", "BorrowConflict", "MutateWhileBorrowed", "ResourceNotConsumed",
	"UnresolvedVariable", "InvalidConstruct",
	"FunctionNotFoundAtCallSite",
}

// String renders the kind's name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "Unknown"
}

// Diagnostic is a single accumulated error. Every phase accumulates these
// and continues past each local failure.
type Diagnostic struct {
	Kind Kind
	Span source.Span
	Msg  string
	// Fields carries kind-specific structured data (e.g. "name",
	// "moved_at") for tests/tooling that want more than the message text.
	Fields map[string]string
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Span.Start(), d.Span.End(), d.Kind, d.Msg)
}

// New constructs a diagnostic with no extra fields.
func New(kind Kind, span source.Span, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Span: span, Msg: fmt.Sprintf(format, args...), Fields: map[string]string{}}
}

// WithField attaches a structured field and returns the same diagnostic,
// for fluent construction.
func (d *Diagnostic) WithField(key, value string) *Diagnostic {
	d.Fields[key] = value
	return d
}

// Bag accumulates diagnostics across a single phase run, matching the
// accumulate-and-continue error policy.
type Bag struct {
	items []*Diagnostic
}

// Add appends a diagnostic.
func (b *Bag) Add(d *Diagnostic) {
	b.items = append(b.items, d)
}

// HasErrors reports whether any diagnostic has been recorded.
func (b *Bag) HasErrors() bool {
	return len(b.items) > 0
}

// All returns every accumulated diagnostic, in recorded order.
func (b *Bag) All() []*Diagnostic {
	return b.items
}
