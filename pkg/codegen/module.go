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

// Package codegen fixes the code-generation boundary: it does
// not prescribe a Cranelift IR shape, only the contract a code generator
// must honor before lowering any user function, plus (since real
// object-file emission is handled outside this repository) a textual
// pseudo-object renderer used by `raskc compile` in place of Cranelift.
//
// The emitter walks an already-validated mir.Program and renders it as
// a textual pseudo-object for inspection, since there is no real
// downstream consumer in this repository.
package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rask-lang/raskc/pkg/diag"
	"github.com/rask-lang/raskc/pkg/mir"
	"github.com/rask-lang/raskc/pkg/util/source"
)

// codegenSpan is the zero span used for codegen-phase diagnostics: MIR no
// longer carries a 1:1 back-reference to the AST node that produced a
// given Call statement, so
// codegen-phase errors are keyed by function/call-site name instead.
func codegenSpan() source.Span { return source.NewSpan(0, 0) }

// Module is the code generator's boundary state: the registered function
// signatures (stdlib ABI plus user functions, the latter shadowing the
// former) and the program being emitted.
type Module struct {
	prog *mir.Program
	sigs map[string]Signature
}

// NewModule registers the runtime ABI signatures and
// then registers every user-defined function from prog, which shadows any
// stdlib entry of the same name.
func NewModule(prog *mir.Program) *Module {
	m := &Module{prog: prog, sigs: make(map[string]Signature)}

	for _, s := range RuntimeSignatures() {
		m.sigs[s.Name] = s
	}

	for _, f := range prog.Functions {
		m.sigs[f.Name] = Signature{Name: f.Name, Arity: len(f.Params)}
	}

	return m
}

// Signatures returns every registered signature (stdlib plus user),
// sorted by name for deterministic reporting.
func (m *Module) Signatures() []Signature {
	names := make([]string, 0, len(m.sigs))
	for n := range m.sigs {
		names = append(names, n)
	}

	sort.Strings(names)

	out := make([]Signature, len(names))
	for i, n := range names {
		out[i] = m.sigs[n]
	}

	return out
}

// Verify checks the codegen-phase contract: every Call statement's
// Func must resolve to a registered signature (stdlib or user), with a
// matching arity unless the signature is Variadic. Violations are reported
// as diag.FunctionNotFoundAtCallSite diagnostics, continuing past each one
// per the accumulate-and-continue policy. Codegen must not attempt
// emission while any diagnostic survives.
func (m *Module) Verify() []*diag.Diagnostic {
	var out []*diag.Diagnostic

	for _, f := range m.prog.Functions {
		for _, b := range f.Blocks {
			for _, s := range b.Stmts {
				call, ok := s.(mir.Call)
				if !ok {
					continue
				}

				sig, known := m.sigs[call.Func]
				if !known {
					out = append(out, diag.New(diag.FunctionNotFoundAtCallSite, codegenSpan(),
						"function %q not found at call site in %q", call.Func, f.Name).
						WithField("function", call.Func).WithField("caller", f.Name))

					continue
				}

				if !sig.Variadic && len(call.Args) != sig.Arity {
					out = append(out, diag.New(diag.FunctionNotFoundAtCallSite, codegenSpan(),
						"call to %q in %q passes %d arguments, expected %d",
						call.Func, f.Name, len(call.Args), sig.Arity).
						WithField("function", call.Func).WithField("caller", f.Name))
				}
			}
		}
	}

	return out
}

// Emit renders the validated program as a textual pseudo-object: the
// registered ABI signatures, the interned string table, every struct/enum
// layout, and every function's lisp rendering. This stands in for the
// real Cranelift-driven object file and is not a linkable artifact;
// `raskc compile` writes it to stdout or to the file named by --out.
func (m *Module) Emit() (string, error) {
	if errs := m.prog.Validate(); len(errs) > 0 {
		return "", fmt.Errorf("codegen: refusing to emit, %d MIR invariant violation(s): %v", len(errs), errs[0])
	}

	if diags := m.Verify(); len(diags) > 0 {
		return "", fmt.Errorf("codegen: refusing to emit, %d diagnostic(s): %v", len(diags), diags[0])
	}

	var sb strings.Builder

	sb.WriteString("; raskc pseudo-object (not a linkable object file)\n")
	sb.WriteString("; registered ABI signatures\n")

	for _, s := range m.Signatures() {
		fmt.Fprintf(&sb, ";   %s/%d\n", s.Name, s.Arity)
	}

	sb.WriteString("; string table\n")

	for _, sc := range m.prog.Strings {
		fmt.Fprintf(&sb, ";   %s = %q\n", sc.Name, sc.Value)
	}

	sb.WriteString("; struct layouts\n")

	for i, l := range m.prog.Structs {
		fmt.Fprintf(&sb, ";   #%d %s size=%d align=%d\n", i, l.Name, l.Size, l.Align)
	}

	sb.WriteString("; enum layouts\n")

	for i, l := range m.prog.Enums {
		fmt.Fprintf(&sb, ";   #%d %s size=%d align=%d\n", i, l.Name, l.Size, l.Align)
	}

	sb.WriteString(m.prog.Lisp())

	return sb.String(), nil
}
