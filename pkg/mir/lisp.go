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

import (
	"fmt"
	"strings"
)

// Lisp renders the whole program in a parenthesised, s-expression-like form
// intended for `raskc lower` and for diffing MIR snapshots in tests.
func (p *Program) Lisp() string {
	var sb strings.Builder

	for _, f := range p.Functions {
		sb.WriteString(f.Lisp())
		sb.WriteByte('\n')
	}

	return sb.String()
}

// Lisp renders a single function.
func (f *Function) Lisp() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "(fn %s (", f.Name)

	for i, pid := range f.Params {
		if i > 0 {
			sb.WriteByte(' ')
		}

		local := f.Local(pid)
		fmt.Fprintf(&sb, "(_%d %s)", local.Id, local.Type)
	}

	fmt.Fprintf(&sb, ") -> %s\n", f.ReturnType)

	for _, b := range f.Blocks {
		sb.WriteString(b.Lisp())
	}

	sb.WriteString(")")

	return sb.String()
}

// Lisp renders a single block.
func (b *Block) Lisp() string {
	var sb strings.Builder

	kind := "bb"
	if b.IsCleanup {
		kind = "cleanup-bb"
	}

	fmt.Fprintf(&sb, "  (%s%d\n", kind, b.Id)

	for _, s := range b.Stmts {
		fmt.Fprintf(&sb, "    %s\n", s)
	}

	if b.Terminator != nil {
		fmt.Fprintf(&sb, "    %s\n", b.Terminator)
	}

	sb.WriteString("  )\n")

	return sb.String()
}
