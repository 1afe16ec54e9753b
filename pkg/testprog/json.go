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
package testprog

import (
	"github.com/rask-lang/raskc/pkg/ast"
	"github.com/rask-lang/raskc/pkg/resolve"
	"github.com/rask-lang/raskc/pkg/util/collection/typed"
)

// FromJSON builds a resolve.Program from a compact JSON description of a
// call graph, the `--json` input of `raskc check`:
//
//	{"functions": {
//	    "worker": {"using": {"Pool": "Entity"}},
//	    "api":    {"public": "true", "calls": {"worker": ""}}
//	}}
//
// Each function is synthesized with a void signature and one call
// statement per `calls` entry -- enough surface to drive the resolver
// contract, the checker and the hidden-parameter propagation pass over
// externally supplied shapes without a parser in the repository.
func FromJSON(js []byte) (*resolve.Program, error) {
	m, err := typed.FromJsonBytes(js)
	if err != nil {
		return nil, err
	}

	b := NewBuilder()

	fns, ok := m.Map("functions")
	if !ok {
		return Program(), nil
	}

	var funcs []*ast.FuncDecl

	for _, name := range fns.Keys() {
		fm, ok := fns.Map(name)
		if !ok {
			continue
		}

		var body []ast.Stmt

		if calls, ok := fm.Map("calls"); ok {
			for _, callee := range calls.Keys() {
				body = append(body, b.ExprS(b.Call(b.Ident(callee))))
			}
		}

		fd := b.Func(name, nil, Ty("void"), body...)

		if pub, ok := fm.String("public"); ok && pub == "true" {
			fd.IsPublic = true
		}

		if using, ok := fm.Map("using"); ok {
			for _, ctx := range using.Keys() {
				arg, _ := using.String(ctx)
				fd.Contexts = append(fd.Contexts, ast.Context{Name: ctx, TypeArg: arg})
			}
		}

		funcs = append(funcs, fd)
	}

	return Program(funcs...), nil
}
