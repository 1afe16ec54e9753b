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
package hidden_test

import (
	"testing"

	"github.com/rask-lang/raskc/pkg/ast"
	"github.com/rask-lang/raskc/pkg/lower/hidden"
	"github.com/rask-lang/raskc/pkg/testprog"
)

func poolKey(arg string) hidden.Key {
	return hidden.Key{Name: "Pool", TypeArg: arg}
}

func Test_Hidden_01_DirectRequirement(t *testing.T) {
	b := testprog.NewBuilder()

	worker := b.Func("worker", nil, testprog.Ty("void"))
	worker.Contexts = []ast.Context{{Name: "Pool", TypeArg: "Entity"}}

	prog := testprog.Program(worker)

	req, missing := hidden.Propagate(prog.AST)
	if len(missing) != 0 {
		t.Fatalf("nothing public here, got %v", missing)
	}

	if !req["worker"][poolKey("Entity")] {
		t.Fatal("declared context must appear in the requirement set")
	}
}

func Test_Hidden_02_TransitivePropagation(t *testing.T) {
	b := testprog.NewBuilder()

	worker := b.Func("worker", nil, testprog.Ty("void"))
	worker.Contexts = []ast.Context{{Name: "Pool", TypeArg: "Entity"}}

	middle := b.Func("middle", nil, testprog.Ty("void"),
		b.ExprS(b.Call(b.Ident("worker"))),
	)
	driver := b.Func("driver", nil, testprog.Ty("void"),
		b.ExprS(b.Call(b.Ident("middle"))),
	)

	prog := testprog.Program(worker, middle, driver)

	req, _ := hidden.Propagate(prog.AST)

	if !req["middle"][poolKey("Entity")] {
		t.Fatal("a private caller inherits its callee's context requirement")
	}

	if !req["driver"][poolKey("Entity")] {
		t.Fatal("propagation must reach a fixed point across the call graph")
	}
}

func Test_Hidden_03_PublicMustDeclare(t *testing.T) {
	b := testprog.NewBuilder()

	worker := b.Func("worker", nil, testprog.Ty("void"))
	worker.Contexts = []ast.Context{{Name: "Pool", TypeArg: "Entity"}}

	api := b.Func("api", nil, testprog.Ty("void"),
		b.ExprS(b.Call(b.Ident("worker"))),
	)
	api.IsPublic = true

	prog := testprog.Program(worker, api)

	_, missing := hidden.Propagate(prog.AST)

	if len(missing) != 1 || missing[0].Function != "api" || missing[0].Key != poolKey("Entity") {
		t.Fatalf("public function missing a context declaration must be reported, got %v", missing)
	}
}

func Test_Hidden_04_PublicWithDeclaration_Clean(t *testing.T) {
	b := testprog.NewBuilder()

	worker := b.Func("worker", nil, testprog.Ty("void"))
	worker.Contexts = []ast.Context{{Name: "Pool", TypeArg: "Entity"}}

	api := b.Func("api", nil, testprog.Ty("void"),
		b.ExprS(b.Call(b.Ident("worker"))),
	)
	api.IsPublic = true
	api.Contexts = []ast.Context{{Name: "Pool", TypeArg: "Entity"}}

	prog := testprog.Program(worker, api)

	_, missing := hidden.Propagate(prog.AST)
	if len(missing) != 0 {
		t.Fatalf("explicitly declared contexts satisfy the public rule, got %v", missing)
	}
}

func Test_Hidden_05_UsingBlockDoesNotPropagate(t *testing.T) {
	b := testprog.NewBuilder()

	worker := b.Func("worker", nil, testprog.Ty("void"))
	worker.Contexts = []ast.Context{{Name: "Pool", TypeArg: "Entity"}}

	// The call happens inside a `using` block, which provides its own
	// context; the enclosing function inherits nothing.
	host := b.Func("host", nil, testprog.Ty("void"),
		b.Using(b.IntSuffixed(2, "usize"),
			b.ExprS(b.Call(b.Ident("worker"))),
		),
	)

	prog := testprog.Program(worker, host)

	req, _ := hidden.Propagate(prog.AST)
	if req["host"][poolKey("Entity")] {
		t.Fatal("calls under a using block must not propagate to the host")
	}
}
