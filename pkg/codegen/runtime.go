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
package codegen

// Signature is a runtime (or user) function's arity, used only to validate
// call sites; the code generator does not type-check arguments beyond
// counting them (that already happened in pkg/typecheck).
type Signature struct {
	Name  string
	Arity int
	// Variadic turns off the call-site arity check for this signature, so
	// any argument count is accepted (rask_panic sets it; Call{dst, func,
	// args} itself places no bound on argument count).
	Variadic bool
}

// RuntimeSignatures is the fixed runtime ABI: every function generated
// code may call without it being a user-defined function. Must be
// registered before lowering any user function so that a
// user-defined function of the same name can shadow it rather than
// collide with it.
func RuntimeSignatures() []Signature {
	return []Signature{
		{Name: "rask_runtime_init", Arity: 1},
		{Name: "rask_runtime_shutdown", Arity: 0},
		{Name: "rask_print_i64", Arity: 1},
		{Name: "rask_print_string", Arity: 1},
		{Name: "rask_io_open", Arity: 3},
		{Name: "rask_io_write", Arity: 3},
		{Name: "rask_io_close", Arity: 1},
		{Name: "Vec_new", Arity: 0},
		{Name: "Vec_push", Arity: 2},
		{Name: "Vec_get", Arity: 2},
		{Name: "Vec_len", Arity: 1},
		{Name: "Vec_set", Arity: 3},
		{Name: "Pool_handles", Arity: 1},
		{Name: "Pool_get", Arity: 2},
		{Name: "resource_register", Arity: 2},
		{Name: "resource_consume", Arity: 1},
		{Name: "resource_scope_check", Arity: 1},
		{Name: "closure_alloc_heap", Arity: 1},
		{Name: "closure_drop", Arity: 1},
		// Container, carrier-enum and task helpers the lowerer emits beyond
		// the core ABI minimum.
		{Name: "Vec_pop", Arity: 1},
		{Name: "Vec_iter", Arity: 1},
		{Name: "Vec_clone", Arity: 1},
		{Name: "Map_insert", Arity: 3},
		{Name: "Map_get", Arity: 2},
		{Name: "Map_len", Arity: 1},
		{Name: "Set_insert", Arity: 2},
		{Name: "Set_contains", Arity: 2},
		{Name: "Set_len", Arity: 1},
		{Name: "Channel_send", Arity: 2},
		{Name: "Channel_recv", Arity: 1},
		{Name: "Channel_try_send", Arity: 2},
		{Name: "Channel_try_recv", Arity: 2},
		{Name: "string_len", Arity: 1},
		{Name: "Option_some", Arity: 1},
		{Name: "Option_none", Arity: 0},
		{Name: "Option_is_some", Arity: 1},
		{Name: "Option_unwrap", Arity: 1},
		{Name: "Result_ok", Arity: 1},
		{Name: "Result_err", Arity: 1},
		{Name: "Result_is_ok", Arity: 1},
		{Name: "Result_unwrap", Arity: 1},
		{Name: "Result_unwrap_err", Arity: 1},
		{Name: "Enum_tag", Arity: 1},
		{Name: "Enum_payload_field", Arity: 3},
		{Name: "rask_panic", Arity: 1, Variadic: true},
		{Name: "rask_spawn", Arity: 1},
		{Name: "rask_task_join", Arity: 1},
		{Name: "rask_task_sleep", Arity: 1},
	}
}
