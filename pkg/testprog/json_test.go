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
package testprog_test

import (
	"testing"

	"github.com/rask-lang/raskc/pkg/lower/hidden"
	"github.com/rask-lang/raskc/pkg/testprog"
	"github.com/rask-lang/raskc/pkg/util/assert"
)

func Test_FromJSON_01_CallGraphShape(t *testing.T) {
	js := []byte(`{"functions": {
		"worker": {"using": {"Pool": "Entity"}},
		"api":    {"public": "true", "calls": {"worker": ""}}
	}}`)

	prog, err := testprog.FromJSON(js)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	assert.Equal(t, 2, len(prog.AST.Functions))

	req, missing := hidden.Propagate(prog.AST)

	key := hidden.Key{Name: "Pool", TypeArg: "Entity"}
	assert.True(t, req["api"][key], "api inherits worker's context")
	assert.Equal(t, 1, len(missing), "api is public and never declared the context")
}

func Test_FromJSON_02_MalformedInput(t *testing.T) {
	if _, err := testprog.FromJSON([]byte("{not json")); err == nil {
		t.Fatal("malformed JSON must be rejected")
	}
}
