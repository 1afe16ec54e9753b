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
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rask-lang/raskc/pkg/mono"
)

var monoCmd = &cobra.Command{
	Use:   "mono",
	Short: "Lower and monomorphize the selected --demo program.",
	Long: `mono runs check+lower and then monomorphization: every
concrete instantiation of a generic struct, enum or function reachable from
the program is given its own specialized layout and function body.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := pipelineConfig(cmd)
		pipe := runCheckAndLower(cmd, cfg)

		m := mono.New(pipe.tc, pipe.layouts, pipe.prog)
		m.Run(pipe.ast.AST, pipe.result)

		if len(m.Instantiations) == 0 {
			fmt.Println("; no generic instantiations")
		}

		for _, inst := range m.Instantiations {
			fmt.Printf("; instantiation: %s\n", inst.Mangled)
		}

		fmt.Println(pipe.prog.Lisp())
	},
}

func init() {
	rootCmd.AddCommand(monoCmd)
}
