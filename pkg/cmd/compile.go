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
	"os"

	"github.com/spf13/cobra"

	"github.com/rask-lang/raskc/pkg/codegen"
	"github.com/rask-lang/raskc/pkg/mono"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Run the full pipeline and emit a textual pseudo-object for the selected --demo program.",
	Long: `compile runs check, lower and mono, then crosses the codegen
boundary contract: it validates the MIR, verifies every call site
against the registered ABI, and -- since real Cranelift-backed object-file
emission is out of scope -- renders a textual pseudo-object
instead of a linkable binary. Use --out to write it to a file instead of
stdout.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := pipelineConfig(cmd)
		pipe := runCheckAndLower(cmd, cfg)

		m := mono.New(pipe.tc, pipe.layouts, pipe.prog)
		m.Run(pipe.ast.AST, pipe.result)

		mod := codegen.NewModule(pipe.prog)

		reportDiagnostics("compile", mod.Verify(), cfg)

		out, err := mod.Emit()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		if path := GetString(cmd, "out"); path != "" {
			if err := os.WriteFile(path, []byte(out), 0644); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}

			return
		}

		fmt.Print(out)
	},
}

func init() {
	compileCmd.Flags().StringP("out", "o", "", "write the pseudo-object to this file instead of stdout")
	rootCmd.AddCommand(compileCmd)
}
