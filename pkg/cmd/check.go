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

	"github.com/rask-lang/raskc/pkg/borrow"
	"github.com/rask-lang/raskc/pkg/testprog"
	"github.com/rask-lang/raskc/pkg/typecheck"
	"github.com/rask-lang/raskc/pkg/util"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Type-check and ownership/borrow-check the selected --demo program.",
	Long: `check runs the type checker followed by the ownership and
borrow checker over the selected --demo program, reporting every
accumulated diagnostic and exiting non-zero if any were found.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := pipelineConfig(cmd)

		resolved := loadDemo(cmd)

		// A JSON call-graph description overrides the --demo selection,
		// letting external tooling drive the checker without a parser in
		// the repository.
		if path := GetString(cmd, "json"); path != "" {
			js, err := os.ReadFile(path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}

			resolved, err = testprog.FromJSON(js)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
		}

		tcStats := util.NewPerfStats()
		tc := typecheck.NewChecker(resolved)
		result := tc.Check()

		if cfg.Verbose {
			tcStats.Log("type checking")
		}

		reportDiagnostics("check", tc.Diagnostics(), cfg)

		bcStats := util.NewPerfStats()
		bc := borrow.NewChecker(tc, result)
		bc.Check(resolved)

		if cfg.Verbose {
			bcStats.Log("ownership/borrow checking")
		}

		reportDiagnostics("check", bc.Diagnostics(), cfg)

		fmt.Printf("check: %d function(s) checked, no diagnostics\n", len(resolved.AST.Functions))
	},
}

func init() {
	checkCmd.Flags().String("json", "", "check a JSON call-graph description instead of a --demo program")
	rootCmd.AddCommand(checkCmd)
}
