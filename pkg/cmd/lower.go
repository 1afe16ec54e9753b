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
)

var lowerCmd = &cobra.Command{
	Use:   "lower",
	Short: "Type-check, borrow-check, and lower the selected --demo program to MIR.",
	Long: `lower runs the full front half of the pipeline and
then the AST-to-MIR lowerer, printing the resulting functions' lisp
rendering.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := pipelineConfig(cmd)
		pipe := runCheckAndLower(cmd, cfg)

		fmt.Println(pipe.prog.Lisp())
	},
}

func init() {
	rootCmd.AddCommand(lowerCmd)
}
