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
	"github.com/rask-lang/raskc/pkg/util/termio"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect the lowered MIR of the selected --demo program.",
	Long: `inspect runs check+lower and prints a summary table of the
resulting MIR: every registered call signature (stdlib ABI and user
functions) and every struct/enum layout's size and alignment.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := pipelineConfig(cmd)
		pipe := runCheckAndLower(cmd, cfg)

		if GetFlag(cmd, "interactive") {
			if err := runInspector(pipe.prog); err != nil {
				fmt.Println(err)
				os.Exit(1)
			}

			return
		}

		mod := codegen.NewModule(pipe.prog)
		sigs := mod.Signatures()

		fmt.Println("signatures:")

		sigTable := termio.NewFormattedTable(2, uint(len(sigs)))
		for i, s := range sigs {
			arity := fmt.Sprintf("%d", s.Arity)
			if s.Variadic {
				arity += "+"
			}

			sigTable.SetRow(uint(i), termio.NewText(s.Name), termio.NewText(arity))
		}

		sigTable.Print(false)

		if n := len(pipe.prog.Structs) + len(pipe.prog.Enums); n > 0 {
			fmt.Println("layouts:")

			layoutTable := termio.NewFormattedTable(3, uint(n))
			row := uint(0)

			for _, l := range pipe.prog.Structs {
				layoutTable.SetRow(row, termio.NewText("struct "+l.Name),
					termio.NewText(fmt.Sprintf("%d", l.Size)), termio.NewText(fmt.Sprintf("%d", l.Align)))
				row++
			}

			for _, l := range pipe.prog.Enums {
				layoutTable.SetRow(row, termio.NewText("enum "+l.Name),
					termio.NewText(fmt.Sprintf("%d", l.Size)), termio.NewText(fmt.Sprintf("%d", l.Align)))
				row++
			}

			layoutTable.Print(false)
		}
	},
}

func init() {
	inspectCmd.Flags().BoolP("interactive", "i", false, "browse the lowered basic blocks in an interactive pager")
	rootCmd.AddCommand(inspectCmd)
}
