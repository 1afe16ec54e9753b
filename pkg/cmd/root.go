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

// Package cmd implements the raskc CLI: check, lower,
// mono, compile and inspect, one cobra.Command per pipeline stage. Since
// the lexer/parser/name-resolver are out of scope, every
// subcommand takes its input via `--demo <name>`, selecting one of
// pkg/testprog's canonical demo scenarios instead of parsing a source
// file.
//
// Layout: a persistent-flags-in-init() rootCmd plus
// GetFlag/GetString/GetUint accessor helpers in util.go.
package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled in when building via `make`; unset otherwise (e.g.
// `go run`/`go install`).
var Version string

// rootCmd is the command invoked with no subcommand.
var rootCmd = &cobra.Command{
	Use:   "raskc",
	Short: "A compiler pipeline for the Rask language's MIR core.",
	Long: `raskc drives the Rask language's middle and back half: type
checking, ownership/borrow checking, MIR lowering, monomorphization, and
the codegen boundary contract. Parsing and name resolution are out of
scope; every subcommand runs against one of the built-in --demo programs.`,
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("raskc ")

			switch {
			case Version != "":
				fmt.Printf("%s", Version)
			default:
				if info, ok := debug.ReadBuildInfo(); ok {
					fmt.Printf("%s", info.Main.Version)
				} else {
					fmt.Printf("(unknown version)")
				}
			}

			fmt.Println()

			return
		}

		_ = cmd.Usage()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "report the version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity and report per-pass timing")
	rootCmd.PersistentFlags().Bool("strict", false, "treat every diagnostic as fatal")
	rootCmd.PersistentFlags().UintP("opt", "O", 1, "set optimisation level (see OPTIMISATION_LEVELS)")
	rootCmd.PersistentFlags().String("demo", "use-after-move", "name of the built-in demo program to run the pipeline over")

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
