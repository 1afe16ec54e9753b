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
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rask-lang/raskc/pkg/borrow"
	"github.com/rask-lang/raskc/pkg/config"
	"github.com/rask-lang/raskc/pkg/diag"
	"github.com/rask-lang/raskc/pkg/lower"
	"github.com/rask-lang/raskc/pkg/mir"
	"github.com/rask-lang/raskc/pkg/resolve"
	"github.com/rask-lang/raskc/pkg/testprog"
	"github.com/rask-lang/raskc/pkg/typecheck"
	"github.com/rask-lang/raskc/pkg/util"
)

// GetFlag gets an expected bool flag, or exits if the flag is missing.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString gets an expected string flag, or exits if the flag is missing.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetUint gets an expected unsigned-integer flag, or exits if the flag is
// missing.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// pipelineConfig builds a config.PipelineConfig from the persistent flags
// shared by every subcommand.
func pipelineConfig(cmd *cobra.Command) config.PipelineConfig {
	if GetFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}

	opt := GetUint(cmd, "opt")
	if opt >= uint(len(config.OPTIMISATION_LEVELS)) {
		fmt.Printf("invalid optimisation level %d\n", opt)
		os.Exit(2)
	}

	return config.PipelineConfig{
		Verbose:           GetFlag(cmd, "verbose"),
		Strict:            GetFlag(cmd, "strict"),
		OptimisationLevel: opt,
	}
}

// loadDemo resolves the --demo flag to one of pkg/testprog's canonical
// programs, or exits listing the valid names.
func loadDemo(cmd *cobra.Command) *resolve.Program {
	name := GetString(cmd, "demo")

	build, ok := testprog.Demos[name]
	if !ok {
		names := testprog.DemoNames()
		sort.Strings(names)
		fmt.Printf("unknown demo %q, expected one of: %v\n", name, names)
		os.Exit(2)
	}

	return build()
}

// reportDiagnostics prints every diagnostic to stderr and, if any were
// given (or cfg.Strict demands zero tolerance), exits non-zero -- mirroring
// the "report then os.Exit" error-handling idiom used throughout
// pkg/cmd.
func reportDiagnostics(phase string, diags []*diag.Diagnostic, cfg config.PipelineConfig) {
	if len(diags) == 0 {
		return
	}

	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "%s: %s\n", phase, d.Error())
	}

	fmt.Fprintf(os.Stderr, "%s: %d diagnostic(s)\n", phase, len(diags))

	os.Exit(1)
}

// loweredPipeline is the shared state threaded through lower/mono/compile:
// each later stage needs everything the previous stage produced (the
// checker for its type table, the layout table for struct/enum sizes, the
// in-progress mir.Program).
type loweredPipeline struct {
	tc      *typecheck.Checker
	result  *typecheck.Result
	layouts *lower.LayoutTable
	prog    *mir.Program
	ast     *resolve.Program
}

// runCheckAndLower runs type checking, ownership/borrow checking, and
// AST-to-MIR lowering over the selected --demo program, reporting and
// exiting on any diagnostic from any of the three passes. Shared by
// lowerCmd, monoCmd and compileCmd so each only adds its own stage on top.
func runCheckAndLower(cmd *cobra.Command, cfg config.PipelineConfig) *loweredPipeline {
	resolved := loadDemo(cmd)

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

	lwStats := util.NewPerfStats()
	lw := lower.NewLowerer(tc, result)
	prog := lw.Lower(resolved)

	if cfg.Verbose {
		lwStats.Log("MIR lowering")
	}

	reportDiagnostics("lower", lw.Diagnostics(), cfg)

	return &loweredPipeline{tc: tc, result: result, layouts: lw.Layouts(), prog: prog, ast: resolved}
}
