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

	"github.com/rask-lang/raskc/pkg/mir"
	"github.com/rask-lang/raskc/pkg/util/termio"
	"github.com/rask-lang/raskc/pkg/util/termio/widget"
)

// blockTableSource adapts one lowered function's basic blocks into a
// widget.TableSource: one row per statement or terminator, with the block
// id in the first column.
type blockTableSource struct {
	rows [][2]string
	// widths holds the maximum width per column.
	widths [2]uint
}

func newBlockTableSource(fn *mir.Function) *blockTableSource {
	src := &blockTableSource{}

	push := func(block, text string) {
		src.rows = append(src.rows, [2]string{block, text})

		if n := uint(len(block)); n > src.widths[0] {
			src.widths[0] = n
		}

		if n := uint(len(text)); n > src.widths[1] {
			src.widths[1] = n
		}
	}

	for _, b := range fn.Blocks {
		kind := "bb"
		if b.IsCleanup {
			kind = "cleanup-bb"
		}

		label := fmt.Sprintf("%s%d", kind, b.Id)

		for _, s := range b.Stmts {
			push(label, s.String())
			label = ""
		}

		if b.Terminator != nil {
			push(label, b.Terminator.String())
		}
	}

	return src
}

// ColumnWidth returns the width of the given column.
func (p *blockTableSource) ColumnWidth(col uint) uint {
	if col < 2 {
		return p.widths[col]
	}

	return 0
}

// Dimensions returns the width and height of this table.
func (p *blockTableSource) Dimensions() (uint, uint) {
	return 2, uint(len(p.rows))
}

// CellAt returns the contents of the given cell.
func (p *blockTableSource) CellAt(col, row uint) termio.FormattedText {
	if row >= uint(len(p.rows)) || col >= 2 {
		return termio.NewText("")
	}

	return termio.NewText(p.rows[row][col])
}

// runInspector drives the interactive basic-block browser: one tab per
// function, a table of its blocks, and a status line with the key
// bindings. Tab/arrow keys cycle functions; q quits.
func runInspector(prog *mir.Program) error {
	terminal, err := termio.NewTerminal()
	if err != nil {
		return err
	}

	defer func() { _ = terminal.Restore() }()

	names := make([]string, len(prog.Functions))
	for i, fn := range prog.Functions {
		names[i] = fn.Name
	}

	tabs := widget.NewTabs(names...)
	table := widget.NewTable(newBlockTableSource(prog.Functions[0]))

	status := widget.NewText()
	status.Add(termio.NewText("tab/arrows: switch function, q: quit"))

	terminal.Add(tabs)
	terminal.Add(widget.NewSeparator("-"))
	terminal.Add(table)
	terminal.Add(widget.NewSeparator("-"))
	terminal.Add(status)

	selected := 0

	for {
		if err := terminal.Render(); err != nil {
			return err
		}

		key, err := terminal.ReadKey()
		if err != nil {
			return err
		}

		switch key {
		case 'q':
			return nil
		case termio.TAB, termio.CURSOR_RIGHT, termio.CURSOR_DOWN:
			selected = (selected + 1) % len(prog.Functions)
		case termio.BACKTAB, termio.CURSOR_LEFT, termio.CURSOR_UP:
			selected = (selected + len(prog.Functions) - 1) % len(prog.Functions)
		}

		tabs.Select(uint(selected))
		table.SetSource(newBlockTableSource(prog.Functions[selected]))
	}
}
