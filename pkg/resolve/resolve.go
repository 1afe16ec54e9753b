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

// Package resolve models the resolved-program input contract: the
// output of the (external, out-of-scope) name resolver that the
// type checker consumes. It is a symbol table plus a map from every
// identifier-referencing expression node to the symbol it names.
package resolve

import "github.com/rask-lang/raskc/pkg/ast"

// SymbolId uniquely identifies a resolved symbol (variable, function,
// type, or built-in) across the program.
type SymbolId uint

// SymbolKind classifies what a SymbolId names.
type SymbolKind uint8

// The closed set of symbol kinds.
const (
	SymVar SymbolKind = iota
	SymFunc
	SymType
	SymBuiltin
)

// Symbol is one entry in the symbol table.
type Symbol struct {
	Id   SymbolId
	Name string
	Kind SymbolKind
}

// Builtins pre-populated by the resolver: numeric types, Vec, Map,
// Set, string, Channel, Option, Result, println, print, panic. Attempting
// to shadow any of these is a resolver error, not a checker error.
var Builtins = []string{
	"i8", "i16", "i32", "i64", "i128", "u8", "u16", "u32", "u64", "u128",
	"f32", "f64", "bool", "char", "isize", "usize",
	"Vec", "Map", "Set", "string", "Channel", "Option", "Result",
	"println", "print", "panic",
}

// Program is the resolved-program input contract: a symbol table indexed
// by SymbolId, a map from every identifier-referencing expression node to
// its symbol, and the underlying AST.
type Program struct {
	AST     *ast.Program
	Symbols map[SymbolId]Symbol
	// ExprSymbol maps every ast.Ident node id to the SymbolId it resolves
	// to.
	ExprSymbol map[ast.NodeId]SymbolId
}

// IsBuiltin reports whether name is one of the resolver's pre-populated
// built-in symbols.
func IsBuiltin(name string) bool {
	for _, b := range Builtins {
		if b == name {
			return true
		}
	}

	return false
}

// NewProgram constructs an empty resolved program wrapping the given AST.
func NewProgram(p *ast.Program) *Program {
	return &Program{
		AST:        p,
		Symbols:    make(map[SymbolId]Symbol),
		ExprSymbol: make(map[ast.NodeId]SymbolId),
	}
}

// Declare adds a symbol to the table and returns its id.
func (p *Program) Declare(name string, kind SymbolKind) SymbolId {
	id := SymbolId(len(p.Symbols))
	p.Symbols[id] = Symbol{Id: id, Name: name, Kind: kind}

	return id
}

// Bind records that an identifier expression node resolves to a symbol.
func (p *Program) Bind(node ast.NodeId, sym SymbolId) {
	p.ExprSymbol[node] = sym
}

// SymbolOf looks up the symbol an identifier node resolves to.
func (p *Program) SymbolOf(node ast.NodeId) (Symbol, bool) {
	id, ok := p.ExprSymbol[node]
	if !ok {
		return Symbol{}, false
	}

	return p.Symbols[id], true
}
