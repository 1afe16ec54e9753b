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
package lower

import (
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/rask-lang/raskc/pkg/ast"
	"github.com/rask-lang/raskc/pkg/diag"
	"github.com/rask-lang/raskc/pkg/lower/hidden"
	"github.com/rask-lang/raskc/pkg/mir"
	"github.com/rask-lang/raskc/pkg/resolve"
	"github.com/rask-lang/raskc/pkg/typecheck"
	"github.com/rask-lang/raskc/pkg/util"
	"github.com/rask-lang/raskc/pkg/util/collection/stack"
	"github.com/rask-lang/raskc/pkg/util/source"
)

// source0 stands in for a real span when a diagnostic is raised over a
// whole function rather than one AST node (the hidden-parameter pass
// reports by function name, not by node).
func source0() source.Span {
	return source.NewSpan(0, 0)
}

// Lowerer drives one Program's worth of AST-to-MIR lowering. It holds the
// layout table (shared read-only across every function) and the
// hidden-parameter requirement set computed once up front; per-function
// mutable state lives in funcLower: one stateful walker per function,
// reused across its blocks.
type Lowerer struct {
	tc      *typecheck.Checker
	result  *typecheck.Result
	layouts *LayoutTable
	hidReq  hidden.Requirements
	diags   *diag.Bag

	prog          *mir.Program
	nextClosureId int
	stringGlobals map[string]string
}

// internString returns the global symbol name for a string literal's
// content, assigning a fresh one on first use and recording it in the
// program's string table so the code generator can emit it once per
// module regardless of how many call sites share the same content.
func (lw *Lowerer) internString(value string) string {
	if lw.stringGlobals == nil {
		lw.stringGlobals = make(map[string]string)
	}

	if name, ok := lw.stringGlobals[value]; ok {
		return name
	}

	name := fmt.Sprintf(".str%d", len(lw.stringGlobals))
	lw.stringGlobals[value] = name
	lw.prog.Strings = append(lw.prog.Strings, mir.StringConst{Name: name, Value: value})

	return name
}

// NewLowerer constructs a lowerer over a completed type-checking pass.
// Struct/enum layouts are computed immediately; function bodies are lowered
// by Lower.
func NewLowerer(tc *typecheck.Checker, result *typecheck.Result) *Lowerer {
	layouts := BuildLayouts(tc)

	return &Lowerer{
		tc:      tc,
		result:  result,
		layouts: layouts,
		diags:   &diag.Bag{},
		prog:    layouts.Program(),
	}
}

// Diagnostics returns diagnostics raised during lowering itself: the
// hidden-parameter pass's "public function doesn't declare a context its
// callees need" check, plus the unresolved names and invalid constructs
// that function lowering reports.
func (lw *Lowerer) Diagnostics() []*diag.Diagnostic {
	return lw.diags.All()
}

// Layouts exposes the struct/enum layout table computed for this lowering
// pass, so that a later monomorphization pass can instantiate
// generic declarations against the same LayoutId space as the functions
// Lower already emitted into lw.prog.
func (lw *Lowerer) Layouts() *LayoutTable {
	return lw.layouts
}

// Lower lowers every function declaration into the shared mir.Program.
func (lw *Lowerer) Lower(resolved *resolve.Program) *mir.Program {
	req, missing := hidden.Propagate(resolved.AST)
	lw.hidReq = req

	for _, m := range missing {
		lw.diags.Add(diag.New(diag.InvalidConstruct, source0(),
			"function %q must declare `using %s<%s>` to cover its callees' context requirement",
			m.Function, m.Key.Name, m.Key.TypeArg).WithField("function", m.Function))
	}

	for _, fd := range resolved.AST.Functions {
		lw.prog.Functions = append(lw.prog.Functions, lw.lowerFunction(fd))
	}

	log.Debugf("lowered %d function(s), %d struct layout(s), %d enum layout(s)",
		len(lw.prog.Functions), len(lw.prog.Structs), len(lw.prog.Enums))

	return lw.prog
}

func (lw *Lowerer) nextClosureName(enclosing string) string {
	lw.nextClosureId++
	return fmt.Sprintf("%s$closure%d", enclosing, lw.nextClosureId)
}

// funcLower is the per-function lowering state: the builder, the current
// source-name-to-local binding table, the loop-control stack consulted by
// break/continue, and the ensure cleanup-block stack.
type funcLower struct {
	lw     *Lowerer
	fnName string
	b      *mir.Builder
	locals map[string]mir.LocalId

	loopStack   *stack.Stack[loopFrame]
	ensureStack *stack.Stack[mir.BlockId]

	// scopeDepth counts lexically nested blocks for ResourceScopeCheck
	//; pendingCleanup/cleanupMark
	// track ensure-block registrations so each lexical scope runs (and
	// un-registers) the cleanups it opened, in LIFO order, on normal exit.
	scopeDepth     uint
	pendingCleanup *stack.Stack[mir.BlockId]
	cleanupMark    []uint

	// resIds maps a resource binding's source name to the hidden local
	// holding its runtime tracker id (bound by ResourceRegister, consumed
	// by ResourceConsume).
	resIds map[string]mir.LocalId

	// heapClosures tracks heap-allocated closure environments bound in the
	// current function that have not escaped via return; survivors receive
	// ClosureDrop at their binding scope's exit.
	heapClosures map[string]mir.LocalId
	closureMark  []closureFrame

	// closureHeapHint is consulted (then reset) by the next ClosureExpr
	// lowered; call sites that are known-escaping (return value, struct
	// field, spawn body) set it via lowerExprHeap. This is a deliberate,
	// bounded stand-in for real escape analysis (documented in DESIGN.md).
	closureHeapHint bool

	hiddenParams map[hidden.Key]mir.LocalId
	hiddenOrder  []hidden.Key
}

// closureFrame records the heap-closure bindings opened by one lexical
// scope, so exitScope can drop exactly the environments that scope owns.
type closureFrame struct {
	names []string
}

// loopFrame is one entry of the loop-control stack: where `continue` jumps
// to, where `break` jumps to, and (for a loop used as an expression, e.g.
// `loop { ... break val }`) the local that receives the break value.
type loopFrame struct {
	label         string
	continueBlock mir.BlockId
	exitBlock     mir.BlockId
	resultLocal   util.Option[mir.LocalId]
}

func (lw *Lowerer) lowerFunction(fd *ast.FuncDecl) *mir.Function {
	retTy := mirTypeWith(lw.layouts, lw.tc, lw.tc.TypeOfExpr(fd.ReturnType))
	b := mir.NewBuilder(fd.Name, retTy)

	fl := &funcLower{
		lw: lw, fnName: fd.Name, b: b, locals: map[string]mir.LocalId{},
		hiddenParams: map[hidden.Key]mir.LocalId{},
		resIds:       map[string]mir.LocalId{},
		heapClosures: map[string]mir.LocalId{},

		loopStack:      stack.NewStack[loopFrame](),
		ensureStack:    stack.NewStack[mir.BlockId](),
		pendingCleanup: stack.NewStack[mir.BlockId](),
	}

	if fd.Receiver != nil {
		ty := mirTypeWith(lw.layouts, lw.tc, lw.tc.TypeOfExpr(fd.Receiver.Type))
		fl.locals["self"] = b.NewLocal("self", ty, true)
	}

	for _, p := range fd.Params {
		ty := mirTypeWith(lw.layouts, lw.tc, lw.tc.TypeOfExpr(p.Type))
		id := b.NewLocal(p.Name, ty, true)
		fl.locals[p.Name] = id

		if p.Kind == ast.ParamTake && lw.tc.IsResourceType(lw.tc.TypeOfExpr(p.Type)) {
			b.MarkResource(id)
		}
	}

	for _, k := range sortedKeys(lw.hidReq[fd.Name]) {
		name := fmt.Sprintf("__ctx_%s_%s", k.Name, k.TypeArg)
		id := b.NewLocal(name, mir.Scalar(mir.PtrTag), true)
		fl.hiddenParams[k] = id
		fl.hiddenOrder = append(fl.hiddenOrder, k)
	}

	fl.lowerBlock(fd.Body)
	fl.finishWithReturn(retTy)

	return b.Function()
}

// finishWithReturn terminates the current block with a Return if the
// function body fell off the end without an explicit `return` (valid only
// when the declared return type is void, matching the source language's
// implicit-unit-return rule).
func (fl *funcLower) finishWithReturn(retTy mir.Type) {
	blk := fl.b.Function().Block(fl.b.CurrentBlock())
	if blk.Terminator != nil {
		return
	}

	if retTy.Tag() == mir.Void {
		fl.b.Terminate(mir.Return{})
		return
	}

	zero := fl.zeroOperand(retTy)
	fl.b.Terminate(mir.Return{Value: &zero})
}

func (fl *funcLower) newTemp(ty mir.Type) mir.LocalId {
	return fl.b.NewLocal("", ty, false)
}

// zeroOperand produces a default-value constant for a type, used to
// terminate a block that validation requires to have a value but that the
// source program left implicit (e.g. a diverging match arm already
// reported elsewhere).
func (fl *funcLower) zeroOperand(ty mir.Type) mir.Operand {
	if ty.IsScalar() && ty.Tag() != mir.Void {
		return mir.OperandConst(ty, 0)
	}

	tmp := fl.newTemp(ty)
	return mir.OperandLocal(tmp)
}

func sortedKeys(set map[hidden.Key]bool) []hidden.Key {
	keys := make([]hidden.Key, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}

		return keys[i].TypeArg < keys[j].TypeArg
	})

	return keys
}
