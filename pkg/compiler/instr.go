package compiler

import (
	"fmt"
	"strings"
)

//  Operands

// Reg is a machine register.
type Reg int

const (
	RAX Reg = iota // accumulator: holds the current value
	RBX            // secondary operand register (multiplication)
	RSP            // stack pointer: base of the slot area
)

var regNames = [...]string{
	RAX: "RAX",
	RBX: "RBX",
	RSP: "RSP",
}

func (r Reg) String() string {
	if int(r) >= 0 && int(r) < len(regNames) {
		return regNames[r]
	}
	return fmt.Sprintf("Reg(%d)", int(r))
}

// Arg is an instruction operand: a register, a constant or a stack slot.
type Arg interface {
	argNode()
	String() string
}

// RegArg is a bare register operand.
type RegArg struct {
	Reg Reg
}

func (RegArg) argNode()         {}
func (a RegArg) String() string { return a.Reg.String() }

// Const is an integer constant operand.
type Const struct {
	Value int64
}

func (Const) argNode()         {}
func (a Const) String() string { return fmt.Sprintf("%d", a.Value) }

// SlotRef is a memory operand addressing an 8-byte stack slot relative to a
// base register.
type SlotRef struct {
	Base Reg
	Slot int
}

func (SlotRef) argNode() {}
func (a SlotRef) String() string {
	return fmt.Sprintf("[%s + 8 * %d]", a.Base, a.Slot)
}

//  Instructions

// Instr is a single machine instruction. Each kind renders to exactly one
// line of assembly text.
type Instr interface {
	instrNode()
	String() string
}

// Move represents mov Dst, Src.
type Move struct{ Dst, Src Arg }

func (Move) instrNode()       {}
func (i Move) String() string { return fmt.Sprintf("mov %s, %s", i.Dst, i.Src) }

// Add represents add Dst, Src.
type Add struct{ Dst, Src Arg }

func (Add) instrNode()       {}
func (i Add) String() string { return fmt.Sprintf("add %s, %s", i.Dst, i.Src) }

// Sub represents sub Dst, Src.
type Sub struct{ Dst, Src Arg }

func (Sub) instrNode()       {}
func (i Sub) String() string { return fmt.Sprintf("sub %s, %s", i.Dst, i.Src) }

// Mul represents mul Src: RAX = RAX * Src.
type Mul struct{ Src Arg }

func (Mul) instrNode()       {}
func (i Mul) String() string { return fmt.Sprintf("mul %s", i.Src) }

// Inc represents inc Dst.
type Inc struct{ Dst Arg }

func (Inc) instrNode()       {}
func (i Inc) String() string { return fmt.Sprintf("inc %s", i.Dst) }

// Dec represents dec Dst.
type Dec struct{ Dst Arg }

func (Dec) instrNode()       {}
func (i Dec) String() string { return fmt.Sprintf("dec %s", i.Dst) }

// Cmp represents cmp Dst, Src; it only sets flags.
type Cmp struct{ Dst, Src Arg }

func (Cmp) instrNode()       {}
func (i Cmp) String() string { return fmt.Sprintf("cmp %s, %s", i.Dst, i.Src) }

// Je represents je Label: jump when the last cmp compared equal.
type Je struct{ Label string }

func (Je) instrNode()       {}
func (i Je) String() string { return fmt.Sprintf("je %s", i.Label) }

// Jmp represents an unconditional jmp Label.
type Jmp struct{ Label string }

func (Jmp) instrNode()       {}
func (i Jmp) String() string { return fmt.Sprintf("jmp %s", i.Label) }

// Label is a jump target. It renders at column zero, unlike instructions.
type Label struct{ Name string }

func (Label) instrNode()       {}
func (i Label) String() string { return fmt.Sprintf("%s:", i.Name) }

// Ret represents ret.
type Ret struct{}

func (Ret) instrNode()       {}
func (i Ret) String() string { return "ret" }

// Comment renders as a full-line assembly comment.
type Comment struct{ Text string }

func (Comment) instrNode()       {}
func (i Comment) String() string { return fmt.Sprintf("; %s", i.Text) }

//  Rendering

// EntrySymbol is the label the runtime harness calls into.
const EntrySymbol = "our_code_starts_here"

// RenderOptions controls program-level formatting. It is passed explicitly;
// there is no process-wide rendering mode.
type RenderOptions struct {
	// Indent is prepended to every instruction line. Labels stay at
	// column zero.
	Indent string
}

// DefaultRenderOptions indents instructions by two spaces.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Indent: "  "}
}

// RenderProgram serializes instrs as a complete assembly program: the fixed
// prologue, one line per instruction, and a trailing ret.
func RenderProgram(instrs []Instr, opts RenderOptions) string {
	var out strings.Builder
	fmt.Fprintf(&out, "section .text\n")
	fmt.Fprintf(&out, "global %s\n", EntrySymbol)
	fmt.Fprintf(&out, "%s:\n", EntrySymbol)
	for _, ins := range instrs {
		if _, isLabel := ins.(Label); isLabel {
			fmt.Fprintf(&out, "%s\n", ins)
			continue
		}
		fmt.Fprintf(&out, "%s%s\n", opts.Indent, ins)
	}
	fmt.Fprintf(&out, "%s%s\n", opts.Indent, Ret{})
	return out.String()
}
