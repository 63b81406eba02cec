// Package cpu executes the x86-64 subset the compiler emits. It models just
// enough of the machine to observe a compiled program's result: RAX, RBX, a
// flat array of 8-byte stack slots addressed off RSP, and the zero flag.
//
// A ret with an empty call stack halts the machine; the program's result is
// whatever RAX then holds, matching the C harness convention where
// our_code_starts_here returns its value in RAX.
package cpu

import (
	"errors"
	"fmt"
)

type OpCode int

const (
	OpMOV OpCode = iota
	OpADD
	OpSUB
	OpMUL
	OpINC
	OpDEC
	OpCMP
	OpJE
	OpJMP
	OpRET
)

var opNames = [...]string{
	OpMOV: "MOV",
	OpADD: "ADD",
	OpSUB: "SUB",
	OpMUL: "MUL",
	OpINC: "INC",
	OpDEC: "DEC",
	OpCMP: "CMP",
	OpJE:  "JE",
	OpJMP: "JMP",
	OpRET: "RET",
}

func (op OpCode) String() string {
	if int(op) >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("OpCode(%d)", int(op))
}

type Register int

const (
	RegRAX Register = iota
	RegRBX
	RegRSP
)

type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandReg              // a bare register
	OperandImm              // an immediate constant
	OperandSlot             // an 8-byte stack slot, [RSP + 8 * Slot]
)

// Operand is a decoded instruction operand.
type Operand struct {
	Kind OperandKind
	Reg  Register
	Slot int
	Imm  int64
}

// Instruction is one decoded machine instruction. Jump targets are
// instruction indexes, resolved by the assembler.
type Instruction struct {
	Op     OpCode
	Dst    Operand
	Src    Operand
	Target int
}

// Program is a fully decoded, label-resolved instruction sequence.
type Program struct {
	Instructions []Instruction
	Entry        int // index of the first instruction of the entry symbol
}

// ErrStepBudget is returned when a program does not halt within the step
// budget given to Run.
var ErrStepBudget = errors.New("cpu: step budget exhausted")

// Machine is the execution state. The zero value is not ready; use
// NewMachine.
type Machine struct {
	RAX int64
	RBX int64

	// Slots is the stack-slot area. Slot n of the program addresses
	// Slots[n]; index 0 is unused since slots are 1-based.
	Slots []int64

	ZF bool // set by CMP when both operands compare equal

	PC     int
	Halted bool
	Steps  int
}

func NewMachine() *Machine {
	return &Machine{Slots: make([]int64, 16)}
}

func (m *Machine) ensureSlot(slot int) {
	for slot >= len(m.Slots) {
		m.Slots = append(m.Slots, make([]int64, len(m.Slots))...)
	}
}

func (m *Machine) readReg(r Register) (int64, error) {
	switch r {
	case RegRAX:
		return m.RAX, nil
	case RegRBX:
		return m.RBX, nil
	}
	return 0, fmt.Errorf("cpu: register %d is not readable as a value", r)
}

func (m *Machine) read(op Operand) (int64, error) {
	switch op.Kind {
	case OperandReg:
		return m.readReg(op.Reg)
	case OperandImm:
		return op.Imm, nil
	case OperandSlot:
		m.ensureSlot(op.Slot)
		return m.Slots[op.Slot], nil
	}
	return 0, fmt.Errorf("cpu: cannot read operand kind %d", op.Kind)
}

func (m *Machine) write(op Operand, value int64) error {
	switch op.Kind {
	case OperandReg:
		switch op.Reg {
		case RegRAX:
			m.RAX = value
			return nil
		case RegRBX:
			m.RBX = value
			return nil
		}
		return fmt.Errorf("cpu: register %d is not writable", op.Reg)
	case OperandSlot:
		m.ensureSlot(op.Slot)
		m.Slots[op.Slot] = value
		return nil
	}
	return fmt.Errorf("cpu: cannot write operand kind %d", op.Kind)
}

// Step executes a single instruction of p.
func (m *Machine) Step(p *Program) error {
	if m.Halted {
		return nil
	}
	if m.PC < 0 || m.PC >= len(p.Instructions) {
		return fmt.Errorf("cpu: pc %d outside program of %d instructions", m.PC, len(p.Instructions))
	}

	ins := p.Instructions[m.PC]
	m.PC++
	m.Steps++

	switch ins.Op {
	case OpMOV:
		value, err := m.read(ins.Src)
		if err != nil {
			return err
		}
		return m.write(ins.Dst, value)

	case OpADD, OpSUB:
		dst, err := m.read(ins.Dst)
		if err != nil {
			return err
		}
		src, err := m.read(ins.Src)
		if err != nil {
			return err
		}
		if ins.Op == OpADD {
			return m.write(ins.Dst, dst+src)
		}
		return m.write(ins.Dst, dst-src)

	case OpMUL:
		// Product into RAX; the high 64 bits are discarded.
		src, err := m.read(ins.Src)
		if err != nil {
			return err
		}
		m.RAX *= src
		return nil

	case OpINC:
		dst, err := m.read(ins.Dst)
		if err != nil {
			return err
		}
		return m.write(ins.Dst, dst+1)

	case OpDEC:
		dst, err := m.read(ins.Dst)
		if err != nil {
			return err
		}
		return m.write(ins.Dst, dst-1)

	case OpCMP:
		dst, err := m.read(ins.Dst)
		if err != nil {
			return err
		}
		src, err := m.read(ins.Src)
		if err != nil {
			return err
		}
		m.ZF = dst == src
		return nil

	case OpJE:
		if m.ZF {
			m.PC = ins.Target
		}
		return nil

	case OpJMP:
		m.PC = ins.Target
		return nil

	case OpRET:
		// No call stack: returning from the entry symbol halts the
		// machine and the result is RAX.
		m.Halted = true
		return nil
	}

	return fmt.Errorf("cpu: unknown opcode %d at pc %d", ins.Op, m.PC-1)
}

// Run executes p from its entry point until it halts and returns the value
// left in RAX. maxSteps bounds execution; exceeding it returns
// ErrStepBudget.
func (m *Machine) Run(p *Program, maxSteps int) (int64, error) {
	m.PC = p.Entry
	m.Halted = false
	for !m.Halted {
		if m.Steps >= maxSteps {
			return 0, ErrStepBudget
		}
		if err := m.Step(p); err != nil {
			return 0, err
		}
	}
	return m.RAX, nil
}
