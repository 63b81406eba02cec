// Package asm parses the assembly text emitted by the compiler back into a
// decoded program the cpu package can execute. Pass 1 resolves labels to
// instruction indexes; pass 2 decodes operands and encodes instructions.
package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"stackc/pkg/cpu"
)

var zeroOperandOps = map[string]cpu.OpCode{
	"RET": cpu.OpRET,
}

var oneOperandOps = map[string]cpu.OpCode{
	"MUL": cpu.OpMUL,
	"INC": cpu.OpINC,
	"DEC": cpu.OpDEC,
}

var twoOperandOps = map[string]cpu.OpCode{
	"MOV": cpu.OpMOV,
	"ADD": cpu.OpADD,
	"SUB": cpu.OpSUB,
	"CMP": cpu.OpCMP,
}

var jumpOps = map[string]cpu.OpCode{
	"JE":  cpu.OpJE,
	"JMP": cpu.OpJMP,
}

type Assembler struct {
	labels map[string]int // label -> instruction index
	entry  string         // symbol named by the global directive
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: make(map[string]int),
	}
}

func Assemble(code string) (*cpu.Program, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) (*cpu.Program, error) {
	lines := strings.Split(code, "\n")

	if err := a.pass1(lines); err != nil {
		return nil, err
	}

	return a.pass2(lines)
}

func (a *Assembler) pass1(lines []string) error {
	index := 0

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		for _, lbl := range p.labels {
			if _, exists := a.labels[lbl]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
			}
			a.labels[lbl] = index
		}

		if p.mnemonic == "" {
			continue
		}

		if p.mnemonic == "SECTION" {
			continue
		}

		if p.mnemonic == "GLOBAL" {
			if len(p.operands) != 1 {
				return fmt.Errorf("global expects exactly one symbol on line %d", lineNo)
			}
			a.entry = p.operands[0]
			continue
		}

		if !knownMnemonic(p.mnemonic) {
			return fmt.Errorf("unknown instruction on line %d: %s", lineNo, p.mnemonic)
		}
		index++
	}

	return nil
}

func (a *Assembler) pass2(lines []string) (*cpu.Program, error) {
	var instructions []cpu.Instruction

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, err
		}

		if p.mnemonic == "" || p.mnemonic == "SECTION" || p.mnemonic == "GLOBAL" {
			continue
		}

		if opcode, ok := zeroOperandOps[p.mnemonic]; ok {
			if len(p.operands) != 0 {
				return nil, fmt.Errorf("%s expects 0 operands on line %d", p.mnemonic, lineNo)
			}
			instructions = append(instructions, cpu.Instruction{Op: opcode})
			continue
		}

		if opcode, ok := oneOperandOps[p.mnemonic]; ok {
			if len(p.operands) != 1 {
				return nil, fmt.Errorf("%s expects 1 operand on line %d", p.mnemonic, lineNo)
			}
			operand, err := parseOperand(p.operands[0], lineNo)
			if err != nil {
				return nil, err
			}
			// MUL reads its operand; INC and DEC write it. Dst and
			// Src are filled the same way and the opcode decides.
			instructions = append(instructions, cpu.Instruction{Op: opcode, Dst: operand, Src: operand})
			continue
		}

		if opcode, ok := twoOperandOps[p.mnemonic]; ok {
			if len(p.operands) != 2 {
				return nil, fmt.Errorf("%s expects 2 operands on line %d", p.mnemonic, lineNo)
			}
			dst, err := parseOperand(p.operands[0], lineNo)
			if err != nil {
				return nil, err
			}
			src, err := parseOperand(p.operands[1], lineNo)
			if err != nil {
				return nil, err
			}
			instructions = append(instructions, cpu.Instruction{Op: opcode, Dst: dst, Src: src})
			continue
		}

		if opcode, ok := jumpOps[p.mnemonic]; ok {
			if len(p.operands) != 1 {
				return nil, fmt.Errorf("%s expects 1 operand on line %d", p.mnemonic, lineNo)
			}
			target, ok := a.labels[p.operands[0]]
			if !ok {
				return nil, fmt.Errorf("undefined label '%s' on line %d", p.operands[0], lineNo)
			}
			instructions = append(instructions, cpu.Instruction{Op: opcode, Target: target})
			continue
		}

		return nil, fmt.Errorf("unknown instruction on line %d: %s", lineNo, p.mnemonic)
	}

	entry := 0
	if a.entry != "" {
		index, ok := a.labels[a.entry]
		if !ok {
			return nil, fmt.Errorf("entry symbol '%s' has no label", a.entry)
		}
		entry = index
	}

	return &cpu.Program{Instructions: instructions, Entry: entry}, nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := stripComments(raw)
	line = strings.TrimSpace(line)
	if line == "" {
		return p, nil
	}

	// Peel off leading labels. Memory operands contain no colons, so any
	// single-word prefix ending in ':' is a label.
	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if strings.ContainsAny(beforeColon, " \t") {
			break
		}
		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	mnemonic, rest, _ := strings.Cut(line, " ")
	p.mnemonic = strings.ToUpper(mnemonic)

	rest = strings.TrimSpace(rest)
	if rest != "" {
		for _, op := range strings.Split(rest, ",") {
			p.operands = append(p.operands, strings.TrimSpace(op))
		}
	}

	return p, nil
}

func stripComments(line string) string {
	if semicolon := strings.Index(line, ";"); semicolon >= 0 {
		return line[:semicolon]
	}
	return line
}

// parseOperand decodes a register name, an immediate integer, or a slot
// reference of the form [RSP + 8 * n].
func parseOperand(token string, lineNo int) (cpu.Operand, error) {
	if strings.HasPrefix(token, "[") {
		return parseSlotRef(token, lineNo)
	}

	if reg, ok := parseRegister(token); ok {
		return cpu.Operand{Kind: cpu.OperandReg, Reg: reg}, nil
	}

	if value, err := strconv.ParseInt(token, 10, 64); err == nil {
		return cpu.Operand{Kind: cpu.OperandImm, Imm: value}, nil
	}

	return cpu.Operand{}, fmt.Errorf("invalid operand '%s' on line %d", token, lineNo)
}

func parseSlotRef(token string, lineNo int) (cpu.Operand, error) {
	if !strings.HasSuffix(token, "]") {
		return cpu.Operand{}, fmt.Errorf("unterminated memory operand '%s' on line %d", token, lineNo)
	}
	inner := token[1 : len(token)-1]

	// Expected shape: REG + 8 * slot
	base, offset, ok := strings.Cut(inner, "+")
	if !ok {
		return cpu.Operand{}, fmt.Errorf("invalid memory operand '%s' on line %d", token, lineNo)
	}

	reg, regOK := parseRegister(strings.TrimSpace(base))
	if !regOK || reg != cpu.RegRSP {
		return cpu.Operand{}, fmt.Errorf("memory operand must be RSP-relative on line %d: '%s'", lineNo, token)
	}

	stride, slotText, ok := strings.Cut(offset, "*")
	if !ok || strings.TrimSpace(stride) != "8" {
		return cpu.Operand{}, fmt.Errorf("memory operand must use an 8-byte stride on line %d: '%s'", lineNo, token)
	}

	slot, err := strconv.Atoi(strings.TrimSpace(slotText))
	if err != nil || slot < 0 {
		return cpu.Operand{}, fmt.Errorf("invalid slot index in '%s' on line %d", token, lineNo)
	}

	return cpu.Operand{Kind: cpu.OperandSlot, Reg: reg, Slot: slot}, nil
}

func parseRegister(token string) (cpu.Register, bool) {
	switch strings.ToUpper(token) {
	case "RAX":
		return cpu.RegRAX, true
	case "RBX":
		return cpu.RegRBX, true
	case "RSP":
		return cpu.RegRSP, true
	default:
		return 0, false
	}
}

func knownMnemonic(mnemonic string) bool {
	if _, ok := zeroOperandOps[mnemonic]; ok {
		return true
	}
	if _, ok := oneOperandOps[mnemonic]; ok {
		return true
	}
	if _, ok := twoOperandOps[mnemonic]; ok {
		return true
	}
	_, ok := jumpOps[mnemonic]
	return ok
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}
