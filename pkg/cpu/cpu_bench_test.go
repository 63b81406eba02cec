package cpu

import "testing"

func BenchmarkRun(b *testing.B) {
	// A straight-line program with a spill and a multiply, the common
	// shape of compiled arithmetic.
	program := &Program{Instructions: []Instruction{
		{Op: OpMOV, Dst: reg(RegRAX), Src: imm(7)},
		{Op: OpMOV, Dst: slot(1), Src: reg(RegRAX)},
		{Op: OpMOV, Dst: reg(RegRAX), Src: imm(6)},
		{Op: OpMOV, Dst: reg(RegRBX), Src: slot(1)},
		{Op: OpMUL, Src: reg(RegRBX)},
		{Op: OpINC, Dst: reg(RegRAX), Src: reg(RegRAX)},
		{Op: OpRET},
	}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m := NewMachine()
		if _, err := m.Run(program, 100); err != nil {
			b.Fatal(err)
		}
	}
}
