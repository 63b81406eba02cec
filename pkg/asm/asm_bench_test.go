package asm

import (
	"fmt"
	"strings"
	"testing"
)

func buildBenchProgram(blocks int) string {
	var sb strings.Builder
	sb.WriteString("section .text\nglobal our_code_starts_here\nour_code_starts_here:\n")
	for i := 0; i < blocks; i++ {
		fmt.Fprintf(&sb, "  mov RAX, %d\n", i)
		fmt.Fprintf(&sb, "  cmp RAX, 0\n")
		fmt.Fprintf(&sb, "  je else_%d\n", i)
		fmt.Fprintf(&sb, "  mov [RSP + 8 * %d], RAX\n", i+1)
		fmt.Fprintf(&sb, "  jmp endif_%d\n", i)
		fmt.Fprintf(&sb, "else_%d:\n", i)
		fmt.Fprintf(&sb, "  inc RAX\n")
		fmt.Fprintf(&sb, "endif_%d:\n", i)
	}
	sb.WriteString("  ret\n")
	return sb.String()
}

func BenchmarkAssemble(b *testing.B) {
	code := buildBenchProgram(100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Assemble(code); err != nil {
			b.Fatal(err)
		}
	}
}
