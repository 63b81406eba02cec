package main

import (
	"fmt"
	"os"

	"stackc/pkg/asm"
	"stackc/pkg/compiler"
	"stackc/pkg/cpu"
)

// maxSteps bounds execution; the emitted programs are loop-free, so any
// honest run halts far below this.
const maxSteps = 1_000_000

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: stackrun <source file>")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "read error:", err)
		os.Exit(1)
	}

	_, text, err := compiler.Compile(string(data))
	if err != nil {
		fmt.Fprintln(os.Stderr, "compile error:", err)
		os.Exit(2)
	}

	program, err := asm.Assemble(text)
	if err != nil {
		fmt.Fprintln(os.Stderr, "assemble error:", err)
		os.Exit(6)
	}

	result, err := cpu.NewMachine().Run(program, maxSteps)
	if err != nil {
		fmt.Fprintln(os.Stderr, "run error:", err)
		os.Exit(6)
	}

	fmt.Println(result)
}
