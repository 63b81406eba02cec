package main

import (
	"errors"
	"fmt"
	"os"

	"stackc/pkg/compiler"
)

// Exit statuses, one per error kind.
const (
	exitUsage     = 1
	exitUnbound   = 2
	exitOverflow  = 3
	exitUnderflow = 4
	exitUnknown   = 5
)

func exitStatus(err error) int {
	var unbound *compiler.UnboundVarError
	var overflow *compiler.OverflowError
	var underflow *compiler.UnderflowError
	var unknown *compiler.UnknownExprError

	switch {
	case errors.As(err, &unbound):
		return exitUnbound
	case errors.As(err, &overflow):
		return exitOverflow
	case errors.As(err, &underflow):
		return exitUnderflow
	case errors.As(err, &unknown):
		return exitUnknown
	}
	return exitUsage
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: stackc <source file>")
		os.Exit(exitUsage)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "read error:", err)
		os.Exit(exitUsage)
	}

	expr, text, err := compiler.Compile(string(data))
	if err != nil {
		fmt.Fprintln(os.Stderr, "compile error:", err)
		os.Exit(exitStatus(err))
	}

	fmt.Printf("; %s\n", expr)
	fmt.Print(text)
}
