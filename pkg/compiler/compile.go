package compiler

// CompileProgram runs the whole lowering pipeline on a raw expression tree
// and returns the complete assembly program text. The first failing stage
// aborts the pipeline; no partial text is produced.
func CompileProgram(expr Expr) (string, error) {
	return CompileProgramWith(expr, NoLimits(), DefaultRenderOptions())
}

// CompileProgramWith is CompileProgram with explicit literal limits and
// rendering options.
func CompileProgramWith(expr Expr, limits Limits, opts RenderOptions) (string, error) {
	annotated := Annotate(expr)
	normalized := ToANF(annotated)
	instrs, err := NewCodeGen(limits).Compile(normalized, EmptyEnv())
	if err != nil {
		return "", err
	}
	return RenderProgram(instrs, opts), nil
}

// Compile lexes and parses src, then compiles the resulting expression.
// It returns the parsed expression alongside the program text so callers
// can show a debug rendering of what was compiled.
func Compile(src string) (Expr, string, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, "", err
	}
	expr, err := Parse(tokens, src)
	if err != nil {
		return nil, "", err
	}
	text, err := CompileProgram(expr)
	if err != nil {
		return expr, "", err
	}
	return expr, text, nil
}
