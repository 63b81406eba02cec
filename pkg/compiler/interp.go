package compiler

// Interpret evaluates expr under the given variable bindings and returns
// its value. It is a direct recursive evaluator over the raw tree (no
// annotation or normalization needed) and serves as the reference the
// compiled output is checked against.
//
// Arithmetic is two's-complement 64-bit, matching the target machine. The
// bindings map is never modified; let extends a copy.
func Interpret(expr Expr, bindings map[string]int64) (int64, error) {
	switch n := expr.(type) {
	case *Literal:
		return n.Value, nil

	case *VarRef:
		value, ok := bindings[n.Name]
		if !ok {
			return 0, &UnboundVarError{Name: n.Name}
		}
		return value, nil

	case *UnaryExpr:
		operand, err := Interpret(n.Operand, bindings)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case OpInc:
			return operand + 1, nil
		case OpDec:
			return operand - 1, nil
		case OpTwice:
			return operand * 2, nil
		}

	case *BinaryExpr:
		left, err := Interpret(n.Left, bindings)
		if err != nil {
			return 0, err
		}
		right, err := Interpret(n.Right, bindings)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case OpPlus:
			return left + right, nil
		case OpMinus:
			return left - right, nil
		case OpTimes:
			return left * right, nil
		}

	case *LetExpr:
		bound, err := Interpret(n.Bound, bindings)
		if err != nil {
			return 0, err
		}
		extended := make(map[string]int64, len(bindings)+1)
		for name, value := range bindings {
			extended[name] = value
		}
		extended[n.Name] = bound
		return Interpret(n.Body, extended)

	case *IfExpr:
		cond, err := Interpret(n.Cond, bindings)
		if err != nil {
			return 0, err
		}
		if cond != 0 {
			return Interpret(n.Then, bindings)
		}
		return Interpret(n.Else, bindings)
	}

	return 0, &UnknownExprError{Expr: expr}
}
