package compiler

import "fmt"

// UnboundVarError reports a variable reference with no binding in scope.
// Both the code generator and the interpreter return it.
type UnboundVarError struct {
	Name string
}

func (e *UnboundVarError) Error() string {
	return fmt.Sprintf("unbound variable %q", e.Name)
}

// OverflowError reports an integer literal above the configured maximum.
type OverflowError struct {
	Value int64
	Max   int64
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("literal %d overflows maximum %d", e.Value, e.Max)
}

// UnderflowError reports an integer literal below the configured minimum.
type UnderflowError struct {
	Value int64
	Min   int64
}

func (e *UnderflowError) Error() string {
	return fmt.Sprintf("literal %d underflows minimum %d", e.Value, e.Min)
}

// UnknownExprError reports an expression node the pipeline does not
// recognise. With the closed node set above it is unreachable unless a new
// node kind is added without updating every switch.
type UnknownExprError struct {
	Expr Expr
}

func (e *UnknownExprError) Error() string {
	return fmt.Sprintf("unknown expression node %T", e.Expr)
}
