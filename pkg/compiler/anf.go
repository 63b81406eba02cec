package compiler

import "fmt"

// IsImmediate reports whether expr is a literal or a bare variable
// reference, i.e. something an operator can consume directly.
func IsImmediate(expr Expr) bool {
	switch expr.(type) {
	case *Literal, *VarRef:
		return true
	}
	return false
}

// IsANF reports whether expr is in A-normal form: every operator operand is
// immediate, every if-condition is immediate, and let bound/body are
// themselves in A-normal form.
func IsANF(expr Expr) bool {
	switch n := expr.(type) {
	case *Literal, *VarRef:
		return true
	case *UnaryExpr:
		return IsImmediate(n.Operand)
	case *BinaryExpr:
		return IsImmediate(n.Left) && IsImmediate(n.Right)
	case *LetExpr:
		return IsANF(n.Bound) && IsANF(n.Body)
	case *IfExpr:
		return IsImmediate(n.Cond) && IsANF(n.Then) && IsANF(n.Else)
	}
	return false
}

// binding is a hoisted let introduced while forcing an operand to be
// immediate. Bindings are accumulated left-to-right, so wrapping them
// earliest-first preserves evaluation order.
type binding struct {
	name  string
	bound Expr
}

// tempName derives a temp variable name from a node's annotation id. Ids
// are unique within the tree, so two temps never share a name; the parser
// reserves the tmp_ prefix, so a temp never shadows a user variable.
func tempName(id int) string {
	return fmt.Sprintf("tmp_%d", id)
}

// ToANF rewrites an annotated expression into A-normal form. Compound
// operands are hoisted into enclosing lets bound to temps named after the
// hoisted node's annotation id. The result evaluates to the same value as
// the input under any environment.
func ToANF(expr Expr) Expr {
	core, bindings := normalize(expr)
	return wrapBindings(bindings, core)
}

// normalize returns an ANF expression together with the hoisted bindings
// that must be in scope around it.
func normalize(expr Expr) (Expr, []binding) {
	switch n := expr.(type) {
	case *Literal, *VarRef:
		return expr, nil

	case *UnaryExpr:
		operand, bindings := normalizeImmediate(n.Operand)
		return &UnaryExpr{ID: n.ID, Op: n.Op, Operand: operand}, bindings

	case *BinaryExpr:
		// Left before right: left's hoisted bindings evaluate first.
		left, leftBindings := normalizeImmediate(n.Left)
		right, rightBindings := normalizeImmediate(n.Right)
		bindings := append(leftBindings, rightBindings...)
		return &BinaryExpr{ID: n.ID, Op: n.Op, Left: left, Right: right}, bindings

	case *LetExpr:
		bound, boundBindings := normalize(n.Bound)
		body := ToANF(n.Body)
		return &LetExpr{ID: n.ID, Name: n.Name, Bound: bound, Body: body}, boundBindings

	case *IfExpr:
		// The condition must be immediate before the branch instruction.
		// Branch bodies normalize independently: their compound
		// subexpressions stay inside the branch because they only run
		// when that branch is taken.
		cond, bindings := normalizeImmediate(n.Cond)
		thenBranch := ToANF(n.Then)
		elseBranch := ToANF(n.Else)
		return &IfExpr{ID: n.ID, Cond: cond, Then: thenBranch, Else: elseBranch}, bindings
	}

	return expr, nil
}

// normalizeImmediate normalizes expr and, if the result is still compound,
// hoists it behind a temp so the caller sees an immediate value.
func normalizeImmediate(expr Expr) (Expr, []binding) {
	core, bindings := normalize(expr)
	if IsImmediate(core) {
		return core, bindings
	}
	name := tempName(expr.NodeID())
	bindings = append(bindings, binding{name: name, bound: core})
	return &VarRef{ID: expr.NodeID(), Name: name}, bindings
}

// wrapBindings nests core inside the hoisted lets, earliest binding
// outermost.
func wrapBindings(bindings []binding, core Expr) Expr {
	result := core
	for i := len(bindings) - 1; i >= 0; i-- {
		b := bindings[i]
		result = &LetExpr{ID: b.bound.NodeID(), Name: b.name, Bound: b.bound, Body: result}
	}
	return result
}
