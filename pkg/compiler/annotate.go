package compiler

// Annotate returns a copy of expr in which every node carries a unique
// metadata id. Ids start at 0 and increase by 1 per node, assigned
// self-before-children in a single pre-order walk, so the numbering is
// deterministic for a given tree shape. The input tree is not modified.
//
// Temp names (ToANF) and branch labels (CompileExpr) are derived from these
// ids; both therefore require an annotated tree.
func Annotate(expr Expr) Expr {
	a := &annotator{}
	return a.walk(expr)
}

type annotator struct {
	nextID int
}

func (a *annotator) take() int {
	id := a.nextID
	a.nextID++
	return id
}

func (a *annotator) walk(expr Expr) Expr {
	switch n := expr.(type) {
	case *Literal:
		return &Literal{ID: a.take(), Value: n.Value}

	case *VarRef:
		return &VarRef{ID: a.take(), Name: n.Name}

	case *UnaryExpr:
		id := a.take()
		return &UnaryExpr{ID: id, Op: n.Op, Operand: a.walk(n.Operand)}

	case *BinaryExpr:
		id := a.take()
		left := a.walk(n.Left)
		right := a.walk(n.Right)
		return &BinaryExpr{ID: id, Op: n.Op, Left: left, Right: right}

	case *LetExpr:
		id := a.take()
		bound := a.walk(n.Bound)
		body := a.walk(n.Body)
		return &LetExpr{ID: id, Name: n.Name, Bound: bound, Body: body}

	case *IfExpr:
		id := a.take()
		cond := a.walk(n.Cond)
		thenBranch := a.walk(n.Then)
		elseBranch := a.walk(n.Else)
		return &IfExpr{ID: id, Cond: cond, Then: thenBranch, Else: elseBranch}
	}

	// Unreachable for the closed node set.
	return expr
}
