package compiler

import "fmt"

//  Expression nodes

// Expr is implemented by every node of the expression tree. Every node
// carries an integer metadata id, unset (zero) until Annotate has run;
// the normalizer and code generator derive temp names and branch labels
// from it, so Annotate must run before either of them.
type Expr interface {
	exprNode()
	NodeID() int
	String() string
}

// UnaryOp identifies the kind of a unary operation.
type UnaryOp int

const (
	OpInc   UnaryOp = iota // inc(e): e + 1
	OpDec                  // dec(e): e - 1
	OpTwice                // twice(e): e * 2
)

var unaryOpNames = [...]string{
	OpInc:   "inc",
	OpDec:   "dec",
	OpTwice: "twice",
}

func (op UnaryOp) String() string {
	if int(op) >= 0 && int(op) < len(unaryOpNames) {
		return unaryOpNames[op]
	}
	return fmt.Sprintf("UnaryOp(%d)", int(op))
}

// BinOp identifies the kind of a binary operation.
type BinOp int

const (
	OpPlus BinOp = iota
	OpMinus
	OpTimes
)

var binOpNames = [...]string{
	OpPlus:  "+",
	OpMinus: "-",
	OpTimes: "*",
}

func (op BinOp) String() string {
	if int(op) >= 0 && int(op) < len(binOpNames) {
		return binOpNames[op]
	}
	return fmt.Sprintf("BinOp(%d)", int(op))
}

// Literal is an integer constant.
//
//	let x = 10 in x
//	        ^^  Literal{Value: 10}
type Literal struct {
	ID    int
	Value int64
}

func (*Literal) exprNode()        {}
func (l *Literal) NodeID() int    { return l.ID }
func (l *Literal) String() string { return fmt.Sprintf("%d", l.Value) }

// VarRef is a read of a named variable.
//
//	let x = 2 in x + 1
//	             ^  VarRef{Name: "x"}
type VarRef struct {
	ID   int
	Name string
}

func (*VarRef) exprNode()        {}
func (v *VarRef) NodeID() int    { return v.ID }
func (v *VarRef) String() string { return v.Name }

// UnaryExpr represents inc(e), dec(e) or twice(e).
type UnaryExpr struct {
	ID      int
	Op      UnaryOp
	Operand Expr
}

func (*UnaryExpr) exprNode()     {}
func (u *UnaryExpr) NodeID() int { return u.ID }
func (u *UnaryExpr) String() string {
	return fmt.Sprintf("%s(%s)", u.Op, u.Operand)
}

// BinaryExpr represents Left Op Right.
type BinaryExpr struct {
	ID    int
	Op    BinOp
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode()     {}
func (b *BinaryExpr) NodeID() int { return b.ID }
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// LetExpr represents let Name = Bound in Body. The binding is visible in
// Body only; rebinding a name shadows the outer binding.
type LetExpr struct {
	ID    int
	Name  string
	Bound Expr
	Body  Expr
}

func (*LetExpr) exprNode()     {}
func (e *LetExpr) NodeID() int { return e.ID }
func (e *LetExpr) String() string {
	return fmt.Sprintf("(let %s = %s in %s)", e.Name, e.Bound, e.Body)
}

// IfExpr represents if Cond then Then else Else. Cond is truthy when it
// evaluates to a non-zero value; exactly one branch is evaluated.
type IfExpr struct {
	ID   int
	Cond Expr
	Then Expr
	Else Expr
}

func (*IfExpr) exprNode()     {}
func (e *IfExpr) NodeID() int { return e.ID }
func (e *IfExpr) String() string {
	return fmt.Sprintf("(if %s then %s else %s)", e.Cond, e.Then, e.Else)
}
