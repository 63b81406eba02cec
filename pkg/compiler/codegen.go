package compiler

import (
	"fmt"
	"math"
)

// Limits bounds the representable range of integer literals. The default is
// the full int64 range, i.e. no check.
type Limits struct {
	Min int64
	Max int64
}

// NoLimits accepts every int64 literal.
func NoLimits() Limits {
	return Limits{Min: math.MinInt64, Max: math.MaxInt64}
}

func (l Limits) check(n int64) error {
	if n > l.Max {
		return &OverflowError{Value: n, Max: l.Max}
	}
	if n < l.Min {
		return &UnderflowError{Value: n, Min: l.Min}
	}
	return nil
}

// CodeGen lowers A-normal-form expressions into instruction sequences.
//
// Variable slots come from the environment; scratch slots (spill space for
// a binary operation's right operand) come from a separate counter based
// above the deepest variable slot the expression can ever bind, so a
// scratch write can never clobber a live variable.
type CodeGen struct {
	limits      Limits
	scratchBase int // highest slot any variable can occupy
	liveScratch int // scratch slots currently in use
	out         []Instr
}

func NewCodeGen(limits Limits) *CodeGen {
	return &CodeGen{limits: limits}
}

func (cg *CodeGen) emit(ins Instr) {
	cg.out = append(cg.out, ins)
}

// allocScratch reserves the next scratch slot. Under A-normal form at most
// one scratch is live at a time (binary operands are immediate), but the
// counter nests correctly regardless.
func (cg *CodeGen) allocScratch() int {
	cg.liveScratch++
	return cg.scratchBase + cg.liveScratch
}

func (cg *CodeGen) freeScratch() {
	cg.liveScratch--
}

// bindingDepth returns the largest number of simultaneously live variable
// slots evaluating expr can require beyond the enclosing environment.
func bindingDepth(expr Expr) int {
	switch n := expr.(type) {
	case *LetExpr:
		return max(bindingDepth(n.Bound), 1+bindingDepth(n.Body))
	case *IfExpr:
		return max(bindingDepth(n.Then), bindingDepth(n.Else))
	}
	return 0
}

// Compile lowers an A-normal-form expression under env and returns the
// instruction sequence that leaves its value in RAX. On error no partial
// sequence is returned.
func (cg *CodeGen) Compile(expr Expr, env Env) ([]Instr, error) {
	if !IsANF(expr) {
		return nil, fmt.Errorf("expression is not in a-normal form: %s", expr)
	}
	cg.scratchBase = env.Size() + bindingDepth(expr)
	cg.liveScratch = 0
	cg.out = nil
	if err := cg.genExpr(expr, env); err != nil {
		return nil, err
	}
	return cg.out, nil
}

func (cg *CodeGen) genExpr(expr Expr, env Env) error {
	switch n := expr.(type) {
	case *Literal:
		if err := cg.limits.check(n.Value); err != nil {
			return err
		}
		cg.emit(Move{Dst: RegArg{RAX}, Src: Const{n.Value}})
		return nil

	case *VarRef:
		slot, err := env.Lookup(n.Name)
		if err != nil {
			return err
		}
		cg.emit(Move{Dst: RegArg{RAX}, Src: SlotRef{Base: RSP, Slot: slot}})
		return nil

	case *UnaryExpr:
		if err := cg.genExpr(n.Operand, env); err != nil {
			return err
		}
		switch n.Op {
		case OpInc:
			cg.emit(Inc{Dst: RegArg{RAX}})
		case OpDec:
			cg.emit(Dec{Dst: RegArg{RAX}})
		case OpTwice:
			cg.emit(Add{Dst: RegArg{RAX}, Src: RegArg{RAX}})
		}
		return nil

	case *BinaryExpr:
		// Right operand first, spilled to a scratch slot; the left
		// operand then lands in RAX where the operation wants it.
		if err := cg.genExpr(n.Right, env); err != nil {
			return err
		}
		scratch := cg.allocScratch()
		cg.emit(Move{Dst: SlotRef{Base: RSP, Slot: scratch}, Src: RegArg{RAX}})
		if err := cg.genExpr(n.Left, env); err != nil {
			return err
		}
		switch n.Op {
		case OpPlus:
			cg.emit(Add{Dst: RegArg{RAX}, Src: SlotRef{Base: RSP, Slot: scratch}})
		case OpMinus:
			cg.emit(Sub{Dst: RegArg{RAX}, Src: SlotRef{Base: RSP, Slot: scratch}})
		case OpTimes:
			// mul takes a register operand and leaves the product
			// in RAX.
			cg.emit(Move{Dst: RegArg{RBX}, Src: SlotRef{Base: RSP, Slot: scratch}})
			cg.emit(Mul{Src: RegArg{RBX}})
		}
		cg.freeScratch()
		return nil

	case *LetExpr:
		// The bound expression is evaluated under the current
		// environment; the name is only visible in the body.
		if err := cg.genExpr(n.Bound, env); err != nil {
			return err
		}
		extended, slot := env.Extend(n.Name)
		cg.emit(Move{Dst: SlotRef{Base: RSP, Slot: slot}, Src: RegArg{RAX}})
		return cg.genExpr(n.Body, extended)

	case *IfExpr:
		// Labels derive from the node's annotation id, which is unique
		// per compilation unit, so nested conditionals cannot collide.
		elseLabel := fmt.Sprintf("else_%d", n.ID)
		endLabel := fmt.Sprintf("endif_%d", n.ID)
		if err := cg.genExpr(n.Cond, env); err != nil {
			return err
		}
		cg.emit(Cmp{Dst: RegArg{RAX}, Src: Const{0}})
		cg.emit(Je{Label: elseLabel})
		if err := cg.genExpr(n.Then, env); err != nil {
			return err
		}
		cg.emit(Jmp{Label: endLabel})
		cg.emit(Label{Name: elseLabel})
		if err := cg.genExpr(n.Else, env); err != nil {
			return err
		}
		cg.emit(Label{Name: endLabel})
		return nil
	}

	return &UnknownExprError{Expr: expr}
}

// CompileExpr lowers an A-normal-form expression under env with no literal
// range checking.
func CompileExpr(expr Expr, env Env) ([]Instr, error) {
	return NewCodeGen(NoLimits()).Compile(expr, env)
}
