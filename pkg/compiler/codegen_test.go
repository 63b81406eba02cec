package compiler

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// assertContains checks if the generated code contains the expected substring.
func assertContains(t *testing.T, code, expected string) {
	t.Helper()
	if !strings.Contains(code, expected) {
		t.Errorf("Expected code to contain %q, but it didn't.\nCode:\n%s", expected, code)
	}
}

func TestCompileExpr_Literal(t *testing.T) {
	instrs, err := CompileExpr(&Literal{Value: 5}, EmptyEnv())
	if err != nil {
		t.Fatalf("CompileExpr failed: %v", err)
	}

	want := []Instr{Move{Dst: RegArg{RAX}, Src: Const{5}}}
	if !reflect.DeepEqual(instrs, want) {
		t.Errorf("expected exactly %v, got %v", want, instrs)
	}
}

func TestCompileExpr_VarRef(t *testing.T) {
	env, slot := EmptyEnv().Extend("x")
	instrs, err := CompileExpr(&VarRef{Name: "x"}, env)
	if err != nil {
		t.Fatalf("CompileExpr failed: %v", err)
	}

	want := []Instr{Move{Dst: RegArg{RAX}, Src: SlotRef{Base: RSP, Slot: slot}}}
	if !reflect.DeepEqual(instrs, want) {
		t.Errorf("expected %v, got %v", want, instrs)
	}
}

func TestCompileExpr_Unary(t *testing.T) {
	tests := []struct {
		op   UnaryOp
		last Instr
	}{
		{OpInc, Inc{Dst: RegArg{RAX}}},
		{OpDec, Dec{Dst: RegArg{RAX}}},
		{OpTwice, Add{Dst: RegArg{RAX}, Src: RegArg{RAX}}},
	}
	for _, tt := range tests {
		instrs, err := CompileExpr(&UnaryExpr{Op: tt.op, Operand: &Literal{Value: 9}}, EmptyEnv())
		if err != nil {
			t.Fatalf("CompileExpr(%s) failed: %v", tt.op, err)
		}
		if len(instrs) != 2 || !reflect.DeepEqual(instrs[1], tt.last) {
			t.Errorf("%s: expected [mov, %v], got %v", tt.op, tt.last, instrs)
		}
	}
}

func TestCompileExpr_BinarySpillsRightOperand(t *testing.T) {
	instrs, err := CompileExpr(&BinaryExpr{
		Op:    OpMinus,
		Left:  &Literal{Value: 10},
		Right: &Literal{Value: 4},
	}, EmptyEnv())
	if err != nil {
		t.Fatalf("CompileExpr failed: %v", err)
	}

	want := []Instr{
		Move{Dst: RegArg{RAX}, Src: Const{4}},
		Move{Dst: SlotRef{Base: RSP, Slot: 1}, Src: RegArg{RAX}},
		Move{Dst: RegArg{RAX}, Src: Const{10}},
		Sub{Dst: RegArg{RAX}, Src: SlotRef{Base: RSP, Slot: 1}},
	}
	if !reflect.DeepEqual(instrs, want) {
		t.Errorf("expected %v, got %v", want, instrs)
	}
}

func TestCompileExpr_TimesUsesSecondaryRegister(t *testing.T) {
	instrs, err := CompileExpr(&BinaryExpr{
		Op:    OpTimes,
		Left:  &Literal{Value: 6},
		Right: &Literal{Value: 7},
	}, EmptyEnv())
	if err != nil {
		t.Fatalf("CompileExpr failed: %v", err)
	}

	tail := instrs[len(instrs)-2:]
	want := []Instr{
		Move{Dst: RegArg{RBX}, Src: SlotRef{Base: RSP, Slot: 1}},
		Mul{Src: RegArg{RBX}},
	}
	if !reflect.DeepEqual(tail, want) {
		t.Errorf("expected tail %v, got %v", want, tail)
	}
}

func TestCompileExpr_ScratchAboveVariableSlots(t *testing.T) {
	// let x = 2 in x + x: x lives in slot 1, so the spill slot must be 2
	// or higher even though no other variable exists.
	expr := ToANF(Annotate(&LetExpr{
		Name:  "x",
		Bound: &Literal{Value: 2},
		Body:  &BinaryExpr{Op: OpPlus, Left: &VarRef{Name: "x"}, Right: &VarRef{Name: "x"}},
	}))
	instrs, err := CompileExpr(expr, EmptyEnv())
	if err != nil {
		t.Fatalf("CompileExpr failed: %v", err)
	}

	// The first slot store is x's binding into slot 1; every later slot
	// store is the spill for x + x and must land strictly above it.
	var stores []int
	for _, ins := range instrs {
		if move, ok := ins.(Move); ok {
			if dst, ok := move.Dst.(SlotRef); ok {
				stores = append(stores, dst.Slot)
			}
		}
	}
	if len(stores) < 2 || stores[0] != 1 {
		t.Fatalf("unexpected slot stores %v in %v", stores, instrs)
	}
	for _, slot := range stores[1:] {
		if slot <= 1 {
			t.Errorf("scratch write aliases variable slot %d", slot)
		}
	}
}

func TestCompileExpr_LetStoresBeforeBody(t *testing.T) {
	expr := ToANF(Annotate(&LetExpr{
		Name:  "x",
		Bound: &Literal{Value: 2},
		Body:  &BinaryExpr{Op: OpTimes, Left: &VarRef{Name: "x"}, Right: &Literal{Value: 4}},
	}))
	instrs, err := CompileExpr(expr, EmptyEnv())
	if err != nil {
		t.Fatalf("CompileExpr failed: %v", err)
	}

	want := []Instr{
		Move{Dst: RegArg{RAX}, Src: Const{2}},
		Move{Dst: SlotRef{Base: RSP, Slot: 1}, Src: RegArg{RAX}},
		Move{Dst: RegArg{RAX}, Src: Const{4}},
		Move{Dst: SlotRef{Base: RSP, Slot: 2}, Src: RegArg{RAX}},
		Move{Dst: RegArg{RAX}, Src: SlotRef{Base: RSP, Slot: 1}},
		Move{Dst: RegArg{RBX}, Src: SlotRef{Base: RSP, Slot: 2}},
		Mul{Src: RegArg{RBX}},
	}
	if !reflect.DeepEqual(instrs, want) {
		t.Errorf("expected %v, got %v", want, instrs)
	}
}

func TestCompileExpr_IfLabelsFromNodeID(t *testing.T) {
	expr := Annotate(&IfExpr{
		Cond: &Literal{Value: 0},
		Then: &Literal{Value: 10},
		Else: &Literal{Value: 20},
	})
	instrs, err := CompileExpr(expr, EmptyEnv())
	if err != nil {
		t.Fatalf("CompileExpr failed: %v", err)
	}

	want := []Instr{
		Move{Dst: RegArg{RAX}, Src: Const{0}},
		Cmp{Dst: RegArg{RAX}, Src: Const{0}},
		Je{Label: "else_0"},
		Move{Dst: RegArg{RAX}, Src: Const{10}},
		Jmp{Label: "endif_0"},
		Label{Name: "else_0"},
		Move{Dst: RegArg{RAX}, Src: Const{20}},
		Label{Name: "endif_0"},
	}
	if !reflect.DeepEqual(instrs, want) {
		t.Errorf("expected %v, got %v", want, instrs)
	}
}

func TestCompileExpr_NestedIfLabelsDistinct(t *testing.T) {
	expr := ToANF(Annotate(&IfExpr{
		Cond: &Literal{Value: 1},
		Then: &IfExpr{Cond: &Literal{Value: 0}, Then: &Literal{Value: 1}, Else: &Literal{Value: 2}},
		Else: &IfExpr{Cond: &Literal{Value: 1}, Then: &Literal{Value: 3}, Else: &Literal{Value: 4}},
	}))
	instrs, err := CompileExpr(expr, EmptyEnv())
	if err != nil {
		t.Fatalf("CompileExpr failed: %v", err)
	}

	seen := make(map[string]bool)
	for _, ins := range instrs {
		if lbl, ok := ins.(Label); ok {
			if seen[lbl.Name] {
				t.Errorf("label %q emitted twice", lbl.Name)
			}
			seen[lbl.Name] = true
		}
	}
	if len(seen) != 6 {
		t.Errorf("expected 6 distinct labels for 3 conditionals, got %d: %v", len(seen), seen)
	}
}

func TestCompileExpr_Unbound(t *testing.T) {
	instrs, err := CompileExpr(&VarRef{Name: "y"}, EmptyEnv())
	if err == nil {
		t.Fatal("expected an error for an unbound variable")
	}
	if instrs != nil {
		t.Errorf("expected no partial output, got %v", instrs)
	}

	var unbound *UnboundVarError
	if !errors.As(err, &unbound) || unbound.Name != "y" {
		t.Fatalf("expected UnboundVarError for y, got %T: %v", err, err)
	}
}

func TestCompileExpr_RejectsNonANF(t *testing.T) {
	compound := &UnaryExpr{
		Op:      OpInc,
		Operand: &BinaryExpr{Op: OpPlus, Left: &Literal{Value: 1}, Right: &Literal{Value: 2}},
	}
	if _, err := CompileExpr(compound, EmptyEnv()); err == nil {
		t.Fatal("expected an error for a non-ANF expression")
	}
}

func TestCompileExpr_Limits(t *testing.T) {
	gen := NewCodeGen(Limits{Min: -100, Max: 100})

	_, err := gen.Compile(&Literal{Value: 101}, EmptyEnv())
	var overflow *OverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("expected OverflowError, got %T: %v", err, err)
	}
	if overflow.Value != 101 || overflow.Max != 100 {
		t.Errorf("wrong overflow detail: %+v", overflow)
	}

	_, err = gen.Compile(&Literal{Value: -101}, EmptyEnv())
	var underflow *UnderflowError
	if !errors.As(err, &underflow) {
		t.Fatalf("expected UnderflowError, got %T: %v", err, err)
	}

	if _, err := gen.Compile(&Literal{Value: 100}, EmptyEnv()); err != nil {
		t.Errorf("literal at the limit should compile, got %v", err)
	}
}

func TestCompileProgram_Scaffold(t *testing.T) {
	text, err := CompileProgram(&Literal{Value: 5})
	if err != nil {
		t.Fatalf("CompileProgram failed: %v", err)
	}

	assertContains(t, text, "section .text")
	assertContains(t, text, "global our_code_starts_here")
	assertContains(t, text, "our_code_starts_here:")
	assertContains(t, text, "mov RAX, 5")
	if !strings.HasSuffix(text, "ret\n") {
		t.Errorf("expected trailing ret, got:\n%s", text)
	}

	// Exactly one real instruction between the entry label and ret.
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != 5 {
		t.Errorf("expected 5 lines (prologue + mov + ret), got %d:\n%s", len(lines), text)
	}
}

func TestCompileProgram_NoPartialOutputOnError(t *testing.T) {
	text, err := CompileProgram(&VarRef{Name: "y"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if text != "" {
		t.Errorf("expected empty output on failure, got:\n%s", text)
	}
}

func TestRenderProgram_Formats(t *testing.T) {
	instrs := []Instr{
		Comment{Text: "hello"},
		Move{Dst: RegArg{RAX}, Src: SlotRef{Base: RSP, Slot: 3}},
		Label{Name: "else_1"},
	}
	text := RenderProgram(instrs, RenderOptions{Indent: "\t"})

	assertContains(t, text, "\t; hello\n")
	assertContains(t, text, "\tmov RAX, [RSP + 8 * 3]\n")
	assertContains(t, text, "\nelse_1:\n") // labels stay at column zero
	assertContains(t, text, "\tret\n")
}
