package parser

import (
	"testing"

	"github.com/cwbudde/vc/internal/ast"
	"github.com/cwbudde/vc/internal/ffi"
	"github.com/cwbudde/vc/internal/types"
	"github.com/cwbudde/vc/internal/vmerrors"
)

func parse(t *testing.T, src string) (*ast.Program, *vmerrors.Sink) {
	t.Helper()
	sink := vmerrors.NewSink()
	p, err := New(src, sink, ffi.NewStandardLibrary(), []string{ffi.DefaultLibraryName})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	prog := p.ParseProgram()
	if p.Fatal() != nil {
		t.Fatalf("Fatal() = %v", p.Fatal())
	}
	return prog, sink
}

func wrapBody(body string) string {
	return "program T;\nbegin\n" + body + "\nend"
}

func TestParseProgramBasic(t *testing.T) {
	src := `program Foo;
var int x;
function add(int a, int b): int
begin
  return a + b;
end
begin
  x = add(1, 2);
end`
	prog, sink := parse(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diagnostics())
	}
	if prog.Name != "Foo" {
		t.Errorf("Name = %q, want Foo", prog.Name)
	}
	if len(prog.Globals) != 1 || prog.Globals[0].Name != "x" || !prog.Globals[0].Type.Equal(types.IntType) {
		t.Fatalf("Globals = %+v", prog.Globals)
	}
	if len(prog.Functions) != 1 {
		t.Fatalf("Functions = %+v", prog.Functions)
	}
	fn := prog.Functions[0]
	if fn.Name != "add" || len(fn.Args) != 2 || !fn.ReturnType.Equal(types.IntType) {
		t.Fatalf("add signature wrong: %+v", fn)
	}
	if len(fn.Body.Statements) != 1 {
		t.Fatalf("add body = %+v", fn.Body.Statements)
	}
	if _, ok := fn.Body.Statements[0].(*ast.Return); !ok {
		t.Errorf("add body[0] = %T, want *ast.Return", fn.Body.Statements[0])
	}
	if len(prog.Body.Statements) != 1 {
		t.Fatalf("program body = %+v", prog.Body.Statements)
	}
	assign, ok := prog.Body.Statements[0].(*ast.Assign)
	if !ok {
		t.Fatalf("program body[0] = %T, want *ast.Assign", prog.Body.Statements[0])
	}
	if _, ok := assign.RHS.(*ast.Call); !ok {
		t.Errorf("assign.RHS = %T, want *ast.Call", assign.RHS)
	}
}

func TestOperatorPrecedenceMulBeforeAdd(t *testing.T) {
	prog, sink := parse(t, wrapBody("x = 1 + 2 * 3;"))
	_ = prog
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diagnostics())
	}
}

func TestOperatorPrecedenceTree(t *testing.T) {
	src := `program T;
var int x;
begin
x = 1 + 2 * 3;
end`
	prog, sink := parse(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diagnostics())
	}
	assign := prog.Body.Statements[0].(*ast.Assign)
	top, ok := assign.RHS.(*ast.Binary)
	if !ok || top.Op != ast.Add {
		t.Fatalf("top = %+v, want Add", assign.RHS)
	}
	right, ok := top.Right.(*ast.Binary)
	if !ok || right.Op != ast.Mul {
		t.Fatalf("right = %+v, want Mul", top.Right)
	}
}

// TestLogicalBindsTighterThanEquality exercises spec.md's deliberately
// un-C-like precedence rule: "and" binds tighter than "==", so
// "1 == 1 and 2 == 2" groups as "(1 == (1 and 2)) == 2", not the two
// independently-equal comparisons a C-like reader would expect.
func TestLogicalBindsTighterThanEquality(t *testing.T) {
	src := `program T;
var bool b;
begin
b = 1 == 1 and 2 == 2;
end`
	prog, sink := parse(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diagnostics())
	}
	assign := prog.Body.Statements[0].(*ast.Assign)
	outer, ok := assign.RHS.(*ast.Binary)
	if !ok || outer.Op != ast.Eq {
		t.Fatalf("outer = %+v, want Eq", assign.RHS)
	}
	if _, ok := outer.Right.(*ast.Constant); !ok {
		t.Fatalf("outer.Right = %+v, want the trailing Constant(2)", outer.Right)
	}
	inner, ok := outer.Left.(*ast.Binary)
	if !ok || inner.Op != ast.Eq {
		t.Fatalf("outer.Left = %+v, want a nested Eq", outer.Left)
	}
	if and, ok := inner.Right.(*ast.Binary); !ok || and.Op != ast.LogAnd {
		t.Fatalf("inner.Right = %+v, want And(1,2)", inner.Right)
	}
}

func TestForLoopDirection(t *testing.T) {
	src := `program T;
var int x;
begin
for x = 1 to 10 do x = x + 1;
end`
	prog, sink := parse(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diagnostics())
	}
	f, ok := prog.Body.Statements[0].(*ast.For)
	if !ok {
		t.Fatalf("statement = %T, want *ast.For", prog.Body.Statements[0])
	}
	if f.Direction != ast.Up {
		t.Errorf("Direction = %v, want Up", f.Direction)
	}
	if f.Var.Name() != "x" {
		t.Errorf("Var.Name() = %q, want x", f.Var.Name())
	}
}

func TestDownto(t *testing.T) {
	src := `program T;
var int x;
begin
for x = 10 downto 1 do x = x - 1;
end`
	prog, sink := parse(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diagnostics())
	}
	f := prog.Body.Statements[0].(*ast.For)
	if f.Direction != ast.Down {
		t.Errorf("Direction = %v, want Down", f.Direction)
	}
}

func TestArrayTypeDecl(t *testing.T) {
	src := `program T;
var int[3,4] m;
begin
end`
	prog, sink := parse(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diagnostics())
	}
	if len(prog.Globals) != 1 {
		t.Fatalf("Globals = %+v", prog.Globals)
	}
	arr, ok := prog.Globals[0].Type.(types.Array)
	if !ok {
		t.Fatalf("Type = %T, want types.Array", prog.Globals[0].Type)
	}
	if arr.Dimensions != 2 {
		t.Errorf("Dimensions = %d, want 2", arr.Dimensions)
	}
}

func TestCastExpression(t *testing.T) {
	src := `program T;
var int x;
begin
x = {int} 3.5;
end`
	prog, sink := parse(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diagnostics())
	}
	assign := prog.Body.Statements[0].(*ast.Assign)
	cast, ok := assign.RHS.(*ast.Cast)
	if !ok {
		t.Fatalf("RHS = %T, want *ast.Cast", assign.RHS)
	}
	if !cast.Target.Equal(types.IntType) {
		t.Errorf("Target = %v, want int", cast.Target)
	}
	if cast.IsSynthetic() {
		t.Error("a source-written cast must not report IsSynthetic()")
	}
}

func TestDottedExternalCall(t *testing.T) {
	src := `program T;
var double x;
begin
x = Math.Sqrt(4.0);
end`
	prog, sink := parse(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diagnostics())
	}
	assign := prog.Body.Statements[0].(*ast.Assign)
	call, ok := assign.RHS.(*ast.Call)
	if !ok {
		t.Fatalf("RHS = %T, want *ast.Call", assign.RHS)
	}
	if call.Callee.Name() != "Math.Sqrt" {
		t.Errorf("Callee.Name() = %q, want Math.Sqrt", call.Callee.Name())
	}
}

func TestIndexerRejectsChaining(t *testing.T) {
	src := `program T;
var int[3] a;
var int x;
begin
x = a[1][2];
end`
	_, sink := parse(t, src)
	if !sink.HasErrors() {
		t.Error("a[1][2] double-indexing should be a syntax error")
	}
}

func TestMultiDimIndexer(t *testing.T) {
	src := `program T;
var int[3,3] m;
var int x;
begin
x = m[1,2];
end`
	prog, sink := parse(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diagnostics())
	}
	assign := prog.Body.Statements[0].(*ast.Assign)
	idx, ok := assign.RHS.(*ast.Indexer)
	if !ok {
		t.Fatalf("RHS = %T, want *ast.Indexer", assign.RHS)
	}
	if len(idx.Indices) != 2 {
		t.Errorf("len(Indices) = %d, want 2", len(idx.Indices))
	}
}

func TestBareExpressionStatementIsSyntaxError(t *testing.T) {
	src := `program T;
var int x;
begin
1 + 2;
end`
	_, sink := parse(t, src)
	if !sink.HasErrors() {
		t.Error("a non-call expression statement should be a syntax error")
	}
}

func TestMultipleVarGroupsWithoutRepeatingVar(t *testing.T) {
	src := `program T;
var int x, y;
    double z;
begin
end`
	prog, sink := parse(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diagnostics())
	}
	if len(prog.Globals) != 3 {
		t.Fatalf("Globals = %+v, want 3", prog.Globals)
	}
	if prog.Globals[2].Name != "z" || !prog.Globals[2].Type.Equal(types.DoubleType) {
		t.Errorf("Globals[2] = %+v", prog.Globals[2])
	}
}

func TestDoWhileNoTrailingSemicolon(t *testing.T) {
	src := `program T;
var int x;
begin
do x = x + 1; while (x < 10)
end`
	_, sink := parse(t, src)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Diagnostics())
	}
}

func TestSyntaxErrorRecoversWithoutPanic(t *testing.T) {
	src := `program T;
var int x
begin
x = 1;
end`
	_, sink := parse(t, src)
	if !sink.HasErrors() {
		t.Error("missing ';' after var decl should be reported")
	}
}
