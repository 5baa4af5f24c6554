package ast

import (
	"strings"

	"github.com/cwbudde/vc/internal/lexer"
	"github.com/cwbudde/vc/internal/scope"
	"github.com/cwbudde/vc/internal/types"
)

// declBase is embedded by every Decl to provide Token/Pos plumbing.
type declBase struct {
	Tok lexer.Token
}

func (b *declBase) TokenLiteral() string { return b.Tok.Text }
func (b *declBase) Pos() lexer.Position  { return b.Tok.Pos }

// Variable is a "var Type name" declaration, used both for globals
// (ProgramScope) and for a function's parameters and locals (LocalScope).
type Variable struct {
	declBase
	Name string
	Type types.Type
}

func (v *Variable) declNode()    {}
func (v *Variable) String() string { return v.Type.String() + " " + v.Name }

// Function is a top-level "function name(args): returnType ... begin ... end"
// declaration. LocalScope is built during parsing (spec.md §3 "Scope
// lifetimes") and is not modified by the backend. The function's handle is
// tracked in ProgramScope, not here: LocalScope only ever needs to resolve
// names, never to know its own handle.
type Function struct {
	declBase
	Name       string
	ReturnType types.Type
	Args       []*Variable
	Locals     []*Variable
	Body       *Block
	LocalScope *scope.LocalScope
}

func (f *Function) declNode() {}

func (f *Function) String() string {
	args := make([]string, len(f.Args))
	for i, a := range f.Args {
		args[i] = a.String()
	}
	return "function " + f.Name + "(" + strings.Join(args, ", ") + "): " + f.ReturnType.String() + " " + f.Body.String()
}

// Signature returns the Function's types.Signature, matching what was
// declared in ProgramScope for overload resolution.
func (f *Function) Signature() types.Signature {
	argTypes := make([]types.Type, len(f.Args))
	for i, a := range f.Args {
		argTypes[i] = a.Type
	}
	return types.Signature{Name: f.Name, ReturnType: f.ReturnType, Args: argTypes}
}

// Program is the root of the AST: the "program Name; ..." declaration plus
// every top-level function, global, and the program body block.
type Program struct {
	declBase
	Name         string
	Functions    []*Function
	Globals      []*Variable
	Body         *Block
	ProgramScope *scope.ProgramScope
}

func (p *Program) declNode() {}

func (p *Program) String() string {
	var sb strings.Builder
	sb.WriteString("program " + p.Name + ";\n")
	for _, f := range p.Functions {
		sb.WriteString(f.String())
		sb.WriteByte('\n')
	}
	sb.WriteString(p.Body.String())
	return sb.String()
}
