package semantic

import (
	"strconv"

	"github.com/cwbudde/vc/internal/ast"
	"github.com/cwbudde/vc/internal/lexer"
	"github.com/cwbudde/vc/internal/scope"
	"github.com/cwbudde/vc/internal/types"
)

// evalExpr evaluates expr under sc, filling in its ReturnType and folding
// or rewriting it per spec.md §4.3's per-node contracts. It always returns
// a non-nil Expression carrying a non-nil ReturnType, substituting
// types.UnsupportedType on an unrecoverable error so later type-directed
// decisions can skip it without a nil check.
func (e *Evaluator) evalExpr(sc scope.Scope, expr ast.Expression) ast.Expression {
	switch x := expr.(type) {
	case *ast.Constant:
		return e.evalConstant(x)
	case *ast.VariableRef:
		return e.evalVariableRef(sc, x)
	case *ast.Indexer:
		return e.evalIndexer(sc, x)
	case *ast.Call:
		return e.evalCall(sc, x)
	case *ast.Unary:
		return e.evalUnary(sc, x)
	case *ast.Cast:
		return e.evalCast(sc, x)
	case *ast.Binary:
		return e.evalBinary(sc, x)
	default:
		expr.SetReturnType(types.UnsupportedType)
		return expr
	}
}

// evalConstant implements spec.md §4.3's "Constant" rule: parse the raw
// token text into a typed value, defaulting to zero/false and recording an
// error on a malformed Int/Double literal.
func (e *Evaluator) evalConstant(c *ast.Constant) *ast.Constant {
	switch c.Kind {
	case ast.ConstInt:
		v, err := parseIntLiteral(c.Tok.Text)
		if err != nil {
			e.sink.SemanticError(c.Pos(), "invalid integer literal %q", c.Tok.Text)
			v = 0
		}
		c.IntValue = v
		c.SetReturnType(types.IntType)
	case ast.ConstDouble:
		v, err := strconv.ParseFloat(c.Tok.Text, 64)
		if err != nil {
			e.sink.SemanticError(c.Pos(), "invalid real literal %q", c.Tok.Text)
			v = 0
		}
		c.DoubleValue = v
		c.SetReturnType(types.DoubleType)
	case ast.ConstString:
		// The lexer already unescapes string literals into Tok.Text.
		c.StringValue = c.Tok.Text
		c.SetReturnType(types.StringType)
	case ast.ConstBool:
		c.BoolValue = c.Tok.Text == "true"
		c.SetReturnType(types.BoolType)
	}
	return c
}

// parseIntLiteral parses the lexer's INT token text, which is either a
// plain decimal run of digits or a "0x"/"0X"-prefixed hex run (spec.md
// §4.2's grammar has no octal form, so a leading zero never shifts base).
func parseIntLiteral(text string) (int64, error) {
	if len(text) > 1 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X') {
		return strconv.ParseInt(text[2:], 16, 64)
	}
	return strconv.ParseInt(text, 10, 64)
}

// evalVariableRef implements spec.md §4.3's "VariableRef" rule: resolve the
// (possibly dotted) name through the scope chain, recording the resolved
// Handle for the backend and reporting an error if it does not resolve.
func (e *Evaluator) evalVariableRef(sc scope.Scope, v *ast.VariableRef) *ast.VariableRef {
	entry, ok := sc.ResolveVariable(v.Parts)
	if !ok {
		e.sink.SemanticError(v.Pos(), "undeclared identifier %q", v.Name())
		v.SetReturnType(types.UnsupportedType)
		return v
	}
	v.Resolved = entry.Handle
	v.HasHandle = true
	v.IsExternal = len(v.Parts) == 2
	v.SetReturnType(entry.Type)
	return v
}

// evalIndexer implements spec.md §4.3's "Indexer" rule: the base must be an
// array expression, and every index must be Int (or coercible to it); the
// result type is the array's element type.
func (e *Evaluator) evalIndexer(sc scope.Scope, i *ast.Indexer) *ast.Indexer {
	i.Array = e.evalExpr(sc, i.Array)
	for idx, elem := range i.Indices {
		elem = e.evalExpr(sc, elem)
		elem = e.coerce(types.IntType, elem)
		i.Indices[idx] = elem
	}

	arr, ok := i.Array.ReturnType().(types.Array)
	if !ok {
		if !types.IsUnsupported(i.Array.ReturnType()) {
			e.sink.SemanticError(i.Pos(), "indexed expression is not an array")
		}
		i.SetReturnType(types.UnsupportedType)
		return i
	}
	if len(i.Indices) != arr.Dimensions {
		e.sink.SemanticError(i.Pos(), "array has rank %d, used with %d index expression(s)", arr.Dimensions, len(i.Indices))
	}
	i.SetReturnType(arr.Element)
	return i
}

// evalCall implements spec.md §4.3's "Call" rule: evaluate every argument,
// resolve the callee by name and actual argument types via the §4.4
// overload algorithm, then wrap any merely-coercible argument in a
// synthetic cast against the resolved parameter type.
func (e *Evaluator) evalCall(sc scope.Scope, c *ast.Call) *ast.Call {
	actual := make([]types.Type, len(c.Args))
	for i, a := range c.Args {
		c.Args[i] = e.evalExpr(sc, a)
		actual[i] = c.Args[i].ReturnType()
	}

	entry, err := sc.ResolveCall(c.Callee.Parts, actual)
	if err != nil {
		e.sink.SemanticError(c.Pos(), "%s", err.Error())
		c.SetReturnType(types.UnsupportedType)
		return c
	}

	c.Resolved = entry.Handle
	c.HasHandle = true
	c.IsExternal = len(c.Callee.Parts) == 2
	c.Callee.SetReturnType(entry.Sig.ReturnType)

	for i, param := range entry.Sig.Args {
		c.Args[i] = e.coerce(param, c.Args[i])
	}
	c.SetReturnType(entry.Sig.ReturnType)
	return c
}

// evalUnary implements spec.md §4.3's "Unary" rule: "-" requires a numeric
// operand and folds a constant operand; "!" requires Bool and folds
// likewise.
func (e *Evaluator) evalUnary(sc scope.Scope, u *ast.Unary) ast.Expression {
	u.Operand = e.evalExpr(sc, u.Operand)
	operandType := u.Operand.ReturnType()

	switch u.Op {
	case ast.UMinus:
		if !types.IsNumeric(operandType) && !types.IsUnsupported(operandType) {
			e.sink.SemanticError(u.Pos(), "unary '-' requires a numeric operand, got %s", operandType)
			u.SetReturnType(types.UnsupportedType)
			return u
		}
		u.SetReturnType(operandType)
		if c, ok := u.Operand.(*ast.Constant); ok {
			if c.Kind == ast.ConstInt {
				return ast.NewIntConstant(u.Tok, -c.IntValue)
			}
			if c.Kind == ast.ConstDouble {
				return ast.NewDoubleConstant(u.Tok, -c.DoubleValue)
			}
		}
		return u
	case ast.UNot:
		if !operandType.Equal(types.BoolType) && !types.IsUnsupported(operandType) {
			e.sink.SemanticError(u.Pos(), "'!' requires a bool operand, got %s", operandType)
		}
		u.SetReturnType(types.BoolType)
		if c, ok := u.Operand.(*ast.Constant); ok && c.Kind == ast.ConstBool {
			return ast.NewBoolConstant(u.Tok, !c.BoolValue)
		}
		return u
	default:
		u.SetReturnType(types.UnsupportedType)
		return u
	}
}

// evalCast implements spec.md §4.3's "Cast" rule: the operand must be
// explicitly castable to Target; an already-matching operand elides the
// cast, and a constant operand folds immediately.
func (e *Evaluator) evalCast(sc scope.Scope, c *ast.Cast) ast.Expression {
	c.Operand = e.evalExpr(sc, c.Operand)
	operandType := c.Operand.ReturnType()

	if operandType.Equal(c.Target) {
		e.sink.Warning(c.Pos(), "redundant cast to %s", c.Target)
		return c.Operand
	}
	if !types.CanExplicitlyCast(operandType, c.Target) && !types.IsUnsupported(operandType) {
		e.sink.SemanticError(c.Pos(), "cannot cast %s to %s", operandType, c.Target)
		c.SetReturnType(c.Target)
		return c
	}
	c.SetReturnType(c.Target)

	if lit, ok := c.Operand.(*ast.Constant); ok {
		switch {
		case lit.Kind == ast.ConstInt && c.Target.Equal(types.DoubleType):
			return ast.NewDoubleConstant(c.Tok, float64(lit.IntValue))
		case lit.Kind == ast.ConstDouble && c.Target.Equal(types.IntType):
			return ast.NewIntConstant(c.Tok, int64(lit.DoubleValue))
		}
	}
	return c
}

// evalBinary implements spec.md §4.3's "Binary" rule in its literal four
// steps: (1) unify differing operand types by widening the narrower side,
// reporting "incompatible types" and yielding an unsupported-typed node if
// neither direction works; (2) check the operator's admissibility against
// the now-common type; (3) fix the result type (Bool for every relational/
// logical operator, otherwise the operand common type); (4) fold to a new
// constant if both operands are constant.
func (e *Evaluator) evalBinary(sc scope.Scope, b *ast.Binary) ast.Expression {
	b.Left = e.evalExpr(sc, b.Left)
	b.Right = e.evalExpr(sc, b.Right)
	lt, rt := b.Left.ReturnType(), b.Right.ReturnType()

	common, ok := commonType(lt, rt)
	if !ok {
		if !types.IsUnsupported(lt) && !types.IsUnsupported(rt) {
			e.sink.SemanticError(b.Pos(), "incompatible types %s and %s", lt, rt)
		}
		b.SetReturnType(types.UnsupportedType)
		return b
	}
	b.Left = e.coerce(common, b.Left)
	b.Right = e.coerce(common, b.Right)

	if !e.admissible(b, common) {
		b.SetReturnType(types.UnsupportedType)
		return b
	}

	if b.Op.IsRelational() || b.Op.IsLogical() {
		b.SetReturnType(types.BoolType)
	} else {
		b.SetReturnType(common)
	}

	if b.Op.IsLogical() {
		if folded, ok := foldLogical(b); ok {
			return folded
		}
		return b
	}
	if b.Op.IsRelational() {
		if folded, ok := foldRelational(b); ok {
			return folded
		}
		return b
	}
	if folded, ok := foldArithmetic(b, common); ok {
		return folded
	}
	return b
}

// admissible checks step 2 of spec.md §4.3's Binary rule: "+" accepts
// strings in addition to numerics; "- * / < <= > >=" numerics only; "%"
// Int only; "==" "!=" any primitive; "and/or/xor" Bool only. It reports an
// error and returns false when common fails the operator's requirement;
// types.UnsupportedType always passes (the error was already reported by
// the widening step, or there is nothing further to check).
func (e *Evaluator) admissible(b *ast.Binary, common types.Type) bool {
	if types.IsUnsupported(common) {
		return true
	}
	switch b.Op {
	case ast.Add:
		if types.IsNumeric(common) || common.Equal(types.StringType) {
			return true
		}
		e.sink.SemanticError(b.Pos(), "'+' requires numeric or string operands, got %s", common)
		return false
	case ast.Sub, ast.Mul, ast.Div, ast.Lt, ast.Leq, ast.Gt, ast.Geq:
		if types.IsNumeric(common) {
			return true
		}
		e.sink.SemanticError(b.Pos(), "operator %s requires numeric operands, got %s", b.Op, common)
		return false
	case ast.Rem:
		if common.Equal(types.IntType) {
			return true
		}
		e.sink.SemanticError(b.Pos(), "'%%' requires int operands, got %s", common)
		return false
	case ast.Eq, ast.Neq:
		if types.IsPrimitive(common) {
			return true
		}
		e.sink.SemanticError(b.Pos(), "operator %s requires primitive operands, got %s", b.Op, common)
		return false
	case ast.LogAnd, ast.LogOr, ast.LogXor:
		if common.Equal(types.BoolType) {
			return true
		}
		e.sink.SemanticError(b.Pos(), "operator %s requires bool operands, got %s", b.Op, common)
		return false
	}
	return true
}

// foldLogical folds a Binary whose operands are both constant Bool.
func foldLogical(b *ast.Binary) (ast.Expression, bool) {
	lc, lok := constBool(b.Left)
	rc, rok := constBool(b.Right)
	if !lok || !rok {
		return nil, false
	}
	switch b.Op {
	case ast.LogAnd:
		return ast.NewBoolConstant(b.Tok, lc && rc), true
	case ast.LogOr:
		return ast.NewBoolConstant(b.Tok, lc || rc), true
	case ast.LogXor:
		return ast.NewBoolConstant(b.Tok, lc != rc), true
	}
	return nil, false
}

// commonType returns the type both a and b can be coerced to without loss
// (equal, or one widens to the other via Int -> Double), and whether one
// exists at all.
func commonType(a, b types.Type) (types.Type, bool) {
	if types.IsUnsupported(a) {
		return b, true
	}
	if types.IsUnsupported(b) {
		return a, true
	}
	if a.Equal(b) {
		return a, true
	}
	if types.CanImplicitlyCoerce(a, b) {
		return b, true
	}
	if types.CanImplicitlyCoerce(b, a) {
		return a, true
	}
	return nil, false
}

// foldArithmetic folds a Binary whose operands are both constants of the
// already-unified type t.
func foldArithmetic(b *ast.Binary, t types.Type) (ast.Expression, bool) {
	lc, ok := b.Left.(*ast.Constant)
	if !ok {
		return nil, false
	}
	rc, ok := b.Right.(*ast.Constant)
	if !ok {
		return nil, false
	}

	if t.Equal(types.StringType) {
		if b.Op == ast.Add {
			return ast.NewStringConstant(b.Tok, lc.StringValue+rc.StringValue), true
		}
		return nil, false
	}

	if t.Equal(types.IntType) {
		l, r := lc.IntValue, rc.IntValue
		switch b.Op {
		case ast.Add:
			return ast.NewIntConstant(b.Tok, l+r), true
		case ast.Sub:
			return ast.NewIntConstant(b.Tok, l-r), true
		case ast.Mul:
			return ast.NewIntConstant(b.Tok, l*r), true
		case ast.Div:
			if r == 0 {
				return nil, false
			}
			return ast.NewIntConstant(b.Tok, l/r), true
		case ast.Rem:
			if r == 0 {
				return nil, false
			}
			return ast.NewIntConstant(b.Tok, l%r), true
		}
		return nil, false
	}

	l, r := lc.DoubleValue, rc.DoubleValue
	switch b.Op {
	case ast.Add:
		return ast.NewDoubleConstant(b.Tok, l+r), true
	case ast.Sub:
		return ast.NewDoubleConstant(b.Tok, l-r), true
	case ast.Mul:
		return ast.NewDoubleConstant(b.Tok, l*r), true
	case ast.Div:
		if r == 0 {
			return nil, false
		}
		return ast.NewDoubleConstant(b.Tok, l/r), true
	}
	return nil, false
}

// foldRelational folds a Binary whose operands are both constants of the
// same already-unified type.
func foldRelational(b *ast.Binary) (ast.Expression, bool) {
	lc, ok := b.Left.(*ast.Constant)
	if !ok {
		return nil, false
	}
	rc, ok := b.Right.(*ast.Constant)
	if !ok {
		return nil, false
	}

	switch lc.Kind {
	case ast.ConstInt:
		return ast.NewBoolConstant(b.Tok, compareRelational(b.Op, cmpInt(lc.IntValue, rc.IntValue))), true
	case ast.ConstDouble:
		return ast.NewBoolConstant(b.Tok, compareRelational(b.Op, cmpFloat(lc.DoubleValue, rc.DoubleValue))), true
	case ast.ConstString:
		return ast.NewBoolConstant(b.Tok, compareRelational(b.Op, cmpString(lc.StringValue, rc.StringValue))), true
	case ast.ConstBool:
		if b.Op == ast.Eq {
			return ast.NewBoolConstant(b.Tok, lc.BoolValue == rc.BoolValue), true
		}
		if b.Op == ast.Neq {
			return ast.NewBoolConstant(b.Tok, lc.BoolValue != rc.BoolValue), true
		}
		return nil, false
	}
	return nil, false
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareRelational(op ast.BinaryOp, cmp int) bool {
	switch op {
	case ast.Eq:
		return cmp == 0
	case ast.Neq:
		return cmp != 0
	case ast.Lt:
		return cmp < 0
	case ast.Leq:
		return cmp <= 0
	case ast.Gt:
		return cmp > 0
	case ast.Geq:
		return cmp >= 0
	}
	return false
}

// coerce wraps expr in a synthetic cast to target when it is merely
// implicitly coercible (spec.md §3's one Int -> Double widening), returns
// expr unchanged when it already matches or carries types.UnsupportedType,
// and otherwise reports a semantic error.
func (e *Evaluator) coerce(target types.Type, expr ast.Expression) ast.Expression {
	actual := expr.ReturnType()
	if actual.Equal(target) || types.IsUnsupported(actual) {
		return expr
	}
	if !types.CanImplicitlyCoerce(actual, target) {
		e.sink.SemanticError(expr.Pos(), "cannot implicitly convert %s to %s", actual, target)
		return expr
	}
	if c, ok := expr.(*ast.Constant); ok && c.Kind == ast.ConstInt {
		return ast.NewDoubleConstant(c.Tok, float64(c.IntValue))
	}
	cast := ast.NewCast(lexer.Token{}, target, expr)
	cast.SetReturnType(target)
	return cast
}
