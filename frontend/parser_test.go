package frontend

import (
	"testing"

	"github.com/sharpyteam/nlang/ast"
)

func mustParse(t *testing.T, src string) *ast.Module {
	t.Helper()
	module, err := NewParser(src).ParseModule()
	if err != nil {
		t.Fatalf("ParseModule(%q): %v", src, err)
	}
	return module
}

// TestParseFunctionDefinitionStatement is the shape of the reference
// parser test (parser/ut/parser.cpp), rendered back through
// ast.Stringify to check structure rather than comparing the raw tree.
func TestParseFunctionDefinitionStatement(t *testing.T) {
	module := mustParse(t, "fn add(a, b) {\n    return a + b\n}")
	got := ast.Stringify(module)
	want := "fn add(a, b) {\n    return a + b\n}"
	if got != want {
		t.Errorf("Stringify() = %q, want %q", got, want)
	}
}

func TestParseIfElseStatement(t *testing.T) {
	module := mustParse(t, "if (x > 1) { y = 2 } else { y = 3 }")
	got := ast.Stringify(module)
	want := "if (x > 1) {\n    y = 2\n} else {\n    y = 3\n}"
	if got != want {
		t.Errorf("Stringify() = %q, want %q", got, want)
	}
}

// TestParseMultiplicativeBindsTighterThanAdditive checks precedence
// directly on the tree: "1 + 2 * 3" must parse as 1 + (2 * 3), the
// reference's ParseAdditiveExpression calling down into
// ParseMultiplicativeExpression for each operand.
func TestParseMultiplicativeBindsTighterThanAdditive(t *testing.T) {
	module := mustParse(t, "1 + 2 * 3")
	stmt, ok := module.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("Statements[0] = %T, want *ast.ExpressionStatement", module.Statements[0])
	}
	top, ok := stmt.Expression.(*ast.BinaryExpression)
	if !ok {
		t.Fatalf("expression = %T, want *ast.BinaryExpression", stmt.Expression)
	}
	if top.Op.Kind.String() != "+" {
		t.Errorf("top operator = %s, want +", top.Op.Kind)
	}
	right, ok := top.Right.(*ast.BinaryExpression)
	if !ok {
		t.Fatalf("right operand = %T, want *ast.BinaryExpression (2 * 3)", top.Right)
	}
	if right.Op.Kind.String() != "*" {
		t.Errorf("right operator = %s, want *", right.Op.Kind)
	}
}

// TestParseAssignmentIsRightAssociative checks "a = b = 1" parses as
// a = (b = 1), matching ParseAssignmentExpression's RIGHT associativity.
func TestParseAssignmentIsRightAssociative(t *testing.T) {
	module := mustParse(t, "a = b = 1")
	stmt := module.Statements[0].(*ast.ExpressionStatement)
	top := stmt.Expression.(*ast.BinaryExpression)
	if _, ok := top.Left.(*ast.LiteralExpression); !ok {
		t.Fatalf("left = %T, want *ast.LiteralExpression (a)", top.Left)
	}
	if _, ok := top.Right.(*ast.BinaryExpression); !ok {
		t.Fatalf("right = %T, want *ast.BinaryExpression (b = 1)", top.Right)
	}
}

// TestParseReturnWithoutExpressionStopsAtNewline exercises IsEOL: a bare
// `return` on its own line must not swallow the following statement.
func TestParseReturnWithoutExpressionStopsAtNewline(t *testing.T) {
	module := mustParse(t, "fn f() {\n    return\n    let x = 1\n}")
	fn := module.Statements[0].(*ast.FunctionDefinitionStatement)
	body := fn.Body.(*ast.BlockStatement)
	if len(body.Statements) != 2 {
		t.Fatalf("body has %d statements, want 2", len(body.Statements))
	}
	ret, ok := body.Statements[0].(*ast.ReturnStatement)
	if !ok {
		t.Fatalf("Statements[0] = %T, want *ast.ReturnStatement", body.Statements[0])
	}
	if ret.Expression != nil {
		t.Errorf("return Expression = %#v, want nil", ret.Expression)
	}
	if _, ok := body.Statements[1].(*ast.VariableDefinitionStatement); !ok {
		t.Fatalf("Statements[1] = %T, want *ast.VariableDefinitionStatement", body.Statements[1])
	}
}

// TestParseFunctionCallWithArguments covers the postfix-call path and
// default-value-after-typed-parameter ordering in one function signature.
func TestParseFunctionCallWithArguments(t *testing.T) {
	module := mustParse(t, `fn greet(name: string, greeting: string = 'hi') { print(name, greeting) }`)
	fn := module.Statements[0].(*ast.FunctionDefinitionStatement)
	if len(fn.Arguments) != 2 {
		t.Fatalf("got %d arguments, want 2", len(fn.Arguments))
	}
	if fn.Arguments[1].DefaultValue == nil {
		t.Fatalf("second argument has no default value")
	}
	body := fn.Body.(*ast.BlockStatement)
	exprStmt := body.Statements[0].(*ast.ExpressionStatement)
	call, ok := exprStmt.Expression.(*ast.FunctionCallExpression)
	if !ok {
		t.Fatalf("expression = %T, want *ast.FunctionCallExpression", exprStmt.Expression)
	}
	if len(call.Arguments) != 2 {
		t.Errorf("call has %d arguments, want 2", len(call.Arguments))
	}
}

// TestParseMissingDefaultValueAfterDefaultIsError mirrors the reference's
// default_value_required check.
func TestParseMissingDefaultValueAfterDefaultIsError(t *testing.T) {
	_, err := NewParser("fn f(a = 1, b) {}").ParseModule()
	if err == nil {
		t.Fatal("expected an error for a required parameter following a defaulted one")
	}
}

func TestParseUnexpectedTokenIsError(t *testing.T) {
	_, err := NewParser("let x = }").ParseModule()
	if err == nil {
		t.Fatal("expected an error parsing an unexpected token")
	}
}
