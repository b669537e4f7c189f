package ast

import (
	"testing"

	"github.com/sharpyteam/nlang/token"
)

func ident(name string) *IdentifierLiteral {
	return &IdentifierLiteral{Token: token.Instance{Kind: token.Identifier, Text: name}, Name: name}
}

func TestPosDelegatesToLeadingToken(t *testing.T) {
	n := &NumberLiteral{Token: token.Instance{Row: 3, Column: 5}, Number: 1}
	if got := n.Pos(); got.Row != 3 || got.Column != 5 {
		t.Fatalf("Pos() = %+v, want row 3 column 5", got)
	}
}

func TestBinaryExpressionPosIsLeftOperand(t *testing.T) {
	left := &LiteralExpression{Literal: &NumberLiteral{Token: token.Instance{Row: 1}, Number: 1}}
	right := &LiteralExpression{Literal: &NumberLiteral{Token: token.Instance{Row: 2}, Number: 2}}
	bin := &BinaryExpression{Left: left, Op: token.Instance{Kind: token.Add}, Right: right}
	if bin.Pos().Row != 1 {
		t.Errorf("Pos().Row = %d, want 1", bin.Pos().Row)
	}
}

func TestModulePosEmptyIsZeroValue(t *testing.T) {
	m := &Module{}
	if m.Pos() != (token.Instance{}) {
		t.Errorf("Pos() on empty module = %+v, want zero value", m.Pos())
	}
}

func TestNodeKindsSatisfyInterfaces(t *testing.T) {
	var _ Expression = &LiteralExpression{Literal: &NullLiteral{}}
	var _ Expression = &BinaryExpression{}
	var _ Expression = &FunctionCallExpression{}
	var _ Statement = &BlockStatement{}
	var _ Statement = &WhileStatement{}
	var _ Literal = &IdentifierLiteral{}
}
