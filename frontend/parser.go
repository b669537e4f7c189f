package frontend

import (
	"fmt"

	"github.com/sharpyteam/nlang/ast"
	"github.com/sharpyteam/nlang/token"
)

// Parser is a recursive-descent parser over a Scanner, producing the ast
// package's node set. Grounded on Parser (parser/include/parser/
// parser.hpp) method-for-method; the reference's template-parameterized
// ParseBinaryExpression<next, allowNewlineBeforeOp, associativity,
// tokens...> becomes binaryLevel, an ordinary Go function taking a slice
// of token.Kind and a next-level parser func, since Go generics over a
// variadic non-type template pack aren't the natural fit here -- a plain
// function value threaded down the precedence ladder reads the same way
// and costs nothing at the one-module-per-parse scale this runs at.
type Parser struct {
	s *Scanner
}

// NewParser builds a Parser over src.
func NewParser(src string) *Parser {
	return &Parser{s: NewScanner(src)}
}

// ParseModule parses an entire source file as a module: a sequence of
// top-level statements.
func (p *Parser) ParseModule() (*ast.Module, error) {
	stmts, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	return &ast.Module{Statements: stmts}, nil
}

func (p *Parser) tryParseTypeHint() (*ast.TypeHint, error) {
	if p.s.NextTokenLookahead().Kind != token.Colon {
		return nil, nil
	}
	colon := p.s.NextToken()
	name, err := p.s.NextTokenAssert(token.Identifier)
	if err != nil {
		return nil, err
	}
	return &ast.TypeHint{Colon: colon, Name: &ast.IdentifierLiteral{Token: name, Name: name.Text}}, nil
}

func (p *Parser) tryParseDefaultValue() (*ast.DefaultValue, error) {
	if p.s.NextTokenLookahead().Kind != token.Assign {
		return nil, nil
	}
	assign := p.s.NextToken()
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.DefaultValue{Assign: assign, Value: value}, nil
}

func (p *Parser) parseArgumentDefinition(index int) (*ast.ArgumentDefinitionStatementPart, error) {
	name, err := p.s.NextTokenAssert(token.Identifier)
	if err != nil {
		return nil, err
	}
	typeHint, err := p.tryParseTypeHint()
	if err != nil {
		return nil, err
	}
	defaultValue, err := p.tryParseDefaultValue()
	if err != nil {
		return nil, err
	}
	return &ast.ArgumentDefinitionStatementPart{
		Name:         &ast.IdentifierLiteral{Token: name, Name: name.Text},
		TypeHint:     typeHint,
		DefaultValue: defaultValue,
		Index:        index,
	}, nil
}

// parseArgumentList parses the comma-separated parameter list up to and
// including the closing `)`. Once one parameter carries a default value,
// every parameter after it must too -- the reference enforces the same
// rule (`default_value_required`).
func (p *Parser) parseArgumentList() ([]*ast.ArgumentDefinitionStatementPart, error) {
	var args []*ast.ArgumentDefinitionStatementPart
	defaultRequired := false
	for {
		if p.s.NextTokenLookahead().Kind == token.RightPar {
			p.s.NextToken()
			return args, nil
		}
		arg, err := p.parseArgumentDefinition(len(args))
		if err != nil {
			return nil, err
		}
		if arg.DefaultValue != nil {
			defaultRequired = true
		} else if defaultRequired {
			return nil, fmt.Errorf("frontend: expected default value for parameter %q", arg.Name.Name)
		}
		args = append(args, arg)
		if p.s.NextTokenLookahead().Kind == token.Comma {
			p.s.NextToken()
			if p.s.NextTokenLookahead().Kind == token.RightPar {
				return nil, fmt.Errorf("frontend: expected parameter after ','")
			}
		}
	}
}

func (p *Parser) parseVariableDefinitionStatement() (ast.Statement, error) {
	let, err := p.s.NextTokenAssert(token.Let)
	if err != nil {
		return nil, err
	}
	name, err := p.s.NextTokenAssert(token.Identifier)
	if err != nil {
		return nil, err
	}
	typeHint, err := p.tryParseTypeHint()
	if err != nil {
		return nil, err
	}
	defaultValue, err := p.tryParseDefaultValue()
	if err != nil {
		return nil, err
	}
	return &ast.VariableDefinitionStatement{
		Let:          let,
		Name:         &ast.IdentifierLiteral{Token: name, Name: name.Text},
		TypeHint:     typeHint,
		DefaultValue: defaultValue,
	}, nil
}

func (p *Parser) parseReturnStatement() (ast.Statement, error) {
	ret, err := p.s.NextTokenAssert(token.Return)
	if err != nil {
		return nil, err
	}
	if p.s.IsEOL() || p.s.NextTokenLookahead().Kind == token.Semicolon {
		return &ast.ReturnStatement{ReturnToken: ret}, nil
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.ReturnStatement{ReturnToken: ret, Expression: expr}, nil
}

func (p *Parser) parseBreakStatement() (ast.Statement, error) {
	brk, err := p.s.NextTokenAssert(token.Break)
	if err != nil {
		return nil, err
	}
	if p.s.IsEOL() || p.s.NextTokenLookahead().Kind == token.Semicolon {
		return &ast.BreakStatement{BreakToken: brk}, nil
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.BreakStatement{BreakToken: brk, Expression: expr}, nil
}

func (p *Parser) parseContinueStatement() (ast.Statement, error) {
	tok, err := p.s.NextTokenAssert(token.Continue)
	if err != nil {
		return nil, err
	}
	return &ast.ContinueStatement{ContinueToken: tok}, nil
}

func (p *Parser) parseIfElseStatement() (ast.Statement, error) {
	ifToken, err := p.s.NextTokenAssert(token.If)
	if err != nil {
		return nil, err
	}
	leftPar, err := p.s.NextTokenAssert(token.LeftPar)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	rightPar, err := p.s.NextTokenAssert(token.RightPar)
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var elseBranch *ast.ElseStatementPart
	if p.s.NextTokenLookahead().Kind == token.Else {
		elseToken := p.s.NextToken()
		elseBody, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		elseBranch = &ast.ElseStatementPart{ElseToken: elseToken, Body: elseBody}
	}
	return &ast.IfElseStatement{
		IfToken: ifToken, LeftPar: leftPar, Condition: cond, RightPar: rightPar,
		Body: body, Else: elseBranch,
	}, nil
}

func (p *Parser) parseWhileStatement() (ast.Statement, error) {
	whileToken, err := p.s.NextTokenAssert(token.While)
	if err != nil {
		return nil, err
	}
	leftPar, err := p.s.NextTokenAssert(token.LeftPar)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	rightPar, err := p.s.NextTokenAssert(token.RightPar)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{WhileToken: whileToken, LeftPar: leftPar, Condition: cond, RightPar: rightPar, Body: body}, nil
}

func (p *Parser) parseExpressionStatement() (ast.Statement, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.ExpressionStatement{Expression: expr}, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.s.NextTokenLookahead().Kind {
	case token.Fn:
		return p.parseFunctionDefinitionStatement()
	case token.Let:
		return p.parseVariableDefinitionStatement()
	case token.Return:
		return p.parseReturnStatement()
	case token.Continue:
		return p.parseContinueStatement()
	case token.Break:
		return p.parseBreakStatement()
	case token.If:
		return p.parseIfElseStatement()
	case token.While:
		return p.parseWhileStatement()
	case token.LeftBrace:
		return p.parseBlockStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseStatements() ([]ast.Statement, error) {
	var statements []ast.Statement
	for {
		if p.s.IsEOF() || p.s.NextTokenLookahead().Kind == token.RightBrace {
			return statements, nil
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
		if !p.s.IsEOF() && p.s.NextTokenLookahead().Kind == token.Semicolon {
			p.s.NextToken()
		}
	}
}

func (p *Parser) parseBlockStatement() (ast.Statement, error) {
	leftBrace, err := p.s.NextTokenAssert(token.LeftBrace)
	if err != nil {
		return nil, err
	}
	statements, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	rightBrace, err := p.s.NextTokenAssert(token.RightBrace)
	if err != nil {
		return nil, err
	}
	return &ast.BlockStatement{LeftBrace: leftBrace, Statements: statements, RightBrace: rightBrace}, nil
}

func (p *Parser) parseFunctionDefinitionStatement() (ast.Statement, error) {
	fn, err := p.s.NextTokenAssert(token.Fn)
	if err != nil {
		return nil, err
	}
	name, err := p.s.NextTokenAssert(token.Identifier)
	if err != nil {
		return nil, err
	}
	leftPar, err := p.s.NextTokenAssert(token.LeftPar)
	if err != nil {
		return nil, err
	}
	args, err := p.parseArgumentList()
	if err != nil {
		return nil, err
	}
	typeHint, err := p.tryParseTypeHint()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDefinitionStatement{
		Fn: fn, Name: &ast.IdentifierLiteral{Token: name, Name: name.Text},
		LeftPar: leftPar, Arguments: args, TypeHint: typeHint, Body: body,
	}, nil
}

func (p *Parser) parseFunctionDefinitionExpression() (ast.Expression, error) {
	fn, err := p.s.NextTokenAssert(token.Fn)
	if err != nil {
		return nil, err
	}
	var name *ast.IdentifierLiteral
	if p.s.NextTokenLookahead().Kind == token.Identifier {
		tok := p.s.NextToken()
		name = &ast.IdentifierLiteral{Token: tok, Name: tok.Text}
	}
	leftPar, err := p.s.NextTokenAssert(token.LeftPar)
	if err != nil {
		return nil, err
	}
	args, err := p.parseArgumentList()
	if err != nil {
		return nil, err
	}
	typeHint, err := p.tryParseTypeHint()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDefinitionExpression{
		Fn: fn, Name: name, LeftPar: leftPar, Arguments: args, TypeHint: typeHint, Body: body,
	}, nil
}

func (p *Parser) parseParenthesizedExpression() (ast.Expression, error) {
	leftPar, err := p.s.NextTokenAssert(token.LeftPar)
	if err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	rightPar, err := p.s.NextTokenAssert(token.RightPar)
	if err != nil {
		return nil, err
	}
	return &ast.ParenthesizedExpression{LeftPar: leftPar, Expression: expr, RightPar: rightPar}, nil
}

func (p *Parser) parseBasicExpression() (ast.Expression, error) {
	mark := p.s.Mark()
	tok := p.s.NextToken()
	switch tok.Kind {
	case token.LeftPar:
		p.s.Apply(mark)
		return p.parseParenthesizedExpression()
	case token.Identifier:
		return &ast.LiteralExpression{Literal: &ast.IdentifierLiteral{Token: tok, Name: tok.Text}}, nil
	case token.Number:
		n, err := parseNumber(tok.Text)
		if err != nil {
			return nil, err
		}
		return &ast.LiteralExpression{Literal: &ast.NumberLiteral{Token: tok, Number: n}}, nil
	case token.String:
		return &ast.LiteralExpression{Literal: &ast.StringLiteral{Token: tok, Value: tok.Text}}, nil
	case token.TheNull:
		return &ast.LiteralExpression{Literal: &ast.NullLiteral{Token: tok}}, nil
	case token.TheTrue:
		return &ast.LiteralExpression{Literal: &ast.BoolLiteral{Token: tok, Flag: true}}, nil
	case token.TheFalse:
		return &ast.LiteralExpression{Literal: &ast.BoolLiteral{Token: tok, Flag: false}}, nil
	default:
		return nil, fmt.Errorf("frontend: unexpected token %s at %d:%d", tok.Kind, tok.Row, tok.Column)
	}
}

func (p *Parser) parseCallOrSubscriptArguments(closeKind token.Kind) ([]ast.Expression, error) {
	var args []ast.Expression
	for {
		if p.s.NextTokenLookahead().Kind == closeKind {
			return args, nil
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, expr)
		if p.s.NextTokenLookahead().Kind == token.Comma {
			p.s.NextToken()
			if p.s.NextTokenLookahead().Kind == closeKind {
				return nil, fmt.Errorf("frontend: expected argument after ','")
			}
		}
	}
}

var postfixOperators = map[token.Kind]bool{token.AddAdd: true, token.SubSub: true}

func (p *Parser) parsePostfixExpression() (ast.Expression, error) {
	expr, err := p.parseBasicExpression()
	if err != nil {
		return nil, err
	}
	for {
		mark := p.s.Mark()
		tok := p.s.NextToken()
		switch {
		case postfixOperators[tok.Kind]:
			expr = &ast.PostfixExpression{Expression: expr, Postfix: tok}
		case tok.Kind == token.LeftPar:
			args, err := p.parseCallOrSubscriptArguments(token.RightPar)
			if err != nil {
				return nil, err
			}
			rightPar, err := p.s.NextTokenAssert(token.RightPar)
			if err != nil {
				return nil, err
			}
			expr = &ast.FunctionCallExpression{Expression: expr, LeftPar: tok, Arguments: args, RightPar: rightPar}
		case tok.Kind == token.LeftBracket:
			args, err := p.parseCallOrSubscriptArguments(token.RightBracket)
			if err != nil {
				return nil, err
			}
			rightBracket, err := p.s.NextTokenAssert(token.RightBracket)
			if err != nil {
				return nil, err
			}
			expr = &ast.SubscriptExpression{Expression: expr, LeftBracket: tok, Arguments: args, RightBracket: rightBracket}
		case tok.Kind == token.Dot:
			name, err := p.s.NextTokenAssert(token.Identifier)
			if err != nil {
				return nil, err
			}
			expr = &ast.MemberAccessExpression{Expression: expr, Dot: tok, Name: &ast.IdentifierLiteral{Token: name, Name: name.Text}}
		default:
			p.s.Apply(mark)
			return expr, nil
		}
	}
}

var prefixOperators = map[token.Kind]bool{token.Add: true, token.Sub: true, token.AddAdd: true, token.SubSub: true}

func (p *Parser) parsePrefixExpression() (ast.Expression, error) {
	var operators []token.Instance
	for {
		mark := p.s.Mark()
		tok := p.s.NextToken()
		if !prefixOperators[tok.Kind] {
			p.s.Apply(mark)
			break
		}
		operators = append(operators, tok)
	}
	expr, err := p.parsePostfixExpression()
	if err != nil {
		return nil, err
	}
	for i := len(operators) - 1; i >= 0; i-- {
		expr = &ast.PrefixExpression{Prefix: operators[i], Expression: expr}
	}
	return expr, nil
}

// associativity mirrors the reference's Associativity enum.
type associativity int

const (
	leftAssoc associativity = iota
	rightAssoc
)

// binaryLevel implements one rung of the precedence ladder: parse one
// `next`-level operand, then so long as the lookahead token is one of ops,
// consume it and fold in another operand. allowNewlineBeforeOp matches the
// reference's template bool: most levels stop at a newline (so a bare
// expression statement can't accidentally swallow the next line), but
// `and`/`or` allow one, since spec.md's grammar lets a boolean expression
// continue onto a new line at those two precedence levels specifically.
func (p *Parser) binaryLevel(next func() (ast.Expression, error), allowNewlineBeforeOp bool, assoc associativity, ops ...token.Kind) (ast.Expression, error) {
	set := make(map[token.Kind]bool, len(ops))
	for _, k := range ops {
		set[k] = true
	}
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for {
		if !allowNewlineBeforeOp && p.s.IsEOL() {
			return expr, nil
		}
		mark := p.s.Mark()
		tok := p.s.NextToken()
		if !set[tok.Kind] {
			p.s.Apply(mark)
			return expr, nil
		}
		var right ast.Expression
		if assoc == leftAssoc {
			right, err = next()
		} else {
			right, err = p.binaryLevel(next, allowNewlineBeforeOp, assoc, ops...)
		}
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryExpression{Left: expr, Op: tok, Right: right}
		if assoc == rightAssoc {
			return expr, nil
		}
	}
}

func (p *Parser) parseMultiplicativeExpression() (ast.Expression, error) {
	return p.binaryLevel(p.parsePrefixExpression, false, leftAssoc, token.Mul, token.Div, token.Remainder)
}

func (p *Parser) parseAdditiveExpression() (ast.Expression, error) {
	return p.binaryLevel(p.parseMultiplicativeExpression, false, leftAssoc, token.Add, token.Sub)
}

func (p *Parser) parseComparisonExpression() (ast.Expression, error) {
	return p.binaryLevel(p.parseAdditiveExpression, false, leftAssoc, token.LessEquals, token.GreaterEquals, token.Less, token.Greater)
}

func (p *Parser) parseEqualityExpression() (ast.Expression, error) {
	return p.binaryLevel(p.parseComparisonExpression, false, leftAssoc, token.Equals, token.NotEquals)
}

func (p *Parser) parseConjunctionExpression() (ast.Expression, error) {
	return p.binaryLevel(p.parseEqualityExpression, true, leftAssoc, token.And)
}

func (p *Parser) parseDisjunctionExpression() (ast.Expression, error) {
	return p.binaryLevel(p.parseConjunctionExpression, true, leftAssoc, token.Or)
}

func (p *Parser) parseAssignmentExpression() (ast.Expression, error) {
	return p.binaryLevel(p.parseDisjunctionExpression, false, rightAssoc,
		token.Assign, token.AssignAdd, token.AssignSub, token.AssignMul, token.AssignDiv, token.AssignRemainder)
}

// parseExpression is the entry point into the precedence ladder. `op` and
// `class` lead nowhere: the reference's own ParseExpression checks for
// them but never calls the (never-written) ParseOperatorDefinitionExpression/
// ParseClassDefinitionExpression, falling through to
// ParseAssignmentExpression with the keyword token still unconsumed, which
// then fails in ParseBasicExpression's default case. This parses the same
// way, producing the same "unexpected token" error rather than silently
// accepting a construct neither this parser nor the compiler implements.
func (p *Parser) parseExpression() (ast.Expression, error) {
	if p.s.NextTokenLookahead().Kind == token.Fn {
		return p.parseFunctionDefinitionExpression()
	}
	return p.parseAssignmentExpression()
}
