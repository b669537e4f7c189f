package scope

import (
	"fmt"

	"github.com/sharpyteam/nlang/ast"
)

// UnsupportedConstructError reports an AST node the compiler has no
// lowering for, the Go equivalent of the reference compiler's bare
// `throw; // not supported` arms.
type UnsupportedConstructError struct {
	Construct string
}

func (e *UnsupportedConstructError) Error() string {
	return fmt.Sprintf("unsupported construct: %s", e.Construct)
}

func unsupported(construct string) error {
	return &UnsupportedConstructError{Construct: construct}
}

// Analysis is the result of Analyse: a Scope for every scope-introducing
// node (Module, FunctionDefinitionStatement, BlockStatement) in the tree,
// fully declared and resolved, ready for the compiler to consume without
// redoing any of this walk.
type Analysis struct {
	scopes map[ast.Node]*Scope
}

// ScopeFor returns the Scope Analyse built for node. node must be one of
// the scope-introducing node types Analyse pushed a context for;
// anything else returns nil.
func (a *Analysis) ScopeFor(node ast.Node) *Scope {
	return a.scopes[node]
}

type pass int

const (
	declarePass pass = iota
	resolvePass
)

// Analyse runs the two-pass declare/resolve walk the reference's
// SemanticAnalyser performs: first pass declares every local, argument,
// and nested function scope; second pass resolves every identifier
// reference, promoting a name from register to context storage wherever
// Scope.Touch finds it referenced from inside a nested function (the
// mechanism that makes closures work without requiring the parser or
// this walk to know in advance which names will be captured).
func Analyse(module *ast.Module) (*Analysis, error) {
	a := &analyser{scopes: make(map[ast.Node]*Scope)}

	a.pass = declarePass
	if err := a.visitModule(module); err != nil {
		return nil, err
	}
	a.pass = resolvePass
	if err := a.visitModule(module); err != nil {
		return nil, err
	}
	return &Analysis{scopes: a.scopes}, nil
}

type analyser struct {
	pass   pass
	scopes map[ast.Node]*Scope
	stack  []*Scope
}

func (a *analyser) current() *Scope { return a.stack[len(a.stack)-1] }

func (a *analyser) pushContext(node ast.Node, weak bool) {
	if a.pass == declarePass {
		var parent *Scope
		if len(a.stack) > 0 {
			parent = a.current()
		}
		s := New(parent, weak)
		a.scopes[node] = s
		a.stack = append(a.stack, s)
		return
	}
	s, ok := a.scopes[node]
	if !ok {
		panic("scope: Analyse: resolve pass reached a node the declare pass never scoped")
	}
	a.stack = append(a.stack, s)
}

func (a *analyser) popContext() {
	a.stack = a.stack[:len(a.stack)-1]
}

func (a *analyser) visitModule(m *ast.Module) error {
	a.pushContext(m, false)
	defer a.popContext()
	for _, stmt := range m.Statements {
		if err := a.visitStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (a *analyser) visitStatement(s ast.Statement) error {
	switch stmt := s.(type) {
	case *ast.FunctionDefinitionStatement:
		return a.visitFunctionDefinitionStatement(stmt)
	case *ast.VariableDefinitionStatement:
		return a.visitVariableDefinitionStatement(stmt)
	case *ast.ExpressionStatement:
		return a.visitExpression(stmt.Expression)
	case *ast.BlockStatement:
		return a.visitBlock(stmt)
	case *ast.IfElseStatement:
		return a.visitIfElse(stmt)
	case *ast.WhileStatement:
		return a.visitWhile(stmt)
	case *ast.ReturnStatement:
		if stmt.Expression != nil {
			return a.visitExpression(stmt.Expression)
		}
		return nil
	case *ast.BreakStatement:
		if stmt.Expression != nil {
			return unsupported("break with a value")
		}
		return nil
	case *ast.ContinueStatement:
		return nil
	default:
		return fmt.Errorf("scope: Analyse: unhandled statement type %T", s)
	}
}

func (a *analyser) visitFunctionDefinitionStatement(stmt *ast.FunctionDefinitionStatement) error {
	if a.pass == declarePass {
		if err := a.current().DeclareLocal(stmt.Name.Name); err != nil {
			return err
		}
	}

	a.pushContext(stmt, false)
	for _, arg := range stmt.Arguments {
		if err := a.visitArgument(arg); err != nil {
			a.popContext()
			return err
		}
	}
	if stmt.TypeHint != nil {
		a.popContext()
		return unsupported("function return type hint")
	}
	if err := a.visitStatement(stmt.Body); err != nil {
		a.popContext()
		return err
	}
	a.popContext()
	return nil
}

func (a *analyser) visitArgument(arg *ast.ArgumentDefinitionStatementPart) error {
	if a.pass == declarePass {
		if err := a.current().DeclareArgument(arg.Name.Name, int32(arg.Index)); err != nil {
			return err
		}
	}
	if arg.TypeHint != nil {
		return unsupported("parameter type hint")
	}
	if arg.DefaultValue != nil {
		return unsupported("parameter default value")
	}
	return nil
}

func (a *analyser) visitVariableDefinitionStatement(stmt *ast.VariableDefinitionStatement) error {
	if a.pass == declarePass {
		if err := a.current().DeclareLocal(stmt.Name.Name); err != nil {
			return err
		}
	}
	if stmt.TypeHint != nil {
		return unsupported("variable type hint")
	}
	if stmt.DefaultValue != nil {
		return a.visitExpression(stmt.DefaultValue.Value)
	}
	return nil
}

func (a *analyser) visitBlock(stmt *ast.BlockStatement) error {
	a.pushContext(stmt, true)
	defer a.popContext()
	for _, s := range stmt.Statements {
		if err := a.visitStatement(s); err != nil {
			return err
		}
	}
	return nil
}

func (a *analyser) visitIfElse(stmt *ast.IfElseStatement) error {
	if err := a.visitExpression(stmt.Condition); err != nil {
		return err
	}
	if err := a.visitStatement(stmt.Body); err != nil {
		return err
	}
	if stmt.Else != nil {
		return a.visitStatement(stmt.Else.Body)
	}
	return nil
}

func (a *analyser) visitWhile(stmt *ast.WhileStatement) error {
	if err := a.visitExpression(stmt.Condition); err != nil {
		return err
	}
	return a.visitStatement(stmt.Body)
}

func (a *analyser) visitExpression(e ast.Expression) error {
	switch expr := e.(type) {
	case *ast.LiteralExpression:
		return a.visitLiteral(expr.Literal)
	case *ast.ParenthesizedExpression:
		return a.visitExpression(expr.Expression)
	case *ast.PrefixExpression:
		return unsupported("prefix expression")
	case *ast.PostfixExpression:
		return unsupported("postfix expression")
	case *ast.BinaryExpression:
		if err := a.visitExpression(expr.Left); err != nil {
			return err
		}
		return a.visitExpression(expr.Right)
	case *ast.OperatorDefinitionExpression:
		return unsupported("operator overload definition")
	case *ast.FunctionDefinitionExpression:
		return unsupported("function literal expression")
	case *ast.FunctionCallExpression:
		if err := a.visitExpression(expr.Expression); err != nil {
			return err
		}
		for _, arg := range expr.Arguments {
			if err := a.visitExpression(arg); err != nil {
				return err
			}
		}
		return nil
	case *ast.SubscriptExpression:
		return unsupported("subscript expression")
	case *ast.MemberAccessExpression:
		return unsupported("member access expression")
	case *ast.ClassDefinitionExpression:
		return unsupported("class definition expression")
	default:
		return fmt.Errorf("scope: Analyse: unhandled expression type %T", e)
	}
}

func (a *analyser) visitLiteral(l ast.Literal) error {
	id, ok := l.(*ast.IdentifierLiteral)
	if !ok {
		return nil
	}
	if a.pass == resolvePass {
		return a.current().Touch(id.Name, false)
	}
	return nil
}
