// Package compiler lowers an analysed AST into a callable bytecode
// Function. It is a near-verbatim port of the reference Compiler visitor,
// translated from double dispatch (ast::IASTVisitor) to a type switch, the
// same translation package ast and package scope's analysis walk already
// use. It trusts that scope.Analyse has already run successfully against
// the same module: every node the semantic walk rejects with an
// UnsupportedConstructError is assumed absent here, so this package does
// not re-check type hints, default-value placement, or any of the other
// constructs scope/analyse.go already enforces.
package compiler

import (
	"fmt"

	"github.com/sharpyteam/nlang/ast"
	"github.com/sharpyteam/nlang/bytecode"
	"github.com/sharpyteam/nlang/heap"
	"github.com/sharpyteam/nlang/scope"
	"github.com/sharpyteam/nlang/token"
	"github.com/sharpyteam/nlang/value"
)

// Compile lowers module to a callable BytecodeFunction. The module itself
// compiles as an argument-less function whose body is its top-level
// statements, the same shape Call already knows how to invoke.
func Compile(h *heap.Heap, analysis *scope.Analysis, module *ast.Module) (value.Handle, error) {
	c := &compiler{heap: h, analysis: analysis}
	return c.compileModule(module)
}

type compiler struct {
	heap     *heap.Heap
	analysis *scope.Analysis
	stack    []*scope.Scope
	loops    scope.LoopStack
}

func (c *compiler) current() *scope.Scope { return c.stack[len(c.stack)-1] }

// pushContext enters the Scope Analyse already built for node, and emits
// the runtime PushContext instruction sized for that scope's own
// Context-storage slot count. Every scope pushes one, weak or not: the
// reference VM's PushContext case creates a runtime Context regardless, a
// fact package scope's GetLocation depth counting already depends on.
func (c *compiler) pushContext(node ast.Node) (*scope.Scope, error) {
	s := c.analysis.ScopeFor(node)
	if s == nil {
		return nil, fmt.Errorf("compiler: no scope recorded for %T", node)
	}
	c.stack = append(c.stack, s)
	s.Generator().EmitImmediateInt32(bytecode.PushContext, s.ContextCount())
	return s, nil
}

func (c *compiler) popContext() {
	c.current().Generator().Emit(bytecode.PopContext)
	c.stack = c.stack[:len(c.stack)-1]
}

func (c *compiler) compileModule(module *ast.Module) (value.Handle, error) {
	s, err := c.pushContext(module)
	if err != nil {
		return value.Handle{}, err
	}
	for _, stmt := range module.Statements {
		if err := c.compileStatement(stmt); err != nil {
			return value.Handle{}, err
		}
	}
	gen := s.Generator()
	gen.Emit(bytecode.Return)
	gen.SetArgumentsCount(0)
	gen.SetRegistersCount(s.RegisterShape().RegistersCount())
	c.popContext()

	return heap.NewBytecodeFunction(c.heap, gen.Flush())
}

func (c *compiler) compileStatement(s ast.Statement) error {
	switch stmt := s.(type) {
	case *ast.FunctionDefinitionStatement:
		return c.compileFunctionDefinitionStatement(stmt)
	case *ast.VariableDefinitionStatement:
		return c.compileVariableDefinitionStatement(stmt)
	case *ast.ExpressionStatement:
		return c.compileExpression(stmt.Expression)
	case *ast.BlockStatement:
		return c.compileBlock(stmt)
	case *ast.IfElseStatement:
		return c.compileIfElse(stmt)
	case *ast.WhileStatement:
		return c.compileWhile(stmt)
	case *ast.ReturnStatement:
		return c.compileReturn(stmt)
	case *ast.BreakStatement:
		return c.compileBreak(stmt)
	case *ast.ContinueStatement:
		return c.compileContinue(stmt)
	default:
		panic(fmt.Sprintf("compiler: unhandled statement type %T", s))
	}
}

func (c *compiler) compileArgument(arg *ast.ArgumentDefinitionStatementPart) error {
	s := c.current()
	loc, err := s.GetLocation(arg.Name.Name)
	if err != nil {
		return err
	}
	gen := s.Generator()
	switch loc.StorageType {
	case scope.Context:
		gen.EmitRegister(bytecode.LoadRegister, bytecode.Register(-int32(arg.Index)-1))
		gen.EmitContext(bytecode.DeclareContext, loc.ContextDescriptor)
		gen.EmitContext(bytecode.StoreContext, loc.ContextDescriptor)
	case scope.Register:
		s.RegisterShape().Declare(arg.Name.Name)
	}
	return nil
}

func (c *compiler) compileFunctionDefinitionStatement(stmt *ast.FunctionDefinitionStatement) error {
	enclosing := c.current()

	s, err := c.pushContext(stmt)
	if err != nil {
		return err
	}
	for _, arg := range stmt.Arguments {
		if err := c.compileArgument(arg); err != nil {
			return err
		}
	}
	if err := c.compileStatement(stmt.Body); err != nil {
		return err
	}

	gen := s.Generator()
	gen.Emit(bytecode.LoadNull)
	gen.Emit(bytecode.Return)
	gen.SetArgumentsCount(s.RegisterShape().ArgumentsCount())
	gen.SetRegistersCount(s.RegisterShape().RegistersCount())
	c.popContext()

	fn, err := heap.NewBytecodeFunction(c.heap, gen.Flush())
	if err != nil {
		return err
	}

	enclosingGen := enclosing.Generator()
	index := enclosingGen.StoreConstant(fn)
	enclosingGen.EmitConstant(index)
	enclosingGen.Emit(bytecode.CreateClosure)

	loc, err := enclosing.GetLocation(stmt.Name.Name)
	if err != nil {
		return err
	}
	switch loc.StorageType {
	case scope.Register:
		enclosing.RegisterShape().Declare(stmt.Name.Name)
		enclosingGen.EmitRegister(bytecode.StoreRegister, loc.Register)
	case scope.Context:
		enclosingGen.EmitContext(bytecode.DeclareContext, loc.ContextDescriptor)
		enclosingGen.EmitContext(bytecode.StoreContext, loc.ContextDescriptor)
	}
	return nil
}

func (c *compiler) compileVariableDefinitionStatement(stmt *ast.VariableDefinitionStatement) error {
	if stmt.DefaultValue != nil {
		if err := c.compileExpression(stmt.DefaultValue.Value); err != nil {
			return err
		}
	}

	s := c.current()
	loc, err := s.GetLocation(stmt.Name.Name)
	if err != nil {
		return err
	}
	gen := s.Generator()
	switch loc.StorageType {
	case scope.Register:
		s.RegisterShape().Declare(stmt.Name.Name)
		if stmt.DefaultValue != nil {
			gen.EmitRegister(bytecode.StoreRegister, loc.Register)
		}
	case scope.Context:
		gen.EmitContext(bytecode.DeclareContext, loc.ContextDescriptor)
		if stmt.DefaultValue != nil {
			gen.EmitContext(bytecode.StoreContext, loc.ContextDescriptor)
		}
	}
	return nil
}

func (c *compiler) compileBlock(stmt *ast.BlockStatement) error {
	if _, err := c.pushContext(stmt); err != nil {
		return err
	}
	for _, s := range stmt.Statements {
		if err := c.compileStatement(s); err != nil {
			return err
		}
	}
	c.popContext()
	return nil
}

func (c *compiler) compileIfElse(stmt *ast.IfElseStatement) error {
	gen := c.current().Generator()
	if err := c.compileExpression(stmt.Condition); err != nil {
		return err
	}
	falseLabel := gen.EmitJump(bytecode.JumpIfFalse, 0)

	if err := c.compileStatement(stmt.Body); err != nil {
		return err
	}

	if stmt.Else != nil {
		skipLabel := gen.EmitJump(bytecode.Jump, 0)
		gen.UpdateJumpToHere(falseLabel)
		if err := c.compileStatement(stmt.Else.Body); err != nil {
			return err
		}
		gen.UpdateJumpToHere(skipLabel)
	} else {
		gen.UpdateJumpToHere(falseLabel)
	}
	return nil
}

func (c *compiler) compileWhile(stmt *ast.WhileStatement) error {
	gen := c.current().Generator()
	top := gen.Label()

	loopCtx := scope.NewLoopContext(top)
	c.loops.Push(loopCtx)
	defer c.loops.Pop()

	if err := c.compileExpression(stmt.Condition); err != nil {
		return err
	}
	falseLabel := gen.EmitJump(bytecode.JumpIfFalse, 0)

	if err := c.compileStatement(stmt.Body); err != nil {
		return err
	}

	gen.EmitJump(bytecode.Jump, top)
	gen.UpdateJumpToHere(falseLabel)
	for _, jump := range loopCtx.BreakJumps() {
		gen.UpdateJumpToHere(jump)
	}
	return nil
}

func (c *compiler) compileReturn(stmt *ast.ReturnStatement) error {
	gen := c.current().Generator()
	if stmt.Expression != nil {
		if err := c.compileExpression(stmt.Expression); err != nil {
			return err
		}
	} else {
		gen.Emit(bytecode.LoadNull)
	}
	gen.Emit(bytecode.Return)
	return nil
}

func (c *compiler) compileBreak(stmt *ast.BreakStatement) error {
	if stmt.Expression != nil {
		return &scope.UnsupportedConstructError{Construct: "break with a value"}
	}
	loopCtx, ok := c.loops.Current()
	if !ok {
		return scope.ErrBreakOutsideLoop
	}
	jump := c.current().Generator().EmitJump(bytecode.Jump, 0)
	loopCtx.AddBreakJump(jump)
	return nil
}

func (c *compiler) compileContinue(*ast.ContinueStatement) error {
	loopCtx, ok := c.loops.Current()
	if !ok {
		return scope.ErrContinueOutsideLoop
	}
	c.current().Generator().EmitJump(bytecode.Jump, loopCtx.ConditionLabel)
	return nil
}

func (c *compiler) compileExpression(e ast.Expression) error {
	switch expr := e.(type) {
	case *ast.LiteralExpression:
		return c.compileLiteral(expr.Literal)
	case *ast.ParenthesizedExpression:
		return c.compileExpression(expr.Expression)
	case *ast.BinaryExpression:
		return c.compileBinary(expr)
	case *ast.FunctionCallExpression:
		return c.compileCall(expr)
	case *ast.PrefixExpression, *ast.PostfixExpression, *ast.OperatorDefinitionExpression,
		*ast.FunctionDefinitionExpression, *ast.SubscriptExpression, *ast.MemberAccessExpression,
		*ast.ClassDefinitionExpression:
		return &scope.UnsupportedConstructError{Construct: fmt.Sprintf("%T", e)}
	default:
		panic(fmt.Sprintf("compiler: unhandled expression type %T", e))
	}
}

func (c *compiler) compileLiteral(l ast.Literal) error {
	s := c.current()
	gen := s.Generator()
	switch lit := l.(type) {
	case *ast.NullLiteral:
		gen.Emit(bytecode.LoadNull)
		return nil
	case *ast.BoolLiteral:
		if lit.Flag {
			gen.Emit(bytecode.LoadTrue)
		} else {
			gen.Emit(bytecode.LoadFalse)
		}
		return nil
	case *ast.NumberLiteral:
		gen.EmitNumber(lit.Number)
		return nil
	case *ast.StringLiteral:
		str, err := heap.NewString(c.heap, lit.Value)
		if err != nil {
			return err
		}
		index := gen.StoreConstant(str)
		gen.EmitConstant(index)
		return nil
	case *ast.IdentifierLiteral:
		return c.compileIdentifier(lit)
	default:
		panic(fmt.Sprintf("compiler: unhandled literal type %T", l))
	}
}

func (c *compiler) compileIdentifier(id *ast.IdentifierLiteral) error {
	s := c.current()
	loc, err := s.GetLocation(id.Name)
	if err != nil {
		return err
	}
	gen := s.Generator()
	switch loc.StorageType {
	case scope.Register:
		if !s.RegisterShape().IsDeclared(id.Name) {
			return fmt.Errorf("compiler: %q read before its first assignment", id.Name)
		}
		gen.EmitRegister(bytecode.LoadRegister, loc.Register)
	case scope.Context:
		gen.EmitContext(bytecode.LoadContext, loc.ContextDescriptor)
	}
	return nil
}

// compileBinary evaluates left, spills it to a temporary register, then
// evaluates right and spills that too, before reloading left and emitting
// the operator opcode over the two temporaries. The reload-then-release
// ordering (left is released before the opcode is emitted, right only
// after) mirrors the reference exactly; left's temporary stays locked while
// `right` is evaluated, so right's own temporaries never reuse it.
func (c *compiler) compileBinary(expr *ast.BinaryExpression) error {
	s := c.current()
	gen := s.Generator()
	shape := s.RegisterShape()

	if err := c.compileExpression(expr.Left); err != nil {
		return err
	}
	left := shape.LockRegisters(1)
	gen.EmitRegister(bytecode.StoreRegister, left.First)

	if err := c.compileExpression(expr.Right); err != nil {
		return err
	}
	right := shape.LockRegisters(1)
	gen.EmitRegister(bytecode.StoreRegister, right.First)

	gen.EmitRegister(bytecode.LoadRegister, left.First)
	shape.ReleaseRegisters(left)

	op, err := binaryOpcode(expr.Op.Kind)
	if err != nil {
		return err
	}
	gen.EmitRegister(op, right.First)

	shape.ReleaseRegisters(right)
	return nil
}

func binaryOpcode(k token.Kind) (bytecode.Opcode, error) {
	switch k {
	case token.Add:
		return bytecode.Add, nil
	case token.Sub:
		return bytecode.Sub, nil
	case token.Mul:
		return bytecode.Mul, nil
	case token.Div:
		return bytecode.Div, nil
	case token.Equals:
		return bytecode.CheckEqual, nil
	case token.NotEquals:
		return bytecode.CheckNotEqual, nil
	case token.Greater:
		return bytecode.CheckGreater, nil
	case token.GreaterEquals:
		return bytecode.CheckGreaterOrEqual, nil
	case token.Less:
		return bytecode.CheckLess, nil
	case token.LessEquals:
		return bytecode.CheckLessOrEqual, nil
	default:
		return 0, fmt.Errorf("compiler: unsupported binary operator %s", k.Text())
	}
}

func (c *compiler) compileCall(expr *ast.FunctionCallExpression) error {
	s := c.current()
	gen := s.Generator()
	shape := s.RegisterShape()

	if err := c.compileExpression(expr.Expression); err != nil {
		return err
	}
	f := shape.LockRegisters(1)
	gen.EmitRegister(bytecode.StoreRegister, f.First)

	args := shape.LockRegisters(int32(len(expr.Arguments)))
	for i, arg := range expr.Arguments {
		if err := c.compileExpression(arg); err != nil {
			return err
		}
		gen.EmitRegister(bytecode.StoreRegister, bytecode.Register(int32(args.First)+int32(i)))
	}

	gen.EmitRegister(bytecode.LoadRegister, f.First)
	shape.ReleaseRegisters(f)

	gen.EmitCall(args)
	shape.ReleaseRegisters(args)
	return nil
}
