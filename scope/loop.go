package scope

import (
	"errors"

	"github.com/sharpyteam/nlang/bytecode"
)

// ErrBreakOutsideLoop is returned when compiling a break statement that
// isn't nested inside any while loop.
var ErrBreakOutsideLoop = errors.New("scope: break outside a loop")

// ErrContinueOutsideLoop is returned when compiling a continue statement
// that isn't nested inside any while loop.
var ErrContinueOutsideLoop = errors.New("scope: continue outside a loop")

// LoopContext is the jump-patching state one compiling while loop needs:
// continue jumps backward to ConditionLabel (the label the original
// compiler calls first_while_instruction); break jumps forward past the
// loop, to a label that can't be known until the loop body has finished
// compiling, so every break site's jump is recorded here and patched once
// the loop's own JumpIfFalse exit is patched.
type LoopContext struct {
	ConditionLabel bytecode.Label
	breakJumps     []bytecode.Label
}

// NewLoopContext starts tracking a loop whose condition re-check begins
// at conditionLabel.
func NewLoopContext(conditionLabel bytecode.Label) *LoopContext {
	return &LoopContext{ConditionLabel: conditionLabel}
}

// AddBreakJump records a break statement's forward jump for later
// patching.
func (l *LoopContext) AddBreakJump(jump bytecode.Label) {
	l.breakJumps = append(l.breakJumps, jump)
}

// BreakJumps returns every recorded break jump, in emission order.
func (l *LoopContext) BreakJumps() []bytecode.Label {
	return l.breakJumps
}

// LoopStack is a stack of enclosing LoopContexts, innermost last. break
// and continue always resolve against the top of the stack: the nearest
// enclosing loop.
type LoopStack struct {
	loops []*LoopContext
}

// Push enters a new loop.
func (s *LoopStack) Push(l *LoopContext) {
	s.loops = append(s.loops, l)
}

// Pop exits the innermost loop.
func (s *LoopStack) Pop() {
	s.loops = s.loops[:len(s.loops)-1]
}

// Current returns the innermost LoopContext and true, or (nil, false) if
// called outside any loop — callers pick the break/continue-specific
// sentinel error to return in that case.
func (s *LoopStack) Current() (*LoopContext, bool) {
	if len(s.loops) == 0 {
		return nil, false
	}
	return s.loops[len(s.loops)-1], true
}
