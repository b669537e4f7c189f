package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/sharpyteam/nlang/ast"
	"github.com/sharpyteam/nlang/compiler"
	"github.com/sharpyteam/nlang/frontend"
	"github.com/sharpyteam/nlang/heap"
	"github.com/sharpyteam/nlang/scope"
	"github.com/sharpyteam/nlang/value"
	"github.com/sharpyteam/nlang/vm"
)

// gcFlags holds the three execution-tuning flags spec.md's CLI surface
// names: --gc selects the collector, --gc-initial-threshold seeds the
// live-object count that triggers its first cycle, --stack-size sets Go's
// own per-goroutine stack growth ceiling.
//
// --stack-size is a holdover from the reference, whose Thread placement-news
// frames into a fixed-size (8MiB by default) arena and so needs an explicit
// bound to turn a runaway recursion into a clean error instead of a
// segfault. This port's Frame (vm/frame.go) is an ordinary heap-allocated
// struct linked through Prev, not a stack arena slice, so nlang call depth
// never grows this goroutine's own Go stack; the flag is wired to
// runtime/debug.SetMaxStack anyway rather than silently ignored. It bounds
// Go stack growth (such as the GC's recursive mark walk), not nlang call
// depth.
type gcFlags struct {
	gcName          string
	gcInitialThresh int
	stackSizeBytes  int
}

func (f *gcFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.gcName, "gc", "mark-sweep-compact", `collector strategy: "mark-sweep-compact" or "two-pass"`)
	cmd.Flags().IntVar(&f.gcInitialThresh, "gc-initial-threshold", 1024, "live-object count that triggers the first collection")
	cmd.Flags().IntVar(&f.stackSizeBytes, "stack-size", 0, "maximum per-goroutine stack size in bytes (0 = Go default)")
}

func (f *gcFlags) strategy() (vm.GCStrategy, error) {
	switch f.gcName {
	case "mark-sweep-compact":
		return vm.BasicGC{}, nil
	case "two-pass":
		return &vm.TwoPassGC{}, nil
	default:
		return nil, fmt.Errorf("unknown --gc strategy %q (want mark-sweep-compact or two-pass)", f.gcName)
	}
}

func (f *gcFlags) applyStackSize() {
	if f.stackSizeBytes > 0 {
		debug.SetMaxStack(f.stackSizeBytes)
	}
}

// parseModule runs the frontend over path's contents.
func parseModule(path string) (*ast.Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	module, err := frontend.NewParser(string(src)).ParseModule()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return module, nil
}

// compileModule runs analysis and compilation against h, returning the
// callable module closure (the compiled module function with no captured
// context).
func compileModule(h *heap.Heap, module *ast.Module) (value.Handle, error) {
	analysis, err := scope.Analyse(module)
	if err != nil {
		return value.Handle{}, fmt.Errorf("analysing: %w", err)
	}
	fn, err := compiler.Compile(h, analysis, module)
	if err != nil {
		return value.Handle{}, fmt.Errorf("compiling: %w", err)
	}
	closure, err := heap.NewClosure(h, value.NewNull(), fn)
	if err != nil {
		return value.Handle{}, fmt.Errorf("compiling: %w", err)
	}
	return closure, nil
}

// runModule compiles and executes module on a fresh Thread against h,
// returning the accumulator the module body leaves when it finishes: the
// value of an executed top-level `return`, otherwise the last value the
// body's code put in the accumulator (Null if it put none there).
func runModule(h *heap.Heap, gc vm.GCStrategy, initialThreshold int, module *ast.Module) (value.Handle, error) {
	closure, err := compileModule(h, module)
	if err != nil {
		return value.Handle{}, err
	}
	thread := vm.NewThread(h, gc, initialThreshold, closure, nil)
	result, err := thread.Join()
	if err != nil {
		return value.Handle{}, fmt.Errorf("running: %w", err)
	}
	return result, nil
}

// formatResult renders a Handle for CLI output. It is deliberately a
// switch over the handful of Kinds and heap object types a module can
// return, not a general Value formatter -- that already exists inside the
// runtime as Handle.Truthy/TypeEqual, neither of which is about printing.
func formatResult(h value.Handle) string {
	switch {
	case h.IsNull():
		return "null"
	case h.IsBool():
		return fmt.Sprintf("%t", h.GetBool())
	case h.IsNumber():
		return fmt.Sprintf("%g", h.GetNumber())
	case h.IsInt32():
		return fmt.Sprintf("%d", h.GetInt32())
	case h.IsPointer():
		if s, ok := h.Object().(*heap.String); ok {
			return s.RawString()
		}
		return fmt.Sprintf("%T", h.Object())
	default:
		return "<unknown>"
	}
}
