package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sharpyteam/nlang/ast"
	"github.com/sharpyteam/nlang/heap"
)

// newPrintASTCommand builds `nlang print-ast <path>`. With --bytecode it
// also runs the module through scope analysis and the compiler and prints
// the disassembly of the resulting top-level chunk, the same two views
// the reference's `--dump-ast`/`--dump-bytecode` debug flags offered
// separately; here they share one command since both start from the same
// parse.
func newPrintASTCommand() *cobra.Command {
	var bytecode bool
	cmd := &cobra.Command{
		Use:   "print-ast <path>",
		Short: "print the parsed AST of an nlang source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := parseModule(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ast.Stringify(module))
			if !bytecode {
				return nil
			}
			h := heap.New()
			closure, err := compileModule(h, module)
			if err != nil {
				return err
			}
			c, ok := closure.Object().(*heap.Closure)
			if !ok {
				return fmt.Errorf("compiled module did not produce a closure")
			}
			fn, ok := c.Function.Object().(*heap.BytecodeFunction)
			if !ok {
				return fmt.Errorf("closure's function is not a bytecode function")
			}
			fmt.Fprintln(out, fn.Chunk.Disassemble())
			return nil
		},
	}
	cmd.Flags().BoolVar(&bytecode, "bytecode", false, "also compile and print the bytecode disassembly")
	return cmd
}
