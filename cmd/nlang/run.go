package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sharpyteam/nlang/heap"
)

// newRunCommand builds `nlang run <path>`: parse, analyse, compile and
// execute a module on a fresh Thread, printing the top-level result the
// same way the reference's own repl driver prints a module's value.
func newRunCommand() *cobra.Command {
	flags := &gcFlags{}
	cmd := &cobra.Command{
		Use:   "run <path>",
		Short: "parse, compile and execute an nlang source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.applyStackSize()
			module, err := parseModule(args[0])
			if err != nil {
				return err
			}
			gc, err := flags.strategy()
			if err != nil {
				return err
			}
			h := heap.New()
			result, err := runModule(h, gc, flags.gcInitialThresh, module)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatResult(result))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
