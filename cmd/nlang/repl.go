package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/sharpyteam/nlang/frontend"
	"github.com/sharpyteam/nlang/heap"
)

// newREPLCommand builds `nlang repl`: a chzyer/readline-backed loop where
// each line is parsed as its own module, compiled and executed on a fresh
// Thread. All lines share one Heap, mirroring the reference repl's single
// persistent interpreter state across successive top-level statements.
func newREPLCommand() *cobra.Command {
	flags := &gcFlags{}
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "start an interactive read-eval-print loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.applyStackSize()
			gc, err := flags.strategy()
			if err != nil {
				return err
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:      "nlang> ",
				HistoryFile: "",
			})
			if err != nil {
				return fmt.Errorf("starting readline: %w", err)
			}
			defer rl.Close()

			h := heap.New()
			out := cmd.OutOrStdout()
			for {
				line, err := rl.Readline()
				if err != nil {
					if errors.Is(err, readline.ErrInterrupt) {
						continue
					}
					if errors.Is(err, io.EOF) {
						return nil
					}
					return err
				}
				if line == "" {
					continue
				}
				module, err := frontend.NewParser(line).ParseModule()
				if err != nil {
					fmt.Fprintln(out, "parse error:", err)
					continue
				}
				result, err := runModule(h, gc, flags.gcInitialThresh, module)
				if err != nil {
					fmt.Fprintln(out, "error:", err)
					continue
				}
				fmt.Fprintln(out, formatResult(result))
			}
		},
	}
	flags.register(cmd)
	return cmd
}
