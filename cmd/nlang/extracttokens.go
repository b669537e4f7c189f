package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sharpyteam/nlang/frontend"
)

// newExtractTokensCommand builds `nlang extract-tokens <src>`, a thin
// wrapper over frontend.Lex for inspecting how a literal source string
// scans without going through the parser. The reference shipped the
// equivalent as a `--tokenize-only` flag on its own driver; it becomes its
// own verb here since cobra gives every driver function a natural home as
// a subcommand instead of a flag.
func newExtractTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract-tokens <src>",
		Short: "lex a literal nlang source string and print its tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, tok := range frontend.Lex(args[0]) {
				if tok.Text != "" {
					fmt.Fprintf(out, "%-12s %d:%d %q\n", tok.Kind, tok.Row, tok.Column, tok.Text)
				} else {
					fmt.Fprintf(out, "%-12s %d:%d\n", tok.Kind, tok.Row, tok.Column)
				}
			}
			return nil
		},
	}
}
