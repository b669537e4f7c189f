// Command nlang is a driver around the runtime core: it wires
// package frontend's lexer/parser to package scope's analysis, package
// compiler's bytecode lowering, and package vm's execution engine, the
// same pipeline the reference's own `main` glues together
// (Scanner -> Parser -> SemanticAnalyser -> Compiler -> Thread).
//
// Command structure and flag handling follow cmd/viewcore's objref.go
// (per-command flags, `log.SetPrefix`/`log.SetFlags(0)` at startup,
// `log.Fatalf` for unrecoverable driver errors) translated from viewcore's
// single stdlib `flag` verb dispatch to cobra's command tree, since this
// driver has more than one verb (run / print-ast / extract-tokens / repl)
// where viewcore has one flat command namespace.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	log.SetPrefix("nlang: ")
	log.SetFlags(0)

	root := &cobra.Command{
		Use:   "nlang",
		Short: "nlang runtime driver: parse, compile and execute nlang source",
	}
	root.AddCommand(newRunCommand())
	root.AddCommand(newPrintASTCommand())
	root.AddCommand(newExtractTokensCommand())
	root.AddCommand(newREPLCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
