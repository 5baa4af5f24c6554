package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/vc/internal/ffi"
	"github.com/cwbudde/vc/internal/parser"
	"github.com/cwbudde/vc/internal/vmerrors"
	"github.com/spf13/cobra"
)

var parseDumpDecls bool

// parseCmd parses a V source file and prints the resulting AST, without
// running the evaluator or bytecode backend. Grounded on
// cmd/dwscript/cmd/parse.go's shape (read-from-file-or-stdin, print
// diagnostics then the tree), adapted to this module's parser.New(src,
// sink, stdlib, libraries) signature and its AST's own String() methods
// (ast.Program/Function/Block/... already render themselves; there is no
// separate dumpASTNode walker to port).
var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a V source file and print its AST",
	Long: `Parse V source code and display its Abstract Syntax Tree.

If no file is provided, reads from stdin.
Use --decls to print only the top-level declarations (globals and function
signatures) instead of the full program body.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().BoolVar(&parseDumpDecls, "decls", false, "print only globals and function signatures")
}

func runParse(_ *cobra.Command, args []string) error {
	var (
		src string
		err error
	)
	if len(args) == 1 {
		data, readErr := os.ReadFile(args[0])
		if readErr != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], readErr)
		}
		src = string(data)
	} else {
		data, readErr := io.ReadAll(os.Stdin)
		if readErr != nil {
			return fmt.Errorf("failed to read stdin: %w", readErr)
		}
		src = string(data)
	}

	sink := vmerrors.NewSink()
	p, err := parser.New(src, sink, ffi.NewStandardLibrary(), []string{ffi.DefaultLibraryName})
	if err != nil {
		return fmt.Errorf("failed to initialize parser: %w", err)
	}
	prog := p.ParseProgram()
	if p.Fatal() != nil {
		return p.Fatal()
	}

	if sink.HasErrors() {
		fmt.Fprint(os.Stderr, sink.String())
		return fmt.Errorf("parsing failed with %d error(s)", sink.ErrorCount())
	}

	if parseDumpDecls {
		for _, g := range prog.Globals {
			fmt.Println(g.String())
		}
		for _, fn := range prog.Functions {
			fmt.Printf("function %s(...): %s\n", fn.Name, fn.ReturnType.String())
		}
		return nil
	}

	fmt.Println(prog.String())
	return nil
}
