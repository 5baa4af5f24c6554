package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/vc/internal/bytecode"
	"github.com/cwbudde/vc/internal/ffi"
	"github.com/cwbudde/vc/internal/parser"
	"github.com/cwbudde/vc/internal/semantic"
	"github.com/cwbudde/vc/internal/vmerrors"
	"github.com/spf13/cobra"
)

var (
	outputFile    string
	compileVerbose bool
)

// compileCmd implements spec.md §6's CLI contract: `compiler <source-file>
// {<library-reference>}`. Argument validation and the "no source" / "help
// requested" / "source not found" cases all exit 0 by design — spec.md §6
// requires parity with the historical exit-0-on-failure behavior, not
// idiomatic Unix exit codes.
var compileCmd = &cobra.Command{
	Use:   "compile <source> [library-reference...]",
	Short: "Compile a V source file to a bytecode container",
	Long: `Compile a V program to bytecode and persist it as "<program-name>.exe"
(spec.md §6's output naming). Trailing arguments are library strong-names
appended to the default standard-library reference.

Examples:
  vc compile script.v
  vc compile script.v MyCompanyLib`,
	Args: cobra.ArbitraryArgs,
	RunE: compileScript,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: <program-name>.exe)")
	compileCmd.Flags().BoolVarP(&compileVerbose, "verbose", "v", false, "verbose output")
}

func compileScript(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	if isHelpArg(args[0]) {
		return cmd.Help()
	}

	sourceFile := args[0]
	libraries := append([]string{ffi.DefaultLibraryName}, args[1:]...)

	content, err := os.ReadFile(sourceFile)
	if err != nil {
		fmt.Printf("Source file '%s' not found\n", sourceFile)
		return nil
	}

	container, sink, err := compileSource(string(content), libraries)
	if err != nil {
		return err
	}
	if sink.HasErrors() {
		fmt.Fprint(os.Stderr, sink.String())
		fmt.Println("Compilation aborted")
		return nil
	}

	out := outputFile
	if out == "" {
		out = container.Name + ".exe"
	}

	data, err := bytecode.NewSerializer().Serialize(container)
	if err != nil {
		return fmt.Errorf("failed to serialize bytecode: %w", err)
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", out, err)
	}

	if compileVerbose {
		fmt.Fprintf(os.Stderr, "Functions: %d, globals: %d\n", len(container.Functions), len(container.Globals))
	}
	fmt.Printf("Compiled %s -> %s\n", filepath.Base(sourceFile), out)
	return nil
}

// compileSource runs the scanner/parser/evaluator/backend pipeline over
// src, with libraries as the reference list (the caller has already
// prepended the default standard-library reference).
func compileSource(src string, libraries []string) (*bytecode.Container, *vmerrors.Sink, error) {
	sink := vmerrors.NewSink()

	p, err := parser.New(src, sink, ffi.NewStandardLibrary(), libraries)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize parser: %w", err)
	}
	prog := p.ParseProgram()
	if p.Fatal() != nil {
		return nil, nil, p.Fatal()
	}
	if sink.HasErrors() {
		return nil, sink, nil
	}

	semantic.New(sink).Evaluate(prog)
	if sink.HasErrors() {
		return nil, sink, nil
	}

	container, err := bytecode.NewEmitter().Emit(prog)
	if err != nil {
		return nil, nil, fmt.Errorf("bytecode emission failed: %w", err)
	}
	return container, sink, nil
}

// isHelpArg reports whether arg is one of spec.md §6's help aliases
// ("help", "?", "-?", "/?"), matched case-insensitively and tolerating an
// optional leading "-" or "/" prefix (so "-help", "--help", "/help" all
// count too).
func isHelpArg(arg string) bool {
	trimmed := strings.TrimLeft(arg, "-/")
	switch strings.ToLower(trimmed) {
	case "help", "?":
		return true
	default:
		return false
	}
}
