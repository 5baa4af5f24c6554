package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/vc/internal/lexer"
	"github.com/spf13/cobra"
)

var (
	lexShowPos  bool
	lexEvalExpr string
)

// lexCmd dumps the raw token stream; not part of spec.md's external
// interface (§6 only names `compile`), but a natural adjunct a compiler
// CLI in this pack's style always grows (teacher precedent:
// cmd/dwscript/cmd/lex.go).
var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a V source file and print the resulting tokens",
	Args:  cobra.MaximumNArgs(1),
	RunE:  lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEvalExpr, "eval", "e", "", "tokenize inline code instead of reading from file")
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show token positions (line:column)")
}

func lexScript(_ *cobra.Command, args []string) error {
	var input string
	switch {
	case lexEvalExpr != "":
		input = lexEvalExpr
	case len(args) == 1:
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		input = string(content)
	default:
		return fmt.Errorf("either provide a file path or use -e for inline code")
	}

	l, err := lexer.New(input)
	if err != nil {
		return fmt.Errorf("lexer initialization failed: %w", err)
	}

	for {
		tok, err := l.Scan()
		if err != nil {
			return fmt.Errorf("lexical error: %w", err)
		}
		printToken(tok)
		if tok.IsEOF() {
			break
		}
	}
	return nil
}

func printToken(tok lexer.Token) {
	if lexShowPos {
		fmt.Printf("%-12s %s @%s\n", tok.Type, tok.String(), tok.Pos)
	} else {
		fmt.Println(tok.String())
	}
}
