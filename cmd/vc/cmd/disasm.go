package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/vc/internal/bytecode"
	"github.com/spf13/cobra"
)

// disasmCmd pretty-prints a compiled container's instructions, grounded on
// internal/bytecode/disasm.go; useful for inspecting what `vc compile`
// produced without a separate VM to run it against.
var disasmCmd = &cobra.Command{
	Use:   "disasm <artifact>",
	Short: "Disassemble a compiled bytecode container",
	Args:  cobra.ExactArgs(1),
	RunE:  disasmArtifact,
}

func init() {
	rootCmd.AddCommand(disasmCmd)
}

func disasmArtifact(_ *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", args[0], err)
	}

	container, err := bytecode.NewSerializer().Deserialize(data)
	if err != nil {
		return fmt.Errorf("failed to deserialize %s: %w", args[0], err)
	}

	return bytecode.NewDisassembler(os.Stdout).Disassemble(container)
}
