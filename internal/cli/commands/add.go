package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cpt/internal/domain"
)

// AddCommand handles the add command
type AddCommand struct {
	env   *env
	stdin io.Reader
}

// NewAddCommand creates a new AddCommand
func NewAddCommand(e *env) *AddCommand {
	return &AddCommand{env: e, stdin: os.Stdin}
}

// Execute runs the command
func (ac *AddCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg := ac.env.config
	source := cfg.ResolvePath(args[0])

	input, err := ac.read(ac.env.flags.InputFile)
	if err != nil {
		return err
	}
	output, err := ac.read(ac.env.flags.OutputFile)
	if err != nil {
		return err
	}

	store, release, err := ac.env.openStorage()
	if err != nil {
		return err
	}
	defer release()

	n, err := store.Append(source, domain.TestCase{Input: input, ExpectedOutput: output})
	if err != nil {
		return fmt.Errorf("failed to add test case: %w", err)
	}
	color.Green("✓ Added case #%d to %s", n, source)
	return nil
}

func (ac *AddCommand) read(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(ac.stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(ac.env.config.ResolvePath(path))
	if err != nil {
		return "", fmt.Errorf("error reading file %s: %w", path, err)
	}
	return string(data), nil
}
