package commands

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cpt/internal/domain"
	"cpt/internal/storage"
)

// InitCommand handles the init command
type InitCommand struct {
	env *env
}

// NewInitCommand creates a new InitCommand
func NewInitCommand(e *env) *InitCommand {
	return &InitCommand{env: e}
}

// Execute runs the command
func (ic *InitCommand) Execute(cmd *cobra.Command, args []string) error {
	source := ic.env.config.ResolvePath(args[0])

	store, release, err := ic.env.openStorage()
	if err != nil {
		return err
	}
	defer release()

	if !ic.env.flags.Force {
		suite, err := store.Load(source)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		if suite.Count() > 0 {
			return fmt.Errorf("%s already has %d test case(s); use --force to replace them", source, suite.Count())
		}
	}

	if err := store.Save(source, &domain.TestSuite{}); err != nil {
		return fmt.Errorf("failed to save test cases: %w", err)
	}
	color.Green("✓ Created an empty test case set for %s", source)
	return nil
}
