package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cpt/internal/storage"
)

// MigrateCommand handles the migrate command
type MigrateCommand struct {
	env *env
}

// NewMigrateCommand creates a new MigrateCommand
func NewMigrateCommand(e *env) *MigrateCommand {
	return &MigrateCommand{env: e}
}

// Execute runs the command
func (mc *MigrateCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg := mc.env.config

	db, err := storage.NewMySQLStorage(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	color.Green("✓ Database %s is ready", cfg.MySQL.Database)
	return nil
}
