package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cpt/internal/companion"
)

// ListenCommand handles the listen command
type ListenCommand struct {
	env *env
}

// NewListenCommand creates a new ListenCommand
func NewListenCommand(e *env) *ListenCommand {
	return &ListenCommand{env: e}
}

// Execute runs the command
func (lc *ListenCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg := lc.env.config
	dir := cfg.ProjectPath
	if d := lc.env.flags.Dir; d != "" {
		dir = cfg.ResolvePath(d)
	}

	store, release, err := lc.env.openStorage()
	if err != nil {
		return err
	}
	defer release()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	srv := companion.NewServer(store, companion.Options{
		Dir: dir,
		Ext: lc.env.flags.Ext,
		OnProblem: func(source string, p companion.Problem) {
			color.Green("✓ %s: %d test case(s) saved for %s", p.Name, len(p.Tests), source)
		},
	}, lc.env.logger)

	color.Cyan("Waiting for problems on %s (Ctrl+C to stop)", cfg.CompanionAddr)
	return srv.ListenAndServe(ctx, cfg.CompanionAddr)
}
