package main

import (
	"errors"
	"fmt"
	"os"

	"cpt/internal/cli"
	"cpt/internal/cli/commands"
	"cpt/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:           "cpt",
		Short:         "Competitive programming tester",
		Long:          `Compile a contest solution and check it against stored sample tests. Each case runs in its own process with a time limit, output is compared ignoring whitespace, and verdicts are reported as they settle.`,
		Version:       version,
		SilenceErrors: true,
	}

	// Defaults, then .env, cpt.yaml and CPT_* variables
	cfg, err := config.Load(config.DefaultProjectPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg)

	// Register all commands
	cmds.Register(rootCmd, &flags)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, commands.ErrCasesFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
