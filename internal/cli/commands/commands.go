package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cpt/internal/cli"
	"cpt/internal/config"
	"cpt/internal/discovery"
	"cpt/internal/logger"
	"cpt/internal/storage"
	"cpt/internal/ui"
)

// env holds what every command needs once flags are parsed
type env struct {
	config *config.Config
	flags  *cli.Flags
	logger *zap.Logger
}

// setup applies the parsed flags and builds the logger
func (e *env) setup(flags *cli.Flags) error {
	e.flags = flags
	e.config.ApplyFlags(flags.ToConfigFlags())
	log, err := logger.New(e.config.LogLevel, e.config.LogFormat)
	if err != nil {
		return err
	}
	e.logger = log
	return nil
}

// openStorage returns the configured store and a function releasing it
func (e *env) openStorage() (storage.Storage, func(), error) {
	st, err := storage.New(e.config)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if closer, ok := st.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				e.logger.Warn("failed to close storage", zap.Error(err))
			}
		}
	}
	return st, release, nil
}

// signalContext is cancelled on Ctrl-C or SIGTERM
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

// Commands holds all CLI commands
type Commands struct {
	env *env

	Run     *RunCommand
	List    *ListCommand
	Fetch   *FetchCommand
	Init    *InitCommand
	Add     *AddCommand
	Listen  *ListenCommand
	Migrate *MigrateCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	e := &env{config: cfg, flags: &cli.Flags{}, logger: zap.NewNop()}
	scanner := discovery.NewScanner(cfg.PathsToIgnore, cfg.IsSource)
	filter := discovery.NewFilter()
	formatter := ui.NewFormatter(cfg, os.Stdout)

	return &Commands{
		env:     e,
		Run:     NewRunCommand(e, formatter),
		List:    NewListCommand(e, scanner, filter, formatter),
		Fetch:   NewFetchCommand(e),
		Init:    NewInitCommand(e),
		Add:     NewAddCommand(e),
		Listen:  NewListenCommand(e),
		Migrate: NewMigrateCommand(e),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags) {
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Log diagnostics to stderr")
	rootCmd.PersistentFlags().StringVar(&flags.Store, "store", "", "Test case store: file or mysql (default from cpt.yaml, else file)")

	preRun := func(cmd *cobra.Command, args []string) error {
		// Errors past argument parsing are not usage errors.
		cmd.SilenceUsage = true
		return c.env.setup(flags)
	}

	// Run command
	runCmd := &cobra.Command{
		Use:     "run <source>",
		Short:   "Compile a solution and run it against its test cases",
		Long:    "Compile the source, run the binary once per stored test case with a time limit, and report each verdict as it settles. Missing test cases are downloaded from the problem URL in the source's first line.",
		Args:    cobra.ExactArgs(1),
		RunE:    c.Run.Execute,
		PreRunE: preRun,
	}
	runCmd.Flags().DurationVarP(&flags.Timeout, "timeout", "t", 0, "Time limit per case (default 10s)")
	runCmd.Flags().StringVarP(&flags.Binary, "binary", "b", "", "Run this executable instead of compiling; it is never deleted")
	runCmd.Flags().BoolVar(&flags.NoCompile, "no-compile", false, "Reuse the previously compiled binary")
	runCmd.Flags().BoolVarP(&flags.KeepBinary, "keep-binary", "k", false, "Do not delete the compiled binary after the run")
	runCmd.Flags().BoolVar(&flags.TUI, "tui", false, "Show results in an interactive viewer")
	runCmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Show a progress bar and the failed cases only")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list [dir]",
		Short:   "List sources and their stored test cases",
		Long:    "Scan a directory for C and C++ sources and show how many test cases each one has",
		Args:    cobra.MaximumNArgs(1),
		RunE:    c.List.Execute,
		PreRunE: preRun,
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter sources by name pattern (supports wildcards, e.g., '*A.cpp' or '*1520*')")
	listCmd.Flags().BoolVarP(&flags.TestCases, "test-cases", "c", false, "Show the stored test cases")
	rootCmd.AddCommand(listCmd)

	// Fetch command
	fetchCmd := &cobra.Command{
		Use:     "fetch <source> [url]",
		Short:   "Download sample tests from a Codeforces problem",
		Long:    "Download the problem page, store its sample tests for the source and record the URL in the source's first line. Without a URL the one already in the source is used.",
		Args:    cobra.RangeArgs(1, 2),
		RunE:    c.Fetch.Execute,
		PreRunE: preRun,
	}
	rootCmd.AddCommand(fetchCmd)

	// Init command
	initCmd := &cobra.Command{
		Use:     "init <source>",
		Short:   "Create an empty test case set for a source",
		Args:    cobra.ExactArgs(1),
		RunE:    c.Init.Execute,
		PreRunE: preRun,
	}
	initCmd.Flags().BoolVar(&flags.Force, "force", false, "Replace existing test cases")
	rootCmd.AddCommand(initCmd)

	// Add command
	addCmd := &cobra.Command{
		Use:     "add <source>",
		Short:   "Add a test case to a source",
		Long:    "Append a test case read from files. Use - to read the input from stdin.",
		Args:    cobra.ExactArgs(1),
		RunE:    c.Add.Execute,
		PreRunE: preRun,
	}
	addCmd.Flags().StringVarP(&flags.InputFile, "input", "i", "", "File with the case input")
	addCmd.Flags().StringVarP(&flags.OutputFile, "output", "o", "", "File with the expected output")
	addCmd.MarkFlagRequired("input")
	addCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(addCmd)

	// Listen command
	listenCmd := &cobra.Command{
		Use:     "listen",
		Short:   "Receive problems from the Competitive Companion extension",
		Long:    "Serve the Competitive Companion endpoint. Every received problem gets its tests stored and a source file with the problem URL.",
		Args:    cobra.NoArgs,
		RunE:    c.Listen.Execute,
		PreRunE: preRun,
	}
	listenCmd.Flags().StringVarP(&flags.Addr, "addr", "a", "", fmt.Sprintf("Listen address (default %s)", config.DefaultCompanionAddr))
	listenCmd.Flags().StringVarP(&flags.Dir, "dir", "d", "", "Directory new sources are created in (default: working directory)")
	listenCmd.Flags().StringVarP(&flags.Ext, "ext", "e", ".cpp", "Extension of created sources")
	rootCmd.AddCommand(listenCmd)

	// Migrate command
	migrateCmd := &cobra.Command{
		Use:     "migrate",
		Short:   "Create the MySQL test case tables",
		Long:    "Create the configured MySQL database and the test case tables if they do not exist",
		Args:    cobra.NoArgs,
		RunE:    c.Migrate.Execute,
		PreRunE: preRun,
	}
	rootCmd.AddCommand(migrateCmd)
}
