package commands

import (
	"errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cpt/internal/discovery"
	"cpt/internal/storage"
	"cpt/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	env       *env
	scanner   *discovery.Scanner
	filter    *discovery.Filter
	formatter *ui.Formatter
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	e *env,
	scanner *discovery.Scanner,
	filter *discovery.Filter,
	formatter *ui.Formatter,
) *ListCommand {
	return &ListCommand{
		env:       e,
		scanner:   scanner,
		filter:    filter,
		formatter: formatter,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg := lc.env.config
	root := cfg.ProjectPath
	if len(args) > 0 {
		root = cfg.ResolvePath(args[0])
	}

	sources, err := lc.scanner.Scan(root)
	if err != nil {
		return err
	}
	sources = lc.filter.FilterByName(sources, cfg.Flags.NameFilter)

	if len(sources) == 0 {
		color.Yellow("No sources found")
		return nil
	}

	store, release, err := lc.env.openStorage()
	if err != nil {
		return err
	}
	defer release()

	entries := make([]ui.SourceEntry, 0, len(sources))
	for _, source := range sources {
		entry := ui.SourceEntry{Path: source}
		entry.URL, _ = discovery.ProblemURL(source)

		suite, err := store.Load(source)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			entry.Missing = true
		case err != nil:
			entry.Err = err
		default:
			entry.Cases = suite.Cases
		}
		entries = append(entries, entry)
	}

	lc.formatter.PrintSourceList(entries, cfg.Flags.TestCases)
	return nil
}
