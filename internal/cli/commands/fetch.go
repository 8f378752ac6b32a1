package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cpt/internal/discovery"
	"cpt/internal/domain"
	"cpt/internal/parser"
)

// FetchCommand handles the fetch command
type FetchCommand struct {
	env *env
}

// NewFetchCommand creates a new FetchCommand
func NewFetchCommand(e *env) *FetchCommand {
	return &FetchCommand{env: e}
}

// Execute runs the command
func (fc *FetchCommand) Execute(cmd *cobra.Command, args []string) error {
	source := fc.env.config.ResolvePath(args[0])

	var url string
	if len(args) > 1 {
		url = args[1]
	} else {
		var err error
		if url, err = discovery.ProblemURL(source); err != nil {
			return err
		}
		if url == "" {
			return fmt.Errorf("no problem URL given and none found in the first line of %s", source)
		}
	}
	if !parser.IsCodeforcesURL(url) {
		return fmt.Errorf("%w: %s (only codeforces.com problems can be downloaded)", parser.ErrUnsupportedURL, url)
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	cases, err := parser.NewFetcher(nil, fc.env.logger).Fetch(ctx, url)
	if err != nil {
		return err
	}

	store, release, err := fc.env.openStorage()
	if err != nil {
		return err
	}
	defer release()

	if err := store.Save(source, &domain.TestSuite{Cases: cases}); err != nil {
		return fmt.Errorf("failed to save test cases: %w", err)
	}
	if err := discovery.PrependURL(source, url); err != nil {
		return err
	}

	color.Green("✓ Saved %d test case(s) for %s", len(cases), source)
	return nil
}
