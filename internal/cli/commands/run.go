package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cpt/internal/compile"
	"cpt/internal/discovery"
	"cpt/internal/domain"
	"cpt/internal/execution"
	"cpt/internal/parser"
	"cpt/internal/ui"
)

// ErrCasesFailed is returned when a run finished with failing cases
var ErrCasesFailed = errors.New("not all cases passed")

// RunCommand handles the run command
type RunCommand struct {
	env       *env
	formatter *ui.Formatter
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(e *env, formatter *ui.Formatter) *RunCommand {
	return &RunCommand{env: e, formatter: formatter}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg := rc.env.config
	log := rc.env.logger
	source := cfg.ResolvePath(args[0])

	ctx, cancel := signalContext(cmd)
	defer cancel()

	executable, err := rc.executable(ctx, source)
	if err != nil {
		return err
	}

	url, err := discovery.ProblemURL(source)
	if err != nil {
		log.Debug("no problem url", zap.Error(err))
	}

	store, release, err := rc.env.openStorage()
	if err != nil {
		return err
	}
	defer release()

	seq := execution.NewSequencer(
		cfg,
		execution.NewRunner(cfg, log),
		store,
		parser.NewFetcher(nil, log),
		log,
	)
	run := execution.RunContext{
		Source:     source,
		Executable: executable,
		ProblemURL: url,
	}

	var rs *domain.ResultSet
	switch {
	case cfg.Flags.TUI:
		rs, err = rc.runWithViewer(ctx, cancel, seq, run, ui.NewLiveViewer(source, cancel))
	case cfg.Flags.Quiet:
		run.Sink = execution.MultiSink{ui.NewProgressBar(os.Stderr), logSink(log)}
		rs, err = seq.Run(ctx, run)
		rc.printFailures(rs)
	default:
		run.Sink = execution.MultiSink{rc.formatter, logSink(log)}
		rs, err = seq.Run(ctx, run)
	}
	if err != nil {
		return err
	}
	if !rs.AllPassed() {
		return ErrCasesFailed
	}
	return nil
}

// executable returns the binary to run, compiling source unless told otherwise
func (rc *RunCommand) executable(ctx context.Context, source string) (string, error) {
	cfg := rc.env.config
	if bin := rc.env.flags.Binary; bin != "" {
		return cfg.ResolvePath(bin), nil
	}
	if cfg.Flags.NoCompile {
		bin := cfg.BinaryPath(source)
		if _, err := os.Stat(bin); err != nil {
			return "", fmt.Errorf("no compiled binary for %s: %w", source, err)
		}
		return bin, nil
	}

	color.Cyan("Compiling %s...", source)
	bin, err := compile.NewCompiler(cfg, rc.env.logger).Compile(ctx, source)
	var compileErr *compile.Error
	if errors.As(err, &compileErr) {
		color.Red(compileErr.Output)
	}
	return bin, err
}

// runWithViewer runs the sequencer behind viewer. Closing the viewer cancels the run.
func (rc *RunCommand) runWithViewer(ctx context.Context, cancel context.CancelFunc, seq *execution.Sequencer, run execution.RunContext, viewer ui.Viewer) (*domain.ResultSet, error) {
	run.Sink = execution.MultiSink{viewer, logSink(rc.env.logger)}

	type result struct {
		rs  *domain.ResultSet
		err error
	}
	done := make(chan result, 1)
	go func() {
		rs, err := seq.Run(ctx, run)
		done <- result{rs: rs, err: err}
	}()

	viewErr := viewer.Run()
	cancel()
	res := <-done

	if res.rs != nil {
		rc.formatter.PrintSummary(res.rs)
	}
	if viewErr != nil {
		return res.rs, viewErr
	}
	return res.rs, res.err
}

func (rc *RunCommand) printFailures(rs *domain.ResultSet) {
	if rs == nil {
		return
	}
	for _, r := range rs.Ordered() {
		if !r.Passed {
			rc.formatter.PrintCase(r)
		}
	}
	rc.formatter.PrintSummary(rs)
}

// logSink writes each snapshot to the debug log
func logSink(log *zap.Logger) execution.Sink {
	return execution.SinkFunc(func(rs *domain.ResultSet, final bool) {
		passed, failed := rs.Stats()
		log.Debug("progress",
			zap.Int("passed", passed),
			zap.Int("failed", failed),
			zap.Int("total", rs.Count),
			zap.Bool("final", final),
			zap.Bool("aborted", rs.Aborted),
		)
	})
}
