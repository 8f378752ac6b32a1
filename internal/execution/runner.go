package execution

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"cpt/internal/checker"
	"cpt/internal/config"
	"cpt/internal/domain"
)

const (
	// NoOutputMessage is recorded when a program exits cleanly without printing anything
	NoOutputMessage = "no output produced"

	stderrLimit = 4096
	waitDelay   = time.Second
)

// Outcome is what a single case execution settled into
type Outcome struct {
	State  CaseState
	Result domain.CaseResult
}

// Runner executes a single test case against a compiled program
type Runner struct {
	timeout     time.Duration
	outputLimit int
	logger      *zap.Logger
}

// NewRunner creates a new Runner
func NewRunner(cfg *config.Config, logger *zap.Logger) *Runner {
	return &Runner{
		timeout:     cfg.Timeout,
		outputLimit: cfg.OutputLimit,
		logger:      logger,
	}
}

// Run executes the program at executable with tc's input and judges its output.
// An error means the case could not be settled: either the process failed to start
// (wrapping domain.ErrSpawnFailure) or ctx was cancelled.
// An overflowed case returns StateOverflowed and carries no verdict.
func (r *Runner) Run(ctx context.Context, executable string, index int, tc domain.TestCase) (Outcome, error) {
	// Taken before the deadline is set so a timed out case never reports less than the limit.
	start := time.Now()
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out := newCapture(r.outputLimit)
	stderr := &boundedBuffer{max: stderrLimit}

	cmd := exec.CommandContext(runCtx, launchPath(executable))
	cmd.Stdin = strings.NewReader(tc.Input + "\n")
	cmd.Stdout = out
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)
	cmd.Cancel = func() error {
		return killProcess(cmd.Process)
	}

	if err := cmd.Start(); err != nil {
		return Outcome{}, fmt.Errorf("%w: %s: %v", domain.ErrSpawnFailure, executable, err)
	}
	log := r.logger.With(zap.Int("case", index), zap.Int("pid", cmd.Process.Pid))
	log.Debug("process spawned")

	// Second line of defence in case the context kill is never delivered.
	var timedOut atomic.Bool
	fallback := time.AfterFunc(r.timeout, func() {
		timedOut.Store(true)
		if err := killProcess(cmd.Process); err != nil && !errors.Is(err, os.ErrProcessDone) {
			log.Warn("fallback kill failed", zap.Error(err))
		} else {
			log.Debug("fallback timer killed process")
		}
	})
	defer fallback.Stop()

	exited := make(chan error, 1)
	go func() {
		exited <- cmd.Wait()
	}()

	select {
	case <-out.overflow:
		if err := killProcess(cmd.Process); err != nil && !errors.Is(err, os.ErrProcessDone) {
			log.Warn("kill after overflow failed", zap.Error(err))
		}
		<-exited
		log.Debug("output limit exceeded", zap.Int("limit", r.outputLimit))
		return r.overflowed(index, tc, start), nil

	case err := <-exited:
		elapsed := time.Since(start)
		if stderrText := stderr.String(); stderrText != "" {
			log.Debug("process stderr", zap.String("stderr", stderrText))
		}
		if ctx.Err() != nil {
			return Outcome{}, ctx.Err()
		}

		state := classify(err, timedOut.Load() || errors.Is(runCtx.Err(), context.DeadlineExceeded))
		if !out.settle(state) {
			// The stdout copier settled first.
			log.Debug("exit lost settle race", zap.Stringer("state", out.State()))
			return r.overflowed(index, tc, start), nil
		}
		log.Debug("process exited", zap.Stringer("state", state), zap.Duration("elapsed", elapsed), zap.Error(err))

		return Outcome{State: state, Result: r.judge(index, tc, out, state, err, elapsed)}, nil
	}
}

// classify maps the Wait error to a terminal state
func classify(err error, deadlineHit bool) CaseState {
	if err == nil || errors.Is(err, exec.ErrWaitDelay) {
		return StateCompleted
	}
	if deadlineHit {
		return StateTimedOut
	}
	return StateCrashed
}

func (r *Runner) judge(index int, tc domain.TestCase, out *capture, state CaseState, err error, elapsed time.Duration) domain.CaseResult {
	result := domain.CaseResult{
		Index:              index,
		ElapsedMillis:      elapsed.Milliseconds(),
		NormalizedInput:    checker.Display(tc.Input),
		NormalizedExpected: checker.Display(tc.ExpectedOutput),
	}

	switch {
	case state != StateCompleted:
		result.RawOutput = r.describeExit(state, err)
		result.NormalizedActual = result.RawOutput
	case !out.HasOutput():
		result.Passed = checker.Normalize(tc.ExpectedOutput) == ""
		if !result.Passed {
			result.RawOutput = NoOutputMessage
		}
	default:
		output := out.String()
		result.RawOutput = output
		result.NormalizedActual = checker.Display(output)
		result.Passed = checker.IsMatch(output, tc.ExpectedOutput)
	}
	return result
}

func (r *Runner) overflowed(index int, tc domain.TestCase, start time.Time) Outcome {
	return Outcome{
		State: StateOverflowed,
		Result: domain.CaseResult{
			Index:              index,
			ElapsedMillis:      time.Since(start).Milliseconds(),
			RawOutput:          domain.OverflowMessage,
			NormalizedInput:    checker.Display(tc.Input),
			NormalizedExpected: checker.Display(tc.ExpectedOutput),
		},
	}
}

func (r *Runner) describeExit(state CaseState, err error) string {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		if state == StateTimedOut {
			return fmt.Sprintf("Runtime error: terminated after exceeding the %s time limit", r.timeout)
		}
		return fmt.Sprintf("Runtime error: %v", err)
	}

	switch {
	case state == StateTimedOut:
		return fmt.Sprintf("Runtime error: terminated after exceeding the %s time limit (%s)", r.timeout, exitErr.ProcessState)
	case exitErr.ExitCode() == -1:
		return fmt.Sprintf("Runtime error: terminated by %s", exitErr.ProcessState)
	default:
		return fmt.Sprintf("Runtime error: exit code %d", exitErr.ExitCode())
	}
}

// launchPath keeps exec from searching $PATH for a bare file name
func launchPath(executable string) string {
	if executable == "" || filepath.IsAbs(executable) || strings.ContainsRune(executable, filepath.Separator) {
		return executable
	}
	return "." + string(filepath.Separator) + executable
}
