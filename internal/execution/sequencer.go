package execution

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cpt/internal/config"
	"cpt/internal/domain"
	"cpt/internal/storage"
)

// RunState is the sequencer's position in a run
type RunState int

const (
	RunIdle RunState = iota
	RunLoading
	RunRunning
	RunDone
)

var runStateNames = map[RunState]string{
	RunIdle:    "idle",
	RunLoading: "loading",
	RunRunning: "running",
	RunDone:    "done",
}

func (s RunState) String() string {
	return runStateNames[s]
}

// RunContext carries everything a single run needs. The caller owns it.
type RunContext struct {
	// Source identifies the program under test; its test cases are stored under this key
	Source string
	// Executable is the compiled binary spawned for every case
	Executable string
	// ProblemURL is fetched when no test cases are stored yet
	ProblemURL string
	// Sink receives result snapshots
	Sink Sink
}

// Sequencer runs every case of a suite in order, one process at a time
type Sequencer struct {
	runner     CaseRunner
	store      SuiteStore
	fetcher    ProblemFetcher
	keepBinary bool
	logger     *zap.Logger

	mu      sync.Mutex
	state   RunState
	current int
}

// NewSequencer creates a new Sequencer. fetcher may be nil, which disables the fetch retry.
func NewSequencer(cfg *config.Config, runner CaseRunner, store SuiteStore, fetcher ProblemFetcher, logger *zap.Logger) *Sequencer {
	return &Sequencer{
		runner:     runner,
		store:      store,
		fetcher:    fetcher,
		keepBinary: cfg.KeepBinary,
		logger:     logger,
	}
}

// State returns the current run state and, while running, the case index
func (s *Sequencer) State() (RunState, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.current
}

func (s *Sequencer) transition(to RunState, index int, log *zap.Logger) {
	s.mu.Lock()
	s.state = to
	s.current = index
	s.mu.Unlock()
	log.Debug("run state", zap.Stringer("state", to), zap.Int("case", index))
}

// Run executes the suite stored for rc.Source and returns once the run is done.
// Only load failures, spawn failures and cancellation are returned as errors;
// every other outcome is described by the result set.
func (s *Sequencer) Run(ctx context.Context, rc RunContext) (*domain.ResultSet, error) {
	log := s.logger.With(zap.String("run", uuid.NewString()), zap.String("source", rc.Source))
	reporter := NewReporter(rc.Sink)

	s.transition(RunLoading, 0, log)
	suite, err := s.load(ctx, rc, log)
	if err != nil {
		rs := domain.NewResultSet(0)
		rs.Abort(err.Error())
		s.transition(RunDone, 0, log)
		reporter.Report(rs, true)
		return rs, err
	}

	rs := domain.NewResultSet(suite.Count())
	if suite.Count() == 0 {
		s.transition(RunDone, 0, log)
		reporter.Report(rs, true)
		s.cleanup(rc.Executable, log)
		return rs, nil
	}

	reporter.Report(rs, false)
	last := suite.Count() - 1
	for i, tc := range suite.Cases {
		s.transition(RunRunning, i, log)

		outcome, err := s.runner.Run(ctx, rc.Executable, i, tc)
		if err != nil {
			rs.Abort(err.Error())
			s.transition(RunDone, i, log)
			reporter.Report(rs, true)
			s.cleanup(rc.Executable, log)
			return rs, err
		}

		if outcome.State == StateOverflowed {
			log.Warn("output limit exceeded, aborting run", zap.Int("case", i))
			rs.Record(outcome.Result)
			rs.Abort(domain.OverflowMessage)
			s.transition(RunDone, i, log)
			reporter.Report(rs, true)
			s.cleanup(rc.Executable, log)
			return rs, nil
		}

		rs.Record(outcome.Result)
		if i == last {
			s.transition(RunDone, i, log)
		}
		reporter.Report(rs, i == last)
	}

	s.cleanup(rc.Executable, log)
	return rs, nil
}

// load returns the stored suite, fetching it from the problem page at most once
func (s *Sequencer) load(ctx context.Context, rc RunContext, log *zap.Logger) (*domain.TestSuite, error) {
	suite, err := s.store.Load(rc.Source)
	if err == nil {
		return suite, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", domain.ErrLoadFailure, err)
	}

	if rc.ProblemURL == "" || s.fetcher == nil {
		return nil, fmt.Errorf("%w: no test cases stored for %s and no problem URL to fetch them from", domain.ErrLoadFailure, rc.Source)
	}

	log.Info("test cases missing, fetching problem", zap.String("url", rc.ProblemURL))
	cases, err := s.fetcher.Fetch(ctx, rc.ProblemURL)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %w", domain.ErrLoadFailure, rc.ProblemURL, err)
	}
	if err := s.store.Save(rc.Source, &domain.TestSuite{Cases: cases}); err != nil {
		return nil, fmt.Errorf("%w: save fetched cases: %w", domain.ErrLoadFailure, err)
	}

	suite, err = s.store.Load(rc.Source)
	if err != nil {
		return nil, fmt.Errorf("%w: reload after fetch: %w", domain.ErrLoadFailure, err)
	}
	return suite, nil
}

// cleanup removes the compiled executable
func (s *Sequencer) cleanup(executable string, log *zap.Logger) {
	if s.keepBinary || executable == "" {
		return
	}
	if err := os.Remove(executable); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn("failed to remove executable", zap.String("path", executable), zap.Error(err))
	}
}
