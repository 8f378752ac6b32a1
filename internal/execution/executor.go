package execution

import (
	"context"

	"cpt/internal/domain"
)

// CaseRunner executes one case against an executable
type CaseRunner interface {
	Run(ctx context.Context, executable string, index int, tc domain.TestCase) (Outcome, error)
}

// SuiteStore loads and saves the test cases that belong to a source file.
// Load returns storage.ErrNotFound when no cases are stored.
type SuiteStore interface {
	Load(source string) (*domain.TestSuite, error)
	Save(source string, suite *domain.TestSuite) error
}

// ProblemFetcher downloads a problem page and extracts its sample cases
type ProblemFetcher interface {
	Fetch(ctx context.Context, url string) ([]domain.TestCase, error)
}

// Sink receives result snapshots as a run progresses.
// Every snapshot is self-contained and owned by the sink; nothing else mutates it.
type Sink interface {
	OnResult(rs *domain.ResultSet, final bool)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(rs *domain.ResultSet, final bool)

// OnResult calls f(rs, final)
func (f SinkFunc) OnResult(rs *domain.ResultSet, final bool) {
	f(rs, final)
}

// MultiSink fans snapshots out to several sinks in order
type MultiSink []Sink

// OnResult forwards the snapshot to every sink
func (m MultiSink) OnResult(rs *domain.ResultSet, final bool) {
	for _, s := range m {
		s.OnResult(rs, final)
	}
}
