package execution

import "cpt/internal/domain"

// Reporter forwards independent snapshots of a result set to a sink
type Reporter struct {
	sink Sink
}

// NewReporter creates a Reporter. A nil sink discards reports.
func NewReporter(sink Sink) *Reporter {
	return &Reporter{sink: sink}
}

// Report sends a copy of rs to the sink
func (r *Reporter) Report(rs *domain.ResultSet, final bool) {
	if r.sink == nil {
		return
	}
	r.sink.OnResult(rs.Snapshot(final), final)
}
