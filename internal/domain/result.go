package domain

import (
	"sort"
	"sync"
)

// CaseResult is the recorded outcome of running one case
type CaseResult struct {
	Index              int    `json:"index"`
	Passed             bool   `json:"passed"`
	ElapsedMillis      int64  `json:"elapsed_ms"`
	RawOutput          string `json:"raw_output"`
	NormalizedInput    string `json:"input"`
	NormalizedExpected string `json:"expected"`
	NormalizedActual   string `json:"actual"`
}

// ResultSet maps case index to its result for one run.
// It is sparse while the run is in progress.
type ResultSet struct {
	Count       int                `json:"count"`
	Results     map[int]CaseResult `json:"results"`
	Final       bool               `json:"final"`
	Aborted     bool               `json:"aborted,omitempty"`
	AbortReason string             `json:"abort_reason,omitempty"`

	mu sync.Mutex
}

// NewResultSet creates an empty result set for a suite of count cases
func NewResultSet(count int) *ResultSet {
	return &ResultSet{
		Count:   count,
		Results: make(map[int]CaseResult, count),
	}
}

// Record stores r unless its index is out of range or already settled.
// It reports whether r was stored; the first writer for an index wins.
func (rs *ResultSet) Record(r CaseResult) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if r.Index < 0 || r.Index >= rs.Count {
		return false
	}
	if _, exists := rs.Results[r.Index]; exists {
		return false
	}
	rs.Results[r.Index] = r
	return true
}

// Abort marks the run as failed as a whole
func (rs *ResultSet) Abort(reason string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.Aborted = true
	rs.AbortReason = reason
}

// Get returns the result for index i, if recorded
func (rs *ResultSet) Get(i int) (CaseResult, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	r, ok := rs.Results[i]
	return r, ok
}

// Snapshot returns an independent copy that shares no state with rs
func (rs *ResultSet) Snapshot(final bool) *ResultSet {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	results := make(map[int]CaseResult, len(rs.Results))
	for i, r := range rs.Results {
		results[i] = r
	}
	return &ResultSet{
		Count:       rs.Count,
		Results:     results,
		Final:       final,
		Aborted:     rs.Aborted,
		AbortReason: rs.AbortReason,
	}
}

// Ordered returns the recorded results sorted by index
func (rs *ResultSet) Ordered() []CaseResult {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	ordered := make([]CaseResult, 0, len(rs.Results))
	for _, r := range rs.Results {
		ordered = append(ordered, r)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })
	return ordered
}

// Stats returns the passed and failed counts among recorded results
func (rs *ResultSet) Stats() (passed, failed int) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	for _, r := range rs.Results {
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

// AllPassed reports whether the run finished with every case passing
func (rs *ResultSet) AllPassed() bool {
	passed, _ := rs.Stats()
	return !rs.Aborted && passed == rs.Count
}
