package execution

import (
	"testing"

	"cpt/internal/domain"
)

func TestReporter_Report(t *testing.T) {
	var got []*domain.ResultSet
	reporter := NewReporter(SinkFunc(func(rs *domain.ResultSet, final bool) {
		if rs.Final != final {
			t.Errorf("snapshot final flag %v does not match %v", rs.Final, final)
		}
		got = append(got, rs)
	}))

	rs := domain.NewResultSet(2)
	reporter.Report(rs, false)
	rs.Record(domain.CaseResult{Index: 0, Passed: true})
	reporter.Report(rs, true)

	if len(got) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(got))
	}
	if len(got[0].Results) != 0 {
		t.Error("first snapshot must not see later results")
	}
	if !got[1].Final || len(got[1].Results) != 1 {
		t.Errorf("unexpected final snapshot: %+v", got[1])
	}
}

func TestReporter_NilSink(t *testing.T) {
	NewReporter(nil).Report(domain.NewResultSet(1), true)
}

func TestMultiSink(t *testing.T) {
	calls := 0
	count := SinkFunc(func(rs *domain.ResultSet, final bool) { calls++ })

	MultiSink{count, count}.OnResult(domain.NewResultSet(0), true)
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}
