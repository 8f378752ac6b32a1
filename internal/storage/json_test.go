package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cpt/internal/config"
	"cpt/internal/domain"
)

func newTestStorage(t *testing.T) (*JSONStorage, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.New()
	cfg.ProjectPath = dir
	return NewJSONStorage(cfg), filepath.Join(dir, "a.cpp")
}

func TestJSONStorage_LoadMissing(t *testing.T) {
	st, source := newTestStorage(t)

	_, err := st.Load(source)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestJSONStorage_SaveLoad(t *testing.T) {
	st, source := newTestStorage(t)

	suite := domain.NewTestSuite([]string{"1 2", "3 4"}, []string{"3", "7"})
	if err := st.Save(source, suite); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if _, err := os.Stat(source + ".tcs"); err != nil {
		t.Fatalf("expected test case file next to source: %v", err)
	}

	loaded, err := st.Load(source)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Count() != 2 {
		t.Fatalf("expected 2 cases, got %d", loaded.Count())
	}
	if loaded.Cases[1].Input != "3 4" || loaded.Cases[1].ExpectedOutput != "7" {
		t.Errorf("unexpected second case: %+v", loaded.Cases[1])
	}
}

func TestJSONStorage_EmptySuite(t *testing.T) {
	st, source := newTestStorage(t)

	if err := st.Save(source, &domain.TestSuite{}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := st.Load(source)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Count() != 0 {
		t.Errorf("expected empty suite, got %d cases", loaded.Count())
	}
}

func TestJSONStorage_Append(t *testing.T) {
	st, source := newTestStorage(t)

	for i, want := range []int{1, 2} {
		n, err := st.Append(source, domain.TestCase{Input: "in", ExpectedOutput: "out"})
		if err != nil {
			t.Fatalf("append %d failed: %v", i, err)
		}
		if n != want {
			t.Errorf("expected count %d, got %d", want, n)
		}
	}
}

func TestDecodeSuite(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		count   int
		wantErr bool
	}{
		{name: "valid", data: `{"numCases":1,"inputs":["1"],"outputs":["2"]}`, count: 1},
		{name: "empty", data: `{"numCases":0,"inputs":[],"outputs":[]}`, count: 0},
		{name: "length mismatch", data: `{"numCases":1,"inputs":["1"],"outputs":[]}`, wantErr: true},
		{name: "wrong count", data: `{"numCases":3,"inputs":["1"],"outputs":["2"]}`, wantErr: true},
		{name: "not json", data: `[`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suite, err := DecodeSuite([]byte(tt.data))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if suite.Count() != tt.count {
				t.Errorf("expected %d cases, got %d", tt.count, suite.Count())
			}
		})
	}
}
