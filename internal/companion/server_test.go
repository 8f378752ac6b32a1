package companion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cpt/internal/config"
	"cpt/internal/discovery"
	"cpt/internal/storage"
)

const payload = `{
	"name": "A. Watermelon",
	"group": "Codeforces - Beta Round #4",
	"url": "https://codeforces.com/problemset/problem/4/A",
	"timeLimit": 1000,
	"tests": [{"input": "8\n", "output": "YES\n"}, {"input": "5\n", "output": "NO\n"}]
}`

func newTestServer(t *testing.T) (*Server, string, storage.Storage) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	cfg := config.New()
	cfg.ProjectPath = dir
	store := storage.NewJSONStorage(cfg)
	return NewServer(store, Options{Dir: dir}, zap.NewNop()), dir, store
}

func TestServer_HandleProblem(t *testing.T) {
	srv, dir, store := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	source := filepath.Join(dir, "A_Watermelon.cpp")
	suite, err := store.Load(source)
	if err != nil {
		t.Fatalf("test cases not stored: %v", err)
	}
	if suite.Count() != 2 || suite.Cases[1].ExpectedOutput != "NO\n" {
		t.Errorf("unexpected suite: %+v", suite.Cases)
	}

	url, err := discovery.ProblemURL(source)
	if err != nil {
		t.Fatalf("source not created: %v", err)
	}
	if url != "https://codeforces.com/problemset/problem/4/A" {
		t.Errorf("unexpected url header %q", url)
	}
}

func TestServer_KeepsExistingSource(t *testing.T) {
	srv, dir, _ := newTestServer(t)
	source := filepath.Join(dir, "A_Watermelon.cpp")
	if err := os.WriteFile(source, []byte("int main(){}\n"), 0644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	if _, err := srv.Store(Problem{Name: "A. Watermelon", URL: "https://codeforces.com/x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content, _ := os.ReadFile(source)
	if string(content) != "int main(){}\n" {
		t.Errorf("existing source was modified: %q", content)
	}
}

func TestServer_BadRequests(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected health check 200, got %d", w.Code)
	}
}

func TestServer_ListenAndServeStops(t *testing.T) {
	srv, _, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := srv.ListenAndServe(ctx, "127.0.0.1:0"); err != nil {
		t.Errorf("expected clean shutdown, got %v", err)
	}
}

func TestFileName(t *testing.T) {
	tests := map[string]string{
		"A. Watermelon":           "A_Watermelon",
		"B - Two Arrays (hard)":   "B_Two_Arrays_hard",
		"  spaced  ":              "spaced",
		"../../etc/passwd":        "etc_passwd",
		"":                        "problem",
		"!!!":                     "problem",
		"Задача 1":                "Задача_1",
		"C-1 Interactive/Problem": "C_1_Interactive_Problem",
	}
	for in, want := range tests {
		if got := FileName(in); got != want {
			t.Errorf("FileName(%q) = %q, want %q", in, got, want)
		}
	}
}
