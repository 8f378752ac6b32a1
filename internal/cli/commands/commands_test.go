package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cpt/internal/cli"
	"cpt/internal/config"
	"cpt/internal/domain"
	"cpt/internal/execution"
	"cpt/internal/storage"
	"cpt/internal/ui"
)

const programEnv = "CPT_TEST_PROGRAM"

func TestMain(m *testing.M) {
	if os.Getenv(programEnv) == "sum" {
		var a, b int
		fmt.Fscan(bufio.NewReader(os.Stdin), &a, &b)
		fmt.Println(a + b)
		os.Exit(0)
	}
	color.NoColor = true
	os.Exit(m.Run())
}

// execute runs the cpt command line in dir
func execute(t *testing.T, dir string, args ...string) error {
	t.Helper()
	cfg := config.New()
	cfg.ProjectPath = dir

	root := &cobra.Command{Use: "cpt", SilenceErrors: true}
	var flags cli.Flags
	NewCommands(cfg).Register(root, &flags)
	root.SetArgs(args)
	return root.Execute()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestInitAndAdd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "in.txt"), "1 2\n")
	writeFile(t, filepath.Join(dir, "out.txt"), "3\n")

	if err := execute(t, dir, "init", "a.cpp"); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if err := execute(t, dir, "init", "a.cpp"); err != nil {
		t.Fatalf("init of an empty set should succeed again: %v", err)
	}
	if err := execute(t, dir, "add", "a.cpp", "-i", "in.txt", "-o", "out.txt"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := execute(t, dir, "init", "a.cpp"); err == nil {
		t.Error("expected init to refuse replacing stored cases")
	}

	cfg := config.New()
	suite, err := storage.NewJSONStorage(cfg).Load(filepath.Join(dir, "a.cpp"))
	if err != nil {
		t.Fatalf("failed to load suite: %v", err)
	}
	if suite.Count() != 1 || suite.Cases[0].Input != "1 2\n" || suite.Cases[0].ExpectedOutput != "3\n" {
		t.Errorf("unexpected suite: %+v", suite.Cases)
	}

	if err := execute(t, dir, "init", "a.cpp", "--force"); err != nil {
		t.Fatalf("forced init failed: %v", err)
	}
	suite, _ = storage.NewJSONStorage(cfg).Load(filepath.Join(dir, "a.cpp"))
	if suite.Count() != 0 {
		t.Errorf("expected forced init to clear cases, got %d", suite.Count())
	}
}

func TestAdd_MissingFile(t *testing.T) {
	dir := t.TempDir()
	if err := execute(t, dir, "add", "a.cpp", "-i", "missing.txt", "-o", "missing.txt"); err == nil {
		t.Error("expected error for missing input file")
	}
}

func TestRun_SuppliedBinary(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "sum.cpp")
	writeFile(t, source, "int main(){}\n")
	for _, c := range [][2]string{{"1 2", "3"}, {"5 5", "10"}} {
		writeFile(t, filepath.Join(dir, "in.txt"), c[0])
		writeFile(t, filepath.Join(dir, "out.txt"), c[1])
		if err := execute(t, dir, "add", "sum.cpp", "-i", "in.txt", "-o", "out.txt"); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	t.Setenv(programEnv, "sum")
	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("failed to locate test binary: %v", err)
	}

	if err := execute(t, dir, "run", "sum.cpp", "--binary", exe, "-q"); err != nil {
		t.Fatalf("expected all cases to pass, got %v", err)
	}
	if _, err := os.Stat(exe); err != nil {
		t.Fatalf("supplied binary must not be deleted: %v", err)
	}

	writeFile(t, filepath.Join(dir, "in.txt"), "2 2")
	writeFile(t, filepath.Join(dir, "out.txt"), "5")
	if err := execute(t, dir, "add", "sum.cpp", "-i", "in.txt", "-o", "out.txt"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := execute(t, dir, "run", "sum.cpp", "--binary", exe); !errors.Is(err, ErrCasesFailed) {
		t.Errorf("expected ErrCasesFailed, got %v", err)
	}
}

// copyTestBinary places a copy of the running test binary at path
func copyTestBinary(t *testing.T, path string) {
	t.Helper()
	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("failed to locate test binary: %v", err)
	}
	data, err := os.ReadFile(exe)
	if err != nil {
		t.Fatalf("failed to read test binary: %v", err)
	}
	if err := os.WriteFile(path, data, 0755); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestRun_RelativePaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sum.cpp"), "int main(){}\n")
	writeFile(t, filepath.Join(dir, "in.txt"), "1 2")
	writeFile(t, filepath.Join(dir, "out.txt"), "3")
	copyTestBinary(t, filepath.Join(dir, "sum.bin"))
	t.Setenv(programEnv, "sum")
	t.Chdir(dir)

	// The default project path is ".", so every name below is relative.
	if err := execute(t, config.DefaultProjectPath, "add", "sum.cpp", "-i", "in.txt", "-o", "out.txt"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := execute(t, config.DefaultProjectPath, "run", "sum.cpp", "--binary", "sum.bin", "-q"); err != nil {
		t.Fatalf("run with a relative --binary failed: %v", err)
	}
	if err := execute(t, config.DefaultProjectPath, "run", "sum.cpp", "--no-compile", "-q"); err != nil {
		t.Fatalf("run with --no-compile failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "sum.bin")); !os.IsNotExist(err) {
		t.Errorf("expected the compiled binary to be removed, stat err: %v", err)
	}
}

// fakeViewer stands in for the terminal UI and closes once the final report arrives
type fakeViewer struct {
	once    sync.Once
	done    chan struct{}
	reports int
	final   bool
}

func (f *fakeViewer) OnResult(rs *domain.ResultSet, final bool) {
	f.reports++
	if final {
		f.final = true
		f.once.Do(func() { close(f.done) })
	}
}

func (f *fakeViewer) Run() error {
	<-f.done
	return nil
}

func (f *fakeViewer) Stop() {
	f.once.Do(func() { close(f.done) })
}

func TestRun_WithViewer(t *testing.T) {
	dir := t.TempDir()
	cfg := config.New()
	cfg.ProjectPath = dir
	cfg.KeepBinary = true
	source := filepath.Join(dir, "sum.cpp")
	suite := domain.NewTestSuite([]string{"1 2", "4 4"}, []string{"3", "8"})
	if err := storage.NewJSONStorage(cfg).Save(source, suite); err != nil {
		t.Fatalf("failed to save suite: %v", err)
	}

	t.Setenv(programEnv, "sum")
	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("failed to locate test binary: %v", err)
	}

	log := zap.NewNop()
	rc := NewRunCommand(&env{config: cfg, logger: log}, ui.NewFormatter(cfg, io.Discard))
	seq := execution.NewSequencer(cfg, execution.NewRunner(cfg, log), storage.NewJSONStorage(cfg), nil, log)
	viewer := &fakeViewer{done: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rs, err := rc.runWithViewer(ctx, cancel, seq, execution.RunContext{Source: source, Executable: exe}, viewer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rs.AllPassed() {
		t.Errorf("expected all cases to pass, got %+v", rs.Results)
	}
	if !viewer.final || viewer.reports != 3 {
		t.Errorf("expected 3 reports ending in a final one, got %d (final=%v)", viewer.reports, viewer.final)
	}
}

func TestRun_NoTestCases(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.cpp"), "int main(){}\n")

	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("failed to locate test binary: %v", err)
	}
	if err := execute(t, dir, "run", "a.cpp", "--binary", exe); err == nil {
		t.Error("expected load failure without test cases or problem URL")
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.cpp"), "//https://codeforces.com/problemset/problem/1/A\n")
	writeFile(t, filepath.Join(dir, "b.c"), "")

	if err := execute(t, dir, "list", "-c"); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if err := execute(t, dir, "list", "missing-dir"); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestFetch_RejectsUnsupportedURL(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.cpp"), "")

	if err := execute(t, dir, "fetch", "a.cpp", "https://example.com/problem"); err == nil {
		t.Error("expected unsupported URL error")
	}
	if err := execute(t, dir, "fetch", "a.cpp"); err == nil {
		t.Error("expected error when the source has no URL")
	}
}
