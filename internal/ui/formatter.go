package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fatih/color"

	"cpt/internal/config"
	"cpt/internal/domain"
)

// Formatter prints case results and summaries
type Formatter struct {
	config *config.Config
	w      io.Writer

	// ShowPassed prints input and output for passing cases too
	ShowPassed bool

	mu      sync.Mutex
	printed map[int]bool
}

// NewFormatter creates a new Formatter writing to w
func NewFormatter(cfg *config.Config, w io.Writer) *Formatter {
	return &Formatter{
		config:  cfg,
		w:       w,
		printed: make(map[int]bool),
	}
}

// OnResult prints every result it has not printed yet and, on the final
// snapshot, the summary. Results are printed in case order.
func (f *Formatter) OnResult(rs *domain.ResultSet, final bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range rs.Ordered() {
		if f.printed[r.Index] {
			continue
		}
		f.printed[r.Index] = true
		f.PrintCase(r)
	}
	if final {
		f.PrintSummary(rs)
		f.printed = make(map[int]bool)
	}
}

// PrintCase prints one case verdict, with details when it failed
func (f *Formatter) PrintCase(r domain.CaseResult) {
	if r.Passed {
		color.New(color.FgGreen).Fprintf(f.w, "✓ Case #%d passed", r.Index+1)
	} else {
		color.New(color.FgRed).Fprintf(f.w, "✗ Case #%d failed", r.Index+1)
	}
	fmt.Fprintf(f.w, " (%dms)\n", r.ElapsedMillis)

	if r.Passed && !f.ShowPassed {
		return
	}
	f.printBlock("Input", r.NormalizedInput)
	f.printBlock("Expected", r.NormalizedExpected)
	f.printBlock("Received", received(r))
	fmt.Fprintln(f.w)
}

// received is what the program printed, or the reason it printed nothing usable
func received(r domain.CaseResult) string {
	if r.NormalizedActual != "" {
		return r.NormalizedActual
	}
	return r.RawOutput
}

func (f *Formatter) printBlock(title, body string) {
	color.New(color.FgYellow).Fprintf(f.w, "  %s:\n", title)
	if body == "" {
		color.New(color.FgHiBlack).Fprintln(f.w, "    (empty)")
		return
	}
	for _, line := range strings.Split(body, "\n") {
		fmt.Fprintf(f.w, "    %s\n", line)
	}
}

// PrintSummary prints the totals of a finished run
func (f *Formatter) PrintSummary(rs *domain.ResultSet) {
	passed, failed := rs.Stats()

	fmt.Fprintln(f.w)
	fmt.Fprintln(f.w, "┌─────────────────────────────────┬─────────────────────────────┐")
	f.printRow("Cases", fmt.Sprint(rs.Count), color.FgWhite)
	fmt.Fprintln(f.w, "├─────────────────────────────────┼─────────────────────────────┤")
	f.printRow("Passed", fmt.Sprint(passed), color.FgGreen)
	fmt.Fprintln(f.w, "├─────────────────────────────────┼─────────────────────────────┤")
	f.printRow("Failed", fmt.Sprint(failed), color.FgRed)
	fmt.Fprintln(f.w, "└─────────────────────────────────┴─────────────────────────────┘")
	fmt.Fprintln(f.w)

	switch {
	case rs.Aborted:
		color.New(color.FgRed).Fprintf(f.w, "✗ %s\n", rs.AbortReason)
	case rs.Count == 0:
		color.New(color.FgYellow).Fprintln(f.w, "No test cases to run.")
	case rs.AllPassed():
		color.New(color.FgGreen).Fprintln(f.w, "✓ All cases passed!")
	default:
		color.New(color.FgRed).Fprintf(f.w, "✗ %d of %d case(s) failed\n", failed, rs.Count)
	}
}

func (f *Formatter) printRow(label, value string, attr color.Attribute) {
	fmt.Fprintf(f.w, "│ %-31s │ ", label)
	color.New(attr).Fprintf(f.w, "%-27s", value)
	fmt.Fprintln(f.w, " │")
}

// SourceEntry describes one source file for listing
type SourceEntry struct {
	Path  string
	URL   string
	Cases []domain.TestCase
	// Err is set when the stored cases could not be read
	Err error
	// Missing is set when no cases are stored
	Missing bool
}

// PrintSourceList prints sources as a tree, optionally with their stored cases
func (f *Formatter) PrintSourceList(entries []SourceEntry, showCases bool) {
	color.New(color.FgGreen).Fprintf(f.w, "Found %d source file(s):\n\n", len(entries))

	for i, entry := range entries {
		relPath, err := filepath.Rel(f.config.ProjectPath, entry.Path)
		if err != nil {
			relPath = entry.Path
		}

		isLast := i == len(entries)-1
		connector, childPrefix := "├── ", "│   "
		if isLast {
			connector, childPrefix = "└── ", "    "
		}

		color.New(color.FgCyan).Fprintf(f.w, "%s%s", connector, relPath)
		fmt.Fprintf(f.w, " %s\n", entryStatus(entry))

		if entry.URL != "" {
			fmt.Fprintf(f.w, "%s%s\n", childPrefix, color.HiBlackString(entry.URL))
		}
		if !showCases || len(entry.Cases) == 0 {
			continue
		}
		for j, tc := range entry.Cases {
			caseConnector := "├── "
			if j == len(entry.Cases)-1 {
				caseConnector = "└── "
			}
			fmt.Fprintf(f.w, "%s%s#%d %s → %s\n", childPrefix, caseConnector, j+1,
				color.YellowString(oneLine(tc.Input)), oneLine(tc.ExpectedOutput))
		}
	}
}

func entryStatus(entry SourceEntry) string {
	switch {
	case entry.Err != nil:
		return color.RedString("[error: %v]", entry.Err)
	case entry.Missing:
		return color.RedString("[no test cases]")
	default:
		return color.GreenString("[%d case(s)]", len(entry.Cases))
	}
}

// oneLine squeezes multi-line text for a single list row
func oneLine(s string) string {
	const max = 40
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > max {
		return string(r[:max-1]) + "…"
	}
	return s
}
