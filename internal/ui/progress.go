package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"cpt/internal/domain"
)

// ProgressBar shows how many cases of a run have settled
type ProgressBar struct {
	mu       sync.Mutex
	w        io.Writer
	bar      *progressbar.ProgressBar
	finished bool
}

// NewProgressBar creates a progress bar that renders to w once the case count is known
func NewProgressBar(w io.Writer) *ProgressBar {
	return &ProgressBar{w: w}
}

func (p *ProgressBar) create(count int) {
	p.bar = progressbar.NewOptions(count,
		progressbar.OptionSetDescription(describe(0, 0)),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(p.w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// OnResult updates the bar from a result snapshot
func (p *ProgressBar) OnResult(rs *domain.ResultSet, final bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finished || rs.Count == 0 {
		return
	}
	if p.bar == nil {
		p.create(rs.Count)
	}

	passed, failed := rs.Stats()
	p.bar.Describe(describe(passed, failed))
	p.bar.Set(passed + failed)
	if final {
		p.bar.Finish()
		p.finished = true
	}
}

func describe(passed, failed int) string {
	return color.CyanString("Running cases: ") +
		color.GreenString("[passed: %d", passed) +
		" | " +
		color.RedString("failed: %d]", failed)
}
