package ui

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"cpt/internal/domain"
)

// LiveViewer shows case results in a TUI while the run progresses
type LiveViewer struct {
	source string
	onQuit func()

	app     *tview.Application
	list    *tview.List
	header  *tview.TextView
	stats   *tview.TextView
	details *tview.TextView

	mu      sync.Mutex
	latest  *domain.ResultSet
	final   bool
	stopped atomic.Bool
}

// NewLiveViewer creates a viewer for source. onQuit runs when the user closes the viewer.
func NewLiveViewer(source string, onQuit func()) *LiveViewer {
	v := &LiveViewer{
		source: source,
		onQuit: onQuit,
		app:    tview.NewApplication(),
		latest: domain.NewResultSet(0),
	}
	v.build()
	return v
}

func (v *LiveViewer) build() {
	v.list = tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	v.list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	v.stats = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)

	v.details = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	v.header = tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(v.details, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(v.stats, 2, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(v.list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	v.list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			v.app.SetFocus(v.details)
			return nil
		case tcell.KeyCtrlC, tcell.KeyEsc:
			v.quit()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'q' {
				v.quit()
				return nil
			}
		}
		return event
	})

	v.details.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			v.app.SetFocus(v.list)
			return nil
		case tcell.KeyCtrlC:
			v.quit()
			return nil
		}
		return event
	})

	v.list.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		v.showDetails(index)
	})

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(v.header, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	v.app.SetRoot(layout, true).SetFocus(v.list)
	v.render()
}

// OnResult queues a redraw with the new snapshot
func (v *LiveViewer) OnResult(rs *domain.ResultSet, final bool) {
	if v.stopped.Load() {
		return
	}
	v.mu.Lock()
	v.latest = rs
	v.final = final
	v.mu.Unlock()

	go v.app.QueueUpdateDraw(v.render)
}

// Run shows the viewer until the user quits
func (v *LiveViewer) Run() error {
	if err := v.app.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// Stop closes the viewer without calling onQuit
func (v *LiveViewer) Stop() {
	if v.stopped.CompareAndSwap(false, true) {
		v.app.Stop()
	}
}

func (v *LiveViewer) quit() {
	if v.onQuit != nil {
		v.onQuit()
	}
	v.Stop()
}

// render rebuilds the list from the latest snapshot; it must run on the UI goroutine
func (v *LiveViewer) render() {
	v.mu.Lock()
	rs, final := v.latest, v.final
	v.mu.Unlock()

	current := v.list.GetCurrentItem()
	v.list.Clear()
	for i := 0; i < rs.Count; i++ {
		r, ok := rs.Get(i)
		v.list.AddItem(caseLabel(i, r, ok), "", 0, nil)
	}
	if current >= 0 && current < v.list.GetItemCount() {
		v.list.SetCurrentItem(current)
	}

	v.header.SetText(headerText(v.source, rs, final))
	v.showDetails(v.list.GetCurrentItem())
}

func (v *LiveViewer) showDetails(index int) {
	v.mu.Lock()
	rs := v.latest
	v.mu.Unlock()

	if index < 0 || index >= rs.Count {
		v.stats.SetText("")
		if rs.Aborted {
			v.details.SetText(fmt.Sprintf("[red]%s[white]", tview.Escape(rs.AbortReason)))
		} else {
			v.details.SetText("")
		}
		return
	}

	r, ok := rs.Get(index)
	v.stats.SetText(fmt.Sprintf("[cyan]source:[white] [yellow]%s[white] case [yellow]#%d[white]", tview.Escape(v.source), index+1))
	if !ok {
		v.details.SetText("[gray]waiting...[white]")
		return
	}
	v.details.SetText(caseDetails(r))
}

func caseLabel(index int, r domain.CaseResult, settled bool) string {
	switch {
	case !settled:
		return fmt.Sprintf("[gray]· %d. pending[white]", index+1)
	case r.Passed:
		return fmt.Sprintf("[green]✓[white] %d. passed [gray](%dms)[white]", index+1, r.ElapsedMillis)
	default:
		return fmt.Sprintf("[red]✗[white] %d. failed [gray](%dms)[white]", index+1, r.ElapsedMillis)
	}
}

func headerText(source string, rs *domain.ResultSet, final bool) string {
	passed, failed := rs.Stats()
	status := "running"
	switch {
	case final && rs.Aborted:
		status = "[red]aborted[white]"
	case final:
		status = "done"
	}
	return fmt.Sprintf(" %s: %d/%d settled, [green]%d passed[white], [red]%d failed[white] (%s) | ↑↓ navigate, → details, ← back, q quit ",
		tview.Escape(source), passed+failed, rs.Count, passed, failed, status)
}

// caseDetails formats a case for display using tview color tags
func caseDetails(r domain.CaseResult) string {
	var b strings.Builder
	if r.Passed {
		fmt.Fprintf(&b, "[green]✓ Case #%d passed in %dms[white]\n\n", r.Index+1, r.ElapsedMillis)
	} else {
		fmt.Fprintf(&b, "[red]✗ Case #%d failed in %dms[white]\n\n", r.Index+1, r.ElapsedMillis)
	}
	fmt.Fprintf(&b, "[yellow]Input:[white]\n%s\n\n", tview.Escape(r.NormalizedInput))
	fmt.Fprintf(&b, "[yellow]Expected:[white]\n%s\n\n", tview.Escape(r.NormalizedExpected))
	fmt.Fprintf(&b, "[yellow]Received:[white]\n%s\n", tview.Escape(received(r)))
	return b.String()
}
