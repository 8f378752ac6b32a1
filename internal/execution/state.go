package execution

import (
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"cpt/internal/domain"
)

// CaseState is the lifecycle of one case execution
type CaseState int

const (
	StateSpawned CaseState = iota
	StateAccumulating
	StateCompleted
	StateOverflowed
	StateTimedOut
	StateCrashed
)

var stateNames = map[CaseState]string{
	StateSpawned:      "spawned",
	StateAccumulating: "accumulating",
	StateCompleted:    "completed",
	StateOverflowed:   "overflowed",
	StateTimedOut:     "timed_out",
	StateCrashed:      "crashed",
}

func (s CaseState) String() string {
	return stateNames[s]
}

// Settled reports whether s is terminal
func (s CaseState) Settled() bool {
	return s >= StateCompleted
}

var errSettled = errors.New("case already settled")

// capture accumulates a case's stdout and guards its settle-once gate.
// The stdout copier and the exit handler both try to settle; the first wins.
type capture struct {
	mu       sync.Mutex
	state    CaseState
	buf      strings.Builder
	chars    int
	pending  []byte
	limit    int
	overflow chan struct{}
}

func newCapture(limit int) *capture {
	return &capture{
		state:    StateSpawned,
		limit:    limit,
		overflow: make(chan struct{}),
	}
}

// Write appends stdout data. Crossing the limit settles the case as overflowed.
func (c *capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Settled() {
		return 0, errSettled
	}
	c.state = StateAccumulating
	c.buf.Write(p)
	c.count(p)

	if c.limit > 0 && c.chars > c.limit {
		c.state = StateOverflowed
		close(c.overflow)
		return len(p), domain.ErrOverflow
	}
	return len(p), nil
}

// count adds the characters in p, holding back a trailing partial rune
// until the rest of its bytes arrive in a later write.
func (c *capture) count(p []byte) {
	data := p
	if len(c.pending) > 0 {
		data = append(c.pending, p...)
		c.pending = nil
	}
	cut := len(data)
	for i := len(data) - 1; i >= 0 && i >= len(data)-utf8.UTFMax; i-- {
		if utf8.RuneStart(data[i]) {
			if !utf8.FullRune(data[i:]) {
				cut = i
			}
			break
		}
	}
	c.chars += utf8.RuneCount(data[:cut])
	if cut < len(data) {
		c.pending = append([]byte(nil), data[cut:]...)
	}
}

// settle moves the case to a terminal state unless another path got there first
func (c *capture) settle(to CaseState) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Settled() {
		return false
	}
	c.state = to
	return true
}

func (c *capture) State() CaseState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// HasOutput reports whether any stdout data arrived
func (c *capture) HasOutput() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Len() > 0
}

func (c *capture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// boundedBuffer keeps the first max bytes written to it and drops the rest
type boundedBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if room := b.max - len(b.buf); room > 0 {
		if len(p) < room {
			room = len(p)
		}
		b.buf = append(b.buf, p[:room]...)
	}
	return len(p), nil
}

func (b *boundedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
