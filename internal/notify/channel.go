package notify

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const DefaultTTL = 2500 * time.Millisecond

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

type Toast struct {
	Kind      Kind
	Text      string
	ExpiresAt time.Time
}

// ExpiredMsg fires when a toast's lifetime ends. Only the message carrying
// the current sequence number removes anything.
type ExpiredMsg struct {
	seq uint64
}

// Channel is a single-slot toast queue. Showing a toast replaces the
// visible one and restarts the expiry window.
type Channel struct {
	ttl     time.Duration
	seq     uint64
	current *Toast
	now     func() time.Time
	tick    func(time.Duration, func(time.Time) tea.Msg) tea.Cmd
}

func NewChannel() *Channel {
	return &Channel{
		ttl:  DefaultTTL,
		now:  time.Now,
		tick: tea.Tick,
	}
}

func (c *Channel) Show(kind Kind, text string) tea.Cmd {
	c.seq++
	seq := c.seq
	c.current = &Toast{
		Kind:      kind,
		Text:      text,
		ExpiresAt: c.now().Add(c.ttl),
	}
	return c.tick(c.ttl, func(time.Time) tea.Msg {
		return ExpiredMsg{seq: seq}
	})
}

func (c *Channel) Success(text string) tea.Cmd {
	return c.Show(KindSuccess, text)
}

func (c *Channel) Error(text string) tea.Cmd {
	return c.Show(KindError, text)
}

// Update reports whether msg belonged to the channel.
func (c *Channel) Update(msg tea.Msg) bool {
	expired, ok := msg.(ExpiredMsg)
	if !ok {
		return false
	}
	if expired.seq == c.seq {
		c.current = nil
	}
	return true
}

func (c *Channel) Current() (Toast, bool) {
	if c.current == nil {
		return Toast{}, false
	}
	return *c.current, true
}

func (c *Channel) Dismiss() {
	c.seq++
	c.current = nil
}
