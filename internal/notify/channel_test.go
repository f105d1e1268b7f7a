package notify

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

type scheduled struct {
	after time.Duration
	fire  func(time.Time) tea.Msg
}

func newTestChannel(now time.Time) (*Channel, *[]scheduled) {
	var timers []scheduled
	c := NewChannel()
	c.now = func() time.Time { return now }
	c.tick = func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
		timers = append(timers, scheduled{after: d, fire: fn})
		return func() tea.Msg { return fn(now.Add(d)) }
	}
	return c, &timers
}

func TestChannel_ShowThenExpire(t *testing.T) {
	now := time.Date(2025, 1, 13, 12, 0, 0, 0, time.UTC)
	c, timers := newTestChannel(now)

	cmd := c.Show(KindSuccess, "restarted")
	require.NotNil(t, cmd)

	toast, ok := c.Current()
	require.True(t, ok)
	require.Equal(t, KindSuccess, toast.Kind)
	require.Equal(t, "restarted", toast.Text)
	require.Equal(t, now.Add(2500*time.Millisecond), toast.ExpiresAt)
	require.Len(t, *timers, 1)
	require.Equal(t, DefaultTTL, (*timers)[0].after)

	require.True(t, c.Update(cmd()))

	_, ok = c.Current()
	require.False(t, ok)
}

func TestChannel_ReplaceReschedules(t *testing.T) {
	now := time.Date(2025, 1, 13, 12, 0, 0, 0, time.UTC)
	c, _ := newTestChannel(now)

	first := c.Show(KindSuccess, "first")
	second := c.Error("second")

	toast, ok := c.Current()
	require.True(t, ok)
	require.Equal(t, "second", toast.Text)
	require.Equal(t, KindError, toast.Kind)

	require.True(t, c.Update(first()))
	toast, ok = c.Current()
	require.True(t, ok, "stale expiry must not remove the newer toast")
	require.Equal(t, "second", toast.Text)

	require.True(t, c.Update(second()))
	_, ok = c.Current()
	require.False(t, ok)
}

func TestChannel_IgnoresForeignMessages(t *testing.T) {
	c, _ := newTestChannel(time.Now())
	c.Success("ok")

	require.False(t, c.Update(tea.KeyMsg{}))
	_, ok := c.Current()
	require.True(t, ok)
}

func TestChannel_Dismiss(t *testing.T) {
	c, _ := newTestChannel(time.Now())
	cmd := c.Success("ok")

	c.Dismiss()
	_, ok := c.Current()
	require.False(t, ok)

	c.Success("again")
	require.True(t, c.Update(cmd()))
	_, ok = c.Current()
	require.True(t, ok)
}
