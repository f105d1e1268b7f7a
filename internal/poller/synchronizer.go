package poller

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/opsboard/internal/logger"
	"github.com/user/opsboard/pkg/opsapi"
)

const DefaultInterval = 60 * time.Second

type FetchFunc[T any] func(ctx context.Context, target opsapi.Target) ([]T, error)

type State int

const (
	StateIdle State = iota
	StateFetching
)

func (s State) String() string {
	if s == StateFetching {
		return "fetching"
	}
	return "idle"
}

// FetchedMsg carries one fetch result back into the event loop.
type FetchedMsg[T any] struct {
	name       string
	epoch      uint64
	generation uint64
	items      []T
	err        error
	at         time.Time
}

// TickMsg triggers the next scheduled fetch.
type TickMsg struct {
	name  string
	epoch uint64
}

// Synchronizer keeps a snapshot of one remote collection for one target.
//
// Every Start or Stop bumps the epoch, which silently kills the previous
// timer chain and drops fetches issued before it. Within an epoch each
// fetch gets an increasing generation and only the response to the latest
// issued fetch is applied, except a 401, which always stops the synchronizer.
type Synchronizer[T any] struct {
	name     string
	fetch    FetchFunc[T]
	interval time.Duration

	target      opsapi.Target
	running     bool
	epoch       uint64
	issued      uint64
	inFlight    int
	snapshot    []T
	lastUpdated time.Time
	err         error

	onUnauthorized func()

	now  func() time.Time
	tick func(time.Duration, func(time.Time) tea.Msg) tea.Cmd
}

// New creates a synchronizer. name must be unique among the synchronizers
// sharing one event loop.
func New[T any](name string, fetch FetchFunc[T], interval time.Duration) *Synchronizer[T] {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Synchronizer[T]{
		name:     name,
		fetch:    fetch,
		interval: interval,
		now:      time.Now,
		tick:     tea.Tick,
	}
}

// OnUnauthorized registers fn to run when a fetch is rejected with 401,
// after the synchronizer has stopped itself.
func (s *Synchronizer[T]) OnUnauthorized(fn func()) {
	s.onUnauthorized = fn
}

// Start discards everything known about the previous target, fetches
// immediately and schedules recurring fetches.
func (s *Synchronizer[T]) Start(target opsapi.Target) tea.Cmd {
	s.epoch++
	s.target = target
	s.running = true
	s.issued = 0
	s.inFlight = 0
	s.snapshot = nil
	s.lastUpdated = time.Time{}
	s.err = nil

	logger.Debug().Str("kind", s.name).Str("target", target.ID()).Uint64("epoch", s.epoch).Msg("Synchronizer started")
	return tea.Batch(s.fetchCmd(), s.scheduleTick())
}

func (s *Synchronizer[T]) Stop() {
	if !s.running {
		return
	}
	s.epoch++
	s.running = false
	s.inFlight = 0
	s.snapshot = nil
	logger.Debug().Str("kind", s.name).Str("target", s.target.ID()).Msg("Synchronizer stopped")
}

// Refresh fetches now through the same path as the timer. It does not
// cancel a fetch that is already in flight; use Busy to disable the trigger.
func (s *Synchronizer[T]) Refresh() tea.Cmd {
	if !s.running {
		return nil
	}
	return s.fetchCmd()
}

// Update applies msg if it belongs to this synchronizer. The boolean reports
// whether it did.
func (s *Synchronizer[T]) Update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case TickMsg:
		if msg.name != s.name {
			return nil, false
		}
		if msg.epoch != s.epoch || !s.running {
			return nil, true
		}
		return tea.Batch(s.fetchCmd(), s.scheduleTick()), true
	case FetchedMsg[T]:
		if msg.name != s.name {
			return nil, false
		}
		s.apply(msg)
		return nil, true
	}
	return nil, false
}

func (s *Synchronizer[T]) apply(msg FetchedMsg[T]) {
	log := logger.Get()

	if msg.epoch != s.epoch {
		log.Debug().Str("kind", s.name).Uint64("epoch", msg.epoch).Msg("Dropping fetch from previous target")
		return
	}
	if s.inFlight > 0 {
		s.inFlight--
	}
	// A 401 ends the session whichever generation it answers.
	if opsapi.IsUnauthorized(msg.err) {
		log.Info().Str("kind", s.name).Str("target", s.target.ID()).Msg("Unauthorized, stopping synchronizer")
		s.epoch++
		s.running = false
		s.inFlight = 0
		s.snapshot = nil
		s.err = msg.err
		if s.onUnauthorized != nil {
			s.onUnauthorized()
		}
		return
	}
	if msg.generation != s.issued {
		log.Debug().Str("kind", s.name).Uint64("generation", msg.generation).Uint64("latest", s.issued).Msg("Dropping superseded fetch")
		return
	}

	if msg.err != nil {
		s.snapshot = nil
		s.err = msg.err
		log.Warn().Err(msg.err).Str("kind", s.name).Str("target", s.target.ID()).Msg("Fetch failed")
		return
	}

	s.snapshot = msg.items
	s.lastUpdated = msg.at
	s.err = nil
}

func (s *Synchronizer[T]) fetchCmd() tea.Cmd {
	s.issued++
	s.inFlight++

	fetch := s.fetch
	target := s.target
	now := s.now
	msg := FetchedMsg[T]{name: s.name, epoch: s.epoch, generation: s.issued}

	return func() tea.Msg {
		items, err := fetch(context.Background(), target)
		msg.items = items
		msg.err = err
		msg.at = now()
		return msg
	}
}

func (s *Synchronizer[T]) scheduleTick() tea.Cmd {
	name, epoch := s.name, s.epoch
	return s.tick(s.interval, func(time.Time) tea.Msg {
		return TickMsg{name: name, epoch: epoch}
	})
}

func (s *Synchronizer[T]) Snapshot() []T {
	return s.snapshot
}

func (s *Synchronizer[T]) Target() opsapi.Target {
	return s.target
}

func (s *Synchronizer[T]) Err() error {
	return s.err
}

func (s *Synchronizer[T]) LastUpdated() time.Time {
	return s.lastUpdated
}

func (s *Synchronizer[T]) Running() bool {
	return s.running
}

func (s *Synchronizer[T]) State() State {
	if s.inFlight > 0 {
		return StateFetching
	}
	return StateIdle
}

// Busy reports whether a fetch is in flight.
func (s *Synchronizer[T]) Busy() bool {
	return s.State() == StateFetching
}
