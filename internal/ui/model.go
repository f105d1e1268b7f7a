package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/language"

	"github.com/user/opsboard/internal/actions"
	"github.com/user/opsboard/internal/logger"
	"github.com/user/opsboard/internal/notify"
	"github.com/user/opsboard/internal/poller"
	"github.com/user/opsboard/internal/views"
	"github.com/user/opsboard/pkg/opsapi"
)

type Screen int

const (
	ScreenLogin Screen = iota
	ScreenTargets
	ScreenApps
	ScreenRuns
)

func (s Screen) String() string {
	switch s {
	case ScreenTargets:
		return "targets"
	case ScreenApps:
		return "apps"
	case ScreenRuns:
		return "pipelineruns"
	default:
		return "login"
	}
}

// Backend is the part of the ops API the dashboard talks to.
type Backend interface {
	actions.Executor
	Targets(ctx context.Context) ([]opsapi.Target, error)
	Apps(ctx context.Context, target string) ([]opsapi.App, error)
	PipelineRuns(ctx context.Context, namespace, target string) ([]opsapi.Run, error)
	TaskRuns(ctx context.Context, namespace, pipelineRunName, target string) ([]opsapi.Run, error)
}

type Session interface {
	Login(ctx context.Context, username, password string) (string, error)
	Authenticated() bool
	Username() string
	Invalidate()
}

type Options struct {
	Backend         Backend
	Session         Session
	Recorder        actions.Recorder
	Engine          *views.Engine
	PollInterval    time.Duration
	TektonNamespace string
}

type loginResultMsg struct {
	username string
	err      error
}

type targetsLoadedMsg struct {
	targets []opsapi.Target
	err     error
}

type taskRunsLoadedMsg struct {
	generation uint64
	items      []opsapi.Run
	err        error
}

type runDetail struct {
	run     opsapi.Run
	items   []opsapi.Run
	err     error
	loading bool
}

// Model routes between the login form, the target picker and the two
// dashboards. It owns one synchronizer per resource kind; only the one
// behind the visible dashboard runs.
type Model struct {
	opts    Options
	engine  *views.Engine
	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	screen  Screen
	width   int

	login loginForm

	targets        []opsapi.Target
	targetsErr     error
	targetsLoading bool
	targetCursor   int

	apps      *poller.Synchronizer[opsapi.App]
	runs      *poller.Synchronizer[opsapi.Run]
	appFilter views.Filter
	runFilter views.Filter
	rowCursor int
	search    textinput.Model
	searching bool

	detail    *runDetail
	detailGen uint64

	toasts *notify.Channel
	coord  *actions.Coordinator

	// pending holds a command produced inside a synchronizer callback.
	pending tea.Cmd
}

func New(opts Options) *Model {
	engine := opts.Engine
	if engine == nil {
		engine = views.NewEngine(language.English)
	}
	if opts.TektonNamespace == "" {
		opts.TektonNamespace = "tekton"
	}

	backend := opts.Backend
	namespace := opts.TektonNamespace

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search by name"
	search.CharLimit = 64

	s := spinner.New()
	s.Spinner = spinner.Dot

	toasts := notify.NewChannel()

	m := &Model{
		opts:      opts,
		engine:    engine,
		keys:      DefaultKeyMap,
		help:      help.New(),
		spinner:   s,
		login:     newLoginForm(),
		search:    search,
		appFilter: views.NewFilter(),
		runFilter: views.NewFilter(),
		toasts:    toasts,
		coord:     actions.NewCoordinator(backend, opts.Recorder, toasts),
		apps: poller.New[opsapi.App]("apps", func(ctx context.Context, t opsapi.Target) ([]opsapi.App, error) {
			return backend.Apps(ctx, t.Key)
		}, opts.PollInterval),
		runs: poller.New[opsapi.Run]("pipelineruns", func(ctx context.Context, t opsapi.Target) ([]opsapi.Run, error) {
			return backend.PipelineRuns(ctx, namespace, t.Key)
		}, opts.PollInterval),
	}
	m.apps.OnUnauthorized(func() { m.pending = m.expireSession() })
	m.runs.OnUnauthorized(func() { m.pending = m.expireSession() })

	if opts.Session.Authenticated() {
		m.screen = ScreenTargets
	} else {
		m.login.reset("")
	}
	return m
}

func (m *Model) Screen() Screen {
	return m.screen
}

// Polling reports whether any synchronizer is running.
func (m *Model) Polling() bool {
	return m.apps.Running() || m.runs.Running()
}

func (m *Model) Init() tea.Cmd {
	if m.screen == ScreenTargets {
		return tea.Batch(m.spinner.Tick, m.loadTargets())
	}
	return tea.Batch(m.spinner.Tick, textinput.Blink)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.toasts.Update(msg) {
		return m, nil
	}
	if cmd, ok := m.apps.Update(msg); ok {
		return m, tea.Batch(cmd, m.takePending())
	}
	if cmd, ok := m.runs.Update(msg); ok {
		return m, tea.Batch(cmd, m.takePending())
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case actions.CompletedMsg:
		cmd, _ := m.coord.Update(msg)
		if msg.Outcome.Unauthorized() {
			return m, tea.Batch(cmd, m.expireSession())
		}
		return m, cmd
	case loginResultMsg:
		return m, m.handleLogin(msg)
	case targetsLoadedMsg:
		return m, m.handleTargets(msg)
	case taskRunsLoadedMsg:
		return m, m.handleTaskRuns(msg)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, m.forwardInput(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.ForceQuit) {
		m.stopPolling()
		return tea.Quit
	}

	switch m.screen {
	case ScreenLogin:
		return m.updateLogin(msg)
	case ScreenTargets:
		return m.updateTargets(msg)
	default:
		return m.updateDashboard(msg)
	}
}

// forwardInput passes cursor blink and similar messages to whichever text
// input has focus.
func (m *Model) forwardInput(msg tea.Msg) tea.Cmd {
	switch {
	case m.screen == ScreenLogin:
		return m.login.update(msg)
	case m.searching:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) stopPolling() {
	m.apps.Stop()
	m.runs.Stop()
}

// expireSession is the single place a rejected token lands: the session is
// dropped, every synchronizer stops and the login form comes back.
func (m *Model) expireSession() tea.Cmd {
	logger.Info().Str("screen", m.screen.String()).Msg("Session expired, returning to login")
	return m.toLogin(actions.SessionExpiredText)
}

func (m *Model) logout() tea.Cmd {
	logger.Info().Str("user", m.opts.Session.Username()).Msg("Logging out")
	return m.toLogin("")
}

func (m *Model) takePending() tea.Cmd {
	cmd := m.pending
	m.pending = nil
	return cmd
}

// toLogin returns the focus command of the login form.
func (m *Model) toLogin(message string) tea.Cmd {
	m.opts.Session.Invalidate()
	m.stopPolling()
	m.coord.Cancel()
	m.closeDetail()
	m.resetSearch()
	m.targets = nil
	m.targetsErr = nil
	m.screen = ScreenLogin
	return m.login.reset(message)
}

func (m *Model) View() string {
	switch m.screen {
	case ScreenLogin:
		return m.viewLogin()
	case ScreenTargets:
		return m.viewTargets()
	case ScreenApps:
		return m.viewApps()
	default:
		return m.viewRuns()
	}
}
