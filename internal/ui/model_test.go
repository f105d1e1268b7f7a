package ui_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/user/opsboard/internal/ui"
	"github.com/user/opsboard/pkg/opsapi"
)

type fakeSession struct {
	token    string
	username string
	loginErr error
}

func (s *fakeSession) Login(ctx context.Context, username, password string) (string, error) {
	if s.loginErr != nil {
		return "", s.loginErr
	}
	s.token = "jwt-" + username
	s.username = username
	return s.token, nil
}

func (s *fakeSession) Authenticated() bool { return s.token != "" }
func (s *fakeSession) Username() string    { return s.username }
func (s *fakeSession) Invalidate()         { s.token = ""; s.username = "" }

// fakeBackend answers like the real client, including invalidating the
// session when it rejects a request with 401.
type fakeBackend struct {
	sess     *fakeSession
	targets  []opsapi.Target
	apps     []opsapi.App
	appsErr  error
	runs     []opsapi.Run
	taskRuns []opsapi.Run
	result   opsapi.ActionResult
	restarts []opsapi.RestartRequest
}

func (b *fakeBackend) Targets(ctx context.Context) ([]opsapi.Target, error) {
	return b.targets, nil
}

func (b *fakeBackend) Apps(ctx context.Context, target string) ([]opsapi.App, error) {
	if opsapi.IsUnauthorized(b.appsErr) {
		b.sess.Invalidate()
	}
	if b.appsErr != nil {
		return nil, b.appsErr
	}
	return b.apps, nil
}

func (b *fakeBackend) PipelineRuns(ctx context.Context, namespace, target string) ([]opsapi.Run, error) {
	return b.runs, nil
}

func (b *fakeBackend) TaskRuns(ctx context.Context, namespace, pipelineRunName, target string) ([]opsapi.Run, error) {
	return b.taskRuns, nil
}

func (b *fakeBackend) Restart(ctx context.Context, req opsapi.RestartRequest) (opsapi.ActionResult, error) {
	b.restarts = append(b.restarts, req)
	return b.result, nil
}

func (b *fakeBackend) Sync(ctx context.Context, req opsapi.SyncRequest) (opsapi.ActionResult, error) {
	return b.result, nil
}

func newBackend(sess *fakeSession) *fakeBackend {
	return &fakeBackend{
		sess: sess,
		targets: []opsapi.Target{
			{Type: opsapi.TargetArgoCD, Key: "prod", Name: "Production"},
			{Type: opsapi.TargetTekton, Key: "ci", Name: "CI Cluster"},
		},
		apps: []opsapi.App{
			{Name: "checkout", Project: "shop", DeploymentName: "checkout-api", DeploymentNamespace: "web", Health: opsapi.HealthHealthy},
			{Name: "billing", Project: "payments", DeploymentName: "billing", DeploymentNamespace: "pay", Health: opsapi.HealthDegraded},
		},
		runs: []opsapi.Run{
			{Metadata: opsapi.ObjectMeta{UID: "1", Name: "build-42", Namespace: "tekton"}},
		},
		taskRuns: []opsapi.Run{
			{Metadata: opsapi.ObjectMeta{Name: "build-42-compile"}},
		},
		result: opsapi.ActionResult{StatusCode: 200, Result: "restarted"},
	}
}

func newModel(sess *fakeSession, backend *fakeBackend) *ui.Model {
	return ui.New(ui.Options{
		Backend:      backend,
		Session:      sess,
		PollInterval: time.Hour,
	})
}

// run executes cmd and feeds every message that arrives promptly back into
// the model. Timers never fire within the window and are dropped.
func run(m *ui.Model, cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}

		done := make(chan tea.Msg, 1)
		go func() { done <- next() }()

		var msg tea.Msg
		select {
		case msg = <-done:
		case <-time.After(50 * time.Millisecond):
			continue
		}

		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		_, follow := m.Update(msg)
		queue = append(queue, follow)
	}
}

func press(m *ui.Model, keys ...tea.KeyMsg) {
	for _, k := range keys {
		_, cmd := m.Update(k)
		run(m, cmd)
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func loggedIn(t *testing.T) (*ui.Model, *fakeSession, *fakeBackend) {
	t.Helper()
	sess := &fakeSession{token: "jwt", username: "alice"}
	backend := newBackend(sess)
	m := newModel(sess, backend)
	run(m, m.Init())
	require.Equal(t, ui.ScreenTargets, m.Screen())
	return m, sess, backend
}

func TestModel_LoginFlow(t *testing.T) {
	sess := &fakeSession{}
	backend := newBackend(sess)
	m := newModel(sess, backend)
	require.Equal(t, ui.ScreenLogin, m.Screen())

	press(m, runes("alice"), tab, runes("secret"), enter)

	require.True(t, sess.Authenticated())
	require.Equal(t, ui.ScreenTargets, m.Screen())
	require.Contains(t, m.View(), "Production")
	require.Contains(t, m.View(), "CI Cluster")
}

func TestModel_LoginRejected(t *testing.T) {
	sess := &fakeSession{loginErr: &opsapi.AuthError{StatusCode: 401, Message: opsapi.DefaultLoginError}}
	m := newModel(sess, newBackend(sess))

	press(m, runes("alice"), tab, runes("wrong"), enter)

	require.Equal(t, ui.ScreenLogin, m.Screen())
	require.Contains(t, m.View(), opsapi.DefaultLoginError)
}

func TestModel_UnauthorizedFetchReturnsToLogin(t *testing.T) {
	m, sess, backend := loggedIn(t)

	press(m, enter)
	require.Equal(t, ui.ScreenApps, m.Screen())
	require.True(t, m.Polling())
	require.Contains(t, m.View(), "checkout")

	backend.appsErr = &opsapi.AuthError{StatusCode: 401, Message: "token expired"}
	press(m, runes("r"))

	require.Equal(t, ui.ScreenLogin, m.Screen())
	require.False(t, sess.Authenticated())
	require.False(t, m.Polling())
	require.Contains(t, m.View(), "Session expired")
}

func TestModel_ReturnToLoginFocusesUsername(t *testing.T) {
	t.Run("expired", func(t *testing.T) {
		m, _, backend := loggedIn(t)
		press(m, enter)

		backend.appsErr = &opsapi.AuthError{StatusCode: 401, Message: "token expired"}
		_, cmd := m.Update(runes("r"))
		require.NotNil(t, cmd)
		_, follow := m.Update(cmd())

		require.Equal(t, ui.ScreenLogin, m.Screen())
		require.NotNil(t, follow, "login form must start its cursor")
	})

	t.Run("logout", func(t *testing.T) {
		m, sess, _ := loggedIn(t)

		_, cmd := m.Update(runes("L"))

		require.Equal(t, ui.ScreenLogin, m.Screen())
		require.False(t, sess.Authenticated())
		require.NotNil(t, cmd, "login form must start its cursor")
	})
}

func TestModel_FetchErrorKeepsPolling(t *testing.T) {
	m, _, backend := loggedIn(t)
	press(m, enter)

	backend.appsErr = &opsapi.APIError{StatusCode: 502, Message: "bad gateway"}
	press(m, runes("r"))

	require.Equal(t, ui.ScreenApps, m.Screen())
	require.True(t, m.Polling())
	require.Contains(t, m.View(), "bad gateway")
	require.NotContains(t, m.View(), "checkout")
}

func TestModel_RestartConfirmFlow(t *testing.T) {
	m, _, backend := loggedIn(t)
	press(m, enter)

	// rows are sorted by name, so billing is first
	press(m, runes("j"), runes("R"))
	require.Contains(t, m.View(), "Restart deployment checkout-api in web on Production?")
	require.Empty(t, backend.restarts)

	press(m, runes("y"))

	require.Equal(t, []opsapi.RestartRequest{{
		AppName:             "checkout",
		DeploymentName:      "checkout-api",
		DeploymentNamespace: "web",
		Target:              "prod",
	}}, backend.restarts)
	require.Contains(t, m.View(), "restarted")
}

func TestModel_RestartCancelled(t *testing.T) {
	m, _, backend := loggedIn(t)
	press(m, enter)

	press(m, runes("R"), runes("n"))

	require.NotContains(t, m.View(), "Restart deployment")
	require.Empty(t, backend.restarts)
}

func TestModel_FilterChangeResetsPage(t *testing.T) {
	m, _, backend := loggedIn(t)
	backend.apps = nil
	for i := 0; i < 25; i++ {
		backend.apps = append(backend.apps, opsapi.App{Name: fmt.Sprintf("app-%02d", i), Health: opsapi.HealthHealthy})
	}
	press(m, enter)
	require.Contains(t, m.View(), "page 1/3")

	press(m, runes("]"), runes("]"))
	require.Contains(t, m.View(), "page 3/3")

	press(m, runes("]"))
	require.Contains(t, m.View(), "page 3/3")

	press(m, runes("h"))
	require.Contains(t, m.View(), "status: Healthy")
	require.Contains(t, m.View(), "page 1/3")
}

func TestModel_SearchFiltersRows(t *testing.T) {
	m, _, _ := loggedIn(t)
	press(m, enter)

	press(m, runes("/"), runes("bill"), enter)

	view := m.View()
	require.Contains(t, view, "billing")
	require.NotContains(t, view, "checkout")
}

func TestModel_TaskRunDetail(t *testing.T) {
	m, _, _ := loggedIn(t)
	press(m, runes("j"), enter)
	require.Equal(t, ui.ScreenRuns, m.Screen())
	require.Contains(t, m.View(), "build-42")

	press(m, enter)
	require.Contains(t, m.View(), "build-42-compile")

	press(m, esc)
	require.Equal(t, ui.ScreenRuns, m.Screen())
	require.NotContains(t, m.View(), "build-42-compile")
}

func TestModel_StaleTaskRunsIgnored(t *testing.T) {
	m, _, _ := loggedIn(t)
	press(m, runes("j"), enter)

	_, fetch := m.Update(enter)
	press(m, esc)
	run(m, fetch)

	require.NotContains(t, m.View(), "build-42-compile")
	require.NotContains(t, m.View(), "Loading task runs")
}

func TestModel_BackToTargetsStopsPolling(t *testing.T) {
	m, _, _ := loggedIn(t)
	press(m, enter)
	require.True(t, m.Polling())

	press(m, esc)

	require.Equal(t, ui.ScreenTargets, m.Screen())
	require.False(t, m.Polling())
}
