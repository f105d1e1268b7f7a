package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/opsboard/internal/actions"
	"github.com/user/opsboard/pkg/opsapi"
)

type loginForm struct {
	username   textinput.Model
	password   textinput.Model
	focus      int
	submitting bool
	message    string
}

func newLoginForm() loginForm {
	username := textinput.New()
	username.Prompt = "Username: "
	username.CharLimit = 128

	password := textinput.New()
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 256

	return loginForm{username: username, password: password}
}

func (f *loginForm) reset(message string) tea.Cmd {
	f.message = message
	f.submitting = false
	f.password.SetValue("")
	return f.focusField(0)
}

func (f *loginForm) focusField(i int) tea.Cmd {
	f.focus = i
	if i == 0 {
		f.password.Blur()
		return f.username.Focus()
	}
	f.username.Blur()
	return f.password.Focus()
}

func (f *loginForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.focus == 0 {
		f.username, cmd = f.username.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return cmd
}

func (m *Model) updateLogin(msg tea.KeyMsg) tea.Cmd {
	f := &m.login
	if f.submitting {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.NextField), key.Matches(msg, m.keys.PrevField):
		return f.focusField(1 - f.focus)
	case msg.Type == tea.KeyEnter:
		if f.focus == 0 {
			return f.focusField(1)
		}
		return m.submitLogin()
	}
	return f.update(msg)
}

func (m *Model) submitLogin() tea.Cmd {
	f := &m.login
	username := strings.TrimSpace(f.username.Value())
	password := f.password.Value()
	if username == "" || password == "" {
		f.message = "Username and password are required"
		return nil
	}

	f.submitting = true
	f.message = ""
	sess := m.opts.Session
	return func() tea.Msg {
		_, err := sess.Login(context.Background(), username, password)
		return loginResultMsg{username: username, err: err}
	}
}

func (m *Model) handleLogin(msg loginResultMsg) tea.Cmd {
	f := &m.login
	f.submitting = false
	if msg.err != nil {
		if opsapi.IsNetwork(msg.err) {
			f.message = actions.ConnectionErrorText
		} else {
			f.message = msg.err.Error()
		}
		f.password.SetValue("")
		return nil
	}

	f.password.SetValue("")
	f.message = ""
	f.username.Blur()
	f.password.Blur()
	m.screen = ScreenTargets
	return m.loadTargets()
}

func (m *Model) viewLogin() string {
	var b strings.Builder
	f := &m.login

	b.WriteString(titleStyle.Render("opsboard") + mutedStyle.Render("  sign in") + "\n\n")
	b.WriteString(f.username.View() + "\n")
	b.WriteString(f.password.View() + "\n\n")

	switch {
	case f.submitting:
		b.WriteString(m.spinner.View() + mutedStyle.Render(" Signing in...") + "\n")
	case f.message != "":
		b.WriteString(errorStyle.Render(f.message) + "\n")
	}

	b.WriteString("\n" + mutedStyle.Render("tab: switch field  enter: sign in  ctrl+c: quit"))
	return b.String()
}
