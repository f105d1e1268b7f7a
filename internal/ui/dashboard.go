package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/user/opsboard/internal/actions"
	"github.com/user/opsboard/internal/tekton"
	"github.com/user/opsboard/internal/views"
	"github.com/user/opsboard/pkg/opsapi"
)

var healthOptions = []string{
	string(opsapi.HealthHealthy),
	string(opsapi.HealthDegraded),
	string(opsapi.HealthProgressing),
	string(opsapi.HealthMissing),
	string(opsapi.HealthUnknown),
}

func statusOptions() []string {
	out := make([]string, 0, len(tekton.Statuses))
	for _, s := range tekton.Statuses {
		out = append(out, string(s))
	}
	return out
}

// cycle returns the option after current, with All in front.
func cycle(options []string, current string) string {
	all := append([]string{views.All}, options...)
	for i, o := range all {
		if o == current {
			return all[(i+1)%len(all)]
		}
	}
	return views.All
}

func (m *Model) filter() *views.Filter {
	if m.screen == ScreenRuns {
		return &m.runFilter
	}
	return &m.appFilter
}

func (m *Model) setFilter(f views.Filter) {
	if *m.filter() != f {
		m.rowCursor = 0
	}
	*m.filter() = f
}

func (m *Model) appsView() views.AppsView {
	return m.engine.Apps(m.apps.Snapshot(), m.appFilter)
}

func (m *Model) runsView() views.RunsView {
	return m.engine.Runs(m.runs.Snapshot(), m.runFilter, time.Now())
}

// page returns the clamped current page and the page count of the visible
// dashboard.
func (m *Model) page() (int, int, int) {
	if m.screen == ScreenRuns {
		v := m.runsView()
		return v.Filter.Page, v.TotalPages, len(v.Rows)
	}
	v := m.appsView()
	return v.Filter.Page, v.TotalPages, len(v.Rows)
}

func (m *Model) updateDashboard(msg tea.KeyMsg) tea.Cmd {
	if m.coord.State() == actions.StateConfirming {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			cmd, err := m.coord.Confirm()
			if err != nil {
				return m.toasts.Error(err.Error())
			}
			return cmd
		case key.Matches(msg, m.keys.Cancel):
			m.coord.Cancel()
		}
		return nil
	}

	if m.searching {
		return m.updateSearch(msg)
	}

	if m.detail != nil {
		if key.Matches(msg, m.keys.Back) {
			m.closeDetail()
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.stopPolling()
		return tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.leaveDashboard()
		return nil
	case key.Matches(msg, m.keys.Logout):
		return m.logout()
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m.search.Focus()
	case key.Matches(msg, m.keys.Refresh):
		return m.refresh()
	case key.Matches(msg, m.keys.Up):
		if m.rowCursor > 0 {
			m.rowCursor--
		}
	case key.Matches(msg, m.keys.Down):
		_, _, rows := m.page()
		if m.rowCursor < rows-1 {
			m.rowCursor++
		}
	case key.Matches(msg, m.keys.PrevPage):
		m.turnPage(-1)
	case key.Matches(msg, m.keys.NextPage):
		m.turnPage(1)
	case key.Matches(msg, m.keys.Status):
		m.cycleStatus()
	case m.screen == ScreenApps:
		return m.updateApps(msg)
	case m.screen == ScreenRuns && key.Matches(msg, m.keys.Select):
		return m.openDetail()
	}
	return nil
}

func (m *Model) updateApps(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Project):
		v := m.appsView()
		m.setFilter(m.appFilter.WithProject(cycle(v.Projects, m.appFilter.Project)))
	case key.Matches(msg, m.keys.Namespace):
		v := m.appsView()
		m.setFilter(m.appFilter.WithNamespace(cycle(v.Namespaces, m.appFilter.Namespace)))
	case key.Matches(msg, m.keys.Restart):
		return m.requestAction(actions.KindRestart)
	case key.Matches(msg, m.keys.Sync):
		return m.requestAction(actions.KindSync)
	}
	return nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return nil
	case tea.KeyEsc:
		m.resetSearch()
		return nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.setFilter(m.filter().WithSearch(m.search.Value()))
	return cmd
}

func (m *Model) resetSearch() {
	m.searching = false
	m.search.Blur()
	m.search.SetValue("")
	m.appFilter = m.appFilter.WithSearch("")
	m.runFilter = m.runFilter.WithSearch("")
}

func (m *Model) cycleStatus() {
	options := healthOptions
	if m.screen == ScreenRuns {
		options = statusOptions()
	}
	f := m.filter()
	m.setFilter(f.WithStatus(cycle(options, f.Status)))
}

func (m *Model) turnPage(delta int) {
	page, total, _ := m.page()
	m.setFilter(m.filter().WithPage(views.ClampPage(page+delta, total)))
}

// refresh is disabled while a fetch is in flight.
func (m *Model) refresh() tea.Cmd {
	if m.screen == ScreenRuns {
		if m.runs.Busy() {
			return nil
		}
		return m.runs.Refresh()
	}
	if m.apps.Busy() {
		return nil
	}
	return m.apps.Refresh()
}

func (m *Model) requestAction(kind actions.Kind) tea.Cmd {
	if !m.coord.Idle() {
		return nil
	}
	rows := m.appsView().Rows
	if m.rowCursor >= len(rows) {
		return nil
	}
	if err := m.coord.RequestAction(kind, rows[m.rowCursor], m.apps.Target()); err != nil {
		return m.toasts.Error(err.Error())
	}
	return nil
}

func (m *Model) leaveDashboard() {
	m.stopPolling()
	m.coord.Cancel()
	m.closeDetail()
	m.resetSearch()
	m.screen = ScreenTargets
}

// openDetail fetches the task runs of the selected pipeline run. Only the
// response to the most recent request is shown.
func (m *Model) openDetail() tea.Cmd {
	rows := m.runsView().Rows
	if m.rowCursor >= len(rows) {
		return nil
	}
	run := rows[m.rowCursor].Run

	m.detailGen++
	m.detail = &runDetail{run: run, loading: true}

	gen := m.detailGen
	backend := m.opts.Backend
	target := m.runs.Target().Key
	namespace := run.Metadata.Namespace
	if namespace == "" {
		namespace = m.opts.TektonNamespace
	}

	return func() tea.Msg {
		items, err := backend.TaskRuns(context.Background(), namespace, run.Name(), target)
		return taskRunsLoadedMsg{generation: gen, items: items, err: err}
	}
}

func (m *Model) closeDetail() {
	m.detail = nil
	m.detailGen++
}

func (m *Model) handleTaskRuns(msg taskRunsLoadedMsg) tea.Cmd {
	if m.detail == nil || msg.generation != m.detailGen {
		return nil
	}
	if opsapi.IsUnauthorized(msg.err) {
		return m.expireSession()
	}
	m.detail.loading = false
	m.detail.items = msg.items
	m.detail.err = msg.err
	return nil
}

func (m *Model) viewHeader(target opsapi.Target) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("opsboard") + "  " + target.Name)
	if user := m.opts.Session.Username(); user != "" {
		b.WriteString(mutedStyle.Render("  " + user))
	}
	b.WriteString("\n")
	return b.String()
}

func (m *Model) viewSyncStatus(busy bool, lastUpdated time.Time, err error) string {
	var parts []string
	if busy {
		parts = append(parts, m.spinner.View()+" refreshing")
	}
	if !lastUpdated.IsZero() {
		parts = append(parts, mutedStyle.Render(fmt.Sprintf("Last updated %s (%s)", lastUpdated.Format("15:04:05"), humanize.Time(lastUpdated))))
	}
	line := strings.Join(parts, "  ")
	if err != nil {
		line += "\n" + errorStyle.Render(err.Error())
	}
	return line + "\n"
}

func (m *Model) viewFilterLine(f views.Filter, total int, withProject bool) string {
	var parts []string
	if withProject {
		parts = append(parts, "project: "+f.Project, "namespace: "+f.Namespace)
	}
	parts = append(parts, "status: "+f.Status, fmt.Sprintf("page %d/%d", f.Page, max(1, total)))

	line := mutedStyle.Render(strings.Join(parts, "  "))
	if m.searching || m.search.Value() != "" {
		line += "\n" + m.search.View()
	}
	return line + "\n"
}

func (m *Model) viewFooter(bindings []key.Binding) string {
	var b strings.Builder
	b.WriteString("\n")

	if req, ok := m.coord.Pending(); ok {
		switch m.coord.State() {
		case actions.StateConfirming:
			b.WriteString(promptStyle.Render(req.Describe()+" (y/n)") + "\n")
		case actions.StateExecuting:
			b.WriteString(m.spinner.View() + fmt.Sprintf(" Executing %s of %s...", req.Kind, req.App.Name) + "\n")
		}
	}

	if toast, ok := m.toasts.Current(); ok {
		b.WriteString(toastStyle(toast.Kind).Render(toast.Text) + "\n")
	}

	b.WriteString(m.help.ShortHelpView(bindings))
	return b.String()
}
