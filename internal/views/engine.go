package views

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/user/opsboard/internal/tekton"
	"github.com/user/opsboard/pkg/opsapi"
)

// Engine recomputes dashboard views from a snapshot and a Filter. It keeps
// no state between calls apart from the collation rules, so the same inputs
// always give the same view. An Engine is not safe for concurrent use.
type Engine struct {
	collator *collate.Collator
}

func NewEngine(tag language.Tag) *Engine {
	return &Engine{collator: collate.New(tag)}
}

type AppCounts struct {
	Total       int
	Healthy     int
	Degraded    int
	Progressing int
	Missing     int
	Unknown     int
}

type AppsView struct {
	Filter     Filter
	Projects   []string
	Namespaces []string
	Counts     AppCounts
	Rows       []opsapi.App
	Filtered   int
	TotalPages int
}

// Apps runs project, namespace, health and search filters in that order,
// then sorts by name and slices out the requested page. Counts cover the
// filtered set before paging.
func (e *Engine) Apps(snapshot []opsapi.App, f Filter) AppsView {
	search := strings.ToLower(f.Search)

	var byProject []opsapi.App
	for _, app := range snapshot {
		if matches(f.Project, app.Project) {
			byProject = append(byProject, app)
		}
	}

	var filtered []opsapi.App
	for _, app := range byProject {
		if !matches(f.Namespace, app.DeploymentNamespace) {
			continue
		}
		if !matches(f.Status, string(app.Health)) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(app.Name), search) {
			continue
		}
		filtered = append(filtered, app)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return e.collator.CompareString(filtered[i].Name, filtered[j].Name) < 0
	})

	view := AppsView{
		Projects:   e.distinct(snapshot, func(a opsapi.App) string { return a.Project }),
		Namespaces: e.distinct(byProject, func(a opsapi.App) string { return a.DeploymentNamespace }),
		Counts:     countApps(filtered),
		Filtered:   len(filtered),
		TotalPages: TotalPages(len(filtered)),
	}

	f.Page = ClampPage(f.Page, view.TotalPages)
	view.Filter = f

	start, end := pageBounds(f.Page, len(filtered))
	view.Rows = filtered[start:end]
	return view
}

func countApps(apps []opsapi.App) AppCounts {
	counts := AppCounts{Total: len(apps)}
	for _, app := range apps {
		switch app.Health {
		case opsapi.HealthHealthy:
			counts.Healthy++
		case opsapi.HealthDegraded:
			counts.Degraded++
		case opsapi.HealthProgressing:
			counts.Progressing++
		case opsapi.HealthMissing:
			counts.Missing++
		case opsapi.HealthUnknown:
			counts.Unknown++
		}
	}
	return counts
}

func (e *Engine) distinct(apps []opsapi.App, field func(opsapi.App) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, app := range apps {
		v := field(app)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return e.collator.CompareString(out[i], out[j]) < 0
	})
	return out
}

type RunCounts struct {
	Total     int
	Succeeded int
	Failed    int
	Running   int
}

type RunRow struct {
	Run         opsapi.Run
	Status      tekton.Status
	Duration    time.Duration
	HasDuration bool
}

func (r RunRow) DurationText() string {
	return tekton.FormatDuration(r.Duration, r.HasDuration)
}

type RunsView struct {
	Filter     Filter
	Counts     RunCounts
	Rows       []RunRow
	Filtered   int
	TotalPages int
}

// Runs filters by derived status and name, sorts newest start first (runs
// that have not started go last) and pages the result. now is only used for
// the duration of unfinished runs.
func (e *Engine) Runs(snapshot []opsapi.Run, f Filter, now time.Time) RunsView {
	search := strings.ToLower(f.Search)

	var filtered []RunRow
	for _, run := range snapshot {
		status := tekton.EvaluateRun(run)
		if !matches(f.Status, string(status)) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(run.Name()), search) {
			continue
		}
		filtered = append(filtered, RunRow{Run: run, Status: status})
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return startUnix(filtered[i].Run) > startUnix(filtered[j].Run)
	})

	view := RunsView{
		Counts:     countRuns(filtered),
		Filtered:   len(filtered),
		TotalPages: TotalPages(len(filtered)),
	}

	f.Page = ClampPage(f.Page, view.TotalPages)
	view.Filter = f

	start, end := pageBounds(f.Page, len(filtered))
	rows := make([]RunRow, 0, end-start)
	for _, row := range filtered[start:end] {
		row.Duration, row.HasDuration = tekton.RunDuration(row.Run.Status, now)
		rows = append(rows, row)
	}
	view.Rows = rows
	return view
}

// TaskRows derives status and duration for a pipeline run's task runs,
// keeping the order the backend returned.
func (e *Engine) TaskRows(taskRuns []opsapi.Run, now time.Time) []RunRow {
	rows := make([]RunRow, 0, len(taskRuns))
	for _, run := range taskRuns {
		row := RunRow{Run: run, Status: tekton.EvaluateRun(run)}
		row.Duration, row.HasDuration = tekton.RunDuration(run.Status, now)
		rows = append(rows, row)
	}
	return rows
}

func countRuns(rows []RunRow) RunCounts {
	counts := RunCounts{Total: len(rows)}
	for _, row := range rows {
		switch row.Status {
		case tekton.StatusSucceeded:
			counts.Succeeded++
		case tekton.StatusFailed:
			counts.Failed++
		default:
			counts.Running++
		}
	}
	return counts
}

func startUnix(run opsapi.Run) int64 {
	if run.Status.StartTime == nil {
		return 0
	}
	return run.Status.StartTime.UnixMilli()
}
