package tekton_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/user/opsboard/internal/tekton"
	"github.com/user/opsboard/pkg/opsapi"
)

func TestEvaluate(t *testing.T) {
	type tc struct {
		name       string
		conditions []opsapi.Condition
		want       tekton.Status
	}

	cases := []tc{
		{
			name: "nil conditions",
			want: tekton.StatusRunning,
		},
		{
			name:       "empty conditions",
			conditions: []opsapi.Condition{},
			want:       tekton.StatusRunning,
		},
		{
			name:       "succeeded true",
			conditions: []opsapi.Condition{{Type: "Succeeded", Status: "True"}},
			want:       tekton.StatusSucceeded,
		},
		{
			name:       "succeeded false",
			conditions: []opsapi.Condition{{Type: "Succeeded", Status: "False", Reason: "Failed"}},
			want:       tekton.StatusFailed,
		},
		{
			name:       "succeeded unknown",
			conditions: []opsapi.Condition{{Type: "Succeeded", Status: "Unknown", Reason: "Running"}},
			want:       tekton.StatusRunning,
		},
		{
			name:       "other condition only",
			conditions: []opsapi.Condition{{Type: "Ready", Status: "True"}},
			want:       tekton.StatusRunning,
		},
		{
			name: "succeeded after other conditions",
			conditions: []opsapi.Condition{
				{Type: "Ready", Status: "False"},
				{Type: "Succeeded", Status: "True"},
			},
			want: tekton.StatusSucceeded,
		},
		{
			name:       "lowercase status is not true",
			conditions: []opsapi.Condition{{Type: "Succeeded", Status: "true"}},
			want:       tekton.StatusRunning,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, tekton.Evaluate(c.conditions))
		})
	}
}

func TestRunDuration(t *testing.T) {
	start := time.Date(2025, 1, 13, 12, 0, 0, 0, time.UTC)
	done := start.Add(90 * time.Second)
	now := start.Add(5 * time.Minute)

	type tc struct {
		name    string
		status  opsapi.RunStatus
		want    time.Duration
		wantOK  bool
		wantFmt string
	}

	cases := []tc{
		{
			name:    "completed",
			status:  opsapi.RunStatus{StartTime: &start, CompletionTime: &done},
			want:    90 * time.Second,
			wantOK:  true,
			wantFmt: "90.0s",
		},
		{
			name:    "still running",
			status:  opsapi.RunStatus{StartTime: &start},
			want:    5 * time.Minute,
			wantOK:  true,
			wantFmt: "300.0s",
		},
		{
			name:    "not started",
			status:  opsapi.RunStatus{CompletionTime: &done},
			wantFmt: "-",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d, ok := tekton.RunDuration(c.status, now)

			require.Equal(t, c.wantOK, ok)
			require.Equal(t, c.want, d)
			require.Equal(t, c.wantFmt, tekton.FormatDuration(d, ok))
		})
	}
}
