package tekton

import (
	"fmt"
	"time"

	"github.com/user/opsboard/pkg/opsapi"
)

type Status string

const (
	StatusSucceeded Status = "Succeeded"
	StatusFailed    Status = "Failed"
	StatusRunning   Status = "Running"
)

// Statuses lists every value Evaluate can return, in display order.
var Statuses = []Status{StatusSucceeded, StatusFailed, StatusRunning}

const succeededCondition = "Succeeded"

// Evaluate classifies a run from its condition list. Anything other than a
// Succeeded condition with status "True" or "False" counts as running.
func Evaluate(conditions []opsapi.Condition) Status {
	for _, c := range conditions {
		if c.Type != succeededCondition {
			continue
		}
		switch c.Status {
		case "True":
			return StatusSucceeded
		case "False":
			return StatusFailed
		default:
			return StatusRunning
		}
	}
	return StatusRunning
}

func EvaluateRun(run opsapi.Run) Status {
	return Evaluate(run.Status.Conditions)
}

// RunDuration is completion minus start, or now minus start while the run is
// still going. ok is false when the run has not started.
func RunDuration(status opsapi.RunStatus, now time.Time) (d time.Duration, ok bool) {
	if status.StartTime == nil {
		return 0, false
	}
	if status.CompletionTime != nil {
		return status.CompletionTime.Sub(*status.StartTime), true
	}
	return now.Sub(*status.StartTime), true
}

func FormatDuration(d time.Duration, ok bool) string {
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
