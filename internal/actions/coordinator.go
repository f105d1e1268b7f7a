package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/user/opsboard/internal/database"
	"github.com/user/opsboard/internal/logger"
	"github.com/user/opsboard/internal/notify"
	"github.com/user/opsboard/pkg/opsapi"
)

const (
	UnknownErrorText    = "Unknown error!"
	ConnectionErrorText = "Connection error!"
	SessionExpiredText  = "Session expired"
)

var (
	ErrBusy        = errors.New("another action is pending")
	ErrNotPending  = errors.New("no action awaiting confirmation")
	ErrUnknownKind = errors.New("unknown action kind")
)

type Kind string

const (
	KindRestart Kind = "restart"
	KindSync    Kind = "sync"
)

type State int

const (
	StateIdle State = iota
	StateConfirming
	StateExecuting
)

func (s State) String() string {
	switch s {
	case StateConfirming:
		return "confirming"
	case StateExecuting:
		return "executing"
	default:
		return "idle"
	}
}

type Executor interface {
	Restart(ctx context.Context, req opsapi.RestartRequest) (opsapi.ActionResult, error)
	Sync(ctx context.Context, req opsapi.SyncRequest) (opsapi.ActionResult, error)
}

// Recorder stores the outcome of every executed action.
type Recorder interface {
	Save(ctx context.Context, record *database.ActionRecord) error
}

type Request struct {
	ID          string
	Kind        Kind
	App         opsapi.App
	Target      opsapi.Target
	RequestedAt time.Time
}

// Describe phrases the request as a confirmation question.
func (r Request) Describe() string {
	if r.Kind == KindRestart {
		return fmt.Sprintf("Restart deployment %s in %s on %s?", r.App.DeploymentName, r.App.DeploymentNamespace, r.Target.Name)
	}
	return fmt.Sprintf("Sync application %s on %s?", r.App.Name, r.Target.Name)
}

type OutcomeStatus string

const (
	OutcomeSucceeded    OutcomeStatus = "succeeded"
	OutcomeFailed       OutcomeStatus = "failed"
	OutcomeNetworkError OutcomeStatus = "network_error"
	OutcomeUnauthorized OutcomeStatus = "unauthorized"
)

type Outcome struct {
	Request Request
	Status  OutcomeStatus
	Message string
	Err     error
}

func (o Outcome) Succeeded() bool {
	return o.Status == OutcomeSucceeded
}

func (o Outcome) Unauthorized() bool {
	return o.Status == OutcomeUnauthorized
}

// CompletedMsg reports the end of an executed action.
type CompletedMsg struct {
	Outcome Outcome
}

// Coordinator runs the confirm, execute and report cycle for mutating
// calls. At most one action is pending at any time.
type Coordinator struct {
	exec     Executor
	recorder Recorder
	toasts   *notify.Channel

	state   State
	pending *Request
	now     func() time.Time
}

func NewCoordinator(exec Executor, recorder Recorder, toasts *notify.Channel) *Coordinator {
	return &Coordinator{
		exec:     exec,
		recorder: recorder,
		toasts:   toasts,
		now:      time.Now,
	}
}

func (c *Coordinator) State() State {
	return c.state
}

func (c *Coordinator) Idle() bool {
	return c.state == StateIdle
}

// Pending returns the request awaiting confirmation or execution.
func (c *Coordinator) Pending() (Request, bool) {
	if c.pending == nil {
		return Request{}, false
	}
	return *c.pending, true
}

// RequestAction captures an action for confirmation. Nothing is sent yet.
func (c *Coordinator) RequestAction(kind Kind, app opsapi.App, target opsapi.Target) error {
	if c.state != StateIdle {
		return ErrBusy
	}
	if kind != KindRestart && kind != KindSync {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	c.pending = &Request{
		ID:          uuid.NewString(),
		Kind:        kind,
		App:         app,
		Target:      target,
		RequestedAt: c.now(),
	}
	c.state = StateConfirming
	return nil
}

func (c *Coordinator) Cancel() {
	if c.state != StateConfirming {
		return
	}
	c.pending = nil
	c.state = StateIdle
}

// Confirm sends the pending request. The returned command yields a
// CompletedMsg which must be fed back through Update.
func (c *Coordinator) Confirm() (tea.Cmd, error) {
	if c.state != StateConfirming || c.pending == nil {
		return nil, ErrNotPending
	}
	c.state = StateExecuting

	req := *c.pending
	exec, recorder, now := c.exec, c.recorder, c.now

	logger.Info().Str("action_id", req.ID).Str("kind", string(req.Kind)).Str("app", req.App.Name).Str("target", req.Target.Key).Msg("Executing action")

	return func() tea.Msg {
		outcome := execute(context.Background(), exec, req)
		record(recorder, outcome, now())
		return CompletedMsg{Outcome: outcome}
	}, nil
}

// Update consumes a CompletedMsg for the pending request, returns the
// coordinator to idle and shows the outcome as a toast.
func (c *Coordinator) Update(msg tea.Msg) (tea.Cmd, bool) {
	done, ok := msg.(CompletedMsg)
	if !ok {
		return nil, false
	}
	if c.pending == nil || c.pending.ID != done.Outcome.Request.ID {
		return nil, true
	}

	c.pending = nil
	c.state = StateIdle

	o := done.Outcome
	logger.Info().Str("action_id", o.Request.ID).Str("status", string(o.Status)).Str("message", o.Message).Msg("Action finished")

	if c.toasts == nil {
		return nil, true
	}
	if o.Succeeded() {
		return c.toasts.Success(o.Message), true
	}
	return c.toasts.Error(o.Message), true
}

func execute(ctx context.Context, exec Executor, req Request) Outcome {
	var (
		result opsapi.ActionResult
		err    error
	)
	switch req.Kind {
	case KindRestart:
		result, err = exec.Restart(ctx, opsapi.RestartRequest{
			AppName:             req.App.Name,
			DeploymentName:      req.App.DeploymentName,
			DeploymentNamespace: req.App.DeploymentNamespace,
			Target:              req.Target.Key,
		})
	case KindSync:
		result, err = exec.Sync(ctx, opsapi.SyncRequest{
			AppName: req.App.Name,
			Target:  req.Target.Key,
		})
	}

	return Classify(req, result, err)
}

// Classify turns a call's result into an Outcome. A success needs a 2xx
// status and a result field; anything else is a failure carrying the error
// field or a generic message.
func Classify(req Request, result opsapi.ActionResult, err error) Outcome {
	out := Outcome{Request: req, Err: err}

	switch {
	case err != nil && opsapi.IsUnauthorized(err):
		out.Status = OutcomeUnauthorized
		out.Message = SessionExpiredText
	case err != nil && opsapi.IsNetwork(err):
		out.Status = OutcomeNetworkError
		out.Message = ConnectionErrorText
	case err != nil:
		out.Status = OutcomeFailed
		out.Message = UnknownErrorText
	case result.Succeeded():
		out.Status = OutcomeSucceeded
		out.Message = result.Result
	default:
		out.Status = OutcomeFailed
		out.Message = result.Error
		if out.Message == "" {
			out.Message = UnknownErrorText
		}
		out.Err = &opsapi.ActionError{Message: out.Message}
	}
	return out
}

func record(recorder Recorder, o Outcome, completedAt time.Time) {
	if recorder == nil {
		return
	}
	rec := &database.ActionRecord{
		ID:                  o.Request.ID,
		Kind:                string(o.Request.Kind),
		AppName:             o.Request.App.Name,
		DeploymentName:      o.Request.App.DeploymentName,
		DeploymentNamespace: o.Request.App.DeploymentNamespace,
		TargetKey:           o.Request.Target.Key,
		Outcome:             string(o.Status),
		Message:             o.Message,
		RequestedAt:         o.Request.RequestedAt.Unix(),
		CompletedAt:         completedAt.Unix(),
	}
	if err := recorder.Save(context.Background(), rec); err != nil {
		logger.Warn().Err(err).Str("action_id", o.Request.ID).Msg("Failed to record action")
	}
}
