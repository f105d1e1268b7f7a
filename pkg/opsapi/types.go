package opsapi

import "time"

type TargetType string

const (
	TargetArgoCD TargetType = "argocd"
	TargetTekton TargetType = "tekton"
)

// Target is a selectable environment. Two targets are the same when both
// type and key match.
type Target struct {
	Type TargetType `json:"type"`
	Key  string     `json:"key"`
	Name string     `json:"name"`
}

func (t Target) ID() string {
	return string(t.Type) + "_" + t.Key
}

type Health string

const (
	HealthHealthy     Health = "Healthy"
	HealthDegraded    Health = "Degraded"
	HealthProgressing Health = "Progressing"
	HealthMissing     Health = "Missing"
	HealthUnknown     Health = "Unknown"
)

// App is an ArgoCD application as summarized by the backend. Health is
// reported by the server and never derived locally.
type App struct {
	Name                string `json:"name"`
	AppNamespace        string `json:"appNamespace,omitempty"`
	Project             string `json:"project"`
	DeploymentName      string `json:"deploymentName"`
	DeploymentNamespace string `json:"deploymentNamespace"`
	Health              Health `json:"health"`
}

type Condition struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

type ObjectMeta struct {
	UID       string            `json:"uid"`
	Name      string            `json:"name"`
	Namespace string            `json:"namespace,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
}

type RunStatus struct {
	Conditions     []Condition `json:"conditions,omitempty"`
	StartTime      *time.Time  `json:"startTime,omitempty"`
	CompletionTime *time.Time  `json:"completionTime,omitempty"`
}

// Run is a Tekton PipelineRun or TaskRun; both share the same shape on the
// wire.
type Run struct {
	Metadata ObjectMeta `json:"metadata"`
	Status   RunStatus  `json:"status"`
}

func (r Run) Name() string {
	return r.Metadata.Name
}

type runList struct {
	Items []Run `json:"items"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Error string `json:"error"`
}

type RestartRequest struct {
	AppName             string `json:"appName"`
	DeploymentName      string `json:"deploymentName"`
	DeploymentNamespace string `json:"deploymentNamespace"`
	Target              string `json:"target"`
}

type SyncRequest struct {
	AppName string `json:"appName"`
	Target  string `json:"target"`
}

// ActionResult is the decoded body of a restart or sync call. StatusCode is
// the HTTP status the body arrived with.
type ActionResult struct {
	StatusCode int    `json:"-"`
	Result     string `json:"result,omitempty"`
	Error      string `json:"error,omitempty"`
}

func (r ActionResult) Succeeded() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300 && r.Result != ""
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}
