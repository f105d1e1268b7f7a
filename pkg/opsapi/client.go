package opsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

//go:generate mockgen -destination=mocks/http_doer_mock.go -package=mocks github.com/user/opsboard/pkg/opsapi HTTPDoer

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Credentials supplies the bearer token for authenticated requests and is
// told when the backend rejects it.
type Credentials interface {
	Token() string
	Invalidate()
}

type Client struct {
	httpClient HTTPDoer
	baseURL    string
	creds      Credentials
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func NewClientWithHTTP(baseURL string, httpClient HTTPDoer) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) SetCredentials(creds Credentials) {
	c.creds = creds
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Targets(ctx context.Context) ([]Target, error) {
	var targets []Target
	if err := c.getJSON(ctx, "/api/targets", nil, &targets); err != nil {
		return nil, err
	}
	return targets, nil
}

// Login exchanges credentials for a session token. Rejections are reported
// as *AuthError carrying the server message, or DefaultLoginError when the
// server sent none.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/login", nil, LoginRequest{Username: username, Password: password}, false)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	var body loginResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && decodeErr == nil && body.Token != "" {
		return body.Token, nil
	}

	msg := body.Error
	if decodeErr != nil || msg == "" {
		msg = DefaultLoginError
	}
	return "", &AuthError{StatusCode: resp.StatusCode, Message: msg}
}

func (c *Client) Apps(ctx context.Context, target string) ([]App, error) {
	var apps []App
	if err := c.getJSON(ctx, "/api/apps", url.Values{"target": {target}}, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

func (c *Client) Restart(ctx context.Context, req RestartRequest) (ActionResult, error) {
	return c.postAction(ctx, "/api/restart", req)
}

func (c *Client) Sync(ctx context.Context, req SyncRequest) (ActionResult, error) {
	return c.postAction(ctx, "/api/sync", req)
}

func (c *Client) PipelineRuns(ctx context.Context, namespace, target string) ([]Run, error) {
	var list runList
	query := url.Values{"namespace": {namespace}, "target": {target}}
	if err := c.getJSON(ctx, "/api/tekton/pipelineruns", query, &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

func (c *Client) PipelineRun(ctx context.Context, namespace, name, target string) (*Run, error) {
	var run Run
	path := "/api/tekton/pipelineruns/" + url.PathEscape(name)
	query := url.Values{"namespace": {namespace}, "target": {target}}
	if err := c.getJSON(ctx, path, query, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (c *Client) TaskRuns(ctx context.Context, namespace, pipelineRunName, target string) ([]Run, error) {
	var list runList
	query := url.Values{"namespace": {namespace}, "pipelineRunName": {pipelineRunName}, "target": {target}}
	if err := c.getJSON(ctx, "/api/tekton/taskruns", query, &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil, true)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) postAction(ctx context.Context, path string, payload any) (ActionResult, error) {
	resp, err := c.do(ctx, http.MethodPost, path, nil, payload, true)
	if err != nil {
		return ActionResult{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	result := ActionResult{StatusCode: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return result, &APIError{StatusCode: resp.StatusCode, Message: "decoding response: " + err.Error()}
	}
	result.StatusCode = resp.StatusCode
	return result, nil
}

// do issues the request. An authenticated request that receives a 401
// invalidates the credentials before the error is returned.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any, authenticated bool) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated && c.creds != nil {
		if token := c.creds.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: method + " " + path, Err: err}
	}

	if authenticated && resp.StatusCode == http.StatusUnauthorized {
		apiErr := newAPIError(resp)
		_ = resp.Body.Close()
		if c.creds != nil {
			c.creds.Invalidate()
		}
		return nil, &AuthError{StatusCode: resp.StatusCode, Message: apiErr.Message}
	}

	return resp, nil
}

func newAPIError(resp *http.Response) *APIError {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body errorResponse
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
}
