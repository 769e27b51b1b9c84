package preply

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"preplycal/internal/config"
	appLog "preplycal/internal/log"
	"preplycal/internal/model"
)

// StatusError reports a non-2xx response from the calendar endpoint.
type StatusError struct {
	StatusCode int
	Status     string
	Window     model.Window
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("preply: window %s: unexpected status %s", e.Window, e.Status)
}

// Client posts calendar queries to the Preply GraphQL endpoint.
type Client struct {
	http      *http.Client
	endpoint  string
	sessionID string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every request. Zero keeps the http.Client default
// (no timeout).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// NewClient creates a Client. sessionID is the value of the "sessionid"
// cookie; it must be non-empty.
func NewClient(endpoint, sessionID string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, errors.New("preply: endpoint is empty")
	}
	if sessionID == "" {
		return nil, fmt.Errorf("preply: %w", config.ErrMissingSession)
	}
	c := &Client{
		http:      &http.Client{},
		endpoint:  endpoint,
		sessionID: sessionID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch issues one query for window w and returns the raw nodes.
//
// Transport failures, non-2xx statuses and malformed JSON are returned as
// errors. A response without the data.currentUser.tutor.calendar path is
// treated as an empty window.
func (c *Client) Fetch(ctx context.Context, base *Payload, w model.Window) ([]Node, error) {
	body, err := json.Marshal(base.ForWindow(w))
	if err != nil {
		return nil, fmt.Errorf("preply: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.AddCookie(&http.Cookie{Name: "sessionid", Value: c.sessionID})

	appLog.Debug("calendar query start", "window", w.String(), "endpoint", redactURL(c.endpoint))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("preply: window %s: %w", w, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused; the body is not reported.
		_, _ = io.CopyN(io.Discard, resp.Body, 4<<10)
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Window: w}
	}

	var out calendarResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("preply: window %s: decode response: %w", w, err)
	}

	for _, ge := range out.Errors {
		appLog.Error("calendar query reported error", errors.New(ge.Message), "window", w.String())
	}

	nodes, ok := out.nodes()
	if !ok {
		appLog.Info("calendar path missing in response; treating window as empty", "window", w.String())
		return nil, nil
	}

	appLog.Debug("calendar query success", "window", w.String(), "status", resp.StatusCode, "nodes", len(nodes))
	return nodes, nil
}

// redactURL reduces an endpoint URL to scheme and host for logging.
//
//	https://preply.com/graphql/v2/TutorCalendarEvents -> https://preply.com/...(redacted)
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "endpoint://...(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}
