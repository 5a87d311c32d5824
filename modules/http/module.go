// Package http provides the 'fetch' action, which performs one HTTP request
// and can feed a JSON response straight into the DataStore.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/specialistvlad/pagegridgo/internal/ctxlog"
	"github.com/specialistvlad/pagegridgo/internal/registry"
	"github.com/specialistvlad/pagegridgo/internal/trigger"
	"github.com/specialistvlad/pagegridgo/internal/value"
)

// DefaultTimeout bounds a request when the content sets no timeout.
const DefaultTimeout = 30 * time.Second

// Module implements the registry.Module interface. Client is shared by every
// fetch; Register fills in NewClient(DefaultTimeout) when it is nil.
type Module struct {
	Client *http.Client
}

// Input defines the content of a fetch trigger.
type Input struct {
	URL         string            `json:"url"`
	Method      string            `json:"method"`
	Body        json.RawMessage   `json:"body"`
	Headers     map[string]string `json:"headers"`
	ComponentID string            `json:"componentId"`
	Timeout     string            `json:"timeout"`
}

// NewClient returns a pooled client with the given timeout.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

func parseInput(content value.Value) (*Input, error) {
	in := &Input{}
	if s, ok := content.AsString(); ok {
		in.URL = s
	} else if err := content.Decode(in); err != nil {
		return nil, fmt.Errorf("invalid fetch content: %w", err)
	}
	if in.URL == "" {
		return nil, fmt.Errorf("fetch content needs a url")
	}
	if in.Method == "" {
		in.Method = http.MethodGet
	}
	in.Method = strings.ToUpper(in.Method)
	return in, nil
}

// Fetch performs the request. With a componentId and a JSON response it
// returns {componentId, data} so the engine stores the data; otherwise it
// returns {status, body}.
func (m *Module) Fetch(ctx context.Context, content value.Value, _ *trigger.Context) (value.Value, error) {
	in, err := parseInput(content)
	if err != nil {
		return value.Null(), err
	}
	logger := ctxlog.FromContext(ctx).With("action", "fetch", "method", in.Method, "url", in.URL)

	if in.Timeout != "" {
		timeout, err := time.ParseDuration(in.Timeout)
		if err != nil {
			return value.Null(), fmt.Errorf("failed to parse timeout: %w", err)
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var body io.Reader
	if len(in.Body) > 0 && string(in.Body) != "null" {
		body = bytes.NewReader(in.Body)
	}
	req, err := http.NewRequestWithContext(ctx, in.Method, in.URL, body)
	if err != nil {
		return value.Null(), fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range in.Headers {
		req.Header.Set(k, v)
	}

	logger.Info("Making HTTP request")
	resp, err := m.client().Do(req)
	if err != nil {
		return value.Null(), fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	logger.Info("Received HTTP response", "status", resp.Status)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return value.Null(), fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return value.Null(), fmt.Errorf("request failed with status %s", resp.Status)
	}

	decoded, jsonErr := value.ParseJSON(raw)
	if in.ComponentID != "" {
		if jsonErr != nil {
			return value.Null(), fmt.Errorf("response for component %s is not JSON: %w", in.ComponentID, jsonErr)
		}
		return value.Object(map[string]value.Value{
			"componentId": value.String(in.ComponentID),
			"data":        decoded,
		}), nil
	}

	if jsonErr != nil {
		decoded = value.String(string(raw))
	}
	return value.Object(map[string]value.Value{
		"status": value.Number(float64(resp.StatusCode)),
		"body":   decoded,
	}), nil
}

func (m *Module) client() *http.Client {
	if m.Client == nil {
		return http.DefaultClient
	}
	return m.Client
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	if m.Client == nil {
		m.Client = NewClient(DefaultTimeout)
	}
	r.RegisterAction("fetch", m.Fetch)
}
