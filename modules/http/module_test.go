package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/specialistvlad/pagegridgo/internal/model"
	"github.com/specialistvlad/pagegridgo/internal/registry"
	"github.com/specialistvlad/pagegridgo/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/customers", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":1,"name":"Ada"},{"id":2,"name":"Lin"}]`)
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"method":      r.Method,
			"contentType": r.Header.Get("Content-Type"),
			"token":       r.Header.Get("X-Token"),
			"body":        string(body),
		})
	})
	mux.HandleFunc("/text", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "plain")
	})
	mux.HandleFunc("/fail", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	t.Parallel()
	srv := newServer(t)
	m := &Module{Client: srv.Client()}
	ctx := context.Background()

	t.Run("component data is routed", func(t *testing.T) {
		t.Parallel()
		content := value.MustFromGo(map[string]any{"url": srv.URL + "/customers", "componentId": "CustomerGrid"})

		out, err := m.Fetch(ctx, content, nil)
		require.NoError(t, err)
		assert.Equal(t, "CustomerGrid", out.GetString("componentId"))
		data, _ := out.Get("data")
		require.Equal(t, 2, data.Len())
		first, _ := data.Index(0)
		assert.Equal(t, "Ada", first.GetString("name"))
	})

	t.Run("bare url string", func(t *testing.T) {
		t.Parallel()
		out, err := m.Fetch(ctx, value.String(srv.URL+"/text"), nil)
		require.NoError(t, err)
		status, _ := out.Get("status")
		assert.Equal(t, "200", status.Text())
		assert.Equal(t, "plain", out.GetString("body"))
	})

	t.Run("method body and headers", func(t *testing.T) {
		t.Parallel()
		content := value.MustFromGo(map[string]any{
			"url":     srv.URL + "/echo",
			"method":  "post",
			"body":    map[string]any{"name": "Ada"},
			"headers": map[string]any{"X-Token": "secret"},
		})

		out, err := m.Fetch(ctx, content, nil)
		require.NoError(t, err)
		body, _ := out.Get("body")
		assert.Equal(t, "POST", body.GetString("method"))
		assert.Equal(t, "application/json", body.GetString("contentType"))
		assert.Equal(t, "secret", body.GetString("token"))
		assert.JSONEq(t, `{"name":"Ada"}`, body.GetString("body"))
	})

	t.Run("error status", func(t *testing.T) {
		t.Parallel()
		_, err := m.Fetch(ctx, value.String(srv.URL+"/fail"), nil)
		require.ErrorContains(t, err, "request failed with status 500")
	})

	t.Run("component data must be json", func(t *testing.T) {
		t.Parallel()
		content := value.MustFromGo(map[string]any{"url": srv.URL + "/text", "componentId": "Grid"})
		_, err := m.Fetch(ctx, content, nil)
		require.ErrorContains(t, err, "response for component Grid is not JSON")
	})

	t.Run("missing url", func(t *testing.T) {
		t.Parallel()
		_, err := m.Fetch(ctx, value.Object(nil), nil)
		require.EqualError(t, err, "fetch content needs a url")
	})

	t.Run("invalid timeout", func(t *testing.T) {
		t.Parallel()
		content := value.MustFromGo(map[string]any{"url": srv.URL + "/text", "timeout": "soon"})
		_, err := m.Fetch(ctx, content, nil)
		require.ErrorContains(t, err, "failed to parse timeout")
	})
}

func TestRegister(t *testing.T) {
	t.Parallel()
	m := &Module{}
	r := registry.New()
	r.Install(m)

	require.NotNil(t, m.Client)
	assert.Equal(t, DefaultTimeout, m.Client.Timeout)
	_, ok := r.Lookup(model.NamespaceAction, "fetch")
	assert.True(t, ok)
}
