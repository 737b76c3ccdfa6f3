package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestChatURL(t *testing.T) {
	cases := []struct {
		base string
		want string
	}{
		{"https://api.openai.com/v1", "https://api.openai.com/v1/chat/completions"},
		{"https://api.openai.com/v1/", "https://api.openai.com/v1/chat/completions"},
		{"http://localhost:8080", "http://localhost:8080/v1/chat/completions"},
		{"", "https://api.openai.com/v1/chat/completions"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, chatURL(tc.base), "base=%q", tc.base)
	}
}

func TestNewClient_EmptyKey(t *testing.T) {
	_, err := NewClient("  ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "api key")
}

func TestNewClient_Options(t *testing.T) {
	c, err := NewClient("sk-test", WithModel("gpt-test"), WithBaseURL(" http://llm.local "))
	require.NoError(t, err)
	require.Equal(t, "gpt-test", c.Model())
	require.Equal(t, "http://llm.local", c.baseURL)

	c, err = NewClient("sk-test", WithModel(""))
	require.NoError(t, err)
	require.Equal(t, "gpt-4o-mini", c.Model(), "blank model keeps the default")
}

func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	base := []Option{
		WithBaseURL(srv.URL),
		WithModel("gpt-mock"),
		WithHTTPClient(&http.Client{Timeout: 2 * time.Second}),
	}
	c, err := NewClient("sk-test", append(base, opts...)...)
	require.NoError(t, err)
	return c
}

func TestClient_CompleteJSON_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "gpt-mock", body.Model)
		require.Equal(t, "json_object", body.ResponseFormat.Type)
		require.Len(t, body.Messages, 2)
		require.NotNil(t, body.Temperature)
		require.InDelta(t, 0.2, *body.Temperature, 0.0001)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-123",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"ok\":true}"}}]
		}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	out, err := c.CompleteJSON(context.Background(), []Message{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "hi"},
	}, 0.2)
	require.NoError(t, err)
	require.Equal(t, `{"ok":true}`, out)
}

func TestClient_CompleteJSON_EmptyMessages(t *testing.T) {
	c, err := NewClient("sk-test")
	require.NoError(t, err)
	_, err = c.CompleteJSON(context.Background(), nil, 0)
	require.Error(t, err)
}

func TestClient_CompleteJSON_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.CompleteJSON(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0)
	require.Error(t, err)

	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	require.Contains(t, statusErr.Body, "bad key")
}

func TestClient_CompleteJSON_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"x","choices":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.CompleteJSON(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no choices")
}

func TestClient_CompleteJSON_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"{}"}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, WithRetries(2, 2*time.Second))
	out, err := c.CompleteJSON(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0)
	require.NoError(t, err)
	require.Equal(t, "{}", out)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_CompleteJSON_RetriesExhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, WithRetries(1, 2*time.Second))
	_, err := c.CompleteJSON(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0)
	require.Error(t, err)

	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
