package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDoStreamSendsHeadersAndBody(t *testing.T) {
	var gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"ok\":true}\n\n"))
	}))
	defer srv.Close()

	c := NewClient(Config{
		BaseURL: srv.URL,
		Headers: map[string]string{"Authorization": "Bearer sk-test"},
	})

	resp, err := c.DoStream(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/chat/completions",
		Body:   map[string]interface{}{"model": "gpt-4o-mini"},
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, "Bearer sk-test", gotAuth)
	require.Contains(t, gotBody, "gpt-4o-mini")

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(out), "ok")
}

func TestDoStreamReturnsErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid key"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})

	_, err := c.DoStream(context.Background(), Request{Method: http.MethodPost, Path: "/chat/completions"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
}

func TestDoJSONDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"resp-1","choices":[{"message":{"role":"assistant","content":"hi"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})

	var result map[string]interface{}
	err := c.DoJSON(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/chat/completions",
		Body:   map[string]interface{}{"model": "gpt-4o-mini"},
	}, &result)
	require.NoError(t, err)
	require.Equal(t, "resp-1", result["id"])
}

func TestDoJSONReturnsErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})

	var result map[string]interface{}
	err := c.DoJSON(context.Background(), Request{Method: http.MethodPost, Path: "/chat/completions"}, &result)
	require.Error(t, err)
	require.Contains(t, err.Error(), "500")
}
