package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("service down")

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithBackoff(time.Millisecond)}, opts...)
	return New("test", srv.URL+"/", time.Second, errDown, opts...)
}

func TestPostJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/echo", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Key"))
		_, _ = w.Write([]byte(`{"value":"pong"}`))
	}, WithHeader("X-Key", "secret"))

	var out struct {
		Value string `json:"value"`
	}
	require.NoError(t, c.PostJSON(t.Context(), "/v1/echo", map[string]string{"q": "ping"}, &out))
	assert.Equal(t, "pong", out.Value)
}

func TestPostJSON_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	})

	var out struct{}
	require.NoError(t, c.PostJSON(t.Context(), "/", nil, &out))
	assert.Equal(t, int32(3), calls.Load())
}

func TestPostJSON_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream"}}`))
	}, WithRetries(1))

	err := c.PostJSON(t.Context(), "/", nil, &struct{}{})

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Code)
	assert.Equal(t, "upstream", se.Message)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPostJSON_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"model 'x' not found"}`, http.StatusNotFound)
	})

	err := c.PostJSON(t.Context(), "/", nil, &struct{}{})

	require.Error(t, err)
	assert.Equal(t, "test error (status 404): model 'x' not found", err.Error())
	assert.Equal(t, int32(1), calls.Load())
}

func TestPostJSON_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := New("test", srv.URL, time.Second, errDown, WithBackoff(time.Millisecond))

	err := c.PostJSON(t.Context(), "/", nil, &struct{}{})

	assert.ErrorIs(t, err, errDown)
}

func TestPostJSON_BadJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	err := c.PostJSON(t.Context(), "/", nil, &struct{}{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestPing(t *testing.T) {
	ok := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/models", r.URL.Path)
	})
	assert.NoError(t, ok.Ping(t.Context(), "/models"))

	var calls atomic.Int32
	down := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	err := down.Ping(t.Context(), "/models")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.Equal(t, int32(1), calls.Load(), "ping is not retried")
}

func TestErrorMessage(t *testing.T) {
	tests := map[string]string{
		`{"error":{"message":"Incorrect API key","type":"auth"}}`: "Incorrect API key",
		`{"error":"model not found"}`:                             "model not found",
		"  plain text\n":                                          "plain text",
		"":                                                        "empty response",
	}
	for body, want := range tests {
		assert.Equal(t, want, errorMessage([]byte(body)))
	}
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, 2*time.Second, retryAfter("2"))
	assert.Equal(t, maxRetryAfter, retryAfter("3600"))
	assert.Zero(t, retryAfter(""))
	assert.Zero(t, retryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
}
