package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientPOSTSendsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "yes", r.Header.Get("X-Test"))
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"text":"hello"}`, string(b))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithHeader("X-Test", "yes"))
	resp, err := c.POST(context.Background(), "/post", map[string]string{"text": "hello"})
	require.NoError(t, err)

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, resp.ParseJSON(&out))
	assert.True(t, out.OK)
}

func TestClientBaseURLSkipsAbsoluteURLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.URL.Path)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL("http://unused.invalid"))
	resp, err := c.GET(context.Background(), srv.URL+"/absolute")
	require.NoError(t, err)
	assert.Equal(t, "/absolute", resp.String())
}

func TestClientRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/plain", r.Header.Get("Content-Type"))
		b, _ := io.ReadAll(r.Body)
		_, _ = w.Write(b)
	}))
	defer srv.Close()

	c := NewClient()
	req := NewRequest(http.MethodPost, srv.URL).
		WithContext(context.Background()).
		WithRawBody(strings.NewReader("raw"), "text/plain")
	resp, err := c.Do(req)
	require.NoError(t, err)
	assert.Equal(t, "raw", resp.String())
}

func TestClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"nope"}`))
	}))
	defer srv.Close()

	_, err := NewClient().GET(context.Background(), srv.URL)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
	assert.Equal(t, http.StatusForbidden, StatusCode(err))
	assert.Contains(t, err.Error(), "nope")
	assert.Equal(t, 0, StatusCode(errors.New("plain")))
}

func TestWithHTTPClientKeepsTimeout(t *testing.T) {
	hc := &http.Client{Timeout: 7}
	c := NewClient(WithHTTPClient(hc))
	assert.Equal(t, hc.Timeout, c.httpClient.Timeout)
	assert.NotNil(t, c.httpClient.Transport)
	assert.Nil(t, hc.Transport)
}
