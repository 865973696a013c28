//go:build unit

package logger

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRoundTripper_LogsAndPreservesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)

	core, logs := observer.New(zap.InfoLevel)
	client := &http.Client{Transport: NewRoundTripper(zap.New(core), nil)}

	resp, err := client.Get(srv.URL + "/weather?lat=1&appid=secret")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, `{"ok":true}`, string(body))

	entries := logs.FilterMessage("HTTP request completed").All()
	require.Len(t, entries, 1)
	url := entries[0].ContextMap()["url"].(string)
	assert.NotContains(t, url, "secret")
	assert.Contains(t, url, "appid=%2A%2A%2A")
	assert.Equal(t, int64(http.StatusOK), entries[0].ContextMap()["status_code"])
}

func TestRoundTripper_TransportError(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	client := &http.Client{Transport: NewRoundTripper(zap.New(core), nil)}

	_, err := client.Get("http://127.0.0.1:1/unreachable")
	require.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("HTTP request failed").Len())
}
