package clients_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/voice-analysis/clients"
)

func fakeBinary(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script engine stub needs a unix shell")
	}
	path := filepath.Join(t.TempDir(), "praat")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestPraatRun(t *testing.T) {
	bin := fakeBinary(t, `[ "$1" = "--run" ] || exit 9
shift
echo "script=$1 floor=$8"
echo "12 3 4 5 2.1 3.4 0.61 121.3 20.2 119 80 180 110 130 0.83"`)

	p := clients.NewPraat(bin, time.Second, quietLog())
	out, err := p.Run(context.Background(), "myspsolution.praat",
		[]string{"-20", "2", "0.3", "yes", "/tmp/a.wav", "/tmp/", "80", "400", "0.01"})
	require.NoError(t, err)
	assert.Contains(t, out, "script=myspsolution.praat floor=80")
	assert.Contains(t, out, "0.83")
}

func TestPraatRunFailure(t *testing.T) {
	bin := fakeBinary(t, `echo "Error: sound file not found" >&2
exit 1`)

	p := clients.NewPraat(bin, time.Second, quietLog())
	_, err := p.Run(context.Background(), "x.praat", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sound file not found")
}

func TestPraatRunTimeout(t *testing.T) {
	bin := fakeBinary(t, `exec sleep 5`)

	p := clients.NewPraat(bin, 100*time.Millisecond, quietLog())
	_, err := p.Run(context.Background(), "x.praat", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPraatAvailable(t *testing.T) {
	p := clients.NewPraat(filepath.Join(t.TempDir(), "missing-praat"), 0, quietLog())
	assert.False(t, p.Available())

	p = clients.NewPraat(fakeBinary(t, "exit 0"), 0, quietLog())
	assert.True(t, p.Available())
}

func TestPublishReport(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/reports", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":"stored","id":"abc"}`))
	}))
	defer srv.Close()

	h := clients.NewHTTP()
	resp, err := h.PublishReport(context.Background(), srv.URL+"/", map[string]any{"f0_mean": 121.3})
	require.NoError(t, err)
	assert.Equal(t, "stored", resp.Status)
	assert.Equal(t, "abc", resp.ID)
	assert.Equal(t, 121.3, got["f0_mean"])
}

func TestPublishReportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := clients.NewHTTP().PublishReport(context.Background(), srv.URL, struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "bad payload")
}
