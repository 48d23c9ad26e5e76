package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerview/internal/config"
	"ledgerview/internal/log"
)

type fakeServer struct {
	stop     chan struct{}
	failWith error
	shutdown atomic.Bool
}

func newFakeServer() *fakeServer { return &fakeServer{stop: make(chan struct{})} }

func (f *fakeServer) ListenAndServe() error {
	if f.failWith != nil {
		return f.failWith
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(ctx context.Context) error {
	if f.shutdown.CompareAndSwap(false, true) && f.failWith == nil {
		close(f.stop)
	}
	return nil
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: &bytes.Buffer{}})
}

func TestServeShutsDownOnCancel(t *testing.T) {
	srv := newFakeServer()
	ctx, cancel := context.WithCancel(context.Background())

	var bgStopped atomic.Bool
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, quietLogger(), srv, time.Second, func(ctx context.Context) error {
			<-ctx.Done()
			bgStopped.Store(true)
			return nil
		})
	}()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
	assert.True(t, srv.shutdown.Load())
	assert.True(t, bgStopped.Load())
}

func TestServeReturnsListenError(t *testing.T) {
	srv := newFakeServer()
	srv.failWith = errors.New("address in use")

	err := Serve(context.Background(), quietLogger(), srv, time.Second)
	assert.EqualError(t, err, "address in use")
	assert.True(t, srv.shutdown.Load(), "shutdown still runs")
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := SetupLogger(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Debug("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"component":"app"`)

	_, err = SetupLogger(config.LogConfig{Level: "loud"}, &buf)
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("LEDGERVIEW_TEST_VAR=from-file\n"), 0o600))
	t.Setenv("LEDGERVIEW_TEST_VAR", "")
	os.Unsetenv("LEDGERVIEW_TEST_VAR")

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("LEDGERVIEW_TEST_VAR"))

	assert.NoError(t, LoadEnvFile(filepath.Join(dir, "missing.env")))
}
