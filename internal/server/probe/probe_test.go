package probe_test

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/gyromouse/gyromouse/internal/server/probe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeAcceptsAndCloses(t *testing.T) {
	srv := probe.New("127.0.0.1:0", slog.Default())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	select {
	case <-srv.Ready():
	case err := <-errCh:
		t.Fatalf("listen: %v", err)
	}

	for i := 0; i < 3; i++ {
		c, err := net.DialTimeout("tcp", srv.Addr().String(), time.Second)
		require.NoError(t, err)
		require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, err = c.Read(make([]byte, 1))
		assert.ErrorIs(t, err, io.EOF)
		_ = c.Close()
	}

	require.NoError(t, srv.Close())
	assert.NoError(t, <-errCh)
}

func TestProbeCloseBeforeListen(t *testing.T) {
	srv := probe.New("127.0.0.1:0", slog.Default())
	require.NoError(t, srv.Close())
	assert.NoError(t, srv.ListenAndServe())
	assert.Nil(t, srv.Addr())
}

// failingListener fails Accept a fixed number of times, then reports closed.
type failingListener struct {
	net.Listener
	failures int
	calls    int
}

func (l *failingListener) Accept() (net.Conn, error) {
	l.calls++
	if l.calls > l.failures {
		return nil, net.ErrClosed
	}
	return nil, errors.New("too many open files")
}

func (l *failingListener) Close() error { return nil }

func (l *failingListener) Addr() net.Addr { return &net.TCPAddr{} }

func TestServeBacksOffOnAcceptErrors(t *testing.T) {
	ln := &failingListener{failures: 3}
	srv := probe.New("", slog.Default())

	start := time.Now()
	require.NoError(t, srv.Serve(ln))
	assert.Equal(t, 4, ln.calls)
	assert.GreaterOrEqual(t, time.Since(start), 3*40*time.Millisecond)
}
