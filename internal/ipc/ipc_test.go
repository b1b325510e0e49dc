package ipc

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func listen(t *testing.T) (string, net.Listener) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lectern.sock")
	listener, err := net.Listen("unix", path)
	require.NoError(t, err)
	return path, listener
}

func TestServeAndSendRoundtrip(t *testing.T) {
	path, listener := listen(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- Serve(ctx, listener, HandlerFunc(func(_ context.Context, req Request) Response {
			return Response{OK: true, State: "capturing", Elapsed: "2:05", Message: req.Command}
		}))
	}()

	resp, err := Send(ctx, path, Request{Command: "status"}, time.Second)
	require.NoError(t, err)
	require.True(t, resp.OK)
	require.Equal(t, "capturing", resp.State)
	require.Equal(t, "2:05", resp.Elapsed)
	require.Equal(t, "status", resp.Message)

	cancel()
	require.NoError(t, <-serveErr)
}

func TestProbeReportsOwnerPresence(t *testing.T) {
	path, listener := listen(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = Serve(ctx, listener, HandlerFunc(func(context.Context, Request) Response {
			return Response{OK: true, State: "idle"}
		}))
	}()

	state, alive, err := Probe(ctx, path, time.Second)
	require.NoError(t, err)
	require.True(t, alive)
	require.Equal(t, "idle", state)

	_, missing, err := Probe(ctx, filepath.Join(t.TempDir(), "absent.sock"), 100*time.Millisecond)
	require.NoError(t, err)
	require.False(t, missing)
}

func TestMalformedRequestResponseCarriesState(t *testing.T) {
	path, listener := listen(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = Serve(ctx, listener, HandlerFunc(func(_ context.Context, req Request) Response {
			if req.Command == "status" {
				return Response{OK: true, State: "capturing"}
			}
			return Response{OK: true}
		}))
	}()

	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(time.Second)))

	_, err = conn.Write([]byte("this is not json\n"))
	require.NoError(t, err)

	resp, err := readResponse(conn)
	require.NoError(t, err)
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "decode control request")
	// Even a rejected request learns the pipeline state.
	require.Equal(t, "capturing", resp.State)
}

func TestAcquireRejectsLiveOwnerAndReclaimsStaleSocket(t *testing.T) {
	path, listener := listen(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = Serve(ctx, listener, HandlerFunc(func(context.Context, Request) Response {
			return Response{OK: true, State: "capturing"}
		}))
	}()

	_, err := Acquire(ctx, path, 200*time.Millisecond, 1)
	require.ErrorIs(t, err, ErrAlreadyRunning)

	cancel()
	// After owner shutdown the leftover socket file is stale and reclaimable.
	require.Eventually(t, func() bool {
		reclaimCtx := context.Background()
		got, acquireErr := Acquire(reclaimCtx, path, 100*time.Millisecond, 2)
		if acquireErr != nil {
			return false
		}
		_ = got.Close()
		return true
	}, 2*time.Second, 50*time.Millisecond)
}
