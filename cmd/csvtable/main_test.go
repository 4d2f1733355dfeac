package main

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvtable/internal/config"
)

type fakeServer struct {
	mu       sync.Mutex
	ln       net.Listener
	shutdown bool
	serving  chan struct{}
}

func (f *fakeServer) Serve(ln net.Listener) error {
	f.mu.Lock()
	f.ln = ln
	f.mu.Unlock()
	close(f.serving)

	for {
		conn, err := ln.Accept()
		if err != nil {
			return nil
		}
		conn.Close()
	}
}

func (f *fakeServer) Shutdown(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shutdown = true
	return f.ln.Close()
}

func TestServeUntilSignal_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &fakeServer{serving: make(chan struct{})}
	afterCalled := false

	done := make(chan error, 1)
	go func() {
		done <- serveUntilSignal(ctx, srv, "127.0.0.1:0", time.Second, func(context.Context) error {
			afterCalled = true
			return nil
		})
	}()

	<-srv.serving
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serveUntilSignal did not return")
	}
	assert.True(t, srv.shutdown)
	assert.True(t, afterCalled)
}

func TestServeUntilSignal_ListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	err = serveUntilSignal(context.Background(), &fakeServer{serving: make(chan struct{})}, ln.Addr().String(), time.Second, nil)

	require.Error(t, err)
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "ui", "tui"}, names)
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestServe_MissingConfig(t *testing.T) {
	for _, key := range []string{"AWS_REGION", "AWS_CLIENT_ID", "AWS_CLIENT_SECRET", "S3_BUCKET", "S3_FILE"} {
		t.Setenv(key, "")
	}

	root := newRootCmd()
	root.SetArgs([]string{"serve", "--env-file", ""})

	err := root.ExecuteContext(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrConfigMissing))
	assert.Contains(t, err.Error(), "S3_BUCKET")
}
