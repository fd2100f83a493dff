package server

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodewatch/nodewatch/pkg/discovery"
	"github.com/nodewatch/nodewatch/pkg/logger"
	"github.com/nodewatch/nodewatch/pkg/monitor"
)

func TestServer_StartStop_BindsRequestedPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.jl")
	daemon, err := monitor.NewDaemon(path, 50*time.Millisecond, 5)
	require.NoError(t, err)

	srv := New(daemon, logger.NewDefault())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, srv.Start(ctx, 9640))
	defer srv.Stop()

	assert.Equal(t, 9640, srv.Port())

	resp, err := http.Get("http://127.0.0.1:9640/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestServer_Discovery mirrors S6: scanForMonitor finds a running
// monitor's control port, and fails once it has stopped.
func TestServer_Discovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.jl")
	daemon, err := monitor.NewDaemon(path, 50*time.Millisecond, 5)
	require.NoError(t, err)

	srv := New(daemon, logger.NewDefault())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, srv.Start(ctx, 9641))

	found, err := discovery.ScanForMonitor(discovery.PortRange{Start: 9545, End: 9644})
	require.NoError(t, err)
	assert.Equal(t, 9641, found)

	require.NoError(t, srv.Stop())

	_, err = discovery.ScanForMonitor(discovery.PortRange{Start: 9641, End: 9642})
	assert.Error(t, err)
}

func TestServer_Start_PortZeroUsesDiscoveryRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodes.jl")
	daemon, err := monitor.NewDaemon(path, 50*time.Millisecond, 5)
	require.NoError(t, err)

	srv := New(daemon, logger.NewDefault())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, srv.Start(ctx, 0))
	defer srv.Stop()

	port := srv.Port()
	assert.GreaterOrEqual(t, port, discovery.DefaultMonitorRange.Start)
	assert.Less(t, port, discovery.DefaultMonitorRange.End)
}
