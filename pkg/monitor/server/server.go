// Package server provides the monitor's lifecycle: binding the control
// port and starting the heartbeat scheduler together, and tearing both
// down together on stop.
package server

import (
	"context"
	"fmt"
	"net"
	stdhttp "net/http"
	"time"

	"github.com/nodewatch/nodewatch/pkg/discovery"
	"github.com/nodewatch/nodewatch/pkg/errors"
	"github.com/nodewatch/nodewatch/pkg/logger"
	"github.com/nodewatch/nodewatch/pkg/monitor"
	monitorhttp "github.com/nodewatch/nodewatch/pkg/monitor/http"
)

// Server is the monitor instance: a heartbeat scheduler plus the HTTP
// control surface that fronts it, started and stopped together.
type Server struct {
	daemon *monitor.Daemon
	log    *logger.Logger

	httpServer *stdhttp.Server
	listener   net.Listener
}

// New builds a Server around an already-constructed Daemon.
func New(daemon *monitor.Daemon, log *logger.Logger) *Server {
	return &Server{daemon: daemon, log: log}
}

// Start validates that port is free, binds the control server to
// 127.0.0.1:port, and starts the daemon's heartbeat scheduler. It
// returns once both are accepting work. If port is 0, the first
// available port in discovery.DefaultMonitorRange is used instead. If
// either sub-start fails, anything already started is torn back down.
func (s *Server) Start(ctx context.Context, port int) error {
	if port == 0 {
		p, err := discovery.GetFirstAvailablePortForMonitor()
		if err != nil {
			return err
		}
		port = p
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.NewInternalError(
			fmt.Sprintf("failed to bind control server on %s", addr),
			err,
			map[string]interface{}{"addr": addr},
		)
	}
	s.listener = listener

	if err := s.daemon.Start(ctx); err != nil {
		listener.Close()
		return err
	}

	s.httpServer = &stdhttp.Server{
		Handler:      monitorhttp.NewHandler(s.daemon).Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if serveErr := s.httpServer.Serve(listener); serveErr != nil && serveErr != stdhttp.ErrServerClosed {
			s.log.Error("control server stopped unexpectedly", "error", serveErr)
		}
	}()

	s.log.Info("monitor started", "port", port)
	return nil
}

// Stop is idempotent: shuts the HTTP listener and stops the daemon's
// scheduler. Subsequent calls are no-ops.
func (s *Server) Stop() error {
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if err := s.daemon.Stop(); err != nil {
		return err
	}
	s.log.Info("monitor stopped")
	return nil
}

// Port returns the TCP port the control server is bound to.
func (s *Server) Port() int {
	if s.listener == nil {
		return 0
	}
	return s.listener.Addr().(*net.TCPAddr).Port
}
