package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nodewatch/nodewatch/pkg/logger"
	"github.com/nodewatch/nodewatch/pkg/monitor"
	"github.com/nodewatch/nodewatch/pkg/monitor/server"
)

var (
	port              int
	configPath        string
	heartbeatInterval string
	failureTolerance  int
)

const defaultHeartbeatInterval = "1s"

// Command returns the serve command: starts the monitor daemon and
// blocks until SIGINT/SIGTERM.
func Command(log *logger.Logger) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the monitor daemon",
		Long: `Start the heartbeat scheduler and HTTP control surface.
For example:
  nodewatch serve --config nodes.jl --port 9545`,
		RunE: func(cmd *cobra.Command, args []string) error {
			interval, err := time.ParseDuration(heartbeatInterval)
			if err != nil {
				log.Fatal("invalid --heartbeat-interval", "value", heartbeatInterval, "error", err)
			}

			daemon, err := monitor.NewDaemon(configPath, interval, failureTolerance, monitor.WithLogger(log))
			if err != nil {
				log.Fatal("failed to construct monitor daemon", "error", err)
			}

			srv := server.New(daemon, log)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			if err := srv.Start(ctx, port); err != nil {
				log.Fatal("failed to start monitor", "error", err)
			}
			log.Info("monitor listening", "port", srv.Port(), "config", configPath)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			<-sigCh

			log.Info("shutting down")
			return srv.Stop()
		},
	}

	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "control port to bind (0 picks the first available port in the discovery range)")
	serveCmd.Flags().StringVar(&configPath, "config", "nodewatch.jl", "path to the line-delimited JSON config file")
	serveCmd.Flags().StringVar(&heartbeatInterval, "heartbeat-interval", defaultHeartbeatInterval, "duration between heartbeat ticks, e.g. 1s")
	serveCmd.Flags().IntVar(&failureTolerance, "failure-tolerance", 5, "consecutive probe failures before a node is revived")

	return serveCmd
}
