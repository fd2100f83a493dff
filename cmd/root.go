package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nodewatch/nodewatch/cmd/serve"
	"github.com/nodewatch/nodewatch/pkg/logger"
)

// NewRootCmd builds the nodewatch command tree: a single serve
// subcommand that runs the monitor daemon in the foreground.
func NewRootCmd() *cobra.Command {
	log := logger.NewDefault()

	rootCmd := &cobra.Command{
		Use:   "nodewatch",
		Short: "A liveness monitor for blockchain JSON-RPC nodes",
		Long:  `nodewatch probes a configured fleet of blockchain nodes, revives the ones that stop responding, and exposes their status over HTTP.`,
	}

	rootCmd.AddCommand(serve.Command(log))
	return rootCmd
}
