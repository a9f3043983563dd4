package cli

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/pixfun-mcp/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin and stdout",
		Long: `Run the MCP server, reading JSON-RPC requests from stdin and writing
responses to stdout.  Logs go to stderr.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), rootOpts.Verbose)
			logger.Info("serving MCP on stdio", "version", server.Version)
			return server.New(server.WithLogger(logger)).Serve(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
