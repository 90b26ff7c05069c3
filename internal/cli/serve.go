package cli

import (
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the HTTP API: workbook upload on /api/parse, stored records
under /api, health on /api/health and Prometheus metrics on /metrics.

The server stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, overriding server.host and server.port")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApplication()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		a.Server.Addr = serveAddr
	}
	return a.Run(cmd.Context())
}
