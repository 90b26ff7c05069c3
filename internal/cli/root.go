// Package cli implements the drillsheet command line.
package cli

import (
	"github.com/spf13/cobra"

	"drillsheet/internal/app"
	"drillsheet/internal/infrastructure"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "drillsheet",
	Short: "Parse pump-test and drilling report workbooks",
	Long: `drillsheet reads stepped-discharge and constant-discharge pump-test
workbooks and daily drilling reports, validates them and normalises them
into site, borehole, test, series and report records.

Records are kept in the configured store and served over HTTP by the
serve command.`,
	SilenceUsage: true,
}

// newApplication builds the application a command runs against.
var newApplication = func() (*app.Application, error) {
	return app.NewApplication(configFile)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: config.yaml or configs/config.yaml, or $DRILLSHEET_CONFIG)")
}

// Execute runs the root command.
func Execute() error {
	defer infrastructure.CloseLogFile()
	return rootCmd.Execute()
}
