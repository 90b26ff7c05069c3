package cli

import (
	"github.com/spf13/cobra"

	"drillsheet/pkg/contracts"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Prints the version, build time, commit and platform of drillsheet.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		if versionShort {
			cmd.Println(contracts.GetVersionString())
			return
		}
		cmd.Println(contracts.GetFullVersionString())
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version")
	rootCmd.AddCommand(versionCmd)
}
