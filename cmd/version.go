package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shovelware/shovel/common"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show shovel version.",
	Run: func(cmd *cobra.Command, args []string) {
		common.Stdout("%s\n", common.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
