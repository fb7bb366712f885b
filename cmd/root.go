package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shovelware/shovel/common"
	"github.com/shovelware/shovel/pretty"
)

var (
	debugFlag  bool
	traceFlag  bool
	silentFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "shovel",
	Short: "Cross-volume directory migration engine.",
	Long: `Shovel moves whole directory trees between physical volumes fast:
small files travel aggregated inside store-mode archives, large files
move individually, and both disks stay busy at the same time.
Interrupted migrations resume exactly where they stopped.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		common.DefineVerbosity(silentFlag, debugFlag, traceFlag)
		pretty.Setup()
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		pretty.Exit(1, "Error: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "show debug messages")
	rootCmd.PersistentFlags().BoolVar(&traceFlag, "trace", false, "show trace messages (implies --debug)")
	rootCmd.PersistentFlags().BoolVar(&silentFlag, "silent", false, "errors only")

	cobra.OnInitialize(summonDefaults)
}

// summonDefaults loads persisted user defaults (worker counts, custom
// archiver commands) from an optional .shovel.yaml next to the home
// directory or the working directory. Flags always win.
func summonDefaults() {
	viper.SetConfigName(".shovel")
	viper.SetConfigType("yaml")
	home, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("SHOVEL")
	viper.AutomaticEnv()
	err = viper.ReadInConfig()
	if err == nil {
		common.Debug("Using defaults from %q.", filepath.Clean(viper.ConfigFileUsed()))
	}
}
