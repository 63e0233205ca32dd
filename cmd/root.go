package cmd

import (
	"github.com/spf13/cobra"

	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "contenthub",
	Short: "Admin panel and schema tooling for ContentHub",
	Long: `ContentHub is a server-rendered admin panel for projects, changelog and
documentation content stored in a PocketBase backend. It also provisions the
backend schema by importing collection definitions in dependency order.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
