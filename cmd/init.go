package cmd

import (
	"github.com/spf13/cobra"

	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize contenthub configuration with an interactive wizard",
	Long:  `Runs an interactive wizard that asks for the backend URL, port and data directory and writes the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
