package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "propertyflow",
	Short: "Property verification workflow API server",
	Long: `PropertyFlow is a REST API server for property-verification workflows.
Coordinators create property files, validators record site evidence,
key-in operators digitize measurements, and verification officers
approve or reject files before print.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// GetRootCmd 返回根命令(用于测试)
func GetRootCmd() *cobra.Command {
	return rootCmd
}
