package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bramble",
	Short: "Bramble runs declarative reactive scenes",
	Long:  `Bramble mounts a reactive demo tree into a scene and drives it in a window or headless.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug checks")
	rootCmd.PersistentFlags().Bool("trace", false, "Print lifecycle and failure signals")
}
