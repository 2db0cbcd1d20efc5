package main

import (
	"fmt"

	"github.com/phanxgames/bramble"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of bramble",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bramble version %s\n", bramble.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
