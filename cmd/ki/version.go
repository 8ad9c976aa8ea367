package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is stamped by the release build.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the ki version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ki %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
