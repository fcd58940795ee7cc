package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var version = "undefined"

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the version",
	Long:  `Display the version of g233spi.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("g233spi %s\n", version)
	},
}
