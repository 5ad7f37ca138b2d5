package main

import (
	"fmt"

	"github.com/aretw0/shopbot"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of shopbot",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "shopbot version %s\n", shopbot.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
