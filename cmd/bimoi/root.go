package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CiroGamboa/bimoi/internal/version"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "bimoi",
	Short: "Personal contact tracker with a Telegram bot and a graph backend",
	Long: `bimoi remembers why people matter to you.

Share a contact card with the Telegram bot, add a line of context, and find
people later by what you wrote about them. Contacts and their context live
as a social graph in ArangoDB, fronted by a small REST API.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build info",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bimoi %s\n", version.GetInfo())
	},
}

// Execute runs the root command. Called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the TOML config file")
	rootCmd.AddCommand(versionCmd)
}
