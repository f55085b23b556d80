// File: cmd/app/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgPath string
	devMode bool
	version = "dev"
)

// rootCmd is the personachat shell.
var rootCmd = &cobra.Command{
	Use:   "personachat",
	Short: "Chat with themed personas from the terminal",
	Long: `personachat keeps one live conversation with a selectable persona,
relays your turns to a generative-language endpoint and stores the last
50 conversations.

Quick Start:
  personachat chat                    # start chatting
  personachat sessions list           # list stored conversations
  personachat personas                # list selectable personas`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "developer mode (console logs, offline replies without a key)")
	rootCmd.AddCommand(newChatCmd(), newSessionsCmd(), newPersonasCmd(), newServeCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
