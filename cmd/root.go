package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the inboxtasks application
var rootCmd = &cobra.Command{
	Use:   "inboxtasks",
	Short: "Turns unread Gmail messages into actionable tasks",
	Long: `inboxtasks scans the unread messages in your Gmail inbox, asks an LLM
whether each one contains something actionable, and collects the results
as tasks.

It can run as:
  - A standalone CLI tool (default)
  - An MCP (Model Context Protocol) server for AI assistants`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "inboxtasks version %s\n" .Version}}`)

	// If no subcommand is provided, run the refresh command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "refresh")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newRefreshCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
