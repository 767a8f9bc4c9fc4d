// Package cmd implements the command-line interface for inboxtasks.
//
// This package provides the following commands:
//   - refresh: Fetch unread Gmail messages and extract tasks
//   - serve: Start the MCP server to provide task tools for AI assistants
//   - auth: Obtain and store a Google OAuth token for an account
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The refresh command is the default command when no subcommand is specified.
package cmd
