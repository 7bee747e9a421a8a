// Gitlabd exposes the GitLab API as MCP tools.
//
// The server speaks MCP over stdio by default; streamable HTTP and SSE
// transports are selected via configuration.
//
// Configuration comes from environment variables, optionally layered over
// a YAML file. See internal/config for the full list.
//
// Usage:
//
//	# Stdio transport (for MCP clients that spawn the server)
//	GITLAB_PERSONAL_ACCESS_TOKEN=glpat-... gitlabd
//
//	# Streamable HTTP transport
//	STREAMABLE_HTTP=true SERVER_HTTP_PORT=8000 gitlabd
//
//	# Show the tools the current configuration exposes
//	gitlabd tools
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/gitlabd/internal/config"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "gitlabd",
	Short: "MCP server for the GitLab API",
	Long: `gitlabd is an MCP server that exposes GitLab projects, issues, merge
requests, pipelines, wikis, and milestones as tools.

Write tools are suppressed in read-only mode, and the pipeline, wiki, and
milestone groups are opt-in via feature flags. Only tools the current
configuration allows are advertised to clients.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to a YAML config file (environment variables take precedence)")
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "gitlabd: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadWithFile(configPath)
	}
	return config.Load()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gitlabd by Fyrsmith Labs\n")
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Commit:     %s\n", gitCommit)
		fmt.Printf("Build Date: %s\n", buildDate)
	},
}
