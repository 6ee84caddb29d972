// BiasLens - job description bias analyzer
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

var envFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "biaslens",
		Short: "Detect gender-coded language in job descriptions",
		Long: `BiasLens analyzes job-description text for masculine- and feminine-coded
language, explains why the wording may discourage applicants and proposes an
inclusive rewrite. Without a subcommand it runs the HTTP server.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path to a .env file to load")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(mcpCmd())
	rootCmd.AddCommand(analyzeCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
