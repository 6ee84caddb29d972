package main

import (
	"fmt"
	"os"

	"github.com/ashureev/biaslens/internal/agent"
	"github.com/ashureev/biaslens/internal/mcpserver"
	"github.com/spf13/cobra"
)

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the analyzer as MCP tools over stdio",
		Long: `Runs a Model Context Protocol server on stdin/stdout exposing
analyze_job_description and classify_job_description. Logs go to stderr.
Nothing is persisted or notified in this mode.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol.
			cfg, logger, err := setup(os.Stderr)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			classifier, err := buildClassifier(cfg)
			if err != nil {
				return err
			}
			graph := agent.NewGraph(agent.GraphConfig{
				Classifier: classifier,
				Generator:  buildGenerator(cmd.Context(), cfg),
				Logger:     logger,
			})

			return mcpserver.ServeStdio(mcpserver.New(Version, graph, classifier))
		},
	}
}
