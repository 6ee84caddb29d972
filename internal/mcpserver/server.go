// Package mcpserver exposes the analyzer as Model Context Protocol tools.
package mcpserver

import (
	"github.com/ashureev/biaslens/internal/agent"
	"github.com/ashureev/biaslens/internal/bias"
	"github.com/mark3labs/mcp-go/server"
)

const instructions = "Tools for detecting gender-coded language in job descriptions. " +
	"Use classify_job_description for a fast keyword check and analyze_job_description " +
	"for a full explanation with an inclusive rewrite."

// New builds an MCP server with the analyzer tools registered.
func New(version string, graph *agent.Graph, classifier *bias.Classifier) *server.MCPServer {
	s := server.NewMCPServer(
		"biaslens",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	analyze := NewAnalyzeTool(graph)
	s.AddTool(analyze.Definition(), analyze.Handle)

	classify := NewClassifyTool(classifier)
	s.AddTool(classify.Definition(), classify.Handle)

	return s
}

// ServeStdio runs s on stdin and stdout until the input closes.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
