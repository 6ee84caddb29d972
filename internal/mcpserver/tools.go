package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ashureev/biaslens/internal/agent"
	"github.com/ashureev/biaslens/internal/bias"
	"github.com/mark3labs/mcp-go/mcp"
)

// AnalyzeTool handles the analyze_job_description MCP tool.
type AnalyzeTool struct {
	graph *agent.Graph
}

// NewAnalyzeTool creates an AnalyzeTool backed by graph.
func NewAnalyzeTool(graph *agent.Graph) *AnalyzeTool {
	return &AnalyzeTool{graph: graph}
}

// Definition returns the MCP tool definition for analyze_job_description.
func (t *AnalyzeTool) Definition() mcp.Tool {
	return mcp.NewTool("analyze_job_description",
		mcp.WithDescription(
			"Analyze a job description for masculine- or feminine-coded language. "+
				"Returns the detected terms, an explanation and an inclusive alternative. Nothing is stored.",
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Full job description text (at least 10 characters)"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: markdown (default) or json"),
		),
	)
}

// Handle processes the analyze_job_description tool call.
func (t *AnalyzeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("'text' is required"), nil
	}

	analysis, err := t.graph.Analyze(ctx, text)
	if errors.Is(err, agent.ErrIncompleteDescription) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("analyze job description: %w", err)
	}

	switch req.GetString("format", "markdown") {
	case "json":
		data, err := json.MarshalIndent(analysis, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode analysis: %w", err)
		}
		return mcp.NewToolResultText(string(data)), nil
	case "markdown", "":
		return mcp.NewToolResultText(analysis.Message), nil
	default:
		return mcp.NewToolResultError("'format' must be markdown or json"), nil
	}
}

// ClassifyTool handles the classify_job_description MCP tool.
type ClassifyTool struct {
	classifier *bias.Classifier
}

// NewClassifyTool creates a ClassifyTool.
func NewClassifyTool(classifier *bias.Classifier) *ClassifyTool {
	return &ClassifyTool{classifier: classifier}
}

// Definition returns the MCP tool definition for classify_job_description.
func (t *ClassifyTool) Definition() mcp.Tool {
	return mcp.NewTool("classify_job_description",
		mcp.WithDescription("Keyword-only gender-coding check. Fast and deterministic, no language model involved."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text to classify"),
		),
	)
}

// Handle processes the classify_job_description tool call.
func (t *ClassifyTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("'text' is required"), nil
	}

	result := t.classifier.Classify(text)
	data, err := json.Marshal(map[string]interface{}{
		"bias_type":    result.Category,
		"biased_terms": result.Terms,
	})
	if err != nil {
		return nil, fmt.Errorf("encode classification: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
