package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ashureev/biaslens/internal/agent"
	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func analyzeCmd() *cobra.Command {
	var filePath string
	var jsonOut bool
	var style string

	cmd := &cobra.Command{
		Use:   "analyze [text]",
		Short: "Analyze one job description and print the result",
		Long: `Analyzes the text given as an argument, read from --file, or read from
stdin when neither is given. Markdown output is rendered for terminals.
Nothing is persisted or notified.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), filePath, args)
			if err != nil {
				return err
			}

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

			analysis, err := graph.Analyze(cmd.Context(), text)
			if errors.Is(err, agent.ErrIncompleteDescription) {
				return err
			}
			if err != nil {
				return fmt.Errorf("analyze: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(analysis)
			}

			if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
				rendered, err := glamour.Render(analysis.Message, style)
				if err == nil {
					_, err = io.WriteString(out, rendered)
					return err
				}
				logger.Debug("markdown render failed, printing raw text", "error", err)
			}
			_, err = fmt.Fprintln(out, analysis.Message)
			return err
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "read the job description from a file")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the analysis as JSON")
	cmd.Flags().StringVar(&style, "style", "dark", "glamour style for terminal output")
	return cmd
}

func readInput(stdin io.Reader, filePath string, args []string) (string, error) {
	switch {
	case len(args) == 1:
		return args[0], nil
	case filePath != "":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", filePath, err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(io.LimitReader(stdin, 1<<20))
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return "", errors.New("no job description given")
		}
		return string(data), nil
	}
}
