package mcpserver

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/strata/internal/output"
	"github.com/panbanda/strata/internal/report"
	"github.com/panbanda/strata/pkg/config"
	"github.com/panbanda/strata/pkg/engine"
	"github.com/panbanda/strata/pkg/issues"
	"github.com/panbanda/strata/pkg/models"
)

// AnalyzeInput is the base input for all tools.
type AnalyzeInput struct {
	Path   string `json:"path,omitempty" jsonschema:"Root directory to analyze. Defaults to the current directory."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, yaml, or markdown."`
}

// ParseInput adds parse-specific options.
type ParseInput struct {
	AnalyzeInput
	Languages []string `json:"languages,omitempty" jsonschema:"Restrict parsing to these languages (go, python, typescript, javascript, java, rust)."`
}

// ComplexityInput adds complexity-specific options.
type ComplexityInput struct {
	AnalyzeInput
	Threshold int `json:"threshold,omitempty" jsonschema:"McCabe complexity above which a function is flagged. Default 15."`
}

// ArchitectureInput adds architecture-specific options.
type ArchitectureInput struct {
	AnalyzeInput
	ReviewThreshold float64 `json:"review_threshold,omitempty" jsonschema:"Confidence (0.0-1.0) below which the result is flagged for review. Default 0.5."`
	IncludeDiagram  bool    `json:"include_diagram,omitempty" jsonschema:"Include the mermaid component diagram."`
}

// IssuesInput adds aggregation options.
type IssuesInput struct {
	AnalyzeInput
	Threshold   int    `json:"threshold,omitempty" jsonschema:"McCabe complexity threshold passed to the complexity analyzer. Default 15."`
	MinSeverity string `json:"min_severity,omitempty" jsonschema:"Only return issues at or above this severity: low (default), medium, or high."`
}

func getPath(input AnalyzeInput) string {
	if input.Path == "" {
		return "."
	}
	return input.Path
}

func getFormat(input AnalyzeInput) output.Format {
	f := output.ParseFormat(input.Format)
	if f == output.FormatText {
		return output.FormatTOON
	}
	return f
}

// formatOutput renders data for a tool response. Markdown uses the view's
// own markdown form; everything else is serialized.
func formatOutput(data any, format output.Format) (string, error) {
	var buf bytes.Buffer
	r, renderable := data.(output.Renderable)

	if format == output.FormatMarkdown {
		if renderable {
			if err := r.RenderMarkdown(&buf); err != nil {
				return "", err
			}
			return strings.TrimRight(buf.String(), "\n"), nil
		}
		if err := output.Encode(&buf, output.FormatTOON, data); err != nil {
			return "", err
		}
		return "```\n" + strings.TrimRight(buf.String(), "\n") + "\n```", nil
	}

	if renderable {
		data = r.RenderData()
	}
	if err := output.Encode(&buf, format, data); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

// engineFor builds an engine over a copy of the server config with the
// tool's overrides applied.
func (s *Server) engineFor(apply func(cfg *config.Config)) *engine.Engine {
	cfg := *s.cfg
	if apply != nil {
		apply(&cfg)
	}
	return engine.New(&cfg)
}

func checkRoot(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

func (s *Server) run(ctx context.Context, path string, apply func(cfg *config.Config)) (*engine.Report, error) {
	if err := checkRoot(path); err != nil {
		return nil, err
	}
	rep, err := s.engineFor(apply).Run(ctx, path)
	if err != nil {
		return nil, err
	}
	if rep.Parse.TotalFiles == 0 {
		return nil, fmt.Errorf("no source files found")
	}
	return rep, nil
}

func (s *Server) handleParse(ctx context.Context, req *mcp.CallToolRequest, input ParseInput) (*mcp.CallToolResult, any, error) {
	path := getPath(input.AnalyzeInput)
	if err := checkRoot(path); err != nil {
		return toolError(err.Error())
	}

	result, err := s.engineFor(func(cfg *config.Config) {
		if len(input.Languages) > 0 {
			cfg.Adapters.Languages = input.Languages
		}
	}).Parse(ctx, path)
	if err != nil {
		return toolError(err.Error())
	}
	if result.TotalFiles == 0 {
		return toolError("no source files found")
	}
	return toolResult(report.ParseView(result), getFormat(input.AnalyzeInput))
}

func (s *Server) handleAnalyzeComplexity(ctx context.Context, req *mcp.CallToolRequest, input ComplexityInput) (*mcp.CallToolResult, any, error) {
	rep, err := s.run(ctx, getPath(input.AnalyzeInput), func(cfg *config.Config) {
		cfg.Analysis.Complexity = true
		cfg.Analysis.Architecture = false
		if input.Threshold > 0 {
			cfg.Thresholds.Complexity = input.Threshold
		}
	})
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(report.ComplexityView(rep.Complexity), getFormat(input.AnalyzeInput))
}

func (s *Server) handleAnalyzeArchitecture(ctx context.Context, req *mcp.CallToolRequest, input ArchitectureInput) (*mcp.CallToolResult, any, error) {
	rep, err := s.run(ctx, getPath(input.AnalyzeInput), func(cfg *config.Config) {
		cfg.Analysis.Complexity = false
		cfg.Analysis.Architecture = true
		if input.ReviewThreshold > 0 {
			cfg.Thresholds.ArchitectureReview = input.ReviewThreshold
		}
	})
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(report.ArchitectureView(rep.Architecture, input.IncludeDiagram), getFormat(input.AnalyzeInput))
}

func (s *Server) handleAnalyzeIssues(ctx context.Context, req *mcp.CallToolRequest, input IssuesInput) (*mcp.CallToolResult, any, error) {
	floor := models.LevelLow
	if input.MinSeverity != "" {
		lvl, ok := models.ParseLevel(input.MinSeverity)
		if !ok {
			return toolError(fmt.Sprintf("unknown severity %q", input.MinSeverity))
		}
		floor = lvl
	}

	rep, err := s.run(ctx, getPath(input.AnalyzeInput), func(cfg *config.Config) {
		cfg.Analysis.Complexity = true
		cfg.Analysis.Architecture = true
		if input.Threshold > 0 {
			cfg.Thresholds.Complexity = input.Threshold
		}
	})
	if err != nil {
		return toolError(err.Error())
	}

	list := issues.AtLeast(rep.Issues, floor)
	return toolResult(report.IssuesView(list, issues.Summarize(list)), getFormat(input.AnalyzeInput))
}
