// Package mcpserver exposes the strata engine as MCP tools over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/strata/pkg/config"
)

// Server wraps the MCP server and registers the strata analysis tools.
type Server struct {
	server *mcp.Server
	cfg    *config.Config
}

// NewServer creates a new MCP server with all tools and prompts registered.
// A nil cfg uses config.DefaultConfig.
func NewServer(version string, cfg *config.Config) *Server {
	if version == "" {
		version = "dev"
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "strata",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, cfg: cfg}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "parse_code",
		Description: describeParse(),
	}, s.handleParse)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_complexity",
		Description: describeComplexity(),
	}, s.handleAnalyzeComplexity)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_architecture",
		Description: describeArchitecture(),
	}, s.handleAnalyzeArchitecture)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_issues",
		Description: describeIssues(),
	}, s.handleAnalyzeIssues)
}
