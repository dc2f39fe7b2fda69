package main

import (
	"github.com/panbanda/strata/internal/mcpserver"
	"github.com/urfave/cli/v2"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes strata's analyzers
as tools that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "strata": {
        "command": "strata",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - parse_code            Files, elements and dependencies
  - analyze_complexity    McCabe complexity and refactoring targets
  - analyze_architecture  Pattern, layers, components and cycles
  - analyze_issues        All findings ordered by severity`,
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	return mcpserver.NewServer(version, cfg).Run(c.Context)
}
