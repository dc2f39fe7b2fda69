package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/panbanda/strata/internal/report"
	"github.com/panbanda/strata/pkg/engine"
	"github.com/urfave/cli/v2"
)

func reportCmd() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Generate an HTML report",
		ArgsUsage: "[path]",
		Description: `Analyzes the tree and writes a self-contained HTML report. With --from,
the report is rendered from a JSON report saved earlier with
"strata analyze -f json -o report.json" instead.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "from",
				Usage: "Render a saved JSON report instead of analyzing",
			},
			&cli.StringFlag{
				Name:  "html",
				Value: "strata-report.html",
				Usage: "HTML output file",
			},
		},
		Action: runReportCmd,
	}
}

func runReportCmd(c *cli.Context) error {
	var (
		rep  *engine.Report
		repo string
		err  error
	)

	if from := c.String("from"); from != "" {
		rep, err = report.LoadReport(from)
		if err != nil {
			return err
		}
	} else {
		cfg, root, files, err := prepare(c)
		if err != nil || files == nil {
			return err
		}
		repo = filepath.Base(root)
		rep, err = cachedRun(c, cfg, root, files)
		if err != nil {
			return err
		}
	}

	renderer, err := report.NewRenderer()
	if err != nil {
		return fmt.Errorf("load report template: %w", err)
	}
	meta := report.Metadata{
		Repository:    repo,
		GeneratedAt:   time.Now(),
		StrataVersion: version,
	}
	out := c.String("html")
	if err := renderer.RenderToFile(report.NewRenderData(meta, rep), out); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	color.Green("Report written to %s", out)
	return nil
}
