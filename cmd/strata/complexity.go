package main

import (
	"github.com/panbanda/strata/internal/output"
	"github.com/panbanda/strata/internal/report"
	"github.com/panbanda/strata/pkg/analyzer/complexity"
	"github.com/urfave/cli/v2"
)

func complexityCmd() *cli.Command {
	return &cli.Command{
		Name:      "complexity",
		Aliases:   []string{"cx"},
		Usage:     "Analyze McCabe cyclomatic complexity",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "threshold",
				Aliases: []string{"t"},
				Usage:   "Complexity above which a function is flagged (default from config)",
			},
			&cli.BoolFlag{
				Name:  "report",
				Usage: "Print the markdown refactoring report with effort estimates",
			},
		},
		Action: runComplexityCmd,
	}
}

func runComplexityCmd(c *cli.Context) error {
	cfg, root, files, err := prepare(c)
	if err != nil || files == nil {
		return err
	}
	if t := c.Int("threshold"); t > 0 {
		cfg.Thresholds.Complexity = t
	}
	cfg.Analysis.Complexity = true
	cfg.Analysis.Architecture = false

	rep, err := runEngine(c, cfg, root, len(files))
	if err != nil {
		return err
	}

	if c.Bool("report") {
		return write(c, cfg, &output.Markdown{
			Body: complexity.RenderMarkdown(rep.Complexity.Data),
			Data: rep.Complexity,
		})
	}
	return write(c, cfg, report.ComplexityView(rep.Complexity))
}
