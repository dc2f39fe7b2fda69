package main

import (
	"github.com/panbanda/strata/internal/report"
	"github.com/urfave/cli/v2"
)

func architectureCmd() *cli.Command {
	return &cli.Command{
		Name:      "architecture",
		Aliases:   []string{"arch"},
		Usage:     "Detect the architectural pattern, layers and components",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "diagram",
				Aliases: []string{"d"},
				Usage:   "Include the mermaid component diagram",
			},
			&cli.Float64Flag{
				Name:  "review-threshold",
				Usage: "Confidence below which the result is flagged for review (default from config)",
			},
		},
		Action: runArchitectureCmd,
	}
}

func runArchitectureCmd(c *cli.Context) error {
	cfg, root, files, err := prepare(c)
	if err != nil || files == nil {
		return err
	}
	if c.IsSet("review-threshold") {
		cfg.Thresholds.ArchitectureReview = c.Float64("review-threshold")
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	cfg.Analysis.Complexity = false
	cfg.Analysis.Architecture = true

	rep, err := runEngine(c, cfg, root, len(files))
	if err != nil {
		return err
	}
	return write(c, cfg, report.ArchitectureView(rep.Architecture, c.Bool("diagram")))
}
