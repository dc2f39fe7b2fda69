package main

import (
	"github.com/fatih/color"
	"github.com/panbanda/strata/internal/progress"
	"github.com/panbanda/strata/internal/report"
	"github.com/panbanda/strata/pkg/engine"
	"github.com/urfave/cli/v2"
)

func parseCmd() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Parse source files into the language-independent model",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "language",
				Aliases: []string{"l"},
				Usage:   "Restrict parsing to a language (repeatable)",
			},
		},
		Action: runParseCmd,
	}
}

func runParseCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if langs := c.StringSlice("language"); len(langs) > 0 {
		cfg.Adapters.Languages = langs
	}
	root, err := getRoot(c)
	if err != nil {
		return err
	}
	files, err := scanFiles(cfg, root)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.Yellow("No source files found")
		return nil
	}

	tracker := progress.NewTracker("Parsing...", len(files))
	eng := engine.New(cfg, engine.WithLogger(newLogger(c)), engine.WithProgress(tracker.Tick))
	result, err := eng.Parse(c.Context, root)
	if err != nil {
		tracker.Fail(err)
		return err
	}
	tracker.Done()

	return write(c, cfg, report.ParseView(result))
}
