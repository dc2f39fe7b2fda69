package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/panbanda/strata/internal/report"
	"github.com/panbanda/strata/internal/watch"
	"github.com/panbanda/strata/pkg/engine"
	"github.com/urfave/cli/v2"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Re-run the full analysis whenever a source file changes",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "debounce",
				Value: watch.DefaultDebounce,
				Usage: "Quiet period before a change triggers analysis",
			},
			&cli.BoolFlag{
				Name:    "diagram",
				Aliases: []string{"d"},
				Usage:   "Include the mermaid component diagram",
			},
		},
		Action: runWatchCmd,
	}
}

func runWatchCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	root, err := getRoot(c)
	if err != nil {
		return err
	}
	logger := newLogger(c)
	stderr := errWriter(c)

	analyze := func(ctx context.Context) {
		rep, err := engine.New(cfg, engine.WithLogger(logger)).Run(ctx, root)
		if err != nil {
			if ctx.Err() == nil {
				fmt.Fprintln(stderr, color.RedString("analysis failed: %v", err))
			}
			return
		}
		if err := write(c, cfg, report.FullView(rep, c.Bool("diagram"))); err != nil {
			fmt.Fprintln(stderr, color.RedString("write failed: %v", err))
		}
	}

	w, err := watch.New(root, cfg, func(ctx context.Context, changed []string) {
		fmt.Fprintln(stderr, color.YellowString("\nChanged: %s", summarizeChanges(changed)))
		fmt.Fprintln(stderr, strings.Repeat("-", 40))
		analyze(ctx)
	}, watch.WithDebounce(c.Duration("debounce")), watch.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Start(); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}

	analyze(c.Context)
	fmt.Fprintln(stderr, color.CyanString("Watching for changes in %s. Press Ctrl+C to stop.", root))
	return w.Run(c.Context)
}

// summarizeChanges lists up to five paths and counts the rest.
func summarizeChanges(changed []string) string {
	const shown = 5
	if len(changed) <= shown {
		return strings.Join(changed, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(changed[:shown], ", "), len(changed)-shown)
}
