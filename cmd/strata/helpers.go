package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/panbanda/strata/internal/output"
	"github.com/panbanda/strata/internal/progress"
	"github.com/panbanda/strata/internal/scanner"
	"github.com/panbanda/strata/pkg/config"
	"github.com/panbanda/strata/pkg/engine"
	"github.com/urfave/cli/v2"
)

// getRoot returns the absolute directory named by the positional argument,
// defaulting to ".".
func getRoot(c *cli.Context) (string, error) {
	if c.Args().Len() > 1 {
		return "", fmt.Errorf("expected at most one path, got %d", c.Args().Len())
	}
	root := "."
	if c.Args().Len() == 1 {
		root = c.Args().First()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("invalid path %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", root)
	}
	return abs, nil
}

func errWriter(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}

func newLogger(c *cli.Context) *slog.Logger {
	level := slog.LevelWarn
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(errWriter(c), &slog.HandlerOptions{Level: level}))
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, source, err := config.LoadOrDefault(c.String("config"))
	if err != nil {
		return nil, err
	}
	if source != "" {
		newLogger(c).Debug("loaded config", "path", source)
	}
	return cfg, nil
}

func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	format := c.String("format")
	if format == "" {
		format = cfg.Output.Format
	}
	return output.NewFormatter(output.ParseFormat(format), c.String("output"), cfg.Output.Color && !color.NoColor)
}

// scanFiles lists the files the adapters will see, so commands can bail out
// early and size the progress bar.
func scanFiles(cfg *config.Config, root string) ([]string, error) {
	files, err := scanner.NewScanner(cfg).ScanDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", root, err)
	}
	return files, nil
}

// runEngine parses and analyzes root with a progress bar sized to total.
func runEngine(c *cli.Context, cfg *config.Config, root string, total int) (*engine.Report, error) {
	tracker := progress.NewTracker("Analyzing...", total)
	eng := engine.New(cfg,
		engine.WithLogger(newLogger(c)),
		engine.WithProgress(tracker.Tick),
	)
	rep, err := eng.Run(c.Context, root)
	if err != nil {
		tracker.Fail(err)
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	tracker.Done()
	return rep, nil
}

// prepare loads the config, resolves the root and scans it. A nil file
// list with a nil error means there is nothing to analyze; the caller
// should return quietly.
func prepare(c *cli.Context) (*config.Config, string, []string, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, "", nil, err
	}
	root, err := getRoot(c)
	if err != nil {
		return nil, "", nil, err
	}
	files, err := scanFiles(cfg, root)
	if err != nil {
		return nil, "", nil, err
	}
	if len(files) == 0 {
		color.Yellow("No source files found")
		return cfg, root, nil, nil
	}
	return cfg, root, files, nil
}

func write(c *cli.Context, cfg *config.Config, v any) error {
	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()
	return formatter.Output(v)
}
