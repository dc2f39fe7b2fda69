package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/panbanda/strata/internal/cache"
	"github.com/panbanda/strata/internal/output"
	"github.com/panbanda/strata/internal/report"
	"github.com/panbanda/strata/pkg/config"
	"github.com/panbanda/strata/pkg/engine"
	"github.com/panbanda/strata/pkg/issues"
	"github.com/panbanda/strata/pkg/models"
	"github.com/urfave/cli/v2"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"all"},
		Usage:     "Run every analyzer and report aggregated issues",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "threshold",
				Aliases: []string{"t"},
				Usage:   "Complexity above which a function is flagged (default from config)",
			},
			&cli.StringFlag{
				Name:  "min-severity",
				Value: "low",
				Usage: "Only report issues at or above this severity: low, medium, high",
			},
			&cli.StringFlag{
				Name:  "fail-on",
				Usage: "Exit with status 2 when any issue at or above this severity is found",
			},
			&cli.BoolFlag{
				Name:    "diagram",
				Aliases: []string{"d"},
				Usage:   "Include the mermaid component diagram",
			},
		},
		Action: runAnalyzeCmd,
	}
}

func runAnalyzeCmd(c *cli.Context) error {
	floor, ok := models.ParseLevel(c.String("min-severity"))
	if !ok {
		return fmt.Errorf("unknown severity %q", c.String("min-severity"))
	}
	var gate models.Level
	if s := c.String("fail-on"); s != "" {
		if gate, ok = models.ParseLevel(s); !ok {
			return fmt.Errorf("unknown severity %q", s)
		}
	}

	cfg, root, files, err := prepare(c)
	if err != nil || files == nil {
		return err
	}
	if t := c.Int("threshold"); t > 0 {
		cfg.Thresholds.Complexity = t
	}

	rep, err := cachedRun(c, cfg, root, files)
	if err != nil {
		return err
	}

	shown := *rep
	shown.Issues = issues.AtLeast(rep.Issues, floor)
	shown.Summary = issues.Summarize(shown.Issues)
	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()
	if err := formatter.Output(report.FullView(&shown, c.Bool("diagram"))); err != nil {
		return err
	}
	if formatter.Format() == output.FormatText {
		fmt.Fprintln(formatter.Writer())
		printSummary(formatter, shown.Summary)
	}

	if gate != "" {
		if failing := issues.AtLeast(rep.Issues, gate); len(failing) > 0 {
			return cli.Exit(fmt.Sprintf("%d issue(s) at or above %s severity", len(failing), gate), 2)
		}
	}
	return nil
}

// cachedRun returns the report for root from the cache when the tree and
// settings are unchanged, and runs the engine otherwise.
func cachedRun(c *cli.Context, cfg *config.Config, root string, files []string) (*engine.Report, error) {
	logger := newLogger(c)

	dir := cfg.Cache.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	store, err := cache.New(dir, time.Duration(cfg.Cache.TTL)*time.Hour, cfg.Cache.Enabled && !c.Bool("no-cache"))
	if err != nil {
		logger.Warn("cache unavailable", "error", err)
		store, _ = cache.New("", 0, false)
	}

	var key string
	if store.Enabled() {
		key, err = cache.Fingerprint(root, files, cacheSettings(cfg)...)
		if err != nil {
			logger.Warn("cannot fingerprint tree", "error", err)
		}
	}
	if key != "" {
		if data, ok := store.Get(key); ok {
			var rep engine.Report
			if err := json.Unmarshal(data, &rep); err == nil && rep.Parse != nil {
				logger.Debug("cache hit", "key", key)
				return &rep, nil
			}
		}
	}

	rep, err := runEngine(c, cfg, root, len(files))
	if err != nil {
		return nil, err
	}

	if key != "" {
		data, err := json.Marshal(rep)
		if err == nil {
			err = store.Set(key, data)
		}
		if err != nil {
			logger.Warn("cache write failed", "error", err)
		}
	}
	return rep, nil
}

// cacheSettings lists the settings that change a report.
func cacheSettings(cfg *config.Config) []string {
	return []string{
		"version=" + version,
		fmt.Sprintf("complexity=%t/%d", cfg.Analysis.Complexity, cfg.Thresholds.Complexity),
		fmt.Sprintf("architecture=%t/%g", cfg.Analysis.Architecture, cfg.Thresholds.ArchitectureReview),
		"languages=" + strings.Join(cfg.Adapters.Languages, ","),
		"rust_parser=" + cfg.Adapters.RustParser,
		fmt.Sprintf("limits=%d/%d", cfg.Adapters.MaxFileSize, cfg.Adapters.Timeout),
	}
}

// printSummary writes a one-line, severity-colored issue count.
func printSummary(f *output.Formatter, s issues.Summary) {
	colored := f.Colored()
	fmt.Fprintf(f.Writer(), "%d issues: %s, %s, %s\n",
		s.Total,
		output.SeverityColor("high", fmt.Sprintf("%d high", s.BySeverity[models.LevelHigh]), colored),
		output.SeverityColor("medium", fmt.Sprintf("%d medium", s.BySeverity[models.LevelMedium]), colored),
		output.SeverityColor("low", fmt.Sprintf("%d low", s.BySeverity[models.LevelLow]), colored),
	)
}
