// Package engine wires adapters, analyzers and the issue aggregator into a
// single entry point: give it a root directory, get back a Report.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/panbanda/strata/internal/fileproc"
	"github.com/panbanda/strata/pkg/adapter"
	"github.com/panbanda/strata/pkg/analyzer"
	"github.com/panbanda/strata/pkg/analyzer/architecture"
	"github.com/panbanda/strata/pkg/analyzer/complexity"
	"github.com/panbanda/strata/pkg/config"
	"github.com/panbanda/strata/pkg/issues"
	"github.com/panbanda/strata/pkg/models"
	"github.com/sourcegraph/conc"
)

// Report is the combined output of one engine run. Analyzer results are
// nil when the analyzer is disabled in the configuration.
type Report struct {
	Parse        *models.ParseResult                            `json:"parse"`
	Complexity   *models.AnalyzerResult[*complexity.Analysis]   `json:"complexity,omitempty"`
	Architecture *models.AnalyzerResult[*architecture.Analysis] `json:"architecture,omitempty"`
	Issues       []models.Issue                                 `json:"issues"`
	Summary      issues.Summary                                 `json:"summary"`
}

// Engine runs the analysis pipeline. It holds no state between calls and
// is safe for concurrent use.
type Engine struct {
	cfg        *config.Config
	adapter    adapter.Adapter
	logger     *slog.Logger
	onProgress fileproc.ProgressFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithAdapter replaces the default multi-language adapter.
func WithAdapter(a adapter.Adapter) Option {
	return func(e *Engine) {
		e.adapter = a
	}
}

// WithLogger sets the diagnostic logger. Logs are discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithProgress sets a callback invoked once per parsed file.
func WithProgress(fn fileproc.ProgressFunc) Option {
	return func(e *Engine) {
		e.onProgress = fn
	}
}

// New creates an engine. A nil cfg uses config.DefaultConfig.
func New(cfg *config.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if e.adapter == nil {
		e.adapter = adapter.NewDefault(
			adapter.WithConfig(cfg),
			adapter.WithLogger(e.logger),
			adapter.WithProgress(e.onProgress),
		)
	}
	return e
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Parse converts the tree under root into the canonical model. Problems
// with individual files are reported in the result; an error is returned
// only when ctx is cancelled.
func (e *Engine) Parse(ctx context.Context, root string) (*models.ParseResult, error) {
	result := e.adapter.Parse(ctx, root)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse %s: %w", root, err)
	}
	return result, nil
}

// Run parses root and analyzes the result.
func (e *Engine) Run(ctx context.Context, root string) (*Report, error) {
	result, err := e.Parse(ctx, root)
	if err != nil {
		return nil, err
	}
	return e.Analyze(ctx, result)
}

// Analyze runs the enabled analyzers concurrently over result and
// aggregates their issues.
func (e *Engine) Analyze(ctx context.Context, result *models.ParseResult) (*Report, error) {
	start := time.Now()
	if result == nil {
		result = models.EmptyParseResult()
	}
	report := &Report{Parse: result}

	var cxErr, archErr error
	wg := conc.NewWaitGroup()
	if e.cfg.Analysis.Complexity {
		wg.Go(func() {
			a := complexity.New(complexity.WithThreshold(e.cfg.Thresholds.Complexity))
			r, err := a.Analyze(ctx, result)
			if err != nil {
				cxErr = err
				return
			}
			report.Complexity = &r
		})
	}
	if e.cfg.Analysis.Architecture {
		wg.Go(func() {
			a := architecture.New(architecture.WithReviewThreshold(e.cfg.Thresholds.ArchitectureReview))
			r, err := a.Analyze(ctx, result)
			if err != nil {
				archErr = err
				return
			}
			report.Architecture = &r
		})
	}
	wg.Wait()

	if cxErr != nil {
		return nil, fmt.Errorf("complexity analysis: %w", cxErr)
	}
	if archErr != nil {
		return nil, fmt.Errorf("architecture analysis: %w", archErr)
	}

	var sources []analyzer.IssueSource
	if report.Complexity != nil {
		sources = append(sources, report.Complexity.Data)
	}
	if report.Architecture != nil {
		sources = append(sources, report.Architecture.Data)
	}
	report.Issues = issues.Aggregate(sources...)
	report.Summary = issues.Summarize(report.Issues)

	e.logger.Debug("analysis complete",
		"files", result.TotalFiles,
		"issues", len(report.Issues),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}
