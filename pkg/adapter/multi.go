package adapter

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/panbanda/strata/internal/scanner"
	"github.com/panbanda/strata/pkg/models"
	"github.com/panbanda/strata/pkg/parser"
)

// multiAdapter scans a tree once and hands each adapter the files of the
// languages it supports.
type multiAdapter struct {
	adapters []Adapter
	opts     options
}

// NewMulti combines adapters into one. Results are merged; when two adapters
// report the same file path the first is kept and a warning is recorded.
func NewMulti(adapters []Adapter, opts ...Option) Adapter {
	return &multiAdapter{adapters: adapters, opts: buildOptions(opts)}
}

// NewDefault returns a multi adapter covering every supported language.
// When the configuration names a rust-parser binary it replaces the
// tree-sitter Rust adapter.
func NewDefault(opts ...Option) Adapter {
	o := buildOptions(opts)
	rust := NewRustAdapter(opts...)
	if o.config.Adapters.RustParser != "" {
		rust = NewRustToolAdapter(o.config.Adapters.RustParser, o.config.AdapterTimeout(), opts...)
	}
	return NewMulti([]Adapter{
		NewTypeScriptAdapter(opts...),
		NewPythonAdapter(opts...),
		NewGoAdapter(opts...),
		rust,
		NewJavaAdapter(opts...),
	}, opts...)
}

func (m *multiAdapter) Name() string {
	return "multi"
}

func (m *multiAdapter) Supports(lang parser.Language) bool {
	for _, a := range m.adapters {
		if a.Supports(lang) {
			return true
		}
	}
	return false
}

func (m *multiAdapter) Parse(ctx context.Context, rootDir string) *models.ParseResult {
	files, err := scanDir(m.opts.config, rootDir)
	if err != nil {
		return models.EmptyParseResult(models.ParseError{
			FilePath: rootDir,
			Message:  fmt.Sprintf("failed to scan directory: %v", err),
			Severity: models.ParseSeverityError,
		})
	}
	return m.ParseFiles(ctx, rootDir, files)
}

func (m *multiAdapter) ParseFiles(ctx context.Context, rootDir string, files []string) *models.ParseResult {
	start := time.Now()

	groups := scanner.GroupByLanguage(files)
	results := make([]*models.ParseResult, 0, len(m.adapters))
	for _, a := range m.adapters {
		if ctx.Err() != nil {
			break
		}
		subset := filesFor(a, groups)
		if len(subset) == 0 {
			continue
		}
		if fp, ok := a.(FileParser); ok {
			results = append(results, fp.ParseFiles(ctx, rootDir, subset))
		} else {
			results = append(results, a.Parse(ctx, rootDir))
		}
	}

	merged := mergeResults(results, time.Since(start))
	m.opts.logger.Debug("merged adapter results",
		"adapters", len(results),
		"files", merged.TotalFiles,
		"errors", len(merged.ParseErrors),
	)
	return merged
}

func filesFor(a Adapter, groups map[parser.Language][]string) []string {
	var out []string
	for lang, files := range groups {
		if a.Supports(lang) {
			out = append(out, files...)
		}
	}
	slices.Sort(out)
	return out
}

// mergeResults concatenates results in order, keeping the first occurrence of each path.
func mergeResults(results []*models.ParseResult, elapsed time.Duration) *models.ParseResult {
	seen := make(map[string]bool)
	var files []models.ParsedFile
	var errs []models.ParseError
	for _, r := range results {
		errs = append(errs, r.ParseErrors...)
		for _, f := range r.Files {
			if seen[f.FilePath] {
				errs = append(errs, models.ParseError{
					FilePath: f.FilePath,
					Message:  "duplicate file path reported by multiple adapters; keeping first",
					Severity: models.ParseSeverityWarning,
				})
				continue
			}
			seen[f.FilePath] = true
			files = append(files, f)
		}
	}
	return models.NewParseResult(files, errs, elapsed)
}
