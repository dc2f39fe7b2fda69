// Package adapter converts source trees into the canonical parse model.
//
// Each Adapter handles one language family. Adapters never fail: unreadable
// files, syntax errors and missing external tools are reported as
// models.ParseError entries on the returned ParseResult.
package adapter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/panbanda/strata/internal/fileproc"
	"github.com/panbanda/strata/internal/scanner"
	"github.com/panbanda/strata/pkg/config"
	"github.com/panbanda/strata/pkg/models"
	"github.com/panbanda/strata/pkg/parser"
)

// Adapter converts a directory of source files into a ParseResult.
type Adapter interface {
	// Name identifies the adapter in logs and errors.
	Name() string
	// Supports reports whether the adapter parses files of lang.
	Supports(lang parser.Language) bool
	// Parse scans rootDir and parses every supported file.
	Parse(ctx context.Context, rootDir string) *models.ParseResult
}

// FileParser is implemented by adapters that can parse an already scanned
// file list. Paths must be inside rootDir.
type FileParser interface {
	ParseFiles(ctx context.Context, rootDir string, files []string) *models.ParseResult
}

type options struct {
	config     *config.Config
	workers    int
	logger     *slog.Logger
	onProgress fileproc.ProgressFunc
}

// Option configures an adapter.
type Option func(*options)

// WithConfig sets the configuration used for scanning and size limits.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithWorkers sets the number of parse workers (0 = 2x NumCPU).
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithProgress sets a callback invoked once per processed file.
func WithProgress(fn fileproc.ProgressFunc) Option {
	return func(o *options) {
		o.onProgress = fn
	}
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.config == nil {
		o.config = config.DefaultConfig()
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.workers == 0 {
		o.workers = o.config.Analysis.Workers
	}
	return o
}

// extractFunc turns a parsed tree into the canonical file model.
type extractFunc func(tree *parser.Tree, relPath string) models.ParsedFile

// treeSitterAdapter is the shared implementation behind every tree-sitter adapter.
type treeSitterAdapter struct {
	name      string
	languages map[parser.Language]bool
	extract   extractFunc
	opts      options
}

func newTreeSitterAdapter(name string, extract extractFunc, opts []Option, langs ...parser.Language) *treeSitterAdapter {
	set := make(map[parser.Language]bool, len(langs))
	for _, l := range langs {
		set[l] = true
	}
	return &treeSitterAdapter{
		name:      name,
		languages: set,
		extract:   extract,
		opts:      buildOptions(opts),
	}
}

func (a *treeSitterAdapter) Name() string {
	return a.name
}

func (a *treeSitterAdapter) Supports(lang parser.Language) bool {
	return a.languages[lang]
}

func (a *treeSitterAdapter) Parse(ctx context.Context, rootDir string) *models.ParseResult {
	files, err := scanDir(a.opts.config, rootDir)
	if err != nil {
		return models.EmptyParseResult(models.ParseError{
			FilePath: rootDir,
			Message:  fmt.Sprintf("%s: failed to scan directory: %v", a.name, err),
			Severity: models.ParseSeverityError,
		})
	}
	return a.ParseFiles(ctx, rootDir, filterSupported(a, files))
}

// parsedFile carries an extracted file plus a non-fatal syntax warning.
type parsedFile struct {
	file    models.ParsedFile
	warning string
}

func (a *treeSitterAdapter) ParseFiles(ctx context.Context, rootDir string, files []string) *models.ParseResult {
	start := time.Now()
	var parseErrors []models.ParseError

	kept, skipped := scanner.FilterBySize(files, a.opts.config.Adapters.MaxFileSize)
	for _, path := range skipped {
		parseErrors = append(parseErrors, models.ParseError{
			FilePath: scanner.RelPath(rootDir, path),
			Message:  fmt.Sprintf("skipped: file exceeds max size of %d bytes or is unreadable", a.opts.config.Adapters.MaxFileSize),
			Severity: models.ParseSeverityWarning,
		})
	}

	results, errs := fileproc.MapFilesN(ctx, kept, a.opts.workers, func(psr *parser.Parser, path string) (parsedFile, error) {
		tree, err := psr.ParseFile(ctx, path)
		if err != nil {
			return parsedFile{}, err
		}
		defer tree.Tree.Close()

		pf := parsedFile{file: a.extract(tree, scanner.RelPath(rootDir, path))}
		if tree.Root().HasError() {
			pf.warning = "syntax errors found; results may be partial"
		}
		return pf, nil
	}, a.opts.onProgress)

	parsed := make([]models.ParsedFile, 0, len(results))
	for _, r := range results {
		parsed = append(parsed, r.file)
		if r.warning != "" {
			parseErrors = append(parseErrors, models.ParseError{
				FilePath: r.file.FilePath,
				Message:  r.warning,
				Severity: models.ParseSeverityWarning,
			})
		}
	}
	for _, e := range errs.Sorted() {
		parseErrors = append(parseErrors, models.ParseError{
			FilePath: scanner.RelPath(rootDir, e.Path),
			Message:  e.Err.Error(),
			Severity: models.ParseSeverityError,
		})
	}

	result := models.NewParseResult(parsed, parseErrors, time.Since(start))
	a.opts.logger.Debug("parsed files",
		"adapter", a.name,
		"files", result.TotalFiles,
		"loc", result.TotalLinesOfCode,
		"errors", len(result.ParseErrors),
		"duration_ms", result.ParseDurationMs,
	)
	return result
}

func scanDir(cfg *config.Config, rootDir string) ([]string, error) {
	info, err := os.Stat(rootDir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", rootDir)
	}
	return scanner.NewScanner(cfg).ScanDir(rootDir)
}

func filterSupported(a Adapter, files []string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		if a.Supports(parser.DetectLanguage(f)) {
			out = append(out, f)
		}
	}
	return out
}
