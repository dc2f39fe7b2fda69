package models

import (
	"sort"
	"time"
)

// ParseErrorSeverity classifies a recoverable adapter problem.
type ParseErrorSeverity string

const (
	ParseSeverityError   ParseErrorSeverity = "error"
	ParseSeverityWarning ParseErrorSeverity = "warning"
)

// ParseError records a file or tool that could not be fully parsed.
type ParseError struct {
	FilePath string             `json:"file_path"`
	Message  string             `json:"message"`
	Severity ParseErrorSeverity `json:"severity"`
}

// ParsedFile is the canonical representation of one source file.
type ParsedFile struct {
	FilePath     string       `json:"file_path"`
	Language     string       `json:"language"`
	Elements     []Element    `json:"elements"`
	Dependencies []Dependency `json:"dependencies"`
	LinesOfCode  int          `json:"lines_of_code"`
}

// Callables returns the function and method elements of the file in source order.
func (f *ParsedFile) Callables() []Element {
	var out []Element
	for _, e := range f.Elements {
		if e.IsCallable() {
			out = append(out, e)
		}
	}
	return out
}

// ParseResult is the root output of a language adapter.
type ParseResult struct {
	Files            []ParsedFile `json:"files"`
	TotalFiles       int          `json:"total_files"`
	TotalLinesOfCode int          `json:"total_lines_of_code"`
	ParseErrors      []ParseError `json:"parse_errors"`
	ParseDurationMs  int64        `json:"parse_duration_ms"`
}

// NewParseResult builds a ParseResult whose totals agree with files.
// Files are ordered by path so results are deterministic regardless of
// the order workers finished in.
func NewParseResult(files []ParsedFile, errs []ParseError, elapsed time.Duration) *ParseResult {
	if files == nil {
		files = []ParsedFile{}
	}
	if errs == nil {
		errs = []ParseError{}
	}
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].FilePath < files[j].FilePath
	})
	sort.SliceStable(errs, func(i, j int) bool {
		return errs[i].FilePath < errs[j].FilePath
	})

	loc := 0
	for _, f := range files {
		loc += f.LinesOfCode
	}

	return &ParseResult{
		Files:            files,
		TotalFiles:       len(files),
		TotalLinesOfCode: loc,
		ParseErrors:      errs,
		ParseDurationMs:  elapsed.Milliseconds(),
	}
}

// EmptyParseResult returns a result with no files and the given errors.
func EmptyParseResult(errs ...ParseError) *ParseResult {
	return NewParseResult(nil, errs, 0)
}

// File returns the parsed file with the given path.
func (r *ParseResult) File(path string) (*ParsedFile, bool) {
	for i := range r.Files {
		if r.Files[i].FilePath == path {
			return &r.Files[i], true
		}
	}
	return nil, false
}

// HasErrors reports whether any error-severity entries were recorded.
func (r *ParseResult) HasErrors() bool {
	for _, e := range r.ParseErrors {
		if e.Severity == ParseSeverityError {
			return true
		}
	}
	return false
}
