package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/panbanda/strata/pkg/analyzer/architecture"
	"github.com/panbanda/strata/pkg/analyzer/complexity"
	"github.com/panbanda/strata/pkg/config"
	"github.com/panbanda/strata/pkg/models"
	"github.com/panbanda/strata/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	result *models.ParseResult
	calls  int
}

func (s *stubAdapter) Name() string { return "stub" }

func (s *stubAdapter) Supports(parser.Language) bool { return true }

func (s *stubAdapter) Parse(context.Context, string) *models.ParseResult {
	s.calls++
	return s.result
}

func fn(path, name string, complexity int) models.Element {
	return models.Element{
		Kind:       models.ElementFunction,
		Name:       name,
		Location:   models.Location{FilePath: path, Line: 1},
		Complexity: complexity,
	}
}

func stubResult() *models.ParseResult {
	return models.NewParseResult([]models.ParsedFile{
		{FilePath: "svc/handler.go", Language: "go", LinesOfCode: 50, Elements: []models.Element{
			fn("svc/handler.go", "Handle", 35),
			fn("svc/handler.go", "ok", 2),
		}},
		{FilePath: "main.go", Language: "go", LinesOfCode: 5, Elements: []models.Element{fn("main.go", "main", 1)}},
	}, nil, 0)
}

func TestRun_WithStubAdapter(t *testing.T) {
	stub := &stubAdapter{result: stubResult()}
	e := New(nil, WithAdapter(stub))

	report, err := e.Run(context.Background(), "ignored")
	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls)

	require.NotNil(t, report.Complexity)
	assert.Equal(t, complexity.Name, report.Complexity.Name)
	assert.Equal(t, complexity.Version, report.Complexity.Version)
	assert.Len(t, report.Complexity.Data.FunctionsOverThreshold, 1)

	require.NotNil(t, report.Architecture)
	assert.Equal(t, architecture.Name, report.Architecture.Name)
	assert.Equal(t, architecture.PatternUnknown, report.Architecture.Data.Pattern)

	// one high-complexity issue (HIGH) then the architecture review (MEDIUM)
	require.Len(t, report.Issues, 2)
	assert.Equal(t, models.IssueHighComplexity, report.Issues[0].Type)
	assert.Equal(t, models.IssueArchitectureReview, report.Issues[1].Type)
	assert.Equal(t, 2, report.Summary.Total)
}

func TestAnalyze_RespectsConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Analysis.Architecture = false
	cfg.Thresholds.Complexity = 40

	report, err := New(cfg, WithAdapter(&stubAdapter{})).Analyze(context.Background(), stubResult())
	require.NoError(t, err)

	assert.Nil(t, report.Architecture)
	require.NotNil(t, report.Complexity)
	assert.Equal(t, 40, report.Complexity.Data.Threshold)
	assert.Empty(t, report.Complexity.Data.FunctionsOverThreshold)
	assert.Empty(t, report.Issues)
	assert.NotNil(t, report.Issues)
}

func TestAnalyze_NilResult(t *testing.T) {
	report, err := New(nil, WithAdapter(&stubAdapter{})).Analyze(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, report.Parse.TotalFiles)
	assert.Zero(t, report.Complexity.Data.Summary.AverageComplexity)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil, WithAdapter(&stubAdapter{result: stubResult()})).Run(ctx, "ignored")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_DefaultAdapter(t *testing.T) {
	dir := t.TempDir()
	src := `package main

func main() {
	for i := 0; i < 3; i++ {
		if i > 1 && i < 3 {
			println(i)
		}
	}
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte(src), 0o644))

	report, err := New(nil).Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Parse.TotalFiles)
	require.NotNil(t, report.Complexity)
	assert.Equal(t, 4.0, report.Complexity.Data.Summary.AverageComplexity)
}
