package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/panbanda/strata/internal/output"
	"github.com/panbanda/strata/pkg/analyzer/architecture"
	"github.com/panbanda/strata/pkg/analyzer/complexity"
	"github.com/panbanda/strata/pkg/engine"
	"github.com/panbanda/strata/pkg/issues"
	"github.com/panbanda/strata/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *engine.Report {
	parse := models.NewParseResult([]models.ParsedFile{
		{FilePath: "app/controllers/user_controller.py", Language: "python", LinesOfCode: 1200},
		{FilePath: "app/models/user.py", Language: "python", LinesOfCode: 40},
		{FilePath: "cmd/main.go", Language: "go", LinesOfCode: 12},
	}, nil, time.Millisecond)

	cx := &complexity.Analysis{
		Threshold: 15,
		Summary:   complexity.Summary{TotalFunctions: 3, TotalFiles: 3, AverageComplexity: 9.5, MaxComplexity: 22},
		FunctionsOverThreshold: []complexity.FunctionComplexity{{
			FunctionName: "UserController.update",
			FilePath:     "app/controllers/user_controller.py",
			Line:         42,
			Complexity:   22,
			Threshold:    15,
			Category:     complexity.CategoryReduceNesting,
		}},
		Heatmap: []complexity.FileHeat{{FilePath: "app/controllers/user_controller.py", AverageComplexity: 14, MaxComplexity: 22, FunctionCount: 2}},
	}
	arch := &architecture.Analysis{
		Pattern:           architecture.PatternMVC,
		CandidatePatterns: []architecture.Pattern{architecture.PatternMVC},
		Confidence:        0.8,
		Layers:            []architecture.Layer{{Name: "controllers", Files: []string{"app/controllers/user_controller.py"}, LinesOfCode: 1200}},
		Components:        []architecture.Component{{Name: "UserController", Type: architecture.ComponentController}},
		Cycles:            []architecture.Cycle{{Components: []string{"UserController", "UserService"}}},
		Diagram:           "graph TB\n  UserController --> UserService\n",
	}

	list := issues.Aggregate(cx, arch)
	return &engine.Report{
		Parse:        parse,
		Complexity:   &models.AnalyzerResult[*complexity.Analysis]{Name: complexity.Name, Version: complexity.Version, Data: cx},
		Architecture: &models.AnalyzerResult[*architecture.Analysis]{Name: architecture.Name, Version: architecture.Version, Data: arch},
		Issues:       list,
		Summary:      issues.Summarize(list),
	}
}

func TestNewRenderData(t *testing.T) {
	data := NewRenderData(Metadata{Repository: "demo"}, sampleReport())

	require.Len(t, data.Metadata.Languages, 2)
	assert.Equal(t, LanguageStat{Language: "python", Files: 2, Lines: 1240}, data.Metadata.Languages[0])
	assert.Equal(t, "go", data.Metadata.Languages[1].Language)
	require.NotNil(t, data.Complexity)
	assert.Len(t, data.Remediation, 4)
	require.NotNil(t, data.Architecture)

	empty := NewRenderData(Metadata{}, nil)
	assert.Nil(t, empty.Complexity)
}

func TestRenderer_Render(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	meta := Metadata{Repository: "demo", GeneratedAt: time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC), StrataVersion: "1.2.3"}
	require.NoError(t, r.Render(&buf, NewRenderData(meta, sampleReport())))

	html := buf.String()
	for _, want := range []string{
		"<title>Strata Report - demo</title>",
		"2026-01-02 03:04",
		"1,252",
		"UserController.update",
		"circular-dependency",
		`class="mermaid"`,
		"Python",
	} {
		assert.Contains(t, html, want)
	}

	assert.Error(t, r.Render(&buf, nil))
}

func TestRenderer_RenderWithoutAnalyzers(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	rep := &engine.Report{Parse: models.EmptyParseResult(), Issues: []models.Issue{}}
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, NewRenderData(Metadata{}, rep)))
	assert.Contains(t, buf.String(), "No issues found.")
	assert.NotContains(t, buf.String(), "<h2>Architecture</h2>")
}

func TestLoadReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	raw, err := json.Marshal(sampleReport())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	loaded, err := LoadReport(path)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Parse.TotalFiles)
	require.NotNil(t, loaded.Architecture)
	assert.Equal(t, architecture.PatternMVC, loaded.Architecture.Data.Pattern)
	assert.Len(t, loaded.Issues, len(sampleReport().Issues))

	bogus := filepath.Join(dir, "bogus.json")
	require.NoError(t, os.WriteFile(bogus, []byte(`{"issues":[]}`), 0o644))
	_, err = LoadReport(bogus)
	assert.Error(t, err)

	_, err = LoadReport(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func render(t *testing.T, format output.Format, v any) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, output.NewWriterFormatter(format, &buf, false).Output(v))
	return buf.String()
}

func TestParseView(t *testing.T) {
	r := sampleReport().Parse
	r.ParseErrors = []models.ParseError{{FilePath: "bad.rs", Message: "syntax", Severity: models.ParseSeverityWarning}}

	text := render(t, output.FormatText, ParseView(r))
	assert.Contains(t, text, "cmd/main.go")
	assert.Contains(t, text, "1,200")
	assert.Contains(t, text, "Parse Errors")

	js := render(t, output.FormatJSON, ParseView(r))
	assert.Contains(t, js, `"total_files": 3`)

	assert.Contains(t, render(t, output.FormatMarkdown, ParseView(nil)), "| Total: 0 files |")
}

func TestComplexityView(t *testing.T) {
	rep := sampleReport()

	md := render(t, output.FormatMarkdown, ComplexityView(rep.Complexity))
	assert.Contains(t, md, "# Complexity Analysis")
	assert.Contains(t, md, "| UserController.update | app/controllers/user_controller.py:42 | 22 | REDUCE_NESTING |")

	js := render(t, output.FormatJSON, ComplexityView(rep.Complexity))
	assert.Contains(t, js, `"name": "complexity-analyzer"`)

	text := render(t, output.FormatText, ComplexityView(nil))
	assert.Contains(t, text, "Threshold")
	assert.NotContains(t, text, "Functions Over Threshold")
}

func TestArchitectureView(t *testing.T) {
	rep := sampleReport()

	withDiagram := render(t, output.FormatMarkdown, ArchitectureView(rep.Architecture, true))
	assert.Contains(t, withDiagram, "```mermaid\ngraph TB\n")
	assert.Contains(t, withDiagram, "UserController -> UserService")

	js := render(t, output.FormatJSON, ArchitectureView(rep.Architecture, false))
	assert.Contains(t, js, `"pattern": "MVC"`)
	assert.Contains(t, js, `"diagram": ""`)
	assert.NotEmpty(t, rep.Architecture.Data.Diagram, "view must not modify the analysis")

	text := render(t, output.FormatText, ArchitectureView(nil, true))
	assert.Contains(t, text, "UNKNOWN")
}

func TestIssuesView(t *testing.T) {
	rep := sampleReport()
	text := render(t, output.FormatText, IssuesView(rep.Issues, rep.Summary))

	assert.True(t, strings.Index(text, "HIGH") < strings.Index(text, "MEDIUM"), "issues must be listed most severe first:\n%s", text)
	assert.Contains(t, text, "app/controllers/user_controller.py:42")

	yml := render(t, output.FormatYAML, IssuesView(rep.Issues, rep.Summary))
	assert.Contains(t, yml, "summary:")
	assert.Contains(t, yml, "type: high-complexity")
}

func TestFullView(t *testing.T) {
	rep := sampleReport()
	md := render(t, output.FormatMarkdown, FullView(rep, false))
	assert.True(t, strings.HasPrefix(md, "# Strata Report\n"))
	assert.Contains(t, md, "# Complexity Analysis")
	assert.Contains(t, md, "# Architecture Analysis")
	assert.NotContains(t, md, "```mermaid")
}
