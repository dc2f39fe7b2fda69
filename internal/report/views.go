package report

import (
	"fmt"
	"strings"

	"github.com/panbanda/strata/internal/output"
	"github.com/panbanda/strata/pkg/analyzer/architecture"
	"github.com/panbanda/strata/pkg/analyzer/complexity"
	"github.com/panbanda/strata/pkg/engine"
	"github.com/panbanda/strata/pkg/issues"
	"github.com/panbanda/strata/pkg/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

func location(file string, line int) string {
	if line > 0 {
		return fmt.Sprintf("%s:%d", file, line)
	}
	return file
}

// ParseView lists parsed files with their element and dependency counts.
func ParseView(r *models.ParseResult) *output.Report {
	if r == nil {
		r = models.EmptyParseResult()
	}
	rows := make([][]string, 0, len(r.Files))
	for _, f := range r.Files {
		rows = append(rows, []string{
			f.FilePath,
			f.Language,
			printer.Sprintf("%d", f.LinesOfCode),
			fmt.Sprintf("%d", len(f.Elements)),
			fmt.Sprintf("%d", len(f.Dependencies)),
		})
	}
	sections := []output.Renderable{
		output.NewTable("Files",
			[]string{"File", "Language", "Lines", "Elements", "Dependencies"},
			rows,
			[]string{
				printer.Sprintf("Total: %d files", r.TotalFiles),
				"",
				printer.Sprintf("%d", r.TotalLinesOfCode),
				"",
				"",
			},
			nil,
		),
	}
	if len(r.ParseErrors) > 0 {
		errRows := make([][]string, 0, len(r.ParseErrors))
		for _, e := range r.ParseErrors {
			errRows = append(errRows, []string{e.FilePath, string(e.Severity), e.Message})
		}
		sections = append(sections, output.NewTable("Parse Errors",
			[]string{"File", "Severity", "Message"}, errRows, nil, nil))
	}
	return &output.Report{Title: "Parse Results", Sections: sections, Data: r}
}

// ComplexityView summarizes a complexity result: statistics, functions over
// the threshold and the file heatmap.
func ComplexityView(res *models.AnalyzerResult[*complexity.Analysis]) *output.Report {
	a := &complexity.Analysis{Threshold: complexity.DefaultThreshold}
	if res != nil && res.Data != nil {
		a = res.Data
	}
	s := a.Summary

	stats := output.NewTable("Summary",
		[]string{"Metric", "Value"},
		[][]string{
			{"Files", printer.Sprintf("%d", s.TotalFiles)},
			{"Functions", printer.Sprintf("%d", s.TotalFunctions)},
			{"Average", fmt.Sprintf("%.2f", s.AverageComplexity)},
			{"Median", fmt.Sprintf("%.2f", s.MedianComplexity)},
			{"P90", fmt.Sprintf("%.2f", s.P90Complexity)},
			{"Min", fmt.Sprintf("%d", s.MinComplexity)},
			{"Max", fmt.Sprintf("%d", s.MaxComplexity)},
			{"Threshold", fmt.Sprintf("%d", a.Threshold)},
		},
		nil, nil,
	)

	sections := []output.Renderable{stats}

	if len(a.FunctionsOverThreshold) > 0 {
		rows := make([][]string, 0, len(a.FunctionsOverThreshold))
		for _, fn := range a.FunctionsOverThreshold {
			rows = append(rows, []string{
				fn.FunctionName,
				location(fn.FilePath, fn.Line),
				fmt.Sprintf("%d", fn.Complexity),
				string(fn.Category),
			})
		}
		sections = append(sections, output.NewTable("Functions Over Threshold",
			[]string{"Function", "Location", "Complexity", "Category"},
			rows,
			[]string{fmt.Sprintf("Total: %d", len(rows)), "", "", ""},
			nil,
		))
	}

	if len(a.Heatmap) > 0 {
		top := a.Heatmap[:min(listLimit, len(a.Heatmap))]
		rows := make([][]string, 0, len(top))
		for _, h := range top {
			rows = append(rows, []string{
				h.FilePath,
				fmt.Sprintf("%.2f", h.AverageComplexity),
				fmt.Sprintf("%d", h.MaxComplexity),
				fmt.Sprintf("%d", h.FunctionCount),
			})
		}
		sections = append(sections, output.NewTable("Heatmap",
			[]string{"File", "Average", "Max", "Functions"}, rows, nil, nil))
	}

	var data any = a
	if res != nil {
		data = res
	}
	return &output.Report{Title: "Complexity Analysis", Sections: sections, Data: data}
}

// ArchitectureView summarizes an architecture result. The mermaid diagram
// is included only when withDiagram is set; structured output drops it too.
func ArchitectureView(res *models.AnalyzerResult[*architecture.Analysis], withDiagram bool) *output.Report {
	a := &architecture.Analysis{Pattern: architecture.PatternUnknown}
	if res != nil && res.Data != nil {
		a = res.Data
	}

	candidates := make([]string, len(a.CandidatePatterns))
	for i, p := range a.CandidatePatterns {
		candidates[i] = string(p)
	}
	overview := output.NewTable("Overview",
		[]string{"Property", "Value"},
		[][]string{
			{"Pattern", string(a.Pattern)},
			{"Confidence", fmt.Sprintf("%.2f", a.Confidence)},
			{"Candidates", strings.Join(candidates, ", ")},
			{"Layers", fmt.Sprintf("%d", len(a.Layers))},
			{"Unlayered files", fmt.Sprintf("%d", a.UnlayeredFiles)},
			{"Components", fmt.Sprintf("%d", len(a.Components))},
			{"Cycles", fmt.Sprintf("%d", len(a.Cycles))},
		},
		nil, nil,
	)
	sections := []output.Renderable{overview}

	if len(a.Layers) > 0 {
		rows := make([][]string, 0, len(a.Layers))
		for _, l := range a.Layers {
			rows = append(rows, []string{
				l.Name,
				fmt.Sprintf("%d", len(l.Files)),
				printer.Sprintf("%d", l.LinesOfCode),
				fmt.Sprintf("%.2f", l.AverageComplexity),
				string(l.Complexity),
			})
		}
		sections = append(sections, output.NewTable("Layers",
			[]string{"Layer", "Files", "Lines", "Avg Complexity", "Rating"}, rows, nil, nil))
	}

	if len(a.Components) > 0 {
		rows := make([][]string, 0, len(a.Components))
		for _, c := range a.Components {
			rows = append(rows, []string{
				c.Name,
				string(c.Type),
				c.Layer,
				fmt.Sprintf("%d", len(c.Files)),
				fmt.Sprintf("%d", len(c.Dependencies)),
			})
		}
		sections = append(sections, output.NewTable("Components",
			[]string{"Component", "Type", "Layer", "Files", "Dependencies"}, rows, nil, nil))
	}

	if len(a.Relationships) > 0 {
		rows := make([][]string, 0, len(a.Relationships))
		for _, r := range a.Relationships {
			rows = append(rows, []string{
				r.From,
				r.To,
				string(r.Type),
				fmt.Sprintf("%.2f", r.Strength),
			})
		}
		sections = append(sections, output.NewTable("Relationships",
			[]string{"From", "To", "Type", "Strength"}, rows, nil, nil))
	}

	if len(a.Cycles) > 0 {
		rows := make([][]string, 0, len(a.Cycles))
		for _, c := range a.Cycles {
			rows = append(rows, []string{strings.Join(c.Components, " -> ")})
		}
		sections = append(sections, output.NewTable("Cycles", []string{"Components"}, rows, nil, nil))
	}

	var data any = a
	if res != nil {
		data = res
	}
	if withDiagram && a.Diagram != "" {
		sections = append(sections, &output.Section{Title: "Diagram", Content: a.Diagram, Fenced: "mermaid"})
	} else if res != nil && res.Data != nil {
		trimmed := *res.Data
		trimmed.Diagram = ""
		copied := *res
		copied.Data = &trimmed
		data = copied
	}
	return &output.Report{Title: "Architecture Analysis", Sections: sections, Data: data}
}

// IssuesView lists aggregated issues, most severe first, with a count per
// severity in the footer.
func IssuesView(list []models.Issue, summary issues.Summary) *output.Report {
	rows := make([][]string, 0, len(list))
	for _, is := range list {
		rows = append(rows, []string{
			string(is.Severity),
			is.Type,
			location(is.Location.FilePath, is.Location.Line),
			is.Message,
		})
	}
	footer := []string{
		fmt.Sprintf("Total: %d", summary.Total),
		fmt.Sprintf("high %d, medium %d, low %d",
			summary.BySeverity[models.LevelHigh],
			summary.BySeverity[models.LevelMedium],
			summary.BySeverity[models.LevelLow]),
		"",
		"",
	}
	tbl := output.NewTable("Issues", []string{"Severity", "Type", "Location", "Message"}, rows, footer, nil)
	return &output.Report{
		Sections: []output.Renderable{tbl},
		Data: map[string]any{
			"issues":  list,
			"summary": summary,
		},
	}
}

// FullView combines every section of an engine report.
func FullView(r *engine.Report, withDiagram bool) *output.Report {
	var sections []output.Renderable
	if r.Complexity != nil {
		sections = append(sections, ComplexityView(r.Complexity))
	}
	if r.Architecture != nil {
		sections = append(sections, ArchitectureView(r.Architecture, withDiagram))
	}
	sections = append(sections, IssuesView(r.Issues, r.Summary))
	return &output.Report{Title: "Strata Report", Sections: sections, Data: r}
}
