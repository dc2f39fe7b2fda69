package complexity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/panbanda/strata/pkg/models"
)

func fn(name string, line, complexity int) models.Element {
	return models.Element{
		Kind:       models.ElementFunction,
		Name:       name,
		Location:   models.Location{Line: line},
		Complexity: complexity,
	}
}

func file(path string, elements ...models.Element) models.ParsedFile {
	for i := range elements {
		elements[i].Location.FilePath = path
	}
	return models.ParsedFile{FilePath: path, Language: "go", Elements: elements}
}

func result(files ...models.ParsedFile) *models.ParseResult {
	return models.NewParseResult(files, nil, 0)
}

func analyze(t *testing.T, r *models.ParseResult, opts ...Option) *Analysis {
	t.Helper()
	res, err := New(opts...).Analyze(context.Background(), r)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	return res.Data
}

func TestNew(t *testing.T) {
	a := New()
	if a.Threshold() != DefaultThreshold {
		t.Errorf("Threshold() = %d, want %d", a.Threshold(), DefaultThreshold)
	}
	if a.Name() != "complexity-analyzer" || a.Version() != "1.0.0" {
		t.Errorf("identity = %s/%s", a.Name(), a.Version())
	}
	if got := New(WithThreshold(0)).Threshold(); got != DefaultThreshold {
		t.Errorf("WithThreshold(0) threshold = %d, want default", got)
	}
	if got := New(WithThreshold(25)).Threshold(); got != 25 {
		t.Errorf("WithThreshold(25) threshold = %d", got)
	}
}

func TestAnalyze_FourFunctions(t *testing.T) {
	r := result(file("a.go", fn("a", 1, 5), fn("b", 5, 10), fn("c", 9, 15), fn("d", 20, 20)))

	res, err := New().Analyze(context.Background(), r)
	if err != nil {
		t.Fatal(err)
	}

	if res.Name != Name || res.Version != Version {
		t.Errorf("result identity = %s/%s", res.Name, res.Version)
	}
	a := res.Data
	if a.Summary.AverageComplexity != 12.5 {
		t.Errorf("AverageComplexity = %v, want 12.5", a.Summary.AverageComplexity)
	}
	// lower-middle of [5 10 15 20]
	if a.Summary.MedianComplexity != 10 {
		t.Errorf("MedianComplexity = %v, want 10", a.Summary.MedianComplexity)
	}
	if a.Summary.MaxComplexity != 20 || a.Summary.MinComplexity != 5 {
		t.Errorf("min/max = %d/%d, want 5/20", a.Summary.MinComplexity, a.Summary.MaxComplexity)
	}
	if a.Summary.TotalFunctions != 4 {
		t.Errorf("TotalFunctions = %d, want 4", a.Summary.TotalFunctions)
	}
	if len(a.FunctionsOverThreshold) != 1 {
		t.Fatalf("FunctionsOverThreshold = %d, want 1", len(a.FunctionsOverThreshold))
	}
	got := a.FunctionsOverThreshold[0]
	if got.FunctionName != "d" || got.Complexity != 20 || got.Line != 20 || got.FilePath != "a.go" || got.Threshold != 15 {
		t.Errorf("over threshold = %+v", got)
	}
	if got.Category != CategoryMinorExtraction || got.Recommendation != RecommendMinorExtraction {
		t.Errorf("recommendation = %s %q", got.Category, got.Recommendation)
	}
}

func TestAnalyze_OddMedianAndP90(t *testing.T) {
	r := result(file("a.go", fn("a", 1, 1), fn("b", 2, 3), fn("c", 3, 9)))
	a := analyze(t, r)

	if a.Summary.MedianComplexity != 3 {
		t.Errorf("MedianComplexity = %v, want 3", a.Summary.MedianComplexity)
	}
	if a.Summary.P90Complexity != 9 {
		t.Errorf("P90Complexity = %v, want 9", a.Summary.P90Complexity)
	}
}

func TestAnalyze_Empty(t *testing.T) {
	tests := []struct {
		name string
		r    *models.ParseResult
	}{
		{"nil result", nil},
		{"no files", result()},
		{"files without functions", result(file("a.go", models.Element{Kind: models.ElementStruct, Name: "S"}))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := analyze(t, tt.r)
			if a.Summary.AverageComplexity != 0 || a.Summary.MedianComplexity != 0 || a.Summary.MaxComplexity != 0 {
				t.Errorf("Summary = %+v, want zeros", a.Summary)
			}
			if a.FunctionsOverThreshold == nil || len(a.FunctionsOverThreshold) != 0 {
				t.Errorf("FunctionsOverThreshold = %v, want empty non-nil", a.FunctionsOverThreshold)
			}
			if len(a.Heatmap) != 0 {
				t.Errorf("Heatmap = %v, want empty", a.Heatmap)
			}
			if issues := GenerateIssues(a); len(issues) != 0 {
				t.Errorf("GenerateIssues() = %d, want 0", len(issues))
			}
		})
	}
}

func TestAnalyze_ThresholdIsExclusive(t *testing.T) {
	r := result(file("a.go", fn("at", 1, 15), fn("over", 2, 16)))
	a := analyze(t, r)

	if len(a.FunctionsOverThreshold) != 1 || a.FunctionsOverThreshold[0].FunctionName != "over" {
		t.Errorf("FunctionsOverThreshold = %+v, want only 'over'", a.FunctionsOverThreshold)
	}
}

func TestAnalyze_SortingAndTies(t *testing.T) {
	r := result(
		file("a.go", fn("first", 1, 30), fn("low", 2, 16)),
		file("b.go", fn("second", 1, 30), fn("top", 2, 60)),
	)
	a := analyze(t, r)

	var names []string
	for _, f := range a.FunctionsOverThreshold {
		names = append(names, f.FunctionName)
		if f.Complexity <= a.Threshold {
			t.Errorf("%s complexity %d not over threshold", f.FunctionName, f.Complexity)
		}
	}
	want := "top,first,second,low"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("order = %s, want %s", got, want)
	}
}

func TestAnalyze_MethodsQualifiedByOwner(t *testing.T) {
	m := models.Element{
		Kind:       models.ElementMethod,
		Name:       "Serve",
		Location:   models.Location{Line: 3},
		Complexity: 40,
		Metadata:   map[string]any{models.MetaOwner: "Server"},
	}
	a := analyze(t, result(file("s.go", m)))

	if got := a.FunctionsOverThreshold[0].FunctionName; got != "Server.Serve" {
		t.Errorf("FunctionName = %q, want Server.Serve", got)
	}
}

func TestAnalyze_Heatmap(t *testing.T) {
	r := result(
		file("cool.go", fn("a", 1, 1), fn("b", 2, 3)),
		file("hot.go", fn("c", 1, 20), fn("d", 2, 10)),
		file("types.go", models.Element{Kind: models.ElementStruct, Name: "T"}),
		file("warm.go", fn("e", 1, 8)),
	)
	a := analyze(t, r)

	if len(a.Heatmap) != 3 {
		t.Fatalf("Heatmap len = %d, want 3 (files without functions excluded)", len(a.Heatmap))
	}
	want := []FileHeat{
		{FilePath: "hot.go", AverageComplexity: 15, MaxComplexity: 20, FunctionCount: 2},
		{FilePath: "warm.go", AverageComplexity: 8, MaxComplexity: 8, FunctionCount: 1},
		{FilePath: "cool.go", AverageComplexity: 2, MaxComplexity: 3, FunctionCount: 2},
	}
	for i, w := range want {
		if a.Heatmap[i] != w {
			t.Errorf("Heatmap[%d] = %+v, want %+v", i, a.Heatmap[i], w)
		}
	}
	if a.Summary.TotalFiles != 4 {
		t.Errorf("TotalFiles = %d, want 4", a.Summary.TotalFiles)
	}
}

func TestAnalyze_StatisticsBounds(t *testing.T) {
	sets := [][]int{
		{1},
		{3, 3, 3},
		{1, 2, 3, 4, 100},
		{7, 1, 22, 51, 9, 16},
	}
	for _, set := range sets {
		var els []models.Element
		for i, c := range set {
			els = append(els, fn(fmt.Sprintf("f%d", i), i+1, c))
		}
		s := analyze(t, result(file("x.go", els...))).Summary

		minC, maxC := float64(s.MinComplexity), float64(s.MaxComplexity)
		if s.MedianComplexity < minC || s.MedianComplexity > maxC {
			t.Errorf("%v: median %v outside [%v, %v]", set, s.MedianComplexity, minC, maxC)
		}
		if s.AverageComplexity < minC || s.AverageComplexity > maxC {
			t.Errorf("%v: average %v outside [%v, %v]", set, s.AverageComplexity, minC, maxC)
		}
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	r := result(
		file("a.go", fn("a", 1, 25), fn("b", 2, 16)),
		file("b.go", fn("c", 1, 55)),
	)
	a := New()

	first, _ := a.Analyze(context.Background(), r)
	second, _ := a.Analyze(context.Background(), r)

	j1, _ := json.Marshal(first.Data)
	j2, _ := json.Marshal(second.Data)
	if string(j1) != string(j2) {
		t.Errorf("Analyze() not idempotent:\n%s\n%s", j1, j2)
	}
}

func TestAnalyze_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New().Analyze(ctx, result()); err == nil {
		t.Error("Analyze() with cancelled context returned nil error")
	}
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		complexity int
		category   RecommendationCategory
		text       string
	}{
		{16, CategoryMinorExtraction, RecommendMinorExtraction},
		{20, CategoryMinorExtraction, RecommendMinorExtraction},
		{21, CategoryReduceNesting, RecommendReduceNesting},
		{30, CategoryReduceNesting, RecommendReduceNesting},
		{31, CategoryMajorExtraction, RecommendMajorExtraction},
		{50, CategoryMajorExtraction, RecommendMajorExtraction},
		{51, CategoryRewrite, RecommendRewrite},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.complexity), func(t *testing.T) {
			category, text := Recommend(tt.complexity)
			if category != tt.category || text != tt.text {
				t.Errorf("Recommend(%d) = %s %q, want %s %q", tt.complexity, category, text, tt.category, tt.text)
			}
		})
	}

	if !strings.Contains(RecommendRewrite, "<10") {
		t.Errorf("rewrite text %q must name the <10 target", RecommendRewrite)
	}
	if !strings.Contains(RecommendMajorExtraction, "Strategy") || !strings.Contains(RecommendMajorExtraction, "Command") {
		t.Errorf("major extraction text %q must name Strategy/Command", RecommendMajorExtraction)
	}
}
