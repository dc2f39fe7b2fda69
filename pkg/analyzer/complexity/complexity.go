package complexity

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/panbanda/strata/pkg/analyzer"
	"github.com/panbanda/strata/pkg/models"
	"gonum.org/v1/gonum/stat"
)

// Ensure Analyzer implements analyzer.Analyzer.
var _ analyzer.Analyzer[*Analysis] = (*Analyzer)(nil)

// Analyzer finds complexity hot spots in a ParseResult. Complexity scores
// are taken from the elements as computed by the adapters.
type Analyzer struct {
	threshold int
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithThreshold sets the complexity above which a function is flagged.
// Values below 1 are ignored.
func WithThreshold(threshold int) Option {
	return func(a *Analyzer) {
		if threshold >= 1 {
			a.threshold = threshold
		}
	}
}

// New creates a new complexity analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) Name() string {
	return Name
}

func (a *Analyzer) Version() string {
	return Version
}

// Threshold returns the configured threshold.
func (a *Analyzer) Threshold() int {
	return a.threshold
}

// Analyze computes statistics, over-threshold functions and the per-file heatmap.
func (a *Analyzer) Analyze(ctx context.Context, result *models.ParseResult) (models.AnalyzerResult[*Analysis], error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return models.AnalyzerResult[*Analysis]{}, err
	}
	return models.NewAnalyzerResult(Name, Version, start, a.analyze(result)), nil
}

func (a *Analyzer) analyze(result *models.ParseResult) *Analysis {
	analysis := &Analysis{
		Threshold:              a.threshold,
		FunctionsOverThreshold: []FunctionComplexity{},
		Heatmap:                []FileHeat{},
	}
	if result == nil {
		return analysis
	}
	analysis.Summary.TotalFiles = result.TotalFiles

	var scores []float64
	for i := range result.Files {
		file := &result.Files[i]
		heat := FileHeat{FilePath: file.FilePath}
		total := 0

		for _, el := range file.Callables() {
			c := max(el.Complexity, 1)
			scores = append(scores, float64(c))
			total += c
			heat.FunctionCount++
			heat.MaxComplexity = max(heat.MaxComplexity, c)

			if c > a.threshold {
				category, text := Recommend(c)
				analysis.FunctionsOverThreshold = append(analysis.FunctionsOverThreshold, FunctionComplexity{
					FunctionName:   el.QualifiedName(),
					FilePath:       file.FilePath,
					Line:           el.Location.Line,
					Complexity:     c,
					Threshold:      a.threshold,
					Category:       category,
					Recommendation: text,
				})
			}
		}

		if heat.FunctionCount > 0 {
			heat.AverageComplexity = float64(total) / float64(heat.FunctionCount)
			analysis.Heatmap = append(analysis.Heatmap, heat)
		}
	}

	analysis.Summary = summarize(scores, analysis.Summary.TotalFiles)

	// Stable sorts keep insertion order for ties.
	sort.SliceStable(analysis.FunctionsOverThreshold, func(i, j int) bool {
		return analysis.FunctionsOverThreshold[i].Complexity > analysis.FunctionsOverThreshold[j].Complexity
	})
	sort.SliceStable(analysis.Heatmap, func(i, j int) bool {
		return analysis.Heatmap[i].AverageComplexity > analysis.Heatmap[j].AverageComplexity
	})

	return analysis
}

// summarize computes statistics over scores. The median is the lower-middle
// element for even-length lists (empirical quantile at 0.5).
func summarize(scores []float64, totalFiles int) Summary {
	s := Summary{TotalFiles: totalFiles, TotalFunctions: len(scores)}
	if len(scores) == 0 {
		return s
	}

	sorted := slices.Clone(scores)
	slices.Sort(sorted)

	s.AverageComplexity = stat.Mean(sorted, nil)
	s.MedianComplexity = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	s.P90Complexity = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	s.MinComplexity = int(sorted[0])
	s.MaxComplexity = int(sorted[len(sorted)-1])
	return s
}

// Recommend maps a complexity score to its refactoring category and text.
func Recommend(complexity int) (RecommendationCategory, string) {
	switch {
	case complexity > 50:
		return CategoryRewrite, RecommendRewrite
	case complexity > 30:
		return CategoryMajorExtraction, RecommendMajorExtraction
	case complexity > 20:
		return CategoryReduceNesting, RecommendReduceNesting
	default:
		return CategoryMinorExtraction, RecommendMinorExtraction
	}
}
