// Package architecture infers the architectural pattern, layers and
// component graph of a parsed source tree.
//
// Detection is heuristic: patterns are matched against file path fragments
// with an ordered decision list and scored with a confidence in [0, 1].
package architecture

import (
	"context"
	"time"

	"github.com/panbanda/strata/pkg/analyzer"
	"github.com/panbanda/strata/pkg/models"
)

// Ensure Analyzer implements analyzer.Analyzer.
var _ analyzer.Analyzer[*Analysis] = (*Analyzer)(nil)

// Analyzer runs the five-phase architecture pipeline: pattern detection,
// layer identification, component extraction, relationships and diagram.
type Analyzer struct {
	reviewThreshold float64
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithReviewThreshold sets the confidence below which an architecture-review
// issue is raised. Values outside [0, 1] are ignored.
func WithReviewThreshold(t float64) Option {
	return func(a *Analyzer) {
		if t >= 0 && t <= 1 {
			a.reviewThreshold = t
		}
	}
}

// New creates a new architecture analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{reviewThreshold: DefaultReviewThreshold}
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

// Analyze classifies the tree and builds its component graph.
func (a *Analyzer) Analyze(ctx context.Context, result *models.ParseResult) (models.AnalyzerResult[*Analysis], error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return models.AnalyzerResult[*Analysis]{}, err
	}
	return models.NewAnalyzerResult(Name, Version, start, a.analyze(result)), nil
}

func (a *Analyzer) analyze(result *models.ParseResult) *Analysis {
	var files []models.ParsedFile
	if result != nil {
		files = result.Files
	}

	paths := make([]string, len(files))
	for i := range files {
		paths[i] = files[i].FilePath
	}

	// Phase 1
	pattern, candidates := detect(paths)

	// Phase 2
	m := assignLayers(files, bucketsFor(pattern))

	// Phase 3
	cs := extractComponents(files, m)

	// Phase 4
	rels := cs.relationships(files)

	analysis := &Analysis{
		Pattern:           pattern,
		CandidatePatterns: candidates,
		Layers:            m.layers(files),
		UnlayeredFiles:    m.unlayered(len(files)),
		Components:        cs.list,
		Relationships:     rels,
		Cycles:            cs.cycles(rels),
		ReviewThreshold:   a.reviewThreshold,
	}
	analysis.Confidence = Confidence(pattern, len(analysis.Layers), m.populated(), len(m.buckets), len(cs.list))

	// Phase 5
	analysis.Diagram = RenderDiagram(analysis)
	return analysis
}

// Confidence scores how well the observed structure matches pattern:
// the mean of layer coverage against the pattern's expected layer count,
// the fraction of candidate layers holding files, and component density
// (saturating at 10 components). UNKNOWN always scores 0.
func Confidence(pattern Pattern, foundLayers, populatedLayers, candidateLayers, components int) float64 {
	if pattern == PatternUnknown {
		return 0
	}
	layerCoverage := min(float64(foundLayers)/float64(expectedLayers(pattern)), 1)
	componentCoverage := 0.0
	if candidateLayers > 0 {
		componentCoverage = float64(populatedLayers) / float64(candidateLayers)
	}
	density := min(float64(components)/10, 1)

	return clamp((layerCoverage+componentCoverage+density)/3, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
