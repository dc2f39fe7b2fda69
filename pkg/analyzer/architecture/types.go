package architecture

// Analyzer identity reported in every AnalyzerResult.
const (
	Name    = "architecture-analyzer"
	Version = "1.0.0"
)

// DefaultReviewThreshold is the confidence below which an analysis is
// flagged for human review.
const DefaultReviewThreshold = 0.5

// Pattern is a detected architectural style.
type Pattern string

const (
	PatternMVC           Pattern = "MVC"
	PatternClean         Pattern = "CLEAN"
	PatternHexagonal     Pattern = "HEXAGONAL"
	PatternLayered       Pattern = "LAYERED"
	PatternMicroservices Pattern = "MICROSERVICES"
	PatternMonolith      Pattern = "MONOLITH"
	PatternUnknown       Pattern = "UNKNOWN"
)

// ComponentType is the inferred role of a component.
type ComponentType string

const (
	ComponentController ComponentType = "CONTROLLER"
	ComponentService    ComponentType = "SERVICE"
	ComponentRepository ComponentType = "REPOSITORY"
	ComponentModel      ComponentType = "MODEL"
	ComponentView       ComponentType = "VIEW"
	ComponentMiddleware ComponentType = "MIDDLEWARE"
	ComponentRouter     ComponentType = "ROUTER"
	ComponentUtility    ComponentType = "UTILITY"
)

// RelationshipType is the kind of edge between two components.
type RelationshipType string

const (
	RelationDependsOn RelationshipType = "DEPENDS_ON"
	RelationExtends   RelationshipType = "EXTENDS"
)

// ComplexityRating is a qualitative rating of a layer's mean function complexity.
type ComplexityRating string

const (
	RatingLow    ComplexityRating = "low"
	RatingMedium ComplexityRating = "medium"
	RatingHigh   ComplexityRating = "high"
)

// Layer is a named group of files.
type Layer struct {
	Name              string           `json:"name"`
	Files             []string         `json:"files"`
	LinesOfCode       int              `json:"lines_of_code"`
	AverageComplexity float64          `json:"average_complexity"`
	Complexity        ComplexityRating `json:"complexity"`
}

// Component is one class or struct, merged across files by name.
type Component struct {
	Name             string        `json:"name"`
	Type             ComponentType `json:"type"`
	Files            []string      `json:"files"`
	Line             int           `json:"line"`
	Layer            string        `json:"layer,omitempty"`
	Responsibilities []string      `json:"responsibilities"`
	Dependencies     []string      `json:"dependencies"`
}

// Relationship is a directed edge between two components. Strength is the
// edge's occurrence count relative to the most frequent edge.
type Relationship struct {
	From        string           `json:"from"`
	To          string           `json:"to"`
	Type        RelationshipType `json:"type"`
	Strength    float64          `json:"strength"`
	Occurrences int              `json:"occurrences"`
}

// Cycle is a strongly connected set of components, names sorted.
type Cycle struct {
	Components []string `json:"components"`
}

// Analysis is the output of the architecture analyzer.
type Analysis struct {
	Pattern Pattern `json:"pattern"`
	// CandidatePatterns lists every structural pattern whose predicate
	// matched, in priority order. More than one entry means Pattern was
	// chosen by order alone.
	CandidatePatterns []Pattern      `json:"candidate_patterns"`
	Confidence        float64        `json:"confidence"`
	Layers            []Layer        `json:"layers"`
	UnlayeredFiles    int            `json:"unlayered_files"`
	Components        []Component    `json:"components"`
	Relationships     []Relationship `json:"relationships"`
	Cycles            []Cycle        `json:"cycles"`
	Diagram           string         `json:"diagram"`
	ReviewThreshold   float64        `json:"review_threshold"`
}

// Ambiguous reports whether more than one pattern predicate matched.
func (a *Analysis) Ambiguous() bool {
	return len(a.CandidatePatterns) > 1
}
