package complexity

// Analyzer identity reported in every AnalyzerResult.
const (
	Name    = "complexity-analyzer"
	Version = "1.0.0"
)

// DefaultThreshold is the McCabe limit above which a function is flagged.
const DefaultThreshold = 15

// RecommendationCategory names a refactoring strategy bucket.
type RecommendationCategory string

const (
	CategoryRewrite         RecommendationCategory = "REWRITE"
	CategoryMajorExtraction RecommendationCategory = "MAJOR_EXTRACTION"
	CategoryReduceNesting   RecommendationCategory = "REDUCE_NESTING"
	CategoryMinorExtraction RecommendationCategory = "MINOR_EXTRACTION"
)

// Recommendation texts, one per category.
const (
	RecommendRewrite         = "Complete rewrite: split into multiple functions, each targeting complexity <10"
	RecommendMajorExtraction = "Extract major blocks into separate functions; consider the Strategy or Command pattern"
	RecommendReduceNesting   = "Extract nested conditionals and loops into helper functions to reduce nesting depth"
	RecommendMinorExtraction = "Extract 1-2 blocks into helper functions to drop below the threshold"
)

// Summary holds statistics over every function and method complexity.
// All values are zero when no functions were parsed.
type Summary struct {
	TotalFunctions    int     `json:"total_functions"`
	TotalFiles        int     `json:"total_files"`
	AverageComplexity float64 `json:"average_complexity"`
	MedianComplexity  float64 `json:"median_complexity"`
	MinComplexity     int     `json:"min_complexity"`
	MaxComplexity     int     `json:"max_complexity"`
	P90Complexity     float64 `json:"p90_complexity"`
}

// FunctionComplexity is a function or method over the threshold.
type FunctionComplexity struct {
	FunctionName   string                 `json:"function_name"`
	FilePath       string                 `json:"file_path"`
	Line           int                    `json:"line"`
	Complexity     int                    `json:"complexity"`
	Threshold      int                    `json:"threshold"`
	Category       RecommendationCategory `json:"category"`
	Recommendation string                 `json:"recommendation"`
}

// FileHeat aggregates complexity for one file with at least one function.
type FileHeat struct {
	FilePath          string  `json:"file_path"`
	AverageComplexity float64 `json:"average_complexity"`
	MaxComplexity     int     `json:"max_complexity"`
	FunctionCount     int     `json:"function_count"`
}

// Analysis is the data payload of the complexity analyzer.
type Analysis struct {
	Threshold              int                  `json:"threshold"`
	Summary                Summary              `json:"summary"`
	FunctionsOverThreshold []FunctionComplexity `json:"functions_over_threshold"`
	Heatmap                []FileHeat           `json:"heatmap"`
}

// AverageComplexity is a shorthand for Summary.AverageComplexity.
func (a *Analysis) AverageComplexity() float64 {
	return a.Summary.AverageComplexity
}

// RemediationBucket groups over-threshold functions by urgency for effort estimates.
type RemediationBucket struct {
	Name     string  `json:"name"`
	Range    string  `json:"range"`
	Count    int     `json:"count"`
	DaysEach float64 `json:"days_each"`
	Days     float64 `json:"days"`
}
