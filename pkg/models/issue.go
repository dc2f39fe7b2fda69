package models

import "strings"

// Level is a three-step rating used for issue severity, effort and impact.
type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

// Rank orders levels so that HIGH sorts first.
func (l Level) Rank() int {
	switch l {
	case LevelHigh:
		return 0
	case LevelMedium:
		return 1
	default:
		return 2
	}
}

// Issue types produced by the built-in analyzers.
const (
	IssueHighComplexity     = "high-complexity"
	IssueCircularDependency = "circular-dependency"
	IssueArchitectureReview = "architecture-review"
)

// IssueLocation points at the code an issue refers to. Line is 0 when the
// issue is not tied to a single line.
type IssueLocation struct {
	FilePath string `json:"file_path"`
	Line     int    `json:"line"`
}

// Issue is the analyzer-independent form of a finding.
type Issue struct {
	Type           string        `json:"type"`
	Severity       Level         `json:"severity"`
	Location       IssueLocation `json:"location"`
	Message        string        `json:"message"`
	Recommendation string        `json:"recommendation"`
	Effort         Level         `json:"effort"`
	Impact         Level         `json:"impact"`
}

// ParseLevel converts s, in any case, to a Level.
func ParseLevel(s string) (Level, bool) {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case LevelHigh:
		return LevelHigh, true
	case LevelMedium:
		return LevelMedium, true
	case LevelLow:
		return LevelLow, true
	default:
		return "", false
	}
}
