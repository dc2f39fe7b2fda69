package complexity

import (
	"fmt"

	"github.com/panbanda/strata/pkg/models"
)

// The three ladders below are independent; do not merge them.

func severityFor(complexity int) models.Level {
	switch {
	case complexity > 30:
		return models.LevelHigh
	case complexity > 20:
		return models.LevelMedium
	default:
		return models.LevelLow
	}
}

func effortFor(complexity int) models.Level {
	switch {
	case complexity > 40:
		return models.LevelHigh
	case complexity > 25:
		return models.LevelMedium
	default:
		return models.LevelLow
	}
}

func impactFor(complexity int) models.Level {
	switch {
	case complexity > 40:
		return models.LevelHigh
	case complexity > 25:
		return models.LevelMedium
	default:
		return models.LevelLow
	}
}

// GenerateIssues converts each over-threshold function into one Issue, in
// the same order.
func GenerateIssues(a *Analysis) []models.Issue {
	if a == nil {
		return []models.Issue{}
	}
	issues := make([]models.Issue, 0, len(a.FunctionsOverThreshold))
	for _, fn := range a.FunctionsOverThreshold {
		issues = append(issues, models.Issue{
			Type:     models.IssueHighComplexity,
			Severity: severityFor(fn.Complexity),
			Location: models.IssueLocation{
				FilePath: fn.FilePath,
				Line:     fn.Line,
			},
			Message:        fmt.Sprintf("Function '%s' has cyclomatic complexity %d (threshold %d)", fn.FunctionName, fn.Complexity, fn.Threshold),
			Recommendation: fn.Recommendation,
			Effort:         effortFor(fn.Complexity),
			Impact:         impactFor(fn.Complexity),
		})
	}
	return issues
}

// Issues implements analyzer.IssueSource.
func (a *Analysis) Issues() []models.Issue {
	return GenerateIssues(a)
}
