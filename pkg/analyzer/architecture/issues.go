package architecture

import (
	"fmt"
	"strings"

	"github.com/panbanda/strata/pkg/models"
)

// GenerateIssues reports one issue per dependency cycle and, when the
// classification is weak, one issue asking for a human review.
func GenerateIssues(a *Analysis) []models.Issue {
	issues := []models.Issue{}
	if a == nil {
		return issues
	}

	byName := make(map[string]Component, len(a.Components))
	for _, c := range a.Components {
		byName[c.Name] = c
	}
	for _, cycle := range a.Cycles {
		loc := models.IssueLocation{}
		if c, ok := byName[cycle.Components[0]]; ok && len(c.Files) > 0 {
			loc = models.IssueLocation{FilePath: c.Files[0], Line: c.Line}
		}
		issues = append(issues, models.Issue{
			Type:           models.IssueCircularDependency,
			Severity:       models.LevelHigh,
			Location:       loc,
			Message:        fmt.Sprintf("Components %s depend on each other in a cycle", strings.Join(cycle.Components, ", ")),
			Recommendation: "Break the cycle by moving shared types into a separate component or inverting one dependency behind an interface",
			Effort:         models.LevelMedium,
			Impact:         models.LevelHigh,
		})
	}

	if reason := reviewReason(a); reason != "" {
		issues = append(issues, models.Issue{
			Type:           models.IssueArchitectureReview,
			Severity:       models.LevelMedium,
			Location:       models.IssueLocation{FilePath: "."},
			Message:        reason,
			Recommendation: "Review the detected layers and pattern manually before relying on this classification",
			Effort:         models.LevelLow,
			Impact:         models.LevelMedium,
		})
	}
	return issues
}

func reviewReason(a *Analysis) string {
	switch {
	case a.Pattern == PatternUnknown:
		return "No architectural pattern could be detected"
	case a.Confidence < a.ReviewThreshold:
		return fmt.Sprintf("Detected %s pattern with low confidence %.2f", a.Pattern, a.Confidence)
	case a.Ambiguous():
		return fmt.Sprintf("Structure matches several patterns (%s); %s was chosen by priority order",
			joinPatterns(a.CandidatePatterns), a.Pattern)
	default:
		return ""
	}
}

func joinPatterns(ps []Pattern) string {
	s := make([]string, len(ps))
	for i, p := range ps {
		s[i] = string(p)
	}
	return strings.Join(s, ", ")
}

// Issues implements analyzer.IssueSource.
func (a *Analysis) Issues() []models.Issue {
	return GenerateIssues(a)
}
