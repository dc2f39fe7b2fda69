// Package issues flattens analyzer findings into a single ordered list.
package issues

import (
	"sort"

	"github.com/panbanda/strata/pkg/analyzer"
	"github.com/panbanda/strata/pkg/models"
)

// Aggregate concatenates the issues of every source in argument order and
// stable-sorts them by severity, HIGH first. Nil sources are skipped;
// the analyzer results also accept typed nil receivers.
func Aggregate(sources ...analyzer.IssueSource) []models.Issue {
	out := []models.Issue{}
	for _, src := range sources {
		if src == nil {
			continue
		}
		out = append(out, src.Issues()...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Rank() < out[j].Severity.Rank()
	})
	return out
}

// Summary counts issues by type and by severity.
type Summary struct {
	Total      int                  `json:"total"`
	ByType     map[string]int       `json:"by_type"`
	BySeverity map[models.Level]int `json:"by_severity"`
}

// Summarize counts issues by type and severity.
func Summarize(issues []models.Issue) Summary {
	s := Summary{
		Total:      len(issues),
		ByType:     make(map[string]int),
		BySeverity: make(map[models.Level]int),
	}
	for _, is := range issues {
		s.ByType[is.Type]++
		s.BySeverity[is.Severity]++
	}
	return s
}

// AtLeast returns the issues whose severity is floor or more severe, keeping
// their order.
func AtLeast(issues []models.Issue, floor models.Level) []models.Issue {
	out := []models.Issue{}
	for _, is := range issues {
		if is.Severity.Rank() <= floor.Rank() {
			out = append(out, is)
		}
	}
	return out
}
