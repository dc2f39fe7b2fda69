// Package analyzer defines the contract shared by analyzers that run over
// the canonical parse model.
package analyzer

import (
	"context"

	"github.com/panbanda/strata/pkg/models"
)

// Analyzer computes one analysis over a ParseResult.
//
// Implementations must be stateless between calls and must not mutate the
// ParseResult, so several analyzers can run over the same result
// concurrently. An error is returned only when ctx is cancelled.
type Analyzer[T any] interface {
	// Name is the stable identifier consumers may branch on.
	Name() string
	// Version is the analyzer's output version.
	Version() string
	Analyze(ctx context.Context, result *models.ParseResult) (models.AnalyzerResult[T], error)
}

// IssueSource is implemented by analyses that can be flattened into issues.
type IssueSource interface {
	Issues() []models.Issue
}
