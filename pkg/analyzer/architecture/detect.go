package architecture

import "strings"

// monolithMinFiles is the file count above which an unmatched tree is
// classified as a monolith.
const monolithMinFiles = 50

// microservicesMinFiles is the number of "service" paths that must be
// exceeded for MICROSERVICES.
const microservicesMinFiles = 5

// rule is one entry of the detection decision list.
type rule struct {
	pattern Pattern
	match   func(paths []string) bool
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{PatternMVC, func(p []string) bool {
		return anyContains(p, "controller") && anyContains(p, "model") && anyContains(p, "view", "component", "ui")
	}},
	{PatternClean, func(p []string) bool {
		return anyContains(p, "domain") && anyContains(p, "application") && anyContains(p, "infrastructure")
	}},
	{PatternHexagonal, func(p []string) bool {
		return anyContains(p, "adapter", "port") && anyContains(p, "core")
	}},
	{PatternLayered, func(p []string) bool {
		return anyContains(p, "presentation", "api") && anyContains(p, "business", "logic") && anyContains(p, "data", "repository")
	}},
	{PatternMicroservices, func(p []string) bool {
		return countContains(p, "service") > microservicesMinFiles
	}},
}

// DetectPattern classifies a set of relative file paths.
func DetectPattern(paths []string) Pattern {
	pattern, _ := detect(paths)
	return pattern
}

// detect returns the winning pattern and every structural pattern whose
// predicate matched, in priority order.
func detect(paths []string) (Pattern, []Pattern) {
	lower := make([]string, len(paths))
	for i, p := range paths {
		lower[i] = strings.ToLower(p)
	}

	candidates := []Pattern{}
	for _, r := range rules {
		if r.match(lower) {
			candidates = append(candidates, r.pattern)
		}
	}
	switch {
	case len(candidates) > 0:
		return candidates[0], candidates
	case len(paths) > monolithMinFiles:
		return PatternMonolith, candidates
	default:
		return PatternUnknown, candidates
	}
}

func anyContains(paths []string, keywords ...string) bool {
	for _, p := range paths {
		if containsAny(p, keywords) {
			return true
		}
	}
	return false
}

func countContains(paths []string, keyword string) int {
	n := 0
	for _, p := range paths {
		if strings.Contains(p, keyword) {
			n++
		}
	}
	return n
}
