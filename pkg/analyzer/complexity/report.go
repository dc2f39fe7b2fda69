package complexity

import (
	"fmt"
	"strings"
)

// Report section headings. Downstream tools parse these; keep them stable.
const (
	HeadingReport          = "# Complexity Analysis Report"
	HeadingStatistics      = "## Overall Statistics"
	HeadingOverThreshold   = "## High-Complexity Functions (Refactoring Targets)"
	HeadingHeatmap         = "## Complexity Heatmap (Top 10 Files)"
	HeadingRecommendations = "## Recommendations"
)

const reportTopN = 10

// Remediation buckets and their per-function effort in days.
var remediationBuckets = []struct {
	name     string
	rng      string
	daysEach float64
	match    func(int) bool
}{
	{"Critical", ">50", 3, func(c int) bool { return c > 50 }},
	{"High", "31-50", 2, func(c int) bool { return c > 30 && c <= 50 }},
	{"Medium", "21-30", 1, func(c int) bool { return c > 20 && c <= 30 }},
	{"Low", "<=20", 0.5, func(c int) bool { return c <= 20 }},
}

// Remediation estimates refactoring effort per urgency bucket.
func Remediation(a *Analysis) []RemediationBucket {
	buckets := make([]RemediationBucket, 0, len(remediationBuckets))
	for _, b := range remediationBuckets {
		bucket := RemediationBucket{Name: b.name, Range: b.rng, DaysEach: b.daysEach}
		if a != nil {
			for _, fn := range a.FunctionsOverThreshold {
				if b.match(fn.Complexity) {
					bucket.Count++
				}
			}
		}
		bucket.Days = float64(bucket.Count) * b.daysEach
		buckets = append(buckets, bucket)
	}
	return buckets
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// RenderMarkdown renders the analysis as a deterministic markdown report.
func RenderMarkdown(a *Analysis) string {
	if a == nil {
		a = &Analysis{Threshold: DefaultThreshold}
	}
	var b strings.Builder

	b.WriteString(HeadingReport + "\n\n")

	b.WriteString(HeadingStatistics + "\n\n")
	fmt.Fprintf(&b, "- **Total Files:** %d\n", a.Summary.TotalFiles)
	fmt.Fprintf(&b, "- **Total Functions:** %d\n", a.Summary.TotalFunctions)
	fmt.Fprintf(&b, "- **Average Complexity:** %.2f\n", a.Summary.AverageComplexity)
	fmt.Fprintf(&b, "- **Median Complexity:** %.2f\n", a.Summary.MedianComplexity)
	fmt.Fprintf(&b, "- **Max Complexity:** %d\n", a.Summary.MaxComplexity)
	fmt.Fprintf(&b, "- **Threshold:** %d\n", a.Threshold)
	fmt.Fprintf(&b, "- **Functions Over Threshold:** %d\n\n", len(a.FunctionsOverThreshold))

	b.WriteString(HeadingOverThreshold + "\n\n")
	if len(a.FunctionsOverThreshold) == 0 {
		b.WriteString("No functions exceed the complexity threshold.\n\n")
	} else {
		b.WriteString("| Rank | Function | File | Line | Complexity | Recommendation |\n")
		b.WriteString("|------|----------|------|------|------------|----------------|\n")
		for i, fn := range a.FunctionsOverThreshold[:min(reportTopN, len(a.FunctionsOverThreshold))] {
			fmt.Fprintf(&b, "| %d | `%s` | `%s` | %d | %d | %s |\n",
				i+1, mdEscape(fn.FunctionName), mdEscape(fn.FilePath), fn.Line, fn.Complexity, fn.Recommendation)
		}
		b.WriteString("\n")
	}

	b.WriteString(HeadingHeatmap + "\n\n")
	if len(a.Heatmap) == 0 {
		b.WriteString("No functions found.\n\n")
	} else {
		b.WriteString("| Rank | File | Avg Complexity | Max Complexity | Functions |\n")
		b.WriteString("|------|------|----------------|----------------|-----------|\n")
		for i, h := range a.Heatmap[:min(reportTopN, len(a.Heatmap))] {
			fmt.Fprintf(&b, "| %d | `%s` | %.2f | %d | %d |\n",
				i+1, mdEscape(h.FilePath), h.AverageComplexity, h.MaxComplexity, h.FunctionCount)
		}
		b.WriteString("\n")
	}

	b.WriteString(HeadingRecommendations + "\n\n")
	if len(a.FunctionsOverThreshold) == 0 {
		b.WriteString("Complexity is within the threshold. No refactoring required.\n")
		return b.String()
	}
	b.WriteString("| Priority | Complexity | Functions | Days Each | Estimated Days |\n")
	b.WriteString("|----------|------------|-----------|-----------|----------------|\n")
	total := 0.0
	for _, bucket := range Remediation(a) {
		fmt.Fprintf(&b, "| %s | %s | %d | %.1f | %.1f |\n",
			bucket.Name, bucket.Range, bucket.Count, bucket.DaysEach, bucket.Days)
		total += bucket.Days
	}
	fmt.Fprintf(&b, "\n**Estimated total effort:** %.1f days\n", total)
	return b.String()
}
