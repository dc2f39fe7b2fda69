package report

import (
	"sort"
	"time"

	"github.com/panbanda/strata/pkg/analyzer/architecture"
	"github.com/panbanda/strata/pkg/analyzer/complexity"
	"github.com/panbanda/strata/pkg/engine"
)

// Metadata contains report generation metadata.
type Metadata struct {
	Repository    string         `json:"repository"`
	GeneratedAt   time.Time      `json:"generated_at"`
	StrataVersion string         `json:"strata_version"`
	Languages     []LanguageStat `json:"languages"`
}

// LanguageStat counts the parsed files and lines of one language.
type LanguageStat struct {
	Language string `json:"language"`
	Files    int    `json:"files"`
	Lines    int    `json:"lines"`
}

// RenderData contains all data needed to render the HTML report.
type RenderData struct {
	Metadata     Metadata
	Report       *engine.Report
	Complexity   *complexity.Analysis
	Remediation  []complexity.RemediationBucket
	Architecture *architecture.Analysis
}

// NewRenderData prepares r for the template. Missing analyzer sections are
// left nil and hidden by the template.
func NewRenderData(meta Metadata, r *engine.Report) *RenderData {
	data := &RenderData{Metadata: meta, Report: r}
	if r == nil {
		return data
	}
	if len(data.Metadata.Languages) == 0 {
		data.Metadata.Languages = languageStats(r)
	}
	if r.Complexity != nil && r.Complexity.Data != nil {
		data.Complexity = r.Complexity.Data
		if len(data.Complexity.FunctionsOverThreshold) > 0 {
			data.Remediation = complexity.Remediation(data.Complexity)
		}
	}
	if r.Architecture != nil {
		data.Architecture = r.Architecture.Data
	}
	return data
}

func languageStats(r *engine.Report) []LanguageStat {
	if r.Parse == nil {
		return nil
	}
	byLang := make(map[string]*LanguageStat)
	for _, f := range r.Parse.Files {
		s, ok := byLang[f.Language]
		if !ok {
			s = &LanguageStat{Language: f.Language}
			byLang[f.Language] = s
		}
		s.Files++
		s.Lines += f.LinesOfCode
	}
	out := make([]LanguageStat, 0, len(byLang))
	for _, s := range byLang {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Files != out[j].Files {
			return out[i].Files > out[j].Files
		}
		return out[i].Language < out[j].Language
	})
	return out
}
