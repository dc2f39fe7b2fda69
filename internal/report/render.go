// Package report renders engine results as an HTML report and as
// terminal or markdown views.
package report

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"

	"github.com/panbanda/strata/pkg/engine"
	"github.com/panbanda/strata/pkg/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed template.html
var templateFS embed.FS

const listLimit = 20

// Renderer handles HTML report generation.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer creates a new renderer with the embedded template.
func NewRenderer() (*Renderer, error) {
	funcMap := template.FuncMap{
		"severityClass": func(l models.Level) string {
			switch l {
			case models.LevelHigh:
				return "danger"
			case models.LevelMedium:
				return "warning"
			default:
				return "good"
			}
		},
		"confidenceClass": func(c float64) string {
			if c >= 0.7 {
				return "good"
			}
			if c >= 0.5 {
				return "warning"
			}
			return "danger"
		},
		"limit": func(items any, n int) any {
			switch v := items.(type) {
			case []models.Issue:
				return v[:min(n, len(v))]
			default:
				return items
			}
		},
		"lower": strings.ToLower,
		"title": cases.Title(language.English).String,
		"truncatePath": func(s string, n int) string {
			if len(s) <= n || n < 4 {
				return s
			}
			return "..." + s[len(s)-n+3:]
		},
		"percent": func(c float64) string {
			return fmt.Sprintf("%.0f%%", c*100)
		},
		"num": func(n any) string {
			p := message.NewPrinter(language.English)
			switch v := n.(type) {
			case int:
				return p.Sprintf("%d", v)
			case int64:
				return p.Sprintf("%d", v)
			case float64:
				return p.Sprintf("%.2f", v)
			default:
				return "0"
			}
		},
	}

	tmplContent, err := templateFS.ReadFile("template.html")
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New("report").Funcs(funcMap).Parse(string(tmplContent))
	if err != nil {
		return nil, err
	}

	return &Renderer{tmpl: tmpl}, nil
}

// Render executes the template for data and writes HTML to w.
func (r *Renderer) Render(w io.Writer, data *RenderData) error {
	if data == nil || data.Report == nil {
		return fmt.Errorf("render report: no data")
	}
	return r.tmpl.Execute(w, data)
}

// RenderToFile generates HTML and writes it to a file.
func (r *Renderer) RenderToFile(data *RenderData, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return r.Render(f, data)
}

// LoadReport reads an engine report previously written with --format json.
func LoadReport(path string) (*engine.Report, error) {
	var r engine.Report
	if err := loadJSON(path, &r); err != nil {
		return nil, err
	}
	if r.Parse == nil {
		return nil, fmt.Errorf("%s: not a strata report", path)
	}
	return &r, nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
