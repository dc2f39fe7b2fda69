package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"text", FormatText},
		{"JSON", FormatJSON},
		{"md", FormatMarkdown},
		{"markdown", FormatMarkdown},
		{"toon", FormatTOON},
		{"yml", FormatYAML},
		{"yaml", FormatYAML},
		{"", FormatText},
		{"unknown", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFormat(tt.input); got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormat_Structured(t *testing.T) {
	for f, want := range map[Format]bool{
		FormatText: false, FormatMarkdown: false,
		FormatJSON: true, FormatTOON: true, FormatYAML: true,
	} {
		if got := f.Structured(); got != want {
			t.Errorf("%s.Structured() = %v, want %v", f, got, want)
		}
	}
}

func TestNewFormatter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	f, err := NewFormatter(FormatJSON, path, true)
	if err != nil {
		t.Fatalf("NewFormatter() error = %v", err)
	}
	if f.colored {
		t.Error("color must be disabled for file output")
	}
	if err := f.Output(map[string]int{"files": 3}); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]int
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, raw)
	}
	if got["files"] != 3 {
		t.Errorf("files = %d, want 3", got["files"])
	}
}

func TestNewFormatter_BadPath(t *testing.T) {
	if _, err := NewFormatter(FormatText, filepath.Join(t.TempDir(), "missing", "out.txt"), false); err == nil {
		t.Error("expected error for unwritable path")
	}
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func sampleTable() *Table {
	return NewTable("Functions",
		[]string{"Name", "Complexity"},
		[][]string{{"parse", "22"}, {"walk", "17"}},
		[]string{"Total: 2", ""},
		payload{Name: "complexity", Count: 2},
	)
}

func TestOutput_Formats(t *testing.T) {
	tests := []struct {
		format Format
		want   []string
	}{
		{FormatText, []string{"Functions", "=========", "parse", "walk"}},
		{FormatMarkdown, []string{"## Functions", "| Name | Complexity |", "| --- | --- |", "| parse | 22 |", "| Total: 2 |  |"}},
		{FormatJSON, []string{`"name": "complexity"`, `"count": 2`}},
		{FormatYAML, []string{"name: complexity", "count: 2"}},
		{FormatTOON, []string{"complexity"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewWriterFormatter(tt.format, &buf, false).Output(sampleTable()); err != nil {
				t.Fatalf("Output() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestOutput_NonRenderable(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriterFormatter(FormatMarkdown, &buf, false).Output(payload{Name: "x"}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "```json\n") || !strings.HasSuffix(out, "```\n") {
		t.Errorf("markdown output of raw data should be fenced JSON:\n%s", out)
	}
}

func TestTable_RenderDataWithoutData(t *testing.T) {
	tbl := NewTable("", []string{"A", "B"}, [][]string{{"1", "2"}, {"3"}}, nil, nil)
	rows, ok := tbl.RenderData().([]map[string]string)
	if !ok || len(rows) != 2 {
		t.Fatalf("RenderData() = %#v", tbl.RenderData())
	}
	if rows[0]["B"] != "2" || rows[1]["A"] != "3" {
		t.Errorf("rows = %v", rows)
	}
	if _, present := rows[1]["B"]; present {
		t.Error("short rows must not invent cells")
	}
}

func TestSection_Fenced(t *testing.T) {
	s := &Section{Title: "Diagram", Content: "graph TB\n  A --> B\n", Fenced: "mermaid"}

	var md bytes.Buffer
	if err := s.RenderMarkdown(&md); err != nil {
		t.Fatal(err)
	}
	want := "## Diagram\n\n```mermaid\ngraph TB\n  A --> B\n```\n\n"
	if md.String() != want {
		t.Errorf("RenderMarkdown() = %q, want %q", md.String(), want)
	}

	var txt bytes.Buffer
	if err := s.RenderText(&txt, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(txt.String(), "Diagram\n-------\n\ngraph TB\n  A --> B\n") {
		t.Errorf("RenderText() = %q", txt.String())
	}
}

func TestReport_Render(t *testing.T) {
	r := &Report{
		Title: "Strata Report",
		Sections: []Renderable{
			&Markdown{Body: "# Complexity Analysis Report\n"},
			sampleTable(),
		},
	}

	var md bytes.Buffer
	if err := r.RenderMarkdown(&md); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(md.String(), "# Strata Report\n\n# Complexity Analysis Report\n") {
		t.Errorf("RenderMarkdown() = %q", md.String())
	}

	data, ok := r.RenderData().(map[string]any)
	if !ok {
		t.Fatalf("RenderData() = %T", r.RenderData())
	}
	if parts := data["sections"].([]any); len(parts) != 2 {
		t.Errorf("sections = %d, want 2", len(parts))
	}
}

func TestSeverityColor_Plain(t *testing.T) {
	if got := SeverityColor("HIGH", "x", false); got != "x" {
		t.Errorf("SeverityColor() uncolored = %q", got)
	}
}
