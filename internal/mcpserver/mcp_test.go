package mcpserver

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/strata/internal/output"
	"github.com/panbanda/strata/internal/testutil"
	"github.com/panbanda/strata/pkg/config"
)

// TestServerCreation verifies the MCP server can be created without panicking.
func TestServerCreation(t *testing.T) {
	server := NewServer("1.0.0-test", nil)
	if server == nil {
		t.Fatal("NewServer() returned nil")
	}
	if server.server == nil {
		t.Fatal("NewServer().server is nil")
	}
	if server.cfg == nil {
		t.Fatal("NewServer() should fall back to the default config")
	}
}

// TestToolDescriptions verifies all description functions carry the guidance sections.
func TestToolDescriptions(t *testing.T) {
	descriptions := map[string]func() string{
		"parse":        describeParse,
		"complexity":   describeComplexity,
		"architecture": describeArchitecture,
		"issues":       describeIssues,
	}

	for name, fn := range descriptions {
		t.Run(name, func(t *testing.T) {
			desc := fn()
			for _, section := range []string{"USE WHEN:", "INTERPRETING RESULTS:", "METRICS RETURNED:"} {
				if !strings.Contains(desc, section) {
					t.Errorf("%s description missing %s section", name, section)
				}
			}
		})
	}
}

func TestGetPath(t *testing.T) {
	if got := getPath(AnalyzeInput{}); got != "." {
		t.Errorf("getPath() = %q, want .", got)
	}
	if got := getPath(AnalyzeInput{Path: "/src"}); got != "/src" {
		t.Errorf("getPath() = %q, want /src", got)
	}
}

func TestGetFormat(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		expected output.Format
	}{
		{"empty defaults to toon", "", output.FormatTOON},
		{"json format", "json", output.FormatJSON},
		{"yaml format", "yaml", output.FormatYAML},
		{"markdown format", "markdown", output.FormatMarkdown},
		{"md alias", "md", output.FormatMarkdown},
		{"text maps to toon", "text", output.FormatTOON},
		{"unknown defaults to toon", "xml", output.FormatTOON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getFormat(AnalyzeInput{Format: tt.format}); got != tt.expected {
				t.Errorf("getFormat(%q) = %v, want %v", tt.format, got, tt.expected)
			}
		})
	}
}

// TestToolError verifies error result formatting.
func TestToolError(t *testing.T) {
	result, _, err := toolError("test error message")
	if err != nil {
		t.Fatalf("toolError returned unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("toolError result.IsError should be true")
	}
	if got := resultText(t, result); got != "Error: test error message" {
		t.Errorf("toolError text = %q", got)
	}
}

func TestFormatOutput(t *testing.T) {
	data := map[string]any{"name": "test", "value": 123}

	for _, format := range []output.Format{output.FormatTOON, output.FormatJSON, output.FormatYAML} {
		out, err := formatOutput(data, format)
		if err != nil {
			t.Errorf("formatOutput(%s) error: %v", format, err)
		}
		if !strings.Contains(out, "test") {
			t.Errorf("formatOutput(%s) = %q", format, out)
		}
	}

	md, err := formatOutput(data, output.FormatMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(md, "```\n") || !strings.HasSuffix(md, "\n```") {
		t.Errorf("markdown output of raw data should be fenced: %q", md)
	}

	tbl := output.NewTable("T", []string{"A"}, [][]string{{"x"}}, nil, nil)
	md, err = formatOutput(tbl, output.FormatMarkdown)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(md, "## T") {
		t.Errorf("markdown output of a view should use its markdown form: %q", md)
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content is not TextContent: %T", result.Content[0])
	}
	return text.Text
}

const branchy = `package main

func classify(n int) string {
	if n < 0 {
		return "negative"
	}
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			continue
		}
	}
	return "positive"
}
`

func TestHandleParse(t *testing.T) {
	root := testutil.Tree(t, map[string]string{"main.go": branchy})
	s := NewServer("test", nil)

	result, _, err := s.handleParse(context.Background(), nil, ParseInput{AnalyzeInput: AnalyzeInput{Path: root, Format: "json"}})
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("handleParse returned error: %s", resultText(t, result))
	}
	if text := resultText(t, result); !strings.Contains(text, `"total_files": 1`) {
		t.Errorf("unexpected parse output: %s", text)
	}

	result, _, _ = s.handleParse(context.Background(), nil, ParseInput{
		AnalyzeInput: AnalyzeInput{Path: root},
		Languages:    []string{"python"},
	})
	if !result.IsError {
		t.Error("restricting to a language with no files should report no source files")
	}
}

func TestHandleAnalyzeComplexity(t *testing.T) {
	root := testutil.Tree(t, map[string]string{"main.go": branchy})
	s := NewServer("test", nil)

	input := ComplexityInput{AnalyzeInput: AnalyzeInput{Path: root, Format: "json"}, Threshold: 2}
	result, _, err := s.handleAnalyzeComplexity(context.Background(), nil, input)
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("handleAnalyzeComplexity returned error: %s", resultText(t, result))
	}
	text := resultText(t, result)
	for _, want := range []string{`"name": "complexity-analyzer"`, `"threshold": 2`, `"function_name": "classify"`} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %s:\n%s", want, text)
		}
	}
}

func TestHandleAnalyzeArchitecture(t *testing.T) {
	root := testutil.Tree(t, map[string]string{
		"app/controllers/user_controller.py": "class UserController:\n    def show(self):\n        return 1\n",
		"app/models/user.py":                 "class User:\n    pass\n",
		"app/views/user_view.py":             "class UserView:\n    pass\n",
	})
	s := NewServer("test", config.DefaultConfig())

	result, _, err := s.handleAnalyzeArchitecture(context.Background(), nil, ArchitectureInput{
		AnalyzeInput:   AnalyzeInput{Path: root, Format: "markdown"},
		IncludeDiagram: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("handleAnalyzeArchitecture returned error: %s", resultText(t, result))
	}
	text := resultText(t, result)
	if !strings.Contains(text, "| Pattern | MVC |") {
		t.Errorf("expected MVC pattern:\n%s", text)
	}
	if !strings.Contains(text, "```mermaid") {
		t.Errorf("expected diagram:\n%s", text)
	}
}

func TestHandleAnalyzeIssues(t *testing.T) {
	root := testutil.Tree(t, map[string]string{"main.go": branchy})
	s := NewServer("test", nil)

	result, _, err := s.handleAnalyzeIssues(context.Background(), nil, IssuesInput{
		AnalyzeInput: AnalyzeInput{Path: root, Format: "json"},
		Threshold:    2,
	})
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, `"type": "high-complexity"`) || !strings.Contains(text, `"type": "architecture-review"`) {
		t.Errorf("expected complexity and architecture issues:\n%s", text)
	}

	result, _, _ = s.handleAnalyzeIssues(context.Background(), nil, IssuesInput{
		AnalyzeInput: AnalyzeInput{Path: root, Format: "json"},
		Threshold:    2,
		MinSeverity:  "high",
	})
	if strings.Contains(resultText(t, result), "high-complexity") {
		t.Error("a LOW severity complexity issue should be filtered out at min_severity=high")
	}

	result, _, _ = s.handleAnalyzeIssues(context.Background(), nil, IssuesInput{MinSeverity: "urgent"})
	if !result.IsError {
		t.Error("unknown severity should be rejected")
	}
}

func TestHandlers_MissingPath(t *testing.T) {
	s := NewServer("test", nil)
	missing := filepath.Join(t.TempDir(), "missing")

	result, _, err := s.handleAnalyzeComplexity(context.Background(), nil, ComplexityInput{AnalyzeInput: AnalyzeInput{Path: missing}})
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected an error result for a missing directory")
	}
}

func TestEmptyTreeError(t *testing.T) {
	s := NewServer("test", nil)
	result, _, err := s.handleAnalyzeComplexity(context.Background(), nil, ComplexityInput{AnalyzeInput: AnalyzeInput{Path: t.TempDir()}})
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected IsError to be true for an empty tree")
	}
}

func TestParseFrontmatter(t *testing.T) {
	fm, body := parseFrontmatter([]byte("---\ndescription: Demo\narguments:\n  - name: path\n    default: \".\"\n---\n\nRun on {{path}}.\n"))
	if fm.Description != "Demo" {
		t.Errorf("description = %q", fm.Description)
	}
	if len(fm.Arguments) != 1 || fm.Arguments[0].Default != "." {
		t.Errorf("arguments = %+v", fm.Arguments)
	}
	if body != "Run on {{path}}.\n" {
		t.Errorf("body = %q", body)
	}

	fm, body = parseFrontmatter([]byte("no frontmatter"))
	if fm.Description != "" || body != "no frontmatter" {
		t.Errorf("content without frontmatter should be returned whole, got %q", body)
	}
}

func TestEmbeddedPrompts(t *testing.T) {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 {
		t.Fatal("no embedded prompts")
	}
	for _, e := range entries {
		content, err := promptFiles.ReadFile("prompts/" + e.Name())
		if err != nil {
			t.Fatal(err)
		}
		fm, body := parseFrontmatter(content)
		if fm.Description == "" {
			t.Errorf("%s has no description", e.Name())
		}
		if rendered := substituteArgs(body, fm.Arguments, nil); strings.Contains(rendered, "{{") {
			t.Errorf("%s leaves placeholders unresolved with default arguments", e.Name())
		}
	}
}

func TestPromptHandler(t *testing.T) {
	fm := promptFrontmatter{
		Description: "Check",
		Arguments:   []promptArgument{{Name: "path", Default: "."}},
	}
	handler := makePromptHandler(fm, "Analyze {{path}}")

	req := &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: "check", Arguments: map[string]string{"path": "src"}}}
	res, err := handler(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.Description != "Check" || len(res.Messages) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if text := res.Messages[0].Content.(*mcp.TextContent).Text; text != "Analyze src" {
		t.Errorf("text = %q", text)
	}

	res, _ = handler(context.Background(), &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: "check"}})
	if text := res.Messages[0].Content.(*mcp.TextContent).Text; text != "Analyze ." {
		t.Errorf("default argument not applied: %q", text)
	}
}
