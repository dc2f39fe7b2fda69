package adapter

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/panbanda/strata/internal/testutil"
	"github.com/panbanda/strata/pkg/config"
	"github.com/panbanda/strata/pkg/models"
	"github.com/panbanda/strata/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findElement(t *testing.T, f *models.ParsedFile, kind models.ElementKind, name string) models.Element {
	t.Helper()
	for _, e := range f.Elements {
		if e.Kind == kind && e.Name == name {
			return e
		}
	}
	t.Fatalf("element %s %q not found in %s", kind, name, f.FilePath)
	return models.Element{}
}

func findDependency(t *testing.T, f *models.ParsedFile, to string) models.Dependency {
	t.Helper()
	for _, d := range f.Dependencies {
		if d.To == to {
			return d
		}
	}
	t.Fatalf("dependency %q not found in %s (have %v)", to, f.FilePath, f.Dependencies)
	return models.Dependency{}
}

func parseSingle(t *testing.T, a Adapter, rel, content string) *models.ParsedFile {
	t.Helper()
	root := testutil.Tree(t, map[string]string{rel: content})
	result := a.Parse(context.Background(), root)
	require.Equal(t, 1, result.TotalFiles, "errors: %v", result.ParseErrors)
	f, ok := result.File(rel)
	require.True(t, ok)
	return f
}

func TestTreeSitterAdapter_Supports(t *testing.T) {
	tests := []struct {
		adapter Adapter
		lang    parser.Language
		want    bool
	}{
		{NewGoAdapter(), parser.LangGo, true},
		{NewGoAdapter(), parser.LangRust, false},
		{NewRustAdapter(), parser.LangRust, true},
		{NewPythonAdapter(), parser.LangPython, true},
		{NewTypeScriptAdapter(), parser.LangTypeScript, true},
		{NewTypeScriptAdapter(), parser.LangTSX, true},
		{NewTypeScriptAdapter(), parser.LangJavaScript, true},
		{NewTypeScriptAdapter(), parser.LangJava, false},
		{NewJavaAdapter(), parser.LangJava, true},
	}

	for _, tt := range tests {
		t.Run(tt.adapter.Name()+"/"+string(tt.lang), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.adapter.Supports(tt.lang))
		})
	}
}

func TestParse_MissingRoot(t *testing.T) {
	result := NewGoAdapter().Parse(context.Background(), filepath.Join(t.TempDir(), "missing"))

	assert.Equal(t, 0, result.TotalFiles)
	assert.Empty(t, result.Files)
	require.Len(t, result.ParseErrors, 1)
	assert.Equal(t, models.ParseSeverityError, result.ParseErrors[0].Severity)
}

func TestParse_EmptyDirectory(t *testing.T) {
	result := NewGoAdapter().Parse(context.Background(), t.TempDir())

	assert.Equal(t, 0, result.TotalFiles)
	assert.Equal(t, 0, result.TotalLinesOfCode)
	assert.NotNil(t, result.Files)
	assert.Empty(t, result.ParseErrors)
}

func TestParse_OnlySupportedFiles(t *testing.T) {
	root := testutil.Tree(t, map[string]string{
		"main.go":   "package main\n\nfunc main() {}\n",
		"lib.rs":    "fn main() {}\n",
		"README.md": "# readme\n",
	})

	result := NewGoAdapter().Parse(context.Background(), root)

	require.Equal(t, 1, result.TotalFiles)
	assert.Equal(t, "main.go", result.Files[0].FilePath)
	assert.Equal(t, "go", result.Files[0].Language)
}

func TestParse_TotalsMatchFiles(t *testing.T) {
	root := testutil.Tree(t, map[string]string{
		"a.go":     "package a\n\nfunc A() {}\n",
		"sub/b.go": "package sub\n\n// B does b.\nfunc B() {}\n",
	})

	result := NewGoAdapter().Parse(context.Background(), root)

	require.Equal(t, 2, result.TotalFiles)
	assert.Len(t, result.Files, result.TotalFiles)
	assert.Equal(t, "a.go", result.Files[0].FilePath)
	assert.Equal(t, "sub/b.go", result.Files[1].FilePath)
	total := 0
	for _, f := range result.Files {
		total += f.LinesOfCode
	}
	assert.Equal(t, total, result.TotalLinesOfCode)
	assert.Equal(t, 4, result.TotalLinesOfCode)
}

func TestParse_SkipsOversizedFiles(t *testing.T) {
	root := testutil.Tree(t, map[string]string{
		"small.go": "package a\n",
		"big.go":   "package a\n\nfunc Big() {\n\t// padding padding padding padding padding\n}\n",
	})
	cfg := config.DefaultConfig()
	cfg.Adapters.MaxFileSize = 20

	result := NewGoAdapter(WithConfig(cfg)).Parse(context.Background(), root)

	require.Equal(t, 1, result.TotalFiles)
	assert.Equal(t, "small.go", result.Files[0].FilePath)
	require.Len(t, result.ParseErrors, 1)
	assert.Equal(t, "big.go", result.ParseErrors[0].FilePath)
	assert.Equal(t, models.ParseSeverityWarning, result.ParseErrors[0].Severity)
}

func TestParse_SyntaxErrorIsWarning(t *testing.T) {
	root := testutil.Tree(t, map[string]string{
		"broken.go": "package a\n\nfunc Broken( {\n",
	})

	result := NewGoAdapter().Parse(context.Background(), root)

	assert.Equal(t, 1, result.TotalFiles)
	require.NotEmpty(t, result.ParseErrors)
	assert.Equal(t, models.ParseSeverityWarning, result.ParseErrors[0].Severity)
	assert.False(t, result.HasErrors())
}

func TestParse_ProgressCallback(t *testing.T) {
	root := testutil.Tree(t, map[string]string{
		"a.go": "package a\n",
		"b.go": "package a\n",
		"c.go": "package a\n",
	})
	var calls atomic.Int32

	NewGoAdapter(WithWorkers(2), WithProgress(func() {
		calls.Add(1)
	})).Parse(context.Background(), root)

	assert.Equal(t, int32(3), calls.Load())
}

func TestCountLinesOfCode(t *testing.T) {
	tests := []struct {
		name   string
		source string
		prefix string
		want   int
	}{
		{"empty", "", "//", 0},
		{"blank lines", "\n\n  \n", "//", 0},
		{"comments skipped", "// a\nx := 1\n  // b\ny := 2\n", "//", 2},
		{"python comments", "# a\nx = 1\n\n", "#", 1},
		{"trailing comment counts", "x := 1 // note\n", "//", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countLinesOfCode([]byte(tt.source), tt.prefix); got != tt.want {
				t.Errorf("countLinesOfCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBaseTypeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"*Server", "Server"},
		{"&mut Store", "Store"},
		{"Vec<User>", "Vec"},
		{"crate::models::User", "User"},
		{"pkg.Type", "Type"},
		{"dyn Handler", "Handler"},
		{"Map[K, V]", "Map"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := baseTypeName(tt.in); got != tt.want {
				t.Errorf("baseTypeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanComment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"// hello", "hello"},
		{"/// doc line", "doc line"},
		{"# py", "py"},
		{"/** Block\n * second\n */", "Block\nsecond"},
		{"/* plain */", "plain"},
	}

	for _, tt := range tests {
		if got := cleanComment(tt.in); got != tt.want {
			t.Errorf("cleanComment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitAttribute(t *testing.T) {
	name, derives := splitAttribute("derive(Debug, Clone, Serialize)")
	assert.Equal(t, "derive", name)
	assert.Equal(t, []string{"Debug", "Clone", "Serialize"}, derives)

	name, derives = splitAttribute("test")
	assert.Equal(t, "test", name)
	assert.Nil(t, derives)

	name, derives = splitAttribute("cfg(feature = \"x\")")
	assert.Equal(t, "cfg", name)
	assert.Nil(t, derives)
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "fmt", unquote(`"fmt"`))
	assert.Equal(t, "./x", unquote(`'./x'`))
	assert.Equal(t, "raw", unquote("`raw`"))
	assert.Equal(t, `"half`, unquote(`"half`))
	assert.Equal(t, "", unquote(`""`))
}
