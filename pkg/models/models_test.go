package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependencySet_MergesSymbolsPerPath(t *testing.T) {
	set := NewDependencySet("src/lib.rs", DependencyUse)
	set.Add("std::collections", "HashMap")
	set.Add("serde", "Serialize")
	set.Add("serde", "Deserialize", "Serialize")
	set.Add("crate::models", "User")

	deps := set.List()
	require.Len(t, deps, 3)

	assert.Equal(t, "std::collections", deps[0].To)
	assert.Equal(t, "serde", deps[1].To)
	assert.Equal(t, []string{"Serialize", "Deserialize"}, deps[1].ImportedSymbols)
	assert.Equal(t, "crate::models", deps[2].To)
	for _, d := range deps {
		assert.Equal(t, "src/lib.rs", d.From)
		assert.Equal(t, DependencyUse, d.Type)
	}
}

func TestDependencySet_WildcardHasNoSymbols(t *testing.T) {
	set := NewDependencySet("a.java", DependencyImport)
	set.Add("java.util")
	set.Add("")

	deps := set.List()
	require.Len(t, deps, 1)
	assert.NotNil(t, deps[0].ImportedSymbols)
	assert.Empty(t, deps[0].ImportedSymbols)
	assert.Equal(t, 1, set.Len())
}

func TestNewParseResult_Totals(t *testing.T) {
	files := []ParsedFile{
		{FilePath: "b.go", LinesOfCode: 10},
		{FilePath: "a.go", LinesOfCode: 5},
	}
	r := NewParseResult(files, nil, 1500*time.Millisecond)

	assert.Equal(t, 2, r.TotalFiles)
	assert.Equal(t, len(r.Files), r.TotalFiles)
	assert.Equal(t, 15, r.TotalLinesOfCode)
	assert.Equal(t, int64(1500), r.ParseDurationMs)
	assert.Equal(t, "a.go", r.Files[0].FilePath)
	assert.NotNil(t, r.ParseErrors)
	assert.False(t, r.HasErrors())

	f, ok := r.File("b.go")
	require.True(t, ok)
	assert.Equal(t, 10, f.LinesOfCode)

	_, ok = r.File("missing.go")
	assert.False(t, ok)
}

func TestEmptyParseResult(t *testing.T) {
	r := EmptyParseResult(ParseError{FilePath: "rust-parser", Message: "missing", Severity: ParseSeverityError})

	assert.Equal(t, 0, r.TotalFiles)
	assert.Empty(t, r.Files)
	require.Len(t, r.ParseErrors, 1)
	assert.True(t, r.HasErrors())
}

func TestParsedFile_Callables(t *testing.T) {
	f := ParsedFile{Elements: []Element{
		{Kind: ElementStruct, Name: "User"},
		{Kind: ElementFunction, Name: "add"},
		{Kind: ElementImpl, Name: "impl User"},
		{Kind: ElementMethod, Name: "new", Metadata: map[string]any{MetaOwner: "User"}},
	}}

	callables := f.Callables()
	require.Len(t, callables, 2)
	assert.Equal(t, "add", callables[0].Name)
	assert.Equal(t, "User.new", callables[1].QualifiedName())
}

func TestElement_Helpers(t *testing.T) {
	e := Element{Kind: ElementClass, Name: "UserController"}
	assert.True(t, e.IsType())
	assert.False(t, e.IsCallable())
	assert.Equal(t, "", e.Owner())
	assert.Equal(t, "UserController", e.QualifiedName())

	e.Metadata = map[string]any{MetaVisibility: 3}
	assert.Equal(t, "", e.MetaString(MetaVisibility))
}

func TestLevelRank(t *testing.T) {
	assert.Less(t, LevelHigh.Rank(), LevelMedium.Rank())
	assert.Less(t, LevelMedium.Rank(), LevelLow.Rank())
}

func TestNewAnalyzerResult(t *testing.T) {
	start := time.Now().Add(-20 * time.Millisecond)
	r := NewAnalyzerResult("complexity-analyzer", "1.0.0", start, 42)

	assert.Equal(t, "complexity-analyzer", r.Name)
	assert.Equal(t, "1.0.0", r.Version)
	assert.Equal(t, 42, r.Data)
	assert.GreaterOrEqual(t, r.ExecutionTimeMs, int64(20))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"high", LevelHigh, true},
		{"MEDIUM", LevelMedium, true},
		{" Low ", LevelLow, true},
		{"critical", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}
