package adapter

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/panbanda/strata/internal/scanner"
	"github.com/panbanda/strata/pkg/models"
	"github.com/panbanda/strata/pkg/parser"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// RustToolName is the external dependency reported when the binary is missing.
const RustToolName = "rust-parser"

//go:embed schema/rust-parser.schema.json
var rustToolSchemaJSON []byte

var (
	rustToolSchemaOnce sync.Once
	rustToolSchema     *jsonschema.Schema
	rustToolSchemaErr  error
)

func compiledRustToolSchema() (*jsonschema.Schema, error) {
	rustToolSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(rustToolSchemaJSON))
		if err != nil {
			rustToolSchemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("rust-parser.schema.json", doc); err != nil {
			rustToolSchemaErr = err
			return
		}
		rustToolSchema, rustToolSchemaErr = c.Compile("rust-parser.schema.json")
	})
	return rustToolSchema, rustToolSchemaErr
}

// rustToolOutput mirrors the JSON document printed by rust-parser.
type rustToolOutput struct {
	Files  []rustToolFile `json:"files"`
	Errors []string       `json:"errors"`
}

type rustToolFile struct {
	Path  string         `json:"path"`
	Items []rustToolItem `json:"items"`
	Uses  []rustToolUse  `json:"uses"`
	LOC   int            `json:"loc"`
}

type rustToolLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type rustToolParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type rustToolField struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Visibility string `json:"visibility"`
}

type rustToolMethod struct {
	Name       string           `json:"name"`
	Visibility string           `json:"visibility"`
	Params     []rustToolParam  `json:"params"`
	ReturnType *string          `json:"return_type"`
	IsAsync    bool             `json:"is_async"`
	Complexity *int             `json:"complexity"`
	Location   rustToolLocation `json:"location"`
}

type rustToolItem struct {
	Kind          string           `json:"kind"`
	Name          string           `json:"name"`
	Visibility    string           `json:"visibility"`
	Location      rustToolLocation `json:"location"`
	Documentation *string          `json:"documentation"`
	Attrs         []string         `json:"attrs"`
	Fields        []rustToolField  `json:"fields"`
	Methods       []rustToolMethod `json:"methods"`
	Params        []rustToolParam  `json:"params"`
	ReturnType    *string          `json:"return_type"`
	IsAsync       bool             `json:"is_async"`
	Complexity    *int             `json:"complexity"`
	ImplTrait     *string          `json:"impl_trait"`
	ImplTarget    *string          `json:"impl_target"`
}

type rustToolUse struct {
	Path  string   `json:"path"`
	Items []string `json:"items"`
}

// rustToolAdapter delegates Rust parsing to the external rust-parser binary.
type rustToolAdapter struct {
	binary  string
	timeout time.Duration
	opts    options
}

// NewRustToolAdapter creates an adapter that runs binaryPath (looked up on
// PATH when it has no separator) and decodes its JSON output. A zero timeout
// uses the configured adapter timeout.
func NewRustToolAdapter(binaryPath string, timeout time.Duration, opts ...Option) Adapter {
	o := buildOptions(opts)
	if binaryPath == "" {
		binaryPath = RustToolName
	}
	if timeout <= 0 {
		timeout = o.config.AdapterTimeout()
	}
	return &rustToolAdapter{binary: binaryPath, timeout: timeout, opts: o}
}

func (a *rustToolAdapter) Name() string {
	return RustToolName
}

func (a *rustToolAdapter) Supports(lang parser.Language) bool {
	return lang == parser.LangRust
}

func (a *rustToolAdapter) fail(path, format string, args ...any) *models.ParseResult {
	msg := fmt.Sprintf(format, args...)
	a.opts.logger.Warn("rust-parser failed", "path", path, "error", msg)
	return models.EmptyParseResult(models.ParseError{
		FilePath: path,
		Message:  msg,
		Severity: models.ParseSeverityError,
	})
}

func (a *rustToolAdapter) Parse(ctx context.Context, rootDir string) *models.ParseResult {
	start := time.Now()

	bin, err := exec.LookPath(a.binary)
	if err != nil {
		return a.fail(rootDir, "missing external dependency %q: %v", RustToolName, err)
	}
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return a.fail(rootDir, "%s: %v", RustToolName, err)
	}

	out, err := a.run(ctx, bin, absRoot)
	if err != nil {
		return a.fail(rootDir, "%s: %v", RustToolName, err)
	}

	decoded, err := decodeRustToolOutput(out)
	if err != nil {
		return a.fail(rootDir, "%s: %v", RustToolName, err)
	}

	return a.convert(absRoot, decoded, time.Since(start))
}

// ParseFiles runs the tool over rootDir and keeps only the requested files.
// Errors reported against other source files are dropped with them; errors
// about the tool itself are kept.
func (a *rustToolAdapter) ParseFiles(ctx context.Context, rootDir string, files []string) *models.ParseResult {
	result := a.Parse(ctx, rootDir)
	wanted := make(map[string]bool, len(files))
	for _, f := range files {
		wanted[scanner.RelPath(rootDir, f)] = true
	}
	kept := make([]models.ParsedFile, 0, len(result.Files))
	for _, f := range result.Files {
		if wanted[f.FilePath] {
			kept = append(kept, f)
		}
	}
	var errs []models.ParseError
	for _, e := range result.ParseErrors {
		if wanted[e.FilePath] || !strings.HasSuffix(e.FilePath, ".rs") {
			errs = append(errs, e)
		}
	}
	return models.NewParseResult(kept, errs, time.Duration(result.ParseDurationMs)*time.Millisecond)
}

// run executes the tool bounded by the adapter timeout. WaitDelay stops a
// killed process with inherited pipes from blocking Wait.
func (a *rustToolAdapter) run(ctx context.Context, bin, root string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, root, "--json")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nil, fmt.Errorf("timed out after %s", a.timeout)
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case err != nil:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("exited with code %d: %s", exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// decodeRustToolOutput validates raw tool output against the embedded schema
// and decodes it.
func decodeRustToolOutput(raw []byte) (*rustToolOutput, error) {
	schema, err := compiledRustToolSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling output schema: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON output: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		return nil, fmt.Errorf("output does not match schema: %w", err)
	}
	var out rustToolOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding output: %w", err)
	}
	return &out, nil
}

func (a *rustToolAdapter) relPath(root, path string) string {
	if filepath.IsAbs(path) {
		return scanner.RelPath(root, path)
	}
	return filepath.ToSlash(filepath.Clean(path))
}

func (a *rustToolAdapter) convert(root string, out *rustToolOutput, elapsed time.Duration) *models.ParseResult {
	var parseErrors []models.ParseError
	for _, msg := range out.Errors {
		path, detail, ok := strings.Cut(msg, ": ")
		if !ok {
			path, detail = root, msg
		}
		parseErrors = append(parseErrors, models.ParseError{
			FilePath: a.relPath(root, path),
			Message:  detail,
			Severity: models.ParseSeverityError,
		})
	}

	seen := make(map[string]bool, len(out.Files))
	files := make([]models.ParsedFile, 0, len(out.Files))
	for _, f := range out.Files {
		rel := a.relPath(root, f.Path)
		if a.opts.config.ShouldExclude(rel) {
			continue
		}
		if seen[rel] {
			parseErrors = append(parseErrors, models.ParseError{
				FilePath: rel,
				Message:  "duplicate file in rust-parser output; keeping first occurrence",
				Severity: models.ParseSeverityWarning,
			})
			continue
		}
		seen[rel] = true
		files = append(files, convertRustToolFile(rel, f))
		if a.opts.onProgress != nil {
			a.opts.onProgress()
		}
	}

	result := models.NewParseResult(files, parseErrors, elapsed)
	a.opts.logger.Debug("parsed files",
		"adapter", RustToolName,
		"files", result.TotalFiles,
		"loc", result.TotalLinesOfCode,
		"errors", len(result.ParseErrors),
	)
	return result
}

func convertRustToolFile(rel string, f rustToolFile) models.ParsedFile {
	deps := models.NewDependencySet(rel, models.DependencyUse)
	for _, u := range f.Uses {
		path, items := useModule(u)
		deps.Add(path, items...)
	}

	elements := []models.Element{}
	for _, item := range f.Items {
		elements = append(elements, convertRustToolItem(rel, item)...)
	}

	return models.ParsedFile{
		FilePath:     rel,
		Language:     string(parser.LangRust),
		Elements:     elements,
		Dependencies: deps.List(),
		LinesOfCode:  f.LOC,
	}
}

// useModule folds a tool use entry into its module path and symbols. The tool
// reports a::b::C as path a::b::C with item C and a::b::* as path a::b with
// item *, so a trailing segment equal to the single item is dropped and a
// glob carries no symbols. A bare crate import (use serde) stays as is.
func useModule(u rustToolUse) (string, []string) {
	if len(u.Items) == 1 && u.Items[0] == "*" {
		if u.Path == "*" {
			return "", nil
		}
		return u.Path, nil
	}
	if len(u.Items) == 1 {
		if i := strings.LastIndex(u.Path, "::"); i >= 0 && u.Path[i+2:] == u.Items[0] {
			return u.Path[:i], u.Items
		}
	}
	return u.Path, u.Items
}

func toolLocation(path string, l rustToolLocation) models.Location {
	return models.Location{FilePath: path, Line: max(l.Line, 1), Column: max(l.Column, 1)}
}

func toolComplexity(c *int) int {
	if c == nil || *c < 1 {
		return 1
	}
	return *c
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toolParams(in []rustToolParam) []models.Parameter {
	var out []models.Parameter
	for _, p := range in {
		if p.Name == "self" {
			continue
		}
		out = append(out, models.Parameter{Name: p.Name, Type: p.Type})
	}
	return out
}

func toolMethod(path, owner string, m rustToolMethod) models.Element {
	el := models.Element{
		Kind:       models.ElementMethod,
		Name:       m.Name,
		Location:   toolLocation(path, m.Location),
		Parameters: toolParams(m.Params),
		ReturnType: deref(m.ReturnType),
		IsAsync:    m.IsAsync,
		IsExported: m.Visibility == "pub",
		Complexity: toolComplexity(m.Complexity),
	}
	setMeta(&el, models.MetaVisibility, m.Visibility)
	setMeta(&el, models.MetaOwner, owner)
	return el
}

// convertRustToolItem maps one tool item to its elements. Impl methods are
// also returned as top-level METHOD elements.
func convertRustToolItem(path string, item rustToolItem) []models.Element {
	el := models.Element{
		Name:          item.Name,
		Location:      toolLocation(path, item.Location),
		Documentation: deref(item.Documentation),
	}
	setMeta(&el, models.MetaVisibility, item.Visibility)
	var attrs, derives []string
	async := item.IsAsync
	for _, a := range item.Attrs {
		// the tool reports fn asyncness as a pseudo attribute
		if a == "async" {
			async = true
			continue
		}
		name, ds := splitAttribute(a)
		attrs = append(attrs, name)
		derives = append(derives, ds...)
	}
	setMeta(&el, models.MetaAttributes, attrs)
	setMeta(&el, models.MetaDerives, derives)

	switch item.Kind {
	case "struct":
		el.Kind = models.ElementStruct
		for _, f := range item.Fields {
			el.Fields = append(el.Fields, models.Field{Name: f.Name, Visibility: f.Visibility, Type: f.Type})
		}
		return []models.Element{el}
	case "trait":
		el.Kind = models.ElementTrait
		for _, m := range item.Methods {
			el.Methods = append(el.Methods, toolMethod(path, item.Name, m))
		}
		return []models.Element{el}
	case "impl":
		el.Kind = models.ElementImpl
		target := deref(item.ImplTarget)
		if target == "" {
			target = item.Name
		}
		trait := deref(item.ImplTrait)
		el.TargetType = target
		el.Name = "impl " + target
		if trait != "" {
			el.Name = "impl " + trait + " for " + target
		}
		setMeta(&el, models.MetaTrait, trait)
		owner := baseTypeName(target)
		for _, m := range item.Methods {
			method := toolMethod(path, owner, m)
			if trait != "" {
				method.IsExported = true
			}
			el.Methods = append(el.Methods, method)
		}
		return append([]models.Element{el}, el.Methods...)
	case "fn":
		el.Kind = models.ElementFunction
		el.Parameters = toolParams(item.Params)
		el.ReturnType = deref(item.ReturnType)
		el.IsAsync = async
		el.IsExported = item.Visibility == "pub"
		el.Complexity = toolComplexity(item.Complexity)
		return []models.Element{el}
	default:
		// mod, enum and type aliases carry nothing the analyzers read
		return nil
	}
}
