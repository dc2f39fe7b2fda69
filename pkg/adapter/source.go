package adapter

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/panbanda/strata/pkg/models"
	"github.com/panbanda/strata/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// fileBuilder accumulates the canonical model for one file.
type fileBuilder struct {
	path     string
	lang     parser.Language
	source   []byte
	elements []models.Element
	deps     *models.DependencySet
}

func newFileBuilder(tree *parser.Tree, relPath string, depType models.DependencyType) *fileBuilder {
	return &fileBuilder{
		path:   relPath,
		lang:   tree.Language,
		source: tree.Source,
		deps:   models.NewDependencySet(relPath, depType),
	}
}

func (b *fileBuilder) text(node *sitter.Node) string {
	return parser.GetNodeText(node, b.source)
}

func (b *fileBuilder) field(node *sitter.Node, name string) string {
	return parser.FieldText(node, name, b.source)
}

func (b *fileBuilder) location(node *sitter.Node) models.Location {
	line, col := parser.Position(node)
	return models.Location{FilePath: b.path, Line: line, Column: col}
}

func (b *fileBuilder) add(e models.Element) {
	b.elements = append(b.elements, e)
}

// callable builds a FUNCTION or METHOD element with complexity computed from body.
func (b *fileBuilder) callable(kind models.ElementKind, name string, node, body *sitter.Node) models.Element {
	return models.Element{
		Kind:       kind,
		Name:       name,
		Location:   b.location(node),
		Complexity: cyclomatic(body, b.source, b.lang),
	}
}

func (b *fileBuilder) build() models.ParsedFile {
	elements := b.elements
	if elements == nil {
		elements = []models.Element{}
	}
	return models.ParsedFile{
		FilePath:     b.path,
		Language:     string(b.lang),
		Elements:     elements,
		Dependencies: b.deps.List(),
		LinesOfCode:  countLinesOfCode(b.source, lineCommentPrefix(b.lang)),
	}
}

func lineCommentPrefix(lang parser.Language) string {
	if lang == parser.LangPython {
		return "#"
	}
	return "//"
}

// countLinesOfCode counts lines that are neither blank nor a pure line comment.
func countLinesOfCode(source []byte, commentPrefix string) int {
	n := 0
	for line := range bytes.SplitSeq(source, []byte("\n")) {
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 || bytes.HasPrefix(trimmed, []byte(commentPrefix)) {
			continue
		}
		n++
	}
	return n
}

// isCommentNode reports whether a node type is a comment in any supported grammar.
func isCommentNode(nodeType string) bool {
	return nodeType == "comment" || nodeType == "line_comment" || nodeType == "block_comment"
}

// precedingComments returns the comment siblings directly above node,
// skipping siblings whose type is in skip (attributes, decorators). Comments
// separated from the node by a blank line are not attached.
func precedingComments(node *sitter.Node, source []byte, skip map[string]bool) []string {
	var comments []string
	line := int(node.StartPoint().Row)
	for prev := node.PrevNamedSibling(); prev != nil; prev = prev.PrevNamedSibling() {
		t := prev.Type()
		if skip[t] {
			line = int(prev.StartPoint().Row)
			continue
		}
		if !isCommentNode(t) || int(prev.EndPoint().Row) < line-1 {
			break
		}
		comments = append(comments, parser.GetNodeText(prev, source))
		line = int(prev.StartPoint().Row)
	}
	// collected bottom-up
	for i, j := 0, len(comments)-1; i < j; i, j = i+1, j-1 {
		comments[i], comments[j] = comments[j], comments[i]
	}
	return comments
}

// cleanComment strips comment markers from raw comment text.
func cleanComment(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "/*") {
		raw = strings.TrimSuffix(strings.TrimPrefix(raw, "/*"), "*/")
		raw = strings.TrimPrefix(raw, "*")
		raw = strings.TrimPrefix(raw, "!")
		var lines []string
		for l := range strings.SplitSeq(raw, "\n") {
			l = strings.TrimSpace(l)
			l = strings.TrimSpace(strings.TrimPrefix(l, "*"))
			if l != "" {
				lines = append(lines, l)
			}
		}
		return strings.Join(lines, "\n")
	}
	for _, prefix := range []string{"///", "//!", "//", "#"} {
		if strings.HasPrefix(raw, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(raw, prefix))
		}
	}
	return raw
}

// docFromComments joins cleaned comments that satisfy keep.
func docFromComments(comments []string, keep func(string) bool) string {
	var parts []string
	for _, c := range comments {
		if keep != nil && !keep(strings.TrimSpace(c)) {
			continue
		}
		if s := cleanComment(c); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// isCapitalized reports whether name starts with an upper-case letter.
func isCapitalized(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}

// baseTypeName strips pointers, references, generics and paths from a type expression.
func baseTypeName(typ string) string {
	typ = strings.TrimSpace(typ)
	typ = strings.TrimLeft(typ, "*&")
	typ = strings.TrimPrefix(typ, "mut ")
	typ = strings.TrimPrefix(typ, "dyn ")
	if i := strings.IndexAny(typ, "<["); i >= 0 {
		typ = typ[:i]
	}
	for _, sep := range []string{"::", "."} {
		if i := strings.LastIndex(typ, sep); i >= 0 {
			typ = typ[i+len(sep):]
		}
	}
	return strings.TrimSpace(typ)
}

// unquote removes one level of matching quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		switch s[0] {
		case '"', '\'', '`':
			if s[len(s)-1] == s[0] {
				return s[1 : len(s)-1]
			}
		}
	}
	return s
}

// setMeta sets a metadata value, allocating the map on first use. Empty
// strings and empty slices are not recorded.
func setMeta(e *models.Element, key string, value any) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return
		}
	case []string:
		if len(v) == 0 {
			return
		}
	}
	if e.Metadata == nil {
		e.Metadata = make(map[string]any)
	}
	e.Metadata[key] = value
}
