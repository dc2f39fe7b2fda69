package adapter

import (
	"strings"

	"github.com/panbanda/strata/pkg/models"
	"github.com/panbanda/strata/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// NewJavaAdapter creates an adapter for Java sources.
func NewJavaAdapter(opts ...Option) Adapter {
	return newTreeSitterAdapter("java", extractJava, opts, parser.LangJava)
}

type javaExtractor struct {
	*fileBuilder
}

var javaSkipBeforeDoc = map[string]bool{"marker_annotation": true, "annotation": true}

func extractJava(tree *parser.Tree, relPath string) models.ParsedFile {
	e := javaExtractor{newFileBuilder(tree, relPath, models.DependencyImport)}

	for _, node := range parser.NamedChildren(tree.Root()) {
		switch node.Type() {
		case "import_declaration":
			e.importDecl(node)
		default:
			e.typeDecl(node, "")
		}
	}

	return e.build()
}

// importDecl maps import a.b.C to a.b with symbol C and a.b.* to a.b with none.
func (e javaExtractor) importDecl(node *sitter.Node) {
	var name string
	wildcard := false
	for _, c := range parser.NamedChildren(node) {
		switch c.Type() {
		case "scoped_identifier", "identifier":
			name = e.text(c)
		case "asterisk":
			wildcard = true
		}
	}
	if name == "" {
		return
	}
	if wildcard {
		e.deps.Add(name)
		return
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		e.deps.Add(name[:i], name[i+1:])
		return
	}
	e.deps.Add(name, name)
}

// modifiers returns the visibility keyword and annotation names of a declaration.
func (e javaExtractor) modifiers(node *sitter.Node) (visibility string, annotations []string) {
	visibility = "package"
	for _, c := range parser.NamedChildren(node) {
		if c.Type() != "modifiers" {
			continue
		}
		for i := range int(c.ChildCount()) {
			m := c.Child(i)
			switch m.Type() {
			case "public", "protected", "private":
				visibility = m.Type()
			case "marker_annotation", "annotation":
				annotations = append(annotations, e.field(m, "name"))
			}
		}
	}
	return visibility, annotations
}

func (e javaExtractor) doc(node *sitter.Node) string {
	return docFromComments(precedingComments(node, e.source, javaSkipBeforeDoc), func(c string) bool {
		return strings.HasPrefix(c, "/**")
	})
}

func (e javaExtractor) typeDecl(node *sitter.Node, outer string) {
	switch node.Type() {
	case "class_declaration", "record_declaration", "enum_declaration":
		e.class(node, outer)
	case "interface_declaration":
		e.iface(node)
	}
}

func (e javaExtractor) class(node *sitter.Node, outer string) {
	name := e.field(node, "name")
	vis, annotations := e.modifiers(node)
	el := models.Element{
		Kind:          models.ElementClass,
		Name:          name,
		Location:      e.location(node),
		Documentation: e.doc(node),
	}
	if super := node.ChildByFieldName("superclass"); super != nil {
		for _, c := range parser.NamedChildren(super) {
			el.Extends = baseTypeName(e.text(c))
		}
	}
	var implements []string
	if ifaces := node.ChildByFieldName("interfaces"); ifaces != nil {
		parser.WalkTyped(ifaces, func(n *sitter.Node, nodeType string) bool {
			if nodeType == "type_list" {
				for _, t := range parser.NamedChildren(n) {
					implements = append(implements, baseTypeName(e.text(t)))
				}
				return false
			}
			return true
		})
	}
	setMeta(&el, models.MetaImplements, implements)
	setMeta(&el, models.MetaVisibility, vis)
	setMeta(&el, models.MetaAttributes, annotations)
	setMeta(&el, models.MetaOwner, outer)

	var methods []models.Element
	var nested []*sitter.Node
	for _, m := range parser.NamedChildren(node.ChildByFieldName("body")) {
		switch m.Type() {
		case "method_declaration", "constructor_declaration", "compact_constructor_declaration":
			methods = append(methods, e.method(m, name))
		case "field_declaration":
			fieldVis, _ := e.modifiers(m)
			typ := e.field(m, "type")
			for _, d := range parser.NamedChildren(m) {
				if d.Type() == "variable_declarator" {
					el.Fields = append(el.Fields, models.Field{Name: e.field(d, "name"), Visibility: fieldVis, Type: typ})
				}
			}
		case "class_declaration", "record_declaration", "enum_declaration", "interface_declaration":
			nested = append(nested, m)
		case "enum_body_declarations":
			for _, b := range parser.NamedChildren(m) {
				if b.Type() == "method_declaration" || b.Type() == "constructor_declaration" {
					methods = append(methods, e.method(b, name))
				}
			}
		}
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		// record components become fields
		for _, p := range e.params(params) {
			el.Fields = append(el.Fields, models.Field{Name: p.Name, Visibility: "private", Type: p.Type})
		}
	}

	e.add(el)
	for _, m := range methods {
		e.add(m)
	}
	for _, n := range nested {
		e.typeDecl(n, name)
	}
}

func (e javaExtractor) method(node *sitter.Node, owner string) models.Element {
	el := e.callable(models.ElementMethod, e.field(node, "name"), node, node.ChildByFieldName("body"))
	el.Parameters = e.params(node.ChildByFieldName("parameters"))
	el.ReturnType = e.field(node, "type")
	vis, annotations := e.modifiers(node)
	el.IsExported = vis == "public"
	el.Documentation = e.doc(node)
	setMeta(&el, models.MetaVisibility, vis)
	setMeta(&el, models.MetaAttributes, annotations)
	setMeta(&el, models.MetaOwner, owner)
	return el
}

func (e javaExtractor) params(list *sitter.Node) []models.Parameter {
	var params []models.Parameter
	for _, p := range parser.NamedChildren(list) {
		switch p.Type() {
		case "formal_parameter":
			params = append(params, models.Parameter{Name: e.field(p, "name"), Type: e.field(p, "type")})
		case "spread_parameter":
			var typ, name string
			for _, c := range parser.NamedChildren(p) {
				switch c.Type() {
				case "variable_declarator":
					name = e.field(c, "name")
				case "modifiers":
				default:
					if typ == "" {
						typ = e.text(c)
					}
				}
			}
			params = append(params, models.Parameter{Name: name, Type: "..." + typ})
		}
	}
	return params
}

// iface maps an interface to a TRAIT. Default methods with bodies are also
// emitted as top-level METHOD elements so they are scored.
func (e javaExtractor) iface(node *sitter.Node) {
	name := e.field(node, "name")
	vis, annotations := e.modifiers(node)
	el := models.Element{
		Kind:          models.ElementTrait,
		Name:          name,
		Location:      e.location(node),
		Documentation: e.doc(node),
	}
	setMeta(&el, models.MetaVisibility, vis)
	setMeta(&el, models.MetaAttributes, annotations)

	var defaults []models.Element
	for _, m := range parser.NamedChildren(node.ChildByFieldName("body")) {
		if m.Type() != "method_declaration" {
			continue
		}
		method := e.method(m, name)
		method.IsExported = true
		el.Methods = append(el.Methods, method)
		if m.ChildByFieldName("body") != nil {
			defaults = append(defaults, method)
		}
	}
	e.add(el)
	for _, m := range defaults {
		e.add(m)
	}
}
