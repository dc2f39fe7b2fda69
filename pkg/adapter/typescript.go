package adapter

import (
	"strings"

	"github.com/panbanda/strata/pkg/models"
	"github.com/panbanda/strata/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// NewTypeScriptAdapter creates an adapter for TypeScript, TSX and JavaScript sources.
func NewTypeScriptAdapter(opts ...Option) Adapter {
	return newTreeSitterAdapter("typescript", extractTypeScript, opts,
		parser.LangTypeScript, parser.LangTSX, parser.LangJavaScript)
}

type tsExtractor struct {
	*fileBuilder
}

func extractTypeScript(tree *parser.Tree, relPath string) models.ParsedFile {
	e := tsExtractor{newFileBuilder(tree, relPath, models.DependencyImport)}

	for _, node := range parser.NamedChildren(tree.Root()) {
		e.statement(node, node, false)
	}

	return e.build()
}

// statement extracts a top-level statement. docNode is the node whose
// preceding comments document it (the export statement when exported).
func (e tsExtractor) statement(node, docNode *sitter.Node, exported bool) {
	switch node.Type() {
	case "import_statement":
		e.importStatement(node)
	case "export_statement":
		if decl := node.ChildByFieldName("declaration"); decl != nil {
			e.statement(decl, node, true)
		} else if value := node.ChildByFieldName("value"); value != nil {
			// export default class {} / export default function () {}
			switch value.Type() {
			case "class", "function", "function_expression", "arrow_function":
				e.statement(value, node, true)
			}
		} else if src := node.ChildByFieldName("source"); src != nil {
			// re-export: export { a } from "./x"
			e.deps.Add(unquote(e.text(src)))
		}
	case "function_declaration", "generator_function_declaration", "function", "function_expression", "arrow_function":
		name := e.field(node, "name")
		if name == "" {
			name = "default"
		}
		el := e.function(node, models.ElementFunction, name, "")
		el.IsExported = exported
		el.Documentation = e.doc(docNode)
		e.add(el)
	case "lexical_declaration", "variable_declaration":
		for _, decl := range parser.NamedChildren(node) {
			if decl.Type() != "variable_declarator" {
				continue
			}
			value := decl.ChildByFieldName("value")
			if value == nil {
				continue
			}
			switch value.Type() {
			case "arrow_function", "function", "function_expression", "generator_function":
				el := e.function(value, models.ElementFunction, e.field(decl, "name"), "")
				el.Location = e.location(decl)
				el.IsExported = exported
				el.Documentation = e.doc(docNode)
				e.add(el)
			case "class":
				e.class(value, e.field(decl, "name"), docNode, exported)
			}
		}
	case "class_declaration", "abstract_class_declaration", "class":
		e.class(node, e.field(node, "name"), docNode, exported)
	case "interface_declaration":
		e.iface(node, docNode, exported)
	}
}

func (e tsExtractor) doc(node *sitter.Node) string {
	return docFromComments(precedingComments(node, e.source, nil), func(c string) bool {
		return strings.HasPrefix(c, "/**")
	})
}

// importStatement merges default, named and namespace imports under the source module.
func (e tsExtractor) importStatement(node *sitter.Node) {
	source := unquote(e.field(node, "source"))
	e.deps.Add(source)

	parser.WalkTyped(node, func(n *sitter.Node, nodeType string) bool {
		switch nodeType {
		case "import_clause":
			for _, c := range parser.NamedChildren(n) {
				if c.Type() == "identifier" {
					e.deps.Add(source, e.text(c))
				}
			}
		case "import_specifier":
			if alias := e.field(n, "alias"); alias != "" {
				e.deps.Add(source, alias)
			} else {
				e.deps.Add(source, e.field(n, "name"))
			}
			return false
		case "namespace_import":
			for _, c := range parser.NamedChildren(n) {
				if c.Type() == "identifier" {
					e.deps.Add(source, e.text(c))
				}
			}
			return false
		}
		return true
	})
}

func (e tsExtractor) function(node *sitter.Node, kind models.ElementKind, name, owner string) models.Element {
	el := e.callable(kind, name, node, node.ChildByFieldName("body"))
	el.Parameters = e.params(node)
	el.ReturnType = strings.TrimSpace(strings.TrimPrefix(e.field(node, "return_type"), ":"))
	for i := range int(node.ChildCount()) {
		if node.Child(i).Type() == "async" {
			el.IsAsync = true
			break
		}
	}
	setMeta(&el, models.MetaOwner, owner)
	return el
}

func (e tsExtractor) params(fn *sitter.Node) []models.Parameter {
	list := fn.ChildByFieldName("parameters")
	if list == nil {
		// single-parameter arrow function: x => x
		if p := fn.ChildByFieldName("parameter"); p != nil {
			return []models.Parameter{{Name: e.text(p)}}
		}
		return nil
	}

	var params []models.Parameter
	for _, p := range parser.NamedChildren(list) {
		var param models.Parameter
		switch p.Type() {
		case "required_parameter", "optional_parameter":
			param.Name = e.field(p, "pattern")
			param.Type = strings.TrimSpace(strings.TrimPrefix(e.field(p, "type"), ":"))
		case "identifier", "rest_pattern", "object_pattern", "array_pattern":
			param.Name = e.text(p)
		case "assignment_pattern":
			param.Name = e.field(p, "left")
		default:
			continue
		}
		params = append(params, param)
	}
	return params
}

// heritage returns the extended class and implemented interfaces.
func (e tsExtractor) heritage(class *sitter.Node) (extends string, implements []string) {
	for _, c := range parser.NamedChildren(class) {
		if c.Type() != "class_heritage" {
			continue
		}
		for _, h := range parser.NamedChildren(c) {
			switch h.Type() {
			case "extends_clause":
				if v := h.ChildByFieldName("value"); v != nil {
					extends = baseTypeName(e.text(v))
				} else if kids := parser.NamedChildren(h); len(kids) > 0 {
					extends = baseTypeName(e.text(kids[0]))
				}
			case "implements_clause":
				for _, t := range parser.NamedChildren(h) {
					implements = append(implements, baseTypeName(e.text(t)))
				}
			default:
				// JavaScript grammar: class_heritage holds the expression directly
				if extends == "" {
					extends = baseTypeName(e.text(h))
				}
			}
		}
	}
	return extends, implements
}

func tsMemberVisibility(node *sitter.Node, name string, source []byte) string {
	if strings.HasPrefix(name, "#") {
		return "private"
	}
	for _, c := range parser.NamedChildren(node) {
		if c.Type() == "accessibility_modifier" {
			return parser.GetNodeText(c, source)
		}
	}
	return "public"
}

func (e tsExtractor) class(node *sitter.Node, name string, docNode *sitter.Node, exported bool) {
	if name == "" {
		name = "default"
	}
	el := models.Element{
		Kind:          models.ElementClass,
		Name:          name,
		Location:      e.location(node),
		Documentation: e.doc(docNode),
	}
	extends, implements := e.heritage(node)
	el.Extends = extends
	setMeta(&el, models.MetaImplements, implements)
	if exported {
		setMeta(&el, models.MetaVisibility, "export")
	}

	var decorators []string
	for _, c := range parser.NamedChildren(node) {
		if c.Type() == "decorator" {
			decorators = append(decorators, strings.TrimSpace(strings.TrimPrefix(e.text(c), "@")))
		}
	}
	setMeta(&el, models.MetaAttributes, decorators)

	var methods []models.Element
	for _, m := range parser.NamedChildren(node.ChildByFieldName("body")) {
		switch m.Type() {
		case "method_definition":
			methodName := e.field(m, "name")
			method := e.function(m, models.ElementMethod, methodName, name)
			vis := tsMemberVisibility(m, methodName, e.source)
			method.IsExported = vis == "public"
			setMeta(&method, models.MetaVisibility, vis)
			method.Documentation = e.doc(m)
			methods = append(methods, method)
		case "public_field_definition", "field_definition":
			fieldName := e.field(m, "name")
			if fieldName == "" {
				fieldName = e.field(m, "property")
			}
			el.Fields = append(el.Fields, models.Field{
				Name:       fieldName,
				Visibility: tsMemberVisibility(m, fieldName, e.source),
				Type:       strings.TrimSpace(strings.TrimPrefix(e.field(m, "type"), ":")),
			})
		}
	}

	e.add(el)
	for _, m := range methods {
		e.add(m)
	}
}

// iface maps an interface to a TRAIT with its method signatures nested.
func (e tsExtractor) iface(node, docNode *sitter.Node, exported bool) {
	name := e.field(node, "name")
	el := models.Element{
		Kind:          models.ElementTrait,
		Name:          name,
		Location:      e.location(node),
		Documentation: e.doc(docNode),
	}
	if exported {
		setMeta(&el, models.MetaVisibility, "export")
	}
	parser.WalkTyped(node.ChildByFieldName("body"), func(n *sitter.Node, nodeType string) bool {
		if nodeType != "method_signature" {
			return true
		}
		m := e.function(n, models.ElementMethod, e.field(n, "name"), name)
		m.IsExported = true
		el.Methods = append(el.Methods, m)
		return false
	})
	e.add(el)
}
