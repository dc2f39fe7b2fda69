package adapter

import (
	"strings"

	"github.com/panbanda/strata/pkg/models"
	"github.com/panbanda/strata/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// NewPythonAdapter creates an adapter for Python sources.
func NewPythonAdapter(opts ...Option) Adapter {
	return newTreeSitterAdapter("python", extractPython, opts, parser.LangPython)
}

type pythonExtractor struct {
	*fileBuilder
}

func extractPython(tree *parser.Tree, relPath string) models.ParsedFile {
	e := pythonExtractor{newFileBuilder(tree, relPath, models.DependencyImport)}

	for _, node := range parser.NamedChildren(tree.Root()) {
		switch node.Type() {
		case "import_statement":
			e.importStatement(node)
		case "import_from_statement":
			e.importFrom(node)
		default:
			e.definition(node, nil)
		}
	}

	return e.build()
}

// definition handles function and class definitions, unwrapping decorators.
func (e pythonExtractor) definition(node *sitter.Node, decorators []string) {
	switch node.Type() {
	case "decorated_definition":
		var decs []string
		for _, c := range parser.NamedChildren(node) {
			if c.Type() == "decorator" {
				decs = append(decs, strings.TrimSpace(strings.TrimPrefix(e.text(c), "@")))
			}
		}
		if def := node.ChildByFieldName("definition"); def != nil {
			e.definition(def, decs)
		}
	case "function_definition":
		el := e.function(node, models.ElementFunction, "")
		setMeta(&el, models.MetaAttributes, decorators)
		e.add(el)
	case "class_definition":
		e.class(node, decorators)
	}
}

func (e pythonExtractor) importStatement(node *sitter.Node) {
	for _, c := range parser.NamedChildren(node) {
		switch c.Type() {
		case "dotted_name":
			name := e.text(c)
			e.deps.Add(name, lastDotted(name))
		case "aliased_import":
			e.deps.Add(e.field(c, "name"), e.field(c, "alias"))
		}
	}
}

func (e pythonExtractor) importFrom(node *sitter.Node) {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		return
	}
	module := e.text(moduleNode)
	// wildcard imports register the module with no symbols
	e.deps.Add(module)
	for _, c := range parser.NamedChildren(node) {
		if c.StartByte() == moduleNode.StartByte() {
			continue
		}
		switch c.Type() {
		case "dotted_name":
			e.deps.Add(module, e.text(c))
		case "aliased_import":
			e.deps.Add(module, e.field(c, "alias"))
		}
	}
}

func lastDotted(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// docstring returns the leading string literal of a block.
func (e pythonExtractor) docstring(body *sitter.Node) string {
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str.Type() != "string" {
		return ""
	}
	text := e.text(str)
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(text, q) && strings.HasSuffix(text, q) && len(text) >= 2*len(q) {
			text = text[len(q) : len(text)-len(q)]
			break
		}
	}
	return strings.TrimSpace(text)
}

func pythonVisibility(name string) string {
	switch {
	case strings.HasPrefix(name, "__") && !strings.HasSuffix(name, "__"):
		return "private"
	case strings.HasPrefix(name, "_") && !strings.HasSuffix(name, "__"):
		return "protected"
	default:
		return "public"
	}
}

func (e pythonExtractor) function(node *sitter.Node, kind models.ElementKind, owner string) models.Element {
	body := node.ChildByFieldName("body")
	el := e.callable(kind, e.field(node, "name"), node, body)
	el.Parameters = e.params(node.ChildByFieldName("parameters"), owner != "")
	el.ReturnType = e.field(node, "return_type")
	el.IsAsync = strings.HasPrefix(e.text(node), "async")
	el.IsExported = pythonVisibility(el.Name) == "public"
	el.Documentation = e.docstring(body)
	setMeta(&el, models.MetaOwner, owner)
	return el
}

// params returns the declared parameters, dropping self/cls on methods.
func (e pythonExtractor) params(list *sitter.Node, method bool) []models.Parameter {
	var params []models.Parameter
	for i, p := range parser.NamedChildren(list) {
		var param models.Parameter
		switch p.Type() {
		case "identifier":
			param.Name = e.text(p)
		case "typed_parameter":
			for _, c := range parser.NamedChildren(p) {
				if c.Type() == "identifier" || c.Type() == "list_splat_pattern" || c.Type() == "dictionary_splat_pattern" {
					param.Name = e.text(c)
					break
				}
			}
			param.Type = e.field(p, "type")
		case "default_parameter", "typed_default_parameter":
			param.Name = e.field(p, "name")
			param.Type = e.field(p, "type")
		case "list_splat_pattern", "dictionary_splat_pattern":
			param.Name = e.text(p)
		default:
			continue
		}
		if method && i == 0 && (param.Name == "self" || param.Name == "cls") {
			continue
		}
		params = append(params, param)
	}
	return params
}

func (e pythonExtractor) class(node *sitter.Node, decorators []string) {
	name := e.field(node, "name")
	body := node.ChildByFieldName("body")
	el := models.Element{
		Kind:          models.ElementClass,
		Name:          name,
		Location:      e.location(node),
		Documentation: e.docstring(body),
	}
	setMeta(&el, models.MetaAttributes, decorators)

	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		var bases []string
		for _, s := range parser.NamedChildren(supers) {
			if s.Type() == "keyword_argument" {
				continue // metaclass=...
			}
			bases = append(bases, e.text(s))
		}
		if len(bases) > 0 {
			el.Extends = baseTypeName(bases[0])
			setMeta(&el, models.MetaImplements, bases[1:])
		}
	}

	seen := make(map[string]bool)
	addField := func(fieldName, typ string) {
		if fieldName == "" || seen[fieldName] {
			return
		}
		seen[fieldName] = true
		el.Fields = append(el.Fields, models.Field{Name: fieldName, Visibility: pythonVisibility(fieldName), Type: typ})
	}

	var methods []models.Element
	for _, stmt := range parser.NamedChildren(body) {
		def := stmt
		var decs []string
		if stmt.Type() == "decorated_definition" {
			for _, c := range parser.NamedChildren(stmt) {
				if c.Type() == "decorator" {
					decs = append(decs, strings.TrimSpace(strings.TrimPrefix(e.text(c), "@")))
				}
			}
			def = stmt.ChildByFieldName("definition")
		}
		if def == nil {
			continue
		}

		switch def.Type() {
		case "function_definition":
			m := e.function(def, models.ElementMethod, name)
			setMeta(&m, models.MetaAttributes, decs)
			methods = append(methods, m)
			if m.Name == "__init__" {
				e.selfAssignments(def.ChildByFieldName("body"), addField)
			}
		case "expression_statement":
			for _, a := range parser.NamedChildren(def) {
				if a.Type() == "assignment" {
					if left := a.ChildByFieldName("left"); left != nil && left.Type() == "identifier" {
						addField(e.text(left), e.field(a, "type"))
					}
				}
			}
		}
	}

	e.add(el)
	for _, m := range methods {
		e.add(m)
	}
}

// selfAssignments records attributes assigned as self.x in a constructor body.
func (e pythonExtractor) selfAssignments(body *sitter.Node, add func(name, typ string)) {
	parser.WalkTyped(body, func(n *sitter.Node, nodeType string) bool {
		switch nodeType {
		case "function_definition", "class_definition", "lambda":
			return false
		case "assignment":
			left := n.ChildByFieldName("left")
			if left != nil && left.Type() == "attribute" && e.field(left, "object") == "self" {
				add(e.field(left, "attribute"), e.field(n, "type"))
			}
		}
		return true
	})
}
