package adapter

import (
	"path"
	"strings"

	"github.com/panbanda/strata/pkg/models"
	"github.com/panbanda/strata/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// NewGoAdapter creates an adapter for Go sources.
func NewGoAdapter(opts ...Option) Adapter {
	return newTreeSitterAdapter("go", extractGo, opts, parser.LangGo)
}

type goExtractor struct {
	*fileBuilder
}

func extractGo(tree *parser.Tree, relPath string) models.ParsedFile {
	e := goExtractor{newFileBuilder(tree, relPath, models.DependencyImport)}

	for _, node := range parser.NamedChildren(tree.Root()) {
		switch node.Type() {
		case "import_declaration":
			e.imports(node)
		case "function_declaration":
			e.function(node)
		case "method_declaration":
			e.method(node)
		case "type_declaration":
			e.types(node)
		}
	}

	return e.build()
}

func (e goExtractor) doc(node *sitter.Node) string {
	return docFromComments(precedingComments(node, e.source, nil), nil)
}

func (e goExtractor) imports(node *sitter.Node) {
	parser.WalkTyped(node, func(n *sitter.Node, nodeType string) bool {
		if nodeType != "import_spec" {
			return true
		}
		importPath := unquote(e.field(n, "path"))
		switch alias := e.field(n, "name"); alias {
		case "_", ".":
			// side-effect and dot imports bring in no named symbol
			e.deps.Add(importPath)
		case "":
			e.deps.Add(importPath, goPackageName(importPath))
		default:
			e.deps.Add(importPath, alias)
		}
		return false
	})
}

// goPackageName guesses the package name from an import path, skipping
// major version suffixes such as /v2.
func goPackageName(importPath string) string {
	base := path.Base(importPath)
	if len(base) > 1 && base[0] == 'v' && strings.Trim(base[1:], "0123456789") == "" {
		base = path.Base(path.Dir(importPath))
	}
	return base
}

func (e goExtractor) signature(el *models.Element, node *sitter.Node) {
	el.Parameters = e.params(node.ChildByFieldName("parameters"))
	el.ReturnType = e.field(node, "result")
	el.IsExported = isCapitalized(el.Name)
	el.Documentation = e.doc(node)
}

func (e goExtractor) function(node *sitter.Node) {
	el := e.callable(models.ElementFunction, e.field(node, "name"), node, node.ChildByFieldName("body"))
	e.signature(&el, node)
	e.add(el)
}

func (e goExtractor) method(node *sitter.Node) {
	el := e.callable(models.ElementMethod, e.field(node, "name"), node, node.ChildByFieldName("body"))
	e.signature(&el, node)
	if recv := e.params(node.ChildByFieldName("receiver")); len(recv) > 0 {
		setMeta(&el, models.MetaOwner, baseTypeName(recv[0].Type))
	}
	e.add(el)
}

func (e goExtractor) params(list *sitter.Node) []models.Parameter {
	var params []models.Parameter
	for _, p := range parser.NamedChildren(list) {
		switch p.Type() {
		case "parameter_declaration", "variadic_parameter_declaration":
		default:
			continue
		}
		typ := e.field(p, "type")
		if p.Type() == "variadic_parameter_declaration" {
			typ = "..." + typ
		}
		var names []string
		for _, c := range parser.NamedChildren(p) {
			if c.Type() == "identifier" {
				names = append(names, e.text(c))
			}
		}
		if len(names) == 0 {
			params = append(params, models.Parameter{Type: typ})
		}
		for _, name := range names {
			params = append(params, models.Parameter{Name: name, Type: typ})
		}
	}
	return params
}

func (e goExtractor) types(decl *sitter.Node) {
	doc := e.doc(decl)
	for _, spec := range parser.NamedChildren(decl) {
		if spec.Type() != "type_spec" {
			continue
		}
		name := e.field(spec, "name")
		typeNode := spec.ChildByFieldName("type")
		if typeNode == nil {
			continue
		}

		switch typeNode.Type() {
		case "struct_type":
			el := models.Element{
				Kind:          models.ElementStruct,
				Name:          name,
				Location:      e.location(spec),
				Documentation: doc,
			}
			e.structFields(&el, typeNode)
			setMeta(&el, models.MetaVisibility, goVisibility(name))
			e.add(el)
		case "interface_type":
			el := models.Element{
				Kind:          models.ElementTrait,
				Name:          name,
				Location:      e.location(spec),
				Documentation: doc,
			}
			for _, m := range parser.NamedChildren(typeNode) {
				if m.Type() != "method_elem" && m.Type() != "method_spec" {
					continue
				}
				method := models.Element{
					Kind:       models.ElementMethod,
					Name:       e.field(m, "name"),
					Location:   e.location(m),
					Complexity: 1,
				}
				method.Parameters = e.params(m.ChildByFieldName("parameters"))
				method.ReturnType = e.field(m, "result")
				method.IsExported = isCapitalized(method.Name)
				setMeta(&method, models.MetaOwner, name)
				el.Methods = append(el.Methods, method)
			}
			setMeta(&el, models.MetaVisibility, goVisibility(name))
			e.add(el)
		}
	}
}

// structFields records named fields; the first embedded type is treated as the supertype.
func (e goExtractor) structFields(el *models.Element, structType *sitter.Node) {
	parser.WalkTyped(structType, func(n *sitter.Node, nodeType string) bool {
		if nodeType != "field_declaration" {
			return true
		}
		typ := e.field(n, "type")
		var names []string
		for _, c := range parser.NamedChildren(n) {
			if c.Type() == "field_identifier" {
				names = append(names, e.text(c))
			}
		}
		if len(names) == 0 {
			embedded := baseTypeName(typ)
			if el.Extends == "" {
				el.Extends = embedded
			}
			names = []string{embedded}
		}
		for _, name := range names {
			el.Fields = append(el.Fields, models.Field{Name: name, Visibility: goVisibility(name), Type: typ})
		}
		return false
	})
}

func goVisibility(name string) string {
	if isCapitalized(name) {
		return "public"
	}
	return "private"
}
