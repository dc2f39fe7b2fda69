package adapter

import (
	"strconv"
	"strings"

	"github.com/panbanda/strata/pkg/models"
	"github.com/panbanda/strata/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// NewRustAdapter creates a tree-sitter based adapter for Rust sources.
// See NewRustToolAdapter for the external rust-parser alternative.
func NewRustAdapter(opts ...Option) Adapter {
	return newTreeSitterAdapter("rust", extractRust, opts, parser.LangRust)
}

type rustExtractor struct {
	*fileBuilder
}

var rustSkipBeforeDoc = map[string]bool{"attribute_item": true}

func extractRust(tree *parser.Tree, relPath string) models.ParsedFile {
	e := rustExtractor{newFileBuilder(tree, relPath, models.DependencyUse)}
	e.items(tree.Root())
	return e.build()
}

func (e rustExtractor) items(parent *sitter.Node) {
	for _, node := range parser.NamedChildren(parent) {
		switch node.Type() {
		case "use_declaration":
			e.use(node.ChildByFieldName("argument"), "")
		case "function_item":
			el := e.function(node, models.ElementFunction, "")
			e.add(el)
		case "struct_item":
			e.structItem(node)
		case "trait_item":
			e.trait(node)
		case "impl_item":
			e.impl(node)
		case "mod_item":
			if body := node.ChildByFieldName("body"); body != nil {
				e.items(body)
			}
		}
	}
}

// use flattens a use tree into one dependency per module path:
// a::b::C adds C to a::b, a::{B, C} adds B and C to a, a::* adds a
// with no symbols.
func (e rustExtractor) use(node *sitter.Node, prefix string) {
	if node == nil {
		return
	}
	join := func(p string) string {
		switch {
		case prefix == "":
			return p
		case p == "":
			return prefix
		default:
			return prefix + "::" + p
		}
	}

	switch node.Type() {
	case "scoped_identifier":
		e.deps.Add(join(e.field(node, "path")), e.field(node, "name"))
	case "identifier", "crate", "self", "super":
		name := e.text(node)
		if prefix == "" {
			e.deps.Add(name, name)
		} else if name == "self" {
			e.deps.Add(prefix, lastPathSegment(prefix))
		} else {
			e.deps.Add(prefix, name)
		}
	case "use_as_clause":
		full := join(e.field(node, "path"))
		alias := e.field(node, "alias")
		if i := strings.LastIndex(full, "::"); i >= 0 {
			e.deps.Add(full[:i], alias)
		} else {
			e.deps.Add(full, alias)
		}
	case "use_wildcard":
		var scope string
		for _, c := range parser.NamedChildren(node) {
			scope = e.text(c)
			break
		}
		e.deps.Add(join(scope))
	case "scoped_use_list":
		scope := join(e.field(node, "path"))
		e.use(node.ChildByFieldName("list"), scope)
	case "use_list":
		for _, c := range parser.NamedChildren(node) {
			e.use(c, prefix)
		}
	}
}

func lastPathSegment(p string) string {
	if i := strings.LastIndex(p, "::"); i >= 0 {
		return p[i+2:]
	}
	return p
}

// visibility maps a visibility_modifier to pub, crate or private.
func (e rustExtractor) visibility(node *sitter.Node) string {
	for _, c := range parser.NamedChildren(node) {
		if c.Type() != "visibility_modifier" {
			continue
		}
		if text := e.text(c); strings.Contains(text, "crate") || strings.Contains(text, "super") || strings.Contains(text, "in ") {
			return "crate"
		}
		return "pub"
	}
	return "private"
}

// attributes returns attribute names and derive lists from the attribute
// items directly above node.
func (e rustExtractor) attributes(node *sitter.Node) (attrs, derives []string) {
	for prev := node.PrevNamedSibling(); prev != nil; prev = prev.PrevNamedSibling() {
		t := prev.Type()
		if isCommentNode(t) {
			continue
		}
		if t != "attribute_item" {
			break
		}
		name, ds := splitAttribute(strings.TrimSuffix(strings.TrimPrefix(e.text(prev), "#["), "]"))
		attrs = append([]string{name}, attrs...)
		derives = append(ds, derives...)
	}
	return attrs, derives
}

// splitAttribute returns the attribute name and, for derive(...), the derived traits.
func splitAttribute(attr string) (name string, derives []string) {
	name, args, _ := strings.Cut(attr, "(")
	name = strings.TrimSpace(name)
	if name != "derive" {
		return name, nil
	}
	for d := range strings.SplitSeq(strings.TrimSuffix(strings.TrimSpace(args), ")"), ",") {
		if d = strings.TrimSpace(d); d != "" {
			derives = append(derives, d)
		}
	}
	return name, derives
}

func (e rustExtractor) doc(node *sitter.Node) string {
	return docFromComments(precedingComments(node, e.source, rustSkipBeforeDoc), func(c string) bool {
		return strings.HasPrefix(c, "///") || strings.HasPrefix(c, "/**")
	})
}

func (e rustExtractor) decorate(el *models.Element, node *sitter.Node) {
	el.Documentation = e.doc(node)
	attrs, derives := e.attributes(node)
	setMeta(el, models.MetaAttributes, attrs)
	setMeta(el, models.MetaDerives, derives)
}

func (e rustExtractor) function(node *sitter.Node, kind models.ElementKind, owner string) models.Element {
	el := e.callable(kind, e.field(node, "name"), node, node.ChildByFieldName("body"))
	el.Parameters = e.params(node.ChildByFieldName("parameters"))
	el.ReturnType = e.field(node, "return_type")
	for _, c := range parser.NamedChildren(node) {
		if c.Type() == "function_modifiers" && strings.Contains(e.text(c), "async") {
			el.IsAsync = true
		}
	}
	vis := e.visibility(node)
	el.IsExported = vis == "pub"
	setMeta(&el, models.MetaVisibility, vis)
	setMeta(&el, models.MetaOwner, owner)
	e.decorate(&el, node)
	return el
}

// params skips the self receiver, matching how method signatures are usually read.
func (e rustExtractor) params(list *sitter.Node) []models.Parameter {
	var params []models.Parameter
	for _, p := range parser.NamedChildren(list) {
		if p.Type() != "parameter" {
			continue
		}
		params = append(params, models.Parameter{
			Name: e.field(p, "pattern"),
			Type: e.field(p, "type"),
		})
	}
	return params
}

func (e rustExtractor) structItem(node *sitter.Node) {
	el := models.Element{
		Kind:     models.ElementStruct,
		Name:     e.field(node, "name"),
		Location: e.location(node),
	}
	body := node.ChildByFieldName("body")
	tuple := body != nil && body.Type() == "ordered_field_declaration_list"
	for _, f := range parser.NamedChildren(body) {
		switch {
		case f.Type() == "field_declaration":
			el.Fields = append(el.Fields, models.Field{
				Name:       e.field(f, "name"),
				Visibility: e.visibility(f),
				Type:       e.field(f, "type"),
			})
		case tuple && f.Type() != "visibility_modifier" && !isCommentNode(f.Type()):
			// tuple struct fields are positional
			el.Fields = append(el.Fields, models.Field{
				Name:       strconv.Itoa(len(el.Fields)),
				Visibility: "private",
				Type:       e.text(f),
			})
		}
	}
	setMeta(&el, models.MetaVisibility, e.visibility(node))
	e.decorate(&el, node)
	e.add(el)
}

// trait emits the TRAIT element with every method signature nested, and
// each default method again as a top-level METHOD owned by the trait.
func (e rustExtractor) trait(node *sitter.Node) {
	name := e.field(node, "name")
	el := models.Element{
		Kind:     models.ElementTrait,
		Name:     name,
		Location: e.location(node),
	}
	var defaults []models.Element
	for _, m := range parser.NamedChildren(node.ChildByFieldName("body")) {
		switch m.Type() {
		case "function_signature_item", "function_item":
			method := e.function(m, models.ElementMethod, name)
			// trait items are public through the trait
			setMeta(&method, models.MetaVisibility, "pub")
			method.IsExported = true
			el.Methods = append(el.Methods, method)
			if m.Type() == "function_item" {
				defaults = append(defaults, method)
			}
		}
	}
	setMeta(&el, models.MetaVisibility, e.visibility(node))
	e.decorate(&el, node)
	e.add(el)
	// default methods carry a body, so they are callables of their own
	for _, m := range defaults {
		e.add(m)
	}
}

// impl emits the IMPL element with its nested methods, and each method again
// as a top-level METHOD owned by the target type.
func (e rustExtractor) impl(node *sitter.Node) {
	target := e.field(node, "type")
	trait := e.field(node, "trait")
	name := "impl " + target
	if trait != "" {
		name = "impl " + trait + " for " + target
	}

	el := models.Element{
		Kind:       models.ElementImpl,
		Name:       name,
		Location:   e.location(node),
		TargetType: target,
	}
	setMeta(&el, models.MetaTrait, trait)
	e.decorate(&el, node)

	owner := baseTypeName(target)
	var methods []models.Element
	for _, m := range parser.NamedChildren(node.ChildByFieldName("body")) {
		if m.Type() != "function_item" {
			continue
		}
		method := e.function(m, models.ElementMethod, owner)
		if trait != "" {
			method.IsExported = true
		}
		methods = append(methods, method)
	}
	el.Methods = methods
	e.add(el)
	for _, m := range methods {
		e.add(m)
	}
}
