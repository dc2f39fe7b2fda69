package architecture

import (
	"fmt"
	"strings"
	"unicode"
)

// mermaidKeywords cannot be used as bare node identifiers.
var mermaidKeywords = map[string]bool{
	"end":       true,
	"graph":     true,
	"flowchart": true,
	"subgraph":  true,
	"direction": true,
	"style":     true,
	"class":     true,
	"classDef":  true,
	"click":     true,
	"linkStyle": true,
	"call":      true,
	"href":      true,
}

// nodeID strips everything but ASCII letters and digits so the name is a
// valid Mermaid identifier. Keywords get an n_ prefix.
func nodeID(name string) string {
	id := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return -1
	}, name)
	switch {
	case id == "":
		return "node"
	case mermaidKeywords[id]:
		return "n_" + id
	}
	return id
}

// idSet hands out one identifier per name. Names whose sanitized forms
// collide get a numeric suffix in first-seen order; the underscore keeps
// suffixed IDs apart from sanitized ones.
type idSet struct {
	byName map[string]string
	taken  map[string]bool
}

func newIDSet() *idSet {
	return &idSet{byName: make(map[string]string), taken: make(map[string]bool)}
}

func (s *idSet) id(name string) string {
	if id, ok := s.byName[name]; ok {
		return id
	}
	base := nodeID(name)
	id := base
	for n := 2; s.taken[id]; n++ {
		id = fmt.Sprintf("%s_%d", base, n)
	}
	s.byName[name] = id
	s.taken[id] = true
	return id
}

// RenderDiagram renders layers, components and relationships as a Mermaid
// flowchart. Each component is declared once, inside the subgraph of its
// layer, or after the subgraphs when it belongs to none.
func RenderDiagram(a *Analysis) string {
	var b strings.Builder
	b.WriteString("graph TB\n")
	if a == nil {
		return b.String()
	}

	nodes, layers := newIDSet(), newIDSet()
	// components claim IDs first so relationship-only names never displace them
	for _, c := range a.Components {
		nodes.id(c.Name)
	}

	byLayer := make(map[string][]Component)
	var unlayered []Component
	for _, c := range a.Components {
		if c.Layer == "" {
			unlayered = append(unlayered, c)
			continue
		}
		byLayer[c.Layer] = append(byLayer[c.Layer], c)
	}

	for _, layer := range a.Layers {
		fmt.Fprintf(&b, "  subgraph layer_%s[\"%s\"]\n", layers.id(layer.Name), layer.Name)
		for _, c := range byLayer[layer.Name] {
			fmt.Fprintf(&b, "    %s\n", nodeLine(nodes, c))
		}
		b.WriteString("  end\n")
	}
	for _, c := range unlayered {
		fmt.Fprintf(&b, "  %s\n", nodeLine(nodes, c))
	}

	for _, r := range a.Relationships {
		switch r.Type {
		case RelationExtends:
			fmt.Fprintf(&b, "  %s -->|extends| %s\n", nodes.id(r.From), nodes.id(r.To))
		default:
			fmt.Fprintf(&b, "  %s --> %s\n", nodes.id(r.From), nodes.id(r.To))
		}
	}
	return b.String()
}

func nodeLine(nodes *idSet, c Component) string {
	label := strings.ReplaceAll(c.Name, `"`, "'")
	return fmt.Sprintf("%s[\"%s (%s)\"]", nodes.id(c.Name), label, c.Type)
}
