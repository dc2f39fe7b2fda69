package architecture

import (
	"slices"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/panbanda/strata/pkg/models"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// typeKeywords are matched against the lower-cased component name, then path.
var typeKeywords = []struct {
	keyword string
	typ     ComponentType
}{
	{"controller", ComponentController},
	{"service", ComponentService},
	{"repository", ComponentRepository},
	{"model", ComponentModel},
	{"view", ComponentView},
	{"middleware", ComponentMiddleware},
	{"router", ComponentRouter},
}

func inferType(name string, paths []string) ComponentType {
	lname := strings.ToLower(name)
	for _, tk := range typeKeywords {
		if strings.Contains(lname, tk.keyword) {
			return tk.typ
		}
	}
	for _, p := range paths {
		lp := strings.ToLower(p)
		for _, tk := range typeKeywords {
			if strings.Contains(lp, tk.keyword) {
				return tk.typ
			}
		}
	}
	return ComponentUtility
}

// componentSet is the component table plus the lookups later phases need.
type componentSet struct {
	list    []Component
	index   map[string]int    // name -> position in list
	fileIDs []*roaring.Bitmap // per component, owning file indices
	byFile  map[int][]int     // file index -> owning component positions
	extends []extendsRef
}

type extendsRef struct {
	from int
	base string
}

// extractComponents creates one component per CLASS/STRUCT name in
// first-seen order, merging same-named types across files.
func extractComponents(files []models.ParsedFile, m *membership) *componentSet {
	cs := &componentSet{
		list:   []Component{},
		index:  make(map[string]int),
		byFile: make(map[int][]int),
	}

	for fi := range files {
		f := &files[fi]
		for ei := range f.Elements {
			el := &f.Elements[ei]
			if !el.IsType() || el.Name == "" {
				continue
			}
			ci, ok := cs.index[el.Name]
			if !ok {
				ci = len(cs.list)
				cs.index[el.Name] = ci
				cs.list = append(cs.list, Component{
					Name:             el.Name,
					Line:             el.Location.Line,
					Files:            []string{},
					Responsibilities: []string{},
					Dependencies:     []string{},
				})
				cs.fileIDs = append(cs.fileIDs, roaring.New())
			}
			if !cs.fileIDs[ci].Contains(uint32(fi)) {
				cs.fileIDs[ci].Add(uint32(fi))
				cs.list[ci].Files = append(cs.list[ci].Files, f.FilePath)
				cs.byFile[fi] = append(cs.byFile[fi], ci)
			}
			if el.Extends != "" {
				cs.extends = append(cs.extends, extendsRef{from: ci, base: el.Extends})
			}
		}
	}

	for ci := range cs.list {
		c := &cs.list[ci]
		c.Type = inferType(c.Name, c.Files)
		c.Layer = m.layerOf(cs.fileIDs[ci])

		for _, idx := range cs.fileIDs[ci].ToArray() {
			f := &files[idx]
			for _, el := range f.Elements {
				if el.Kind == models.ElementMethod && el.Owner() == c.Name {
					c.Responsibilities = appendUnique(c.Responsibilities, el.Name)
				}
			}
			for _, dep := range f.Dependencies {
				for _, sym := range dep.ImportedSymbols {
					c.Dependencies = appendUnique(c.Dependencies, sym)
				}
			}
		}
	}
	return cs
}

type edgeKey struct {
	from, to int
	typ      RelationshipType
}

// relationships links each file's owning components to the components named
// by its imported symbols, then adds inheritance edges.
func (cs *componentSet) relationships(files []models.ParsedFile) []Relationship {
	counts := make(map[edgeKey]int)
	var order []edgeKey
	add := func(k edgeKey) {
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
	}

	for fi := range files {
		owners := cs.byFile[fi]
		if len(owners) == 0 {
			continue
		}
		for _, dep := range files[fi].Dependencies {
			for _, sym := range dep.ImportedSymbols {
				to, ok := cs.index[sym]
				if !ok {
					continue
				}
				for _, from := range owners {
					if from != to {
						add(edgeKey{from: from, to: to, typ: RelationDependsOn})
					}
				}
			}
		}
	}

	maxCount := 0
	for _, k := range order {
		maxCount = max(maxCount, counts[k])
	}

	rels := make([]Relationship, 0, len(order)+len(cs.extends))
	for _, k := range order {
		rels = append(rels, Relationship{
			From:        cs.list[k.from].Name,
			To:          cs.list[k.to].Name,
			Type:        RelationDependsOn,
			Strength:    float64(counts[k]) / float64(maxCount),
			Occurrences: counts[k],
		})
	}

	seen := make(map[edgeKey]bool)
	for _, ref := range cs.extends {
		to, ok := cs.index[baseName(ref.base)]
		if !ok || to == ref.from {
			continue
		}
		k := edgeKey{from: ref.from, to: to, typ: RelationExtends}
		if seen[k] {
			continue
		}
		seen[k] = true
		rels = append(rels, Relationship{
			From:        cs.list[ref.from].Name,
			To:          cs.list[to].Name,
			Type:        RelationExtends,
			Strength:    1,
			Occurrences: 1,
		})
	}
	return rels
}

// cycles returns the strongly connected components of the relationship
// graph that contain more than one component.
func (cs *componentSet) cycles(rels []Relationship) []Cycle {
	g := simple.NewDirectedGraph()
	for i := range cs.list {
		g.AddNode(simple.Node(int64(i)))
	}
	for _, r := range rels {
		from, to := int64(cs.index[r.From]), int64(cs.index[r.To])
		if from != to && !g.HasEdgeFromTo(from, to) {
			g.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
		}
	}

	cycles := []Cycle{}
	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) < 2 {
			continue
		}
		names := make([]string, 0, len(scc))
		for _, n := range scc {
			names = append(names, cs.list[n.ID()].Name)
		}
		slices.Sort(names)
		cycles = append(cycles, Cycle{Components: names})
	}
	// TarjanSCC order depends on map iteration.
	slices.SortFunc(cycles, func(a, b Cycle) int {
		return strings.Compare(a.Components[0], b.Components[0])
	})
	return cycles
}

// baseName strips generic arguments and package qualifiers from a type reference.
func baseName(ref string) string {
	if i := strings.IndexAny(ref, "<[("); i >= 0 {
		ref = ref[:i]
	}
	ref = strings.TrimSpace(ref)
	if i := strings.LastIndexAny(ref, ".:"); i >= 0 {
		ref = ref[i+1:]
	}
	return ref
}

func appendUnique(list []string, s string) []string {
	if s == "" || slices.Contains(list, s) {
		return list
	}
	return append(list, s)
}
