package models

// DependencyType is the syntactic form of a dependency.
type DependencyType string

const (
	DependencyImport  DependencyType = "IMPORT"
	DependencyUse     DependencyType = "USE"
	DependencyRequire DependencyType = "REQUIRE"
)

// Dependency is one import relationship from a file to a module path.
// ImportedSymbols is empty for wildcard and side-effect imports.
type Dependency struct {
	From            string         `json:"from"`
	To              string         `json:"to"`
	Type            DependencyType `json:"type"`
	ImportedSymbols []string       `json:"imported_symbols"`
}

// DependencySet collects imports for a single file, keeping one Dependency
// per module path and merging symbols in first-seen order.
type DependencySet struct {
	from  string
	typ   DependencyType
	order []string
	deps  map[string]*Dependency
	seen  map[string]map[string]bool
}

// NewDependencySet creates an empty set for the file at from.
func NewDependencySet(from string, typ DependencyType) *DependencySet {
	return &DependencySet{
		from: from,
		typ:  typ,
		deps: make(map[string]*Dependency),
		seen: make(map[string]map[string]bool),
	}
}

// Add records symbols imported from the module path to.
// Calling Add with no symbols registers the path without symbols.
func (s *DependencySet) Add(to string, symbols ...string) {
	if to == "" {
		return
	}
	dep, ok := s.deps[to]
	if !ok {
		dep = &Dependency{From: s.from, To: to, Type: s.typ, ImportedSymbols: []string{}}
		s.deps[to] = dep
		s.seen[to] = make(map[string]bool)
		s.order = append(s.order, to)
	}
	for _, sym := range symbols {
		if sym == "" || s.seen[to][sym] {
			continue
		}
		s.seen[to][sym] = true
		dep.ImportedSymbols = append(dep.ImportedSymbols, sym)
	}
}

// Len returns the number of distinct module paths.
func (s *DependencySet) Len() int {
	return len(s.order)
}

// List returns the dependencies in first-seen order.
func (s *DependencySet) List() []Dependency {
	out := make([]Dependency, 0, len(s.order))
	for _, to := range s.order {
		out = append(out, *s.deps[to])
	}
	return out
}
