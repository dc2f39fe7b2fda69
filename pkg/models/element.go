package models

// ElementKind is the structural kind of an Element.
type ElementKind string

const (
	ElementClass    ElementKind = "CLASS"
	ElementStruct   ElementKind = "STRUCT"
	ElementTrait    ElementKind = "TRAIT"
	ElementImpl     ElementKind = "IMPL"
	ElementFunction ElementKind = "FUNCTION"
	ElementMethod   ElementKind = "METHOD"
)

// Metadata keys shared by adapters and analyzers.
const (
	MetaOwner      = "owner"      // owning type of a method
	MetaVisibility = "visibility" // declared visibility (pub, private, protected, ...)
	MetaDerives    = "derives"    // Rust #[derive(...)] list
	MetaAttributes = "attributes" // attribute/decorator/annotation names
	MetaTrait      = "trait"      // implemented trait of a Rust impl block
	MetaImplements = "implements" // implemented interfaces of a class
)

// Location is a position inside a source file. Line and Column are 1-based.
type Location struct {
	FilePath string `json:"file_path"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// Parameter is a function or method parameter.
type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Field is a class or struct member.
type Field struct {
	Name       string `json:"name"`
	Visibility string `json:"visibility"`
	Type       string `json:"type,omitempty"`
}

// Element is a structural unit of a source file. It is a flat tagged union:
// which of the optional fields are populated depends on Kind.
type Element struct {
	Kind          ElementKind    `json:"kind"`
	Name          string         `json:"name"`
	Location      Location       `json:"location"`
	Documentation string         `json:"documentation,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`

	// FUNCTION, METHOD
	Parameters []Parameter `json:"parameters,omitempty"`
	ReturnType string      `json:"return_type,omitempty"`
	IsAsync    bool        `json:"is_async,omitempty"`
	IsExported bool        `json:"is_exported,omitempty"`
	Complexity int         `json:"complexity,omitempty"`

	// CLASS, STRUCT
	Fields  []Field `json:"fields,omitempty"`
	Extends string  `json:"extends,omitempty"`

	// TRAIT, IMPL
	Methods    []Element `json:"methods,omitempty"`
	TargetType string    `json:"target_type,omitempty"`
}

// IsCallable reports whether the element is a function or method.
func (e *Element) IsCallable() bool {
	return e.Kind == ElementFunction || e.Kind == ElementMethod
}

// IsType reports whether the element is a class or struct.
func (e *Element) IsType() bool {
	return e.Kind == ElementClass || e.Kind == ElementStruct
}

// Owner returns the owning type name of a method, or "".
func (e *Element) Owner() string {
	return e.MetaString(MetaOwner)
}

// MetaString returns a string metadata value, or "".
func (e *Element) MetaString(key string) string {
	if e.Metadata == nil {
		return ""
	}
	s, _ := e.Metadata[key].(string)
	return s
}

// QualifiedName returns Owner.Name for methods and Name otherwise.
func (e *Element) QualifiedName() string {
	if owner := e.Owner(); owner != "" {
		return owner + "." + e.Name
	}
	return e.Name
}
