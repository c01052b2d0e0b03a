package ir

import "fmt"

// Schema is a named type definition: a structured record or an enumeration.
// Identity is nominal: two structurally identical schemas defined in
// different places are distinct and are never merged.
type Schema interface {
	// SchemaID returns the identity of the schema, unique within one pass.
	SchemaID() string

	// SchemaUnit returns the source unit the schema belongs to, used for
	// file placement and import resolution.
	SchemaUnit() string

	sealedSchema()
}

// Field is one named field of an object schema, in declaration order.
type Field struct {
	Name       string
	Type       TypeRef
	Required   bool
	Default    string
	HasDefault bool
	Doc        string
}

// ObjectSchema is a structured record type.
type ObjectSchema struct {
	ID     string
	Unit   string
	Fields []Field
	Doc    string
}

func (s *ObjectSchema) SchemaID() string   { return s.ID }
func (s *ObjectSchema) SchemaUnit() string { return s.Unit }
func (s *ObjectSchema) sealedSchema()      {}

// EnumMember is one declared member of an enumeration. Value is a string or
// an int64, preserved verbatim from the source declaration.
type EnumMember struct {
	Name  string
	Value any
}

// EnumSchema is an enumerated type with ordered members.
type EnumSchema struct {
	ID      string
	Unit    string
	Members []EnumMember
	Doc     string
}

func (s *EnumSchema) SchemaID() string   { return s.ID }
func (s *EnumSchema) SchemaUnit() string { return s.Unit }
func (s *EnumSchema) sealedSchema()      {}

// ParamSource is the binding source of an operation parameter.
type ParamSource int

const (
	SourceQuery ParamSource = iota
	SourcePath
	SourceHeader
	SourceCookie
	SourceBody
)

// String returns the lowercase source name.
func (s ParamSource) String() string {
	switch s {
	case SourcePath:
		return "path"
	case SourceQuery:
		return "query"
	case SourceHeader:
		return "header"
	case SourceCookie:
		return "cookie"
	case SourceBody:
		return "body"
	default:
		return "unknown"
	}
}

// Parameter is one operation parameter. Path-source parameters are always
// required; the introspector enforces this before a Parameter is built.
type Parameter struct {
	Name       string
	Type       TypeRef
	Source     ParamSource
	Required   bool
	Default    string
	HasDefault bool
	Doc        string
}

// StreamKind classifies an operation's response framing.
type StreamKind int

const (
	StreamNone StreamKind = iota
	StreamSSE
	StreamNDJSON
	StreamRaw
)

// Operation is one callable endpoint. Methods, Parameters and the union
// members reachable from Returns all preserve declaration order.
type Operation struct {
	ID         string
	Unit       string
	Methods    []string
	Path       string
	Parameters []Parameter
	Returns    TypeRef
	Doc        string
	Streaming  StreamKind
}

// IR is the complete, immutable result of one introspection pass.
type IR struct {
	// Schemas in first-resolution order. Order is deterministic for a given
	// route table and drives deterministic output.
	Schemas []Schema

	// Operations in route-table order.
	Operations []Operation

	// Warnings aggregated during the pass. Warnings never abort generation.
	Warnings []Warning
}

// FindSchema looks up a schema by identity. Returns nil if not found.
func (ir *IR) FindSchema(id string) Schema {
	for _, s := range ir.Schemas {
		if s.SchemaID() == id {
			return s
		}
	}
	return nil
}

// Validate checks the IR for structural issues: duplicate schema identities
// and dangling schema references. It returns all problems found, not just
// the first.
func (ir *IR) Validate() []error {
	var errs []error

	ids := make(map[string]bool)
	for _, s := range ir.Schemas {
		if ids[s.SchemaID()] {
			errs = append(errs, fmt.Errorf("duplicate schema identity: %s", s.SchemaID()))
		}
		ids[s.SchemaID()] = true
	}

	check := func(ref TypeRef, context string) {
		walkRefs(ref, func(r *SchemaRef) {
			if !ids[r.ID] {
				errs = append(errs, fmt.Errorf("%s references unknown schema %q", context, r.ID))
			}
		})
	}

	for _, s := range ir.Schemas {
		if obj, ok := s.(*ObjectSchema); ok {
			for _, f := range obj.Fields {
				check(f.Type, "schema "+obj.ID+" field "+f.Name)
			}
		}
	}
	for _, op := range ir.Operations {
		for _, p := range op.Parameters {
			check(p.Type, "operation "+op.ID+" parameter "+p.Name)
		}
		check(op.Returns, "operation "+op.ID+" return type")
	}

	return errs
}

// walkRefs visits every SchemaRef reachable from a type reference.
func walkRefs(ref TypeRef, visit func(*SchemaRef)) {
	switch r := ref.(type) {
	case nil:
	case *SchemaRef:
		visit(r)
	case *Collection:
		walkRefs(r.Element, visit)
	case *Mapping:
		walkRefs(r.Key, visit)
		walkRefs(r.Value, visit)
	case *Optional:
		walkRefs(r.Inner, visit)
	case *Union:
		for _, m := range r.Members {
			walkRefs(m, visit)
		}
	}
}

// ReferencedSchemas returns the identities of all schemas reachable from a
// type reference, in first-visit order.
func ReferencedSchemas(ref TypeRef) []string {
	var ids []string
	seen := make(map[string]bool)
	walkRefs(ref, func(r *SchemaRef) {
		if !seen[r.ID] {
			seen[r.ID] = true
			ids = append(ids, r.ID)
		}
	})
	return ids
}
