// Package ir defines the Intermediate Representation for API introspection.
// It is a language-neutral snapshot of schemas and operations produced once
// per generation pass and consumed by code generators. No node is mutated
// after construction.
package ir

// RefKind identifies the variant of a type reference.
type RefKind int

const (
	KindAny RefKind = iota
	KindPrimitive
	KindCollection
	KindMapping
	KindOptional
	KindUnion
	KindSchemaRef
	KindExternal
)

// String returns the string representation of the reference kind.
func (k RefKind) String() string {
	switch k {
	case KindAny:
		return "Any"
	case KindPrimitive:
		return "Primitive"
	case KindCollection:
		return "Collection"
	case KindMapping:
		return "Mapping"
	case KindOptional:
		return "Optional"
	case KindUnion:
		return "Union"
	case KindSchemaRef:
		return "SchemaRef"
	case KindExternal:
		return "External"
	default:
		return "Unknown"
	}
}

// TypeRef is a reference to a type in the IR. Named schemas are referenced
// by identity through SchemaRef, never embedded by value; that is what keeps
// recursive type graphs finite.
type TypeRef interface {
	Kind() RefKind

	// Ensure only types in this package implement TypeRef.
	sealed()
}

// PrimitiveKind enumerates the built-in scalar kinds.
type PrimitiveKind int

const (
	String PrimitiveKind = iota
	Number
	Boolean
	Null
)

// String returns the lowercase primitive name.
func (p PrimitiveKind) String() string {
	switch p {
	case String:
		return "string"
	case Number:
		return "number"
	case Boolean:
		return "boolean"
	case Null:
		return "null"
	default:
		return "unknown"
	}
}

// Primitive is a built-in scalar type.
type Primitive struct {
	Primitive PrimitiveKind
}

func (*Primitive) Kind() RefKind { return KindPrimitive }
func (*Primitive) sealed()       {}

// Collection is an ordered sequence of one element type.
type Collection struct {
	Element TypeRef
}

func (*Collection) Kind() RefKind { return KindCollection }
func (*Collection) sealed()       {}

// Mapping is a key/value mapping. Keys are always string-like; the resolver
// rejects anything else before a Mapping node is built.
type Mapping struct {
	Key   TypeRef
	Value TypeRef
}

func (*Mapping) Kind() RefKind { return KindMapping }
func (*Mapping) sealed()       {}

// Optional wraps a type that may be absent or null.
type Optional struct {
	Inner TypeRef
}

func (*Optional) Kind() RefKind { return KindOptional }
func (*Optional) sealed()       {}

// Union is an ordered set of alternative types. Member order is the original
// declaration order and must be stable across passes for the same input.
type Union struct {
	Members []TypeRef
}

func (*Union) Kind() RefKind { return KindUnion }
func (*Union) sealed()       {}

// SchemaRef references a named schema by identity. Every SchemaRef in a
// valid IR resolves to exactly one schema.
type SchemaRef struct {
	ID string
}

func (*SchemaRef) Kind() RefKind { return KindSchemaRef }
func (*SchemaRef) sealed()       {}

// External is a stable token for a well-known type defined outside the
// project boundary, such as a timestamp or UUID. Origin records the original
// fully-qualified type name; Serialized records the scalar representation it
// serializes to on the wire.
type External struct {
	Token      string
	Origin     string
	Serialized string
}

func (*External) Kind() RefKind { return KindExternal }
func (*External) sealed()       {}

// Any is the untyped escape hatch, used when a type cannot be translated
// structurally.
type Any struct{}

func (*Any) Kind() RefKind { return KindAny }
func (*Any) sealed()       {}
