// Package resolve turns Go type annotations into IR type references.
//
// The resolver is pass-scoped: it owns an identity-keyed cache of resolved
// schemas that lives for exactly one generation pass and is discarded
// afterwards. Cycle safety comes from registering a schema's identity in the
// cache before recursing into its fields, so self-referential and mutually
// referential models resolve to exactly one schema each.
package resolve

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/fluidkit/fluid-go"
	"github.com/fluidkit/fluid-go/fluidgen/ir"
)

// Boundary decides which packages belong to the project. Types inside the
// boundary receive full structural translation; everything else is external.
// The boundary is explicit configuration threaded through the resolver, not
// ambient state.
type Boundary struct {
	// Prefixes are package path prefixes considered inside the project.
	Prefixes []string
}

// Contains reports whether a package path is inside the boundary.
func (b Boundary) Contains(pkgPath string) bool {
	for _, p := range b.Prefixes {
		if pkgPath == p || strings.HasPrefix(pkgPath, p+"/") {
			return true
		}
	}
	return false
}

// externalType is one entry of the fixed allow-list of well-known types
// defined outside any project boundary.
type externalType struct {
	token      string
	serialized string
}

// wellKnown maps fully-qualified type names to stable external tokens.
// Everything here serializes to a scalar on the wire; the token carries that
// provenance into generated code.
var wellKnown = map[string]externalType{
	"time.Time":                   {token: "DateTime", serialized: "string"},
	"time.Duration":               {token: "Duration", serialized: "number"},
	"net/url.URL":                 {token: "URL", serialized: "string"},
	"net/netip.Addr":              {token: "IPAddr", serialized: "string"},
	"net/mail.Address":            {token: "Email", serialized: "string"},
	"math/big.Int":                {token: "BigInt", serialized: "string"},
	"math/big.Float":              {token: "Decimal", serialized: "string"},
	"github.com/google/uuid.UUID": {token: "UUID", serialized: "string"},
}

var (
	enumIface = reflect.TypeOf((*fluid.Enum)(nil)).Elem()
	nullType  = reflect.TypeOf(fluid.Null{})
)

// oneOfPkg is the package that defines the OneOf union markers.
var oneOfPkg = reflect.TypeOf(fluid.Null{}).PkgPath()

// Resolver resolves type annotations into IR type references, accumulating
// named schemas as it goes. A Resolver must not be shared between concurrent
// passes; each pass owns its own instance.
type Resolver struct {
	boundary Boundary

	// cache maps a named type to its schema identity. Entries are created
	// before field recursion, which is what breaks cycles.
	cache map[reflect.Type]string

	// idOwner maps a schema identity back to the type that claimed it, for
	// collision handling.
	idOwner map[string]reflect.Type

	schemas  []ir.Schema
	warnings []ir.Warning
}

// New creates a resolver for one pass with the given project boundary.
func New(boundary Boundary) *Resolver {
	return &Resolver{
		boundary: boundary,
		cache:    make(map[reflect.Type]string),
		idOwner:  make(map[string]reflect.Type),
	}
}

// Schemas returns the named schemas resolved so far, in first-resolution
// order.
func (r *Resolver) Schemas() []ir.Schema { return r.schemas }

// Warnings returns the non-fatal diagnostics recorded so far.
func (r *Resolver) Warnings() []ir.Warning { return r.warnings }

// Resolve resolves a single type annotation. It is idempotent within a
// pass: resolving the same named type twice yields the same SchemaRef and
// registers the schema once.
func (r *Resolver) Resolve(t reflect.Type) (ir.TypeRef, error) {
	if t == nil {
		return &ir.Any{}, nil
	}

	// Nullable annotation collapses to Optional, never a two-member union.
	if t.Kind() == reflect.Pointer {
		inner, err := r.Resolve(t.Elem())
		if err != nil {
			return nil, err
		}
		if opt, ok := inner.(*ir.Optional); ok {
			return opt, nil
		}
		return &ir.Optional{Inner: inner}, nil
	}

	if t == nullType {
		return &ir.Primitive{Primitive: ir.Null}, nil
	}
	if isOneOf(t) {
		return r.resolveUnion(t)
	}

	if pkg := t.PkgPath(); pkg != "" {
		return r.resolveNamed(t)
	}
	return r.resolveShape(t)
}

// resolveNamed handles types with a package identity: well-known externals,
// out-of-boundary opaques, enums, records, and named structural types.
func (r *Resolver) resolveNamed(t reflect.Type) (ir.TypeRef, error) {
	origin := t.PkgPath() + "." + t.Name()

	if ext, ok := wellKnown[origin]; ok {
		return &ir.External{Token: ext.token, Origin: origin, Serialized: ext.serialized}, nil
	}

	if !r.boundary.Contains(t.PkgPath()) {
		r.warnings = append(r.warnings, ir.Warning{
			Code:     ir.WarnUnmappedExternalType,
			Message:  fmt.Sprintf("external type %s is not in the common allow-list, degraded to any", origin),
			TypeName: origin,
		})
		return &ir.Any{}, nil
	}

	if t.Implements(enumIface) {
		return r.resolveEnum(t)
	}
	if t.Kind() == reflect.Struct {
		return r.resolveObject(t)
	}

	// Named scalar or container inside the boundary, e.g. type UserID int64
	// or type Tags []string: translate the underlying shape.
	return r.resolveShape(t)
}

// resolveShape classifies a type by structural shape alone.
func (r *Resolver) resolveShape(t reflect.Type) (ir.TypeRef, error) {
	switch t.Kind() {
	case reflect.String:
		return &ir.Primitive{Primitive: ir.String}, nil
	case reflect.Bool:
		return &ir.Primitive{Primitive: ir.Boolean}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return &ir.Primitive{Primitive: ir.Number}, nil

	case reflect.Slice, reflect.Array:
		// Byte slices serialize as strings, not element sequences.
		if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
			return &ir.Primitive{Primitive: ir.String}, nil
		}
		elem, err := r.Resolve(t.Elem())
		if err != nil {
			return nil, err
		}
		return &ir.Collection{Element: elem}, nil

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, &ir.TypeResolutionError{
				TypeName: t.String(),
				Reason:   fmt.Sprintf("mapping key type %s is not string-like", t.Key()),
			}
		}
		value, err := r.Resolve(t.Elem())
		if err != nil {
			return nil, err
		}
		return &ir.Mapping{
			Key:   &ir.Primitive{Primitive: ir.String},
			Value: value,
		}, nil

	case reflect.Interface:
		if t.NumMethod() == 0 {
			return &ir.Any{}, nil
		}
		return nil, &ir.TypeResolutionError{
			TypeName: t.String(),
			Reason:   "non-empty interface types have no structural schema",
		}

	case reflect.Struct:
		// Anonymous structs have no identity to reference them by.
		return nil, &ir.TypeResolutionError{
			TypeName: t.String(),
			Reason:   "anonymous struct types are not supported; declare a named type",
		}

	default:
		return nil, &ir.TypeResolutionError{
			TypeName: t.String(),
			Reason:   fmt.Sprintf("unsupported type kind %s", t.Kind()),
		}
	}
}

// resolveObject resolves a project record type to a schema reference,
// allocating a placeholder schema in the cache before recursing into fields.
func (r *Resolver) resolveObject(t reflect.Type) (ir.TypeRef, error) {
	if id, ok := r.cache[t]; ok {
		return &ir.SchemaRef{ID: id}, nil
	}

	id := r.claimID(t)
	obj := &ir.ObjectSchema{ID: id, Unit: r.unitFor(t)}

	// Register identity before touching fields so that recursive references
	// resolve to this schema instead of looping. The schema is appended now
	// and filled in below; IR consumers only see it after the pass completes.
	r.cache[t] = id
	r.schemas = append(r.schemas, obj)

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, omit, skip := jsonName(sf)
		if skip {
			continue
		}

		ft, err := r.Resolve(sf.Type)
		if err != nil {
			return nil, err
		}

		field := ir.Field{
			Name: name,
			Type: ft,
			Doc:  sf.Tag.Get("doc"),
		}
		if def, ok := sf.Tag.Lookup("default"); ok {
			field.Default = def
			field.HasDefault = true
		}
		_, optional := ft.(*ir.Optional)
		field.Required = !optional && !omit && !field.HasDefault

		obj.Fields = append(obj.Fields, field)
	}

	return &ir.SchemaRef{ID: id}, nil
}

// resolveEnum resolves a project enum type to a schema reference. Member
// order and literal values are preserved verbatim.
func (r *Resolver) resolveEnum(t reflect.Type) (ir.TypeRef, error) {
	if id, ok := r.cache[t]; ok {
		return &ir.SchemaRef{ID: id}, nil
	}

	members := reflect.New(t).Elem().Interface().(fluid.Enum).EnumMembers()
	schema := &ir.EnumSchema{ID: r.claimID(t), Unit: r.unitFor(t)}
	for _, m := range members {
		value, err := enumValue(m.Value)
		if err != nil {
			return nil, &ir.TypeResolutionError{
				TypeName: t.String(),
				Reason:   fmt.Sprintf("enum member %s: %v", m.Name, err),
			}
		}
		schema.Members = append(schema.Members, ir.EnumMember{Name: m.Name, Value: value})
	}

	r.cache[t] = schema.ID
	r.schemas = append(r.schemas, schema)
	return &ir.SchemaRef{ID: schema.ID}, nil
}

// resolveUnion resolves a OneOf marker into a union, preserving type
// argument order. A two-member union where one member is null collapses to
// Optional of the other member.
func (r *Resolver) resolveUnion(t reflect.Type) (ir.TypeRef, error) {
	var members []ir.TypeRef
	for i := 0; i < t.NumField(); i++ {
		m, err := r.Resolve(t.Field(i).Type)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}

	if len(members) == 2 {
		if isNullRef(members[0]) {
			return &ir.Optional{Inner: members[1]}, nil
		}
		if isNullRef(members[1]) {
			return &ir.Optional{Inner: members[0]}, nil
		}
	}
	if len(members) == 1 {
		return members[0], nil
	}
	return &ir.Union{Members: members}, nil
}

// claimID allocates a unique schema identity for a type. The bare type name
// is preferred; on collision with a type from another package the name is
// qualified with package path elements until unique.
func (r *Resolver) claimID(t reflect.Type) string {
	name := t.Name()
	if owner, taken := r.idOwner[name]; !taken || owner == t {
		r.idOwner[name] = t
		return name
	}

	parts := strings.Split(t.PkgPath(), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		qualified := sanitizeIdent(parts[i]) + "_" + name
		if owner, taken := r.idOwner[qualified]; !taken || owner == t {
			r.idOwner[qualified] = t
			return qualified
		}
		name = qualified
	}
	r.idOwner[name] = t
	return name
}

// unitFor derives the source unit for a type: its package path with the
// longest matching boundary prefix stripped.
func (r *Resolver) unitFor(t reflect.Type) string {
	pkg := t.PkgPath()
	best := ""
	for _, p := range r.boundary.Prefixes {
		if (pkg == p || strings.HasPrefix(pkg, p+"/")) && len(p) > len(best) {
			best = p
		}
	}
	if best == "" {
		return pkg
	}
	unit := strings.TrimPrefix(strings.TrimPrefix(pkg, best), "/")
	if unit == "" {
		unit = "index"
	}
	return unit
}

// isOneOf reports whether a type is one of the union marker types.
func isOneOf(t reflect.Type) bool {
	return t.PkgPath() == oneOfPkg && strings.HasPrefix(t.Name(), "OneOf") && t.Kind() == reflect.Struct
}

// isNullRef reports whether a reference is the null primitive.
func isNullRef(ref ir.TypeRef) bool {
	p, ok := ref.(*ir.Primitive)
	return ok && p.Primitive == ir.Null
}

// enumValue normalizes a declared member value to a string or int64,
// rejecting anything else. Values are never renumbered.
func enumValue(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	default:
		return nil, fmt.Errorf("literal value %v (%T) is not a string or integer", v, v)
	}
}

// jsonName resolves the wire name of a struct field from its json tag.
// The second return reports omitempty; the third reports a skipped field.
func jsonName(sf reflect.StructField) (name string, omitempty, skip bool) {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = sf.Name
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" || opt == "omitzero" {
			omitempty = true
		}
	}
	return name, omitempty, false
}

// sanitizeIdent strips characters that cannot appear in a generated
// identifier.
func sanitizeIdent(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
