// Package fluid is a small typed HTTP API framework whose route table is
// designed to be introspected. Handlers are registered on a [Router] with a
// tag-annotated parameter struct and a typed response; the fluidgen packages
// walk the resulting route table and emit strongly-typed TypeScript clients.
//
// A minimal route file:
//
//	func NewRouter() *fluid.Router {
//	    r := fluid.NewRouter()
//	    r.Handle("/users/{user_id}", fluid.Unary(getUser).Doc("Fetch one user"))
//	    return r
//	}
//
// where getUser is func(ctx context.Context, p GetUserParams) (User, error)
// and GetUserParams declares its binding sources via struct tags:
//
//	type GetUserParams struct {
//	    UserID       int  `path:"user_id"`
//	    IncludeEmail bool `query:"include_email" default:"false"`
//	}
package fluid

// StreamKind classifies an endpoint's response framing.
type StreamKind int

const (
	// StreamNone is a plain request/response endpoint.
	StreamNone StreamKind = iota

	// StreamSSE is a text/event-stream endpoint. The response type is the
	// per-event payload type.
	StreamSSE

	// StreamNDJSON is a newline-delimited JSON stream. The response type is
	// the per-line chunk type.
	StreamNDJSON

	// StreamRaw is an opaque binary stream with no per-chunk type.
	StreamRaw
)

// String returns the wire name of the stream kind.
func (k StreamKind) String() string {
	switch k {
	case StreamNone:
		return "none"
	case StreamSSE:
		return "sse"
	case StreamNDJSON:
		return "ndjson"
	case StreamRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// EnumMember is one declared member of an enumerated type.
// Value must be a string or an integer and is preserved verbatim in
// generated code.
type EnumMember struct {
	Name  string
	Value any
}

// Enum is implemented by named types that want to be generated as
// enumerations. Members must be returned in declaration order; generation
// never reorders or renumbers them.
//
//	type UserStatus string
//
//	func (UserStatus) EnumMembers() []fluid.EnumMember {
//	    return []fluid.EnumMember{
//	        {Name: "Active", Value: "active"},
//	        {Name: "Suspended", Value: "suspended"},
//	    }
//	}
type Enum interface {
	EnumMembers() []EnumMember
}

// Null is the explicit null member for union types.
type Null struct{}

// OneOf2 declares a two-member union. The member order is the declaration
// order of the type arguments and is preserved in generated discriminated
// types. A union of T and [Null] is equivalent to an optional T.
type OneOf2[A, B any] struct {
	A A
	B B
}

// OneOf3 declares a three-member union.
type OneOf3[A, B, C any] struct {
	A A
	B B
	C C
}

// OneOf4 declares a four-member union.
type OneOf4[A, B, C, D any] struct {
	A A
	B B
	C C
	D D
}
