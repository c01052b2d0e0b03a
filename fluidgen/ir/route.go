package ir

import "strings"

// SegmentKind identifies how a folder-derived path segment contributes to a
// route prefix.
type SegmentKind int

const (
	SegmentLiteral SegmentKind = iota
	SegmentDynamic
	SegmentRest
)

// Segment is one contributing segment of a discovered route prefix. Route
// group folders contribute nothing and are consumed during discovery, so
// they never appear here.
type Segment struct {
	Kind SegmentKind

	// Value is the literal text for SegmentLiteral, or the bound parameter
	// name for SegmentDynamic and SegmentRest.
	Value string
}

// Literal returns a literal segment.
func Literal(s string) Segment { return Segment{Kind: SegmentLiteral, Value: s} }

// Dynamic returns a dynamic segment bound to name.
func Dynamic(name string) Segment { return Segment{Kind: SegmentDynamic, Value: name} }

// Rest returns a rest segment capturing the remaining path into name.
func Rest(name string) Segment { return Segment{Kind: SegmentRest, Value: name} }

// String renders the segment in URL pattern form.
func (s Segment) String() string {
	switch s.Kind {
	case SegmentDynamic:
		return "{" + s.Value + "}"
	case SegmentRest:
		return "{" + s.Value + "...}"
	default:
		return s.Value
	}
}

// DiscoveredRoute binds a route file to the prefix derived from its folder
// path.
type DiscoveredRoute struct {
	// FilePath is the scan-root-relative path of the matched file, with
	// forward slashes.
	FilePath string

	// Prefix is the ordered list of contributing segments.
	Prefix []Segment
}

// PathPrefix renders the prefix as a URL pattern, e.g.
// "/shop/{category}/items". An empty prefix renders as "".
func (d DiscoveredRoute) PathPrefix() string {
	if len(d.Prefix) == 0 {
		return ""
	}
	parts := make([]string, len(d.Prefix))
	for i, s := range d.Prefix {
		parts[i] = s.String()
	}
	return "/" + strings.Join(parts, "/")
}

// ParamNames returns the names bound by dynamic and rest segments, in order.
func (d DiscoveredRoute) ParamNames() []string {
	var names []string
	for _, s := range d.Prefix {
		if s.Kind == SegmentDynamic || s.Kind == SegmentRest {
			names = append(names, s.Value)
		}
	}
	return names
}
