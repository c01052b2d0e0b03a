// Package introspect walks a live route table and produces the IR consumed
// by code generators. One Introspector serves exactly one pass; it owns a
// pass-scoped resolver, so repeated passes never see stale schemas.
package introspect

import (
	"fmt"
	"path"
	"strings"

	"github.com/fluidkit/fluid-go"
	"github.com/fluidkit/fluid-go/fluidgen/ir"
	"github.com/fluidkit/fluid-go/fluidgen/resolve"
)

// Introspector accumulates operations from mounted and discovered routers.
type Introspector struct {
	resolver *resolve.Resolver
	ops      []ir.Operation
	warnings []ir.Warning
}

// New creates an introspector for one pass with the given project boundary.
func New(boundary resolve.Boundary) *Introspector {
	return &Introspector{resolver: resolve.New(boundary)}
}

// Mounted introspects a router mounted under a URL prefix.
func (in *Introspector) Mounted(m fluid.MountedRouter) error {
	unit := strings.Trim(m.Prefix, "/")
	if unit == "" {
		unit = "index"
	}
	return in.addRouter(unit, m.File, m.Prefix, m.Router)
}

// Discovered introspects a router bound to a discovered route file. The
// folder-derived prefix parameters must all be accepted as path parameters by
// every operation of the router; a missing one is fatal.
func (in *Introspector) Discovered(d ir.DiscoveredRoute, router fluid.RouteRegistrable) error {
	unit := path.Dir(d.FilePath)
	if unit == "." || unit == "" {
		unit = "index"
	}
	return in.addRouter(unit, d.FilePath, d.PathPrefix(), router)
}

// RouterMissing records that a discovered route file has no registered
// router. This is a warning, not an error: the file may belong to a router
// that is registered conditionally.
func (in *Introspector) RouterMissing(d ir.DiscoveredRoute) {
	in.warnings = append(in.warnings, ir.Warning{
		Code:    ir.WarnRouterNotFound,
		Message: fmt.Sprintf("no router registered for route file %s", d.FilePath),
		File:    d.FilePath,
	})
}

// IR finalizes the pass. The result is complete and immutable; the
// introspector must not be reused afterwards.
func (in *Introspector) IR() *ir.IR {
	out := &ir.IR{
		Schemas:    in.resolver.Schemas(),
		Operations: in.ops,
	}
	out.Warnings = append(out.Warnings, in.resolver.Warnings()...)
	out.Warnings = append(out.Warnings, in.warnings...)
	return out
}

func (in *Introspector) addRouter(unit, file, prefix string, router fluid.RouteRegistrable) error {
	routes := router.Operations()
	if len(routes) == 0 {
		in.warnings = append(in.warnings, ir.Warning{
			Code:    ir.WarnOperationSkipped,
			Message: fmt.Sprintf("router for %s registers no operations", unit),
			File:    file,
		})
		return nil
	}

	for _, route := range routes {
		op, err := in.operation(unit, file, prefix, route)
		if err != nil {
			return err
		}
		in.ops = append(in.ops, op)
	}
	return nil
}

// operation converts one registered route into an IR operation.
func (in *Introspector) operation(unit, file, prefix string, route *fluid.Route) (ir.Operation, error) {
	fullPath := joinPath(prefix, route.Path)
	// Router.Handle rejects this at registration, but RouteRegistrable is
	// open to other implementations.
	if len(route.Methods) == 0 {
		return ir.Operation{}, &ir.ConfigError{
			Context: "route " + fullPath,
			Reason:  "no HTTP methods declared",
		}
	}
	name := route.Name
	if name == "" {
		name = deriveName(route.Methods[0], fullPath)
	}

	specs, err := fluid.ParamSpecs(route.Params)
	if err != nil {
		return ir.Operation{}, &ir.ConfigError{
			Context: "operation " + name,
			Reason:  err.Error(),
		}
	}

	pathSpecs := make(map[string]bool)
	for _, spec := range specs {
		if spec.Source != fluid.SourcePath {
			continue
		}
		pathSpecs[spec.Name] = true
		if spec.HasDefault {
			// A path parameter is part of the URL: a default can never
			// apply, so declaring one is a configuration bug.
			return ir.Operation{}, &ir.ConfigError{
				Context: "operation " + name,
				Reason:  fmt.Sprintf("path parameter %q declares a default value", spec.Name),
			}
		}
	}

	// Every placeholder in the full path, including folder-derived ones,
	// must be accepted by the parameter struct, and every declared path
	// parameter must appear in the path.
	placeholders := fluid.PathParamNames(fullPath)
	inPath := make(map[string]bool, len(placeholders))
	for _, p := range placeholders {
		inPath[p] = true
		if !pathSpecs[p] {
			return ir.Operation{}, &ir.RouteParameterMismatchError{
				File: file, Operation: name, Parameter: p,
			}
		}
	}
	for p := range pathSpecs {
		if !inPath[p] {
			return ir.Operation{}, &ir.RouteParameterMismatchError{
				File: file, Operation: name, Parameter: p,
			}
		}
	}

	op := ir.Operation{
		ID:        name,
		Unit:      unit,
		Methods:   append([]string(nil), route.Methods...),
		Path:      fullPath,
		Doc:       route.Doc,
		Streaming: streamKind(route.Stream),
	}

	for _, spec := range specs {
		p, err := in.parameter(spec)
		if err != nil {
			return ir.Operation{}, err
		}
		op.Parameters = append(op.Parameters, p)
	}

	op.Returns, err = in.resolver.Resolve(route.Response)
	if err != nil {
		return ir.Operation{}, err
	}
	return op, nil
}

func (in *Introspector) parameter(spec fluid.ParamSpec) (ir.Parameter, error) {
	typ, err := in.resolver.Resolve(spec.Type)
	if err != nil {
		return ir.Parameter{}, err
	}

	_, optional := typ.(*ir.Optional)
	p := ir.Parameter{
		Name:       spec.Name,
		Type:       typ,
		Source:     paramSource(spec.Source),
		Required:   !optional && !spec.HasDefault,
		Default:    spec.Default,
		HasDefault: spec.HasDefault,
		Doc:        spec.Doc,
	}
	if p.Source == ir.SourcePath {
		p.Required = true
	}
	return p, nil
}

func paramSource(s fluid.ParamSource) ir.ParamSource {
	switch s {
	case fluid.SourcePath:
		return ir.SourcePath
	case fluid.SourceHeader:
		return ir.SourceHeader
	case fluid.SourceCookie:
		return ir.SourceCookie
	case fluid.SourceBody:
		return ir.SourceBody
	default:
		return ir.SourceQuery
	}
}

func streamKind(s fluid.StreamKind) ir.StreamKind {
	switch s {
	case fluid.StreamSSE:
		return ir.StreamSSE
	case fluid.StreamNDJSON:
		return ir.StreamNDJSON
	case fluid.StreamRaw:
		return ir.StreamRaw
	default:
		return ir.StreamNone
	}
}

// joinPath combines a route prefix with a relative route path.
func joinPath(prefix, rel string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if rel != "" && !strings.HasPrefix(rel, "/") {
		rel = "/" + rel
	}
	full := prefix + rel
	if full == "" {
		return "/"
	}
	return full
}

// deriveName builds a camelCase operation name from a method and path,
// e.g. GET /shop/{category}/items -> getShopCategoryItems.
func deriveName(method, fullPath string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for _, seg := range strings.Split(fullPath, "/") {
		seg = strings.TrimSuffix(strings.Trim(seg, "{}"), "...")
		for _, word := range strings.FieldsFunc(seg, func(r rune) bool {
			return r == '-' || r == '_' || r == '.'
		}) {
			b.WriteString(strings.ToUpper(word[:1]))
			b.WriteString(word[1:])
		}
	}
	return b.String()
}
