package fluid

import (
	"fmt"
	"reflect"
)

// Route is one registered endpoint. It carries everything the generator
// needs: the path pattern, the ordered HTTP method set, the parameter struct
// type, the response type, the streaming classification, and documentation.
type Route struct {
	// Name is the operation name exposed to clients. When empty, a name is
	// derived from the method and path during introspection.
	Name string

	Path     string
	Methods  []string
	Params   reflect.Type // tag-annotated struct type, may be nil
	Response reflect.Type // response, event or chunk type, may be nil
	Stream   StreamKind
	Doc      string

	endpoint Endpoint
}

// Endpoint returns the registered endpoint implementation.
func (r *Route) Endpoint() Endpoint { return r.endpoint }

// Named sets the operation name and returns the route for chaining.
func (r *Route) Named(name string) *Route {
	r.Name = name
	return r
}

// RouteRegistrable is the capability that makes a value discoverable as a
// router: anything that can enumerate its registered operations qualifies,
// independent of its concrete type or the name it is exported under.
type RouteRegistrable interface {
	Operations() []*Route
}

// Router registers endpoints under relative paths. The route prefix is
// supplied later, either by an explicit mount or by filesystem discovery.
type Router struct {
	routes []*Route
}

// NewRouter returns an empty router.
func NewRouter() *Router {
	return &Router{}
}

// Handle registers an endpoint at path. The path may contain {name}
// placeholders for path parameters and a trailing {name...} for a rest
// parameter. It panics on invalid registrations: a nil endpoint, an empty
// method set, or a malformed parameter struct. Registration happens at
// startup, so failing loudly is preferable to serving a broken table.
func (r *Router) Handle(path string, ep Endpoint) *Route {
	if ep == nil {
		panic("fluid: Handle called with nil endpoint")
	}
	meta := ep.Describe()
	if len(meta.Methods) == 0 {
		panic(fmt.Sprintf("fluid: endpoint for %s declares no HTTP methods", path))
	}
	if _, err := ParamSpecs(meta.Params); err != nil {
		panic(fmt.Sprintf("fluid: endpoint for %s: %v", path, err))
	}

	route := &Route{
		Path:     path,
		Methods:  append([]string(nil), meta.Methods...),
		Params:   meta.Params,
		Response: meta.Response,
		Stream:   meta.Stream,
		Doc:      meta.Doc,
		endpoint: ep,
	}
	r.routes = append(r.routes, route)
	return route
}

// Operations returns the registered routes in registration order.
// It implements RouteRegistrable.
func (r *Router) Operations() []*Route {
	return r.routes
}
