package introspect

import (
	"context"
	"errors"
	"testing"

	"github.com/fluidkit/fluid-go"
	"github.com/fluidkit/fluid-go/fluidgen/ir"
	"github.com/fluidkit/fluid-go/fluidgen/resolve"
)

var testBoundary = resolve.Boundary{Prefixes: []string{"github.com/fluidkit/fluid-go/fluidgen/introspect"}}

type getUserParams struct {
	UserID       int  `path:"user_id"`
	IncludeEmail bool `query:"include_email" default:"false"`
}

type userOut struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

func getUser(ctx context.Context, p getUserParams) (userOut, error) {
	return userOut{}, nil
}

func userRouter() *fluid.Router {
	r := fluid.NewRouter()
	r.Handle("/users/{user_id}", fluid.Unary(getUser).Doc("Fetch one user")).Named("getUser")
	return r
}

func TestMountedOperation(t *testing.T) {
	in := New(testBoundary)
	if err := in.Mounted(fluid.MountedRouter{Prefix: "/api", Router: userRouter()}); err != nil {
		t.Fatal(err)
	}
	result := in.IR()

	if len(result.Operations) != 1 {
		t.Fatalf("got %d operations, want 1", len(result.Operations))
	}
	op := result.Operations[0]
	if op.ID != "getUser" {
		t.Errorf("ID = %q, want getUser", op.ID)
	}
	if op.Path != "/api/users/{user_id}" {
		t.Errorf("Path = %q, want /api/users/{user_id}", op.Path)
	}
	if op.Doc != "Fetch one user" {
		t.Errorf("Doc = %q", op.Doc)
	}

	if len(op.Parameters) != 2 {
		t.Fatalf("got %d parameters, want 2", len(op.Parameters))
	}
	uid := op.Parameters[0]
	if uid.Name != "user_id" || uid.Source != ir.SourcePath || !uid.Required {
		t.Errorf("user_id = %+v, want required path parameter", uid)
	}
	inc := op.Parameters[1]
	if inc.Name != "include_email" || inc.Source != ir.SourceQuery {
		t.Errorf("include_email = %+v, want query parameter", inc)
	}
	if inc.Required || !inc.HasDefault || inc.Default != "false" {
		t.Errorf("include_email = %+v, want optional with default false", inc)
	}

	if ref, ok := op.Returns.(*ir.SchemaRef); !ok || ref.ID != "userOut" {
		t.Errorf("Returns = %#v, want SchemaRef to userOut", op.Returns)
	}
	if result.FindSchema("userOut") == nil {
		t.Error("userOut schema not registered")
	}
	if errs := result.Validate(); len(errs) != 0 {
		t.Errorf("Validate() = %v", errs)
	}
}

type itemParams struct {
	Category string `path:"category"`
	Limit    int    `query:"limit" default:"20"`
}

func listItems(ctx context.Context, p itemParams) ([]string, error) { return nil, nil }

func TestDiscoveredPrefixBecomesPath(t *testing.T) {
	r := fluid.NewRouter()
	r.Handle("/items", fluid.Unary(listItems)).Named("listItems")

	d := ir.DiscoveredRoute{
		FilePath: "shop/[category]/_api.go",
		Prefix:   []ir.Segment{ir.Literal("shop"), ir.Dynamic("category")},
	}

	in := New(testBoundary)
	if err := in.Discovered(d, r); err != nil {
		t.Fatal(err)
	}
	op := in.IR().Operations[0]
	if op.Path != "/shop/{category}/items" {
		t.Errorf("Path = %q, want /shop/{category}/items", op.Path)
	}
	if op.Unit != "shop/[category]" {
		t.Errorf("Unit = %q, want shop/[category]", op.Unit)
	}
}

func TestRouteParameterMismatch(t *testing.T) {
	// The router's operation does not accept the folder-derived category
	// parameter.
	r := fluid.NewRouter()
	r.Handle("/items", fluid.Unary(func(ctx context.Context, p struct {
		Limit int `query:"limit"`
	}) ([]string, error) {
		return nil, nil
	})).Named("listItems")

	d := ir.DiscoveredRoute{
		FilePath: "shop/[category]/_api.go",
		Prefix:   []ir.Segment{ir.Literal("shop"), ir.Dynamic("category")},
	}

	in := New(testBoundary)
	err := in.Discovered(d, r)
	var mismatch *ir.RouteParameterMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("got %v, want RouteParameterMismatchError", err)
	}
	if mismatch.Parameter != "category" || mismatch.Operation != "listItems" {
		t.Errorf("got %+v, want parameter category on listItems", mismatch)
	}
}

func TestPathParameterDefaultRejected(t *testing.T) {
	r := fluid.NewRouter()
	r.Handle("/users/{id}", fluid.Unary(func(ctx context.Context, p struct {
		ID int `path:"id" default:"1"`
	}) (userOut, error) {
		return userOut{}, nil
	}))

	in := New(testBoundary)
	err := in.Mounted(fluid.MountedRouter{Router: r})
	var cfg *ir.ConfigError
	if !errors.As(err, &cfg) {
		t.Fatalf("got %v, want ConfigError", err)
	}
}

func TestDerivedOperationName(t *testing.T) {
	in := New(testBoundary)
	r := fluid.NewRouter()
	r.Handle("/users/{user_id}", fluid.Unary(getUser))
	if err := in.Mounted(fluid.MountedRouter{Prefix: "/api", Router: r}); err != nil {
		t.Fatal(err)
	}
	if got := in.IR().Operations[0].ID; got != "getApiUsersUserId" {
		t.Errorf("derived ID = %q, want getApiUsersUserId", got)
	}
}

func TestMultiMethodSingleOperation(t *testing.T) {
	r := fluid.NewRouter()
	r.Handle("/users/{user_id}", fluid.Unary(getUser).Methods("PUT", "PATCH")).Named("updateUser")

	in := New(testBoundary)
	if err := in.Mounted(fluid.MountedRouter{Router: r}); err != nil {
		t.Fatal(err)
	}
	ops := in.IR().Operations
	if len(ops) != 1 {
		t.Fatalf("got %d operations, want 1", len(ops))
	}
	if got := ops[0].Methods; len(got) != 2 || got[0] != "PUT" || got[1] != "PATCH" {
		t.Errorf("Methods = %v, want [PUT PATCH] in declared order", got)
	}
}

type tickParams struct{}

type tick struct {
	Seq int `json:"seq"`
}

func TestStreamingOperations(t *testing.T) {
	r := fluid.NewRouter()
	r.Handle("/ticks", fluid.SSE(func(ctx context.Context, p tickParams, send func(tick) error) error {
		return nil
	})).Named("watchTicks")

	in := New(testBoundary)
	if err := in.Mounted(fluid.MountedRouter{Router: r}); err != nil {
		t.Fatal(err)
	}
	op := in.IR().Operations[0]
	if op.Streaming != ir.StreamSSE {
		t.Errorf("Streaming = %v, want StreamSSE", op.Streaming)
	}
	if ref, ok := op.Returns.(*ir.SchemaRef); !ok || ref.ID != "tick" {
		t.Errorf("Returns = %#v, want SchemaRef to the event type", op.Returns)
	}
}

func TestRouterMissingWarning(t *testing.T) {
	in := New(testBoundary)
	in.RouterMissing(ir.DiscoveredRoute{FilePath: "orphan/_api.go"})
	result := in.IR()
	if len(result.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(result.Warnings))
	}
	if result.Warnings[0].Code != ir.WarnRouterNotFound {
		t.Errorf("code = %s, want %s", result.Warnings[0].Code, ir.WarnRouterNotFound)
	}
}

// bareTable implements RouteRegistrable without going through Router.Handle,
// so it can hold routes the registration guards would reject.
type bareTable struct {
	routes []*fluid.Route
}

func (b *bareTable) Operations() []*fluid.Route { return b.routes }

func TestRouteWithoutMethodsRejected(t *testing.T) {
	in := New(testBoundary)
	err := in.Mounted(fluid.MountedRouter{Prefix: "/api", Router: &bareTable{
		routes: []*fluid.Route{{Path: "/things"}},
	}})

	var cfg *ir.ConfigError
	if !errors.As(err, &cfg) {
		t.Fatalf("got %v, want ConfigError", err)
	}
	if cfg.Context != "route /api/things" {
		t.Errorf("context = %q, want route /api/things", cfg.Context)
	}
}
