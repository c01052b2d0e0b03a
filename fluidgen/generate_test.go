package fluidgen

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/fluidkit/fluid-go"
	"github.com/fluidkit/fluid-go/fluidgen/ir"
	"github.com/fluidkit/fluid-go/fluidgen/sink"
)

func testConfig() *Config {
	return &Config{
		Boundary: BoundaryConfig{Prefixes: []string{"github.com/fluidkit/fluid-go/fluidgen"}},
		Discovery: DiscoveryConfig{
			Enabled: true,
			Root:    ".",
		},
		Environment: "dev",
		Environments: map[string]EnvironmentConfig{
			"dev": {BaseURL: "http://localhost:8080"},
		},
	}
}

type item struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type listItemsParams struct {
	Category string `path:"category"`
	Limit    int    `query:"limit" default:"20"`
}

func shopRouter() *fluid.Router {
	r := fluid.NewRouter()
	r.Handle("/items", fluid.Unary(func(ctx context.Context, p listItemsParams) ([]item, error) {
		return nil, nil
	}).Doc("List items in a category")).Named("listItems")
	return r
}

func TestGeneratePipeline(t *testing.T) {
	app := fluid.NewApp()
	app.Register("shop/[category]/_api.go", shopRouter())

	fsys := fstest.MapFS{
		"shop/[category]/_api.go": {},
	}
	out := sink.NewMemorySink()

	report, err := GenerateFS(context.Background(), app, fsys, testConfig(), out)
	if err != nil {
		t.Fatal(err)
	}

	if report.Operations != 1 {
		t.Errorf("Operations = %d, want 1", report.Operations)
	}
	if out.Get("runtime.ts") == nil {
		t.Fatalf("runtime.ts not written, have %v", out.Paths())
	}

	client := string(out.Get("shop/[category].ts"))
	if client == "" {
		t.Fatalf("client file not written, have %v", out.Paths())
	}
	if !strings.Contains(client, "/shop/${encodeURIComponent(String(category))}/items") {
		t.Errorf("folder-derived path parameter missing from url:\n%s", client)
	}
	if !strings.Contains(client, "listItems(category: string, limit?: number, options?: RequestInit)") {
		t.Errorf("signature not generated as expected:\n%s", client)
	}

	rt := string(out.Get("runtime.ts"))
	if !strings.Contains(rt, `"http://localhost:8080"`) {
		t.Error("active environment base URL not applied")
	}
}

func TestGenerateUnregisteredFileWarns(t *testing.T) {
	app := fluid.NewApp()
	fsys := fstest.MapFS{
		"orphan/_api.go": {},
	}
	out := sink.NewMemorySink()

	report, err := GenerateFS(context.Background(), app, fsys, testConfig(), out)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, w := range report.Warnings {
		if w.Code == ir.WarnRouterNotFound && w.File == "orphan/_api.go" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing router-not-found warning, got %v", report.Warnings)
	}
	// Warnings never block the pass.
	if out.Get("runtime.ts") == nil {
		t.Error("runtime.ts should still be written")
	}
}

func TestGenerateFatalWritesNothing(t *testing.T) {
	// The router does not accept the folder-derived category parameter, so
	// introspection fails before anything reaches the sink.
	r := fluid.NewRouter()
	r.Handle("/items", fluid.Unary(func(ctx context.Context, p struct{}) ([]item, error) {
		return nil, nil
	}))

	app := fluid.NewApp()
	app.Register("shop/[category]/_api.go", r)

	fsys := fstest.MapFS{
		"shop/[category]/_api.go": {},
	}
	out := sink.NewMemorySink()

	_, err := GenerateFS(context.Background(), app, fsys, testConfig(), out)
	var mismatch *ir.RouteParameterMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("got %v, want RouteParameterMismatchError", err)
	}
	if got := out.Paths(); len(got) != 0 {
		t.Errorf("fatal pass wrote files: %v", got)
	}
}

func TestGenerateDoubleRunIdentical(t *testing.T) {
	app := fluid.NewApp()
	app.Register("shop/[category]/_api.go", shopRouter())
	fsys := fstest.MapFS{
		"shop/[category]/_api.go": {},
	}

	first := sink.NewMemorySink()
	if _, err := GenerateFS(context.Background(), app, fsys, testConfig(), first); err != nil {
		t.Fatal(err)
	}
	second := sink.NewMemorySink()
	if _, err := GenerateFS(context.Background(), app, fsys, testConfig(), second); err != nil {
		t.Fatal(err)
	}

	for _, p := range first.Paths() {
		if string(first.Get(p)) != string(second.Get(p)) {
			t.Errorf("output for %s differs between passes", p)
		}
	}
	if len(first.Paths()) != len(second.Paths()) {
		t.Errorf("file sets differ: %v vs %v", first.Paths(), second.Paths())
	}
}
