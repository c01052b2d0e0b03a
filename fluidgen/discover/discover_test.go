package discover

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/fluidkit/fluid-go/fluidgen/ir"
)

func names(routes []ir.DiscoveredRoute) []string {
	out := make([]string, len(routes))
	for i, r := range routes {
		out[i] = r.FilePath
	}
	return out
}

func TestDiscoverFilenameFamilies(t *testing.T) {
	fsys := fstest.MapFS{
		"_api.go":                 {},
		"users/_api.go":           {},
		"billing/invoices.api.go": {},
		"billing/helpers.go":      {},
		"users/_api_test.go":      {},
		"docs/readme.md":          {},
	}
	routes, err := Discover(fsys, Options{})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"_api.go", "billing/invoices.api.go", "users/_api.go"}
	got := names(routes)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("routes[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestDiscoverFolderConventions(t *testing.T) {
	fsys := fstest.MapFS{
		"shop/[category]/items/_api.go": {},
		"(admin)/settings/_api.go":      {},
		"files/[...path]/_api.go":       {},
	}
	routes, err := Discover(fsys, Options{})
	if err != nil {
		t.Fatal(err)
	}

	byFile := make(map[string]ir.DiscoveredRoute)
	for _, r := range routes {
		byFile[r.FilePath] = r
	}

	if got := byFile["shop/[category]/items/_api.go"].PathPrefix(); got != "/shop/{category}/items" {
		t.Errorf("dynamic prefix = %q, want /shop/{category}/items", got)
	}
	// Group folders contribute no segment.
	if got := byFile["(admin)/settings/_api.go"].PathPrefix(); got != "/settings" {
		t.Errorf("group prefix = %q, want /settings", got)
	}
	if got := byFile["files/[...path]/_api.go"].PathPrefix(); got != "/files/{path...}" {
		t.Errorf("rest prefix = %q, want /files/{path...}", got)
	}
	if got := byFile["files/[...path]/_api.go"].ParamNames(); len(got) != 1 || got[0] != "path" {
		t.Errorf("rest params = %v, want [path]", got)
	}
}

func TestDiscoverFoldersBelowRestAbsorbed(t *testing.T) {
	// A rest parameter swallows the remaining path, so deeper folders
	// contribute nothing: files/[...path]/handler still serves /files/*.
	fsys := fstest.MapFS{
		"files/[...path]/handler/_api.go": {},
	}
	routes, err := Discover(fsys, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(routes) != 1 {
		t.Fatalf("got %d routes, want 1", len(routes))
	}
	if got := routes[0].PathPrefix(); got != "/files/{path...}" {
		t.Errorf("prefix = %q, want /files/{path...}", got)
	}
	if got := routes[0].ParamNames(); len(got) != 1 || got[0] != "path" {
		t.Errorf("params = %v, want [path]", got)
	}
}

func TestDiscoverDuplicateParam(t *testing.T) {
	fsys := fstest.MapFS{
		"a/[id]/b/[id]/_api.go": {},
	}
	_, err := Discover(fsys, Options{})
	var cfg *ir.ConfigError
	if !errors.As(err, &cfg) {
		t.Fatalf("got %v, want ConfigError", err)
	}
}

func TestDiscoverSkipsVendoredAndHidden(t *testing.T) {
	fsys := fstest.MapFS{
		"node_modules/pkg/_api.go": {},
		"vendor/x/_api.go":         {},
		".git/_api.go":             {},
		"app/_api.go":              {},
	}
	routes, err := Discover(fsys, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := names(routes); len(got) != 1 || got[0] != "app/_api.go" {
		t.Errorf("got %v, want [app/_api.go]", got)
	}
}

func TestDiscoverIncludeExclude(t *testing.T) {
	fsys := fstest.MapFS{
		"app/_api.go":      {},
		"app/internal/_api.go": {},
		"tools/_api.go":    {},
	}

	routes, err := Discover(fsys, Options{Include: []string{"app/*"}})
	if err != nil {
		t.Fatal(err)
	}
	if got := names(routes); len(got) != 2 {
		t.Errorf("include app/*: got %v, want the two app routes", got)
	}

	routes, err = Discover(fsys, Options{Exclude: []string{"app/internal"}})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range routes {
		if strings.HasPrefix(r.FilePath, "app/internal/") {
			t.Errorf("excluded path %s still discovered", r.FilePath)
		}
	}
}

func TestDiscoverCustomTokens(t *testing.T) {
	fsys := fstest.MapFS{
		"app/_rpc.go":  {},
		"app/_api.go":  {},
		"app/x.rpc.go": {},
	}
	routes, err := Discover(fsys, Options{Tokens: []string{"rpc"}})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"app/_rpc.go", "app/x.rpc.go"}
	got := names(routes)
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %v, want %v", got, want)
	}
}
