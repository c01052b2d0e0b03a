package fluid

import (
	"context"
	"net/http/httptest"
	"testing"
)

func emptyRouter() *Router {
	r := NewRouter()
	r.Handle("/ping", Unary(func(ctx context.Context, p struct{}) (string, error) {
		return "pong", nil
	}))
	return r
}

func TestAppRegisterAndLookup(t *testing.T) {
	app := NewApp()
	r := emptyRouter()
	app.Register("shop/_api.go", r)

	got, ok := app.Lookup("shop/_api.go")
	if !ok || got != RouteRegistrable(r) {
		t.Fatal("registered router not found")
	}
	if _, ok := app.Lookup("other/_api.go"); ok {
		t.Error("lookup of unregistered file should fail")
	}
	if files := app.RegisteredFiles(); len(files) != 1 || files[0] != "shop/_api.go" {
		t.Errorf("RegisteredFiles() = %v", files)
	}
}

func TestAppSnapshotIsolation(t *testing.T) {
	app := NewApp()
	app.Mount("/api", emptyRouter())

	snap := app.Snapshot()
	if len(snap) != 1 || snap[0].Prefix != "/api" {
		t.Fatalf("snapshot = %+v", snap)
	}

	// Registrations after the snapshot must not appear in it.
	app.Mount("/v2", emptyRouter())
	if len(snap) != 1 {
		t.Error("snapshot grew after later mount")
	}
	if len(app.Snapshot()) != 2 {
		t.Error("new snapshot should see both mounts")
	}
}

func TestFileRoutePrefix(t *testing.T) {
	tests := []struct {
		file    string
		want    string
		wantErr bool
	}{
		{file: "_api.go", want: ""},
		{file: "shop/[category]/_api.go", want: "/shop/{category}"},
		{file: "files/[...path]/_api.go", want: "/files/{path...}"},
		{file: "(admin)/settings/_api.go", want: "/settings"},
		{file: "a/b/users.api.go", want: "/a/b"},
		{file: "x/[]/_api.go", wantErr: true},
		{file: "x/[...]/_api.go", wantErr: true},
	}
	for _, tt := range tests {
		got, err := fileRoutePrefix(tt.file)
		if tt.wantErr {
			if err == nil {
				t.Errorf("fileRoutePrefix(%q): want error", tt.file)
			}
			continue
		}
		if err != nil {
			t.Errorf("fileRoutePrefix(%q): %v", tt.file, err)
			continue
		}
		if got != tt.want {
			t.Errorf("fileRoutePrefix(%q) = %q, want %q", tt.file, got, tt.want)
		}
	}
}

func TestHandlerServesRegisteredRouters(t *testing.T) {
	type params struct {
		Category string `path:"category"`
	}
	r := NewRouter()
	r.Handle("/items", Unary(func(ctx context.Context, p params) (string, error) {
		return p.Category, nil
	}))

	app := NewApp()
	app.Register("shop/[category]/_api.go", r)
	h := app.Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/shop/books/items", nil))

	if w.Code != 200 {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got, want := w.Body.String(), "\"books\"\n"; got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestRouterHandlePanics(t *testing.T) {
	assertPanics := func(name string, fn func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Errorf("%s: expected panic", name)
			}
		}()
		fn()
	}

	assertPanics("nil endpoint", func() {
		NewRouter().Handle("/x", nil)
	})
	assertPanics("no methods", func() {
		NewRouter().Handle("/x", Unary(func(ctx context.Context, p struct{}) (int, error) {
			return 0, nil
		}).Methods())
	})
}
