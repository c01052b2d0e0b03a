package fluid

import (
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"
)

var (
	loggerMu  sync.RWMutex
	pkgLogger *slog.Logger
)

// SetLogger overrides the package logger. The default is slog.Default.
func SetLogger(l *slog.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	pkgLogger = l
}

func logger() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	if pkgLogger != nil {
		return pkgLogger
	}
	return slog.Default()
}

// MountedRouter is one router bound into an App, either manually under a URL
// prefix or by filesystem discovery through its originating route file.
type MountedRouter struct {
	// Prefix is the URL prefix the router is served under. Empty for the
	// root. For discovered routers this is derived from the folder path.
	Prefix string

	// File is the project-relative path of the route file this router was
	// registered for. Empty for manually mounted routers.
	File string

	Router RouteRegistrable
}

// App holds the route table: routers mounted under URL prefixes plus routers
// registered against route files for discovery binding. Generation takes a
// read-only snapshot; the table itself is guarded for concurrent use.
type App struct {
	mu       sync.RWMutex
	mounts   []MountedRouter
	byFile   map[string]RouteRegistrable
	fileSeen []string // registration order of route files
}

// NewApp returns an empty app.
func NewApp() *App {
	return &App{byFile: make(map[string]RouteRegistrable)}
}

// Mount binds a router under a URL prefix for serving and introspection.
func (a *App) Mount(prefix string, r RouteRegistrable) *App {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mounts = append(a.mounts, MountedRouter{Prefix: strings.TrimSuffix(prefix, "/"), Router: r})
	return a
}

// Register associates a router with the project-relative route file that
// defines it. Discovery later resolves the file's folder path to a route
// prefix and validates the router's operations against it.
func (a *App) Register(file string, r RouteRegistrable) *App {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.byFile[file]; !ok {
		a.fileSeen = append(a.fileSeen, file)
	}
	a.byFile[file] = r
	return a
}

// Lookup returns the router registered for a route file.
func (a *App) Lookup(file string) (RouteRegistrable, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	r, ok := a.byFile[file]
	return r, ok
}

// Snapshot returns a copy of the mounted routers. The copy is safe to walk
// while the app keeps serving; a generation pass takes exactly one snapshot
// and never observes later registrations.
func (a *App) Snapshot() []MountedRouter {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]MountedRouter, len(a.mounts))
	copy(out, a.mounts)
	return out
}

// RegisteredFiles returns the route files in registration order.
func (a *App) RegisteredFiles() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, len(a.fileSeen))
	copy(out, a.fileSeen)
	return out
}

// Handler builds an http.Handler serving every mounted router and every
// router registered against a route file. File-registered routers serve
// under the prefix their folder path encodes.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	serve := func(prefix string, r RouteRegistrable) {
		for _, route := range r.Operations() {
			path := prefix + route.Path
			if path == "" {
				path = "/"
			}
			for _, method := range route.Methods {
				mux.Handle(method+" "+path, route.Endpoint())
			}
		}
	}
	for _, m := range a.Snapshot() {
		serve(m.Prefix, m.Router)
	}
	for _, file := range a.RegisteredFiles() {
		r, _ := a.Lookup(file)
		prefix, err := fileRoutePrefix(file)
		if err != nil {
			logger().Warn("route file not servable", "file", file, "error", err)
			continue
		}
		serve(prefix, r)
	}
	return mux
}

// fileRoutePrefix converts a route file's folder path into a ServeMux
// pattern prefix: "(group)" folders contribute nothing, "[name]" becomes a
// {name} wildcard and "[...name]" a {name...} rest wildcard.
func fileRoutePrefix(file string) (string, error) {
	dir := path.Dir(file)
	if dir == "." {
		return "", nil
	}
	var b strings.Builder
	for _, folder := range strings.Split(dir, "/") {
		switch {
		case strings.HasPrefix(folder, "(") && strings.HasSuffix(folder, ")"):
			// Route group, no URL segment.
		case strings.HasPrefix(folder, "[...") && strings.HasSuffix(folder, "]"):
			name := folder[4 : len(folder)-1]
			if name == "" {
				return "", fmt.Errorf("rest folder %q has no parameter name", folder)
			}
			b.WriteString("/{" + name + "...}")
		case strings.HasPrefix(folder, "[") && strings.HasSuffix(folder, "]"):
			name := folder[1 : len(folder)-1]
			if name == "" {
				return "", fmt.Errorf("dynamic folder %q has no parameter name", folder)
			}
			b.WriteString("/{" + name + "}")
		default:
			b.WriteString("/" + folder)
		}
	}
	return b.String(), nil
}
