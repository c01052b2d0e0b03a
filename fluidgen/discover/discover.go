// Package discover scans a project tree for route files and derives route
// prefixes from their folder paths.
//
// Two filename families mark a route file: a bare token file such as
// "_api.go", and a named token file such as "users.api.go". Folder names
// shape the prefix: "(group)" folders organize files without contributing a
// segment, "[name]" folders bind a dynamic path parameter, and "[...name]"
// folders bind a rest parameter capturing the remaining path.
package discover

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/fluidkit/fluid-go/fluidgen/ir"
)

// Options configures a discovery scan. The zero value scans for the default
// tokens with the default exclusions.
type Options struct {
	// Tokens are the filename tokens that mark a route file. Defaults to
	// "api" and "routes".
	Tokens []string

	// Include restricts the scan to paths matching any of these glob
	// patterns. Empty means everything.
	Include []string

	// Exclude drops paths matching any of these glob patterns, in addition
	// to the built-in exclusions.
	Exclude []string

	// Extensions are the file extensions considered, with leading dot.
	// Defaults to ".go".
	Extensions []string
}

var defaultTokens = []string{"api", "routes"}

var defaultExtensions = []string{".go"}

// Directories never descended into, regardless of configuration.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"testdata":     true,
}

// Discover walks the filesystem rooted at fsys and returns the discovered
// routes sorted by file path. Malformed folder conventions are fatal.
func Discover(fsys fs.FS, opts Options) ([]ir.DiscoveredRoute, error) {
	tokens := opts.Tokens
	if len(tokens) == 0 {
		tokens = defaultTokens
	}
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = defaultExtensions
	}

	var routes []ir.DiscoveredRoute
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if p != "." && (skipDirs[name] || strings.HasPrefix(name, ".")) {
				return fs.SkipDir
			}
			return nil
		}

		if !matchesToken(name, tokens, exts) {
			return nil
		}
		if !included(p, opts.Include) || excluded(p, opts.Exclude) {
			return nil
		}

		prefix, err := folderPrefix(path.Dir(p))
		if err != nil {
			return &ir.ConfigError{Context: "route file " + p, Reason: err.Error()}
		}
		routes = append(routes, ir.DiscoveredRoute{FilePath: p, Prefix: prefix})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// WalkDir order is already lexical, but sorting makes the contract
	// explicit and independent of the fs implementation.
	sort.Slice(routes, func(i, j int) bool { return routes[i].FilePath < routes[j].FilePath })
	return routes, nil
}

// matchesToken reports whether a filename belongs to either route file
// family for any of the tokens.
func matchesToken(name string, tokens, exts []string) bool {
	ext := path.Ext(name)
	ok := false
	for _, e := range exts {
		if ext == e {
			ok = true
			break
		}
	}
	if !ok {
		return false
	}
	base := strings.TrimSuffix(name, ext)
	if strings.HasSuffix(base, "_test") {
		return false
	}

	for _, token := range tokens {
		// Family one: _api.go
		if base == "_"+token {
			return true
		}
		// Family two: users.api.go
		if rest, found := strings.CutSuffix(base, "."+token); found && rest != "" {
			return true
		}
	}
	return false
}

// folderPrefix translates a directory path into route prefix segments.
func folderPrefix(dir string) ([]ir.Segment, error) {
	if dir == "." || dir == "" {
		return nil, nil
	}

	var segs []ir.Segment
	seenParams := make(map[string]bool)
	restSeen := false

	for _, folder := range strings.Split(dir, "/") {
		if restSeen {
			// A rest parameter captures the whole remaining path, so
			// folders below it are absorbed into the capture and contribute
			// no further segments.
			continue
		}
		switch {
		case strings.HasPrefix(folder, "(") && strings.HasSuffix(folder, ")"):
			// Route group: organizes files, contributes no segment.
			if len(folder) == 2 {
				return nil, fmt.Errorf("empty route group folder %q", folder)
			}

		case strings.HasPrefix(folder, "[...") && strings.HasSuffix(folder, "]"):
			name := folder[4 : len(folder)-1]
			if name == "" {
				return nil, fmt.Errorf("rest folder %q has no parameter name", folder)
			}
			if seenParams[name] {
				return nil, fmt.Errorf("duplicate route parameter %q", name)
			}
			seenParams[name] = true
			restSeen = true
			segs = append(segs, ir.Rest(name))

		case strings.HasPrefix(folder, "[") && strings.HasSuffix(folder, "]"):
			name := folder[1 : len(folder)-1]
			if name == "" {
				return nil, fmt.Errorf("dynamic folder %q has no parameter name", folder)
			}
			if seenParams[name] {
				return nil, fmt.Errorf("duplicate route parameter %q", name)
			}
			seenParams[name] = true
			segs = append(segs, ir.Dynamic(name))

		default:
			segs = append(segs, ir.Literal(folder))
		}
	}

	return segs, nil
}

func included(p string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	return matchAny(p, patterns)
}

func excluded(p string, patterns []string) bool {
	return matchAny(p, patterns)
}

// matchAny matches a slash path against glob patterns. A pattern matches if
// it matches the whole path or any parent directory of it.
func matchAny(p string, patterns []string) bool {
	for _, pat := range patterns {
		for probe := p; probe != "." && probe != "/"; probe = path.Dir(probe) {
			if ok, err := path.Match(pat, probe); err == nil && ok {
				return true
			}
		}
	}
	return false
}
