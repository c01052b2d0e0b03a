// Package exportscan finds router constructors by signature.
//
// A route file exports its router through a function of the form
// func() *fluid.Router; an application entry point exports func() *fluid.App.
// The signature is the marker, no annotations are needed. The scan is
// static, so it works without running the target program.
package exportscan

import (
	"fmt"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/packages"
)

const fluidPkgPath = "github.com/fluidkit/fluid-go"

// Kind classifies a discovered export.
type Kind int

const (
	KindRouter Kind = iota // func() *fluid.Router
	KindApp                // func() *fluid.App
)

func (k Kind) String() string {
	switch k {
	case KindRouter:
		return "*fluid.Router"
	case KindApp:
		return "*fluid.App"
	default:
		return "unknown"
	}
}

// Export is one discovered constructor function.
type Export struct {
	Name    string
	Kind    Kind
	Package string
	Pos     token.Position
}

// Result holds the exports of one scan.
type Result struct {
	Exports    []Export
	ModulePath string
	ModuleDir  string
}

// RouterFiles returns the source files that define router constructors,
// keyed by absolute path.
func (r *Result) RouterFiles() map[string][]Export {
	out := make(map[string][]Export)
	for _, e := range r.Exports {
		if e.Kind == KindRouter {
			out[e.Pos.Filename] = append(out[e.Pos.Filename], e)
		}
	}
	return out
}

// Scan loads the packages matching pattern (go command semantics, e.g.
// "./...") relative to dir and collects constructor exports.
func Scan(dir, pattern string) (*Result, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles |
			packages.NeedTypes | packages.NeedModule,
		Dir: dir,
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages match %q", pattern)
	}

	result := &Result{}
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("package %s: %v", pkg.PkgPath, pkg.Errors[0])
		}
		if result.ModulePath == "" && pkg.Module != nil {
			result.ModulePath = pkg.Module.Path
			result.ModuleDir = pkg.Module.Dir
		}

		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			fn, ok := scope.Lookup(name).(*types.Func)
			if !ok {
				continue
			}
			sig, ok := fn.Type().(*types.Signature)
			if !ok || sig.Recv() != nil {
				continue
			}
			if sig.Params().Len() != 0 || sig.Results().Len() != 1 {
				continue
			}
			kind, ok := classify(sig.Results().At(0).Type())
			if !ok {
				continue
			}
			result.Exports = append(result.Exports, Export{
				Name:    fn.Name(),
				Kind:    kind,
				Package: pkg.PkgPath,
				Pos:     pkg.Fset.Position(fn.Pos()),
			})
		}
	}
	return result, nil
}

// classify reports whether a type is *fluid.Router or *fluid.App.
func classify(t types.Type) (Kind, bool) {
	ptr, ok := t.(*types.Pointer)
	if !ok {
		return 0, false
	}
	named, ok := ptr.Elem().(*types.Named)
	if !ok {
		return 0, false
	}
	obj := named.Obj()
	if obj.Pkg() == nil || obj.Pkg().Path() != fluidPkgPath {
		return 0, false
	}
	switch obj.Name() {
	case "Router":
		return KindRouter, true
	case "App":
		return KindApp, true
	}
	return 0, false
}
