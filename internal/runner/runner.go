// Package runner executes a generation pass inside the user's own program.
//
// Generation needs the live route table, which only exists once the user's
// package has built its app. The runner compiles that package with Go's
// -overlay flag: files defining main() are swapped for copies with main()
// stripped, and a generated entry point is added that calls the discovered
// app constructor and runs the generator. This works with package main and
// with unexported constructors.
package runner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"

	"github.com/fluidkit/fluid-go/internal/exportscan"
)

// Options configures one runner execution.
type Options struct {
	// Export is the app constructor to call, of kind KindApp.
	Export exportscan.Export

	// PkgDir is the directory of the package defining the export.
	PkgDir string

	// ConfigPath is the project config file passed to the generated entry
	// point. Relative paths resolve against PkgDir at run time.
	ConfigPath string
}

const entryFile = "fluid_gen_entry_.go"

// Exec builds the overlaid package and runs it, returning the combined
// output of whichever step failed or, on success, of the generation pass.
func Exec(opts Options) ([]byte, error) {
	if opts.Export.Kind != exportscan.KindApp {
		return nil, fmt.Errorf("export %s is %s, need a *fluid.App constructor", opts.Export.Name, opts.Export.Kind)
	}

	tmpDir, err := os.MkdirTemp("", "fluid-gen-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	overlay := make(map[string]string)

	files, err := filepath.Glob(filepath.Join(opts.PkgDir, "*.go"))
	if err != nil {
		return nil, fmt.Errorf("glob: %w", err)
	}
	for _, file := range files {
		if strings.HasSuffix(file, "_test.go") {
			continue
		}
		stripped, ok, err := stripMain(file)
		if err != nil {
			return nil, fmt.Errorf("process %s: %w", file, err)
		}
		if !ok {
			continue
		}
		tmpFile := filepath.Join(tmpDir, filepath.Base(file))
		if err := os.WriteFile(tmpFile, stripped, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", tmpFile, err)
		}
		overlay[file] = tmpFile
	}

	entry, err := renderEntry(opts)
	if err != nil {
		return nil, fmt.Errorf("render entry point: %w", err)
	}
	entryPath := filepath.Join(tmpDir, entryFile)
	if err := os.WriteFile(entryPath, entry, 0o644); err != nil {
		return nil, fmt.Errorf("write entry point: %w", err)
	}
	overlay[filepath.Join(opts.PkgDir, entryFile)] = entryPath

	overlayJSON, err := json.Marshal(struct {
		Replace map[string]string `json:"Replace"`
	}{Replace: overlay})
	if err != nil {
		return nil, fmt.Errorf("marshal overlay: %w", err)
	}
	overlayPath := filepath.Join(tmpDir, "overlay.json")
	if err := os.WriteFile(overlayPath, overlayJSON, 0o644); err != nil {
		return nil, fmt.Errorf("write overlay: %w", err)
	}

	binary := filepath.Join(tmpDir, "fluid-gen")
	build := exec.Command("go", "build", "-mod=mod", "-overlay", overlayPath, "-o", binary, ".")
	build.Dir = opts.PkgDir
	build.Env = append(os.Environ(), "GOWORK=off")
	if out, err := build.CombinedOutput(); err != nil {
		return out, fmt.Errorf("build: %w\n%s", err, out)
	}

	run := exec.Command(binary)
	run.Dir = opts.PkgDir
	out, err := run.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("run: %w\n%s", err, out)
	}
	return out, nil
}

// stripMain returns the file's source with func main() removed and any
// imports that became unused pruned. The second return reports whether the
// file had a main().
func stripMain(filename string) ([]byte, bool, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, nil, parser.ParseComments)
	if err != nil {
		return nil, false, err
	}

	found := false
	var kept []ast.Decl
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if ok && fn.Name.Name == "main" && fn.Recv == nil {
			found = true
			continue
		}
		kept = append(kept, decl)
	}
	if !found {
		return nil, false, nil
	}
	f.Decls = kept

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, f); err != nil {
		return nil, false, err
	}
	// Removing main() can orphan imports, which would not compile.
	src, err := imports.Process(filename, buf.Bytes(), nil)
	if err != nil {
		return nil, false, err
	}
	return src, true, nil
}

func renderEntry(opts Options) ([]byte, error) {
	data := struct {
		Constructor string
		ConfigPath  string
	}{
		Constructor: opts.Export.Name,
		ConfigPath:  opts.ConfigPath,
	}
	var buf bytes.Buffer
	if err := entryTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var entryTemplate = template.Must(template.New("entry").Parse(`package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fluidkit/fluid-go/fluidgen"
	"github.com/fluidkit/fluid-go/fluidgen/sink"
)

func main() {
	cfg, err := fluidgen.LoadConfig({{printf "%q" .ConfigPath}})
	if err != nil {
		fmt.Fprintf(os.Stderr, "fluid gen: %v\n", err)
		os.Exit(1)
	}
	out := sink.NewFilesystemSink(cfg.Output.Root)
	report, err := fluidgen.Generate(context.Background(), {{.Constructor}}(), cfg, out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fluid gen: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%d operation(s), %d schema(s), %d file(s) written\n",
		report.Operations, report.Schemas, len(report.Files))
}
`))
