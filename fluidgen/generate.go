package fluidgen

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/fluidkit/fluid-go"
	"github.com/fluidkit/fluid-go/fluidgen/discover"
	"github.com/fluidkit/fluid-go/fluidgen/introspect"
	"github.com/fluidkit/fluid-go/fluidgen/ir"
	"github.com/fluidkit/fluid-go/fluidgen/resolve"
	"github.com/fluidkit/fluid-go/fluidgen/sink"
	"github.com/fluidkit/fluid-go/fluidgen/typescript"
)

// Report summarizes a completed generation pass.
type Report struct {
	// Files lists the written output paths in write order.
	Files []string

	// Schemas and Operations count what the pass introspected.
	Schemas    int
	Operations int

	// Warnings aggregated across the whole pass.
	Warnings []ir.Warning
}

// Generate runs one generation pass against the live route table, scanning
// the configured discovery root on the local filesystem.
func Generate(ctx context.Context, app *fluid.App, cfg *Config, out sink.OutputSink) (*Report, error) {
	return GenerateFS(ctx, app, os.DirFS(cfg.Discovery.Root), cfg, out)
}

// GenerateFS is Generate with an explicit filesystem for route discovery.
// Rendering happens fully in memory; the sink is only touched once the
// whole pass has succeeded.
func GenerateFS(ctx context.Context, app *fluid.App, fsys fs.FS, cfg *Config, out sink.OutputSink) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	in := introspect.New(resolve.Boundary{Prefixes: cfg.Boundary.Prefixes})

	for _, m := range app.Snapshot() {
		if err := in.Mounted(m); err != nil {
			return nil, err
		}
	}

	if cfg.Discovery.Enabled {
		routes, err := discover.Discover(fsys, discover.Options{
			Tokens:  cfg.Discovery.Tokens,
			Include: cfg.Discovery.Include,
			Exclude: cfg.Discovery.Exclude,
		})
		if err != nil {
			return nil, err
		}
		for _, d := range routes {
			router, ok := app.Lookup(d.FilePath)
			if !ok {
				in.RouterMissing(d)
				continue
			}
			if err := in.Discovered(d, router); err != nil {
				return nil, err
			}
		}
	}

	x := in.IR()
	if errs := x.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("introspection produced invalid IR: %w", errors.Join(errs...))
	}

	files, err := typescript.Generate(x, typescript.Options{
		Placement: typescript.Placement(cfg.Output.Placement),
		BaseURL:   cfg.BaseURL(),
	})
	if err != nil {
		return nil, err
	}

	report := &Report{
		Schemas:    len(x.Schemas),
		Operations: len(x.Operations),
		Warnings:   x.Warnings,
	}
	for _, f := range files {
		if err := out.WriteFile(ctx, f.Path, f.Content); err != nil {
			return nil, err
		}
		report.Files = append(report.Files, f.Path)
	}

	logReport(report)
	return report, nil
}

// logReport emits the end-of-pass summary: one line per warning, then the
// totals.
func logReport(r *Report) {
	for _, w := range r.Warnings {
		attrs := []any{"code", w.Code}
		if w.File != "" {
			attrs = append(attrs, "file", w.File)
		}
		if w.Operation != "" {
			attrs = append(attrs, "operation", w.Operation)
		}
		if w.TypeName != "" {
			attrs = append(attrs, "type", w.TypeName)
		}
		slog.Warn(w.Message, attrs...)
	}
	slog.Info("generation complete",
		"operations", r.Operations,
		"schemas", r.Schemas,
		"files", len(r.Files),
		"warnings", len(r.Warnings),
	)
}
