// Package typescript renders an introspection IR into TypeScript source
// files: one module per source unit plus a shared runtime, written so that
// identical IR always produces byte-identical output.
package typescript

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/fluidkit/fluid-go/fluidgen/ir"
)

// Placement selects where generated files land relative to the output root.
type Placement string

const (
	// PlacementMirror writes <unit>.ts under the output root, mirroring the
	// source layout.
	PlacementMirror Placement = "mirror"

	// PlacementColocate writes <unit>/api.ts so generated clients sit next
	// to the code they describe.
	PlacementColocate Placement = "colocate"
)

// Options configures one render pass.
type Options struct {
	Placement Placement

	// BaseURL is the default API base URL baked into the runtime.
	BaseURL string
}

// File is one rendered output file with a slash-separated relative path.
type File struct {
	Path    string
	Content []byte
}

const header = "// Code generated by fluidgen. DO NOT EDIT."

// Generate renders the IR into TypeScript files. The runtime module is
// always first; unit files follow in first-appearance order.
func Generate(x *ir.IR, opts Options) ([]File, error) {
	if opts.Placement == "" {
		opts.Placement = PlacementMirror
	}
	if errs := x.Validate(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("invalid IR: %s", strings.Join(msgs, "; "))
	}

	files := []File{{Path: RuntimeFile, Content: RenderRuntime(opts.BaseURL)}}
	for _, unit := range unitOrder(x) {
		f, err := renderUnit(x, unit, opts.Placement)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// unitOrder returns the units of the IR in first-appearance order, schemas
// before operations.
func unitOrder(x *ir.IR) []string {
	var units []string
	seen := make(map[string]bool)
	add := func(u string) {
		if !seen[u] {
			seen[u] = true
			units = append(units, u)
		}
	}
	for _, s := range x.Schemas {
		add(s.SchemaUnit())
	}
	for _, op := range x.Operations {
		add(op.Unit)
	}
	return units
}

// unitPath maps a unit to its output file path under the active placement.
func unitPath(unit string, p Placement) string {
	if p == PlacementColocate {
		if unit == "index" {
			return "api.ts"
		}
		return unit + "/api.ts"
	}
	return unit + ".ts"
}

// renderUnit renders one unit file: header, imports, schema declarations,
// then client bindings.
func renderUnit(x *ir.IR, unit string, placement Placement) (File, error) {
	filePath := unitPath(unit, placement)

	var schemas []ir.Schema
	for _, s := range x.Schemas {
		if s.SchemaUnit() == unit {
			schemas = append(schemas, s)
		}
	}
	var ops []ir.Operation
	for _, op := range x.Operations {
		if op.Unit == unit {
			ops = append(ops, op)
		}
	}

	var body bytes.Buffer
	for _, s := range schemas {
		body.WriteString("\n")
		emitSchema(&body, s)
	}
	for _, op := range ops {
		body.WriteString("\n")
		emitOperation(&body, op)
	}

	var buf bytes.Buffer
	buf.WriteString(header)
	buf.WriteString("\n")
	writeImports(&buf, x, filePath, unit, schemas, ops, placement)
	buf.Write(body.Bytes())

	return File{Path: filePath, Content: buf.Bytes()}, nil
}

// writeImports writes the import block: the runtime import first, then one
// import per foreign unit in first-reference order, each listing its schemas
// in first-reference order.
func writeImports(buf *bytes.Buffer, x *ir.IR, filePath, unit string, schemas []ir.Schema, ops []ir.Operation, placement Placement) {
	if rt := runtimeImports(x, schemas, ops); len(rt) > 0 {
		fmt.Fprintf(buf, "import { %s } from %q;\n",
			strings.Join(rt, ", "), relImport(filePath, RuntimeFile))
	}

	// First-reference order over everything this file renders.
	var refIDs []string
	seen := make(map[string]bool)
	collect := func(ref ir.TypeRef) {
		for _, id := range ir.ReferencedSchemas(ref) {
			if !seen[id] {
				seen[id] = true
				refIDs = append(refIDs, id)
			}
		}
	}
	for _, s := range schemas {
		if obj, ok := s.(*ir.ObjectSchema); ok {
			for _, f := range obj.Fields {
				collect(f.Type)
			}
		}
	}
	for _, op := range ops {
		for _, p := range op.Parameters {
			collect(p.Type)
		}
		collect(op.Returns)
	}

	var unitSeq []string
	byUnit := make(map[string][]string)
	for _, id := range refIDs {
		s := x.FindSchema(id)
		if s == nil || s.SchemaUnit() == unit {
			continue
		}
		u := s.SchemaUnit()
		if _, ok := byUnit[u]; !ok {
			unitSeq = append(unitSeq, u)
		}
		byUnit[u] = append(byUnit[u], escapeReserved(id))
	}
	for _, u := range unitSeq {
		fmt.Fprintf(buf, "import type { %s } from %q;\n",
			strings.Join(byUnit[u], ", "), relImport(filePath, unitPath(u, placement)))
	}
}

// runtimeImports lists the runtime symbols a unit file needs, in a fixed
// order: values first, then types.
func runtimeImports(x *ir.IR, schemas []ir.Schema, ops []ir.Operation) []string {
	var unary, sse, ndjson, raw bool
	for _, op := range ops {
		switch op.Streaming {
		case ir.StreamNone:
			unary = true
		case ir.StreamSSE:
			sse = true
		case ir.StreamNDJSON:
			ndjson = true
		case ir.StreamRaw:
			raw = true
		}
	}

	external := false
	markExternal := func(ref ir.TypeRef) {
		walkTypes(ref, func(r ir.TypeRef) {
			if _, ok := r.(*ir.External); ok {
				external = true
			}
		})
	}
	for _, s := range schemas {
		if obj, ok := s.(*ir.ObjectSchema); ok {
			for _, f := range obj.Fields {
				markExternal(f.Type)
			}
		}
	}
	for _, op := range ops {
		for _, p := range op.Parameters {
			markExternal(p.Type)
		}
		markExternal(op.Returns)
	}

	var out []string
	if unary || sse || ndjson || raw {
		out = append(out, "getBaseUrl")
	}
	if unary {
		out = append(out, "handleResponse", "type ApiResult")
	}
	if external {
		out = append(out, "type FluidTypes")
	}
	if sse {
		out = append(out, "type SSEHandlers", "type SSEConnection")
	}
	if ndjson {
		out = append(out, "type StreamHandlers")
	}
	if raw {
		out = append(out, "type RawHandlers")
	}
	if ndjson || raw {
		out = append(out, "type StreamConnection")
	}
	return out
}

// walkTypes visits every node of a type reference tree.
func walkTypes(ref ir.TypeRef, visit func(ir.TypeRef)) {
	if ref == nil {
		return
	}
	visit(ref)
	switch r := ref.(type) {
	case *ir.Collection:
		walkTypes(r.Element, visit)
	case *ir.Mapping:
		walkTypes(r.Key, visit)
		walkTypes(r.Value, visit)
	case *ir.Optional:
		walkTypes(r.Inner, visit)
	case *ir.Union:
		for _, m := range r.Members {
			walkTypes(m, visit)
		}
	}
}

// relImport computes the module specifier for an import from one generated
// file to another.
func relImport(fromFile, toFile string) string {
	fromDir := path.Dir(fromFile)
	toDir := path.Dir(toFile)

	var fromParts, toParts []string
	if fromDir != "." {
		fromParts = strings.Split(fromDir, "/")
	}
	if toDir != "." {
		toParts = strings.Split(toDir, "/")
	}

	common := 0
	for common < len(fromParts) && common < len(toParts) && fromParts[common] == toParts[common] {
		common++
	}

	var parts []string
	for range fromParts[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, toParts[common:]...)
	parts = append(parts, strings.TrimSuffix(path.Base(toFile), ".ts"))

	rel := strings.Join(parts, "/")
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel
}
