package typescript

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fluidkit/fluid-go/fluidgen/ir"
)

// emitOperation writes the client binding for one operation. Single-method
// operations become a flat function named after the operation; multi-method
// operations become a method-keyed object so call sites read
// updateUser.put(...) / updateUser.patch(...).
func emitOperation(buf *bytes.Buffer, op ir.Operation) {
	if len(op.Methods) == 1 {
		emitJSDoc(buf, op.Doc, "")
		emitFunction(buf, op, op.Methods[0], "export "+fnKeyword(op)+escapeReserved(op.ID), "")
		return
	}

	emitJSDoc(buf, op.Doc, "")
	buf.WriteString("export const ")
	buf.WriteString(escapeReserved(op.ID))
	buf.WriteString(" = {\n")
	for i, method := range op.Methods {
		if i > 0 {
			buf.WriteString("\n")
		}
		decl := strings.ToLower(method)
		if op.Streaming == ir.StreamNone {
			decl = "async " + decl
		}
		emitFunction(buf, op, method, decl, "  ")
	}
	buf.WriteString("};\n")
}

func fnKeyword(op ir.Operation) string {
	if op.Streaming == ir.StreamNone {
		return "async function "
	}
	return "function "
}

// emitFunction writes one callable for a specific HTTP method. decl is the
// text before the parameter list; indent applies to every line.
func emitFunction(buf *bytes.Buffer, op ir.Operation, method, decl, indent string) {
	required, optional := splitParams(op.Parameters)

	var sig []string
	for _, p := range required {
		sig = append(sig, paramIdent(p.Name)+": "+TypeExpr(p.Type))
	}
	switch op.Streaming {
	case ir.StreamSSE:
		sig = append(sig, "handlers: SSEHandlers<"+eventType(op)+">")
	case ir.StreamNDJSON:
		sig = append(sig, "handlers: StreamHandlers<"+eventType(op)+">")
	case ir.StreamRaw:
		sig = append(sig, "handlers: RawHandlers")
	}
	for _, p := range optional {
		sig = append(sig, paramIdent(p.Name)+"?: "+optionalType(p.Type))
	}
	if op.Streaming != ir.StreamSSE {
		// The escape hatch for anything the typed surface does not cover.
		sig = append(sig, "options?: RequestInit")
	}

	buf.WriteString(indent)
	buf.WriteString(decl)
	buf.WriteString("(")
	buf.WriteString(strings.Join(sig, ", "))
	buf.WriteString("): ")
	buf.WriteString(returnType(op))
	buf.WriteString(" {\n")

	emitURL(buf, op, indent+"  ")
	switch op.Streaming {
	case ir.StreamNone:
		emitUnaryBody(buf, op, method, indent+"  ")
	case ir.StreamSSE:
		emitSSEBody(buf, op, indent+"  ")
	default:
		emitReaderBody(buf, op, method, indent+"  ")
	}

	buf.WriteString(indent)
	buf.WriteString("}")
	if indent == "" {
		buf.WriteString("\n")
	} else {
		buf.WriteString(",\n")
	}
}

func returnType(op ir.Operation) string {
	switch op.Streaming {
	case ir.StreamNone:
		return "Promise<ApiResult<" + TypeExpr(op.Returns) + ">>"
	case ir.StreamSSE:
		return "SSEConnection"
	default:
		return "StreamConnection"
	}
}

// eventType is the per-event payload type of a streaming operation.
func eventType(op ir.Operation) string {
	return TypeExpr(op.Returns)
}

// splitParams partitions the parameters the client sends itself: required
// first, then optional, both in declaration order. Cookie parameters are
// excluded; the browser attaches cookies on its own.
func splitParams(params []ir.Parameter) (required, optional []ir.Parameter) {
	for _, p := range params {
		if p.Source == ir.SourceCookie {
			continue
		}
		if p.Required {
			required = append(required, p)
		} else {
			optional = append(optional, p)
		}
	}
	return required, optional
}

// optionalType renders the type of an optional parameter. Absence already
// expresses the null case, so the Optional wrapper is unwrapped.
func optionalType(ref ir.TypeRef) string {
	if opt, ok := ref.(*ir.Optional); ok {
		return TypeExpr(opt.Inner)
	}
	return TypeExpr(ref)
}

// emitURL writes url construction: the path template plus a query string
// when query parameters exist.
func emitURL(buf *bytes.Buffer, op ir.Operation, indent string) {
	fmt.Fprintf(buf, "%slet url = `${getBaseUrl()}%s`;\n", indent, pathTemplate(op.Path))

	var query []ir.Parameter
	for _, p := range op.Parameters {
		if p.Source == ir.SourceQuery {
			query = append(query, p)
		}
	}
	if len(query) == 0 {
		return
	}

	fmt.Fprintf(buf, "%sconst query = new URLSearchParams();\n", indent)
	for _, p := range query {
		ident := paramIdent(p.Name)
		appendLine := fmt.Sprintf("query.append(%q, String(%s));", p.Name, ident)
		if isCollection(p.Type) {
			appendLine = fmt.Sprintf("for (const v of %s) query.append(%q, String(v));", ident, p.Name)
		}
		if p.Required {
			fmt.Fprintf(buf, "%s%s\n", indent, appendLine)
		} else {
			fmt.Fprintf(buf, "%sif (%s !== undefined) %s\n", indent, ident, appendLine)
		}
	}
	fmt.Fprintf(buf, "%sif (query.toString()) url = `${url}?${query.toString()}`;\n", indent)
}

func isCollection(ref ir.TypeRef) bool {
	if opt, ok := ref.(*ir.Optional); ok {
		ref = opt.Inner
	}
	_, ok := ref.(*ir.Collection)
	return ok
}

// pathTemplate converts a route pattern into a template literal. Dynamic
// segments are URI-encoded; rest segments pass through so their slashes
// survive.
func pathTemplate(p string) string {
	segs := strings.Split(p, "/")
	for i, seg := range segs {
		if len(seg) < 2 || seg[0] != '{' || seg[len(seg)-1] != '}' {
			continue
		}
		name := seg[1 : len(seg)-1]
		if rest, ok := strings.CutSuffix(name, "..."); ok {
			segs[i] = "${" + paramIdent(rest) + "}"
		} else {
			segs[i] = "${encodeURIComponent(String(" + paramIdent(name) + "))}"
		}
	}
	return strings.Join(segs, "/")
}

// emitUnaryBody writes the fetch call and response handling for a plain
// request/response operation.
func emitUnaryBody(buf *bytes.Buffer, op ir.Operation, method, indent string) {
	headers, body := headerAndBody(op)

	fmt.Fprintf(buf, "%sconst headers: Record<string, string> = {", indent)
	if body != nil {
		buf.WriteString(` "Content-Type": "application/json",`)
	}
	buf.WriteString(" ...(options?.headers as Record<string, string>) };\n")
	for _, h := range headers {
		ident := paramIdent(h.Name)
		if h.Required {
			fmt.Fprintf(buf, "%sheaders[%q] = String(%s);\n", indent, h.Name, ident)
		} else {
			fmt.Fprintf(buf, "%sif (%s !== undefined) headers[%q] = String(%s);\n", indent, ident, h.Name, ident)
		}
	}

	fmt.Fprintf(buf, "%sconst response = await fetch(url, {\n", indent)
	fmt.Fprintf(buf, "%s  ...options,\n", indent)
	fmt.Fprintf(buf, "%s  method: %q,\n", indent, method)
	fmt.Fprintf(buf, "%s  headers,\n", indent)
	if body != nil {
		fmt.Fprintf(buf, "%s  body: JSON.stringify(%s),\n", indent, paramIdent(body.Name))
	}
	fmt.Fprintf(buf, "%s});\n", indent)
	fmt.Fprintf(buf, "%sreturn handleResponse<%s>(response);\n", indent, TypeExpr(op.Returns))
}

func headerAndBody(op ir.Operation) (headers []ir.Parameter, body *ir.Parameter) {
	for i, p := range op.Parameters {
		switch p.Source {
		case ir.SourceHeader:
			headers = append(headers, p)
		case ir.SourceBody:
			body = &op.Parameters[i]
		}
	}
	return headers, body
}

// emitSSEBody writes an EventSource subscription. Events are delivered as
// they arrive, never buffered; close() tears the connection down.
func emitSSEBody(buf *bytes.Buffer, op ir.Operation, indent string) {
	event := eventType(op)
	fmt.Fprintf(buf, "%sconst source = new EventSource(url);\n", indent)
	fmt.Fprintf(buf, "%ssource.onmessage = (e) => handlers.onMessage(JSON.parse(e.data) as %s);\n", indent, event)
	fmt.Fprintf(buf, "%ssource.onerror = () => handlers.onError?.(new Error(\"event stream error\"));\n", indent)
	fmt.Fprintf(buf, "%ssource.onopen = () => handlers.onOpen?.();\n", indent)
	fmt.Fprintf(buf, "%sreturn { close: () => source.close() };\n", indent)
}

// emitReaderBody writes a ReadableStream consumer for NDJSON and raw
// streams. Chunks flow to the callbacks as they are read; nothing is
// accumulated.
func emitReaderBody(buf *bytes.Buffer, op ir.Operation, method, indent string) {
	fmt.Fprintf(buf, "%sconst controller = new AbortController();\n", indent)
	fmt.Fprintf(buf, "%svoid (async () => {\n", indent)
	fmt.Fprintf(buf, "%s  const response = await fetch(url, { ...options, method: %q, signal: controller.signal });\n", indent, method)
	fmt.Fprintf(buf, "%s  if (!response.ok || !response.body) {\n", indent)
	fmt.Fprintf(buf, "%s    handlers.onError?.(new Error(`stream failed with status ${response.status}`));\n", indent)
	fmt.Fprintf(buf, "%s    return;\n", indent)
	fmt.Fprintf(buf, "%s  }\n", indent)
	fmt.Fprintf(buf, "%s  const reader = response.body.getReader();\n", indent)

	if op.Streaming == ir.StreamRaw {
		fmt.Fprintf(buf, "%s  for (;;) {\n", indent)
		fmt.Fprintf(buf, "%s    const { done, value } = await reader.read();\n", indent)
		fmt.Fprintf(buf, "%s    if (done) break;\n", indent)
		fmt.Fprintf(buf, "%s    handlers.onChunk(value);\n", indent)
		fmt.Fprintf(buf, "%s  }\n", indent)
	} else {
		event := eventType(op)
		fmt.Fprintf(buf, "%s  const decoder = new TextDecoder();\n", indent)
		fmt.Fprintf(buf, "%s  let pending = \"\";\n", indent)
		fmt.Fprintf(buf, "%s  for (;;) {\n", indent)
		fmt.Fprintf(buf, "%s    const { done, value } = await reader.read();\n", indent)
		fmt.Fprintf(buf, "%s    if (done) break;\n", indent)
		fmt.Fprintf(buf, "%s    pending += decoder.decode(value, { stream: true });\n", indent)
		fmt.Fprintf(buf, "%s    const lines = pending.split(\"\\n\");\n", indent)
		fmt.Fprintf(buf, "%s    pending = lines.pop() ?? \"\";\n", indent)
		fmt.Fprintf(buf, "%s    for (const line of lines) {\n", indent)
		fmt.Fprintf(buf, "%s      if (line.trim() !== \"\") handlers.onChunk(JSON.parse(line) as %s);\n", indent, event)
		fmt.Fprintf(buf, "%s    }\n", indent)
		fmt.Fprintf(buf, "%s  }\n", indent)
	}

	fmt.Fprintf(buf, "%s  handlers.onComplete?.();\n", indent)
	fmt.Fprintf(buf, "%s})().catch((err) => handlers.onError?.(err instanceof Error ? err : new Error(String(err))));\n", indent)
	fmt.Fprintf(buf, "%sreturn { close: () => controller.abort() };\n", indent)
}
