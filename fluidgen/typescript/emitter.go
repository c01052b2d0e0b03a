package typescript

import (
	"bytes"
	"strings"

	"github.com/fluidkit/fluid-go/fluidgen/ir"
)

// emitSchema writes one top-level schema declaration.
func emitSchema(buf *bytes.Buffer, s ir.Schema) {
	switch t := s.(type) {
	case *ir.ObjectSchema:
		emitObject(buf, t)
	case *ir.EnumSchema:
		emitEnum(buf, t)
	}
}

// emitObject writes an object schema as an exported interface. A field is
// optional when it may be omitted; nullability is part of its type.
func emitObject(buf *bytes.Buffer, s *ir.ObjectSchema) {
	emitJSDoc(buf, s.Doc, "")
	buf.WriteString("export interface ")
	buf.WriteString(escapeReserved(s.ID))
	buf.WriteString(" {\n")
	for _, f := range s.Fields {
		emitJSDoc(buf, f.Doc, "  ")
		buf.WriteString("  ")
		buf.WriteString(propertyName(f.Name))
		if !f.Required {
			buf.WriteString("?")
		}
		buf.WriteString(": ")
		buf.WriteString(TypeExpr(f.Type))
		buf.WriteString(";\n")
	}
	buf.WriteString("}\n")
}

// emitEnum writes an enum schema as a union of its literal values, verbatim
// and in declaration order.
func emitEnum(buf *bytes.Buffer, s *ir.EnumSchema) {
	emitJSDoc(buf, s.Doc, "")
	buf.WriteString("export type ")
	buf.WriteString(escapeReserved(s.ID))
	buf.WriteString(" = ")
	for i, m := range s.Members {
		if i > 0 {
			buf.WriteString(" | ")
		}
		buf.WriteString(formatLiteral(m.Value))
	}
	buf.WriteString(";\n")
}

// emitJSDoc writes a JSDoc comment at the given indent. Empty docs emit
// nothing.
func emitJSDoc(buf *bytes.Buffer, doc, indent string) {
	if doc == "" {
		return
	}
	lines := strings.Split(strings.TrimSpace(doc), "\n")
	if len(lines) == 1 {
		buf.WriteString(indent)
		buf.WriteString("/** ")
		buf.WriteString(lines[0])
		buf.WriteString(" */\n")
		return
	}
	buf.WriteString(indent)
	buf.WriteString("/**\n")
	for _, line := range lines {
		buf.WriteString(indent)
		buf.WriteString(" * ")
		buf.WriteString(strings.TrimSpace(line))
		buf.WriteString("\n")
	}
	buf.WriteString(indent)
	buf.WriteString(" */\n")
}
