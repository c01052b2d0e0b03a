package typescript

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/fluidkit/fluid-go/fluidgen/ir"
)

// TypeExpr renders a type reference as a TypeScript type expression.
// External tokens render through the runtime's FluidTypes namespace so their
// provenance survives into generated code.
func TypeExpr(ref ir.TypeRef) string {
	switch r := ref.(type) {
	case *ir.Primitive:
		return r.Primitive.String()
	case *ir.Collection:
		elem := TypeExpr(r.Element)
		if needsParens(r.Element) {
			elem = "(" + elem + ")"
		}
		return elem + "[]"
	case *ir.Mapping:
		return "Record<string, " + TypeExpr(r.Value) + ">"
	case *ir.Optional:
		return TypeExpr(r.Inner) + " | null"
	case *ir.Union:
		parts := make([]string, len(r.Members))
		for i, m := range r.Members {
			parts[i] = TypeExpr(m)
		}
		return strings.Join(parts, " | ")
	case *ir.SchemaRef:
		return escapeReserved(r.ID)
	case *ir.External:
		return "FluidTypes." + r.Token
	default:
		return "unknown"
	}
}

// needsParens reports whether a type expression must be parenthesized when
// used as an array element.
func needsParens(ref ir.TypeRef) bool {
	switch r := ref.(type) {
	case *ir.Optional:
		return true
	case *ir.Union:
		return len(r.Members) > 1
	default:
		return false
	}
}

// formatLiteral renders an enum member value as a TypeScript literal.
func formatLiteral(value any) string {
	switch v := value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// TypeScript reserved words that cannot be used as bare identifiers.
var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true,
	"const": true, "continue": true, "debugger": true, "default": true,
	"delete": true, "do": true, "else": true, "enum": true,
	"export": true, "extends": true, "false": true, "finally": true,
	"for": true, "function": true, "if": true, "implements": true,
	"import": true, "in": true, "instanceof": true, "interface": true,
	"let": true, "new": true, "null": true, "package": true,
	"private": true, "protected": true, "public": true, "return": true,
	"static": true, "super": true, "switch": true, "this": true,
	"throw": true, "true": true, "try": true, "type": true,
	"typeof": true, "var": true, "void": true, "while": true,
	"with": true, "yield": true,
}

// escapeReserved appends an underscore to reserved words.
func escapeReserved(name string) string {
	if reservedWords[name] {
		return name + "_"
	}
	return name
}

// propertyName renders a field name as an object property, quoting it when
// it is not a valid bare identifier.
func propertyName(name string) string {
	if name == "" || reservedWords[name] {
		return fmt.Sprintf("%q", name)
	}
	for i, r := range name {
		valid := unicode.IsLetter(r) || r == '_' || r == '$' ||
			(i > 0 && unicode.IsDigit(r))
		if !valid {
			return fmt.Sprintf("%q", name)
		}
	}
	return name
}

// paramIdent renders a wire parameter name as a valid TypeScript parameter
// identifier.
func paramIdent(name string) string {
	if name == "" {
		return "_"
	}
	var b strings.Builder
	for i, r := range name {
		switch {
		case unicode.IsLetter(r), r == '_', r == '$':
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return escapeReserved(b.String())
}
