package fluid

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// ParamSource is where a parameter is bound from in the HTTP request.
type ParamSource int

const (
	SourceQuery ParamSource = iota
	SourcePath
	SourceHeader
	SourceCookie
	SourceBody
)

// String returns the tag name of the source.
func (s ParamSource) String() string {
	switch s {
	case SourcePath:
		return "path"
	case SourceQuery:
		return "query"
	case SourceHeader:
		return "header"
	case SourceCookie:
		return "cookie"
	case SourceBody:
		return "body"
	default:
		return "unknown"
	}
}

// ParamSpec describes one field of a parameter struct: its wire name, its
// binding source, and its declared default. The field order of the struct is
// the declaration order used everywhere downstream.
type ParamSpec struct {
	Name       string
	Source     ParamSource
	Type       reflect.Type
	Default    string
	HasDefault bool
	Doc        string

	// Index is the field index within the parameter struct, used by the
	// runtime binder to set values.
	Index int
}

// ParamSpecs parses a parameter struct type into its ordered parameter
// specifications. Explicit source tags (path, query, header, cookie, body)
// take precedence; untagged exported fields default to a query parameter
// named after the field in snake case. Fields tagged `-` are skipped.
//
// The zero-field case is valid: an endpoint may take no parameters at all,
// in which case the params type may be struct{} or nil.
func ParamSpecs(t reflect.Type) ([]ParamSpec, error) {
	if t == nil {
		return nil, nil
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("parameter type %s is not a struct", t)
	}

	var specs []ParamSpec
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		spec := ParamSpec{Type: f.Type, Index: i, Doc: f.Tag.Get("doc")}

		name, source, ok := bindingTag(f)
		if !ok {
			continue // tagged `-`
		}
		spec.Name = name
		spec.Source = source

		if def, ok := f.Tag.Lookup("default"); ok {
			spec.Default = def
			spec.HasDefault = true
		}

		specs = append(specs, spec)
	}
	return specs, nil
}

// bindingTag resolves the binding source and wire name for a struct field.
// The third return is false if the field opts out with a `-` tag.
func bindingTag(f reflect.StructField) (string, ParamSource, bool) {
	for _, src := range []ParamSource{SourcePath, SourceQuery, SourceHeader, SourceCookie, SourceBody} {
		tag, ok := f.Tag.Lookup(src.String())
		if !ok {
			continue
		}
		if tag == "-" {
			return "", 0, false
		}
		name := tag
		if name == "" {
			name = snakeCase(f.Name)
		}
		return name, src, true
	}
	return snakeCase(f.Name), SourceQuery, true
}

// snakeCase converts an exported Go field name to its wire form,
// e.g. UserID -> user_id, IncludeEmail -> include_email.
func snakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			// Start a new word at an upper rune unless it continues an
			// acronym run (the next rune is also upper or absent).
			if i > 0 && (unicode.IsLower(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PathParamNames extracts the {name} and {name...} placeholders from a route
// path pattern, in order of appearance.
func PathParamNames(path string) []string {
	var names []string
	for _, seg := range strings.Split(path, "/") {
		if len(seg) >= 2 && seg[0] == '{' && seg[len(seg)-1] == '}' {
			name := seg[1 : len(seg)-1]
			name = strings.TrimSuffix(name, "...")
			if name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}
