package ir

import (
	"reflect"
	"strings"
	"testing"
)

func TestValidateCollectsAllErrors(t *testing.T) {
	x := &IR{
		Schemas: []Schema{
			&ObjectSchema{ID: "user", Fields: []Field{
				{Name: "friend", Type: &SchemaRef{ID: "missing"}},
			}},
			&ObjectSchema{ID: "user"},
		},
		Operations: []Operation{
			{ID: "getThing", Returns: &Collection{Element: &SchemaRef{ID: "alsoMissing"}}},
		},
	}

	errs := x.Validate()
	if len(errs) != 3 {
		t.Fatalf("got %d errors, want 3: %v", len(errs), errs)
	}

	var all []string
	for _, err := range errs {
		all = append(all, err.Error())
	}
	joined := strings.Join(all, "\n")
	for _, want := range []string{"duplicate schema identity: user", `"missing"`, `"alsoMissing"`} {
		if !strings.Contains(joined, want) {
			t.Errorf("errors missing %q:\n%s", want, joined)
		}
	}
}

func TestValidateCleanIR(t *testing.T) {
	x := &IR{
		Schemas: []Schema{
			&ObjectSchema{ID: "user", Fields: []Field{
				{Name: "name", Type: &Primitive{Primitive: String}, Required: true},
			}},
			&EnumSchema{ID: "color", Members: []EnumMember{{Name: "Red", Value: "red"}}},
		},
		Operations: []Operation{
			{ID: "getUser", Returns: &SchemaRef{ID: "user"}},
		},
	}
	if errs := x.Validate(); len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestReferencedSchemasFirstVisitOrder(t *testing.T) {
	ref := &Union{Members: []TypeRef{
		&SchemaRef{ID: "b"},
		&Mapping{Key: &Primitive{Primitive: String}, Value: &SchemaRef{ID: "a"}},
		&Optional{Inner: &SchemaRef{ID: "b"}},
		&Collection{Element: &SchemaRef{ID: "c"}},
	}}

	got := ReferencedSchemas(ref)
	want := []string{"b", "a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReferencedSchemas() = %v, want %v", got, want)
	}
}

func TestReferencedSchemasNil(t *testing.T) {
	if got := ReferencedSchemas(nil); len(got) != 0 {
		t.Errorf("want empty, got %v", got)
	}
}

func TestDiscoveredRoutePathPrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix []Segment
		want   string
	}{
		{name: "empty", prefix: nil, want: ""},
		{name: "literals", prefix: []Segment{Literal("api"), Literal("users")}, want: "/api/users"},
		{name: "dynamic", prefix: []Segment{Literal("shop"), Dynamic("category")}, want: "/shop/{category}"},
		{name: "rest", prefix: []Segment{Literal("files"), Rest("path")}, want: "/files/{path...}"},
	}
	for _, tt := range tests {
		d := DiscoveredRoute{Prefix: tt.prefix}
		if got := d.PathPrefix(); got != tt.want {
			t.Errorf("%s: PathPrefix() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDiscoveredRouteParamNames(t *testing.T) {
	d := DiscoveredRoute{Prefix: []Segment{
		Literal("shop"), Dynamic("category"), Literal("x"), Rest("path"),
	}}
	got := d.ParamNames()
	if !reflect.DeepEqual(got, []string{"category", "path"}) {
		t.Errorf("ParamNames() = %v", got)
	}
}
