package fluid

import (
	"reflect"
	"testing"
)

type searchParams struct {
	UserID       int    `path:"user_id"`
	Query        string `query:"q"`
	PageSize     int    `query:"" default:"25"`
	Trace        string `header:"X-Trace-Id"`
	Session      string `cookie:"session"`
	Body         any    `body:""`
	IncludeEmail bool
	Skipped      string `query:"-"`
	hidden       int
}

func TestParamSpecs(t *testing.T) {
	specs, err := ParamSpecs(reflect.TypeOf(searchParams{}))
	if err != nil {
		t.Fatal(err)
	}

	want := []struct {
		name   string
		source ParamSource
	}{
		{"user_id", SourcePath},
		{"q", SourceQuery},
		{"page_size", SourceQuery},
		{"X-Trace-Id", SourceHeader},
		{"session", SourceCookie},
		{"body", SourceBody},
		{"include_email", SourceQuery},
	}
	if len(specs) != len(want) {
		t.Fatalf("got %d specs, want %d: %+v", len(specs), len(want), specs)
	}
	for i, w := range want {
		if specs[i].Name != w.name || specs[i].Source != w.source {
			t.Errorf("specs[%d] = {%s %s}, want {%s %s}",
				i, specs[i].Name, specs[i].Source, w.name, w.source)
		}
	}

	if !specs[2].HasDefault || specs[2].Default != "25" {
		t.Errorf("page_size default = %+v, want 25", specs[2])
	}
}

func TestParamSpecsNonStruct(t *testing.T) {
	if _, err := ParamSpecs(reflect.TypeOf(42)); err == nil {
		t.Fatal("want error for non-struct parameter type")
	}
	specs, err := ParamSpecs(nil)
	if err != nil || specs != nil {
		t.Errorf("nil type: got %v, %v; want nil, nil", specs, err)
	}
}

func TestSnakeCase(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Name", "name"},
		{"UserID", "user_id"},
		{"IncludeEmail", "include_email"},
		{"HTTPTimeout", "http_timeout"},
		{"APIVersion", "api_version"},
		{"A", "a"},
	}
	for _, tt := range tests {
		if got := snakeCase(tt.in); got != tt.want {
			t.Errorf("snakeCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPathParamNames(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"/users/{user_id}", []string{"user_id"}},
		{"/shop/{category}/items/{id}", []string{"category", "id"}},
		{"/files/{path...}", []string{"path"}},
		{"/static", nil},
	}
	for _, tt := range tests {
		got := PathParamNames(tt.path)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("PathParamNames(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
