// Package testutil provides helpers for testing fluid endpoints: a fluent
// request builder and assertions over JSON responses and error envelopes.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// RequestBuilder constructs test requests against fluid handlers.
type RequestBuilder struct {
	method     string
	path       string
	body       []byte
	headers    map[string]string
	query      url.Values
	cookies    []*http.Cookie
	pathValues map[string]string
}

// NewRequest starts a builder for a GET request to "/".
func NewRequest() *RequestBuilder {
	return &RequestBuilder{
		method:     "GET",
		path:       "/",
		headers:    make(map[string]string),
		query:      make(url.Values),
		pathValues: make(map[string]string),
	}
}

// GET sets the method to GET and the request path.
func (b *RequestBuilder) GET(path string) *RequestBuilder {
	b.method = "GET"
	b.path = path
	return b
}

// POST sets the method to POST and the request path.
func (b *RequestBuilder) POST(path string) *RequestBuilder {
	b.method = "POST"
	b.path = path
	return b
}

// Method sets an arbitrary HTTP method and the request path.
func (b *RequestBuilder) Method(method, path string) *RequestBuilder {
	b.method = method
	b.path = path
	return b
}

// WithJSON marshals v as the request body and sets the content type.
func (b *RequestBuilder) WithJSON(v any) *RequestBuilder {
	data, _ := json.Marshal(v)
	b.body = data
	b.headers["Content-Type"] = "application/json"
	return b
}

// WithBody sets a raw request body.
func (b *RequestBuilder) WithBody(body string) *RequestBuilder {
	b.body = []byte(body)
	return b
}

// WithHeader adds a request header.
func (b *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	b.headers[key] = value
	return b
}

// WithQuery adds a query parameter.
func (b *RequestBuilder) WithQuery(key, value string) *RequestBuilder {
	b.query.Add(key, value)
	return b
}

// WithCookie adds a cookie to the request.
func (b *RequestBuilder) WithCookie(name, value string) *RequestBuilder {
	b.cookies = append(b.cookies, &http.Cookie{Name: name, Value: value})
	return b
}

// WithPathValue binds a path parameter directly, for exercising an endpoint
// without routing it through a ServeMux pattern.
func (b *RequestBuilder) WithPathValue(name, value string) *RequestBuilder {
	b.pathValues[name] = value
	return b
}

// Build materializes the request and a recorder to serve it into.
func (b *RequestBuilder) Build() (*http.Request, *httptest.ResponseRecorder) {
	path := b.path
	if len(b.query) > 0 {
		path += "?" + b.query.Encode()
	}

	var req *http.Request
	if len(b.body) > 0 {
		req = httptest.NewRequest(b.method, path, bytes.NewReader(b.body))
	} else {
		req = httptest.NewRequest(b.method, path, nil)
	}
	for k, v := range b.headers {
		req.Header.Set(k, v)
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	for name, value := range b.pathValues {
		req.SetPathValue(name, value)
	}
	return req, httptest.NewRecorder()
}

// AssertStatus fails the test when the recorded status differs.
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Errorf("status = %d, want %d\nbody: %s", w.Code, want, w.Body.String())
	}
}

// AssertJSONResponse compares the response body with want, both normalized
// through JSON so formatting and field order do not matter.
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, want any) {
	t.Helper()

	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	wantJSON, _ := json.Marshal(want)
	var wantNorm, gotNorm any
	json.Unmarshal(wantJSON, &wantNorm)
	if err := json.Unmarshal(w.Body.Bytes(), &gotNorm); err != nil {
		t.Fatalf("response is not JSON: %v\nbody: %s", err, w.Body.String())
	}

	wantStr, _ := json.MarshalIndent(wantNorm, "", "  ")
	gotStr, _ := json.MarshalIndent(gotNorm, "", "  ")
	if string(wantStr) != string(gotStr) {
		t.Errorf("response mismatch:\nwant:\n%s\ngot:\n%s", wantStr, gotStr)
	}
}

// ErrorEnvelope mirrors the JSON error body fluid endpoints write.
type ErrorEnvelope struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// AssertError decodes the error envelope and checks its code.
func AssertError(t *testing.T, w *httptest.ResponseRecorder, wantCode string) *ErrorEnvelope {
	t.Helper()

	var env ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("decode error envelope: %v\nbody: %s", err, w.Body.String())
	}
	if env.Code != wantCode {
		t.Errorf("error code = %q, want %q (message: %s)", env.Code, wantCode, env.Message)
	}
	return &env
}

// DecodeJSON decodes the response body into v.
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v\nbody: %s", err, w.Body.String())
	}
}
