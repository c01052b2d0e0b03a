// Package reqinfo carries the raw HTTP exchange through the handler
// context. It lives outside the root package so test helpers can build
// compatible contexts without an import cycle.
package reqinfo

import (
	"context"
	"net/http"
)

type contextKey struct{ name string }

var (
	requestKey = &contextKey{"request"}
	writerKey  = &contextKey{"writer"}
)

// NewContext attaches the request and response writer to ctx.
func NewContext(ctx context.Context, w http.ResponseWriter, r *http.Request) context.Context {
	ctx = context.WithValue(ctx, writerKey, w)
	return context.WithValue(ctx, requestKey, r)
}

// Request returns the HTTP request stored in ctx, or nil.
func Request(ctx context.Context) *http.Request {
	r, _ := ctx.Value(requestKey).(*http.Request)
	return r
}

// Writer returns the response writer stored in ctx, or nil.
func Writer(ctx context.Context) http.ResponseWriter {
	w, _ := ctx.Value(writerKey).(http.ResponseWriter)
	return w
}
