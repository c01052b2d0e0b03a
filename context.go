package fluid

import (
	"context"
	"net/http"

	"github.com/fluidkit/fluid-go/internal/reqinfo"
)

// RequestFrom returns the underlying HTTP request for a handler invocation,
// or nil when ctx did not come from a fluid endpoint. Typed parameter
// binding covers the common cases; this is the escape hatch for the rest,
// such as reading the remote address or a rarely used header.
func RequestFrom(ctx context.Context) *http.Request {
	return reqinfo.Request(ctx)
}

// WriterFrom returns the underlying response writer, or nil. Writing to it
// from a unary handler bypasses the JSON encoding of the return value; it
// exists for handlers that need to set extra response headers.
func WriterFrom(ctx context.Context) http.ResponseWriter {
	return reqinfo.Writer(ctx)
}
