package fluid

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"github.com/fluidkit/fluid-go/internal/reqinfo"
)

var (
	validate     = validator.New()
	queryDecoder = schema.NewDecoder()
)

func init() {
	queryDecoder.SetAliasTag("query")
	queryDecoder.IgnoreUnknownKeys(true)
}

// EndpointMeta is the static description of an endpoint, consumed by the
// route introspector. It is produced once at registration time and never
// mutated afterwards.
type EndpointMeta struct {
	Methods  []string
	Params   reflect.Type
	Response reflect.Type
	Stream   StreamKind
	Doc      string
}

// Endpoint is the interface for registered handlers. It is exported so users
// can pass handlers to Router.Handle, but the concrete implementations live
// in this package.
type Endpoint interface {
	Describe() EndpointMeta
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

// UnaryHandler implements Endpoint for a plain request/response pair.
type UnaryHandler[P, R any] struct {
	fn      func(context.Context, P) (R, error)
	methods []string
	doc     string
}

// Unary creates a request/response endpoint from a typed function.
// The default HTTP method is GET.
func Unary[P, R any](fn func(context.Context, P) (R, error)) *UnaryHandler[P, R] {
	return &UnaryHandler[P, R]{fn: fn, methods: []string{"GET"}}
}

// Methods sets the HTTP method set, preserving the given order.
func (h *UnaryHandler[P, R]) Methods(m ...string) *UnaryHandler[P, R] {
	h.methods = m
	return h
}

// Doc sets the endpoint documentation emitted into generated clients.
func (h *UnaryHandler[P, R]) Doc(s string) *UnaryHandler[P, R] {
	h.doc = s
	return h
}

// Describe implements Endpoint.
func (h *UnaryHandler[P, R]) Describe() EndpointMeta {
	var p P
	var res R
	return EndpointMeta{
		Methods:  h.methods,
		Params:   reflect.TypeOf(p),
		Response: reflect.TypeOf(res),
		Stream:   StreamNone,
		Doc:      h.doc,
	}
}

// ServeHTTP implements the generic glue: bind, validate, call, encode.
func (h *UnaryHandler[P, R]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, err := bindParams[P](r)
	if err != nil {
		writeError(w, DefaultErrorTransformer(err))
		return
	}
	res, err := h.fn(reqinfo.NewContext(r.Context(), w, r), p)
	if err != nil {
		writeError(w, DefaultErrorTransformer(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		// Response may be partially written; nothing to do but note it.
		logger().Error("encode response", "error", err)
	}
}

// SSEHandler implements Endpoint for text/event-stream responses.
// The handler function receives a send callback; each sent event is written
// as one SSE message and flushed immediately.
type SSEHandler[P, E any] struct {
	fn      func(context.Context, P, func(E) error) error
	methods []string
	doc     string
}

// SSE creates a server-sent-events endpoint. The per-event payload type E is
// what generated clients decode from each message.
func SSE[P, E any](fn func(context.Context, P, func(E) error) error) *SSEHandler[P, E] {
	return &SSEHandler[P, E]{fn: fn, methods: []string{"GET"}}
}

// Methods sets the HTTP method set, preserving the given order.
func (h *SSEHandler[P, E]) Methods(m ...string) *SSEHandler[P, E] {
	h.methods = m
	return h
}

// Doc sets the endpoint documentation.
func (h *SSEHandler[P, E]) Doc(s string) *SSEHandler[P, E] {
	h.doc = s
	return h
}

// Describe implements Endpoint.
func (h *SSEHandler[P, E]) Describe() EndpointMeta {
	var p P
	var e E
	return EndpointMeta{
		Methods:  h.methods,
		Params:   reflect.TypeOf(p),
		Response: reflect.TypeOf(e),
		Stream:   StreamSSE,
		Doc:      h.doc,
	}
}

// ServeHTTP implements Endpoint.
func (h *SSEHandler[P, E]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, err := bindParams[P](r)
	if err != nil {
		writeError(w, DefaultErrorTransformer(err))
		return
	}
	fl, ok := w.(http.Flusher)
	if !ok {
		writeError(w, NewError(CodeInternal, "response writer does not support streaming"))
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	ctx := reqinfo.NewContext(r.Context(), w, r)
	send := func(event E) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := json.Marshal(event)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		fl.Flush()
		return nil
	}
	if err := h.fn(ctx, p, send); err != nil {
		// Headers are already out; the disconnect is all we can signal.
		logger().Warn("sse handler", "path", r.URL.Path, "error", err)
	}
}

// NDJSONHandler implements Endpoint for newline-delimited JSON streams.
type NDJSONHandler[P, C any] struct {
	fn      func(context.Context, P, func(C) error) error
	methods []string
	doc     string
}

// NDJSON creates a line-delimited JSON streaming endpoint. The per-line
// chunk type C is what generated clients decode from each line.
func NDJSON[P, C any](fn func(context.Context, P, func(C) error) error) *NDJSONHandler[P, C] {
	return &NDJSONHandler[P, C]{fn: fn, methods: []string{"GET"}}
}

// Methods sets the HTTP method set, preserving the given order.
func (h *NDJSONHandler[P, C]) Methods(m ...string) *NDJSONHandler[P, C] {
	h.methods = m
	return h
}

// Doc sets the endpoint documentation.
func (h *NDJSONHandler[P, C]) Doc(s string) *NDJSONHandler[P, C] {
	h.doc = s
	return h
}

// Describe implements Endpoint.
func (h *NDJSONHandler[P, C]) Describe() EndpointMeta {
	var p P
	var c C
	return EndpointMeta{
		Methods:  h.methods,
		Params:   reflect.TypeOf(p),
		Response: reflect.TypeOf(c),
		Stream:   StreamNDJSON,
		Doc:      h.doc,
	}
}

// ServeHTTP implements Endpoint.
func (h *NDJSONHandler[P, C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, err := bindParams[P](r)
	if err != nil {
		writeError(w, DefaultErrorTransformer(err))
		return
	}
	fl, _ := w.(http.Flusher)
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	ctx := reqinfo.NewContext(r.Context(), w, r)
	enc := json.NewEncoder(w)
	send := func(chunk C) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := enc.Encode(chunk); err != nil {
			return err
		}
		if fl != nil {
			fl.Flush()
		}
		return nil
	}
	if err := h.fn(ctx, p, send); err != nil {
		logger().Warn("ndjson handler", "path", r.URL.Path, "error", err)
	}
}

// RawHandler implements Endpoint for opaque binary streams.
type RawHandler[P any] struct {
	fn          func(context.Context, P, io.Writer) error
	methods     []string
	doc         string
	contentType string
}

// Raw creates an opaque streaming endpoint that writes directly to the
// response body. Generated clients expose the raw byte stream.
func Raw[P any](fn func(context.Context, P, io.Writer) error) *RawHandler[P] {
	return &RawHandler[P]{fn: fn, methods: []string{"GET"}, contentType: "application/octet-stream"}
}

// Methods sets the HTTP method set, preserving the given order.
func (h *RawHandler[P]) Methods(m ...string) *RawHandler[P] {
	h.methods = m
	return h
}

// Doc sets the endpoint documentation.
func (h *RawHandler[P]) Doc(s string) *RawHandler[P] {
	h.doc = s
	return h
}

// ContentType overrides the response content type.
func (h *RawHandler[P]) ContentType(ct string) *RawHandler[P] {
	h.contentType = ct
	return h
}

// Describe implements Endpoint.
func (h *RawHandler[P]) Describe() EndpointMeta {
	var p P
	return EndpointMeta{
		Methods: h.methods,
		Params:  reflect.TypeOf(p),
		Stream:  StreamRaw,
		Doc:     h.doc,
	}
}

// ServeHTTP implements Endpoint.
func (h *RawHandler[P]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, err := bindParams[P](r)
	if err != nil {
		writeError(w, DefaultErrorTransformer(err))
		return
	}
	w.Header().Set("Content-Type", h.contentType)
	if err := h.fn(reqinfo.NewContext(r.Context(), w, r), p, w); err != nil {
		logger().Warn("raw handler", "path", r.URL.Path, "error", err)
	}
}

// bindParams decodes a request into a parameter struct: query values through
// the gorilla/schema decoder, path/header/cookie values by field, the body
// field from JSON, declared defaults for anything left unset, and finally
// struct validation.
func bindParams[P any](r *http.Request) (P, error) {
	var p P
	t := reflect.TypeOf(p)
	if t == nil {
		return p, nil
	}

	ptr := reflect.New(t)
	specs, err := ParamSpecs(t)
	if err != nil {
		return p, NewError(CodeInternal, err.Error())
	}

	if err := queryDecoder.Decode(ptr.Interface(), r.URL.Query()); err != nil {
		return p, Errorf(CodeInvalidArgument, "decode query: %v", err)
	}

	for _, spec := range specs {
		field := ptr.Elem().Field(spec.Index)
		switch spec.Source {
		case SourcePath:
			if v := r.PathValue(spec.Name); v != "" {
				if err := setFromString(field, v); err != nil {
					return p, Errorf(CodeInvalidArgument, "path parameter %s: %v", spec.Name, err)
				}
			}
		case SourceHeader:
			if v := r.Header.Get(spec.Name); v != "" {
				if err := setFromString(field, v); err != nil {
					return p, Errorf(CodeInvalidArgument, "header %s: %v", spec.Name, err)
				}
			}
		case SourceCookie:
			if c, err := r.Cookie(spec.Name); err == nil {
				if err := setFromString(field, c.Value); err != nil {
					return p, Errorf(CodeInvalidArgument, "cookie %s: %v", spec.Name, err)
				}
			}
		case SourceBody:
			if r.Body != nil && r.ContentLength != 0 {
				if err := json.NewDecoder(r.Body).Decode(field.Addr().Interface()); err != nil {
					return p, Errorf(CodeInvalidArgument, "decode body: %v", err)
				}
			}
		}
		if spec.HasDefault && field.IsZero() {
			if err := setFromString(field, spec.Default); err != nil {
				return p, Errorf(CodeInternal, "default for %s: %v", spec.Name, err)
			}
		}
	}

	if err := validate.Struct(ptr.Interface()); err != nil {
		return p, err
	}
	return ptr.Elem().Interface().(P), nil
}

// setFromString assigns a string form to a field of scalar or pointer kind.
func setFromString(v reflect.Value, s string) error {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		v.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		v.SetBool(b)
	default:
		return fmt.Errorf("cannot set %s from string", v.Type())
	}
	return nil
}
