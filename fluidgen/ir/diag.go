package ir

import "fmt"

// Warning codes for non-fatal diagnostics. Non-fatal diagnostics degrade or
// skip the affected element and are reported once at the end of the pass.
const (
	WarnUnmappedExternalType = "UNMAPPED_EXTERNAL_TYPE"
	WarnRouterNotFound       = "ROUTER_NOT_FOUND"
	WarnOperationSkipped     = "OPERATION_SKIPPED"
)

// Warning represents a non-fatal issue encountered during a pass.
type Warning struct {
	// Code is a machine-readable warning identifier.
	Code string

	// Message is a human-readable description.
	Message string

	// File is the source unit that triggered the warning, if applicable.
	File string

	// Operation is the operation that triggered the warning, if applicable.
	Operation string

	// TypeName is the type that triggered the warning, if applicable.
	TypeName string
}

// TypeResolutionError reports an annotation shape the resolver cannot
// translate. It is fatal: a partially-correct IR is worse than no IR, so the
// whole pass aborts and nothing is written.
type TypeResolutionError struct {
	// TypeName describes the offending annotation.
	TypeName string

	// Reason says why it could not be resolved.
	Reason string
}

func (e *TypeResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve type %s: %s", e.TypeName, e.Reason)
}

// RouteParameterMismatchError reports a folder-derived route parameter that
// an operation's signature does not accept. It is fatal: a mismatched path
// parameter is a silent-404 class of bug, so startup fails rather than
// skipping the route.
type RouteParameterMismatchError struct {
	File      string
	Operation string
	Parameter string
}

func (e *RouteParameterMismatchError) Error() string {
	return fmt.Sprintf("route file %s: operation %s is missing route parameter %q",
		e.File, e.Operation, e.Parameter)
}

// ConfigError reports an invalid endpoint or generator configuration
// detected before generation proceeds, such as a declared default on a
// path parameter.
type ConfigError struct {
	Context string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Context, e.Reason)
}
