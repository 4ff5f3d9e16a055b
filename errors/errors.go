package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseValidate    Phase = "validate"    // host validity check
	PhaseCompile     Phase = "compile"     // module construction
	PhaseInstantiate Phase = "instantiate" // linking and start-up
	PhaseInvoke      Phase = "invoke"      // export calls and reads
	PhaseAssert      Phase = "assert"      // assertion evaluation
	PhaseLoad        Phase = "load"        // script and file loading
	PhaseParse       Phase = "parse"       // JSON and binary scanning
	PhaseHost        Phase = "host"        // spectest environment
	PhaseConfig      Phase = "config"      // configuration
)

// Kind categorizes the error.
//
// The first five kinds are the classifications a conformance step can
// expect. The rest describe harness-level problems and never satisfy an
// assertion.
type Kind string

const (
	KindCompile    Kind = "compile"    // decode or validation failure
	KindLink       Kind = "link"       // import resolution or type mismatch
	KindTrap       Kind = "trap"       // runtime trap
	KindExhaustion Kind = "exhaustion" // resource bound exceeded
	KindAssertion  Kind = "assertion"  // observed outcome differs from expected

	KindInternal     Kind = "internal"
	KindNotFound     Kind = "not_found"
	KindInvalidInput Kind = "invalid_input"
	KindTypeMismatch Kind = "type_mismatch"
	KindUnsupported  Kind = "unsupported"
	KindInvalidData  Kind = "invalid_data"
)

// Error is the structured error type used throughout the harness
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	Loc      string
	Detail   string
	Expected string
	Actual   string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Loc != "" {
		b.WriteString(" at ")
		b.WriteString(e.Loc)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Expected != "" || e.Actual != "" {
		b.WriteString(" (expected ")
		b.WriteString(e.Expected)
		b.WriteString(", got ")
		b.WriteString(e.Actual)
		b.WriteByte(')')
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// KindOf returns the kind of the outermost *Error in err's chain, or ""
// if there is none.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// HasKind reports whether err carries the given kind.
func HasKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// WithLoc returns err with its location set, when err is an *Error
// without one. Other errors are wrapped as internal errors.
func WithLoc(err error, loc string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		if e.Loc != "" {
			return err
		}
		c := *e
		c.Loc = loc
		return &c
	}
	return &Error{Phase: PhaseAssert, Kind: KindInternal, Loc: loc, Cause: err}
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Loc sets the script location
func (b *Builder) Loc(loc string) *Builder {
	b.err.Loc = loc
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Expected sets the expected and observed renderings
func (b *Builder) Expected(expected, actual string) *Builder {
	b.err.Expected = expected
	b.err.Actual = actual
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Compile creates a decode or validation error
func Compile(cause error) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindCompile,
		Detail: "compile module",
		Cause:  cause,
	}
}

// Link creates a link error raised during instantiation
func Link(cause error) *Error {
	return &Error{
		Phase:  PhaseInstantiate,
		Kind:   KindLink,
		Detail: "link module",
		Cause:  cause,
	}
}

// Trap creates a runtime trap error
func Trap(phase Phase, reason string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTrap,
		Detail: reason,
		Cause:  cause,
	}
}

// Exhaustion creates a resource exhaustion error
func Exhaustion(phase Phase, reason string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindExhaustion,
		Detail: reason,
		Cause:  cause,
	}
}

// Assertion creates an assertion failure. message uses the wording of the
// web harness, e.g. "Wasm trap expected".
func Assertion(message string, cause error) *Error {
	return &Error{
		Phase:  PhaseAssert,
		Kind:   KindAssertion,
		Detail: message,
		Cause:  cause,
	}
}

// Mismatch creates an assertion failure for a return value comparison
func Mismatch(expected, actual string) *Error {
	return &Error{
		Phase:    PhaseAssert,
		Kind:     KindAssertion,
		Detail:   fmt.Sprintf("Wasm return value %s expected, got %s", expected, actual),
		Expected: expected,
		Actual:   actual,
	}
}

// Internal creates a harness-level failure
func Internal(phase Phase, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInternal,
		Detail: detail,
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// TypeMismatch creates a type mismatch error for a value passed where
// another type is required
func TypeMismatch(phase Phase, what string, got, want string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Detail: fmt.Sprintf("%s: cannot use %s as %s", what, got, want),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Load creates a script loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}
