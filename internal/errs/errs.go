// Package errs defines the closed error taxonomy shared by every stage of
// arithflow: parsing, compilation, and remote execution all fail into one
// of these kinds, and the HTTP surface maps each kind to a stable status
// code and message fragment.
//
// Kinds are declared once with NewKind and instantiated per occurrence
// with New or Wrap, mirroring the construct-once / instantiate-many
// convention this corpus uses for its own error registries.
package errs

import "fmt"

// Kind identifies one of the error categories in spec §7. Kind values are
// comparable and are the basis for HTTP status mapping in internal/httpapi.
type Kind struct {
	name   string
	format string
}

// NewKind declares a new error category. format is used as a fmt.Sprintf
// format string by New; it may contain no verbs at all if the kind never
// carries arguments.
func NewKind(name, format string) *Kind {
	return &Kind{name: name, format: format}
}

// Name returns the stable machine-readable identifier of the kind (e.g.
// "DIVIDE_BY_ZERO"), used in log fields and in worker reply envelopes.
func (k *Kind) Name() string { return k.name }

// New builds an Error of this kind, formatting args into the kind's
// message format.
func (k *Kind) New(args ...any) *Error {
	return &Error{kind: k, message: fmt.Sprintf(k.format, args...)}
}

// Wrap builds an Error of this kind that carries cause as its underlying
// error, for propagation from a lower layer (e.g. a broker transport
// failure becoming BROKER_UNAVAILABLE).
func (k *Kind) Wrap(cause error) *Error {
	return &Error{kind: k, message: k.format, cause: cause}
}

// Is reports whether err is an *Error of this kind. It also matches
// errors wrapped with fmt.Errorf("%w", ...) around an *Error of this kind.
// Kinds are compared by name, not pointer identity: an Error reconstructed
// by Remote from a worker reply carries a freshly allocated *Kind with the
// same name as the registered sentinel, and must still match it.
func (k *Kind) Is(err error) bool {
	var e *Error
	for err != nil {
		if ae, ok := err.(*Error); ok {
			e = ae
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return e != nil && e.kind.name == k.name
}

// Remote reconstructs an Error from a worker reply's (kind, message) pair
// (internal/worker.ReplyError), for the coordinator to surface a remote
// failure without re-interpreting message as a format string.
func Remote(kind, message string) *Error {
	return &Error{kind: &Kind{name: kind, format: "%s"}, message: message}
}

// Error is a single occurrence of a Kind, optionally wrapping a cause.
type Error struct {
	kind    *Kind
	message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

// Unwrap exposes the wrapped cause, if any, for errors.Is/As interop.
func (e *Error) Unwrap() error { return e.cause }

// Kind returns the category this error belongs to.
func (e *Error) Kind() *Kind { return e.kind }

// The closed set of error kinds from spec §7. Each maps 1:1 to an HTTP
// status and message fragment in internal/httpapi.
var (
	SyntaxEmpty         = NewKind("SYNTAX_EMPTY", "Expression cannot be empty")
	SyntaxInvalidChars  = NewKind("SYNTAX_INVALID_CHARS", "Expression contains invalid characters: %q")
	SyntaxMalformed     = NewKind("SYNTAX_MALFORMED", "Syntax error: %s")
	UnsupportedOperator = NewKind("UNSUPPORTED_OPERATOR", "Unsupported operator: %q")
	UnaryOnComplex      = NewKind("UNARY_ON_COMPLEX", "Unary subtraction on complex expression is not supported")
	DivideByZero        = NewKind("DIVIDE_BY_ZERO", "Cannot divide by zero")
	WorkerTypeError     = NewKind("WORKER_TYPE_ERROR", "%s")
	Timeout             = NewKind("TIMEOUT", "timeout waiting for workflow result")
	BrokerUnavailable   = NewKind("BROKER_UNAVAILABLE", "broker unavailable")
	Internal            = NewKind("INTERNAL", "internal error")
)
