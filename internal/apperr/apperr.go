// Package apperr defines the failure kinds shared by the provider clients,
// the article pipelines and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure by where it came from and how callers react to it
type Kind int

const (
	Internal Kind = iota
	Transport
	Provider
	RateLimited
	PaymentRequired
	EmptyResult
	NotFound
	Validation
	Conflict
)

var kindNames = map[Kind]string{
	Internal:        "internal",
	Transport:       "transport",
	Provider:        "provider",
	RateLimited:     "rate_limited",
	PaymentRequired: "payment_required",
	EmptyResult:     "empty_result",
	NotFound:        "not_found",
	Validation:      "validation",
	Conflict:        "conflict",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified failure. Message is safe to show to users and to
// store in an article's error_message column.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Status  int // upstream HTTP status, when one was received
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error without a cause
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(kind Kind, op, message string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or Internal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsProviderFailure reports whether kind belongs to the provider family
// (a remote service answered but signalled failure)
func IsProviderFailure(kind Kind) bool {
	return kind == Provider || kind == RateLimited || kind == PaymentRequired
}

// Message returns the user-facing text for err
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps err onto the response status of the public API
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromStatus classifies a non-success upstream HTTP status
func FromStatus(op string, status int, message string) *Error {
	kind := Provider
	switch status {
	case http.StatusTooManyRequests:
		kind = RateLimited
	case http.StatusPaymentRequired:
		kind = PaymentRequired
	}
	return &Error{Kind: kind, Op: op, Message: message, Status: status}
}
