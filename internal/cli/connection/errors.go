package connection

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a normalized error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNoResponse
	KindServerError
	KindRequestSetup
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNoResponse:
		return "no_response"
	case KindServerError:
		return "server_error"
	case KindRequestSetup:
		return "request_setup"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Messages used when the server gives none.
const (
	MsgNetworkUnreachable = "network unreachable"
	MsgNoResponse         = "no response from server"
)

// Error is the normalized error returned by Client for every failure.
type Error struct {
	Kind      Kind
	Status    int    // HTTP status, 0 when no response was received
	Message   string // user-facing message
	Detail    string // server "detail" text, verbatim
	RequestID string
	Cause     error
}

// Error implements the error interface. Server and validation errors read
// as the server's message; local failures append their cause.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	switch e.Kind {
	case KindNoResponse, KindRequestSetup:
		if e.Cause != nil {
			return msg + ": " + e.Cause.Error()
		}
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by Kind, and by Status when the target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Status == 0 || t.Status == e.Status
}

// Sentinels for errors.Is.
var (
	ErrNoResponse   = &Error{Kind: KindNoResponse, Message: MsgNoResponse}
	ErrServerError  = &Error{Kind: KindServerError, Message: "server error"}
	ErrRequestSetup = &Error{Kind: KindRequestSetup, Message: "invalid request"}
	ErrValidation   = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrUnauthorized = &Error{Kind: KindServerError, Status: http.StatusUnauthorized, Message: "unauthorized"}
	ErrNotFound     = &Error{Kind: KindServerError, Status: http.StatusNotFound, Message: "not found"}
)

// KindOf returns the Kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// IsUnauthorized reports whether the server rejected the credentials.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// NewValidationError wraps cause as a validation error with message.
// Status, detail and request ID are carried over when cause is an *Error.
func NewValidationError(message string, cause error) *Error {
	e := &Error{Kind: KindValidation, Message: message, Cause: cause}
	var src *Error
	if errors.As(cause, &src) {
		e.Status = src.Status
		e.Detail = src.Detail
		e.RequestID = src.RequestID
	}
	return e
}

// NewSetupError reports input rejected before a request was sent.
func NewSetupError(message string, cause error) *Error {
	return &Error{Kind: KindRequestSetup, Message: message, Cause: cause}
}

func setupError(format string, cause error, args ...any) *Error {
	return &Error{
		Kind:    KindRequestSetup,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// ServerErrorBody is the error body shape of the API. Detail is either a
// string or, for request validation failures, a list of {loc, msg, type}.
type ServerErrorBody struct {
	Detail  json.RawMessage `json:"detail,omitempty"`
	Message string          `json:"message,omitempty"`
}

type validationItem struct {
	Msg string `json:"msg"`
}

// DetailText returns the detail field as text, or "" when absent, blank or
// of an unknown shape. A string detail is returned exactly as sent.
func (b ServerErrorBody) DetailText() string {
	if len(b.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(b.Detail, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return ""
		}
		return s
	}

	var items []validationItem
	if err := json.Unmarshal(b.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// serverError builds the error for a non-2xx response. The message is the
// detail text, else the message field, else "server error <status>".
func serverError(status int, body []byte) *Error {
	e := &Error{Kind: KindServerError, Status: status}

	var parsed ServerErrorBody
	if len(body) > 0 && json.Unmarshal(body, &parsed) == nil {
		e.Detail = parsed.DetailText()
		switch {
		case e.Detail != "":
			e.Message = e.Detail
		case strings.TrimSpace(parsed.Message) != "":
			e.Message = strings.TrimSpace(parsed.Message)
		}
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("server error %d", status)
	}
	return e
}
