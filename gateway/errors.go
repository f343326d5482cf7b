package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a gateway failure.
type Kind int

const (
	KindRequestFailed Kind = iota
	KindNotFound
	KindServerError
	KindMalformedResponse
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not-found"
	case KindServerError:
		return "server-error"
	case KindMalformedResponse:
		return "malformed-response"
	}
	return "request-failed"
}

// APIError is returned by every gateway implementation. Endpoint identifies
// the failing request; Status is 0 when no response was received.
type APIError struct {
	Kind     Kind
	Status   int
	Endpoint string
	Message  string
	Err      error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// StatusError classifies a non-2xx response the way the web frontend does.
func StatusError(endpoint string, status int) *APIError {
	e := &APIError{Status: status, Endpoint: endpoint}
	switch {
	case status == http.StatusNotFound:
		e.Kind, e.Message = KindNotFound, "Resource not found"
	case status >= http.StatusInternalServerError:
		e.Kind, e.Message = KindServerError, "Server error - please try again"
	default:
		e.Kind, e.Message = KindRequestFailed, fmt.Sprintf("Request failed (%d)", status)
	}
	return e
}

func MalformedError(endpoint string, status int, err error) *APIError {
	return &APIError{
		Kind:     KindMalformedResponse,
		Status:   status,
		Endpoint: endpoint,
		Message:  "Invalid response format",
		Err:      err,
	}
}

func TransportError(endpoint string, err error) *APIError {
	return &APIError{
		Kind:     KindRequestFailed,
		Endpoint: endpoint,
		Message:  "Request failed",
		Err:      err,
	}
}

func NotFoundError(endpoint string, err error) *APIError {
	return &APIError{Kind: KindNotFound, Endpoint: endpoint, Message: "Resource not found", Err: err}
}

func ServerError(endpoint string, err error) *APIError {
	return &APIError{Kind: KindServerError, Endpoint: endpoint, Message: "Server error - please try again", Err: err}
}

// KindOf returns the Kind of the first *APIError in err's chain.
func KindOf(err error) (Kind, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return 0, false
}

func IsNotFound(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindNotFound
}

func IsServerError(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindServerError
}

func IsMalformedResponse(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindMalformedResponse
}
