package api

import (
	"errors"
	"fmt"
)

// FetchContext names the backend operation that failed.
type FetchContext string

const (
	ContextCategories FetchContext = "categories"
	ContextQuestions  FetchContext = "questions"
	ContextSubmit     FetchContext = "submit"
	ContextResult     FetchContext = "result"
)

// ErrSubmitRejected is wrapped by every non-2xx POST /results outcome.
// The status code is kept on the FetchError but never shown to the user.
var ErrSubmitRejected = errors.New("submission rejected")

// FetchError is returned when a backend call fails.
type FetchError struct {
	Context FetchContext
	Status  int // 0 when no response was received
	Err     error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d: %v", e.Context, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Context, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NotFoundError indicates a result id the backend does not know or rejects
// as malformed. It is terminal for the result view.
type NotFoundError struct {
	ResultID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("result %q not found", e.ResultID)
}

// TransportError wraps a network-level failure (no HTTP response).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// InvalidResponseError indicates a 2xx body that does not match the
// expected response shape.
type InvalidResponseError struct {
	Body []byte
	Err  error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid response: %v", e.Err)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
