package reddit

import "net/http"

// FetchErrorMessage is the only detail of a fetch failure shown to callers.
const FetchErrorMessage = "Failed to fetch Reddit thread"

// FetchError reports any failure to obtain or decode a thread.
type FetchError struct {
	cause error
}

func (e *FetchError) Error() string {
	return FetchErrorMessage
}

func (e *FetchError) Unwrap() error {
	return e.cause
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return "reddit returned " + http.StatusText(e.code)
}

// NewFetchError wraps cause as a FetchError.
func NewFetchError(cause error) *FetchError {
	return &FetchError{cause: cause}
}
