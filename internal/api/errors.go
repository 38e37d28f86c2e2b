package api

import (
	"errors"
	"net/http"
)

// ErrFetch matches every *FetchError via errors.Is.
var ErrFetch = errors.New("api fetch failed")

// FetchError reports a failed call to the REST service. Err is set for
// transport and decoding failures; otherwise StatusCode holds the non-2xx
// status of the response.
type FetchError struct {
	Op         string
	StatusCode int
	StatusText string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return "API Error: " + e.Err.Error()
	}
	return "API Error: " + e.StatusText
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.StatusCode == http.StatusNotFound
}
