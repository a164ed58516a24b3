package kit

import (
	"errors"
	"net/http"

	"go.uber.org/zap"
)

const internalErrorMsg = "Something went wrong!"

// HTTPError is an error that knows which status code it maps to.
type HTTPError struct {
	Status int
	Msg    string
	Err    error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *HTTPError) Unwrap() error { return e.Err }

func NewHTTPError(status int, msg string) *HTTPError {
	return &HTTPError{Status: status, Msg: msg}
}

func NotFound(msg string) *HTTPError   { return NewHTTPError(http.StatusNotFound, msg) }
func BadRequest(msg string) *HTTPError { return NewHTTPError(http.StatusBadRequest, msg) }
func Forbidden(msg string) *HTTPError  { return NewHTTPError(http.StatusForbidden, msg) }

// WriteErr is the single place where handler errors become responses.
// Anything that is not an *HTTPError is reported as a 500 and logged.
func WriteErr(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var he *HTTPError
	if errors.As(err, &he) && he.Status > 0 {
		WriteError(w, r, he.Status, he.Msg)
		return
	}

	if log != nil {
		log.Error("unhandled error",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
	}
	WriteError(w, r, http.StatusInternalServerError, internalErrorMsg)
}
