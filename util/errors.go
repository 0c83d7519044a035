package util

import (
	"fmt"

	"gdl/enums"

	"github.com/pkg/errors"
)

type Error struct {
	Kind       enums.ErrorKind
	Message    string
	Resource   string // "gallery", "post", ... for not-found errors
	StatusCode int    // http status, if any
	URL        string
	Cause      error
}

func (err *Error) Error() string {
	return err.Message
}

func (err *Error) Unwrap() error {
	return err.Cause
}

// Is matches sentinel errors by kind and message.
func (err *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == err.Kind && t.Message == err.Message
}

// ExitCode is the process exit bit reported for this kind of error.
func (err *Error) ExitCode() int {
	return ExitCodeFor(err.Kind)
}

func ExitCodeFor(kind enums.ErrorKind) int {
	switch kind {
	case enums.ErrorKindExtraction, enums.ErrorKindHTTP:
		return 4
	case enums.ErrorKindNotFound:
		return 8
	case enums.ErrorKindAuthentication, enums.ErrorKindAuthorization, enums.ErrorKindAuthRequired:
		return 16
	case enums.ErrorKindInput:
		return 32
	case enums.ErrorKindNoExtractor:
		return 64
	default:
		return 1
	}
}

var (
	ErrUnsupportedVersion = &Error{Kind: enums.ErrorKindInput, Message: "unsupported message version"}
	ErrMaxDepth           = &Error{Kind: enums.ErrorKindInput, Message: "maximum recursion depth exceeded"}
	ErrDownloadFailed     = &Error{Kind: enums.ErrorKindExtraction, Message: "download failed"}
	ErrUnsupportedScheme  = &Error{Kind: enums.ErrorKindInput, Message: "unsupported url scheme"}
	ErrMissingDelimiter   = &Error{Kind: enums.ErrorKindExtraction, Message: "expected markup not found"}
)

func NewExtractionError(format string, args ...any) *Error {
	return &Error{
		Kind:    enums.ErrorKindExtraction,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewRequestError reports a request that failed without a response,
// keeping the transport error in the chain.
func NewRequestError(url string, cause error) *Error {
	return &Error{
		Kind:    enums.ErrorKindExtraction,
		Message: fmt.Sprintf("request to %s failed: %v", url, cause),
		URL:     url,
		Cause:   cause,
	}
}

func NewHTTPError(statusCode int, status, url string) *Error {
	if status == "" {
		status = fmt.Sprintf("%d", statusCode)
	}
	return &Error{
		Kind:       enums.ErrorKindHTTP,
		Message:    fmt.Sprintf("%s for url: %s", status, url),
		StatusCode: statusCode,
		URL:        url,
	}
}

func NewNotFoundError(resource string) *Error {
	if resource == "" {
		resource = "resource"
	}
	return &Error{
		Kind:     enums.ErrorKindNotFound,
		Message:  "requested " + resource + " could not be found",
		Resource: resource,
	}
}

func NewAuthenticationError(message string) *Error {
	if message == "" {
		message = "invalid or missing login credentials"
	}
	return &Error{Kind: enums.ErrorKindAuthentication, Message: message}
}

func NewAuthorizationError(message string) *Error {
	if message == "" {
		message = "insufficient privileges to access the specified resource"
	}
	return &Error{Kind: enums.ErrorKindAuthorization, Message: message}
}

// NewAuthRequiredError reports content that needs credentials
// which are not configured.
func NewAuthRequiredError(what string) *Error {
	message := "authentication required"
	if what != "" {
		message += " to access " + what
	}
	return &Error{Kind: enums.ErrorKindAuthRequired, Message: message}
}

func NewInputError(format string, args ...any) *Error {
	return &Error{
		Kind:    enums.ErrorKindInput,
		Message: fmt.Sprintf(format, args...),
	}
}

func NewNoExtractorError(url string) *Error {
	return &Error{
		Kind:    enums.ErrorKindNoExtractor,
		Message: "no suitable extractor found for " + url,
		URL:     url,
	}
}

// AsError returns the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind enums.ErrorKind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}

// ExitCode maps any error to its exit bit; signals and nil map to 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if _, ok := AsSignal(err); ok {
		return 0
	}
	if e, ok := AsError(err); ok {
		return e.ExitCode()
	}
	return 1
}
