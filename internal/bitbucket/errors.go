package bitbucket

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies a failed API call into a stable category.
type ErrorKind string

const (
	KindAuthentication ErrorKind = "AUTHENTICATION_ERROR"
	KindPermission     ErrorKind = "PERMISSION_ERROR"
	KindNotFound       ErrorKind = "NOT_FOUND_ERROR"
	KindValidation     ErrorKind = "VALIDATION_ERROR"
	KindConflict       ErrorKind = "CONFLICT_ERROR"
	KindRateLimit      ErrorKind = "RATE_LIMIT_ERROR"
	KindServer         ErrorKind = "SERVER_ERROR"
	KindNetwork        ErrorKind = "NETWORK_ERROR"
	KindTimeout        ErrorKind = "TIMEOUT_ERROR"
	KindFileNotFound   ErrorKind = "FILE_NOT_FOUND"
	KindFileFetch      ErrorKind = "FILE_FETCH_ERROR"
	KindUnknown        ErrorKind = "UNKNOWN_ERROR"
	KindConnectionTest ErrorKind = "CONNECTION_TEST_FAILED"
)

// ErrorDetails carries the request that failed and the raw response body,
// for diagnosis.
type ErrorDetails struct {
	Method string `json:"method,omitempty"`
	Path   string `json:"path,omitempty"`
	Body   string `json:"body,omitempty"`
}

// StructuredError is the classified failure value produced whenever an API
// call fails. Retryability is fixed per kind; no retry is attempted here,
// that decision is left to the caller of the bridge.
type StructuredError struct {
	Kind       ErrorKind    `json:"errorKind"`
	Message    string       `json:"message"`
	StatusCode int          `json:"statusCode,omitempty"`
	Suggestion string       `json:"suggestion,omitempty"`
	Retryable  bool         `json:"isRetryable"`
	Details    ErrorDetails `json:"details,omitempty"`
}

func (e *StructuredError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// suggestions are fixed remediation hints per kind.
var suggestions = map[ErrorKind]string{
	KindAuthentication: "Check that ATLASSIAN_USER_EMAIL and ATLASSIAN_API_TOKEN are set to valid credentials.",
	KindPermission:     "Your credentials lack permission for this resource. Ask a workspace admin for access.",
	KindNotFound:       "Verify the workspace, repository slug, and resource identifiers are correct.",
	KindValidation:     "The request was rejected as invalid. Check the argument values.",
	KindConflict:       "The resource is in a conflicting state. Refresh it and try again.",
	KindRateLimit:      "The API rate limit was hit. Wait before retrying.",
	KindServer:         "The Bitbucket server reported an internal error. Retry later.",
	KindNetwork:        "Could not reach the Bitbucket host. Check the base URL and network connectivity.",
	KindTimeout:        "The request timed out. Check connectivity or increase the HTTP timeout.",
	KindFileNotFound:   "The file does not exist at that path and revision.",
	KindFileFetch:      "Fetching the file failed. Verify the path, revision, and your access.",
	KindUnknown:        "An unexpected error occurred. See details for the raw response.",
}

// kindForStatus maps an HTTP status to an error kind and its fixed
// retryability.
func kindForStatus(status int) (ErrorKind, bool) {
	switch {
	case status == 401:
		return KindAuthentication, false
	case status == 403:
		return KindPermission, false
	case status == 404:
		return KindNotFound, false
	case status == 400:
		return KindValidation, false
	case status == 409:
		return KindConflict, false
	case status == 429:
		return KindRateLimit, true
	case status >= 500:
		return KindServer, true
	default:
		return KindUnknown, false
	}
}

// classifyStatus builds a StructuredError from a non-success HTTP response.
func classifyStatus(method, path string, status int, body []byte) *StructuredError {
	kind, retryable := kindForStatus(status)
	return &StructuredError{
		Kind:       kind,
		Message:    fmt.Sprintf("API request failed with status %d", status),
		StatusCode: status,
		Suggestion: suggestions[kind],
		Retryable:  retryable,
		Details:    ErrorDetails{Method: method, Path: path, Body: string(body)},
	}
}

// classifyTransport builds a StructuredError from a failure below the HTTP
// layer (DNS, connection refused, timeout).
func classifyTransport(method, path string, err error) *StructuredError {
	kind := KindNetwork
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = KindTimeout
	}
	return &StructuredError{
		Kind:       kind,
		Message:    err.Error(),
		Suggestion: suggestions[kind],
		Retryable:  true,
		Details:    ErrorDetails{Method: method, Path: path},
	}
}

// classifyFileError re-kinds errors from file-content retrieval: a missing
// file is reported distinctly from every other fetch failure.
func classifyFileError(err error) error {
	var se *StructuredError
	if !errors.As(err, &se) {
		return err
	}
	kind := KindFileFetch
	if se.Kind == KindNotFound {
		kind = KindFileNotFound
	}
	return &StructuredError{
		Kind:       kind,
		Message:    se.Message,
		StatusCode: se.StatusCode,
		Suggestion: suggestions[kind],
		Retryable:  se.Retryable,
		Details:    se.Details,
	}
}
