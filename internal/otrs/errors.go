package otrs

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ConfigurationError means an operation has no route, neither overridden
// nor defaulted.
type ConfigurationError struct {
	Operation Operation
	Message   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("otrs configuration error (%s): %s", e.Operation, e.Message)
}

// ValidationError means a required input is missing or malformed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("otrs validation error (%s): %s", e.Field, e.Message)
}

// RemoteError is returned when OTRS answers with an error, either through an
// HTTP error status or an Error object in the response body.
type RemoteError struct {
	Context    string
	StatusCode int
	Status     string
	Body       string
	// ErrorCode is set when OTRS reported the failure in the body.
	ErrorCode string
}

func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Context, e.Status)
	if e.ErrorCode != "" {
		msg += " [" + e.ErrorCode + "]"
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Temporary reports whether a retry might succeed.
func (e *RemoteError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsRemoteError reports whether err (or any error in its chain) is a RemoteError.
func IsRemoteError(err error) bool {
	var remoteErr *RemoteError
	return errors.As(err, &remoteErr)
}

// IsValidationError reports whether err (or any error in its chain) is a
// ValidationError.
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsConfigurationError reports whether err (or any error in its chain) is a
// ConfigurationError.
func IsConfigurationError(err error) bool {
	var configErr *ConfigurationError
	return errors.As(err, &configErr)
}

// ValidateResponse returns a *RemoteError carrying errContext, the status and
// the body text when resp has a 4xx or 5xx status. It reads the body only on
// failure and never retries.
func ValidateResponse(resp *http.Response, errContext string) error {
	if resp == nil {
		return &RemoteError{Context: errContext, Status: "no response"}
	}
	if resp.StatusCode < 400 {
		return nil
	}
	var body string
	if resp.Body != nil {
		data, _ := io.ReadAll(resp.Body)
		body = strings.TrimSpace(string(data))
	}
	status := resp.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return &RemoteError{
		Context:    errContext,
		StatusCode: resp.StatusCode,
		Status:     status,
		Body:       body,
	}
}
