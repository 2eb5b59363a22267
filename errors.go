package techcv

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// ErrMissingAuthorizationCode is returned when the OAuth callback URL has no
// one-time code. It is a local precondition failure and never reaches the
// network.
var ErrMissingAuthorizationCode = goerrors.New("authorization code is missing from callback URL", goerrors.CategoryValidation).
	WithTextCode("MISSING_OAUTH_CODE").
	WithCode(goerrors.CodeBadRequest)

// ErrMissingVerificationToken is returned when the verification URL carries
// no token.
var ErrMissingVerificationToken = goerrors.New("verification token is missing from URL", goerrors.CategoryValidation).
	WithTextCode("MISSING_VERIFICATION_TOKEN").
	WithCode(goerrors.CodeBadRequest)

// ErrTokenPersistence wraps a failure to write the auth token to durable
// storage. The token must never be held only in volatile state, so the
// verification flow treats this as a terminal failure.
var ErrTokenPersistence = goerrors.New("failed to persist auth token", goerrors.CategoryInternal).
	WithTextCode("TOKEN_PERSISTENCE_FAILED")

// FieldError is a per-field validation failure reported by the backend.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// APIError is the normalized failure for every backend call. Callers never
// see the transport error type directly; they get an APIError or an
// unrelated error rethrown as-is.
type APIError struct {
	Message   string
	Code      string
	RequestID string
	// Status is the HTTP status code, zero when no response was received.
	Status  int
	Details []FieldError
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error: %s", e.Message)
}

// AsAPIError unwraps err into an *APIError if one is in the chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// retryable reports whether a request that produced this error may be
// reissued: server-side failures and transport failures only.
func (e *APIError) retryable() bool {
	return e.Status == 0 || e.Status >= 500
}
