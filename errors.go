package everruns

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors returned before any network call is attempted.
var (
	ErrMissingAPIKey = errors.New("everruns: API key not provided (set EVERRUNS_API_KEY or pass one explicitly)")
	ErrMissingOrg    = errors.New("everruns: organization ID not provided (set EVERRUNS_ORG or pass one explicitly)")
	ErrInvalidRequest = errors.New("everruns: invalid request")

	// ErrTurnInterrupted is returned by RunTurn when the event stream ends
	// before a turn.completed or turn.failed event was observed. The
	// TurnResult returned alongside it carries the last event ID so the
	// caller can resume.
	ErrTurnInterrupted = errors.New("everruns: stream ended before the turn finished")
)

// APIError is an error response from the Everruns API. The server reports
// errors as {"error": {"code": ..., "message": ...}}; responses without that
// envelope are surfaced with code "unknown" and the raw body as message.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("everruns: API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// AuthenticationError is an APIError with HTTP status 401.
type AuthenticationError struct{ APIError }

func (e *AuthenticationError) Unwrap() error { return &e.APIError }

// NotFoundError is an APIError with HTTP status 404.
type NotFoundError struct{ APIError }

func (e *NotFoundError) Unwrap() error { return &e.APIError }

// RateLimitError is an APIError with HTTP status 429.
type RateLimitError struct{ APIError }

func (e *RateLimitError) Unwrap() error { return &e.APIError }

// apiErrorFromResponse builds the typed error for a non-success response body.
func apiErrorFromResponse(status int, body []byte) error {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	code, message := "unknown", string(body)
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Code != "" {
		code = envelope.Error.Code
		message = envelope.Error.Message
	}

	apiErr := APIError{StatusCode: status, Code: code, Message: message}
	switch status {
	case http.StatusUnauthorized:
		return &AuthenticationError{apiErr}
	case http.StatusNotFound:
		return &NotFoundError{apiErr}
	case http.StatusTooManyRequests:
		return &RateLimitError{apiErr}
	}
	return &apiErr
}
