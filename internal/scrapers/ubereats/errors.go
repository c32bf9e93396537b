package ubereats

import (
	"fmt"
	"net/http"
)

// MissingCredentialError is returned when a required session cookie is
// absent or empty.
type MissingCredentialError struct {
	Key string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("missing credential: cookie %q is not set", e.Key)
}

// UnknownRegionError is returned when a state or province cannot be resolved
// to a known two-letter code.
type UnknownRegionError struct {
	Input string
	// Suggestion is the closest known region name, empty if nothing is close.
	Suggestion string
}

func (e *UnknownRegionError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown region %q (did you mean %q?)", e.Input, e.Suggestion)
	}
	return fmt.Sprintf("unknown region %q", e.Input)
}

// AuthenticationExpiredError is returned when the feed rejects the session,
// the cookies must be extracted again.
type AuthenticationExpiredError struct {
	Status int
}

func (e *AuthenticationExpiredError) Error() string {
	return fmt.Sprintf(
		"authentication expired: feed responded %d %s, re-extract the session cookies",
		e.Status, http.StatusText(e.Status),
	)
}

// FetchFailedError is returned once retries for a transient failure are
// exhausted.
type FetchFailedError struct {
	Attempts int
	Err      error
}

func (e *FetchFailedError) Error() string {
	return fmt.Sprintf("fetch failed after %d attempt(s): %s", e.Attempts, e.Err)
}

func (e *FetchFailedError) Unwrap() error {
	return e.Err
}

// UnexpectedResponseError is returned for statuses that are neither success,
// authentication failures nor transient, and for bodies that are not JSON.
type UnexpectedResponseError struct {
	Status int
	Err    error
}

func (e *UnexpectedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected response (status %d): %s", e.Status, e.Err)
	}
	return fmt.Sprintf("unexpected response: status %d %s", e.Status, http.StatusText(e.Status))
}

func (e *UnexpectedResponseError) Unwrap() error {
	return e.Err
}

// PageCeilingError is returned when the feed still reports more results
// after the maximum number of pages was fetched.
type PageCeilingError struct {
	Limit int
}

func (e *PageCeilingError) Error() string {
	return fmt.Sprintf("page ceiling exceeded: feed still had more results after %d page(s)", e.Limit)
}

// statusError is the last observed error for a retried 5xx response.
type statusError struct {
	status int
}

func (e statusError) Error() string {
	return fmt.Sprintf("server responded %d %s", e.status, http.StatusText(e.status))
}
