package model

import "fmt"

// ValidationError reports missing or malformed input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AuthError reports a missing or invalid credential
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// NotFoundError reports a record that is absent or not owned by the caller
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ExtractionError reports that a URL could not be turned into article text
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ExternalServiceError reports a failed call to a text-generation provider
type ExternalServiceError struct {
	Provider string
	Err      error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}
