package ragchat

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// ValidationError is returned when a request can be rejected without talking to any backend.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type SelectionKind string

const (
	SelectionKindModel     SelectionKind = "model"
	SelectionKindRetriever SelectionKind = "retriever"
)

// SelectionError means a model or retriever label is not present in the registry.
// The message is meant to be shown to the user as is.
type SelectionError struct {
	Kind  SelectionKind
	Label string
	Err   error
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("invalid %s selection: %q", e.Kind, e.Label)
}

func (e *SelectionError) Unwrap() error {
	return e.Err
}

// BackendUnavailableError wraps any network, auth, quota or timeout failure of an external
// provider. Backend names the provider or retriever kind that failed.
type BackendUnavailableError struct {
	Backend string
	Err     error
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("backend %s unavailable: %v", e.Backend, e.Err)
}

func (e *BackendUnavailableError) Unwrap() error {
	return e.Err
}

// Unavailable wraps err as a BackendUnavailableError for the named backend. An error that
// already is a BackendUnavailableError is returned unchanged.
func Unavailable(backend string, err error) error {
	if err == nil {
		return nil
	}
	var bue *BackendUnavailableError
	if errors.As(err, &bue) {
		return err
	}
	return &BackendUnavailableError{Backend: backend, Err: err}
}
