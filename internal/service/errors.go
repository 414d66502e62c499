package service

import (
	"context"
	"errors"

	"github.com/hostelgrub/api/internal/store"
)

// ValidationError reports malformed, missing, or out-of-range input.
type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }

// AuthError reports a missing or unknown token, a session whose identity is
// gone, or a wrong admin PIN.
type AuthError struct{ Message string }

func (e *AuthError) Error() string { return e.Message }

// NotFoundError reports a referenced order that does not exist.
type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

// PersistenceError reports that the document could not be read or written.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }

func Validation(msg string) error   { return &ValidationError{Message: msg} }
func Unauthorized(msg string) error { return &AuthError{Message: msg} }
func NotFound(msg string) error     { return &NotFoundError{Message: msg} }

// DocumentStore is the persistence surface the services need.
// Satisfied by *store.Store; narrow interface for testability.
type DocumentStore interface {
	Snapshot(ctx context.Context) (*store.Document, error)
	Update(ctx context.Context, fn func(*store.Document) error) error
}

// wrapStoreErr passes domain errors through and wraps everything else as a
// PersistenceError.
func wrapStoreErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		ve *ValidationError
		ae *AuthError
		ne *NotFoundError
		pe *PersistenceError
	)
	if errors.As(err, &ve) || errors.As(err, &ae) || errors.As(err, &ne) || errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
