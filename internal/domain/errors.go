package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrSessionNotFound is returned when a session id is unknown.
	ErrSessionNotFound = errors.New("session not found")
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrDocumentNotFound is returned by document store reads that match nothing.
	ErrDocumentNotFound = errors.New("document not found")
)

// NotFoundError reports a missing entity with its identifier.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// Is lets errors.Is match the corresponding sentinel.
func (e *NotFoundError) Is(target error) bool {
	switch e.Entity {
	case "quiz":
		return target == ErrQuizNotFound
	case "session":
		return target == ErrSessionNotFound
	case "question":
		return target == ErrQuestionNotFound
	case "document":
		return target == ErrDocumentNotFound
	}
	return false
}

// ValidationError reports malformed caller input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + e.Reason
}

// InvalidStateError reports an operation attempted against the wrong
// session state, such as submitting to a completed session.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string {
	return "invalid state: " + e.Reason
}

// PersistenceError wraps a document store failure. The underlying cause
// is always retained.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
