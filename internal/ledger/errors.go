package ledger

import (
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
)

// ErrorKind classifies ledger failures so callers can map them to a response.
type ErrorKind string

const (
	KindValidation       ErrorKind = "validation"
	KindConfiguration    ErrorKind = "configuration"
	KindMapping          ErrorKind = "mapping"
	KindIntegrity        ErrorKind = "integrity"
	KindDuplicatePosting ErrorKind = "duplicate_posting"
	KindPersistence      ErrorKind = "persistence"
	KindNotFound         ErrorKind = "not_found"
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrValidation       = &Error{Kind: KindValidation}
	ErrConfiguration    = &Error{Kind: KindConfiguration}
	ErrMapping          = &Error{Kind: KindMapping}
	ErrIntegrity        = &Error{Kind: KindIntegrity}
	ErrDuplicatePosting = &Error{Kind: KindDuplicatePosting}
	ErrPersistence      = &Error{Kind: KindPersistence}
	ErrNotFound         = &Error{Kind: KindNotFound}
)

// Error is the single error type returned by the ledger path.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	// JournalID is set on duplicate postings to the entry that already exists.
	JournalID uuid.UUID
	Err       error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Op == ""
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NewValidationError(format string, args ...any) error {
	return newError(KindValidation, format, args...)
}

func NewConfigurationError(format string, args ...any) error {
	return newError(KindConfiguration, format, args...)
}

func NewMappingError(format string, args ...any) error {
	return newError(KindMapping, format, args...)
}

func NewIntegrityError(format string, args ...any) error {
	return newError(KindIntegrity, format, args...)
}

func NewNotFoundError(format string, args ...any) error {
	return newError(KindNotFound, format, args...)
}

// NewDuplicatePostingError reports that the source document already has a journal entry.
func NewDuplicatePostingError(sourceType SourceType, sourceID, existing uuid.UUID) error {
	return &Error{
		Kind:      KindDuplicatePosting,
		Message:   fmt.Sprintf("%s %s is already posted", sourceType, sourceID),
		JournalID: existing,
	}
}

// NewPersistenceError wraps a store failure.
func NewPersistenceError(op string, err error) error {
	return &Error{Kind: KindPersistence, Op: op, Message: "store write failed", Err: err}
}

// KindOf returns the kind of err, or "" when err is not a ledger error.
func KindOf(err error) ErrorKind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}

// Classify leaves ledger errors untouched and wraps anything else as a persistence error.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != "" {
		return err
	}
	return NewPersistenceError(op, err)
}
