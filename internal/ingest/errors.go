package ingest

import (
	"errors"
	"fmt"

	"inventory/internal/extraction"
	"inventory/internal/numeric"
)

var (
	// ErrUnknownCompany is returned when the target company does not exist.
	// Companies are never created by ingestion.
	ErrUnknownCompany = errors.New("unknown company")

	// ErrInvalidDraft is returned when a draft is missing required fields.
	ErrInvalidDraft = errors.New("invalid invoice draft")

	// ErrDuplicateInvoice is returned when duplicate rejection is enabled and
	// the same (company, supplier, number, series) was already ingested.
	ErrDuplicateInvoice = errors.New("invoice already ingested")

	// ErrStorage marks failures of the persistence layer.
	ErrStorage = errors.New("storage failure")
)

// IngestError wraps errors with the pipeline operation that failed.
type IngestError struct {
	// Op is the operation that failed (e.g., "IngestXML", "ResolveSupplier").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *IngestError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ingest: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ingest: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *IngestError) Unwrap() error {
	return e.Err
}

// WrapIngestError wraps an error as an IngestError if it isn't already one.
func WrapIngestError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var ingestErr *IngestError
	if errors.As(err, &ingestErr) {
		return err
	}

	return &IngestError{Op: op, Err: err, Details: details}
}

// storageError tags a repository failure with ErrStorage while keeping the
// original error reachable.
func storageError(op string, err error, details string) error {
	return WrapIngestError(op, fmt.Errorf("%w: %w", ErrStorage, err), details)
}

// ValidationError describes one missing or malformed draft field.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap ties every validation failure to ErrInvalidDraft.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidDraft
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// IsInputError reports whether err was caused by the document or request
// rather than by storage or an external service.
func IsInputError(err error) bool {
	return errors.Is(err, ErrUnknownCompany) ||
		errors.Is(err, ErrInvalidDraft) ||
		errors.Is(err, ErrDuplicateInvoice) ||
		errors.Is(err, extraction.ErrMalformedDocument) ||
		errors.Is(err, extraction.ErrNoLineItems) ||
		errors.Is(err, numeric.ErrInvalidNumberFormat)
}
