package extraction

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDocument is returned when an XML document does not parse or
	// lacks the NF-e information block.
	ErrMalformedDocument = errors.New("malformed fiscal document")

	// ErrNoLineItems is returned when a structured document yields no usable item.
	ErrNoLineItems = errors.New("document has no line items")
)

// DocumentError wraps an extraction failure with the element being read.
type DocumentError struct {
	// Op is the operation that failed (e.g., "ExtractXML").
	Op string

	// Err is the underlying error.
	Err error

	// Details names the element or value that could not be read.
	Details string
}

// Error implements the error interface.
func (e *DocumentError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("extraction: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("extraction: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *DocumentError) Unwrap() error {
	return e.Err
}

// WrapDocumentError wraps an error as a DocumentError if it isn't already one.
func WrapDocumentError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var docErr *DocumentError
	if errors.As(err, &docErr) {
		return err
	}

	return &DocumentError{Op: op, Err: err, Details: details}
}
