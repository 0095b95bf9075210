package ocr

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Common OCR processing errors
var (
	// ErrImageNotFound is returned when the image path does not exist.
	ErrImageNotFound = errors.New("image file not found")

	// ErrImageTooLarge is returned when the image exceeds the 20MB request limit.
	ErrImageTooLarge = errors.New("image file size exceeds the maximum limit (20MB)")

	// ErrUnsupportedImage is returned for empty files and content types the
	// engines cannot read.
	ErrUnsupportedImage = errors.New("unsupported or empty image")

	// ErrOCRFailed is returned when the OCR backend fails to process the image.
	ErrOCRFailed = errors.New("OCR processing failed")

	// ErrMissingCredentials is returned when neither GOOGLE_APPLICATION_CREDENTIALS
	// nor GOOGLE_CREDENTIALS is configured and no default credentials exist.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")

	// ErrInvalidCredentials is returned when the credentials lack permission.
	ErrInvalidCredentials = errors.New("invalid Google Cloud credentials")

	// ErrQuotaExceeded is returned when the API quota is exhausted.
	ErrQuotaExceeded = errors.New("OCR API quota exceeded")

	// ErrEmptyDocument is returned when the image contains no readable text.
	ErrEmptyDocument = errors.New("document contains no readable text")

	// ErrContextCanceled is returned when the context is canceled during processing.
	ErrContextCanceled = errors.New("OCR processing was canceled")
)

// OCRError wraps errors with additional context about the OCR processing failure.
type OCRError struct {
	// Op is the operation that failed (e.g., "RecognizeFile", "NewVisionEngine").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *OCRError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *OCRError) Unwrap() error {
	return e.Err
}

// NewOCRError creates a new OCRError with the specified operation and underlying error.
func NewOCRError(op string, err error, details string) *OCRError {
	return &OCRError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapOCRError wraps an error as an OCRError if it isn't already one.
func WrapOCRError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var ocrErr *OCRError
	if errors.As(err, &ocrErr) {
		return err
	}

	return NewOCRError(op, err, details)
}

// classifyAPIError maps a Google API call failure onto the OCR sentinels.
func classifyAPIError(op string, err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return WrapOCRError(op, ErrContextCanceled, "processing was canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return WrapOCRError(op, context.DeadlineExceeded, "processing timeout")
	}

	switch status.Code(err) {
	case codes.PermissionDenied, codes.Unauthenticated:
		return WrapOCRError(op, ErrInvalidCredentials, status.Convert(err).Message())
	case codes.ResourceExhausted:
		return WrapOCRError(op, ErrQuotaExceeded, status.Convert(err).Message())
	case codes.InvalidArgument:
		return WrapOCRError(op, ErrUnsupportedImage, status.Convert(err).Message())
	case codes.DeadlineExceeded:
		return WrapOCRError(op, context.DeadlineExceeded, "processing timeout")
	case codes.Canceled:
		return WrapOCRError(op, ErrContextCanceled, "processing was canceled")
	default:
		return WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("API call failed: %v", err))
	}
}
