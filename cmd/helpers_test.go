package cmd

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"inventory/internal/ocr"
)

// firstWordIsLowerOrInitialism accepts "timed" and "OCR" but not "Google".
func firstWordIsLowerOrInitialism(msg string) bool {
	word := strings.Fields(msg)[0]
	runes := []rune(word)
	if !unicode.IsUpper(runes[0]) {
		return true
	}
	for _, r := range runes[1:] {
		if unicode.IsUpper(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func TestHandleOCRError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
		wraps    error
	}{
		{name: "deadline", err: context.DeadlineExceeded, contains: "timed out"},
		{name: "canceled", err: ocr.ErrContextCanceled, contains: "canceled"},
		{name: "not found", err: ocr.ErrImageNotFound, contains: "not found", wraps: ocr.ErrImageNotFound},
		{name: "too large", err: ocr.ErrImageTooLarge, contains: "20MB"},
		{name: "unsupported", err: ocr.ErrUnsupportedImage, contains: "JPEG", wraps: ocr.ErrUnsupportedImage},
		{name: "empty", err: ocr.ErrEmptyDocument, contains: "no readable text"},
		{name: "credentials", err: ocr.ErrMissingCredentials, contains: "gcloud auth application-default login",
			wraps: ocr.ErrMissingCredentials},
		{name: "quota", err: ocr.ErrQuotaExceeded, contains: "quota"},
		{name: "service", err: fmt.Errorf("%w: unavailable", ocr.ErrOCRFailed), contains: "network",
			wraps: ocr.ErrOCRFailed},
		{name: "other", err: fmt.Errorf("boom"), contains: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := handleOCRError(tt.err, zerolog.Nop())
			msg := got.Error()
			assert.Contains(t, msg, tt.contains)
			assert.True(t, firstWordIsLowerOrInitialism(msg), "capitalized error: %q", msg)
			if tt.wraps != nil {
				assert.ErrorIs(t, got, tt.wraps)
			}
		})
	}
}

func TestHelpErrorKeepsGuidanceOffTheFirstLine(t *testing.T) {
	err := handleOCRError(ocr.ErrInvalidCredentials, zerolog.Nop())

	first, rest, found := strings.Cut(err.Error(), "\n")
	assert.True(t, found)
	assert.Equal(t, "authenticating with Google Cloud: invalid Google Cloud credentials", first)
	assert.Contains(t, rest, "GOOGLE_APPLICATION_CREDENTIALS")
	assert.ErrorIs(t, err, ocr.ErrInvalidCredentials)
}
