// Package ocr recognizes text on invoice and receipt images using Google
// Cloud Vision or Document AI.
//
// Required Environment Variables:
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//
// Document AI additionally needs GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION
// and DOCUMENT_AI_PROCESSOR_ID.
//
// Limits:
//   - Maximum file size: 20MB per synchronous request
//   - Images: JPEG, PNG, GIF, BMP, WEBP; documents: PDF, TIFF
//   - Requests are throttled by a token bucket shared by the whole process
package ocr

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Recognizer is what ingestion needs from OCR: the raw text of an image.
type Recognizer interface {
	RecognizeText(ctx context.Context, imagePath string) (string, error)
}

// Engine is one OCR backend.
type Engine interface {
	// Name identifies the backend in logs and results.
	Name() string

	// Recognize extracts text from image bytes of the given MIME type.
	Recognize(ctx context.Context, image []byte, mimeType string) (*Result, error)

	Close() error
}

// Result contains the results of OCR processing with metadata.
type Result struct {
	// Text is the extracted text content, pages concatenated in reading order.
	Text string `json:"text"`

	// Engine is the backend that produced the text.
	Engine string `json:"engine"`

	// PageCount is the number of pages that were processed.
	PageCount int `json:"page_count"`

	// Confidence is the average page confidence (0.0 to 1.0), zero when unknown.
	Confidence float32 `json:"confidence"`

	// LanguageCodes contains the detected languages in the document.
	LanguageCodes []string `json:"language_codes,omitempty"`

	// ProcessedAt is the timestamp when the OCR processing completed.
	ProcessedAt time.Time `json:"processed_at"`

	// ProcessingDuration is how long the engine call took, rate limit wait excluded.
	ProcessingDuration time.Duration `json:"processing_duration"`
}

// quotaBackoff is how long all requests pause after the API reports an
// exhausted quota.
const quotaBackoff = 30 * time.Second

// Service validates image files, throttles requests and delegates to an Engine.
type Service struct {
	engine  Engine
	limiter *RateLimiter
	log     zerolog.Logger
}

var _ Recognizer = (*Service)(nil)

// NewService creates a service. A nil limiter disables throttling.
func NewService(engine Engine, limiter *RateLimiter, log zerolog.Logger) *Service {
	return &Service{engine: engine, limiter: limiter, log: log}
}

// RecognizeText returns the text recognized on the image at imagePath.
func (s *Service) RecognizeText(ctx context.Context, imagePath string) (string, error) {
	result, err := s.RecognizeFile(ctx, imagePath)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// RecognizeFile returns the recognized text together with engine metadata.
func (s *Service) RecognizeFile(ctx context.Context, imagePath string) (*Result, error) {
	const op = "RecognizeFile"

	data, mimeType, err := loadImage(imagePath)
	if err != nil {
		return nil, WrapOCRError(op, err, imagePath)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, WrapOCRError(op, ErrContextCanceled, "waiting for rate limiter")
		}
	}

	start := time.Now()
	result, err := s.engine.Recognize(ctx, data, mimeType)
	if err != nil {
		if errors.Is(err, ErrQuotaExceeded) && s.limiter != nil {
			s.limiter.Backoff(quotaBackoff)
		}
		s.log.Error().Err(err).Str("image", imagePath).Str("engine", s.engine.Name()).Msg("OCR request failed")
		return nil, WrapOCRError(op, err, s.engine.Name())
	}

	if strings.TrimSpace(result.Text) == "" {
		return nil, WrapOCRError(op, ErrEmptyDocument, imagePath)
	}

	result.Engine = s.engine.Name()
	result.ProcessedAt = time.Now()
	result.ProcessingDuration = result.ProcessedAt.Sub(start)

	s.log.Info().
		Str("image", imagePath).
		Str("engine", result.Engine).
		Str("mime_type", mimeType).
		Int("chars", len(result.Text)).
		Float32("confidence", result.Confidence).
		Dur("duration", result.ProcessingDuration).
		Msg("OCR completed")

	return result, nil
}

// Close closes the underlying engine.
func (s *Service) Close() error {
	return s.engine.Close()
}
