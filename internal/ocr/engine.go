package ocr

import (
	"context"
	"fmt"
)

const (
	EngineVision     = "vision"
	EngineDocumentAI = "documentai"
)

// EngineConfig selects and configures an OCR backend.
type EngineConfig struct {
	Kind          string
	LanguageHints []string
	DocumentAI    DocumentAIConfig
}

// NewEngine creates the backend named by cfg.Kind.
func NewEngine(ctx context.Context, cfg EngineConfig) (Engine, error) {
	switch cfg.Kind {
	case EngineVision, "":
		return NewVisionEngine(ctx, cfg.LanguageHints)
	case EngineDocumentAI:
		return NewDocumentAIEngine(ctx, cfg.DocumentAI)
	default:
		return nil, NewOCRError("NewEngine", ErrOCRFailed, fmt.Sprintf("unknown engine %q", cfg.Kind))
	}
}
