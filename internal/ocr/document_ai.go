package ocr

import (
	"context"
	"fmt"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
)

// documentProcessor is the part of documentai.DocumentProcessorClient the engine uses.
type documentProcessor interface {
	ProcessDocument(ctx context.Context, req *documentaipb.ProcessRequest, opts ...gax.CallOption) (*documentaipb.ProcessResponse, error)
	Close() error
}

// DocumentAIConfig holds configuration for the Document AI engine.
type DocumentAIConfig struct {
	ProjectID        string
	Location         string // "us" or "eu"
	ProcessorID      string // an OCR processor
	ProcessorVersion string // optional
	Timeout          time.Duration
}

// ProcessorName returns the full resource name of the configured processor.
func (c DocumentAIConfig) ProcessorName() string {
	name := fmt.Sprintf("projects/%s/locations/%s/processors/%s", c.ProjectID, c.Location, c.ProcessorID)
	if c.ProcessorVersion != "" {
		name += "/processorVersions/" + c.ProcessorVersion
	}
	return name
}

// DocumentAIEngine implements Engine using a Document AI OCR processor.
type DocumentAIEngine struct {
	client documentProcessor
	config DocumentAIConfig
}

var _ Engine = (*DocumentAIEngine)(nil)

// NewDocumentAIEngine creates a Document AI client on the regional endpoint
// of config.Location.
func NewDocumentAIEngine(ctx context.Context, config DocumentAIConfig) (*DocumentAIEngine, error) {
	const op = "NewDocumentAIEngine"

	if config.Location == "" {
		config.Location = "us"
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	opts := credentialOptions()
	hasCredentials := len(opts) > 0
	if config.Location != "us" {
		opts = append(opts, option.WithEndpoint(fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		if !hasCredentials {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapOCRError(op, err, fmt.Sprintf("failed to create Document AI client for location: %s", config.Location))
	}

	return NewDocumentAIEngineWithClient(client, config), nil
}

// NewDocumentAIEngineWithClient creates an engine with an explicit client (for testing).
func NewDocumentAIEngineWithClient(client documentProcessor, config DocumentAIConfig) *DocumentAIEngine {
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	return &DocumentAIEngine{client: client, config: config}
}

func (d *DocumentAIEngine) Name() string { return "documentai" }

// Recognize sends the raw document to the processor and returns its text.
func (d *DocumentAIEngine) Recognize(ctx context.Context, image []byte, mimeType string) (*Result, error) {
	const op = "DocumentAIRecognize"

	processCtx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	resp, err := d.client.ProcessDocument(processCtx, &documentaipb.ProcessRequest{
		Name: d.config.ProcessorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  image,
				MimeType: mimeType,
			},
		},
	})
	if err != nil {
		return nil, classifyAPIError(op, err)
	}

	doc := resp.GetDocument()
	if doc == nil {
		return nil, WrapOCRError(op, ErrOCRFailed, "no document in response")
	}

	result := &Result{
		Text:      strings.TrimSpace(doc.GetText()),
		PageCount: len(doc.GetPages()),
	}

	var confidenceSum float32
	seen := map[string]bool{}
	for _, page := range doc.GetPages() {
		confidenceSum += page.GetLayout().GetConfidence()
		for _, lang := range page.GetDetectedLanguages() {
			if code := lang.GetLanguageCode(); code != "" && !seen[code] {
				seen[code] = true
				result.LanguageCodes = append(result.LanguageCodes, code)
			}
		}
	}
	if n := len(doc.GetPages()); n > 0 {
		result.Confidence = confidenceSum / float32(n)
	}

	return result, nil
}

// Close closes the underlying Document AI client.
func (d *DocumentAIEngine) Close() error {
	if d.client != nil {
		return d.client.Close()
	}
	return nil
}
