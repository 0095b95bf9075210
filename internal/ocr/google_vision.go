package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
)

// MaxPagesSync is the maximum number of PDF/TIFF pages for synchronous processing
const MaxPagesSync = 5

// imageAnnotator is the part of vision.ImageAnnotatorClient the engine uses.
type imageAnnotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	BatchAnnotateFiles(ctx context.Context, req *visionpb.BatchAnnotateFilesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateFilesResponse, error)
	Close() error
}

// VisionEngine implements Engine using Google Cloud Vision document text detection.
type VisionEngine struct {
	client        imageAnnotator
	languageHints []string
}

var _ Engine = (*VisionEngine)(nil)

// NewVisionEngine creates a Vision client with credentials from environment.
// It expects either GOOGLE_APPLICATION_CREDENTIALS path or GOOGLE_CREDENTIALS JSON in env.
func NewVisionEngine(ctx context.Context, languageHints []string) (*VisionEngine, error) {
	const op = "NewVisionEngine"

	opts := credentialOptions()
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		if len(opts) == 0 {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapOCRError(op, err, "failed to create Vision client")
	}

	return NewVisionEngineWithClient(client, languageHints), nil
}

// NewVisionEngineWithClient creates an engine with an explicit client (for testing).
func NewVisionEngineWithClient(client imageAnnotator, languageHints []string) *VisionEngine {
	return &VisionEngine{client: client, languageHints: languageHints}
}

func (v *VisionEngine) Name() string { return "vision" }

// Recognize runs DOCUMENT_TEXT_DETECTION. Images go through the image
// endpoint, PDF and TIFF through the file endpoint.
func (v *VisionEngine) Recognize(ctx context.Context, image []byte, mimeType string) (*Result, error) {
	if mimeType == mimePDF || mimeType == mimeTIFF {
		return v.recognizeFile(ctx, image, mimeType)
	}
	return v.recognizeImage(ctx, image)
}

func (v *VisionEngine) features() ([]*visionpb.Feature, *visionpb.ImageContext) {
	features := []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}}
	var imageContext *visionpb.ImageContext
	if len(v.languageHints) > 0 {
		imageContext = &visionpb.ImageContext{LanguageHints: v.languageHints}
	}
	return features, imageContext
}

func (v *VisionEngine) recognizeImage(ctx context.Context, image []byte) (*Result, error) {
	const op = "VisionRecognizeImage"

	features, imageContext := v.features()
	resp, err := v.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:        &visionpb.Image{Content: image},
			Features:     features,
			ImageContext: imageContext,
		}},
	})
	if err != nil {
		return nil, classifyAPIError(op, err)
	}
	if len(resp.GetResponses()) == 0 {
		return nil, WrapOCRError(op, ErrOCRFailed, "no response from Vision API")
	}

	return collectPages(op, resp.GetResponses())
}

func (v *VisionEngine) recognizeFile(ctx context.Context, content []byte, mimeType string) (*Result, error) {
	const op = "VisionRecognizeFile"

	features, imageContext := v.features()
	resp, err := v.client.BatchAnnotateFiles(ctx, &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{{
			InputConfig:  &visionpb.InputConfig{Content: content, MimeType: mimeType},
			Features:     features,
			ImageContext: imageContext,
		}},
	})
	if err != nil {
		return nil, classifyAPIError(op, err)
	}
	if len(resp.GetResponses()) == 0 {
		return nil, WrapOCRError(op, ErrOCRFailed, "no response from Vision API")
	}

	fileResp := resp.GetResponses()[0]
	if fileResp.GetError() != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API error: %s", fileResp.GetError().GetMessage()))
	}
	if n := fileResp.GetTotalPages(); n > MaxPagesSync {
		return nil, WrapOCRError(op, ErrUnsupportedImage, fmt.Sprintf("document has %d pages (maximum %d)", n, MaxPagesSync))
	}

	return collectPages(op, fileResp.GetResponses())
}

// collectPages joins the text of every page response in order and averages
// the page confidences.
func collectPages(op string, pages []*visionpb.AnnotateImageResponse) (*Result, error) {
	var (
		text            strings.Builder
		confidenceSum   float32
		confidenceCount int
		languages       = map[string]bool{}
		languageOrder   []string
	)

	for i, page := range pages {
		if page.GetError() != nil {
			return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("page %d: %s", i+1, page.GetError().GetMessage()))
		}
		annotation := page.GetFullTextAnnotation()
		if annotation == nil {
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n")
		}
		text.WriteString(annotation.GetText())

		for _, p := range annotation.GetPages() {
			if p.GetConfidence() > 0 {
				confidenceSum += p.GetConfidence()
				confidenceCount++
			}
			for _, lang := range p.GetProperty().GetDetectedLanguages() {
				if code := lang.GetLanguageCode(); code != "" && !languages[code] {
					languages[code] = true
					languageOrder = append(languageOrder, code)
				}
			}
		}
	}

	result := &Result{
		Text:          text.String(),
		PageCount:     len(pages),
		LanguageCodes: languageOrder,
	}
	if confidenceCount > 0 {
		result.Confidence = confidenceSum / float32(confidenceCount)
	}
	return result, nil
}

// Close closes the underlying Vision client.
func (v *VisionEngine) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}

// credentialOptions returns client options for GOOGLE_CREDENTIALS or
// GOOGLE_APPLICATION_CREDENTIALS, or none to use default credentials.
func credentialOptions() []option.ClientOption {
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(credJSON))}
	}
	if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		return []option.ClientOption{option.WithCredentialsFile(credFile)}
	}
	return nil
}
