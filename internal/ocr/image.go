package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
)

// MaxFileSizeBytes is the maximum file size for synchronous processing (20MB)
const MaxFileSizeBytes = 20 * 1024 * 1024

const (
	mimePDF  = "application/pdf"
	mimeTIFF = "image/tiff"
)

var supportedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/webp": true,
	mimeTIFF:     true,
	mimePDF:      true,
}

// loadImage reads path and returns its bytes and sniffed MIME type after the
// size and format checks every engine shares.
func loadImage(path string) ([]byte, string, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", ErrImageNotFound
	}
	if err != nil {
		return nil, "", err
	}
	if info.IsDir() {
		return nil, "", fmt.Errorf("%w: %s is a directory", ErrUnsupportedImage, path)
	}
	if info.Size() == 0 {
		return nil, "", fmt.Errorf("%w: file is empty", ErrUnsupportedImage)
	}
	if info.Size() > MaxFileSizeBytes {
		return nil, "", fmt.Errorf("%w: file size: %d bytes", ErrImageTooLarge, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}

	mimeType := detectMIMEType(data)
	if !supportedMIMETypes[mimeType] {
		return nil, "", fmt.Errorf("%w: content type %s", ErrUnsupportedImage, mimeType)
	}
	return data, mimeType, nil
}

func detectMIMEType(data []byte) string {
	// http.DetectContentType does not sniff TIFF
	if bytes.HasPrefix(data, []byte("II*\x00")) || bytes.HasPrefix(data, []byte("MM\x00*")) {
		return mimeTIFF
	}
	return http.DetectContentType(data)
}
