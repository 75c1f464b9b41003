package ocr

import (
	"context"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/sirupsen/logrus"

	"go-ekyc-verifier/internal/logger"
	"go-ekyc-verifier/internal/storage"
	"go-ekyc-verifier/pkg/validation"
)

// TextExtractor converts a document image into its textual content.
//
// The OCR engine is treated as an opaque oracle: on any retrieval or
// decoding failure the extractor degrades to an empty string and logs the
// cause. Downstream callers must treat empty text as a valid, if
// unfortunate, state rather than a crash.
type TextExtractor interface {
	ExtractFromBytes(imageData []byte) string
	ExtractFromFile(path string) string
	ExtractFromURL(ctx context.Context, imageURL string) string
}

// GosseractExtractor implements TextExtractor on top of Tesseract
type GosseractExtractor struct {
	language  string
	fetcher   storage.ImageFetcher
	blob      storage.BlobStorage
	validator *validation.URLValidator
}

// NewGosseractExtractor creates a Tesseract-backed text extractor.
// blob may be nil when Azure storage is not configured.
func NewGosseractExtractor(language string, fetcher storage.ImageFetcher, blob storage.BlobStorage) *GosseractExtractor {
	return &GosseractExtractor{
		language:  language,
		fetcher:   fetcher,
		blob:      blob,
		validator: validation.NewURLValidator(),
	}
}

// ExtractFromBytes runs OCR over an in-memory image
func (e *GosseractExtractor) ExtractFromBytes(imageData []byte) string {
	if len(imageData) == 0 {
		return ""
	}

	// gosseract clients are not safe for concurrent use; one per call
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.language); err != nil {
		logger.WithError(err).WithField("language", e.language).Warn("Failed to set OCR language")
	}
	if err := client.SetImageFromBytes(imageData); err != nil {
		logger.WithError(err).Warn("OCR engine rejected image data")
		return ""
	}

	text, err := client.Text()
	if err != nil {
		logger.WithError(err).Warn("OCR extraction failed")
		return ""
	}
	return strings.TrimSpace(text)
}

// ExtractFromFile runs OCR over an image on the local filesystem
func (e *GosseractExtractor) ExtractFromFile(path string) string {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.language); err != nil {
		logger.WithError(err).WithField("language", e.language).Warn("Failed to set OCR language")
	}
	if err := client.SetImage(path); err != nil {
		logger.WithError(err).WithField("path", path).Warn("OCR engine rejected image file")
		return ""
	}

	text, err := client.Text()
	if err != nil {
		logger.WithError(err).WithField("path", path).Warn("OCR extraction failed")
		return ""
	}
	return strings.TrimSpace(text)
}

// ExtractFromURL downloads a remote image and runs OCR over it.
// Azure blob URLs go through the blob client when one is configured.
func (e *GosseractExtractor) ExtractFromURL(ctx context.Context, imageURL string) string {
	if err := e.validator.ValidateImageURL(imageURL); err != nil {
		logger.WithError(err).WithField("url", imageURL).Warn("Rejected image URL")
		return ""
	}

	var data []byte
	var err error
	switch {
	case e.blob != nil && strings.Contains(imageURL, ".blob.core.windows.net"):
		data, err = e.blob.GetImage(ctx, imageURL)
	case e.fetcher != nil:
		data, err = e.fetcher.FetchImage(ctx, imageURL)
	default:
		logger.WithField("url", imageURL).Warn("No fetcher configured for remote OCR source")
		return ""
	}
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"url": imageURL,
		}).Warn("Failed to download image for OCR")
		return ""
	}

	return e.ExtractFromBytes(data)
}

// FlattenText collapses newlines into spaces for pattern matching
func FlattenText(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
}

// Excerpt returns the first n characters of extracted text for responses
func Excerpt(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
