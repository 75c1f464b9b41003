package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"go-ekyc-verifier/internal/classifier"
	"go-ekyc-verifier/internal/logger"
	"go-ekyc-verifier/internal/ocr"
	"go-ekyc-verifier/pkg/models"
)

// ClassificationService classifies a scanned document: OCR the image,
// run the serving artifact, report the arg-max label and its
// probability. Responses are optionally served from a read-through
// cache keyed by source digest and model ID; cache failures degrade to
// direct inference, never to request failure.
type ClassificationService struct {
	extractor ocr.TextExtractor
	handle    *classifier.ModelHandle
	cache     Cache
	cacheTTL  time.Duration
}

// NewClassificationService creates a classification service. cache may
// be nil when Redis is not configured.
func NewClassificationService(extractor ocr.TextExtractor, handle *classifier.ModelHandle, cache Cache, cacheTTL time.Duration) *ClassificationService {
	return &ClassificationService{
		extractor: extractor,
		handle:    handle,
		cache:     cache,
		cacheTTL:  cacheTTL,
	}
}

// Classify predicts the document category for one uploaded image. Fails
// with a model_not_trained error when no artifact is loaded; there is no
// degraded prediction.
func (s *ClassificationService) Classify(ctx context.Context, imageData []byte) (*models.ClassificationResponse, error) {
	return s.classify(ctx, imageData, func() string {
		return s.extractor.ExtractFromBytes(imageData)
	})
}

// ClassifyURL predicts the document category for a remotely hosted
// image, fetched and OCRed through the extractor's URL path. Cache
// entries are keyed by the URL rather than the image bytes.
func (s *ClassificationService) ClassifyURL(ctx context.Context, imageURL string) (*models.ClassificationResponse, error) {
	return s.classify(ctx, []byte(imageURL), func() string {
		return s.extractor.ExtractFromURL(ctx, imageURL)
	})
}

func (s *ClassificationService) classify(ctx context.Context, source []byte, extract func() string) (*models.ClassificationResponse, error) {
	start := time.Now()
	requestID := uuid.NewString()

	artifact := s.handle.Current()
	var cacheKey string
	if s.cache != nil && artifact != nil {
		digest := sha1.Sum(source)
		cacheKey = fmt.Sprintf("classify:%s:%s", artifact.ID, hex.EncodeToString(digest[:]))
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			var response models.ClassificationResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				response.RequestID = requestID
				response.Cached = true
				response.ProcessingSec = time.Since(start).Seconds()
				return &response, nil
			}
			logger.WithRequestID(requestID).Warn("Discarding undecodable cached classification")
		} else if !errors.Is(err, ErrCacheMiss) {
			logger.WithRequestID(requestID).WithError(err).Warn("Classification cache read failed")
		}
	}

	text := extract()
	label, confidence, err := s.handle.Infer(text)
	if err != nil {
		return nil, err
	}

	response := &models.ClassificationResponse{
		RequestID:   requestID,
		Label:       label,
		Confidence:  confidence,
		TextSnippet: ocr.Excerpt(text, snippetLength),
	}
	if artifact != nil {
		response.ModelID = artifact.ID
	}

	if s.cache != nil && cacheKey != "" {
		if serialized, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, string(serialized), s.cacheTTL); err != nil {
				logger.WithRequestID(requestID).WithError(err).Warn("Classification cache write failed")
			}
		}
	}

	response.ProcessingSec = time.Since(start).Seconds()
	logger.WithRequestID(requestID).WithFields(logrus.Fields{
		"label":      response.Label,
		"confidence": response.Confidence,
	}).Info("Document classified")

	return response, nil
}

// ReloadModel hot-swaps the serving artifact from the registry
func (s *ClassificationService) ReloadModel(ctx context.Context, registry classifier.Registry) (*classifier.Artifact, error) {
	return s.handle.ReloadFrom(ctx, registry)
}
