package container

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"

	"go-ekyc-verifier/internal/classifier"
	"go-ekyc-verifier/internal/config"
	apperrors "go-ekyc-verifier/internal/errors"
	"go-ekyc-verifier/internal/face"
	"go-ekyc-verifier/internal/logger"
	"go-ekyc-verifier/internal/ocr"
	"go-ekyc-verifier/internal/service"
	"go-ekyc-verifier/internal/storage"
	"go-ekyc-verifier/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config            *config.Config
	imageFetcher      storage.ImageFetcher
	blobStorage       storage.BlobStorage
	extractor         ocr.TextExtractor
	faceScorer        face.Scorer
	modelHandle       *classifier.ModelHandle
	registry          classifier.Registry
	verificationSvc   *service.VerificationService
	classificationSvc *service.ClassificationService
	handler           http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	imageFetcher := storage.NewHTTPImageFetcher(cfg.ImageFetchTimeout, cfg.MaxRequestBodySize)

	var blobStorage storage.BlobStorage
	if cfg.AzureEnabled() {
		var err error
		blobStorage, err = storage.NewAzureStorage(cfg.AzureAccountName, cfg.AzureAccountKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize blob storage: %w", err)
		}
	}

	extractor := ocr.NewGosseractExtractor(cfg.OCRLanguage, imageFetcher, blobStorage)

	faceScorer, err := newFaceScorer(cfg)
	if err != nil {
		return nil, err
	}

	registry := newRegistry(cfg, blobStorage)
	modelHandle := classifier.NewModelHandle()
	if _, err := modelHandle.ReloadFrom(context.Background(), registry); err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeModelNotTrained) {
			logger.WithField("artifact", cfg.ArtifactPath).Warn("No model artifact found; classification disabled until trained")
		} else {
			return nil, fmt.Errorf("failed to load model artifact: %w", err)
		}
	}

	var cache service.Cache
	if cfg.CacheEnabled() {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		cache = service.NewRedisCache(client)
	}

	verificationSvc := service.NewVerificationService(extractor, faceScorer)
	classificationSvc := service.NewClassificationService(extractor, modelHandle, cache, cfg.CacheTTL)
	handler := transport.NewHandler(verificationSvc, classificationSvc, registry, cfg)

	return &Container{
		config:            cfg,
		imageFetcher:      imageFetcher,
		blobStorage:       blobStorage,
		extractor:         extractor,
		faceScorer:        faceScorer,
		modelHandle:       modelHandle,
		registry:          registry,
		verificationSvc:   verificationSvc,
		classificationSvc: classificationSvc,
		handler:           handler,
	}, nil
}

// newFaceScorer selects the configured comparison strategy
func newFaceScorer(cfg *config.Config) (face.Scorer, error) {
	switch cfg.FaceStrategy {
	case config.FaceStrategyHash:
		return face.NewHashScorer(cfg.HashBitThreshold), nil
	case config.FaceStrategyEmbedding:
		return face.NewEmbeddingScorer(cfg.FaceModelsDir, cfg.EmbeddingThreshold)
	default:
		return nil, fmt.Errorf("unsupported face strategy: %s", cfg.FaceStrategy)
	}
}

func newRegistry(cfg *config.Config, blob storage.BlobStorage) classifier.Registry {
	if blob != nil && cfg.ArtifactContainer != "" {
		return classifier.NewBlobRegistry(blob, cfg.ArtifactContainer, cfg.ArtifactPath)
	}
	return classifier.NewFileRegistry(cfg.ArtifactPath)
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases resources held by long-lived components
func (c *Container) Close() {
	if closer, ok := c.faceScorer.(interface{ Close() }); ok {
		closer.Close()
	}
}
