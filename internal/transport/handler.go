package transport

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-ekyc-verifier/internal/classifier"
	"go-ekyc-verifier/internal/config"
	apperrors "go-ekyc-verifier/internal/errors"
	"go-ekyc-verifier/internal/logger"
	"go-ekyc-verifier/internal/service"
	"go-ekyc-verifier/pkg/models"
)

// NewHandler wires the HTTP routes
func NewHandler(
	verificationSvc *service.VerificationService,
	classificationSvc *service.ClassificationService,
	registry classifier.Registry,
	cfg *config.Config,
) http.Handler {
	r := gin.Default()

	r.Use(requestSizeLimiter(cfg.MaxRequestBodySize))

	r.GET("/health", healthCheck)
	r.POST("/ekyc", verifyIdentity(verificationSvc, cfg))
	r.POST("/classify", classifyDocument(classificationSvc, cfg))
	r.POST("/reload-model", reloadModel(classificationSvc, registry, cfg))

	return r
}

func verifyIdentity(svc *service.VerificationService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"ip":     c.ClientIP(),
		}).Info("Processing verification request")

		typedID := c.PostForm("ic_number")
		if typedID == "" {
			respondError(c, http.StatusBadRequest, "ic_number is required",
				apperrors.NewValidationError("missing ic_number form field", nil))
			return
		}
		typedName := c.PostForm("full_name")

		docImage, err := readFormFile(c, "ic_image")
		if err != nil {
			respondError(c, http.StatusBadRequest, "ic_image upload is invalid", err)
			return
		}
		selfie, err := readFormFile(c, "selfie")
		if err != nil {
			respondError(c, http.StatusBadRequest, "selfie upload is invalid", err)
			return
		}

		response, err := svc.Verify(ctx, typedID, typedName, docImage, selfie)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "verification failed", err)
			return
		}

		c.JSON(http.StatusOK, response)
	}
}

func classifyDocument(svc *service.ClassificationService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		// The document arrives either as an upload or a remote URL
		if imageURL := c.PostForm("file_url"); imageURL != "" {
			response, err := svc.ClassifyURL(ctx, imageURL)
			if err != nil {
				respondError(c, apperrors.GetStatusCode(err), "classification failed", err)
				return
			}
			c.JSON(http.StatusOK, response)
			return
		}

		imageData, err := readFormFile(c, "file")
		if err != nil {
			respondError(c, http.StatusBadRequest, "file upload is invalid", err)
			return
		}

		response, err := svc.Classify(ctx, imageData)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "classification failed", err)
			return
		}

		c.JSON(http.StatusOK, response)
	}
}

func reloadModel(svc *service.ClassificationService, registry classifier.Registry, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		artifact, err := svc.ReloadModel(ctx, registry)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "model reload failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"model_id":   artifact.ID,
			"trained_at": artifact.TrainedAt,
		}).Info("Model artifact hot-swapped")

		c.JSON(http.StatusOK, models.ReloadResponse{
			ModelID:   artifact.ID,
			TrainedAt: artifact.TrainedAt.Format(time.RFC3339),
			Labels:    artifact.Labels(),
		})
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func readFormFile(c *gin.Context, field string) ([]byte, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("missing %s upload", field), err)
	}
	return readMultipartFile(fileHeader)
}

func readMultipartFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, apperrors.NewValidationError("failed to open upload", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperrors.NewValidationError("failed to read upload", err)
	}
	return data, nil
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	response := models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	}
	if appErr, ok := err.(*apperrors.AppError); ok {
		response.Type = string(appErr.Type)
	}
	c.AbortWithStatusJSON(code, response)
}
