package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "go-ekyc-verifier/internal/errors"
	"go-ekyc-verifier/internal/face"
	"go-ekyc-verifier/internal/identity"
	"go-ekyc-verifier/internal/logger"
	"go-ekyc-verifier/internal/ocr"
	"go-ekyc-verifier/internal/verification"
	"go-ekyc-verifier/pkg/models"
)

const snippetLength = 200

// VerificationService orchestrates one eKYC verification request:
// OCR of the document image, identifier extraction, face comparison with
// the configured strategy, and decision fusion.
type VerificationService struct {
	extractor ocr.TextExtractor
	scorer    face.Scorer
	engine    *verification.Engine
}

// NewVerificationService creates a verification service
func NewVerificationService(extractor ocr.TextExtractor, scorer face.Scorer) *VerificationService {
	return &VerificationService{
		extractor: extractor,
		scorer:    scorer,
		engine:    verification.NewEngine(),
	}
}

// Verify runs the full decision flow. Per-request faults (extraction
// misses, no detectable face) come back as structured, explained
// responses; they never abort the serving process. typedName is optional
// and only feeds the name-similarity audit signal.
func (s *VerificationService) Verify(ctx context.Context, typedID, typedName string, docImage, selfie []byte) (*models.VerificationResponse, error) {
	start := time.Now()
	requestID := uuid.NewString()
	reqLogger := logger.WithRequestID(requestID)

	claim := verification.NewIdentityClaim(typedID)
	rawText := s.extractor.ExtractFromBytes(docImage)
	if rawText == "" {
		reqLogger.Warn("OCR produced no text for document image")
	}
	doc := verification.ExtractDocument(rawText)

	var faceResult *face.Result
	var faceErr error
	if s.engine.ShouldShortCircuit(doc) {
		// Identifier already failed; skip the face score entirely
		reqLogger.Info("Identifier not found, skipping face comparison")
	} else {
		result, err := s.scorer.Compare(ctx, docImage, selfie)
		if err != nil {
			faceErr = err
		} else {
			faceResult = &result
		}
	}

	decision := s.engine.Decide(claim, doc, faceResult)
	if faceErr != nil {
		// The face sub-signal failed outright; report the specific kind
		// instead of a generic false
		if apperrors.IsType(faceErr, apperrors.ErrorTypeNoFace) {
			decision.Reason = verification.ReasonNoFaceDetected
		} else {
			decision.Reason = verification.ReasonFaceUnscorable
		}
		decision.Verdict = false
		reqLogger.WithError(faceErr).Warn("Face comparison failed")
	}

	response := s.buildResponse(requestID, claim, doc, typedName, decision)
	response.ProcessingSec = time.Since(start).Seconds()

	reqLogger.WithFields(logrus.Fields{
		"verdict":          response.Verdict,
		"identifier_match": response.IdentifierMatch,
		"face_match":       response.FaceMatch,
		"reason":           response.Reason,
	}).Info("Verification decision")

	return response, nil
}

func (s *VerificationService) buildResponse(requestID string, claim verification.IdentityClaim, doc verification.ExtractedDocument, typedName string, decision verification.Result) *models.VerificationResponse {
	response := &models.VerificationResponse{
		RequestID:       requestID,
		Verdict:         decision.Verdict,
		TypedID:         claim.Normalized(),
		IdentifierMatch: decision.IdentifierMatch,
		FaceMatch:       decision.FaceMatch,
		Reason:          decision.Reason,
		HolderName:      doc.HolderName,
		OCRTextSnippet:  ocr.Excerpt(doc.RawText, snippetLength),
	}
	if decision.IdentifierFound {
		extracted := decision.ExtractedID
		response.ExtractedID = &extracted
	}
	if decision.Face != nil {
		response.FaceStrategy = string(decision.Face.Strategy)
		distance := decision.Face.Distance
		response.FaceDistance = &distance
		if decision.Face.Strategy == face.StrategyEmbedding {
			confidence := decision.Face.Confidence
			response.FaceConfidence = &confidence
		}
	}
	if typedName != "" && doc.HolderName != "" {
		similarity := identity.NameSimilarity(typedName, doc.HolderName)
		response.NameSimilarity = &similarity
	}
	return response
}
