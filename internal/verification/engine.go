// Package verification fuses the identifier and face sub-signals into a
// single explainable verdict.
package verification

import (
	"strings"

	"go-ekyc-verifier/internal/face"
	"go-ekyc-verifier/internal/identity"
)

// Failure reasons reported when the verdict is false
const (
	ReasonIdentifierNotFound = "IDENTIFIER_NOT_FOUND"
	ReasonIdentifierMismatch = "IDENTIFIER_MISMATCH"
	ReasonFaceMismatch       = "FACE_MISMATCH"
	ReasonNoFaceDetected     = "NO_FACE_DETECTED"
	ReasonFaceUnscorable     = "FACE_UNSCORABLE"
)

// IdentityClaim is the user-typed identity number, normalized once at
// construction and immutable afterwards.
type IdentityClaim struct {
	typed      string
	normalized string
}

// NewIdentityClaim normalizes a typed identity number into a claim
func NewIdentityClaim(typed string) IdentityClaim {
	return IdentityClaim{
		typed:      strings.TrimSpace(typed),
		normalized: identity.NormalizeTyped(typed),
	}
}

// Typed returns the identity number as the user entered it
func (c IdentityClaim) Typed() string { return c.typed }

// Normalized returns the digits-only form of the claim
func (c IdentityClaim) Normalized() string { return c.normalized }

// ExtractedDocument holds what OCR produced for one verification request.
// It is created per request and discarded after the response.
type ExtractedDocument struct {
	RawText    string
	Identifier string
	Found      bool
	HolderName string
}

// ExtractDocument derives the identifier and holder name from OCR text
func ExtractDocument(rawText string) ExtractedDocument {
	id, found := identity.ExtractFromText(rawText)
	return ExtractedDocument{
		RawText:    rawText,
		Identifier: id,
		Found:      found,
		HolderName: identity.ExtractName(rawText),
	}
}

// Result carries the verdict together with every sub-signal actually
// computed, so a false verdict is always explainable.
type Result struct {
	Verdict         bool
	IdentifierMatch bool
	FaceMatch       bool
	ExtractedID     string
	IdentifierFound bool
	Face            *face.Result
	Reason          string
}

// Engine computes the final verification verdict
type Engine struct{}

// NewEngine creates a decision engine
func NewEngine() *Engine {
	return &Engine{}
}

// ShouldShortCircuit reports whether the face score can be skipped
// entirely: a document without an extractable identifier already fails,
// so computing the face score would be wasted work.
func (e *Engine) ShouldShortCircuit(doc ExtractedDocument) bool {
	return !doc.Found
}

// Decide fuses the identifier and face signals. The verdict is the
// strict boolean conjunction of the two matches; it is never averaged,
// weighted, or scored on a sliding scale. faceResult may be nil only
// when the identifier was not found (the short-circuit branch).
func (e *Engine) Decide(claim IdentityClaim, doc ExtractedDocument, faceResult *face.Result) Result {
	result := Result{
		ExtractedID:     doc.Identifier,
		IdentifierFound: doc.Found,
		Face:            faceResult,
	}

	if !doc.Found {
		result.Reason = ReasonIdentifierNotFound
		return result
	}

	result.IdentifierMatch = claim.Normalized() == doc.Identifier
	if faceResult != nil {
		result.FaceMatch = faceResult.Match
	}
	result.Verdict = result.IdentifierMatch && result.FaceMatch

	if !result.Verdict {
		switch {
		case !result.IdentifierMatch:
			result.Reason = ReasonIdentifierMismatch
		default:
			result.Reason = ReasonFaceMismatch
		}
	}
	return result
}
