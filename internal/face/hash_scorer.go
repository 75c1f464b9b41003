package face

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/corona10/goimagehash"

	apperrors "go-ekyc-verifier/internal/errors"
)

// HashScorer compares perceptual hashes of the whole frame.
// Match iff the Hamming distance is at or below the bit threshold.
type HashScorer struct {
	bitThreshold int
}

// NewHashScorer creates a perceptual-hash scorer with the given bit threshold
func NewHashScorer(bitThreshold int) *HashScorer {
	return &HashScorer{bitThreshold: bitThreshold}
}

// StrategyName returns the strategy tag
func (s *HashScorer) StrategyName() Strategy {
	return StrategyHash
}

// Compare hashes both frames and measures their Hamming distance
func (s *HashScorer) Compare(_ context.Context, docImage, selfie []byte) (Result, error) {
	docHash, err := hashImage(docImage)
	if err != nil {
		return Result{Strategy: StrategyHash}, apperrors.NewExtractionError("failed to hash document image", err)
	}
	selfieHash, err := hashImage(selfie)
	if err != nil {
		return Result{Strategy: StrategyHash}, apperrors.NewExtractionError("failed to hash selfie image", err)
	}

	distance, err := docHash.Distance(selfieHash)
	if err != nil {
		return Result{Strategy: StrategyHash}, apperrors.NewInternalError("hash comparison failed", err)
	}

	return Result{
		Strategy: StrategyHash,
		Distance: float64(distance),
		Match:    distance <= s.bitThreshold,
	}, nil
}

func hashImage(data []byte) (*goimagehash.ImageHash, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return goimagehash.PerceptionHash(img)
}
