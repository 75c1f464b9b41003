// Package face compares two photographs for identity similarity behind a
// single strategy-agnostic interface.
package face

import "context"

// Strategy tags which comparison implementation produced a Result
type Strategy string

const (
	// StrategyHash compares whole-frame perceptual hashes. Cheap, and a
	// coarse proxy: it does not locate or isolate a face region.
	StrategyHash Strategy = "hash"
	// StrategyEmbedding compares detected face descriptors
	StrategyEmbedding Strategy = "embedding"
)

// Result is the common shape produced by every scorer strategy.
// Consumers never depend on strategy-specific fields.
type Result struct {
	Strategy   Strategy `json:"strategy"`
	Distance   float64  `json:"distance"`
	Confidence float64  `json:"confidence"`
	Match      bool     `json:"match"`
}

// Scorer compares a document photo against a selfie.
// Implementations are selected once at configuration time and are safe
// for concurrent use.
type Scorer interface {
	Compare(ctx context.Context, docImage, selfie []byte) (Result, error)
	StrategyName() Strategy
}
