package classifier

import (
	"context"
	"sync/atomic"

	apperrors "go-ekyc-verifier/internal/errors"
)

// ModelHandle is the process-wide entry point to the serving artifact:
// many concurrent readers, zero in-process writers. Reloading installs a
// whole new artifact atomically, so in-flight reads never observe a
// partially updated model.
type ModelHandle struct {
	current atomic.Pointer[Artifact]
}

// NewModelHandle creates an empty handle; Infer fails until an artifact
// is swapped in.
func NewModelHandle() *ModelHandle {
	return &ModelHandle{}
}

// Swap atomically installs a new artifact and returns the previous one
func (h *ModelHandle) Swap(artifact *Artifact) *Artifact {
	return h.current.Swap(artifact)
}

// Current returns the serving artifact, or nil when none is loaded
func (h *ModelHandle) Current() *Artifact {
	return h.current.Load()
}

// Infer classifies text with the serving artifact
func (h *ModelHandle) Infer(text string) (string, float64, error) {
	artifact := h.current.Load()
	if artifact == nil {
		return "", 0, apperrors.NewModelNotTrainedError("no model artifact loaded")
	}
	return artifact.Infer(text)
}

// ReloadFrom loads a fresh artifact from the registry and hot-swaps it in
func (h *ModelHandle) ReloadFrom(ctx context.Context, registry Registry) (*Artifact, error) {
	artifact, err := registry.Load(ctx)
	if err != nil {
		return nil, err
	}
	if artifact.Vectorizer == nil || artifact.Classifier == nil {
		return nil, apperrors.NewPersistenceError("artifact is missing its fitted pair", nil)
	}
	h.Swap(artifact)
	return artifact, nil
}
