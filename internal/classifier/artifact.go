package classifier

import (
	"time"

	"github.com/google/uuid"

	apperrors "go-ekyc-verifier/internal/errors"
)

// Artifact is a fitted vectorizer and classifier produced by one
// training run. The pair is serialized and loaded as a single opaque
// unit and is immutable once produced; retraining yields a new artifact
// with a new ID.
type Artifact struct {
	ID         string
	TrainedAt  time.Time
	Vectorizer *TfidfVectorizer
	Classifier *SoftmaxClassifier
}

// NewArtifact stamps a fitted pair with identity and provenance
func NewArtifact(vectorizer *TfidfVectorizer, classifier *SoftmaxClassifier) *Artifact {
	return &Artifact{
		ID:         uuid.NewString(),
		TrainedAt:  time.Now().UTC(),
		Vectorizer: vectorizer,
		Classifier: classifier,
	}
}

// Labels returns the classes the artifact can predict
func (a *Artifact) Labels() []string {
	return a.Classifier.Labels
}

// Infer transforms text through the fitted vectorizer and returns the
// arg-max label with its probability. Deterministic: identical
// (artifact, text) always yields an identical result.
func (a *Artifact) Infer(text string) (string, float64, error) {
	if a.Vectorizer == nil || !a.Vectorizer.Fitted() || a.Classifier == nil || !a.Classifier.Trained() {
		return "", 0, apperrors.NewModelNotTrainedError("artifact holds no fitted model")
	}
	label, confidence := a.Classifier.Predict(a.Vectorizer.Transform(text))
	return label, confidence, nil
}
