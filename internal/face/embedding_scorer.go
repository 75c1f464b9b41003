package face

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	_ "image/png"

	goface "github.com/Kagami/go-face"
	"gonum.org/v1/gonum/floats"

	apperrors "go-ekyc-verifier/internal/errors"
)

// EmbeddingScorer compares 128-dimensional face descriptors.
// Match iff confidence (1 - Euclidean distance) exceeds the threshold.
type EmbeddingScorer struct {
	rec       *goface.Recognizer
	threshold float64
}

// NewEmbeddingScorer creates a descriptor-based scorer. modelsDir must
// contain the dlib detection and recognition model files.
func NewEmbeddingScorer(modelsDir string, threshold float64) (*EmbeddingScorer, error) {
	rec, err := goface.NewRecognizer(modelsDir)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to initialize face recognizer", err)
	}
	return &EmbeddingScorer{rec: rec, threshold: threshold}, nil
}

// StrategyName returns the strategy tag
func (s *EmbeddingScorer) StrategyName() Strategy {
	return StrategyEmbedding
}

// Compare detects a face in each image and measures descriptor distance.
// Zero detected faces in either image is an explicit terminal failure,
// never a silent false.
func (s *EmbeddingScorer) Compare(_ context.Context, docImage, selfie []byte) (Result, error) {
	docDesc, err := s.firstDescriptor(docImage)
	if err != nil {
		return Result{Strategy: StrategyEmbedding}, err
	}
	selfieDesc, err := s.firstDescriptor(selfie)
	if err != nil {
		return Result{Strategy: StrategyEmbedding}, err
	}

	return s.resultFromDistance(descriptorDistance(docDesc, selfieDesc)), nil
}

// resultFromDistance maps a descriptor distance onto the common result
// shape: confidence is 1 - distance, matching iff it exceeds the
// threshold strictly.
func (s *EmbeddingScorer) resultFromDistance(distance float64) Result {
	confidence := 1 - distance
	return Result{
		Strategy:   StrategyEmbedding,
		Distance:   distance,
		Confidence: confidence,
		Match:      confidence > s.threshold,
	}
}

// Close releases the underlying dlib recognizer
func (s *EmbeddingScorer) Close() {
	s.rec.Close()
}

func (s *EmbeddingScorer) firstDescriptor(data []byte) (goface.Descriptor, error) {
	jpegData, err := toJPEG(data)
	if err != nil {
		return goface.Descriptor{}, apperrors.NewExtractionError("failed to decode image for face detection", err)
	}

	faces, err := s.rec.Recognize(jpegData)
	if err != nil {
		return goface.Descriptor{}, apperrors.NewInternalError("face recognition failed", err)
	}
	if len(faces) == 0 {
		return goface.Descriptor{}, apperrors.NewNoFaceDetectedError("no face detected in image", nil)
	}
	return faces[0].Descriptor, nil
}

// toJPEG normalizes any decodable image to JPEG, the only format the
// dlib loader accepts.
func toJPEG(data []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if format == "jpeg" {
		return data, nil
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func descriptorDistance(a, b goface.Descriptor) float64 {
	av := make([]float64, len(a))
	bv := make([]float64, len(b))
	for i := range a {
		av[i] = float64(a[i])
		bv[i] = float64(b[i])
	}
	return floats.Distance(av, bv, 2)
}
