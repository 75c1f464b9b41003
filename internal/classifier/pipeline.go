package classifier

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"go-ekyc-verifier/internal/dataset"
	apperrors "go-ekyc-verifier/internal/errors"
	"go-ekyc-verifier/internal/logger"
)

// Stage names the training state machine positions
type Stage string

const (
	StageInit       Stage = "INIT"
	StageLoaded     Stage = "LOADED"
	StageSplit      Stage = "SPLIT"
	StageVectorized Stage = "VECTORIZED"
	StageTrained    Stage = "TRAINED"
	StageEvaluated  Stage = "EVALUATED"
	StagePersisted  Stage = "PERSISTED"
)

// TrainingOptions parameterize one pipeline run
type TrainingOptions struct {
	TestFraction  float64
	Seed          int64
	MaxFeatures   int
	MaxIterations int
	LearningRate  float64
}

// DefaultTrainingOptions mirror the defaults the system was tuned with
func DefaultTrainingOptions() TrainingOptions {
	return TrainingOptions{
		TestFraction:  0.2,
		Seed:          42,
		MaxFeatures:   5000,
		MaxIterations: 500,
		LearningRate:  0.5,
	}
}

// TrainingPipeline advances a corpus through
// INIT → LOADED → SPLIT → VECTORIZED → TRAINED → EVALUATED → PERSISTED.
// Any failure aborts the run with a stage-qualified validation error and
// no partial artifact is ever persisted.
type TrainingPipeline struct {
	opts  TrainingOptions
	stage Stage
}

// NewTrainingPipeline creates a pipeline in the INIT stage
func NewTrainingPipeline(opts TrainingOptions) *TrainingPipeline {
	if opts.TestFraction <= 0 || opts.TestFraction >= 1 {
		opts.TestFraction = 0.2
	}
	return &TrainingPipeline{opts: opts, stage: StageInit}
}

// Stage returns the stage the pipeline last completed
func (p *TrainingPipeline) Stage() Stage {
	return p.stage
}

func (p *TrainingPipeline) failf(stage Stage, format string, args ...interface{}) error {
	return apperrors.NewValidationError(
		fmt.Sprintf("training aborted at %s: %s", stage, fmt.Sprintf(format, args...)), nil)
}

// Run executes the full state machine and persists the fitted artifact
// through the registry. The returned report is diagnostic only.
func (p *TrainingPipeline) Run(ctx context.Context, corpus dataset.Corpus, registry Registry) (*Artifact, *EvaluationReport, error) {
	// LOADED: drop rows whose text is empty or whitespace-only
	var texts []string
	var labels []string
	for _, row := range corpus {
		if strings.TrimSpace(row.Text) == "" {
			continue
		}
		texts = append(texts, row.Text)
		labels = append(labels, row.Label)
	}
	if len(texts) == 0 {
		return nil, nil, p.failf(StageLoaded, "corpus has no rows with text (%d raw rows)", len(corpus))
	}
	p.stage = StageLoaded
	logger.WithField("rows", len(texts)).Info("Training corpus loaded")

	// SPLIT: stratified train/test partition with a fixed seed
	trainIdx, testIdx, err := p.stratifiedSplit(labels)
	if err != nil {
		return nil, nil, err
	}
	p.stage = StageSplit

	trainTexts, trainLabels := subset(texts, labels, trainIdx)
	testTexts, testLabels := subset(texts, labels, testIdx)

	// VECTORIZED: fit the vocabulary on the training split only
	vectorizer := NewTfidfVectorizer(p.opts.MaxFeatures)
	vectorizer.Fit(trainTexts)
	if !vectorizer.Fitted() {
		return nil, nil, p.failf(StageVectorized, "training corpus yields no usable terms after tokenization")
	}
	trainX := vectorizer.TransformAll(trainTexts)
	p.stage = StageVectorized

	// TRAINED
	classLabels := distinctSorted(labels)
	labelIndex := make(map[string]int, len(classLabels))
	for i, l := range classLabels {
		labelIndex[l] = i
	}
	y := make([]int, len(trainLabels))
	for i, l := range trainLabels {
		y[i] = labelIndex[l]
	}

	model := NewSoftmaxClassifier(p.opts.MaxIterations, p.opts.LearningRate)
	model.Fit(trainX, y, classLabels)
	p.stage = StageTrained
	logger.WithField("classes", len(classLabels)).Info("Classifier trained")

	// EVALUATED: held-out diagnostics; never gates persistence
	predicted := make([]string, len(testTexts))
	for i, text := range testTexts {
		predicted[i], _ = model.Predict(vectorizer.Transform(text))
	}
	report := Evaluate(testLabels, predicted)
	p.stage = StageEvaluated

	// PERSISTED: vectorizer + classifier as one opaque artifact
	artifact := NewArtifact(vectorizer, model)
	if err := registry.Save(ctx, artifact); err != nil {
		return nil, nil, err
	}
	p.stage = StagePersisted

	return artifact, report, nil
}

// stratifiedSplit partitions sample indices per label. Every label needs
// at least two samples so both splits see it; a stratified split over a
// single class is rejected outright.
func (p *TrainingPipeline) stratifiedSplit(labels []string) (train, test []int, err error) {
	byLabel := make(map[string][]int)
	for i, label := range labels {
		byLabel[label] = append(byLabel[label], i)
	}
	if len(byLabel) < 2 {
		return nil, nil, p.failf(StageSplit, "need at least 2 distinct labels, got %d", len(byLabel))
	}
	for label, idx := range byLabel {
		if len(idx) < 2 {
			return nil, nil, p.failf(StageSplit, "label %q has %d sample(s), need at least 2 for stratification", label, len(idx))
		}
	}

	orderedLabels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		orderedLabels = append(orderedLabels, label)
	}
	sort.Strings(orderedLabels)

	rng := rand.New(rand.NewSource(p.opts.Seed))
	for _, label := range orderedLabels {
		idx := byLabel[label]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		nTest := int(float64(len(idx)) * p.opts.TestFraction)
		if nTest < 1 {
			nTest = 1
		}
		if nTest >= len(idx) {
			nTest = len(idx) - 1
		}
		test = append(test, idx[:nTest]...)
		train = append(train, idx[nTest:]...)
	}
	sort.Ints(train)
	sort.Ints(test)
	return train, test, nil
}

func subset(texts, labels []string, idx []int) ([]string, []string) {
	outTexts := make([]string, len(idx))
	outLabels := make([]string, len(idx))
	for i, j := range idx {
		outTexts[i] = texts[j]
		outLabels[i] = labels[j]
	}
	return outTexts, outLabels
}

func distinctSorted(labels []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	sort.Strings(out)
	return out
}
