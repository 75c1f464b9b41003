package classifier

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SoftmaxClassifier is a multinomial logistic-regression classifier
// trained by full-batch gradient descent with a bounded iteration count.
// Weights are stored flat so the fitted model gob-serializes cleanly
// inside the artifact; gonum matrices are rebuilt over the same backing
// slice during training and inference.
type SoftmaxClassifier struct {
	Labels  []string
	Weights []float64 // (features+1) x classes, bias in the last row
	Rows    int
	Cols    int

	MaxIterations int
	LearningRate  float64
	Tolerance     float64
}

// NewSoftmaxClassifier creates an untrained classifier
func NewSoftmaxClassifier(maxIterations int, learningRate float64) *SoftmaxClassifier {
	if maxIterations <= 0 {
		maxIterations = 500
	}
	if learningRate <= 0 {
		learningRate = 0.5
	}
	return &SoftmaxClassifier{
		MaxIterations: maxIterations,
		LearningRate:  learningRate,
		Tolerance:     1e-6,
	}
}

// Trained reports whether Fit has produced weights
func (c *SoftmaxClassifier) Trained() bool {
	return len(c.Weights) > 0
}

// Fit trains the classifier on a vectorized design matrix. y holds the
// index of each sample's label within labels. Weights start at zero and
// descent is deterministic, so identical inputs yield identical models.
func (c *SoftmaxClassifier) Fit(x *mat.Dense, y []int, labels []string) {
	samples, features := x.Dims()
	classes := len(labels)

	c.Labels = append([]string(nil), labels...)
	c.Rows = features + 1
	c.Cols = classes
	c.Weights = make([]float64, c.Rows*c.Cols)

	// Design matrix with a trailing bias column of ones
	xb := mat.NewDense(samples, features+1, nil)
	row := make([]float64, features+1)
	row[features] = 1
	for i := 0; i < samples; i++ {
		copy(row, x.RawRowView(i))
		xb.SetRow(i, row)
	}

	// One-hot targets
	target := mat.NewDense(samples, classes, nil)
	for i, cls := range y {
		target.Set(i, cls, 1)
	}

	w := mat.NewDense(c.Rows, c.Cols, c.Weights)
	logits := mat.NewDense(samples, classes, nil)
	grad := mat.NewDense(c.Rows, c.Cols, nil)
	prev := math.Inf(1)

	for iter := 0; iter < c.MaxIterations; iter++ {
		logits.Mul(xb, w)

		loss := 0.0
		for i := 0; i < samples; i++ {
			row := logits.RawRowView(i)
			softmaxInPlace(row)
			loss -= math.Log(math.Max(row[y[i]], 1e-15))
		}
		loss /= float64(samples)

		// logits now holds probabilities; gradient = Xb^T (P − T) / n
		logits.Sub(logits, target)
		grad.Mul(xb.T(), logits)
		grad.Scale(c.LearningRate/float64(samples), grad)
		w.Sub(w, grad)

		if math.Abs(prev-loss) < c.Tolerance {
			break
		}
		prev = loss
	}
}

// PredictProba returns the probability distribution over labels for one
// feature vector
func (c *SoftmaxClassifier) PredictProba(features []float64) []float64 {
	w := mat.NewDense(c.Rows, c.Cols, c.Weights)
	xb := append(append([]float64(nil), features...), 1)

	probs := make([]float64, c.Cols)
	for j := 0; j < c.Cols; j++ {
		probs[j] = floats.Dot(xb, mat.Col(nil, j, w))
	}
	softmaxInPlace(probs)
	return probs
}

// Predict returns the arg-max label and its probability
func (c *SoftmaxClassifier) Predict(features []float64) (string, float64) {
	probs := c.PredictProba(features)
	best := floats.MaxIdx(probs)
	return c.Labels[best], probs[best]
}

func softmaxInPlace(v []float64) {
	max := floats.Max(v)
	sum := 0.0
	for i, x := range v {
		v[i] = math.Exp(x - max)
		sum += v[i]
	}
	floats.Scale(1/sum, v)
}
