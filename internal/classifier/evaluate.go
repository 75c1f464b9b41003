package classifier

import (
	"fmt"
	"sort"
	"strings"
)

// LabelMetrics holds per-label diagnostics on the held-out split
type LabelMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// EvaluationReport summarizes held-out performance. Diagnostic only; it
// never gates persistence.
type EvaluationReport struct {
	PerLabel []LabelMetrics `json:"per_label"`
	Accuracy float64        `json:"accuracy"`
	Total    int            `json:"total"`
}

// Evaluate computes per-label precision, recall, and F1 from parallel
// slices of true and predicted labels
func Evaluate(trueLabels, predicted []string) *EvaluationReport {
	truePos := make(map[string]int)
	falsePos := make(map[string]int)
	falseNeg := make(map[string]int)
	support := make(map[string]int)
	correct := 0

	for i, actual := range trueLabels {
		support[actual]++
		pred := predicted[i]
		if pred == actual {
			truePos[actual]++
			correct++
		} else {
			falsePos[pred]++
			falseNeg[actual]++
		}
	}

	labels := make([]string, 0, len(support))
	for label := range support {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	report := &EvaluationReport{Total: len(trueLabels)}
	if report.Total > 0 {
		report.Accuracy = float64(correct) / float64(report.Total)
	}
	for _, label := range labels {
		tp := float64(truePos[label])
		var precision, recall, f1 float64
		if tp+float64(falsePos[label]) > 0 {
			precision = tp / (tp + float64(falsePos[label]))
		}
		if tp+float64(falseNeg[label]) > 0 {
			recall = tp / (tp + float64(falseNeg[label]))
		}
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		report.PerLabel = append(report.PerLabel, LabelMetrics{
			Label:     label,
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   support[label],
		})
	}
	return report
}

// String renders the report in a classification-report layout
func (r *EvaluationReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %9s %9s %9s %9s\n", "label", "precision", "recall", "f1", "support")
	for _, m := range r.PerLabel {
		fmt.Fprintf(&b, "%-20s %9.3f %9.3f %9.3f %9d\n", m.Label, m.Precision, m.Recall, m.F1, m.Support)
	}
	fmt.Fprintf(&b, "\naccuracy %.3f on %d held-out samples\n", r.Accuracy, r.Total)
	return b.String()
}
