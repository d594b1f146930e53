package service

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"github.com/bibbank/fraudml/internal/domain/model"
)

// ErrUndefinedROCAUC is returned when the labels contain a single class.
var ErrUndefinedROCAUC = errors.New("roc_auc is undefined when only one class is present in the labels")

// ConfusionMatrix counts binary outcomes with fraud as the positive class.
type ConfusionMatrix struct {
	TruePositives  int
	FalsePositives int
	TrueNegatives  int
	FalseNegatives int
}

// NewConfusionMatrix tallies predicted labels against true labels.
func NewConfusionMatrix(labels, predicted []int) (ConfusionMatrix, error) {
	if len(labels) != len(predicted) {
		return ConfusionMatrix{}, fmt.Errorf("label count %d does not match prediction count %d", len(labels), len(predicted))
	}
	if len(labels) == 0 {
		return ConfusionMatrix{}, fmt.Errorf("no labels to score")
	}

	var cm ConfusionMatrix
	for i, y := range labels {
		switch {
		case y == 1 && predicted[i] == 1:
			cm.TruePositives++
		case y == 1:
			cm.FalseNegatives++
		case predicted[i] == 1:
			cm.FalsePositives++
		default:
			cm.TrueNegatives++
		}
	}
	return cm, nil
}

// Total returns the number of scored rows.
func (c ConfusionMatrix) Total() int {
	return c.TruePositives + c.FalsePositives + c.TrueNegatives + c.FalseNegatives
}

// Accuracy is the fraction of correct predictions.
func (c ConfusionMatrix) Accuracy() float64 {
	return ratio(c.TruePositives+c.TrueNegatives, c.Total())
}

// Precision is TP / (TP + FP), or 0 when nothing was predicted positive.
func (c ConfusionMatrix) Precision() float64 {
	return ratio(c.TruePositives, c.TruePositives+c.FalsePositives)
}

// Recall is TP / (TP + FN), or 0 when there are no positives.
func (c ConfusionMatrix) Recall() float64 {
	return ratio(c.TruePositives, c.TruePositives+c.FalseNegatives)
}

// F1 is the harmonic mean of precision and recall, or 0 when both are 0.
func (c ConfusionMatrix) F1() float64 {
	return ratio(2*c.TruePositives, 2*c.TruePositives+c.FalsePositives+c.FalseNegatives)
}

// ComputeMetrics scores predictions against true labels.
func ComputeMetrics(labels []int, predictions []model.Prediction) (model.Metrics, error) {
	if err := model.ValidateLabels(labels); err != nil {
		return model.Metrics{}, err
	}
	predicted := make([]int, len(predictions))
	scores := make([]float64, len(predictions))
	for i, p := range predictions {
		predicted[i] = p.Label
		scores[i] = p.Probability
	}

	cm, err := NewConfusionMatrix(labels, predicted)
	if err != nil {
		return model.Metrics{}, err
	}
	auc, err := ROCAUC(labels, scores)
	if err != nil {
		return model.Metrics{}, err
	}

	return model.Metrics{
		Accuracy:  cm.Accuracy(),
		Precision: cm.Precision(),
		Recall:    cm.Recall(),
		F1Score:   cm.F1(),
		ROCAUC:    auc,
	}, nil
}

// ROCAUC is the area under the ROC curve of scores for the positive class.
func ROCAUC(labels []int, scores []float64) (float64, error) {
	if len(labels) != len(scores) {
		return 0, fmt.Errorf("label count %d does not match score count %d", len(labels), len(scores))
	}

	idx := make([]int, len(scores))
	positives := 0
	for i := range idx {
		idx[i] = i
		positives += labels[i]
	}
	if positives == 0 || positives == len(labels) {
		return 0, ErrUndefinedROCAUC
	}

	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] < scores[idx[b]] })
	y := make([]float64, len(idx))
	classes := make([]bool, len(idx))
	for k, i := range idx {
		y[k] = scores[i]
		classes[k] = labels[i] == 1
	}

	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr), nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
