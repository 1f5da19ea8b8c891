package ml

import (
	"fmt"
	"math"

	"github.com/sjwhitworth/golearn/evaluation"
)

// ClassReport holds the classification metrics for a single class.
type ClassReport struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1-score"`
	Support   int     `json:"support"`
}

// Report is the classification report of a test set.
type Report struct {
	Classes     map[string]ClassReport `json:"classes"`
	Accuracy    float64                `json:"accuracy"`
	MacroAvg    ClassReport            `json:"macro avg"`
	WeightedAvg ClassReport            `json:"weighted avg"`
}

// ConfusionMatrix builds the confusion matrix of actual versus predicted class indexes.
// Every class is present in both dimensions, even if it was never seen.
func ConfusionMatrix(classes []string, actual, predicted []int) (evaluation.ConfusionMatrix, error) {
	if len(actual) != len(predicted) {
		return nil, fmt.Errorf("actual and predicted do not align [ %d | %d ]", len(actual), len(predicted))
	}
	cm := make(evaluation.ConfusionMatrix, len(classes))
	for _, ref := range classes {
		cm[ref] = make(map[string]int, len(classes))
		for _, pred := range classes {
			cm[ref][pred] = 0
		}
	}
	for i := range actual {
		cm[classes[actual[i]]][classes[predicted[i]]]++
	}
	return cm, nil
}

// NewReport computes precision, recall and f1 per class, together with the macro and weighted averages.
// Undefined ratios, e.g. precision of a class that was never predicted, are reported as 0.
func NewReport(classes []string, cm evaluation.ConfusionMatrix) Report {
	report := Report{
		Classes: make(map[string]ClassReport, len(classes)),
	}
	total := 0
	for _, c := range classes {
		support := 0
		for _, n := range cm[c] {
			support += n
		}
		r := ClassReport{
			Precision: defined(evaluation.GetPrecision(c, cm)),
			Recall:    defined(evaluation.GetRecall(c, cm)),
			F1:        defined(evaluation.GetF1Score(c, cm)),
			Support:   support,
		}
		report.Classes[c] = r
		total += support

		report.MacroAvg.Precision += r.Precision
		report.MacroAvg.Recall += r.Recall
		report.MacroAvg.F1 += r.F1

		w := float64(support)
		report.WeightedAvg.Precision += w * r.Precision
		report.WeightedAvg.Recall += w * r.Recall
		report.WeightedAvg.F1 += w * r.F1
	}

	if k := float64(len(classes)); k > 0 {
		report.MacroAvg.Precision /= k
		report.MacroAvg.Recall /= k
		report.MacroAvg.F1 /= k
	}
	if total > 0 {
		t := float64(total)
		report.WeightedAvg.Precision /= t
		report.WeightedAvg.Recall /= t
		report.WeightedAvg.F1 /= t
		report.Accuracy = defined(evaluation.GetAccuracy(cm))
	}
	report.MacroAvg.Support = total
	report.WeightedAvg.Support = total
	return report
}

// Accuracy returns the share of correct predictions.
func Accuracy(actual, predicted []int) float64 {
	if len(actual) == 0 {
		return 0
	}
	correct := 0
	for i := range actual {
		if actual[i] == predicted[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(actual))
}

func defined(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
