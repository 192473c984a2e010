package metrics

import (
	"fmt"
	"io"
	"math"

	"github.com/fatih/color"
)

// Evaluation is the final report computed on the held-out test set.
type Evaluation struct {
	Samples   int                 `json:"samples"`
	Accuracy  float64             `json:"accuracy"`
	Loss      float64             `json:"loss"`
	Confusion ConfusionMatrix     `json:"confusion_matrix"`
	F1        [NumClasses]float64 `json:"-"`
	AUC       [NumClasses]float64 `json:"auc"`
}

func Evaluate(preds, targets [][]float32) Evaluation {
	confusion := Confusion(preds, targets)

	return Evaluation{
		Samples:   len(preds),
		Accuracy:  Accuracy(preds, targets),
		Loss:      CrossEntropy(preds, targets),
		Confusion: confusion,
		F1:        F1PerClass(confusion),
		AUC:       ROCAUCPerClass(preds, targets),
	}
}

var (
	header = color.New(color.Bold)
	good   = color.New(color.FgGreen)
	weak   = color.New(color.FgYellow)
	absent = color.New(color.FgRed)
)

// Print renders the report. Colors are dropped automatically when the
// output is not a terminal.
func (e Evaluation) Print(w io.Writer) error {
	if _, err := header.Fprintf(w, "\nFinal evaluation (%d test samples)\n", e.Samples); err != nil {
		return err
	}
	fmt.Fprintf(w, "Accuracy: %.2f%%\n", e.Accuracy*100)
	fmt.Fprintf(w, "Test loss: %.4f\n", e.Loss)

	header.Fprintln(w, "\nConfusion Matrix:")
	fmt.Fprintln(w, "Predicted →")
	fmt.Fprintf(w, "%-10s", "Actual ↓")
	for c := range NumClasses {
		fmt.Fprintf(w, "%8d", c)
	}
	fmt.Fprintln(w)
	for t := range NumClasses {
		fmt.Fprintf(w, "%-10d", t)
		for p := range NumClasses {
			fmt.Fprintf(w, "%8d", e.Confusion[t][p])
		}
		fmt.Fprintln(w)
	}

	header.Fprintln(w, "\nF1 Scores per class:")
	for c, f1 := range e.F1 {
		fmt.Fprintf(w, "Class %d: ", c)
		score(f1).Fprintln(w, formatScore(f1))
	}

	header.Fprintln(w, "\nROC-AUC per class:")
	for c, auc := range e.AUC {
		fmt.Fprintf(w, "Class %d: ", c)
		_, err := score(auc).Fprintln(w, formatScore(auc))
		if err != nil {
			return err
		}
	}

	return nil
}

func score(v float64) *color.Color {
	switch {
	case math.IsNaN(v):
		return absent
	case v >= 0.9:
		return good
	default:
		return weak
	}
}

func formatScore(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}

	return fmt.Sprintf("%.4f", v)
}
