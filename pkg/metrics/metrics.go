// Package metrics scores 3-class predictions against one-hot targets.
package metrics

import (
	"cmp"
	"math"
	"slices"
)

const (
	NumClasses = 3

	epsilon = 1e-15
)

type ConfusionMatrix [NumClasses][NumClasses]int

// Total returns the number of samples counted in the matrix.
func (m ConfusionMatrix) Total() int {
	total := 0
	for _, row := range m {
		for _, v := range row {
			total += v
		}
	}

	return total
}

// Argmax returns the index of the first maximum.
func Argmax(v []float32) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}

	return best
}

func Accuracy(preds, targets [][]float32) float64 {
	if len(preds) == 0 {
		return 0
	}

	correct := 0
	for i := range preds {
		if Argmax(preds[i]) == Argmax(targets[i]) {
			correct++
		}
	}

	return float64(correct) / float64(len(preds))
}

// CrossEntropy is the mean over samples of -Σ t·log(p), with p clipped to
// [1e-15, 1-1e-15].
func CrossEntropy(preds, targets [][]float32) float64 {
	if len(preds) == 0 {
		return 0
	}

	var total float64
	for i := range preds {
		for k, p := range preds[i] {
			clipped := min(max(float64(p), epsilon), 1-epsilon)
			total -= float64(targets[i][k]) * math.Log(clipped)
		}
	}

	return total / float64(len(preds))
}

// Confusion counts samples by [true class][predicted class].
func Confusion(preds, targets [][]float32) ConfusionMatrix {
	var m ConfusionMatrix
	for i := range preds {
		m[Argmax(targets[i])][Argmax(preds[i])]++
	}

	return m
}

// F1PerClass derives per-class F1 scores from a confusion matrix. A class
// with no predictions or no true samples yields NaN.
func F1PerClass(m ConfusionMatrix) [NumClasses]float64 {
	var scores [NumClasses]float64
	for c := range NumClasses {
		tp := float64(m[c][c])
		var fp, fn float64
		for o := range NumClasses {
			if o == c {
				continue
			}
			fp += float64(m[o][c])
			fn += float64(m[c][o])
		}

		precision := div(tp, tp+fp)
		recall := div(tp, tp+fn)
		scores[c] = div(2*precision*recall, precision+recall)
	}

	return scores
}

type scored struct {
	score    float32
	positive bool
}

// ROCAUCPerClass computes one-vs-rest ROC-AUC with the trapezoid rule.
// Scores are visited from highest to lowest; among equal scores positives
// are visited first. A class with no positives or no negatives scores 0.
func ROCAUCPerClass(preds, targets [][]float32) [NumClasses]float64 {
	var aucs [NumClasses]float64
	for c := range NumClasses {
		points := make([]scored, len(preds))
		pos, neg := 0, 0
		for i := range preds {
			points[i] = scored{score: preds[i][c], positive: targets[i][c] > 0.5}
			if points[i].positive {
				pos++
			} else {
				neg++
			}
		}
		if pos == 0 || neg == 0 {
			continue
		}

		slices.SortFunc(points, func(a, b scored) int {
			if r := cmp.Compare(a.score, b.score); r != 0 {
				return r
			}
			switch {
			case a.positive == b.positive:
				return 0
			case a.positive:
				return 1
			default:
				return -1
			}
		})

		var auc, prevTPR, prevFPR float64
		tp, fp := 0, 0
		for i := len(points) - 1; i >= 0; i-- {
			if points[i].positive {
				tp++
			} else {
				fp++
			}
			tpr := float64(tp) / float64(pos)
			fpr := float64(fp) / float64(neg)
			auc += (fpr - prevFPR) * (tpr + prevTPR) / 2
			prevTPR, prevFPR = tpr, fpr
		}
		aucs[c] = auc
	}

	return aucs
}

func div(a, b float64) float64 {
	if b == 0 {
		return math.NaN()
	}

	return a / b
}
