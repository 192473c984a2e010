package hpo

const (
	// RequiredStreak is the number of consecutive qualifying rounds needed
	// for success.
	RequiredStreak    = 20
	AccuracyThreshold = 0.90
	LossThreshold     = 0.30

	// Unreached stands for an infinite rounds-to-success in tables and
	// storage.
	Unreached = -1
)

// SuccessTracker detects convergence: the test accuracy and the test loss
// must both satisfy their thresholds for RequiredStreak rounds in a row.
type SuccessTracker struct {
	accuracyStreak  int
	lossStreak      int
	roundsToSuccess int
	succeeded       bool
}

func NewSuccessTracker() *SuccessTracker {
	return &SuccessTracker{roundsToSuccess: Unreached}
}

// Update feeds the metrics of one round and reports whether both streaks
// currently qualify. The first success fixes RoundsToSuccess for good.
func (st *SuccessTracker) Update(round int, accuracy, testLoss float64) bool {
	if accuracy >= AccuracyThreshold {
		st.accuracyStreak++
	} else {
		st.accuracyStreak = 0
	}

	if testLoss <= LossThreshold {
		st.lossStreak++
	} else {
		st.lossStreak = 0
	}

	if st.accuracyStreak < RequiredStreak || st.lossStreak < RequiredStreak {
		return false
	}
	if !st.succeeded {
		st.succeeded = true
		st.roundsToSuccess = round - RequiredStreak + 1
	}

	return true
}

// RoundsToSuccess returns the recorded value and whether success was ever
// reached. It is Unreached until then.
func (st *SuccessTracker) RoundsToSuccess() (int, bool) {
	return st.roundsToSuccess, st.succeeded
}

func (st *SuccessTracker) Reset() {
	*st = SuccessTracker{roundsToSuccess: Unreached}
}
