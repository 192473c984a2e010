package dataset

const NumClasses = 3

// Class labels of the motion traces.
const (
	NoTheft = iota
	CarryingAway
	LockBreach
)

// MotionSample is one recorded accelerometer trace with its label.
type MotionSample struct {
	SampleID  int
	Timestamp string
	Label     int
	Filename  string
	AccX      []float32
	AccY      []float32
	AccZ      []float32
}

// TrainingSample is a normalized feature vector with a one-hot target.
// Samples handed out by the preprocessor share their backing arrays and
// must be treated as read-only.
type TrainingSample struct {
	Features []float32
	Target   []float32
}

// Class returns the index of the hot entry of the target.
func (s TrainingSample) Class() int {
	best := 0
	for i, v := range s.Target {
		if v > s.Target[best] {
			best = i
		}
	}

	return best
}

func oneHot(label int) ([]float32, error) {
	if label < 0 || label >= NumClasses {
		return nil, ErrInvalidLabel
	}
	target := make([]float32, NumClasses)
	target[label] = 1

	return target, nil
}

// LabelDistribution counts samples per label.
func LabelDistribution(samples []MotionSample) map[int]int {
	dist := make(map[int]int, NumClasses)
	for _, s := range samples {
		dist[s.Label]++
	}

	return dist
}
