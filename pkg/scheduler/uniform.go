package scheduler

import "math/rand/v2"

type uniform struct {
	rng *rand.Rand
}

// NewUniform returns a selector drawing clients uniformly without
// replacement. Selections are reproducible for a given seed and call order.
func NewUniform(seed uint64) Selector {
	return &uniform{
		rng: rand.New(rand.NewPCG(seed, 0)),
	}
}

func (u *uniform) SelectClients(total int, fraction float64) ([]int, error) {
	if err := validate(total, fraction); err != nil {
		return nil, err
	}

	all := make([]int, total)
	for i := range all {
		all[i] = i
	}
	u.rng.Shuffle(total, func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})

	n := SelectionSize(total, fraction)

	return all[:n:n], nil
}
