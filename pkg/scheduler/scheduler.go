package scheduler

import "errors"

var (
	ErrNoClients       = errors.New("no clients to select from")
	ErrInvalidFraction = errors.New("client fraction must be in (0, 1]")
)

// Selector picks the clients that take part in a federated round.
type Selector interface {
	SelectClients(total int, fraction float64) ([]int, error)
}

// SelectionSize is max(1, floor(total*fraction)).
func SelectionSize(total int, fraction float64) int {
	return max(1, int(float64(total)*fraction))
}

func validate(total int, fraction float64) error {
	if fraction <= 0 || fraction > 1 {
		return ErrInvalidFraction
	}
	if total <= 0 {
		return ErrNoClients
	}

	return nil
}
