package nn

import "errors"

var (
	ErrInvalidTopology = errors.New("topology needs at least two positive layer sizes")
	ErrShapeMismatch   = errors.New("shape mismatch")
)
