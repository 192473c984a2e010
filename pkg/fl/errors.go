package fl

import "errors"

var (
	ErrNoUpdates     = errors.New("no updates provided for aggregation")
	ErrShapeMismatch = errors.New("client weight vectors differ in length")
	ErrEmptyModel    = errors.New("model has no weights")
	ErrInvalidRunID  = errors.New("invalid run id")
)
