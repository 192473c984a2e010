package simulation

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid simulation configuration")
	ErrEmptyTestSet  = errors.New("test set is empty")
)
