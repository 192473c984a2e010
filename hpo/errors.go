package hpo

import "errors"

var (
	ErrEmptyGrid     = errors.New("hyperparameter grid is empty")
	ErrInvalidConfig = errors.New("invalid optimizer configuration")
)
