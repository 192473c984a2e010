package dataset

import "errors"

var (
	ErrIO               = errors.New("dataset io error")
	ErrMalformedRow     = errors.New("malformed csv row")
	ErrInvalidLabel     = errors.New("label must be 0, 1 or 2")
	ErrNotPrepared      = errors.New("dataset has not been prepared")
	ErrEmptyTrainingSet = errors.New("no training samples available")
)
