package apperror

import "errors"

var (
	ErrInvalidBoard     = errors.New("invalid board")
	ErrInvalidState     = errors.New("invalid state")
	ErrStrategyNotFound = errors.New("strategy not found")
)
