package dispatcher

import "errors"

var (
	ErrTaskPanic      = errors.New("task panicked")
	ErrTaskNotDefined = errors.New("task not defined")
)
