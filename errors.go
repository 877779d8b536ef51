package obcore

import "errors"

var (
	ErrQueueFull      = errors.New("ring buffer is full")
	ErrInvalidOrder   = errors.New("order is invalid")
	ErrNotFound       = errors.New("not found")
	ErrShutdown       = errors.New("engine is shutting down")
	ErrAlreadyRunning = errors.New("engine is already running")
	ErrUnknownSymbol  = errors.New("unknown symbol id")
)
