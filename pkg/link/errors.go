package link

import "errors"

var (
	// ErrQueueFull indicates a push timed out on a full queue.
	ErrQueueFull = errors.New("queue full")
	// ErrQueueEmpty indicates a pop timed out on an empty queue.
	ErrQueueEmpty = errors.New("queue empty")
	// ErrNotConnected indicates no peer has been observed yet.
	ErrNotConnected = errors.New("not connected")
	// ErrNotInitialized indicates the endpoint socket is not open.
	ErrNotInitialized = errors.New("endpoint not initialized")
	// ErrClosed indicates the endpoint was closed and can't be reopened.
	ErrClosed = errors.New("endpoint closed")
)
