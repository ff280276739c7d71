package crtp

import (
	"errors"
	"fmt"
)

var (
	// ErrFrameSize indicates a frame is too short or too long.
	ErrFrameSize = errors.New("invalid frame size")
	// ErrShortPayload indicates a payload is smaller than its layout.
	ErrShortPayload = errors.New("payload too short")
)

// ChecksumError reports a checksum mismatch.
type ChecksumError struct {
	Received   byte
	Calculated byte
}

// Error implements error.
func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: received 0x%02X, calculated 0x%02X", e.Received, e.Calculated)
}
