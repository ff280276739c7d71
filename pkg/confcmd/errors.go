package confcmd

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigFrame indicates the frame lacks the config marker or type.
	ErrNotConfigFrame = errors.New("not a config frame")
	// ErrShortPayload indicates a payload smaller than its structure.
	ErrShortPayload = errors.New("config payload too short")
)

// UnknownCommandError reports an unrecognized command type.
type UnknownCommandError struct {
	Code CommandType
}

// Error implements error.
func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown config command 0x%02X", byte(e.Code))
}
