package comm

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady indicates the link is not synchronized yet.
	ErrNotReady = errors.New("not ready")
	// ErrNoReply indicates a command was never answered: the peer replied
	// to a later command first.
	ErrNoReply = errors.New("no reply")
	// ErrDataTooLong indicates the packet data exceeds MaxDataLen.
	ErrDataTooLong = errors.New("packet data too long")
)

// CommandError is the error code replied by the firmware.
type CommandError struct {
	Code byte
}

// Error implements error.
func (e *CommandError) Error() string {
	return fmt.Sprintf("command %02x failed", e.Code)
}
