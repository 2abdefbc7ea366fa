package types

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned when a command is issued on a channel
// that has no established session.
var ErrNotConnected = errors.New("not connected to device")

// ConnectionError means the channel itself is unusable: dial failure,
// authentication rejection, or a session that never produced a prompt.
// Callers should not retry at this layer.
type ConnectionError struct {
	Host string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.Host, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// CommandError means one command failed while the channel is presumed
// otherwise alive: a timeout, a rejected command, or an unconnected send.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// IsConnectionError reports whether err is (or wraps) a ConnectionError
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// IsCommandError reports whether err is (or wraps) a CommandError
func IsCommandError(err error) bool {
	var ce *CommandError
	return errors.As(err, &ce)
}
