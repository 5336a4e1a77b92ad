package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDiscovery wraps failures against the /json discovery endpoint,
	// whether unreachable or returning a malformed payload.
	ErrDiscovery = errors.New("devtools discovery failed")

	// ErrNoTargets means discovery succeeded but no page target was listed.
	ErrNoTargets = errors.New("no page targets available")

	// ErrNotConnected is returned when a command is issued while disconnected.
	ErrNotConnected = errors.New("not connected to devtools")

	// ErrAlreadyConnected is returned by Connect while a connection (and its
	// receive loop) is already live. Reconnecting requires an explicit
	// Disconnect first.
	ErrAlreadyConnected = errors.New("already connected to devtools")

	// ErrCommandTimeout means no reply arrived within the command timeout.
	ErrCommandTimeout = errors.New("command timed out")

	// ErrConnectionLost fails every outstanding command when the transport
	// closes underneath them.
	ErrConnectionLost = errors.New("devtools connection lost")
)

// RemoteError carries the error message a reply envelope reported for one
// specific command. It never affects unrelated pending commands.
type RemoteError struct {
	Method  string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error for %s: %s", e.Method, e.Message)
}
