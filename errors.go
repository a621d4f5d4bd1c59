package forkwork

import (
	"errors"
	"fmt"
)

// Error is the base interface for all forkwork errors.
type Error interface {
	error
	IsForkworkError() bool
}

// Compile-time verification that all error types implement Error.
var (
	_ Error = (*ConfigError)(nil)
	_ Error = (*TransportCreateError)(nil)
	_ Error = (*OverflowError)(nil)
	_ Error = (*TransportError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrPlatformUnsupported indicates the platform cannot create socket
	// pairs or spawn worker processes.
	ErrPlatformUnsupported = errors.New("platform does not support worker processes")

	// ErrWorkNotFound indicates the named work function is not registered.
	ErrWorkNotFound = errors.New("work function not registered")

	// ErrNotLauncher indicates a launcher-only operation was called inside a
	// worker process.
	ErrNotLauncher = errors.New("operation is only valid in the launcher process")

	// ErrWrongMode indicates Wait was called on an async orchestrator or
	// WaitAll on a sync one.
	ErrWrongMode = errors.New("operation does not match the orchestrator mode")

	// ErrNoPendingRun indicates Wait was called with no synchronous run in
	// flight.
	ErrNoPendingRun = errors.New("no synchronous run is pending")
)

// ConfigError indicates the orchestrator was constructed or used incorrectly:
// missing platform support, an unregistered work function, or a wrong-role
// call to Wait, WaitAll or Messages. Always surfaced before any process is
// spawned or any blocking call is made.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("forkwork config: %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsForkworkError implements Error.
func (e *ConfigError) IsForkworkError() bool { return true }

// TransportCreateError indicates socket pair creation failed.
type TransportCreateError struct {
	Err error
}

func (e *TransportCreateError) Error() string {
	return fmt.Sprintf("failed to create socket pair: %v", e.Err)
}

func (e *TransportCreateError) Unwrap() error {
	return e.Err
}

// IsForkworkError implements Error.
func (e *TransportCreateError) IsForkworkError() bool { return true }

// OverflowError indicates an encoded message exceeds the frame size. Nothing
// is written to the transport when this is returned.
type OverflowError struct {
	MessageSize int
	FrameSize   int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("encoded message size %d exceeds frame size %d", e.MessageSize, e.FrameSize)
}

// IsForkworkError implements Error.
func (e *OverflowError) IsForkworkError() bool { return true }

// TransportError indicates a low-level read or write on the channel failed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsForkworkError implements Error.
func (e *TransportError) IsForkworkError() bool { return true }
