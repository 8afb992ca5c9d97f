package domain

import (
	"errors"
	"strings"
)

// Sentinel failures produced by the session manager and the control-server
// adapter. ErrReAddRequired is an internal signal, not a terminal error: the
// command interpreter consumes it by recreating the account and retrying the
// login once.
var (
	ErrHostNotFound   = errors.New("host entry not found")
	ErrUserNotFound   = errors.New("no such user on device")
	ErrUnknownHost    = errors.New("unknown host address")
	ErrReAddRequired  = errors.New("account expired on device, re-add required")
	ErrMalformedBatch = errors.New("command batch is not a list")
)

// ConfigError reports required settings missing at startup. It is fatal: no
// service is constructed when it is returned.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return "missing required settings: " + strings.Join(e.Missing, ", ")
}

// ConnectionError indicates the device could not be reached.
type ConnectionError struct {
	Cause error
}

func (e *ConnectionError) Error() string {
	return "device connection failed: " + e.Cause.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// DeviceError is a remote call the device rejected. Message carries the
// device's prose verbatim; the transport has no structured error codes.
type DeviceError struct {
	Message string
}

func (e *DeviceError) Error() string {
	return "device: " + e.Message
}
