package jlink

import (
	"errors"
	"fmt"
)

// ErrNotConnected indicates a gated command was issued before Connect
// populated the capability set.
var ErrNotConnected = errors.New("probe not connected: capabilities unknown")

// UnsupportedCommandError reports a command family the connected firmware
// does not advertise. It is raised before any USB I/O is attempted.
type UnsupportedCommandError struct {
	Bit int
}

func (e *UnsupportedCommandError) Error() string {
	return fmt.Sprintf("capability bit %d (%s) not supported by probe firmware", e.Bit, CapabilityName(e.Bit))
}
