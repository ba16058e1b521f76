package stlink

import "errors"

// Probe errors
var (
	// ErrNotConnected indicates a version-gated command was issued before
	// the firmware version was queried
	ErrNotConnected = errors.New("probe not connected: firmware version unknown")

	// ErrUnsupportedAPI indicates an operation that only exists for one
	// API revision was issued against the other; it is raised before any
	// I/O is attempted
	ErrUnsupportedAPI = errors.New("operation not supported by this API revision")

	// ErrUnsupportedProbe indicates hardware whose interface protocol
	// generation this package does not speak
	ErrUnsupportedProbe = errors.New("unsupported probe hardware generation")

	// ErrInvalidMode indicates a mode transition that is not reachable
	// from the current mode
	ErrInvalidMode = errors.New("invalid mode for requested transition")

	// ErrUnalignedAddress indicates a word-sized memory access on a
	// non-4-byte-aligned address
	ErrUnalignedAddress = errors.New("address not 4-byte aligned")

	// ErrTransferTooLarge indicates a byte count above the firmware's
	// fixed per-transfer ceiling
	ErrTransferTooLarge = errors.New("transfer exceeds per-transfer byte ceiling")

	// ErrNoSuchRegister indicates a register name outside the closed
	// name map
	ErrNoSuchRegister = errors.New("no such register")

	// ErrUnknownStatus indicates a core status byte outside the
	// documented set
	ErrUnknownStatus = errors.New("unknown core status")
)
