package usbio

import "errors"

// Transport errors
var (
	// ErrNotInitialized indicates the transport was used before the
	// endpoint max packet size was known
	ErrNotInitialized = errors.New("transport not initialized: max packet size unknown")

	// ErrBulkWrite indicates an underlying bulk write returned zero or
	// negative length
	ErrBulkWrite = errors.New("usb bulk write error")

	// ErrShortResponse indicates a command exchange received fewer
	// response bytes than the protocol requires
	ErrShortResponse = errors.New("short command response")

	// ErrNoDevice indicates no matching USB device was found
	ErrNoDevice = errors.New("device not found")

	// ErrNoSuchInterface indicates the requested interface number is not
	// present on the active configuration
	ErrNoSuchInterface = errors.New("no such interface on device")
)
