package usbio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/gousb"
)

// DeviceSelector specifies how to pick one probe when several are attached
// Supported formats:
//   - ""           : Use first available device
//   - "serial"     : Match by serial number (e.g., "48FF6E06")
//   - "bus:addr"   : Match by USB bus and address (e.g., "1:10")
//   - "#N"         : Use Nth device, 0-indexed (e.g., "#0", "#1")
type DeviceSelector string

// Select opens the probe matching the selector among all devices matching
// the given probe IDs.
func Select(ctx *gousb.Context, ids []ProbeID, selector DeviceSelector) (*Device, error) {
	devices, err := FindAll(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, ErrNoDevice
	}

	picked, err := pick(devices, selector)
	if err != nil || picked == nil {
		for _, d := range devices {
			d.Close()
		}
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: no device matches %q", ErrNoDevice, selector)
	}

	for _, d := range devices {
		if d != picked {
			d.Close()
		}
	}
	return picked, nil
}

func pick(devices []*Device, selector DeviceSelector) (*Device, error) {
	sel := string(selector)

	if sel == "" {
		return devices[0], nil
	}

	// Index selector: #0, #1, etc.
	if strings.HasPrefix(sel, "#") {
		index, err := strconv.Atoi(sel[1:])
		if err != nil {
			return nil, fmt.Errorf("invalid device index: %s", sel)
		}
		if index < 0 || index >= len(devices) {
			return nil, nil
		}
		return devices[index], nil
	}

	// Bus:Address selector: 1:10, 2:5, etc.
	if strings.Contains(sel, ":") {
		parts := strings.SplitN(sel, ":", 2)
		bus, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid bus number: %s", parts[0])
		}
		addr, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid address number: %s", parts[1])
		}
		for _, d := range devices {
			if d.Bus == bus && d.Address == addr {
				return d, nil
			}
		}
		return nil, nil
	}

	// Serial number selector
	for _, d := range devices {
		if d.Serial == sel {
			return d, nil
		}
	}
	return nil, nil
}
