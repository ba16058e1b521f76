// Package probeinfo builds JSON-serializable snapshots of a connected
// debug probe's identity, firmware and capabilities.
package probeinfo

import (
	"fmt"
	"time"

	"github.com/probelab/golink/pkg/jlink"
	"github.com/probelab/golink/pkg/stlink"
	"github.com/probelab/golink/pkg/usbio"
)

// Snapshot holds everything a probe reports about itself at connect
// time.
type Snapshot struct {
	Family       string    `json:"family"`
	Serial       string    `json:"serial"`
	Manufacturer string    `json:"manufacturer"`
	Product      string    `json:"product"`
	Timestamp    time.Time `json:"timestamp"`

	// family A
	Firmware       []string               `json:"firmware,omitempty"`
	CapabilityMask uint32                 `json:"capability_mask,omitempty"`
	Capabilities   []string               `json:"capabilities,omitempty"`
	Hardware       *jlink.HardwareVersion `json:"hardware,omitempty"`
	MaxMemBlock    uint32                 `json:"max_mem_block,omitempty"`

	// family B
	Version         *stlink.Version `json:"version,omitempty"`
	APIRevision     string          `json:"api_revision,omitempty"`
	Mode            string          `json:"mode,omitempty"`
	TargetVoltageMV uint32          `json:"target_voltage_mv,omitempty"`
	CoreID          uint32          `json:"core_id,omitempty"`
}

// FromJLink reads a snapshot from a connected family-A probe. The probe
// must already be connected so its capability set is known.
func FromJLink(dev *usbio.Device, p *jlink.Probe) (*Snapshot, error) {
	caps := p.Capabilities()
	if caps == nil {
		return nil, jlink.ErrNotConnected
	}

	firmware, err := p.Version()
	if err != nil {
		return nil, fmt.Errorf("failed to read firmware version: %w", err)
	}

	snap := &Snapshot{
		Family:         "jlink",
		Serial:         dev.Serial,
		Manufacturer:   dev.Manufacturer,
		Product:        dev.Product,
		Timestamp:      time.Now(),
		Firmware:       firmware,
		CapabilityMask: caps.Mask(),
		Capabilities:   caps.Names(),
	}

	// optional fields, each behind its own capability bit
	if hv, err := p.HardwareVersion(); err == nil {
		snap.Hardware = &hv
	}
	if block, err := p.MaxMemBlock(); err == nil {
		snap.MaxMemBlock = block
	}

	return snap, nil
}

// FromSTLink reads a snapshot from a connected family-B probe.
func FromSTLink(dev *usbio.Device, p *stlink.Probe) (*Snapshot, error) {
	version, err := p.Version()
	if err != nil {
		return nil, fmt.Errorf("failed to read version: %w", err)
	}

	mode, err := p.QueryMode()
	if err != nil {
		return nil, fmt.Errorf("failed to query mode: %w", err)
	}

	snap := &Snapshot{
		Family:       "stlink",
		Serial:       dev.Serial,
		Manufacturer: dev.Manufacturer,
		Product:      dev.Product,
		Timestamp:    time.Now(),
		Version:      &version,
		APIRevision:  version.API.String(),
		Mode:         mode.String(),
	}

	// voltage is supported in all modes except DFU
	if mode != stlink.ModeDFU {
		if mv, err := p.TargetVoltage(); err == nil {
			snap.TargetVoltageMV = mv
		}
	}

	if mode == stlink.ModeDebug {
		if id, err := p.CoreID(); err == nil {
			snap.CoreID = id
		}
	}

	return snap, nil
}
