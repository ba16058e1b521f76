package stlink

import (
	"encoding/binary"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/probelab/golink/pkg/usbio"
)

// CoreStatus is the target core's run state.
type CoreStatus int

const (
	CoreRunning CoreStatus = iota
	CoreHalted
)

func (s CoreStatus) String() string {
	switch s {
	case CoreRunning:
		return "running"
	case CoreHalted:
		return "halted"
	}
	return "unknown"
}

// Probe is a connected family-B debug probe. All commands run over a
// single synchronous transport; one command/response exchange is in
// flight at a time.
type Probe struct {
	tr      *usbio.Transport
	version *Version
}

// New wraps a transport in a probe command layer. Connect (or Version)
// must be called before any revision-gated command.
func New(tr *usbio.Transport) *Probe {
	return &Probe{tr: tr}
}

// Connect performs the session bring-up sequence: query and validate
// the firmware version, then the current mode; if the probe sits in
// DFU, leave it before anything else; finally enter SWD if the probe
// is not already
// debugging. Entering SWD while still in DFU is undefined behavior on
// the device, so this ordering is mandatory.
func (p *Probe) Connect() error {
	v, err := p.Version()
	if err != nil {
		return err
	}
	// The command encodings here are for generation-2 interface
	// firmware only.
	if v.Major != 2 {
		return fmt.Errorf("%w: V%d", ErrUnsupportedProbe, v.Major)
	}

	mode, err := p.QueryMode()
	if err != nil {
		return err
	}
	log.Debugf("stlink: current mode %s", mode)

	if mode == ModeDFU {
		if err := p.LeaveMode(ModeDFU); err != nil {
			return fmt.Errorf("failed to leave DFU mode: %w", err)
		}
		mode, err = p.QueryMode()
		if err != nil {
			return err
		}
	}

	if mode != ModeDebug {
		if err := p.EnterMode(TargetSWD); err != nil {
			return fmt.Errorf("failed to enter SWD: %w", err)
		}
	}
	return nil
}

// Version queries and caches the firmware version record. The cached
// value determines the API revision used for all later commands.
func (p *Probe) Version() (Version, error) {
	resp, err := p.tr.Exchange([]byte{CmdGetVersion}, 6)
	if err != nil {
		return Version{}, fmt.Errorf("failed to query version: %w", err)
	}
	v := decodeVersion(resp)
	p.version = &v
	log.Debugf("stlink: version %s", v)
	return v, nil
}

// requireAPI gates an operation on one API revision, before any I/O.
func (p *Probe) requireAPI(rev APIRevision) error {
	if p.version == nil {
		return ErrNotConnected
	}
	if p.version.API != rev {
		return fmt.Errorf("%w: need %s, probe is %s", ErrUnsupportedAPI, rev, p.version.API)
	}
	return nil
}

// Status returns the target core run state. The status command is only
// defined for the v1 encodings.
func (p *Probe) Status() (CoreStatus, error) {
	if err := p.requireAPI(APIv1); err != nil {
		return 0, err
	}
	resp, err := p.tr.Exchange([]byte{CmdDebug, DebugGetStatus}, 2)
	if err != nil {
		return 0, fmt.Errorf("failed to query status: %w", err)
	}
	switch resp[0] {
	case coreStatusRunning:
		return CoreRunning, nil
	case coreStatusHalted:
		return CoreHalted, nil
	}
	return 0, fmt.Errorf("%w: 0x%02x", ErrUnknownStatus, resp[0])
}

// CoreID returns the target's core identification word.
func (p *Probe) CoreID() (uint32, error) {
	resp, err := p.tr.Exchange([]byte{CmdDebug, DebugReadCoreID}, 4)
	if err != nil {
		return 0, fmt.Errorf("failed to read core id: %w", err)
	}
	return binary.LittleEndian.Uint32(resp), nil
}

// TargetVoltage returns the target supply voltage in millivolts,
// computed from the probe's ADC factor/reading pair.
func (p *Probe) TargetVoltage() (uint32, error) {
	resp, err := p.tr.Exchange([]byte{CmdGetTargetVoltage}, 8)
	if err != nil {
		return 0, fmt.Errorf("failed to read target voltage: %w", err)
	}
	factor := binary.LittleEndian.Uint32(resp[0:4])
	reading := binary.LittleEndian.Uint32(resp[4:8])
	if factor == 0 {
		return 0, fmt.Errorf("target voltage reply has zero ADC factor")
	}
	return 2400 * reading / factor, nil
}

// Halt forces the target core into debug state. v1 only.
func (p *Probe) Halt() error {
	if err := p.requireAPI(APIv1); err != nil {
		return err
	}
	_, err := p.tr.Exchange([]byte{CmdDebug, DebugForceDebug}, 2)
	return err
}

// Run resumes the target core. v1 only.
func (p *Probe) Run() error {
	if err := p.requireAPI(APIv1); err != nil {
		return err
	}
	_, err := p.tr.Exchange([]byte{CmdDebug, DebugRunCore}, 2)
	return err
}

// Step single-steps the target core. v1 only.
func (p *Probe) Step() error {
	if err := p.requireAPI(APIv1); err != nil {
		return err
	}
	_, err := p.tr.Exchange([]byte{CmdDebug, DebugStepCore}, 2)
	return err
}
