package stlink

import "fmt"

// Mode is the probe's operating context. It gates which command
// families are legal, is queried rather than cached, and only changes
// through explicit enter/leave transitions.
type Mode int

const (
	ModeDFU Mode = iota
	ModeMassStorage
	ModeDebug
	ModeSWIM
	ModeBootloader
	ModeUnknown
)

func (m Mode) String() string {
	switch m {
	case ModeDFU:
		return "dfu"
	case ModeMassStorage:
		return "mass-storage"
	case ModeDebug:
		return "debug"
	case ModeSWIM:
		return "swim"
	case ModeBootloader:
		return "bootloader"
	}
	return "unknown"
}

// TargetInterface selects the wire protocol used to enter debug mode.
type TargetInterface int

const (
	TargetJTAG TargetInterface = iota
	TargetSWD
	TargetSWIM
)

func (t TargetInterface) String() string {
	switch t {
	case TargetJTAG:
		return "jtag"
	case TargetSWD:
		return "swd"
	case TargetSWIM:
		return "swim"
	}
	return "unknown"
}

// QueryMode asks the probe for its current operating mode. Mode bytes
// outside the documented table map to ModeUnknown.
func (p *Probe) QueryMode() (Mode, error) {
	resp, err := p.tr.Exchange([]byte{CmdGetCurrentMode}, 2)
	if err != nil {
		return ModeUnknown, fmt.Errorf("failed to query mode: %w", err)
	}
	switch resp[0] {
	case devModeDFU:
		return ModeDFU, nil
	case devModeMass:
		return ModeMassStorage, nil
	case devModeDebug:
		return ModeDebug, nil
	case devModeSWIM:
		return ModeSWIM, nil
	case devModeBootloader:
		return ModeBootloader, nil
	}
	return ModeUnknown, nil
}

// EnterMode switches the probe onto a target interface. The enter
// opcode and the response length depend on the API revision: v1 replies
// with nothing, v2 with a 2-byte status. SWIM uses its own command
// family. The caller must have left DFU first (see Connect).
func (p *Probe) EnterMode(target TargetInterface) error {
	if p.version == nil {
		return ErrNotConnected
	}

	if target == TargetSWIM {
		if _, err := p.tr.Exchange([]byte{CmdSWIM, SWIMEnter}, 0); err != nil {
			return fmt.Errorf("failed to enter swim: %w", err)
		}
		return nil
	}

	enter := byte(DebugAPIv1Enter)
	respSize := 0
	if p.version.API == APIv2 {
		enter = DebugAPIv2Enter
		respSize = 2
	}

	var sub byte
	switch target {
	case TargetJTAG:
		sub = EnterJTAG
	case TargetSWD:
		sub = EnterSWD
	default:
		return fmt.Errorf("%w: cannot enter %s", ErrInvalidMode, target)
	}

	if _, err := p.tr.Exchange([]byte{CmdDebug, enter, sub}, respSize); err != nil {
		return fmt.Errorf("failed to enter %s: %w", target, err)
	}
	return nil
}

// LeaveMode exits the given operating mode. Debug covers both JTAG and
// SWD sessions. All leave commands have zero-length responses.
func (p *Probe) LeaveMode(m Mode) error {
	var cmd []byte
	switch m {
	case ModeDebug:
		cmd = []byte{CmdDebug, DebugExit}
	case ModeSWIM:
		cmd = []byte{CmdSWIM, SWIMExit}
	case ModeDFU:
		cmd = []byte{CmdDFU, DFUExit}
	default:
		return fmt.Errorf("%w: cannot leave %s", ErrInvalidMode, m)
	}

	if _, err := p.tr.Exchange(cmd, 0); err != nil {
		return fmt.Errorf("failed to leave %s: %w", m, err)
	}
	return nil
}
