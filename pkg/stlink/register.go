package stlink

import (
	"encoding/binary"
	"fmt"
)

// regmap is the closed register name to index mapping used by the
// register access commands.
var regmap = map[string]byte{
	"r0": 0, "r1": 1, "r2": 2, "r3": 3,
	"r4": 4, "r5": 5, "r6": 6, "r7": 7,
	"r8": 8, "r9": 9, "r10": 10, "r11": 11,
	"r12": 12, "r13": 13, "r14": 14, "r15": 15,
	"lr": 14, "pc": 15, "psr": 16, "msp": 17, "psp": 18,
}

// RegisterIndex resolves a register name to its command index. Names
// outside the closed map are rejected, never sent to the device.
func RegisterIndex(name string) (byte, error) {
	idx, ok := regmap[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNoSuchRegister, name)
	}
	return idx, nil
}

// RegisterNames returns the register names the probe can access.
func RegisterNames() []string {
	names := make([]string, 0, len(regmap))
	for name := range regmap {
		names = append(names, name)
	}
	return names
}

// ReadRegister reads a core register by name. v1 only.
func (p *Probe) ReadRegister(name string) (uint32, error) {
	idx, err := RegisterIndex(name)
	if err != nil {
		return 0, err
	}
	if err := p.requireAPI(APIv1); err != nil {
		return 0, err
	}

	resp, err := p.tr.Exchange([]byte{CmdDebug, DebugAPIv1ReadReg, idx}, 4)
	if err != nil {
		return 0, fmt.Errorf("failed to read register %s: %w", name, err)
	}
	return binary.LittleEndian.Uint32(resp), nil
}

// WriteRegister writes a core register by name. v1 only. Zero-length
// response; the frame shape mirrors ReadRegister but the exact firmware
// behavior has not been validated against hardware.
func (p *Probe) WriteRegister(name string, value uint32) error {
	idx, err := RegisterIndex(name)
	if err != nil {
		return err
	}
	if err := p.requireAPI(APIv1); err != nil {
		return err
	}

	cmd := make([]byte, 7)
	cmd[0] = CmdDebug
	cmd[1] = DebugAPIv1WriteReg
	cmd[2] = idx
	binary.LittleEndian.PutUint32(cmd[3:], value)

	if _, err := p.tr.Exchange(cmd, 0); err != nil {
		return fmt.Errorf("failed to write register %s: %w", name, err)
	}
	return nil
}

// ReadPC reads the program counter.
func (p *Probe) ReadPC() (uint32, error) {
	return p.ReadRegister("pc")
}
