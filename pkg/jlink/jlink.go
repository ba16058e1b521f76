package jlink

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/boljen/go-bitmap"
	log "github.com/sirupsen/logrus"

	"github.com/probelab/golink/pkg/usbio"
)

// Reset line pulse widths
const (
	trstPulse = 10 * time.Millisecond
	srstPulse = 10 * time.Millisecond
)

// Capabilities is the 32-bit command-family mask a probe reports at
// connect time. Bit i set means command family i is supported.
type Capabilities struct {
	mask uint32
	bits bitmap.Bitmap
}

func newCapabilities(raw []byte) *Capabilities {
	mask := binary.LittleEndian.Uint32(raw)
	bits := bitmap.New(32)
	for i := 0; i < 32; i++ {
		if mask>>uint(i)&1 == 1 {
			bits.Set(i, true)
		}
	}
	return &Capabilities{mask: mask, bits: bits}
}

// Has reports whether capability bit is advertised.
func (c *Capabilities) Has(bit int) bool {
	if bit < 0 || bit > 31 {
		return false
	}
	return c.bits.Get(bit)
}

// Mask returns the raw 32-bit capability mask.
func (c *Capabilities) Mask() uint32 {
	return c.mask
}

// Names returns the command-family names of all set bits, in bit order.
func (c *Capabilities) Names() []string {
	var names []string
	for i := 0; i < 32; i++ {
		if c.Has(i) {
			names = append(names, CapabilityName(i))
		}
	}
	return names
}

// HardwareVersion is the decoded form of the packed hardware version
// integer: v = type*1_000_000 + major*10_000 + minor*100 + revision.
type HardwareVersion struct {
	Type     int `json:"type"`
	Major    int `json:"major"`
	Minor    int `json:"minor"`
	Revision int `json:"revision"`
}

// DecodeHardwareVersion splits a packed version integer into its fields.
// The divisors are a fixed firmware encoding contract.
func DecodeHardwareVersion(v uint32) HardwareVersion {
	return HardwareVersion{
		Type:     int(v/1000000) % 100,
		Major:    int(v/10000) % 100,
		Minor:    int(v/100) % 100,
		Revision: int(v) % 100,
	}
}

// TypeName returns the hardware model name for the Type field.
func (hv HardwareVersion) TypeName() string {
	if name, ok := hwTypeNames[hv.Type]; ok {
		return name
	}
	return "unknown"
}

func (hv HardwareVersion) String() string {
	return fmt.Sprintf("%s v%d.%d.%d", hv.TypeName(), hv.Major, hv.Minor, hv.Revision)
}

// State is the probe's hardware line status report.
type State struct {
	VrefMillivolts uint16
	TCK, TDI, TDO  byte
	TMS            byte
	SRST, TRST     byte
}

// Probe is a connected family-A debug probe. All commands run over a
// single synchronous transport; one command/response exchange is in
// flight at a time.
type Probe struct {
	tr   *usbio.Transport
	caps *Capabilities
}

// New wraps a transport in a probe command layer. Connect must be called
// before any capability-gated command.
func New(tr *usbio.Transport) *Probe {
	return &Probe{tr: tr}
}

// Connect queries the capability mask and caches it for the session.
func (p *Probe) Connect() error {
	resp, err := p.tr.Exchange([]byte{CmdGetCaps}, 4)
	if err != nil {
		return fmt.Errorf("failed to query capabilities: %w", err)
	}
	p.caps = newCapabilities(resp)
	log.Debugf("jlink: capabilities 0x%08x", p.caps.mask)
	return nil
}

// Capabilities returns the session capability set, or nil before Connect.
func (p *Probe) Capabilities() *Capabilities {
	return p.caps
}

// require gates a command on its capability bit, before any I/O happens.
func (p *Probe) require(bit int) error {
	if p.caps == nil {
		return ErrNotConnected
	}
	if !p.caps.Has(bit) {
		return &UnsupportedCommandError{Bit: bit}
	}
	return nil
}

// Version returns the firmware version strings. The reply is a 16-bit
// length-prefixed blob of null-separated strings; empty fragments are
// dropped.
func (p *Probe) Version() ([]string, error) {
	resp, err := p.tr.Exchange([]byte{CmdVersion}, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to query version: %w", err)
	}
	n := int(binary.LittleEndian.Uint16(resp))

	blob, err := p.tr.Exchange(nil, n)
	if err != nil {
		return nil, fmt.Errorf("failed to read version blob: %w", err)
	}

	var out []string
	for _, s := range strings.Split(string(blob), "\x00") {
		if len(s) > 0 {
			out = append(out, s)
		}
	}
	return out, nil
}

// HardwareVersion returns the decoded hardware version.
func (p *Probe) HardwareVersion() (HardwareVersion, error) {
	if err := p.require(CapGetHWVersion); err != nil {
		return HardwareVersion{}, err
	}
	resp, err := p.tr.Exchange([]byte{CmdGetHWVersion}, 4)
	if err != nil {
		return HardwareVersion{}, fmt.Errorf("failed to query hardware version: %w", err)
	}
	return DecodeHardwareVersion(binary.LittleEndian.Uint32(resp)), nil
}

// MaxMemBlock returns the probe's maximum memory block size in bytes.
func (p *Probe) MaxMemBlock() (uint32, error) {
	if err := p.require(CapGetMaxBlockSize); err != nil {
		return 0, err
	}
	resp, err := p.tr.Exchange([]byte{CmdGetMaxMemBlock}, 4)
	if err != nil {
		return 0, fmt.Errorf("failed to query max mem block: %w", err)
	}
	return binary.LittleEndian.Uint32(resp), nil
}

// ReadConfig returns the probe's 256-byte configuration block.
func (p *Probe) ReadConfig() ([]byte, error) {
	if err := p.require(CapReadConfig); err != nil {
		return nil, err
	}
	resp, err := p.tr.Exchange([]byte{CmdReadConfig}, ConfigBlockSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read config block: %w", err)
	}
	return resp, nil
}

// SelectInterface switches the target interface (InterfaceJTAG or
// InterfaceSWD) and returns the previously selected interface mask.
func (p *Probe) SelectInterface(itf byte) (uint32, error) {
	if err := p.require(CapSelectIF); err != nil {
		return 0, err
	}
	resp, err := p.tr.Exchange([]byte{CmdSelectIF, itf}, 4)
	if err != nil {
		return 0, fmt.Errorf("failed to select interface %d: %w", itf, err)
	}
	return binary.LittleEndian.Uint32(resp), nil
}

// SetSpeed sets the interface clock in kHz. Zero-length response.
func (p *Probe) SetSpeed(khz uint16) error {
	cmd := make([]byte, 3)
	cmd[0] = CmdSetSpeed
	binary.LittleEndian.PutUint16(cmd[1:], khz)
	if _, err := p.tr.Exchange(cmd, 0); err != nil {
		return fmt.Errorf("failed to set speed %d kHz: %w", khz, err)
	}
	return nil
}

// State reads the hardware line status (Vref and pin levels).
func (p *Probe) State() (State, error) {
	resp, err := p.tr.Exchange([]byte{CmdGetState}, 8)
	if err != nil {
		return State{}, fmt.Errorf("failed to query state: %w", err)
	}
	return State{
		VrefMillivolts: binary.LittleEndian.Uint16(resp[0:2]),
		TCK:            resp[2],
		TDI:            resp[3],
		TDO:            resp[4],
		TMS:            resp[5],
		SRST:           resp[6],
		TRST:           resp[7],
	}, nil
}

// SetTRST drives the TRST line low (false) or high (true).
func (p *Probe) SetTRST(level bool) error {
	cmd := byte(CmdHWTRST0)
	if level {
		cmd = CmdHWTRST1
	}
	_, err := p.tr.Exchange([]byte{cmd}, 0)
	return err
}

// SetSRST drives the SRST line low (false) or high (true).
func (p *Probe) SetSRST(level bool) error {
	cmd := byte(CmdHWReset0)
	if level {
		cmd = CmdHWReset1
	}
	_, err := p.tr.Exchange([]byte{cmd}, 0)
	return err
}

// PulseTRST pulses the test reset line low.
func (p *Probe) PulseTRST() error {
	if err := p.SetTRST(false); err != nil {
		return err
	}
	time.Sleep(trstPulse)
	return p.SetTRST(true)
}

// PulseSRST pulses the system reset line low.
func (p *Probe) PulseSRST() error {
	if err := p.SetSRST(false); err != nil {
		return err
	}
	time.Sleep(srstPulse)
	return p.SetSRST(true)
}
