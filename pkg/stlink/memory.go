package stlink

import (
	"encoding/binary"
	"fmt"
)

// maxRW32 is the largest 32-bit word count whose byte length still
// fits the frame's 16-bit count field.
const maxRW32 = 0xFFFF / 4

// memCmd frames a memory command: opcode pair, 32-bit address, 16-bit
// byte count, all little-endian. Callers must have range-checked the
// count; the field cannot represent more than 0xFFFF bytes.
func memCmd(sub byte, addr uint32, nbytes uint16) []byte {
	cmd := make([]byte, 8)
	cmd[0] = CmdDebug
	cmd[1] = sub
	binary.LittleEndian.PutUint32(cmd[2:6], addr)
	binary.LittleEndian.PutUint16(cmd[6:8], nbytes)
	return cmd
}

// ReadMem32 reads n 32-bit words starting at addr. The address must be
// 4-byte aligned; words are returned in address order.
func (p *Probe) ReadMem32(addr uint32, n int) ([]uint32, error) {
	if addr&3 != 0 {
		return nil, fmt.Errorf("%w: 0x%08x", ErrUnalignedAddress, addr)
	}
	if n <= 0 {
		return nil, fmt.Errorf("invalid word count %d", n)
	}
	if n > maxRW32 {
		return nil, fmt.Errorf("%w: %d > %d words", ErrTransferTooLarge, n, maxRW32)
	}

	nbytes := 4 * n
	resp, err := p.tr.Exchange(memCmd(DebugReadMem32, addr, uint16(nbytes)), nbytes)
	if err != nil {
		return nil, fmt.Errorf("failed to read %d words at 0x%08x: %w", n, addr, err)
	}

	words := make([]uint32, n)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(resp[4*i:])
	}
	return words, nil
}

// ReadMem8 reads n bytes starting at addr. n must not exceed MaxRW8.
// The firmware refuses a true 1-byte read, so a single-byte request
// asks the device for two bytes and returns only the first.
func (p *Probe) ReadMem8(addr uint32, n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid byte count %d", n)
	}
	if n > MaxRW8 {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrTransferTooLarge, n, MaxRW8)
	}

	nread := n
	if nread == 1 {
		nread = 2
	}

	resp, err := p.tr.Exchange(memCmd(DebugReadMem8, addr, uint16(nread)), nread)
	if err != nil {
		return nil, fmt.Errorf("failed to read %d bytes at 0x%08x: %w", n, addr, err)
	}
	return resp[:n], nil
}

// WriteMem32 writes words to addr. The address must be 4-byte aligned.
// The command frame is followed by the data in a second transfer and
// the response is zero-length. The frame shape mirrors ReadMem32 but
// the exact firmware behavior has not been validated against hardware.
func (p *Probe) WriteMem32(addr uint32, words []uint32) error {
	if addr&3 != 0 {
		return fmt.Errorf("%w: 0x%08x", ErrUnalignedAddress, addr)
	}
	if len(words) > maxRW32 {
		return fmt.Errorf("%w: %d > %d words", ErrTransferTooLarge, len(words), maxRW32)
	}

	nbytes := 4 * len(words)
	if _, err := p.tr.Exchange(memCmd(DebugWriteMem32, addr, uint16(nbytes)), 0); err != nil {
		return fmt.Errorf("failed to write %d words at 0x%08x: %w", len(words), addr, err)
	}

	data := make([]byte, nbytes)
	for i, w := range words {
		binary.LittleEndian.PutUint32(data[4*i:], w)
	}
	if _, err := p.tr.Write(data); err != nil {
		return fmt.Errorf("failed to write %d words at 0x%08x: %w", len(words), addr, err)
	}
	return nil
}

// WriteMem8 writes data to addr. len(data) must not exceed MaxRW8.
// Same framing discipline as WriteMem32; not validated against
// hardware.
func (p *Probe) WriteMem8(addr uint32, data []byte) error {
	if len(data) > MaxRW8 {
		return fmt.Errorf("%w: %d > %d bytes", ErrTransferTooLarge, len(data), MaxRW8)
	}

	if _, err := p.tr.Exchange(memCmd(DebugWriteMem8, addr, uint16(len(data))), 0); err != nil {
		return fmt.Errorf("failed to write %d bytes at 0x%08x: %w", len(data), addr, err)
	}
	if _, err := p.tr.Write(data); err != nil {
		return fmt.Errorf("failed to write %d bytes at 0x%08x: %w", len(data), addr, err)
	}
	return nil
}
