package stlink

import (
	"encoding/binary"
	"fmt"

	"github.com/boljen/go-bitmap"
)

// APIRevision tags the firmware generation's command encodings.
type APIRevision int

const (
	APIv1 APIRevision = iota + 1
	APIv2
)

func (r APIRevision) String() string {
	switch r {
	case APIv1:
		return "v1"
	case APIv2:
		return "v2"
	}
	return "unknown"
}

// Feature flag bits derived from the JTAG firmware version
const (
	FlagHasTrace         = 0 // trace and target-voltage API from J13
	FlagHasLastRWStatus2 = 1 // preferred last R/W status API from J15
	FlagHasSWDSetFreq    = 2 // SWD frequency API from J22
	FlagHasJTAGSetFreq   = 3 // JTAG frequency API from J24
	FlagHasMem16Bit      = 4 // 16-bit memory access from J26
)

// Version is the decoded 6-byte version reply: bit-packed firmware
// fields in bytes 0-1 and the probe's own VID/PID in bytes 2-5.
type Version struct {
	Major int    `json:"major"` // interface-protocol version
	JTAG  int    `json:"jtag"`  // JTAG/SWD firmware version
	SWIM  int    `json:"swim"`  // SWIM firmware version
	VID   uint16 `json:"vid"`
	PID   uint16 `json:"pid"`

	// API is derived: v2 from JTAG version 11 on
	API APIRevision `json:"-"`

	flags bitmap.Bitmap
}

// decodeVersion splits the 6-byte reply per the fixed bit layout:
// byte 0 high nibble is the probe major version, the remaining 4+2 bits
// spanning bytes 0-1 are the JTAG version, the low 6 bits of byte 1 are
// the SWIM version, bytes 2-5 are little-endian VID and PID.
func decodeVersion(raw []byte) Version {
	v := Version{
		Major: int(raw[0]&0xF0) >> 4,
		JTAG:  int(raw[0]&0x0F)<<2 | int(raw[1]&0xC0)>>6,
		SWIM:  int(raw[1] & 0x3F),
		VID:   binary.LittleEndian.Uint16(raw[2:4]),
		PID:   binary.LittleEndian.Uint16(raw[4:6]),
	}

	v.API = APIv1
	if v.JTAG >= apiV2JTAGVersion {
		v.API = APIv2
	}

	flags := bitmap.New(32)
	if v.JTAG >= 13 {
		flags.Set(FlagHasTrace, true)
	}
	if v.JTAG >= 15 {
		flags.Set(FlagHasLastRWStatus2, true)
	}
	if v.JTAG >= 22 {
		flags.Set(FlagHasSWDSetFreq, true)
	}
	if v.JTAG >= 24 {
		flags.Set(FlagHasJTAGSetFreq, true)
	}
	if v.JTAG >= 26 {
		flags.Set(FlagHasMem16Bit, true)
	}
	v.flags = flags

	return v
}

// HasFeature reports whether the firmware advertises an optional feature
// flag (Flag* constants).
func (v Version) HasFeature(flag int) bool {
	if v.flags == nil {
		return false
	}
	return v.flags.Get(flag)
}

func (v Version) String() string {
	return fmt.Sprintf("V%dJ%dS%d (api %s)", v.Major, v.JTAG, v.SWIM, v.API)
}
