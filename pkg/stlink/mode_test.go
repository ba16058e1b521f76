package stlink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryModeTable(t *testing.T) {
	cases := []struct {
		raw  byte
		want Mode
	}{
		{0x00, ModeDFU},
		{0x01, ModeMassStorage},
		{0x02, ModeDebug},
		{0x03, ModeSWIM},
		{0x04, ModeBootloader},
		{0x7F, ModeUnknown},
	}
	for _, c := range cases {
		dev := &scriptedDevice{reads: [][]byte{{c.raw, 0x00}}}
		p := newProbe(dev)

		mode, err := p.QueryMode()
		require.NoError(t, err)
		assert.Equal(t, c.want, mode, "mode byte 0x%02x", c.raw)
		assert.Equal(t, []byte{CmdGetCurrentMode}, dev.writes[0])
	}
}

func TestEnterModeV1NoResponse(t *testing.T) {
	dev := &scriptedDevice{}
	p := withVersion(t, dev, 5)

	require.NoError(t, p.EnterMode(TargetSWD))
	require.Len(t, dev.writes, 2)
	assert.Equal(t, []byte{CmdDebug, DebugAPIv1Enter, EnterSWD}, dev.writes[1])
}

func TestEnterModeV2TwoByteResponse(t *testing.T) {
	dev := &scriptedDevice{reads: [][]byte{{0x80, 0x00}}}
	p := withVersion(t, dev, 17)

	require.NoError(t, p.EnterMode(TargetJTAG))
	assert.Equal(t, []byte{CmdDebug, DebugAPIv2Enter, EnterJTAG}, dev.writes[1])
}

func TestEnterSWIMDistinctFamily(t *testing.T) {
	dev := &scriptedDevice{}
	p := withVersion(t, dev, 17)

	require.NoError(t, p.EnterMode(TargetSWIM))
	assert.Equal(t, []byte{CmdSWIM, SWIMEnter}, dev.writes[1])
}

func TestEnterModeBeforeVersion(t *testing.T) {
	dev := &scriptedDevice{}
	p := newProbe(dev)

	err := p.EnterMode(TargetSWD)
	require.ErrorIs(t, err, ErrNotConnected)
	assert.Empty(t, dev.writes)
}

func TestLeaveModeFrames(t *testing.T) {
	cases := []struct {
		mode Mode
		want []byte
	}{
		{ModeDebug, []byte{CmdDebug, DebugExit}},
		{ModeSWIM, []byte{CmdSWIM, SWIMExit}},
		{ModeDFU, []byte{CmdDFU, DFUExit}},
	}
	for _, c := range cases {
		dev := &scriptedDevice{}
		p := newProbe(dev)

		require.NoError(t, p.LeaveMode(c.mode))
		require.Len(t, dev.writes, 1)
		assert.Equal(t, c.want, dev.writes[0])
	}
}

func TestLeaveModeInvalid(t *testing.T) {
	dev := &scriptedDevice{}
	p := newProbe(dev)

	err := p.LeaveMode(ModeMassStorage)
	require.ErrorIs(t, err, ErrInvalidMode)
	assert.Empty(t, dev.writes, "illegal transitions must not reach the wire")
}

// Connect must sequence the bring-up strictly: leave DFU before any
// enter command, then enter SWD only if the probe is not yet debugging.
func TestConnectFromDFU(t *testing.T) {
	dev := &scriptedDevice{reads: [][]byte{
		packVersion(2, 17, 4, VendorID, ProductIDV2), // version
		{0x00, 0x00}, // mode: dfu
		// leave dfu: no response
		{0x01, 0x00}, // mode after dfu exit: mass-storage
		{0x80, 0x00}, // v2 enter swd status
	}}
	p := newProbe(dev)

	require.NoError(t, p.Connect())

	require.Len(t, dev.writes, 5)
	assert.Equal(t, []byte{CmdGetVersion}, dev.writes[0])
	assert.Equal(t, []byte{CmdGetCurrentMode}, dev.writes[1])
	assert.Equal(t, []byte{CmdDFU, DFUExit}, dev.writes[2], "DFU exit must precede any enter command")
	assert.Equal(t, []byte{CmdGetCurrentMode}, dev.writes[3])
	assert.Equal(t, []byte{CmdDebug, DebugAPIv2Enter, EnterSWD}, dev.writes[4])
}

func TestConnectAlreadyDebugging(t *testing.T) {
	dev := &scriptedDevice{reads: [][]byte{
		packVersion(2, 17, 4, VendorID, ProductIDV2),
		{0x02, 0x00}, // mode: debug
	}}
	p := newProbe(dev)

	require.NoError(t, p.Connect())
	assert.Len(t, dev.writes, 2, "no transition needed when already in debug mode")
}
