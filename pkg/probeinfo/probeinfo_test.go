package probeinfo

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probelab/golink/pkg/stlink"
	"github.com/probelab/golink/pkg/usbio"
)

type scriptedDevice struct {
	reads [][]byte
}

func (d *scriptedDevice) WriteBulk(p []byte, _ time.Duration) (int, error) {
	return len(p), nil
}

func (d *scriptedDevice) ReadBulk(p []byte, _ time.Duration) (int, error) {
	if len(d.reads) == 0 {
		return 0, nil
	}
	next := d.reads[0]
	d.reads = d.reads[1:]
	return copy(p, next), nil
}

func (d *scriptedDevice) MaxPacketSize() int { return 64 }

func TestFromSTLink(t *testing.T) {
	dev := &scriptedDevice{reads: [][]byte{
		{0x24, 0x44, 0x83, 0x04, 0x48, 0x37},             // V2J17S4 0483:3748
		{0x02, 0x00},                                     // mode: debug
		{0xB0, 0x04, 0x00, 0x00, 0xDC, 0x05, 0x00, 0x00}, // voltage 3000 mV
		{0x77, 0x04, 0xA0, 0x2B},                         // core id
	}}
	probe := stlink.New(usbio.NewTransport(dev))

	snap, err := FromSTLink(&usbio.Device{Serial: "48FF6E06"}, probe)
	require.NoError(t, err)

	assert.Equal(t, "stlink", snap.Family)
	assert.Equal(t, "48FF6E06", snap.Serial)
	assert.Equal(t, "v2", snap.APIRevision)
	assert.Equal(t, "debug", snap.Mode)
	assert.Equal(t, uint32(3000), snap.TargetVoltageMV)
	assert.Equal(t, uint32(0x2BA00477), snap.CoreID)
	require.NotNil(t, snap.Version)
	assert.Equal(t, 17, snap.Version.JTAG)
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	snap := &Snapshot{
		Family:         "jlink",
		Serial:         "000123456",
		Firmware:       []string{"J-Link", "V5.00"},
		CapabilityMask: 0x00000003,
		Capabilities:   []string{"always 1", "EMU_CMD_GET_HW_VERSION"},
		Timestamp:      time.Now().Truncate(time.Second),
	}

	path := filepath.Join(t.TempDir(), "probes", "000123456.json")
	require.NoError(t, SaveToFile(snap, path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, snap.Serial, loaded.Serial)
	assert.Equal(t, snap.Firmware, loaded.Firmware)
	assert.Equal(t, snap.CapabilityMask, loaded.CapabilityMask)
}

func TestDumpRendersJSON(t *testing.T) {
	snap := &Snapshot{Family: "stlink", Serial: "x", Mode: "debug"}

	var buf bytes.Buffer
	require.NoError(t, snap.Dump(&buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "stlink", decoded["family"])
	assert.Equal(t, "debug", decoded["mode"])
}
