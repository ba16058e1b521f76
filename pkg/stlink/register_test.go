package stlink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterIndexAliases(t *testing.T) {
	cases := []struct {
		name string
		want byte
	}{
		{"r0", 0},
		{"r15", 15},
		{"lr", 14},
		{"pc", 15},
		{"psr", 16},
		{"msp", 17},
		{"psp", 18},
	}
	for _, c := range cases {
		idx, err := RegisterIndex(c.name)
		require.NoError(t, err)
		assert.Equal(t, c.want, idx, c.name)
	}
}

func TestRegisterIndexUnknown(t *testing.T) {
	_, err := RegisterIndex("cpsr")
	require.ErrorIs(t, err, ErrNoSuchRegister)
}

func TestReadRegister(t *testing.T) {
	dev := &scriptedDevice{reads: [][]byte{{0x00, 0x10, 0x00, 0x08}}}
	p := withVersion(t, dev, 5)

	value, err := p.ReadRegister("pc")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x08001000), value)
	assert.Equal(t, []byte{CmdDebug, DebugAPIv1ReadReg, 15}, dev.writes[1])
}

func TestReadRegisterUnknownNameNoIO(t *testing.T) {
	dev := &scriptedDevice{}
	p := withVersion(t, dev, 5)

	_, err := p.ReadRegister("flags")
	require.ErrorIs(t, err, ErrNoSuchRegister)
	assert.Len(t, dev.writes, 1, "no frame may be crafted for an unmapped name")
}

func TestReadRegisterRejectedOnV2(t *testing.T) {
	dev := &scriptedDevice{}
	p := withVersion(t, dev, 17)

	_, err := p.ReadRegister("r0")
	require.ErrorIs(t, err, ErrUnsupportedAPI)
	assert.Len(t, dev.writes, 1)
}

func TestWriteRegister(t *testing.T) {
	dev := &scriptedDevice{}
	p := withVersion(t, dev, 5)

	require.NoError(t, p.WriteRegister("msp", 0x20004000))
	require.Len(t, dev.writes, 2)
	assert.Equal(t, []byte{
		CmdDebug, DebugAPIv1WriteReg, 17,
		0x00, 0x40, 0x00, 0x20,
	}, dev.writes[1])
}
