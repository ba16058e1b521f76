package usbio

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBulk is a scripted endpoint pair. Each ReadBulk call delivers the
// next queued buffer; every WriteBulk is recorded.
type fakeBulk struct {
	packetSize int
	reads      [][]byte
	writes     [][]byte
	readCalls  int
	failWrite  bool
}

func (f *fakeBulk) WriteBulk(p []byte, _ time.Duration) (int, error) {
	f.writes = append(f.writes, append([]byte(nil), p...))
	if f.failWrite {
		return 0, nil
	}
	return len(p), nil
}

func (f *fakeBulk) ReadBulk(p []byte, _ time.Duration) (int, error) {
	f.readCalls++
	if len(f.reads) == 0 {
		return 0, nil
	}
	next := f.reads[0]
	f.reads = f.reads[1:]
	return copy(p, next), nil
}

func (f *fakeBulk) MaxPacketSize() int {
	return f.packetSize
}

func (f *fakeBulk) written() []byte {
	var all []byte
	for _, w := range f.writes {
		all = append(all, w...)
	}
	return all
}

func seq(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i)
	}
	return p
}

func TestWriteSplitsIntoChunks(t *testing.T) {
	dev := &fakeBulk{packetSize: 64}
	tr := NewTransport(dev)
	tr.WriteChunkSize = 16

	payload := seq(40)
	n, err := tr.Write(payload)
	require.NoError(t, err)
	require.Equal(t, len(payload), n)

	require.Len(t, dev.writes, 3)
	assert.Len(t, dev.writes[0], 16)
	assert.Len(t, dev.writes[1], 16)
	assert.Len(t, dev.writes[2], 8)
}

func TestWriteChunkSizeInvariant(t *testing.T) {
	payload := seq(137)

	for _, chunk := range []int{1, 7, 64, 137, 4096} {
		dev := &fakeBulk{packetSize: 64}
		tr := NewTransport(dev)
		tr.WriteChunkSize = chunk

		n, err := tr.Write(payload)
		require.NoError(t, err)
		require.Equal(t, len(payload), n)
		assert.True(t, bytes.Equal(payload, dev.written()),
			"on-wire bytes differ for chunk size %d", chunk)
	}
}

func TestWriteBeforeInitFails(t *testing.T) {
	tr := NewTransport(&fakeBulk{packetSize: 0})
	_, err := tr.Write([]byte{1})
	require.ErrorIs(t, err, ErrNotInitialized)

	_, err = tr.Read(1, 1)
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestWriteZeroLengthBulkIsError(t *testing.T) {
	dev := &fakeBulk{packetSize: 64, failWrite: true}
	tr := NewTransport(dev)

	_, err := tr.Write([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrBulkWrite)
}

func TestReadServedFromCacheDoesNoIO(t *testing.T) {
	dev := &fakeBulk{packetSize: 64, reads: [][]byte{seq(10)}}
	tr := NewTransport(dev)

	// prime the cache with one wire read
	first, err := tr.Read(4, 1)
	require.NoError(t, err)
	require.Equal(t, seq(10)[:4], first)
	require.Equal(t, 1, dev.readCalls)

	// the rest must come from the cache alone
	second, err := tr.Read(6, 1)
	require.NoError(t, err)
	assert.Equal(t, seq(10)[4:10], second)
	assert.Equal(t, 1, dev.readCalls)
	assert.Equal(t, 0, tr.Cached())
}

func TestReadSpansCacheAndWire(t *testing.T) {
	dev := &fakeBulk{packetSize: 64, reads: [][]byte{
		{0, 1, 2, 3},
		{4, 5, 6, 7},
	}}
	tr := NewTransport(dev)

	first, err := tr.Read(2, 1)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 1}, first)

	// 2 cached bytes remain; ask for 5 so one more wire read is needed
	out, err := tr.Read(5, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 3, 4, 5, 6}, out)
	assert.Equal(t, 1, tr.Cached())

	rest, err := tr.Read(1, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{7}, rest)
}

func TestReadShortAfterAttemptBudget(t *testing.T) {
	dev := &fakeBulk{packetSize: 64, reads: [][]byte{{0xAA, 0xBB}}}
	tr := NewTransport(dev)

	out, err := tr.Read(10, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB}, out, "short read must be a prefix of arrival order")
	assert.Less(t, len(out), 10)
	// one delivering read plus the exhausted attempt budget
	assert.Equal(t, 4, dev.readCalls)
	assert.Equal(t, 0, tr.Cached())
}

func TestReadZeroSize(t *testing.T) {
	dev := &fakeBulk{packetSize: 64}
	tr := NewTransport(dev)

	out, err := tr.Read(0, 1)
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.Equal(t, 0, dev.readCalls)
}

func TestRefillDiscardsPerPacketStatusRegion(t *testing.T) {
	// packet quantum of 8 with a 2-byte status region: only the 6 data
	// bytes of each quantum survive de-chunking
	raw := []byte{
		0x31, 0x60, 'h', 'e', 'l', 'l', 'o', ' ',
		0x31, 0x60, 'w', 'o', 'r', 'l', 'd', '!',
		0x31, 0x60, '?',
	}
	dev := &fakeBulk{packetSize: 8, reads: [][]byte{raw}}
	tr := NewTransport(dev)
	tr.StatusBytes = 2

	out, err := tr.Read(13, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world!?"), out)
}

func TestExchange(t *testing.T) {
	dev := &fakeBulk{packetSize: 64, reads: [][]byte{{0xDE, 0xAD, 0xBE, 0xEF}}}
	tr := NewTransport(dev)

	resp, err := tr.Exchange([]byte{0xE8}, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, resp)
	assert.Equal(t, []byte{0xE8}, dev.written())
}

func TestExchangeNoResponse(t *testing.T) {
	dev := &fakeBulk{packetSize: 64}
	tr := NewTransport(dev)

	resp, err := tr.Exchange([]byte{0x02}, 0)
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 0, dev.readCalls)
}

func TestExchangeEmptyCommand(t *testing.T) {
	dev := &fakeBulk{packetSize: 64, reads: [][]byte{{0x01}}}
	tr := NewTransport(dev)

	resp, err := tr.Exchange(nil, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, resp)
	assert.Empty(t, dev.writes)
}

func TestExchangeShortResponse(t *testing.T) {
	dev := &fakeBulk{packetSize: 64, reads: [][]byte{{0x01, 0x02}}}
	tr := NewTransport(dev)

	_, err := tr.Exchange([]byte{0xF1}, 6)
	require.ErrorIs(t, err, ErrShortResponse)
}
