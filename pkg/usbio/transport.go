package usbio

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Default transport parameters
const (
	// DefaultChunkSize is the write and read chunk size (4 KiB)
	DefaultChunkSize = 4 << 10

	// DefaultTimeout applies to each bulk read or write
	DefaultTimeout = 5 * time.Second

	// DefaultReadAttempts is how many empty bulk reads are tolerated
	// before a read gives up and returns what it has
	DefaultReadAttempts = 1
)

// BulkDevice is the endpoint pair a Transport drives. The gousb-backed
// Device implements it; tests inject scripted fakes.
type BulkDevice interface {
	// WriteBulk writes p to the OUT endpoint and returns the number of
	// bytes accepted.
	WriteBulk(p []byte, timeout time.Duration) (int, error)

	// ReadBulk fills p from the IN endpoint and returns the number of
	// bytes received. A return of (0, nil) means the device produced no
	// data within the timeout.
	ReadBulk(p []byte, timeout time.Duration) (int, error)

	// MaxPacketSize returns the IN endpoint's max packet size, or 0 if
	// it is not yet known.
	MaxPacketSize() int
}

// Transport moves raw command/response bytes over a bulk endpoint pair.
// Reads are cached: bytes pulled off the wire but not yet consumed by a
// logical read stay buffered for the next one.
//
// A Transport is not safe for concurrent use. The protocol has no
// request-ID field, so exactly one exchange may be in flight per device.
type Transport struct {
	dev BulkDevice

	// read cache: buf[off:] is unconsumed wire data
	buf []byte
	off int

	// WriteChunkSize bounds each bulk write
	WriteChunkSize int

	// ReadChunkSize bounds each bulk read
	ReadChunkSize int

	// StatusBytes is the width of the per-packet status region the
	// device interleaves at the start of every max-packet-size quantum
	// of a bulk read. Zero for devices that do not frame their packets.
	StatusBytes int

	// ReadTimeout and WriteTimeout apply per bulk transfer
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewTransport wraps a bulk endpoint pair in a chunked, buffered transport.
func NewTransport(dev BulkDevice) *Transport {
	return &Transport{
		dev:            dev,
		WriteChunkSize: DefaultChunkSize,
		ReadChunkSize:  DefaultChunkSize,
		ReadTimeout:    DefaultTimeout,
		WriteTimeout:   DefaultTimeout,
	}
}

// Write sends p to the device in write-chunk-sized bulk transfers.
// On success the returned count equals len(p).
func (t *Transport) Write(p []byte) (int, error) {
	if t.dev.MaxPacketSize() <= 0 {
		return 0, ErrNotInitialized
	}

	offset := 0
	for offset < len(p) {
		end := offset + t.WriteChunkSize
		if end > len(p) {
			end = len(p)
		}

		n, err := t.dev.WriteBulk(p[offset:end], t.WriteTimeout)
		if err != nil {
			return offset, fmt.Errorf("bulk write failed at offset %d: %w", offset, err)
		}
		if n <= 0 {
			return offset, fmt.Errorf("%w: device accepted %d bytes", ErrBulkWrite, n)
		}
		offset += n
	}

	return offset, nil
}

// Read returns up to size bytes, serving from the read cache before
// touching the wire. Each empty bulk read consumes one attempt; when the
// budget is spent, whatever has been accumulated is returned as a short
// read. Callers must compare the result length against size.
func (t *Transport) Read(size int, attempts int) ([]byte, error) {
	if t.dev.MaxPacketSize() <= 0 {
		return nil, ErrNotInitialized
	}
	if size <= 0 {
		return nil, nil
	}

	// everything we want is already cached?
	if size <= len(t.buf)-t.off {
		data := make([]byte, size)
		copy(data, t.buf[t.off:t.off+size])
		t.off += size
		return data, nil
	}

	// drain what the cache still holds
	data := make([]byte, 0, size)
	if t.off < len(t.buf) {
		data = append(data, t.buf[t.off:]...)
		t.off = len(t.buf)
	}

	raw := make([]byte, t.ReadChunkSize)
	for len(data) < size {
		n, err := t.dev.ReadBulk(raw, t.ReadTimeout)
		if err != nil {
			return data, fmt.Errorf("bulk read failed: %w", err)
		}

		if n == 0 {
			// no data yet, the device may be late
			attempts--
			if attempts > 0 {
				continue
			}
			t.buf = nil
			t.off = 0
			log.Debugf("usbio: short read, got %d of %d bytes", len(data), size)
			return data, nil
		}

		t.refill(raw[:n])

		take := size - len(data)
		if take > len(t.buf) {
			take = len(t.buf)
		}
		data = append(data, t.buf[:take]...)
		t.off = take
	}

	return data, nil
}

// refill replaces the cache with the logical payload of one raw bulk
// transfer. The device interleaves a status region at the start of every
// max-packet-size quantum; de-chunking keeps only the data regions.
func (t *Transport) refill(raw []byte) {
	packetSize := t.dev.MaxPacketSize()

	if t.StatusBytes == 0 {
		t.buf = append(t.buf[:0:0], raw...)
		t.off = 0
		return
	}

	payload := make([]byte, 0, len(raw))
	for srcoff := 0; srcoff < len(raw); srcoff += packetSize {
		end := srcoff + packetSize
		if end > len(raw) {
			end = len(raw)
		}
		quantum := raw[srcoff:end]
		if len(quantum) <= t.StatusBytes {
			continue
		}
		payload = append(payload, quantum[t.StatusBytes:]...)
	}
	t.buf = payload
	t.off = 0
}

// Exchange writes a command frame and reads its fixed-size response.
// An empty command skips the write; a zero expected size skips the read
// and returns nil. Unlike Read, a short response is an error here: a
// command's response length is part of the wire contract.
func (t *Transport) Exchange(cmd []byte, respSize int) ([]byte, error) {
	if len(cmd) > 0 {
		if _, err := t.Write(cmd); err != nil {
			return nil, err
		}
	}
	if respSize <= 0 {
		return nil, nil
	}

	resp, err := t.Read(respSize, DefaultReadAttempts)
	if err != nil {
		return nil, err
	}
	if len(resp) != respSize {
		return nil, fmt.Errorf("%w: got %d of %d bytes", ErrShortResponse, len(resp), respSize)
	}
	return resp, nil
}

// Cached returns how many unconsumed bytes the read cache holds.
func (t *Transport) Cached() int {
	return len(t.buf) - t.off
}
