package usbio

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/gousb"
	log "github.com/sirupsen/logrus"
)

// ProbeID identifies a supported debug probe model by its USB IDs and the
// interface number carrying the command/response endpoints.
type ProbeID struct {
	Vendor    gousb.ID
	Product   gousb.ID
	Interface int
}

// Device is a claimed USB debug probe: an open handle, a claimed
// interface, and the bulk endpoint pair the wire protocol runs over.
// It implements BulkDevice.
type Device struct {
	usbDevice    *gousb.Device
	usbConfig    *gousb.Config
	usbInterface *gousb.Interface
	epIn         *gousb.InEndpoint
	epOut        *gousb.OutEndpoint
	maxPacket    int

	Serial       string
	Manufacturer string
	Product      string
	Bus          int
	Address      int
	VendorID     gousb.ID
	ProductID    gousb.ID
}

// FindAll opens every connected device matching one of the given probe IDs.
func FindAll(ctx *gousb.Context, ids []ProbeID) ([]*Device, error) {
	devices := []*Device{}

	usbDevices, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		for _, id := range ids {
			if desc.Vendor == id.Vendor && desc.Product == id.Product {
				return true
			}
		}
		return false
	})
	if err != nil && len(usbDevices) == 0 {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	for _, usbDev := range usbDevices {
		iface := interfaceFor(usbDev.Desc, ids)
		device, err := wrapDevice(usbDev, iface)
		if err != nil {
			usbDev.Close()
			continue
		}
		devices = append(devices, device)
	}

	return devices, nil
}

func interfaceFor(desc *gousb.DeviceDesc, ids []ProbeID) int {
	for _, id := range ids {
		if desc.Vendor == id.Vendor && desc.Product == id.Product {
			return id.Interface
		}
	}
	return 0
}

// Open opens the first device matching id and claims its protocol interface.
func Open(ctx *gousb.Context, id ProbeID) (*Device, error) {
	usbDev, err := ctx.OpenDeviceWithVIDPID(id.Vendor, id.Product)
	if err != nil {
		return nil, fmt.Errorf("failed to open device %s:%s: %w", id.Vendor, id.Product, err)
	}
	if usbDev == nil {
		return nil, ErrNoDevice
	}

	device, err := wrapDevice(usbDev, id.Interface)
	if err != nil {
		usbDev.Close()
		return nil, err
	}
	return device, nil
}

func wrapDevice(usbDev *gousb.Device, ifaceNum int) (*Device, error) {
	manufacturer, _ := usbDev.Manufacturer()
	product, _ := usbDev.Product()
	serial, _ := usbDev.SerialNumber()

	usbDev.SetAutoDetach(true)

	config, err := usbDev.Config(1)
	if err != nil {
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}

	if ifaceNum >= len(config.Desc.Interfaces) {
		config.Close()
		return nil, fmt.Errorf("%w: interface %d of %d", ErrNoSuchInterface, ifaceNum, len(config.Desc.Interfaces))
	}

	iface, err := config.Interface(ifaceNum, 0)
	if err != nil {
		config.Close()
		return nil, fmt.Errorf("failed to claim interface %d: %w", ifaceNum, err)
	}

	epIn, epOut, err := bulkEndpoints(iface)
	if err != nil {
		iface.Close()
		config.Close()
		return nil, err
	}

	desc := usbDev.Desc
	device := &Device{
		usbDevice:    usbDev,
		usbConfig:    config,
		usbInterface: iface,
		epIn:         epIn,
		epOut:        epOut,
		maxPacket:    epIn.Desc.MaxPacketSize,
		Serial:       serial,
		Manufacturer: manufacturer,
		Product:      product,
		Bus:          desc.Bus,
		Address:      desc.Address,
		VendorID:     desc.Vendor,
		ProductID:    desc.Product,
	}

	log.Debugf("usbio: claimed %s itf %d, endpoints in=0x%02x out=0x%02x, max packet %d",
		device, ifaceNum, epIn.Desc.Address, epOut.Desc.Address, device.maxPacket)

	return device, nil
}

// bulkEndpoints picks the lowest-numbered bulk IN/OUT endpoint pair of a
// claimed interface.
func bulkEndpoints(iface *gousb.Interface) (*gousb.InEndpoint, *gousb.OutEndpoint, error) {
	var inNums, outNums []int
	for _, ep := range iface.Setting.Endpoints {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		if ep.Direction == gousb.EndpointDirectionIn {
			inNums = append(inNums, ep.Number)
		} else {
			outNums = append(outNums, ep.Number)
		}
	}
	if len(inNums) == 0 || len(outNums) == 0 {
		return nil, nil, fmt.Errorf("no bulk endpoint pair on interface %d", iface.Setting.Number)
	}
	sort.Ints(inNums)
	sort.Ints(outNums)

	epIn, err := iface.InEndpoint(inNums[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get IN endpoint: %w", err)
	}
	epOut, err := iface.OutEndpoint(outNums[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get OUT endpoint: %w", err)
	}
	return epIn, epOut, nil
}

// WriteBulk implements BulkDevice.
func (d *Device) WriteBulk(p []byte, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return d.epOut.WriteContext(ctx, p)
}

// ReadBulk implements BulkDevice. A timeout with no data is reported as
// (0, nil) so the transport's retry budget can decide what to do with it.
func (d *Device) ReadBulk(p []byte, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	n, err := d.epIn.ReadContext(ctx, p)
	if err != nil {
		if ctx.Err() != nil && n <= 0 {
			return 0, nil
		}
		return n, err
	}
	return n, nil
}

// MaxPacketSize implements BulkDevice.
func (d *Device) MaxPacketSize() int {
	return d.maxPacket
}

// Close releases the interface, configuration and device handle.
func (d *Device) Close() error {
	if d.usbInterface != nil {
		d.usbInterface.Close()
	}
	if d.usbConfig != nil {
		d.usbConfig.Close()
	}
	if d.usbDevice != nil {
		return d.usbDevice.Close()
	}
	return nil
}

// String returns a human-readable description of the device.
func (d *Device) String() string {
	return fmt.Sprintf("%s %s (Serial: %s)", d.Manufacturer, d.Product, d.Serial)
}
