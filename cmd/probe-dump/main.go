// probe-dump: Dump a connected debug probe's identity and capabilities
//
// This tool opens one probe (selected by serial number, bus:address or
// index), brings up its session, and writes a JSON snapshot of what the
// probe reports about itself to stdout or a file.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/gousb"
	log "github.com/sirupsen/logrus"

	"github.com/probelab/golink/pkg/jlink"
	"github.com/probelab/golink/pkg/probeinfo"
	"github.com/probelab/golink/pkg/stlink"
	"github.com/probelab/golink/pkg/usbio"
)

var supportedProbes = []usbio.ProbeID{
	{Vendor: jlink.VendorID, Product: jlink.ProductID, Interface: jlink.InterfaceNum},
	{Vendor: stlink.VendorID, Product: stlink.ProductIDV1, Interface: stlink.InterfaceNum},
	{Vendor: stlink.VendorID, Product: stlink.ProductIDV2, Interface: stlink.InterfaceNum},
	{Vendor: stlink.VendorID, Product: stlink.ProductIDV21, Interface: stlink.InterfaceNum},
}

func main() {
	selector := flag.String("d", "", "Device selector: serial, bus:addr, or #N (default: first probe)")
	output := flag.String("o", "", "Output file (default: stdout)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	context := gousb.NewContext()
	defer context.Close()

	device, err := usbio.Select(context, supportedProbes, usbio.DeviceSelector(*selector))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer device.Close()

	snapshot, err := snapshotDevice(device)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *output != "" {
		if err := probeinfo.SaveToFile(snapshot, *output); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *output)
		return
	}

	if err := snapshot.Dump(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func snapshotDevice(device *usbio.Device) (*probeinfo.Snapshot, error) {
	if device.VendorID == jlink.VendorID {
		probe := jlink.New(usbio.NewTransport(device))
		if err := probe.Connect(); err != nil {
			return nil, err
		}
		return probeinfo.FromJLink(device, probe)
	}

	probe := stlink.New(usbio.NewTransport(device))
	if err := probe.Connect(); err != nil {
		return nil, err
	}
	return probeinfo.FromSTLink(device, probe)
}
