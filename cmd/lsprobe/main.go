// lsprobe: List all connected debug probes
//
// This tool enumerates the supported J-Link and ST-Link probes connected
// to the system and displays their serial numbers and basic information.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/gousb"
	log "github.com/sirupsen/logrus"

	"github.com/probelab/golink/pkg/jlink"
	"github.com/probelab/golink/pkg/stlink"
	"github.com/probelab/golink/pkg/usbio"
)

var supportedProbes = []usbio.ProbeID{
	{Vendor: jlink.VendorID, Product: jlink.ProductID, Interface: jlink.InterfaceNum},
	{Vendor: stlink.VendorID, Product: stlink.ProductIDV1, Interface: stlink.InterfaceNum},
	{Vendor: stlink.VendorID, Product: stlink.ProductIDV2, Interface: stlink.InterfaceNum},
	{Vendor: stlink.VendorID, Product: stlink.ProductIDV21, Interface: stlink.InterfaceNum},
}

func family(device *usbio.Device) string {
	if device.VendorID == jlink.VendorID {
		return "jlink"
	}
	return "stlink"
}

func main() {
	verbose := flag.Bool("v", false, "Verbose output (query firmware details)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	context := gousb.NewContext()
	defer context.Close()

	devices, err := usbio.FindAll(context, supportedProbes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to enumerate devices: %v\n", err)
		os.Exit(1)
	}

	if len(devices) == 0 {
		fmt.Println("No debug probes found")
		os.Exit(0)
	}

	fmt.Printf("Found %d debug probe(s):\n", len(devices))
	fmt.Println()

	for i, device := range devices {
		defer device.Close()

		if !*verbose {
			fmt.Printf("  #%d  %-6s  %s  %d:%d\n", i, family(device), device.Serial, device.Bus, device.Address)
			continue
		}

		fmt.Printf("Device #%d:\n", i)
		fmt.Printf("  Family:       %s\n", family(device))
		fmt.Printf("  Serial:       %s\n", device.Serial)
		fmt.Printf("  Bus:Address:  %d:%d\n", device.Bus, device.Address)
		fmt.Printf("  Manufacturer: %s\n", device.Manufacturer)
		fmt.Printf("  Product:      %s\n", device.Product)

		switch family(device) {
		case "jlink":
			describeJLink(device)
		case "stlink":
			describeSTLink(device)
		}
		fmt.Println()
	}
}

func describeJLink(device *usbio.Device) {
	probe := jlink.New(usbio.NewTransport(device))
	if err := probe.Connect(); err != nil {
		fmt.Printf("  Firmware:     (error: %v)\n", err)
		return
	}

	if version, err := probe.Version(); err == nil {
		for _, s := range version {
			fmt.Printf("  Firmware:     %s\n", s)
		}
	}

	caps := probe.Capabilities()
	fmt.Printf("  Capabilities: 0x%08x\n", caps.Mask())
	if hv, err := probe.HardwareVersion(); err == nil {
		fmt.Printf("  Hardware:     %s\n", hv)
	}
}

func describeSTLink(device *usbio.Device) {
	probe := stlink.New(usbio.NewTransport(device))

	version, err := probe.Version()
	if err != nil {
		fmt.Printf("  Firmware:     (error: %v)\n", err)
		return
	}
	fmt.Printf("  Firmware:     %s\n", version)

	if mode, err := probe.QueryMode(); err == nil {
		fmt.Printf("  Mode:         %s\n", mode)

		if mode != stlink.ModeDFU {
			if mv, err := probe.TargetVoltage(); err == nil {
				fmt.Printf("  Target Vdd:   %d mV\n", mv)
			}
		}
	}
}
