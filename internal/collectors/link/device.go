package link

import (
	"context"
	"regexp"
	"strings"

	"netcheck/internal/collectors"
	"netcheck/internal/netinfo"
)

var lsusbNamePattern = regexp.MustCompile(`(?i)ID\s+[0-9a-f]{4}:[0-9a-f]{4}\s+(.+)$`)

// DeviceName returns a hardware label for the interface, or the "N/A" marker
// for interface types with no backing hardware and for any lookup failure.
// The raw label is returned untouched; display-layer cleanup happens later.
func (p *Prober) DeviceName(ctx context.Context, name string, ifaceType netinfo.InterfaceType) string {
	switch ifaceType {
	case netinfo.TypeLoopback, netinfo.TypeVPN, netinfo.TypeVirtual, netinfo.TypeBridge:
		return netinfo.MarkerNotAvailable.String()
	}

	devicePath := p.devicePath(name)
	if devicePath == "" {
		return netinfo.MarkerNotAvailable.String()
	}

	if strings.Contains(devicePath, "/usb") {
		if label := p.usbDeviceName(ctx, devicePath); label != "" {
			return label
		}
		return "USB Device"
	}

	if label := p.pciDeviceName(ctx, devicePath); label != "" {
		return label
	}
	return netinfo.MarkerNotAvailable.String()
}

// pciDeviceName looks up the device label via lspci using the sysfs
// vendor:device IDs. Output line: "00:1f.6 Ethernet controller: Intel ...".
func (p *Prober) pciDeviceName(ctx context.Context, devicePath string) string {
	vendor, device := p.pciIDs(devicePath)
	if vendor == "" || device == "" {
		return ""
	}

	out, err := collectors.RunCommand(ctx, p.timeout, "lspci", "-d", vendor+":"+device)
	if err != nil || out == "" {
		p.logger.Debug("pci device lookup failed", "ids", vendor+":"+device, "error", err)
		return ""
	}

	line, _, _ := strings.Cut(out, "\n")
	if _, label, found := strings.Cut(line, ": "); found {
		return strings.TrimSpace(label)
	}
	return ""
}

// usbDeviceName looks up the device label via lsusb using the sysfs
// idVendor:idProduct IDs. Output line:
// "Bus 001 Device 003: ID 18d1:4eeb Google Inc. Nexus/Pixel Device".
func (p *Prober) usbDeviceName(ctx context.Context, devicePath string) string {
	vendor, product := p.usbIDs(devicePath)
	if vendor == "" || product == "" {
		return ""
	}

	out, err := collectors.RunCommand(ctx, p.timeout, "lsusb", "-d", vendor+":"+product)
	if err != nil || out == "" {
		p.logger.Debug("usb device lookup failed", "ids", vendor+":"+product, "error", err)
		return ""
	}

	line, _, _ := strings.Cut(out, "\n")
	if m := lsusbNamePattern.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
