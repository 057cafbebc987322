package link

import (
	"os"
	"path/filepath"
	"strings"
)

// devicePath resolves the interface's hardware device path by following the
// sysfs device symlink. Interfaces without backing hardware (tunnels,
// bridges) have no such link; that returns "".
func (p *Prober) devicePath(name string) string {
	link := filepath.Join(p.sysfsRoot, name, "device")
	if _, err := os.Lstat(link); err != nil {
		return ""
	}
	resolved, err := filepath.EvalSymlinks(link)
	if err != nil {
		return ""
	}
	return resolved
}

// deviceDriver returns the name of the kernel driver bound to the device,
// or "" when no driver link is readable.
func (p *Prober) deviceDriver(devicePath string) string {
	resolved, err := filepath.EvalSymlinks(filepath.Join(devicePath, "driver"))
	if err != nil {
		return ""
	}
	return filepath.Base(resolved)
}

// hasWirelessPHY checks the phy80211 marker under the interface's sysfs entry.
func (p *Prober) hasWirelessPHY(name string) bool {
	_, err := os.Stat(filepath.Join(p.sysfsRoot, name, "phy80211"))
	return err == nil
}

// pciIDs reads the PCI vendor and device IDs for the interface's device,
// returning "" pairs when the device is not PCI or the files are unreadable.
func (p *Prober) pciIDs(devicePath string) (vendor, device string) {
	v, err := os.ReadFile(filepath.Join(devicePath, "vendor"))
	if err != nil {
		return "", ""
	}
	d, err := os.ReadFile(filepath.Join(devicePath, "device"))
	if err != nil {
		return "", ""
	}
	vendor = strings.TrimPrefix(strings.TrimSpace(string(v)), "0x")
	device = strings.TrimPrefix(strings.TrimSpace(string(d)), "0x")
	return vendor, device
}

// usbIDs reads the USB idVendor/idProduct files, walking up from the
// interface function directory to the device directory that carries them.
// Both IDs must be 4 hex digits.
func (p *Prober) usbIDs(devicePath string) (vendor, product string) {
	dir := devicePath
	for range 4 {
		v, errV := os.ReadFile(filepath.Join(dir, "idVendor"))
		pr, errP := os.ReadFile(filepath.Join(dir, "idProduct"))
		if errV == nil && errP == nil {
			vendor = strings.TrimSpace(string(v))
			product = strings.TrimSpace(string(pr))
			if len(vendor) == 4 && len(product) == 4 {
				return vendor, product
			}
			return "", ""
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", ""
}
