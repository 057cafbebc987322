package link

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeSysfs builds a minimal /sys/class/net tree: a class-level symlink per
// interface pointing at a device directory, the way the kernel lays it out.
type fakeSysfs struct {
	root    string // stands in for /sys/class/net
	devices string // stands in for /sys/devices
}

func newFakeSysfs(t *testing.T) *fakeSysfs {
	t.Helper()
	base := t.TempDir()
	fs := &fakeSysfs{
		root:    filepath.Join(base, "class", "net"),
		devices: filepath.Join(base, "devices"),
	}
	require.NoError(t, os.MkdirAll(fs.root, 0o755))
	require.NoError(t, os.MkdirAll(fs.devices, 0o755))
	return fs
}

// addIface creates the interface entry. devStem of "" means no backing
// device, like a tunnel or bridge.
func (fs *fakeSysfs) addIface(t *testing.T, name, devStem string) string {
	t.Helper()
	ifaceDir := filepath.Join(fs.root, name)
	require.NoError(t, os.MkdirAll(ifaceDir, 0o755))
	if devStem == "" {
		return ""
	}
	devDir := filepath.Join(fs.devices, devStem)
	require.NoError(t, os.MkdirAll(devDir, 0o755))
	require.NoError(t, os.Symlink(devDir, filepath.Join(ifaceDir, "device")))
	return devDir
}

func (fs *fakeSysfs) addDriver(t *testing.T, devDir, driverName string) {
	t.Helper()
	driverDir := filepath.Join(fs.devices, "drivers", driverName)
	require.NoError(t, os.MkdirAll(driverDir, 0o755))
	require.NoError(t, os.Symlink(driverDir, filepath.Join(devDir, "driver")))
}

func testProber(fs *fakeSysfs) *Prober {
	return NewProber(time.Second, WithSysfsRoot(fs.root))
}

func TestDevicePath(t *testing.T) {
	fs := newFakeSysfs(t)
	devDir := fs.addIface(t, "eth0", "pci0000:00/0000:00:1f.6")
	fs.addIface(t, "tun0", "")

	p := testProber(fs)

	resolved, err := filepath.EvalSymlinks(devDir)
	require.NoError(t, err)
	require.Equal(t, resolved, p.devicePath("eth0"))
	require.Empty(t, p.devicePath("tun0"), "no device symlink means no hardware")
	require.Empty(t, p.devicePath("missing"))
}

func TestDeviceDriver(t *testing.T) {
	fs := newFakeSysfs(t)
	devDir := fs.addIface(t, "usb0", "usb1/1-3/1-3:1.0")
	fs.addDriver(t, devDir, "rndis_host")

	p := testProber(fs)
	require.Equal(t, "rndis_host", p.deviceDriver(devDir))
	require.Empty(t, p.deviceDriver(filepath.Join(fs.devices, "nowhere")))
}

func TestHasWirelessPHY(t *testing.T) {
	fs := newFakeSysfs(t)
	fs.addIface(t, "wlan0", "pci0000:00/0000:00:14.3")
	require.NoError(t, os.MkdirAll(filepath.Join(fs.root, "wlan0", "phy80211"), 0o755))
	fs.addIface(t, "eth0", "pci0000:00/0000:00:1f.6")

	p := testProber(fs)
	require.True(t, p.hasWirelessPHY("wlan0"))
	require.False(t, p.hasWirelessPHY("eth0"))
}

func TestPCIIDs(t *testing.T) {
	fs := newFakeSysfs(t)
	devDir := fs.addIface(t, "eth0", "pci0000:00/0000:00:1f.6")
	require.NoError(t, os.WriteFile(filepath.Join(devDir, "vendor"), []byte("0x8086\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(devDir, "device"), []byte("0x15f3\n"), 0o644))

	p := testProber(fs)
	vendor, device := p.pciIDs(devDir)
	require.Equal(t, "8086", vendor)
	require.Equal(t, "15f3", device)

	vendor, device = p.pciIDs(filepath.Join(fs.devices, "nowhere"))
	require.Empty(t, vendor)
	require.Empty(t, device)
}

func TestUSBIDs(t *testing.T) {
	fs := newFakeSysfs(t)
	// IDs live on the USB device directory, a parent of the interface
	// function directory the device symlink resolves to.
	devDir := fs.addIface(t, "usb0", "usb1/1-3/1-3:1.0")
	usbDev := filepath.Dir(devDir)
	require.NoError(t, os.WriteFile(filepath.Join(usbDev, "idVendor"), []byte("2717\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(usbDev, "idProduct"), []byte("ff80\n"), 0o644))

	p := testProber(fs)
	vendor, product := p.usbIDs(devDir)
	require.Equal(t, "2717", vendor)
	require.Equal(t, "ff80", product)
}

func TestUSBIDsRejectsMalformed(t *testing.T) {
	fs := newFakeSysfs(t)
	devDir := fs.addIface(t, "usb0", "usb1/1-3")
	require.NoError(t, os.WriteFile(filepath.Join(devDir, "idVendor"), []byte("27\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(devDir, "idProduct"), []byte("ff80\n"), 0o644))

	p := testProber(fs)
	vendor, product := p.usbIDs(devDir)
	require.Empty(t, vendor)
	require.Empty(t, product)
}

func TestUSBIDsAbsent(t *testing.T) {
	fs := newFakeSysfs(t)
	devDir := fs.addIface(t, "eth0", "pci0000:00/0000:00:1f.6")

	p := testProber(fs)
	vendor, product := p.usbIDs(devDir)
	require.Empty(t, vendor)
	require.Empty(t, product)
}
