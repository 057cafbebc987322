package modem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseModemIndices(t *testing.T) {
	out := `    /org/freedesktop/ModemManager1/Modem/0 [Quectel] EM05-G
    /org/freedesktop/ModemManager1/Modem/12 [Sierra Wireless] EM7455
`
	require.Equal(t, []string{"0", "12"}, parseModemIndices(out))
}

func TestParseModemIndicesNoModems(t *testing.T) {
	require.Empty(t, parseModemIndices("No modems were found\n"))
	require.Empty(t, parseModemIndices(""))
}

func TestParseDevicePath(t *testing.T) {
	out := `  --------------------------------
  General  |              path: /org/freedesktop/ModemManager1/Modem/0
  --------------------------------
  Hardware |      manufacturer: Quectel
           |             model: EM05-G
  --------------------------------
  System   |            device: /sys/devices/pci0000:00/0000:00:14.0/usb1/1-4
           |           drivers: cdc_mbim
`
	require.Equal(t, "/sys/devices/pci0000:00/0000:00:14.0/usb1/1-4", parseDevicePath(out))
}

func TestParseDevicePathAbsent(t *testing.T) {
	require.Empty(t, parseDevicePath("  Hardware |  manufacturer: Quectel\n"))
}
