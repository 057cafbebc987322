package display

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"netcheck/internal/config"
	"netcheck/internal/netinfo"
)

func testRenderer(useColor bool) *Renderer {
	return NewRenderer(config.Default().Display, useColor)
}

func TestRowColorPriority(t *testing.T) {
	r := testRenderer(true)

	leak := netinfo.NewRecord("eth0")
	leak.Type = netinfo.TypeEthernet
	leak.DNS.LeakStatus = netinfo.LeakStatusLeak
	leak.VPN.CarriesVPN = true
	require.Equal(t, colorYellow, r.rowColor(leak), "leak outranks carrier state")

	vpnOK := netinfo.NewRecord("tun0")
	vpnOK.Type = netinfo.TypeVPN
	vpnOK.DNS.LeakStatus = netinfo.LeakStatusOK
	require.Equal(t, colorGreen, r.rowColor(vpnOK))

	vpnEgress := netinfo.NewRecord("tun0")
	vpnEgress.Type = netinfo.TypeVPN
	vpnEgress.Egress.ExternalIP = "203.0.113.9"
	require.Equal(t, colorGreen, r.rowColor(vpnEgress))

	carrier := netinfo.NewRecord("eth0")
	carrier.Type = netinfo.TypeEthernet
	carrier.VPN.CarriesVPN = true
	require.Equal(t, colorCyan, r.rowColor(carrier))

	direct := netinfo.NewRecord("wlan0")
	direct.Type = netinfo.TypeWireless
	direct.Egress.ExternalIP = "198.51.100.4"
	require.Equal(t, colorRed, r.rowColor(direct))

	plain := netinfo.NewRecord("lo")
	plain.Type = netinfo.TypeLoopback
	require.Empty(t, r.rowColor(plain), "markers never count as egress")
}

func TestRenderWithoutColorHasNoEscapes(t *testing.T) {
	rec := netinfo.NewRecord("tun0")
	rec.Type = netinfo.TypeVPN
	rec.DNS.LeakStatus = netinfo.LeakStatusOK

	var buf strings.Builder
	testRenderer(false).Render(&buf, []*netinfo.Record{rec})

	out := buf.String()
	require.NotContains(t, out, "\033[")
	require.Contains(t, out, "tun0")
	require.Contains(t, out, "Color Legend:")
}

func TestRenderShowsMarkersVerbatim(t *testing.T) {
	rec := netinfo.NewRecord("sit0")
	rec.Type = netinfo.TypeVirtual
	rec.Egress = netinfo.FailedEgress()

	var buf strings.Builder
	testRenderer(false).Render(&buf, []*netinfo.Record{rec})

	out := buf.String()
	require.Contains(t, out, "N/A")
	require.Contains(t, out, "QUERY FAILED")
	require.Contains(t, out, "NONE")
}

func TestShorten(t *testing.T) {
	require.Equal(t, "short", shorten("short", 10))
	require.Equal(t, "exactlyten", shorten("exactlyten", 10))

	// A space late in the string becomes the break point.
	got := shorten("Intel Dual Band Wireless", 20)
	require.Equal(t, "Intel Dual Band...", got)

	// No late word boundary: hard cut.
	require.Equal(t, "aaaaaaaaaaaaaaaaa...", shorten(strings.Repeat("a", 30), 20))
}
