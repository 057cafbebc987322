package classify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"netcheck/internal/netinfo"
)

func testCorrelator() *Correlator {
	return NewCorrelator(51820, []uint32{1194, 443, 5060, 4569})
}

func established(local string, lport uint32, remote string, rport uint32) netinfo.SocketTuple {
	return netinfo.SocketTuple{
		LocalAddr:  local,
		LocalPort:  lport,
		RemoteAddr: remote,
		RemotePort: rport,
		State:      netinfo.SocketStateEstablished,
	}
}

func TestEndpointRejectsDNSPort(t *testing.T) {
	// Port 53 is always noise, regardless of address.
	c := testCorrelator()
	snapshot := []netinfo.SocketTuple{
		established("10.8.0.2", 5000, "203.0.113.9", 53),
	}
	require.Empty(t, c.ServerEndpoint("10.8.0.2", snapshot))
}

func TestEndpointRejectsPrivateAndCGNAT(t *testing.T) {
	c := testCorrelator()
	snapshot := []netinfo.SocketTuple{
		established("10.8.0.2", 5000, "192.168.1.50", 51820),
		established("10.8.0.2", 5001, "10.0.0.7", 51820),
		established("10.8.0.2", 5002, "100.64.3.4", 51820), // CGNAT
		established("10.8.0.2", 5003, "100.127.255.1", 1194),
	}
	require.Empty(t, c.ServerEndpoint("10.8.0.2", snapshot))
}

func TestEndpointLocalAddressBeatsPortMatch(t *testing.T) {
	// A second tuple matches the WireGuard-port rule with a different
	// remote, but the tuple originating from the tunnel's own local address
	// is the stronger signal.
	c := testCorrelator()
	snapshot := []netinfo.SocketTuple{
		established("192.168.1.10", 6000, "198.51.100.7", 51820),
		established("10.8.0.2", 5000, "203.0.113.9", 51820),
	}
	require.Equal(t, "203.0.113.9", c.ServerEndpoint("10.8.0.2", snapshot))
}

func TestEndpointTunnelPortBeatsAlternatePorts(t *testing.T) {
	c := testCorrelator()
	snapshot := []netinfo.SocketTuple{
		established("192.168.1.10", 6000, "198.51.100.7", 1194),
		established("192.168.1.10", 6001, "203.0.113.9", 51820),
	}
	require.Equal(t, "203.0.113.9", c.ServerEndpoint("10.8.0.2", snapshot))
}

func TestEndpointTieKeepsFirstSeen(t *testing.T) {
	c := testCorrelator()
	snapshot := []netinfo.SocketTuple{
		established("192.168.1.10", 6000, "198.51.100.7", 51820),
		established("192.168.1.10", 6001, "203.0.113.9", 51820),
	}
	require.Equal(t, "198.51.100.7", c.ServerEndpoint("10.8.0.2", snapshot))
}

func TestEndpointIgnoresNonEstablished(t *testing.T) {
	c := testCorrelator()
	snapshot := []netinfo.SocketTuple{
		{LocalAddr: "10.8.0.2", LocalPort: 5000, RemoteAddr: "203.0.113.9",
			RemotePort: 51820, State: "TIME_WAIT"},
	}
	require.Empty(t, c.ServerEndpoint("10.8.0.2", snapshot))
}

func TestEndpointRequiresLocalAddress(t *testing.T) {
	c := testCorrelator()
	snapshot := []netinfo.SocketTuple{
		established("10.8.0.2", 5000, "203.0.113.9", 51820),
	}
	require.Empty(t, c.ServerEndpoint("", snapshot))
	require.Empty(t, c.ServerEndpoint("N/A", snapshot))
}

func routedRecord(name string, t netinfo.InterfaceType, gateway, metric string) *netinfo.Record {
	rec := netinfo.NewRecord(name)
	rec.Type = t
	rec.Routing.Gateway = gateway
	rec.Routing.Metric = metric
	return rec
}

func TestCorrelateMarksCarrier(t *testing.T) {
	c := testCorrelator()
	vpn := routedRecord("proton0", netinfo.TypeVPN, "NONE", "NONE")
	vpn.IP.IPv4 = "10.8.0.2"
	eth := routedRecord("eth0", netinfo.TypeEthernet, "192.168.1.1", "100")
	wifi := routedRecord("wlan0", netinfo.TypeWireless, "192.168.1.1", "600")

	snapshot := []netinfo.SocketTuple{
		established("10.8.0.2", 5000, "203.0.113.9", 51820),
	}
	c.Correlate([]*netinfo.Record{vpn, eth, wifi}, snapshot)

	require.Equal(t, "203.0.113.9", vpn.VPN.ServerIP)
	require.True(t, eth.VPN.CarriesVPN, "lowest-metric physical interface carries the VPN")
	require.False(t, wifi.VPN.CarriesVPN)
	require.False(t, vpn.VPN.CarriesVPN)
}

func TestCarrierIgnoresNonPhysicalTypes(t *testing.T) {
	// A bridge or virtual interface with a default gateway must never be
	// chosen as carrier.
	c := testCorrelator()
	vpn := routedRecord("tun0", netinfo.TypeVPN, "NONE", "NONE")
	vpn.IP.IPv4 = "10.8.0.2"
	bridge := routedRecord("docker0", netinfo.TypeBridge, "172.17.0.1", "5")
	virt := routedRecord("veth1", netinfo.TypeVirtual, "172.17.0.1", "6")
	vpn2 := routedRecord("wg9", netinfo.TypeVPN, "10.2.0.1", "1")
	cell := routedRecord("wwan0", netinfo.TypeCellular, "10.123.0.1", "700")

	snapshot := []netinfo.SocketTuple{
		established("10.8.0.2", 5000, "203.0.113.9", 51820),
	}
	c.Correlate([]*netinfo.Record{vpn, bridge, virt, vpn2, cell}, snapshot)

	require.False(t, bridge.VPN.CarriesVPN)
	require.False(t, virt.VPN.CarriesVPN)
	require.False(t, vpn2.VPN.CarriesVPN)
	require.True(t, cell.VPN.CarriesVPN)
}

func TestCarrierRequiresGateway(t *testing.T) {
	c := testCorrelator()
	vpn := routedRecord("tun0", netinfo.TypeVPN, "NONE", "NONE")
	vpn.IP.IPv4 = "10.8.0.2"
	eth := routedRecord("eth0", netinfo.TypeEthernet, "NONE", "NONE")

	snapshot := []netinfo.SocketTuple{
		established("10.8.0.2", 5000, "203.0.113.9", 51820),
	}
	c.Correlate([]*netinfo.Record{vpn, eth}, snapshot)

	require.Equal(t, "203.0.113.9", vpn.VPN.ServerIP)
	require.False(t, eth.VPN.CarriesVPN)
}

func TestCarrierMetricOrderingPrefersExplicit(t *testing.T) {
	c := testCorrelator()
	vpn := routedRecord("tun0", netinfo.TypeVPN, "NONE", "NONE")
	vpn.IP.IPv4 = "10.8.0.2"
	implicit := routedRecord("eth0", netinfo.TypeEthernet, "192.168.1.1", "DEFAULT")
	explicit := routedRecord("wlan0", netinfo.TypeWireless, "192.168.1.1", "600")

	snapshot := []netinfo.SocketTuple{
		established("10.8.0.2", 5000, "203.0.113.9", 51820),
	}
	c.Correlate([]*netinfo.Record{vpn, implicit, explicit}, snapshot)

	require.True(t, explicit.VPN.CarriesVPN)
	require.False(t, implicit.VPN.CarriesVPN)
}

func TestCarrierAllDefaultMetricsKeepsReportOrder(t *testing.T) {
	// With every metric unresolved the kernel's own order is passed
	// through: the first reported interface wins.
	c := testCorrelator()
	vpn := routedRecord("tun0", netinfo.TypeVPN, "NONE", "NONE")
	vpn.IP.IPv4 = "10.8.0.2"
	first := routedRecord("eth0", netinfo.TypeEthernet, "192.168.1.1", "DEFAULT")
	second := routedRecord("wlan0", netinfo.TypeWireless, "192.168.1.1", "DEFAULT")

	snapshot := []netinfo.SocketTuple{
		established("10.8.0.2", 5000, "203.0.113.9", 51820),
	}
	c.Correlate([]*netinfo.Record{vpn, first, second}, snapshot)

	require.True(t, first.VPN.CarriesVPN)
	require.False(t, second.VPN.CarriesVPN)
}

func TestCorrelateNoEndpointLeavesRecordsUntouched(t *testing.T) {
	c := testCorrelator()
	vpn := routedRecord("tun0", netinfo.TypeVPN, "NONE", "NONE")
	vpn.IP.IPv4 = "10.8.0.2"
	eth := routedRecord("eth0", netinfo.TypeEthernet, "192.168.1.1", "100")

	c.Correlate([]*netinfo.Record{vpn, eth}, nil)

	require.Empty(t, vpn.VPN.ServerIP)
	require.False(t, eth.VPN.CarriesVPN)
}

func TestIsPrivateOrCGNAT(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"192.168.1.1", true},
		{"10.0.0.1", true},
		{"172.16.5.5", true},
		{"100.64.0.0", true},
		{"100.127.255.255", true},
		{"100.128.0.0", false}, // just past the CGNAT range
		{"127.0.0.1", true},
		{"169.254.1.1", true},
		{"203.0.113.9", false},
		{"8.8.8.8", false},
		{"fd00::1", true},
		{"2606:4700:4700::1111", false},
		{"not-an-ip", false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, isPrivateOrCGNAT(tt.ip), "ip %q", tt.ip)
	}
}
