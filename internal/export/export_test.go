package export

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"netcheck/internal/netinfo"
)

func sampleRecords() []*netinfo.Record {
	eth := netinfo.NewRecord("eth0")
	eth.Type = netinfo.TypeEthernet
	eth.Device = "Intel I225-V"
	eth.IP.IPv4 = "192.168.1.10"
	eth.IP.IPv6 = "2001:db8::1"
	eth.DNS.Servers = []string{"192.168.1.1"}
	eth.DNS.CurrentServer = "192.168.1.1"
	eth.DNS.LeakStatus = netinfo.LeakStatusWarn
	eth.Routing.Gateway = "192.168.1.1"
	eth.Routing.Metric = "100"
	eth.VPN.CarriesVPN = true

	tun := netinfo.NewRecord("tun0")
	tun.Type = netinfo.TypeVPN
	tun.IP.IPv4 = "10.8.0.2"
	tun.DNS.Servers = []string{"10.2.0.1"}
	tun.DNS.LeakStatus = netinfo.LeakStatusOK
	tun.VPN.ServerIP = "203.0.113.9"
	tun.Egress.ExternalIP = "203.0.113.9"
	tun.Egress.ISP = "ProtonVPN"
	tun.Egress.Country = "CH"

	return []*netinfo.Record{eth, tun}
}

func TestBuildMetadata(t *testing.T) {
	doc := Build(sampleRecords(), "1.2.3")

	require.Equal(t, "netcheck", doc.Metadata.Tool)
	require.Equal(t, "1.2.3", doc.Metadata.Version)
	require.Equal(t, 2, doc.Metadata.InterfaceCount)
	require.NotEmpty(t, doc.Metadata.Timestamp)
	require.Len(t, doc.Interfaces, 2)
}

func TestRoundTripVerbatim(t *testing.T) {
	records := sampleRecords()
	data, err := Marshal(records, "1.2.3")
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))

	for i, exported := range doc.Interfaces {
		require.Equal(t, records[i], Unflatten(exported), "record %d", i)
	}
}

func TestRoundTripPreservesMarkers(t *testing.T) {
	// A freshly seeded record is all markers; each must survive export
	// untouched rather than collapsing to empty strings or nulls.
	rec := netinfo.NewRecord("sit0")
	rec.Type = netinfo.TypeVirtual

	data, err := Marshal([]*netinfo.Record{rec}, "dev")
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Interfaces, 1)

	got := Unflatten(doc.Interfaces[0])
	require.Equal(t, rec, got)
	require.Equal(t, netinfo.MarkerNotAvailable.String(), got.IP.IPv4)
	require.Equal(t, netinfo.MarkerNone.String(), got.Routing.Gateway)
}

func TestSummaryVPNActive(t *testing.T) {
	doc := Build(sampleRecords(), "dev")
	require.True(t, doc.Metadata.Summary.VPNActive)
	require.Equal(t, 1, doc.Metadata.Summary.VPNInterfaces)
	require.False(t, doc.Metadata.Summary.DNSLeakDetected)
}

func TestSummaryVPNConfiguredButDown(t *testing.T) {
	tun := netinfo.NewRecord("tun0")
	tun.Type = netinfo.TypeVPN
	// IPv4 left at its marker: the interface exists but carries no address.

	doc := Build([]*netinfo.Record{tun}, "dev")
	require.False(t, doc.Metadata.Summary.VPNActive)
	require.Equal(t, 1, doc.Metadata.Summary.VPNInterfaces)
}

func TestSummaryLeakDetected(t *testing.T) {
	eth := netinfo.NewRecord("eth0")
	eth.Type = netinfo.TypeEthernet
	eth.DNS.LeakStatus = netinfo.LeakStatusLeak

	doc := Build([]*netinfo.Record{eth}, "dev")
	require.True(t, doc.Metadata.Summary.DNSLeakDetected)
}
