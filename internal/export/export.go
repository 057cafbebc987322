// Package export renders a collected interface set as a JSON document with
// run metadata. Field values round-trip verbatim, markers included.
package export

import (
	"encoding/json"
	"time"

	"github.com/shirou/gopsutil/v4/host"

	"netcheck/internal/config"
	"netcheck/internal/netinfo"
)

// Document is the exported JSON shape.
type Document struct {
	Metadata   Metadata    `json:"metadata"`
	Interfaces []Interface `json:"interfaces"`
}

// Metadata describes the run that produced the document.
type Metadata struct {
	Timestamp      string  `json:"timestamp"`
	Tool           string  `json:"tool"`
	Version        string  `json:"version"`
	Hostname       string  `json:"hostname,omitempty"`
	Kernel         string  `json:"kernel,omitempty"`
	InterfaceCount int     `json:"interface_count"`
	Summary        Summary `json:"summary"`
}

// Summary carries the run-level posture flags.
type Summary struct {
	VPNActive       bool `json:"vpn_active"`
	VPNInterfaces   int  `json:"vpn_interfaces"`
	DNSLeakDetected bool `json:"dns_leak_detected"`
}

// Interface is one flattened interface record.
type Interface struct {
	Name           string   `json:"name"`
	InterfaceType  string   `json:"interface_type"`
	Device         string   `json:"device"`
	InternalIPv4   string   `json:"internal_ipv4"`
	InternalIPv6   string   `json:"internal_ipv6"`
	DNSServers     []string `json:"dns_servers"`
	CurrentDNS     string   `json:"current_dns"`
	DNSLeakStatus  string   `json:"dns_leak_status"`
	ExternalIPv4   string   `json:"external_ipv4"`
	ExternalIPv6   string   `json:"external_ipv6"`
	EgressISP      string   `json:"egress_isp"`
	EgressCountry  string   `json:"egress_country"`
	DefaultGateway string   `json:"default_gateway"`
	Metric         string   `json:"metric"`
	VPNServerIP    string   `json:"vpn_server_ip"`
	CarriesVPN     bool     `json:"carries_vpn"`
}

// Build assembles the export document for a completed interface set.
func Build(records []*netinfo.Record, version string) Document {
	doc := Document{
		Metadata: Metadata{
			Timestamp:      time.Now().UTC().Format(time.RFC3339),
			Tool:           config.ToolName,
			Version:        version,
			InterfaceCount: len(records),
			Summary:        summarize(records),
		},
		Interfaces: make([]Interface, 0, len(records)),
	}

	if info, err := host.Info(); err == nil {
		doc.Metadata.Hostname = info.Hostname
		doc.Metadata.Kernel = info.KernelVersion
	}

	for _, rec := range records {
		doc.Interfaces = append(doc.Interfaces, flatten(rec))
	}
	return doc
}

// Marshal renders the document as indented JSON.
func Marshal(records []*netinfo.Record, version string) ([]byte, error) {
	doc := Build(records, version)
	return json.MarshalIndent(doc, "", "  ")
}

func summarize(records []*netinfo.Record) Summary {
	s := Summary{}
	for _, rec := range records {
		if rec.Type == netinfo.TypeVPN {
			s.VPNInterfaces++
			// The VPN counts as active once a tunnel address is configured.
			if rec.IP.IPv4 != netinfo.MarkerNotAvailable.String() {
				s.VPNActive = true
			}
		}
		if rec.DNS.LeakStatus == netinfo.LeakStatusLeak {
			s.DNSLeakDetected = true
		}
	}
	return s
}

func flatten(rec *netinfo.Record) Interface {
	return Interface{
		Name:           rec.Name,
		InterfaceType:  string(rec.Type),
		Device:         rec.Device,
		InternalIPv4:   rec.IP.IPv4,
		InternalIPv6:   rec.IP.IPv6,
		DNSServers:     rec.DNS.Servers,
		CurrentDNS:     rec.DNS.CurrentServer,
		DNSLeakStatus:  string(rec.DNS.LeakStatus),
		ExternalIPv4:   rec.Egress.ExternalIP,
		ExternalIPv6:   rec.Egress.ExternalIPv6,
		EgressISP:      rec.Egress.ISP,
		EgressCountry:  rec.Egress.Country,
		DefaultGateway: rec.Routing.Gateway,
		Metric:         rec.Routing.Metric,
		VPNServerIP:    rec.VPN.ServerIP,
		CarriesVPN:     rec.VPN.CarriesVPN,
	}
}

// Unflatten rebuilds a record from its exported form. Export followed by
// Unflatten reproduces every field verbatim.
func Unflatten(i Interface) *netinfo.Record {
	return &netinfo.Record{
		Name:   i.Name,
		Type:   netinfo.InterfaceType(i.InterfaceType),
		Device: i.Device,
		IP: netinfo.IPConfig{
			IPv4: i.InternalIPv4,
			IPv6: i.InternalIPv6,
		},
		DNS: netinfo.DNSConfig{
			Servers:       i.DNSServers,
			CurrentServer: i.CurrentDNS,
			LeakStatus:    netinfo.DNSLeakStatus(i.DNSLeakStatus),
		},
		Routing: netinfo.Routing{
			Gateway: i.DefaultGateway,
			Metric:  i.Metric,
		},
		VPN: netinfo.VPNInfo{
			ServerIP:   i.VPNServerIP,
			CarriesVPN: i.CarriesVPN,
		},
		Egress: netinfo.Egress{
			ExternalIP:   i.ExternalIPv4,
			ExternalIPv6: i.ExternalIPv6,
			ISP:          i.EgressISP,
			Country:      i.EgressCountry,
		},
	}
}
