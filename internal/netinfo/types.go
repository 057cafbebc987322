// Package netinfo defines the data model shared by all netcheck components:
// interface records, classification enums, and the reserved data markers.
package netinfo

// Marker is a reserved sentinel standing in for a missing, inapplicable, or
// failed data point. The five values are semantically distinct and must never
// be collapsed into one another:
//
//	NotApplicable - the field does not apply to this interface type
//	NotAvailable  - the data could not be retrieved
//	None          - explicitly no value (e.g. no default route exists)
//	Default       - kernel default in effect, exact value unknown
//	QueryFailed   - a query was attempted and failed
type Marker string

const (
	MarkerNotApplicable Marker = "--"
	MarkerNotAvailable  Marker = "N/A"
	MarkerNone          Marker = "NONE"
	MarkerDefault       Marker = "DEFAULT"
	MarkerQueryFailed   Marker = "QUERY FAILED"
)

// String returns the marker's wire representation.
func (m Marker) String() string { return string(m) }

// InterfaceType classifies a network interface.
type InterfaceType string

const (
	TypeLoopback InterfaceType = "loopback"
	TypeEthernet InterfaceType = "ethernet"
	TypeWireless InterfaceType = "wireless"
	TypeVPN      InterfaceType = "vpn"
	// TypeCellular is a built-in modem with a SIM card (e.g. Quectel EM05-G).
	TypeCellular InterfaceType = "cellular"
	// TypeTether is USB phone tethering (e.g. a Pixel sharing its uplink).
	TypeTether  InterfaceType = "tether"
	TypeVirtual InterfaceType = "virtual"
	TypeBridge  InterfaceType = "bridge"
	TypeUnknown InterfaceType = "unknown"
)

// Physical reports whether the type is a hardware interface category that can
// plausibly carry a VPN tunnel's outer traffic.
func (t InterfaceType) Physical() bool {
	switch t {
	case TypeEthernet, TypeWireless, TypeCellular, TypeTether:
		return true
	default:
		return false
	}
}

// DNSLeakStatus is the verdict of the DNS leak classifier.
//
//	OK     - using VPN DNS (VPN provider sees queries)
//	PUBLIC - using public DNS (not leaking to ISP, but suboptimal)
//	LEAK   - using ISP DNS (defeats VPN privacy)
//	WARN   - using unrecognized DNS (investigate)
//	--     - not applicable (no VPN active or no DNS configured)
type DNSLeakStatus string

const (
	LeakStatusOK            DNSLeakStatus = "OK"
	LeakStatusPublic        DNSLeakStatus = "PUBLIC"
	LeakStatusLeak          DNSLeakStatus = "LEAK"
	LeakStatusWarn          DNSLeakStatus = "WARN"
	LeakStatusNotApplicable DNSLeakStatus = DNSLeakStatus(MarkerNotApplicable)
)

// IPConfig groups the addresses configured on an interface.
type IPConfig struct {
	IPv4 string // address or "N/A"
	IPv6 string // address or "N/A"
}

// DNSConfig groups the resolver configuration and the leak verdict.
type DNSConfig struct {
	Servers       []string // configured resolvers, in reported order
	CurrentServer string   // active resolver or ""
	LeakStatus    DNSLeakStatus
}

// Routing groups the default-route attributes of an interface.
type Routing struct {
	Gateway string // gateway address or "NONE"
	Metric  string // digit string, "DEFAULT", or "NONE"
}

// VPNInfo groups tunnel correlation results. ServerIP is set on VPN-typed
// records; CarriesVPN is set on the physical record the tunnel rides on.
type VPNInfo struct {
	ServerIP   string
	CarriesVPN bool
}

// Egress holds the external identity reported for the host's active
// default-route interface. All other records keep the "--" markers.
type Egress struct {
	ExternalIP   string
	ExternalIPv6 string
	ISP          string
	Country      string
}

// EmptyEgress returns egress fields for a non-active interface.
func EmptyEgress() Egress {
	na := MarkerNotApplicable.String()
	return Egress{ExternalIP: na, ExternalIPv6: na, ISP: na, Country: na}
}

// FailedEgress returns egress fields for a failed external lookup.
func FailedEgress() Egress {
	qf := MarkerQueryFailed.String()
	return Egress{ExternalIP: qf, ExternalIPv6: qf, ISP: qf, Country: qf}
}

// Record is the complete collected state of a single network interface.
// Records are created empty, populated stage by stage by the orchestrator,
// and treated as immutable once correlation has finished.
type Record struct {
	Name    string
	Type    InterfaceType
	Device  string // hardware label or "N/A"
	IP      IPConfig
	DNS     DNSConfig
	Routing Routing
	VPN     VPNInfo
	Egress  Egress
}

// NewRecord creates a record for name with every field seeded to its marker.
func NewRecord(name string) *Record {
	return &Record{
		Name:   name,
		Type:   TypeUnknown,
		Device: MarkerNotAvailable.String(),
		IP: IPConfig{
			IPv4: MarkerNotAvailable.String(),
			IPv6: MarkerNotAvailable.String(),
		},
		DNS: DNSConfig{
			LeakStatus: LeakStatusNotApplicable,
		},
		Routing: Routing{
			Gateway: MarkerNone.String(),
			Metric:  MarkerNone.String(),
		},
		Egress: EmptyEgress(),
	}
}

// SocketStateEstablished is the connection state the correlator consumes;
// every other state in a socket snapshot is ignored.
const SocketStateEstablished = "ESTABLISHED"

// SocketTuple is one entry of the host's socket snapshot.
type SocketTuple struct {
	LocalAddr  string
	LocalPort  uint32
	RemoteAddr string
	RemotePort uint32
	State      string
}
