package classify

import (
	"log/slog"
	"net/netip"

	"netcheck/internal/netinfo"
)

const dnsPort = 53

// cgnatRange is carrier-grade NAT space; a real VPN server is never
// plausibly addressed here from the host's perspective.
var cgnatRange = netip.MustParsePrefix("100.64.0.0/10")

// Correlator maps each VPN tunnel to its remote endpoint and to the physical
// interface carrying it. Correlation is deliberately cross-record: the VPN
// record's endpoint lookup decides which other record gets CarriesVPN set,
// so the whole pass operates over the full collection at once.
type Correlator struct {
	tunnelPort     uint32
	alternatePorts map[uint32]bool
	logger         *slog.Logger
}

// CorrelatorOption configures a Correlator.
type CorrelatorOption func(*Correlator)

// WithCorrelatorLogger sets the correlator logger.
func WithCorrelatorLogger(logger *slog.Logger) CorrelatorOption {
	return func(c *Correlator) { c.logger = logger }
}

// NewCorrelator creates a correlator. tunnelPort is the well-known WireGuard
// port; alternatePorts are the lower-confidence fallback ports (OpenVPN and
// configured alternates).
func NewCorrelator(tunnelPort uint32, alternatePorts []uint32, opts ...CorrelatorOption) *Correlator {
	c := &Correlator{
		tunnelPort:     tunnelPort,
		alternatePorts: make(map[uint32]bool, len(alternatePorts)),
		logger:         slog.Default(),
	}
	for _, p := range alternatePorts {
		c.alternatePorts[p] = true
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Correlate resolves the server endpoint for every VPN-typed record and
// marks the best physical carrier. It must only run once every record's type
// and routing are populated. A VPN interface with no discoverable endpoint
// is left unset; it never fails the run.
func (c *Correlator) Correlate(records []*netinfo.Record, snapshot []netinfo.SocketTuple) {
	for _, rec := range records {
		if rec.Type != netinfo.TypeVPN {
			continue
		}

		endpoint := c.ServerEndpoint(rec.IP.IPv4, snapshot)
		if endpoint == "" {
			c.logger.Debug("no vpn server endpoint found", "interface", rec.Name)
			continue
		}
		rec.VPN.ServerIP = endpoint
		c.logger.Debug("vpn server endpoint resolved",
			"interface", rec.Name, "endpoint", endpoint)

		carrier := c.findCarrier(records)
		if carrier == nil {
			continue
		}
		c.logger.Info("vpn carrier identified",
			"interface", rec.Name, "carrier", carrier.Name)
		carrier.VPN.CarriesVPN = true
	}
}

// ServerEndpoint scans established tuples for the tunnel's remote address.
//
// Tuples to the DNS port are always noise and rejected, as are remotes in
// private or CGNAT space. Survivors are ranked: local address equal to the
// tunnel's own address is the strongest signal, then the well-known tunnel
// port, then the alternate ports. Ties keep the first-seen tuple.
func (c *Correlator) ServerEndpoint(localIP string, snapshot []netinfo.SocketTuple) string {
	if localIP == "" || localIP == netinfo.MarkerNotAvailable.String() {
		return ""
	}

	bestPriority := -1
	bestRemote := ""

	for _, t := range snapshot {
		if t.State != netinfo.SocketStateEstablished {
			continue
		}
		if t.RemotePort == dnsPort {
			continue
		}
		if isPrivateOrCGNAT(t.RemoteAddr) {
			continue
		}

		priority := -1
		switch {
		case t.LocalAddr == localIP:
			priority = 0
		case t.RemotePort == c.tunnelPort:
			priority = 1
		case c.alternatePorts[t.RemotePort]:
			priority = 2
		default:
			continue
		}

		if bestPriority == -1 || priority < bestPriority {
			bestPriority = priority
			bestRemote = t.RemoteAddr
		}
	}

	return bestRemote
}

// findCarrier picks the physical interface most plausibly routing the
// tunnel's outer traffic: physical type, a real default gateway, best metric
// by the shared ordering. The sort is stable, so interfaces whose metrics
// tie keep OS report order (the kernel's choice is passed through rather
// than re-guessed).
func (c *Correlator) findCarrier(records []*netinfo.Record) *netinfo.Record {
	var best *netinfo.Record
	for _, rec := range records {
		if !rec.Type.Physical() {
			continue
		}
		switch rec.Routing.Gateway {
		case netinfo.MarkerNone.String(),
			netinfo.MarkerNotAvailable.String(),
			netinfo.MarkerNotApplicable.String():
			continue
		}
		if best == nil || netinfo.CompareMetrics(rec.Routing.Metric, best.Routing.Metric) < 0 {
			best = rec
		}
	}
	return best
}

func isPrivateOrCGNAT(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	if addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast() {
		return true
	}
	return cgnatRange.Contains(addr.Unmap())
}
