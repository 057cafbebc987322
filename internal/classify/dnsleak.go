package classify

import (
	"log/slog"

	"netcheck/internal/netinfo"
)

// LeakChecker classifies each interface's DNS configuration against the
// system-wide picture of VPN-owned, ISP-owned, and public resolvers. No
// interface is judged in isolation: the verdict depends on the complete set.
type LeakChecker struct {
	public map[string]bool
	logger *slog.Logger
}

// LeakCheckerOption configures a LeakChecker.
type LeakCheckerOption func(*LeakChecker)

// WithLeakCheckerLogger sets the leak checker logger.
func WithLeakCheckerLogger(logger *slog.Logger) LeakCheckerOption {
	return func(lc *LeakChecker) { lc.logger = logger }
}

// NewLeakChecker creates a checker with the given public resolver allow-list
// (Cloudflare/Google/Quad9 in both v4 and v6 forms by default config).
func NewLeakChecker(publicServers []string, opts ...LeakCheckerOption) *LeakChecker {
	lc := &LeakChecker{
		public: make(map[string]bool, len(publicServers)),
		logger: slog.Default(),
	}
	for _, s := range publicServers {
		lc.public[s] = true
	}
	for _, opt := range opts {
		opt(lc)
	}
	return lc
}

// CheckAll updates LeakStatus on every record. It must only run once every
// record's type and DNS configuration are populated.
func (lc *LeakChecker) CheckAll(records []*netinfo.Record) {
	vpnDNS, ispDNS := CategorizeServers(records)

	for _, rec := range records {
		rec.DNS.LeakStatus = lc.Detect(rec.Name, rec.DNS.Servers, vpnDNS, ispDNS)
	}
}

// CategorizeServers unions the resolvers configured on VPN-typed interfaces
// into the VPN set and those on ethernet/wireless/tether interfaces into the
// ISP set, deduplicated within each set.
func CategorizeServers(records []*netinfo.Record) (vpnDNS, ispDNS map[string]bool) {
	vpnDNS = make(map[string]bool)
	ispDNS = make(map[string]bool)

	for _, rec := range records {
		switch rec.Type {
		case netinfo.TypeVPN:
			for _, s := range rec.DNS.Servers {
				vpnDNS[s] = true
			}
		case netinfo.TypeEthernet, netinfo.TypeWireless, netinfo.TypeTether:
			for _, s := range rec.DNS.Servers {
				ispDNS[s] = true
			}
		}
	}
	return vpnDNS, ispDNS
}

// Detect returns the verdict for one interface's configured resolvers.
//
// The ISP-overlap check runs strictly before the VPN and public checks: an
// interface can coincidentally list both an ISP and a VPN resolver, and a
// detected ISP leak must not be masked by the VPN match.
func (lc *LeakChecker) Detect(name string, configured []string, vpnDNS, ispDNS map[string]bool) netinfo.DNSLeakStatus {
	// No VPN active system-wide: leak analysis does not apply.
	if len(vpnDNS) == 0 {
		return netinfo.LeakStatusNotApplicable
	}
	if len(configured) == 0 {
		return netinfo.LeakStatusNotApplicable
	}

	if hit := firstOverlap(configured, ispDNS); hit != "" {
		lc.logger.Warn("dns leak detected", "interface", name, "isp_dns", hit)
		return netinfo.LeakStatusLeak
	}
	if hit := firstOverlap(configured, vpnDNS); hit != "" {
		lc.logger.Debug("interface using vpn dns", "interface", name, "vpn_dns", hit)
		return netinfo.LeakStatusOK
	}
	if hit := firstOverlap(configured, lc.public); hit != "" {
		lc.logger.Info("interface using public dns", "interface", name, "public_dns", hit)
		return netinfo.LeakStatusPublic
	}

	lc.logger.Warn("interface using unrecognized dns", "interface", name, "servers", configured)
	return netinfo.LeakStatusWarn
}

func firstOverlap(configured []string, set map[string]bool) string {
	for _, s := range configured {
		if set[s] {
			return s
		}
	}
	return ""
}
