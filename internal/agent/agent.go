// Package agent coordinates one collection run: interface enumeration,
// per-interface probing and classification, then the cross-interface DNS
// leak and VPN underlay passes.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"netcheck/internal/classify"
	"netcheck/internal/collectors"
	"netcheck/internal/collectors/dns"
	"netcheck/internal/collectors/link"
	"netcheck/internal/collectors/modem"
	"netcheck/internal/collectors/route"
	"netcheck/internal/collectors/socket"
	"netcheck/internal/config"
	"netcheck/internal/egress"
	"netcheck/internal/netinfo"
)

// LinkProvider enumerates interfaces and gathers classifier signals.
type LinkProvider interface {
	List(ctx context.Context) ([]string, error)
	Signals(ctx context.Context, name string, modemPaths []string) classify.Signals
	DeviceName(ctx context.Context, name string, ifaceType netinfo.InterfaceType) string
}

// RouteProvider supplies addresses, per-interface routes, and the active
// default-route interface.
type RouteProvider interface {
	AllIPv4(ctx context.Context) map[string]string
	AllIPv6(ctx context.Context) map[string]string
	RouteInfo(ctx context.Context, name string) (gateway, metric string)
	ActiveInterface(ctx context.Context) string
}

// DNSProvider supplies per-interface resolver configuration.
type DNSProvider interface {
	Servers(ctx context.Context, name string) (servers []string, current string)
}

// ModemProvider supplies sysfs paths of active cellular modems.
type ModemProvider interface {
	ActiveModemPaths(ctx context.Context) []string
}

// SocketProvider supplies the established-connection snapshot.
type SocketProvider interface {
	Established(ctx context.Context) []netinfo.SocketTuple
}

// EgressProvider supplies the host's external identity.
type EgressProvider interface {
	Lookup(ctx context.Context) netinfo.Egress
}

// Agent runs the collection pipeline. All stages execute sequentially; the
// DNS leak and VPN underlay passes only start once every surviving record
// has the fields they depend on.
type Agent struct {
	cfg    *config.Config
	logger *slog.Logger

	links   LinkProvider
	routes  RouteProvider
	dns     DNSProvider
	modems  ModemProvider
	sockets SocketProvider
	egress  EgressProvider

	classifier  *classify.Classifier
	leakChecker *classify.LeakChecker
	correlator  *classify.Correlator
}

// Option configures the agent, mainly to substitute providers in tests.
type Option func(*Agent)

// WithLinkProvider overrides the link provider.
func WithLinkProvider(p LinkProvider) Option { return func(a *Agent) { a.links = p } }

// WithRouteProvider overrides the route provider.
func WithRouteProvider(p RouteProvider) Option { return func(a *Agent) { a.routes = p } }

// WithDNSProvider overrides the DNS provider.
func WithDNSProvider(p DNSProvider) Option { return func(a *Agent) { a.dns = p } }

// WithModemProvider overrides the modem provider.
func WithModemProvider(p ModemProvider) Option { return func(a *Agent) { a.modems = p } }

// WithSocketProvider overrides the socket provider.
func WithSocketProvider(p SocketProvider) Option { return func(a *Agent) { a.sockets = p } }

// WithEgressProvider overrides the egress provider.
func WithEgressProvider(p EgressProvider) Option { return func(a *Agent) { a.egress = p } }

// New creates an agent wired to the real system probes.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Agent, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.Timeout()
	a := &Agent{
		cfg:     cfg,
		logger:  logger,
		links:   link.NewProber(timeout, link.WithLogger(logger.With("probe", "link"))),
		routes:  route.NewProber(timeout, route.WithLogger(logger.With("probe", "route"))),
		dns:     dns.NewProber(timeout, dns.WithLogger(logger.With("probe", "dns"))),
		modems:  modem.NewProber(timeout, modem.WithLogger(logger.With("probe", "modem"))),
		sockets: socket.NewProber(socket.WithLogger(logger.With("probe", "socket"))),
		egress:  egress.NewClient(cfg.Egress, timeout, egress.WithLogger(logger.With("probe", "egress"))),
	}

	patterns := make(map[string]netinfo.InterfaceType, len(cfg.Classify.NamePatterns))
	for prefix, t := range cfg.Classify.NamePatterns {
		patterns[prefix] = netinfo.InterfaceType(t)
	}
	a.classifier = classify.NewClassifier(classify.ClassifierConfig{
		LoopbackName:  cfg.Classify.LoopbackName,
		VPNPrefixes:   cfg.Classify.VPNPrefixes,
		TetherDrivers: cfg.Classify.TetherDrivers,
		NamePatterns:  patterns,
	}, classify.WithClassifierLogger(logger.With("component", "classifier")))

	a.leakChecker = classify.NewLeakChecker(cfg.DNS.PublicServers,
		classify.WithLeakCheckerLogger(logger.With("component", "dnsleak")))

	a.correlator = classify.NewCorrelator(cfg.VPN.TunnelPort, cfg.VPN.AlternatePorts,
		classify.WithCorrelatorLogger(logger.With("component", "underlay")))

	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// MissingDependencies returns the required commands absent from PATH, with
// an install hint logged for each. Collection must not start when the list
// is non-empty.
func (a *Agent) MissingDependencies() []string {
	var missing []string
	for _, cmd := range a.cfg.RequiredCommands {
		if collectors.CommandExists(cmd) {
			continue
		}
		missing = append(missing, cmd)
		a.logger.Error("missing required command", "command", cmd, "hint", installHint(cmd))
	}
	return missing
}

func installHint(cmd string) string {
	switch cmd {
	case "ip", "ss":
		return "sudo apt install iproute2"
	case "resolvectl":
		return "sudo apt install systemd-resolved"
	case "lspci":
		return "sudo apt install pciutils"
	case "lsusb":
		return "sudo apt install usbutils"
	case "mmcli":
		return "sudo apt install modemmanager"
	default:
		return "install via your package manager"
	}
}

// Collect runs the full pipeline and returns the completed records. The
// returned set is final: nothing mutates it after the underlay pass.
func (a *Agent) Collect(ctx context.Context) ([]*netinfo.Record, error) {
	names, err := a.links.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("interface enumeration failed: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no network interfaces found")
	}
	a.logger.Info("found interfaces", "count", len(names))

	active := a.routes.ActiveInterface(ctx)
	if active != "" {
		a.logger.Info("active interface", "interface", active)
	} else {
		a.logger.Info("no active interface (no default route)")
	}

	// External identity is looked up once, for the active interface only.
	var egressInfo *netinfo.Egress
	if active != "" {
		a.logger.Info("querying external identity")
		info := a.egress.Lookup(ctx)
		egressInfo = &info
	}

	modemPaths := a.modems.ActiveModemPaths(ctx)
	allIPv4 := a.routes.AllIPv4(ctx)
	allIPv6 := a.routes.AllIPv6(ctx)

	// Stage 1: per-interface collection and classification. A failed
	// interface is dropped with a warning; the run continues.
	records := make([]*netinfo.Record, 0, len(names))
	for _, name := range names {
		rec, err := a.collectInterface(ctx, name, active, egressInfo, modemPaths, allIPv4, allIPv6)
		if err != nil {
			a.logger.Warn("dropping interface",
				"interface", collectors.SanitizeForLog(name), "error", err)
			continue
		}
		records = append(records, rec)
	}

	// Stage 2: DNS leak verdicts. Requires every record's type and DNS
	// configuration, so it must not start before stage 1 finishes.
	a.logger.Debug("checking dns leaks")
	a.leakChecker.CheckAll(records)

	// Stage 3: VPN underlay correlation. Requires every record's type and
	// routing.
	a.logger.Debug("correlating vpn underlay")
	a.correlator.Correlate(records, a.sockets.Established(ctx))

	return records, nil
}

func (a *Agent) collectInterface(
	ctx context.Context,
	name, active string,
	egressInfo *netinfo.Egress,
	modemPaths []string,
	allIPv4, allIPv6 map[string]string,
) (*netinfo.Record, error) {
	if !collectors.ValidateInterfaceName(name) {
		return nil, fmt.Errorf("invalid interface name")
	}

	rec := netinfo.NewRecord(name)

	sig := a.links.Signals(ctx, name, modemPaths)
	rec.Type = a.classifier.Classify(sig)

	rec.Device = a.links.DeviceName(ctx, name, rec.Type)

	if addr, ok := allIPv4[name]; ok {
		rec.IP.IPv4 = addr
	}
	if addr, ok := allIPv6[name]; ok {
		rec.IP.IPv6 = addr
	}

	servers, current := a.dns.Servers(ctx, name)
	rec.DNS.Servers = servers
	rec.DNS.CurrentServer = current

	gatewayAddr, metric := a.routes.RouteInfo(ctx, name)
	rec.Routing.Gateway = gatewayAddr
	rec.Routing.Metric = metric

	if name == active && egressInfo != nil {
		rec.Egress = *egressInfo
	}

	a.logger.Debug("interface collected",
		"interface", name,
		"type", rec.Type,
		"gateway", gatewayAddr,
		"metric", metric)

	return rec, nil
}
