// Package route provides address and routing table probes: per-interface
// IPv4/IPv6 addresses, default gateways with metrics, and active-interface
// selection.
package route

import (
	"context"
	"log/slog"
	"net"
	"sort"
	"time"

	"github.com/jackpal/gateway"

	"netcheck/internal/collectors"
	"netcheck/internal/netinfo"
)

// Prober queries the kernel routing and address state through iproute2.
type Prober struct {
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures the prober.
type Option func(*Prober)

// WithLogger sets the prober logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prober) { p.logger = logger }
}

// NewProber creates a route prober with the given per-command timeout.
func NewProber(timeout time.Duration, opts ...Option) *Prober {
	p := &Prober{timeout: timeout, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AllIPv4 batch-queries every interface's first IPv4 address with a single
// "ip -4 addr show". An empty map on failure, never an error.
func (p *Prober) AllIPv4(ctx context.Context) map[string]string {
	out, err := collectors.RunCommand(ctx, p.timeout, "ip", "-4", "addr", "show")
	if err != nil {
		p.logger.Warn("ipv4 address query failed", "error", err)
		return map[string]string{}
	}
	return parseIPv4Addresses(out)
}

// AllIPv6 batch-queries every interface's first global IPv6 address.
// Link-local, temporary, and deprecated addresses are skipped.
func (p *Prober) AllIPv6(ctx context.Context) map[string]string {
	out, err := collectors.RunCommand(ctx, p.timeout, "ip", "-6", "addr", "show")
	if err != nil {
		p.logger.Warn("ipv6 address query failed", "error", err)
		return map[string]string{}
	}
	return parseIPv6Addresses(out)
}

// RouteInfo returns the interface's default gateway and metric. The metric
// is the explicit value when the routing table shows one, "DEFAULT" when the
// kernel left it implicit, and "NONE" when no default route exists. The
// implicit case is deliberately never resolved to a number: that would mean
// guessing which destination route to query.
func (p *Prober) RouteInfo(ctx context.Context, name string) (gatewayAddr, metric string) {
	out, err := collectors.RunCommand(ctx, p.timeout, "ip", "route", "show", "dev", name)
	if err != nil {
		p.logger.Debug("route query failed", "interface", name, "error", err)
		return netinfo.MarkerNone.String(), netinfo.MarkerNone.String()
	}
	return parseRouteInfo(out)
}

// ActiveInterface returns the interface holding the host's current default
// route, or "" when there is none. With multiple default routes the shared
// metric ordering decides; routes whose metrics all read "DEFAULT" keep OS
// report order, passing the kernel's own choice through.
func (p *Prober) ActiveInterface(ctx context.Context) string {
	out, err := collectors.RunCommand(ctx, p.timeout, "ip", "route", "show", "default")
	if err == nil {
		if name := selectDefaultRoute(parseDefaultRoutes(out)); name != "" {
			return name
		}
	} else {
		p.logger.Debug("default route query failed", "error", err)
	}

	// Fallback: discover the gateway address and find the interface whose
	// subnet contains it.
	gwIP, gwErr := gateway.DiscoverGateway()
	if gwErr != nil {
		return ""
	}
	name, ifErr := interfaceForGateway(gwIP)
	if ifErr != nil {
		p.logger.Debug("gateway interface lookup failed", "gateway", gwIP, "error", ifErr)
		return ""
	}
	return name
}

// defaultRoute is one parsed line of "ip route show default".
type defaultRoute struct {
	iface  string
	metric string
}

// selectDefaultRoute orders candidate routes by the shared metric ordering.
// The sort is stable: all-"DEFAULT" metrics keep report order.
func selectDefaultRoute(routes []defaultRoute) string {
	if len(routes) == 0 {
		return ""
	}
	sort.SliceStable(routes, func(i, j int) bool {
		return netinfo.CompareMetrics(routes[i].metric, routes[j].metric) < 0
	})
	return routes[0].iface
}

// interfaceForGateway finds the interface whose address covers the gateway.
func interfaceForGateway(gwIP net.IP) (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ipnet.Contains(gwIP) {
				return iface.Name, nil
			}
		}
	}
	return "", nil
}
