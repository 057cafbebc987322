// Package socket snapshots the host's connection table for the VPN underlay
// correlator.
package socket

import (
	"context"
	"log/slog"
	"syscall"

	gopsnet "github.com/shirou/gopsutil/v4/net"

	"netcheck/internal/netinfo"
)

// Prober reads the kernel socket state.
type Prober struct {
	logger *slog.Logger
}

// Option configures the prober.
type Option func(*Prober)

// WithLogger sets the prober logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prober) { p.logger = logger }
}

// NewProber creates a socket prober.
func NewProber(opts ...Option) *Prober {
	p := &Prober{logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Established returns the established TCP and UDP tuples. A failed snapshot
// returns an empty list, never an error: endpoint discovery simply finds no
// candidates.
func (p *Prober) Established(ctx context.Context) []netinfo.SocketTuple {
	conns, err := gopsnet.ConnectionsWithContext(ctx, "inet")
	if err != nil {
		p.logger.Warn("socket snapshot failed", "error", err)
		return nil
	}

	tuples := make([]netinfo.SocketTuple, 0, len(conns))
	for _, conn := range conns {
		if !isEstablished(conn) {
			continue
		}
		tuples = append(tuples, netinfo.SocketTuple{
			LocalAddr:  conn.Laddr.IP,
			LocalPort:  conn.Laddr.Port,
			RemoteAddr: conn.Raddr.IP,
			RemotePort: conn.Raddr.Port,
			State:      netinfo.SocketStateEstablished,
		})
	}
	return tuples
}

// isEstablished reports whether a connection belongs in the snapshot. TCP
// sockets carry a real state. UDP sockets always report status "NONE" on
// Linux, so a connected UDP socket (the shape a WireGuard or OpenVPN-over-UDP
// process holds toward its server) is recognized by its remote address
// instead.
func isEstablished(conn gopsnet.ConnectionStat) bool {
	if conn.Status == netinfo.SocketStateEstablished {
		return true
	}
	return conn.Type == syscall.SOCK_DGRAM && conn.Raddr.IP != "" && conn.Raddr.Port != 0
}
