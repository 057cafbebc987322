// Package link enumerates network interfaces and gathers the per-interface
// signals the classifier evaluates: sysfs device topology, bound drivers,
// wireless PHY markers, and kernel extended link info.
package link

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gopsnet "github.com/shirou/gopsutil/v4/net"

	"netcheck/internal/classify"
	"netcheck/internal/collectors"
)

// Prober gathers link-level data.
type Prober struct {
	timeout   time.Duration
	logger    *slog.Logger
	sysfsRoot string
}

// Option configures the prober.
type Option func(*Prober)

// WithLogger sets the prober logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prober) { p.logger = logger }
}

// WithSysfsRoot overrides the sysfs class path (tests substitute a temp dir).
func WithSysfsRoot(root string) Option {
	return func(p *Prober) { p.sysfsRoot = root }
}

// NewProber creates a link prober with the given per-command timeout.
func NewProber(timeout time.Duration, opts ...Option) *Prober {
	p := &Prober{
		timeout:   timeout,
		logger:    slog.Default(),
		sysfsRoot: "/sys/class/net",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// List returns all interface names in OS report order, regardless of state.
// Names that fail validation are skipped with a warning.
func (p *Prober) List(ctx context.Context) ([]string, error) {
	stats, err := gopsnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate interfaces: %w", err)
	}

	names := make([]string, 0, len(stats))
	for _, st := range stats {
		if !collectors.ValidateInterfaceName(st.Name) {
			p.logger.Warn("skipping interface with invalid name",
				"name", collectors.SanitizeForLog(st.Name))
			continue
		}
		names = append(names, st.Name)
	}
	return names, nil
}

// Signals gathers the classifier evidence for one interface. Every fetch
// failure leaves the corresponding field at its zero value; the classifier
// treats that as "no match".
func (p *Prober) Signals(ctx context.Context, name string, modemPaths []string) classify.Signals {
	sig := classify.Signals{
		Name:       name,
		ModemPaths: modemPaths,
	}

	sig.DevicePath = p.devicePath(name)
	if sig.DevicePath != "" {
		sig.IsUSB = strings.Contains(sig.DevicePath, "/usb")
		if sig.IsUSB {
			sig.USBDriver = p.deviceDriver(sig.DevicePath)
		}
	}
	sig.WirelessPHY = p.hasWirelessPHY(name)

	out, err := collectors.RunCommand(ctx, p.timeout, "ip", "-d", "link", "show", name)
	if err != nil {
		p.logger.Debug("extended link info unavailable", "interface", name, "error", err)
	} else {
		sig.LinkDetails = strings.ToLower(out)
	}

	return sig
}
