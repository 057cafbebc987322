// Package modem queries ModemManager for active cellular modems. The
// classifier matches interface device paths against the sysfs paths reported
// here, so a built-in modem is never misread as USB phone tethering.
package modem

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"netcheck/internal/collectors"
)

var (
	modemIndexPattern = regexp.MustCompile(`/Modem/(\d+)\b`)
	devicePattern     = regexp.MustCompile(`device:\s+(/sys/\S+)`)
)

// Prober reads modem state through mmcli.
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

// NewProber creates a modem prober with the given per-command timeout.
func NewProber(timeout time.Duration, opts ...Option) *Prober {
	p := &Prober{timeout: timeout, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ActiveModemPaths returns the sysfs device paths of every modem
// ModemManager currently manages. Hosts without mmcli or without modems get
// an empty list, never an error.
func (p *Prober) ActiveModemPaths(ctx context.Context) []string {
	out, err := collectors.RunCommand(ctx, p.timeout, "mmcli", "-L")
	if err != nil {
		p.logger.Debug("modem list query failed", "error", err)
		return nil
	}

	var paths []string
	for _, index := range parseModemIndices(out) {
		detail, err := collectors.RunCommand(ctx, p.timeout, "mmcli", "-m", index)
		if err != nil {
			p.logger.Debug("modem detail query failed", "modem", index, "error", err)
			continue
		}
		if path := parseDevicePath(detail); path != "" {
			paths = append(paths, path)
		}
	}
	return paths
}

// parseModemIndices extracts modem numbers from "mmcli -L" output lines of
// the form "/org/freedesktop/ModemManager1/Modem/0 [Quectel] EM05-G".
func parseModemIndices(output string) []string {
	var indices []string
	for _, line := range strings.Split(output, "\n") {
		if m := modemIndexPattern.FindStringSubmatch(line); m != nil {
			indices = append(indices, m[1])
		}
	}
	return indices
}

// parseDevicePath extracts the sysfs device path from "mmcli -m N" output.
func parseDevicePath(output string) string {
	if m := devicePattern.FindStringSubmatch(output); m != nil {
		return m[1]
	}
	return ""
}
