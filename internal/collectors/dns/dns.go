// Package dns queries per-interface resolver configuration from
// systemd-resolved.
package dns

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"netcheck/internal/collectors"
)

var (
	ipv4Pattern = regexp.MustCompile(`\b(?:[0-9]{1,3}\.){3}[0-9]{1,3}\b`)
	ipv6Pattern = regexp.MustCompile(`(?i)\b(?:[0-9a-f]{0,4}:){2,7}[0-9a-f]{0,4}\b`)
)

// Prober reads resolver configuration through resolvectl.
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

// NewProber creates a DNS prober with the given per-command timeout.
func NewProber(timeout time.Duration, opts ...Option) *Prober {
	p := &Prober{timeout: timeout, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Servers returns the interface's configured resolvers in reported order,
// plus the currently active resolver if resolved knows one. A failed query
// returns an empty list, never an error.
func (p *Prober) Servers(ctx context.Context, name string) (servers []string, current string) {
	out, err := collectors.RunCommand(ctx, p.timeout, "resolvectl", "status", name)
	if err != nil {
		p.logger.Debug("dns query failed", "interface", name, "error", err)
		return nil, ""
	}

	lines := strings.Split(out, "\n")
	return parseServerSection(lines), parseCurrentServer(lines)
}

// parseServerSection collects addresses from the "DNS Servers:" section:
// the first address may share the header line, continuation lines are
// indented, and any unindented line ends the section.
func parseServerSection(lines []string) []string {
	var servers []string
	inSection := false

	for _, line := range lines {
		switch {
		case strings.Contains(line, "DNS Servers:"):
			inSection = true
			if _, rest, found := strings.Cut(line, ":"); found {
				servers = append(servers, extractIPs(rest)...)
			}
		case inSection && strings.HasPrefix(line, " "):
			servers = append(servers, extractIPs(line)...)
		case inSection:
			return servers
		}
	}
	return servers
}

func parseCurrentServer(lines []string) string {
	for _, line := range lines {
		if !strings.Contains(line, "Current DNS Server:") {
			continue
		}
		if _, rest, found := strings.Cut(line, ":"); found {
			if ips := extractIPs(rest); len(ips) > 0 {
				return ips[0]
			}
		}
	}
	return ""
}

func extractIPs(text string) []string {
	var ips []string
	ips = append(ips, ipv4Pattern.FindAllString(text, -1)...)
	ips = append(ips, ipv6Pattern.FindAllString(text, -1)...)
	return ips
}
