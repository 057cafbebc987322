package route

import (
	"regexp"
	"strings"

	"netcheck/internal/netinfo"
)

var (
	ifaceHeaderPattern = regexp.MustCompile(`^\d+:\s+([^:@]+)`)
	inet4Pattern       = regexp.MustCompile(`inet\s+([0-9.]+)`)
	inet6Pattern       = regexp.MustCompile(`inet6\s+([0-9a-f:]+)`)
	viaPattern         = regexp.MustCompile(`via\s+([0-9.]+)`)
	metricPattern      = regexp.MustCompile(`metric\s+(\d+)`)
	devPattern         = regexp.MustCompile(`dev\s+(\S+)`)
)

// parseIPv4Addresses maps interface name to its first IPv4 address from
// "ip -4 addr show" output. Header lines carry the interface, indented
// "inet" lines carry the addresses.
func parseIPv4Addresses(output string) map[string]string {
	result := make(map[string]string)
	current := ""

	for _, line := range strings.Split(output, "\n") {
		if !strings.HasPrefix(line, " ") {
			if m := ifaceHeaderPattern.FindStringSubmatch(line); m != nil {
				current = strings.TrimSpace(m[1])
			}
			continue
		}
		if current == "" || !strings.HasPrefix(strings.TrimSpace(line), "inet ") {
			continue
		}
		if _, seen := result[current]; seen {
			continue
		}
		if m := inet4Pattern.FindStringSubmatch(line); m != nil {
			result[current] = m[1]
		}
	}
	return result
}

// parseIPv6Addresses maps interface name to its first global IPv6 address,
// skipping link-local, temporary, and deprecated entries.
func parseIPv6Addresses(output string) map[string]string {
	result := make(map[string]string)
	current := ""

	for _, line := range strings.Split(output, "\n") {
		if !strings.HasPrefix(line, " ") {
			if m := ifaceHeaderPattern.FindStringSubmatch(line); m != nil {
				current = strings.TrimSpace(m[1])
			}
			continue
		}
		if current == "" || !strings.HasPrefix(strings.TrimSpace(line), "inet6 ") {
			continue
		}
		if _, seen := result[current]; seen {
			continue
		}
		if strings.Contains(line, "fe80:") {
			continue
		}
		if strings.Contains(line, "temporary") || strings.Contains(line, "deprecated") {
			continue
		}
		if !strings.Contains(line, "scope global") {
			continue
		}
		if m := inet6Pattern.FindStringSubmatch(line); m != nil {
			result[current] = m[1]
		}
	}
	return result
}

// parseRouteInfo extracts (gateway, metric) from "ip route show dev X"
// output. Only the default route line counts; a default route without an
// explicit metric yields "DEFAULT", no default route yields "NONE"/"NONE".
func parseRouteInfo(output string) (gatewayAddr, metric string) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), "default") {
			continue
		}

		gatewayAddr = netinfo.MarkerNone.String()
		if m := viaPattern.FindStringSubmatch(line); m != nil {
			gatewayAddr = m[1]
		}

		metric = netinfo.MarkerDefault.String()
		if m := metricPattern.FindStringSubmatch(line); m != nil {
			metric = m[1]
		}
		return gatewayAddr, metric
	}
	return netinfo.MarkerNone.String(), netinfo.MarkerNone.String()
}

// parseDefaultRoutes extracts (interface, metric) pairs from
// "ip route show default" output, in report order.
func parseDefaultRoutes(output string) []defaultRoute {
	var routes []defaultRoute
	for _, line := range strings.Split(output, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), "default") {
			continue
		}
		m := devPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		r := defaultRoute{iface: m[1], metric: netinfo.MarkerDefault.String()}
		if mm := metricPattern.FindStringSubmatch(line); mm != nil {
			r.metric = mm[1]
		}
		routes = append(routes, r)
	}
	return routes
}
