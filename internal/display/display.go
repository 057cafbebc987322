// Package display renders the collected interface set as a color-coded
// table. All name cleanup here is display-only; record data is never
// modified.
package display

import (
	"fmt"
	"io"
	"strings"

	"netcheck/internal/config"
	"netcheck/internal/netinfo"
)

// ANSI color codes, picked for dark terminal backgrounds.
const (
	colorGreen  = "\033[92m"
	colorCyan   = "\033[96m"
	colorRed    = "\033[91m"
	colorYellow = "\033[93m"
	colorReset  = "\033[0m"
)

type column struct {
	header string
	width  int
}

var columns = []column{
	{"INTERFACE", 15},
	{"TYPE", 10},
	{"DEVICE", 20},
	{"INTERNAL_IPv4", 15},
	{"INTERNAL_IPv6", 25},
	{"DNS_SERVER", 20},
	{"EXTERNAL_IPv4", 15},
	{"EXTERNAL_IPv6", 25},
	{"ISP", 15},
	{"COUNTRY", 10},
	{"GATEWAY", 15},
	{"METRIC", 10},
}

const columnSeparator = "   "

// Renderer writes interface tables.
type Renderer struct {
	cleaner  *Cleaner
	useColor bool
}

// NewRenderer creates a renderer with the given display cleanup tables.
// Color is disabled for non-terminal destinations such as log files.
func NewRenderer(cfg config.DisplayConfig, useColor bool) *Renderer {
	return &Renderer{
		cleaner:  NewCleaner(cfg),
		useColor: useColor,
	}
}

// Render writes the full table with header, rows, and legend footer.
func (r *Renderer) Render(w io.Writer, records []*netinfo.Record) {
	total := tableWidth()
	rule := strings.Repeat("=", total)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Network Interface Analysis")
	fmt.Fprintln(w, rule)

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = pad(col.header, col.width)
	}
	fmt.Fprintln(w, strings.Join(headers, columnSeparator))
	fmt.Fprintln(w, rule)

	for _, rec := range records {
		r.renderRow(w, rec)
	}

	fmt.Fprintln(w, rule)
	r.renderLegend(w)
}

func (r *Renderer) renderRow(w io.Writer, rec *netinfo.Record) {
	currentDNS := rec.DNS.CurrentServer
	if currentDNS == "" {
		currentDNS = netinfo.MarkerNotApplicable.String()
	}

	values := []string{
		rec.Name,
		string(rec.Type),
		r.cleaner.DeviceName(rec.Device),
		rec.IP.IPv4,
		rec.IP.IPv6,
		currentDNS,
		rec.Egress.ExternalIP,
		rec.Egress.ExternalIPv6,
		r.cleaner.ISPName(rec.Egress.ISP),
		rec.Egress.Country,
		rec.Routing.Gateway,
		rec.Routing.Metric,
	}

	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = pad(shorten(values[i], col.width), col.width)
	}
	row := strings.Join(parts, columnSeparator)

	if color := r.rowColor(rec); color != "" && r.useColor {
		fmt.Fprintln(w, color+row+colorReset)
		return
	}
	fmt.Fprintln(w, row)
}

// rowColor applies the first matching rule: leak conditions are always
// flagged first, then healthy VPN state, then the carrier, then bare
// direct-internet exposure.
func (r *Renderer) rowColor(rec *netinfo.Record) string {
	switch rec.DNS.LeakStatus {
	case netinfo.LeakStatusLeak, netinfo.LeakStatusWarn, netinfo.LeakStatusPublic:
		return colorYellow
	}

	if rec.Type == netinfo.TypeVPN {
		if rec.DNS.LeakStatus == netinfo.LeakStatusOK {
			return colorGreen
		}
		if hasEgress(rec) {
			return colorGreen
		}
	}

	if rec.VPN.CarriesVPN {
		return colorCyan
	}

	if hasEgress(rec) {
		return colorRed
	}
	return ""
}

func hasEgress(rec *netinfo.Record) bool {
	switch rec.Egress.ExternalIP {
	case netinfo.MarkerNotApplicable.String(),
		netinfo.MarkerNotAvailable.String(),
		netinfo.MarkerNone.String(),
		netinfo.MarkerQueryFailed.String():
		return false
	}
	return rec.Egress.ExternalIP != ""
}

func (r *Renderer) renderLegend(w io.Writer) {
	green, cyan, red, yellow, reset := "", "", "", "", ""
	if r.useColor {
		green, cyan, red, yellow, reset = colorGreen, colorCyan, colorRed, colorYellow, colorReset
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Color Legend:")
	fmt.Fprintf(w, "%sGREEN%s  - VPN tunnel (encrypted, DNS OK)\n", green, reset)
	fmt.Fprintf(w, "%sCYAN%s   - Physical interface carrying VPN\n", cyan, reset)
	fmt.Fprintf(w, "%sRED%s    - Direct internet (unencrypted)\n", red, reset)
	fmt.Fprintf(w, "%sYELLOW%s - DNS leak, public DNS, or warning\n", yellow, reset)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "DNS Status Meanings:")
	fmt.Fprintln(w, "  OK     - Using VPN DNS (best privacy - VPN provider sees queries)")
	fmt.Fprintln(w, "  PUBLIC - Using public DNS (Cloudflare/Google/Quad9 - not leaking to ISP, but suboptimal)")
	fmt.Fprintln(w, "  LEAK   - Using ISP DNS (security issue - ISP sees all queries, defeats VPN privacy)")
	fmt.Fprintln(w, "  WARN   - Using unknown DNS (investigate further)")
	fmt.Fprintln(w, "  --     - Not applicable (no VPN active or no DNS configured)")
	fmt.Fprintln(w)
}

func tableWidth() int {
	total := 0
	for _, col := range columns {
		total += col.width
	}
	return total + len(columnSeparator)*(len(columns)-1)
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// shorten truncates text to the column width, preferring a word boundary
// when one falls late enough in the string.
func shorten(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	truncated := text[:maxLen-3]
	if idx := strings.LastIndex(truncated, " "); idx > (maxLen*7)/10 {
		return truncated[:idx] + "..."
	}
	return truncated + "..."
}
