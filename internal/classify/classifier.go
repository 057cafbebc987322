// Package classify holds the decision core of netcheck: the interface type
// classifier, the DNS leak checker, and the VPN underlay correlator. All
// logic here is pure over pre-fetched signals; fetching is a collector
// concern. Nothing in this package returns an error - every function
// totalizes to a definite value or a "no match".
package classify

import (
	"log/slog"
	"sort"
	"strings"

	"netcheck/internal/netinfo"
)

// Signals is the pre-fetched evidence the classifier rules evaluate. A field
// whose fetch failed is left at its zero value; rules treat that as "no
// match", never as an error.
type Signals struct {
	Name        string
	DevicePath  string   // resolved sysfs device path, "" if none
	IsUSB       bool     // device path sits under a USB bus
	USBDriver   string   // bound kernel driver name, "" if unreadable
	WirelessPHY bool     // phy80211 marker present under sysfs
	LinkDetails string   // lowercased extended link info, "" on command failure
	ModemPaths  []string // sysfs paths of active cellular modems
}

// ClassifierConfig carries the tables the rule chain consults. Passing them
// in explicitly keeps the classifier deterministic under test.
type ClassifierConfig struct {
	LoopbackName  string
	VPNPrefixes   []string
	TetherDrivers []string
	NamePatterns  map[string]netinfo.InterfaceType
}

// rule is one link of the classification chain: a named pure predicate that
// either produces a type or declines.
type rule struct {
	name  string
	match func(Signals) (netinfo.InterfaceType, bool)
}

// Classifier assigns an interface type from signals using an ordered
// first-match-wins rule chain. Once a rule matches, later rules are not
// consulted.
type Classifier struct {
	loopbackName  string
	vpnPrefixes   []string
	tetherDrivers map[string]bool
	patternOrder  []string // name-pattern prefixes, longest first
	patterns      map[string]netinfo.InterfaceType
	rules         []rule
	logger        *slog.Logger
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithClassifierLogger sets the classifier logger.
func WithClassifierLogger(logger *slog.Logger) ClassifierOption {
	return func(c *Classifier) { c.logger = logger }
}

// NewClassifier builds the rule chain. Rule order is a correctness
// requirement: the cellular modem check runs before the USB tether check so
// a modem connected over USB is never misread as phone tethering.
func NewClassifier(cfg ClassifierConfig, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		loopbackName:  cfg.LoopbackName,
		vpnPrefixes:   cfg.VPNPrefixes,
		tetherDrivers: make(map[string]bool, len(cfg.TetherDrivers)),
		patterns:      cfg.NamePatterns,
		logger:        slog.Default(),
	}
	if c.loopbackName == "" {
		c.loopbackName = "lo"
	}
	for _, d := range cfg.TetherDrivers {
		c.tetherDrivers[d] = true
	}
	c.patternOrder = make([]string, 0, len(cfg.NamePatterns))
	for prefix := range cfg.NamePatterns {
		c.patternOrder = append(c.patternOrder, prefix)
	}
	// Longest prefix wins, ties broken lexicographically for determinism.
	sort.Slice(c.patternOrder, func(i, j int) bool {
		if len(c.patternOrder[i]) != len(c.patternOrder[j]) {
			return len(c.patternOrder[i]) > len(c.patternOrder[j])
		}
		return c.patternOrder[i] < c.patternOrder[j]
	})

	for _, opt := range opts {
		opt(c)
	}

	c.rules = []rule{
		{name: "loopback", match: c.matchLoopback},
		{name: "cellular_modem", match: c.matchCellularModem},
		{name: "usb_tether", match: c.matchUSBTether},
		{name: "vpn_name", match: c.matchVPNName},
		{name: "wireless_phy", match: c.matchWirelessPHY},
		{name: "kernel_link", match: c.matchKernelLink},
		{name: "name_pattern", match: c.matchNamePattern},
	}

	return c
}

// Classify runs the rule chain and returns the first match, or unknown when
// no rule matches.
func (c *Classifier) Classify(sig Signals) netinfo.InterfaceType {
	for _, r := range c.rules {
		if t, ok := r.match(sig); ok {
			c.logger.Debug("interface classified",
				"interface", sig.Name, "type", t, "rule", r.name)
			return t
		}
	}
	return netinfo.TypeUnknown
}

func (c *Classifier) matchLoopback(sig Signals) (netinfo.InterfaceType, bool) {
	if sig.Name == c.loopbackName {
		return netinfo.TypeLoopback, true
	}
	return "", false
}

func (c *Classifier) matchCellularModem(sig Signals) (netinfo.InterfaceType, bool) {
	if sig.DevicePath == "" {
		return "", false
	}
	for _, p := range sig.ModemPaths {
		if p != "" && sig.DevicePath == p {
			return netinfo.TypeCellular, true
		}
	}
	return "", false
}

func (c *Classifier) matchUSBTether(sig Signals) (netinfo.InterfaceType, bool) {
	// Unreadable driver name means no match, not tethered.
	if !sig.IsUSB || sig.USBDriver == "" {
		return "", false
	}
	if c.tetherDrivers[sig.USBDriver] {
		return netinfo.TypeTether, true
	}
	return "", false
}

func (c *Classifier) matchVPNName(sig Signals) (netinfo.InterfaceType, bool) {
	if strings.Contains(strings.ToLower(sig.Name), "vpn") {
		return netinfo.TypeVPN, true
	}
	for _, prefix := range c.vpnPrefixes {
		if strings.HasPrefix(sig.Name, prefix) {
			return netinfo.TypeVPN, true
		}
	}
	return "", false
}

func (c *Classifier) matchWirelessPHY(sig Signals) (netinfo.InterfaceType, bool) {
	if sig.WirelessPHY {
		return netinfo.TypeWireless, true
	}
	return "", false
}

func (c *Classifier) matchKernelLink(sig Signals) (netinfo.InterfaceType, bool) {
	details := sig.LinkDetails
	if details == "" {
		return "", false
	}
	switch {
	case strings.Contains(details, "wireguard"),
		strings.Contains(details, "tun"),
		strings.Contains(details, "tap"):
		return netinfo.TypeVPN, true
	case strings.Contains(details, "veth"):
		return netinfo.TypeVirtual, true
	case strings.Contains(details, "bridge"):
		return netinfo.TypeBridge, true
	}
	return "", false
}

func (c *Classifier) matchNamePattern(sig Signals) (netinfo.InterfaceType, bool) {
	for _, prefix := range c.patternOrder {
		if strings.HasPrefix(sig.Name, prefix) {
			return c.patterns[prefix], true
		}
	}
	return "", false
}
