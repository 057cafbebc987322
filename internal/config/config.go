// Package config provides netcheck configuration: compiled-in defaults for
// every lookup table the classifiers use, optionally overridden from a YAML
// file. Tables are passed explicitly into the components that consult them,
// never read from ambient state, so tests can substitute their own.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ToolName identifies the tool in export metadata.
const ToolName = "netcheck"

// Exit codes.
const (
	ExitSuccess             = 0
	ExitGeneralError        = 1
	ExitMissingDependencies = 2
	ExitInvalidArguments    = 4
)

// Config is the complete netcheck configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// TimeoutSeconds bounds every OS command and HTTP query.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	Egress   EgressConfig   `yaml:"egress"`
	DNS      DNSConfig      `yaml:"dns"`
	Classify ClassifyConfig `yaml:"classify"`
	VPN      VPNConfig      `yaml:"vpn"`
	Display  DisplayConfig  `yaml:"display"`

	// RequiredCommands must exist in PATH before collection starts.
	RequiredCommands []string `yaml:"required_commands"`
}

// EgressConfig controls the external IP lookup.
type EgressConfig struct {
	IPv4URL       string  `yaml:"ipv4_url"`
	IPv6URL       string  `yaml:"ipv6_url"`
	RetryAttempts int     `yaml:"retry_attempts"`
	RetryBackoff  float64 `yaml:"retry_backoff"` // seconds, doubled per attempt
}

// DNSConfig holds the public resolver allow-list used to distinguish
// "leaking to the ISP" from "using a well-known public resolver".
type DNSConfig struct {
	PublicServers []string `yaml:"public_servers"`
}

// ClassifyConfig holds the interface classifier tables.
type ClassifyConfig struct {
	LoopbackName  string            `yaml:"loopback_name"`
	VPNPrefixes   []string          `yaml:"vpn_prefixes"`
	TetherDrivers []string          `yaml:"tether_drivers"`
	NamePatterns  map[string]string `yaml:"name_patterns"`
}

// VPNConfig holds the endpoint-ranking port tables.
type VPNConfig struct {
	TunnelPort     uint32   `yaml:"tunnel_port"`
	AlternatePorts []uint32 `yaml:"alternate_ports"`
}

// DisplayConfig holds display-only name cleanup terms.
type DisplayConfig struct {
	CorporateSuffixes []string `yaml:"corporate_suffixes"`
	TechnicalTerms    []string `yaml:"technical_terms"`
}

// Timeout returns the per-query timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:       "info",
		TimeoutSeconds: 10,
		Egress: EgressConfig{
			IPv4URL:       "https://ipinfo.io/json",
			IPv6URL:       "https://v6.ipinfo.io/json",
			RetryAttempts: 3,
			RetryBackoff:  1.0,
		},
		DNS: DNSConfig{
			PublicServers: []string{
				// Cloudflare
				"1.1.1.1", "1.0.0.1",
				"2606:4700:4700::1111", "2606:4700:4700::1001",
				// Google
				"8.8.8.8", "8.8.4.4",
				"2001:4860:4860::8888", "2001:4860:4860::8844",
				// Quad9
				"9.9.9.9", "149.112.112.112",
				"2620:fe::fe", "2620:fe::9",
			},
		},
		Classify: ClassifyConfig{
			LoopbackName:  "lo",
			VPNPrefixes:   []string{"tun", "tap", "ppp", "wg"},
			TetherDrivers: []string{"cdc_ether", "cdc_mbim", "cdc_ncm", "ipheth", "rndis_host"},
			NamePatterns: map[string]string{
				"lo":      "loopback",
				"eth":     "ethernet",
				"en":      "ethernet",
				"wl":      "wireless",
				"wlan":    "wireless",
				"vpn":     "vpn",
				"tun":     "vpn",
				"tap":     "vpn",
				"ppp":     "vpn",
				"wg":      "vpn",
				"docker":  "bridge",
				"br":      "bridge",
				"veth":    "virtual",
				"vnet":    "virtual",
				"macvlan": "virtual",
				"ipvlan":  "virtual",
				"vlan":    "virtual",
			},
		},
		VPN: VPNConfig{
			TunnelPort:     51820,
			AlternatePorts: []uint32{1194, 443, 5060, 4569},
		},
		Display: DisplayConfig{
			CorporateSuffixes: []string{
				"co.", "company", "corp.", "corporation",
				"inc.", "ltd.", "limited", "llc",
			},
			TechnicalTerms: []string{
				"802.11ac", "802.11ax", "802.11n",
				"controller", "adapter", "ethernet", "network",
				"wireless", "gigabit", "fast ethernet",
				"base-t", "base-tx", "10/100", "10/100/1000",
				"pci express", "pcie", "rev", "revision",
			},
		},
		RequiredCommands: []string{"ip", "resolvectl"},
	}
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the tool cannot run with.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}
	if c.Egress.RetryAttempts < 1 {
		return fmt.Errorf("egress retry_attempts must be at least 1, got %d", c.Egress.RetryAttempts)
	}
	if c.VPN.TunnelPort == 0 {
		return fmt.Errorf("vpn tunnel_port must be set")
	}
	for prefix, t := range c.Classify.NamePatterns {
		if !validInterfaceType(t) {
			return fmt.Errorf("name_patterns[%s]: unknown interface type %q", prefix, t)
		}
	}
	return nil
}

func validInterfaceType(t string) bool {
	switch t {
	case "loopback", "ethernet", "wireless", "vpn", "cellular",
		"tether", "virtual", "bridge", "unknown":
		return true
	default:
		return false
	}
}
