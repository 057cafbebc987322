package display

import (
	"regexp"
	"sort"
	"strings"

	"netcheck/internal/config"
	"netcheck/internal/netinfo"
)

var (
	pciPrefixPattern   = regexp.MustCompile(`^\d+[:.]\S+\s+`)
	usbBusPattern      = regexp.MustCompile(`(?i)^Bus\s+\d+\s+Device\s+\d+:\s+`)
	usbIDPattern       = regexp.MustCompile(`(?i)ID\s+[0-9a-f]{4}:[0-9a-f]{4}\s+`)
	parenthesesPattern = regexp.MustCompile(`\([^)]*\)`)
	bracketsPattern    = regexp.MustCompile(`\[[^\]]*\]`)
	asPrefixPattern    = regexp.MustCompile(`^AS\d+\s+`)
)

// Cleaner shortens hardware and ISP names for table display. Matching is
// case-insensitive; longer terms are removed first so "Corporation" never
// degrades to a dangling "oration" via "Corp".
type Cleaner struct {
	deviceTerms []*regexp.Regexp
	ispTerms    []*regexp.Regexp
}

// NewCleaner compiles the cleanup term tables.
func NewCleaner(cfg config.DisplayConfig) *Cleaner {
	deviceTerms := append([]string{}, cfg.CorporateSuffixes...)
	deviceTerms = append(deviceTerms, cfg.TechnicalTerms...)
	return &Cleaner{
		deviceTerms: compileTerms(deviceTerms),
		ispTerms:    compileTerms(cfg.CorporateSuffixes),
	}
}

func compileTerms(terms []string) []*regexp.Regexp {
	sorted := append([]string{}, terms...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	patterns := make([]*regexp.Regexp, 0, len(sorted))
	for _, term := range sorted {
		// Word-boundary anchored so "Inc." matches "Broadcom Inc." but
		// never the middle of "Incendiary".
		patterns = append(patterns,
			regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(term)+`(\s|[.,-]|$)`))
	}
	return patterns
}

// DeviceName cleans a hardware label for display; markers pass through
// untouched, and a cleanup that would empty the string keeps the original.
func (c *Cleaner) DeviceName(name string) string {
	switch name {
	case netinfo.MarkerNotAvailable.String(),
		netinfo.MarkerNotApplicable.String(),
		netinfo.MarkerNone.String(),
		"USB Device":
		return name
	}

	cleaned := pciPrefixPattern.ReplaceAllString(name, "")
	cleaned = usbBusPattern.ReplaceAllString(cleaned, "")
	cleaned = usbIDPattern.ReplaceAllString(cleaned, "")
	cleaned = parenthesesPattern.ReplaceAllString(cleaned, "")
	cleaned = bracketsPattern.ReplaceAllString(cleaned, "")
	cleaned = stripTerms(cleaned, c.deviceTerms)

	if cleaned == "" {
		return name
	}
	return cleaned
}

// ISPName cleans an ISP label ("AS12345 Comcast Corporation" becomes
// "Comcast"); markers pass through untouched.
func (c *Cleaner) ISPName(isp string) string {
	switch isp {
	case netinfo.MarkerNotApplicable.String(),
		netinfo.MarkerNotAvailable.String(),
		netinfo.MarkerQueryFailed.String():
		return isp
	}

	cleaned := asPrefixPattern.ReplaceAllString(isp, "")
	cleaned = stripTerms(cleaned, c.ispTerms)

	if cleaned == "" {
		return isp
	}
	return cleaned
}

func stripTerms(text string, terms []*regexp.Regexp) string {
	for _, pattern := range terms {
		text = pattern.ReplaceAllString(text, "$1")
	}
	text = strings.Join(strings.Fields(text), " ")
	return strings.Trim(text, " ,:.-")
}
