package netinfo

import "strconv"

// Metric ordering categories. Explicit metrics always beat the kernel's
// implicit choice, which in turn beats having no default route at all.
const (
	metricCategoryNumeric = 0
	metricCategoryDefault = 1
	metricCategoryNone    = 2
)

// MetricKey returns a total-order sort key for a route metric value.
//
// Numeric metrics sort first, ascending by integer value. "DEFAULT" sorts
// next: the kernel picked the value and we deliberately never resolve it to a
// number, because doing so would require guessing which destination route to
// query. "NONE" and anything else sort last.
//
// Both default-route selection and VPN carrier selection sort with this key;
// it is the single shared ordering, not duplicated per caller.
func MetricKey(metric string) (category, value int) {
	if isDigits(metric) {
		if n, err := strconv.Atoi(metric); err == nil {
			return metricCategoryNumeric, n
		}
	}
	if metric == MarkerDefault.String() {
		return metricCategoryDefault, 0
	}
	return metricCategoryNone, 0
}

// CompareMetrics orders two metric values by MetricKey. It returns a negative
// number when a ranks before b, zero when they tie, positive otherwise.
func CompareMetrics(a, b string) int {
	ac, av := MetricKey(a)
	bc, bv := MetricKey(b)
	if ac != bc {
		return ac - bc
	}
	return av - bv
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
