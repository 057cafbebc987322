// Package http provides a shared HTTP client with connection pooling for
// the egress lookups.
package http

import (
	"net"
	"net/http"
	"time"
)

// globalClient is the shared HTTP client. Both egress endpoints reuse its
// transport so the retry loop does not re-dial.
var globalClient *http.Client

func init() {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	globalClient = &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}
}

// GetClientWithTimeout returns a client with a custom timeout sharing the
// pooled transport.
func GetClientWithTimeout(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: globalClient.Transport,
		Timeout:   timeout,
	}
}
