// Package allowlist restricts outbound HTTP traffic to a fixed set of hosts.
package allowlist

import (
	"fmt"
	"net/http"
	"strings"
)

// Hosts the narration pipeline is permitted to contact. The edgekey entry is
// the CDN alias for the synthesis API.
var defaultHosts = []string{
	"api.elevenlabs.io",
	"api.elevenlabs.io.edgekey.net",
	"update.voxsmith.app",
}

// ErrBlockedHost is returned for requests to hosts outside the allow list.
type ErrBlockedHost struct {
	Host string
}

func (e ErrBlockedHost) Error() string {
	return fmt.Sprintf("blocked domain: %s", e.Host)
}

// Transport is an http.RoundTripper that refuses requests to non-listed hosts.
type Transport struct {
	hosts map[string]struct{}
	next  http.RoundTripper
}

// Option configures a Transport.
type Option func(*Transport)

// WithExtraHosts permits additional hosts, primarily for tests against
// loopback servers.
func WithExtraHosts(hosts ...string) Option {
	return func(t *Transport) {
		for _, host := range hosts {
			host = normalizeHost(host)
			if host != "" {
				t.hosts[host] = struct{}{}
			}
		}
	}
}

// WithRoundTripper overrides the underlying transport.
func WithRoundTripper(next http.RoundTripper) Option {
	return func(t *Transport) {
		if next != nil {
			t.next = next
		}
	}
}

// New builds an allow-listed transport over http.DefaultTransport.
func New(opts ...Option) *Transport {
	t := &Transport{
		hosts: make(map[string]struct{}, len(defaultHosts)),
		next:  http.DefaultTransport,
	}
	for _, host := range defaultHosts {
		t.hosts[host] = struct{}{}
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	host := normalizeHost(req.URL.Hostname())
	if _, ok := t.hosts[host]; !ok {
		return nil, ErrBlockedHost{Host: host}
	}
	return t.next.RoundTrip(req)
}

// Client returns an http.Client using this transport.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}

func normalizeHost(host string) string {
	return strings.ToLower(strings.TrimSpace(host))
}
