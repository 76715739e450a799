package frontier

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// NormalizeURL canonicalizes a URL for de-duplication:
//
//   - scheme and host are lowercased
//   - the fragment is dropped (it never changes server content)
//   - default ports (:80 for http, :443 for https) are stripped
//   - a trailing slash is stripped except on the root path
//   - query parameters are re-encoded in sorted key order
//
// Two URLs that normalize to the same string are treated as the same page
// for the lifetime of a crawl run.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q in %q", u.Scheme, rawURL)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in %q", rawURL)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	// Strip default ports.
	if (u.Scheme == "http" && strings.HasSuffix(u.Host, ":80")) ||
		(u.Scheme == "https" && strings.HasSuffix(u.Host, ":443")) {
		u.Host = u.Host[:strings.LastIndex(u.Host, ":")]
	}

	// Root path and empty path are the same page.
	if u.Path == "" {
		u.Path = "/"
	}
	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	// Canonical query parameter order.
	if u.RawQuery != "" {
		values, err := url.ParseQuery(u.RawQuery)
		if err != nil {
			// Unparsable queries are kept verbatim rather than dropped;
			// the URL may still be fetchable.
			return u.String(), nil
		}
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var b strings.Builder
		for _, k := range keys {
			vs := values[k]
			sort.Strings(vs)
			for _, v := range vs {
				if b.Len() > 0 {
					b.WriteByte('&')
				}
				b.WriteString(url.QueryEscape(k))
				b.WriteByte('=')
				b.WriteString(url.QueryEscape(v))
			}
		}
		u.RawQuery = b.String()
	}

	return u.String(), nil
}

// RegistrableDomain returns the eTLD+1 of a host ("www.example.co.uk" ->
// "example.co.uk"). Hosts without a recognizable public suffix (IP
// addresses, localhost, test servers) are returned lowercased as-is, so
// tests against 127.0.0.1 behave sensibly.
func RegistrableDomain(host string) string {
	host = strings.ToLower(host)
	if i := strings.LastIndex(host, ":"); i >= 0 {
		// Strip a port if present; publicsuffix wants a bare host.
		if _, ok := parsePort(host[i+1:]); ok {
			host = host[:i]
		}
	}

	// IP literals have no registrable domain; the address itself is the
	// scope unit.
	if net.ParseIP(host) != nil {
		return host
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// parsePort reports whether s looks like a numeric port.
func parsePort(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, n <= 65535
}
