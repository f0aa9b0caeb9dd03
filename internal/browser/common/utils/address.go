package utils

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// FoldAddress returns the case-folded form of an address used for
// fragment matching and cache keys. It does not trim or otherwise rewrite
// the input: matching is over the address exactly as it will be visited.
func FoldAddress(address string) string {
	return strings.ToLower(address)
}

// SameAddress reports whether two addresses refer to the same destination
// as far as navigation bookkeeping is concerned. Scheme and host compare
// case-insensitively, an empty path equals "/", and fragments are ignored.
func SameAddress(a, b string) bool {
	if a == b {
		return true
	}
	return AddressKey(a) == AddressKey(b)
}

// AddressKey is the normalized form SameAddress compares.
func AddressKey(address string) string {
	u, err := url.Parse(strings.TrimSpace(address))
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimSpace(address))
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" {
		u.Path = "/"
		u.RawPath = ""
	}
	return u.String()
}

// Site returns the registrable domain (eTLD+1) of an address, falling back
// to the bare host, and finally to the folded input when no host is present.
func Site(address string) string {
	u, err := url.Parse(strings.TrimSpace(address))
	if err != nil || u.Hostname() == "" {
		return FoldAddress(strings.TrimSpace(address))
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	site, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return site
}
