// Package auth holds the domain checks and digest computations shared by
// clients and server peers.
package auth

import (
	"slices"
	"strings"

	"gfx.cafe/gfx/saslplug/lib/sessiondata"
)

// IsHostInDomain reports whether host is domain itself or a name below it.
func IsHostInDomain(host, domain string) bool {
	if host == domain {
		return true
	}
	return strings.HasSuffix(host, "."+domain)
}

// CheckDomain validates the optional realm and hostname against the allow
// list. An absent or empty allow list permits everything. Realm is checked
// first.
func CheckDomain(realm string, hasRealm bool, host string, hasHost bool, allowed []string) error {
	if len(allowed) == 0 {
		return nil
	}

	if hasRealm && !slices.Contains(allowed, realm) {
		return ErrUnauthorizedRealm
	}

	if hasHost && !slices.ContainsFunc(allowed, func(domain string) bool {
		return IsHostInDomain(host, domain)
	}) {
		return ErrUnauthorizedHostname
	}

	return nil
}

// CheckSessionDomain runs CheckDomain with the Realm, Hostname and
// AllowedRealms values of data. An AllowedRealms value that is not a list of
// strings rejects any realm or hostname.
func CheckSessionDomain(data sessiondata.SessionData) error {
	realm, hasRealm := data.Realm()
	host, hasHost := data.String(sessiondata.KeyHostname)
	allowed, ok := data.AllowedRealms()
	if !ok && data.Has(sessiondata.KeyAllowedRealms) {
		// an unreadable list allows nothing
		switch {
		case hasRealm:
			return ErrUnauthorizedRealm
		case hasHost:
			return ErrUnauthorizedHostname
		}
		return nil
	}
	return CheckDomain(realm, hasRealm, host, hasHost, allowed)
}
