package auth

import (
	"testing"

	"gfx.cafe/gfx/saslplug/lib/sessiondata"
)

type HostTestCase struct {
	Host     string
	Domain   string
	Expected bool
}

var hostTestCases = []HostTestCase{
	{Host: "megahostname", Domain: "megahostname", Expected: true},
	{Host: "sub.megahostname", Domain: "megahostname", Expected: true},
	{Host: "a.b.megahostname", Domain: "megahostname", Expected: true},
	{Host: "othername", Domain: "megahostname", Expected: false},
	{Host: "notmegahostname", Domain: "megahostname", Expected: false},
	{Host: "megahostname", Domain: "sub.megahostname", Expected: false},
	{Host: "", Domain: "megahostname", Expected: false},
}

func TestIsHostInDomain(t *testing.T) {
	for _, c := range hostTestCases {
		if IsHostInDomain(c.Host, c.Domain) != c.Expected {
			t.Errorf("expected %q in %q to be %v", c.Host, c.Domain, c.Expected)
		}
	}
}

var allowedRealms = []string{"microhostname", "megahostname"}

type DomainTestCase struct {
	Name     string
	Data     sessiondata.SessionData
	Expected error
}

var domainTestCases = []DomainTestCase{
	{
		Name:     "no constraints",
		Data:     sessiondata.SessionData{sessiondata.KeyRealm: "anything", sessiondata.KeyHostname: "anywhere"},
		Expected: nil,
	},
	{
		Name:     "empty allow list",
		Data:     sessiondata.SessionData{sessiondata.KeyHostname: "anywhere", sessiondata.KeyAllowedRealms: []string{}},
		Expected: nil,
	},
	{
		Name:     "nothing to check",
		Data:     sessiondata.SessionData{sessiondata.KeyAllowedRealms: allowedRealms},
		Expected: nil,
	},
	{
		Name:     "realm allowed",
		Data:     sessiondata.SessionData{sessiondata.KeyRealm: "microhostname", sessiondata.KeyAllowedRealms: allowedRealms},
		Expected: nil,
	},
	{
		Name:     "realm is matched exactly",
		Data:     sessiondata.SessionData{sessiondata.KeyRealm: "sub.megahostname", sessiondata.KeyAllowedRealms: allowedRealms},
		Expected: ErrUnauthorizedRealm,
	},
	{
		Name:     "hostname suffix",
		Data:     sessiondata.SessionData{sessiondata.KeyHostname: "sub.megahostname", sessiondata.KeyAllowedRealms: allowedRealms},
		Expected: nil,
	},
	{
		Name:     "hostname outside domain",
		Data:     sessiondata.SessionData{sessiondata.KeyHostname: "othername", sessiondata.KeyAllowedRealms: allowedRealms},
		Expected: ErrUnauthorizedHostname,
	},
	{
		Name: "realm checked before hostname",
		Data: sessiondata.SessionData{
			sessiondata.KeyRealm:         "otherrealm",
			sessiondata.KeyHostname:      "othername",
			sessiondata.KeyAllowedRealms: allowedRealms,
		},
		Expected: ErrUnauthorizedRealm,
	},
	{
		Name: "both must pass",
		Data: sessiondata.SessionData{
			sessiondata.KeyRealm:         "megahostname",
			sessiondata.KeyHostname:      "othername",
			sessiondata.KeyAllowedRealms: allowedRealms,
		},
		Expected: ErrUnauthorizedHostname,
	},
	{
		Name: "both pass against different entries",
		Data: sessiondata.SessionData{
			sessiondata.KeyRealm:         "microhostname",
			sessiondata.KeyHostname:      "www.megahostname",
			sessiondata.KeyAllowedRealms: allowedRealms,
		},
		Expected: nil,
	},
	{
		Name:     "allow list is a plain string",
		Data:     sessiondata.SessionData{sessiondata.KeyHostname: "othername", sessiondata.KeyAllowedRealms: "megahostname"},
		Expected: ErrUnauthorizedHostname,
	},
	{
		Name:     "allow list holds a number",
		Data:     sessiondata.SessionData{sessiondata.KeyRealm: "megahostname", sessiondata.KeyAllowedRealms: []any{"megahostname", 7}},
		Expected: ErrUnauthorizedRealm,
	},
	{
		Name:     "unreadable allow list without realm or hostname",
		Data:     sessiondata.SessionData{sessiondata.KeyAllowedRealms: 7},
		Expected: nil,
	},
	{
		Name:     "nil allow list",
		Data:     sessiondata.SessionData{sessiondata.KeyHostname: "othername", sessiondata.KeyAllowedRealms: nil},
		Expected: nil,
	},
}

func TestCheckSessionDomain(t *testing.T) {
	for _, c := range domainTestCases {
		if err := CheckSessionDomain(c.Data); err != c.Expected {
			t.Errorf("%s: expected %v but got %v", c.Name, c.Expected, err)
		}
	}
}
