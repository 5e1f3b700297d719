// Package config loads client profiles for the saslplug command.
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"gfx.cafe/util/go/gun"
	"github.com/BurntSushi/toml"
	"github.com/davecgh/go-spew/spew"
	"gopkg.in/yaml.v3"

	"gfx.cafe/gfx/saslplug/lib/sessiondata"
)

const envPrefix = "ENV$"

// Profile describes one client session.
type Profile struct {
	Mechanism string `toml:"mechanism" yaml:"mechanism" json:"mechanism"`

	Username string `toml:"username" yaml:"username" json:"username"`
	Secret   string `toml:"secret" yaml:"secret" json:"secret"`
	Authzid  string `toml:"authzid" yaml:"authzid" json:"authzid"`

	Realm         string   `toml:"realm" yaml:"realm" json:"realm"`
	AllowedRealms []string `toml:"allowed_realms" yaml:"allowed_realms" json:"allowed_realms"`
	Service       string   `toml:"service" yaml:"service" json:"service"`
	Hostname      string   `toml:"hostname" yaml:"hostname" json:"hostname"`

	AnonymousToken string `toml:"anonymous_token" yaml:"anonymous_token" json:"anonymous_token"`
	Qop            string `toml:"qop" yaml:"qop" json:"qop"`
	CbTlsUnique    string `toml:"cb_tls_unique" yaml:"cb_tls_unique" json:"cb_tls_unique"`

	// Extra holds any other session data key.
	Extra map[string]string `toml:"extra" yaml:"extra" json:"extra"`
}

// Env are the environment overrides of a profile.
type Env struct {
	Mechanism string `env:"SASL_MECHANISM"`
	Username  string `env:"SASL_USERNAME"`
	Secret    string `env:"SASL_SECRET"`
	Authzid   string `env:"SASL_AUTHZID"`
	Realm     string `env:"SASL_REALM"`
	Hostname  string `env:"SASL_HOSTNAME"`
	Service   string `env:"SASL_SERVICE"`
}

func LoadEnv() Env {
	var env Env
	gun.Load(&env)
	return env
}

// Load reads a profile. An empty path is an empty profile.
func Load(path string) (*Profile, error) {
	if path == "" {
		return &Profile{}, nil
	}
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(file, filepath.Ext(path))
}

// Parse decodes a profile. ext selects toml, everything else is yaml.
func Parse(file []byte, ext string) (*Profile, error) {
	var p Profile
	switch strings.TrimPrefix(ext, ".") {
	case "toml":
		if err := toml.Unmarshal(file, &p); err != nil {
			return nil, err
		}
	case "yml", "yaml", "json":
		fallthrough
	default:
		if err := yaml.Unmarshal(file, &p); err != nil {
			return nil, err
		}
	}

	for _, field := range []*string{
		&p.Mechanism,
		&p.Username,
		&p.Secret,
		&p.Authzid,
		&p.Realm,
		&p.Service,
		&p.Hostname,
		&p.AnonymousToken,
		&p.Qop,
		&p.CbTlsUnique,
	} {
		*field = expand(*field)
	}
	for i, realm := range p.AllowedRealms {
		p.AllowedRealms[i] = expand(realm)
	}
	for k, v := range p.Extra {
		p.Extra[k] = expand(v)
	}

	return &p, nil
}

func expand(value string) string {
	if strings.HasPrefix(value, envPrefix) {
		return os.Getenv(strings.TrimPrefix(value, envPrefix))
	}
	return value
}

// Override replaces every field set in env.
func (T *Profile) Override(env Env) {
	for _, o := range []struct {
		dst *string
		src string
	}{
		{&T.Mechanism, env.Mechanism},
		{&T.Username, env.Username},
		{&T.Secret, env.Secret},
		{&T.Authzid, env.Authzid},
		{&T.Realm, env.Realm},
		{&T.Hostname, env.Hostname},
		{&T.Service, env.Service},
	} {
		if o.src != "" {
			*o.dst = o.src
		}
	}
}

// SessionData converts the profile. Empty fields are left out.
func (T *Profile) SessionData() sessiondata.SessionData {
	data := sessiondata.New()
	for k, v := range T.Extra {
		data.SetString(k, v)
	}
	for _, f := range []struct {
		key   string
		value string
	}{
		{sessiondata.KeyUsername, T.Username},
		{sessiondata.KeySecret, T.Secret},
		{sessiondata.KeyAuthzid, T.Authzid},
		{sessiondata.KeyRealm, T.Realm},
		{sessiondata.KeyService, T.Service},
		{sessiondata.KeyHostname, T.Hostname},
		{sessiondata.KeyAnonymousToken, T.AnonymousToken},
		{sessiondata.KeyQop, T.Qop},
		{sessiondata.KeyCbTlsUnique, T.CbTlsUnique},
	} {
		if f.value != "" {
			data.SetString(f.key, f.value)
		}
	}
	if len(T.AllowedRealms) > 0 {
		data.SetAllowedRealms(T.AllowedRealms)
	}
	return data
}

// Dump writes the profile with the secret redacted.
func (T *Profile) Dump(w io.Writer) {
	redacted := *T
	if redacted.Secret != "" {
		redacted.Secret = "REDACTED"
	}
	spew.Fdump(w, redacted)
}
