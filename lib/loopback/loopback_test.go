package loopback

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"gfx.cafe/gfx/saslplug/lib/auth/sasl"
	"gfx.cafe/gfx/saslplug/lib/perror"
	"gfx.cafe/gfx/saslplug/lib/plugin"
	"gfx.cafe/gfx/saslplug/lib/sessiondata"
)

var binding = []byte("tls-unique finished message")

var creds = sasl.Credentials{
	Username:       "megauser@example.com",
	Password:       "megapassword",
	AnonymousToken: "megauser@example.com",
	Realm:          "example.com",
	Service:        "imap",
	Hostname:       "mail.example.com",
	ChannelBinding: binding,
}

func clientData() sessiondata.SessionData {
	data := sessiondata.New()
	data.SetUsername(creds.Username)
	data.SetSecret(creds.Password)
	data.SetRealm(creds.Realm)
	data.SetString(sessiondata.KeyAnonymousToken, creds.AnonymousToken)
	data.SetString(sessiondata.KeyService, creds.Service)
	data.SetString(sessiondata.KeyHostname, creds.Hostname)
	data.SetString(sessiondata.KeyCbTlsUnique, base64.StdEncoding.EncodeToString(binding))
	return data
}

func TestRun(t *testing.T) {
	cases := []struct {
		Mechanism string
		Rounds    int
	}{
		{"ANONYMOUS", 1},
		{"EXTERNAL", 1},
		{"PLAIN", 1},
		{"LOGIN", 2},
		{"CRAM-MD5", 1},
		{"DIGEST-MD5", 2},
		{"SCRAM-SHA-1", 3},
		{"SCRAM-SHA-1-PLUS", 3},
		{"SCRAM-SHA-256", 3},
		{"SCRAM-SHA-256-PLUS", 3},
	}

	for _, c := range cases {
		t.Run(c.Mechanism, func(t *testing.T) {
			p := plugin.New()
			srv, err := sasl.NewServer(c.Mechanism, creds)
			require.NoError(t, err)

			result, err := Run(p, srv, c.Mechanism, clientData())
			require.NoError(t, err)
			require.Equal(t, c.Rounds, result.Rounds)
			require.Equal(t, plugin.KindResponseFinal, result.Final.Kind)
			require.False(t, p.Active())
		})
	}
}

func TestRunRejected(t *testing.T) {
	data := clientData()
	data.SetSecret("wrongpassword")

	for _, mechanism := range []string{"PLAIN", "CRAM-MD5", "DIGEST-MD5", "SCRAM-SHA-256"} {
		t.Run(mechanism, func(t *testing.T) {
			srv, err := sasl.NewServer(mechanism, creds)
			require.NoError(t, err)

			_, err = Run(plugin.New(), srv, mechanism, data)
			require.Error(t, err)
		})
	}
}

func TestRunPluginError(t *testing.T) {
	data := clientData()
	data.SetAllowedRealms([]string{"other.com"})

	srv, err := sasl.NewServer("PLAIN", creds)
	require.NoError(t, err)

	result, err := Run(plugin.New(), srv, "PLAIN", data)
	require.ErrorIs(t, err, perror.NotAuthorized)
	require.Equal(t, plugin.KindError, result.Final.Kind)
	require.Equal(t, 1, result.Rounds)
}
