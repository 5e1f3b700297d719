package plugin

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gfx.cafe/gfx/saslplug/lib/auth/sasl"
	"gfx.cafe/gfx/saslplug/lib/perror"
	"gfx.cafe/gfx/saslplug/lib/sessiondata"
)

var peer = sasl.Credentials{
	Username:       "megauser@example.com",
	Password:       "megapassword",
	AnonymousToken: "megauser@example.com",
	Realm:          "example.com",
	Service:        "imap",
	Hostname:       "mail.example.com",
}

func megaData() sessiondata.SessionData {
	data := sessiondata.New()
	data.SetUsername(peer.Username)
	data.SetSecret(peer.Password)
	data.SetRealm(peer.Realm)
	data.SetString(sessiondata.KeyService, peer.Service)
	data.SetString(sessiondata.KeyHostname, peer.Hostname)
	return data
}

func decodeResponse(t *testing.T, event Event) []byte {
	t.Helper()
	value, ok := event.ResponseBase64()
	require.True(t, ok)
	raw, err := base64.StdEncoding.DecodeString(value)
	require.NoError(t, err)
	return raw
}

func challengeData(challenge []byte) sessiondata.SessionData {
	data := sessiondata.New()
	data.SetString(sessiondata.KeyChallengeBase64, base64.StdEncoding.EncodeToString(challenge))
	return data
}

func TestAnonymous(t *testing.T) {
	p, r := newPlugin()

	requireError(t, p.Initiate("ANONYMOUS", sessiondata.New()), perror.NotAuthorized, "Authorization error 51")
	p.Cancel()
	r.events = nil

	data := sessiondata.New()
	data.SetString(sessiondata.KeyAnonymousToken, "megauser@example.com")
	event := p.Initiate("ANONYMOUS", data)
	require.Equal(t, KindResponseFinal, event.Kind)
	require.Len(t, r.events, 1)
	require.True(t, strings.HasPrefix(string(decodeResponse(t, event)), "megauser@example.com"))
}

func TestPlain(t *testing.T) {
	p, r := newPlugin()

	data := sessiondata.New()
	data.SetUsername("megauser@example.com")
	data.SetSecret("megapassword")

	event := p.Initiate("PLAIN", data)
	require.Equal(t, KindResponseFinal, event.Kind)
	require.Len(t, r.events, 1)

	response := decodeResponse(t, event)
	require.Equal(t, byte(0), response[0])
	require.Equal(t, "megauser@example.com", string(response[1:21]))
	require.Equal(t, byte(0), response[21])
	require.Equal(t, "megapassword", string(response[22:]))
}

func TestCRAMMD5(t *testing.T) {
	p, r := newPlugin()

	srv, err := sasl.NewServer("CRAM-MD5", peer)
	require.NoError(t, err)
	challenge, _, err := srv.Next(nil)
	require.NoError(t, err)

	data := megaData()
	data.SetString(sessiondata.KeyChallengeBase64, base64.StdEncoding.EncodeToString(challenge))

	event := p.Initiate("CRAM-MD5", data)
	require.Equal(t, KindResponseFinal, event.Kind)
	require.Len(t, r.events, 1)

	_, done, err := srv.Next(decodeResponse(t, event))
	require.NoError(t, err)
	require.True(t, done)
}

func TestDigestMD5(t *testing.T) {
	p, r := newPlugin()

	srv, err := sasl.NewServer("DIGEST-MD5", peer)
	require.NoError(t, err)
	challenge, _, err := srv.Next(nil)
	require.NoError(t, err)

	data := megaData()
	data.SetString(sessiondata.KeyChallengeBase64, base64.StdEncoding.EncodeToString(challenge))

	event := p.Initiate("DIGEST-MD5", data)
	require.Equal(t, KindResponse, event.Kind)

	challenge, done, err := srv.Next(decodeResponse(t, event))
	require.NoError(t, err)
	require.True(t, done)

	event = p.Continue(challengeData(challenge))
	require.Equal(t, KindResponseFinal, event.Kind)
	require.Empty(t, decodeResponse(t, event))
	require.Len(t, r.events, 2)
	require.False(t, p.Active())
}

func TestScram(t *testing.T) {
	for _, mechanism := range []string{"SCRAM-SHA-1", "SCRAM-SHA-256"} {
		t.Run(mechanism, func(t *testing.T) {
			p, r := newPlugin()

			srv, err := sasl.NewServer(mechanism, peer)
			require.NoError(t, err)

			event := p.Initiate(mechanism, megaData())
			require.Equal(t, KindResponse, event.Kind)

			challenge, done, err := srv.Next(decodeResponse(t, event))
			require.NoError(t, err)
			require.False(t, done)

			event = p.Continue(challengeData(challenge))
			require.Equal(t, KindResponse, event.Kind)

			challenge, done, err = srv.Next(decodeResponse(t, event))
			require.NoError(t, err)
			require.True(t, done)

			event = p.Continue(challengeData(challenge))
			require.Equal(t, KindResponseFinal, event.Kind)
			require.Empty(t, decodeResponse(t, event))

			require.Len(t, r.events, 3)
			require.False(t, p.Active())

			requireError(t, p.Continue(challengeData(challenge)), perror.WrongState, "Initiate needs to be issued first")
		})
	}
}

func TestScramPlus(t *testing.T) {
	p, _ := newPlugin()

	binding := []byte("tls-unique finished message")
	creds := peer
	creds.ChannelBinding = binding
	srv, err := sasl.NewServer("SCRAM-SHA-256-PLUS", creds)
	require.NoError(t, err)

	data := megaData()
	data.SetString(sessiondata.KeyCbTlsUnique, base64.StdEncoding.EncodeToString(binding))

	// the sink drives the whole exchange
	var final Event
	p.Subscribe(func(event Event) {
		switch event.Kind {
		case KindResponse:
			challenge, _, err := srv.Next(decodeResponse(t, event))
			require.NoError(t, err)
			p.Continue(challengeData(challenge))
		default:
			final = event
		}
	})

	event := p.Initiate("SCRAM-SHA-256-PLUS", data)
	require.Equal(t, KindResponse, event.Kind)
	require.Equal(t, KindResponseFinal, final.Kind)
	require.False(t, p.Active())
}

func TestInitiateReplacesActiveSession(t *testing.T) {
	p, _ := newPlugin()

	event := p.Initiate("SCRAM-SHA-1", megaData())
	require.Equal(t, KindResponse, event.Kind)
	require.Equal(t, "SCRAM-SHA-1", p.Mechanism())

	event = p.Initiate("PLAIN", megaData())
	require.Equal(t, KindResponseFinal, event.Kind)
	require.False(t, p.Active())
}

func TestRejectedInitiateKeepsActiveSession(t *testing.T) {
	p, _ := newPlugin()

	srv, err := sasl.NewServer("SCRAM-SHA-1", peer)
	require.NoError(t, err)

	event := p.Initiate("SCRAM-SHA-1", megaData())
	require.Equal(t, KindResponse, event.Kind)

	rejected := megaData()
	rejected.SetAllowedRealms([]string{"other.com"})
	requireError(t, p.Initiate("PLAIN", rejected), perror.NotAuthorized, "Unauthorized realm")
	require.True(t, p.Active())
	require.Equal(t, "SCRAM-SHA-1", p.Mechanism())

	challenge, _, err := srv.Next(decodeResponse(t, event))
	require.NoError(t, err)
	event = p.Continue(challengeData(challenge))
	require.Equal(t, KindResponse, event.Kind)
}
