package plugin

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gfx.cafe/gfx/saslplug/lib/engine"
	"gfx.cafe/gfx/saslplug/lib/sessiondata"
)

// echoMechanism responds with every property it can resolve.
type echoMechanism struct{}

func (echoMechanism) Step(props engine.Callback, _ []byte) ([]byte, bool, error) {
	var values []string
	for property := engine.Property(0); property < engine.PropertyCount; property++ {
		if value, ok := props.Property(property); ok {
			values = append(values, property.String()+"="+value)
		}
	}
	return []byte(strings.Join(values, ";")), true, nil
}

func echoEngine(callback engine.Callback) (*engine.Engine, error) {
	return engine.New(callback, engine.WithMechanisms(engine.Registration{
		Name: "X-ECHO",
		New: func() engine.Mechanism {
			return echoMechanism{}
		},
	}))
}

func TestPropertyResolver(t *testing.T) {
	p, _ := newPlugin(WithEngine(echoEngine))
	require.Equal(t, []string{"X-ECHO"}, p.Mechanisms())

	data := sessiondata.New()
	data.SetUsername("megauser")
	data.SetSecret("megapassword")
	data.SetString(sessiondata.KeyAuthzid, "admin")
	data.SetString(sessiondata.KeyService, "imap")
	data.SetString(sessiondata.KeyQop, "qop-auth")
	data.SetString(sessiondata.KeyCbTlsUnique, "Y2I=")
	data.SetString("Unrelated", "ignored")

	event := p.Initiate("X-ECHO", data)
	require.Equal(t, KindResponseFinal, event.Kind)
	require.Equal(
		t,
		"authid=megauser;authzid=admin;password=megapassword;service=imap;qop=qop-auth;cb tls-unique=Y2I=",
		string(decodeResponse(t, event)),
	)
}

func TestPropertyResolverIdle(t *testing.T) {
	p, _ := newPlugin()

	_, ok := p.Property(engine.PropertyAuthID)
	require.False(t, ok)
	_, ok = p.Property(engine.PropertyCount)
	require.False(t, ok)
}

func TestPropertyTableIsComplete(t *testing.T) {
	for property := engine.Property(0); property < engine.PropertyCount; property++ {
		if propertyKey[property] == "" {
			t.Errorf("property %v has no session data key", property)
		}
	}
}
