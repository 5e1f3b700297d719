package saslcmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gfx.cafe/gfx/saslplug/lib/config"
	"gfx.cafe/gfx/saslplug/lib/perror"
	"gfx.cafe/gfx/saslplug/lib/plugin"
	"gfx.cafe/gfx/saslplug/lib/sessiondata"
)

func loginData() sessiondata.SessionData {
	data := sessiondata.New()
	data.SetUsername("megauser")
	data.SetSecret("megapassword")
	return data
}

func TestRelayPlain(t *testing.T) {
	var out bytes.Buffer
	err := relay(plugin.New(), "PLAIN", loginData(), strings.NewReader(""), &out)
	require.NoError(t, err)
	require.Equal(t, "AG1lZ2F1c2VyAG1lZ2FwYXNzd29yZA==\n", out.String())
}

func TestRelayLogin(t *testing.T) {
	var out bytes.Buffer
	err := relay(plugin.New(), "LOGIN", loginData(), strings.NewReader("UGFzc3dvcmQ6\n"), &out)
	require.NoError(t, err)
	require.Equal(t, "bWVnYXVzZXI=\nbWVnYXBhc3N3b3Jk\n", out.String())
}

func TestRelayInputClosed(t *testing.T) {
	p := plugin.New()
	var out bytes.Buffer
	err := relay(p, "LOGIN", loginData(), strings.NewReader(""), &out)
	require.ErrorIs(t, err, ErrInputClosed)
	require.False(t, p.Active())
}

func TestRelayError(t *testing.T) {
	var out bytes.Buffer
	err := relay(plugin.New(), "ANONYMOUS", sessiondata.New(), strings.NewReader(""), &out)
	require.ErrorIs(t, err, perror.NotAuthorized)
	require.Empty(t, out.String())
}

func TestSelftest(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, selftest([]string{"PLAIN", "DIGEST-MD5", "SCRAM-SHA-256-PLUS"}, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "ok (1 rounds)")
	require.Contains(t, lines[1], "ok (2 rounds)")
	require.Contains(t, lines[2], "ok (3 rounds)")
}

func TestSelftestUnknown(t *testing.T) {
	var out bytes.Buffer
	require.ErrorIs(t, selftest([]string{"GSSAPI"}, &out), ErrSelftestFailed)
	require.Contains(t, out.String(), "FAILED")
}

func TestMechanismsCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"mechanisms", "--log-level", "error"})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	}()

	require.NoError(t, rootCmd.Execute())
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Equal(t, "type: sasl", lines[0])
	require.Equal(t, "ANONYMOUS", lines[1])
	require.Contains(t, lines, "SCRAM-SHA-256-PLUS")
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger("loud", false)
	require.Error(t, err)

	log, err := newLogger("debug", true)
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestFlagOverrides(t *testing.T) {
	flags := authCmd.Flags()
	defer func() {
		authFlags.profile = config.Profile{}
	}()

	require.NoError(t, flags.Parse([]string{"-m", "PLAIN", "--username", "megauser"}))
	env := flagOverrides(flags)
	require.Equal(t, "PLAIN", env.Mechanism)
	require.Equal(t, "megauser", env.Username)
	require.Empty(t, env.Secret)
}
