package saslcmd

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gfx.cafe/gfx/saslplug/lib/auth/sasl"
	"gfx.cafe/gfx/saslplug/lib/loopback"
	"gfx.cafe/gfx/saslplug/lib/plugin"
	"gfx.cafe/gfx/saslplug/lib/sessiondata"
)

var ErrSelftestFailed = errors.New("selftest failed")

var selftestFlags struct {
	mechanisms []string
}

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Authenticate every mechanism against an in-process server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		mechanisms := selftestFlags.mechanisms
		if len(mechanisms) == 0 {
			mechanisms = sasl.Mechanisms
		}
		return selftest(mechanisms, cmd.OutOrStdout())
	},
}

func init() {
	selftestCmd.Flags().StringSliceVarP(&selftestFlags.mechanisms, "mechanism", "m", nil, "mechanisms to test (default all)")
}

func selftest(mechanisms []string, out io.Writer) error {
	var binding [32]byte
	if _, err := rand.Read(binding[:]); err != nil {
		return err
	}
	creds := sasl.Credentials{
		Username:       "megauser@example.com",
		Password:       "megapassword",
		AnonymousToken: "megauser@example.com",
		Realm:          "example.com",
		Service:        "imap",
		Hostname:       "mail.example.com",
		ChannelBinding: binding[:],
	}

	data := sessiondata.New()
	data.SetUsername(creds.Username)
	data.SetSecret(creds.Password)
	data.SetRealm(creds.Realm)
	data.SetAllowedRealms([]string{creds.Realm})
	data.SetString(sessiondata.KeyAnonymousToken, creds.AnonymousToken)
	data.SetString(sessiondata.KeyService, creds.Service)
	data.SetString(sessiondata.KeyHostname, creds.Hostname)
	data.SetString(sessiondata.KeyCbTlsUnique, base64.StdEncoding.EncodeToString(binding[:]))

	p := plugin.New(plugin.WithLogger(logger))

	var failed bool
	for _, mechanism := range mechanisms {
		srv, err := sasl.NewServer(mechanism, creds)
		if err != nil {
			failed = true
			fmt.Fprintf(out, "%-20s FAILED: %v\n", mechanism, err)
			continue
		}

		result, err := loopback.Run(p, srv, mechanism, data)
		if err != nil {
			failed = true
			p.Cancel()
			logger.Warn("selftest failed", zap.String("mechanism", mechanism), zap.Error(err))
			fmt.Fprintf(out, "%-20s FAILED: %v\n", mechanism, err)
			continue
		}
		fmt.Fprintf(out, "%-20s ok (%d rounds)\n", mechanism, result.Rounds)
	}

	if failed {
		return ErrSelftestFailed
	}
	return nil
}
