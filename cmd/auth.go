package saslcmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"gfx.cafe/gfx/saslplug/lib/config"
	"gfx.cafe/gfx/saslplug/lib/plugin"
	"gfx.cafe/gfx/saslplug/lib/sessiondata"
)

var (
	ErrNoMechanism = errors.New("no mechanism given")
	ErrInputClosed = errors.New("input closed before the exchange completed")
)

var authFlags struct {
	config    string
	dump      bool
	challenge string

	profile config.Profile
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Run a client session, relaying challenges over stdin and responses over stdout",
	Long: `
	auth prints every ResponseBase64 on its own line. While the exchange needs
	more, it reads the next ChallengeBase64 line from stdin.
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		profile, err := config.Load(authFlags.config)
		if err != nil {
			return err
		}
		profile.Override(config.LoadEnv())
		profile.Override(flagOverrides(cmd.Flags()))

		if authFlags.dump {
			profile.Dump(cmd.ErrOrStderr())
		}
		if profile.Mechanism == "" {
			return ErrNoMechanism
		}

		data := profile.SessionData()
		if authFlags.challenge != "" {
			data.SetString(sessiondata.KeyChallengeBase64, authFlags.challenge)
		}

		p := plugin.New(plugin.WithLogger(logger))
		return relay(p, profile.Mechanism, data, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	flags := authCmd.Flags()
	flags.StringVarP(&authFlags.config, "config", "c", "", "profile file (yaml or toml)")
	flags.BoolVar(&authFlags.dump, "dump", false, "print the resolved profile to stderr")
	flags.StringVar(&authFlags.challenge, "challenge", "", "initial ChallengeBase64 for server-first mechanisms")

	flags.StringVarP(&authFlags.profile.Mechanism, "mechanism", "m", "", "mechanism")
	flags.StringVar(&authFlags.profile.Username, "username", "", "authentication identity")
	flags.StringVar(&authFlags.profile.Secret, "secret", "", "password")
	flags.StringVar(&authFlags.profile.Authzid, "authzid", "", "authorization identity")
	flags.StringVar(&authFlags.profile.Realm, "realm", "", "realm")
	flags.StringVar(&authFlags.profile.Service, "service", "", "service name")
	flags.StringVar(&authFlags.profile.Hostname, "hostname", "", "server hostname")
}

// flagOverrides returns the profile flags the user set explicitly.
func flagOverrides(flags *pflag.FlagSet) config.Env {
	var env config.Env
	for _, f := range []struct {
		name string
		dst  *string
		src  string
	}{
		{"mechanism", &env.Mechanism, authFlags.profile.Mechanism},
		{"username", &env.Username, authFlags.profile.Username},
		{"secret", &env.Secret, authFlags.profile.Secret},
		{"authzid", &env.Authzid, authFlags.profile.Authzid},
		{"realm", &env.Realm, authFlags.profile.Realm},
		{"service", &env.Service, authFlags.profile.Service},
		{"hostname", &env.Hostname, authFlags.profile.Hostname},
	} {
		if flags.Changed(f.name) {
			*f.dst = f.src
		}
	}
	return env
}

// relay runs one session, printing responses to out and reading challenges
// from in.
func relay(p *plugin.Plugin, mechanism string, data sessiondata.SessionData, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)

	event := p.Initiate(mechanism, data)
	for {
		switch event.Kind {
		case plugin.KindResponse, plugin.KindResponseFinal:
			response, _ := event.ResponseBase64()
			fmt.Fprintln(out, response)
			if event.Kind == plugin.KindResponseFinal {
				logger.Info("exchange complete", zap.String("mechanism", mechanism))
				return nil
			}

			if !scanner.Scan() {
				p.Cancel()
				if err := scanner.Err(); err != nil {
					return err
				}
				return ErrInputClosed
			}
			next := sessiondata.New()
			next.SetString(sessiondata.KeyChallengeBase64, strings.TrimSpace(scanner.Text()))
			event = p.Continue(next)
		default:
			return event.Err
		}
	}
}
