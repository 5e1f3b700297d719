package saslcmd

import (
	"errors"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gfx.cafe/gfx/saslplug/lib/util/beforeexit"
)

var rootCmd = &cobra.Command{
	Use: "saslplug",
	Long: `
	saslplug drives SASL client mechanisms through a uniform
	initiate / continue / cancel session interface.
`,
	Example: `  $ saslplug mechanisms
  $ saslplug auth -m PLAIN --username megauser --secret megapassword
  $ saslplug selftest -m SCRAM-SHA-256
  `,

	// usage is noise when a session fails
	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		logger, err = newLogger(rootFlags.logLevel, rootFlags.dev)
		if err != nil {
			return err
		}
		beforeexit.Run(func() {
			_ = logger.Sync()
		})
		if rootFlags.metricsAddr != "" {
			serveMetrics(rootFlags.metricsAddr)
		}
		return nil
	},
}

var rootFlags struct {
	logLevel    string
	dev         bool
	metricsAddr string
}

var logger = zap.NewNop()

const fullDocsFooter = `Environment: SASL_MECHANISM, SASL_USERNAME, SASL_SECRET, SASL_AUTHZID,
SASL_REALM, SASL_HOSTNAME and SASL_SERVICE override the profile.`

func init() {
	rootCmd.SetHelpTemplate(rootCmd.HelpTemplate() + "\n" + fullDocsFooter + "\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootFlags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.BoolVar(&rootFlags.dev, "dev", false, "human readable development logging")
	flags.StringVar(&rootFlags.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	rootCmd.AddCommand(mechanismsCmd, authCmd, selftestCmd)
}

func newLogger(level string, dev bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var conf zap.Config
	if dev {
		conf = zap.NewDevelopmentConfig()
	} else {
		conf = zap.NewProductionConfig()
	}
	conf.Level = zap.NewAtomicLevelAt(lvl)
	return conf.Build()
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		logger.Info("serving metrics", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", zap.Error(err))
		}
	}()
}

// Main runs the root command and exits with status 1 on error. Funcs
// registered with beforeexit run on either path.
func Main() {
	err := rootCmd.Execute()
	beforeexit.Drain()
	if err != nil {
		os.Exit(1)
	}
}
