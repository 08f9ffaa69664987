package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/toolshub/internal/config"
	"github.com/jmylchreest/toolshub/internal/mail"
	"github.com/jmylchreest/toolshub/internal/server"
	"github.com/jmylchreest/toolshub/internal/storage"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Long: `Serve the tools site, its contact form and sitemap.

Settings come from the config file, TOOLSHUB_* environment variables
(e.g. TOOLSHUB_SERVER_ADDR, TOOLSHUB_SMTP_HOST) and the flags below, with
flags taking precedence. Contact messages are logged unless an SMTP host
is configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, root)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", ":8080", "listen address")
	flags.String("static-dir", "public", "directory of static site files")
	flags.String("base-url", "https://officetoolshub.com", "public base URL used in the sitemap")
	flags.Bool("debug", false, "run gin in debug mode")

	return cmd
}

func serveFlagBindings(flags *pflag.FlagSet) map[string]*pflag.Flag {
	return map[string]*pflag.Flag{
		config.KeyServerAddr:      flags.Lookup("addr"),
		config.KeyServerStaticDir: flags.Lookup("static-dir"),
		config.KeyServerBaseURL:   flags.Lookup("base-url"),
		config.KeyServerDebug:     flags.Lookup("debug"),
	}
}

func runServe(cmd *cobra.Command, root *rootOptions) error {
	logger := root.log()

	cfg, err := config.Load(config.Options{
		File:  root.configFile,
		Flags: serveFlagBindings(cmd.Flags()),
	})
	if err != nil {
		return err
	}
	if src := cfg.Source(); src != "" {
		logger.Debug("loaded config", "path", src)
	}

	relay, err := newRelay(cfg, root)
	if err != nil {
		return err
	}

	srvCfg := cfg.Server()
	contact := cfg.Contact()
	srv := server.New(server.Options{
		Addr:                 srvCfg.Addr,
		StaticDir:            srvCfg.StaticDir,
		BaseURL:              srvCfg.BaseURL,
		Debug:                srvCfg.Debug,
		ShutdownTimeout:      srvCfg.ShutdownTimeout,
		ContactRatePerMinute: contact.RatePerMinute,
		ContactBurst:         contact.Burst,
		MaxMessageLength:     contact.MaxMessageLength,
	}, storage.NewMemStorage(), relay, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}

// newRelay picks SMTP delivery when a host is configured and logging otherwise.
func newRelay(cfg *config.Config, root *rootOptions) (mail.Relay, error) {
	smtp := cfg.SMTP()
	if smtp.Host == "" {
		root.log().Warn("no SMTP host configured; contact messages will only be logged")
		return mail.NewLogRelay(root.log()), nil
	}

	relay, err := mail.NewSMTPRelay(mail.SMTPConfig{
		Host:     smtp.Host,
		Port:     smtp.Port,
		Username: smtp.Username,
		Password: smtp.Password,
		From:     smtp.From,
		To:       cfg.Contact().To,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP configuration: %w", err)
	}
	return relay, nil
}
