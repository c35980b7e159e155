package mail

import (
	"context"
	"fmt"
	"os"

	"github.com/nativeschema/site-api/internal/config"
	"github.com/nativeschema/site-api/internal/logger"
	"github.com/nativeschema/site-api/internal/mailer"
	"github.com/nativeschema/site-api/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// NewMailCmd returns the parent "mail" command.
func NewMailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mail",
		Short: "Inspect and test outbound mail providers",
	}
	// attach subcommands
	cmd.AddCommand(providersCmd)
	cmd.AddCommand(newSendTestCmd())

	return cmd
}

func loadDispatcher(cmd *cobra.Command) (config.Config, *mailer.Dispatcher, error) {
	cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	lg := logger.Init(cfg.Log.Level)
	metrics.MustRegister(prometheus.DefaultRegisterer)

	d, err := mailer.FromConfig(context.Background(), cfg.Mail, os.Stdout, lg)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("mail providers: %w", err)
	}
	return cfg, d, nil
}
