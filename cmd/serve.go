package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nativeschema/site-api/internal/config"
	"github.com/nativeschema/site-api/internal/db"
	httpSrv "github.com/nativeschema/site-api/internal/http"
	"github.com/nativeschema/site-api/internal/logger"
	"github.com/nativeschema/site-api/internal/mailer"
	"github.com/nativeschema/site-api/internal/service/contact"
	"github.com/nativeschema/site-api/internal/service/inbound"
	"github.com/nativeschema/site-api/internal/turnstile"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		lg := logger.Init(cfg.Log.Level)
		defer func() { _ = lg.Sync() }()

		// redis is optional; without it the contact rate limit is off
		var redisClient *redis.Client
		if cfg.Redis.Addr != "" {
			redisClient, err = db.NewRedisClient(db.RedisOpts{
				Addr:        cfg.Redis.Addr,
				Password:    cfg.Redis.Password,
				DB:          cfg.Redis.DB,
				DialTimeout: cfg.Redis.DialTimeout,
			})
			if err != nil {
				lg.Warn("redis unavailable, contact rate limit disabled", zap.Error(err))
				redisClient = nil
			} else {
				defer func() { _ = redisClient.Close() }()
			}
		}

		mail, err := mailer.FromConfig(context.Background(), cfg.Mail, os.Stdout, lg)
		if err != nil {
			return fmt.Errorf("mail providers: %w", err)
		}

		if cfg.Turnstile.SecretKey == "" {
			lg.Warn("turnstile secret not set, every contact submission will fail verification")
		}
		verifier := turnstile.New(cfg.Turnstile.SecretKey, cfg.Turnstile.VerifyURL, cfg.Turnstile.Timeout)

		contactSvc := contact.New(contact.Config{
			From: cfg.Contact.From,
			To:   cfg.Contact.To,
		}, verifier, mail, lg)

		routes, err := inbound.BuildRoutes(cfg.Inbound.Routes, lg)
		if err != nil {
			return fmt.Errorf("inbound routes: %w", err)
		}
		fallback := inbound.NewDefault(inbound.DefaultConfig{
			ForwardTo:     cfg.Inbound.ForwardTo,
			ForwardFrom:   cfg.Inbound.ForwardFrom,
			ReplyFrom:     cfg.Inbound.ReplyFrom,
			SchedulingURL: cfg.Inbound.SchedulingURL,
			Company:       cfg.Inbound.Company,
			SignerName:    cfg.Inbound.SignerName,
			SignerTitle:   cfg.Inbound.SignerTitle,
			LogoURL:       cfg.Inbound.LogoURL,
			Address:       cfg.Inbound.Address,
		}, mail, lg)
		inboundDisp := inbound.NewDispatcher(routes, fallback, lg)

		server, err := httpSrv.NewServer(cfg, httpSrv.Deps{
			Contact: contactSvc,
			Inbound: inboundDisp,
			Redis:   redisClient,
			Logger:  lg,
		})
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start(cfg.HTTP.Addr)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			lg.Info("signal received, shutting down", zap.String("signal", sig.String()))
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				lg.Error("http server exited", zap.Error(err))
			}
		}

		timeout := cfg.HTTP.ShutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_ = server.Shutdown(ctx)

		return nil
	},
}
