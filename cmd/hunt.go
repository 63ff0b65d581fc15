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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/soclens/profile-scout/internal/acquire"
	"github.com/soclens/profile-scout/internal/api"
	"github.com/soclens/profile-scout/internal/config"
	"github.com/soclens/profile-scout/internal/crawl"
	"github.com/soclens/profile-scout/internal/egress"
	"github.com/soclens/profile-scout/internal/export"
	"github.com/soclens/profile-scout/internal/logging"
	"github.com/soclens/profile-scout/internal/metrics"
	"github.com/soclens/profile-scout/internal/notify"
	"github.com/soclens/profile-scout/internal/pacing"
	"github.com/soclens/profile-scout/internal/qualify"
	"github.com/soclens/profile-scout/internal/scout"
	"github.com/soclens/profile-scout/internal/session"
	"github.com/soclens/profile-scout/internal/textsig"
)

const signalsCacheSize = 4096

func newHuntCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hunt",
		Short: "Starts a qualification crawl",
		Long: `Logs in with the configured account, discovers seed profiles for each
configured topic, and expands through follower lists up to the configured
depth, exporting every qualified profile to CSV.`,
		RunE: runHunt,
	}
}

func runHunt(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := buildPool(cfg, logging.For(logger, "egress"))
	if err != nil {
		return err
	}

	store, err := session.Open(cfg.Output.SessionFile, scout.SystemClock{}, logging.For(logger, "session"))
	if err != nil {
		return err
	}

	signals, err := textsig.New(signalsCacheSize)
	if err != nil {
		return fmt.Errorf("init signal extractor: %w", err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	if cfg.API.Enabled {
		startAPI(cfg, store, registry, logging.For(logger, "api"))
	}

	minDelay, maxDelay := cfg.DelayWindow()
	pacer := pacing.New(minDelay, maxDelay, cfg.Scraping.GestureChance)

	client, err := acquire.New(acquire.Options{
		BaseURL:           cfg.Scraping.BaseURL,
		UserAgent:         cfg.Scraping.UserAgent,
		NavTimeout:        cfg.NavTimeout(),
		MaxRetries:        cfg.Scraping.MaxRetries,
		EngagementSamples: cfg.Scraping.EngagementSamples,
	}, pool, pacer, logging.For(logger, "acquire"))
	if err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	defer client.Release()

	if err := client.Authenticate(ctx, scout.Credentials{
		Username: cfg.Credentials.Username,
		Password: cfg.Credentials.Password,
	}); err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}

	orch := crawl.New(
		client,
		qualify.New(signals, logging.For(logger, "qualify")),
		signals,
		store,
		buildNotifier(cfg, logger),
		m,
		scout.SystemClock{},
		logging.For(logger, "crawl"),
		crawl.Options{
			Criteria:       cfg.Criteria,
			SeedsPerTopic:  cfg.Scraping.SeedsPerTopic,
			FollowerFanOut: cfg.Scraping.FollowerFanOut,
		},
	)

	summary, runErr := orch.Run(ctx)
	logger.Info("crawl finished",
		zap.Int("examined", summary.Examined),
		zap.Int("accepted", summary.Accepted),
		zap.Int("errors", summary.Errors),
		zap.Duration("elapsed", summary.Elapsed),
	)

	if exportErr := exportResults(cfg, store, logger); exportErr != nil && runErr == nil {
		runErr = exportErr
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("run crawl: %w", runErr)
	}
	return nil
}

func buildPool(cfg config.Config, logger *zap.Logger) (*egress.Pool, error) {
	if !cfg.Proxies.Enabled {
		return nil, nil
	}
	pool, err := egress.LoadPool(cfg.Proxies.ListFile, logger)
	if err != nil {
		return nil, fmt.Errorf("load proxy list: %w", err)
	}
	if cfg.Proxies.CheckOnStartup {
		checker := egress.NewChecker(cfg.Proxies.CanaryURL, 10*time.Second, logger)
		usable := checker.Validate(pool)
		logger.Info("proxy pool checked", zap.Int("usable", usable))
		if usable == 0 {
			return nil, fmt.Errorf("no usable proxies in %s", cfg.Proxies.ListFile)
		}
	}
	return pool, nil
}

func buildNotifier(cfg config.Config, logger *zap.Logger) scout.Notifier {
	if !cfg.Notifications.Enabled {
		return notify.Nop{}
	}
	return notify.NewMailer(notify.Options{
		Host:      cfg.Notifications.SMTPHost,
		Port:      cfg.Notifications.SMTPPort,
		Username:  cfg.Notifications.Username,
		Password:  cfg.Notifications.Password,
		Recipient: cfg.Notifications.Recipient,
		Threshold: cfg.Notifications.Threshold,
	}, logging.For(logger, "notify"))
}

func startAPI(cfg config.Config, store *session.Store, registry *prometheus.Registry, logger *zap.Logger) {
	srv := api.NewServer(store, registry, logger)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		logger.Info("progress api listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
			logger.Warn("progress api stopped", zap.Error(err))
		}
	}()
}

func exportResults(cfg config.Config, store *session.Store, logger *zap.Logger) error {
	accepted := store.Accepted()
	if len(accepted) == 0 {
		logger.Info("no accepted profiles to export")
		return nil
	}
	writer, err := export.NewCSVWriter(cfg.Output.CSVFile)
	if err != nil {
		return fmt.Errorf("open csv output: %w", err)
	}
	defer writer.Close()

	if err := writer.Export(accepted); err != nil {
		return fmt.Errorf("export results: %w", err)
	}
	logger.Info("results exported",
		zap.String("file", cfg.Output.CSVFile),
		zap.Int("profiles", len(accepted)),
	)
	return nil
}
