package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/chessex/internal/config"
	"github.com/verte-zerg/chessex/internal/metrics"
	"github.com/verte-zerg/chessex/internal/model"
	"github.com/verte-zerg/chessex/internal/msgcat"
	"github.com/verte-zerg/chessex/internal/respcache"
	"github.com/verte-zerg/chessex/internal/server"
	"github.com/verte-zerg/chessex/internal/statsdb"
)

const (
	defaultAddr        = ":5554"
	defaultCacheTTLSec = 300
	shutdownTimeout    = 10 * time.Second
)

var (
	serveAddr        string
	serveDB          string
	serveDBMin50     string
	serveCacheURL    string
	serveCacheTTLSec int
	serveAccessLog   bool
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the statistics API from SQLite databases",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&serveDB, "db", config.DefaultDBPath(), "default statistics database")
	cmd.Flags().StringVar(&serveDBMin50, "db-min50", config.DefaultMin50DBPath(), "min50 statistics database (empty disables)")
	cmd.Flags().StringVar(&serveCacheURL, "cache-url", "", "redis URL for the response cache (empty disables)")
	cmd.Flags().IntVar(&serveCacheTTLSec, "cache-ttl-sec", defaultCacheTTLSec, "response cache TTL in seconds")
	cmd.Flags().BoolVar(&serveAccessLog, "access-log", false, "log every request to stdout")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Serve.Addr)
	applyStringConfig(cmd, "db", &serveDB, fileCfg.Serve.DB)
	applyStringConfig(cmd, "db-min50", &serveDBMin50, fileCfg.Serve.DBMin50)
	applyStringConfig(cmd, "cache-url", &serveCacheURL, fileCfg.Serve.CacheURL)
	applyIntConfig(cmd, "cache-ttl-sec", &serveCacheTTLSec, fileCfg.Serve.CacheTTLSec)

	cfg := model.ServeConfig{
		Addr:      strings.TrimSpace(serveAddr),
		DBPath:    strings.TrimSpace(serveDB),
		Min50Path: strings.TrimSpace(serveDBMin50),
		CacheURL:  strings.TrimSpace(serveCacheURL),
		CacheTTL:  time.Duration(serveCacheTTLSec) * time.Second,
	}
	if err := validateServeConfig(cfg); err != nil {
		return err
	}

	logger, closeLog, err := setupLogger(true)
	if err != nil {
		return err
	}
	defer closeLog()

	msgs, err := msgcat.New(messagesDir)
	if err != nil {
		return fmt.Errorf("failed to load messages: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	primary, err := statsdb.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer closeStore(logger, primary)

	opts := server.Options{
		Primary:   primary,
		Metrics:   metrics.NewCollector(),
		Messages:  msgs,
		Logger:    logger,
		AccessLog: serveAccessLog,
	}
	if cfg.Min50Path != "" {
		min50, err := statsdb.Open(cfg.Min50Path)
		if err != nil {
			logger.Warn("min50 database unavailable, serving from default only", zap.String("path", cfg.Min50Path), zap.Error(err))
		} else {
			defer closeStore(logger, min50)
			opts.Min50 = min50
		}
	}
	if cfg.CacheURL != "" {
		cache, err := respcache.New(ctx, cfg.CacheURL, cfg.CacheTTL)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := cache.Close(); cerr != nil {
				logger.Warn("failed to close cache", zap.Error(cerr))
			}
		}()
		opts.Cache = cache
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(opts).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("statistics server listening",
			zap.String("addr", cfg.Addr),
			zap.String("db", cfg.DBPath),
			zap.Bool("min50", opts.Min50 != nil),
			zap.Bool("cache", opts.Cache != nil),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func closeStore(logger *zap.Logger, st *statsdb.Store) {
	if cerr := st.Close(); cerr != nil {
		logger.Warn("failed to close db", zap.String("path", st.Path()), zap.Error(cerr))
	}
}

func validateServeConfig(cfg model.ServeConfig) error {
	if cfg.Addr == "" {
		return fmt.Errorf("--addr must not be empty")
	}
	if cfg.DBPath == "" {
		return fmt.Errorf("--db must not be empty")
	}
	if cfg.CacheTTL <= 0 {
		return fmt.Errorf("--cache-ttl-sec must be > 0")
	}
	return nil
}
