package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/flowbit/invoice-analytics/internal/common"
	"github.com/flowbit/invoice-analytics/internal/export"
	"github.com/flowbit/invoice-analytics/internal/nlsql"
	repo "github.com/flowbit/invoice-analytics/internal/repository"
	"github.com/flowbit/invoice-analytics/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, pool, err := repo.Open(ctx, repo.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer repo.Close(db, pool, logger)

	if err := repo.Migrate(db); err != nil {
		logger.Error("failed to migrate schema", "error", err)
		os.Exit(1)
	}

	invoices := repo.NewInvoiceRepository(db, logger)
	stats := repo.NewStatsRepository(db, logger)
	exporter := export.NewService(invoices, logger)
	chat := nlsql.NewClient(nlsql.Config{
		BaseURL: cfg.NLSQL.BaseURL,
		Timeout: cfg.NLSQL.Timeout,
	}, logger)

	srv := server.NewServer(invoices, stats, exporter, chat, cfg.Server.DefaultPageSize, logger)

	logger.Info("starting HTTP server", "addr", cfg.Server.HTTPAddr)
	if err := srv.Router().Run(cfg.Server.HTTPAddr); err != nil {
		logger.Error("http server exited", "error", err)
		os.Exit(1)
	}
}
