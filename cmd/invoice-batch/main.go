package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/flowbit/invoice-analytics/internal/common"
	"github.com/flowbit/invoice-analytics/internal/export"
	"github.com/flowbit/invoice-analytics/internal/extract"
	"github.com/flowbit/invoice-analytics/internal/ingest"
	repo "github.com/flowbit/invoice-analytics/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		file    = flag.String("file", "", "JSON file with extraction records (required)")
		inmem   = flag.Bool("inmem", false, "use in-memory SQLite database")
		out     = flag.String("out", "", "output XLSX file path (optional)")
		fromStr = flag.String("from", "", "export from date YYYY-MM-DD")
		toStr   = flag.String("to", "", "export to date YYYY-MM-DD")
	)
	flag.Parse()

	if *file == "" {
		printError("Error: --file is required\n")
		os.Exit(1)
	}

	// Parse date filters
	var from, to *time.Time
	if *fromStr != "" {
		if parsed, err := time.Parse("2006-01-02", *fromStr); err != nil {
			printError("Error: invalid --from date format, use YYYY-MM-DD: %v\n", err)
			os.Exit(1)
		} else {
			from = &parsed
		}
	}
	if *toStr != "" {
		if parsed, err := time.Parse("2006-01-02", *toStr); err != nil {
			printError("Error: invalid --to date format, use YYYY-MM-DD: %v\n", err)
			os.Exit(1)
		} else {
			to = &parsed
		}
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}
	cfg := common.LoadConfig()

	// Open database: in-memory SQLite for local runs, Postgres otherwise
	var (
		db   *gorm.DB
		pool *pgxpool.Pool
		err  error
	)
	if *inmem {
		db, err = repo.OpenSQLite("file::memory:?cache=shared", logger)
	} else {
		if cfg.Database.DSN == "" {
			printError("Error: DB_URL is required unless --inmem is set\n")
			os.Exit(1)
		}
		db, pool, err = repo.Open(ctx, repo.Config{
			DSN:              cfg.Database.DSN,
			MaxConns:         cfg.Database.MaxConns,
			MinConns:         cfg.Database.MinConns,
			MaxConnLifetime:  cfg.Database.MaxConnLifetime,
			MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
			DialTimeout:      cfg.Database.DialTimeout,
			StatementTimeout: cfg.Database.StatementTimeout,
		}, logger)
	}
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer repo.Close(db, pool, logger)

	if err := repo.Migrate(db); err != nil {
		logger.Error("failed to migrate schema", "error", err)
		os.Exit(1)
	}

	// Wire repositories and the normalizer
	vendors := repo.NewVendorRepository(db, logger)
	customers := repo.NewCustomerRepository(db, logger)
	invoices := repo.NewInvoiceRepository(db, logger)
	lineItems := repo.NewLineItemRepository(db, logger)
	payments := repo.NewPaymentRepository(db, logger)
	stats := repo.NewStatsRepository(db, logger)

	normalizer := extract.NewNormalizer(vendors, customers, invoices, lineItems, payments, logger)
	runner := ingest.NewRunner(normalizer, stats, logger)

	// Load records; a broken input file is fatal to the run
	records, err := ingest.LoadRecords(*file)
	if err != nil {
		logger.Error("failed to load records", "file", *file, "error", err)
		os.Exit(1)
	}
	logger.Info("starting batch", "file", *file, "records", len(records))

	report := runner.Run(ctx, records)

	// Post-batch summary counts; a failure here is fatal too
	counts, err := runner.Summary(ctx)
	if err != nil {
		logger.Error("failed to compute summary counts", "error", err)
		os.Exit(1)
	}
	logger.Info("summary",
		"vendors", counts.Vendors,
		"customers", counts.Customers,
		"invoices", counts.Invoices,
		"line_items", counts.LineItems,
		"payments", counts.Payments)

	// Optional XLSX export
	if *out != "" {
		exportService := export.NewService(invoices, logger)
		xlsxBytes, err := exportService.ExportInvoicesXLSX(ctx, from, to)
		if err != nil {
			logger.Error("failed to export invoices", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
			logger.Error("failed to write output file", "error", err)
			os.Exit(1)
		}
		logger.Info("exported invoices", "output", *out)
	}

	fmt.Printf("Batch complete!\n")
	fmt.Printf("- Records: %d\n", len(records))
	fmt.Printf("- Ingested: %d\n", report.Ingested)
	fmt.Printf("- Skipped: %d\n", report.Skipped)
	fmt.Printf("- Failed: %d\n", report.Failed)
	fmt.Printf("- Vendors: %d | Customers: %d | Invoices: %d | Line Items: %d | Payments: %d\n",
		counts.Vendors, counts.Customers, counts.Invoices, counts.LineItems, counts.Payments)
}
