// Package ingest runs extraction records through the normalizer as one
// strictly sequential batch with per-record outcomes.
package ingest

import (
	"context"
	"errors"
	"log/slog"

	"github.com/flowbit/invoice-analytics/internal/entity"
	"github.com/flowbit/invoice-analytics/internal/extract"
	"github.com/flowbit/invoice-analytics/internal/repository"
)

// Status classifies one record's batch outcome.
type Status string

const (
	StatusIngested Status = "ingested"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

// Outcome is the per-record result of a batch run. Position is the record's
// ordinal in the input sequence, starting at 1.
type Outcome struct {
	Position int    `json:"position"`
	Status   Status `json:"status"`
	Reason   string `json:"reason,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Report summarizes one batch run.
type Report struct {
	Outcomes []Outcome `json:"outcomes"`
	Ingested int       `json:"ingested"`
	Skipped  int       `json:"skipped"`
	Failed   int       `json:"failed"`
}

// Runner drives a batch through the normalizer.
type Runner struct {
	normalizer *extract.Normalizer
	stats      repository.StatsRepository
	logger     *slog.Logger
}

func NewRunner(normalizer *extract.Normalizer, stats repository.StatsRepository, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		normalizer: normalizer,
		stats:      stats,
		logger:     logger,
	}
}

// Run ingests the records in input order. A skip or a per-record persistence
// failure never halts the batch; every record gets an outcome.
func (r *Runner) Run(ctx context.Context, records []extract.ExtractionRecord) *Report {
	report := &Report{Outcomes: make([]Outcome, 0, len(records))}

	for i := range records {
		position := i + 1
		_, err := r.normalizer.Ingest(ctx, &records[i])

		var skipped *extract.SkippedError
		switch {
		case err == nil:
			report.Ingested++
			report.Outcomes = append(report.Outcomes, Outcome{
				Position: position,
				Status:   StatusIngested,
			})
		case errors.As(err, &skipped):
			report.Skipped++
			r.logger.Warn("skipping record", "position", position, "reason", string(skipped.Reason))
			report.Outcomes = append(report.Outcomes, Outcome{
				Position: position,
				Status:   StatusSkipped,
				Reason:   string(skipped.Reason),
			})
		default:
			report.Failed++
			r.logger.Error("record ingestion failed", "position", position, "error", err)
			report.Outcomes = append(report.Outcomes, Outcome{
				Position: position,
				Status:   StatusFailed,
				Error:    err.Error(),
			})
		}
	}

	r.logger.Info("batch complete",
		"records", len(records),
		"ingested", report.Ingested,
		"skipped", report.Skipped,
		"failed", report.Failed)
	return report
}

// Summary reads the post-batch row counts. Unlike per-record errors, a
// failure here is fatal to the run.
func (r *Runner) Summary(ctx context.Context) (*entity.TableCounts, error) {
	return r.stats.Counts(ctx)
}
