package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mbio16/ln-community-graph/internal/model"
)

// BatchProcessor runs one pipeline per community id.
// A failed community does not stop the others; its error is on its report.
//
// Design decision: Batching lives outside Pipeline so a Pipeline only ever
// deals with one community, and member concurrency (fetcher.WithConcurrency)
// stays independent of how many communities run at once.
type BatchProcessor struct {
	// pipelineFactory creates a fresh pipeline per community.
	pipelineFactory func() *Pipeline
	concurrency     int
	logger          *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets how many communities are processed at once.
// The default is 1.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     1,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch runs the pipeline for each community id and returns the
// reports in input order. Reports of communities that were never started
// because ctx was cancelled are marked cancelled. The returned error is
// the context error, if any.
//
// Design decision: The goroutines never return an error to the errgroup.
// A plain errgroup.Group does not cancel on error, but Wait would still
// report only the first failure and hide the rest. Each report carries
// its own error instead, so the caller sees every community's outcome.
// Reports are pre-allocated by index so order does not depend on which
// community finishes first.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, communityIDs []string) ([]*model.CommunityReport, error) {
	bp.logger.Info("starting batch",
		"communities", len(communityIDs),
		"concurrency", bp.concurrency,
	)
	start := time.Now()

	reports := make([]*model.CommunityReport, len(communityIDs))
	for i, id := range communityIDs {
		reports[i] = model.NewCommunityReport(id)
	}

	g := new(errgroup.Group)
	g.SetLimit(bp.concurrency)

	for i := range communityIDs {
		report := reports[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				report.Cancelled = true
				report.Error = err
				report.ErrorMessage = err.Error()
				return nil
			}

			bp.logger.Info("processing community",
				"community", report.CommunityID,
				"index", i+1,
				"total", len(communityIDs),
			)
			if err := bp.pipelineFactory().Execute(ctx, report); err != nil {
				bp.logger.Warn("community failed", "community", report.CommunityID, "error", err)
				return nil
			}
			bp.logger.Info("community completed", "community", report.CommunityID)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // goroutines record errors on their report

	bp.logger.Info("batch complete",
		"communities", len(communityIDs),
		"elapsed", time.Since(start),
	)
	return reports, ctx.Err()
}
