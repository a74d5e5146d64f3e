package database

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mbio16/ln-community-graph/internal/model"
)

// Exporter writes reports to one export file. The file is replaced on the
// first export, so a run never mixes with an earlier one.
// It is safe for concurrent use.
type Exporter struct {
	path   string
	logger *slog.Logger

	mu sync.Mutex
	db *GraphDB
}

// NewExporter creates an Exporter for path. Nothing is written until the
// first call to Export.
func NewExporter(path string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{path: path, logger: logger}
}

// Export stores the report's graph.
func (e *Exporter) Export(ctx context.Context, report *model.CommunityReport) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db == nil {
		db, err := Open(e.path, Options{CreateIfNotExists: true, Truncate: true})
		if err != nil {
			return fmt.Errorf("failed to open export %s: %w", e.path, err)
		}
		e.db = db
	}

	if err := e.db.SaveReport(ctx, report); err != nil {
		return err
	}
	e.logger.Debug("community exported",
		"community", report.CommunityID,
		"path", e.path,
		"channels", len(report.Graph.Channels),
	)
	return nil
}

// Close closes the export file if it was opened.
func (e *Exporter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	return err
}
