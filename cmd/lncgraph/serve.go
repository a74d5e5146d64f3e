package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mbio16/ln-community-graph/internal/config"
	"github.com/mbio16/ln-community-graph/internal/database"
	"github.com/mbio16/ln-community-graph/internal/graph"
	"github.com/mbio16/ln-community-graph/internal/model"
	"github.com/mbio16/ln-community-graph/internal/report"
	"github.com/mbio16/ln-community-graph/internal/web"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [community-id]",
		Short: "Draw a community graph in the browser",
		Long: `Serve fetches a community and serves an interactive page that draws its
members as nodes and the channels between them as edges. Channels at or above
--highlight-capacity are drawn in red.

With --from-db the graph is read from an earlier export instead of the API.
Prometheus metrics are served at /metrics.

Examples:
  # Fetch and serve a community on http://127.0.0.1:8050
  lncgraph serve plebnet

  # Serve on all interfaces with a 1M sats highlight threshold
  lncgraph serve -l :8050 --highlight-capacity 1000000 plebnet

  # Serve a community from an export without querying the API
  lncgraph serve --from-db plebnet.db`,
		Args: cobra.MaximumNArgs(1),
		RunE: runServeCmd,
	}

	addAPIFlags(cmd)

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddress,
		"Address to serve the graph page on")
	cmd.Flags().String("from-db", "",
		"Read the community from this SQLite export instead of the API")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if cfg.ListenAddress, err = cmd.Flags().GetString("listen"); err != nil {
		return err
	}
	fromDB, err := cmd.Flags().GetString("from-db")
	if err != nil {
		return err
	}

	logger := setupLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var r *model.CommunityReport
	if fromDB != "" {
		r, err = loadReport(ctx, fromDB, cfg.Targets)
	} else {
		r, err = fetchReport(ctx, cfg, logger)
	}
	if err != nil {
		return err
	}

	return serveReport(ctx, cfg, r, cmd.OutOrStdout(), logger)
}

// fetchReport runs the fetch pipeline for the single target of cfg.
func fetchReport(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*model.CommunityReport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	client, err := newClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	r := model.NewCommunityReport(cfg.Targets[0])
	if err := newPipeline(cfg, client, logger, nil).Execute(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// loadReport rebuilds a report from an export. The community may be
// omitted when the export holds exactly one.
func loadReport(ctx context.Context, path string, targets []string) (*model.CommunityReport, error) {
	db, err := database.Open(path, database.Options{})
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var id string
	if len(targets) > 0 {
		id = targets[0]
	} else {
		ids, err := db.ListCommunities(ctx)
		if err != nil {
			return nil, err
		}
		switch len(ids) {
		case 0:
			return nil, fmt.Errorf("export %s holds no communities", path)
		case 1:
			id = ids[0]
		default:
			return nil, fmt.Errorf("export %s holds %d communities; specify one of %v", path, len(ids), ids)
		}
	}

	snap, err := db.LoadSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("community %s not found in %s", id, path)
	}

	r := model.NewCommunityReport(id)
	r.RunID = snap.RunID
	r.DateFetched = snap.DateFetched
	r.Community = &snap.Graph.Community
	r.Graph = snap.Graph
	r.Stats = graph.Analyze(snap.Graph)
	return r, nil
}

// serveReport prints the community summary and serves the graph page
// until ctx is done.
func serveReport(ctx context.Context, cfg *config.Config, r *model.CommunityReport, stdout io.Writer, logger *slog.Logger) error {
	srv, err := web.NewServer(r,
		web.WithAddress(cfg.ListenAddress),
		web.WithHighlightCapacity(cfg.HighlightCapacity),
		web.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, report.Summary(r.Community))
	fmt.Fprintf(stdout, "\nServing graph on http://%s (press Ctrl+C to stop)\n", cfg.ListenAddress)

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
