package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mbio16/ln-community-graph/internal/config"
	"github.com/mbio16/ln-community-graph/internal/database"
	"github.com/mbio16/ln-community-graph/internal/model"
	"github.com/mbio16/ln-community-graph/internal/pipeline"
	"github.com/mbio16/ln-community-graph/internal/report"
)

// fetchOutput holds the output flags of the fetch command that are not
// part of Config.
type fetchOutput struct {
	printNodes    bool
	printChannels bool
}

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [community-id...]",
		Short: "Fetch a community and report on its channel graph",
		Long: `Fetch looks up a community, queries every member and keeps the channels
whose both endpoints are members.

A community can be given by id or by an alias from the configuration file.
Several communities are processed in one run; --batch controls how many at once.

Examples:
  # Fetch a community and print a summary
  lncgraph fetch 1b2c3d4e-0000-0000-0000-000000000000

  # Query four members at a time and print the channel list
  lncgraph fetch -n 4 --print-channels plebnet

  # Save the channel list to ./data.json and export the graph to SQLite
  lncgraph fetch --save --export-db plebnet.db plebnet

  # Write a Markdown report
  lncgraph fetch -m -o report.md plebnet`,
		Args: cobra.ArbitraryArgs,
		RunE: runFetchCmd,
	}

	addAPIFlags(cmd)

	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of communities processed at once")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Data output flags
	cmd.Flags().Bool("print-nodes", false,
		"Print the node info of every member as JSON")
	cmd.Flags().Bool("print-channels", false,
		"Print the in-community channels as JSON")
	cmd.Flags().BoolP("save", "s", false,
		"Save the in-community channels to the dump file")
	cmd.Flags().String("dump-file", config.DefaultChannelDumpFile,
		"Channel dump path used by --save")
	cmd.Flags().String("export-db", "",
		"Export the graph to this SQLite file (replaced if it exists)")

	return cmd
}

// runFetchCmd executes the fetch command.
func runFetchCmd(cmd *cobra.Command, args []string) error {
	cfg, out, err := buildFetchConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runFetch(ctx, cfg, out, cmd.OutOrStdout(), logger)
}

// buildFetchConfig adds the fetch flags to the shared configuration.
func buildFetchConfig(cmd *cobra.Command, args []string) (*config.Config, fetchOutput, error) {
	var out fetchOutput

	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return nil, out, err
	}

	flags := cmd.Flags()
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, out, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, out, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, out, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, out, err
	}
	if cfg.SaveChannels, err = flags.GetBool("save"); err != nil {
		return nil, out, err
	}
	if cfg.ChannelDumpFile, err = flags.GetString("dump-file"); err != nil {
		return nil, out, err
	}
	if cfg.ExportDB, err = flags.GetString("export-db"); err != nil {
		return nil, out, err
	}
	if out.printNodes, err = flags.GetBool("print-nodes"); err != nil {
		return nil, out, err
	}
	if out.printChannels, err = flags.GetBool("print-channels"); err != nil {
		return nil, out, err
	}

	return cfg, out, nil
}

// runFetch fetches every target and writes the requested outputs.
func runFetch(ctx context.Context, cfg *config.Config, out fetchOutput, stdout io.Writer, logger *slog.Logger) error {
	client, err := newClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	var exporter pipeline.Exporter
	if cfg.ExportDB != "" {
		dbExporter := database.NewExporter(cfg.ExportDB, logger)
		defer func() {
			if err := dbExporter.Close(); err != nil {
				logger.Error("failed to close export", "path", cfg.ExportDB, "error", err)
			}
		}()
		exporter = dbExporter
	}

	logger.Info("starting fetch",
		"targets", cfg.Targets,
		"endpoint", client.Endpoint(),
		"concurrency", cfg.Concurrency,
		"batchSize", cfg.BatchSize,
		"legacyDedup", cfg.LegacyDedup,
	)
	start := time.Now()

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return newPipeline(cfg, client, logger, exporter)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)
	reports, batchErr := bp.ProcessBatch(ctx, cfg.Targets)

	logger.Info("fetch finished", "elapsed", time.Since(start).Round(time.Millisecond))

	if err := outputReports(cfg, reports, stdout); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	multi := len(reports) > 1
	for _, r := range reports {
		if r.Graph == nil {
			continue
		}
		if out.printNodes {
			if err := report.WriteNodesInfo(stdout, r.Graph); err != nil {
				return err
			}
		}
		if out.printChannels {
			if err := report.WriteChannels(stdout, r.Graph); err != nil {
				return err
			}
		}
		if cfg.SaveChannels {
			path := dumpPath(cfg.ChannelDumpFile, r.CommunityID, multi)
			if err := report.SaveChannels(path, r.Graph); err != nil {
				return err
			}
			logger.Info("channels saved", "community", r.CommunityID, "path", path)
		}
	}

	if batchErr != nil {
		return batchErr
	}
	return failures(reports)
}

// outputReports writes the reports in the configured format to the report
// file or stdout.
func outputReports(cfg *config.Config, reports []*model.CommunityReport, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	if cfg.JSONReport {
		w := report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
		if len(reports) == 1 {
			_, err := w.Write(reports[0])
			return err
		}
		_, err := w.WriteBatch(reports)
		return err
	}

	var w report.Writer
	if cfg.MarkdownReport {
		w = report.NewMarkdownWriter(output)
	} else {
		w = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
	_, err := report.WriteAll(w, reports)
	return err
}

// dumpPath returns the channel dump path for a community. With several
// communities the id is added before the extension so dumps do not collide.
// The id comes from the command line, so path separators and dot segments
// are replaced to keep the dump in the directory of path.
func dumpPath(path, communityID string, multi bool) string {
	if !multi {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + safeFileComponent(communityID) + ext
}

// safeFileComponent turns s into a single file name element.
func safeFileComponent(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == filepath.Separator || r == 0 {
			return '_'
		}
		return r
	}, s)
	s = strings.ReplaceAll(s, "..", "_")
	if s == "" || s == "." {
		return "_"
	}
	return s
}

// failures joins the errors of all failed reports. A single failure is
// returned as is.
func failures(reports []*model.CommunityReport) error {
	var errs []error
	for _, r := range reports {
		if r.Error == nil {
			continue
		}
		if len(reports) == 1 {
			return r.Error
		}
		errs = append(errs, fmt.Errorf("community %s: %w", r.CommunityID, r.Error))
	}
	return errors.Join(errs...)
}
