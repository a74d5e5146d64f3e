package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mbio16/ln-community-graph/internal/config"
	"github.com/mbio16/ln-community-graph/internal/fetcher"
	"github.com/mbio16/ln-community-graph/internal/graphql"
	"github.com/mbio16/ln-community-graph/internal/log"
	"github.com/mbio16/ln-community-graph/internal/pipeline"
)

// addAPIFlags registers the flags shared by commands that query the API.
func addAPIFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("endpoint", "e", config.DefaultEndpoint,
		"GraphQL API endpoint")
	cmd.Flags().String("host", config.DefaultHost,
		"Host header sent with API requests")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with API requests")
	cmd.Flags().StringToString("header", nil,
		"Extra request header as key=value (repeatable)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each API request (0 means none)")
	cmd.Flags().StringP("proxy", "p", "",
		"Route API traffic through a SOCKS5 proxy (host:port)")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of member lookups in flight at once")
	cmd.Flags().Bool("legacy-dedup", false,
		"Use the legacy channel filter, which can list a channel twice")
	cmd.Flags().Int64("highlight-capacity", config.DefaultHighlightCapacity,
		"Capacity in sats at or above which a channel is highlighted")
}

// getBoolFlag reads a bool flag from the command or the root's persistent flags.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// getStringFlag reads a string flag from the command or the root's persistent flags.
func getStringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetString(name)
		if err != nil {
			return ""
		}
	}
	return v
}

// buildConfig creates a Config from defaults, the configuration file and
// the API flags, in increasing order of precedence. Only flags set on the
// command line override the file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getBoolFlag(cmd, "verbose")
	cfg.LogJSON = getBoolFlag(cmd, "log-json")
	cfg.ConfigFilePath = getStringFlag(cmd, "config")

	if _, err := config.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	var err error
	if flags.Changed("endpoint") {
		if cfg.Endpoint, err = flags.GetString("endpoint"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("host") {
		if cfg.Host, err = flags.GetString("host"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("header") {
		headers, err := flags.GetStringToString("header")
		if err != nil {
			return nil, err
		}
		for k, v := range headers {
			cfg.Headers[k] = v
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("legacy-dedup") {
		if cfg.LegacyDedup, err = flags.GetBool("legacy-dedup"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("highlight-capacity") {
		if cfg.HighlightCapacity, err = flags.GetInt64("highlight-capacity"); err != nil {
			return nil, err
		}
	}

	cfg.Targets = make([]string, 0, len(args))
	for _, arg := range args {
		cfg.Targets = append(cfg.Targets, cfg.File.ResolveCommunity(arg))
	}

	return cfg, nil
}

// setupLogger creates the secure logger for cfg and installs it as default.
func setupLogger(cfg *config.Config) *slog.Logger {
	logger := log.New(os.Stderr, log.Options{Verbose: cfg.Verbose, JSON: cfg.LogJSON})
	slog.SetDefault(logger)
	return logger
}

// newClient creates the GraphQL client for cfg.
func newClient(cfg *config.Config, logger *slog.Logger) (*graphql.Client, error) {
	httpClient, err := graphql.NewHTTPClient(cfg.Timeout, cfg.ProxyAddress)
	if err != nil {
		return nil, err
	}
	return graphql.NewClient(cfg.Endpoint, httpClient,
		graphql.WithHost(cfg.Host),
		graphql.WithUserAgent(cfg.UserAgent),
		graphql.WithHeaders(cfg.Headers),
		graphql.WithMaxBodySize(cfg.MaxBodySize),
		graphql.WithLogger(logger),
	), nil
}

// newPipeline creates the fetch pipeline. A nil exporter skips the export step.
func newPipeline(cfg *config.Config, client *graphql.Client, logger *slog.Logger, exporter pipeline.Exporter) *pipeline.Pipeline {
	mode := fetcher.DedupStrict
	if cfg.LegacyDedup {
		mode = fetcher.DedupLegacy
	}
	fetchOpts := []fetcher.Option{
		fetcher.WithLogger(logger),
		fetcher.WithConcurrency(cfg.Concurrency),
		fetcher.WithDedupMode(mode),
	}

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		pipeline.NewCommunityStep(fetcher.NewCommunityFetcher(client, fetchOpts...)),
		pipeline.NewMemberChannelStep(fetcher.NewMemberChannelFetcher(client, fetchOpts...)),
		pipeline.NewAnalyzeStep(logger),
	)
	if exporter != nil {
		p.AddSteps(pipeline.NewExportStep(exporter))
	}
	return p
}
