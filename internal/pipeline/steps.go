package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mbio16/ln-community-graph/internal/fetcher"
	"github.com/mbio16/ln-community-graph/internal/graph"
	"github.com/mbio16/ln-community-graph/internal/metrics"
	"github.com/mbio16/ln-community-graph/internal/model"
)

var (
	// ErrNoCommunity is returned by steps that need the community step's result.
	ErrNoCommunity = errors.New("community has not been fetched")

	// ErrNoGraph is returned by steps that need the member channel step's result.
	ErrNoGraph = errors.New("community graph has not been built")
)

// CommunityStep fetches the community details and member list.
type CommunityStep struct {
	fetcher *fetcher.CommunityFetcher
}

// NewCommunityStep creates a CommunityStep.
func NewCommunityStep(f *fetcher.CommunityFetcher) *CommunityStep {
	return &CommunityStep{fetcher: f}
}

// Name returns the step name.
func (s *CommunityStep) Name() string {
	return "community"
}

// Do fetches the community into report.Community.
func (s *CommunityStep) Do(ctx context.Context, report *model.CommunityReport) error {
	c, err := s.fetcher.Fetch(ctx, report.CommunityID)
	if err != nil {
		return err
	}
	report.Community = c
	return nil
}

// MemberChannelStep fetches every member and builds the community graph.
//
// Design decision: This is a separate step from CommunityStep because it
// is the expensive one (one request per member) and because its filter
// needs the complete member list before the first channel is checked.
type MemberChannelStep struct {
	fetcher *fetcher.MemberChannelFetcher
}

// NewMemberChannelStep creates a MemberChannelStep.
func NewMemberChannelStep(f *fetcher.MemberChannelFetcher) *MemberChannelStep {
	return &MemberChannelStep{fetcher: f}
}

// Name returns the step name.
func (s *MemberChannelStep) Name() string {
	return "member_channels"
}

// Do builds report.Graph from report.Community.
func (s *MemberChannelStep) Do(ctx context.Context, report *model.CommunityReport) error {
	if report.Community == nil {
		return ErrNoCommunity
	}
	g, err := s.fetcher.Fetch(ctx, report.Community)
	if err != nil {
		return err
	}
	report.Graph = g
	return nil
}

// AnalyzeStep computes graph statistics and updates the community gauges.
// It makes no requests, so it never fails once the graph exists.
type AnalyzeStep struct {
	logger *slog.Logger
}

// NewAnalyzeStep creates an AnalyzeStep. A nil logger uses slog.Default().
func NewAnalyzeStep(logger *slog.Logger) *AnalyzeStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeStep{logger: logger}
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return "analyze"
}

// Do sets report.Stats.
func (s *AnalyzeStep) Do(_ context.Context, report *model.CommunityReport) error {
	if report.Graph == nil {
		return ErrNoGraph
	}
	report.Stats = graph.Analyze(report.Graph)
	metrics.SetCommunity(report.CommunityID, report.Stats.NodeCount, report.Stats.EdgeCount, report.Stats.TotalCapacity)

	s.logger.Debug("graph analyzed",
		"community", report.CommunityID,
		"nodes", report.Stats.NodeCount,
		"edges", report.Stats.EdgeCount,
		"components", report.Stats.Components,
	)
	return nil
}

// Exporter persists a finished report.
type Exporter interface {
	Export(ctx context.Context, report *model.CommunityReport) error
}

// ExportStep hands the report to an Exporter.
// It is added last, after AnalyzeStep, so the export stores the stats too.
type ExportStep struct {
	exporter Exporter
}

// NewExportStep creates an ExportStep.
func NewExportStep(e Exporter) *ExportStep {
	return &ExportStep{exporter: e}
}

// Name returns the step name.
func (s *ExportStep) Name() string {
	return "export"
}

// Do exports the report. It requires the graph to be built.
func (s *ExportStep) Do(ctx context.Context, report *model.CommunityReport) error {
	if report.Graph == nil {
		return ErrNoGraph
	}
	return s.exporter.Export(ctx, report)
}
