package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mbio16/ln-community-graph/internal/graph"
	"github.com/mbio16/ln-community-graph/internal/model"
)

// SimpleWriter outputs plain text for the terminal.
type SimpleWriter struct {
	baseWriter

	// verbose adds per-member statistics and the performed steps.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables per-member detail.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report.
func (w *SimpleWriter) Write(report *model.CommunityReport) (int, error) {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Community: %s\n", report.CommunityID)
	fmt.Fprintf(&sb, "Fetched:   %s\n", report.DateFetched.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "Status:    %s\n", statusText(report))
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	if report.Community != nil {
		sb.WriteString(Summary(report.Community))
		sb.WriteString("\n")
	}
	if report.Stats != nil {
		w.writeStats(&sb, report)
	}
	if w.verbose && len(report.PerformedSteps) > 0 {
		titles := make([]string, len(report.PerformedSteps))
		for i, s := range report.PerformedSteps {
			titles[i] = stepTitle(s)
		}
		fmt.Fprintf(&sb, "\nSteps: %s\n", strings.Join(titles, " > "))
	}
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

// Summary returns the community summary: name, member count and members.
func Summary(c *model.Community) string {
	return fmt.Sprintf("name: %s\nnum_members: %d\nnodes: [%s]",
		c.Name, c.MemberCount, strings.Join(c.Members, ", "))
}

func (w *SimpleWriter) writeStats(sb *strings.Builder, report *model.CommunityReport) {
	s := report.Stats

	sb.WriteString("\nGraph\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "Members:        %s\n", formatInt(s.NodeCount))
	fmt.Fprintf(sb, "Channels:       %s\n", formatInt(s.EdgeCount))
	fmt.Fprintf(sb, "Capacity:       %s\n", formatSats(s.TotalCapacity))
	fmt.Fprintf(sb, "Density:        %.3f\n", s.Density)
	fmt.Fprintf(sb, "Components:     %d\n", s.Components)
	if len(s.IsolatedMembers) > 0 {
		fmt.Fprintf(sb, "Isolated:       %d\n", len(s.IsolatedMembers))
	}

	if len(s.TopChannels) > 0 {
		sb.WriteString("\nLargest channels\n")
		for _, ch := range s.TopChannels {
			fmt.Fprintf(sb, "  %-20s %18s  %s <-> %s\n",
				ch.ShortChannelID, formatSats(ch.Capacity),
				aliasOf(report, ch.Node1Pub), aliasOf(report, ch.Node2Pub))
		}
	}

	if !w.verbose {
		return
	}
	sb.WriteString("\nMembers by betweenness\n")
	for _, n := range graph.RankByBetweenness(s.Nodes) {
		fmt.Fprintf(sb, "  %-32s degree=%-4d capacity=%-18s betweenness=%.2f\n",
			n.Alias, n.Degree, formatSats(n.Capacity), n.Betweenness)
	}
}

func aliasOf(report *model.CommunityReport, pubkey string) string {
	if report.Graph == nil {
		return model.ShortPubKey(pubkey)
	}
	return report.Graph.Alias(pubkey)
}
