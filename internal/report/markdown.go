package report

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/mbio16/ln-community-graph/internal/graph"
	"github.com/mbio16/ln-community-graph/internal/model"
)

// maxDiagramEdges bounds the mermaid diagram; larger graphs are listed only.
const maxDiagramEdges = 150

// maxPieSlices bounds the capacity pie chart. Remaining members are
// summed into one "other" slice.
const maxPieSlices = 8

// MarkdownWriter outputs reports in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report.
func (w *MarkdownWriter) Write(report *model.CommunityReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	if report.Community != nil {
		w.writeMembers(md, report)
	}
	if report.Stats != nil && report.Graph != nil {
		w.writeGraph(md, report)
		w.writeCapacity(md, report)
		w.writeChannels(md, report)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CommunityReport) {
	md.H1("Community Report: " + report.DisplayName())
	md.PlainText("")

	rows := [][]string{
		{"Community ID", "`" + report.CommunityID + "`"},
		{"Run ID", "`" + report.RunID + "`"},
		{"Fetched", report.DateFetched.Format("2006-01-02 15:04:05 MST")},
		{"Status", statusText(report)},
	}
	if report.Community != nil {
		rows = append(rows, []string{"Members", strconv.Itoa(report.Community.MemberCount)})
	}
	md.Table(markdown.TableSet{Header: []string{"Property", "Value"}, Rows: rows})
	md.PlainText("")

	switch {
	case report.Cancelled:
		md.Warning("The run was cancelled before all steps completed.")
		md.PlainText("")
	case report.Failed():
		md.Cautionf("The run failed: %s", report.ErrorMessage)
		md.PlainText("")
	case report.Community != nil && report.Community.MemberCount != len(report.Community.Members):
		md.Importantf("The API reported %d members but listed %d.",
			report.Community.MemberCount, len(report.Community.Members))
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeMembers(md *markdown.Markdown, report *model.CommunityReport) {
	md.H2("Members")
	md.PlainText("")

	if len(report.Community.Members) == 0 {
		md.PlainText("The community has no members.")
		md.PlainText("")
		return
	}

	stats := make(map[string]model.NodeStats)
	if report.Stats != nil {
		for _, n := range report.Stats.Nodes {
			stats[n.PubKey] = n
		}
	}

	rows := make([][]string, 0, len(report.Community.Members))
	for i, pk := range report.Community.Members {
		alias, color, total := "-", "-", "-"
		if report.Graph != nil && i < len(report.Graph.NodesInfo) {
			info := report.Graph.NodesInfo[i]
			alias = report.Graph.Alias(pk)
			if info.Color != "" {
				color = "`" + info.Color + "`"
			}
			total = formatSats(info.TotalCapacity)
		}
		n := stats[pk]
		rows = append(rows, []string{
			alias,
			"`" + model.ShortPubKey(pk) + "`",
			color,
			total,
			strconv.Itoa(n.Degree),
			strconv.FormatFloat(n.Betweenness, 'f', 2, 64),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Alias", "Public Key", "Color", "Node Capacity", "Community Channels", "Betweenness"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeGraph(md *markdown.Markdown, report *model.CommunityReport) {
	s := report.Stats
	md.H2("Graph")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Channels", formatInt(s.EdgeCount)},
			{"Capacity", formatSats(s.TotalCapacity)},
			{"Density", strconv.FormatFloat(s.Density, 'f', 3, 64)},
			{"Components", strconv.Itoa(s.Components)},
			{"Isolated members", strconv.Itoa(len(s.IsolatedMembers))},
		},
	})
	md.PlainText("")

	if s.Components > 1 {
		md.Notef("The community graph is split into %d components.", s.Components)
		md.PlainText("")
	}

	if len(report.Graph.Channels) == 0 || len(report.Graph.Channels) > maxDiagramEdges {
		return
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, mermaidGraph(report.Graph))
	md.PlainText("")
}

// mermaidGraph renders members as nodes and channels as undirected links.
// Channels are labeled with their capacity.
func mermaidGraph(g *model.CommunityGraph) string {
	ids := make(map[string]string, len(g.Community.Members))
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	for _, pk := range g.Community.Members {
		if _, ok := ids[pk]; ok {
			continue
		}
		id := "n" + strconv.Itoa(len(ids))
		ids[pk] = id
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", id, mermaidEscape(g.Alias(pk)))
	}
	for _, ch := range g.Channels {
		a, aok := ids[ch.Node1Pub]
		b, bok := ids[ch.Node2Pub]
		if !aok || !bok {
			continue
		}
		fmt.Fprintf(&sb, "    %s ---|\"%s\"| %s\n", a, formatSats(ch.Capacity), b)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func mermaidEscape(s string) string {
	r := strings.NewReplacer(`"`, "#quot;", "\n", " ", "|", "#124;")
	return r.Replace(s)
}

func (w *MarkdownWriter) writeCapacity(md *markdown.Markdown, report *model.CommunityReport) {
	nodes := report.Stats.Nodes
	if report.Stats.TotalCapacity == 0 || len(nodes) == 0 {
		return
	}

	md.H2("Capacity Share")
	md.PlainText("")

	ranked := slices.Clone(nodes)
	slices.SortStableFunc(ranked, func(a, b model.NodeStats) int {
		return cmp.Compare(b.Capacity, a.Capacity)
	})

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("In-community capacity by member"),
		piechart.WithShowData(true),
	)
	var other uint64
	for i, n := range ranked {
		if n.Capacity <= 0 {
			continue
		}
		if i < maxPieSlices {
			chart.LabelAndIntValue(n.Alias, uint64(n.Capacity))
		} else {
			other += uint64(n.Capacity)
		}
	}
	if other > 0 {
		chart.LabelAndIntValue("other", other)
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeChannels(md *markdown.Markdown, report *model.CommunityReport) {
	md.H2("Largest Channels")
	md.PlainText("")

	top := report.Stats.TopChannels
	if len(top) == 0 {
		md.PlainText("No channels between members.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(top))
	for i, ch := range top {
		rows[i] = []string{
			"`" + ch.ShortChannelID + "`",
			formatSats(ch.Capacity),
			report.Graph.Alias(ch.Node1Pub),
			report.Graph.Alias(ch.Node2Pub),
			strconv.FormatInt(ch.BlockAge, 10),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Short Channel ID", "Capacity", "Node 1", "Node 2", "Block Age"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(report.Stats.IsolatedMembers) > 0 {
		names := make([]string, len(report.Stats.IsolatedMembers))
		for i, pk := range report.Stats.IsolatedMembers {
			names[i] = report.Graph.Alias(pk)
		}
		md.Details("Members without community channels", strings.Join(names, ", "))
		md.PlainText("")
	}

	ranked := graph.RankByBetweenness(report.Stats.Nodes)
	if len(ranked) > 0 && ranked[0].Betweenness > 0 {
		md.Tipf("%s connects the most member pairs (betweenness %.2f).", ranked[0].Alias, ranked[0].Betweenness)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by lncgraph*")
}
