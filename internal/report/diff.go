package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/mbio16/ln-community-graph/internal/database"
	"github.com/mbio16/ln-community-graph/internal/model"
)

// WriteDiffJSON writes diffs as an indented JSON array.
func WriteDiffJSON(w io.Writer, diffs []*database.GraphDiff) error {
	if diffs == nil {
		diffs = []*database.GraphDiff{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(diffs)
}

// WriteDiffText writes a diff in human-readable form.
func WriteDiffText(w io.Writer, d *database.GraphDiff) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Community Diff: %s\n", d.CommunityID)
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")
	if d.OldName != d.NewName {
		fmt.Fprintf(&sb, "Renamed:   %s -> %s\n", d.OldName, d.NewName)
	}
	fmt.Fprintf(&sb, "Capacity:  %s -> %s (%s)\n",
		formatSats(d.OldCapacity), formatSats(d.NewCapacity), formatDelta(d.CapacityDelta()))

	if d.Empty() {
		sb.WriteString("\nNo changes.\n")
		_, err := io.WriteString(w, sb.String())
		return err
	}

	writeList := func(title, marker string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&sb, "\n%s (%d):\n", title, len(items))
		for _, item := range items {
			fmt.Fprintf(&sb, "  [%s] %s\n", marker, item)
		}
	}

	writeList("Added members", "+", d.AddedMembers)
	writeList("Removed members", "-", d.RemovedMembers)
	writeList("Added channels", "+", channelLines(d.AddedChannels))
	writeList("Removed channels", "-", channelLines(d.RemovedChannels))

	if len(d.ResizedChannels) > 0 {
		fmt.Fprintf(&sb, "\nResized channels (%d):\n", len(d.ResizedChannels))
		for _, c := range d.ResizedChannels {
			fmt.Fprintf(&sb, "  [~] %s %s -> %s\n", c.ShortChannelID, formatSats(c.Old), formatSats(c.New))
		}
	}
	fmt.Fprintf(&sb, "\nUnchanged: %d channels\n", d.UnchangedChannels)

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteDiffMarkdown writes a diff as a Markdown document.
func WriteDiffMarkdown(w io.Writer, d *database.GraphDiff) error {
	md := markdown.NewMarkdown(w)

	md.H1("Community Diff: " + d.NewName)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows: [][]string{
			{"Name", d.OldName, d.NewName, "-"},
			{"Capacity", formatSats(d.OldCapacity), formatSats(d.NewCapacity), formatDelta(d.CapacityDelta())},
			{"Members added", "-", "-", strconv.Itoa(len(d.AddedMembers))},
			{"Members removed", "-", "-", strconv.Itoa(len(d.RemovedMembers))},
			{"Channels added", "-", "-", strconv.Itoa(len(d.AddedChannels))},
			{"Channels removed", "-", "-", strconv.Itoa(len(d.RemovedChannels))},
		},
	})
	md.PlainText("")

	if d.Empty() {
		md.Note("No changes between the two exports.")
		md.PlainText("")
		return md.Build()
	}

	if len(d.AddedMembers) > 0 {
		md.H2f("Added Members (%d)", len(d.AddedMembers))
		md.PlainText("")
		md.BulletList(codeItems(d.AddedMembers)...)
		md.PlainText("")
	}
	if len(d.RemovedMembers) > 0 {
		md.H2f("Removed Members (%d)", len(d.RemovedMembers))
		md.PlainText("")
		md.BulletList(codeItems(d.RemovedMembers)...)
		md.PlainText("")
	}
	if len(d.AddedChannels) > 0 {
		md.H2f("Added Channels (%d)", len(d.AddedChannels))
		md.PlainText("")
		md.BulletList(channelLines(d.AddedChannels)...)
		md.PlainText("")
	}
	if len(d.RemovedChannels) > 0 {
		md.H2f("Removed Channels (%d)", len(d.RemovedChannels))
		md.PlainText("")
		md.BulletList(channelLines(d.RemovedChannels)...)
		md.PlainText("")
	}
	if len(d.ResizedChannels) > 0 {
		rows := make([][]string, len(d.ResizedChannels))
		for i, c := range d.ResizedChannels {
			rows[i] = []string{"`" + c.ShortChannelID + "`", formatSats(c.Old), formatSats(c.New)}
		}
		md.H2f("Resized Channels (%d)", len(d.ResizedChannels))
		md.PlainText("")
		md.Table(markdown.TableSet{Header: []string{"Short Channel ID", "Previous", "Current"}, Rows: rows})
		md.PlainText("")
	}

	return md.Build()
}

func channelLines(channels []model.Channel) []string {
	lines := make([]string, len(channels))
	for i, ch := range channels {
		lines[i] = fmt.Sprintf("%s %s (%s <-> %s)", ch.ShortChannelID, formatSats(ch.Capacity),
			model.ShortPubKey(ch.Node1Pub), model.ShortPubKey(ch.Node2Pub))
	}
	return lines
}

func codeItems(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = "`" + s + "`"
	}
	return out
}

// formatDelta formats a capacity change with an explicit sign.
func formatDelta(delta int64) string {
	if delta > 0 {
		return "+" + formatSats(delta)
	}
	return formatSats(delta)
}
