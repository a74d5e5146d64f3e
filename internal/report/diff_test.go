package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mbio16/ln-community-graph/internal/database"
	"github.com/mbio16/ln-community-graph/internal/model"
)

func testDiff() *database.GraphDiff {
	return &database.GraphDiff{
		CommunityID:     "c1",
		OldName:         "Plebs",
		NewName:         "Plebs",
		AddedMembers:    []string{"D"},
		RemovedChannels: []model.Channel{{ShortChannelID: "y", Capacity: 200, Node1Pub: "B", Node2Pub: "C"}},
		ResizedChannels: []database.CapacityChange{{ShortChannelID: "z", Old: 300, New: 350}},
		OldCapacity:     600,
		NewCapacity:     1_460,
	}
}

// TestWriteDiff tests the diff renderers.
func TestWriteDiff(t *testing.T) {
	t.Parallel()

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := WriteDiffText(&buf, testDiff()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()
		for _, want := range []string{
			"Community Diff: c1",
			"Capacity:  600 sats -> 1,460 sats (+860 sats)",
			"[+] D",
			"[-] y 200 sats (B <-> C)",
			"[~] z 300 sats -> 350 sats",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("text without changes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		d := &database.GraphDiff{CommunityID: "c1", OldName: "a", NewName: "b"}
		if err := WriteDiffText(&buf, d); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No changes.") || !strings.Contains(buf.String(), "Renamed:   a -> b") {
			t.Errorf("unexpected output:\n%s", buf.String())
		}
	})

	t.Run("markdown", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := WriteDiffMarkdown(&buf, testDiff()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()
		for _, want := range []string{"# Community Diff: Plebs", "## Added Members (1)", "`D`", "## Resized Channels (1)"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := WriteDiffJSON(&buf, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(buf.String()) != "[]" {
			t.Errorf("expected [], got %q", buf.String())
		}

		buf.Reset()
		if err := WriteDiffJSON(&buf, []*database.GraphDiff{testDiff()}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var decoded []database.GraphDiff
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded) != 1 || decoded[0].ResizedChannels[0].New != 350 {
			t.Errorf("unexpected decoded diff %+v", decoded)
		}
	})
}
