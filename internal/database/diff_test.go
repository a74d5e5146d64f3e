package database

import (
	"testing"

	"github.com/mbio16/ln-community-graph/internal/model"
)

// TestDiff tests comparing two snapshots.
func TestDiff(t *testing.T) {
	t.Parallel()

	previous := testReport("c1", []string{"A", "B", "C"},
		model.Channel{ShortChannelID: "x", Node1Pub: "A", Node2Pub: "B", Capacity: 100},
		model.Channel{ShortChannelID: "y", Node1Pub: "B", Node2Pub: "C", Capacity: 200},
		model.Channel{ShortChannelID: "z", Node1Pub: "A", Node2Pub: "C", Capacity: 300},
	).Graph
	current := testReport("c1", []string{"A", "B", "D"},
		model.Channel{ShortChannelID: "x", Node1Pub: "A", Node2Pub: "B", Capacity: 100},
		model.Channel{ShortChannelID: "z", Node1Pub: "A", Node2Pub: "C", Capacity: 350},
		model.Channel{ShortChannelID: "w", Node1Pub: "A", Node2Pub: "D", Capacity: 10},
	).Graph

	d := Diff(previous, current)

	if d.Empty() {
		t.Fatal("expected differences")
	}
	if len(d.AddedMembers) != 1 || d.AddedMembers[0] != "D" {
		t.Errorf("unexpected added members %v", d.AddedMembers)
	}
	if len(d.RemovedMembers) != 1 || d.RemovedMembers[0] != "C" {
		t.Errorf("unexpected removed members %v", d.RemovedMembers)
	}
	if len(d.AddedChannels) != 1 || d.AddedChannels[0].ShortChannelID != "w" {
		t.Errorf("unexpected added channels %+v", d.AddedChannels)
	}
	if len(d.RemovedChannels) != 1 || d.RemovedChannels[0].ShortChannelID != "y" {
		t.Errorf("unexpected removed channels %+v", d.RemovedChannels)
	}
	if len(d.ResizedChannels) != 1 || d.ResizedChannels[0] != (CapacityChange{ShortChannelID: "z", Old: 300, New: 350}) {
		t.Errorf("unexpected resized channels %+v", d.ResizedChannels)
	}
	if d.UnchangedChannels != 1 {
		t.Errorf("expected 1 unchanged channel, got %d", d.UnchangedChannels)
	}
	if d.OldCapacity != 600 || d.NewCapacity != 460 || d.CapacityDelta() != -140 {
		t.Errorf("unexpected capacities %d -> %d", d.OldCapacity, d.NewCapacity)
	}
}

// TestDiffIdentical tests that identical graphs produce an empty diff.
func TestDiffIdentical(t *testing.T) {
	t.Parallel()

	g := testReport("c1", []string{"A", "B"},
		model.Channel{ShortChannelID: "x", Node1Pub: "A", Node2Pub: "B", Capacity: 100},
		model.Channel{ShortChannelID: "x", Node1Pub: "A", Node2Pub: "B", Capacity: 100},
	).Graph

	d := Diff(g, g)
	if !d.Empty() {
		t.Errorf("expected empty diff, got %+v", d)
	}
	if d.UnchangedChannels != 1 {
		t.Errorf("expected repeated id to count once, got %d", d.UnchangedChannels)
	}
}
