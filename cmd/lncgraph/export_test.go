package main

import (
	"path/filepath"
	"testing"

	"github.com/mbio16/ln-community-graph/internal/database"
	"github.com/mbio16/ln-community-graph/internal/model"
)

// exportReport builds a report of members joined by channels.
func exportReport(id, name string, members []string, channels ...model.Channel) *model.CommunityReport {
	r := model.NewCommunityReport(id)
	c := model.Community{ID: id, Name: name, MemberCount: len(members), Members: members}
	r.Community = &c
	g := model.NewCommunityGraph(c)
	for _, pk := range members {
		g.NodesInfo = append(g.NodesInfo, model.NodeInfo{PubKey: pk, Alias: "alias-" + pk, Color: "#3399ff"})
		g.Capacity = append(g.Capacity, 0)
	}
	g.Channels = channels
	r.Graph = g
	return r
}

// writeExport saves reports into a new SQLite export under t.TempDir.
func writeExport(t *testing.T, name string, reports ...*model.CommunityReport) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	db, err := database.Open(path, database.Options{CreateIfNotExists: true})
	if err != nil {
		t.Fatalf("failed to create export: %v", err)
	}
	defer db.Close()
	for _, r := range reports {
		if err := db.SaveReport(t.Context(), r); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
	}
	return path
}
