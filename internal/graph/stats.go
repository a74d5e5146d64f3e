package graph

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/mbio16/ln-community-graph/internal/model"
)

// DefaultTopChannels is the number of channels listed in GraphStats.TopChannels.
const DefaultTopChannels = 10

// Analyze computes topology statistics for g.
//
// Members are nodes and in-community channels are undirected edges.
// Parallel channels between the same pair count once for density,
// components and betweenness, and individually for degree and capacity.
// A member listed twice is one node.
func Analyze(g *model.CommunityGraph) *model.GraphStats {
	members := g.Community.Members
	index := make(map[string]int64, len(members))
	ug := simple.NewUndirectedGraph()
	for _, pk := range members {
		if _, ok := index[pk]; ok {
			continue
		}
		id := int64(len(index))
		index[pk] = id
		ug.AddNode(simple.Node(id))
	}

	degree := make(map[string]int, len(index))
	capacity := make(map[string]int64, len(index))
	var total int64
	for _, ch := range g.Channels {
		total += ch.Capacity
		u, uok := index[ch.Node1Pub]
		v, vok := index[ch.Node2Pub]
		if !uok || !vok {
			continue
		}
		degree[ch.Node1Pub]++
		capacity[ch.Node1Pub] += ch.Capacity
		if u == v {
			continue
		}
		degree[ch.Node2Pub]++
		capacity[ch.Node2Pub] += ch.Capacity
		if !ug.HasEdgeBetween(u, v) {
			ug.SetEdge(ug.NewEdge(simple.Node(u), simple.Node(v)))
		}
	}

	n := len(index)
	edges := ug.Edges().Len()
	stats := &model.GraphStats{
		NodeCount:     n,
		EdgeCount:     len(g.Channels),
		TotalCapacity: total,
		Components:    len(topo.ConnectedComponents(ug)),
		Nodes:         make([]model.NodeStats, 0, n),
	}
	if n > 1 {
		stats.Density = float64(edges) / float64(n*(n-1)/2)
	}

	betweenness := network.Betweenness(ug)
	seen := make(map[string]bool, n)
	for _, pk := range members {
		if seen[pk] {
			continue
		}
		seen[pk] = true
		if degree[pk] == 0 {
			stats.IsolatedMembers = append(stats.IsolatedMembers, pk)
		}
		stats.Nodes = append(stats.Nodes, model.NodeStats{
			PubKey:      pk,
			Alias:       g.Alias(pk),
			Degree:      degree[pk],
			Capacity:    capacity[pk],
			Betweenness: betweenness[index[pk]],
		})
	}

	stats.TopChannels = TopChannels(g.Channels, DefaultTopChannels)
	return stats
}

// TopChannels returns up to n channels ordered by capacity, largest first.
// Ties keep their original order.
func TopChannels(channels []model.Channel, n int) []model.Channel {
	if n <= 0 || len(channels) == 0 {
		return nil
	}
	sorted := slices.Clone(channels)
	slices.SortStableFunc(sorted, func(a, b model.Channel) int {
		return cmp.Compare(b.Capacity, a.Capacity)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// RankByBetweenness returns node stats ordered by betweenness, highest
// first, then by degree.
func RankByBetweenness(nodes []model.NodeStats) []model.NodeStats {
	ranked := slices.Clone(nodes)
	slices.SortStableFunc(ranked, func(a, b model.NodeStats) int {
		if c := cmp.Compare(b.Betweenness, a.Betweenness); c != 0 {
			return c
		}
		return cmp.Compare(b.Degree, a.Degree)
	})
	return ranked
}
