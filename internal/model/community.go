package model

import "slices"

// Community is a named collection of Lightning nodes tracked by the
// remote graph API.
type Community struct {
	// ID is the community identifier used to query the API.
	ID string `json:"id"`

	// Name is the display name from the community details.
	Name string `json:"name"`

	// MemberCount is the member count reported by the API.
	// For a well-formed response it equals len(Members).
	MemberCount int `json:"member_count"`

	// Members is the ordered list of member node public keys.
	// Uniqueness is expected but not enforced.
	Members []string `json:"member_list"`
}

// HasMember reports whether pubkey is in the member list.
// Matching is exact, without any normalization.
func (c *Community) HasMember(pubkey string) bool {
	return slices.Contains(c.Members, pubkey)
}

// NodeInfo describes one community member.
type NodeInfo struct {
	// PubKey is the member this entry describes.
	PubKey string `json:"pubkey"`

	// Alias is the node's advertised alias.
	Alias string `json:"alias"`

	// Color is the node's advertised color, e.g. "#3399ff".
	Color string `json:"color"`

	// TotalCapacity is the sum of the node's channel capacities in sats.
	TotalCapacity int64 `json:"total_capacity"`
}

// Channel is a payment channel between two nodes.
type Channel struct {
	// ShortChannelID identifies the channel (e.g. "812345x1234x0").
	// It is the deduplication key for the result set.
	ShortChannelID string `json:"short_channel_id"`

	// Capacity is the channel capacity in sats.
	Capacity int64 `json:"capacity"`

	// Node1Pub and Node2Pub are the channel endpoints.
	Node1Pub string `json:"node1_pub"`
	Node2Pub string `json:"node2_pub"`

	// BlockAge is the channel's age in blocks.
	BlockAge int64 `json:"block_age"`
}

// Touches reports whether pubkey is one of the channel's endpoints.
func (ch Channel) Touches(pubkey string) bool {
	return ch.Node1Pub == pubkey || ch.Node2Pub == pubkey
}

// NodeChannels is everything fetched for a single member: its node info
// and its full, unfiltered channel list.
type NodeChannels struct {
	Info     NodeInfo
	Channels []Channel
}

// CommunityGraph is a community together with per-member node info and the
// set of channels whose both endpoints are members.
//
// NodesInfo and Capacity are index-aligned with Community.Members:
// NodesInfo[i] and Capacity[i] describe Members[i].
type CommunityGraph struct {
	Community Community  `json:"community"`
	NodesInfo []NodeInfo `json:"nodes_info"`
	Capacity  []int64    `json:"capacity"`
	Channels  []Channel  `json:"channels"`
}

// NewCommunityGraph returns an empty graph for the given community.
func NewCommunityGraph(c Community) *CommunityGraph {
	return &CommunityGraph{
		Community: c,
		NodesInfo: make([]NodeInfo, 0, len(c.Members)),
		Capacity:  make([]int64, 0, len(c.Members)),
		Channels:  make([]Channel, 0),
	}
}

// NodeInfoFor returns the node info of the given member.
func (g *CommunityGraph) NodeInfoFor(pubkey string) (NodeInfo, bool) {
	for i, m := range g.Community.Members {
		if m == pubkey && i < len(g.NodesInfo) {
			return g.NodesInfo[i], true
		}
	}
	return NodeInfo{}, false
}

// Alias returns the alias of a member, falling back to a shortened
// public key when the member is unknown or has no alias.
func (g *CommunityGraph) Alias(pubkey string) string {
	if info, ok := g.NodeInfoFor(pubkey); ok && info.Alias != "" {
		return info.Alias
	}
	return ShortPubKey(pubkey)
}

// TotalCapacity returns the summed capacity of all in-community channels.
func (g *CommunityGraph) TotalCapacity() int64 {
	var total int64
	for _, ch := range g.Channels {
		total += ch.Capacity
	}
	return total
}

// ShortPubKey shortens a node public key for display.
func ShortPubKey(pubkey string) string {
	if len(pubkey) <= 16 {
		return pubkey
	}
	return pubkey[:8] + "…" + pubkey[len(pubkey)-6:]
}
