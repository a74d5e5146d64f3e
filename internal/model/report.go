package model

import (
	"time"

	"github.com/google/uuid"
)

// CommunityReport is the result of one pipeline run over one community.
// Steps fill it in progressively; writers and the exporter read it.
type CommunityReport struct {
	// RunID uniquely identifies this run. It appears in logs and exports.
	RunID string `json:"run_id"`

	// CommunityID is the requested community identifier.
	CommunityID string `json:"community_id"`

	// DateFetched is when the run started.
	DateFetched time.Time `json:"date_fetched"`

	// Community is set by the community step.
	Community *Community `json:"community,omitempty"`

	// Graph is set by the member channel step.
	Graph *CommunityGraph `json:"graph,omitempty"`

	// Stats is set by the analyze step.
	Stats *GraphStats `json:"stats,omitempty"`

	// PerformedSteps lists the steps that ran, in order.
	PerformedSteps []string `json:"performed_steps"`

	// Error holds the error that stopped the run, if any.
	Error error `json:"-"`

	// ErrorMessage is Error as a string, for serialization.
	ErrorMessage string `json:"error,omitempty"`

	// Cancelled is true if the run was stopped by context cancellation.
	Cancelled bool `json:"cancelled,omitempty"`
}

// NewCommunityReport creates an empty report for a community id.
func NewCommunityReport(communityID string) *CommunityReport {
	return &CommunityReport{
		RunID:          uuid.NewString(),
		CommunityID:    communityID,
		DateFetched:    time.Now().UTC(),
		PerformedSteps: make([]string, 0, 3),
	}
}

// Failed reports whether the run stopped with an error.
func (r *CommunityReport) Failed() bool {
	return r.Error != nil || r.ErrorMessage != ""
}

// DisplayName returns the community name if known, else its id.
func (r *CommunityReport) DisplayName() string {
	if r.Community != nil && r.Community.Name != "" {
		return r.Community.Name
	}
	return r.CommunityID
}

// GraphStats summarizes the topology of a community graph.
type GraphStats struct {
	// NodeCount is the number of members.
	NodeCount int `json:"node_count"`

	// EdgeCount is the number of in-community channels.
	EdgeCount int `json:"edge_count"`

	// TotalCapacity is the summed capacity of in-community channels.
	TotalCapacity int64 `json:"total_capacity"`

	// Density is edges over the maximum possible number of node pairs,
	// counting parallel channels between the same pair once.
	Density float64 `json:"density"`

	// Components is the number of connected components. Isolated members
	// count as one component each.
	Components int `json:"components"`

	// IsolatedMembers lists members with no in-community channel.
	IsolatedMembers []string `json:"isolated_members,omitempty"`

	// Nodes holds per-member metrics in member-list order.
	Nodes []NodeStats `json:"nodes"`

	// TopChannels holds the largest channels by capacity, descending.
	TopChannels []Channel `json:"top_channels,omitempty"`
}

// NodeStats holds per-member graph metrics.
type NodeStats struct {
	PubKey string `json:"pubkey"`
	Alias  string `json:"alias"`

	// Degree is the number of in-community channels of the member.
	Degree int `json:"degree"`

	// Capacity is the summed capacity of the member's in-community channels.
	Capacity int64 `json:"capacity"`

	// Betweenness is the member's betweenness centrality inside the
	// community subgraph.
	Betweenness float64 `json:"betweenness"`
}
