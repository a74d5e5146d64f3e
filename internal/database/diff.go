package database

import (
	"github.com/mbio16/ln-community-graph/internal/model"
)

// GraphDiff is the difference between two snapshots of one community.
type GraphDiff struct {
	CommunityID string `json:"community_id"`

	OldName string `json:"old_name"`
	NewName string `json:"new_name"`

	AddedMembers   []string `json:"added_members,omitempty"`
	RemovedMembers []string `json:"removed_members,omitempty"`

	AddedChannels   []model.Channel `json:"added_channels,omitempty"`
	RemovedChannels []model.Channel `json:"removed_channels,omitempty"`

	// ResizedChannels lists channels present in both with a different capacity.
	ResizedChannels []CapacityChange `json:"resized_channels,omitempty"`

	OldCapacity int64 `json:"old_capacity"`
	NewCapacity int64 `json:"new_capacity"`

	UnchangedChannels int `json:"unchanged_channels"`
}

// CapacityChange is a channel whose capacity differs between snapshots.
type CapacityChange struct {
	ShortChannelID string `json:"short_channel_id"`
	Old            int64  `json:"old"`
	New            int64  `json:"new"`
}

// Empty reports whether the snapshots have the same members and channels.
func (d *GraphDiff) Empty() bool {
	return len(d.AddedMembers) == 0 && len(d.RemovedMembers) == 0 &&
		len(d.AddedChannels) == 0 && len(d.RemovedChannels) == 0 &&
		len(d.ResizedChannels) == 0
}

// CapacityDelta returns the change in in-community capacity.
func (d *GraphDiff) CapacityDelta() int64 {
	return d.NewCapacity - d.OldCapacity
}

// Diff compares two graphs of the same community. Channels are matched by
// short channel id; the first occurrence wins when an id repeats.
// Results follow the order of the graph they come from.
func Diff(previous, current *model.CommunityGraph) *GraphDiff {
	d := &GraphDiff{
		CommunityID: current.Community.ID,
		OldName:     previous.Community.Name,
		NewName:     current.Community.Name,
		OldCapacity: previous.TotalCapacity(),
		NewCapacity: current.TotalCapacity(),
	}

	for _, pk := range current.Community.Members {
		if !previous.Community.HasMember(pk) {
			d.AddedMembers = append(d.AddedMembers, pk)
		}
	}
	for _, pk := range previous.Community.Members {
		if !current.Community.HasMember(pk) {
			d.RemovedMembers = append(d.RemovedMembers, pk)
		}
	}

	prevChannels := channelIndex(previous.Channels)
	currChannels := channelIndex(current.Channels)

	seen := make(map[string]bool, len(current.Channels))
	for _, ch := range current.Channels {
		if seen[ch.ShortChannelID] {
			continue
		}
		seen[ch.ShortChannelID] = true

		old, ok := prevChannels[ch.ShortChannelID]
		switch {
		case !ok:
			d.AddedChannels = append(d.AddedChannels, ch)
		case old.Capacity != ch.Capacity:
			d.ResizedChannels = append(d.ResizedChannels, CapacityChange{
				ShortChannelID: ch.ShortChannelID,
				Old:            old.Capacity,
				New:            ch.Capacity,
			})
		default:
			d.UnchangedChannels++
		}
	}

	clear(seen)
	for _, ch := range previous.Channels {
		if seen[ch.ShortChannelID] {
			continue
		}
		seen[ch.ShortChannelID] = true
		if _, ok := currChannels[ch.ShortChannelID]; !ok {
			d.RemovedChannels = append(d.RemovedChannels, ch)
		}
	}

	return d
}

func channelIndex(channels []model.Channel) map[string]model.Channel {
	m := make(map[string]model.Channel, len(channels))
	for _, ch := range channels {
		if _, ok := m[ch.ShortChannelID]; !ok {
			m[ch.ShortChannelID] = ch
		}
	}
	return m
}
