package fetcher

import "github.com/mbio16/ln-community-graph/internal/model"

// DedupMode selects how the in-community filter treats channels whose
// short channel id is already in the result set.
type DedupMode int

const (
	// DedupStrict accepts a channel when it touches the current member and
	// its id is not yet present. Each id appears at most once.
	DedupStrict DedupMode = iota

	// DedupLegacy accepts a channel when node1 is the current member, or
	// when node2 is the current member and the id is not yet present.
	// A channel listed with node1 == current is appended even if present.
	DedupLegacy
)

func (m DedupMode) String() string {
	switch m {
	case DedupStrict:
		return "strict"
	case DedupLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// Filter is the in-community channel filter for one community.
// It is not safe for concurrent use.
type Filter struct {
	members map[string]struct{}
	seen    map[string]struct{}
	mode    DedupMode
}

// NewFilter creates a filter over the given member list.
func NewFilter(members []string, mode DedupMode) *Filter {
	m := make(map[string]struct{}, len(members))
	for _, pk := range members {
		m[pk] = struct{}{}
	}
	return &Filter{
		members: m,
		seen:    make(map[string]struct{}),
		mode:    mode,
	}
}

// IsMember reports whether pubkey is a member. Matching is exact.
func (f *Filter) IsMember(pubkey string) bool {
	_, ok := f.members[pubkey]
	return ok
}

// Accept applies the filter to ch, listed by member current, and records
// its id when accepted.
func (f *Filter) Accept(ch model.Channel, current string) bool {
	if !f.IsMember(ch.Node1Pub) || !f.IsMember(ch.Node2Pub) {
		return false
	}

	_, present := f.seen[ch.ShortChannelID]
	c := !present

	var ok bool
	if f.mode == DedupLegacy {
		ok = ch.Node1Pub == current || (ch.Node2Pub == current && c)
	} else {
		ok = ch.Touches(current) && c
	}
	if ok {
		f.seen[ch.ShortChannelID] = struct{}{}
	}
	return ok
}

// Apply filters the channels listed by current and returns the accepted
// ones in input order.
func (f *Filter) Apply(channels []model.Channel, current string) []model.Channel {
	var out []model.Channel
	for _, ch := range channels {
		if f.Accept(ch, current) {
			out = append(out, ch)
		}
	}
	return out
}
