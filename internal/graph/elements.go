package graph

import "github.com/mbio16/ln-community-graph/internal/model"

// Edge classes.
const (
	ClassTop    = "top"
	ClassNotTop = "not-top"
)

// Element is a Cytoscape.js node or edge.
type Element struct {
	Data    ElementData `json:"data"`
	Classes string      `json:"classes"`
}

// ElementData is the data block of an element. Nodes set ID and Label,
// edges set Source and Target.
type ElementData struct {
	ID     string `json:"id,omitempty"`
	Label  string `json:"label,omitempty"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
}

// Elements returns one node per member, in member order, followed by one
// edge per in-community channel. An edge is classed "top" when its
// capacity is at least threshold, "not-top" otherwise. Node classes are the
// member public key so the stylesheet can color each node.
func Elements(g *model.CommunityGraph, threshold int64) []Element {
	out := make([]Element, 0, len(g.Community.Members)+len(g.Channels))

	for _, pk := range g.Community.Members {
		out = append(out, Element{
			Data:    ElementData{ID: pk, Label: g.Alias(pk)},
			Classes: pk,
		})
	}
	for _, ch := range g.Channels {
		class := ClassNotTop
		if ch.Capacity >= threshold {
			class = ClassTop
		}
		out = append(out, Element{
			Data:    ElementData{Source: ch.Node1Pub, Target: ch.Node2Pub},
			Classes: class,
		})
	}
	return out
}

// StyleRule is a Cytoscape.js stylesheet entry.
type StyleRule struct {
	Selector string            `json:"selector"`
	Style    map[string]string `json:"style"`
}

// Stylesheet returns one rule per member setting its node color, then the
// shared label rule and the highlight rule for "top" edges.
func Stylesheet(g *model.CommunityGraph) []StyleRule {
	out := make([]StyleRule, 0, len(g.NodesInfo)+2)

	for i, info := range g.NodesInfo {
		if i >= len(g.Community.Members) {
			break
		}
		out = append(out, StyleRule{
			Selector: "." + g.Community.Members[i],
			Style:    map[string]string{"background-color": info.Color},
		})
	}
	out = append(out,
		StyleRule{
			Selector: "node",
			Style:    map[string]string{"label": "data(label)"},
		},
		StyleRule{
			Selector: "." + ClassTop,
			Style: map[string]string{
				"background-color": "red",
				"line-color":       "red",
			},
		},
	)
	return out
}

// Layout holds the "cose" layout options used by the graph page.
type Layout struct {
	Name             string  `json:"name"`
	IdealEdgeLength  int     `json:"idealEdgeLength"`
	NodeOverlap      int     `json:"nodeOverlap"`
	Refresh          int     `json:"refresh"`
	Fit              bool    `json:"fit"`
	Padding          int     `json:"padding"`
	Randomize        bool    `json:"randomize"`
	ComponentSpacing int     `json:"componentSpacing"`
	NodeRepulsion    int     `json:"nodeRepulsion"`
	EdgeElasticity   int     `json:"edgeElasticity"`
	NestingFactor    int     `json:"nestingFactor"`
	Gravity          int     `json:"gravity"`
	NumIter          int     `json:"numIter"`
	InitialTemp      int     `json:"initialTemp"`
	CoolingFactor    float64 `json:"coolingFactor"`
	MinTemp          float64 `json:"minTemp"`
}

// CoseLayout returns the layout options of the graph page.
func CoseLayout() Layout {
	return Layout{
		Name:             "cose",
		IdealEdgeLength:  150,
		NodeOverlap:      20,
		Refresh:          20,
		Fit:              true,
		Padding:          30,
		Randomize:        false,
		ComponentSpacing: 100,
		NodeRepulsion:    400000,
		EdgeElasticity:   200,
		NestingFactor:    5,
		Gravity:          80,
		NumIter:          1000,
		InitialTemp:      200,
		CoolingFactor:    0.95,
		MinTemp:          1.0,
	}
}
