// Package metrics holds the Prometheus collectors shared by the API client,
// the fetcher and the graph web server. Collectors are registered on the
// default registry at package init and exposed by the web server on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for API requests.
const (
	OutcomeOK        = "ok"
	OutcomeNetwork   = "network_error"
	OutcomeMalformed = "malformed_response"
)

var (
	// APIRequestsTotal counts GraphQL requests by query name and outcome.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lncgraph_api_requests_total",
			Help: "Total number of GraphQL API requests sent",
		},
		[]string{"query", "outcome"},
	)

	// APIRequestDuration measures GraphQL round-trip time.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lncgraph_api_request_duration_seconds",
			Help:    "Duration of GraphQL API requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"query"},
	)

	// HTTPRequestsTotal counts requests served by the graph web server.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lncgraph_http_requests_total",
			Help: "Total number of HTTP requests processed by the graph server",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures graph server response time.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lncgraph_http_request_duration_seconds",
			Help:    "Duration of graph server HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"method", "path"},
	)

	// CommunityMembers tracks the member count of the last fetch per community.
	CommunityMembers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lncgraph_community_members",
			Help: "Number of members in the last fetched community",
		},
		[]string{"community"},
	)

	// CommunityChannels tracks in-community channels of the last fetch.
	CommunityChannels = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lncgraph_community_channels",
			Help: "Number of in-community channels in the last fetched community",
		},
		[]string{"community"},
	)

	// CommunityCapacity tracks summed in-community channel capacity in sats.
	CommunityCapacity = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lncgraph_community_capacity_sats",
			Help: "Total capacity of in-community channels in sats",
		},
		[]string{"community"},
	)
)

// ObserveAPIRequest records one GraphQL request.
func ObserveAPIRequest(query, outcome string, d time.Duration) {
	APIRequestsTotal.WithLabelValues(query, outcome).Inc()
	APIRequestDuration.WithLabelValues(query).Observe(d.Seconds())
}

// SetCommunity records the size of a fetched community graph.
func SetCommunity(community string, members, channels int, capacity int64) {
	CommunityMembers.WithLabelValues(community).Set(float64(members))
	CommunityChannels.WithLabelValues(community).Set(float64(channels))
	CommunityCapacity.WithLabelValues(community).Set(float64(capacity))
}
