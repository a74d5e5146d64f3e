package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mbio16/ln-community-graph/internal/metrics"
	"github.com/mbio16/ln-community-graph/internal/model"
)

// defaultMaxBodySize caps response bodies when no limit is configured.
const defaultMaxBodySize = 10 * 1024 * 1024

// Client sends community and node queries to a GraphQL endpoint.
// It is safe for concurrent use.
type Client struct {
	endpoint    string
	httpClient  *http.Client
	host        string
	userAgent   string
	headers     map[string]string
	maxBodySize int64
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHost sets the Host header. Empty keeps the endpoint's host.
func WithHost(host string) Option {
	return func(c *Client) {
		c.host = host
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHeaders adds static headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithMaxBodySize limits how much of a response body is read.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for endpoint. A nil httpClient uses
// http.DefaultClient.
func NewClient(endpoint string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		endpoint:    endpoint,
		httpClient:  httpClient,
		headers:     make(map[string]string),
		maxBodySize: defaultMaxBodySize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the configured endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type communityData struct {
	GetCommunity *struct {
		Details *struct {
			Name  *string `json:"name"`
			PubID string  `json:"pubId"`
		} `json:"details"`
		MemberCount *int      `json:"member_count"`
		MemberList  *[]string `json:"member_list"`
	} `json:"getCommunity"`
}

type channelItem struct {
	BlockAge       *model.Int64String `json:"block_age"`
	ShortChannelID *string            `json:"short_channel_id"`
	Capacity       *model.Int64String `json:"capacity"`
	Node1Pub       *string            `json:"node1_pub"`
	Node2Pub       *string            `json:"node2_pub"`
}

type nodeData struct {
	GetNode *struct {
		GraphInfo *struct {
			Node *struct {
				Alias *string `json:"alias"`
				Color *string `json:"color"`
			} `json:"node"`
			Channels *struct {
				TotalCapacity *model.Int64String `json:"total_capacity"`
				List          *[]channelItem     `json:"list"`
			} `json:"channels"`
		} `json:"graph_info"`
	} `json:"getNode"`
}

// Community fetches the details and member list of community id.
func (c *Client) Community(ctx context.Context, id string) (*model.Community, error) {
	q, err := CommunityQuery(id)
	if err != nil {
		return nil, err
	}

	var data communityData
	if err := c.do(ctx, QueryCommunity, q, &data); err != nil {
		return nil, err
	}

	gc := data.GetCommunity
	switch {
	case gc == nil:
		return nil, missing(QueryCommunity, "data.getCommunity")
	case gc.Details == nil || gc.Details.Name == nil:
		return nil, missing(QueryCommunity, "data.getCommunity.details.name")
	case gc.MemberCount == nil:
		return nil, missing(QueryCommunity, "data.getCommunity.member_count")
	case gc.MemberList == nil:
		return nil, missing(QueryCommunity, "data.getCommunity.member_list")
	}

	return &model.Community{
		ID:          id,
		Name:        *gc.Details.Name,
		MemberCount: *gc.MemberCount,
		Members:     *gc.MemberList,
	}, nil
}

// Node fetches node info and the full channel list of pubkey.
func (c *Client) Node(ctx context.Context, pubkey string) (*model.NodeChannels, error) {
	q, err := NodeQuery(pubkey)
	if err != nil {
		return nil, err
	}

	var data nodeData
	if err := c.do(ctx, QueryNode, q, &data); err != nil {
		return nil, err
	}

	if data.GetNode == nil {
		return nil, missing(QueryNode, "data.getNode")
	}
	gi := data.GetNode.GraphInfo
	switch {
	case gi == nil:
		return nil, missing(QueryNode, "data.getNode.graph_info")
	case gi.Node == nil:
		return nil, missing(QueryNode, "data.getNode.graph_info.node")
	case gi.Channels == nil:
		return nil, missing(QueryNode, "data.getNode.graph_info.channels")
	case gi.Channels.TotalCapacity == nil:
		return nil, missing(QueryNode, "data.getNode.graph_info.channels.total_capacity")
	case gi.Channels.List == nil:
		return nil, missing(QueryNode, "data.getNode.graph_info.channels.list")
	}

	nc := &model.NodeChannels{
		Info: model.NodeInfo{
			PubKey:        pubkey,
			Alias:         deref(gi.Node.Alias),
			Color:         deref(gi.Node.Color),
			TotalCapacity: gi.Channels.TotalCapacity.Int64(),
		},
		Channels: make([]model.Channel, 0, len(*gi.Channels.List)),
	}
	// Alias and color may be null for unannounced nodes; every channel
	// field is required.
	for i, item := range *gi.Channels.List {
		if item.ShortChannelID == nil || item.Node1Pub == nil || item.Node2Pub == nil ||
			item.Capacity == nil || item.BlockAge == nil {
			return nil, missing(QueryNode, fmt.Sprintf("data.getNode.graph_info.channels.list[%d]", i))
		}
		nc.Channels = append(nc.Channels, model.Channel{
			ShortChannelID: *item.ShortChannelID,
			Capacity:       item.Capacity.Int64(),
			Node1Pub:       *item.Node1Pub,
			Node2Pub:       *item.Node2Pub,
			BlockAge:       item.BlockAge.Int64(),
		})
	}
	return nc, nil
}

// do posts the query and decodes response.data into out.
func (c *Client) do(ctx context.Context, name, query string, out any) (err error) {
	start := time.Now()
	defer func() {
		outcome := metrics.OutcomeOK
		switch {
		case errors.Is(err, ErrNetwork):
			outcome = metrics.OutcomeNetwork
		case errors.Is(err, ErrMalformedResponse):
			outcome = metrics.OutcomeMalformed
		}
		metrics.ObserveAPIRequest(name, outcome, time.Since(start))
	}()

	body, err := json.Marshal(request{Query: query, Variables: map[string]any{}})
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return &NetworkError{Query: name, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if c.host != "" {
		req.Host = c.host
	}

	c.logger.Debug("sending graphql query", "query", name, "endpoint", c.endpoint, "headers", req.Header)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Query: name, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return &NetworkError{Query: name, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &NetworkError{
			Query:      name,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var env response
	if err := json.Unmarshal(raw, &env); err != nil {
		return &MalformedResponseError{Query: name, Err: err}
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		if len(env.Errors) > 0 {
			return &MalformedResponseError{Query: name, Field: "data", Err: errors.New(env.Errors[0].Message)}
		}
		return missing(name, "data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &MalformedResponseError{Query: name, Err: err}
	}
	if len(env.Errors) > 0 {
		c.logger.Warn("graphql response carried errors", "query", name, "error", env.Errors[0].Message)
	}

	c.logger.Debug("graphql query completed", "query", name, "status", resp.StatusCode, "bytes", len(raw))
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
