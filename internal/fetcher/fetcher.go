package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mbio16/ln-community-graph/internal/model"
)

// CommunityQuerier looks up a community by id.
// *graphql.Client implements it.
type CommunityQuerier interface {
	Community(ctx context.Context, id string) (*model.Community, error)
}

// NodeQuerier looks up a node and its channels by public key.
// *graphql.Client implements it.
type NodeQuerier interface {
	Node(ctx context.Context, pubkey string) (*model.NodeChannels, error)
}

type options struct {
	logger      *slog.Logger
	concurrency int
	dedup       DedupMode
}

// Option configures a fetcher.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithConcurrency sets how many member lookups may run at once.
// Values below 1 are treated as 1.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = max(n, 1)
	}
}

// WithDedupMode sets the in-community filter mode.
func WithDedupMode(m DedupMode) Option {
	return func(o *options) {
		o.dedup = m
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:      slog.Default(),
		concurrency: 1,
		dedup:       DedupStrict,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// CommunityFetcher fetches community details and members.
type CommunityFetcher struct {
	client CommunityQuerier
	logger *slog.Logger
}

// NewCommunityFetcher creates a CommunityFetcher.
func NewCommunityFetcher(client CommunityQuerier, opts ...Option) *CommunityFetcher {
	o := newOptions(opts)
	return &CommunityFetcher{client: client, logger: o.logger}
}

// Fetch issues one community lookup. It does not retry.
func (f *CommunityFetcher) Fetch(ctx context.Context, id string) (*model.Community, error) {
	c, err := f.client.Community(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch community %s: %w", id, err)
	}
	if c.MemberCount != len(c.Members) {
		f.logger.Warn("member count does not match member list",
			"community", id,
			"member_count", c.MemberCount,
			"member_list", len(c.Members),
		)
	}
	f.logger.Debug("community fetched", "community", id, "name", c.Name, "members", len(c.Members))
	return c, nil
}

// MemberChannelFetcher fetches every member's node info and channels and
// builds the community graph.
type MemberChannelFetcher struct {
	client      NodeQuerier
	logger      *slog.Logger
	concurrency int
	dedup       DedupMode
}

// NewMemberChannelFetcher creates a MemberChannelFetcher.
func NewMemberChannelFetcher(client NodeQuerier, opts ...Option) *MemberChannelFetcher {
	o := newOptions(opts)
	return &MemberChannelFetcher{
		client:      client,
		logger:      o.logger,
		concurrency: o.concurrency,
		dedup:       o.dedup,
	}
}

// Fetch looks up every member and returns the community graph.
//
// Lookups run at most concurrency at a time; with the default of 1 they run
// one after another in member order. Results are filtered in member order
// after all lookups have returned, so the result set is the same for any
// concurrency. The first failure cancels the remaining lookups and no
// partial graph is returned. An empty member list makes no calls.
func (f *MemberChannelFetcher) Fetch(ctx context.Context, c *model.Community) (*model.CommunityGraph, error) {
	nodes := make([]*model.NodeChannels, len(c.Members))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for i, pubkey := range c.Members {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			nc, err := f.client.Node(gctx, pubkey)
			if err != nil {
				return fmt.Errorf("failed to fetch member %d (%s): %w", i, pubkey, err)
			}
			if nc == nil {
				return fmt.Errorf("failed to fetch member %d (%s): no result", i, pubkey)
			}
			nodes[i] = nc
			f.logger.Debug("member fetched", "index", i, "pubkey", pubkey, "channels", len(nc.Channels))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	graph := model.NewCommunityGraph(*c)
	filter := NewFilter(c.Members, f.dedup)
	for i, pubkey := range c.Members {
		nc := nodes[i]
		info := nc.Info
		info.PubKey = pubkey
		graph.NodesInfo = append(graph.NodesInfo, info)
		graph.Capacity = append(graph.Capacity, info.TotalCapacity)
		graph.Channels = append(graph.Channels, filter.Apply(nc.Channels, pubkey)...)
	}

	f.logger.Debug("member channels filtered",
		"community", c.ID,
		"members", len(c.Members),
		"channels", len(graph.Channels),
		"dedup", f.dedup.String(),
	)
	return graph, nil
}
