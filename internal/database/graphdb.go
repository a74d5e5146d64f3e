package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mbio16/ln-community-graph/internal/model"
)

// ErrExportNotFound is returned when opening an export file that does not exist.
var ErrExportNotFound = errors.New("export file not found")

// GraphDB is an SQLite file holding exported community graphs.
type GraphDB struct {
	db   *sql.DB
	path string
}

// Options configures how a GraphDB is opened.
type Options struct {
	// CreateIfNotExists creates the file and its directory if missing.
	CreateIfNotExists bool

	// Truncate removes an existing file before opening.
	Truncate bool
}

// Open opens the export file at path.
func Open(path string, opts Options) (*GraphDB, error) {
	if opts.Truncate {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove existing export: %w", err)
		}
	}

	var dsn string
	if opts.CreateIfNotExists {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create export directory: %w", err)
			}
		}
		dsn = path + "?mode=rwc"
	} else {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrExportNotFound, path)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check export path: %w", err)
		}
		dsn = path + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	gdb := &GraphDB{db: db, path: path}
	if err := gdb.createTables(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return gdb, nil
}

// Path returns the file path of the database.
func (g *GraphDB) Path() string {
	return g.path
}

// Close closes the database connection.
func (g *GraphDB) Close() error {
	return g.db.Close()
}

func (g *GraphDB) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS communities (
		community_id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		name TEXT NOT NULL,
		member_count INTEGER NOT NULL,
		date_fetched TEXT NOT NULL,
		stats_json TEXT
	);

	-- position is the index in the member list
	CREATE TABLE IF NOT EXISTS members (
		community_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		pubkey TEXT NOT NULL,
		alias TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		total_capacity INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (community_id, position)
	);

	-- position is the discovery order; legacy dedup may repeat a channel id
	CREATE TABLE IF NOT EXISTS channels (
		community_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		short_channel_id TEXT NOT NULL,
		capacity INTEGER NOT NULL,
		node1_pub TEXT NOT NULL,
		node2_pub TEXT NOT NULL,
		block_age INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (community_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_channels_scid ON channels(short_channel_id);
	`
	_, err := g.db.ExecContext(ctx, schema)
	return err
}

// Snapshot is one exported community graph.
type Snapshot struct {
	RunID       string
	DateFetched time.Time
	Graph       *model.CommunityGraph
	Stats       *model.GraphStats
}

// SaveReport stores the report's graph, replacing any earlier export of
// the same community in this file.
func (g *GraphDB) SaveReport(ctx context.Context, report *model.CommunityReport) error {
	if report.Graph == nil {
		return fmt.Errorf("community %s has no graph to export", report.CommunityID)
	}
	graph := report.Graph
	id := report.CommunityID

	var statsJSON sql.NullString
	if report.Stats != nil {
		data, err := json.Marshal(report.Stats)
		if err != nil {
			return fmt.Errorf("failed to serialize stats: %w", err)
		}
		statsJSON = sql.NullString{String: string(data), Valid: true}
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"members", "channels", "communities"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE community_id = ?", id); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO communities (community_id, run_id, name, member_count, date_fetched, stats_json)
	VALUES (?, ?, ?, ?, ?, ?)
	`, id, report.RunID, graph.Community.Name, graph.Community.MemberCount,
		report.DateFetched.UTC().Format(time.RFC3339Nano), statsJSON)
	if err != nil {
		return fmt.Errorf("failed to insert community: %w", err)
	}

	memberStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO members (community_id, position, pubkey, alias, color, total_capacity)
	VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare member insert: %w", err)
	}
	defer memberStmt.Close()

	for i, pk := range graph.Community.Members {
		var info model.NodeInfo
		if i < len(graph.NodesInfo) {
			info = graph.NodesInfo[i]
		}
		if _, err := memberStmt.ExecContext(ctx, id, i, pk, info.Alias, info.Color, info.TotalCapacity); err != nil {
			return fmt.Errorf("failed to insert member %s: %w", pk, err)
		}
	}

	channelStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO channels (community_id, position, short_channel_id, capacity, node1_pub, node2_pub, block_age)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare channel insert: %w", err)
	}
	defer channelStmt.Close()

	for i, ch := range graph.Channels {
		if _, err := channelStmt.ExecContext(ctx, id, i, ch.ShortChannelID, ch.Capacity, ch.Node1Pub, ch.Node2Pub, ch.BlockAge); err != nil {
			return fmt.Errorf("failed to insert channel %s: %w", ch.ShortChannelID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit export: %w", err)
	}
	return nil
}

// ListCommunities returns the ids of all exported communities, sorted.
func (g *GraphDB) ListCommunities(ctx context.Context) ([]string, error) {
	rows, err := g.db.QueryContext(ctx, `SELECT community_id FROM communities ORDER BY community_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list communities: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan community: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LoadSnapshot reads one exported community. It returns nil, nil if the
// community is not in the file.
func (g *GraphDB) LoadSnapshot(ctx context.Context, communityID string) (*Snapshot, error) {
	var (
		snap       Snapshot
		community  model.Community
		dateString string
		statsJSON  sql.NullString
	)
	err := g.db.QueryRowContext(ctx, `
	SELECT run_id, name, member_count, date_fetched, stats_json
	FROM communities
	WHERE community_id = ?
	`, communityID).Scan(&snap.RunID, &community.Name, &community.MemberCount, &dateString, &statsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get community: %w", err)
	}
	community.ID = communityID
	snap.DateFetched = parseTimestamp(dateString)

	if statsJSON.Valid && statsJSON.String != "" {
		var stats model.GraphStats
		if err := json.Unmarshal([]byte(statsJSON.String), &stats); err != nil {
			return nil, fmt.Errorf("failed to parse stats: %w", err)
		}
		snap.Stats = &stats
	}

	infos, err := g.loadMembers(ctx, communityID)
	if err != nil {
		return nil, err
	}
	community.Members = make([]string, len(infos))
	for i, info := range infos {
		community.Members[i] = info.PubKey
	}

	graph := model.NewCommunityGraph(community)
	for _, info := range infos {
		graph.NodesInfo = append(graph.NodesInfo, info)
		graph.Capacity = append(graph.Capacity, info.TotalCapacity)
	}

	channels, err := g.loadChannels(ctx, communityID)
	if err != nil {
		return nil, err
	}
	graph.Channels = append(graph.Channels, channels...)

	snap.Graph = graph
	return &snap, nil
}

func (g *GraphDB) loadMembers(ctx context.Context, communityID string) ([]model.NodeInfo, error) {
	rows, err := g.db.QueryContext(ctx, `
	SELECT pubkey, alias, color, total_capacity
	FROM members
	WHERE community_id = ?
	ORDER BY position
	`, communityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var infos []model.NodeInfo
	for rows.Next() {
		var info model.NodeInfo
		if err := rows.Scan(&info.PubKey, &info.Alias, &info.Color, &info.TotalCapacity); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

func (g *GraphDB) loadChannels(ctx context.Context, communityID string) ([]model.Channel, error) {
	rows, err := g.db.QueryContext(ctx, `
	SELECT short_channel_id, capacity, node1_pub, node2_pub, block_age
	FROM channels
	WHERE community_id = ?
	ORDER BY position
	`, communityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query channels: %w", err)
	}
	defer rows.Close()

	var channels []model.Channel
	for rows.Next() {
		var ch model.Channel
		if err := rows.Scan(&ch.ShortChannelID, &ch.Capacity, &ch.Node1Pub, &ch.Node2Pub, &ch.BlockAge); err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// timestampFormats contains the timestamp formats that may be stored.
// More specific formats come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp parses s with each of timestampFormats and returns the
// zero time if none match.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
