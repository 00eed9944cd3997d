// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package postgres implements the persistence.Store contract against
// PostgreSQL, for deployments that want queue/lobby/rating state in a
// durable relational store instead of Redis. Schema and upsert shape are
// ported from original_source/src/persistence/postgres.rs into the
// pgx/v5 pool idiom.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matchforge/engine/pkg/mmerrors"
	"github.com/matchforge/engine/pkg/persistence"
	"github.com/matchforge/engine/pkg/rating"
)

// Store is a persistence.Store backed by a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps pool as a persistence.Store. Callers must call InitSchema once
// before first use against a fresh database.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// InitSchema creates the tables and indexes this store depends on, mirroring
// the original adapter's init_schema migration. Safe to call repeatedly.
func (s *Store) InitSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schemaDDL)
	if err != nil {
		return mmerrors.Persistence("init schema", err)
	}

	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS player_ratings (
	player_id  TEXT PRIMARY KEY,
	rating     DOUBLE PRECISION NOT NULL,
	deviation  DOUBLE PRECISION NOT NULL,
	volatility DOUBLE PRECISION NOT NULL,
	updated_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_player_ratings_updated_at ON player_ratings (updated_at);

CREATE TABLE IF NOT EXISTS queue_entries (
	id             TEXT PRIMARY KEY,
	queue_name     TEXT NOT NULL,
	player_ids     TEXT[] NOT NULL,
	party_id       TEXT NOT NULL DEFAULT '',
	rating         DOUBLE PRECISION NOT NULL,
	deviation      DOUBLE PRECISION NOT NULL,
	volatility     DOUBLE PRECISION NOT NULL,
	joined_at      BIGINT NOT NULL,
	roles          TEXT[] NOT NULL DEFAULT '{}',
	region         TEXT NOT NULL DEFAULT '',
	has_region     BOOLEAN NOT NULL DEFAULT FALSE,
	metadata       JSONB
);
CREATE INDEX IF NOT EXISTS idx_queue_entries_queue_name ON queue_entries (queue_name, joined_at);
CREATE INDEX IF NOT EXISTS idx_queue_entries_player_ids ON queue_entries USING GIN (player_ids);

CREATE TABLE IF NOT EXISTS parties (
	id         TEXT PRIMARY KEY,
	leader_id  TEXT NOT NULL,
	member_ids TEXT[] NOT NULL,
	max_size   INTEGER NOT NULL,
	created_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_parties_member_ids ON parties USING GIN (member_ids);

CREATE TABLE IF NOT EXISTS lobbies (
	id             TEXT PRIMARY KEY,
	match_id       TEXT NOT NULL,
	state          TEXT NOT NULL,
	teams          JSONB NOT NULL,
	player_ids     TEXT[] NOT NULL,
	ready_players  TEXT[] NOT NULL DEFAULT '{}',
	created_at     BIGINT NOT NULL,
	metadata       JSONB
);
CREATE INDEX IF NOT EXISTS idx_lobbies_match_id ON lobbies (match_id);
CREATE INDEX IF NOT EXISTS idx_lobbies_state ON lobbies (state);
CREATE INDEX IF NOT EXISTS idx_lobbies_created_at ON lobbies (created_at);
CREATE INDEX IF NOT EXISTS idx_lobbies_player_ids ON lobbies USING GIN (player_ids);

CREATE TABLE IF NOT EXISTS match_history (
	id           BIGSERIAL PRIMARY KEY,
	match_id     TEXT NOT NULL,
	lobby_data   JSONB NOT NULL,
	rating_diff  JSONB,
	completed_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_match_history_match_id ON match_history (match_id);
CREATE INDEX IF NOT EXISTS idx_match_history_completed_at ON match_history (completed_at);
`

func (s *Store) SavePlayerRating(ctx context.Context, playerID string, r rating.Rating) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO player_ratings (player_id, rating, deviation, volatility, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (player_id) DO UPDATE SET
			rating = EXCLUDED.rating,
			deviation = EXCLUDED.deviation,
			volatility = EXCLUDED.volatility,
			updated_at = EXCLUDED.updated_at
	`, playerID, r.Rating, r.Deviation, r.Volatility, time.Now().UnixNano())
	if err != nil {
		return mmerrors.Persistence("upsert player_ratings", err)
	}

	return nil
}

func (s *Store) LoadPlayerRating(ctx context.Context, playerID string) (*rating.Rating, error) {
	var r rating.Rating

	err := s.pool.QueryRow(ctx, `
		SELECT rating, deviation, volatility FROM player_ratings WHERE player_id = $1
	`, playerID).Scan(&r.Rating, &r.Deviation, &r.Volatility)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mmerrors.Persistence("select player_ratings", err)
	}

	return &r, nil
}

func (s *Store) SaveQueueEntry(ctx context.Context, entry persistence.QueueEntryRecord) error {
	metadata, err := marshalMetadata(entry.Custom)
	if err != nil {
		return err
	}

	_, execErr := s.pool.Exec(ctx, `
		INSERT INTO queue_entries (
			id, queue_name, player_ids, party_id, rating, deviation, volatility,
			joined_at, roles, region, has_region, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			queue_name = EXCLUDED.queue_name,
			player_ids = EXCLUDED.player_ids,
			party_id = EXCLUDED.party_id,
			rating = EXCLUDED.rating,
			deviation = EXCLUDED.deviation,
			volatility = EXCLUDED.volatility,
			joined_at = EXCLUDED.joined_at,
			roles = EXCLUDED.roles,
			region = EXCLUDED.region,
			has_region = EXCLUDED.has_region,
			metadata = EXCLUDED.metadata
	`,
		entry.ID, entry.QueueName, entry.PlayerIDs, entry.PartyID,
		entry.Rating.Rating, entry.Rating.Deviation, entry.Rating.Volatility,
		entry.JoinedAt, entry.Roles, entry.Region, entry.HasRegion, metadata,
	)
	if execErr != nil {
		return mmerrors.Persistence("upsert queue_entries", execErr)
	}

	return nil
}

func (s *Store) LoadQueueEntries(ctx context.Context, queueName string) ([]persistence.QueueEntryRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, queue_name, player_ids, party_id, rating, deviation, volatility,
		       joined_at, roles, region, has_region, metadata
		FROM queue_entries WHERE queue_name = $1 ORDER BY joined_at ASC
	`, queueName)
	if err != nil {
		return nil, mmerrors.Persistence("select queue_entries", err)
	}
	defer rows.Close()

	var entries []persistence.QueueEntryRecord

	for rows.Next() {
		var entry persistence.QueueEntryRecord
		var metadata []byte

		if err := rows.Scan(
			&entry.ID, &entry.QueueName, &entry.PlayerIDs, &entry.PartyID,
			&entry.Rating.Rating, &entry.Rating.Deviation, &entry.Rating.Volatility,
			&entry.JoinedAt, &entry.Roles, &entry.Region, &entry.HasRegion, &metadata,
		); err != nil {
			return nil, mmerrors.Persistence("scan queue_entries", err)
		}

		if entry.Custom, err = unmarshalMetadata(metadata); err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, mmerrors.Persistence("iterate queue_entries", err)
	}

	return entries, nil
}

func (s *Store) DeleteQueueEntry(ctx context.Context, entryID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM queue_entries WHERE id = $1`, entryID)
	if err != nil {
		return mmerrors.Persistence("delete queue_entries", err)
	}

	return nil
}

func (s *Store) SaveParty(ctx context.Context, p persistence.PartyRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO parties (id, leader_id, member_ids, max_size, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			leader_id = EXCLUDED.leader_id,
			member_ids = EXCLUDED.member_ids,
			max_size = EXCLUDED.max_size
	`, p.ID, p.LeaderID, p.Members, p.MaxSize, p.CreatedAt)
	if err != nil {
		return mmerrors.Persistence("upsert parties", err)
	}

	return nil
}

func (s *Store) LoadParty(ctx context.Context, partyID string) (*persistence.PartyRecord, error) {
	var p persistence.PartyRecord

	err := s.pool.QueryRow(ctx, `
		SELECT id, leader_id, member_ids, max_size, created_at FROM parties WHERE id = $1
	`, partyID).Scan(&p.ID, &p.LeaderID, &p.Members, &p.MaxSize, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mmerrors.Persistence("select parties", err)
	}

	return &p, nil
}

func (s *Store) DeleteParty(ctx context.Context, partyID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM parties WHERE id = $1`, partyID)
	if err != nil {
		return mmerrors.Persistence("delete parties", err)
	}

	return nil
}

func (s *Store) SaveLobby(ctx context.Context, l persistence.LobbyRecord) error {
	teams, err := json.Marshal(l.Teams)
	if err != nil {
		return mmerrors.Persistence("marshal teams", err)
	}

	metadata, err := marshalMetadata(l.Metadata)
	if err != nil {
		return err
	}

	_, execErr := s.pool.Exec(ctx, `
		INSERT INTO lobbies (id, match_id, state, teams, player_ids, ready_players, created_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			match_id = EXCLUDED.match_id,
			state = EXCLUDED.state,
			teams = EXCLUDED.teams,
			player_ids = EXCLUDED.player_ids,
			ready_players = EXCLUDED.ready_players,
			metadata = EXCLUDED.metadata
	`, l.ID, l.MatchID, l.State, teams, l.PlayerIDs, l.ReadyPlayers, l.CreatedAt, metadata)
	if execErr != nil {
		return mmerrors.Persistence("upsert lobbies", execErr)
	}

	return nil
}

func (s *Store) LoadLobby(ctx context.Context, lobbyID string) (*persistence.LobbyRecord, error) {
	var l persistence.LobbyRecord
	var teams, metadata []byte

	err := s.pool.QueryRow(ctx, `
		SELECT id, match_id, state, teams, player_ids, ready_players, created_at, metadata
		FROM lobbies WHERE id = $1
	`, lobbyID).Scan(&l.ID, &l.MatchID, &l.State, &teams, &l.PlayerIDs, &l.ReadyPlayers, &l.CreatedAt, &metadata)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mmerrors.Persistence("select lobbies", err)
	}

	if err := json.Unmarshal(teams, &l.Teams); err != nil {
		return nil, mmerrors.Persistence("unmarshal teams", err)
	}

	if l.Metadata, err = unmarshalMetadata(metadata); err != nil {
		return nil, err
	}

	return &l, nil
}

func (s *Store) DeleteLobby(ctx context.Context, lobbyID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM lobbies WHERE id = $1`, lobbyID)
	if err != nil {
		return mmerrors.Persistence("delete lobbies", err)
	}

	return nil
}

// SaveMatchResult archives record as an append-only row (spec §6), mirroring
// the source's match_history table. Unlike the Rust adapter there is no
// companion player_match_history fan-out: the Store contract exposes a
// single record per call with no per-player breakdown to fan out from.
func (s *Store) SaveMatchResult(ctx context.Context, record persistence.MatchHistoryRecord) error {
	lobbyData, err := json.Marshal(record.Lobby)
	if err != nil {
		return mmerrors.Persistence("marshal lobby_data", err)
	}

	ratingDiff, err := json.Marshal(record.RatingDiff)
	if err != nil {
		return mmerrors.Persistence("marshal rating_diff", err)
	}

	_, execErr := s.pool.Exec(ctx, `
		INSERT INTO match_history (match_id, lobby_data, rating_diff, completed_at)
		VALUES ($1, $2, $3, $4)
	`, record.Lobby.MatchID, lobbyData, ratingDiff, record.ClosedAt)
	if execErr != nil {
		return mmerrors.Persistence("insert match_history", execErr)
	}

	return nil
}

func marshalMetadata(m map[string]interface{}) ([]byte, error) {
	if m == nil {
		return nil, nil
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, mmerrors.Persistence("marshal metadata", err)
	}

	return data, nil
}

func unmarshalMetadata(data []byte) (map[string]interface{}, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, mmerrors.Persistence("unmarshal metadata", err)
	}

	return m, nil
}
