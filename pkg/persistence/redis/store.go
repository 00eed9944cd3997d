// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package redis implements the persistence.Store contract against Redis, for
// deployments sharing queue/lobby state across multiple engine processes.
// Ported from original_source/src/persistence/redis.rs's key layout (JSON
// blobs under entity-prefixed keys, sorted sets for queue ordering, player
// indexes for O(1) reverse lookup) into the go-redis/v9 client idiom.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matchforge/engine/pkg/mmerrors"
	"github.com/matchforge/engine/pkg/persistence"
	"github.com/matchforge/engine/pkg/rating"
)

// Store is a persistence.Store backed by a Redis client.
type Store struct {
	rdb       *redis.Client
	ratingTTL time.Duration
}

// New wraps rdb as a persistence.Store. ratingTTL of zero means player
// ratings never expire.
func New(rdb *redis.Client, ratingTTL time.Duration) *Store {
	return &Store{rdb: rdb, ratingTTL: ratingTTL}
}

func playerRatingKey(playerID string) string { return fmt.Sprintf("player_rating:%s", playerID) }
func queueKey(queueName string) string       { return fmt.Sprintf("queue:%s", queueName) }
func queueEntryKey(entryID string) string    { return fmt.Sprintf("queue_entry:%s", entryID) }
func playerQueueKey(playerID string) string  { return fmt.Sprintf("player_queue:%s", playerID) }
func partyKey(partyID string) string         { return fmt.Sprintf("party:%s", partyID) }
func memberPartyKey(playerID string) string  { return fmt.Sprintf("member_party:%s", playerID) }
func lobbyKey(lobbyID string) string         { return fmt.Sprintf("lobby:%s", lobbyID) }
func matchHistoryKey() string                { return "match_history" }

func storeJSON(ctx context.Context, rdb *redis.Client, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return mmerrors.Persistence("marshal", err)
	}

	if err := rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		return mmerrors.Persistence("SET "+key, err)
	}

	return nil
}

// loadJSON returns (false, nil) on a cache miss rather than an error, so
// callers can distinguish "not found" from a transport failure.
func loadJSON(ctx context.Context, rdb *redis.Client, key string, dest interface{}) (bool, error) {
	data, err := rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, mmerrors.Persistence("GET "+key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, mmerrors.Persistence("unmarshal "+key, err)
	}

	return true, nil
}

func (s *Store) SavePlayerRating(ctx context.Context, playerID string, r rating.Rating) error {
	return storeJSON(ctx, s.rdb, playerRatingKey(playerID), r, s.ratingTTL)
}

func (s *Store) LoadPlayerRating(ctx context.Context, playerID string) (*rating.Rating, error) {
	var r rating.Rating

	found, err := loadJSON(ctx, s.rdb, playerRatingKey(playerID), &r)
	if err != nil || !found {
		return nil, err
	}

	return &r, nil
}

// SaveQueueEntry stores the entry and adds it to queueName's sorted set,
// scored by join time, plus a player->entry index key per member, which
// DeleteQueueEntry removes again.
func (s *Store) SaveQueueEntry(ctx context.Context, entry persistence.QueueEntryRecord) error {
	if err := storeJSON(ctx, s.rdb, queueEntryKey(entry.ID), entry, 0); err != nil {
		return err
	}

	if err := s.rdb.ZAdd(ctx, queueKey(entry.QueueName), redis.Z{
		Score:  float64(entry.JoinedAt),
		Member: entry.ID,
	}).Err(); err != nil {
		return mmerrors.Persistence("ZADD", err)
	}

	for _, playerID := range entry.PlayerIDs {
		if err := s.rdb.Set(ctx, playerQueueKey(playerID), entry.ID, 0).Err(); err != nil {
			return mmerrors.Persistence("SET "+playerQueueKey(playerID), err)
		}
	}

	return nil
}

func (s *Store) LoadQueueEntries(ctx context.Context, queueName string) ([]persistence.QueueEntryRecord, error) {
	entryIDs, err := s.rdb.ZRange(ctx, queueKey(queueName), 0, -1).Result()
	if err != nil {
		return nil, mmerrors.Persistence("ZRANGE", err)
	}

	entries := make([]persistence.QueueEntryRecord, 0, len(entryIDs))
	for _, id := range entryIDs {
		var entry persistence.QueueEntryRecord

		found, err := loadJSON(ctx, s.rdb, queueEntryKey(id), &entry)
		if err != nil {
			return nil, err
		}
		if found {
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

// DeleteQueueEntry removes entryID from its queue's sorted set and deletes
// both the entry and its player index entries.
func (s *Store) DeleteQueueEntry(ctx context.Context, entryID string) error {
	var entry persistence.QueueEntryRecord

	found, err := loadJSON(ctx, s.rdb, queueEntryKey(entryID), &entry)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	if err := s.rdb.ZRem(ctx, queueKey(entry.QueueName), entryID).Err(); err != nil {
		return mmerrors.Persistence("ZREM", err)
	}

	if err := s.rdb.Del(ctx, queueEntryKey(entryID)).Err(); err != nil {
		return mmerrors.Persistence("DEL", err)
	}

	for _, playerID := range entry.PlayerIDs {
		if err := s.rdb.Del(ctx, playerQueueKey(playerID)).Err(); err != nil {
			return mmerrors.Persistence("DEL "+playerQueueKey(playerID), err)
		}
	}

	return nil
}

func (s *Store) SaveParty(ctx context.Context, p persistence.PartyRecord) error {
	if err := storeJSON(ctx, s.rdb, partyKey(p.ID), p, 0); err != nil {
		return err
	}

	for _, memberID := range p.Members {
		if err := s.rdb.Set(ctx, memberPartyKey(memberID), p.ID, 0).Err(); err != nil {
			return mmerrors.Persistence("SET "+memberPartyKey(memberID), err)
		}
	}

	return nil
}

func (s *Store) LoadParty(ctx context.Context, partyID string) (*persistence.PartyRecord, error) {
	var p persistence.PartyRecord

	found, err := loadJSON(ctx, s.rdb, partyKey(partyID), &p)
	if err != nil || !found {
		return nil, err
	}

	return &p, nil
}

func (s *Store) DeleteParty(ctx context.Context, partyID string) error {
	var p persistence.PartyRecord

	found, err := loadJSON(ctx, s.rdb, partyKey(partyID), &p)
	if err != nil {
		return err
	}
	if found {
		for _, memberID := range p.Members {
			if err := s.rdb.Del(ctx, memberPartyKey(memberID)).Err(); err != nil {
				return mmerrors.Persistence("DEL "+memberPartyKey(memberID), err)
			}
		}
	}

	if err := s.rdb.Del(ctx, partyKey(partyID)).Err(); err != nil {
		return mmerrors.Persistence("DEL", err)
	}

	return nil
}

func (s *Store) SaveLobby(ctx context.Context, l persistence.LobbyRecord) error {
	return storeJSON(ctx, s.rdb, lobbyKey(l.ID), l, 0)
}

func (s *Store) LoadLobby(ctx context.Context, lobbyID string) (*persistence.LobbyRecord, error) {
	var l persistence.LobbyRecord

	found, err := loadJSON(ctx, s.rdb, lobbyKey(lobbyID), &l)
	if err != nil || !found {
		return nil, err
	}

	return &l, nil
}

func (s *Store) DeleteLobby(ctx context.Context, lobbyID string) error {
	if err := s.rdb.Del(ctx, lobbyKey(lobbyID)).Err(); err != nil {
		return mmerrors.Persistence("DEL", err)
	}

	return nil
}

// SaveMatchResult archives record to a capped list (spec §6): the most
// recent 1000 matches, newest first, mirroring the source's
// lpush+ltrim history trimming.
func (s *Store) SaveMatchResult(ctx context.Context, record persistence.MatchHistoryRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return mmerrors.Persistence("marshal", err)
	}

	if err := s.rdb.LPush(ctx, matchHistoryKey(), data).Err(); err != nil {
		return mmerrors.Persistence("LPUSH", err)
	}

	if err := s.rdb.LTrim(ctx, matchHistoryKey(), 0, 999).Err(); err != nil {
		return mmerrors.Persistence("LTRIM", err)
	}

	return nil
}
