// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package memory implements the persistence.Store contract in-process, for
// development and tests. Ported from
// original_source/src/persistence/memory.rs into the teacher's
// mutex-guarded-map idiom. Player ratings live in a TTL cache (go-cache) so a
// long-lived dev process doesn't accumulate ratings for players who never
// come back; every other record is kept for the process lifetime.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/matchforge/engine/pkg/persistence"
	"github.com/matchforge/engine/pkg/rating"
)

// Store is an in-memory persistence.Store. Safe for concurrent use.
type Store struct {
	ratings *cache.Cache

	mu            sync.RWMutex
	queueEntries  map[string]map[string]persistence.QueueEntryRecord // queueName -> entryID -> record
	parties       map[string]persistence.PartyRecord
	lobbies       map[string]persistence.LobbyRecord
	matchHistory  []persistence.MatchHistoryRecord
}

// New constructs an empty Store. ratingTTL of zero disables rating
// expiration.
func New(ratingTTL time.Duration) *Store {
	expiration := ratingTTL
	if expiration <= 0 {
		expiration = cache.NoExpiration
	}

	return &Store{
		ratings:      cache.New(expiration, expiration),
		queueEntries: make(map[string]map[string]persistence.QueueEntryRecord),
		parties:      make(map[string]persistence.PartyRecord),
		lobbies:      make(map[string]persistence.LobbyRecord),
	}
}

func (s *Store) SavePlayerRating(_ context.Context, playerID string, r rating.Rating) error {
	s.ratings.SetDefault(playerID, r)

	return nil
}

func (s *Store) LoadPlayerRating(_ context.Context, playerID string) (*rating.Rating, error) {
	v, ok := s.ratings.Get(playerID)
	if !ok {
		return nil, nil
	}

	r, _ := v.(rating.Rating)

	return &r, nil
}

func (s *Store) SaveQueueEntry(_ context.Context, entry persistence.QueueEntryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.queueEntries[entry.QueueName]; !ok {
		s.queueEntries[entry.QueueName] = make(map[string]persistence.QueueEntryRecord)
	}
	s.queueEntries[entry.QueueName][entry.ID] = entry

	return nil
}

func (s *Store) LoadQueueEntries(_ context.Context, queueName string) ([]persistence.QueueEntryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID := s.queueEntries[queueName]
	entries := make([]persistence.QueueEntryRecord, 0, len(byID))
	for _, e := range byID {
		entries = append(entries, e)
	}

	return entries, nil
}

func (s *Store) DeleteQueueEntry(_ context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, byID := range s.queueEntries {
		delete(byID, entryID)
	}

	return nil
}

func (s *Store) SaveParty(_ context.Context, p persistence.PartyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.parties[p.ID] = p

	return nil
}

func (s *Store) LoadParty(_ context.Context, partyID string) (*persistence.PartyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.parties[partyID]
	if !ok {
		return nil, nil
	}

	return &p, nil
}

func (s *Store) DeleteParty(_ context.Context, partyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.parties, partyID)

	return nil
}

func (s *Store) SaveLobby(_ context.Context, l persistence.LobbyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lobbies[l.ID] = l

	return nil
}

func (s *Store) LoadLobby(_ context.Context, lobbyID string) (*persistence.LobbyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.lobbies[lobbyID]
	if !ok {
		return nil, nil
	}

	return &l, nil
}

func (s *Store) DeleteLobby(_ context.Context, lobbyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.lobbies, lobbyID)

	return nil
}

func (s *Store) SaveMatchResult(_ context.Context, record persistence.MatchHistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.matchHistory = append(s.matchHistory, record)

	return nil
}

// MatchHistory returns a snapshot of archived match results, newest last.
// Not part of the Store contract; exposed for tests and admin tooling.
func (s *Store) MatchHistory() []persistence.MatchHistoryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]persistence.MatchHistoryRecord, len(s.matchHistory))
	copy(out, s.matchHistory)

	return out
}
