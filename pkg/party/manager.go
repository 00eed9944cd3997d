// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package party

import (
	"sync"

	"github.com/matchforge/engine/pkg/envelope"
	"github.com/matchforge/engine/pkg/mmerrors"
	"github.com/matchforge/engine/pkg/persistence"
	"github.com/matchforge/engine/pkg/rating"
)

// Manager owns the live party index and the playerID->partyID reverse
// index that enforces "a player belongs to at most one party" (spec §3, C6).
type Manager struct {
	mu             sync.RWMutex
	parties        map[string]Party
	playerToParty  map[string]string
	persistence    persistence.Store
	defaultPolicy  RatingPolicy
}

func toRecord(p Party) persistence.PartyRecord {
	return persistence.PartyRecord{
		ID:        p.ID,
		LeaderID:  p.LeaderID,
		Members:   p.Snapshot(),
		MaxSize:   p.MaxSize,
		CreatedAt: p.CreatedAt.UnixNano(),
	}
}

// NewManager constructs a PartyManager backed by store.
func NewManager(store persistence.Store, defaultPolicy RatingPolicy) *Manager {
	if defaultPolicy == nil {
		defaultPolicy = AveragePolicy{}
	}

	return &Manager{
		parties:       make(map[string]Party),
		playerToParty: make(map[string]string),
		persistence:   store,
		defaultPolicy: defaultPolicy,
	}
}

// Create starts a new party led by leaderID. Fails with AlreadyInParty if
// the leader is already in one.
func (m *Manager) Create(scope *envelope.Scope, leaderID string, maxSize int) (Party, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.playerToParty[leaderID]; ok {
		return Party{}, mmerrors.AlreadyInParty(leaderID)
	}

	p := New(leaderID, maxSize)
	m.parties[p.ID] = p
	m.playerToParty[leaderID] = p.ID

	if err := m.persistence.SaveParty(scope.Ctx, toRecord(p)); err != nil {
		delete(m.parties, p.ID)
		delete(m.playerToParty, leaderID)

		return Party{}, mmerrors.Persistence("SaveParty", err)
	}

	scope.Log.WithField("partyID", p.ID).Info("party created")

	return p, nil
}

// AddMember adds playerID to partyID, failing hard on any invariant
// violation. Use AddMemberIdempotent for the idempotent variant spec §4.7
// mentions ("the core exposes both variants").
func (m *Manager) AddMember(scope *envelope.Scope, partyID, playerID string) (Party, error) {
	return m.addMember(scope, partyID, playerID, false)
}

// AddMemberIdempotent is AddMember but silently succeeds (returns the
// current party, no error) if playerID is already a member.
func (m *Manager) AddMemberIdempotent(scope *envelope.Scope, partyID, playerID string) (Party, error) {
	return m.addMember(scope, partyID, playerID, true)
}

func (m *Manager) addMember(scope *envelope.Scope, partyID, playerID string, idempotent bool) (Party, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.parties[partyID]
	if !ok {
		return Party{}, mmerrors.PartyNotFound(partyID)
	}

	if p.HasMember(playerID) {
		if idempotent {
			return p, nil
		}

		return Party{}, mmerrors.AlreadyMember(playerID)
	}

	if existing, inAnotherParty := m.playerToParty[playerID]; inAnotherParty && existing != partyID {
		return Party{}, mmerrors.AlreadyInParty(playerID)
	}

	if p.IsFull() {
		return Party{}, mmerrors.PartyFull(partyID)
	}

	p.Members = append(p.Members, playerID)
	m.parties[partyID] = p
	m.playerToParty[playerID] = partyID

	if err := m.persistence.SaveParty(scope.Ctx, toRecord(p)); err != nil {
		return Party{}, mmerrors.Persistence("SaveParty", err)
	}

	return p, nil
}

// RemoveMember removes playerID from partyID. If the leader leaves or the
// party becomes empty, the party disbands: it is deleted and every reverse
// index entry for its former members is cleared.
func (m *Manager) RemoveMember(scope *envelope.Scope, partyID, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.parties[partyID]
	if !ok {
		return mmerrors.PartyNotFound(partyID)
	}

	if !p.HasMember(playerID) {
		return mmerrors.NotFound("Player", playerID)
	}

	remaining := make([]string, 0, len(p.Members)-1)
	for _, id := range p.Members {
		if id != playerID {
			remaining = append(remaining, id)
		}
	}
	p.Members = remaining
	delete(m.playerToParty, playerID)

	disband := len(p.Members) == 0 || playerID == p.LeaderID
	if disband {
		delete(m.parties, partyID)
		for _, id := range p.Members {
			delete(m.playerToParty, id)
		}

		if err := m.persistence.DeleteParty(scope.Ctx, partyID); err != nil {
			return mmerrors.Persistence("DeleteParty", err)
		}

		scope.Log.WithField("partyID", partyID).Info("party disbanded")

		return nil
	}

	m.parties[partyID] = p

	if err := m.persistence.SaveParty(scope.Ctx, toRecord(p)); err != nil {
		return mmerrors.Persistence("SaveParty", err)
	}

	return nil
}

// PartyRating composes the party's member ratings via policy (or the
// manager's default policy if policy is nil), loading each member's
// rating from the manager's persistence store. Members missing a stored
// rating are treated as default beginners.
func (m *Manager) PartyRating(scope *envelope.Scope, partyID string, policy RatingPolicy) (rating.Rating, error) {
	m.mu.RLock()
	p, ok := m.parties[partyID]
	m.mu.RUnlock()

	if !ok {
		return rating.Rating{}, mmerrors.PartyNotFound(partyID)
	}

	if policy == nil {
		policy = m.defaultPolicy
	}

	ratings := make([]rating.Rating, 0, len(p.Members))
	for _, memberID := range p.Members {
		r, err := m.persistence.LoadPlayerRating(scope.Ctx, memberID)
		if err != nil {
			return rating.Rating{}, mmerrors.Persistence("LoadPlayerRating", err)
		}
		if r == nil {
			def := rating.Default()
			r = &def
		}
		ratings = append(ratings, *r)
	}

	return policy.PartyRating(ratings), nil
}

// Get returns the party for playerID, if any.
func (m *Manager) Get(playerID string) (Party, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	partyID, ok := m.playerToParty[playerID]
	if !ok {
		return Party{}, false
	}

	p, ok := m.parties[partyID]

	return p, ok
}

// GetByID returns the party by ID.
func (m *Manager) GetByID(partyID string) (Party, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.parties[partyID]

	return p, ok
}
