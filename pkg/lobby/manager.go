// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package lobby

import (
	"sync"
	"time"

	"github.com/matchforge/engine/pkg/envelope"
	"github.com/matchforge/engine/pkg/metrics"
	"github.com/matchforge/engine/pkg/mmerrors"
	"github.com/matchforge/engine/pkg/persistence"
	"github.com/matchforge/engine/pkg/queue"
	"github.com/matchforge/engine/pkg/rating"
)

// Manager drives lobbies through their lifecycle. It owns no in-memory
// state of its own (spec §3 "LobbyManager owns no state") — every call
// round-trips through persistence; the mutex here only serializes
// concurrent transitions on the same process.
type Manager struct {
	mu          sync.Mutex
	persistence persistence.Store
	algorithm   rating.Algorithm
	metrics     metrics.Collector
}

// NewManager constructs a LobbyManager backed by store, updating ratings
// with algorithm and reporting transitions/rating updates into collector.
func NewManager(store persistence.Store, algorithm rating.Algorithm, collector metrics.Collector) *Manager {
	return &Manager{persistence: store, algorithm: algorithm, metrics: collector}
}

// CreateFromMatch assembles a Lobby from a Matcher result and persists it.
func (m *Manager) CreateFromMatch(scope *envelope.Scope, result queue.MatchResult, format queue.MatchFormat, metadata Metadata) (Lobby, error) {
	l := FromMatchResult(result, format, metadata)

	if err := m.persistence.SaveLobby(scope.Ctx, toRecord(l)); err != nil {
		return Lobby{}, mmerrors.Persistence("SaveLobby", err)
	}

	scope.Log.WithField("lobbyID", l.ID).Info("lobby created")

	return l, nil
}

// Get loads a lobby by ID without mutating it.
func (m *Manager) Get(scope *envelope.Scope, lobbyID string) (Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.load(scope, lobbyID)
}

// MarkReady adds playerID to the lobby's ready set (idempotent). If the
// lobby is WaitingForReady and the set becomes full, it auto-transitions to
// Ready. Marking ready in any other state is silently accepted into the set
// without a transition (spec §4.3 pre-ready signaling).
func (m *Manager) MarkReady(scope *envelope.Scope, lobbyID, playerID string) (Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.load(scope, lobbyID)
	if err != nil {
		return Lobby{}, err
	}

	if !l.HasPlayer(playerID) {
		return Lobby{}, mmerrors.PlayerNotInLobby(playerID)
	}

	l.ReadyPlayers[playerID] = struct{}{}

	if l.State == WaitingForReady && l.AllReady() {
		m.metrics.AddLobbyTransition(l.State.String(), Ready.String())
		l.State = Ready
	}

	if err := m.persistence.SaveLobby(scope.Ctx, toRecord(l)); err != nil {
		return Lobby{}, mmerrors.Persistence("SaveLobby", err)
	}

	return l, nil
}

// Advance moves the lobby from Forming to WaitingForReady, the explicit
// transition called once all entries are assembled (spec §4.3).
func (m *Manager) Advance(scope *envelope.Scope, lobbyID string) (Lobby, error) {
	return m.transition(scope, lobbyID, WaitingForReady)
}

// Dispatch transitions Ready -> Dispatched, recording serverID in metadata.
func (m *Manager) Dispatch(scope *envelope.Scope, lobbyID, serverID string) (Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.load(scope, lobbyID)
	if err != nil {
		return Lobby{}, err
	}

	if !l.State.CanTransitionTo(Dispatched) {
		return Lobby{}, mmerrors.IllegalStateTransition(l.State.String(), Dispatched.String())
	}

	m.metrics.AddLobbyTransition(l.State.String(), Dispatched.String())
	l.State = Dispatched
	l.Metadata.ServerID = serverID

	if err := m.persistence.SaveLobby(scope.Ctx, toRecord(l)); err != nil {
		return Lobby{}, mmerrors.Persistence("SaveLobby", err)
	}

	return l, nil
}

// Close transitions the lobby to Closed from any state (cancellation is
// always permitted), archives it to match history, and deletes it from
// live storage.
func (m *Manager) Close(scope *envelope.Scope, lobbyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.load(scope, lobbyID)
	if err != nil {
		return err
	}

	m.metrics.AddLobbyTransition(l.State.String(), Closed.String())
	l.State = Closed

	if err := m.persistence.SaveMatchResult(scope.Ctx, persistence.MatchHistoryRecord{
		Lobby:    toRecord(l),
		ClosedAt: time.Now().UnixNano(),
	}); err != nil {
		return mmerrors.Persistence("SaveMatchResult", err)
	}

	if err := m.persistence.DeleteLobby(scope.Ctx, lobbyID); err != nil {
		return mmerrors.Persistence("DeleteLobby", err)
	}

	return nil
}

// UpdateRatings applies the team-vs-team rating update protocol (spec
// §4.6) for every player in the lobby, then transitions the lobby to
// Closed and archives it. Missing per-player ratings default to a fresh
// beginner rating rather than failing; a missing lobby is LobbyNotFound.
func (m *Manager) UpdateRatings(scope *envelope.Scope, lobbyID string, outcomes map[string]rating.Outcome) error {
	m.mu.Lock()
	l, err := m.load(scope, lobbyID)
	m.mu.Unlock()
	if err != nil {
		return err
	}

	deltas, err := m.computeRatingDeltas(scope, l, outcomes)
	if err != nil {
		return err
	}

	diff := make(map[string]float64, len(deltas))
	for playerID, newRating := range deltas {
		diff[playerID] = newRating.Rating - m.loadOrDefault(scope, playerID).Rating
	}

	for playerID, newRating := range deltas {
		if err := m.persistence.SavePlayerRating(scope.Ctx, playerID, newRating); err != nil {
			scope.Log.WithField("playerID", playerID).WithError(err).
				Error("failed to persist rating update; isolated to this player")
		}
	}

	m.metrics.AddRatingUpdate(m.algorithm.Name())

	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.AddLobbyTransition(l.State.String(), Closed.String())
	l.State = Closed

	if err := m.persistence.SaveMatchResult(scope.Ctx, persistence.MatchHistoryRecord{
		Lobby:      toRecord(l),
		ClosedAt:   time.Now().UnixNano(),
		RatingDiff: diff,
	}); err != nil {
		return mmerrors.Persistence("SaveMatchResult", err)
	}

	return m.persistence.DeleteLobby(scope.Ctx, lobbyID)
}

// computeRatingDeltas implements §4.6's team-outcome-majority, delta-based
// accumulation: for every unordered pair of distinct teams, every
// cross-team pair of players contributes an independent delta against the
// pre-match rating, summed rather than chained (chaining would double-count).
func (m *Manager) computeRatingDeltas(scope *envelope.Scope, l Lobby, outcomes map[string]rating.Outcome) (map[string]rating.Rating, error) {
	preMatch := make(map[string]rating.Rating, len(l.PlayerIDs))
	for _, playerID := range l.PlayerIDs {
		preMatch[playerID] = m.loadOrDefault(scope, playerID)
	}

	teamOutcome := make([]rating.Outcome, len(l.Teams))
	for i, team := range l.Teams {
		teamOutcome[i] = majorityOutcome(team, outcomes)
	}

	accumulated := make(map[string]float64, len(l.PlayerIDs))

	for i := 0; i < len(l.Teams); i++ {
		for j := i + 1; j < len(l.Teams); j++ {
			for _, a := range l.Teams[i] {
				for _, b := range l.Teams[j] {
					aNew := m.algorithm.NewRating(preMatch[a], preMatch[b], teamOutcome[i])
					bNew := m.algorithm.NewRating(preMatch[b], preMatch[a], teamOutcome[j])

					accumulated[a] += aNew.Rating - preMatch[a].Rating
					accumulated[b] += bNew.Rating - preMatch[b].Rating
				}
			}
		}
	}

	result := make(map[string]rating.Rating, len(l.PlayerIDs))
	for _, playerID := range l.PlayerIDs {
		pre := preMatch[playerID]
		result[playerID] = rating.Rating{
			Rating:     pre.Rating + accumulated[playerID],
			Deviation:  pre.Deviation,
			Volatility: pre.Volatility,
		}.Clamped()
	}

	return result, nil
}

func (m *Manager) loadOrDefault(scope *envelope.Scope, playerID string) rating.Rating {
	r, err := m.persistence.LoadPlayerRating(scope.Ctx, playerID)
	if err != nil || r == nil {
		return rating.Default()
	}

	return *r
}

// majorityOutcome derives a team's outcome from the majority of its
// players' individual outcomes, with Draw on an even split (spec §4.6,
// §9 open question 1 — the source's "first player's outcome" is treated
// as a bug).
func majorityOutcome(team []string, outcomes map[string]rating.Outcome) rating.Outcome {
	wins, losses, draws := 0, 0, 0
	for _, playerID := range team {
		switch outcomes[playerID] {
		case rating.Win:
			wins++
		case rating.Loss:
			losses++
		default:
			draws++
		}
	}

	switch {
	case wins > losses && wins > draws:
		return rating.Win
	case losses > wins && losses > draws:
		return rating.Loss
	default:
		return rating.Draw
	}
}

func (m *Manager) transition(scope *envelope.Scope, lobbyID string, next State) (Lobby, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.load(scope, lobbyID)
	if err != nil {
		return Lobby{}, err
	}

	if !l.State.CanTransitionTo(next) {
		return Lobby{}, mmerrors.IllegalStateTransition(l.State.String(), next.String())
	}

	m.metrics.AddLobbyTransition(l.State.String(), next.String())
	l.State = next

	if err := m.persistence.SaveLobby(scope.Ctx, toRecord(l)); err != nil {
		return Lobby{}, mmerrors.Persistence("SaveLobby", err)
	}

	return l, nil
}

// load must be called with m.mu held.
func (m *Manager) load(scope *envelope.Scope, lobbyID string) (Lobby, error) {
	record, err := m.persistence.LoadLobby(scope.Ctx, lobbyID)
	if err != nil {
		return Lobby{}, mmerrors.Persistence("LoadLobby", err)
	}
	if record == nil {
		return Lobby{}, mmerrors.LobbyNotFound(lobbyID)
	}

	return fromRecord(*record), nil
}

func toRecord(l Lobby) persistence.LobbyRecord {
	ready := make([]string, 0, len(l.ReadyPlayers))
	for p := range l.ReadyPlayers {
		ready = append(ready, p)
	}

	return persistence.LobbyRecord{
		ID:           l.ID,
		MatchID:      l.MatchID,
		State:        l.State.String(),
		Teams:        l.Teams,
		PlayerIDs:    l.PlayerIDs,
		ReadyPlayers: ready,
		CreatedAt:    l.CreatedAt.UnixNano(),
		Metadata: map[string]interface{}{
			"queueName": l.Metadata.QueueName,
			"serverID":  l.Metadata.ServerID,
			"custom":    l.Metadata.Custom,
		},
	}
}

func fromRecord(r persistence.LobbyRecord) Lobby {
	ready := make(map[string]struct{}, len(r.ReadyPlayers))
	for _, p := range r.ReadyPlayers {
		ready[p] = struct{}{}
	}

	metadata := Metadata{}
	if r.Metadata != nil {
		if v, ok := r.Metadata["queueName"].(string); ok {
			metadata.QueueName = v
		}
		if v, ok := r.Metadata["serverID"].(string); ok {
			metadata.ServerID = v
		}
		if v, ok := r.Metadata["custom"].(map[string]interface{}); ok {
			metadata.Custom = v
		}
	}

	return Lobby{
		ID:           r.ID,
		MatchID:      r.MatchID,
		State:        stateFromString(r.State),
		Teams:        r.Teams,
		PlayerIDs:    r.PlayerIDs,
		ReadyPlayers: ready,
		CreatedAt:    time.Unix(0, r.CreatedAt),
		Metadata:     metadata,
	}
}

func stateFromString(s string) State {
	switch s {
	case "Forming":
		return Forming
	case "WaitingForReady":
		return WaitingForReady
	case "Ready":
		return Ready
	case "Dispatched":
		return Dispatched
	case "Closed":
		return Closed
	default:
		return Forming
	}
}
