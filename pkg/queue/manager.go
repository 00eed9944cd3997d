// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package queue

import (
	"sync"
	"time"

	"github.com/matchforge/engine/pkg/common"
	"github.com/matchforge/engine/pkg/envelope"
	"github.com/matchforge/engine/pkg/metrics"
	"github.com/matchforge/engine/pkg/mmerrors"
	"github.com/matchforge/engine/pkg/persistence"
	"github.com/matchforge/engine/pkg/rating"
)

// Config describes a registered queue: its match format and matching
// constraints.
type Config struct {
	Name        string
	Format      MatchFormat
	Constraints MatchConstraints
}

// queueState is the live, in-memory projection of one named queue. Its own
// lock serializes join/leave/findMatches/consume for that queue; there is no
// lock shared across queues (spec §5).
type queueState struct {
	mu      sync.RWMutex
	config  Config
	entries []Entry
}

// Manager maintains named queues plus a process-wide playerToEntry index
// enforcing at-most-once queue membership across every queue (spec §4.5,
// §5's "only cross-queue synchronization").
type Manager struct {
	persistence persistence.Store
	matcher     Matcher
	metrics     metrics.Collector

	queuesMu sync.RWMutex
	queues   map[string]*queueState

	indexMu      sync.Mutex
	playerToEntry map[string]string // playerID -> queueName, used only to guard global uniqueness
}

// NewManager constructs an empty QueueManager backed by store, reporting
// queue depth into collector.
func NewManager(store persistence.Store, collector metrics.Collector) *Manager {
	return &Manager{
		persistence:   store,
		metrics:       collector,
		queues:        make(map[string]*queueState),
		playerToEntry: make(map[string]string),
	}
}

// RegisterQueue creates a named queue. Fails with DuplicateQueue if one
// already exists under that name.
func (m *Manager) RegisterQueue(scope *envelope.Scope, config Config) error {
	m.queuesMu.Lock()
	defer m.queuesMu.Unlock()

	if _, ok := m.queues[config.Name]; ok {
		return mmerrors.DuplicateQueue(config.Name)
	}

	m.queues[config.Name] = &queueState{config: config}

	scope.Log.WithField("queue", config.Name).Info("queue registered")

	return nil
}

func (m *Manager) queue(queueName string) (*queueState, error) {
	m.queuesMu.RLock()
	defer m.queuesMu.RUnlock()

	q, ok := m.queues[queueName]
	if !ok {
		return nil, mmerrors.QueueNotFound(queueName)
	}

	return q, nil
}

// Format returns the registered MatchFormat for queueName, so callers like
// the Runner can build lobbies without duplicating queue configuration.
func (m *Manager) Format(queueName string) (MatchFormat, error) {
	q, err := m.queue(queueName)
	if err != nil {
		return MatchFormat{}, err
	}

	return q.config.Format, nil
}

// QueueNames returns every registered queue name, unordered.
func (m *Manager) QueueNames() []string {
	m.queuesMu.RLock()
	defer m.queuesMu.RUnlock()

	names := make([]string, 0, len(m.queues))
	for name := range m.queues {
		names = append(names, name)
	}

	return names
}

// JoinSolo admits a single player into queueName. Fails with
// AlreadyInQueue if the player is already queued anywhere.
func (m *Manager) JoinSolo(scope *envelope.Scope, queueName, playerID string, r rating.Rating, metadata EntryMetadata) (Entry, error) {
	entry := Entry{
		ID:        common.GenerateULID(time.Now()),
		QueueName: queueName,
		PlayerIDs: []string{playerID},
		Rating:    r,
		JoinedAt:  time.Now(),
		Metadata:  metadata,
	}

	return m.join(scope, entry)
}

// JoinParty admits every member of a party into queueName as a single
// entry. If any member is already queued anywhere, the whole operation
// fails and no state is mutated (all-or-nothing, spec §4.5).
func (m *Manager) JoinParty(scope *envelope.Scope, queueName, partyID string, members []string, r rating.Rating, metadata EntryMetadata) (Entry, error) {
	entry := Entry{
		ID:        common.GenerateULID(time.Now()),
		QueueName: queueName,
		PlayerIDs: append([]string(nil), members...),
		PartyID:   partyID,
		Rating:    r,
		JoinedAt:  time.Now(),
		Metadata:  metadata,
	}

	return m.join(scope, entry)
}

func (m *Manager) join(scope *envelope.Scope, entry Entry) (Entry, error) {
	q, err := m.queue(entry.QueueName)
	if err != nil {
		return Entry{}, err
	}

	m.indexMu.Lock()
	for _, playerID := range entry.PlayerIDs {
		if _, already := m.playerToEntry[playerID]; already {
			m.indexMu.Unlock()

			return Entry{}, mmerrors.AlreadyInQueue(playerID)
		}
	}
	for _, playerID := range entry.PlayerIDs {
		m.playerToEntry[playerID] = entry.QueueName
	}
	m.indexMu.Unlock()

	q.mu.Lock()
	q.entries = append(q.entries, entry)
	depth := len(q.entries)
	q.mu.Unlock()

	if err := m.persistence.SaveQueueEntry(scope.Ctx, toRecord(entry)); err != nil {
		q.mu.Lock()
		q.entries = removeEntries(q.entries, []Entry{entry})
		q.mu.Unlock()

		m.indexMu.Lock()
		for _, playerID := range entry.PlayerIDs {
			delete(m.playerToEntry, playerID)
		}
		m.indexMu.Unlock()

		return Entry{}, mmerrors.Persistence("SaveQueueEntry", err)
	}

	m.metrics.SetQueueDepth(entry.QueueName, depth)

	scope.Log.WithField("queue", entry.QueueName).WithField("entryID", entry.ID).Info("entry joined queue")

	return entry, nil
}

// Leave removes the entry containing playerID from queueName. For a party
// entry this removes every member — partial departures are not supported
// (spec §9). Fails with NotInQueue if playerID isn't queued there.
func (m *Manager) Leave(scope *envelope.Scope, queueName, playerID string) error {
	q, err := m.queue(queueName)
	if err != nil {
		return err
	}

	q.mu.Lock()
	var found *Entry
	for i := range q.entries {
		if common.Contains(q.entries[i].PlayerIDs, playerID) {
			found = &q.entries[i]

			break
		}
	}
	if found == nil {
		q.mu.Unlock()

		return mmerrors.NotInQueue(playerID)
	}
	removed := *found
	q.entries = removeEntries(q.entries, []Entry{removed})
	depth := len(q.entries)
	q.mu.Unlock()

	m.indexMu.Lock()
	for _, id := range removed.PlayerIDs {
		delete(m.playerToEntry, id)
	}
	m.indexMu.Unlock()

	if err := m.persistence.DeleteQueueEntry(scope.Ctx, removed.ID); err != nil {
		return mmerrors.Persistence("DeleteQueueEntry", err)
	}

	m.metrics.SetQueueDepth(queueName, depth)

	return nil
}

// FindMatches takes a read lock on queueName's entries, invokes the Matcher
// over a consistent snapshot, and returns whatever matches it assembled.
// It never mutates queue state; call Consume to commit results.
func (m *Manager) FindMatches(queueName string) ([]MatchResult, []SkipReason, error) {
	q, err := m.queue(queueName)
	if err != nil {
		return nil, nil, err
	}

	q.mu.RLock()
	snapshot := make([]Entry, len(q.entries))
	copy(snapshot, q.entries)
	format, constraints := q.config.Format, q.config.Constraints
	q.mu.RUnlock()

	results, skips := m.matcher.FindMatches(snapshot, format, constraints, time.Now())

	return results, skips, nil
}

// Consume atomically removes every entry appearing in matches from
// queueName. Idempotent: entries already absent are silently skipped.
// Persistence deletions are best-effort.
func (m *Manager) Consume(scope *envelope.Scope, queueName string, matches []MatchResult) error {
	q, err := m.queue(queueName)
	if err != nil {
		return err
	}

	var consumed []Entry
	for _, result := range matches {
		consumed = append(consumed, result.Entries...)
	}

	q.mu.Lock()
	q.entries = removeEntries(q.entries, consumed)
	depth := len(q.entries)
	q.mu.Unlock()

	m.indexMu.Lock()
	for _, entry := range consumed {
		for _, playerID := range entry.PlayerIDs {
			delete(m.playerToEntry, playerID)
		}
	}
	m.indexMu.Unlock()

	for _, entry := range consumed {
		_ = m.persistence.DeleteQueueEntry(scope.Ctx, entry.ID) // best-effort per spec §4.5
	}

	m.metrics.SetQueueDepth(queueName, depth)

	return nil
}

// Size returns the current number of live entries in queueName.
func (m *Manager) Size(queueName string) (int, error) {
	q, err := m.queue(queueName)
	if err != nil {
		return 0, err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	return len(q.entries), nil
}

func toRecord(e Entry) persistence.QueueEntryRecord {
	record := persistence.QueueEntryRecord{
		ID:        e.ID,
		QueueName: e.QueueName,
		PlayerIDs: append([]string(nil), e.PlayerIDs...),
		PartyID:   e.PartyID,
		Rating:    e.Rating,
		JoinedAt:  e.JoinedAt.UnixNano(),
		Roles:     append([]string(nil), e.Metadata.Roles...),
		Custom:    e.Metadata.Custom,
	}

	if e.Metadata.HasRegion() {
		record.Region = *e.Metadata.Region
		record.HasRegion = true
	}

	return record
}
