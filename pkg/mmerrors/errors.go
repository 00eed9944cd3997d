// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package mmerrors is the engine's typed error taxonomy (spec §7),
// generalizing the teacher's sentinel-error-plus-code-map pattern
// (pkg/models/validationerrors.go) into parameterized constructors so
// callers can match on Kind and extract the offending entity/ID.
package mmerrors

import "fmt"

// Kind classifies an Error the way spec §7's taxonomy table does.
type Kind int

const (
	KindNotFound Kind = iota
	KindDuplicate
	KindIllegalStateTransition
	KindConstraintViolation
	KindPartyFull
	KindPersistence
	KindInvalidConfiguration
)

// Error is the engine's single error type. Every admission/lookup/transition
// failure in the engine is one of these, so callers can type-assert once and
// branch on Kind instead of comparing against a list of sentinels.
type Error struct {
	Kind   Kind
	Entity string // "Player", "Party", "Queue", "Lobby", ...
	ID     string
	msg    string
	err    error
}

func (e *Error) Error() string {
	if e.msg != "" {
		return e.msg
	}

	return fmt.Sprintf("%s %s: %s", e.Entity, e.ID, kindLabel[e.Kind])
}

func (e *Error) Unwrap() error { return e.err }

// Is supports errors.Is comparisons against another *Error by Kind+Entity,
// so callers can do errors.Is(err, mmerrors.NotFound("Lobby", "")) to check
// "is this any LobbyNotFound" without caring about the specific ID.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	if t.ID != "" {
		return e.Kind == t.Kind && e.Entity == t.Entity && e.ID == t.ID
	}

	return e.Kind == t.Kind && e.Entity == t.Entity
}

var kindLabel = map[Kind]string{
	KindNotFound:               "not found",
	KindDuplicate:              "already exists",
	KindIllegalStateTransition: "illegal state transition",
	KindConstraintViolation:    "constraint violation",
	KindPartyFull:              "party full",
	KindPersistence:            "persistence error",
	KindInvalidConfiguration:   "invalid configuration",
}

// errorCodeMap assigns a stable numeric code per Kind, in the spirit of the
// teacher's ValidationErrorCode lookup, for log/metric labeling.
var errorCodeMap = map[Kind]int{
	KindNotFound:               40401,
	KindDuplicate:              40901,
	KindIllegalStateTransition: 40902,
	KindConstraintViolation:    40001,
	KindPartyFull:              40002,
	KindPersistence:            50001,
	KindInvalidConfiguration:   50002,
}

// Code returns the stable numeric code for err's Kind, or 0 if err is not an
// *Error.
func Code(err error) int {
	e, ok := err.(*Error)
	if !ok {
		return 0
	}

	return errorCodeMap[e.Kind]
}

// NotFound builds a generic lookup-miss error for entity/id.
func NotFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id}
}

// QueueNotFound — spec §4.5, §4.8.
func QueueNotFound(queueName string) *Error { return NotFound("Queue", queueName) }

// PartyNotFound — spec §4.7.
func PartyNotFound(partyID string) *Error { return NotFound("Party", partyID) }

// LobbyNotFound — spec §4.3, §4.6.
func LobbyNotFound(lobbyID string) *Error { return NotFound("Lobby", lobbyID) }

// PlayerNotInLobby — spec §4.3 markReady failure.
func PlayerNotInLobby(playerID string) *Error {
	return &Error{
		Kind: KindNotFound, Entity: "Player", ID: playerID,
		msg: fmt.Sprintf("player %s is not in this lobby", playerID),
	}
}

// DuplicateQueue — spec §4.5 registerQueue.
func DuplicateQueue(queueName string) *Error {
	return &Error{Kind: KindDuplicate, Entity: "Queue", ID: queueName}
}

// AlreadyInQueue — spec §4.5 joinSolo/joinParty global uniqueness.
func AlreadyInQueue(playerID string) *Error {
	return &Error{
		Kind: KindDuplicate, Entity: "Player", ID: playerID,
		msg: fmt.Sprintf("player %s is already in a queue", playerID),
	}
}

// NotInQueue — spec §4.5 leave.
func NotInQueue(playerID string) *Error {
	return &Error{
		Kind: KindNotFound, Entity: "Player", ID: playerID,
		msg: fmt.Sprintf("player %s is not in any queue", playerID),
	}
}

// AlreadyInParty — spec §4.7 create/addMember.
func AlreadyInParty(playerID string) *Error {
	return &Error{
		Kind: KindDuplicate, Entity: "Player", ID: playerID,
		msg: fmt.Sprintf("player %s is already in a party", playerID),
	}
}

// AlreadyMember — spec §4.7 addMember, non-idempotent variant.
func AlreadyMember(playerID string) *Error {
	return &Error{
		Kind: KindDuplicate, Entity: "Player", ID: playerID,
		msg: fmt.Sprintf("player %s is already a member of this party", playerID),
	}
}

// PartyFull — spec §4.7 addMember.
func PartyFull(partyID string) *Error {
	return &Error{Kind: KindPartyFull, Entity: "Party", ID: partyID}
}

// IllegalStateTransition — spec §4.3 lobby DAG.
func IllegalStateTransition(from, to string) *Error {
	return &Error{
		Kind: KindIllegalStateTransition, Entity: "Lobby",
		msg: fmt.Sprintf("illegal lobby state transition: %s -> %s", from, to),
	}
}

// ConstraintViolation — spec §4.4, never surfaced past the Matcher boundary
// (the Matcher itself is total), but useful internally to explain a skip.
func ConstraintViolation(reason string) *Error {
	return &Error{Kind: KindConstraintViolation, msg: reason}
}

// Persistence wraps a backing-store failure.
func Persistence(op string, err error) *Error {
	return &Error{
		Kind: KindPersistence, msg: fmt.Sprintf("persistence error during %s: %v", op, err), err: err,
	}
}

// InvalidConfiguration — fatal at construction time.
func InvalidConfiguration(reason string) *Error {
	return &Error{Kind: KindInvalidConfiguration, msg: reason}
}
