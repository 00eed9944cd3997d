// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package constants holds cross-package defaults and the skip/rejection
// reason codes surfaced by the Matcher and Runner.
package constants

import "time"

const (
	// DefaultLockTimeout is a lock-wait threshold constant. No package in
	// this module reads it; no lock wait is timed or logged against it.
	DefaultLockTimeout = 10 * time.Second
)

const (
	// Rating defaults per spec §3.
	DefaultRating     = 1500.0
	DefaultDeviation  = 350.0
	DefaultVolatility = 0.06
	MinDeviation      = 50.0
	MaxDeviation      = 350.0
)

const (
	// Reasons a seed entry failed to produce a match this tick (C9 Matcher),
	// surfaced via metrics.AddUnmatchedReason. Purely observational — see
	// SPEC_FULL.md "Supplemented features".
	ReasonNotEnoughEntries      = "not_enough_entries"
	ReasonNoCompatibleEntries   = "no_compatible_entries"
	ReasonRegionMismatch        = "region_mismatch"
	ReasonRatingWindowExceeded  = "rating_window_exceeded"
	ReasonRoleRequirementsUnmet = "role_requirements_unmet"
	ReasonTeamsCouldNotBeFilled = "teams_could_not_be_filled"
)

// AutoDispatchServerID is the synthetic server identifier recorded when the
// Runner's autoDispatch mode (spec §4.8) dispatches a lobby without a real
// game server assignment.
const AutoDispatchServerID = "headless"
