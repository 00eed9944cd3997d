// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package runner implements C13: the tick-driven scheduler that runs
// matchmaking work across queues in priority order under a per-tick
// budget. Ported from original_source/src/runner/{tick,config}.rs into the
// teacher's atomic-flag-plus-WaitGroup idiom
// (pkg/matchmaker/defaultmatchmaker/matchlogic.go): the WaitGroup tracks the
// single loop goroutine, and each tick processes its queues one after another.
package runner

import "time"

// QueueSchedule is one queue's entry in the Runner's priority table.
type QueueSchedule struct {
	Enabled              bool
	Priority             int // lower runs first
	MaxConcurrentMatches int
}

// Config governs a Runner's tick cadence and per-queue budgets (spec §4.8).
type Config struct {
	TickInterval      time.Duration
	MaxMatchesPerTick int
	AutoDispatch      bool
	Queues            map[string]QueueSchedule // queueName -> schedule
}
