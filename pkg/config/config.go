// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package config defines the engine's tuning knobs, loadable from the
// environment via struct tags.
package config

import "github.com/caarlos0/env"

// Config holds the tuning knobs for the Runner, Matcher defaults, and
// rating algorithms. Zero values mean "use the default from code" the same
// way the teacher's Config treats 0 as a sentinel for its own defaults.
type Config struct {
	TickIntervalMs        int     `env:"TICK_INTERVAL_MS"          envDefault:"1000" envDocs:"interval between Runner ticks in milliseconds"`
	MaxMatchesPerTick      int     `env:"MAX_MATCHES_PER_TICK"      envDefault:"0"    envDocs:"global cap on lobbies created in one tick (0 means unlimited)"`
	MaxConcurrentMatches   int     `env:"MAX_CONCURRENT_MATCHES"    envDefault:"0"    envDocs:"per-queue cap on lobbies created in one tick (0 means unlimited)"`
	AutoDispatch           bool    `env:"AUTO_DISPATCH"             envDefault:"false" envDocs:"skip readiness gating and dispatch lobbies immediately on creation"`
	DefaultMaxRatingDelta  float64 `env:"DEFAULT_MAX_RATING_DELTA"  envDefault:"100"  envDocs:"default MatchConstraints.MaxRatingDelta for newly registered queues"`
	DefaultExpansionRate   float64 `env:"DEFAULT_EXPANSION_RATE"    envDefault:"0"    envDocs:"default MatchConstraints.ExpansionRate (rating-delta units per second of wait)"`
	DefaultEloKFactor      float64 `env:"DEFAULT_ELO_K_FACTOR"      envDefault:"32"   envDocs:"K-factor for the default Elo rating algorithm"`
	DefaultGlicko2Tau      float64 `env:"DEFAULT_GLICKO2_TAU"       envDefault:"0.5"  envDocs:"reserved for a future full Glicko-2 volatility solver; unused by the simplified algorithm"`
	SeasonInactivityDays   int     `env:"SEASON_INACTIVITY_DAYS"    envDefault:"14"   envDocs:"days-of-inactivity threshold for rating decay; LinearDecay does not read it and decays from the first inactive day"`
}

// Load reads Config from the environment, applying envDefault tags for any
// unset variable.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
