// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package common holds small, dependency-light helpers shared across the
// engine: env lookups, ID generation, and generic collection helpers.
package common

import (
	crand "crypto/rand"
	"encoding/json"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func GetEnvInt(key string, fallback int) int {
	str := GetEnv(key, strconv.Itoa(fallback))
	val, err := strconv.Atoi(str)
	if err != nil {
		return fallback
	}

	return val
}

// GenerateRandomInt returns a random, non-deterministic int in [0, 10000).
func GenerateRandomInt() int {
	return rand.IntN(10000)
}

// GenerateUUID generates a uuid without hyphens, for values where ordering
// doesn't matter (party IDs, tick IDs, dispatch server IDs).
func GenerateUUID() string {
	id, _ := uuid.NewRandom()
	return strings.ReplaceAll(id.String(), "-", "")
}

// GenerateULID generates a ULID: a 128-bit ID whose first 48 bits are a
// millisecond timestamp, so IDs for entries and lobbies sort by creation
// millisecond and double as a tie-break per spec §4.4. Each call draws fresh
// entropy, so IDs created within the same millisecond sort randomly.
func GenerateULID(now time.Time) string {
	entropy := ulid.Monotonic(crand.Reader, 0)
	id := ulid.MustNew(ulid.Timestamp(now), entropy)

	return id.String()
}

// LogJSONFormatter marshals data for structured log lines.
func LogJSONFormatter(data interface{}) string {
	response, err := json.Marshal(data)
	if err != nil {
		logrus.Errorf("failed to marshal json: %v", err)

		return ""
	}

	return string(response)
}

// Contains reports whether val is present in list.
func Contains[T comparable](list []T, val T) bool {
	for _, v := range list {
		if v == val {
			return true
		}
	}

	return false
}
