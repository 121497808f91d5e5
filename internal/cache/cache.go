// Package cache is the key-value mirror the services fall back to when the document store
// cannot be read. Redis backs it in production, an in-process map otherwise.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"courtside/team-ops/internal/domain"
)

// ErrMiss is returned by Get when the key holds no value.
var ErrMiss = errors.New("cache miss")

// Store is the byte-level contract shared by RedisCache and MemoryCache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// GetJSON decodes the value at key into a T. A miss, a backend error or a value that does not
// parse all yield def, so a corrupt mirror degrades to the empty default instead of failing.
func GetJSON[T any](ctx context.Context, s Store, key string, def T) (T, bool) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			log.Printf("WARN: [Cache] get %s: %v", key, err)
		}
		return def, false
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Printf("WARN: [Cache] discarding unparsable value at %s: %v", key, err)
		return def, false
	}
	return out, true
}

// SetJSON mirrors v at key. Failures are logged and otherwise ignored.
func SetJSON(ctx context.Context, s Store, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Printf("WARN: [Cache] encode %s: %v", key, err)
		return
	}
	if err := s.Set(ctx, key, raw); err != nil {
		log.Printf("WARN: [Cache] set %s: %v", key, err)
	}
}

// Key helpers. Every mirrored record has exactly one key.

func PracticeKey(sessionID string) string   { return "practice:" + sessionID }
func AttendanceKey(sessionID string) string { return "attendance:" + sessionID }
func RosterKey() string                     { return "roster" }
func WellnessKey(date string) string        { return "wellness:" + date }

func SurveyPlayersKey(kind domain.SurveyKind, sessionID string) string {
	return "surveyPlayers:" + string(kind) + ":" + sessionID
}

func ScheduleKey(from, to string) string {
	return "schedule:" + from + ":" + to
}

// ScheduleIndexKey holds the ranges that currently have a ScheduleKey mirror.
func ScheduleIndexKey() string { return "schedule:ranges" }

// ScheduleRange is one cached schedule window. Empty bounds are open.
type ScheduleRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (r ScheduleRange) Key() string { return ScheduleKey(r.From, r.To) }

// Contains reports whether a YYYY-MM-DD date falls inside the window.
func (r ScheduleRange) Contains(date string) bool {
	return (r.From == "" || date >= r.From) && (r.To == "" || date <= r.To)
}

// SessionKeys lists every key that mirrors data owned by a session.
func SessionKeys(sessionID string) []string {
	return []string{
		PracticeKey(sessionID),
		AttendanceKey(sessionID),
		SurveyPlayersKey(domain.SurveyCourt, sessionID),
		SurveyPlayersKey(domain.SurveyGym, sessionID),
	}
}
