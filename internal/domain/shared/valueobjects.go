// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"strings"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// Timezone Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Timezone represents an IANA timezone name, e.g. "Europe/Berlin".
// Streak day boundaries are local midnights in the user's timezone, so
// commands that carry a timezone validate it through this type.
type Timezone string

// DefaultTimezone is used when a user has not configured one.
const DefaultTimezone Timezone = "UTC"

// String returns the string representation.
func (t Timezone) String() string {
	return string(t)
}

// OrDefault returns the timezone, or UTC when empty.
func (t Timezone) OrDefault() Timezone {
	if strings.TrimSpace(string(t)) == "" {
		return DefaultTimezone
	}
	return t
}

// Location resolves the timezone to a *time.Location, falling back to UTC
// when the name is unknown. A bad timezone must never break date math.
func (t Timezone) Location() *time.Location {
	loc, err := time.LoadLocation(string(t.OrDefault()))
	if err != nil {
		return time.UTC
	}
	return loc
}

// NewTimezone creates a Timezone with validation against the IANA database.
// An empty name resolves to UTC; an unknown name is rejected.
func NewTimezone(name string) (Timezone, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return DefaultTimezone, nil
	}
	if _, err := time.LoadLocation(trimmed); err != nil {
		return "", ErrInvalidTimezone
	}
	return Timezone(trimmed), nil
}
