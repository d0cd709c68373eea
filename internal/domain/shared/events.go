// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Progression events
	EventXPGained EventType = "progression.xp_gained"
	EventLevelUp  EventType = "progression.level_up"

	// Streak events
	EventStreakExtended  EventType = "streak.extended"
	EventStreakBroken    EventType = "streak.broken"
	EventStreakMilestone EventType = "streak.milestone_reached"

	// Badge events
	EventBadgeAwarded EventType = "badge.awarded"
	EventBadgeCreated EventType = "badge.created"
	EventBadgeUpdated EventType = "badge.updated"

	// Quiz events
	EventQuizSessionCreated EventType = "quiz.session_created"

	// System events
	EventBadgeSweepCompleted EventType = "system.badge_sweep_completed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Progression Events
// ═══════════════════════════════════════════════════════════════════════════

// XPGainedEvent is emitted when a user gains XP.
type XPGainedEvent struct {
	BaseEvent
	UserID   string `json:"user_id"`
	Amount   int    `json:"amount"`
	NewTotal int    `json:"new_total"`
	Source   string `json:"source"` // e.g., "quiz", "lesson", "bonus"
}

// Payload implements Event interface.
func (e XPGainedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"amount":    e.Amount,
		"new_total": e.NewTotal,
		"source":    e.Source,
	}
}

// NewXPGainedEvent creates a new XPGainedEvent.
func NewXPGainedEvent(userID string, amount, newTotal int, source string) XPGainedEvent {
	return XPGainedEvent{
		BaseEvent: NewBaseEvent(EventXPGained, userID),
		UserID:    userID,
		Amount:    amount,
		NewTotal:  newTotal,
		Source:    source,
	}
}

// LevelUpEvent is emitted when a user's XP total crosses a level boundary.
type LevelUpEvent struct {
	BaseEvent
	UserID        string `json:"user_id"`
	PreviousLevel int    `json:"previous_level"`
	NewLevel      int    `json:"new_level"`
	TotalXP       int    `json:"total_xp"`
	NextThreshold int    `json:"next_threshold"`
}

// Payload implements Event interface.
func (e LevelUpEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":        e.UserID,
		"previous_level": e.PreviousLevel,
		"new_level":      e.NewLevel,
		"total_xp":       e.TotalXP,
		"next_threshold": e.NextThreshold,
	}
}

// NewLevelUpEvent creates a new LevelUpEvent.
func NewLevelUpEvent(userID string, previousLevel, newLevel, totalXP, nextThreshold int) LevelUpEvent {
	return LevelUpEvent{
		BaseEvent:     NewBaseEvent(EventLevelUp, userID),
		UserID:        userID,
		PreviousLevel: previousLevel,
		NewLevel:      newLevel,
		TotalXP:       totalXP,
		NextThreshold: nextThreshold,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Streak Events
// ═══════════════════════════════════════════════════════════════════════════

// StreakExtendedEvent is emitted when a user's daily streak grows.
type StreakExtendedEvent struct {
	BaseEvent
	UserID        string `json:"user_id"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
}

// Payload implements Event interface.
func (e StreakExtendedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":        e.UserID,
		"current_streak": e.CurrentStreak,
		"longest_streak": e.LongestStreak,
	}
}

// NewStreakExtendedEvent creates a new StreakExtendedEvent.
func NewStreakExtendedEvent(userID string, currentStreak, longestStreak int) StreakExtendedEvent {
	return StreakExtendedEvent{
		BaseEvent:     NewBaseEvent(EventStreakExtended, userID),
		UserID:        userID,
		CurrentStreak: currentStreak,
		LongestStreak: longestStreak,
	}
}

// StreakBrokenEvent is emitted when a user's streak resets after a missed day.
type StreakBrokenEvent struct {
	BaseEvent
	UserID         string `json:"user_id"`
	PreviousStreak int    `json:"previous_streak"`
}

// Payload implements Event interface.
func (e StreakBrokenEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":         e.UserID,
		"previous_streak": e.PreviousStreak,
	}
}

// NewStreakBrokenEvent creates a new StreakBrokenEvent.
func NewStreakBrokenEvent(userID string, previousStreak int) StreakBrokenEvent {
	return StreakBrokenEvent{
		BaseEvent:      NewBaseEvent(EventStreakBroken, userID),
		UserID:         userID,
		PreviousStreak: previousStreak,
	}
}

// StreakMilestoneEvent is emitted when a streak reaches a configured milestone.
type StreakMilestoneEvent struct {
	BaseEvent
	UserID    string `json:"user_id"`
	Milestone int    `json:"milestone"`
	Streak    int    `json:"streak"`
}

// Payload implements Event interface.
func (e StreakMilestoneEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"milestone": e.Milestone,
		"streak":    e.Streak,
	}
}

// NewStreakMilestoneEvent creates a new StreakMilestoneEvent.
func NewStreakMilestoneEvent(userID string, milestone, streak int) StreakMilestoneEvent {
	return StreakMilestoneEvent{
		BaseEvent: NewBaseEvent(EventStreakMilestone, userID),
		UserID:    userID,
		Milestone: milestone,
		Streak:    streak,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Badge Events
// ═══════════════════════════════════════════════════════════════════════════

// BadgeAwardedEvent is emitted when a user receives a badge.
type BadgeAwardedEvent struct {
	BaseEvent
	UserID     string `json:"user_id"`
	BadgeID    string `json:"badge_id"`
	BadgeTitle string `json:"badge_title"`
	BadgeRank  int    `json:"badge_rank"`
}

// Payload implements Event interface.
func (e BadgeAwardedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":     e.UserID,
		"badge_id":    e.BadgeID,
		"badge_title": e.BadgeTitle,
		"badge_rank":  e.BadgeRank,
	}
}

// NewBadgeAwardedEvent creates a new BadgeAwardedEvent.
func NewBadgeAwardedEvent(userID, badgeID, badgeTitle string, badgeRank int) BadgeAwardedEvent {
	return BadgeAwardedEvent{
		BaseEvent:  NewBaseEvent(EventBadgeAwarded, userID),
		UserID:     userID,
		BadgeID:    badgeID,
		BadgeTitle: badgeTitle,
		BadgeRank:  badgeRank,
	}
}

// BadgeCatalogEvent marks a change to a badge definition.
type BadgeCatalogEvent struct {
	BaseEvent
	BadgeID string `json:"badge_id"`
}

// Payload implements Event interface.
func (e BadgeCatalogEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"badge_id": e.BadgeID,
	}
}

// NewBadgeCatalogEvent creates a catalog change event of the given type.
func NewBadgeCatalogEvent(eventType EventType, badgeID string) BadgeCatalogEvent {
	return BadgeCatalogEvent{
		BaseEvent: NewBaseEvent(eventType, badgeID),
		BadgeID:   badgeID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Quiz Events
// ═══════════════════════════════════════════════════════════════════════════

// QuizSessionCreatedEvent is emitted when a quiz session is assembled for a user.
type QuizSessionCreatedEvent struct {
	BaseEvent
	UserID        string `json:"user_id"`
	SessionID     string `json:"session_id"`
	QuestionCount int    `json:"question_count"`
	OrderRepeated bool   `json:"order_repeated"` // true when the selector accepted a repeated ordering
}

// Payload implements Event interface.
func (e QuizSessionCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":        e.UserID,
		"session_id":     e.SessionID,
		"question_count": e.QuestionCount,
		"order_repeated": e.OrderRepeated,
	}
}

// NewQuizSessionCreatedEvent creates a new QuizSessionCreatedEvent.
func NewQuizSessionCreatedEvent(userID, sessionID string, questionCount int, orderRepeated bool) QuizSessionCreatedEvent {
	return QuizSessionCreatedEvent{
		BaseEvent:     NewBaseEvent(EventQuizSessionCreated, userID),
		UserID:        userID,
		SessionID:     sessionID,
		QuestionCount: questionCount,
		OrderRepeated: orderRepeated,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// System Events
// ═══════════════════════════════════════════════════════════════════════════

// BadgeSweepCompletedEvent is emitted after a full badge assignment pass.
type BadgeSweepCompletedEvent struct {
	BaseEvent
	UsersScanned  int           `json:"users_scanned"`
	BadgesAwarded int           `json:"badges_awarded"`
	UsersFailed   int           `json:"users_failed"`
	Duration      time.Duration `json:"duration"`
}

// Payload implements Event interface.
func (e BadgeSweepCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"users_scanned":  e.UsersScanned,
		"badges_awarded": e.BadgesAwarded,
		"users_failed":   e.UsersFailed,
		"duration":       e.Duration.String(),
	}
}

// NewBadgeSweepCompletedEvent creates a new BadgeSweepCompletedEvent.
func NewBadgeSweepCompletedEvent(scanned, awarded, failed int, duration time.Duration) BadgeSweepCompletedEvent {
	return BadgeSweepCompletedEvent{
		BaseEvent:     NewBaseEvent(EventBadgeSweepCompleted, "badge-sweep"),
		UsersScanned:  scanned,
		BadgesAwarded: awarded,
		UsersFailed:   failed,
		Duration:      duration,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
