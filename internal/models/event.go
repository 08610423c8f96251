// ABOUTME: CalorieEvent model with EventType and EventSource enums.
// ABOUTME: Single source of truth for both enums; all consumers validate here.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType represents the kind of calorie ledger event.
type EventType string

const (
	EventConsumed          EventType = "consumed"
	EventBurnedExercise    EventType = "burned_exercise"
	EventBurnedBMR         EventType = "burned_bmr"
	EventWeightMeasurement EventType = "weight_measurement"
)

// EventSource represents where an event originated.
type EventSource string

const (
	SourceManual         EventSource = "manual"
	SourceFitnessTracker EventSource = "fitness_tracker"
	SourceSmartScale     EventSource = "smart_scale"
	SourceNutritionScan  EventSource = "nutrition_scan"
	SourceHealthKit      EventSource = "healthkit"
	SourceGoogleFit      EventSource = "google_fit"
)

// EventUnits maps event types to their measurement units.
var EventUnits = map[EventType]string{
	EventConsumed:          "kcal",
	EventBurnedExercise:    "kcal",
	EventBurnedBMR:         "kcal",
	EventWeightMeasurement: "kg",
}

// AllEventTypes returns all valid event types.
var AllEventTypes = []EventType{
	EventConsumed, EventBurnedExercise, EventBurnedBMR, EventWeightMeasurement,
}

// AllEventSources returns all valid event sources.
var AllEventSources = []EventSource{
	SourceManual, SourceFitnessTracker, SourceSmartScale,
	SourceNutritionScan, SourceHealthKit, SourceGoogleFit,
}

// IsValidEventType checks if a string is a valid event type.
func IsValidEventType(s string) bool {
	for _, et := range AllEventTypes {
		if string(et) == s {
			return true
		}
	}
	return false
}

// IsValidEventSource checks if a string is a valid event source.
func IsValidEventSource(s string) bool {
	for _, es := range AllEventSources {
		if string(es) == s {
			return true
		}
	}
	return false
}

// CalorieEvent is one immutable entry in the per-user ledger.
// Corrections are new events, never in-place edits, so aggregates can
// always be recomputed deterministically from the full event set.
type CalorieEvent struct {
	ID        uuid.UUID
	UserID    string
	EventType EventType
	Amount    float64 // kcal, or absolute kg for weight_measurement
	Timestamp time.Time
	Source    EventSource
	Metadata  map[string]string
	CreatedAt time.Time
}

// NewCalorieEvent creates an event with generated UUID and current timestamps.
func NewCalorieEvent(userID string, eventType EventType, amount float64) *CalorieEvent {
	now := time.Now().UTC()
	return &CalorieEvent{
		ID:        uuid.New(),
		UserID:    userID,
		EventType: eventType,
		Amount:    amount,
		Timestamp: now,
		Source:    SourceManual,
		CreatedAt: now,
	}
}

// WithTimestamp sets a custom occurrence time.
func (e *CalorieEvent) WithTimestamp(t time.Time) *CalorieEvent {
	e.Timestamp = t.UTC()
	return e
}

// WithSource sets the provenance tag.
func (e *CalorieEvent) WithSource(s EventSource) *CalorieEvent {
	e.Source = s
	return e
}

// WithMetadata attaches a free-form key-value pair.
func (e *CalorieEvent) WithMetadata(key, value string) *CalorieEvent {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// Validate rejects malformed events at the ingestion boundary.
// Unknown enum values and negative amounts are errors, never coerced.
func (e *CalorieEvent) Validate() error {
	if e.UserID == "" {
		return fmt.Errorf("event user_id is required")
	}
	if !IsValidEventType(string(e.EventType)) {
		return fmt.Errorf("unknown event type: %s", e.EventType)
	}
	if !IsValidEventSource(string(e.Source)) {
		return fmt.Errorf("unknown event source: %s", e.Source)
	}
	if e.Amount < 0 {
		return fmt.Errorf("event amount must be >= 0, got %.2f", e.Amount)
	}
	if e.EventType == EventWeightMeasurement && e.Amount == 0 {
		return fmt.Errorf("weight measurement must carry absolute kg, got 0")
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("event timestamp is required")
	}
	return nil
}
