// ABOUTME: MetabolicProfile model with ActivityLevel enum and TDEE multipliers.
// ABOUTME: Profiles are superseded on recalculation, never deleted.
package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityLevel represents habitual activity for TDEE calculation.
type ActivityLevel string

const (
	ActivitySedentary   ActivityLevel = "sedentary"
	ActivityLight       ActivityLevel = "light"
	ActivityModerate    ActivityLevel = "moderate"
	ActivityActive      ActivityLevel = "active"
	ActivityExtraActive ActivityLevel = "extra_active"
)

// ActivityMultipliers maps activity levels to their TDEE multiplier.
// Single source of truth; also used for input validation.
var ActivityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:   1.2,
	ActivityLight:       1.375,
	ActivityModerate:    1.55,
	ActivityActive:      1.725,
	ActivityExtraActive: 1.9,
}

// AllActivityLevels returns all valid activity levels.
var AllActivityLevels = []ActivityLevel{
	ActivitySedentary, ActivityLight, ActivityModerate,
	ActivityActive, ActivityExtraActive,
}

// IsValidActivityLevel checks if a string is a valid activity level.
func IsValidActivityLevel(s string) bool {
	_, ok := ActivityMultipliers[ActivityLevel(s)]
	return ok
}

// MetabolicProfile is a computed BMR/TDEE snapshot for a user.
type MetabolicProfile struct {
	ID            uuid.UUID
	UserID        string
	BMRCalories   float64
	TDEECalories  float64
	ActivityLevel ActivityLevel
	Method        string // e.g. "mifflin_st_jeor"
	AccuracyScore float64
	CalculatedAt  time.Time
	SupersededAt  *time.Time // nil while current
}

// NewMetabolicProfile creates a profile snapshot with generated UUID.
func NewMetabolicProfile(userID string, bmr, tdee float64, level ActivityLevel) *MetabolicProfile {
	return &MetabolicProfile{
		ID:            uuid.New(),
		UserID:        userID,
		BMRCalories:   bmr,
		TDEECalories:  tdee,
		ActivityLevel: level,
		CalculatedAt:  time.Now().UTC(),
	}
}
