// ABOUTME: CalorieGoal model with GoalType enum and end-date derivation inputs.
// ABOUTME: Exactly one goal per user may be active at a time.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GoalType represents the direction of a calorie goal.
type GoalType string

const (
	GoalWeightLoss  GoalType = "weight_loss"
	GoalWeightGain  GoalType = "weight_gain"
	GoalMaintenance GoalType = "maintenance"
)

// AllGoalTypes returns all valid goal types.
var AllGoalTypes = []GoalType{GoalWeightLoss, GoalWeightGain, GoalMaintenance}

// IsValidGoalType checks if a string is a valid goal type.
func IsValidGoalType(s string) bool {
	for _, gt := range AllGoalTypes {
		if string(gt) == s {
			return true
		}
	}
	return false
}

// CalorieGoal is a user's calorie/weight target. EndDate is derived
// from the weight delta and weekly rate, never supplied by the caller.
type CalorieGoal struct {
	ID                 uuid.UUID
	UserID             string
	GoalType           GoalType
	DailyCalorieTarget float64
	WeeklyChangeKg     float64 // signed, negative = loss
	StartWeightKg      float64
	TargetWeightKg     float64
	StartDate          time.Time
	EndDate            *time.Time // nil for maintenance goals
	IsActive           bool
	CreatedAt          time.Time
}

// NewCalorieGoal creates a goal starting today (UTC midnight) with a
// derived end date.
func NewCalorieGoal(userID string, goalType GoalType, dailyTarget float64) *CalorieGoal {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return &CalorieGoal{
		ID:                 uuid.New(),
		UserID:             userID,
		GoalType:           goalType,
		DailyCalorieTarget: dailyTarget,
		StartDate:          start,
		CreatedAt:          now,
	}
}

// WithWeights sets the current and target weights used for projection.
func (g *CalorieGoal) WithWeights(startKg, targetKg float64) *CalorieGoal {
	g.StartWeightKg = startKg
	g.TargetWeightKg = targetKg
	return g
}

// WithWeeklyChange sets the signed weekly weight-change rate.
func (g *CalorieGoal) WithWeeklyChange(kgPerWeek float64) *CalorieGoal {
	g.WeeklyChangeKg = kgPerWeek
	return g
}

// WithStartDate sets a custom start date (truncated to UTC midnight).
func (g *CalorieGoal) WithStartDate(t time.Time) *CalorieGoal {
	t = t.UTC()
	g.StartDate = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return g
}

// Validate rejects malformed goals at the boundary.
func (g *CalorieGoal) Validate() error {
	if g.UserID == "" {
		return fmt.Errorf("goal user_id is required")
	}
	if !IsValidGoalType(string(g.GoalType)) {
		return fmt.Errorf("unknown goal type: %s", g.GoalType)
	}
	if g.DailyCalorieTarget <= 0 {
		return fmt.Errorf("daily calorie target must be > 0, got %.2f", g.DailyCalorieTarget)
	}
	switch g.GoalType {
	case GoalWeightLoss:
		if g.WeeklyChangeKg >= 0 {
			return fmt.Errorf("weight_loss goal requires a negative weekly rate, got %.2f", g.WeeklyChangeKg)
		}
		if err := g.validateWeights(); err != nil {
			return err
		}
		if g.TargetWeightKg >= g.StartWeightKg {
			return fmt.Errorf("weight_loss target %.1f kg must be below start weight %.1f kg", g.TargetWeightKg, g.StartWeightKg)
		}
	case GoalWeightGain:
		if g.WeeklyChangeKg <= 0 {
			return fmt.Errorf("weight_gain goal requires a positive weekly rate, got %.2f", g.WeeklyChangeKg)
		}
		if err := g.validateWeights(); err != nil {
			return err
		}
		if g.TargetWeightKg <= g.StartWeightKg {
			return fmt.Errorf("weight_gain target %.1f kg must be above start weight %.1f kg", g.TargetWeightKg, g.StartWeightKg)
		}
	case GoalMaintenance:
		if g.WeeklyChangeKg != 0 {
			return fmt.Errorf("maintenance goal requires a zero weekly rate, got %.2f", g.WeeklyChangeKg)
		}
	}
	return nil
}

// validateWeights requires both projection inputs for weight goals;
// without them the end-date derivation has nothing to project toward.
func (g *CalorieGoal) validateWeights() error {
	if g.StartWeightKg <= 0 {
		return fmt.Errorf("%s goal requires a positive start weight, got %.2f", g.GoalType, g.StartWeightKg)
	}
	if g.TargetWeightKg <= 0 {
		return fmt.Errorf("%s goal requires a positive target weight, got %.2f", g.GoalType, g.TargetWeightKg)
	}
	return nil
}
