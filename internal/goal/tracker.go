// ABOUTME: Goal progress arithmetic: deviation, progress %, end-date projection.
// ABOUTME: Everything here is computed on read; nothing is ever stored.
package goal

import (
	"fmt"
	"math"
	"time"

	"github.com/harperreed/calbal/internal/balance"
	"github.com/harperreed/calbal/internal/models"
)

// Progress is the read-time view of a goal against logged data.
// ProgressPercentage is deliberately recomputed on every read; storing
// it caused staleness defects when goals or historical events changed.
type Progress struct {
	GoalID             string
	GoalType           models.GoalType
	DailyCalorieTarget float64
	TargetDeviation    float64 // today's net - target; positive = over
	ProgressPercentage float64 // period consumed / period target * 100
	PeriodConsumed     float64
	PeriodTarget       float64
	PeriodDays         int
	CurrentWeightKg    *float64
	StartDate          time.Time
	EndDate            *time.Time // nil for maintenance
	WeeksRemaining     *int
}

// ProjectEndDate derives the goal end date: ceil(weight delta / |weekly
// rate|) whole weeks from the start. Maintenance goals (rate 0) have no
// projected end.
func ProjectEndDate(g *models.CalorieGoal) *time.Time {
	if g.WeeklyChangeKg == 0 {
		return nil
	}
	weeks := weeksToTarget(g.StartWeightKg, g.TargetWeightKg, g.WeeklyChangeKg)
	end := g.StartDate.AddDate(0, 0, weeks*7)
	return &end
}

func weeksToTarget(currentKg, targetKg, weeklyRateKg float64) int {
	delta := math.Abs(currentKg - targetKg)
	return int(math.Ceil(delta / math.Abs(weeklyRateKg)))
}

// Track computes goal progress from the active goal, today's balance,
// and the period's daily balances (typically goal start through today).
// todays may be nil when no events exist yet for the current day. asOf
// anchors the weeks-remaining countdown; passing it in keeps the
// computation a pure function of its inputs.
func Track(g *models.CalorieGoal, todays *balance.DailyBalance, period []*balance.DailyBalance, asOf time.Time) (*Progress, error) {
	if g == nil {
		return nil, fmt.Errorf("no goal to track")
	}

	p := &Progress{
		GoalID:             g.ID.String(),
		GoalType:           g.GoalType,
		DailyCalorieTarget: g.DailyCalorieTarget,
		StartDate:          g.StartDate,
		EndDate:            ProjectEndDate(g),
	}

	if todays != nil {
		p.TargetDeviation = todays.NetCalories - g.DailyCalorieTarget
	}

	for _, db := range period {
		p.PeriodConsumed += db.CaloriesConsumed
	}
	p.PeriodDays = len(period)
	p.PeriodTarget = g.DailyCalorieTarget * float64(len(period))
	if p.PeriodTarget > 0 {
		p.ProgressPercentage = p.PeriodConsumed / p.PeriodTarget * 100
	}

	if p.EndDate != nil {
		remaining := int(math.Ceil(p.EndDate.Sub(asOf.UTC()).Hours() / 24 / 7))
		if remaining < 0 {
			remaining = 0
		}
		p.WeeksRemaining = &remaining
	}

	return p, nil
}
