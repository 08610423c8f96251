// ABOUTME: Daily balance calculator: net calories with BMR fallback.
// ABOUTME: Pure function of the day's event bucket; recomputation is idempotent.
package balance

import (
	"time"

	"github.com/harperreed/calbal/internal/models"
	"github.com/harperreed/calbal/internal/timeline"
)

// BMRSource distinguishes logged BMR events from profile estimates so
// callers can tell measured data from fallback.
type BMRSource string

const (
	BMRMeasured        BMRSource = "measured"
	BMRProfileEstimate BMRSource = "profile_estimate"
	BMRUnavailable     BMRSource = "unavailable"
)

// DailyBalance is the derived per-day aggregate. It is recomputed from
// the event set on every read, never stored, so late-arriving events
// are always reflected.
type DailyBalance struct {
	UserID                 string
	Date                   time.Time // UTC midnight
	CaloriesConsumed       float64
	CaloriesBurnedExercise float64
	CaloriesBurnedBMR      float64
	NetCalories            float64 // consumed - exercise - bmr
	BMRSource              BMRSource
	EventsCount            int
	LastEventTimestamp     *time.Time
	Completeness           float64 // 0.0-1.0
}

// FromBucket computes the balance for one day bucket. When the day has
// no burned_bmr events, the profile's BMR is used and flagged; with no
// profile either, BMR contributes zero and is marked unavailable.
func FromBucket(userID string, b *timeline.Bucket, profile *models.MetabolicProfile) *DailyBalance {
	db := &DailyBalance{
		UserID:                 userID,
		Date:                   b.Start,
		CaloriesConsumed:       b.Consumed,
		CaloriesBurnedExercise: b.BurnedExercise,
		EventsCount:            b.EventsCount,
		LastEventTimestamp:     b.LastEventTimestamp,
	}

	switch {
	case b.BurnedBMR > 0:
		db.CaloriesBurnedBMR = b.BurnedBMR
		db.BMRSource = BMRMeasured
	case profile != nil:
		db.CaloriesBurnedBMR = profile.BMRCalories
		db.BMRSource = BMRProfileEstimate
	default:
		db.BMRSource = BMRUnavailable
	}

	db.NetCalories = db.CaloriesConsumed - db.CaloriesBurnedExercise - db.CaloriesBurnedBMR
	db.Completeness = completeness(b)
	return db
}

// completeness scores a day against the expected baseline of at least
// one consumption and one weight event. Extra events shade the score
// up slightly. Used to flag low-confidence days, never to hide them.
func completeness(b *timeline.Bucket) float64 {
	score := 0.0
	if b.Consumed > 0 {
		score += 0.5
	}
	if b.WeightCount > 0 {
		score += 0.5
	}
	if score == 0 {
		return 0
	}

	// Up to +0.1 for a well-populated day, capped at 1.0.
	bonus := float64(b.EventsCount) * 0.02
	if bonus > 0.1 {
		bonus = 0.1
	}
	if score+bonus > 1.0 {
		return 1.0
	}
	return score + bonus
}
