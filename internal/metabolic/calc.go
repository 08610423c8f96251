// ABOUTME: Pure metabolic profile calculator using Mifflin-St Jeor.
// ABOUTME: Rejects implausible biometrics outright instead of clamping.
package metabolic

import (
	"fmt"
	"math"

	"github.com/harperreed/calbal/internal/models"
)

// Method is the calculation method recorded on every profile.
const Method = "mifflin_st_jeor"

// Plausible human ranges. Values outside these are input errors, not
// data to be silently clamped.
const (
	minWeightKg = 20.0
	maxWeightKg = 500.0
	minHeightCm = 50.0
	maxHeightCm = 280.0
	minAge      = 1
	maxAge      = 130
)

// Gender selects the Mifflin-St Jeor constant.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Biometrics is the input to Compute.
type Biometrics struct {
	WeightKg      float64
	HeightCm      float64
	Age           int
	Gender        Gender
	ActivityLevel models.ActivityLevel
}

// InvalidBiometricsError reports which field fell outside plausible
// human ranges.
type InvalidBiometricsError struct {
	Field  string
	Reason string
}

func (e *InvalidBiometricsError) Error() string {
	return fmt.Sprintf("invalid biometrics: %s %s", e.Field, e.Reason)
}

// Result holds the computed BMR/TDEE pair and an accuracy score.
type Result struct {
	BMRCalories   float64
	TDEECalories  float64
	AccuracyScore float64
}

// Compute calculates BMR via Mifflin-St Jeor and TDEE from the activity
// multiplier. Pure function; callers persist the result as a
// MetabolicProfile snapshot.
//
// BMR = 10*weight + 6.25*height - 5*age + {+5 male | -161 female}
func Compute(b Biometrics) (Result, error) {
	if err := validate(b); err != nil {
		return Result{}, err
	}

	bmr := 10*b.WeightKg + 6.25*b.HeightCm - 5*float64(b.Age)
	switch b.Gender {
	case GenderMale:
		bmr += 5
	case GenderFemale:
		bmr -= 161
	}

	mult := models.ActivityMultipliers[b.ActivityLevel]
	tdee := bmr * mult

	return Result{
		BMRCalories:   math.Round(bmr*100) / 100,
		TDEECalories:  math.Round(tdee*100) / 100,
		AccuracyScore: accuracyScore(b),
	}, nil
}

func validate(b Biometrics) error {
	if b.WeightKg <= 0 || b.WeightKg < minWeightKg || b.WeightKg > maxWeightKg {
		return &InvalidBiometricsError{Field: "weight_kg", Reason: fmt.Sprintf("must be within %.0f-%.0f, got %.1f", minWeightKg, maxWeightKg, b.WeightKg)}
	}
	if b.HeightCm < minHeightCm || b.HeightCm > maxHeightCm {
		return &InvalidBiometricsError{Field: "height_cm", Reason: fmt.Sprintf("must be within %.0f-%.0f, got %.1f", minHeightCm, maxHeightCm, b.HeightCm)}
	}
	if b.Age < minAge || b.Age > maxAge {
		return &InvalidBiometricsError{Field: "age", Reason: fmt.Sprintf("must be within %d-%d, got %d", minAge, maxAge, b.Age)}
	}
	if b.Gender != GenderMale && b.Gender != GenderFemale {
		return &InvalidBiometricsError{Field: "gender", Reason: fmt.Sprintf("must be male or female, got %q", b.Gender)}
	}
	if !models.IsValidActivityLevel(string(b.ActivityLevel)) {
		return &InvalidBiometricsError{Field: "activity_level", Reason: fmt.Sprintf("unknown level %q", b.ActivityLevel)}
	}
	return nil
}

// accuracyScore reflects how well Mifflin-St Jeor is expected to fit
// the subject. The formula was derived for adults; fit degrades at the
// extremes of age and body mass.
func accuracyScore(b Biometrics) float64 {
	score := 0.9
	if b.Age < 18 || b.Age > 80 {
		score -= 0.2
	}
	if b.WeightKg < 40 || b.WeightKg > 160 {
		score -= 0.15
	}
	if score < 0.4 {
		score = 0.4
	}
	return math.Round(score*1000) / 1000
}
