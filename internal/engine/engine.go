// ABOUTME: Read-side computation engine over the event ledger.
// ABOUTME: Balances, timelines, goal progress, and patterns, all computed on read.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/calbal/internal/balance"
	"github.com/harperreed/calbal/internal/goal"
	"github.com/harperreed/calbal/internal/metabolic"
	"github.com/harperreed/calbal/internal/models"
	"github.com/harperreed/calbal/internal/pattern"
	"github.com/harperreed/calbal/internal/storage"
	"github.com/harperreed/calbal/internal/timeline"
)

// ErrNotConfigured signals missing setup (no active goal, no profile)
// as distinct from a zero-valued result, so callers can prompt setup
// instead of showing misleading zeros.
var ErrNotConfigured = errors.New("not configured")

// Engine computes derived views from the canonical event ledger.
// Nothing derived is ever written back; every read recomputes from the
// full event set, so late-arriving events are always reflected.
type Engine struct {
	repo storage.Repository
}

// New creates an Engine over the given repository.
func New(repo storage.Repository) *Engine {
	return &Engine{repo: repo}
}

// LogEvent validates and appends one event to the ledger.
func (e *Engine) LogEvent(ev *models.CalorieEvent) error {
	return e.repo.AppendEvent(ev)
}

// GetDailyBalance computes the balance for one UTC date.
func (e *Engine) GetDailyBalance(userID string, date time.Time) (*balance.DailyBalance, error) {
	date = date.UTC()
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	events, err := e.repo.ListEvents(userID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("daily balance: %w", err)
	}

	buckets, err := timeline.Partition(events, dayStart, dayEnd, timeline.Day)
	if err != nil {
		return nil, fmt.Errorf("daily balance: %w", err)
	}

	profile, err := e.repo.GetMetabolicProfile(userID)
	if err != nil {
		return nil, fmt.Errorf("daily balance: %w", err)
	}

	return balance.FromBucket(userID, buckets[0], profile), nil
}

// GetTimeline buckets a user's events over [start, end) at the given
// granularity. Empty periods appear as explicit zero buckets.
func (e *Engine) GetTimeline(userID string, start, end time.Time, g timeline.Granularity) ([]*timeline.Bucket, error) {
	events, err := e.repo.ListEvents(userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("timeline: %w", err)
	}
	return timeline.Partition(events, start, end, g)
}

// SetGoal activates a new goal for the user, deactivating any prior
// one. Concurrent activations are resolved by compare-and-swap; the
// loser receives storage.ErrGoalConflict.
func (e *Engine) SetGoal(g *models.CalorieGoal) error {
	if g.StartWeightKg == 0 && g.GoalType != models.GoalMaintenance {
		// Fall back to the latest logged weight when the caller did not
		// supply a starting weight.
		w, err := e.repo.LatestWeight(g.UserID)
		if err != nil {
			return fmt.Errorf("set goal: %w", err)
		}
		if w != nil {
			g.StartWeightKg = w.Amount
		}
	}
	if err := g.Validate(); err != nil {
		return fmt.Errorf("set goal: %w", err)
	}
	g.EndDate = goal.ProjectEndDate(g)

	current, err := e.repo.GetActiveGoal(g.UserID)
	if err != nil {
		return fmt.Errorf("set goal: %w", err)
	}
	expected := ""
	if current != nil {
		expected = current.ID.String()
	}
	return e.repo.ActivateGoal(g, expected)
}

// GetGoalProgress computes progress for the user's active goal as of
// now. Returns ErrNotConfigured when no goal is active.
func (e *Engine) GetGoalProgress(userID string) (*goal.Progress, error) {
	active, err := e.repo.GetActiveGoal(userID)
	if err != nil {
		return nil, fmt.Errorf("goal progress: %w", err)
	}
	if active == nil {
		return nil, fmt.Errorf("%w: no active goal for %s", ErrNotConfigured, userID)
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	todays, err := e.GetDailyBalance(userID, today)
	if err != nil {
		return nil, err
	}

	period, err := e.dailyBalances(userID, active.StartDate, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	p, err := goal.Track(active, todays, period, today)
	if err != nil {
		return nil, fmt.Errorf("goal progress: %w", err)
	}

	if w, err := e.repo.LatestWeight(userID); err == nil && w != nil {
		kg := w.Amount
		p.CurrentWeightKg = &kg
	}

	return p, nil
}

// DetectPatterns scans the trailing windowDays of daily buckets for
// behavioral signals.
func (e *Engine) DetectPatterns(userID string, windowDays int) (*pattern.Report, error) {
	if windowDays < pattern.MinWindowDays {
		return nil, fmt.Errorf("detect patterns: window must be >= %d days", pattern.MinWindowDays)
	}

	now := time.Now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -windowDays)

	events, err := e.repo.ListEvents(userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("detect patterns: %w", err)
	}

	days, err := timeline.Partition(events, start, end, timeline.Day)
	if err != nil {
		return nil, fmt.Errorf("detect patterns: %w", err)
	}

	return pattern.Detect(userID, events, days, pattern.DefaultConfig())
}

// CalculateMetabolicProfile computes BMR/TDEE from biometrics and
// persists the result, superseding any prior profile.
func (e *Engine) CalculateMetabolicProfile(userID string, b metabolic.Biometrics) (*models.MetabolicProfile, error) {
	r, err := metabolic.Compute(b)
	if err != nil {
		return nil, err
	}

	p := models.NewMetabolicProfile(userID, r.BMRCalories, r.TDEECalories, b.ActivityLevel)
	p.Method = metabolic.Method
	p.AccuracyScore = r.AccuracyScore

	if err := e.repo.SaveProfile(p); err != nil {
		return nil, fmt.Errorf("calculate profile: %w", err)
	}
	return p, nil
}

// SynthesizeBMREvent writes the once-daily burned_bmr event for a user
// from the current profile. Idempotent per UTC day. Returns
// ErrNotConfigured when the user has no profile.
func (e *Engine) SynthesizeBMREvent(userID string, date time.Time) (*models.CalorieEvent, error) {
	has, err := e.repo.HasEventOn(userID, models.EventBurnedBMR, date)
	if err != nil {
		return nil, fmt.Errorf("synthesize bmr: %w", err)
	}
	if has {
		return nil, nil
	}

	profile, err := e.repo.GetMetabolicProfile(userID)
	if err != nil {
		return nil, fmt.Errorf("synthesize bmr: %w", err)
	}
	if profile == nil {
		return nil, fmt.Errorf("%w: no metabolic profile for %s", ErrNotConfigured, userID)
	}

	date = date.UTC()
	ev := models.NewCalorieEvent(userID, models.EventBurnedBMR, profile.BMRCalories).
		WithTimestamp(time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)).
		WithSource(models.SourceManual).
		WithMetadata("synthesized_from", profile.ID.String())

	if err := e.repo.AppendEvent(ev); err != nil {
		return nil, fmt.Errorf("synthesize bmr: %w", err)
	}
	return ev, nil
}

// dailyBalances computes one balance per day over [start, end).
func (e *Engine) dailyBalances(userID string, start, end time.Time) ([]*balance.DailyBalance, error) {
	events, err := e.repo.ListEvents(userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("daily balances: %w", err)
	}
	buckets, err := timeline.Partition(events, start, end, timeline.Day)
	if err != nil {
		return nil, fmt.Errorf("daily balances: %w", err)
	}

	profile, err := e.repo.GetMetabolicProfile(userID)
	if err != nil {
		return nil, fmt.Errorf("daily balances: %w", err)
	}

	out := make([]*balance.DailyBalance, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, balance.FromBucket(userID, b, profile))
	}
	return out, nil
}
