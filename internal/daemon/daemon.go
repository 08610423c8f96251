// ABOUTME: Background daemon synthesizing daily BMR burn events on a cron schedule.
// ABOUTME: Idempotent per user per day; skips users without a metabolic profile.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/harperreed/calbal/internal/engine"
	"github.com/harperreed/calbal/internal/models"
	"github.com/harperreed/calbal/internal/storage"
)

// maxBackfillDays caps how far a synthesis pass walks back looking for
// the last synthesized day. Longer outages need a manual profile recalc
// anyway; the numbers would be stale.
const maxBackfillDays = 30

// Daemon runs the daily BMR synthesis job.
type Daemon struct {
	engine *engine.Engine
	repo   storage.Repository
	log    *zap.Logger
	cron   *cron.Cron
	spec   string
}

// New creates a daemon over the given storage. spec is a standard cron
// expression; times are evaluated in UTC so the job fires just after
// the day boundary the balance calculations use.
func New(repo storage.Repository, log *zap.Logger, spec string) *Daemon {
	return &Daemon{
		engine: engine.New(repo),
		repo:   repo,
		log:    log,
		cron:   cron.New(cron.WithLocation(time.UTC)),
		spec:   spec,
	}
}

// Run starts the scheduler and blocks until the context is cancelled.
// A synthesis pass also runs immediately on startup to cover days
// missed while the daemon was down.
func (d *Daemon) Run(ctx context.Context) error {
	if _, err := d.cron.AddFunc(d.spec, func() { d.runOnce() }); err != nil {
		return fmt.Errorf("bad cron spec %q: %w", d.spec, err)
	}

	d.log.Info("daemon starting", zap.String("schedule", d.spec))
	d.runOnce()
	d.cron.Start()

	<-ctx.Done()
	d.log.Info("daemon stopping")
	stopCtx := d.cron.Stop()
	<-stopCtx.Done()
	return nil
}

// runOnce synthesizes BMR events for every known user, up through
// yesterday. Yesterday rather than today: the day must be complete
// before its baseline burn is written, or late exercise events would
// race it. Days missed during an outage are backfilled from the last
// synthesized day.
func (d *Daemon) runOnce() {
	users, err := d.repo.ListUsers()
	if err != nil {
		d.log.Error("list users failed", zap.Error(err))
		return
	}

	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	for _, userID := range users {
		for _, day := range d.missedDays(userID, yesterday) {
			ev, err := d.engine.SynthesizeBMREvent(userID, day)
			switch {
			case errors.Is(err, engine.ErrNotConfigured):
				d.log.Debug("no metabolic profile, skipping",
					zap.String("user", userID))
			case err != nil:
				d.log.Error("bmr synthesis failed",
					zap.String("user", userID), zap.Error(err))
			case ev == nil:
				d.log.Debug("bmr event already present",
					zap.String("user", userID),
					zap.String("date", day.Format("2006-01-02")))
			default:
				d.log.Info("synthesized bmr event",
					zap.String("user", userID),
					zap.String("date", day.Format("2006-01-02")),
					zap.Float64("kcal", ev.Amount))
			}
			if errors.Is(err, engine.ErrNotConfigured) {
				break
			}
		}
	}
}

// missedDays returns the days through yesterday still lacking a
// burned_bmr event, oldest first. The walk back stops at the last
// synthesized day; a user with no burned_bmr history has no gap to
// fill and gets yesterday only.
func (d *Daemon) missedDays(userID string, yesterday time.Time) []time.Time {
	days := []time.Time{yesterday}
	for i := 1; i < maxBackfillDays; i++ {
		day := yesterday.AddDate(0, 0, -i)
		has, err := d.repo.HasEventOn(userID, models.EventBurnedBMR, day)
		if err != nil {
			d.log.Error("backfill scan failed",
				zap.String("user", userID), zap.Error(err))
			break
		}
		if has {
			reverse(days)
			return days
		}
		days = append(days, day)
	}
	return []time.Time{yesterday}
}

func reverse(days []time.Time) {
	for i, j := 0, len(days)-1; i < j; i, j = i+1, j-1 {
		days[i], days[j] = days[j], days[i]
	}
}
