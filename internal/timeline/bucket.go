// ABOUTME: Temporal bucketing engine grouping ledger events into intervals.
// ABOUTME: Hour/day/week/month buckets, UTC anchors, Monday weeks, half-open.
package timeline

import (
	"fmt"
	"time"

	"github.com/harperreed/calbal/internal/models"
)

// Granularity is the width of a timeline bucket.
type Granularity string

const (
	Hour  Granularity = "hour"
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

// AllGranularities returns all valid granularities.
var AllGranularities = []Granularity{Hour, Day, Week, Month}

// IsValidGranularity checks if a string is a valid granularity.
func IsValidGranularity(s string) bool {
	for _, g := range AllGranularities {
		if string(g) == s {
			return true
		}
	}
	return false
}

// Bucket is one interval [Start, End) with per-type event sums.
// A bucket with no events still appears in the sequence: a day with
// nothing logged is a real "0 consumed" data point, not a gap.
type Bucket struct {
	Start              time.Time
	End                time.Time
	Consumed           float64
	BurnedExercise     float64
	BurnedBMR          float64
	WeightSum          float64 // sum of weight readings; use with WeightCount
	WeightCount        int
	EventsCount        int
	LastEventTimestamp *time.Time

	lastWeight   float64
	lastWeightAt time.Time
}

// LastWeightKg returns the most recent weight reading in the bucket,
// or 0 and false when none was recorded.
func (b *Bucket) LastWeightKg() (float64, bool) {
	if b.WeightCount == 0 {
		return 0, false
	}
	return b.lastWeight, true
}

// Partition groups events into an ordered, contiguous sequence of
// buckets covering [start, end). Events outside the range are ignored.
// Single pass over the events; O(n + buckets).
//
// An event exactly on a bucket boundary belongs to the bucket that
// starts there (intervals are inclusive-start, exclusive-end).
func Partition(events []*models.CalorieEvent, start, end time.Time, g Granularity) ([]*Bucket, error) {
	if !IsValidGranularity(string(g)) {
		return nil, fmt.Errorf("unknown granularity: %s", g)
	}
	start = start.UTC()
	end = end.UTC()
	if !start.Before(end) {
		return nil, fmt.Errorf("start %v must be before end %v", start, end)
	}

	// Lay out the contiguous bucket sequence first so empty periods
	// are present in the output.
	var buckets []*Bucket
	for cur := Align(start, g); cur.Before(end); cur = next(cur, g) {
		buckets = append(buckets, &Bucket{Start: cur, End: next(cur, g)})
	}

	for _, e := range events {
		ts := e.Timestamp.UTC()
		if ts.Before(start) || !ts.Before(end) {
			continue
		}
		idx := indexOf(buckets, ts)
		if idx < 0 {
			continue
		}
		b := buckets[idx]
		switch e.EventType {
		case models.EventConsumed:
			b.Consumed += e.Amount
		case models.EventBurnedExercise:
			b.BurnedExercise += e.Amount
		case models.EventBurnedBMR:
			b.BurnedBMR += e.Amount
		case models.EventWeightMeasurement:
			b.WeightSum += e.Amount
			b.WeightCount++
			if b.WeightCount == 1 || ts.After(b.lastWeightAt) {
				b.lastWeightAt = ts
				b.lastWeight = e.Amount
			}
		}
		b.EventsCount++
		if b.LastEventTimestamp == nil || ts.After(*b.LastEventTimestamp) {
			t := ts
			b.LastEventTimestamp = &t
		}
	}

	return buckets, nil
}

// Align truncates t down to the start of its bucket: top of the hour,
// UTC midnight, the preceding Monday midnight, or the first of the
// month.
func Align(t time.Time, g Granularity) time.Time {
	t = t.UTC()
	switch g {
	case Hour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, time.UTC)
	case Day:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case Week:
		midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		weekday := int(midnight.Weekday()) // 0=Sun
		if weekday == 0 {
			weekday = 7 // treat Sunday as day 7 so Mon=1..Sun=7
		}
		return midnight.AddDate(0, 0, -(weekday - 1))
	case Month:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return t
}

// next returns the start of the bucket following the one at cur.
// AddDate handles month/year boundaries and variable month lengths.
func next(cur time.Time, g Granularity) time.Time {
	switch g {
	case Hour:
		return cur.Add(time.Hour)
	case Day:
		return cur.AddDate(0, 0, 1)
	case Week:
		return cur.AddDate(0, 0, 7)
	case Month:
		return cur.AddDate(0, 1, 0)
	}
	return cur
}

// indexOf locates the bucket containing ts by binary search over the
// ordered bucket starts.
func indexOf(buckets []*Bucket, ts time.Time) int {
	lo, hi := 0, len(buckets)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		b := buckets[mid]
		switch {
		case ts.Before(b.Start):
			hi = mid - 1
		case !ts.Before(b.End):
			lo = mid + 1
		default:
			return mid
		}
	}
	return -1
}
