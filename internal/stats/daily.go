// Package stats computes derived daily statistics over logged activities.
package stats

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fernwood/nestling/internal/model"
	"github.com/fernwood/nestling/internal/timeutil"
)

// DailyStats is the aggregate view of one local calendar day.
type DailyStats struct {
	Date               string `json:"date"`
	AwakeMinutes       int    `json:"awakeMinutes"`
	SleepMinutes       int    `json:"sleepMinutes"`
	AwakeTime          string `json:"awakeTime"`
	SleepTime          string `json:"sleepTime"`
	TotalConsumed      string `json:"totalConsumed"`
	SolidsConsumed     string `json:"solidsConsumed"`
	DiaperChanges      int    `json:"diaperChanges"`
	PoopCount          int    `json:"poopCount"`
	LeftBreastSeconds  int    `json:"leftBreastSeconds"`
	RightBreastSeconds int    `json:"rightBreastSeconds"`
	LeftBreastTime     string `json:"leftBreastTime"`
	RightBreastTime    string `json:"rightBreastTime"`
	NoteCount          int    `json:"noteCount"`
	BathCount          int    `json:"bathCount"`
	MilestoneCount     int    `json:"milestoneCount"`
}

// noneSentinel is rendered for empty consumption buckets so clients can
// distinguish "nothing logged" from a formatting failure.
const noneSentinel = "None"

// ComputeDailyStats aggregates activities over the local calendar day that
// contains day in loc, evaluated at instant now. Sleep contributes only the
// minutes of overlap with the day window, so a session spanning midnight is
// split between the two days it touches.
func ComputeDailyStats(activities []model.Activity, day, now time.Time, loc *time.Location) DailyStats {
	if loc == nil {
		loc = time.UTC
	}
	windowStart, windowEnd := timeutil.DayWindow(day, loc)
	// Exclusive bound for sleep overlap: clipping to the inclusive window end
	// (23:59:59.999) would shave the final minute off a session that runs
	// through midnight, leaving a 59/60 split instead of 60/60.
	dayEnd := windowEnd.Add(time.Millisecond)
	inWindow := func(t time.Time) bool {
		return !t.Before(windowStart) && !t.After(windowEnd)
	}

	var (
		sleepMinutes   int
		consumed       = map[string]float64{}
		solids         = map[string]float64{}
		diaperCount    int
		poopCount      int
		leftSeconds    int
		rightSeconds   int
		noteCount      int
		bathCount      int
		milestoneCount int
	)

	for _, a := range activities {
		switch a.Kind {
		case model.ActivitySleep:
			s := a.Sleep
			if s.EndTime == nil {
				continue
			}
			overlapStart := maxTime(s.StartTime, windowStart)
			overlapEnd := minTime(*s.EndTime, dayEnd)
			if overlapEnd.After(overlapStart) {
				sleepMinutes += int(overlapEnd.Sub(overlapStart) / time.Minute)
			}

		case model.ActivityFeed:
			f := a.Feed
			if !inWindow(f.Time) {
				continue
			}
			if f.Amount != nil {
				unit := f.UnitAbbr
				if unit == "" {
					unit = "oz"
				}
				if f.Type == model.FeedTypeSolids {
					solids[unit] += *f.Amount
				} else {
					consumed[unit] += *f.Amount
				}
			}
			if f.Type == model.FeedTypeBreast {
				secs := 0
				if f.FeedDuration != nil {
					secs = *f.FeedDuration
				} else if f.Amount != nil {
					// Older records stored breast duration as minutes in amount.
					secs = int(*f.Amount * 60)
				}
				switch f.Side {
				case model.BreastSideLeft:
					leftSeconds += secs
				case model.BreastSideRight:
					rightSeconds += secs
				}
			}

		case model.ActivityDiaper:
			d := a.Diaper
			if !inWindow(d.Time) {
				continue
			}
			diaperCount++
			if d.IsPoop() {
				poopCount++
			}

		case model.ActivityNote:
			if inWindow(a.Note.Time) {
				noteCount++
			}

		case model.ActivityBath:
			if inWindow(a.Bath.Time) {
				bathCount++
			}

		case model.ActivityMilestone:
			if inWindow(a.Milestone.Date) {
				milestoneCount++
			}
		}
	}

	elapsed := timeutil.ElapsedMinutesOfDay(day, now, loc)
	awake := elapsed - sleepMinutes
	if awake < 0 {
		awake = 0
	}

	return DailyStats{
		Date:               day.In(loc).Format("2006-01-02"),
		AwakeMinutes:       awake,
		SleepMinutes:       sleepMinutes,
		AwakeTime:          FormatMinutes(awake),
		SleepTime:          FormatMinutes(sleepMinutes),
		TotalConsumed:      formatBuckets(consumed),
		SolidsConsumed:     formatBuckets(solids),
		DiaperChanges:      diaperCount,
		PoopCount:          poopCount,
		LeftBreastSeconds:  leftSeconds,
		RightBreastSeconds: rightSeconds,
		LeftBreastTime:     FormatMinutes(leftSeconds / 60),
		RightBreastTime:    FormatMinutes(rightSeconds / 60),
		NoteCount:          noteCount,
		BathCount:          bathCount,
		MilestoneCount:     milestoneCount,
	}
}

// FormatMinutes renders a minute count as "Xh Ym".
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// formatBuckets renders per-unit totals as "4 oz, 50 g". Units are never
// merged; ordering is alphabetical for stable output.
func formatBuckets(buckets map[string]float64) string {
	if len(buckets) == 0 {
		return noneSentinel
	}
	units := make([]string, 0, len(buckets))
	for u := range buckets {
		units = append(units, u)
	}
	sort.Strings(units)

	parts := make([]string, 0, len(units))
	for _, u := range units {
		parts = append(parts, fmt.Sprintf("%s %s", trimFloat(buckets[u]), strings.ToLower(u)))
	}
	return strings.Join(parts, ", ")
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
