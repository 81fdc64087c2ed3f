package model

import "time"

// ActivityKind discriminates the Activity union. Every consumer switches on
// Kind rather than probing optional fields.
type ActivityKind string

const (
	ActivitySleep     ActivityKind = "sleep"
	ActivityFeed      ActivityKind = "feed"
	ActivityDiaper    ActivityKind = "diaper"
	ActivityNote      ActivityKind = "note"
	ActivityBath      ActivityKind = "bath"
	ActivityMilestone ActivityKind = "milestone"
)

// ParseActivityKind validates a kind string from a query parameter.
func ParseActivityKind(s string) (ActivityKind, bool) {
	switch ActivityKind(s) {
	case ActivitySleep, ActivityFeed, ActivityDiaper, ActivityNote, ActivityBath, ActivityMilestone:
		return ActivityKind(s), true
	}
	return "", false
}

// Activity is a tagged union over the logged event types. Exactly one of the
// entity pointers is non-nil, matching Kind.
type Activity struct {
	Kind      ActivityKind `json:"kind"`
	Sleep     *SleepLog    `json:"sleep,omitempty"`
	Feed      *FeedLog     `json:"feed,omitempty"`
	Diaper    *DiaperLog   `json:"diaper,omitempty"`
	Note      *Note        `json:"note,omitempty"`
	Bath      *BathLog     `json:"bath,omitempty"`
	Milestone *Milestone   `json:"milestone,omitempty"`
}

func SleepActivity(s *SleepLog) Activity      { return Activity{Kind: ActivitySleep, Sleep: s} }
func FeedActivity(f *FeedLog) Activity        { return Activity{Kind: ActivityFeed, Feed: f} }
func DiaperActivity(d *DiaperLog) Activity    { return Activity{Kind: ActivityDiaper, Diaper: d} }
func NoteActivity(n *Note) Activity           { return Activity{Kind: ActivityNote, Note: n} }
func BathActivity(b *BathLog) Activity        { return Activity{Kind: ActivityBath, Bath: b} }
func MilestoneActivity(m *Milestone) Activity { return Activity{Kind: ActivityMilestone, Milestone: m} }

// ID returns the underlying record's identifier.
func (a Activity) ID() string {
	switch a.Kind {
	case ActivitySleep:
		return a.Sleep.ID
	case ActivityFeed:
		return a.Feed.ID
	case ActivityDiaper:
		return a.Diaper.ID
	case ActivityNote:
		return a.Note.ID
	case ActivityBath:
		return a.Bath.ID
	case ActivityMilestone:
		return a.Milestone.ID
	}
	return ""
}

// EffectiveTime is the instant used to order an activity in the timeline:
// the end time of a completed sleep session, otherwise the record's primary
// time field, otherwise now.
func (a Activity) EffectiveTime() time.Time {
	switch a.Kind {
	case ActivitySleep:
		if a.Sleep.EndTime != nil {
			return *a.Sleep.EndTime
		}
		return a.Sleep.StartTime
	case ActivityFeed:
		return a.Feed.Time
	case ActivityDiaper:
		return a.Diaper.Time
	case ActivityNote:
		return a.Note.Time
	case ActivityBath:
		return a.Bath.Time
	case ActivityMilestone:
		return a.Milestone.Date
	}
	return time.Now().UTC()
}
