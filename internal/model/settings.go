package model

import "time"

// Settings holds per-family preferences. Timezone is an IANA zone name used
// for day-window calculations; the reminder fields disable their check when 0.
type Settings struct {
	ID                  string    `json:"id"`
	FamilyID            string    `json:"familyId"`
	Timezone            string    `json:"timezone"`
	DefaultBottleUnit   string    `json:"defaultBottleUnit"`
	DefaultSolidsUnit   string    `json:"defaultSolidsUnit"`
	FeedGapMinutes      int       `json:"feedGapMinutes"`
	OpenSleepAlertHours int       `json:"openSleepAlertHours"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}
