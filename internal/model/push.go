package model

import "time"

// PushSubscription stores a browser push endpoint for a family device.
type PushSubscription struct {
	ID        int64     `json:"id"`
	FamilyID  string    `json:"familyId"`
	Endpoint  string    `json:"endpoint"`
	P256dhKey string    `json:"-"`
	AuthKey   string    `json:"-"`
	Device    string    `json:"device,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notification types recorded for send-once deduplication.
const (
	NotifTypeOpenSleep = "open_sleep"
	NotifTypeFeedGap   = "feed_gap"
)
