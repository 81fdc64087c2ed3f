package model

import "time"

type FeedType string

const (
	FeedTypeBreast FeedType = "BREAST"
	FeedTypeBottle FeedType = "BOTTLE"
	FeedTypeSolids FeedType = "SOLIDS"
)

type BreastSide string

const (
	BreastSideLeft  BreastSide = "LEFT"
	BreastSideRight BreastSide = "RIGHT"
)

// FeedLog records one feeding. Amount's unit depends on Type (oz for bottle,
// g for solids, minutes for breast); UnitAbbr carries the unit string.
// Side and FeedDuration (seconds) apply to breast feeds only, Food to solids.
type FeedLog struct {
	ID            string     `json:"id"`
	BabyID        string     `json:"babyId"`
	CaretakerID   *string    `json:"caretakerId,omitempty"`
	CaretakerName string     `json:"caretakerName,omitempty"`
	Time          time.Time  `json:"time"`
	Type          FeedType   `json:"type"`
	Amount        *float64   `json:"amount,omitempty"`
	UnitAbbr      string     `json:"unitAbbr,omitempty"`
	Side          BreastSide `json:"side,omitempty"`
	FeedDuration  *int       `json:"feedDuration,omitempty"`
	Food          string     `json:"food,omitempty"`
	DeletedAt     *time.Time `json:"deletedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
