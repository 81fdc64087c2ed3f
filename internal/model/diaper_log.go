package model

import "time"

type DiaperType string

const (
	DiaperTypeWet   DiaperType = "WET"
	DiaperTypeDirty DiaperType = "DIRTY"
	DiaperTypeBoth  DiaperType = "BOTH"
)

// DiaperLog records one diaper change. Condition and Color are meaningful
// only when Type is DIRTY or BOTH.
type DiaperLog struct {
	ID            string     `json:"id"`
	BabyID        string     `json:"babyId"`
	CaretakerID   *string    `json:"caretakerId,omitempty"`
	CaretakerName string     `json:"caretakerName,omitempty"`
	Time          time.Time  `json:"time"`
	Type          DiaperType `json:"type"`
	Condition     string     `json:"condition,omitempty"`
	Color         string     `json:"color,omitempty"`
	DeletedAt     *time.Time `json:"deletedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// IsPoop reports whether the change involved stool.
func (d *DiaperLog) IsPoop() bool {
	return d.Type == DiaperTypeDirty || d.Type == DiaperTypeBoth
}
