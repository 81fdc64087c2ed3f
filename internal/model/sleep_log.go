package model

import "time"

type SleepType string

const (
	SleepTypeNap   SleepType = "NAP"
	SleepTypeNight SleepType = "NIGHT_SLEEP"
)

type SleepQuality string

const (
	SleepQualityPoor      SleepQuality = "POOR"
	SleepQualityFair      SleepQuality = "FAIR"
	SleepQualityGood      SleepQuality = "GOOD"
	SleepQualityExcellent SleepQuality = "EXCELLENT"
)

// SleepLog records one sleep session. EndTime and Duration are set together
// when the session ends; a row with a nil EndTime is an open session.
type SleepLog struct {
	ID            string       `json:"id"`
	BabyID        string       `json:"babyId"`
	CaretakerID   *string      `json:"caretakerId,omitempty"`
	CaretakerName string       `json:"caretakerName,omitempty"`
	StartTime     time.Time    `json:"startTime"`
	EndTime       *time.Time   `json:"endTime,omitempty"`
	Duration      *int         `json:"duration,omitempty"`
	Type          SleepType    `json:"type"`
	Location      string       `json:"location,omitempty"`
	Quality       SleepQuality `json:"quality,omitempty"`
	DeletedAt     *time.Time   `json:"deletedAt,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// Ended reports whether the session has been closed out.
func (s *SleepLog) Ended() bool {
	return s.EndTime != nil
}
