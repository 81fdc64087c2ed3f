package model

import "time"

type MilestoneCategory string

const (
	MilestoneMotor     MilestoneCategory = "MOTOR"
	MilestoneCognitive MilestoneCategory = "COGNITIVE"
	MilestoneSocial    MilestoneCategory = "SOCIAL"
	MilestoneLanguage  MilestoneCategory = "LANGUAGE"
	MilestoneCustom    MilestoneCategory = "CUSTOM"
)

type Milestone struct {
	ID            string            `json:"id"`
	BabyID        string            `json:"babyId"`
	CaretakerID   *string           `json:"caretakerId,omitempty"`
	CaretakerName string            `json:"caretakerName,omitempty"`
	Date          time.Time         `json:"date"`
	Title         string            `json:"title"`
	Category      MilestoneCategory `json:"category"`
	Description   string            `json:"description,omitempty"`
	DeletedAt     *time.Time        `json:"deletedAt,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}
