package model

import "time"

type Note struct {
	ID            string     `json:"id"`
	BabyID        string     `json:"babyId"`
	CaretakerID   *string    `json:"caretakerId,omitempty"`
	CaretakerName string     `json:"caretakerName,omitempty"`
	Time          time.Time  `json:"time"`
	Content       string     `json:"content"`
	Category      string     `json:"category,omitempty"`
	DeletedAt     *time.Time `json:"deletedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
