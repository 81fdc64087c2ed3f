package model

import "time"

type BathLog struct {
	ID            string     `json:"id"`
	BabyID        string     `json:"babyId"`
	CaretakerID   *string    `json:"caretakerId,omitempty"`
	CaretakerName string     `json:"caretakerName,omitempty"`
	Time          time.Time  `json:"time"`
	SoapUsed      bool       `json:"soapUsed"`
	Notes         string     `json:"notes,omitempty"`
	DeletedAt     *time.Time `json:"deletedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
