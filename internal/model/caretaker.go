package model

import "time"

type Caretaker struct {
	ID        string     `json:"id"`
	FamilyID  string     `json:"familyId"`
	LoginID   string     `json:"loginId"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
