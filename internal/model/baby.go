package model

import "time"

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

type Baby struct {
	ID        string     `json:"id"`
	FamilyID  string     `json:"familyId"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName,omitempty"`
	Gender    Gender     `json:"gender,omitempty"`
	BirthDate time.Time  `json:"birthDate"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
