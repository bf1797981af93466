package model

import (
	"github.com/google/uuid"
)

type Therapist struct {
	ID                  uuid.UUID  `json:"id"`
	Name                string     `json:"name"`
	AvatarURL           string     `json:"avatar_url"`
	Description         string     `json:"description"`
	SupportedModalities []Modality `json:"supported_modalities"`
	Specialties         []string   `json:"specialties"`
}

// TherapistAvailability pairs a therapist with their currently bookable
// slots, sorted ascending by datetime.
type TherapistAvailability struct {
	Therapist *Therapist `json:"therapist"`
	Slots     []Slot     `json:"slots"`
}
