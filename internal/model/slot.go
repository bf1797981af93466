package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Modality is the delivery channel of a session.
type Modality string

const (
	ModalityOnline     Modality = "online"
	ModalityPresencial Modality = "presencial"
)

func ParseModality(s string) (Modality, error) {
	switch Modality(s) {
	case ModalityOnline:
		return ModalityOnline, nil
	case ModalityPresencial:
		return ModalityPresencial, nil
	}
	return "", fmt.Errorf("unknown modality %q", s)
}

// Slot is a bookable (therapist, datetime, modality) triple. The triple is
// unique in the store; Datetime is an absolute instant persisted in UTC.
type Slot struct {
	TherapistID uuid.UUID `db:"therapist_id" json:"therapist_id"`
	Datetime    time.Time `db:"datetime" json:"datetime"`
	Modality    Modality  `db:"modality" json:"modality"`
	IsBooked    bool      `db:"is_booked" json:"is_booked"`
}

// BookedInstant marks one therapist occupied at one instant, regardless of
// the modality that was booked.
type BookedInstant struct {
	TherapistID uuid.UUID `db:"therapist_id"`
	Datetime    time.Time `db:"datetime"`
}

// WeeklySlots buckets a therapist's open slots into 7 calendar days,
// today first.
type WeeklySlots [7][]Slot

type BookingRequest struct {
	TherapistID string `json:"therapist_id" validate:"required,uuid"`
	Datetime    string `json:"datetime" validate:"required"`
	Modality    string `json:"modality" validate:"required,oneof=online presencial"`
}

type BookingConfirmation struct {
	TherapistID uuid.UUID `json:"therapist_id"`
	Datetime    time.Time `json:"datetime"`
	Modality    Modality  `json:"modality"`
	BookedAt    time.Time `json:"booked_at"`
}
