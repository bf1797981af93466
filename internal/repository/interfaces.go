package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/psiconecta/booking-api/internal/model"
)

// SlotRepository is the availability store. All writes go through Book,
// which is a single conditional update from the store's perspective.
type SlotRepository interface {
	// ListOpen returns open future slots across all therapists, ordered by
	// therapist then datetime. A non-nil modality narrows the result.
	ListOpen(ctx context.Context, now time.Time, modality *model.Modality) ([]model.Slot, error)

	// ListOpenForTherapist is ListOpen scoped to one therapist.
	ListOpenForTherapist(ctx context.Context, therapistID uuid.UUID, now time.Time, modality *model.Modality) ([]model.Slot, error)

	// ListBookedInstants returns the distinct (therapist, datetime) pairs
	// with a booked slot at or after now, in any modality. A non-nil
	// therapistID scopes the result.
	ListBookedInstants(ctx context.Context, therapistID *uuid.UUID, now time.Time) ([]model.BookedInstant, error)

	// Book flips exactly one open slot to booked. It fails with
	// ErrAlreadyBooked when the slot exists but is taken, ErrNotFound when
	// no slot has that identity, and ErrStoreUnavailable on infrastructure
	// failure. No side effects on failure.
	Book(ctx context.Context, therapistID uuid.UUID, datetime time.Time, modality model.Modality) error
}

type TherapistRepository interface {
	// List returns all therapists; a non-nil specialty narrows the result
	// to therapists offering it.
	List(ctx context.Context, specialty *string) ([]*model.Therapist, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Therapist, error)
	ListSpecialties(ctx context.Context) ([]string, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string, retryAt *time.Time) error
	MoveToDeadLetter(ctx context.Context, event *model.OutboxEvent) error
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}
