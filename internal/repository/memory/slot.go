// Package memory provides in-memory implementations of the repository
// interfaces for local development and tests. SlotStore honors the same
// conditional-update contract as the postgres implementation: the
// check-open-and-flip happens under one lock, so concurrent Book calls on
// the same identity resolve to exactly one winner.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/psiconecta/booking-api/internal/model"
	apperrors "github.com/psiconecta/booking-api/pkg/errors"
)

type slotKey struct {
	therapistID uuid.UUID
	unixNano    int64
	modality    model.Modality
}

type SlotStore struct {
	mu    sync.Mutex
	slots map[slotKey]*model.Slot
}

func NewSlotStore() *SlotStore {
	return &SlotStore{slots: make(map[slotKey]*model.Slot)}
}

func (s *SlotStore) Add(slot model.Slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := slotKey{slot.TherapistID, slot.Datetime.UnixNano(), slot.Modality}
	stored := slot
	s.slots[key] = &stored
}

func (s *SlotStore) ListOpen(ctx context.Context, now time.Time, modality *model.Modality) ([]model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []model.Slot
	for _, slot := range s.slots {
		if slot.IsBooked || slot.Datetime.Before(now) {
			continue
		}
		if modality != nil && slot.Modality != *modality {
			continue
		}
		result = append(result, *slot)
	}
	sortSlots(result)
	return result, nil
}

func (s *SlotStore) ListOpenForTherapist(ctx context.Context, therapistID uuid.UUID, now time.Time, modality *model.Modality) ([]model.Slot, error) {
	all, err := s.ListOpen(ctx, now, modality)
	if err != nil {
		return nil, err
	}
	var result []model.Slot
	for _, slot := range all {
		if slot.TherapistID == therapistID {
			result = append(result, slot)
		}
	}
	return result, nil
}

func (s *SlotStore) ListBookedInstants(ctx context.Context, therapistID *uuid.UUID, now time.Time) ([]model.BookedInstant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[slotKey]struct{})
	var result []model.BookedInstant
	for _, slot := range s.slots {
		if !slot.IsBooked || slot.Datetime.Before(now) {
			continue
		}
		if therapistID != nil && slot.TherapistID != *therapistID {
			continue
		}
		key := slotKey{slot.TherapistID, slot.Datetime.UnixNano(), ""}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, model.BookedInstant{
			TherapistID: slot.TherapistID,
			Datetime:    slot.Datetime,
		})
	}
	return result, nil
}

func (s *SlotStore) Book(ctx context.Context, therapistID uuid.UUID, datetime time.Time, modality model.Modality) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := slotKey{therapistID, datetime.UnixNano(), modality}
	slot, ok := s.slots[key]
	if !ok {
		return apperrors.NotFound("slot", nil)
	}
	if slot.IsBooked {
		return apperrors.AlreadyBooked(nil)
	}
	slot.IsBooked = true
	return nil
}

func sortSlots(slots []model.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].TherapistID != slots[j].TherapistID {
			return slots[i].TherapistID.String() < slots[j].TherapistID.String()
		}
		return slots[i].Datetime.Before(slots[j].Datetime)
	})
}
