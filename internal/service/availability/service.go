package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/psiconecta/booking-api/internal/model"
	"github.com/psiconecta/booking-api/internal/repository"
	"github.com/psiconecta/booking-api/pkg/logger"
	"github.com/psiconecta/booking-api/pkg/metrics"
)

// Service answers "what is bookable now". It never reads the clock itself;
// callers pass the reference instant so results are deterministic.
type Service struct {
	slots      repository.SlotRepository
	therapists repository.TherapistRepository
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

func NewService(slots repository.SlotRepository, therapists repository.TherapistRepository, logger *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		slots:      slots,
		therapists: therapists,
		logger:     logger,
		metrics:    m,
	}
}

func (s *Service) observeQuery(scope string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.AvailabilityQueries.WithLabelValues(scope, status).Inc()
}

// Query produces the marketplace listing: every therapist with at least one
// qualifying slot, slots sorted ascending per therapist. Therapists whose
// only future slots are booked, or booked in a sibling modality, are
// omitted.
func (s *Service) Query(ctx context.Context, now time.Time, modality *model.Modality) (result []*model.TherapistAvailability, err error) {
	timer := prometheus.NewTimer(s.metrics.AvailabilityLatency)
	defer timer.ObserveDuration()
	defer func() { s.observeQuery("marketplace", err) }()

	open, err := s.slots.ListOpen(ctx, now, modality)
	if err != nil {
		return nil, fmt.Errorf("failed to list open slots: %w", err)
	}

	excluded, err := s.bookedInstantSet(ctx, nil, now)
	if err != nil {
		return nil, err
	}

	bySlotOwner := make(map[uuid.UUID][]model.Slot)
	for _, slot := range open {
		if excluded.contains(slot.TherapistID, slot.Datetime) {
			continue
		}
		bySlotOwner[slot.TherapistID] = append(bySlotOwner[slot.TherapistID], slot)
	}

	if len(bySlotOwner) == 0 {
		return []*model.TherapistAvailability{}, nil
	}

	therapists, err := s.therapists.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list therapists: %w", err)
	}

	result = make([]*model.TherapistAvailability, 0, len(bySlotOwner))
	for _, therapist := range therapists {
		slots, ok := bySlotOwner[therapist.ID]
		if !ok {
			continue
		}
		result = append(result, &model.TherapistAvailability{
			Therapist: therapist,
			Slots:     slots,
		})
	}
	return result, nil
}

// QueryTherapist returns one therapist's bookable slots. A therapist with
// nothing bookable yields an empty slot set, not an error; an unknown
// therapist yields NotFound.
func (s *Service) QueryTherapist(ctx context.Context, now time.Time, therapistID uuid.UUID, modality *model.Modality) (result *model.TherapistAvailability, err error) {
	timer := prometheus.NewTimer(s.metrics.AvailabilityLatency)
	defer timer.ObserveDuration()
	defer func() { s.observeQuery("therapist", err) }()

	therapist, err := s.therapists.Get(ctx, therapistID)
	if err != nil {
		return nil, err
	}

	open, err := s.slots.ListOpenForTherapist(ctx, therapistID, now, modality)
	if err != nil {
		return nil, fmt.Errorf("failed to list open slots: %w", err)
	}

	excluded, err := s.bookedInstantSet(ctx, &therapistID, now)
	if err != nil {
		return nil, err
	}

	slots := make([]model.Slot, 0, len(open))
	for _, slot := range open {
		if excluded.contains(slot.TherapistID, slot.Datetime) {
			continue
		}
		slots = append(slots, slot)
	}

	return &model.TherapistAvailability{
		Therapist: therapist,
		Slots:     slots,
	}, nil
}

// bookedInstantSet derives the cross-modality exclusion set: once any
// modality at an instant is booked, the therapist is occupied at that
// instant. Computed per query instead of denormalized into sibling rows.
func (s *Service) bookedInstantSet(ctx context.Context, therapistID *uuid.UUID, now time.Time) (instantSet, error) {
	booked, err := s.slots.ListBookedInstants(ctx, therapistID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list booked instants: %w", err)
	}

	set := make(instantSet, len(booked))
	for _, b := range booked {
		set.add(b.TherapistID, b.Datetime)
	}
	return set, nil
}

type instantKey struct {
	therapistID uuid.UUID
	unixNano    int64
}

type instantSet map[instantKey]struct{}

func (s instantSet) add(therapistID uuid.UUID, t time.Time) {
	s[instantKey{therapistID: therapistID, unixNano: t.UnixNano()}] = struct{}{}
}

func (s instantSet) contains(therapistID uuid.UUID, t time.Time) bool {
	_, ok := s[instantKey{therapistID: therapistID, unixNano: t.UnixNano()}]
	return ok
}
