package booking

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/psiconecta/booking-api/internal/model"
	"github.com/psiconecta/booking-api/internal/repository"
	apperrors "github.com/psiconecta/booking-api/pkg/errors"
	"github.com/psiconecta/booking-api/pkg/logger"
	"github.com/psiconecta/booking-api/pkg/metrics"
	"github.com/psiconecta/booking-api/pkg/validator"
)

type Service struct {
	slots     repository.SlotRepository
	outbox    repository.OutboxRepository
	validator *validator.Validator
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

func NewService(slots repository.SlotRepository, outbox repository.OutboxRepository, v *validator.Validator, logger *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		slots:     slots,
		outbox:    outbox,
		validator: v,
		logger:    logger,
		metrics:   m,
	}
}

// Book attempts the open-to-booked transition for one slot identity.
// Exactly one of two concurrent attempts on the same identity succeeds;
// the loser gets AlreadyBooked. Input problems are rejected before any
// store round trip.
func (s *Service) Book(ctx context.Context, req *model.BookingRequest) (*model.BookingConfirmation, error) {
	timer := prometheus.NewTimer(s.metrics.BookingLatency)
	defer timer.ObserveDuration()

	confirmation, err := s.book(ctx, req)
	if err != nil {
		s.metrics.BookingsRejected.WithLabelValues(rejectionReason(err)).Inc()
		return nil, err
	}
	s.metrics.BookingsConfirmed.Inc()
	return confirmation, nil
}

func (s *Service) book(ctx context.Context, req *model.BookingRequest) (*model.BookingConfirmation, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, apperrors.InvalidInput("invalid booking request", err)
	}

	therapistID, err := uuid.Parse(req.TherapistID)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid therapist id", err)
	}

	modality, err := model.ParseModality(req.Modality)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid modality", err)
	}

	instant, err := normalizeInstant(req.Datetime)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid datetime", err)
	}

	if err := s.slots.Book(ctx, therapistID, instant, modality); err != nil {
		return nil, err
	}

	confirmation := &model.BookingConfirmation{
		TherapistID: therapistID,
		Datetime:    instant,
		Modality:    modality,
		BookedAt:    time.Now().UTC(),
	}

	s.enqueueConfirmed(ctx, confirmation)

	s.logger.Info("slot booked",
		"therapist_id", therapistID.String(),
		"datetime", instant.Format(time.RFC3339),
		"modality", string(modality))

	return confirmation, nil
}

// enqueueConfirmed records the booking event for the outbox worker. The
// booking already committed, so an enqueue failure is logged rather than
// surfaced; it must never look like a failed booking to the caller.
func (s *Service) enqueueConfirmed(ctx context.Context, confirmation *model.BookingConfirmation) {
	payload, err := json.Marshal(model.BookingConfirmedEvent{
		TherapistID: confirmation.TherapistID,
		Datetime:    confirmation.Datetime,
		Modality:    confirmation.Modality,
		BookedAt:    confirmation.BookedAt,
	})
	if err != nil {
		s.logger.Error(err, "failed to marshal booking event")
		return
	}

	event := &model.OutboxEvent{
		EventType: model.EventTypeBookingConfirmed,
		Payload:   payload,
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Error(err, "failed to enqueue booking event",
			"therapist_id", confirmation.TherapistID.String())
	}
}

func rejectionReason(err error) string {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrNotFound:
		return "not_found"
	case apperrors.ErrAlreadyBooked:
		return "already_booked"
	case apperrors.ErrInvalidInput:
		return "invalid_input"
	case apperrors.ErrStoreUnavailable:
		return "store_unavailable"
	default:
		return "internal"
	}
}

// normalizeInstant resolves caller-supplied RFC3339 strings to the exact
// stored instant. Formatting and zone offsets may differ; the UTC instant
// is what identifies the slot. Anything unparseable is rejected rather
// than guessed at.
func normalizeInstant(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
