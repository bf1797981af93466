package booking

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psiconecta/booking-api/internal/model"
	"github.com/psiconecta/booking-api/internal/repository/memory"
	apperrors "github.com/psiconecta/booking-api/pkg/errors"
	"github.com/psiconecta/booking-api/pkg/logger"
	"github.com/psiconecta/booking-api/pkg/metrics"
	"github.com/psiconecta/booking-api/pkg/validator"
)

// Registered once; promauto panics on duplicate metric names.
var testMetrics = metrics.NewMetrics("booking", "bookingtest")

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
}

func newFixture() (*Service, *memory.SlotStore, *memory.OutboxStore) {
	slots := memory.NewSlotStore()
	outbox := memory.NewOutboxStore()
	return NewService(slots, outbox, validator.New(), testLogger(), testMetrics), slots, outbox
}

func openSlot(slots *memory.SlotStore, datetime string, modality model.Modality) (uuid.UUID, string) {
	id := uuid.New()
	parsed, _ := time.Parse(time.RFC3339, datetime)
	slots.Add(model.Slot{TherapistID: id, Datetime: parsed.UTC(), Modality: modality})
	return id, datetime
}

func TestBookConfirmsOpenSlot(t *testing.T) {
	svc, slots, outbox := newFixture()
	id, datetime := openSlot(slots, "2025-03-01T14:00:00Z", model.ModalityOnline)

	confirmation, err := svc.Book(context.Background(), &model.BookingRequest{
		TherapistID: id.String(),
		Datetime:    datetime,
		Modality:    "online",
	})
	require.NoError(t, err)
	assert.Equal(t, id, confirmation.TherapistID)
	assert.Equal(t, model.ModalityOnline, confirmation.Modality)
	assert.False(t, confirmation.BookedAt.IsZero())

	events := outbox.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventTypeBookingConfirmed, events[0].EventType)

	var payload model.BookingConfirmedEvent
	require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
	assert.Equal(t, id, payload.TherapistID)
}

func TestBookSecondAttemptIsAlreadyBooked(t *testing.T) {
	svc, slots, _ := newFixture()
	id, datetime := openSlot(slots, "2025-03-01T14:00:00Z", model.ModalityOnline)

	req := &model.BookingRequest{TherapistID: id.String(), Datetime: datetime, Modality: "online"}

	_, err := svc.Book(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Book(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrAlreadyBooked, apperrors.CodeOf(err))
}

func TestBookUnknownSlotIsNotFound(t *testing.T) {
	svc, _, _ := newFixture()

	_, err := svc.Book(context.Background(), &model.BookingRequest{
		TherapistID: uuid.NewString(),
		Datetime:    "2025-03-01T14:00:00Z",
		Modality:    "online",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}

func TestBookNormalizesZoneOffsets(t *testing.T) {
	svc, slots, _ := newFixture()
	id, _ := openSlot(slots, "2025-03-01T14:00:00Z", model.ModalityOnline)

	// Same instant expressed in a +01:00 offset.
	confirmation, err := svc.Book(context.Background(), &model.BookingRequest{
		TherapistID: id.String(),
		Datetime:    "2025-03-01T15:00:00+01:00",
		Modality:    "online",
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01T14:00:00Z", confirmation.Datetime.Format(time.RFC3339))
}

func TestBookRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name string
		req  model.BookingRequest
	}{
		{"malformed therapist id", model.BookingRequest{TherapistID: "not-a-uuid", Datetime: "2025-03-01T14:00:00Z", Modality: "online"}},
		{"malformed datetime", model.BookingRequest{TherapistID: uuid.NewString(), Datetime: "01/03/2025 14:00", Modality: "online"}},
		{"unknown modality", model.BookingRequest{TherapistID: uuid.NewString(), Datetime: "2025-03-01T14:00:00Z", Modality: "phone"}},
		{"missing fields", model.BookingRequest{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, outbox := newFixture()

			_, err := svc.Book(context.Background(), &tc.req)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrInvalidInput, apperrors.CodeOf(err))
			assert.Empty(t, outbox.Events(), "rejected input must not reach the outbox")
		})
	}
}

func TestBookConcurrentAttemptsOneWinner(t *testing.T) {
	svc, slots, outbox := newFixture()
	id, datetime := openSlot(slots, "2025-03-01T14:00:00Z", model.ModalityOnline)

	const attempts = 16
	results := make(chan error, attempts)

	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < attempts; i++ {
		go func() {
			start.Wait()
			_, err := svc.Book(context.Background(), &model.BookingRequest{
				TherapistID: id.String(),
				Datetime:    datetime,
				Modality:    "online",
			})
			results <- err
		}()
	}
	start.Done()

	var confirmed, rejected int
	for i := 0; i < attempts; i++ {
		err := <-results
		if err == nil {
			confirmed++
			continue
		}
		require.Equal(t, apperrors.ErrAlreadyBooked, apperrors.CodeOf(err))
		rejected++
	}

	assert.Equal(t, 1, confirmed)
	assert.Equal(t, attempts-1, rejected)
	assert.Len(t, outbox.Events(), 1)
}

func TestBookMovesOutcomeCounters(t *testing.T) {
	svc, slots, _ := newFixture()
	id, datetime := openSlot(slots, "2025-03-01T14:00:00Z", model.ModalityOnline)

	req := &model.BookingRequest{TherapistID: id.String(), Datetime: datetime, Modality: "online"}

	confirmedBefore := testutil.ToFloat64(testMetrics.BookingsConfirmed)
	rejectedBefore := testutil.ToFloat64(testMetrics.BookingsRejected.WithLabelValues("already_booked"))

	_, err := svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, confirmedBefore+1, testutil.ToFloat64(testMetrics.BookingsConfirmed))

	_, err = svc.Book(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, confirmedBefore+1, testutil.ToFloat64(testMetrics.BookingsConfirmed))
	assert.Equal(t, rejectedBefore+1, testutil.ToFloat64(testMetrics.BookingsRejected.WithLabelValues("already_booked")))
}

func TestBookOutboxFailureStillConfirms(t *testing.T) {
	slots := memory.NewSlotStore()
	svc := NewService(slots, &failingOutbox{}, validator.New(), testLogger(), testMetrics)
	id, datetime := openSlot(slots, "2025-03-01T14:00:00Z", model.ModalityOnline)

	confirmation, err := svc.Book(context.Background(), &model.BookingRequest{
		TherapistID: id.String(),
		Datetime:    datetime,
		Modality:    "online",
	})
	require.NoError(t, err)
	assert.Equal(t, id, confirmation.TherapistID)
}

type failingOutbox struct{}

func (f *failingOutbox) Create(ctx context.Context, event *model.OutboxEvent) error {
	return apperrors.StoreUnavailable(nil)
}

func (f *failingOutbox) GetPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	return nil, apperrors.StoreUnavailable(nil)
}

func (f *failingOutbox) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	return apperrors.StoreUnavailable(nil)
}

func (f *failingOutbox) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, retryAt *time.Time) error {
	return apperrors.StoreUnavailable(nil)
}

func (f *failingOutbox) MoveToDeadLetter(ctx context.Context, event *model.OutboxEvent) error {
	return apperrors.StoreUnavailable(nil)
}

func (f *failingOutbox) DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, apperrors.StoreUnavailable(nil)
}
