package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/psiconecta/booking-api/internal/model"
	apperrors "github.com/psiconecta/booking-api/pkg/errors"
)

type OutboxStore struct {
	mu         sync.Mutex
	events     []*model.OutboxEvent
	deadLetter []*model.OutboxEvent
}

func NewOutboxStore() *OutboxStore {
	return &OutboxStore{}
}

func (s *OutboxStore) Create(ctx context.Context, event *model.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	event.ID = uuid.New()
	event.Status = model.OutboxStatusPending
	event.CreatedAt = now
	event.UpdatedAt = now
	stored := *event
	s.events = append(s.events, &stored)
	return nil
}

func (s *OutboxStore) GetPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	var result []*model.OutboxEvent
	for _, e := range s.events {
		if len(result) >= limit {
			break
		}
		if e.Status != model.OutboxStatusPending {
			continue
		}
		if e.RetryAt != nil && e.RetryAt.After(now) {
			continue
		}
		copied := *e
		result = append(result, &copied)
	}
	return result, nil
}

func (s *OutboxStore) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.find(id)
	if !ok {
		return apperrors.NotFound("outbox event", nil)
	}
	now := time.Now().UTC()
	e.Status = model.OutboxStatusProcessed
	e.ProcessedAt = &now
	e.UpdatedAt = now
	return nil
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, retryAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.find(id)
	if !ok {
		return apperrors.NotFound("outbox event", nil)
	}
	e.ErrorMessage = &errMsg
	e.RetryCount++
	e.RetryAt = retryAt
	e.UpdatedAt = time.Now().UTC()
	if retryAt == nil {
		e.Status = model.OutboxStatusFailed
	} else {
		e.Status = model.OutboxStatusPending
	}
	return nil
}

func (s *OutboxStore) MoveToDeadLetter(ctx context.Context, event *model.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.events {
		if e.ID == event.ID {
			s.deadLetter = append(s.deadLetter, e)
			s.events = append(s.events[:i], s.events[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("outbox event", nil)
}

func (s *OutboxStore) DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []*model.OutboxEvent
	var deleted int64
	for _, e := range s.events {
		if e.Status == model.OutboxStatusProcessed && e.ProcessedAt != nil && e.ProcessedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	return deleted, nil
}

// Events returns a snapshot of all stored events, oldest first.
func (s *OutboxStore) Events() []model.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]model.OutboxEvent, len(s.events))
	for i, e := range s.events {
		result[i] = *e
	}
	return result
}

// DeadLetter returns a snapshot of dead-lettered events.
func (s *OutboxStore) DeadLetter() []model.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]model.OutboxEvent, len(s.deadLetter))
	for i, e := range s.deadLetter {
		result[i] = *e
	}
	return result
}

func (s *OutboxStore) find(id uuid.UUID) (*model.OutboxEvent, bool) {
	for _, e := range s.events {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}
