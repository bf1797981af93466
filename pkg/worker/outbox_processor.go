package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/psiconecta/booking-api/internal/model"
	"github.com/psiconecta/booking-api/internal/repository"
	"github.com/psiconecta/booking-api/pkg/logger"
	"github.com/psiconecta/booking-api/pkg/messaging"
	"github.com/psiconecta/booking-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize       int
	PollInterval    time.Duration
	RetryAttempts   int
	RetryDelay      time.Duration
	CleanupInterval time.Duration
	RetentionPeriod time.Duration
}

// OutboxProcessor drains the outbox table and publishes booking events to
// the broker. Events that exhaust their retries move to the dead letter
// table instead of blocking the queue.
type OutboxProcessor struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	config  OutboxProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *OutboxProcessor {
	if config.BatchSize <= 0 {
		panic("BatchSize must be greater than 0")
	}
	if config.PollInterval <= 0 {
		panic("PollInterval must be greater than 0")
	}
	if config.RetryAttempts <= 0 {
		panic("RetryAttempts must be greater than 0")
	}
	if config.RetryDelay <= 0 {
		panic("RetryDelay must be greater than 0")
	}
	if config.CleanupInterval <= 0 {
		panic("CleanupInterval must be greater than 0")
	}
	if config.RetentionPeriod <= 0 {
		panic("RetentionPeriod must be greater than 0")
	}

	return &OutboxProcessor{
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()
	cleanup := time.NewTicker(p.config.CleanupInterval)
	defer cleanup.Stop()

	p.logger.Info("starting outbox processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down outbox processor")
			return
		case <-ticker.C:
			if err := p.processEvents(ctx); err != nil {
				p.logger.Error(err, "failed to process events")
			}
		case <-cleanup.C:
			if err := p.cleanupProcessed(ctx); err != nil {
				p.logger.Error(err, "failed to clean up processed events")
			}
		}
	}
}

// cleanupProcessed sweeps processed events past the retention window. Rows
// stay around after publishing only for inspection; the sweep keeps the
// table from growing without bound.
func (p *OutboxProcessor) cleanupProcessed(ctx context.Context) error {
	cutoff := time.Now().Add(-p.config.RetentionPeriod)
	deleted, err := p.repo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("delete_processed_events", "error").Inc()
		return fmt.Errorf("failed to delete processed events: %w", err)
	}
	p.metrics.DatabaseOperations.WithLabelValues("delete_processed_events", "success").Inc()

	if deleted > 0 {
		p.logger.Info("cleaned up processed events", "deleted", deleted)
	}
	return nil
}

func (p *OutboxProcessor) processEvents(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	events, err := p.repo.GetPending(ctx, p.config.BatchSize)
	if err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "error").Inc()
		return fmt.Errorf("failed to get pending events: %w", err)
	}
	p.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "success").Inc()

	for _, event := range events {
		if err := p.processEvent(ctx, event); err != nil {
			p.logger.Error(err, "failed to process event",
				"event_id", event.ID.String(),
				"event_type", event.EventType)
		}
	}
	return nil
}

func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) error {
	message := messaging.Message{
		Type:    event.EventType,
		Payload: event.Payload,
	}

	if err := p.broker.Publish(ctx, event.EventType, message); err != nil {
		p.metrics.OutboxEventsFailed.Inc()
		return p.handlePublishFailure(ctx, event, err)
	}

	if err := p.repo.MarkProcessed(ctx, event.ID); err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}

	p.metrics.OutboxEventsProcessed.Inc()
	return nil
}

func (p *OutboxProcessor) handlePublishFailure(ctx context.Context, event *model.OutboxEvent, cause error) error {
	if event.RetryCount+1 >= p.config.RetryAttempts {
		if err := p.repo.MoveToDeadLetter(ctx, event); err != nil {
			return fmt.Errorf("failed to move event to dead letter: %w", err)
		}
		p.logger.Warn("event moved to dead letter",
			"event_id", event.ID.String(),
			"event_type", event.EventType,
			"cause", cause.Error())
		return nil
	}

	p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()
	retryAt := time.Now().Add(p.config.RetryDelay)
	if err := p.repo.MarkFailed(ctx, event.ID, cause.Error(), &retryAt); err != nil {
		return fmt.Errorf("failed to schedule retry: %w", err)
	}
	return nil
}
