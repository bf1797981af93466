package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/psiconecta/booking-api/internal/model"
	apperrors "github.com/psiconecta/booking-api/pkg/errors"
)

func (r *slotRepository) ListOpen(ctx context.Context, now time.Time, modality *model.Modality) ([]model.Slot, error) {
	query := `
		SELECT therapist_id, datetime, modality, is_booked
		FROM availability_slots
		WHERE is_booked = FALSE
		AND datetime >= $1
	`
	args := []interface{}{now}

	if modality != nil {
		query += " AND modality = $2"
		args = append(args, *modality)
	}

	query += " ORDER BY therapist_id, datetime ASC"

	var slots []model.Slot
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to list open slots: %w", err))
	}
	return slots, nil
}

func (r *slotRepository) ListOpenForTherapist(ctx context.Context, therapistID uuid.UUID, now time.Time, modality *model.Modality) ([]model.Slot, error) {
	query := `
		SELECT therapist_id, datetime, modality, is_booked
		FROM availability_slots
		WHERE therapist_id = $1
		AND is_booked = FALSE
		AND datetime >= $2
	`
	args := []interface{}{therapistID, now}

	if modality != nil {
		query += " AND modality = $3"
		args = append(args, *modality)
	}

	query += " ORDER BY datetime ASC"

	var slots []model.Slot
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to list therapist slots: %w", err))
	}
	return slots, nil
}

func (r *slotRepository) ListBookedInstants(ctx context.Context, therapistID *uuid.UUID, now time.Time) ([]model.BookedInstant, error) {
	query := `
		SELECT DISTINCT therapist_id, datetime
		FROM availability_slots
		WHERE is_booked = TRUE
		AND datetime >= $1
	`
	args := []interface{}{now}

	if therapistID != nil {
		query += " AND therapist_id = $2"
		args = append(args, *therapistID)
	}

	var booked []model.BookedInstant
	if err := r.db.SelectContext(ctx, &booked, query, args...); err != nil {
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to list booked instants: %w", err))
	}
	return booked, nil
}

// Book performs the open-to-booked transition as one conditional update.
// The is_booked = FALSE guard closes the race window between concurrent
// attempts: at most one of them can move the row.
func (r *slotRepository) Book(ctx context.Context, therapistID uuid.UUID, datetime time.Time, modality model.Modality) error {
	query := `
		UPDATE availability_slots
		SET is_booked = TRUE, updated_at = NOW()
		WHERE therapist_id = $1
		AND datetime = $2
		AND modality = $3
		AND is_booked = FALSE
	`
	result, err := r.db.ExecContext(ctx, query, therapistID, datetime, modality)
	if err != nil {
		return apperrors.StoreUnavailable(fmt.Errorf("failed to book slot: %w", err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.StoreUnavailable(fmt.Errorf("failed to get rows affected: %w", err))
	}
	if rows > 0 {
		return nil
	}

	// Zero rows: either the slot lost the race or it never existed.
	existsQuery := `
		SELECT EXISTS (
			SELECT 1 FROM availability_slots
			WHERE therapist_id = $1
			AND datetime = $2
			AND modality = $3
		)
	`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, existsQuery, therapistID, datetime, modality); err != nil {
		return apperrors.StoreUnavailable(fmt.Errorf("failed to check slot existence: %w", err))
	}
	if exists {
		return apperrors.AlreadyBooked(nil)
	}
	return apperrors.NotFound("slot", nil)
}
