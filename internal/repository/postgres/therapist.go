package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/psiconecta/booking-api/internal/model"
	apperrors "github.com/psiconecta/booking-api/pkg/errors"
)

type therapistRow struct {
	ID                  uuid.UUID      `db:"id"`
	Name                string         `db:"name"`
	AvatarURL           string         `db:"avatar_url"`
	Description         string         `db:"description"`
	SupportedModalities pq.StringArray `db:"supported_modalities"`
	Specialties         pq.StringArray `db:"specialties"`
}

func (row *therapistRow) toModel() *model.Therapist {
	modalities := make([]model.Modality, 0, len(row.SupportedModalities))
	for _, m := range row.SupportedModalities {
		modalities = append(modalities, model.Modality(m))
	}
	return &model.Therapist{
		ID:                  row.ID,
		Name:                row.Name,
		AvatarURL:           row.AvatarURL,
		Description:         row.Description,
		SupportedModalities: modalities,
		Specialties:         []string(row.Specialties),
	}
}

const therapistColumns = `
	t.id, t.name, t.avatar_url, t.description, t.supported_modalities,
	COALESCE(
		array_agg(s.name ORDER BY s.name) FILTER (WHERE s.name IS NOT NULL),
		'{}'
	) AS specialties
`

func (r *therapistRepository) List(ctx context.Context, specialty *string) ([]*model.Therapist, error) {
	query := `
		SELECT ` + therapistColumns + `
		FROM therapists t
		LEFT JOIN therapist_specialties ts ON ts.therapist_id = t.id
		LEFT JOIN specialties s ON s.id = ts.specialty_id
		WHERE $1::text IS NULL OR EXISTS (
			SELECT 1
			FROM therapist_specialties fts
			JOIN specialties fs ON fs.id = fts.specialty_id
			WHERE fts.therapist_id = t.id
			AND lower(fs.name) = lower($1)
		)
		GROUP BY t.id
		ORDER BY t.name
	`
	var rows []therapistRow
	if err := r.db.SelectContext(ctx, &rows, query, specialty); err != nil {
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to list therapists: %w", err))
	}

	therapists := make([]*model.Therapist, 0, len(rows))
	for i := range rows {
		therapists = append(therapists, rows[i].toModel())
	}
	return therapists, nil
}

func (r *therapistRepository) Get(ctx context.Context, id uuid.UUID) (*model.Therapist, error) {
	query := `
		SELECT ` + therapistColumns + `
		FROM therapists t
		LEFT JOIN therapist_specialties ts ON ts.therapist_id = t.id
		LEFT JOIN specialties s ON s.id = ts.specialty_id
		WHERE t.id = $1
		GROUP BY t.id
	`
	var row therapistRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("therapist", err)
		}
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to get therapist: %w", err))
	}
	return row.toModel(), nil
}

func (r *therapistRepository) ListSpecialties(ctx context.Context) ([]string, error) {
	query := `
		SELECT name
		FROM specialties
		ORDER BY name
	`
	var names []string
	if err := r.db.SelectContext(ctx, &names, query); err != nil {
		return nil, apperrors.StoreUnavailable(fmt.Errorf("failed to list specialties: %w", err))
	}
	return names, nil
}
