package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/psiconecta/booking-api/internal/config"
	"github.com/psiconecta/booking-api/internal/model"
	"github.com/psiconecta/booking-api/internal/repository/postgres"
)

// Seed data loader. Slot schedules are supplied externally in production;
// this fills a local database with a plausible week of availability.

type seedTherapist struct {
	name        string
	description string
	modalities  []model.Modality
	specialties []string
}

var therapists = []seedTherapist{
	{
		name:        "Julieta Plasencia",
		description: "Psicóloga con más de 10 años de experiencia en ansiedad, depresión y gestión del estrés.",
		modalities:  []model.Modality{model.ModalityOnline, model.ModalityPresencial},
		specialties: []string{"Ansiedad", "Depresión", "Gestión del estrés"},
	},
	{
		name:        "Monica Perez",
		description: "Especialista en terapia de parejas y comunicación, con enfoque en terapia emocional enfocada.",
		modalities:  []model.Modality{model.ModalityOnline},
		specialties: []string{"Terapia de parejas", "Problemas de relación", "Comunicación"},
	},
	{
		name:        "Emilia Rodriguez",
		description: "Psicóloga clínica especializada en trauma y duelo. Utiliza EMDR y terapia narrativa.",
		modalities:  []model.Modality{model.ModalityOnline, model.ModalityPresencial},
		specialties: []string{"Trauma", "Luto", "Ansiedad"},
	},
	{
		name:        "David Torres",
		description: "Psicólogo especializado en adicciones con enfoque integral y terapia motivacional.",
		modalities:  []model.Modality{model.ModalityPresencial},
		specialties: []string{"Adicción", "Recuperación"},
	},
	{
		name:        "Maria Garcia",
		description: "Psicóloga clínica especializada en trastornos del estado de ánimo.",
		modalities:  []model.Modality{model.ModalityOnline, model.ModalityPresencial},
		specialties: []string{"Depresión", "Trastorno bipolar"},
	},
	{
		name:        "Ana Garcia",
		description: "Psicóloga organizacional especializada en estrés laboral y burnout.",
		modalities:  []model.Modality{model.ModalityOnline},
		specialties: []string{"Gestión del estrés", "Burnout"},
	},
}

var slotHours = []int{9, 10, 11, 14, 15, 16, 17}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()
	if err := seed(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
	log.Info().Msg("seeding complete")
}

func seed(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	specialtyIDs := make(map[string]uuid.UUID)
	for _, t := range therapists {
		for _, name := range t.specialties {
			if _, ok := specialtyIDs[name]; ok {
				continue
			}
			id := uuid.New()
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO specialties (id, name)
				VALUES ($1, $2)
				ON CONFLICT (name) DO NOTHING
			`, id, name); err != nil {
				return err
			}
			if err := tx.GetContext(ctx, &id, `SELECT id FROM specialties WHERE name = $1`, name); err != nil {
				return err
			}
			specialtyIDs[name] = id
		}
	}

	for _, t := range therapists {
		therapistID := uuid.New()
		modalities := make(pq.StringArray, 0, len(t.modalities))
		for _, m := range t.modalities {
			modalities = append(modalities, string(m))
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO therapists (id, name, avatar_url, description, supported_modalities)
			VALUES ($1, $2, $3, $4, $5)
		`, therapistID, t.name, "/avatars/placeholder.svg", t.description, modalities); err != nil {
			return err
		}

		for _, name := range t.specialties {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO therapist_specialties (therapist_id, specialty_id)
				VALUES ($1, $2)
			`, therapistID, specialtyIDs[name]); err != nil {
				return err
			}
		}

		if err := seedSlots(ctx, tx, therapistID, t.modalities); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func seedSlots(ctx context.Context, tx *sqlx.Tx, therapistID uuid.UUID, modalities []model.Modality) error {
	now := time.Now().UTC()
	for day := 0; day < 7; day++ {
		date := now.AddDate(0, 0, day)
		if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			continue
		}
		for _, hour := range slotHours {
			datetime := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, time.UTC)
			if !datetime.After(now) {
				continue
			}
			for _, modality := range modalities {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO availability_slots (therapist_id, datetime, modality, is_booked)
					VALUES ($1, $2, $3, FALSE)
					ON CONFLICT (therapist_id, datetime, modality) DO NOTHING
				`, therapistID, datetime, modality); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
