package therapist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/psiconecta/booking-api/internal/model"
	"github.com/psiconecta/booking-api/internal/repository"
	"github.com/psiconecta/booking-api/pkg/logger"
)

const (
	specialtiesCacheKey = "specialties"
	specialtiesCacheTTL = 5 * time.Minute
)

type Service struct {
	repo   repository.TherapistRepository
	cache  *cache.Cache
	logger *logger.Logger
}

func NewService(repo repository.TherapistRepository, logger *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache.New(specialtiesCacheTTL, 10*time.Minute),
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context, specialty *string) ([]*model.Therapist, error) {
	therapists, err := s.repo.List(ctx, specialty)
	if err != nil {
		return nil, fmt.Errorf("failed to list therapists: %w", err)
	}
	return therapists, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Therapist, error) {
	return s.repo.Get(ctx, id)
}

// Specialties serves the specialty catalog from a short-lived cache. The
// catalog changes rarely and backs every filter dropdown render.
func (s *Service) Specialties(ctx context.Context) ([]string, error) {
	if cached, ok := s.cache.Get(specialtiesCacheKey); ok {
		return cached.([]string), nil
	}

	names, err := s.repo.ListSpecialties(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list specialties: %w", err)
	}

	s.cache.Set(specialtiesCacheKey, names, cache.DefaultExpiration)
	return names, nil
}
