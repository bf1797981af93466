package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/psiconecta/booking-api/internal/model"
	apperrors "github.com/psiconecta/booking-api/pkg/errors"
)

type TherapistStore struct {
	mu         sync.Mutex
	therapists map[uuid.UUID]*model.Therapist
}

func NewTherapistStore() *TherapistStore {
	return &TherapistStore{therapists: make(map[uuid.UUID]*model.Therapist)}
}

func (s *TherapistStore) Add(therapist model.Therapist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := therapist
	s.therapists[therapist.ID] = &stored
}

func (s *TherapistStore) List(ctx context.Context, specialty *string) ([]*model.Therapist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*model.Therapist, 0, len(s.therapists))
	for _, t := range s.therapists {
		if specialty != nil && !hasSpecialty(t, *specialty) {
			continue
		}
		copied := *t
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func hasSpecialty(t *model.Therapist, specialty string) bool {
	for _, s := range t.Specialties {
		if strings.EqualFold(s, specialty) {
			return true
		}
	}
	return false
}

func (s *TherapistStore) Get(ctx context.Context, id uuid.UUID) (*model.Therapist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.therapists[id]
	if !ok {
		return nil, apperrors.NotFound("therapist", nil)
	}
	found := *t
	return &found, nil
}

func (s *TherapistStore) ListSpecialties(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	for _, t := range s.therapists {
		for _, spec := range t.Specialties {
			seen[spec] = struct{}{}
		}
	}
	result := make([]string, 0, len(seen))
	for spec := range seen {
		result = append(result, spec)
	}
	sort.Strings(result)
	return result, nil
}
