package store

import (
	"context"
	"time"

	"github.com/Nicolasvals/discord-bot-plantaciones/internal/domain"
)

// PlantationPatch is a shallow merge applied to a stored plantation.
// Nil fields are left untouched.
type PlantationPatch struct {
	NextWaterAt   *time.Time
	NextHarvestAt *time.Time
	WaterCount    *int
	HarvestCount  *int
	WaterAlert    *domain.AlertState
	HarvestAlert  *domain.AlertState
	ReadyAlert    *domain.AlertState
	Primary       *domain.MessageRef
	Completed     *bool
}

func applyPlantationPatch(p *domain.Plantation, patch PlantationPatch) {
	if patch.NextWaterAt != nil {
		p.NextWaterAt = *patch.NextWaterAt
	}
	if patch.NextHarvestAt != nil {
		p.NextHarvestAt = *patch.NextHarvestAt
	}
	if patch.WaterCount != nil {
		p.WaterCount = *patch.WaterCount
	}
	if patch.HarvestCount != nil {
		p.HarvestCount = *patch.HarvestCount
	}
	if patch.WaterAlert != nil {
		p.WaterAlert = *patch.WaterAlert
	}
	if patch.HarvestAlert != nil {
		p.HarvestAlert = *patch.HarvestAlert
	}
	if patch.ReadyAlert != nil {
		p.ReadyAlert = *patch.ReadyAlert
	}
	if patch.Primary != nil {
		p.Primary = *patch.Primary
	}
	if patch.Completed != nil {
		p.Completed = *patch.Completed
	}
}

// CreatePlantation assigns the next monotonic ID, persists, and returns
// the stored plantation.
func (s *Store) CreatePlantation(ctx context.Context, p domain.Plantation) (domain.Plantation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	maxID := 0
	for i := range s.plantations {
		if s.plantations[i].ID > maxID {
			maxID = s.plantations[i].ID
		}
	}
	p.ID = maxID + 1

	next := make([]domain.Plantation, len(s.plantations), len(s.plantations)+1)
	copy(next, s.plantations)
	next = append(next, p)

	if err := s.persistPlantations(next); err != nil {
		return domain.Plantation{}, err
	}
	return p, nil
}

// GetPlantation returns the plantation with the given ID.
func (s *Store) GetPlantation(ctx context.Context, id int) (domain.Plantation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.plantations {
		if s.plantations[i].ID == id {
			return s.plantations[i], nil
		}
	}
	return domain.Plantation{}, domain.ErrPlantationNotFound
}

// PatchPlantation shallow-merges patch into the stored plantation,
// persists, and returns the updated record.
func (s *Store) PatchPlantation(ctx context.Context, id int, patch PlantationPatch) (domain.Plantation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Plantation, len(s.plantations))
	copy(next, s.plantations)

	for i := range next {
		if next[i].ID != id {
			continue
		}
		applyPlantationPatch(&next[i], patch)
		if err := s.persistPlantations(next); err != nil {
			return domain.Plantation{}, err
		}
		return next[i], nil
	}
	return domain.Plantation{}, domain.ErrPlantationNotFound
}

// DeletePlantation removes the plantation from the store.
// Returns false if no plantation with that ID exists.
func (s *Store) DeletePlantation(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Plantation, 0, len(s.plantations))
	found := false
	for i := range s.plantations {
		if s.plantations[i].ID == id {
			found = true
			continue
		}
		next = append(next, s.plantations[i])
	}
	if !found {
		return false, nil
	}
	if err := s.persistPlantations(next); err != nil {
		return false, err
	}
	return true, nil
}

// ListPlantations returns all plantations in ID order.
// With activeOnly set, completed plantations are skipped.
func (s *Store) ListPlantations(ctx context.Context, activeOnly bool) ([]domain.Plantation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Plantation, 0, len(s.plantations))
	for i := range s.plantations {
		if activeOnly && s.plantations[i].Completed {
			continue
		}
		out = append(out, s.plantations[i])
	}
	return out, nil
}
