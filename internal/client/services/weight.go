package services

import (
	"context"

	"github.com/dmitrijs2005/lifesync/internal/client/models"
	"github.com/dmitrijs2005/lifesync/internal/client/repositories/records"
	"github.com/dmitrijs2005/lifesync/internal/common"
)

type WeightService interface {
	// AddOrUpdate keeps at most one live entry per date: an existing entry
	// for date is updated in place, otherwise a new one is created.
	AddOrUpdate(ctx context.Context, weightKg float64, date string) (models.WeightEntry, error)
	Delete(ctx context.Context, id string) error
	// ForDate returns the entry of date or common.ErrorNotFound.
	ForDate(ctx context.Context, date string) (models.WeightEntry, error)
	// Latest returns the entry with the most recent date.
	Latest(ctx context.Context) (models.WeightEntry, error)
	// List returns entries newest date first.
	List(ctx context.Context) ([]models.WeightEntry, error)
}

type weightService struct {
	base
	entries records.Repository[models.WeightEntry]
}

func NewWeightService(d Deps, entries records.Repository[models.WeightEntry]) WeightService {
	return &weightService{base: newBase(d), entries: entries}
}

func (s *weightService) AddOrUpdate(ctx context.Context, weightKg float64, date string) (models.WeightEntry, error) {
	if err := validatePositive("weight", weightKg); err != nil {
		return models.WeightEntry{}, err
	}
	if date == "" {
		date = s.today()
	}
	if err := validateDate(date); err != nil {
		return models.WeightEntry{}, err
	}

	existing, err := s.ForDate(ctx, date)
	switch {
	case err == nil:
		return update(ctx, s.base, s.entries, existing.ID, func(w *models.WeightEntry) error {
			w.WeightKg = weightKg
			return nil
		})
	case !IsNotFound(err):
		return models.WeightEntry{}, err
	}

	w := models.WeightEntry{
		Syncable: models.NewSyncable(s.newID(), s.timestamp()),
		WeightKg: weightKg,
		Date:     date,
	}
	if err := insert(ctx, s.base, s.entries, w); err != nil {
		return models.WeightEntry{}, err
	}
	return w, nil
}

func (s *weightService) Delete(ctx context.Context, id string) error {
	return softDelete(ctx, s.base, s.entries, id)
}

func (s *weightService) ForDate(ctx context.Context, date string) (models.WeightEntry, error) {
	if err := validateDate(date); err != nil {
		return models.WeightEntry{}, err
	}
	found, err := s.entries.FindBy(ctx, "date", date)
	if err != nil {
		return models.WeightEntry{}, err
	}
	if len(found) == 0 {
		return models.WeightEntry{}, common.ErrorNotFound
	}
	return found[0], nil
}

func (s *weightService) Latest(ctx context.Context) (models.WeightEntry, error) {
	all, err := s.List(ctx)
	if err != nil {
		return models.WeightEntry{}, err
	}
	if len(all) == 0 {
		return models.WeightEntry{}, common.ErrorNotFound
	}
	return all[0], nil
}

func (s *weightService) List(ctx context.Context) ([]models.WeightEntry, error) {
	return listByDateDesc(ctx, s.entries, func(w models.WeightEntry) string { return w.Date })
}
