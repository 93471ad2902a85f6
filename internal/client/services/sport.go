package services

import (
	"context"

	"github.com/dmitrijs2005/lifesync/internal/client/models"
	"github.com/dmitrijs2005/lifesync/internal/client/repositories/records"
)

// SportInput describes a workout. An empty Date means today.
type SportInput struct {
	SportType       models.SportType
	DurationMinutes int
	DistanceKm      *float64
	// TrainingType is only accepted for running.
	TrainingType *models.TrainingType
	Date         string
}

type SportService interface {
	Add(ctx context.Context, in SportInput) (models.SportActivity, error)
	Update(ctx context.Context, id string, in SportInput) (models.SportActivity, error)
	Delete(ctx context.Context, id string) error
	ForDate(ctx context.Context, date string) ([]models.SportActivity, error)
	List(ctx context.Context) ([]models.SportActivity, error)
}

type sportService struct {
	base
	activities records.Repository[models.SportActivity]
}

func NewSportService(d Deps, activities records.Repository[models.SportActivity]) SportService {
	return &sportService{base: newBase(d), activities: activities}
}

func (s *sportService) validate(in *SportInput) error {
	if _, err := models.ParseSportType(string(in.SportType)); err != nil {
		return validationError("sport type: %v", err)
	}
	if err := validatePositive("duration", float64(in.DurationMinutes)); err != nil {
		return err
	}
	if in.DistanceKm != nil && *in.DistanceKm < 0 {
		return validationError("distance must not be negative")
	}
	if in.TrainingType != nil {
		if in.SportType != models.SportRunning {
			return validationError("training type is only tracked for running")
		}
		if _, err := models.ParseTrainingType(string(*in.TrainingType)); err != nil {
			return validationError("training type: %v", err)
		}
	}
	if in.Date == "" {
		in.Date = s.today()
	}
	return validateDate(in.Date)
}

func (s *sportService) Add(ctx context.Context, in SportInput) (models.SportActivity, error) {
	if err := s.validate(&in); err != nil {
		return models.SportActivity{}, err
	}

	a := models.SportActivity{Syncable: models.NewSyncable(s.newID(), s.timestamp())}
	applySport(&a, in)
	if err := insert(ctx, s.base, s.activities, a); err != nil {
		return models.SportActivity{}, err
	}
	return a, nil
}

func applySport(a *models.SportActivity, in SportInput) {
	a.SportType = in.SportType
	a.DurationMinutes = in.DurationMinutes
	a.DistanceKm = in.DistanceKm
	a.TrainingType = in.TrainingType
	a.Date = in.Date
}

func (s *sportService) Update(ctx context.Context, id string, in SportInput) (models.SportActivity, error) {
	if err := s.validate(&in); err != nil {
		return models.SportActivity{}, err
	}
	return update(ctx, s.base, s.activities, id, func(a *models.SportActivity) error {
		applySport(a, in)
		return nil
	})
}

func (s *sportService) Delete(ctx context.Context, id string) error {
	return softDelete(ctx, s.base, s.activities, id)
}

func (s *sportService) ForDate(ctx context.Context, date string) ([]models.SportActivity, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	return s.activities.FindBy(ctx, "date", date)
}

func (s *sportService) List(ctx context.Context) ([]models.SportActivity, error) {
	return listByDateDesc(ctx, s.activities, func(a models.SportActivity) string { return a.Date })
}
