package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/lifesync/internal/client/models"
	"github.com/dmitrijs2005/lifesync/internal/client/repositories/records"
)

// StudyInput describes a Japanese study session. An empty Date means today.
type StudyInput struct {
	Type            models.ActivityType
	DurationMinutes int
	NewCards        *int
	BookID          *string
	Date            string
}

type StudyService interface {
	// Add records a session. A reading session linked to a book adds its
	// minutes to the book.
	Add(ctx context.Context, in StudyInput) (models.JapaneseActivity, error)
	Update(ctx context.Context, id string, in StudyInput) (models.JapaneseActivity, error)
	Delete(ctx context.Context, id string) error
	ForDate(ctx context.Context, date string) ([]models.JapaneseActivity, error)
	ByType(ctx context.Context, t models.ActivityType) ([]models.JapaneseActivity, error)
	List(ctx context.Context) ([]models.JapaneseActivity, error)
}

type studyService struct {
	base
	activities records.Repository[models.JapaneseActivity]
	books      records.Repository[models.Book]
}

func NewStudyService(d Deps, activities records.Repository[models.JapaneseActivity], books records.Repository[models.Book]) StudyService {
	return &studyService{base: newBase(d), activities: activities, books: books}
}

func (s *studyService) validate(ctx context.Context, in *StudyInput) error {
	if _, err := models.ParseActivityType(string(in.Type)); err != nil {
		return validationError("activity type: %v", err)
	}
	if err := validatePositive("duration", float64(in.DurationMinutes)); err != nil {
		return err
	}
	if in.NewCards != nil {
		if in.Type != models.ActivityFlashcards {
			return validationError("new cards are only tracked for flashcards")
		}
		if *in.NewCards < 0 {
			return validationError("new cards must not be negative")
		}
	}
	if in.Date == "" {
		in.Date = s.today()
	}
	if err := validateDate(in.Date); err != nil {
		return err
	}
	if in.BookID != nil {
		if in.Type != models.ActivityReading {
			return validationError("only reading sessions can be linked to a book")
		}
		if _, err := s.books.GetByID(ctx, *in.BookID); err != nil {
			return fmt.Errorf("book %s: %w", *in.BookID, err)
		}
	}
	return nil
}

func (s *studyService) Add(ctx context.Context, in StudyInput) (models.JapaneseActivity, error) {
	if err := s.validate(ctx, &in); err != nil {
		return models.JapaneseActivity{}, err
	}

	now := s.timestamp()
	a := models.JapaneseActivity{
		Syncable:        models.NewSyncable(s.newID(), now),
		Type:            in.Type,
		DurationMinutes: in.DurationMinutes,
		NewCards:        in.NewCards,
		BookID:          in.BookID,
		Date:            in.Date,
	}
	if err := insert(ctx, s.base, s.activities, a); err != nil {
		return models.JapaneseActivity{}, err
	}

	if a.Type == models.ActivityReading && a.BookID != nil {
		_, err := update(ctx, s.base, s.books, *a.BookID, func(b *models.Book) error {
			addReading(b, a.DurationMinutes, now)
			return nil
		})
		if err != nil {
			return a, fmt.Errorf("failed to update book %s: %w", *a.BookID, err)
		}
	}
	return a, nil
}

func (s *studyService) Update(ctx context.Context, id string, in StudyInput) (models.JapaneseActivity, error) {
	if err := s.validate(ctx, &in); err != nil {
		return models.JapaneseActivity{}, err
	}
	return update(ctx, s.base, s.activities, id, func(a *models.JapaneseActivity) error {
		a.Type = in.Type
		a.DurationMinutes = in.DurationMinutes
		a.NewCards = in.NewCards
		a.BookID = in.BookID
		a.Date = in.Date
		return nil
	})
}

func (s *studyService) Delete(ctx context.Context, id string) error {
	return softDelete(ctx, s.base, s.activities, id)
}

func (s *studyService) ForDate(ctx context.Context, date string) ([]models.JapaneseActivity, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	return s.activities.FindBy(ctx, "date", date)
}

func (s *studyService) ByType(ctx context.Context, t models.ActivityType) ([]models.JapaneseActivity, error) {
	return s.activities.FindBy(ctx, "type", string(t))
}

func (s *studyService) List(ctx context.Context) ([]models.JapaneseActivity, error) {
	return listByDateDesc(ctx, s.activities, func(a models.JapaneseActivity) string { return a.Date })
}
