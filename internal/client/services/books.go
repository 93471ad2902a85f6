package services

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/client/models"
	"github.com/dmitrijs2005/lifesync/internal/client/repositories/records"
	"github.com/dmitrijs2005/lifesync/internal/common"
)

type BookService interface {
	Add(ctx context.Context, title string) (models.Book, error)
	AddReadingTime(ctx context.Context, id string, minutes int) (models.Book, error)
	MarkComplete(ctx context.Context, id string) (models.Book, error)
	MarkIncomplete(ctx context.Context, id string) (models.Book, error)
	Delete(ctx context.Context, id string) error
	// Search returns in-progress books whose title contains query,
	// case-insensitively. An empty query matches all of them.
	Search(ctx context.Context, query string) ([]models.Book, error)
	// LastRead returns the in-progress book of the most recent reading
	// session, or common.ErrorNotFound.
	LastRead(ctx context.Context) (models.Book, error)
	Get(ctx context.Context, id string) (models.Book, error)
	// List returns all books ordered by title.
	List(ctx context.Context) ([]models.Book, error)
}

type bookService struct {
	base
	books      records.Repository[models.Book]
	activities records.Repository[models.JapaneseActivity]
}

func NewBookService(d Deps, books records.Repository[models.Book], activities records.Repository[models.JapaneseActivity]) BookService {
	return &bookService{base: newBase(d), books: books, activities: activities}
}

func (s *bookService) Add(ctx context.Context, title string) (models.Book, error) {
	title = strings.TrimSpace(title)
	if err := validateName("title", title); err != nil {
		return models.Book{}, err
	}

	b := models.Book{Syncable: models.NewSyncable(s.newID(), s.timestamp()), Title: title}
	if err := insert(ctx, s.base, s.books, b); err != nil {
		return models.Book{}, err
	}
	return b, nil
}

func (s *bookService) AddReadingTime(ctx context.Context, id string, minutes int) (models.Book, error) {
	if err := validatePositive("minutes", float64(minutes)); err != nil {
		return models.Book{}, err
	}
	return update(ctx, s.base, s.books, id, func(b *models.Book) error {
		addReading(b, minutes, s.timestamp())
		return nil
	})
}

// addReading accumulates minutes and stamps the first reading session.
func addReading(b *models.Book, minutes int, now time.Time) {
	b.TotalReadingTimeMinutes += minutes
	if b.StartedAt == nil {
		b.StartedAt = &now
	}
}

func (s *bookService) MarkComplete(ctx context.Context, id string) (models.Book, error) {
	now := s.timestamp()
	return update(ctx, s.base, s.books, id, func(b *models.Book) error {
		b.Completed = true
		b.CompletedAt = &now
		return nil
	})
}

func (s *bookService) MarkIncomplete(ctx context.Context, id string) (models.Book, error) {
	return update(ctx, s.base, s.books, id, func(b *models.Book) error {
		b.Completed = false
		b.CompletedAt = nil
		return nil
	})
}

func (s *bookService) Delete(ctx context.Context, id string) error {
	return softDelete(ctx, s.base, s.books, id)
}

func (s *bookService) Search(ctx context.Context, query string) ([]models.Book, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	return s.books.Filter(ctx, func(b models.Book) bool {
		return !b.Completed && strings.Contains(strings.ToLower(b.Title), query)
	})
}

func (s *bookService) LastRead(ctx context.Context) (models.Book, error) {
	sessions, err := s.activities.Filter(ctx, func(a models.JapaneseActivity) bool {
		return a.Type == models.ActivityReading && a.BookID != nil
	})
	if err != nil {
		return models.Book{}, err
	}
	if len(sessions) == 0 {
		return models.Book{}, common.ErrorNotFound
	}

	last := slices.MaxFunc(sessions, func(a, b models.JapaneseActivity) int {
		return cmp.Or(cmp.Compare(a.Date, b.Date), a.CreatedAt.Compare(b.CreatedAt))
	})

	b, err := s.books.GetByID(ctx, *last.BookID)
	if err != nil {
		return models.Book{}, err
	}
	if b.Completed {
		return models.Book{}, common.ErrorNotFound
	}
	return b, nil
}

func (s *bookService) Get(ctx context.Context, id string) (models.Book, error) {
	return s.books.GetByID(ctx, id)
}

func (s *bookService) List(ctx context.Context) ([]models.Book, error) {
	books, err := s.books.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(books, func(a, b models.Book) int {
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	})
	return books, nil
}

// IsNotFound reports whether err means the record does not exist or was
// deleted.
func IsNotFound(err error) bool {
	return errors.Is(err, common.ErrorNotFound)
}
