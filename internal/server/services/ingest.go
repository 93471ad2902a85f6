package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/common"
	"github.com/dmitrijs2005/lifesync/internal/dbx"
	"github.com/dmitrijs2005/lifesync/internal/server/models"
	"github.com/dmitrijs2005/lifesync/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const maxActivityMinutes = 480

var (
	activityTypes = map[string]struct{}{"flashcards": {}, "reading": {}, "watching": {}, "listening": {}}
	datePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ActivityRequest is the body accepted by the ingestion endpoint. Numbers
// are float64 so that fractional values are reported instead of truncated.
type ActivityRequest struct {
	Type            string   `json:"type"`
	DurationMinutes *float64 `json:"durationMinutes"`
	NewCards        *float64 `json:"newCards,omitempty"`
	Date            *string  `json:"date,omitempty"`
}

// IngestResult identifies the stored activity and the book it was attached to.
type IngestResult struct {
	ID     string  `json:"id"`
	BookID *string `json:"bookId"`
}

// Validate lists every problem with r in one common.ErrorValidation.
func (r *ActivityRequest) Validate() error {
	var problems []string

	if _, ok := activityTypes[r.Type]; !ok {
		problems = append(problems, "type: must be one of flashcards, reading, watching, listening")
	}

	switch d := r.DurationMinutes; {
	case d == nil:
		problems = append(problems, "durationMinutes: required")
	case *d != math.Trunc(*d) || *d <= 0 || *d > maxActivityMinutes:
		problems = append(problems, fmt.Sprintf("durationMinutes: must be an integer between 1 and %d", maxActivityMinutes))
	}

	if c := r.NewCards; c != nil {
		if *c != math.Trunc(*c) || *c < 0 {
			problems = append(problems, "newCards: must be a non-negative integer")
		}
	}

	if r.Date != nil {
		if _, err := time.Parse(common.DateLayout, *r.Date); err != nil || !datePattern.MatchString(*r.Date) {
			problems = append(problems, "date: must be in YYYY-MM-DD format")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", common.ErrorValidation, strings.Join(problems, ", "))
	}

	if r.NewCards != nil && r.Type != "flashcards" {
		return fmt.Errorf("%w: newCards is only valid for flashcards type", common.ErrorValidation)
	}
	return nil
}

// IngestService writes activities posted by external tools straight into
// the remote store, where devices pick them up on their next pull.
type IngestService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
	newID       func() string
}

func NewIngestService(db *sql.DB, m repomanager.RepositoryManager) *IngestService {
	return &IngestService{db: db, repomanager: m, now: time.Now, newID: uuid.NewString}
}

// Record validates req and stores it for userID. A reading session is
// attached to the user's most recently read book, whose reading time grows
// by the session's duration.
func (s *IngestService) Record(ctx context.Context, userID string, req *ActivityRequest) (*IngestResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	activity := &models.Activity{
		ID:              s.newID(),
		UserID:          userID,
		Type:            req.Type,
		DurationMinutes: int(*req.DurationMinutes),
		Date:            now.Format(common.DateLayout),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.Date != nil {
		activity.Date = *req.Date
	}
	if req.NewCards != nil {
		cards := int(*req.NewCards)
		activity.NewCards = &cards
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Ingestion(tx)

		if activity.Type == "reading" {
			bookID, err := repo.LastReadBookID(ctx, userID)
			switch {
			case errors.Is(err, common.ErrorNotFound):
			case err != nil:
				return err
			default:
				activity.BookID = &bookID
				if _, err := repo.AddReadingTime(ctx, userID, bookID, activity.DurationMinutes, now); err != nil {
					return err
				}
			}
		}

		return repo.InsertActivity(ctx, activity)
	})
	if err != nil {
		return nil, fmt.Errorf("error recording activity: %w", err)
	}

	return &IngestResult{ID: activity.ID, BookID: activity.BookID}, nil
}
