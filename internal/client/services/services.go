// Package services holds the application-level operations on the local
// mirror. Every mutation is written locally first and then schedules a
// debounced sync; nothing here waits for the network.
package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/lifesync/internal/client/models"
	"github.com/dmitrijs2005/lifesync/internal/client/repositories/records"
	"github.com/dmitrijs2005/lifesync/internal/common"
	"github.com/google/uuid"
)

// Trigger is notified after every local mutation.
type Trigger interface {
	TriggerDebounced(userID string)
}

type noopTrigger struct{}

func (noopTrigger) TriggerDebounced(string) {}

// Deps are the collaborators shared by all services.
type Deps struct {
	UserID  string
	Trigger Trigger
	// Now and NewID default to the wall clock and random UUIDs.
	Now   func() time.Time
	NewID func() string
}

type base struct {
	userID  string
	trigger Trigger
	now     func() time.Time
	newID   func() string
}

func newBase(d Deps) base {
	b := base{userID: d.UserID, trigger: d.Trigger, now: d.Now, newID: d.NewID}
	if b.trigger == nil {
		b.trigger = noopTrigger{}
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.newID == nil {
		b.newID = uuid.NewString
	}
	return b
}

func (b base) timestamp() time.Time {
	return b.now().UTC().Truncate(time.Millisecond)
}

func (b base) changed() {
	b.trigger.TriggerDebounced(b.userID)
}

func (b base) today() string {
	return b.now().Format(common.DateLayout)
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), common.ErrorValidation)
}

func validateDate(date string) error {
	if _, err := time.Parse(common.DateLayout, date); err != nil {
		return validationError("invalid date %q, expected YYYY-MM-DD", date)
	}
	return nil
}

func validatePositive(name string, v float64) error {
	if v <= 0 {
		return validationError("%s must be positive", name)
	}
	return nil
}

func validateName(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return validationError("%s must not be empty", name)
	}
	return nil
}

// insert stores a new record and schedules a sync.
func insert[T models.Entity](ctx context.Context, b base, repo records.Repository[T], v T) error {
	if err := repo.Insert(ctx, v); err != nil {
		return fmt.Errorf("saving error: %w", err)
	}
	b.changed()
	return nil
}

// mutable is a pointer to an entity embedding models.Syncable.
type mutable[E any] interface {
	*E
	Touch(now time.Time)
	SoftDelete(now time.Time)
}

// update loads a live record, applies fn, marks it pending and stores it.
func update[E models.Entity, P mutable[E]](ctx context.Context, b base, repo records.Repository[E], id string, fn func(P) error) (E, error) {
	v, err := repo.GetByID(ctx, id)
	if err != nil {
		return v, err
	}
	if err := fn(P(&v)); err != nil {
		return v, err
	}
	P(&v).Touch(b.timestamp())

	if err := repo.Put(ctx, v); err != nil {
		return v, fmt.Errorf("saving error: %w", err)
	}
	b.changed()
	return v, nil
}

// softDelete turns a live record into a pending tombstone.
func softDelete[E models.Entity, P mutable[E]](ctx context.Context, b base, repo records.Repository[E], id string) error {
	now := b.timestamp()
	_, err := update(ctx, b, repo, id, func(p P) error {
		p.SoftDelete(now)
		return nil
	})
	return err
}

// listByDateDesc returns live records, newest calendar day first.
func listByDateDesc[E models.Entity](ctx context.Context, repo records.Repository[E], date func(E) string) ([]E, error) {
	items, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(items, func(a, b E) int {
		return strings.Compare(date(b), date(a))
	})
	return items, nil
}

func sortBy[E any](items []E, key func(E) string) {
	slices.SortStableFunc(items, func(a, b E) int {
		return strings.Compare(key(a), key(b))
	})
}
